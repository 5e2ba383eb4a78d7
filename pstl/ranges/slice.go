// Copyright 2025 go-pstl Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ranges provides host ranges and adaptors for the pstl algorithms.
//
// Each type implements exactly the capability interfaces it can honour, and
// pstl.Probe derives the dispatch capabilities from them:
//
//	Slice      forward, random access, contiguous, mutable
//	List       forward, mutable (linear-time Set)
//	Reverse    capabilities of the wrapped range, traversed back to front
//	Zip        forward, random access, mutable when both sides are
//	Counting   forward, random access, read-only
//	Transform  forward, random access, read-only
package ranges

import (
	"iter"

	"github.com/ajroetker/go-pstl/pstl"
)

// Slice is a contiguous range over a Go slice. Writes go to the slice's
// backing array.
type Slice[T any] []T

// Of returns s as a range.
func Of[T any](s []T) Slice[T] {
	return Slice[T](s)
}

func (s Slice[T]) Len() int {
	return len(s)
}

func (s Slice[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range s {
			if !yield(i, v) {
				return
			}
		}
	}
}

func (s Slice[T]) At(i int) T {
	return s[i]
}

func (s Slice[T]) Set(i int, v T) {
	s[i] = v
}

// Slice returns the underlying slice.
func (s Slice[T]) Slice() []T {
	return s
}

// Collect copies the elements of any range into a new slice.
func Collect[T any](r pstl.Range[T]) []T {
	out := make([]T, 0, r.Len())
	for _, v := range r.All() {
		out = append(out, v)
	}
	return out
}

var (
	_ pstl.Mutable[int]      = Slice[int](nil)
	_ pstl.RandomAccess[int] = Slice[int](nil)
	_ pstl.Contiguous[int]   = Slice[int](nil)
)
