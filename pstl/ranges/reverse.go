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

package ranges

import (
	"iter"

	"github.com/ajroetker/go-pstl/pstl"
)

// Reverse is a random-access view of a range traversed back to front.
//
// pstl.Probe looks through it: a reversed slice keeps the capabilities of the
// slice (plus pstl.CapReversed), and the view maps index i to Len()-1-i.
type Reverse[T any] struct {
	r pstl.RandomAccess[T]
}

// Reversed returns r traversed back to front.
func Reversed[T any](r pstl.RandomAccess[T]) *Reverse[T] {
	return &Reverse[T]{r: r}
}

func (v *Reverse[T]) Len() int {
	return v.r.Len()
}

func (v *Reverse[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		n := v.r.Len()
		for i := range n {
			if !yield(i, v.r.At(n-1-i)) {
				return
			}
		}
	}
}

func (v *Reverse[T]) At(i int) T {
	return v.r.At(v.r.Len() - 1 - i)
}

// Set writes through to the wrapped range, which must be mutable.
func (v *Reverse[T]) Set(i int, x T) {
	v.r.(pstl.Mutable[T]).Set(v.r.Len()-1-i, x)
}

// Unwrap returns the wrapped range.
func (v *Reverse[T]) Unwrap() any {
	return v.r
}

var (
	_ pstl.Mutable[int]      = (*Reverse[int])(nil)
	_ pstl.RandomAccess[int] = (*Reverse[int])(nil)
	_ pstl.Unwrapper         = (*Reverse[int])(nil)
)
