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

	"golang.org/x/exp/constraints"

	"github.com/ajroetker/go-pstl/pstl"
)

// Pair is the element type of a Zip range.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip pairs two random-access ranges element by element. Its length is the
// shorter of the two.
type Zip[A, B any] struct {
	a pstl.RandomAccess[A]
	b pstl.RandomAccess[B]
}

// Zipped returns the zip of a and b.
func Zipped[A, B any](a pstl.RandomAccess[A], b pstl.RandomAccess[B]) *Zip[A, B] {
	return &Zip[A, B]{a: a, b: b}
}

func (z *Zip[A, B]) Len() int {
	return min(z.a.Len(), z.b.Len())
}

func (z *Zip[A, B]) All() iter.Seq2[int, Pair[A, B]] {
	return func(yield func(int, Pair[A, B]) bool) {
		for i := range z.Len() {
			if !yield(i, z.At(i)) {
				return
			}
		}
	}
}

func (z *Zip[A, B]) At(i int) Pair[A, B] {
	return Pair[A, B]{First: z.a.At(i), Second: z.b.At(i)}
}

// Set writes both halves of p. Both zipped ranges must be mutable.
func (z *Zip[A, B]) Set(i int, p Pair[A, B]) {
	z.a.(pstl.Mutable[A]).Set(i, p.First)
	z.b.(pstl.Mutable[B]).Set(i, p.Second)
}

// Counting is the read-only range start, start+1, ..., start+n-1.
type Counting[T constraints.Integer] struct {
	start T
	n     int
}

// Count returns the range of n values starting at start.
func Count[T constraints.Integer](start T, n int) Counting[T] {
	return Counting[T]{start: start, n: max(n, 0)}
}

func (c Counting[T]) Len() int {
	return c.n
}

func (c Counting[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range c.n {
			if !yield(i, c.start+T(i)) {
				return
			}
		}
	}
}

func (c Counting[T]) At(i int) T {
	return c.start + T(i)
}

// Transform is a read-only view applying fn to every element of r.
type Transform[T, U any] struct {
	r  pstl.RandomAccess[T]
	fn func(T) U
}

// Mapped returns the view fn(r[0]), fn(r[1]), ...
func Mapped[T, U any](r pstl.RandomAccess[T], fn func(T) U) Transform[T, U] {
	return Transform[T, U]{r: r, fn: fn}
}

func (t Transform[T, U]) Len() int {
	return t.r.Len()
}

func (t Transform[T, U]) All() iter.Seq2[int, U] {
	return func(yield func(int, U) bool) {
		for i := range t.r.Len() {
			if !yield(i, t.fn(t.r.At(i))) {
				return
			}
		}
	}
}

func (t Transform[T, U]) At(i int) U {
	return t.fn(t.r.At(i))
}

var (
	_ pstl.Mutable[Pair[int, int]]      = (*Zip[int, int])(nil)
	_ pstl.RandomAccess[Pair[int, int]] = (*Zip[int, int])(nil)
	_ pstl.RandomAccess[int]            = Counting[int]{}
	_ pstl.RandomAccess[string]         = Transform[int, string]{}
)
