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

package algo

import (
	"fmt"

	"github.com/ajroetker/go-pstl/pstl"
)

// checkOutput fails when out cannot hold n elements.
func checkOutput(algorithm string, out, n int) error {
	if out < n {
		return fmt.Errorf("algo: %s: output holds %d elements, need %d: %w", algorithm, out, n, pstl.ErrLengthMismatch)
	}
	return nil
}

// ForEach calls fn on every element of r.
func ForEach[T any](p pstl.Policy, r pstl.Range[T], fn func(T)) (err error) {
	e, err := begin("for_each", p, pstl.OpChunkable, shapeOf[T](fn), pstl.Describe(r))
	if err != nil {
		return err
	}
	in := viewOf(r, e.backend(), false)
	defer release(&err, in)
	return e.run("for_each", in.n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(in.at(i))
		}
	})
}

// Transform stores fn(x) for every element x of in at the same position of out.
// in and out may be the same range.
func Transform[T, U any](p pstl.Policy, in pstl.Range[T], out pstl.Mutable[U], fn func(T) U) (err error) {
	if err := checkOutput("transform", out.Len(), in.Len()); err != nil {
		return err
	}
	e, err := begin("transform", p, pstl.OpChunkable, shapeOf2[T, U](fn), pstl.Describe(in), pstl.Describe[U](out))
	if err != nil {
		return err
	}
	src := viewOf(in, e.backend(), false)
	dst := viewOf[U](out, e.backend(), true)
	defer release(&err, src, dst)
	if s, ok := src.slice(); ok {
		if d, ok := dst.slice(); ok {
			return e.run("transform", src.n, func(lo, hi int) {
				for i, x := range s[lo:hi] {
					d[lo+i] = fn(x)
				}
			})
		}
	}
	return e.run("transform", src.n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst.set(i, fn(src.at(i)))
		}
	})
}

// Transform2 stores fn(x, y) for the elements x and y at every position of a
// and b at the same position of out. b and out must be at least as long as a.
func Transform2[A, B, U any](p pstl.Policy, a pstl.Range[A], b pstl.Range[B], out pstl.Mutable[U], fn func(A, B) U) (err error) {
	if err := checkOutput("transform2", b.Len(), a.Len()); err != nil {
		return err
	}
	if err := checkOutput("transform2", out.Len(), a.Len()); err != nil {
		return err
	}
	e, err := begin("transform2", p, pstl.OpChunkable, shapeOf3[A, B, U](fn),
		pstl.Describe(a), pstl.Describe(b), pstl.Describe[U](out))
	if err != nil {
		return err
	}
	va := viewOf(a, e.backend(), false)
	vb := viewOf(b, e.backend(), false)
	dst := viewOf[U](out, e.backend(), true)
	defer release(&err, va, vb, dst)
	return e.run("transform2", va.n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst.set(i, fn(va.at(i), vb.at(i)))
		}
	})
}

// Fill assigns v to every element of r.
func Fill[T any](p pstl.Policy, r pstl.Mutable[T], v T) (err error) {
	e, err := begin("fill", p, pstl.OpChunkable, shapeOf[T](), pstl.Describe[T](r))
	if err != nil {
		return err
	}
	dst := viewOf[T](r, e.backend(), true)
	defer release(&err, dst)
	if s, ok := dst.slice(); ok {
		return e.run("fill", dst.n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				s[i] = v
			}
		})
	}
	return e.run("fill", dst.n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst.set(i, v)
		}
	})
}

// Copy copies in to the front of out.
func Copy[T any](p pstl.Policy, in pstl.Range[T], out pstl.Mutable[T]) (err error) {
	if err := checkOutput("copy", out.Len(), in.Len()); err != nil {
		return err
	}
	e, err := begin("copy", p, pstl.OpChunkable, shapeOf[T](), pstl.Describe(in), pstl.Describe[T](out))
	if err != nil {
		return err
	}
	src := viewOf(in, e.backend(), false)
	dst := viewOf[T](out, e.backend(), true)
	defer release(&err, src, dst)
	if s, ok := src.slice(); ok {
		if d, ok := dst.slice(); ok {
			return e.run("copy", src.n, func(lo, hi int) {
				copy(d[lo:hi], s[lo:hi])
			})
		}
	}
	return e.run("copy", src.n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst.set(i, src.at(i))
		}
	})
}

// Generate assigns fn(i) to element i of r.
func Generate[T any](p pstl.Policy, r pstl.Mutable[T], fn func(i int) T) (err error) {
	e, err := begin("generate", p, pstl.OpChunkable, shapeOf[T](fn), pstl.Describe[T](r))
	if err != nil {
		return err
	}
	dst := viewOf[T](r, e.backend(), true)
	defer release(&err, dst)
	return e.run("generate", dst.n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst.set(i, fn(i))
		}
	})
}

// Reverse reverses the order of the elements of r.
func Reverse[T any](p pstl.Policy, r pstl.Mutable[T]) (err error) {
	e, err := begin("reverse", p, pstl.OpIndexed, shapeOf[T](), pstl.Describe[T](r))
	if err != nil {
		return err
	}
	v := viewOf[T](r, e.backend(), true)
	defer release(&err, v)
	n := v.n
	return e.run("reverse", n/2, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			j := n - 1 - i
			x, y := v.at(i), v.at(j)
			v.set(i, y)
			v.set(j, x)
		}
	})
}
