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

import "github.com/ajroetker/go-pstl/pstl"

// Reduce folds the elements of r into init with op.
//
// op must be associative and commutative: the parallel backends combine
// partial results of chunks, and floating-point results may differ from the
// sequential ones by reassociation.
func Reduce[T any](p pstl.Policy, r pstl.Range[T], init T, op func(a, b T) T) (_ T, err error) {
	e, err := begin("reduce", p, pstl.OpChunkable, shapeOf[T](op), pstl.Describe(r))
	if err != nil {
		return init, err
	}
	in := viewOf(r, e.backend(), false)
	defer release(&err, in)
	return reduceChunks(e, "reduce", in.n, init, in.at, op)
}

// TransformReduce folds transform(x) for every element x of r into init with
// reduce. reduce has the requirements of Reduce.
func TransformReduce[T, A any](p pstl.Policy, r pstl.Range[T], init A, reduce func(a, b A) A, transform func(T) A) (_ A, err error) {
	e, err := begin("transform_reduce", p, pstl.OpChunkable, shapeOf2[T, A](reduce, transform), pstl.Describe(r))
	if err != nil {
		return init, err
	}
	in := viewOf(r, e.backend(), false)
	defer release(&err, in)
	return reduceChunks(e, "transform_reduce", in.n, init, func(i int) A {
		return transform(in.at(i))
	}, reduce)
}

func add(a, b int) int {
	return a + b
}

// Count returns the number of elements of r equal to v.
func Count[T comparable](p pstl.Policy, r pstl.Range[T], v T) (_ int, err error) {
	e, err := begin("count", p, pstl.OpChunkable, shapeOf[T](), pstl.Describe(r))
	if err != nil {
		return 0, err
	}
	in := viewOf(r, e.backend(), false)
	defer release(&err, in)
	return reduceChunks(e, "count", in.n, 0, func(i int) int {
		if in.at(i) == v {
			return 1
		}
		return 0
	}, add)
}

// CountIf returns the number of elements of r satisfying pred.
func CountIf[T any](p pstl.Policy, r pstl.Range[T], pred func(T) bool) (_ int, err error) {
	e, err := begin("count_if", p, pstl.OpChunkable, shapeOf[T](pred), pstl.Describe(r))
	if err != nil {
		return 0, err
	}
	in := viewOf(r, e.backend(), false)
	defer release(&err, in)
	return reduceChunks(e, "count_if", in.n, 0, func(i int) int {
		if pred(in.at(i)) {
			return 1
		}
		return 0
	}, add)
}

// MinElement returns the position of the first smallest element of r, or
// r.Len() when r is empty.
func MinElement[T any](p pstl.Policy, r pstl.Range[T], cmp func(a, b T) int) (int, error) {
	return extremum("min_element", p, r, cmp, func(best, cand T) bool {
		return cmp(cand, best) < 0
	})
}

// MaxElement returns the position of the first largest element of r, or
// r.Len() when r is empty.
func MaxElement[T any](p pstl.Policy, r pstl.Range[T], cmp func(a, b T) int) (int, error) {
	return extremum("max_element", p, r, cmp, func(best, cand T) bool {
		return cmp(best, cand) < 0
	})
}

// extremum reduces positions, replacing the best position by a later one only
// when better reports a strict improvement, so ties keep the first position.
func extremum[T any](algorithm string, p pstl.Policy, r pstl.Range[T], cmp func(a, b T) int, better func(best, cand T) bool) (_ int, err error) {
	e, err := begin(algorithm, p, pstl.OpChunkable, shapeOf[T](cmp), pstl.Describe(r))
	if err != nil {
		return 0, err
	}
	in := viewOf(r, e.backend(), false)
	defer release(&err, in)
	if in.n == 0 {
		return 0, nil
	}
	return reduceChunks(e, algorithm, in.n, 0, func(i int) int { return i }, func(a, b int) int {
		if better(in.at(a), in.at(b)) {
			return b
		}
		return a
	})
}
