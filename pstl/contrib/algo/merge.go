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
	"sync/atomic"

	"github.com/ajroetker/go-pstl/pstl"
)

// Merge stably merges the sorted ranges a and b into out, taking elements of a
// first on ties. out must not overlap a or b.
func Merge[T any](p pstl.Policy, a, b pstl.Range[T], out pstl.Mutable[T], cmp func(a, b T) int) (err error) {
	if err := checkOutput("merge", out.Len(), a.Len()+b.Len()); err != nil {
		return err
	}
	e, err := begin("merge", p, pstl.OpIndexed, shapeOf[T](cmp),
		pstl.Describe(a), pstl.Describe(b), pstl.Describe[T](out))
	if err != nil {
		return err
	}
	va := viewOf(a, e.backend(), false)
	vb := viewOf(b, e.backend(), false)
	dst := viewOf[T](out, e.backend(), true)
	defer release(&err, va, vb, dst)
	return mergeViews(e, va, vb, dst, cmp)
}

// SetUnion stores the sorted union of the sorted ranges a and b at the front of
// out and returns its length. An element occurring m times in a and n times in
// b occurs max(m, n) times in the union; elements found in both are taken from a.
func SetUnion[T any](p pstl.Policy, a, b pstl.Range[T], out pstl.Mutable[T], cmp func(a, b T) int) (int, error) {
	return setAlgorithm("set_union", setUnion, p, a, b, out, cmp)
}

// SetIntersection stores the elements of the sorted range a that are also in
// the sorted range b at the front of out and returns their number. Elements are
// always copied from a.
func SetIntersection[T any](p pstl.Policy, a, b pstl.Range[T], out pstl.Mutable[T], cmp func(a, b T) int) (int, error) {
	return setAlgorithm("set_intersection", setIntersection, p, a, b, out, cmp)
}

// SetDifference stores the elements of the sorted range a that are not in the
// sorted range b at the front of out and returns their number.
func SetDifference[T any](p pstl.Policy, a, b pstl.Range[T], out pstl.Mutable[T], cmp func(a, b T) int) (int, error) {
	return setAlgorithm("set_difference", setDifference, p, a, b, out, cmp)
}

// SetSymmetricDifference stores the elements found in exactly one of the sorted
// ranges a and b, in order, at the front of out and returns their number.
func SetSymmetricDifference[T any](p pstl.Policy, a, b pstl.Range[T], out pstl.Mutable[T], cmp func(a, b T) int) (int, error) {
	return setAlgorithm("set_symmetric_difference", setSymmetricDifference, p, a, b, out, cmp)
}

// setAlgorithm fails with pstl.ErrLengthMismatch, leaving out unchanged, when
// the result does not fit.
func setAlgorithm[T any](algorithm string, kind setKind, p pstl.Policy, a, b pstl.Range[T], out pstl.Mutable[T], cmp func(a, b T) int) (_ int, err error) {
	e, err := begin(algorithm, p, pstl.OpIndexed, shapeOf[T](cmp),
		pstl.Describe(a), pstl.Describe(b), pstl.Describe[T](out))
	if err != nil {
		return 0, err
	}
	va := viewOf(a, e.backend(), false)
	vb := viewOf(b, e.backend(), false)
	dst := viewOf[T](out, e.backend(), true)
	defer release(&err, va, vb, dst)
	return setOp(e, kind, va, vb, dst, cmp)
}

// Includes reports whether every element of the sorted range b is in the sorted
// range a, counting repeated elements.
func Includes[T any](p pstl.Policy, a, b pstl.Range[T], cmp func(a, b T) int) (_ bool, err error) {
	e, err := begin("includes", p, pstl.OpIndexed, shapeOf[T](cmp), pstl.Describe(a), pstl.Describe(b))
	if err != nil {
		return false, err
	}
	if b.Len() == 0 {
		return true, nil
	}
	va := viewOf(a, e.backend(), false)
	vb := viewOf(b, e.backend(), false)
	defer release(&err, va, vb)

	// Split b at value changes; each chunk of b is matched against the part of
	// a holding the same values.
	k := e.chunks(vb.n)
	pb, pa := splitSorted(vb, va, k, cmp)
	var missing atomic.Bool
	err = e.tasks("includes", k, func(c int) {
		if missing.Load() {
			return
		}
		i, j := pa[c], pb[c]
		for j < pb[c+1] {
			if i >= pa[c+1] {
				missing.Store(true)
				return
			}
			switch x, y := va.at(i), vb.at(j); {
			case cmp(y, x) < 0:
				missing.Store(true)
				return
			case cmp(x, y) < 0:
				i++
			default:
				i++
				j++
			}
		}
	})
	return err == nil && !missing.Load(), err
}
