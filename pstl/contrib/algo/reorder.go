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

// Sort sorts r in ascending order as determined by cmp. It is not stable.
func Sort[T any](p pstl.Policy, r pstl.Mutable[T], cmp func(a, b T) int) error {
	return sortRange("sort", p, r, cmp, false)
}

// StableSort sorts r in ascending order as determined by cmp, keeping the
// original order of equal elements.
func StableSort[T any](p pstl.Policy, r pstl.Mutable[T], cmp func(a, b T) int) error {
	return sortRange("stable_sort", p, r, cmp, true)
}

func sortRange[T any](algorithm string, p pstl.Policy, r pstl.Mutable[T], cmp func(a, b T) int, stable bool) (err error) {
	e, err := begin(algorithm, p, pstl.OpIndexed, shapeOf[T](cmp), pstl.Describe[T](r))
	if err != nil {
		return err
	}
	v := viewOf[T](r, e.backend(), true)
	defer release(&err, v)
	if s, ok := v.slice(); ok {
		return sortSlice(e, s, cmp, stable)
	}

	// Sort a gathered copy and scatter it back.
	tmp := newTemp[T](v.n)
	defer freeTemp(tmp)
	err = e.run("sort.gather", v.n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			tmp[i] = v.at(i)
		}
	})
	if err != nil {
		return err
	}
	if err := sortSlice(e, tmp, cmp, stable); err != nil {
		return err
	}
	return e.run("sort.scatter", v.n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			v.set(i, tmp[i])
		}
	})
}

// Partition reorders r so that the elements satisfying pred precede the others
// and returns the number of elements satisfying pred. The relative order within
// both groups is preserved.
func Partition[T any](p pstl.Policy, r pstl.Mutable[T], pred func(T) bool) (_ int, err error) {
	e, err := begin("partition", p, pstl.OpIndexed, shapeOf[T](pred), pstl.Describe[T](r))
	if err != nil {
		return 0, err
	}
	v := viewOf[T](r, e.backend(), true)
	defer release(&err, v)
	kept := 0
	_, err = permute(e, v, func(tmp []T) (int, error) {
		var err error
		kept, err = compact(e, v.n, v.at, func(i int) bool { return pred(v.at(i)) },
			func(pos int, x T) { tmp[pos] = x }, true, v.n)
		return v.n, err
	})
	return kept, err
}

// RemoveIf moves the elements of r not satisfying pred to the front, keeping
// their order, and returns their number. The elements past it are unspecified.
func RemoveIf[T any](p pstl.Policy, r pstl.Mutable[T], pred func(T) bool) (_ int, err error) {
	e, err := begin("remove_if", p, pstl.OpIndexed, shapeOf[T](pred), pstl.Describe[T](r))
	if err != nil {
		return 0, err
	}
	v := viewOf[T](r, e.backend(), true)
	defer release(&err, v)
	return permute(e, v, func(tmp []T) (int, error) {
		return compact(e, v.n, v.at, func(i int) bool { return !pred(v.at(i)) },
			func(pos int, x T) { tmp[pos] = x }, false, v.n)
	})
}

// Unique moves the first element of every run of equal elements of r to the
// front and returns their number. The elements past it are unspecified.
func Unique[T comparable](p pstl.Policy, r pstl.Mutable[T]) (int, error) {
	return unique(p, r, func(a, b T) bool { return a == b })
}

// UniqueFunc is Unique with a custom element comparison.
func UniqueFunc[T any](p pstl.Policy, r pstl.Mutable[T], eq func(a, b T) bool) (int, error) {
	return unique(p, r, eq, eq)
}

func unique[T any](p pstl.Policy, r pstl.Mutable[T], eq func(a, b T) bool, fns ...any) (_ int, err error) {
	e, err := begin("unique", p, pstl.OpIndexed, shapeOf[T](fns...), pstl.Describe[T](r))
	if err != nil {
		return 0, err
	}
	v := viewOf[T](r, e.backend(), true)
	defer release(&err, v)
	return permute(e, v, func(tmp []T) (int, error) {
		return compact(e, v.n, v.at, func(i int) bool { return i == 0 || !eq(v.at(i-1), v.at(i)) },
			func(pos int, x T) { tmp[pos] = x }, false, v.n)
	})
}

// CopyIf copies the elements of in satisfying pred, in order, to the front of
// out and returns their number. When out is too short it fails with
// pstl.ErrLengthMismatch and leaves out unchanged.
func CopyIf[T any](p pstl.Policy, in pstl.Range[T], out pstl.Mutable[T], pred func(T) bool) (_ int, err error) {
	e, err := begin("copy_if", p, pstl.OpChunkable, shapeOf[T](pred), pstl.Describe(in), pstl.Describe[T](out))
	if err != nil {
		return 0, err
	}
	src := viewOf(in, e.backend(), false)
	dst := viewOf[T](out, e.backend(), true)
	defer release(&err, src, dst)
	return compact(e, src.n, src.at, func(i int) bool { return pred(src.at(i)) }, dst.set, false, dst.n)
}

// ShiftLeft moves the elements of r n positions towards the front and returns
// the length of the shifted range:
//   - 0 < n < r.Len(): elements [n, d) move to [0, d-n), and d-n is returned;
//   - n >= r.Len(): r is unchanged and 0 is returned;
//   - n <= 0: r is unchanged and r.Len() is returned.
//
// Elements past the returned length are unspecified.
func ShiftLeft[T any](p pstl.Policy, r pstl.Mutable[T], n int) (_ int, err error) {
	e, err := begin("shift_left", p, pstl.OpIndexed, shapeOf[T](), pstl.Describe[T](r))
	if err != nil {
		return 0, err
	}
	d := r.Len()
	switch {
	case n <= 0:
		return d, nil
	case n >= d:
		return 0, nil
	}
	v := viewOf[T](r, e.backend(), true)
	defer release(&err, v)
	return d - n, moveWithin(e, v, n, 0, d-n)
}

// ShiftRight moves the elements of r n positions towards the back and returns
// the position the shifted range starts at:
//   - 0 < n < r.Len(): elements [0, d-n) move to [n, d), and n is returned;
//   - n >= r.Len(): r is unchanged and r.Len() is returned;
//   - n <= 0: r is unchanged and 0 is returned.
//
// Elements before the returned position are unspecified.
func ShiftRight[T any](p pstl.Policy, r pstl.Mutable[T], n int) (_ int, err error) {
	e, err := begin("shift_right", p, pstl.OpIndexed, shapeOf[T](), pstl.Describe[T](r))
	if err != nil {
		return 0, err
	}
	d := r.Len()
	switch {
	case n <= 0:
		return 0, nil
	case n >= d:
		return d, nil
	}
	v := viewOf[T](r, e.backend(), true)
	defer release(&err, v)
	return n, moveWithin(e, v, 0, n, d-n)
}
