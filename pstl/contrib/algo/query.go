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

// Find returns the position of the first element of r equal to v, or r.Len().
func Find[T comparable](p pstl.Policy, r pstl.Range[T], v T) (int, error) {
	return findIf("find", p, r, func(x T) bool { return x == v })
}

// FindIf returns the position of the first element of r satisfying pred, or r.Len().
func FindIf[T any](p pstl.Policy, r pstl.Range[T], pred func(T) bool) (int, error) {
	return findIf("find_if", p, r, pred, pred)
}

// findIf returns the first position satisfying pred. fns are the caller's
// functors that pred is built from.
func findIf[T any](algorithm string, p pstl.Policy, r pstl.Range[T], pred func(T) bool, fns ...any) (_ int, err error) {
	e, err := begin(algorithm, p, pstl.OpChunkable, shapeOf[T](fns...), pstl.Describe(r))
	if err != nil {
		return 0, err
	}
	in := viewOf(r, e.backend(), false)
	defer release(&err, in)
	return findFirst(e, algorithm, in.n, func(i int) bool { return pred(in.at(i)) })
}

// AllOf reports whether every element of r satisfies pred. It is true for an
// empty range.
func AllOf[T any](p pstl.Policy, r pstl.Range[T], pred func(T) bool) (bool, error) {
	pos, err := findIf("all_of", p, r, func(x T) bool { return !pred(x) }, pred)
	return err == nil && pos == r.Len(), err
}

// AnyOf reports whether some element of r satisfies pred.
func AnyOf[T any](p pstl.Policy, r pstl.Range[T], pred func(T) bool) (bool, error) {
	pos, err := findIf("any_of", p, r, pred, pred)
	return err == nil && pos < r.Len(), err
}

// NoneOf reports whether no element of r satisfies pred. It is true for an
// empty range.
func NoneOf[T any](p pstl.Policy, r pstl.Range[T], pred func(T) bool) (bool, error) {
	pos, err := findIf("none_of", p, r, pred, pred)
	return err == nil && pos == r.Len(), err
}

// IsSortedUntil returns the length of the longest sorted prefix of r: r.Len()
// for sorted input, otherwise the position of the first element that is less
// than its predecessor.
func IsSortedUntil[T any](p pstl.Policy, r pstl.Range[T], cmp func(a, b T) int) (_ int, err error) {
	e, err := begin("is_sorted_until", p, pstl.OpChunkable, shapeOf[T](cmp), pstl.Describe(r))
	if err != nil {
		return 0, err
	}
	in := viewOf(r, e.backend(), false)
	defer release(&err, in)
	if in.n < 2 {
		return in.n, nil
	}
	pos, err := findFirst(e, "is_sorted_until", in.n-1, func(i int) bool {
		return cmp(in.at(i+1), in.at(i)) < 0
	})
	return pos + 1, err
}

// IsSorted reports whether r is sorted with respect to cmp.
func IsSorted[T any](p pstl.Policy, r pstl.Range[T], cmp func(a, b T) int) (bool, error) {
	pos, err := IsSortedUntil(p, r, cmp)
	return err == nil && pos == r.Len(), err
}

// IsPartitioned reports whether every element of r satisfying pred precedes
// every element that does not.
func IsPartitioned[T any](p pstl.Policy, r pstl.Range[T], pred func(T) bool) (_ bool, err error) {
	e, err := begin("is_partitioned", p, pstl.OpChunkable, shapeOf[T](pred), pstl.Describe(r))
	if err != nil {
		return false, err
	}
	in := viewOf(r, e.backend(), false)
	defer release(&err, in)
	first, err := findFirst(e, "is_partitioned.split", in.n, func(i int) bool { return !pred(in.at(i)) })
	if err != nil || first == in.n {
		return err == nil, err
	}
	tail, err := findFirst(e, "is_partitioned.tail", in.n-first, func(i int) bool { return pred(in.at(first + i)) })
	return err == nil && tail == in.n-first, err
}

// Equal reports whether a and b have the same length and equal elements.
func Equal[T comparable](p pstl.Policy, a, b pstl.Range[T]) (bool, error) {
	return equal("equal", p, a, b, func(x, y T) bool { return x == y })
}

// EqualFunc is Equal with a custom element comparison.
func EqualFunc[T any](p pstl.Policy, a, b pstl.Range[T], eq func(a, b T) bool) (bool, error) {
	return equal("equal", p, a, b, eq, eq)
}

func equal[T any](algorithm string, p pstl.Policy, a, b pstl.Range[T], eq func(a, b T) bool, fns ...any) (_ bool, err error) {
	e, err := begin(algorithm, p, pstl.OpChunkable, shapeOf[T](fns...), pstl.Describe(a), pstl.Describe(b))
	if err != nil {
		return false, err
	}
	if a.Len() != b.Len() {
		return false, nil
	}
	va := viewOf(a, e.backend(), false)
	vb := viewOf(b, e.backend(), false)
	defer release(&err, va, vb)
	pos, err := findFirst(e, algorithm, va.n, func(i int) bool { return !eq(va.at(i), vb.at(i)) })
	return err == nil && pos == va.n, err
}

// Search returns the first position where needle occurs in haystack, 0 for an
// empty needle, or haystack.Len() when there is no occurrence.
func Search[T comparable](p pstl.Policy, haystack, needle pstl.Range[T]) (int, error) {
	return search("search", p, haystack, needle, func(x, y T) bool { return x == y }, false)
}

// SearchFunc is Search with a custom element comparison.
func SearchFunc[T any](p pstl.Policy, haystack, needle pstl.Range[T], eq func(a, b T) bool) (int, error) {
	return search("search", p, haystack, needle, eq, false, eq)
}

// FindEnd returns the last position where needle occurs in haystack, or
// haystack.Len() when there is no occurrence or needle is empty.
func FindEnd[T comparable](p pstl.Policy, haystack, needle pstl.Range[T]) (int, error) {
	return search("find_end", p, haystack, needle, func(x, y T) bool { return x == y }, true)
}

// FindEndFunc is FindEnd with a custom element comparison.
func FindEndFunc[T any](p pstl.Policy, haystack, needle pstl.Range[T], eq func(a, b T) bool) (int, error) {
	return search("find_end", p, haystack, needle, eq, true, eq)
}

func search[T any](algorithm string, p pstl.Policy, haystack, needle pstl.Range[T], eq func(a, b T) bool, last bool, fns ...any) (_ int, err error) {
	e, err := begin(algorithm, p, pstl.OpIndexed, shapeOf[T](fns...), pstl.Describe(haystack), pstl.Describe(needle))
	if err != nil {
		return 0, err
	}
	n, m := haystack.Len(), needle.Len()
	switch {
	case m == 0 && last:
		return n, nil
	case m == 0:
		return 0, nil
	case m > n:
		return n, nil
	}
	h := viewOf(haystack, e.backend(), false)
	w := viewOf(needle, e.backend(), false)
	defer release(&err, h, w)
	match := func(i int) bool {
		for j := range m {
			if !eq(h.at(i+j), w.at(j)) {
				return false
			}
		}
		return true
	}
	if !last {
		return findFirst(e, algorithm, n-m+1, match)
	}
	pos, err := findLast(e, algorithm, n-m+1, match)
	if pos < 0 {
		pos = n
	}
	return pos, err
}
