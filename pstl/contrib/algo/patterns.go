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
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/ajroetker/go-pstl/pstl"
)

type releaser interface {
	release() error
}

// release releases every view and joins their errors into *err.
func release(err *error, vs ...releaser) {
	for _, v := range vs {
		*err = errors.Join(*err, v.release())
	}
}

// reduceChunks folds every chunk of [0, n) with op, then combines the partial
// results in chunk order starting from init.
func reduceChunks[A any](e executor, stage string, n int, init A, load func(i int) A, op func(A, A) A) (A, error) {
	if n == 0 {
		return init, nil
	}
	k := e.chunks(n)
	partials := newTemp[A](k)
	defer freeTemp(partials)
	err := e.tasks(stage, k, func(c int) {
		lo, hi := chunkBounds(n, k, c)
		acc := load(lo)
		for i := lo + 1; i < hi; i++ {
			acc = op(acc, load(i))
		}
		partials[c] = acc
	})
	if err != nil {
		return init, err
	}
	acc := init
	for _, p := range partials {
		acc = op(acc, p)
	}
	return acc, nil
}

// scanChunks computes a prefix scan of in into out in three phases: chunk sums,
// a serial scan of the sums into carries, and a per-chunk scan seeded with the
// carry. in and out may address the same storage.
//
// Exclusive scans always have an init.
func scanChunks[T any](e executor, n int, in func(i int) T, out func(i int, x T), op func(T, T) T, init T, hasInit, exclusive bool) error {
	if n == 0 {
		return nil
	}
	k := e.chunks(n)
	carries := newTemp[T](k)
	defer freeTemp(carries)
	if hasInit {
		carries[0] = init
	}

	if k > 1 {
		sums := newTemp[T](k - 1)
		defer freeTemp(sums)
		err := e.tasks("scan.reduce", k-1, func(c int) {
			lo, hi := chunkBounds(n, k, c)
			acc := in(lo)
			for i := lo + 1; i < hi; i++ {
				acc = op(acc, in(i))
			}
			sums[c] = acc
		})
		if err != nil {
			return err
		}
		for c := 1; c < k; c++ {
			if c == 1 && !hasInit {
				carries[1] = sums[0]
			} else {
				carries[c] = op(carries[c-1], sums[c-1])
			}
		}
	}

	return e.tasks("scan.apply", k, func(c int) {
		lo, hi := chunkBounds(n, k, c)
		acc := carries[c]
		if exclusive {
			for i := lo; i < hi; i++ {
				x := in(i)
				out(i, acc)
				acc = op(acc, x)
			}
			return
		}
		i := lo
		if c == 0 && !hasInit {
			acc = in(lo)
			out(lo, acc)
			i++
		}
		for ; i < hi; i++ {
			acc = op(acc, in(i))
			out(i, acc)
		}
	})
}

// findFirst returns the smallest i in [0, n) with pred(i), or n.
func findFirst(e executor, stage string, n int, pred func(i int) bool) (int, error) {
	if n == 0 {
		return 0, nil
	}
	var found atomic.Int64
	found.Store(int64(n))
	k := e.chunks(n)
	err := e.tasks(stage, k, func(c int) {
		lo, hi := chunkBounds(n, k, c)
		for i := lo; i < hi; i++ {
			if int64(i) >= found.Load() {
				return
			}
			if pred(i) {
				storeMin(&found, int64(i))
				return
			}
		}
	})
	return int(found.Load()), err
}

// findLast returns the largest i in [0, n) with pred(i), or -1.
func findLast(e executor, stage string, n int, pred func(i int) bool) (int, error) {
	if n == 0 {
		return -1, nil
	}
	var found atomic.Int64
	found.Store(-1)
	k := e.chunks(n)
	err := e.tasks(stage, k, func(c int) {
		lo, hi := chunkBounds(n, k, c)
		for i := hi - 1; i >= lo; i-- {
			if int64(i) <= found.Load() {
				return
			}
			if pred(i) {
				storeMax(&found, int64(i))
				return
			}
		}
	})
	return int(found.Load()), err
}

func storeMin(a *atomic.Int64, v int64) {
	for {
		cur := a.Load()
		if v >= cur || a.CompareAndSwap(cur, v) {
			return
		}
	}
}

func storeMax(a *atomic.Int64, v int64) {
	for {
		cur := a.Load()
		if v <= cur || a.CompareAndSwap(cur, v) {
			return
		}
	}
}

// sortSlice sorts every chunk of data, then merges neighbouring runs pairwise
// until one run is left.
func sortSlice[T any](e executor, data []T, cmp func(a, b T) int, stable bool) error {
	n := len(data)
	if n < 2 {
		return nil
	}
	k := e.chunks(n)
	err := e.tasks("sort.chunks", k, func(c int) {
		lo, hi := chunkBounds(n, k, c)
		if stable {
			slices.SortStableFunc(data[lo:hi], cmp)
		} else {
			slices.SortFunc(data[lo:hi], cmp)
		}
	})
	if err != nil || k == 1 {
		return err
	}

	bounds := make([]int, k+1)
	for c := range k {
		bounds[c], _ = chunkBounds(n, k, c)
	}
	bounds[k] = n

	tmp := newTemp[T](n)
	defer freeTemp(tmp)
	src, dst := data, tmp
	inTmp := false
	for len(bounds) > 2 {
		runs := len(bounds) - 1
		pairs := (runs + 1) / 2
		err := e.tasks("sort.merge", pairs, func(p int) {
			lo := bounds[2*p]
			if 2*p+2 >= len(bounds) {
				hi := bounds[2*p+1]
				copy(dst[lo:hi], src[lo:hi])
				return
			}
			mid, hi := bounds[2*p+1], bounds[2*p+2]
			mergeSlices(src[lo:mid], src[mid:hi], dst[lo:hi], cmp)
		})
		if err != nil {
			return err
		}
		next := make([]int, 0, pairs+1)
		for p := range pairs {
			next = append(next, bounds[2*p])
		}
		bounds = append(next, n)
		src, dst = dst, src
		inTmp = !inTmp
	}
	if inTmp {
		return e.run("sort.copy", n, func(lo, hi int) {
			copy(data[lo:hi], tmp[lo:hi])
		})
	}
	return nil
}

// mergeSlices stably merges the sorted slices a and b into out, taking from a
// on ties.
func mergeSlices[T any](a, b, out []T, cmp func(a, b T) int) {
	i, j, d := 0, 0, 0
	for i < len(a) && j < len(b) {
		if cmp(b[j], a[i]) < 0 {
			out[d] = b[j]
			j++
		} else {
			out[d] = a[i]
			i++
		}
		d++
	}
	d += copy(out[d:], a[i:])
	copy(out[d:], b[j:])
}

// coRank returns how many elements of a precede output position d of the
// stable merge of a and b.
func coRank[T any](d int, a, b *view[T], cmp func(a, b T) int) int {
	lo, hi := max(0, d-b.n), min(d, a.n)
	for lo < hi {
		i := (lo + hi) / 2
		if cmp(a.at(i), b.at(d-i-1)) <= 0 {
			lo = i + 1
		} else {
			hi = i
		}
	}
	return lo
}

// mergeViews stably merges a and b into out. Every task produces a contiguous
// block of out and finds its inputs by co-ranking both block ends.
func mergeViews[T any](e executor, a, b, out *view[T], cmp func(a, b T) int) error {
	total := a.n + b.n
	k := e.chunks(total)
	return e.tasks("merge", k, func(c int) {
		d0, d1 := chunkBounds(total, k, c)
		i, i1 := coRank(d0, a, b, cmp), coRank(d1, a, b, cmp)
		j, j1 := d0-i, d1-i1
		for d := d0; d < d1; d++ {
			if j >= j1 || (i < i1 && cmp(b.at(j), a.at(i)) >= 0) {
				out.set(d, a.at(i))
				i++
			} else {
				out.set(d, b.at(j))
				j++
			}
		}
	})
}

// lowerBound returns the first index in [lo, hi) of v whose element is not less
// than x, or hi.
func lowerBound[T any](v *view[T], lo, hi int, x T, cmp func(a, b T) int) int {
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if cmp(v.at(mid), x) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// splitSorted splits the sorted view a into k chunks that start where a value
// changes, so equal elements share a chunk, and splits b at the lower bounds
// of the chunk starts. Chunk c covers a[pa[c]:pa[c+1]] and b[pb[c]:pb[c+1]].
func splitSorted[T any](a, b *view[T], k int, cmp func(a, b T) int) (pa, pb []int) {
	pa = make([]int, k+1)
	pb = make([]int, k+1)
	pa[k], pb[k] = a.n, b.n
	for c := 1; c < k; c++ {
		p := max(c*a.n/k, pa[c-1])
		for p > 0 && p < a.n && cmp(a.at(p-1), a.at(p)) == 0 {
			p++
		}
		pa[c] = p
		if p >= a.n {
			pb[c] = b.n
		} else {
			pb[c] = max(lowerBound(b, 0, b.n, a.at(p), cmp), pb[c-1])
		}
	}
	return pa, pb
}

type setKind int

const (
	setUnion setKind = iota
	setIntersection
	setDifference
	setSymmetricDifference
)

// setSerial applies a set operation to a[i:iEnd] and b[j:jEnd]. Elements found
// in both ranges are taken from a.
func setSerial[T any](kind setKind, a *view[T], i, iEnd int, b *view[T], j, jEnd int, cmp func(a, b T) int, emit func(T)) {
	for i < iEnd && j < jEnd {
		x, y := a.at(i), b.at(j)
		switch c := cmp(x, y); {
		case c < 0:
			if kind != setIntersection {
				emit(x)
			}
			i++
		case c > 0:
			if kind == setUnion || kind == setSymmetricDifference {
				emit(y)
			}
			j++
		default:
			if kind == setUnion || kind == setIntersection {
				emit(x)
			}
			i++
			j++
		}
	}
	if kind != setIntersection {
		for ; i < iEnd; i++ {
			emit(a.at(i))
		}
	}
	if kind == setUnion || kind == setSymmetricDifference {
		for ; j < jEnd; j++ {
			emit(b.at(j))
		}
	}
}

// setOp runs a set operation chunk by chunk into a temporary buffer and then
// stores the chunk outputs contiguously into out. It returns the output length.
func setOp[T any](e executor, kind setKind, a, b, out *view[T], cmp func(a, b T) int) (int, error) {
	k := max(e.chunks(a.n), 1)
	pa, pb := splitSorted(a, b, k, cmp)

	// Chunk c writes at most (pa[c+1]-pa[c]) + (pb[c+1]-pb[c]) elements, from
	// offset pa[c]+pb[c].
	buf := newTemp[T](a.n + b.n)
	defer freeTemp(buf)
	counts := newTemp[int](k)
	defer freeTemp(counts)
	err := e.tasks("set.chunks", k, func(c int) {
		w := pa[c] + pb[c]
		start := w
		setSerial(kind, a, pa[c], pa[c+1], b, pb[c], pb[c+1], cmp, func(x T) {
			buf[w] = x
			w++
		})
		counts[c] = w - start
	})
	if err != nil {
		return 0, err
	}

	offsets := make([]int, k)
	total := 0
	for c, cnt := range counts {
		offsets[c] = total
		total += cnt
	}
	if total > out.n {
		return 0, fmt.Errorf("algo: output holds %d elements, need %d: %w", out.n, total, pstl.ErrLengthMismatch)
	}
	err = e.tasks("set.store", k, func(c int) {
		src := pa[c] + pb[c]
		for t := range counts[c] {
			out.set(offsets[c]+t, buf[src+t])
		}
	})
	return total, err
}

// compact stably stores the elements selected by keep at positions [0, kept)
// through store, followed by the other elements when rest is set. It fails
// without storing anything when more than capacity elements are kept.
func compact[T any](e executor, n int, at func(i int) T, keep func(i int) bool, store func(pos int, x T), rest bool, capacity int) (int, error) {
	if n == 0 {
		return 0, nil
	}
	k := e.chunks(n)
	flags := newTemp[bool](n)
	defer freeTemp(flags)
	before := newTemp[int](k)
	defer freeTemp(before)

	err := e.tasks("compact.mark", k, func(c int) {
		lo, hi := chunkBounds(n, k, c)
		cnt := 0
		for i := lo; i < hi; i++ {
			if keep(i) {
				flags[i] = true
				cnt++
			}
		}
		before[c] = cnt
	})
	if err != nil {
		return 0, err
	}
	kept := 0
	for c, cnt := range before {
		before[c] = kept
		kept += cnt
	}
	if kept > capacity {
		return 0, fmt.Errorf("algo: output holds %d elements, need %d: %w", capacity, kept, pstl.ErrLengthMismatch)
	}

	err = e.tasks("compact.store", k, func(c int) {
		lo, hi := chunkBounds(n, k, c)
		kpos := before[c]
		rpos := kept + lo - before[c]
		for i := lo; i < hi; i++ {
			switch {
			case flags[i]:
				store(kpos, at(i))
				kpos++
			case rest:
				store(rpos, at(i))
				rpos++
			}
		}
	})
	return kept, err
}

// permute rewrites v in place: order fills a temporary buffer, which is then
// copied back over the first count elements of v.
func permute[T any](e executor, v *view[T], order func(tmp []T) (int, error)) (int, error) {
	tmp := newTemp[T](v.n)
	defer freeTemp(tmp)
	count, err := order(tmp)
	if err != nil {
		return 0, err
	}
	err = e.run("permute.copy", count, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			v.set(i, tmp[i])
		}
	})
	return count, err
}

// moveWithin copies count elements of v from position from to position to. The
// regions may overlap.
func moveWithin[T any](e executor, v *view[T], from, to, count int) error {
	if count <= 0 {
		return nil
	}
	if s, ok := v.slice(); ok && e.backend() == pstl.BackendSerial {
		copy(s[to:to+count], s[from:from+count])
		return nil
	}
	tmp := newTemp[T](count)
	defer freeTemp(tmp)
	err := e.run("move.load", count, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			tmp[i] = v.at(from + i)
		}
	})
	if err != nil {
		return err
	}
	return e.run("move.store", count, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			v.set(to+i, tmp[i])
		}
	})
}
