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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-pstl/pstl"
	"github.com/ajroetker/go-pstl/pstl/device"
	"github.com/ajroetker/go-pstl/pstl/ranges"
)

func newQueue(t *testing.T) *device.Queue {
	t.Helper()
	q := device.NewQueue(device.WithComputeUnits(2))
	t.Cleanup(func() {
		require.NoError(t, q.Close())
	})
	return q
}

func TestInfeasibleCallsDoNoWork(t *testing.T) {
	q := newQueue(t)
	other := newQueue(t)

	t.Run("unseq over forward range", func(t *testing.T) {
		l := ranges.NewList(3, 1, 2)
		_, err := Reduce[int](pstl.Unseq, l, 0, sum)
		require.ErrorIs(t, err, pstl.ErrInfeasible)
		require.ErrorIs(t, Fill[int](pstl.ParUnseq, l, 0), pstl.ErrInfeasible)
		require.Equal(t, []int{3, 1, 2}, l.Values())
	})

	t.Run("par sort over forward range", func(t *testing.T) {
		l := ranges.NewList(3, 1, 2)
		require.ErrorIs(t, Sort[int](pstl.Par, l, intCmp), pstl.ErrInfeasible)
		require.Equal(t, []int{3, 1, 2}, l.Values())

		// The sequential policy accepts every range.
		require.NoError(t, Sort[int](pstl.Seq, l, intCmp))
		require.Equal(t, []int{1, 2, 3}, l.Values())
	})

	t.Run("offload over host memory", func(t *testing.T) {
		data := []int{3, 1, 2}
		err := Sort[int](pstl.NewDevicePolicy(q), ranges.Of(data), intCmp)
		require.ErrorIs(t, err, pstl.ErrInfeasible)
		require.Equal(t, []int{3, 1, 2}, data)
	})

	t.Run("offload over another queue", func(t *testing.T) {
		u := device.SharedFrom(other, []int{3, 1, 2})
		require.ErrorIs(t, Sort[int](pstl.NewDevicePolicy(q), u, intCmp), pstl.ErrInfeasible)
		require.NoError(t, Sort[int](pstl.NewDevicePolicy(other), u, intCmp))
		require.Equal(t, []int{1, 2, 3}, u.Slice())
	})

	t.Run("offload mixing queues", func(t *testing.T) {
		a := device.SharedFrom(q, []int{1, 2})
		b := device.SharedFrom(other, []int{1, 2})
		_, err := Equal[int](pstl.NewDevicePolicy(q), a, b)
		require.ErrorIs(t, err, pstl.ErrInfeasible)
	})

	t.Run("device-only memory on the host", func(t *testing.T) {
		d := device.MallocDevice[int](q, 4)
		for _, p := range []pstl.Policy{pstl.Unseq, pstl.Par, pstl.ParUnseq} {
			require.ErrorIs(t, Fill[int](p, d, 1), pstl.ErrInfeasible, "policy %s", p)
		}
		require.NoError(t, Fill[int](pstl.NewDevicePolicy(q), d, 7))
		host := make([]int, 4)
		require.NoError(t, d.CopyTo(host))
		require.Equal(t, []int{7, 7, 7, 7}, host)
	})

	t.Run("offload without context", func(t *testing.T) {
		_, err := Reduce[int](pstl.NewDevicePolicy(nil), ranges.Of([]int{1}), 0, sum)
		require.ErrorIs(t, err, pstl.ErrNoContext)
	})

	requireReleased(t)
}

func TestNamedKernels(t *testing.T) {
	q := newQueue(t)
	first := pstl.NewDevicePolicy(q, pstl.WithKernelName(pstl.NewKernelName("sort", 1)))
	second := first.WithKernelName(pstl.NewKernelName("sort", 2))
	require.True(t, first.Equal(second))

	// Two structurally identical calls with distinct names.
	a := device.SharedFrom(q, randomInts(1, 500, 100))
	b := device.SharedFrom(q, randomInts(2, 500, 100))
	require.NoError(t, Sort[int](first, a, intCmp))
	require.NoError(t, Sort[int](second, b, intCmp))
	for _, u := range []*device.USM[int]{a, b} {
		sorted, err := IsSorted[int](pstl.Seq, u, intCmp)
		require.NoError(t, err)
		require.True(t, sorted)
	}

	// Reusing a name for the same kernel is a relaunch.
	require.NoError(t, Sort[int](first, b, intCmp))
}

func TestKernelNameCollision(t *testing.T) {
	q := newQueue(t)
	p := pstl.NewDevicePolicy(q, pstl.WithKernelName(pstl.UniqueKernelName("scale")))
	u := device.SharedFrom(q, []int{1, 2, 3})

	require.NoError(t, Transform[int, int](p, u, u, func(x int) int { return x * 2 }))
	err := Transform[int, int](p, u, u, func(x int) int { return x * 3 })
	require.ErrorIs(t, err, pstl.ErrKernelNameCollision)
	require.Equal(t, []int{2, 4, 6}, u.Slice())

	// Unnamed kernels never collide.
	anon := pstl.NewDevicePolicy(q)
	require.NoError(t, Transform[int, int](anon, u, u, func(x int) int { return x * 3 }))
	require.NoError(t, Transform[int, int](anon, u, u, func(x int) int { return x + 1 }))
	require.Equal(t, []int{7, 13, 19}, u.Slice())
}

func TestNamedPolicyAcrossAlgorithms(t *testing.T) {
	q := newQueue(t)
	p := pstl.NewDevicePolicy(q, pstl.WithKernelName(pstl.NewKernelName("k", 0)))

	// Partition and RemoveIf run the same compaction stages.
	u := device.SharedFrom(q, []int{5, 2, 8, 1, 4, 7})
	k, err := Partition[int](p, u, isEven)
	require.NoError(t, err)
	require.Equal(t, 3, k)
	require.Equal(t, []int{2, 8, 4, 5, 1, 7}, u.Slice())

	kept, err := RemoveIf[int](p, u, isEven)
	require.NoError(t, err)
	require.Equal(t, []int{5, 1, 7}, u.Slice()[:kept])

	require.NoError(t, Sort[int](p, u, intCmp))
	require.NoError(t, InclusiveScan[int](p, u, u, sum))
}

func TestReversedDeviceRanges(t *testing.T) {
	q := newQueue(t)

	// A reversed host slice must not decide how reversed device memory probes.
	require.NoError(t, Fill[int](pstl.Par, ranges.Reversed[int](ranges.Of(make([]int, 3))), 1))

	u := device.SharedFrom(q, []int{0, 0, 0})
	require.NoError(t, Generate[int](pstl.NewDevicePolicy(q), ranges.Reversed[int](u), func(i int) int { return i }))
	require.Equal(t, []int{2, 1, 0}, u.Slice())

	d := device.MallocDevice[int](q, 3)
	require.ErrorIs(t, Fill[int](pstl.Par, ranges.Reversed[int](d), 1), pstl.ErrInfeasible)
	require.NoError(t, Fill[int](pstl.NewDevicePolicy(q), ranges.Reversed[int](d), 9))
	host := make([]int, 3)
	require.NoError(t, d.CopyTo(host))
	require.Equal(t, []int{9, 9, 9}, host)
	requireReleased(t)
}

func TestFunctorPanics(t *testing.T) {
	data := randomInts(9, 1000, 100)

	t.Run("host", func(t *testing.T) {
		for _, p := range []pstl.Policy{pstl.Seq, pstl.Unseq, pstl.Par, pstl.ParUnseq} {
			assert.Panics(t, func() {
				_ = ForEach[int](p, ranges.Of(clone(data)), func(x int) {
					if x == data[500] {
						panic("bad element")
					}
				})
			}, "policy %s", p)
			requireReleased(t)
		}
	})

	t.Run("offload", func(t *testing.T) {
		q := newQueue(t)
		buf := device.NewBuffer(q, clone(data), 64)
		var calls atomic.Int64
		err := ForEach[int](pstl.NewDevicePolicy(q), buf, func(x int) {
			calls.Add(1)
			if x == data[500] {
				panic("bad element")
			}
		})
		require.ErrorIs(t, err, device.ErrKernelPanic)
		require.Zero(t, buf.Holders())
		require.ErrorIs(t, q.Wait(), device.ErrKernelPanic)
		requireReleased(t)
	})
}

func TestAsync(t *testing.T) {
	q := newQueue(t)
	data := randomInts(11, 2000, 1000)
	want := 0
	for _, x := range data {
		want += x
	}

	sumF := ReduceAsync[int](pstl.Par, ranges.Of(data), 0, sum)
	u := device.SharedFrom(q, clone(data))
	sortF := SortAsync[int](pstl.NewDevicePolicy(q), u, intCmp)
	filled := ranges.Of(make([]int, 100))
	fillF := FillAsync[int](pstl.ParUnseq, filled, 5)
	var seen atomic.Int64
	eachF := ForEachAsync[int](pstl.Par, ranges.Of(data), func(int) { seen.Add(1) })

	got, err := sumF.Wait()
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = sortF.Wait()
	require.NoError(t, err)
	sorted, err := IsSorted[int](pstl.Seq, u, intCmp)
	require.NoError(t, err)
	require.True(t, sorted)

	_, err = fillF.Wait()
	require.NoError(t, err)
	for _, x := range filled {
		require.Equal(t, 5, x)
	}

	<-eachF.Done()
	_, err = eachF.Wait()
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), seen.Load())

	// Infeasible calls fail without starting work.
	_, err = SortAsync[int](pstl.Par, ranges.NewList(2, 1), intCmp).Wait()
	require.ErrorIs(t, err, pstl.ErrInfeasible)
	requireReleased(t)
}

func TestKernelSignature(t *testing.T) {
	double := func(x int) int { return x * 2 }
	triple := func(x int) int { return x * 3 }
	s1 := shapeOf2[int, int](double).signature("transform")
	require.Equal(t, s1, shapeOf2[int, int](double).signature("transform"))
	require.NotEqual(t, s1, shapeOf2[int, int](triple).signature("transform"))
	require.NotEqual(t, s1, shapeOf2[int, float64](double).signature("transform"))
	require.NotEqual(t, s1, shapeOf2[int, int](double).signature("for_each"))
	require.Contains(t, s1, "transform[int,int]")
}

func TestChunkBounds(t *testing.T) {
	for _, n := range []int{1, 2, 7, 100, 1001} {
		for k := 1; k <= n && k <= 40; k++ {
			prev := 0
			for c := range k {
				lo, hi := chunkBounds(n, k, c)
				require.Equal(t, prev, lo)
				require.Less(t, lo, hi, "n=%d k=%d chunk %d is empty", n, k, c)
				prev = hi
			}
			require.Equal(t, n, prev)
		}
	}
}
