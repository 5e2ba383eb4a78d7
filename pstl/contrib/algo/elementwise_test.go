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
	"slices"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-pstl/pstl"
	"github.com/ajroetker/go-pstl/pstl/device"
	"github.com/ajroetker/go-pstl/pstl/ranges"
)

func TestForEach(t *testing.T) {
	for _, c := range rangeCases[int](t) {
		for _, n := range testSizes {
			t.Run(fmt.Sprintf("%s/n=%d", c.name, n), func(t *testing.T) {
				data := randomInts(uint64(n), n, 1000)
				var total, calls atomic.Int64
				err := ForEach[int](c.policy, pstl.Range[int](c.wrap(clone(data))), func(x int) {
					total.Add(int64(x))
					calls.Add(1)
				})
				require.NoError(t, err)
				want := 0
				for _, x := range data {
					want += x
				}
				require.Equal(t, int64(want), total.Load())
				require.Equal(t, int64(n), calls.Load())
				requireReleased(t)
			})
		}
	}
}

func TestTransform(t *testing.T) {
	for _, c := range rangeCases[int](t) {
		for _, n := range testSizes {
			t.Run(fmt.Sprintf("%s/n=%d", c.name, n), func(t *testing.T) {
				data := randomInts(uint64(n)+1, n, 1000)
				want := make([]int, n)
				for i, x := range data {
					want[i] = 3*x + 1
				}

				// In place.
				r := c.wrap(clone(data))
				require.NoError(t, Transform[int, int](c.policy, r, r, func(x int) int { return 3*x + 1 }))
				if diff := cmp.Diff(want, ranges.Collect[int](r)); diff != "" {
					t.Errorf("in place (-want +got):\n%s", diff)
				}

				// Into a second range.
				in, out := c.wrap(clone(data)), c.wrap(make([]int, n))
				require.NoError(t, Transform[int, int](c.policy, in, out, func(x int) int { return 3*x + 1 }))
				if diff := cmp.Diff(want, ranges.Collect[int](out)); diff != "" {
					t.Errorf("out of place (-want +got):\n%s", diff)
				}
				requireReleased(t)
			})
		}
	}
}

func TestTransformChangesType(t *testing.T) {
	in := ranges.Of([]int{1, 22, 333})
	out := ranges.Of(make([]string, 3))
	require.NoError(t, Transform[int, string](pstl.Par, in, out, func(x int) string { return fmt.Sprint(x) }))
	require.Equal(t, []string{"1", "22", "333"}, []string(out))
}

func TestTransform2(t *testing.T) {
	for _, c := range rangeCases[int](t) {
		t.Run(c.name, func(t *testing.T) {
			a := randomInts(1, 257, 100)
			b := randomInts(2, 257, 100)
			out := c.wrap(make([]int, len(a)))
			err := Transform2[int, int, int](c.policy, c.wrap(clone(a)), c.wrap(clone(b)), out,
				func(x, y int) int { return x*y - x })
			require.NoError(t, err)
			got := ranges.Collect[int](out)
			for i := range a {
				require.Equal(t, a[i]*b[i]-a[i], got[i], "index %d", i)
			}
		})
	}
}

func TestTransformShortOutput(t *testing.T) {
	in := ranges.Of([]int{1, 2, 3})
	out := ranges.Of([]int{0, 0})
	err := Transform[int, int](pstl.Par, in, out, func(x int) int { return x })
	require.ErrorIs(t, err, pstl.ErrLengthMismatch)
	require.Equal(t, []int{0, 0}, []int(out))

	err = Transform2[int, int, int](pstl.Seq, in, out, ranges.Of(make([]int, 3)), func(x, y int) int { return x })
	require.ErrorIs(t, err, pstl.ErrLengthMismatch)
}

func TestFillCopyGenerate(t *testing.T) {
	for _, c := range rangeCases[int](t) {
		for _, n := range testSizes {
			t.Run(fmt.Sprintf("%s/n=%d", c.name, n), func(t *testing.T) {
				r := c.wrap(make([]int, n))
				require.NoError(t, Fill(c.policy, r, 42))
				for i, x := range ranges.Collect[int](r) {
					require.Equal(t, 42, x, "fill index %d", i)
				}

				require.NoError(t, Generate(c.policy, r, func(i int) int { return i * i }))
				want := make([]int, n)
				for i := range want {
					want[i] = i * i
				}
				require.Equal(t, want, nonNil(ranges.Collect[int](r)))

				dst := c.wrap(make([]int, n+2))
				require.NoError(t, Copy[int](c.policy, r, dst))
				got := ranges.Collect[int](dst)
				require.Equal(t, want, nonNil(got[:n]))
				require.Equal(t, []int{0, 0}, got[n:])
				requireReleased(t)
			})
		}
	}
}

func TestCopyShortOutput(t *testing.T) {
	err := Copy[int](pstl.ParUnseq, ranges.Of([]int{1, 2, 3}), ranges.Of([]int{0}))
	require.ErrorIs(t, err, pstl.ErrLengthMismatch)
}

func TestReverse(t *testing.T) {
	for _, c := range indexedCases[int](t) {
		for _, n := range testSizes {
			t.Run(fmt.Sprintf("%s/n=%d", c.name, n), func(t *testing.T) {
				data := randomInts(uint64(n)+3, n, 1000)
				r := c.wrap(clone(data))
				require.NoError(t, Reverse(c.policy, r))
				want := clone(data)
				slices.Reverse(want)
				require.Equal(t, nonNil(want), nonNil(ranges.Collect[int](r)))
			})
		}
	}
}

func TestReversedBufferOnDevice(t *testing.T) {
	q := device.NewQueue(device.WithComputeUnits(2))
	defer func() { require.NoError(t, q.Close()) }()

	host := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	buf := device.NewBuffer(q, host, 3)
	rev := ranges.Reversed[int](buf)
	p := pstl.NewDevicePolicy(q)

	// Writing position i of the reversed view writes host[len-1-i].
	require.NoError(t, Generate[int](p, rev, func(i int) int { return i }))
	require.Equal(t, []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, host)
	require.Zero(t, buf.Holders())

	sorted, err := IsSorted[int](p, rev, intCmp)
	require.NoError(t, err)
	require.True(t, sorted)
}

// nonNil maps a nil slice to an empty one so empty results compare equal.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
