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

package ranges_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-pstl/pstl"
	"github.com/ajroetker/go-pstl/pstl/contrib/algo"
	"github.com/ajroetker/go-pstl/pstl/ranges"
)

func TestSlice(t *testing.T) {
	s := ranges.Of([]int{1, 2, 3})
	s.Set(1, 20)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 20, s.At(1))
	assert.Equal(t, []int{1, 20, 3}, ranges.Collect[int](s))
	assert.Equal(t, []int{1, 20, 3}, s.Slice())
	assert.Empty(t, ranges.Collect[int](ranges.Of[int](nil)))
}

func TestList(t *testing.T) {
	l := ranges.NewList("a", "b", "c")
	require.Equal(t, 3, l.Len())
	l.Set(2, "z")
	assert.Equal(t, []string{"a", "b", "z"}, l.Values())

	var idx []int
	for i := range l.All() {
		idx = append(idx, i)
	}
	assert.Equal(t, []int{0, 1, 2}, idx)

	l.Assign([]string{"x"})
	assert.Equal(t, []string{"x"}, l.Values())

	// Stopping early.
	for _, v := range ranges.NewList(1, 2, 3).All() {
		if v == 2 {
			break
		}
	}
}

func TestReverse(t *testing.T) {
	data := []int{1, 2, 3, 4}
	r := ranges.Reversed[int](ranges.Of(data))
	assert.Equal(t, []int{4, 3, 2, 1}, ranges.Collect[int](r))
	assert.Equal(t, 4, r.At(0))

	r.Set(0, 40)
	assert.Equal(t, []int{1, 2, 3, 40}, data)
	assert.Equal(t, ranges.Of(data), r.Unwrap())
}

func TestCountingAndMapped(t *testing.T) {
	c := ranges.Count[int64](10, 4)
	assert.Equal(t, []int64{10, 11, 12, 13}, ranges.Collect[int64](c))
	assert.Equal(t, int64(12), c.At(2))
	assert.Zero(t, ranges.Count(0, -3).Len())

	sq := ranges.Mapped[int64, int64](c, func(x int64) int64 { return x * x })
	assert.Equal(t, []int64{100, 121, 144, 169}, ranges.Collect[int64](sq))
	assert.Equal(t, 4, sq.Len())
}

func TestZip(t *testing.T) {
	keys := []int{3, 1, 2}
	vals := []string{"c", "a", "b"}
	z := ranges.Zipped[int, string](ranges.Of(keys), ranges.Of(vals))
	require.Equal(t, 3, z.Len())
	assert.Equal(t, ranges.Pair[int, string]{First: 1, Second: "a"}, z.At(1))

	// Sorting a zip sorts both ranges by key.
	err := algo.Sort[ranges.Pair[int, string]](pstl.Par, z, func(a, b ranges.Pair[int, string]) int {
		return a.First - b.First
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, keys)
	assert.Equal(t, []string{"a", "b", "c"}, vals)

	short := ranges.Zipped[int, string](ranges.Of(keys[:2]), ranges.Of(vals))
	assert.Equal(t, 2, short.Len())
}

func TestAlgorithmsOnAdaptors(t *testing.T) {
	sum, err := algo.Reduce[int](pstl.Par, ranges.Count(1, 100), 0, func(a, b int) int { return a + b })
	require.NoError(t, err)
	assert.Equal(t, 5050, sum)

	// A list is accepted by the parallel policy for chunkable algorithms only.
	l := ranges.NewList(5, 3, 8)
	require.NoError(t, algo.Transform[int, int](pstl.Par, l, l, func(x int) int { return x + 1 }))
	assert.Equal(t, []int{6, 4, 9}, l.Values())
	require.ErrorIs(t, algo.Sort[int](pstl.Par, l, func(a, b int) int { return a - b }), pstl.ErrInfeasible)
}
