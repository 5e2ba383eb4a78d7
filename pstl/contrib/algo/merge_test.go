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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-pstl/pstl"
	"github.com/ajroetker/go-pstl/pstl/ranges"
)

type tagged struct {
	Key int
	Tag string
}

func byKey(a, b tagged) int {
	return intCmp(a.Key, b.Key)
}

func sortedInts(seed uint64, n, limit int) []int {
	s := randomInts(seed, n, limit)
	slices.Sort(s)
	return s
}

func TestMerge(t *testing.T) {
	for _, c := range indexedCases[int](t) {
		for _, n := range testSizes {
			for _, m := range []int{0, 1, 5, 300} {
				t.Run(fmt.Sprintf("%s/n=%d/m=%d", c.name, n, m), func(t *testing.T) {
					a := sortedInts(uint64(n)+200, n, 50)
					b := sortedInts(uint64(m)+300, m, 50)
					want := append(clone(a), b...)
					slices.Sort(want)

					out := c.wrap(make([]int, n+m))
					require.NoError(t, Merge[int](c.policy, pstl.Range[int](c.wrap(clone(a))), c.wrap(clone(b)), out, intCmp))
					require.Equal(t, nonNil(want), ranges.Collect[int](out))
					requireReleased(t)
				})
			}
		}
	}
}

func TestMergeIsStable(t *testing.T) {
	a := []tagged{{1, "a1"}, {2, "a2"}, {2, "a3"}, {5, "a4"}}
	b := []tagged{{0, "b1"}, {2, "b2"}, {5, "b3"}, {6, "b4"}}
	want := []tagged{{0, "b1"}, {1, "a1"}, {2, "a2"}, {2, "a3"}, {2, "b2"}, {5, "a4"}, {5, "b3"}, {6, "b4"}}
	for _, c := range indexedCases[tagged](t) {
		out := c.wrap(make([]tagged, len(want)))
		require.NoError(t, Merge[tagged](c.policy, pstl.Range[tagged](c.wrap(clone(a))), c.wrap(clone(b)), out, byKey))
		if diff := cmp.Diff(want, ranges.Collect[tagged](out)); diff != "" {
			t.Errorf("%s: merge (-want +got):\n%s", c.name, diff)
		}
	}
}

func TestMergeShortOutput(t *testing.T) {
	err := Merge[int](pstl.Par, ranges.Of([]int{1}), ranges.Of([]int{2}), ranges.Of([]int{0}), intCmp)
	require.ErrorIs(t, err, pstl.ErrLengthMismatch)
}

// refSet is the textbook sequential set operation on sorted multisets.
func refSet(kind setKind, a, b []int) []int {
	out := []int{}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			if kind != setIntersection {
				out = append(out, a[i])
			}
			i++
		case b[j] < a[i]:
			if kind == setUnion || kind == setSymmetricDifference {
				out = append(out, b[j])
			}
			j++
		default:
			if kind == setUnion || kind == setIntersection {
				out = append(out, a[i])
			}
			i++
			j++
		}
	}
	if kind != setIntersection {
		out = append(out, a[i:]...)
	}
	if kind == setUnion || kind == setSymmetricDifference {
		out = append(out, b[j:]...)
	}
	return out
}

func TestSetOperations(t *testing.T) {
	ops := []struct {
		name string
		kind setKind
		fn   func(pstl.Policy, pstl.Range[int], pstl.Range[int], pstl.Mutable[int], func(a, b int) int) (int, error)
	}{
		{"union", setUnion, SetUnion[int]},
		{"intersection", setIntersection, SetIntersection[int]},
		{"difference", setDifference, SetDifference[int]},
		{"symmetric_difference", setSymmetricDifference, SetSymmetricDifference[int]},
	}
	for _, c := range indexedCases[int](t) {
		for _, op := range ops {
			for _, n := range []int{0, 1, 10, 500} {
				for _, m := range []int{0, 3, 200} {
					a := sortedInts(uint64(n)+400, n, 40)
					b := sortedInts(uint64(m)+500, m, 40)
					want := refSet(op.kind, a, b)

					out := c.wrap(make([]int, n+m))
					k, err := op.fn(c.policy, c.wrap(clone(a)), c.wrap(clone(b)), out, intCmp)
					require.NoError(t, err)
					require.Equal(t, want, ranges.Collect[int](out)[:k], "%s %s n=%d m=%d", c.name, op.name, n, m)
				}
			}
		}
	}
	requireReleased(t)
}

func TestSetIntersectionTakesFirstRange(t *testing.T) {
	a := []tagged{{1, "a"}, {2, "b"}}
	b := []tagged{{2, "x"}, {3, "y"}}
	for _, c := range indexedCases[tagged](t) {
		out := c.wrap(make([]tagged, 2))
		k, err := SetIntersection[tagged](c.policy, pstl.Range[tagged](c.wrap(clone(a))), c.wrap(clone(b)), out, byKey)
		require.NoError(t, err)
		require.Equal(t, []tagged{{2, "b"}}, ranges.Collect[tagged](out)[:k], c.name)
	}
}

func TestSetUnionDuplicates(t *testing.T) {
	a := ranges.Of([]int{1, 1, 2, 4, 4, 4})
	b := ranges.Of([]int{1, 3, 4, 4, 5})
	out := ranges.Of(make([]int, 11))
	k, err := SetUnion[int](pstl.Par, a, b, out, intCmp)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 3, 4, 4, 4, 5}, []int(out[:k]))
}

func TestSetOperationShortOutput(t *testing.T) {
	out := ranges.Of([]int{-1, -1})
	_, err := SetUnion[int](pstl.Par, ranges.Of([]int{1, 3}), ranges.Of([]int{2, 4}), out, intCmp)
	require.ErrorIs(t, err, pstl.ErrLengthMismatch)
	require.Equal(t, []int{-1, -1}, []int(out))
	requireReleased(t)
}

func TestIncludes(t *testing.T) {
	tests := []struct {
		a, b []int
		want bool
	}{
		{nil, nil, true},
		{[]int{1, 2, 3}, nil, true},
		{nil, []int{1}, false},
		{[]int{1, 2, 3, 4, 5, 6, 7, 8}, []int{2, 4, 8}, true},
		{[]int{1, 2, 3, 4, 5, 6, 7, 8}, []int{2, 4, 9}, false},
		{[]int{1, 2, 3, 4, 5, 6, 7, 8}, []int{0, 4}, false},
		{[]int{1, 1, 2, 2, 2}, []int{1, 1, 2, 2}, true},
		{[]int{1, 2, 2}, []int{1, 1, 2}, false},
		{[]int{1, 2, 3, 4}, []int{1, 2, 3, 4}, true},
	}
	for _, c := range indexedCases[int](t) {
		for _, tt := range tests {
			got, err := Includes[int](c.policy, pstl.Range[int](c.wrap(clone(tt.a))), c.wrap(clone(tt.b)), intCmp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "%s includes(%v, %v)", c.name, tt.a, tt.b)
		}
	}

	a := sortedInts(600, 1000, 100)
	b := slices.Compact(clone(a))
	got, err := Includes[int](pstl.Par, ranges.Of(a), ranges.Of(b), intCmp)
	require.NoError(t, err)
	assert.True(t, got)
	got, err = Includes[int](pstl.Par, ranges.Of(b), ranges.Of(a), intCmp)
	require.NoError(t, err)
	assert.Equal(t, len(a) == len(b), got)
}
