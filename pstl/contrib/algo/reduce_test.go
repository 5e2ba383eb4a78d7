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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/ajroetker/go-pstl/pstl"
	"github.com/ajroetker/go-pstl/pstl/ranges"
)

func TestReduce(t *testing.T) {
	for _, c := range rangeCases[int](t) {
		for _, n := range testSizes {
			t.Run(fmt.Sprintf("%s/n=%d", c.name, n), func(t *testing.T) {
				data := randomInts(uint64(n)+10, n, 1000)
				want := 7
				for _, x := range data {
					want += x
				}
				got, err := Reduce[int](c.policy, c.wrap(clone(data)), 7, sum)
				require.NoError(t, err)
				require.Equal(t, want, got)
				requireReleased(t)
			})
		}
	}
}

func TestReduceFloatWithinTolerance(t *testing.T) {
	data := randomFloats(3, 100_000)
	want, err := Reduce[float64](pstl.Seq, ranges.Of(data), 0, func(a, b float64) float64 { return a + b })
	require.NoError(t, err)
	require.True(t, scalar.EqualWithinAbsOrRel(floats.Sum(data), want, 1e-9, 1e-12))

	for _, c := range rangeCases[float64](t) {
		t.Run(c.name, func(t *testing.T) {
			got, err := Reduce[float64](c.policy, c.wrap(clone(data)), 0, func(a, b float64) float64 { return a + b })
			require.NoError(t, err)
			assert.Truef(t, scalar.EqualWithinAbsOrRel(want, got, 1e-9, 1e-12),
				"reduce = %v, sequential = %v", got, want)
		})
	}
}

func TestTransformReduce(t *testing.T) {
	data := randomFloats(4, 5000)
	var want float64
	for _, x := range data {
		want += x * x
	}
	for _, c := range rangeCases[float64](t) {
		t.Run(c.name, func(t *testing.T) {
			got, err := TransformReduce[float64, float64](c.policy, c.wrap(clone(data)), 0,
				func(a, b float64) float64 { return a + b },
				func(x float64) float64 { return x * x })
			require.NoError(t, err)
			assert.Truef(t, scalar.EqualWithinAbsOrRel(want, got, 1e-9, 1e-12), "got %v, want %v", got, want)
		})
	}
}

func TestTransformReduceChangesType(t *testing.T) {
	words := ranges.Of([]string{"a", "bb", "", "dddd"})
	got, err := TransformReduce[string, int](pstl.Par, words, 0, sum, func(s string) int { return len(s) })
	require.NoError(t, err)
	require.Equal(t, 7, got)
}

func TestCount(t *testing.T) {
	data := randomInts(5, 3000, 10)
	wantThrees, wantEven := 0, 0
	for _, x := range data {
		if x == 3 {
			wantThrees++
		}
		if isEven(x) {
			wantEven++
		}
	}
	for _, c := range rangeCases[int](t) {
		t.Run(c.name, func(t *testing.T) {
			got, err := Count[int](c.policy, c.wrap(clone(data)), 3)
			require.NoError(t, err)
			require.Equal(t, wantThrees, got)

			got, err = CountIf[int](c.policy, c.wrap(clone(data)), isEven)
			require.NoError(t, err)
			require.Equal(t, wantEven, got)
		})
	}
}

func TestMinMaxElementFirstOfTies(t *testing.T) {
	data := []int{5, 1, 9, 1, 3, 9, 0, 9, 0}
	for _, c := range rangeCases[int](t) {
		t.Run(c.name, func(t *testing.T) {
			lo, err := MinElement[int](c.policy, c.wrap(clone(data)), intCmp)
			require.NoError(t, err)
			require.Equal(t, 6, lo)

			hi, err := MaxElement[int](c.policy, c.wrap(clone(data)), intCmp)
			require.NoError(t, err)
			require.Equal(t, 2, hi)

			empty, err := MinElement[int](c.policy, c.wrap(nil), intCmp)
			require.NoError(t, err)
			require.Zero(t, empty)
		})
	}
}

func TestMinMaxElementRandom(t *testing.T) {
	for _, n := range testSizes[1:] {
		data := randomInts(uint64(n)+20, n, 50)
		wantMin, wantMax := 0, 0
		for i, x := range data {
			if x < data[wantMin] {
				wantMin = i
			}
			if x > data[wantMax] {
				wantMax = i
			}
		}
		for _, c := range rangeCases[int](t) {
			got, err := MinElement[int](c.policy, c.wrap(clone(data)), intCmp)
			require.NoError(t, err)
			require.Equal(t, wantMin, got, "%s n=%d", c.name, n)

			got, err = MaxElement[int](c.policy, c.wrap(clone(data)), intCmp)
			require.NoError(t, err)
			require.Equal(t, wantMax, got, "%s n=%d", c.name, n)
		}
	}
}
