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
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ajroetker/go-pstl/pstl"
	"github.com/ajroetker/go-pstl/pstl/contrib/workerpool"
	"github.com/ajroetker/go-pstl/pstl/device"
	"github.com/ajroetker/go-pstl/pstl/ranges"
)

func TestMain(m *testing.M) {
	// Small inputs must still be split into several chunks.
	pstl.SetGrainSize(1)
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/ajroetker/go-pstl/pstl/contrib/workerpool.(*Pool).worker"))
}

// rangeCase is one policy together with a way to build ranges it accepts.
type rangeCase[T any] struct {
	name   string
	policy pstl.Policy

	// forward marks ranges without random access, which only the sequential
	// policy accepts for indexed algorithms.
	forward bool

	wrap func(data []T) pstl.Mutable[T]
}

// rangeCases returns every policy with the range kinds it is served with. The
// offload cases run on a queue closed at the end of the test.
func rangeCases[T any](t *testing.T) []rangeCase[T] {
	t.Helper()
	q := device.NewQueue(device.WithComputeUnits(3))
	t.Cleanup(func() {
		require.NoError(t, q.Close())
	})
	offload := pstl.NewDevicePolicy(q)
	slice := func(data []T) pstl.Mutable[T] { return ranges.Of(data) }
	list := func(data []T) pstl.Mutable[T] { return ranges.NewList(data...) }
	return []rangeCase[T]{
		{name: "seq/slice", policy: pstl.Seq, wrap: slice},
		{name: "seq/list", policy: pstl.Seq, wrap: list, forward: true},
		{name: "unseq/slice", policy: pstl.Unseq, wrap: slice},
		{name: "par/slice", policy: pstl.Par, wrap: slice},
		{name: "par/list", policy: pstl.Par, wrap: list, forward: true},
		{name: "par_unseq/slice", policy: pstl.ParUnseq, wrap: slice},
		{name: "offload/usm", policy: offload, wrap: func(data []T) pstl.Mutable[T] {
			return device.SharedFrom(q, data)
		}},
		{name: "offload/buffer", policy: offload, wrap: func(data []T) pstl.Mutable[T] {
			return device.NewBuffer(q, data, 7)
		}},
	}
}

// indexedCases drops the cases that indexed algorithms reject.
func indexedCases[T any](t *testing.T) []rangeCase[T] {
	var out []rangeCase[T]
	for _, c := range rangeCases[T](t) {
		if !c.forward || c.policy.Mode() == pstl.ModeSequential {
			out = append(out, c)
		}
	}
	return out
}

// testSizes covers empty, tiny, chunk-boundary and multi-segment inputs.
var testSizes = []int{0, 1, 2, 3, 7, 16, 100, 1001}

func randomInts(seed uint64, n, limit int) []int {
	rng := rand.New(rand.NewPCG(seed, 0x5eed))
	out := make([]int, n)
	for i := range out {
		out[i] = rng.IntN(limit)
	}
	return out
}

func randomFloats(seed uint64, n int) []float64 {
	rng := rand.New(rand.NewPCG(seed, 0xf10a7))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

func clone[T any](s []T) []T {
	return append([]T(nil), s...)
}

func intCmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func isEven(x int) bool {
	return x%2 == 0
}

func sum(a, b int) int {
	return a + b
}

// requireReleased checks that a call left no temporaries or pool work behind.
func requireReleased(t *testing.T) {
	t.Helper()
	require.Zero(t, LiveTemporaries(), "temporaries still held")
	require.Zero(t, workerpool.Default(pstl.Workers()).InFlight(), "pool work still in flight")
}
