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


package main

import (
	"cmp"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/samber/lo"

	"github.com/ajroetker/go-pstl/pstl"
	"github.com/ajroetker/go-pstl/pstl/contrib/algo"
	"github.com/ajroetker/go-pstl/pstl/ranges"
)

// wrapFunc turns host data into the range kind a policy is served with.
type wrapFunc func(data []int64) pstl.Mutable[int64]

// benchmark is one algorithm call over a random input. run returns a digest of
// the result so every policy can be checked against the sequential run. class
// is the operation class the algorithm dispatches with.
type benchmark struct {
	name  string
	class pstl.OpClass
	run   func(p pstl.Policy, wrap wrapFunc, input []int64) (uint64, error)
}

var benchmarks = []benchmark{
	{
		name:  "transform",
		class: pstl.OpChunkable,
		run: func(p pstl.Policy, wrap wrapFunc, input []int64) (uint64, error) {
			out := wrap(make([]int64, len(input)))
			err := algo.Transform[int64, int64](p, wrap(input), out, func(v int64) int64 { return 3*v + 1 })
			return digestRange(out), err
		},
	},
	{
		name:  "reduce",
		class: pstl.OpChunkable,
		run: func(p pstl.Policy, wrap wrapFunc, input []int64) (uint64, error) {
			sum, err := algo.Reduce[int64](p, wrap(input), 0, func(a, b int64) int64 { return a + b })
			return uint64(sum), err
		},
	},
	{
		name:  "count_if",
		class: pstl.OpChunkable,
		run: func(p pstl.Policy, wrap wrapFunc, input []int64) (uint64, error) {
			n, err := algo.CountIf[int64](p, wrap(input), func(v int64) bool { return v%3 == 0 })
			return uint64(n), err
		},
	},
	{
		name:  "inclusive_scan",
		class: pstl.OpChunkable,
		run: func(p pstl.Policy, wrap wrapFunc, input []int64) (uint64, error) {
			out := wrap(make([]int64, len(input)))
			err := algo.InclusiveScan[int64](p, wrap(input), out, func(a, b int64) int64 { return a + b })
			return digestRange(out), err
		},
	},
	{
		name:  "find",
		class: pstl.OpChunkable,
		run: func(p pstl.Policy, wrap wrapFunc, input []int64) (uint64, error) {
			var target int64 = -1
			if len(input) > 0 {
				target = input[len(input)*3/4]
			}
			i, err := algo.Find[int64](p, wrap(input), target)
			return uint64(i), err
		},
	},
	{
		name:  "sort",
		class: pstl.OpIndexed,
		run: func(p pstl.Policy, wrap wrapFunc, input []int64) (uint64, error) {
			r := wrap(input)
			err := algo.Sort(p, r, cmp.Compare[int64])
			return digestRange(r), err
		},
	},
	{
		name:  "copy_if",
		class: pstl.OpChunkable,
		run: func(p pstl.Policy, wrap wrapFunc, input []int64) (uint64, error) {
			out := wrap(make([]int64, len(input)))
			n, err := algo.CopyIf[int64](p, wrap(input), out, func(v int64) bool { return v&1 == 0 })
			return digestRange(out) ^ uint64(n), err
		},
	},
}

func benchmarkNames() []string {
	return lo.Map(benchmarks, func(b benchmark, _ int) string { return b.name })
}

func lookupBenchmark(name string) (benchmark, bool) {
	return lo.Find(benchmarks, func(b benchmark) bool { return b.name == name })
}

// digestRange hashes the elements of r in order.
func digestRange(r pstl.Range[int64]) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range ranges.Collect(r) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
