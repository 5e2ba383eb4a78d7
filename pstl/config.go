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

package pstl

import (
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
)

// defaultGrainSize is the minimum number of elements per host-parallel chunk.
const defaultGrainSize = 2048

var (
	// noSimd forces one lane per block. Set from PSTL_NO_SIMD during variable
	// initialization, ahead of the per-arch init functions that read it.
	noSimd = envBool("PSTL_NO_SIMD")

	// forceSequential maps every host mode to BackendSerial. Set from PSTL_FORCE_SEQUENTIAL.
	forceSequential bool

	// workers is the size of the host worker pool. Set from PSTL_WORKERS.
	workers int

	// grainSize is the minimum chunk length for host-parallel backends.
	grainSize atomic.Int64
)

func init() {
	forceSequential = envBool("PSTL_FORCE_SEQUENTIAL")
	workers = envInt("PSTL_WORKERS", runtime.GOMAXPROCS(0))
	grainSize.Store(int64(envInt("PSTL_GRAIN", defaultGrainSize)))
}

// envBool reports whether the environment variable name is set to a true value.
// Any non-empty value that does not parse as a bool counts as true.
func envBool(name string) bool {
	val := os.Getenv(name)
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// envInt parses a positive integer from the environment, or returns def.
func envInt(name string, def int) int {
	val := os.Getenv(name)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// NoSimdEnv reports whether PSTL_NO_SIMD was set at startup.
// When set, unsequenced backends process one lane per block.
func NoSimdEnv() bool {
	return noSimd
}

// ForceSequential reports whether PSTL_FORCE_SEQUENTIAL is in effect.
func ForceSequential() bool {
	return forceSequential
}

// Workers returns the number of host workers used by parallel backends.
func Workers() int {
	return workers
}

// GrainSize returns the minimum number of elements per host-parallel chunk.
func GrainSize() int {
	return int(grainSize.Load())
}

// SetGrainSize sets the minimum number of elements per host-parallel chunk and
// returns the previous value. Values below 1 are treated as 1.
//
// Tests use it to force small inputs through the parallel code paths:
//
//	defer pstl.SetGrainSize(pstl.SetGrainSize(1))
func SetGrainSize(n int) int {
	if n < 1 {
		n = 1
	}
	return int(grainSize.Swap(int64(n)))
}
