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

// Package algo provides the parallel algorithms of go-pstl.
//
// Every algorithm takes an execution policy first and ranges after it:
//
//	err := algo.Sort(pstl.Par, ranges.Of(data), cmp.Compare[int])
//	sum, err := algo.Reduce(pstl.Seq, ranges.Of(data), 0, func(a, b int) int { return a + b })
//
// Before touching any element, a call asks pstl.Dispatch for the backend that
// serves the policy with the capabilities of its ranges. When no backend fits,
// the call returns an error wrapping pstl.ErrInfeasible and leaves the ranges
// untouched; a policy is never silently served by a weaker backend.
//
// Each algorithm is written once, as a pattern over an executor: the serial,
// vector, host-parallel and device backends only differ in how a loop or a set
// of independent tasks is run. Results are identical across backends for
// associative and commutative operations, and for floating point up to
// reassociation.
//
// # Functors
//
// Under the parallel and device policies functors run concurrently on
// different elements and must not depend on the order of invocation. A panic
// in a functor is re-raised on the caller for host policies and returned as an
// error wrapping device.ErrKernelPanic for offload policies. Functors must not
// call back into algorithms with a host-parallel policy.
//
// # Offload
//
// Offload calls submit one kernel per stage to the policy's context and wait
// for it. Kernels of a policy tagged with a kernel name are named
// "<name>/<algorithm>/<stage>", so one named policy can serve several
// algorithms; reusing a name for a structurally different call of the same
// algorithm fails with pstl.ErrKernelNameCollision. Segmented buffers are
// accessed through accessors acquired for the duration of the call and
// released before it returns.
//
// # Forward ranges
//
// Ranges without random access, such as ranges.List, are copied into a
// temporary slice, processed, and written back. They are accepted by the
// sequential policy for every algorithm and by the parallel policy for
// chunkable algorithms.
package algo
