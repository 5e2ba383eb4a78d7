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

// Package pstl provides execution policies and backend dispatch for parallel algorithms.
//
// An algorithm call takes a Policy that names the requested execution mode
// (sequential, unsequenced, parallel, parallel-unsequenced or offload) and one or
// more ranges. The ranges declare what they support by implementing capability
// interfaces (RandomAccess, Contiguous, Segmented, DeviceShareable). Probe turns
// a range's type into a Capability, and Select maps a policy and the capabilities
// of every range taking part in the call to exactly one Backend.
//
// Unsupported combinations are rejected before any element is touched:
//
//	b, err := pstl.Select(pstl.Unseq, pstl.OpIndexed, pstl.Probe(list))
//	// errors.Is(err, pstl.ErrInfeasible) == true for a forward-only list
//
// Unsequenced backends never fall back to a slower backend on their own. The only
// override is the PSTL_FORCE_SEQUENTIAL environment variable, which maps every host
// mode to the serial backend for debugging. Offload policies are never affected.
//
// The algorithm front-ends live in package github.com/ajroetker/go-pstl/pstl/contrib/algo,
// the emulated accelerator in github.com/ajroetker/go-pstl/pstl/device.
package pstl
