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

import "errors"

var (
	// ErrInfeasible is returned when no backend can serve a policy with the
	// capabilities of the given ranges.
	ErrInfeasible = errors.New("pstl: infeasible policy for range capabilities")

	// ErrNoContext is returned for an offload policy without an execution context.
	ErrNoContext = errors.New("pstl: offload policy has no execution context")

	// ErrKernelNameCollision is returned by execution contexts when one kernel
	// name is used for two structurally different kernels.
	ErrKernelNameCollision = errors.New("pstl: kernel name collision")

	// ErrLengthMismatch is returned when an output range is shorter than required.
	ErrLengthMismatch = errors.New("pstl: range length mismatch")
)
