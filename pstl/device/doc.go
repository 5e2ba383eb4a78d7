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

// Package device provides an emulated accelerator that implements
// pstl.ExecutionContext.
//
// A Queue executes kernels in submission order on a dispatcher goroutine and
// fans every kernel out in work-groups across its compute units. It stands in
// for a real device runtime: kernels are host closures, and device memory is host
// memory reached through the storage conventions a real runtime would impose.
//
// Two storage conventions are provided:
//
//   - USM allocations (MallocShared, MallocDevice) are flat. Kernels address them
//     directly, and pstl selects the USM backend for them.
//   - Buffers (NewBuffer) are segmented into several blocks. Kernels reach them
//     through an accessor acquired for the call, and releasing a write accessor
//     copies the data back to the host slice the buffer was created from.
//
// The queue also keeps the kernel registry that enforces unique kernel names:
// one name used for two structurally different kernels fails at submit time
// with pstl.ErrKernelNameCollision.
//
// A Queue is owned by the caller and must be closed after its last use:
//
//	q := device.NewQueue(device.WithComputeUnits(8))
//	defer q.Close()
//	policy := pstl.NewDevicePolicy(q)
package device
