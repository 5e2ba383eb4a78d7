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

// ExecutionContext is an accelerator queue that offload policies submit kernels to.
// It is owned by the caller; policies only borrow it.
type ExecutionContext interface {
	// Submit enqueues k and returns an event that completes when k has run.
	Submit(k Kernel) (Event, error)

	// Wait blocks until every kernel submitted so far has completed.
	Wait() error

	// NativeHandle identifies the underlying queue. Two contexts with the same
	// handle are the same queue.
	NativeHandle() string

	// MaxComputeUnits is a scheduling hint for how many work-groups can run at once.
	MaxComputeUnits() int
}

// Event tracks a submitted kernel.
type Event interface {
	// Wait blocks until the kernel has completed and returns its error, if any.
	Wait() error
}

// Kernel is the description of device work generated for one algorithm stage.
type Kernel struct {
	// Name is the kernel's identity on its context.
	Name KernelName

	// Signature describes the structure of the kernel: algorithm, stage,
	// element type and functor code. Two kernels with the same Name must have
	// the same Signature.
	Signature string

	// Global is the number of work items.
	Global int

	// Body executes the work items in [lo, hi).
	Body func(lo, hi int)
}

// ID returns the hashed identity of the kernel.
func (k Kernel) ID() uint64 {
	return KernelID(k.Name, k.Signature)
}

// Accessor is a view of device storage acquired for the duration of one
// algorithm call. Release ends the access and makes the writes visible to the
// host.
type Accessor[T any] interface {
	Len() int
	At(i int) T
	Set(i int, v T)
	Release() error
}

// Accessible is implemented by segmented device ranges. Device backends do not
// address their storage directly; they acquire an accessor per call.
type Accessible[T any] interface {
	Access() Accessor[T]
}
