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

import "fmt"

// Mode represents the execution mode requested by a Policy.
type Mode int

const (
	// ModeSequential runs the serial reference algorithm on the calling goroutine.
	ModeSequential Mode = iota

	// ModeUnsequenced runs on the calling goroutine in lane-sized blocks.
	// The functor must tolerate reordering within a block.
	ModeUnsequenced

	// ModeParallel forks work across the host worker pool.
	ModeParallel

	// ModeParallelUnsequenced forks across the host worker pool and processes
	// every chunk in lane-sized blocks.
	ModeParallelUnsequenced

	// ModeOffload submits kernels to an ExecutionContext.
	ModeOffload
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeSequential:
		return "seq"
	case ModeUnsequenced:
		return "unseq"
	case ModeParallel:
		return "par"
	case ModeParallelUnsequenced:
		return "par_unseq"
	case ModeOffload:
		return "offload"
	default:
		return "unknown"
	}
}

// Policy is an immutable execution policy tag.
//
// Host policies carry no state. Offload policies borrow an ExecutionContext: the
// policy never closes it, and the caller must keep it open until every algorithm
// call made with the policy has returned.
type Policy struct {
	mode   Mode
	ctx    ExecutionContext
	kernel KernelName
}

// Stateless host policies.
var (
	Seq      = Policy{mode: ModeSequential}
	Unseq    = Policy{mode: ModeUnsequenced}
	Par      = Policy{mode: ModeParallel}
	ParUnseq = Policy{mode: ModeParallelUnsequenced}
)

// DeviceOption configures an offload policy.
type DeviceOption func(*Policy)

// WithKernelName tags the policy with a kernel name.
func WithKernelName(name KernelName) DeviceOption {
	return func(p *Policy) {
		p.kernel = name
	}
}

// NewDevicePolicy returns an offload policy bound to ctx.
//
// The context is not validated here; an unreachable or closed context reports
// its failure through its own Submit and Wait errors.
func NewDevicePolicy(ctx ExecutionContext, opts ...DeviceOption) Policy {
	p := Policy{mode: ModeOffload, ctx: ctx}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Mode returns the execution mode.
func (p Policy) Mode() Mode {
	return p.mode
}

// Context returns the execution context of an offload policy, or nil.
func (p Policy) Context() ExecutionContext {
	return p.ctx
}

// KernelName returns the kernel name tag, empty when unnamed.
func (p Policy) KernelName() KernelName {
	return p.kernel
}

// WithKernelName returns a copy of p tagged with name.
// Host policies ignore kernel names, so for them p is returned unchanged.
func (p Policy) WithKernelName(name KernelName) Policy {
	if p.mode != ModeOffload {
		return p
	}
	p.kernel = name
	return p
}

// IsHost reports whether the policy executes on the host.
func (p Policy) IsHost() bool {
	return p.mode != ModeOffload
}

// Equal reports whether p and other select the same execution.
// Offload policies are equal iff they reference the same context native handle;
// the kernel name is not part of equality.
func (p Policy) Equal(other Policy) bool {
	if p.mode != other.mode {
		return false
	}
	if p.mode != ModeOffload {
		return true
	}
	if p.ctx == nil || other.ctx == nil {
		return p.ctx == nil && other.ctx == nil
	}
	return p.ctx.NativeHandle() == other.ctx.NativeHandle()
}

func (p Policy) String() string {
	if p.mode != ModeOffload {
		return p.mode.String()
	}
	handle := "<nil>"
	if p.ctx != nil {
		handle = p.ctx.NativeHandle()
	}
	if p.kernel == "" {
		return fmt.Sprintf("offload(%s)", handle)
	}
	return fmt.Sprintf("offload(%s, %s)", handle, p.kernel)
}
