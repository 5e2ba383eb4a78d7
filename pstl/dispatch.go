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
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Backend identifies a concrete execution strategy.
type Backend int

const (
	// BackendSerial runs the reference algorithm on the calling goroutine.
	BackendSerial Backend = iota

	// BackendVector runs lane-blocked loops on the calling goroutine.
	BackendVector

	// BackendHostParallel forks chunks across the host worker pool.
	BackendHostParallel

	// BackendHostParallelVector forks chunks across the host worker pool and runs
	// each chunk lane-blocked.
	BackendHostParallelVector

	// BackendDeviceUSM submits kernels that address flat (USM) storage directly.
	BackendDeviceUSM

	// BackendDeviceBuffer submits kernels that access segmented buffers through
	// accessors acquired for the duration of the call.
	BackendDeviceBuffer

	numBackends
)

// String returns a human-readable name for the backend.
func (b Backend) String() string {
	switch b {
	case BackendSerial:
		return "serial"
	case BackendVector:
		return "vector"
	case BackendHostParallel:
		return "host_parallel"
	case BackendHostParallelVector:
		return "host_parallel_vector"
	case BackendDeviceUSM:
		return "device_usm"
	case BackendDeviceBuffer:
		return "device_buffer"
	default:
		return "unknown"
	}
}

// IsDevice reports whether b executes on an ExecutionContext.
func (b Backend) IsDevice() bool {
	return b == BackendDeviceUSM || b == BackendDeviceBuffer
}

// IsParallel reports whether b forks work across the host worker pool.
func (b Backend) IsParallel() bool {
	return b == BackendHostParallel || b == BackendHostParallelVector
}

// BackendSet is a set of backends.
type BackendSet uint8

// AllBackends contains every backend.
const AllBackends = BackendSet(1<<numBackends - 1)

// SetOf returns the set holding bs.
func SetOf(bs ...Backend) BackendSet {
	var s BackendSet
	for _, b := range bs {
		s |= 1 << b
	}
	return s
}

// Has reports whether b is in s.
func (s BackendSet) Has(b Backend) bool {
	return s&(1<<b) != 0
}

// Intersect returns the backends in both s and o.
func (s BackendSet) Intersect(o BackendSet) BackendSet {
	return s & o
}

func (s BackendSet) String() string {
	var names []string
	for b := BackendSerial; b < numBackends; b++ {
		if s.Has(b) {
			names = append(names, b.String())
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// OpClass describes how an algorithm accesses its ranges.
type OpClass int

const (
	// OpIndexed algorithms need random access: sorts, permutations, searches
	// with strided access, shifts.
	OpIndexed OpClass = iota

	// OpChunkable algorithms are element-wise or combine elements with an
	// associative and commutative operation, so forward ranges can be split into
	// materialized sub-ranges and processed in parallel.
	OpChunkable
)

func (c OpClass) String() string {
	if c == OpChunkable {
		return "chunkable"
	}
	return "indexed"
}

// Operand describes one range taking part in an algorithm call.
type Operand struct {
	Cap       Capability
	Residency ExecutionContext
}

// Describe returns the Operand for r.
func Describe[T any](r Range[T]) Operand {
	return Operand{Cap: Probe(r), Residency: ResidencyOf(r)}
}

// Feasible returns every backend able to process a range with capability c for
// an algorithm of class class.
func Feasible(class OpClass, c Capability) BackendSet {
	s := SetOf(BackendSerial)
	hostOK := !c.Has(CapDeviceOnly)
	if hostOK && c.Has(CapRandomAccess|CapContiguous) {
		s |= SetOf(BackendVector, BackendHostParallelVector)
	}
	if hostOK && (c.Has(CapRandomAccess) || class == OpChunkable) {
		s |= SetOf(BackendHostParallel)
	}
	if c.Has(CapDeviceShareable | CapRandomAccess) {
		s |= SetOf(BackendDeviceBuffer)
		if !c.Has(CapSegmented) {
			s |= SetOf(BackendDeviceUSM)
		}
	}
	return s
}

// Select returns the single backend that serves policy p for the given operands.
//
// Multi-range algorithms pass one Operand per range; the feasible backends of all
// operands are intersected. A mode is never served by a backend other than its
// own: when its backend is not feasible, Select returns an error wrapping
// ErrInfeasible instead of falling back.
func Select(p Policy, class OpClass, ops ...Operand) (Backend, error) {
	if p.mode == ModeSequential {
		return BackendSerial, nil
	}
	if p.IsHost() && forceSequential {
		return BackendSerial, nil
	}

	set := AllBackends
	for _, op := range ops {
		set = set.Intersect(Feasible(class, op.Cap))
	}

	switch p.mode {
	case ModeUnsequenced:
		if set.Has(BackendVector) {
			return BackendVector, nil
		}
	case ModeParallel:
		if set.Has(BackendHostParallel) {
			return BackendHostParallel, nil
		}
	case ModeParallelUnsequenced:
		if set.Has(BackendHostParallelVector) {
			return BackendHostParallelVector, nil
		}
	case ModeOffload:
		if p.ctx == nil {
			return BackendSerial, ErrNoContext
		}
		handle := p.ctx.NativeHandle()
		for i, op := range ops {
			if op.Residency == nil || op.Residency.NativeHandle() != handle {
				return BackendSerial, fmt.Errorf("%w: operand %d (%s) is not resident on %s",
					ErrInfeasible, i, op.Cap, handle)
			}
		}
		if set.Has(BackendDeviceUSM) {
			return BackendDeviceUSM, nil
		}
		if set.Has(BackendDeviceBuffer) {
			return BackendDeviceBuffer, nil
		}
	default:
		return BackendSerial, fmt.Errorf("%w: unknown mode %d", ErrInfeasible, p.mode)
	}
	return BackendSerial, fmt.Errorf("%w: mode %s with %s operands %s (feasible %s)",
		ErrInfeasible, p.mode, class, describeOps(ops), set)
}

// Dispatch is Select plus logging and metrics, labelled with the algorithm name.
// Front-ends call it once per call, before touching any element.
func Dispatch(algorithm string, p Policy, class OpClass, ops ...Operand) (Backend, error) {
	b, err := Select(p, class, ops...)
	if err != nil {
		dispatchRejected.WithLabelValues(algorithm, p.mode.String()).Inc()
		logger.Debug("dispatch rejected",
			zap.String("algorithm", algorithm),
			zap.Stringer("policy", p),
			zap.String("operands", describeOps(ops)),
			zap.Error(err))
		return b, err
	}
	dispatchTotal.WithLabelValues(algorithm, b.String()).Inc()
	logger.Debug("dispatch",
		zap.String("algorithm", algorithm),
		zap.Stringer("policy", p),
		zap.Stringer("backend", b))
	return b, nil
}

func describeOps(ops []Operand) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.Cap.String()
	}
	return "[" + strings.Join(parts, "; ") + "]"
}
