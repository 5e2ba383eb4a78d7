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
	"fmt"
	"reflect"
	"strings"

	"github.com/ajroetker/go-pstl/pstl"
	"github.com/ajroetker/go-pstl/pstl/contrib/workerpool"
)

// unroll is the number of lane groups processed per unsequenced block.
const unroll = 4

// maxVectorChunks bounds the number of partial results of unsequenced reductions.
const maxVectorChunks = 64

// chunksPerWorker oversubscribes host workers so uneven chunks balance out.
const chunksPerWorker = 4

// executor runs the loops of one algorithm call on its backend.
type executor interface {
	backend() pstl.Backend

	// run executes body over [0, n) in blocks. Blocks may run concurrently.
	run(stage string, n int, body func(lo, hi int)) error

	// tasks executes fn(c) for every c in [0, k). Tasks may run concurrently.
	tasks(stage string, k int, fn func(c int)) error

	// chunks returns the number of chunks to split n elements into. It is in
	// [1, n] for n > 0, so no chunk is empty.
	chunks(n int) int
}

// shape describes the element types and functors of a call. Device kernels
// derive their signature from it.
type shape struct {
	types []reflect.Type
	fns   []any
	lanes int
}

func shapeOf[T any](fns ...any) shape {
	return shape{types: []reflect.Type{reflect.TypeFor[T]()}, fns: fns, lanes: pstl.Lanes[T]()}
}

func shapeOf2[T, U any](fns ...any) shape {
	s := shapeOf[T](fns...)
	s.types = append(s.types, reflect.TypeFor[U]())
	return s
}

func shapeOf3[A, B, U any](fns ...any) shape {
	s := shapeOf2[A, B](fns...)
	s.types = append(s.types, reflect.TypeFor[U]())
	return s
}

// signature returns the structural identity of a call: algorithm, element
// types, and the code of every functor. Two closures created by the same
// function literal share code and therefore a signature.
func (s shape) signature(algorithm string) string {
	var sb strings.Builder
	sb.WriteString(algorithm)
	sb.WriteByte('[')
	for i, t := range s.types {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(t.String())
	}
	sb.WriteByte(']')
	for _, fn := range s.fns {
		v := reflect.ValueOf(fn)
		if v.Kind() == reflect.Func && !v.IsNil() {
			fmt.Fprintf(&sb, ":%#x", v.Pointer())
		} else {
			fmt.Fprintf(&sb, ":%T", fn)
		}
	}
	return sb.String()
}

// begin selects the backend for a call and returns its executor.
func begin(algorithm string, p pstl.Policy, class pstl.OpClass, s shape, ops ...pstl.Operand) (executor, error) {
	b, err := pstl.Dispatch(algorithm, p, class, ops...)
	if err != nil {
		return nil, fmt.Errorf("algo: %s: %w", algorithm, err)
	}
	block := s.lanes * unroll
	if pstl.NoSimdEnv() {
		block = 1
	}
	switch b {
	case pstl.BackendVector:
		return vectorExec{block: block}, nil
	case pstl.BackendHostParallel:
		return hostExec{pool: workerpool.Default(pstl.Workers()), block: 1}, nil
	case pstl.BackendHostParallelVector:
		return hostExec{pool: workerpool.Default(pstl.Workers()), block: block, vector: true}, nil
	case pstl.BackendDeviceUSM, pstl.BackendDeviceBuffer:
		return deviceExec{
			b:    b,
			ctx:  p.Context(),
			name: p.KernelName().Stage(algorithm),
			sig:  s.signature(algorithm),
		}, nil
	default:
		return serialExec{}, nil
	}
}

// serialExec is the reference backend.
type serialExec struct{}

func (serialExec) backend() pstl.Backend { return pstl.BackendSerial }

func (serialExec) run(_ string, n int, body func(lo, hi int)) error {
	if n > 0 {
		body(0, n)
	}
	return nil
}

func (serialExec) tasks(_ string, k int, fn func(c int)) error {
	for c := range k {
		fn(c)
	}
	return nil
}

func (serialExec) chunks(n int) int {
	return min(n, 1)
}

// vectorExec runs on the calling goroutine in blocks of lanes*unroll elements.
type vectorExec struct {
	block int
}

func (vectorExec) backend() pstl.Backend { return pstl.BackendVector }

func (e vectorExec) run(_ string, n int, body func(lo, hi int)) error {
	forBlocks(0, n, e.block, body)
	return nil
}

func (vectorExec) tasks(_ string, k int, fn func(c int)) error {
	for c := range k {
		fn(c)
	}
	return nil
}

func (e vectorExec) chunks(n int) int {
	if n == 0 {
		return 0
	}
	return min(max(n/e.block, 1), maxVectorChunks)
}

// hostExec forks across the shared worker pool.
type hostExec struct {
	pool   *workerpool.Pool
	block  int
	vector bool
}

func (e hostExec) backend() pstl.Backend {
	if e.vector {
		return pstl.BackendHostParallelVector
	}
	return pstl.BackendHostParallel
}

func (e hostExec) run(_ string, n int, body func(lo, hi int)) error {
	if n <= 0 {
		return nil
	}
	w := e.pool.NumWorkers() * chunksPerWorker
	batch := max(pstl.GrainSize(), (n+w-1)/w)
	if e.block > 1 {
		batch = (batch + e.block - 1) / e.block * e.block
		e.pool.ParallelForAtomicBatched(n, batch, func(lo, hi int) {
			forBlocks(lo, hi, e.block, body)
		})
		return nil
	}
	e.pool.ParallelForAtomicBatched(n, batch, body)
	return nil
}

func (e hostExec) tasks(_ string, k int, fn func(c int)) error {
	e.pool.ParallelForAtomic(k, fn)
	return nil
}

func (e hostExec) chunks(n int) int {
	if n == 0 {
		return 0
	}
	return min(max(n/pstl.GrainSize(), 1), e.pool.NumWorkers()*chunksPerWorker)
}

// deviceExec submits one kernel per stage and waits for it.
type deviceExec struct {
	b    pstl.Backend
	ctx  pstl.ExecutionContext
	// name is the policy's kernel name qualified by the algorithm, or empty.
	name pstl.KernelName
	sig  string
}

func (e deviceExec) backend() pstl.Backend { return e.b }

func (e deviceExec) run(stage string, n int, body func(lo, hi int)) error {
	if n <= 0 {
		return nil
	}
	return e.submit(stage, n, body)
}

func (e deviceExec) tasks(stage string, k int, fn func(c int)) error {
	if k <= 0 {
		return nil
	}
	return e.submit(stage, k, func(lo, hi int) {
		for c := lo; c < hi; c++ {
			fn(c)
		}
	})
}

func (e deviceExec) chunks(n int) int {
	if n == 0 {
		return 0
	}
	return min(n, max(e.ctx.MaxComputeUnits(), 1)*chunksPerWorker)
}

func (e deviceExec) submit(stage string, global int, body func(lo, hi int)) error {
	k := pstl.Kernel{
		Signature: e.sig + "/" + stage,
		Global:    global,
		Body:      body,
	}
	if e.name != "" {
		k.Name = e.name.Stage(stage)
	}
	ev, err := e.ctx.Submit(k)
	if err != nil {
		return err
	}
	return ev.Wait()
}

// forBlocks calls body on consecutive blocks of [lo, hi). The last block may be short.
func forBlocks(lo, hi, block int, body func(lo, hi int)) {
	if block <= 1 {
		if lo < hi {
			body(lo, hi)
		}
		return
	}
	for ; lo < hi; lo += block {
		body(lo, min(lo+block, hi))
	}
}

// chunkBounds returns the half-open bounds of chunk c when n elements are split
// into k chunks.
func chunkBounds(n, k, c int) (int, int) {
	return c * n / k, (c + 1) * n / k
}
