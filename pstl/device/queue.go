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

package device

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"github.com/Yiling-J/theine-go"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-pstl/pstl"
)

const (
	defaultRingDepth    = 64
	defaultProgramCache = 512

	// groupsPerUnit is how many work-groups a kernel is split into per compute unit.
	groupsPerUnit = 4
)

var kernelsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "device",
	Name:      "kernels_total",
	Help:      "The total number of kernels executed, by outcome.",
}, []string{"status"})

// RegisterMetrics registers the device counters with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(kernelsTotal)
}

// Info describes the emulated device behind a Queue.
type Info struct {
	Name             string
	Vendor           string
	ComputeUnits     int
	MaxWorkGroupSize int
}

// QueueOption configures NewQueue.
type QueueOption func(*queueConfig)

type queueConfig struct {
	name         string
	units        int
	ringDepth    int
	programCache int64
	tracer       trace.Tracer
}

// WithComputeUnits sets the number of work-groups that run at once.
// The default is GOMAXPROCS.
func WithComputeUnits(n int) QueueOption {
	return func(c *queueConfig) {
		c.units = n
	}
}

// WithRingDepth sets how many submitted kernels can wait for execution before
// Submit applies back-pressure.
func WithRingDepth(n int) QueueOption {
	return func(c *queueConfig) {
		c.ringDepth = n
	}
}

// WithProgramCacheSize bounds the number of compiled programs kept per queue.
func WithProgramCacheSize(n int) QueueOption {
	return func(c *queueConfig) {
		c.programCache = int64(n)
	}
}

// WithTracerProvider makes the queue record one span per executed kernel.
func WithTracerProvider(tp trace.TracerProvider) QueueOption {
	return func(c *queueConfig) {
		c.tracer = tp.Tracer("github.com/ajroetker/go-pstl/pstl/device")
	}
}

// WithName sets the device name reported by Info.
func WithName(name string) QueueOption {
	return func(c *queueConfig) {
		c.name = name
	}
}

// command is one submitted kernel waiting in the ring.
type command struct {
	kernel pstl.Kernel
	prog   *program
	event  *Event
}

// program is the compiled form of a kernel identity.
type program struct {
	id        uint64
	name      pstl.KernelName
	signature string
	launches  atomic.Int64
}

// Queue is an in-order emulated device queue. It implements pstl.ExecutionContext.
type Queue struct {
	handle string
	info   Info
	tracer trace.Tracer

	// ring holds submitted commands. Producers are serialized by submitMu; the
	// dispatcher goroutine is the single consumer.
	ring     lfq.SPSC[*command]
	submitMu sync.Mutex
	doorbell chan struct{}
	done     chan struct{}
	stopped  chan struct{}
	closed   bool

	kernels  sync.Map // pstl.KernelName -> signature
	programs *theine.Cache[uint64, *program]

	mu       sync.Mutex
	idle     *sync.Cond
	pending  int
	asyncErr error
}

// NewQueue creates a queue and starts its dispatcher goroutine.
// The caller must Close it.
func NewQueue(opts ...QueueOption) *Queue {
	cfg := queueConfig{
		name:         "pstl emulated device",
		units:        runtime.GOMAXPROCS(0),
		ringDepth:    defaultRingDepth,
		programCache: defaultProgramCache,
		tracer:       otel.Tracer("github.com/ajroetker/go-pstl/pstl/device"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.units = max(cfg.units, 1)

	programs, err := theine.NewBuilder[uint64, *program](max(cfg.programCache, 1)).Build()
	if err != nil {
		// Only reachable with an invalid size, which is clamped above.
		panic(fmt.Sprintf("device: program cache: %v", err))
	}

	q := &Queue{
		handle: uuid.New().String(),
		info: Info{
			Name:             cfg.name,
			Vendor:           "go-pstl",
			ComputeUnits:     cfg.units,
			MaxWorkGroupSize: 1 << 16,
		},
		tracer:   cfg.tracer,
		doorbell: make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		programs: programs,
	}
	q.idle = sync.NewCond(&q.mu)
	q.ring.Init(ringCapacity(cfg.ringDepth))

	go q.dispatch()
	return q
}

// ringCapacity rounds n up to a power of two of at least 2.
func ringCapacity(n int) int {
	c := 2
	for c < n {
		c <<= 1
	}
	return c
}

// NativeHandle returns the queue's unique identifier.
func (q *Queue) NativeHandle() string {
	return q.handle
}

// MaxComputeUnits returns the number of work-groups that run at once.
func (q *Queue) MaxComputeUnits() int {
	return q.info.ComputeUnits
}

// Info describes the device.
func (q *Queue) Info() Info {
	return q.info
}

// Submit enqueues k behind every previously submitted kernel.
//
// A kernel whose name is already registered with a different signature is
// rejected with an error wrapping pstl.ErrKernelNameCollision. A kernel without a
// name is registered under its signature.
func (q *Queue) Submit(k pstl.Kernel) (pstl.Event, error) {
	if k.Name == "" {
		k.Name = pstl.KernelName(k.Signature)
	}

	q.submitMu.Lock()
	defer q.submitMu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}

	prog, err := q.compile(k)
	if err != nil {
		return nil, err
	}
	cmd := &command{kernel: k, prog: prog, event: newEvent()}

	q.mu.Lock()
	q.pending++
	q.mu.Unlock()

	var bo iox.Backoff
	for q.ring.Enqueue(&cmd) != nil {
		// Ring full: the dispatcher drains it without taking submitMu.
		bo.Wait()
	}
	select {
	case q.doorbell <- struct{}{}:
	default:
	}
	return cmd.event, nil
}

// compile registers the kernel name and returns the cached program for it.
func (q *Queue) compile(k pstl.Kernel) (*program, error) {
	if prev, loaded := q.kernels.LoadOrStore(k.Name, k.Signature); loaded && prev.(string) != k.Signature {
		pstl.Logger().Debug("kernel name collision",
			zap.String("queue", q.handle),
			zap.String("kernel", string(k.Name)),
			zap.String("registered", prev.(string)),
			zap.String("submitted", k.Signature))
		return nil, fmt.Errorf("%w: %q is registered as %q, submitted as %q",
			pstl.ErrKernelNameCollision, k.Name, prev, k.Signature)
	}

	id := k.ID()
	if p, ok := q.programs.Get(id); ok {
		return p, nil
	}
	p := &program{id: id, name: k.Name, signature: k.Signature}
	q.programs.Set(id, p, 1)
	pstl.Logger().Debug("compiled kernel",
		zap.String("queue", q.handle),
		zap.String("kernel", string(k.Name)),
		zap.Uint64("id", id))
	return p, nil
}

// dispatch is the single consumer of the ring.
func (q *Queue) dispatch() {
	defer close(q.stopped)
	for {
		cmd, err := q.ring.Dequeue()
		if err == nil {
			q.execute(cmd)
			continue
		}
		select {
		case <-q.doorbell:
		case <-q.done:
			return
		}
	}
}

// execute runs one kernel in work-groups across the compute units.
func (q *Queue) execute(cmd *command) {
	k := cmd.kernel
	cmd.prog.launches.Add(1)

	groupSize := max((k.Global+q.info.ComputeUnits*groupsPerUnit-1)/(q.info.ComputeUnits*groupsPerUnit), 1)
	groups := (k.Global + groupSize - 1) / groupSize

	_, span := q.tracer.Start(context.Background(), "device.kernel", trace.WithAttributes(
		attribute.String("kernel.name", string(k.Name)),
		attribute.Int("kernel.global", k.Global),
		attribute.Int("kernel.groups", groups),
	))
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(q.info.ComputeUnits)
	for gi := range groups {
		lo := gi * groupSize
		hi := min(lo+groupSize, k.Global)
		g.Go(func() error {
			var pc panics.Catcher
			pc.Try(func() { k.Body(lo, hi) })
			if r := pc.Recovered(); r != nil {
				return fmt.Errorf("%w: %s: %w", ErrKernelPanic, k.Name, r.AsError())
			}
			return nil
		})
	}
	err := g.Wait()

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	kernelsTotal.WithLabelValues(status).Inc()
	pstl.Logger().Debug("kernel executed",
		zap.String("queue", q.handle),
		zap.String("kernel", string(k.Name)),
		zap.Int("global", k.Global),
		zap.Int("groups", groups),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))

	cmd.event.complete(err)

	q.mu.Lock()
	if err != nil && q.asyncErr == nil {
		q.asyncErr = err
	}
	q.pending--
	if q.pending == 0 {
		q.idle.Broadcast()
	}
	q.mu.Unlock()
}

// Wait blocks until every submitted kernel has completed. It returns the first
// kernel error raised since the previous Wait, and clears it.
func (q *Queue) Wait() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.pending > 0 {
		q.idle.Wait()
	}
	err := q.asyncErr
	q.asyncErr = nil
	return err
}

// Launches returns how many times the kernel with the given name and signature
// has been executed, or 0 when it is not in the program cache.
func (q *Queue) Launches(name pstl.KernelName, signature string) int {
	p, ok := q.programs.Get(pstl.KernelID(name, signature))
	if !ok {
		return 0
	}
	return int(p.launches.Load())
}

// Close waits for outstanding kernels, stops the dispatcher and releases the
// program cache. Calling Close multiple times is safe.
func (q *Queue) Close() error {
	q.submitMu.Lock()
	if q.closed {
		q.submitMu.Unlock()
		<-q.stopped
		return nil
	}
	q.closed = true
	q.submitMu.Unlock()

	err := q.Wait()
	close(q.done)
	<-q.stopped
	q.programs.Close()
	return err
}

var _ pstl.ExecutionContext = (*Queue)(nil)
