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
	"iter"
	"sync"
	"sync/atomic"

	"github.com/ajroetker/go-pstl/pstl"
)

// DefaultSegment is the default number of elements per buffer segment.
const DefaultSegment = 4096

// Buffer is device storage split into fixed-size segments and bound to a host
// slice. Kernels reach it through accessors; releasing a write accessor copies
// the segments back into the host slice, so the host slice holds the result of
// every algorithm call once the call returns.
type Buffer[T any] struct {
	q       *Queue
	host    []T
	segLen  int
	segs    [][]T
	mu      sync.Mutex
	holders int
}

// NewBuffer creates a buffer on q holding a copy of host, split into segments of
// segment elements (DefaultSegment when segment <= 0).
func NewBuffer[T any](q *Queue, host []T, segment int) *Buffer[T] {
	if segment <= 0 {
		segment = DefaultSegment
	}
	b := &Buffer[T]{q: q, host: host, segLen: segment}
	for lo := 0; lo < len(host); lo += segment {
		hi := min(lo+segment, len(host))
		seg := make([]T, hi-lo)
		copy(seg, host[lo:hi])
		b.segs = append(b.segs, seg)
	}
	return b
}

func (b *Buffer[T]) Len() int {
	return len(b.host)
}

func (b *Buffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		i := 0
		for _, seg := range b.segs {
			for _, v := range seg {
				if !yield(i, v) {
					return
				}
				i++
			}
		}
	}
}

// At reads element i through a host accessor.
func (b *Buffer[T]) At(i int) T {
	return b.segs[i/b.segLen][i%b.segLen]
}

// Set writes element i through a host accessor and to the bound host slice.
func (b *Buffer[T]) Set(i int, v T) {
	b.segs[i/b.segLen][i%b.segLen] = v
	b.host[i] = v
}

// Segments returns the number of segments.
func (b *Buffer[T]) Segments() int {
	return len(b.segs)
}

// Residency returns the queue the buffer lives on.
func (b *Buffer[T]) Residency() pstl.ExecutionContext {
	return b.q
}

// Host returns the bound host slice.
func (b *Buffer[T]) Host() []T {
	return b.host
}

// Holders returns the number of accessors currently acquired.
func (b *Buffer[T]) Holders() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.holders
}

// Access acquires a read-write accessor.
func (b *Buffer[T]) Access() pstl.Accessor[T] {
	b.mu.Lock()
	b.holders++
	b.mu.Unlock()
	return &accessor[T]{b: b}
}

// accessor addresses the segments of a buffer and tracks whether it wrote.
type accessor[T any] struct {
	b        *Buffer[T]
	dirty    atomic.Bool
	released bool
}

func (a *accessor[T]) Len() int {
	return len(a.b.host)
}

func (a *accessor[T]) At(i int) T {
	return a.b.segs[i/a.b.segLen][i%a.b.segLen]
}

// Set may be called concurrently for distinct i.
func (a *accessor[T]) Set(i int, v T) {
	a.b.segs[i/a.b.segLen][i%a.b.segLen] = v
	if !a.dirty.Load() {
		a.dirty.Store(true)
	}
}

// Release ends the access and writes the segments back to the host slice if the
// accessor wrote. Releasing twice is a no-op.
func (a *accessor[T]) Release() error {
	if a.released {
		return nil
	}
	a.released = true
	if a.dirty.Load() {
		lo := 0
		for _, seg := range a.b.segs {
			copy(a.b.host[lo:], seg)
			lo += len(seg)
		}
	}
	a.b.mu.Lock()
	a.b.holders--
	a.b.mu.Unlock()
	return nil
}

var (
	_ pstl.Mutable[int]      = (*Buffer[int])(nil)
	_ pstl.RandomAccess[int] = (*Buffer[int])(nil)
	_ pstl.Segmented         = (*Buffer[int])(nil)
	_ pstl.DeviceShareable   = (*Buffer[int])(nil)
	_ pstl.Accessible[int]   = (*Buffer[int])(nil)
)
