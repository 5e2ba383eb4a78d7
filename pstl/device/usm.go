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
	"fmt"
	"iter"

	"github.com/ajroetker/go-pstl/pstl"
)

// USM is a flat shared allocation: addressable by kernels on its queue and by
// the host.
type USM[T any] struct {
	q    *Queue
	data []T
}

// MallocShared allocates n zeroed elements of shared memory on q.
func MallocShared[T any](q *Queue, n int) *USM[T] {
	return &USM[T]{q: q, data: make([]T, n)}
}

// SharedFrom allocates shared memory on q holding a copy of src.
func SharedFrom[T any](q *Queue, src []T) *USM[T] {
	u := MallocShared[T](q, len(src))
	copy(u.data, src)
	return u
}

func (u *USM[T]) Len() int {
	return len(u.data)
}

func (u *USM[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range u.data {
			if !yield(i, v) {
				return
			}
		}
	}
}

func (u *USM[T]) At(i int) T {
	return u.data[i]
}

func (u *USM[T]) Set(i int, v T) {
	u.data[i] = v
}

// Slice returns the allocation as a slice.
func (u *USM[T]) Slice() []T {
	return u.data
}

// Residency returns the queue the memory was allocated on.
func (u *USM[T]) Residency() pstl.ExecutionContext {
	return u.q
}

// Free releases the allocation. The range must not be used afterwards.
func (u *USM[T]) Free() {
	u.data = nil
}

// DeviceUSM is a flat device-only allocation. Host backends reject it; the host
// moves data in and out with CopyFrom and CopyTo, which run as kernels on the
// allocation's queue.
type DeviceUSM[T any] struct {
	USM[T]
}

// MallocDevice allocates n zeroed elements of device-only memory on q.
func MallocDevice[T any](q *Queue, n int) *DeviceUSM[T] {
	return &DeviceUSM[T]{USM: USM[T]{q: q, data: make([]T, n)}}
}

// DeviceLocal marks the allocation as not host-addressable.
func (d *DeviceUSM[T]) DeviceLocal() {}

// CopyFrom copies src into the allocation and waits for the copy.
func (d *DeviceUSM[T]) CopyFrom(src []T) error {
	if len(src) != len(d.data) {
		return fmt.Errorf("%w: copy of %d elements into %d", ErrSizeMismatch, len(src), len(d.data))
	}
	return d.memcpy("memcpy.h2d", func(lo, hi int) { copy(d.data[lo:hi], src[lo:hi]) })
}

// CopyTo copies the allocation into dst and waits for the copy.
func (d *DeviceUSM[T]) CopyTo(dst []T) error {
	if len(dst) != len(d.data) {
		return fmt.Errorf("%w: copy of %d elements into %d", ErrSizeMismatch, len(d.data), len(dst))
	}
	return d.memcpy("memcpy.d2h", func(lo, hi int) { copy(dst[lo:hi], d.data[lo:hi]) })
}

func (d *DeviceUSM[T]) memcpy(name string, body func(lo, hi int)) error {
	ev, err := d.q.Submit(pstl.Kernel{
		Name:      pstl.KernelName(name),
		Signature: fmt.Sprintf("%s[%T]", name, d.data),
		Global:    len(d.data),
		Body:      body,
	})
	if err != nil {
		return err
	}
	return ev.Wait()
}

var (
	_ pstl.Mutable[int]      = (*USM[int])(nil)
	_ pstl.RandomAccess[int] = (*USM[int])(nil)
	_ pstl.Contiguous[int]   = (*USM[int])(nil)
	_ pstl.DeviceShareable   = (*USM[int])(nil)
	_ pstl.DeviceLocal       = (*DeviceUSM[int])(nil)
)
