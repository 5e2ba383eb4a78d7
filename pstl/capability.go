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
	"iter"
	"reflect"
	"strings"
	"sync"
)

// Range is a sized sequence that can be traversed front to back.
// Every range passed to an algorithm implements it.
type Range[T any] interface {
	Len() int
	All() iter.Seq2[int, T]
}

// Mutable is implemented by ranges whose elements can be overwritten.
// On ranges without RandomAccess, Set may cost a traversal.
type Mutable[T any] interface {
	Range[T]
	Set(i int, v T)
}

// RandomAccess is implemented by ranges with constant-time indexed reads.
type RandomAccess[T any] interface {
	Range[T]
	At(i int) T
}

// Contiguous is implemented by ranges backed by a single slice.
// The returned slice aliases the range.
type Contiguous[T any] interface {
	Slice() []T
}

// Segmented is implemented by ranges stored in several separate blocks, such as
// a device buffer made of multiple allocations.
type Segmented interface {
	Segments() int
}

// DeviceShareable is implemented by ranges that an ExecutionContext can address.
type DeviceShareable interface {
	// Residency returns the context the storage belongs to.
	Residency() ExecutionContext
}

// DeviceLocal marks device ranges the host cannot address directly, such as
// device-only USM allocations. Host backends reject them.
type DeviceLocal interface {
	DeviceShareable
	DeviceLocal()
}

// Unwrapper is implemented by adaptors, such as a reversed view, that forward to
// an underlying range and only change traversal order.
type Unwrapper interface {
	Unwrap() any
}

// Capability is the set of structural facts about a range type.
type Capability uint16

const (
	CapForward Capability = 1 << iota
	CapRandomAccess
	CapContiguous
	CapSegmented
	CapDeviceShareable
	CapDeviceOnly
	CapReversed
)

var capNames = []struct {
	c    Capability
	name string
}{
	{CapForward, "forward"},
	{CapRandomAccess, "random_access"},
	{CapContiguous, "contiguous"},
	{CapSegmented, "segmented"},
	{CapDeviceShareable, "device_shareable"},
	{CapDeviceOnly, "device_only"},
	{CapReversed, "reversed"},
}

// Has reports whether c includes every bit of want.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, n := range capNames {
		if c&n.c != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// capCache holds one Capability per dynamic range type.
var capCache sync.Map // reflect.Type -> Capability

// Probe returns the capabilities of r's type.
//
// The result depends only on the dynamic type of r, never on its contents. A
// reversed view is unwrapped one level and reports the capabilities of the
// range it reverses, plus CapReversed.
func Probe[T any](r Range[T]) Capability {
	if r == nil {
		return 0
	}
	if u, ok := r.(Unwrapper); ok {
		if inner, ok := u.Unwrap().(Range[T]); ok && inner != nil {
			return probeCached[T](inner) | CapReversed
		}
	}
	return probeCached[T](r)
}

// probeCached probes r without unwrapping, once per dynamic type.
func probeCached[T any](r Range[T]) Capability {
	rt := reflect.TypeOf(r)
	if c, ok := capCache.Load(rt); ok {
		return c.(Capability)
	}
	c := probeOne[T](r)
	capCache.Store(rt, c)
	return c
}

func probeOne[T any](r Range[T]) Capability {
	c := CapForward
	if _, ok := r.(RandomAccess[T]); ok {
		c |= CapRandomAccess
	}
	if _, ok := r.(Contiguous[T]); ok && c.Has(CapRandomAccess) {
		c |= CapContiguous
	}
	if _, ok := r.(Segmented); ok {
		c |= CapSegmented
	}
	if _, ok := r.(DeviceShareable); ok {
		c |= CapDeviceShareable
	}
	if _, ok := r.(DeviceLocal); ok {
		c |= CapDeviceOnly
	}
	return c
}

// ResidencyOf returns the execution context r lives on, or nil for host ranges.
// Reversed views report the residency of the range they reverse.
func ResidencyOf(r any) ExecutionContext {
	if u, ok := r.(Unwrapper); ok {
		r = u.Unwrap()
	}
	if d, ok := r.(DeviceShareable); ok {
		return d.Residency()
	}
	return nil
}
