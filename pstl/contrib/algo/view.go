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

import "github.com/ajroetker/go-pstl/pstl"

// view is the element access path a backend uses for one range during a call.
//
// In order of preference it addresses a slice (contiguous ranges and
// materialized copies), a device accessor (segmented device buffers) or the
// range's own At and Set.
type view[T any] struct {
	n int

	s []T

	acc pstl.Accessor[T]
	rev bool

	ra  pstl.RandomAccess[T]
	mut pstl.Mutable[T]

	// src is the forward range s was copied from.
	src   pstl.Range[T]
	write bool
}

// viewOf prepares r for backend b. write reports whether the call writes to r.
// The view must be released before the call returns.
func viewOf[T any](r pstl.Range[T], b pstl.Backend, write bool) *view[T] {
	v := &view[T]{n: r.Len(), write: write}
	if b == pstl.BackendDeviceBuffer {
		var target any = r
		if u, ok := r.(pstl.Unwrapper); ok {
			target = u.Unwrap()
			v.rev = true
		}
		if a, ok := target.(pstl.Accessible[T]); ok {
			v.acc = a.Access()
			return v
		}
		v.rev = false
	}
	if c, ok := r.(pstl.Contiguous[T]); ok {
		if _, ok := r.(pstl.RandomAccess[T]); ok {
			v.s = c.Slice()[:v.n]
			return v
		}
	}
	if ra, ok := r.(pstl.RandomAccess[T]); ok {
		v.ra = ra
		v.mut, _ = r.(pstl.Mutable[T])
		return v
	}
	v.s = newTemp[T](v.n)
	for i, x := range r.All() {
		v.s[i] = x
	}
	v.src = r
	return v
}

func (v *view[T]) at(i int) T {
	switch {
	case v.s != nil:
		return v.s[i]
	case v.acc != nil:
		if v.rev {
			i = v.n - 1 - i
		}
		return v.acc.At(i)
	default:
		return v.ra.At(i)
	}
}

func (v *view[T]) set(i int, x T) {
	switch {
	case v.s != nil:
		v.s[i] = x
	case v.acc != nil:
		if v.rev {
			i = v.n - 1 - i
		}
		v.acc.Set(i, x)
	default:
		v.mut.Set(i, x)
	}
}

// slice returns the elements as a slice when the view addresses one.
func (v *view[T]) slice() ([]T, bool) {
	return v.s, v.s != nil || v.n == 0
}

// assigner is implemented by forward ranges that can replace all their elements
// in one traversal, such as ranges.List.
type assigner[T any] interface {
	Assign(values []T)
}

// release writes materialized copies back and ends device access.
func (v *view[T]) release() error {
	var err error
	if v.src != nil {
		if v.write {
			if a, ok := v.src.(assigner[T]); ok {
				a.Assign(v.s)
			} else if m, ok := v.src.(pstl.Mutable[T]); ok {
				for i, x := range v.s {
					m.Set(i, x)
				}
			}
		}
		freeTemp(v.s)
		v.s, v.src = nil, nil
	}
	if v.acc != nil {
		err = v.acc.Release()
		v.acc = nil
	}
	return err
}
