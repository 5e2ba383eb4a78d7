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

// InclusiveScan stores in out[i] the fold of in[0..i] with op. in and out may be
// the same range. op must be associative.
func InclusiveScan[T any](p pstl.Policy, in pstl.Range[T], out pstl.Mutable[T], op func(a, b T) T) error {
	var zero T
	return scan("inclusive_scan", p, in, out, op, zero, false, false)
}

// InclusiveScanInit is InclusiveScan with init folded in front of the first element.
func InclusiveScanInit[T any](p pstl.Policy, in pstl.Range[T], out pstl.Mutable[T], init T, op func(a, b T) T) error {
	return scan("inclusive_scan", p, in, out, op, init, true, false)
}

// ExclusiveScan stores in out[i] the fold of init and in[0..i-1] with op. in and
// out may be the same range. op must be associative.
func ExclusiveScan[T any](p pstl.Policy, in pstl.Range[T], out pstl.Mutable[T], init T, op func(a, b T) T) error {
	return scan("exclusive_scan", p, in, out, op, init, true, true)
}

func scan[T any](algorithm string, p pstl.Policy, in pstl.Range[T], out pstl.Mutable[T], op func(a, b T) T, init T, hasInit, exclusive bool) (err error) {
	if err := checkOutput(algorithm, out.Len(), in.Len()); err != nil {
		return err
	}
	e, err := begin(algorithm, p, pstl.OpChunkable, shapeOf[T](op), pstl.Describe(in), pstl.Describe[T](out))
	if err != nil {
		return err
	}
	src := viewOf(in, e.backend(), false)
	dst := viewOf[T](out, e.backend(), true)
	defer release(&err, src, dst)
	return scanChunks(e, src.n, src.at, dst.set, op, init, hasInit, exclusive)
}
