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

	"code.hybscloud.com/atomix"
	"github.com/cespare/xxhash/v2"
)

// KernelName disambiguates the kernels generated by distinct offload call sites.
//
// Two call sites that generate structurally identical kernels may share a name.
// Reusing a name for a structurally different kernel on the same context is a
// misuse reported by the context as ErrKernelNameCollision.
type KernelName string

// kernelCounter feeds UniqueKernelName.
var kernelCounter atomix.Uint32

// NewKernelName returns the idx-th name derived from base.
//
// It is the usual way to give every call site in a test or a function its own
// name:
//
//	p0 := policy.WithKernelName(pstl.NewKernelName("sort", 0))
//	p1 := policy.WithKernelName(pstl.NewKernelName("sort", 1))
func NewKernelName(base string, idx int) KernelName {
	return KernelName(fmt.Sprintf("%s#%d", base, idx))
}

// UniqueKernelName returns a name derived from base that no other call to
// UniqueKernelName in this process returns.
func UniqueKernelName(base string) KernelName {
	return KernelName(fmt.Sprintf("%s@%d", base, kernelCounter.Add(1)))
}

// Stage returns the name of one stage of a multi-kernel algorithm.
func (n KernelName) Stage(stage string) KernelName {
	if n == "" {
		return ""
	}
	return KernelName(string(n) + "/" + stage)
}

// KernelID hashes a kernel name and signature into a kernel identity.
func KernelID(name KernelName, signature string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(string(name))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(signature)
	return d.Sum64()
}
