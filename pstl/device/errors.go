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

import "errors"

var (
	// ErrQueueClosed is returned by Submit after Close.
	ErrQueueClosed = errors.New("device: queue closed")

	// ErrKernelPanic wraps a panic raised by a kernel body.
	ErrKernelPanic = errors.New("device: kernel panicked")

	// ErrSizeMismatch is returned by copies between ranges of different lengths.
	ErrSizeMismatch = errors.New("device: size mismatch")
)
