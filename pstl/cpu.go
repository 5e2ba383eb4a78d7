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

import "unsafe"

// currentWidth is the vector register width in bytes used to size unsequenced blocks.
// Set by init() in cpu_*.go files.
var currentWidth int

// currentName is the human-readable name of the detected vector unit.
// Set by init() in cpu_*.go files.
var currentName string

// VectorWidth returns the vector register width in bytes, or 0 in scalar mode.
func VectorWidth() int {
	return currentWidth
}

// VectorName returns the name of the detected vector unit.
// For example: "avx2", "neon", "scalar".
func VectorName() string {
	return currentName
}

// Lanes returns how many values of type T one unsequenced block holds per lane
// group. It is at least 1, also for element types wider than a register.
//
// For example, with AVX2 (32 bytes):
//   - float32: 8 lanes
//   - float64: 4 lanes
func Lanes[T any]() int {
	var dummy T
	size := int(unsafe.Sizeof(dummy))
	if size == 0 || currentWidth < size {
		return 1
	}
	return currentWidth / size
}

func setScalarMode() {
	currentWidth = 0
	currentName = "scalar"
}
