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

import "sync/atomic"

// liveTemporaries counts temporary buffers held by running calls.
var liveTemporaries atomic.Int64

// LiveTemporaries returns the number of temporary buffers currently held by
// algorithm calls. It is zero whenever no call is running: every call releases
// its temporaries before it returns, also on error.
func LiveTemporaries() int {
	return int(liveTemporaries.Load())
}

func newTemp[T any](n int) []T {
	liveTemporaries.Add(1)
	return make([]T, n)
}

// freeTemp drops the references held by s and releases it.
func freeTemp[T any](s []T) {
	clear(s)
	liveTemporaries.Add(-1)
}
