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

import "sync"

// Event completes when its kernel has run.
type Event struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newEvent() *Event {
	return &Event{done: make(chan struct{})}
}

// complete records err and releases waiters. Only the first call has an effect.
func (e *Event) complete(err error) {
	e.once.Do(func() {
		e.err = err
		close(e.done)
	})
}

// Wait blocks until the kernel has completed and returns its error.
func (e *Event) Wait() error {
	<-e.done
	return e.err
}

// Done returns a channel closed on completion.
func (e *Event) Done() <-chan struct{} {
	return e.done
}
