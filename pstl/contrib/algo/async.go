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

// Future is the result of an algorithm call running in the background.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Wait blocks until the call has finished and returns its result.
// It may be called any number of times.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.val, f.err
}

// Done returns a channel that is closed when the call has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// goAsync checks that p can serve ops before starting fn in the background, so
// an infeasible call fails without spawning work.
func goAsync[T any](p pstl.Policy, class pstl.OpClass, fn func() (T, error), ops ...pstl.Operand) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	if _, err := pstl.Select(p, class, ops...); err != nil {
		f.err = err
		close(f.done)
		return f
	}
	go func() {
		defer close(f.done)
		f.val, f.err = fn()
	}()
	return f
}

// ForEachAsync runs ForEach in the background. r must not be modified until
// the future is done.
func ForEachAsync[T any](p pstl.Policy, r pstl.Range[T], fn func(T)) *Future[struct{}] {
	return goAsync(p, pstl.OpChunkable, func() (struct{}, error) {
		return struct{}{}, ForEach(p, r, fn)
	}, pstl.Describe(r))
}

// FillAsync runs Fill in the background.
func FillAsync[T any](p pstl.Policy, r pstl.Mutable[T], v T) *Future[struct{}] {
	return goAsync(p, pstl.OpChunkable, func() (struct{}, error) {
		return struct{}{}, Fill(p, r, v)
	}, pstl.Describe[T](r))
}

// ReduceAsync runs Reduce in the background.
func ReduceAsync[T any](p pstl.Policy, r pstl.Range[T], init T, op func(a, b T) T) *Future[T] {
	return goAsync(p, pstl.OpChunkable, func() (T, error) {
		return Reduce(p, r, init, op)
	}, pstl.Describe(r))
}

// SortAsync runs Sort in the background.
func SortAsync[T any](p pstl.Policy, r pstl.Mutable[T], cmp func(a, b T) int) *Future[struct{}] {
	return goAsync(p, pstl.OpIndexed, func() (struct{}, error) {
		return struct{}{}, Sort(p, r, cmp)
	}, pstl.Describe[T](r))
}
