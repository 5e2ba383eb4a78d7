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

package ranges

import (
	"iter"

	"github.com/emirpasic/gods/lists/singlylinkedlist"

	"github.com/ajroetker/go-pstl/pstl"
)

// List is a forward-only range backed by a singly linked list.
//
// It has no random access, so unsequenced policies reject it, and parallel
// policies accept it only for chunkable algorithms, which process a materialized
// copy and write it back with Assign.
type List[T any] struct {
	l *singlylinkedlist.List
}

// NewList returns a list holding values in order.
func NewList[T any](values ...T) *List[T] {
	l := &List[T]{l: singlylinkedlist.New()}
	l.Assign(values)
	return l
}

func (l *List[T]) Len() int {
	return l.l.Size()
}

func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		it := l.l.Iterator()
		for it.Next() {
			if !yield(it.Index(), it.Value().(T)) {
				return
			}
		}
	}
}

// Set overwrites the i-th element. It walks the list from the front.
func (l *List[T]) Set(i int, v T) {
	l.l.Set(i, v)
}

// Assign replaces the contents of the list with values.
func (l *List[T]) Assign(values []T) {
	l.l.Clear()
	for _, v := range values {
		l.l.Add(v)
	}
}

// Values returns the elements in order.
func (l *List[T]) Values() []T {
	return Collect[T](l)
}

var _ pstl.Mutable[int] = (*List[int])(nil)
