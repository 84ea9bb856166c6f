// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package arrow

import (
	"fmt"

	"github.com/quiverdata/quiver/arrow/internal/debug"
)

// Nullable is a value of T that may be absent. The zero Nullable is null.
//
// Reading the value of a null Nullable is a contract violation: builds with
// the assert tag panic, other builds return the zero T.
type Nullable[T any] struct {
	val   T
	valid bool
}

// AnyNullable is the type-erased nullable scalar returned by Array.ValueAt.
type AnyNullable = Nullable[any]

// NewNullable returns a valid Nullable holding v.
func NewNullable[T any](v T) Nullable[T] { return Nullable[T]{val: v, valid: true} }

// NullOf returns a null Nullable of T.
func NullOf[T any]() Nullable[T] { return Nullable[T]{} }

// NullableFromPtr returns a null Nullable for a nil pointer and a valid
// one holding *p otherwise.
func NullableFromPtr[T any](p *T) Nullable[T] {
	if p == nil {
		return Nullable[T]{}
	}
	return NewNullable(*p)
}

// MakeNullable returns a Nullable holding v whose validity is valid.
func MakeNullable[T any](v T, valid bool) Nullable[T] {
	return Nullable[T]{val: v, valid: valid}
}

func (n Nullable[T]) HasValue() bool { return n.valid }

func (n Nullable[T]) Value() T {
	debug.Assert(n.valid, "arrow: value of null Nullable")
	return n.val
}

// Get is an alias of Value.
func (n Nullable[T]) Get() T { return n.Value() }

// ValueOr returns the held value, or def when n is null.
func (n Nullable[T]) ValueOr(def T) T {
	if !n.valid {
		return def
	}
	return n.val
}

// Any erases the value type of n.
func (n Nullable[T]) Any() AnyNullable {
	return AnyNullable{val: n.val, valid: n.valid}
}

func (n Nullable[T]) String() string {
	if !n.valid {
		return "(null)"
	}
	return fmt.Sprint(n.val)
}
