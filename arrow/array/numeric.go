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

package array

import (
	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/float16"
)

// Numeric is an immutable array of fixed-width values.
type Numeric[T arrow.FixedWidthType] struct {
	array
	layout FixedSizeLayout[T]
}

type (
	Int8    = Numeric[int8]
	Int16   = Numeric[int16]
	Int32   = Numeric[int32]
	Int64   = Numeric[int64]
	Uint8   = Numeric[uint8]
	Uint16  = Numeric[uint16]
	Uint32  = Numeric[uint32]
	Uint64  = Numeric[uint64]
	Float16 = Numeric[float16.Num]
	Float32 = Numeric[float32]
	Float64 = Numeric[float64]
)

// NewNumericData returns a new array of T values from data.
func NewNumericData[T arrow.FixedWidthType](data arrow.ArrayData) *Numeric[T] {
	a := &Numeric[T]{}
	a.refCount = 1
	a.setData(data.(*Data))
	return a
}

// NewFloat16Data returns a new Float16 array from data.
func NewFloat16Data(data arrow.ArrayData) *Float16 { return NewNumericData[float16.Num](data) }

func (a *Numeric[T]) setData(data *Data) {
	a.array.setData(data)
	a.layout.Bind(data)
}

// Value returns the value at the specified index.
func (a *Numeric[T]) Value(i int) T { return a.layout.Value(i) }

// Values returns the values.
func (a *Numeric[T]) Values() []T { return a.layout.Values() }

func (a *Numeric[T]) ValueAt(i int) arrow.AnyNullable {
	return arrow.MakeNullable[any](a.layout.Value(i), a.IsValid(i))
}

func (a *Numeric[T]) String() string { return formatArray(a) }

func (a *Numeric[T]) MarshalJSON() ([]byte, error) { return marshalArray(a) }

var (
	_ arrow.Array = (*Int64)(nil)
	_ arrow.Array = (*Float16)(nil)
)
