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
)

// GenericBinary represents an immutable sequence of variable-length binary
// strings with offsets of type O.
type GenericBinary[O arrow.OffsetType] struct {
	array
	layout BinaryLayout[O]
}

type (
	Binary      = GenericBinary[int32]
	LargeBinary = GenericBinary[int64]
)

// NewBinaryData constructs a new Binary array from data.
func NewBinaryData(data arrow.ArrayData) *Binary { return newGenericBinary[int32](data) }

// NewLargeBinaryData constructs a new LargeBinary array from data.
func NewLargeBinaryData(data arrow.ArrayData) *LargeBinary { return newGenericBinary[int64](data) }

func newGenericBinary[O arrow.OffsetType](data arrow.ArrayData) *GenericBinary[O] {
	a := &GenericBinary[O]{}
	a.refCount = 1
	a.setData(data.(*Data))
	return a
}

func (a *GenericBinary[O]) setData(data *Data) {
	a.array.setData(data)
	a.layout.Bind(data)
}

// Value returns the slice at index i. This value should not be mutated.
func (a *GenericBinary[O]) Value(i int) []byte { return a.layout.Value(i) }

// ValueString returns a copy of the bytes at index i as a string.
func (a *GenericBinary[O]) ValueString(i int) string {
	return string(a.Value(i))
}

// ValueOffsets returns the Len()+1 offsets of the array.
func (a *GenericBinary[O]) ValueOffsets() []O { return a.layout.ValueOffsets() }

// ValueBytes returns the whole data buffer.
func (a *GenericBinary[O]) ValueBytes() []byte { return a.layout.ValueData() }

func (a *GenericBinary[O]) ValueLen(i int) int { return a.layout.ValueLen(i) }

func (a *GenericBinary[O]) ValueAt(i int) arrow.AnyNullable {
	return arrow.MakeNullable[any](a.Value(i), a.IsValid(i))
}

func (a *GenericBinary[O]) String() string { return formatArray(a) }

func (a *GenericBinary[O]) MarshalJSON() ([]byte, error) { return marshalArray(a) }

// GenericString represents an immutable sequence of variable-length UTF-8
// strings with offsets of type O.
type GenericString[O arrow.OffsetType] struct {
	array
	layout StringLayout[O]
}

type (
	String      = GenericString[int32]
	LargeString = GenericString[int64]
)

// NewStringData constructs a new String array from data.
func NewStringData(data arrow.ArrayData) *String { return newGenericString[int32](data) }

// NewLargeStringData constructs a new LargeString array from data.
func NewLargeStringData(data arrow.ArrayData) *LargeString { return newGenericString[int64](data) }

func newGenericString[O arrow.OffsetType](data arrow.ArrayData) *GenericString[O] {
	a := &GenericString[O]{}
	a.refCount = 1
	a.setData(data.(*Data))
	return a
}

func (a *GenericString[O]) setData(data *Data) {
	a.array.setData(data)
	a.layout.Bind(data)
}

// Value returns the string at index i. The string aliases the data
// buffer and is only valid for the lifetime of the array.
func (a *GenericString[O]) Value(i int) string { return a.layout.Value(i) }

// ValueOffsets returns the Len()+1 offsets of the array.
func (a *GenericString[O]) ValueOffsets() []O { return a.layout.ValueOffsets() }

// ValueBytes returns the whole data buffer.
func (a *GenericString[O]) ValueBytes() []byte { return a.layout.ValueData() }

func (a *GenericString[O]) ValueLen(i int) int { return a.layout.ValueLen(i) }

func (a *GenericString[O]) ValueAt(i int) arrow.AnyNullable {
	return arrow.MakeNullable[any](a.Value(i), a.IsValid(i))
}

func (a *GenericString[O]) String() string { return formatArray(a) }

func (a *GenericString[O]) MarshalJSON() ([]byte, error) { return marshalArray(a) }

// FixedSizeBinary represents an immutable sequence of fixed-length binary strings.
type FixedSizeBinary struct {
	array
	layout FixedSizeBinaryLayout
}

// NewFixedSizeBinaryData constructs a new fixed-size binary array from data.
func NewFixedSizeBinaryData(data arrow.ArrayData) *FixedSizeBinary {
	a := &FixedSizeBinary{}
	a.refCount = 1
	a.setData(data.(*Data))
	return a
}

func (a *FixedSizeBinary) setData(data *Data) {
	a.array.setData(data)
	a.layout.Bind(data)
}

// ByteWidth returns the width of every value.
func (a *FixedSizeBinary) ByteWidth() int { return a.layout.byteWidth }

// Value returns the fixed-size slice at index i. This value should not be mutated.
func (a *FixedSizeBinary) Value(i int) []byte { return a.layout.Value(i) }

func (a *FixedSizeBinary) ValueAt(i int) arrow.AnyNullable {
	return arrow.MakeNullable[any](a.Value(i), a.IsValid(i))
}

func (a *FixedSizeBinary) String() string { return formatArray(a) }

func (a *FixedSizeBinary) MarshalJSON() ([]byte, error) { return marshalArray(a) }

var (
	_ arrow.Array = (*Binary)(nil)
	_ arrow.Array = (*LargeString)(nil)
	_ arrow.Array = (*FixedSizeBinary)(nil)
)
