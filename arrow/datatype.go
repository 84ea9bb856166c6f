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
	"strconv"
)

// Type is a logical type. They can be expressed as
// either a primitive physical type (bytes or bits of some fixed size), a
// nested type consisting of other data types, or another data type (e.g. a
// dictionary of strings).
type Type int

const (
	// NULL type having no physical storage
	NULL Type = iota

	// BOOL is a 1 bit, LSB bit-packed ordering
	BOOL

	// UINT8 is an Unsigned 8-bit little-endian integer
	UINT8

	// INT8 is a Signed 8-bit little-endian integer
	INT8

	// UINT16 is an Unsigned 16-bit little-endian integer
	UINT16

	// INT16 is a Signed 16-bit little-endian integer
	INT16

	// UINT32 is an Unsigned 32-bit little-endian integer
	UINT32

	// INT32 is a Signed 32-bit little-endian integer
	INT32

	// UINT64 is an Unsigned 64-bit little-endian integer
	UINT64

	// INT64 is a Signed 64-bit little-endian integer
	INT64

	// FLOAT16 is a 2-byte floating point value
	FLOAT16

	// FLOAT32 is a 4-byte floating point value
	FLOAT32

	// FLOAT64 is an 8-byte floating point value
	FLOAT64

	// STRING is a UTF8 variable-length string
	STRING

	// BINARY is a Variable-length byte type (no guarantee of UTF8-ness)
	BINARY

	// FIXED_SIZE_BINARY is a binary where each value occupies the same number of bytes
	FIXED_SIZE_BINARY

	// LIST is a list of some logical data type
	LIST

	// STRUCT of logical types
	STRUCT

	// DICTIONARY aka Category type
	DICTIONARY

	// LARGE_STRING is a UTF8 variable-length string with 64-bit offsets
	LARGE_STRING

	// LARGE_BINARY is a Variable-length byte type with 64-bit offsets
	LARGE_BINARY

	// LARGE_LIST is a list of some logical data type with 64-bit offsets
	LARGE_LIST

	// RUN_END_ENCODED is a run-end encoded array: a child of run ends and a
	// child of values, one value per run
	RUN_END_ENCODED
)

var typeNames = [...]string{
	NULL:              "NULL",
	BOOL:              "BOOL",
	UINT8:             "UINT8",
	INT8:              "INT8",
	UINT16:            "UINT16",
	INT16:             "INT16",
	UINT32:            "UINT32",
	INT32:             "INT32",
	UINT64:            "UINT64",
	INT64:             "INT64",
	FLOAT16:           "FLOAT16",
	FLOAT32:           "FLOAT32",
	FLOAT64:           "FLOAT64",
	STRING:            "STRING",
	BINARY:            "BINARY",
	FIXED_SIZE_BINARY: "FIXED_SIZE_BINARY",
	LIST:              "LIST",
	STRUCT:            "STRUCT",
	DICTIONARY:        "DICTIONARY",
	LARGE_STRING:      "LARGE_STRING",
	LARGE_BINARY:      "LARGE_BINARY",
	LARGE_LIST:        "LARGE_LIST",
	RUN_END_ENCODED:   "RUN_END_ENCODED",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

// DataType is the representation of an Arrow type.
type DataType interface {
	ID() Type
	// Name is name of the data type.
	Name() string
	String() string
	// Layout returns the physical layout of this type, validity slot
	// included, in Arrow C Data Interface buffer order.
	Layout() DataTypeLayout
}

// FixedWidthDataType is the representation of an Arrow type that
// requires a fixed number of bits in memory for each element.
type FixedWidthDataType interface {
	DataType
	// BitWidth returns the number of bits required to store a single element of this data type in memory.
	BitWidth() int
	// Bytes returns the number of bytes required to store a single element of this data type in memory.
	Bytes() int
}

// BinaryDataType is implemented by the variable-size binary types.
type BinaryDataType interface {
	DataType
	IsUtf8() bool
	binary()
}

// OffsetsDataType is implemented by the types whose first buffer holds
// offsets: the binary and list types.
type OffsetsDataType interface {
	DataType
	// OffsetBytes returns the width of a single offset, 4 or 8.
	OffsetBytes() int
}

// NestedType is implemented by types that have child fields.
type NestedType interface {
	DataType
	Fields() []Field
	NumFields() int
}

// EncodedType is implemented by types whose values are stored through an
// encoding of another type.
type EncodedType interface {
	DataType
	Encoded() DataType
}

// BufferKind describes the type of buffer expected when defining a layout specification
type BufferKind int8

// The expected types of buffers
const (
	KindFixedWidth BufferKind = iota
	KindVarWidth
	KindBitmap
	KindAlwaysNull
)

// BufferSpec provides a specification for the buffers of a particular datatype
type BufferSpec struct {
	Kind      BufferKind
	ByteWidth int // for KindFixedWidth
}

func (b BufferSpec) Equals(other BufferSpec) bool {
	return b.Kind == other.Kind && (b.Kind != KindFixedWidth || b.ByteWidth == other.ByteWidth)
}

// DataTypeLayout represents the physical layout of a datatype's buffers including
// the number of and types of those binary buffers. This will correspond
// with the buffers in the ArrayData for an array of that type.
type DataTypeLayout struct {
	Buffers []BufferSpec
	HasDict bool
}

// HasValidity reports whether the first buffer of the layout is a validity bitmap.
func (l DataTypeLayout) HasValidity() bool {
	return len(l.Buffers) > 0 && l.Buffers[0].Kind == KindBitmap
}

// DataBuffers returns the buffer specs excluding the validity bitmap, in
// the order an ArrayData stores them.
func (l DataTypeLayout) DataBuffers() []BufferSpec {
	if l.HasValidity() {
		return l.Buffers[1:]
	}
	return l.Buffers
}

func SpecFixedWidth(w int) BufferSpec { return BufferSpec{Kind: KindFixedWidth, ByteWidth: w} }
func SpecVariableWidth() BufferSpec   { return BufferSpec{Kind: KindVarWidth, ByteWidth: -1} }
func SpecBitmap() BufferSpec          { return BufferSpec{Kind: KindBitmap, ByteWidth: -1} }
func SpecAlwaysNull() BufferSpec      { return BufferSpec{Kind: KindAlwaysNull, ByteWidth: -1} }

// IsInteger is a helper to return true if the type ID provided is one of the
// integral types of uint or int with the varying sizes.
func IsInteger(t Type) bool {
	switch t {
	case UINT8, INT8, UINT16, INT16, UINT32, INT32, UINT64, INT64:
		return true
	}
	return false
}

// IsUnsignedInteger is a helper that returns true if the type ID provided is
// one of the uint integral types (uint8, uint16, uint32, uint64)
func IsUnsignedInteger(t Type) bool {
	switch t {
	case UINT8, UINT16, UINT32, UINT64:
		return true
	}
	return false
}

// IsFloating is a helper that returns true if the type ID provided is
// one of Float16, Float32, or Float64
func IsFloating(t Type) bool {
	switch t {
	case FLOAT16, FLOAT32, FLOAT64:
		return true
	}
	return false
}

// IsPrimitive returns true if the provided type ID represents a fixed width
// primitive type.
func IsPrimitive(t Type) bool {
	switch t {
	case BOOL, UINT8, INT8, UINT16, INT16, UINT32, INT32, UINT64, INT64,
		FLOAT16, FLOAT32, FLOAT64:
		return true
	}
	return false
}

// IsBinaryLike returns true for only BINARY and STRING
func IsBinaryLike(t Type) bool {
	switch t {
	case BINARY, STRING:
		return true
	}
	return false
}

// IsLargeBinaryLike returns true for only LARGE_BINARY and LARGE_STRING
func IsLargeBinaryLike(t Type) bool {
	switch t {
	case LARGE_BINARY, LARGE_STRING:
		return true
	}
	return false
}

// IsListLike returns true for LIST and LARGE_LIST
func IsListLike(t Type) bool {
	return t == LIST || t == LARGE_LIST
}

// IsNested returns true for LIST, LARGE_LIST and STRUCT
func IsNested(t Type) bool {
	switch t {
	case LIST, LARGE_LIST, STRUCT:
		return true
	}
	return false
}

// IsRunEndType reports whether t may be used for the run ends of a
// run-end encoded array.
func IsRunEndType(t Type) bool {
	switch t {
	case INT16, INT32, INT64:
		return true
	}
	return false
}

// HasValidityBitmap returns whether arrays of the given type id carry a
// validity bitmap. Null and run-end encoded arrays do not.
func HasValidityBitmap(id Type) bool {
	switch id {
	case NULL, RUN_END_ENCODED:
		return false
	}
	return true
}
