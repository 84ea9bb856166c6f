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
	"reflect"
	"unsafe"

	"github.com/quiverdata/quiver/arrow/float16"
	"golang.org/x/exp/constraints"
)

const (
	Int8SizeBytes    = 1
	Int16SizeBytes   = 2
	Int32SizeBytes   = 4
	Int64SizeBytes   = 8
	Uint8SizeBytes   = 1
	Uint16SizeBytes  = 2
	Uint32SizeBytes  = 4
	Uint64SizeBytes  = 8
	Float16SizeBytes = 2
	Float32SizeBytes = 4
	Float64SizeBytes = 8
)

// IntType is a type constraint for raw values represented as signed
// integer types by physical arrays.
type IntType interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// UintType is a type constraint for raw values represented as unsigned
// integer types by physical arrays.
type UintType interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// FloatType is a type constraint for raw values for representing
// floating point values in physical arrays.
type FloatType interface {
	float16.Num | ~float32 | ~float64
}

// NumericType is a type constraint for just signed/unsigned integers
// and float32/float64.
type NumericType interface {
	IntType | UintType | ~float32 | ~float64
}

// FixedWidthType is a type constraint for raw values that are stored
// contiguously, one per slot, in the values buffer of a fixed-size layout.
type FixedWidthType interface {
	IntType | UintType | FloatType
}

// OffsetType is the constraint for the offsets of variable-size binary and
// list layouts.
type OffsetType interface {
	int32 | int64
}

// RunEndType is the constraint for the run ends of run-end encoded arrays.
type RunEndType interface {
	int16 | int32 | int64
}

// OrderedFixedWidth is the subset of FixedWidthType supporting < and >.
type OrderedFixedWidth interface {
	FixedWidthType
	constraints.Ordered
}

// GetBytes reinterprets a slice of T elements as a slice of bytes.
func GetBytes[T FixedWidthType](in []T) []byte {
	if len(in) == 0 {
		return []byte{}
	}
	var z T
	return unsafe.Slice((*byte)(unsafe.Pointer(&in[0])), len(in)*int(unsafe.Sizeof(z)))
}

// GetData reinterprets a slice of bytes as a slice of T elements. Trailing
// bytes that do not form a whole element are ignored.
func GetData[T FixedWidthType](in []byte) []T {
	var z T
	n := len(in) / int(unsafe.Sizeof(z))
	if n == 0 {
		return []T{}
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&in[0])), n)
}

// SizeOf returns the number of bytes occupied by a single T.
func SizeOf[T FixedWidthType]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

var float16Type = reflect.TypeOf(float16.Num{})

// FixedWidthTypeOf returns the data type used to store values of Go type T.
// Named types resolve through their underlying kind.
func FixedWidthTypeOf[T FixedWidthType]() FixedWidthDataType {
	dt, _ := FixedWidthTypeForKind(reflect.TypeOf((*T)(nil)).Elem())
	return dt
}

// FixedWidthTypeForKind maps a Go type to the fixed-width data type
// storing it. int and uint map to their 64-bit counterparts.
func FixedWidthTypeForKind(t reflect.Type) (FixedWidthDataType, bool) {
	if t == float16Type {
		return FixedWidthTypes.Float16, true
	}
	switch t.Kind() {
	case reflect.Bool:
		return FixedWidthTypes.Boolean, true
	case reflect.Int8:
		return PrimitiveTypes.Int8, true
	case reflect.Int16:
		return PrimitiveTypes.Int16, true
	case reflect.Int32:
		return PrimitiveTypes.Int32, true
	case reflect.Int64, reflect.Int:
		return PrimitiveTypes.Int64, true
	case reflect.Uint8:
		return PrimitiveTypes.Uint8, true
	case reflect.Uint16:
		return PrimitiveTypes.Uint16, true
	case reflect.Uint32:
		return PrimitiveTypes.Uint32, true
	case reflect.Uint64, reflect.Uint:
		return PrimitiveTypes.Uint64, true
	case reflect.Float32:
		return PrimitiveTypes.Float32, true
	case reflect.Float64:
		return PrimitiveTypes.Float64, true
	}
	return nil, false
}
