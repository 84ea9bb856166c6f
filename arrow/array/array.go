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
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/bitutil"
	"github.com/quiverdata/quiver/arrow/internal/debug"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/quiverdata/quiver/internal/json"
)

const (
	// NullValueStr represents a null value in arrow.Array.String.
	NullValueStr = "(null)"
)

// A type which satisfies array.Interface and exposes the methods shared by
// every concrete array.
type array struct {
	refCount        int64
	data            *Data
	nullBitmapBytes []byte
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (a *array) Retain() {
	atomic.AddInt64(&a.refCount, 1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (a *array) Release() {
	debug.Assert(atomic.LoadInt64(&a.refCount) > 0, "too many releases")

	if atomic.AddInt64(&a.refCount, -1) == 0 {
		a.data.Release()
		a.data, a.nullBitmapBytes = nil, nil
	}
}

// DataType returns the type metadata for this instance.
func (a *array) DataType() arrow.DataType { return a.data.dtype }

// NullN returns the number of null values in the array.
func (a *array) NullN() int { return a.data.NullN() }

// NullBitmapBytes returns a byte slice of the validity bitmap.
func (a *array) NullBitmapBytes() []byte { return a.nullBitmapBytes }

func (a *array) Data() arrow.ArrayData { return a.data }

// Len returns the number of elements in the array.
func (a *array) Len() int { return a.data.length }

// IsNull returns true if value at index is null.
// NOTE: IsNull will panic if NullBitmapBytes is not empty and 0 > i ≥ Len.
func (a *array) IsNull(i int) bool {
	return len(a.nullBitmapBytes) != 0 && bitutil.BitIsNotSet(a.nullBitmapBytes, a.data.offset+i)
}

// IsValid returns true if value at index is not null.
// NOTE: IsValid will panic if NullBitmapBytes is not empty and 0 > i ≥ Len.
func (a *array) IsValid(i int) bool {
	return len(a.nullBitmapBytes) == 0 || bitutil.BitIsSet(a.nullBitmapBytes, a.data.offset+i)
}

func (a *array) NumChildren() int { return 0 }

func (a *array) Child(i int) arrow.Array {
	panic(fmt.Errorf("%w: arrow/array: %s has no children", arrow.ErrIndex, a.data.dtype))
}

// Clone returns a deep copy of the array allocated from the default allocator.
func (a *array) Clone() arrow.Array {
	return Copy(a.data, memory.DefaultAllocator)
}

func (a *array) setData(data *Data) {
	// Retain before releasing in case a.data is the same as data.
	data.Retain()

	if a.data != nil {
		a.data.Release()
	}

	a.nullBitmapBytes = nil
	if data.bitmap != nil {
		a.nullBitmapBytes = data.bitmap.Bytes()
	}
	a.data = data
}

// Copy deep copies data with mem and returns an array over the copy.
func Copy(data arrow.ArrayData, mem memory.Allocator) arrow.Array {
	cp := data.(*Data).Copy(mem)
	defer cp.Release()
	return MakeFromData(cp)
}

type arrayConstructorFn func(arrow.ArrayData) arrow.Array

var (
	makeArrayFn [64]arrayConstructorFn
)

func invalidDataType(data arrow.ArrayData) arrow.Array {
	panic(fmt.Errorf("%w: invalid data type: %s", arrow.ErrNotImplemented, data.DataType().ID()))
}

// MakeFromData constructs a strongly-typed array instance from generic Data.
// It retains data; callers keep their own reference.
func MakeFromData(data arrow.ArrayData) arrow.Array {
	return makeArrayFn[byte(data.DataType().ID()&0x3f)](data)
}

// NewSlice constructs a zero-copy slice of the array with the indicated
// indices i and j, corresponding to array[i:j].
// The returned array must be Release()'d after use.
//
// NewSlice panics if the slice is outside the valid range of the input array.
// NewSlice panics if j < i.
func NewSlice(arr arrow.Array, i, j int) arrow.Array {
	data := NewSliceData(arr.Data(), i, j)
	slice := MakeFromData(data)
	data.Release()
	return slice
}

func init() {
	for i := range makeArrayFn {
		makeArrayFn[i] = invalidDataType
	}

	makeArrayFn[arrow.NULL] = func(data arrow.ArrayData) arrow.Array { return NewNullData(data) }
	makeArrayFn[arrow.BOOL] = func(data arrow.ArrayData) arrow.Array { return NewBooleanData(data) }
	makeArrayFn[arrow.UINT8] = func(data arrow.ArrayData) arrow.Array { return NewNumericData[uint8](data) }
	makeArrayFn[arrow.INT8] = func(data arrow.ArrayData) arrow.Array { return NewNumericData[int8](data) }
	makeArrayFn[arrow.UINT16] = func(data arrow.ArrayData) arrow.Array { return NewNumericData[uint16](data) }
	makeArrayFn[arrow.INT16] = func(data arrow.ArrayData) arrow.Array { return NewNumericData[int16](data) }
	makeArrayFn[arrow.UINT32] = func(data arrow.ArrayData) arrow.Array { return NewNumericData[uint32](data) }
	makeArrayFn[arrow.INT32] = func(data arrow.ArrayData) arrow.Array { return NewNumericData[int32](data) }
	makeArrayFn[arrow.UINT64] = func(data arrow.ArrayData) arrow.Array { return NewNumericData[uint64](data) }
	makeArrayFn[arrow.INT64] = func(data arrow.ArrayData) arrow.Array { return NewNumericData[int64](data) }
	makeArrayFn[arrow.FLOAT16] = func(data arrow.ArrayData) arrow.Array { return NewFloat16Data(data) }
	makeArrayFn[arrow.FLOAT32] = func(data arrow.ArrayData) arrow.Array { return NewNumericData[float32](data) }
	makeArrayFn[arrow.FLOAT64] = func(data arrow.ArrayData) arrow.Array { return NewNumericData[float64](data) }
	makeArrayFn[arrow.STRING] = func(data arrow.ArrayData) arrow.Array { return NewStringData(data) }
	makeArrayFn[arrow.LARGE_STRING] = func(data arrow.ArrayData) arrow.Array { return NewLargeStringData(data) }
	makeArrayFn[arrow.BINARY] = func(data arrow.ArrayData) arrow.Array { return NewBinaryData(data) }
	makeArrayFn[arrow.LARGE_BINARY] = func(data arrow.ArrayData) arrow.Array { return NewLargeBinaryData(data) }
	makeArrayFn[arrow.FIXED_SIZE_BINARY] = func(data arrow.ArrayData) arrow.Array { return NewFixedSizeBinaryData(data) }
	makeArrayFn[arrow.LIST] = func(data arrow.ArrayData) arrow.Array { return NewListData(data) }
	makeArrayFn[arrow.LARGE_LIST] = func(data arrow.ArrayData) arrow.Array { return NewLargeListData(data) }
	makeArrayFn[arrow.STRUCT] = func(data arrow.ArrayData) arrow.Array { return NewStructData(data) }
	makeArrayFn[arrow.DICTIONARY] = func(data arrow.ArrayData) arrow.Array { return NewDictionaryData(data) }
	makeArrayFn[arrow.RUN_END_ENCODED] = func(data arrow.ArrayData) arrow.Array { return NewRunEndEncodedData(data) }
}

// formatArray renders arr as [v0 v1 (null) ...].
func formatArray(arr arrow.Array) string {
	var o strings.Builder
	o.WriteString("[")
	for i := 0; i < arr.Len(); i++ {
		if i > 0 {
			o.WriteString(" ")
		}
		o.WriteString(formatValue(arr.ValueAt(i)))
	}
	o.WriteString("]")
	return o.String()
}

func formatValue(v arrow.AnyNullable) string {
	if !v.HasValue() {
		return NullValueStr
	}
	switch v := v.Value().(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}

// jsonValue converts an element into the value encoded for it by MarshalJSON.
func jsonValue(v arrow.AnyNullable) interface{} {
	if !v.HasValue() {
		return nil
	}
	switch v := v.Value().(type) {
	case ListValue:
		out := make([]interface{}, v.Len())
		for i := range out {
			out[i] = jsonValue(v.ValueAt(i))
		}
		return out
	case StructValue:
		out := make(map[string]interface{}, v.NumField())
		for i := 0; i < v.NumField(); i++ {
			out[v.FieldName(i)] = jsonValue(v.Field(i))
		}
		return out
	case interface{ Float32() float32 }:
		return v.Float32()
	default:
		return v
	}
}

func marshalArray(arr arrow.Array) ([]byte, error) {
	vals := make([]interface{}, arr.Len())
	for i := range vals {
		vals[i] = jsonValue(arr.ValueAt(i))
	}
	return json.Marshal(vals)
}
