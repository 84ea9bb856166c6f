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

	"github.com/quiverdata/quiver/arrow/bitutil"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/quiverdata/quiver/internal/json"
)

// ArrayData is the underlying memory and metadata of an Arrow array,
// corresponding to the same-named object in the C++ implementation.
//
// The Array interface and subsequent typed objects provide strongly typed
// accessors which support marshalling and other patterns to the data.
// This interface allows direct access to the underlying raw byte buffers
// which allows for manipulating the internal data and casting.
type ArrayData interface {
	// Retain increases the reference count by 1, it is safe to call
	// in multiple goroutines simultaneously.
	Retain()
	// Release decreases the reference count by 1, it is safe to call
	// in multiple goroutines simultaneously. Data is removed when reference
	// count is 0.
	Release()
	// DataType returns the current datatype stored in the object.
	DataType() DataType
	// NullN returns the number of nulls for this data instance.
	NullN() int
	// Len returns the length of this data instance
	Len() int
	// Offset returns the offset into the raw buffers where this data begins
	Offset() int
	// Bitmap returns the validity of this data instance, position 0 being
	// the element at Offset.
	Bitmap() bitutil.Bitmap
	// BitmapBuffer returns the raw validity buffer, nil when every element is valid.
	BitmapBuffer() *memory.Buffer
	// Buffers returns the slice of raw data buffers for this data instance,
	// validity excluded. Their meaning depends on the datatype.
	Buffers() []*memory.Buffer
	// Children returns the slice of children data instances, only relevant
	// for nested data types. For instance, List data will have a single child
	// containing elements of all the rows and Struct data will contain numfields
	// children which are the arrays for each field of the struct.
	Children() []ArrayData
	// Dictionary returns the ArrayData object for the dictionary if this is a
	// dictionary array, otherwise it will be nil.
	Dictionary() ArrayData
}

// Array represents an immutable sequence of values using the Arrow in-memory format.
type Array interface {
	json.Marshaler

	fmt.Stringer

	// DataType returns the type metadata for this instance.
	DataType() DataType

	// NullN returns the number of null values in the array.
	NullN() int

	// Len returns the number of elements in the array.
	Len() int

	// IsNull returns true if value at index is null.
	// NOTE: IsNull will panic if NullBitmapBytes is not empty and 0 > i ≥ Len.
	IsNull(i int) bool

	// IsValid returns true if value at index is not null.
	// NOTE: IsValid will panic if NullBitmapBytes is not empty and 0 > i ≥ Len.
	IsValid(i int) bool

	// ValueAt returns the element at i as a type-erased nullable. Nested
	// arrays return views (array.ListValue, array.StructValue) rather than copies.
	ValueAt(i int) AnyNullable

	// Data returns the record backing the array.
	Data() ArrayData

	// NumChildren returns the number of child arrays.
	NumChildren() int

	// Child returns the i-th child array. The array keeps ownership of it.
	Child(i int) Array

	// Clone returns a deep copy of the array that shares no memory with it.
	Clone() Array

	// Retain increases the reference count by 1.
	// Retain may be called simultaneously from multiple goroutines.
	Retain()

	// Release decreases the reference count by 1.
	// Release may be called simultaneously from multiple goroutines.
	// When the reference count goes to zero, the memory is freed.
	Release()
}
