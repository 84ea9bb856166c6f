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
	"strings"

	"github.com/quiverdata/quiver/arrow"
)

// ListValue is element i of a list array: a view of the half-open range
// of the flattened child bounded by the element's two offsets. It does not
// copy and is valid for as long as the list array is.
type ListValue struct {
	values   arrow.Array
	beg, end int
}

// Len returns the number of child elements in the list element.
func (v ListValue) Len() int { return v.end - v.beg }

// Bounds returns the offsets of the element into the flattened child.
func (v ListValue) Bounds() (beg, end int) { return v.beg, v.end }

// Values returns the flattened child the element views.
func (v ListValue) Values() arrow.Array { return v.values }

// ValueAt returns child element j of the list element.
func (v ListValue) ValueAt(j int) arrow.AnyNullable { return v.values.ValueAt(v.beg + j) }

// IsValid reports whether child element j of the list element is valid.
func (v ListValue) IsValid(j int) bool { return v.values.IsValid(v.beg + j) }

func (v ListValue) String() string {
	var o strings.Builder
	o.WriteString("[")
	for j := 0; j < v.Len(); j++ {
		if j > 0 {
			o.WriteString(" ")
		}
		o.WriteString(formatValue(v.ValueAt(j)))
	}
	o.WriteString("]")
	return o.String()
}

// GenericList represents an immutable sequence of array values with
// offsets of type O.
type GenericList[O arrow.OffsetType] struct {
	array
	layout ListLayout[O]
}

type (
	List      = GenericList[int32]
	LargeList = GenericList[int64]
)

// NewListData returns a new List array value, from data.
func NewListData(data arrow.ArrayData) *List { return newGenericList[int32](data) }

// NewLargeListData returns a new LargeList array value, from data.
func NewLargeListData(data arrow.ArrayData) *LargeList { return newGenericList[int64](data) }

func newGenericList[O arrow.OffsetType](data arrow.ArrayData) *GenericList[O] {
	a := &GenericList[O]{}
	a.refCount = 1
	a.setData(data.(*Data))
	return a
}

func (a *GenericList[O]) setData(data *Data) {
	a.array.setData(data)
	a.layout.Bind(data)
}

// ListValues returns the flattened child array.
func (a *GenericList[O]) ListValues() arrow.Array { return a.layout.ListValues() }

// Offsets returns the Len()+1 offsets of the array.
func (a *GenericList[O]) Offsets() []O { return a.layout.ValueOffsets() }

// ValueOffsets returns the offsets bounding element i.
func (a *GenericList[O]) ValueOffsets(i int) (start, end int64) {
	offsets := a.layout.ValueOffsets()
	return int64(offsets[i]), int64(offsets[i+1])
}

// Value returns the view of element i.
func (a *GenericList[O]) Value(i int) ListValue { return a.layout.Value(i) }

func (a *GenericList[O]) ValueAt(i int) arrow.AnyNullable {
	return arrow.MakeNullable[any](a.Value(i), a.IsValid(i))
}

func (a *GenericList[O]) NumChildren() int { return 1 }

func (a *GenericList[O]) Child(i int) arrow.Array {
	if i != 0 {
		return a.array.Child(i)
	}
	return a.layout.ListValues()
}

func (a *GenericList[O]) String() string { return formatArray(a) }

func (a *GenericList[O]) MarshalJSON() ([]byte, error) { return marshalArray(a) }

func (a *GenericList[O]) Retain() {
	a.array.Retain()
	a.layout.values.Retain()
}

func (a *GenericList[O]) Release() {
	a.array.Release()
	a.layout.values.Release()
}

var (
	_ arrow.Array = (*List)(nil)
	_ arrow.Array = (*LargeList)(nil)
)
