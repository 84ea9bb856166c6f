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

// StructValue is element i of a struct array: a view of position i across
// the field arrays. Field validity is independent of the struct's own.
type StructValue struct {
	dtype  *arrow.StructType
	fields []arrow.Array
	idx    int
}

func (v StructValue) NumField() int { return len(v.fields) }

// FieldName returns the name of field j.
func (v StructValue) FieldName(j int) string { return v.dtype.Field(j).Name }

// Field returns the value of field j.
func (v StructValue) Field(j int) arrow.AnyNullable { return v.fields[j].ValueAt(v.idx) }

// FieldByName returns the value of the first field called name.
func (v StructValue) FieldByName(name string) (arrow.AnyNullable, bool) {
	j, ok := v.dtype.FieldIdx(name)
	if !ok {
		return arrow.AnyNullable{}, false
	}
	return v.Field(j), true
}

func (v StructValue) String() string {
	var o strings.Builder
	o.WriteString("{")
	for j := range v.fields {
		if j > 0 {
			o.WriteString(" ")
		}
		o.WriteString(formatValue(v.Field(j)))
	}
	o.WriteString("}")
	return o.String()
}

// Struct represents an ordered sequence of relative types.
type Struct struct {
	array
	layout StructLayout
}

// NewStructData returns a new Struct array value from data.
func NewStructData(data arrow.ArrayData) *Struct {
	a := &Struct{}
	a.refCount = 1
	a.setData(data.(*Data))
	return a
}

func (a *Struct) setData(data *Data) {
	a.array.setData(data)
	a.layout.Bind(data)
}

func (a *Struct) NumField() int { return a.layout.NumField() }

// Field returns the array of field i. Its index space is shared with the
// struct's buffers: element j of the struct is element Offset()+j of the
// field.
func (a *Struct) Field(i int) arrow.Array { return a.layout.Field(i) }

// Value returns the view of element i.
func (a *Struct) Value(i int) StructValue { return a.layout.Value(i) }

func (a *Struct) ValueAt(i int) arrow.AnyNullable {
	return arrow.MakeNullable[any](a.Value(i), a.IsValid(i))
}

func (a *Struct) NumChildren() int        { return a.layout.NumField() }
func (a *Struct) Child(i int) arrow.Array { return a.layout.Field(i) }

func (a *Struct) String() string { return formatArray(a) }

func (a *Struct) MarshalJSON() ([]byte, error) { return marshalArray(a) }

func (a *Struct) Retain() {
	a.array.Retain()
	for _, f := range a.layout.fields {
		f.Retain()
	}
}

func (a *Struct) Release() {
	a.array.Release()
	for _, f := range a.layout.fields {
		f.Release()
	}
}

var (
	_ arrow.Array = (*Struct)(nil)
)
