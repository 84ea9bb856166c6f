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
	"strings"
)

// Field describes one named, possibly nullable, child of a nested type.
type Field struct {
	Name     string   // Field name
	Type     DataType // The field's data type
	Nullable bool     // Fields can be nullable
}

func (f Field) Equal(o Field) bool {
	return f.Name == o.Name && f.Nullable == o.Nullable && TypeEqual(f.Type, o.Type)
}

func (f Field) String() string {
	var o strings.Builder
	nullable := ""
	if f.Nullable {
		nullable = ", nullable"
	}
	fmt.Fprintf(&o, "%s: type=%v%s", f.Name, f.Type, nullable)
	return o.String()
}

type listType struct {
	elem Field
}

func (t *listType) Elem() DataType      { return t.elem.Type }
func (t *listType) ElemField() Field    { return t.elem }
func (t *listType) Fields() []Field     { return []Field{t.elem} }
func (t *listType) NumFields() int      { return 1 }
func (t *listType) elemString() string {
	var nullable string
	if t.elem.Nullable {
		nullable = ", nullable"
	}
	return t.elem.Name + ": " + t.elem.Type.String() + nullable
}

// ListType describes a nested type in which each array slot contains
// a variable-size sequence of values, all having the same relative type.
type ListType struct {
	listType
}

// ListOf returns the list type with element type t.
// For example, if t represents int32, ListOf(t) represents []int32.
//
// ListOf panics if t is nil or invalid. NullableElem defaults to true
func ListOf(t DataType) *ListType {
	if t == nil {
		panic("arrow: nil DataType")
	}
	return &ListType{listType{elem: Field{Name: "item", Type: t, Nullable: true}}}
}

// ListOfField returns the list type whose element is described by f.
func ListOfField(f Field) *ListType {
	if f.Type == nil {
		panic("arrow: nil type for list field")
	}
	return &ListType{listType{elem: f}}
}

// ListOfNonNullable is like ListOf but NullableElem defaults to false, indicating
// that the child type should be marked as non-nullable.
func ListOfNonNullable(t DataType) *ListType {
	if t == nil {
		panic("arrow: nil DataType")
	}
	return &ListType{listType{elem: Field{Name: "item", Type: t, Nullable: false}}}
}

func (*ListType) ID() Type            { return LIST }
func (*ListType) Name() string        { return "list" }
func (t *ListType) String() string    { return "list<" + t.elemString() + ">" }
func (*ListType) OffsetBytes() int    { return Int32SizeBytes }
func (*ListType) Layout() DataTypeLayout {
	return DataTypeLayout{Buffers: []BufferSpec{SpecBitmap(), SpecFixedWidth(Int32SizeBytes)}}
}

// LargeListType is a ListType with 64-bit offsets.
type LargeListType struct {
	listType
}

func LargeListOf(t DataType) *LargeListType {
	if t == nil {
		panic("arrow: nil DataType")
	}
	return &LargeListType{listType{elem: Field{Name: "item", Type: t, Nullable: true}}}
}

func LargeListOfField(f Field) *LargeListType {
	if f.Type == nil {
		panic("arrow: nil type for list field")
	}
	return &LargeListType{listType{elem: f}}
}

func (*LargeListType) ID() Type         { return LARGE_LIST }
func (*LargeListType) Name() string     { return "large_list" }
func (t *LargeListType) String() string { return "large_list<" + t.elemString() + ">" }
func (*LargeListType) OffsetBytes() int { return Int64SizeBytes }
func (*LargeListType) Layout() DataTypeLayout {
	return DataTypeLayout{Buffers: []BufferSpec{SpecBitmap(), SpecFixedWidth(Int64SizeBytes)}}
}

// ListLikeType is implemented by ListType and LargeListType.
type ListLikeType interface {
	OffsetsDataType
	NestedType
	Elem() DataType
	ElemField() Field
}

// StructType describes a nested type parameterized by an ordered sequence
// of relative types, called its fields.
type StructType struct {
	fields []Field
	index  map[string][]int
}

// StructOf returns the struct type with fields fs.
//
// StructOf panics if there is a field with an invalid DataType.
func StructOf(fs ...Field) *StructType {
	n := len(fs)
	if n == 0 {
		return &StructType{}
	}

	t := &StructType{
		fields: make([]Field, n),
		index:  make(map[string][]int, n),
	}
	for i, f := range fs {
		if f.Type == nil {
			panic("arrow: field with nil DataType")
		}
		t.fields[i] = f
		t.index[f.Name] = append(t.index[f.Name], i)
	}

	return t
}

func (*StructType) ID() Type     { return STRUCT }
func (*StructType) Name() string { return "struct" }

func (t *StructType) String() string {
	var o strings.Builder
	o.WriteString("struct<")
	for i, f := range t.fields {
		if i > 0 {
			o.WriteString(", ")
		}
		o.WriteString(fmt.Sprintf("%s: %v", f.Name, f.Type))
	}
	o.WriteString(">")
	return o.String()
}

// Fields method provides a copy of StructType fields
// so that StructType remains immutable.
func (t *StructType) Fields() []Field {
	fields := make([]Field, len(t.fields))
	copy(fields, t.fields)
	return fields
}

func (t *StructType) NumFields() int { return len(t.fields) }

func (t *StructType) Field(i int) Field { return t.fields[i] }

// FieldByName gets the field with the given name.
//
// If there are multiple fields with the given name, FieldByName
// returns the first such field.
func (t *StructType) FieldByName(name string) (Field, bool) {
	i, ok := t.index[name]
	if !ok {
		return Field{}, false
	}
	return t.fields[i[0]], true
}

// FieldIdx gets the index of the field with the given name.
//
// If there are multiple fields with the given name, FieldIdx returns
// the index of the first such field.
func (t *StructType) FieldIdx(name string) (int, bool) {
	i, ok := t.index[name]
	if ok {
		return i[0], true
	}
	return -1, false
}

func (*StructType) Layout() DataTypeLayout {
	return DataTypeLayout{Buffers: []BufferSpec{SpecBitmap()}}
}

// DictionaryType represents categorical or dictionary-encoded in-memory data
// It contains a dictionary-encoded value type (any type) and an index type
// (any unsigned integer type).
type DictionaryType struct {
	IndexType DataType
	ValueType DataType
	Ordered   bool
}

func (*DictionaryType) ID() Type     { return DICTIONARY }
func (*DictionaryType) Name() string { return "dictionary" }
func (d *DictionaryType) String() string {
	return fmt.Sprintf("%s<values=%s, indices=%s, ordered=%t>",
		d.Name(), typeString(d.ValueType), typeString(d.IndexType), d.Ordered)
}

func (d *DictionaryType) Layout() DataTypeLayout {
	if idx, ok := d.IndexType.(FixedWidthDataType); ok {
		return DataTypeLayout{Buffers: []BufferSpec{SpecBitmap(), SpecFixedWidth(idx.Bytes())}, HasDict: true}
	}
	return DataTypeLayout{Buffers: []BufferSpec{SpecBitmap()}, HasDict: true}
}

// DictionaryIndexTypeFor returns the narrowest unsigned integer type able
// to index a dictionary of n values.
func DictionaryIndexTypeFor(n int) FixedWidthDataType {
	switch {
	case n <= 1<<8:
		return PrimitiveTypes.Uint8
	case n <= 1<<16:
		return PrimitiveTypes.Uint16
	case uint64(n) <= 1<<32:
		return PrimitiveTypes.Uint32
	default:
		return PrimitiveTypes.Uint64
	}
}

var (
	_ ListLikeType = (*ListType)(nil)
	_ ListLikeType = (*LargeListType)(nil)
	_ NestedType   = (*StructType)(nil)
)
