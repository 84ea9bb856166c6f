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
	"unsafe"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/bitutil"
	"github.com/quiverdata/quiver/arrow/encoded"
	"github.com/quiverdata/quiver/arrow/float16"
	"github.com/quiverdata/quiver/arrow/internal/debug"
)

// Layout reads the elements of one array record as values of T.
//
// A layout is bound to a record with Bind and reads it in place; it never
// copies buffers. Binding again replaces the previous record, so a layout
// can be reused across records of the same type. Release drops whatever
// the current binding holds on to.
type Layout[T any] interface {
	Bind(data *Data)
	Len() int
	IsValid(i int) bool
	Value(i int) T
	Release()
}

// NullLayout reads a NULL record: every position is invalid.
type NullLayout[T any] struct {
	length int
}

func (l *NullLayout[T]) Bind(data *Data)    { l.length = data.Len() }
func (l *NullLayout[T]) Len() int           { return l.length }
func (l *NullLayout[T]) IsValid(i int) bool { return false }
func (l *NullLayout[T]) Release()           {}

func (l *NullLayout[T]) Value(i int) (out T) {
	debug.Assert(i >= 0 && i < l.length, "arrow/array: index out of range")
	return
}

// FixedSizeLayout reads fixed-width values stored contiguously, one per slot.
type FixedSizeLayout[T arrow.FixedWidthType] struct {
	validity bitutil.Bitmap
	values   []T
}

func (l *FixedSizeLayout[T]) Bind(data *Data) {
	l.validity = data.Bitmap()
	l.values = nil
	if len(data.buffers) > 0 && data.buffers[0] != nil {
		vals := arrow.GetData[T](data.buffers[0].Bytes())
		l.values = vals[data.offset : data.offset+data.length]
	}
}

func (l *FixedSizeLayout[T]) Len() int           { return l.validity.Len() }
func (l *FixedSizeLayout[T]) IsValid(i int) bool { return l.validity.IsSet(i) }
func (l *FixedSizeLayout[T]) Value(i int) T      { return l.values[i] }
func (l *FixedSizeLayout[T]) Values() []T        { return l.values }
func (l *FixedSizeLayout[T]) Release()           { l.values = nil }

// BooleanLayout reads bit-packed booleans.
type BooleanLayout struct {
	validity bitutil.Bitmap
	values   bitutil.Bitmap
}

func (l *BooleanLayout) Bind(data *Data) {
	l.validity = data.Bitmap()
	var raw []byte
	if len(data.buffers) > 0 && data.buffers[0] != nil {
		raw = data.buffers[0].Bytes()
	}
	if raw == nil {
		raw = []byte{}
	}
	l.values = bitutil.NewBitmap(raw, data.offset, data.length)
}

func (l *BooleanLayout) Len() int           { return l.validity.Len() }
func (l *BooleanLayout) IsValid(i int) bool { return l.validity.IsSet(i) }
func (l *BooleanLayout) Value(i int) bool   { return l.values.IsSet(i) }
func (l *BooleanLayout) Release()           {}

type binaryLayout[O arrow.OffsetType] struct {
	validity bitutil.Bitmap
	offsets  []O
	data     []byte
}

func (l *binaryLayout[O]) Bind(data *Data) {
	l.validity = data.Bitmap()
	l.offsets, l.data = nil, nil
	if len(data.buffers) > 0 && data.buffers[0] != nil {
		offsets := arrow.GetData[O](data.buffers[0].Bytes())
		if data.length > 0 {
			l.offsets = offsets[data.offset : data.offset+data.length+1]
		}
	}
	if len(data.buffers) > 1 && data.buffers[1] != nil {
		l.data = data.buffers[1].Bytes()
	}
}

func (l *binaryLayout[O]) Len() int           { return l.validity.Len() }
func (l *binaryLayout[O]) IsValid(i int) bool { return l.validity.IsSet(i) }
func (l *binaryLayout[O]) Release()           { l.offsets, l.data = nil, nil }

// ValueOffsets returns the length+1 offsets visible through the binding.
func (l *binaryLayout[O]) ValueOffsets() []O { return l.offsets }

// ValueData returns the whole data buffer, including bytes outside of the binding.
func (l *binaryLayout[O]) ValueData() []byte { return l.data }

func (l *binaryLayout[O]) valueBytes(i int) []byte {
	debug.Assert(i >= 0 && i < l.Len(), "arrow/array: index out of range")
	return l.data[l.offsets[i]:l.offsets[i+1]]
}

// ValueLen returns the byte length of element i.
func (l *binaryLayout[O]) ValueLen(i int) int { return int(l.offsets[i+1] - l.offsets[i]) }

// BinaryLayout reads variable-size byte strings. Values alias the data buffer.
type BinaryLayout[O arrow.OffsetType] struct {
	binaryLayout[O]
}

func (l *BinaryLayout[O]) Value(i int) []byte { return l.valueBytes(i) }

// StringLayout reads variable-size UTF-8 strings. Values alias the data buffer.
type StringLayout[O arrow.OffsetType] struct {
	binaryLayout[O]
}

func (l *StringLayout[O]) Value(i int) string {
	b := l.valueBytes(i)
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// FixedSizeBinaryLayout reads byte strings of one fixed width.
type FixedSizeBinaryLayout struct {
	validity  bitutil.Bitmap
	byteWidth int
	data      []byte
}

func (l *FixedSizeBinaryLayout) Bind(data *Data) {
	l.validity = data.Bitmap()
	l.byteWidth = data.dtype.(*arrow.FixedSizeBinaryType).ByteWidth
	l.data = nil
	if len(data.buffers) > 0 && data.buffers[0] != nil {
		raw := data.buffers[0].Bytes()
		l.data = raw[data.offset*l.byteWidth : (data.offset+data.length)*l.byteWidth]
	}
}

func (l *FixedSizeBinaryLayout) Len() int           { return l.validity.Len() }
func (l *FixedSizeBinaryLayout) IsValid(i int) bool { return l.validity.IsSet(i) }
func (l *FixedSizeBinaryLayout) Release()           { l.data = nil }

func (l *FixedSizeBinaryLayout) Value(i int) []byte {
	return l.data[i*l.byteWidth : (i+1)*l.byteWidth]
}

// TupleLayout reads a FIXED_SIZE_BINARY record as homogeneous tuples of
// fixed-width elements, each value a view of ByteWidth/sizeof(E) elements.
type TupleLayout[E arrow.FixedWidthType] struct {
	FixedSizeBinaryLayout
}

func (l *TupleLayout[E]) Value(i int) []E {
	return arrow.GetData[E](l.FixedSizeBinaryLayout.Value(i))
}

// DictionaryLayout reads a dictionary encoded record through a layout of
// the dictionary values.
type DictionaryLayout[T any] struct {
	validity bitutil.Bitmap
	indices  indexReader
	values   Layout[T]
	newInner func() Layout[T]
}

// NewDictionaryLayout returns a dictionary layout reading the dictionary
// with layouts produced by newInner.
func NewDictionaryLayout[T any](newInner func() Layout[T]) *DictionaryLayout[T] {
	return &DictionaryLayout[T]{newInner: newInner}
}

func (l *DictionaryLayout[T]) Bind(data *Data) {
	l.validity = data.Bitmap()
	l.indices = newIndexReader(data)
	if l.values == nil {
		l.values = l.newInner()
	}
	l.values.Bind(data.dictionary)
}

func (l *DictionaryLayout[T]) Len() int { return l.validity.Len() }

// IsValid reports whether the index at i is valid and refers to a valid
// dictionary value.
func (l *DictionaryLayout[T]) IsValid(i int) bool {
	return l.validity.IsSet(i) && l.values.IsValid(l.indices.At(i))
}

func (l *DictionaryLayout[T]) Value(i int) T { return l.values.Value(l.indices.At(i)) }

// Index returns the dictionary index stored at i.
func (l *DictionaryLayout[T]) Index(i int) int { return l.indices.At(i) }

func (l *DictionaryLayout[T]) Release() {
	if l.values != nil {
		l.values.Release()
	}
}

// indexReader reads integer dictionary indices of any width as int.
type indexReader struct {
	id  arrow.Type
	raw []byte
	off int
}

func newIndexReader(data *Data) indexReader {
	r := indexReader{id: data.dtype.(*arrow.DictionaryType).IndexType.ID(), off: data.offset}
	if len(data.buffers) > 0 && data.buffers[0] != nil {
		r.raw = data.buffers[0].Bytes()
	}
	return r
}

func (r indexReader) At(i int) int {
	i += r.off
	switch r.id {
	case arrow.UINT8:
		return int(r.raw[i])
	case arrow.INT8:
		return int(int8(r.raw[i]))
	case arrow.UINT16:
		return int(arrow.GetData[uint16](r.raw)[i])
	case arrow.INT16:
		return int(arrow.GetData[int16](r.raw)[i])
	case arrow.UINT32:
		return int(arrow.GetData[uint32](r.raw)[i])
	case arrow.INT32:
		return int(arrow.GetData[int32](r.raw)[i])
	case arrow.UINT64:
		return int(arrow.GetData[uint64](r.raw)[i])
	case arrow.INT64:
		return int(arrow.GetData[int64](r.raw)[i])
	}
	panic("arrow/array: invalid dictionary index type " + r.id.String())
}

// ListLayout reads list elements as ListValue views of the flattened child.
type ListLayout[O arrow.OffsetType] struct {
	validity bitutil.Bitmap
	offsets  []O
	values   arrow.Array
}

func (l *ListLayout[O]) Bind(data *Data) {
	l.Release()
	l.validity = data.Bitmap()
	l.offsets = nil
	if len(data.buffers) > 0 && data.buffers[0] != nil && data.length > 0 {
		offsets := arrow.GetData[O](data.buffers[0].Bytes())
		l.offsets = offsets[data.offset : data.offset+data.length+1]
	}
	l.values = MakeFromData(data.child(0))
}

func (l *ListLayout[O]) Len() int           { return l.validity.Len() }
func (l *ListLayout[O]) IsValid(i int) bool { return l.validity.IsSet(i) }

func (l *ListLayout[O]) Value(i int) ListValue {
	return ListValue{values: l.values, beg: int(l.offsets[i]), end: int(l.offsets[i+1])}
}

// ValueOffsets returns the length+1 offsets visible through the binding.
func (l *ListLayout[O]) ValueOffsets() []O { return l.offsets }

// ListValues returns the flattened child array.
func (l *ListLayout[O]) ListValues() arrow.Array { return l.values }

func (l *ListLayout[O]) Release() {
	if l.values != nil {
		l.values.Release()
		l.values = nil
	}
}

// StructLayout reads struct elements as StructValue views of the fields.
type StructLayout struct {
	validity bitutil.Bitmap
	offset   int
	dtype    *arrow.StructType
	fields   []arrow.Array
}

func (l *StructLayout) Bind(data *Data) {
	l.Release()
	l.validity = data.Bitmap()
	l.offset = data.offset
	l.dtype = data.dtype.(*arrow.StructType)
	l.fields = make([]arrow.Array, len(data.childData))
	for i := range data.childData {
		l.fields[i] = MakeFromData(data.child(i))
	}
}

func (l *StructLayout) Len() int           { return l.validity.Len() }
func (l *StructLayout) IsValid(i int) bool { return l.validity.IsSet(i) }

func (l *StructLayout) Value(i int) StructValue {
	return StructValue{dtype: l.dtype, fields: l.fields, idx: l.offset + i}
}

// Field returns the array of field i, indexed like the struct's buffers.
func (l *StructLayout) Field(i int) arrow.Array { return l.fields[i] }

func (l *StructLayout) NumField() int { return len(l.fields) }

func (l *StructLayout) Release() {
	for _, f := range l.fields {
		f.Release()
	}
	l.fields = nil
}

// RunEndLayout reads a run-end encoded record through a layout of its
// values child.
type RunEndLayout[T any] struct {
	data     *Data
	values   Layout[T]
	newInner func() Layout[T]
}

// NewRunEndLayout returns a run-end layout reading the values child with
// layouts produced by newInner.
func NewRunEndLayout[T any](newInner func() Layout[T]) *RunEndLayout[T] {
	return &RunEndLayout[T]{newInner: newInner}
}

func (l *RunEndLayout[T]) Bind(data *Data) {
	l.data = data
	if l.values == nil {
		l.values = l.newInner()
	}
	l.values.Bind(data.child(1))
}

func (l *RunEndLayout[T]) Len() int { return l.data.Len() }

// PhysicalIndex returns the index into the values child of logical element i.
func (l *RunEndLayout[T]) PhysicalIndex(i int) int {
	debug.Assert(i >= 0 && i < l.data.Len(), "arrow/array: index out of range")
	return encoded.PhysicalIndex(l.data, i)
}

func (l *RunEndLayout[T]) IsValid(i int) bool { return l.values.IsValid(l.PhysicalIndex(i)) }
func (l *RunEndLayout[T]) Value(i int) T      { return l.values.Value(l.PhysicalIndex(i)) }

func (l *RunEndLayout[T]) Release() {
	if l.values != nil {
		l.values.Release()
	}
	l.data = nil
}

var (
	_ Layout[int64]       = (*FixedSizeLayout[int64])(nil)
	_ Layout[float16.Num] = (*FixedSizeLayout[float16.Num])(nil)
	_ Layout[bool]        = (*BooleanLayout)(nil)
	_ Layout[string]      = (*StringLayout[int32])(nil)
	_ Layout[[]byte]      = (*BinaryLayout[int64])(nil)
	_ Layout[[]byte]      = (*FixedSizeBinaryLayout)(nil)
	_ Layout[[]float32]   = (*TupleLayout[float32])(nil)
	_ Layout[string]      = (*DictionaryLayout[string])(nil)
	_ Layout[ListValue]   = (*ListLayout[int32])(nil)
	_ Layout[StructValue] = (*StructLayout)(nil)
	_ Layout[float64]     = (*RunEndLayout[float64])(nil)
	_ Layout[any]         = (*NullLayout[any])(nil)
)
