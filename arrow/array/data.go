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
	"sync/atomic"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/bitutil"
	"github.com/quiverdata/quiver/arrow/internal/debug"
	"github.com/quiverdata/quiver/arrow/memory"
)

// UnknownNullCount marks a null count that is computed from the validity
// bitmap on first use.
const UnknownNullCount = -1

// Data represents the memory and metadata of an Arrow array: its type,
// logical length and offset, validity bitmap, data buffers, children and
// dictionary.
//
// The offset applies to the buffers of this record. Children of lists,
// dictionaries and run-end encoded records are indexed through the
// parent's buffers and keep their own offsets; children of structs share
// the struct's index space.
type Data struct {
	refCount   int64
	dtype      arrow.DataType
	nulls      int64
	offset     int
	length     int
	bitmap     *memory.Buffer
	buffers    []*memory.Buffer
	childData  []arrow.ArrayData
	dictionary *Data
}

// NewData creates a new Data.
//
// buffers holds the data buffers of the type, without the validity bitmap,
// which is passed separately and may be nil when every element is valid.
// NewData retains every buffer and child it is given.
func NewData(dtype arrow.DataType, length int, bitmap *memory.Buffer, buffers []*memory.Buffer, childData []arrow.ArrayData, nulls, offset int) *Data {
	if bitmap != nil {
		bitmap.Retain()
	}
	memory.RetainBuffers(buffers)
	for _, child := range childData {
		if child != nil {
			child.Retain()
		}
	}

	if dtype.ID() == arrow.NULL {
		nulls = length
	}

	return &Data{
		refCount:  1,
		dtype:     dtype,
		nulls:     int64(nulls),
		length:    length,
		offset:    offset,
		bitmap:    bitmap,
		buffers:   buffers,
		childData: childData,
	}
}

// NewDataWithDictionary creates a new data object, but also sets the provided
// dictionary into the data if it's not nil
func NewDataWithDictionary(dtype arrow.DataType, length int, bitmap *memory.Buffer, buffers []*memory.Buffer, nulls, offset int, dict *Data) *Data {
	data := NewData(dtype, length, bitmap, buffers, nil, nulls, offset)
	if dict != nil {
		dict.Retain()
	}
	data.dictionary = dict
	return data
}

// Reset sets the Data for re-use.
func (d *Data) Reset(dtype arrow.DataType, length int, bitmap *memory.Buffer, buffers []*memory.Buffer, childData []arrow.ArrayData, nulls, offset int) {
	// Retain new buffers before releasing existing buffers in-case they're the same ones to prevent accidental premature
	// release.
	if bitmap != nil {
		bitmap.Retain()
	}
	memory.RetainBuffers(buffers)
	for _, d := range childData {
		if d != nil {
			d.Retain()
		}
	}

	d.releaseContents()

	d.dtype = dtype
	d.length = length
	d.bitmap = bitmap
	d.buffers = buffers
	d.childData = childData
	d.nulls = int64(nulls)
	d.offset = offset
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (d *Data) Retain() {
	atomic.AddInt64(&d.refCount, 1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (d *Data) Release() {
	debug.Assert(atomic.LoadInt64(&d.refCount) > 0, "too many releases")

	if atomic.AddInt64(&d.refCount, -1) == 0 {
		d.releaseContents()
	}
}

func (d *Data) releaseContents() {
	if d.bitmap != nil {
		d.bitmap.Release()
	}
	memory.ReleaseBuffers(d.buffers)
	for _, b := range d.childData {
		if b != nil {
			b.Release()
		}
	}
	if d.dictionary != nil {
		d.dictionary.Release()
	}
	d.bitmap, d.buffers, d.childData, d.dictionary = nil, nil, nil, nil
}

// DataType returns the DataType of the data.
func (d *Data) DataType() arrow.DataType { return d.dtype }

// NullN returns the number of nulls, counting them from the bitmap when
// the count is not known yet.
func (d *Data) NullN() int {
	nulls := atomic.LoadInt64(&d.nulls)
	if nulls >= 0 {
		return int(nulls)
	}

	switch {
	case d.dtype.ID() == arrow.NULL:
		nulls = int64(d.length)
	case d.bitmap == nil:
		nulls = 0
	default:
		nulls = int64(d.length - bitutil.CountSetBits(d.bitmap.Bytes(), d.offset, d.length))
	}
	atomic.StoreInt64(&d.nulls, nulls)
	return int(nulls)
}

// Len returns the length.
func (d *Data) Len() int { return d.length }

// Offset returns the offset.
func (d *Data) Offset() int { return d.offset }

// Bitmap returns the validity view of the data: Len() bits, position 0
// being the element at Offset().
func (d *Data) Bitmap() bitutil.Bitmap {
	if d.bitmap == nil {
		return bitutil.NewBitmap(nil, d.offset, d.length)
	}
	return bitutil.NewBitmap(d.bitmap.Bytes(), d.offset, d.length)
}

// BitmapBuffer returns the validity buffer, nil when every element is valid.
func (d *Data) BitmapBuffer() *memory.Buffer { return d.bitmap }

// Buffers returns the data buffers.
func (d *Data) Buffers() []*memory.Buffer { return d.buffers }

// Children returns the child data of nested types.
func (d *Data) Children() []arrow.ArrayData { return d.childData }

// Dictionary returns the ArrayData object for the dictionary member, or nil
func (d *Data) Dictionary() arrow.ArrayData {
	if d.dictionary == nil {
		return nil
	}
	return d.dictionary
}

// SetDictionary allows replacing the dictionary for this particular Data object
func (d *Data) SetDictionary(dict arrow.ArrayData) {
	if d.dictionary != nil {
		d.dictionary.Release()
		d.dictionary = nil
	}
	if dict != nil {
		dict.Retain()
		d.dictionary = dict.(*Data)
	}
}

func (d *Data) child(i int) *Data { return d.childData[i].(*Data) }

// Clone returns a deep copy of the data allocated from the default
// allocator. See Copy.
func (d *Data) Clone() *Data { return d.Copy(memory.DefaultAllocator) }

// Copy returns a deep copy of d allocated from mem: every buffer, child
// and dictionary is copied, and the copy shares no memory with d. The
// offset and length are preserved.
func (d *Data) Copy(mem memory.Allocator) *Data {
	var bitmap *memory.Buffer
	if d.bitmap != nil {
		bitmap = d.bitmap.Clone(mem)
		defer bitmap.Release()
	}

	buffers := make([]*memory.Buffer, len(d.buffers))
	for i, b := range d.buffers {
		if b != nil {
			buffers[i] = b.Clone(mem)
		}
	}
	defer memory.ReleaseBuffers(buffers)

	children := make([]arrow.ArrayData, len(d.childData))
	for i := range d.childData {
		c := d.child(i).Copy(mem)
		defer c.Release()
		children[i] = c
	}

	out := NewData(d.dtype, d.length, bitmap, buffers, children, int(atomic.LoadInt64(&d.nulls)), d.offset)
	if d.dictionary != nil {
		dict := d.dictionary.Copy(mem)
		out.dictionary = dict
	}
	return out
}

// NewSliceData returns a new slice that shares backing data with the input.
// The returned Data slice starts at i and extends j-i elements, such as:
//
//	slice := data[i:j]
//
// The returned value must be Release'd after use.
//
// NewSliceData panics if the slice is outside the valid range of the input Data.
// NewSliceData panics if j < i.
func NewSliceData(data arrow.ArrayData, i, j int) *Data {
	if j > data.Len() || i > j || i < 0 {
		panic(fmt.Errorf("%w: arrow/array: slice [%d:%d] out of range for length %d", arrow.ErrIndex, i, j, data.Len()))
	}

	bitmap := data.BitmapBuffer()
	if bitmap != nil {
		bitmap.Retain()
	}
	for _, b := range data.Buffers() {
		if b != nil {
			b.Retain()
		}
	}
	for _, child := range data.Children() {
		child.Retain()
	}
	var dict *Data
	if dd := data.Dictionary(); dd != nil {
		dd.Retain()
		dict = dd.(*Data)
	}

	nulls := UnknownNullCount
	switch n := data.NullN(); {
	case data.DataType().ID() == arrow.NULL:
		nulls = j - i
	case n == 0:
		nulls = 0
	}

	return &Data{
		refCount:   1,
		dtype:      data.DataType(),
		nulls:      int64(nulls),
		length:     j - i,
		offset:     data.Offset() + i,
		bitmap:     bitmap,
		buffers:    data.Buffers(),
		childData:  data.Children(),
		dictionary: dict,
	}
}

var (
	_ arrow.ArrayData = (*Data)(nil)
)
