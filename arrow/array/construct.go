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
	"math"

	"github.com/JohnCGriffin/overflow"
	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/bitutil"
	"github.com/quiverdata/quiver/arrow/internal/debug"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/quiverdata/quiver/internal/hashing"
)

// The Make*Data functions produce a complete record from Go values in one
// step. A nil valid slice marks every element valid; otherwise it must
// hold one entry per value. The returned Data must be Release'd.

func checkValidity(n int, valid []bool) error {
	if valid != nil && len(valid) != n {
		return fmt.Errorf("%w: arrow/array: validity has %d entries for %d values", arrow.ErrInvalid, len(valid), n)
	}
	return nil
}

func isValid(valid []bool, i int) bool { return valid == nil || valid[i] }

// newValidityBuffer packs valid into a bitmap. It returns a nil buffer
// when every element is valid.
func newValidityBuffer(mem memory.Allocator, valid []bool) (*memory.Buffer, int) {
	nulls := 0
	for _, v := range valid {
		if !v {
			nulls++
		}
	}
	if nulls == 0 {
		return nil, 0
	}

	buf := memory.NewAllocatedBuffer(mem, int(bitutil.BytesForBits(int64(len(valid)))))
	wr := bitutil.NewBitmapWriter(buf.Bytes(), 0, len(valid))
	wr.AppendBools(valid)
	wr.Finish()
	return buf, nulls
}

func releaseIfNotNil(b *memory.Buffer) {
	if b != nil {
		b.Release()
	}
}

// MakeNullData returns a NULL record of n elements. It owns no buffers.
func MakeNullData(n int) *Data {
	return NewData(arrow.Null, n, nil, nil, nil, n, 0)
}

// MakeFixedSizeData returns a record of fixed-width values. values[i] is
// written only where element i is valid; null slots hold the zero value.
func MakeFixedSizeData[T arrow.FixedWidthType](mem memory.Allocator, values []T, valid []bool) (*Data, error) {
	if err := checkValidity(len(values), valid); err != nil {
		return nil, err
	}

	bitmap, nulls := newValidityBuffer(mem, valid)
	defer releaseIfNotNil(bitmap)

	buf := memory.NewAllocatedBuffer(mem, len(values)*arrow.SizeOf[T]())
	defer buf.Release()

	out := arrow.GetData[T](buf.Bytes())
	var zero T
	for i, v := range values {
		if isValid(valid, i) {
			out[i] = v
		} else {
			out[i] = zero
		}
	}

	debug.Log(fmt.Sprintf("arrow/array: fixed size record of %d values, %d nulls", len(values), nulls))
	return NewData(arrow.FixedWidthTypeOf[T](), len(values), bitmap, []*memory.Buffer{buf}, nil, nulls, 0), nil
}

// MakeBooleanData returns a BOOL record with bit-packed values.
func MakeBooleanData(mem memory.Allocator, values []bool, valid []bool) (*Data, error) {
	if err := checkValidity(len(values), valid); err != nil {
		return nil, err
	}

	bitmap, nulls := newValidityBuffer(mem, valid)
	defer releaseIfNotNil(bitmap)

	buf := memory.NewAllocatedBuffer(mem, int(bitutil.BytesForBits(int64(len(values)))))
	defer buf.Release()

	raw := buf.Bytes()
	for i, v := range values {
		bitutil.SetBitTo(raw, i, v && isValid(valid, i))
	}
	return NewData(arrow.FixedWidthTypes.Boolean, len(values), bitmap, []*memory.Buffer{buf}, nil, nulls, 0), nil
}

// MakeBinaryData returns a variable-size binary record of type dt, which
// must be one of the string or binary types. Null elements occupy zero
// bytes. It fails with ErrInvalid when the data does not fit the offsets
// of dt.
func MakeBinaryData[V ~string | ~[]byte](mem memory.Allocator, dt arrow.BinaryDataType, values []V, valid []bool) (*Data, error) {
	if err := checkValidity(len(values), valid); err != nil {
		return nil, err
	}

	var (
		total int64
		ok    = true
	)
	for i, v := range values {
		if !isValid(valid, i) {
			continue
		}
		if total, ok = overflow.Add64(total, int64(len(v))); !ok {
			break
		}
	}
	large := dt.(arrow.OffsetsDataType).OffsetBytes() == arrow.Int64SizeBytes
	if !ok || (!large && total > math.MaxInt32) {
		return nil, fmt.Errorf("%w: arrow/array: %d bytes of %s data overflow its offsets", arrow.ErrInvalid, total, dt)
	}

	bitmap, nulls := newValidityBuffer(mem, valid)
	defer releaseIfNotNil(bitmap)

	var offsets *memory.Buffer
	if large {
		offsets = memory.NewAllocatedBuffer(mem, (len(values)+1)*arrow.Int64SizeBytes)
		writeBinaryOffsets(arrow.GetData[int64](offsets.Bytes()), values, valid)
	} else {
		offsets = memory.NewAllocatedBuffer(mem, (len(values)+1)*arrow.Int32SizeBytes)
		writeBinaryOffsets(arrow.GetData[int32](offsets.Bytes()), values, valid)
	}
	defer offsets.Release()

	data := memory.NewAllocatedBuffer(mem, int(total))
	defer data.Release()

	raw, pos := data.Bytes(), 0
	for i, v := range values {
		if isValid(valid, i) {
			pos += copy(raw[pos:], v)
		}
	}

	return NewData(dt, len(values), bitmap, []*memory.Buffer{offsets, data}, nil, nulls, 0), nil
}

func writeBinaryOffsets[O arrow.OffsetType, V ~string | ~[]byte](out []O, values []V, valid []bool) {
	var pos O
	for i, v := range values {
		out[i] = pos
		if isValid(valid, i) {
			pos += O(len(v))
		}
	}
	out[len(values)] = pos
}

// MakeFixedSizeBinaryData returns a FIXED_SIZE_BINARY record of the given
// byte width. Every valid value must be exactly width bytes.
func MakeFixedSizeBinaryData(mem memory.Allocator, width int, values [][]byte, valid []bool) (*Data, error) {
	if err := checkValidity(len(values), valid); err != nil {
		return nil, err
	}
	if width < 0 {
		return nil, fmt.Errorf("%w: arrow/array: negative byte width %d", arrow.ErrInvalid, width)
	}

	bitmap, nulls := newValidityBuffer(mem, valid)
	defer releaseIfNotNil(bitmap)

	buf := memory.NewAllocatedBuffer(mem, len(values)*width)
	defer buf.Release()

	raw := buf.Bytes()
	for i, v := range values {
		if !isValid(valid, i) {
			continue
		}
		if len(v) != width {
			return nil, fmt.Errorf("%w: arrow/array: value %d has %d bytes, expected %d", arrow.ErrInvalid, i, len(v), width)
		}
		copy(raw[i*width:], v)
	}

	dt := &arrow.FixedSizeBinaryType{ByteWidth: width}
	return NewData(dt, len(values), bitmap, []*memory.Buffer{buf}, nil, nulls, 0), nil
}

// MakeDictionaryData dictionary-encodes values. Each distinct valid value
// is stored once in the dictionary, in order of first occurrence; null
// elements record index 0. dt.ValueType must be a string or binary type.
// When dt.IndexType is nil the narrowest unsigned type indexing the
// dictionary is chosen.
func MakeDictionaryData[V ~string | ~[]byte](mem memory.Allocator, dt *arrow.DictionaryType, values []V, valid []bool) (*Data, error) {
	if err := checkValidity(len(values), valid); err != nil {
		return nil, err
	}
	valueType, ok := dt.ValueType.(arrow.BinaryDataType)
	if !ok {
		return nil, fmt.Errorf("%w: arrow/array: cannot dictionary encode values of type %s", arrow.ErrType, dt.ValueType)
	}

	memo := hashing.NewBinaryMemoTable(0)
	indices := make([]int, len(values))
	for i, v := range values {
		if isValid(valid, i) {
			switch s := any(v).(type) {
			case string:
				indices[i], _ = memo.GetOrInsertString(s)
			case []byte:
				indices[i], _ = memo.GetOrInsert(s)
			default:
				indices[i], _ = memo.GetOrInsert([]byte(v))
			}
		}
	}

	indexType := dt.IndexType
	if indexType == nil {
		indexType = arrow.DictionaryIndexTypeFor(memo.Size())
	}
	if !arrow.IsInteger(indexType.ID()) {
		return nil, fmt.Errorf("%w: arrow/array: dictionary index type must be an integer, got %s", arrow.ErrType, indexType)
	}
	if limit := maxIndexFor(indexType.ID()); memo.Size() > 0 && uint64(memo.Size()-1) > limit {
		return nil, fmt.Errorf("%w: arrow/array: %d dictionary values do not fit index type %s", arrow.ErrInvalid, memo.Size(), indexType)
	}

	dictValues := make([][]byte, memo.Size())
	memo.VisitValues(func(i int, v []byte) { dictValues[i] = v })
	dict, err := MakeBinaryData(mem, valueType, dictValues, nil)
	if err != nil {
		return nil, err
	}
	defer dict.Release()

	bitmap, nulls := newValidityBuffer(mem, valid)
	defer releaseIfNotNil(bitmap)

	width := indexType.(arrow.FixedWidthDataType).Bytes()
	buf := memory.NewAllocatedBuffer(mem, len(values)*width)
	defer buf.Release()
	putIndices(buf.Bytes(), indexType.ID(), indices)

	outType := &arrow.DictionaryType{IndexType: indexType, ValueType: dt.ValueType, Ordered: dt.Ordered}
	debug.Log(fmt.Sprintf("arrow/array: dictionary of %d values for %d elements", memo.Size(), len(values)))
	return NewDataWithDictionary(outType, len(values), bitmap, []*memory.Buffer{buf}, nulls, 0, dict), nil
}

func maxIndexFor(id arrow.Type) uint64 {
	switch id {
	case arrow.UINT8:
		return math.MaxUint8
	case arrow.INT8:
		return math.MaxInt8
	case arrow.UINT16:
		return math.MaxUint16
	case arrow.INT16:
		return math.MaxInt16
	case arrow.UINT32:
		return math.MaxUint32
	case arrow.INT32:
		return math.MaxInt32
	case arrow.INT64:
		return math.MaxInt64
	}
	return math.MaxUint64
}

func putIndices(raw []byte, id arrow.Type, indices []int) {
	switch id {
	case arrow.UINT8, arrow.INT8:
		for i, v := range indices {
			raw[i] = byte(v)
		}
	case arrow.UINT16, arrow.INT16:
		out := arrow.GetData[uint16](raw)
		for i, v := range indices {
			out[i] = uint16(v)
		}
	case arrow.UINT32, arrow.INT32:
		out := arrow.GetData[uint32](raw)
		for i, v := range indices {
			out[i] = uint32(v)
		}
	default:
		out := arrow.GetData[uint64](raw)
		for i, v := range indices {
			out[i] = uint64(v)
		}
	}
}

// MakeListData returns a list record over child. offsets holds one entry
// more than the number of elements; element i spans
// child[offsets[i]:offsets[i+1]], and the last offset must equal the
// child length. Null elements should span zero values.
func MakeListData(mem memory.Allocator, dt arrow.ListLikeType, offsets []int64, valid []bool, child arrow.ArrayData) (*Data, error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("%w: arrow/array: list offsets must hold at least one entry", arrow.ErrInvalid)
	}
	length := len(offsets) - 1
	if err := checkValidity(length, valid); err != nil {
		return nil, err
	}
	if !arrow.TypeEqual(dt.Elem(), child.DataType()) {
		return nil, fmt.Errorf("%w: arrow/array: list of %s cannot hold child of type %s", arrow.ErrType, dt.Elem(), child.DataType())
	}

	if offsets[0] < 0 {
		return nil, fmt.Errorf("%w: arrow/array: negative list offset %d", arrow.ErrInvalid, offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("%w: arrow/array: list offsets decrease at %d", arrow.ErrInvalid, i)
		}
	}
	last := offsets[length]
	if last != int64(child.Len()) {
		return nil, fmt.Errorf("%w: arrow/array: last list offset %d does not match child length %d", arrow.ErrInvalid, last, child.Len())
	}

	large := dt.OffsetBytes() == arrow.Int64SizeBytes
	if !large && last > math.MaxInt32 {
		return nil, fmt.Errorf("%w: arrow/array: list offset %d overflows int32", arrow.ErrInvalid, last)
	}

	bitmap, nulls := newValidityBuffer(mem, valid)
	defer releaseIfNotNil(bitmap)

	buf := memory.NewAllocatedBuffer(mem, len(offsets)*dt.OffsetBytes())
	defer buf.Release()
	if large {
		copy(arrow.GetData[int64](buf.Bytes()), offsets)
	} else {
		out := arrow.GetData[int32](buf.Bytes())
		for i, o := range offsets {
			out[i] = int32(o)
		}
	}

	return NewData(dt, length, bitmap, []*memory.Buffer{buf}, []arrow.ArrayData{child}, nulls, 0), nil
}

// MakeListDataFromLengths returns a list record whose element i holds the
// next lengths[i] values of child. Null elements must have length 0.
func MakeListDataFromLengths(mem memory.Allocator, dt arrow.ListLikeType, lengths []int, valid []bool, child arrow.ArrayData) (*Data, error) {
	offsets := make([]int64, len(lengths)+1)
	for i, n := range lengths {
		if n < 0 {
			return nil, fmt.Errorf("%w: arrow/array: negative list length %d at %d", arrow.ErrInvalid, n, i)
		}
		next, ok := overflow.Add64(offsets[i], int64(n))
		if !ok {
			return nil, fmt.Errorf("%w: arrow/array: list offsets overflow at %d", arrow.ErrInvalid, i)
		}
		offsets[i+1] = next
	}
	return MakeListData(mem, dt, offsets, valid, child)
}

// MakeStructData returns a struct record of length elements. children
// holds one record per field of dt, each of exactly length elements. The
// struct owns no data buffers; field validity is independent of valid.
func MakeStructData(mem memory.Allocator, dt *arrow.StructType, length int, valid []bool, children []arrow.ArrayData) (*Data, error) {
	if err := checkValidity(length, valid); err != nil {
		return nil, err
	}
	if len(children) != dt.NumFields() {
		return nil, fmt.Errorf("%w: arrow/array: %s expects %d children, got %d", arrow.ErrInvalid, dt, dt.NumFields(), len(children))
	}
	for i, c := range children {
		f := dt.Field(i)
		if !arrow.TypeEqual(f.Type, c.DataType()) {
			return nil, fmt.Errorf("%w: arrow/array: field %q of type %s got child of type %s", arrow.ErrType, f.Name, f.Type, c.DataType())
		}
		if c.Len() != length {
			return nil, fmt.Errorf("%w: arrow/array: field %q has %d elements, expected %d", arrow.ErrInvalid, f.Name, c.Len(), length)
		}
	}

	bitmap, nulls := newValidityBuffer(mem, valid)
	defer releaseIfNotNil(bitmap)

	return NewData(dt, length, bitmap, nil, children, nulls, 0), nil
}

// MakeRunEndEncodedData returns a run-end encoded record of length
// logical elements. runEnds[k] is the exclusive logical end of the run
// holding values[k]; run ends must be strictly increasing and the last
// must equal length. They are stored in the narrowest of int16, int32 and
// int64 holding length.
func MakeRunEndEncodedData(mem memory.Allocator, runEnds []int64, values arrow.ArrayData, length int) (*Data, error) {
	if len(runEnds) != values.Len() {
		return nil, fmt.Errorf("%w: arrow/array: %d run ends for %d values", arrow.ErrInvalid, len(runEnds), values.Len())
	}
	var prev int64
	for k, e := range runEnds {
		if e <= prev {
			return nil, fmt.Errorf("%w: arrow/array: run ends must be strictly increasing and positive, got %d at %d", arrow.ErrInvalid, e, k)
		}
		prev = e
	}
	if prev != int64(length) {
		return nil, fmt.Errorf("%w: arrow/array: last run end %d does not match length %d", arrow.ErrInvalid, prev, length)
	}

	var (
		ends *Data
		err  error
	)
	endsType := arrow.RunEndsTypeFor(int64(length))
	switch endsType.ID() {
	case arrow.INT16:
		ends, err = MakeFixedSizeData(mem, narrowRunEnds[int16](runEnds), nil)
	case arrow.INT32:
		ends, err = MakeFixedSizeData(mem, narrowRunEnds[int32](runEnds), nil)
	default:
		ends, err = MakeFixedSizeData(mem, runEnds, nil)
	}
	if err != nil {
		return nil, err
	}
	defer ends.Release()

	dt := arrow.RunEndEncodedOf(endsType, values.DataType())
	return NewData(dt, length, nil, nil, []arrow.ArrayData{ends, values}, 0, 0), nil
}

func narrowRunEnds[T arrow.RunEndType](runEnds []int64) []T {
	out := make([]T, len(runEnds))
	for i, e := range runEnds {
		out[i] = T(e)
	}
	return out
}
