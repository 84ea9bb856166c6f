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
	"unicode/utf8"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/encoded"
)

// Validate checks that the buffers and children of arr are large enough
// for its offset and length. It does not look at the data itself.
func Validate(arr arrow.Array) error { return ValidateData(arr.Data()) }

// ValidateFull performs the checks of Validate and also walks the data:
// offsets, dictionary indices, run ends and the UTF-8 of string values.
func ValidateFull(arr arrow.Array) error { return ValidateDataFull(arr.Data()) }

// ValidateData is Validate for a record that may not be safe to wrap in
// an array yet.
func ValidateData(data arrow.ArrayData) error {
	return validateData(data.(*Data), false)
}

// ValidateDataFull is ValidateFull for a record that may not be safe to
// wrap in an array yet.
func ValidateDataFull(data arrow.ArrayData) error {
	return validateData(data.(*Data), true)
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: arrow/array: "+format, append([]interface{}{arrow.ErrInvalid}, args...)...)
}

func bufferLen(d *Data, i int) int {
	if i >= len(d.buffers) || d.buffers[i] == nil {
		return 0
	}
	return d.buffers[i].Len()
}

func validateData(d *Data, full bool) error {
	if d.length < 0 || d.offset < 0 {
		return invalidf("negative length %d or offset %d", d.length, d.offset)
	}
	end := d.offset + d.length

	if d.bitmap != nil && d.bitmap.Len()*8 < end {
		return invalidf("%s validity bitmap of %d bytes too small for %d elements", d.dtype, d.bitmap.Len(), end)
	}
	if d.bitmap != nil && !arrow.HasValidityBitmap(d.dtype.ID()) {
		return invalidf("%s must not have a validity bitmap", d.dtype)
	}

	switch dt := d.dtype.(type) {
	case *arrow.NullType:
		return nil
	case *arrow.BooleanType:
		if end > 0 && bufferLen(d, 0)*8 < end {
			return invalidf("bool values buffer of %d bytes too small for %d elements", bufferLen(d, 0), end)
		}
	case *arrow.FixedSizeBinaryType:
		if need := end * dt.ByteWidth; bufferLen(d, 0) < need {
			return invalidf("%s values buffer of %d bytes, need %d", dt, bufferLen(d, 0), need)
		}
	case arrow.BinaryDataType:
		if dt.(arrow.OffsetsDataType).OffsetBytes() == arrow.Int64SizeBytes {
			return validateBinary[int64](d, full)
		}
		return validateBinary[int32](d, full)
	case arrow.ListLikeType:
		if len(d.childData) != 1 {
			return invalidf("%s must have exactly one child, got %d", dt, len(d.childData))
		}
		if !arrow.TypeEqual(dt.Elem(), d.childData[0].DataType()) {
			return invalidf("%s child has type %s", dt, d.childData[0].DataType())
		}
		var err error
		if dt.OffsetBytes() == arrow.Int64SizeBytes {
			err = validateListOffsets[int64](d, full)
		} else {
			err = validateListOffsets[int32](d, full)
		}
		if err != nil {
			return err
		}
		return validateData(d.child(0), full)
	case *arrow.StructType:
		if len(d.childData) != dt.NumFields() {
			return invalidf("%s must have %d children, got %d", dt, dt.NumFields(), len(d.childData))
		}
		for i := range d.childData {
			c := d.child(i)
			if !arrow.TypeEqual(dt.Field(i).Type, c.dtype) {
				return invalidf("field %q has type %s, child has %s", dt.Field(i).Name, dt.Field(i).Type, c.dtype)
			}
			if c.length < end {
				return invalidf("field %q has %d elements, struct needs %d", dt.Field(i).Name, c.length, end)
			}
			if err := validateData(c, full); err != nil {
				return err
			}
		}
	case *arrow.DictionaryType:
		return validateDictionary(d, dt, full)
	case *arrow.RunEndEncodedType:
		return validateRunEnds(d, full)
	case arrow.FixedWidthDataType:
		if need := end * dt.Bytes(); bufferLen(d, 0) < need {
			return invalidf("%s values buffer of %d bytes, need %d", dt, bufferLen(d, 0), need)
		}
	default:
		return fmt.Errorf("%w: arrow/array: cannot validate %s", arrow.ErrNotImplemented, dt)
	}
	return nil
}

func offsetsWindow[O arrow.OffsetType](d *Data) ([]O, error) {
	if d.length == 0 {
		return nil, nil
	}
	need := (d.offset + d.length + 1) * arrow.SizeOf[O]()
	if bufferLen(d, 0) < need {
		return nil, invalidf("%s offsets buffer of %d bytes, need %d", d.dtype, bufferLen(d, 0), need)
	}
	offsets := arrow.GetData[O](d.buffers[0].Bytes())
	return offsets[d.offset : d.offset+d.length+1], nil
}

func checkOffsets[O arrow.OffsetType](offsets []O, limit int, full bool) error {
	if len(offsets) == 0 {
		return nil
	}
	first, last := offsets[0], offsets[len(offsets)-1]
	if first < 0 || last < first || int64(last) > int64(limit) {
		return invalidf("offsets [%d, %d] out of range for %d values", first, last, limit)
	}
	if !full {
		return nil
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return invalidf("offsets decrease at position %d", i)
		}
	}
	return nil
}

func validateBinary[O arrow.OffsetType](d *Data, full bool) error {
	offsets, err := offsetsWindow[O](d)
	if err != nil {
		return err
	}
	if err := checkOffsets(offsets, bufferLen(d, 1), full); err != nil {
		return err
	}
	if !full || !d.dtype.(arrow.BinaryDataType).IsUtf8() || len(offsets) == 0 {
		return nil
	}
	data := d.buffers[1].Bytes()
	bitmap := d.Bitmap()
	for i := 0; i < d.length; i++ {
		if bitmap.IsSet(i) && !utf8.Valid(data[offsets[i]:offsets[i+1]]) {
			return invalidf("invalid UTF-8 in %s element %d", d.dtype, i)
		}
	}
	return nil
}

func validateListOffsets[O arrow.OffsetType](d *Data, full bool) error {
	offsets, err := offsetsWindow[O](d)
	if err != nil {
		return err
	}
	return checkOffsets(offsets, d.childData[0].Len(), full)
}

func validateDictionary(d *Data, dt *arrow.DictionaryType, full bool) error {
	if d.dictionary == nil {
		return invalidf("%s has no dictionary", dt)
	}
	if !arrow.TypeEqual(dt.ValueType, d.dictionary.dtype) {
		return invalidf("%s has dictionary of type %s", dt, d.dictionary.dtype)
	}
	idx, ok := dt.IndexType.(arrow.FixedWidthDataType)
	if !ok || !arrow.IsInteger(idx.ID()) {
		return invalidf("%s index type must be an integer", dt)
	}
	end := d.offset + d.length
	if need := end * idx.Bytes(); bufferLen(d, 0) < need {
		return invalidf("%s indices buffer of %d bytes, need %d", dt, bufferLen(d, 0), need)
	}
	if err := validateData(d.dictionary, full); err != nil {
		return err
	}
	if !full {
		return nil
	}

	rd := newIndexReader(d)
	bitmap := d.Bitmap()
	for i := 0; i < d.length; i++ {
		if !bitmap.IsSet(i) {
			continue
		}
		if v := rd.At(i); v < 0 || v >= d.dictionary.length {
			return invalidf("dictionary index %d at %d out of range for %d values", v, i, d.dictionary.length)
		}
	}
	return nil
}

func validateRunEnds(d *Data, full bool) error {
	if len(d.childData) != 2 {
		return invalidf("%s must have 2 children, got %d", d.dtype, len(d.childData))
	}
	ends, values := d.child(0), d.child(1)
	if !arrow.IsRunEndType(ends.dtype.ID()) {
		return invalidf("run ends must be int16, int32 or int64, got %s", ends.dtype)
	}
	if ends.NullN() != 0 {
		return invalidf("run ends must not contain nulls")
	}
	if ends.length != values.length {
		return invalidf("%d run ends for %d values", ends.length, values.length)
	}
	if err := validateData(ends, full); err != nil {
		return err
	}
	if err := validateData(values, full); err != nil {
		return err
	}

	if d.length == 0 {
		return nil
	}
	runEnds := encoded.RunEnds(d)
	if len(runEnds) == 0 || runEnds[len(runEnds)-1] < int64(d.offset+d.length) {
		return invalidf("run ends do not cover offset %d + length %d", d.offset, d.length)
	}
	if !full {
		return nil
	}
	var prev int64
	for k, e := range runEnds {
		if e <= prev {
			return invalidf("run ends must be strictly increasing and positive, got %d at %d", e, k)
		}
		prev = e
	}
	return nil
}
