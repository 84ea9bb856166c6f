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

//go:build cgo
// +build cgo

// Package cdata implements the Arrow C Data Interface: importing arrays
// produced across the C ABI without copying their buffers, and exporting
// arrays to C consumers.
package cdata

// #include <stdlib.h>
// #include <string.h>
// #include "arrow/c/abi.h"
// #include "arrow/c/helpers.h"
//
// static struct ArrowArray* get_arr() {
//	struct ArrowArray* out = (struct ArrowArray*)malloc(sizeof(struct ArrowArray));
//	memset(out, 0, sizeof(struct ArrowArray));
//	return out;
// }
import "C"

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/array"
	"github.com/quiverdata/quiver/arrow/bitutil"
	"github.com/quiverdata/quiver/arrow/internal/debug"
	"github.com/quiverdata/quiver/arrow/memory"
	"golang.org/x/xerrors"
)

type (
	// CArrowSchema is the C Data Interface for ArrowSchemas defined in abi.h
	CArrowSchema = C.struct_ArrowSchema
	// CArrowArray is the C Data Interface object for Arrow Arrays as defined in abi.h
	CArrowArray = C.struct_ArrowArray
)

// Map from the defined strings to their corresponding arrow.DataType interface
// object instances, for types that don't require params.
var formatToSimpleType = map[string]arrow.DataType{
	"n": arrow.Null,
	"b": arrow.FixedWidthTypes.Boolean,
	"c": arrow.PrimitiveTypes.Int8,
	"C": arrow.PrimitiveTypes.Uint8,
	"s": arrow.PrimitiveTypes.Int16,
	"S": arrow.PrimitiveTypes.Uint16,
	"i": arrow.PrimitiveTypes.Int32,
	"I": arrow.PrimitiveTypes.Uint32,
	"l": arrow.PrimitiveTypes.Int64,
	"L": arrow.PrimitiveTypes.Uint64,
	"e": arrow.FixedWidthTypes.Float16,
	"f": arrow.PrimitiveTypes.Float32,
	"g": arrow.PrimitiveTypes.Float64,
	"z": arrow.BinaryTypes.Binary,
	"Z": arrow.BinaryTypes.LargeBinary,
	"u": arrow.BinaryTypes.String,
	"U": arrow.BinaryTypes.LargeString,
}

// typeFromFormat maps a format string, and the already imported child
// fields, to a data type.
func typeFromFormat(f string, children []arrow.Field) (arrow.DataType, error) {
	if dt, ok := formatToSimpleType[f]; ok {
		return dt, nil
	}

	checkChildren := func(n int) error {
		if len(children) != n {
			return xerrors.Errorf("arrow/cdata: format %q expects %d children, got %d: %w", f, n, len(children), arrow.ErrInvalid)
		}
		return nil
	}

	switch {
	case strings.HasPrefix(f, "w:"): // fixed size binary is "w:##" where ## is the byteWidth
		byteWidth, err := strconv.Atoi(f[2:])
		if err != nil || byteWidth <= 0 {
			return nil, xerrors.Errorf("arrow/cdata: invalid fixed size binary format %q: %w", f, arrow.ErrInvalid)
		}
		return &arrow.FixedSizeBinaryType{ByteWidth: byteWidth}, nil
	case f == "+l":
		if err := checkChildren(1); err != nil {
			return nil, err
		}
		return arrow.ListOfField(children[0]), nil
	case f == "+L":
		if err := checkChildren(1); err != nil {
			return nil, err
		}
		return arrow.LargeListOfField(children[0]), nil
	case f == "+s":
		return arrow.StructOf(children...), nil
	case f == "+r":
		if err := checkChildren(2); err != nil {
			return nil, err
		}
		if !arrow.IsRunEndType(children[0].Type.ID()) {
			return nil, xerrors.Errorf("arrow/cdata: invalid run ends type %s: %w", children[0].Type, arrow.ErrInvalid)
		}
		dt := arrow.RunEndEncodedOf(children[0].Type, children[1].Type)
		dt.ValueNullable = children[1].Nullable
		return dt, nil
	}
	return nil, xerrors.Errorf("arrow/cdata: unsupported format %q: %w", f, arrow.ErrNotImplemented)
}

// fieldFromSchema converts a C.ArrowSchema, children and dictionary
// included, to an arrow.Field. It does not release the schema.
func fieldFromSchema(schema *CArrowSchema) (ret arrow.Field, err error) {
	if C.ArrowSchemaIsReleased(schema) == 1 {
		return ret, xerrors.Errorf("arrow/cdata: cannot import a released schema: %w", arrow.ErrInvalid)
	}

	var childFields []arrow.Field
	if schema.n_children > 0 {
		children := unsafe.Slice(schema.children, schema.n_children)
		childFields = make([]arrow.Field, len(children))
		for i, c := range children {
			if childFields[i], err = fieldFromSchema(c); err != nil {
				return
			}
		}
	}

	ret.Name = C.GoString(schema.name)
	ret.Nullable = (schema.flags & C.ARROW_FLAG_NULLABLE) != 0
	if ret.Type, err = typeFromFormat(C.GoString(schema.format), childFields); err != nil {
		return
	}

	if schema.dictionary != nil {
		if !arrow.IsInteger(ret.Type.ID()) {
			return ret, xerrors.Errorf("arrow/cdata: dictionary index type must be an integer, got %s: %w", ret.Type, arrow.ErrInvalid)
		}
		valueField, err := fieldFromSchema(schema.dictionary)
		if err != nil {
			return ret, err
		}
		ret.Type = &arrow.DictionaryType{
			IndexType: ret.Type,
			ValueType: valueField.Type,
			Ordered:   (schema.flags & C.ARROW_FLAG_DICTIONARY_ORDERED) != 0,
		}
	}
	return
}

// importSchema converts schema and releases it, even on error.
func importSchema(schema *CArrowSchema) (arrow.Field, error) {
	defer C.ArrowSchemaRelease(schema)
	return fieldFromSchema(schema)
}

// importer to keep track when importing C ArrowArray objects.
type cimporter struct {
	dt       arrow.DataType
	arr      *CArrowArray
	alloc    *importAllocator
	data     *array.Data
	children []cimporter
	cbuffers []unsafe.Pointer
}

// import any child arrays for lists, structs, and so on.
func (imp *cimporter) doImportChildren() error {
	var children []*CArrowArray
	if imp.arr.n_children > 0 {
		children = unsafe.Slice(imp.arr.children, imp.arr.n_children)
	}

	var fields []arrow.Field
	switch dt := imp.dt.(type) {
	case *arrow.DictionaryType:
		return nil
	case arrow.NestedType:
		fields = dt.Fields()
	}
	if len(children) != len(fields) {
		return xerrors.Errorf("arrow/cdata: expected %d children for imported type %s, ArrowArray has %d: %w",
			len(fields), imp.dt, len(children), arrow.ErrInvalid)
	}

	imp.children = make([]cimporter, len(children))
	for i, c := range children {
		imp.children[i] = cimporter{dt: fields[i].Type, arr: c, alloc: imp.alloc}
		if err := imp.children[i].doImport(); err != nil {
			return err
		}
	}
	return nil
}

// doImport is called recursively as needed for importing an array and its
// children in order to generate array.Data objects.
func (imp *cimporter) doImport() error {
	if imp.arr.length < 0 || imp.arr.offset < 0 || imp.arr.null_count < -1 || imp.arr.n_buffers < 0 || imp.arr.n_children < 0 {
		return xerrors.Errorf("arrow/cdata: negative length, offset or count in imported %s: %w", imp.dt, arrow.ErrInvalid)
	}

	if err := imp.doImportChildren(); err != nil {
		return err
	}

	if imp.arr.n_buffers > 0 {
		// get a view of the buffers, zero-copy. we're just looking at the pointers
		imp.cbuffers = unsafe.Slice(imp.arr.buffers, imp.arr.n_buffers)
	}

	// handle each of our type cases
	switch dt := imp.dt.(type) {
	case *arrow.NullType:
		if err := imp.checkNumBuffers(0); err != nil {
			return err
		}
		imp.data = array.NewData(dt, int(imp.arr.length), nil, nil, nil, int(imp.arr.length), int(imp.arr.offset))
		return nil
	case *arrow.DictionaryType:
		return imp.importDictionary(dt)
	case arrow.FixedWidthDataType:
		return imp.importFixedSizePrimitive(dt)
	case arrow.BinaryDataType:
		return imp.importStringLike(dt.(arrow.OffsetsDataType).OffsetBytes())
	case arrow.ListLikeType:
		return imp.importListLike(dt)
	case *arrow.StructType:
		if err := imp.checkNumBuffers(1); err != nil {
			return err
		}
		nulls, err := imp.importNullBitmap(0)
		if err != nil {
			return err
		}
		imp.data = imp.makeData(nulls, nil)
		return nil
	case *arrow.RunEndEncodedType:
		if err := imp.checkNumBuffers(0); err != nil {
			return err
		}
		if imp.arr.null_count > 0 {
			return xerrors.Errorf("arrow/cdata: run-end encoded arrays carry no nulls of their own: %w", arrow.ErrInvalid)
		}
		imp.data = imp.makeData(nil, nil)
		return nil
	}
	return xerrors.Errorf("arrow/cdata: cannot import %s: %w", imp.dt, arrow.ErrNotImplemented)
}

// makeData builds the record of this importer and hands the references
// held on the buffers and children over to it.
func (imp *cimporter) makeData(bitmap *memory.Buffer, buffers []*memory.Buffer) *array.Data {
	children := make([]arrow.ArrayData, len(imp.children))
	for i := range imp.children {
		children[i] = imp.children[i].data
	}

	data := array.NewData(imp.dt, int(imp.arr.length), bitmap, buffers, children, int(imp.arr.null_count), int(imp.arr.offset))
	if bitmap != nil {
		bitmap.Release()
	}
	memory.ReleaseBuffers(buffers)
	for _, c := range children {
		c.Release()
	}
	return data
}

func (imp *cimporter) importStringLike(offsetByteWidth int) error {
	if err := imp.checkNumBuffers(3); err != nil {
		return err
	}

	nulls, err := imp.importNullBitmap(0)
	if err != nil {
		return err
	}
	offsets, err := imp.importOffsetsBuffer(1, offsetByteWidth)
	if err != nil {
		return err
	}

	end := int(imp.arr.offset + imp.arr.length)
	var nvals int64
	switch offsetByteWidth {
	case arrow.Int32SizeBytes:
		nvals = int64(arrow.GetData[int32](offsets.Bytes())[end])
	default:
		nvals = arrow.GetData[int64](offsets.Bytes())[end]
	}
	if nvals < 0 {
		return xerrors.Errorf("arrow/cdata: negative final offset %d in imported %s: %w", nvals, imp.dt, arrow.ErrInvalid)
	}

	values, err := imp.importBuffer(2, nvals)
	if err != nil {
		return err
	}
	imp.data = imp.makeData(nulls, []*memory.Buffer{offsets, values})
	return nil
}

func (imp *cimporter) importListLike(dt arrow.ListLikeType) error {
	if err := imp.checkNumBuffers(2); err != nil {
		return err
	}

	nulls, err := imp.importNullBitmap(0)
	if err != nil {
		return err
	}
	offsets, err := imp.importOffsetsBuffer(1, dt.OffsetBytes())
	if err != nil {
		return err
	}
	imp.data = imp.makeData(nulls, []*memory.Buffer{offsets})
	return nil
}

func (imp *cimporter) importFixedSizePrimitive(fw arrow.FixedWidthDataType) error {
	if err := imp.checkNumBuffers(2); err != nil {
		return err
	}

	nulls, err := imp.importNullBitmap(0)
	if err != nil {
		return err
	}

	var values *memory.Buffer
	if bitutil.IsMultipleOf8(int64(fw.BitWidth())) {
		values, err = imp.importFixedSizeBuffer(1, int64(fw.Bytes()))
	} else {
		if fw.BitWidth() != 1 {
			return xerrors.Errorf("arrow/cdata: invalid bit width %d: %w", fw.BitWidth(), arrow.ErrInvalid)
		}
		values, err = imp.importBitsBuffer(1)
	}
	if err != nil {
		return err
	}

	imp.data = imp.makeData(nulls, []*memory.Buffer{values})
	return nil
}

func (imp *cimporter) importDictionary(dt *arrow.DictionaryType) error {
	if imp.arr.n_children != 0 {
		return xerrors.Errorf("arrow/cdata: dictionary arrays have no children, ArrowArray has %d: %w", imp.arr.n_children, arrow.ErrInvalid)
	}
	if imp.arr.dictionary == nil {
		return xerrors.Errorf("arrow/cdata: dictionary array imported without its dictionary: %w", arrow.ErrInvalid)
	}

	indices := &cimporter{dt: dt.IndexType, arr: imp.arr, alloc: imp.alloc, cbuffers: imp.cbuffers}
	if err := indices.importFixedSizePrimitive(dt.IndexType.(arrow.FixedWidthDataType)); err != nil {
		return err
	}
	defer indices.data.Release()

	dictImp := &cimporter{dt: dt.ValueType, arr: imp.arr.dictionary, alloc: imp.alloc}
	if err := dictImp.doImport(); err != nil {
		return err
	}
	defer dictImp.data.Release()

	ind := indices.data
	imp.data = array.NewDataWithDictionary(dt, ind.Len(), ind.BitmapBuffer(), ind.Buffers(), int(imp.arr.null_count), ind.Offset(), dictImp.data)
	return nil
}

func (imp *cimporter) checkNumBuffers(n int64) error {
	if int64(imp.arr.n_buffers) != n {
		return xerrors.Errorf("arrow/cdata: expected %d buffers for imported type %s, ArrowArray has %d: %w", n, imp.dt, imp.arr.n_buffers, arrow.ErrInvalid)
	}
	return nil
}

// importBuffer wraps sz bytes of buffer bufferID without copying them. The
// bytes stay owned by the C array, which is released once every imported
// buffer has been released.
func (imp *cimporter) importBuffer(bufferID int, sz int64) (*memory.Buffer, error) {
	ptr := imp.cbuffers[bufferID]
	if ptr == nil {
		switch {
		case sz == 0:
			return memory.NewBufferBytes([]byte{}), nil
		case imp.arr.length == 0:
			// producers may omit the offsets of empty arrays
			return memory.NewBufferBytes(make([]byte, sz)), nil
		}
		return nil, xerrors.Errorf("arrow/cdata: buffer %d of imported %s is null: %w", bufferID, imp.dt, arrow.ErrInvalid)
	}

	imp.alloc.addBuffer()
	return memory.NewBufferWithAllocator(unsafe.Slice((*byte)(ptr), sz), imp.alloc), nil
}

func (imp *cimporter) importBitsBuffer(bufferID int) (*memory.Buffer, error) {
	bufsize := bitutil.BytesForBits(int64(imp.arr.length) + int64(imp.arr.offset))
	return imp.importBuffer(bufferID, bufsize)
}

func (imp *cimporter) importNullBitmap(bufferID int) (*memory.Buffer, error) {
	if imp.cbuffers[bufferID] == nil {
		if imp.arr.null_count > 0 {
			return nil, xerrors.Errorf("arrow/cdata: null bitmap is missing but null_count is %d: %w", imp.arr.null_count, arrow.ErrInvalid)
		}
		return nil, nil
	}
	return imp.importBitsBuffer(bufferID)
}

func (imp *cimporter) importFixedSizeBuffer(bufferID int, byteWidth int64) (*memory.Buffer, error) {
	bufsize := byteWidth * int64(imp.arr.length+imp.arr.offset)
	return imp.importBuffer(bufferID, bufsize)
}

func (imp *cimporter) importOffsetsBuffer(bufferID int, offsetsize int) (*memory.Buffer, error) {
	bufsize := int64(offsetsize) * int64(imp.arr.length+imp.arr.offset+1)
	return imp.importBuffer(bufferID, bufsize)
}

// importCArrayAsType moves arr into memory owned by the import and builds
// a record of type dt over its buffers. The record is fully validated
// before it is returned; on error the C array has been released.
func importCArrayAsType(arr *CArrowArray, dt arrow.DataType) (*array.Data, error) {
	if C.ArrowArrayIsReleased(arr) == 1 {
		return nil, xerrors.Errorf("arrow/cdata: cannot import a released array: %w", arrow.ErrInvalid)
	}

	owned := C.get_arr()
	C.ArrowArrayMove(arr, owned)
	alloc := newImportAllocator(owned)

	imp := &cimporter{dt: dt, arr: owned, alloc: alloc}
	err := imp.doImport()
	if err == nil {
		err = array.ValidateDataFull(imp.data)
	}
	if err != nil {
		if imp.data != nil {
			imp.data.Release()
		}
		alloc.releaseC()
		return nil, err
	}

	debug.Log(fmt.Sprintf("arrow/cdata: imported %s of length %d", dt, imp.data.Len()))
	alloc.Free(nil)
	return imp.data, nil
}

func releaseArr(arr *CArrowArray) {
	C.ArrowArrayRelease(arr)
}

func releaseSchema(schema *CArrowSchema) {
	C.ArrowSchemaRelease(schema)
}

func arrIsReleased(arr *CArrowArray) bool { return C.ArrowArrayIsReleased(arr) == 1 }

func schemaIsReleased(schema *CArrowSchema) bool { return C.ArrowSchemaIsReleased(schema) == 1 }
