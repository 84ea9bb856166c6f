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

package cdata

// #include <stdint.h>
// #include <stdlib.h>
// #include "arrow/c/abi.h"
// #include "arrow/c/helpers.h"
//
// extern void releaseExportedSchema(struct ArrowSchema* schema);
// extern void releaseExportedArray(struct ArrowArray* array);
//
// const uint8_t kGoCdataZeroRegion[8] = {0};
//
// void goReleaseArray(struct ArrowArray* array) {
//	releaseExportedArray(array);
// }
// void goReleaseSchema(struct ArrowSchema* schema) {
//	 releaseExportedSchema(schema);
// }
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/memory"
)

type schemaExporter struct {
	format, name string

	flags    int64
	children []schemaExporter
	dict     *schemaExporter
}

func exportFormat(dt arrow.DataType) (string, error) {
	switch dt := dt.(type) {
	case *arrow.NullType:
		return "n", nil
	case *arrow.BooleanType:
		return "b", nil
	case *arrow.Int8Type:
		return "c", nil
	case *arrow.Uint8Type:
		return "C", nil
	case *arrow.Int16Type:
		return "s", nil
	case *arrow.Uint16Type:
		return "S", nil
	case *arrow.Int32Type:
		return "i", nil
	case *arrow.Uint32Type:
		return "I", nil
	case *arrow.Int64Type:
		return "l", nil
	case *arrow.Uint64Type:
		return "L", nil
	case *arrow.Float16Type:
		return "e", nil
	case *arrow.Float32Type:
		return "f", nil
	case *arrow.Float64Type:
		return "g", nil
	case *arrow.FixedSizeBinaryType:
		return fmt.Sprintf("w:%d", dt.ByteWidth), nil
	case *arrow.BinaryType:
		return "z", nil
	case *arrow.LargeBinaryType:
		return "Z", nil
	case *arrow.StringType:
		return "u", nil
	case *arrow.LargeStringType:
		return "U", nil
	case *arrow.ListType:
		return "+l", nil
	case *arrow.LargeListType:
		return "+L", nil
	case *arrow.StructType:
		return "+s", nil
	case *arrow.RunEndEncodedType:
		return "+r", nil
	case *arrow.DictionaryType:
		if dt.IndexType == nil {
			return "", fmt.Errorf("%w: arrow/cdata: dictionary index type is not set", arrow.ErrInvalid)
		}
		return exportFormat(dt.IndexType)
	}
	return "", fmt.Errorf("%w: arrow/cdata: unsupported data type for export: %s", arrow.ErrNotImplemented, dt)
}

func (exp *schemaExporter) export(field arrow.Field) error {
	format, err := exportFormat(field.Type)
	if err != nil {
		return err
	}
	exp.name, exp.format = field.Name, format
	if field.Nullable {
		exp.flags |= C.ARROW_FLAG_NULLABLE
	}

	switch dt := field.Type.(type) {
	case *arrow.DictionaryType:
		if dt.Ordered {
			exp.flags |= C.ARROW_FLAG_DICTIONARY_ORDERED
		}
		exp.dict = new(schemaExporter)
		return exp.dict.export(arrow.Field{Type: dt.ValueType, Nullable: true})
	case arrow.NestedType:
		fields := dt.Fields()
		exp.children = make([]schemaExporter, len(fields))
		for i, f := range fields {
			if err := exp.children[i].export(f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (exp *schemaExporter) finish(out *CArrowSchema) {
	out.dictionary = nil
	if exp.dict != nil {
		out.dictionary = (*CArrowSchema)(C.calloc(1, C.sizeof_struct_ArrowSchema))
		exp.dict.finish(out.dictionary)
	}
	out.name = C.CString(exp.name)
	out.format = C.CString(exp.format)
	out.metadata = nil
	out.flags = C.int64_t(exp.flags)
	out.n_children = C.int64_t(len(exp.children))

	if len(exp.children) > 0 {
		children := allocateArrowSchemaArr(len(exp.children))
		childPtrs := allocateArrowSchemaPtrArr(len(exp.children))

		for i, c := range exp.children {
			c.finish(&children[i])
			childPtrs[i] = &children[i]
		}

		out.children = (**CArrowSchema)(unsafe.Pointer(&childPtrs[0]))
	} else {
		out.children = nil
	}

	out.private_data = nil
	out.release = (*[0]byte)(C.goReleaseSchema)
}

func exportField(field arrow.Field, out *CArrowSchema) error {
	var exp schemaExporter
	if err := exp.export(field); err != nil {
		return err
	}
	exp.finish(out)
	return nil
}

// exportData fills out with views of the buffers of data. The exported
// array holds a reference on data until its release callback runs.
func exportData(data arrow.ArrayData, out *CArrowArray) {
	out.dictionary = nil
	out.null_count = C.int64_t(data.NullN())
	out.length = C.int64_t(data.Len())
	out.offset = C.int64_t(data.Offset())

	bufs := data.Buffers()
	hasValidity := arrow.HasValidityBitmap(data.DataType().ID())
	if hasValidity {
		bufs = append([]*memory.Buffer{data.BitmapBuffer()}, bufs...)
	}

	out.n_buffers = C.int64_t(len(bufs))
	out.buffers = nil
	if len(bufs) > 0 {
		buffers := allocateBufferPtrArr(len(bufs))
		for i, buf := range bufs {
			switch {
			case buf != nil && buf.Len() > 0:
				buffers[i] = unsafe.Pointer(&buf.Bytes()[0])
			case i == 0 && hasValidity:
				buffers[i] = nil
			default:
				// export a dummy buffer to be friendly to implementations
				// that don't import NULL properly
				buffers[i] = unsafe.Pointer(&C.kGoCdataZeroRegion)
			}
		}
		out.buffers = &buffers[0]
	}

	data.Retain()
	out.private_data = createHandle(cgo.NewHandle(data))
	out.release = (*[0]byte)(C.goReleaseArray)

	children := data.Children()
	out.n_children = C.int64_t(len(children))
	out.children = nil
	if len(children) > 0 {
		childPtrs := allocateArrowArrayPtrArr(len(children))
		childArrs := allocateArrowArrayArr(len(children))
		for i, c := range children {
			exportData(c, &childArrs[i])
			childPtrs[i] = &childArrs[i]
		}
		out.children = (**CArrowArray)(unsafe.Pointer(&childPtrs[0]))
	}

	if dict := data.Dictionary(); dict != nil {
		out.dictionary = (*CArrowArray)(C.calloc(1, C.sizeof_struct_ArrowArray))
		exportData(dict, out.dictionary)
	}
}

func exportArray(arr arrow.Array, out *CArrowArray, outSchema *CArrowSchema) error {
	if outSchema != nil {
		if err := exportField(arrow.Field{Type: arr.DataType(), Nullable: true}, outSchema); err != nil {
			return err
		}
	} else if _, err := exportFormat(arr.DataType()); err != nil {
		return err
	}

	exportData(arr.Data(), out)
	return nil
}
