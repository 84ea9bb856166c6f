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

import (
	"unsafe"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/array"
	"golang.org/x/xerrors"
)

// SchemaFromPtr is a simple helper function to cast a uintptr to a *CArrowSchema
func SchemaFromPtr(ptr uintptr) *CArrowSchema { return (*CArrowSchema)(unsafe.Pointer(ptr)) }

// ArrayFromPtr is a simple helper function to cast a uintptr to a *CArrowArray
func ArrayFromPtr(ptr uintptr) *CArrowArray { return (*CArrowArray)(unsafe.Pointer(ptr)) }

// ImportCArrowField takes in an ArrowSchema from the C Data interface, it
// will copy the type definitions rather than keep direct references to them.
// This function will call ArrowSchemaRelease on the passed in schema
// regardless of whether or not there is an error returned.
func ImportCArrowField(out *CArrowSchema) (arrow.Field, error) {
	return importSchema(out)
}

// ImportCArrayWithType takes a pointer to a C Data ArrowArray and interprets
// the buffers as an array of type dt. The buffers are not copied: the
// returned array refers to the producer's memory, and the producer's release
// callback runs once the returned array and every slice of it have been
// released.
//
// The C array is moved into memory owned by the import before anything is
// read, so arr itself is marked released on return. The imported data is
// fully validated; if validation fails the producer's release callback has
// already been called and an error wrapping arrow.ErrInvalid is returned.
func ImportCArrayWithType(arr *CArrowArray, dt arrow.DataType) (arrow.Array, error) {
	data, err := importCArrayAsType(arr, dt)
	if err != nil {
		return nil, err
	}
	defer data.Release()
	return array.MakeFromData(data), nil
}

// ImportCArray takes a pointer to both a C Data ArrowArray and C Data
// ArrowSchema in order to import them into usable Go objects. The schema is
// always released. If the schema cannot be imported, the array is released
// as well and the error is returned.
func ImportCArray(arr *CArrowArray, schema *CArrowSchema) (arrow.Field, arrow.Array, error) {
	field, err := importSchema(schema)
	if err != nil {
		if !arrIsReleased(arr) {
			releaseArr(arr)
		}
		return field, nil, err
	}

	ret, err := ImportCArrayWithType(arr, field.Type)
	return field, ret, err
}

// ExportArrowField populates a passed in ArrowSchema with the type
// information of field, including children and dictionaries.
//
// The caller owns the schema and must call ReleaseCArrowSchema (or hand it
// to a consumer that does) to free the C strings allocated for it.
func ExportArrowField(field arrow.Field, out *CArrowSchema) error {
	return exportField(field, out)
}

// ExportArrowArray populates the CArrowArray that is passed in with the
// pointers to the memory being used by the arrow.Array passed in, in order
// to share with zero-copy across the C Data Interface. The exported array
// holds a reference on arr's data, which is dropped when the consumer calls
// its release callback, so arr may be released by the caller right away.
//
// If outSchema is not nil, it is populated with a nullable unnamed field of
// arr's data type.
func ExportArrowArray(arr arrow.Array, out *CArrowArray, outSchema *CArrowSchema) error {
	if arr == nil {
		return xerrors.Errorf("arrow/cdata: cannot export a nil array: %w", arrow.ErrInvalid)
	}
	return exportArray(arr, out, outSchema)
}

// ReleaseCArrowArray calls ArrowArrayRelease on the passed in cdata array
func ReleaseCArrowArray(arr *CArrowArray) { releaseArr(arr) }

// ReleaseCArrowSchema calls ArrowSchemaRelease on the passed in cdata schema
func ReleaseCArrowSchema(schema *CArrowSchema) { releaseSchema(schema) }

// ArrayIsReleased reports whether the release callback of arr has run.
func ArrayIsReleased(arr *CArrowArray) bool { return arrIsReleased(arr) }

// SchemaIsReleased reports whether the release callback of schema has run.
func SchemaIsReleased(schema *CArrowSchema) bool { return schemaIsReleased(schema) }
