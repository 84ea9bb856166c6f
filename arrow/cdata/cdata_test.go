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
	"strings"
	"testing"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/array"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveSchemas(t *testing.T) {
	tests := []struct {
		typ arrow.DataType
		fmt string
	}{
		{arrow.PrimitiveTypes.Int8, "c"},
		{arrow.PrimitiveTypes.Int16, "s"},
		{arrow.PrimitiveTypes.Int32, "i"},
		{arrow.PrimitiveTypes.Int64, "l"},
		{arrow.PrimitiveTypes.Uint8, "C"},
		{arrow.PrimitiveTypes.Uint16, "S"},
		{arrow.PrimitiveTypes.Uint32, "I"},
		{arrow.PrimitiveTypes.Uint64, "L"},
		{arrow.FixedWidthTypes.Boolean, "b"},
		{arrow.Null, "n"},
		{arrow.FixedWidthTypes.Float16, "e"},
		{arrow.PrimitiveTypes.Float32, "f"},
		{arrow.PrimitiveTypes.Float64, "g"},
		{&arrow.FixedSizeBinaryType{ByteWidth: 3}, "w:3"},
		{arrow.BinaryTypes.Binary, "z"},
		{arrow.BinaryTypes.LargeBinary, "Z"},
		{arrow.BinaryTypes.String, "u"},
		{arrow.BinaryTypes.LargeString, "U"},
	}

	for _, tt := range tests {
		t.Run(tt.typ.Name(), func(t *testing.T) {
			got, err := exportFormat(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.fmt, got)

			dt, err := typeFromFormat(tt.fmt, nil)
			require.NoError(t, err)
			assert.True(t, arrow.TypeEqual(tt.typ, dt), "got %s", dt)
		})
	}
}

func TestNestedFormats(t *testing.T) {
	i32 := arrow.Field{Name: "item", Type: arrow.PrimitiveTypes.Int32, Nullable: true}
	runEnds := arrow.Field{Name: "run_ends", Type: arrow.PrimitiveTypes.Int16}
	values := arrow.Field{Name: "values", Type: arrow.BinaryTypes.String, Nullable: true}

	tests := []struct {
		fmt      string
		children []arrow.Field
		want     arrow.DataType
	}{
		{"+l", []arrow.Field{i32}, arrow.ListOfField(i32)},
		{"+L", []arrow.Field{i32}, arrow.LargeListOfField(i32)},
		{"+s", []arrow.Field{i32, values}, arrow.StructOf(i32, values)},
		{"+r", []arrow.Field{runEnds, values}, arrow.RunEndEncodedOf(arrow.PrimitiveTypes.Int16, arrow.BinaryTypes.String)},
	}

	for _, tt := range tests {
		t.Run(tt.fmt, func(t *testing.T) {
			dt, err := typeFromFormat(tt.fmt, tt.children)
			require.NoError(t, err)
			assert.True(t, arrow.TypeEqual(tt.want, dt), "got %s", dt)

			f, err := exportFormat(dt)
			require.NoError(t, err)
			assert.Equal(t, tt.fmt, f)
		})
	}
}

func TestFormatErrors(t *testing.T) {
	tests := []struct {
		fmt      string
		children []arrow.Field
		err      error
	}{
		{"tdD", nil, arrow.ErrNotImplemented},
		{"+m", nil, arrow.ErrNotImplemented},
		{"w:abc", nil, arrow.ErrInvalid},
		{"w:0", nil, arrow.ErrInvalid},
		{"+l", nil, arrow.ErrInvalid},
		{"+r", []arrow.Field{{Name: "run_ends", Type: arrow.PrimitiveTypes.Uint8}, {Name: "values", Type: arrow.Null}}, arrow.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.fmt, func(t *testing.T) {
			_, err := typeFromFormat(tt.fmt, tt.children)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFieldRoundTrip(t *testing.T) {
	fields := []arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "b", Type: arrow.ListOf(arrow.BinaryTypes.String)},
		{Name: "c", Type: arrow.StructOf(
			arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
			arrow.Field{Name: "y", Type: &arrow.FixedSizeBinaryType{ByteWidth: 4}},
		), Nullable: true},
		{Name: "d", Type: &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Uint8, ValueType: arrow.BinaryTypes.String, Ordered: true}},
		{Name: "e", Type: arrow.RunEndEncodedOf(arrow.PrimitiveTypes.Int32, arrow.PrimitiveTypes.Float32)},
	}

	for _, f := range fields {
		t.Run(f.Name, func(t *testing.T) {
			var sc CArrowSchema
			require.NoError(t, ExportArrowField(f, &sc))
			assert.False(t, SchemaIsReleased(&sc))

			got, err := ImportCArrowField(&sc)
			require.NoError(t, err)
			assert.True(t, SchemaIsReleased(&sc))

			assert.Equal(t, f.Name, got.Name)
			assert.Equal(t, f.Nullable, got.Nullable)
			assert.True(t, arrow.TypeEqual(f.Type, got.Type), "got %s, want %s", got.Type, f.Type)
		})
	}
}

func TestExportUnsetDictionaryIndex(t *testing.T) {
	var sc CArrowSchema
	err := ExportArrowField(arrow.Field{Type: &arrow.DictionaryType{ValueType: arrow.BinaryTypes.String}}, &sc)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
	assert.True(t, SchemaIsReleased(&sc))
}

func TestArrayRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		dt   arrow.DataType
		js   string
	}{
		{"null", arrow.Null, `[null, null, null]`},
		{"bool", arrow.FixedWidthTypes.Boolean, `[true, null, false, true]`},
		{"int8", arrow.PrimitiveTypes.Int8, `[1, -2, null, 127]`},
		{"uint16", arrow.PrimitiveTypes.Uint16, `[1, 2, 65535]`},
		{"int32", arrow.PrimitiveTypes.Int32, `[1, 2, null, 4, 5]`},
		{"uint64", arrow.PrimitiveTypes.Uint64, `[null, 18446744073709551615]`},
		{"float16", arrow.FixedWidthTypes.Float16, `[1.5, null, -2]`},
		{"float64", arrow.PrimitiveTypes.Float64, `[1.5, null, -2.25]`},
		{"fixed_size_binary", &arrow.FixedSizeBinaryType{ByteWidth: 2}, `["AAE=", null, "//8="]`},
		{"binary", arrow.BinaryTypes.Binary, `["aGk=", null, ""]`},
		{"large_binary", arrow.BinaryTypes.LargeBinary, `["aGk=", ""]`},
		{"string", arrow.BinaryTypes.String, `["a", null, "bc", ""]`},
		{"large_string", arrow.BinaryTypes.LargeString, `["a", "bc", null]`},
		{"empty_string", arrow.BinaryTypes.String, `[]`},
		{"list", arrow.ListOf(arrow.PrimitiveTypes.Int32), `[[1, 2], null, [], [3, null]]`},
		{"large_list", arrow.LargeListOf(arrow.BinaryTypes.String), `[["a"], [], null]`},
		{"struct", arrow.StructOf(
			arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
			arrow.Field{Name: "b", Type: arrow.ListOf(arrow.PrimitiveTypes.Int16), Nullable: true},
		), `[{"a": 1.5, "b": [1]}, null, {"a": null, "b": []}]`},
		{"dictionary", &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Uint8, ValueType: arrow.BinaryTypes.String},
			`["x", "y", null, "x"]`},
		{"run_end_encoded", arrow.RunEndEncodedOf(arrow.PrimitiveTypes.Int32, arrow.BinaryTypes.String),
			`["a", "a", null, "b", "b", "b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
			defer mem.AssertSize(t, 0)

			arr, err := array.FromJSON(mem, tt.dt, strings.NewReader(tt.js))
			require.NoError(t, err)
			defer arr.Release()

			var (
				carr CArrowArray
				csc  CArrowSchema
			)
			require.NoError(t, ExportArrowArray(arr, &carr, &csc))

			field, imported, err := ImportCArray(&carr, &csc)
			require.NoError(t, err)
			defer imported.Release()

			assert.True(t, ArrayIsReleased(&carr))
			assert.True(t, SchemaIsReleased(&csc))
			assert.True(t, field.Nullable)
			assert.True(t, arrow.TypeEqual(arr.DataType(), imported.DataType()), "got %s", imported.DataType())
			assert.True(t, array.Equal(arr, imported), "got %s, want %s", imported, arr)
			assert.Equal(t, arr.NullN(), imported.NullN())
		})
	}
}

func TestImportIsZeroCopy(t *testing.T) {
	arr, err := array.FromJSON(memory.DefaultAllocator, arrow.PrimitiveTypes.Int32, strings.NewReader(`[1, 2, 3, 4]`))
	require.NoError(t, err)
	defer arr.Release()

	var carr CArrowArray
	require.NoError(t, ExportArrowArray(arr, &carr, nil))

	imported, err := ImportCArrayWithType(&carr, arrow.PrimitiveTypes.Int32)
	require.NoError(t, err)
	defer imported.Release()

	orig := arr.(*array.Int32).Values()
	vals := imported.(*array.Int32).Values()
	assert.Same(t, &orig[0], &vals[0])
	assert.Equal(t, []int32{1, 2, 3, 4}, vals)
}

func TestImportSliced(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := array.FromJSON(mem, arrow.BinaryTypes.String, strings.NewReader(`["a", null, "bc", "d", null]`))
	require.NoError(t, err)
	defer arr.Release()

	scope := memory.NewCheckedAllocatorScope(mem)
	defer scope.CheckSize(t)

	slice := array.NewSlice(arr, 1, 4)
	defer slice.Release()

	var carr CArrowArray
	require.NoError(t, ExportArrowArray(slice, &carr, nil))
	assert.EqualValues(t, 1, carr.offset)

	imported, err := ImportCArrayWithType(&carr, arrow.BinaryTypes.String)
	require.NoError(t, err)
	defer imported.Release()

	assert.Equal(t, 3, imported.Len())
	assert.Equal(t, 1, imported.NullN())
	assert.True(t, array.Equal(slice, imported), "got %s", imported)
}

func TestImportKeepsProducerAlive(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := array.FromJSON(mem, arrow.ListOf(arrow.PrimitiveTypes.Int64), strings.NewReader(`[[1, 2], null, [3]]`))
	require.NoError(t, err)

	var carr CArrowArray
	require.NoError(t, ExportArrowArray(arr, &carr, nil))
	arr.Release()
	assert.NotZero(t, mem.CurrentAlloc())

	imported, err := ImportCArrayWithType(&carr, arrow.ListOf(arrow.PrimitiveTypes.Int64))
	require.NoError(t, err)

	slice := array.NewSlice(imported, 1, 3)
	imported.Release()
	assert.NotZero(t, mem.CurrentAlloc())
	assert.Equal(t, "[(null) [3]]", slice.String())

	slice.Release()
	assert.Zero(t, mem.CurrentAlloc())
}

func TestReleaseIsIdempotent(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := array.FromJSON(mem, arrow.BinaryTypes.String, strings.NewReader(`["a", "b"]`))
	require.NoError(t, err)

	var (
		carr CArrowArray
		csc  CArrowSchema
	)
	require.NoError(t, ExportArrowArray(arr, &carr, &csc))
	arr.Release()

	ReleaseCArrowArray(&carr)
	assert.True(t, ArrayIsReleased(&carr))
	ReleaseCArrowArray(&carr)

	ReleaseCArrowSchema(&csc)
	assert.True(t, SchemaIsReleased(&csc))
	ReleaseCArrowSchema(&csc)
}

func TestImportReleased(t *testing.T) {
	arr, err := array.FromJSON(memory.DefaultAllocator, arrow.PrimitiveTypes.Int8, strings.NewReader(`[1]`))
	require.NoError(t, err)
	defer arr.Release()

	var carr CArrowArray
	require.NoError(t, ExportArrowArray(arr, &carr, nil))
	ReleaseCArrowArray(&carr)

	_, err = ImportCArrayWithType(&carr, arrow.PrimitiveTypes.Int8)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
}

func TestImportCorruptOffsets(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	dt := arrow.ListOf(arrow.PrimitiveTypes.Int32)
	arr, err := array.FromJSON(mem, dt, strings.NewReader(`[[1, 2], [3]]`))
	require.NoError(t, err)

	offsets := arrow.GetData[int32](arr.Data().Buffers()[0].Bytes())
	require.Equal(t, []int32{0, 2, 3}, offsets[:3])
	offsets[1], offsets[2] = 3, 2

	var carr CArrowArray
	require.NoError(t, ExportArrowArray(arr, &carr, nil))
	arr.Release()

	_, err = ImportCArrayWithType(&carr, dt)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
	// the producer was released on failure
	assert.True(t, ArrayIsReleased(&carr))
	assert.Zero(t, mem.CurrentAlloc())
}

func TestImportTypeMismatch(t *testing.T) {
	arr, err := array.FromJSON(memory.DefaultAllocator, arrow.PrimitiveTypes.Int32, strings.NewReader(`[1, 2]`))
	require.NoError(t, err)
	defer arr.Release()

	var carr CArrowArray
	require.NoError(t, ExportArrowArray(arr, &carr, nil))

	// a struct carries a single buffer, an int32 array two
	_, err = ImportCArrayWithType(&carr, arrow.StructOf())
	assert.ErrorIs(t, err, arrow.ErrInvalid)
}

func TestImportSchemaError(t *testing.T) {
	var (
		carr CArrowArray
		csc  CArrowSchema
	)

	arr, err := array.FromJSON(memory.DefaultAllocator, arrow.PrimitiveTypes.Int32, strings.NewReader(`[1]`))
	require.NoError(t, err)
	defer arr.Release()
	require.NoError(t, ExportArrowArray(arr, &carr, &csc))

	ReleaseCArrowSchema(&csc)
	_, _, err = ImportCArray(&carr, &csc)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
	assert.True(t, ArrayIsReleased(&carr))
}
