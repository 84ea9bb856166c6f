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

package array_test

import (
	"strings"
	"testing"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/array"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/stretchr/testify/assert"
)

func TestFromJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		dt   arrow.DataType
		js   string
	}{
		{"not an array", arrow.PrimitiveTypes.Int32, `{"a": 1}`},
		{"bool from number", arrow.FixedWidthTypes.Boolean, `[1]`},
		{"int8 overflow", arrow.PrimitiveTypes.Int8, `[300]`},
		{"negative uint", arrow.PrimitiveTypes.Uint16, `[-1]`},
		{"int from float", arrow.PrimitiveTypes.Int64, `[1.5]`},
		{"string from number", arrow.BinaryTypes.String, `[1]`},
		{"bad base64", arrow.BinaryTypes.Binary, `["!!"]`},
		{"fixed width", &arrow.FixedSizeBinaryType{ByteWidth: 3}, `["AQI="]`},
		{"list from scalar", arrow.ListOf(arrow.PrimitiveTypes.Int32), `[1]`},
		{"struct from list", arrow.StructOf(arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int32}), `[[1]]`},
		{"null with value", arrow.Null, `[1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
			defer mem.AssertSize(t, 0)

			_, err := array.FromJSON(mem, tt.dt, strings.NewReader(tt.js))
			assert.Error(t, err)
		})
	}
}

func TestFromJSONStructMissingFields(t *testing.T) {
	dt := arrow.StructOf(
		arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		arrow.Field{Name: "b", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
	)
	arr := fromJSON(t, memory.DefaultAllocator, dt, `[{"a": 1.5, "b": 2}, {"a": 3.5}]`)
	defer arr.Release()

	st := arr.(*array.Struct)
	assert.Equal(t, 2, st.Len())
	assert.Zero(t, st.NullN())
	assert.Equal(t, 3.5, st.Value(1).Field(0).Value())
	assert.False(t, st.Value(1).Field(1).HasValue())
	assert.Equal(t, 1, st.Field(1).NullN())
}

func TestFromJSONRunEnds(t *testing.T) {
	dt := arrow.RunEndEncodedOf(arrow.PrimitiveTypes.Int32, arrow.BinaryTypes.String)
	arr := fromJSON(t, memory.DefaultAllocator, dt, `["a", "a", "a", null, "b", "b"]`)
	defer arr.Release()

	ree := arr.(*array.RunEndEncoded)
	assert.True(t, arrow.TypeEqual(dt, ree.DataType()))
	assert.Equal(t, 3, ree.Values().Len())
	assert.Equal(t, []int32{3, 4, 6}, ree.RunEndsArr().(*array.Int32).Values())
	assert.Equal(t, 3, ree.GetPhysicalLength())

	slice := array.NewSlice(ree, 1, 4).(*array.RunEndEncoded)
	defer slice.Release()
	assert.Equal(t, 0, slice.GetPhysicalOffset())
	assert.Equal(t, 2, slice.GetPhysicalLength())
}
