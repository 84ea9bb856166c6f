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

package util_test

import (
	"strings"
	"testing"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/array"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/quiverdata/quiver/arrow/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalArraySizeBasic(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	noNulls, err := array.FromJSON(mem, arrow.PrimitiveTypes.Int16, strings.NewReader("[1, 2, 3]"))
	require.NoError(t, err)
	defer noNulls.Release()
	assert.Equal(t, int64(6), util.TotalArraySize(noNulls))

	withNulls, err := array.FromJSON(mem, arrow.PrimitiveTypes.Int16, strings.NewReader("[1, 2, 3, 4, null, 6, 7, 8, 9]"))
	require.NoError(t, err)
	defer withNulls.Release()
	assert.Equal(t, int64(20), util.TotalArraySize(withNulls))

	empty, err := array.FromJSON(mem, arrow.FixedWidthTypes.Boolean, strings.NewReader("[]"))
	require.NoError(t, err)
	defer empty.Release()
	assert.Equal(t, int64(0), util.TotalArraySize(empty))
}

func TestTotalArraySizeSlice(t *testing.T) {
	arr, err := array.FromJSON(memory.DefaultAllocator, arrow.BinaryTypes.String, strings.NewReader(`["ab", "cde", null]`))
	require.NoError(t, err)
	defer arr.Release()

	slice := array.NewSlice(arr, 1, 2)
	defer slice.Release()

	// bitmap 1 + offsets 16 + data 5
	assert.Equal(t, int64(22), util.TotalArraySize(arr))
	assert.Equal(t, util.TotalArraySize(arr), util.TotalArraySize(slice))
}

func TestTotalArraySizeNested(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	list, err := array.FromJSON(mem, arrow.ListOf(arrow.PrimitiveTypes.Int32), strings.NewReader(`[[1, 2], [3]]`))
	require.NoError(t, err)
	defer list.Release()
	// offsets 12 + values 12
	assert.Equal(t, int64(24), util.TotalArraySize(list))

	dict, err := array.FromJSON(mem, &arrow.DictionaryType{ValueType: arrow.BinaryTypes.String}, strings.NewReader(`["x", "y", "x"]`))
	require.NoError(t, err)
	defer dict.Release()
	// indices 3 + dictionary offsets 12 + dictionary data 2
	assert.Equal(t, int64(17), util.TotalArraySize(dict))
}

func TestTotalArraySizeSharedChild(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	child, err := array.FromJSON(mem, arrow.PrimitiveTypes.Int64, strings.NewReader(`[1, 2]`))
	require.NoError(t, err)
	defer child.Release()

	dt := arrow.StructOf(
		arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int64},
		arrow.Field{Name: "b", Type: arrow.PrimitiveTypes.Int64},
	)
	data, err := array.MakeStructData(mem, dt, 2, nil, []arrow.ArrayData{child.Data(), child.Data()})
	require.NoError(t, err)
	defer data.Release()

	assert.Equal(t, int64(16), util.TotalArrayDataSize(data))
}
