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
	"testing"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataReset(t *testing.T) {
	var (
		buffers1 = make([]*memory.Buffer, 0, 3)
		buffers2 = make([]*memory.Buffer, 0, 3)
	)
	for i := 0; i < cap(buffers1); i++ {
		buffers1 = append(buffers1, memory.NewBufferBytes([]byte("some-bytes1")))
		buffers2 = append(buffers2, memory.NewBufferBytes([]byte("some-bytes2")))
	}

	data := NewData(&arrow.StringType{}, 10, nil, buffers1, nil, 0, 0)
	data.Reset(&arrow.Int64Type{}, 5, nil, buffers2, nil, 1, 2)

	for i := 0; i < 2; i++ {
		assert.Equal(t, buffers2, data.Buffers())
		assert.Equal(t, &arrow.Int64Type{}, data.DataType())
		assert.Equal(t, 1, data.NullN())
		assert.Equal(t, 2, data.Offset())
		assert.Equal(t, 5, data.Len())

		// Make sure it works when resetting the data with its own buffers (new buffers are retained
		// before old ones are released.)
		data.Reset(&arrow.Int64Type{}, 5, nil, data.Buffers(), nil, 1, 2)
	}
}

func TestDataNullCountIsLazy(t *testing.T) {
	bitmap := memory.NewBufferBytes([]byte{0b00001101})
	data := NewData(arrow.PrimitiveTypes.Int8, 4, bitmap, []*memory.Buffer{memory.NewBufferBytes(make([]byte, 4))}, nil, UnknownNullCount, 0)
	defer data.Release()

	assert.EqualValues(t, UnknownNullCount, data.nulls)
	assert.Equal(t, 1, data.NullN())
	assert.EqualValues(t, 1, data.nulls)

	null := NewData(arrow.Null, 3, nil, nil, nil, 0, 0)
	defer null.Release()
	assert.Equal(t, 3, null.NullN())
}

func TestDataRefCounting(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	child, err := MakeFixedSizeData(mem, []uint32{1, 2, 3}, nil)
	require.NoError(t, err)

	list, err := MakeListDataFromLengths(mem, arrow.ListOf(arrow.PrimitiveTypes.Uint32), []int{2, 1}, nil, child)
	require.NoError(t, err)
	child.Release()

	slice := NewSliceData(list, 1, 2)
	list.Release()

	assert.NotZero(t, mem.CurrentAlloc(), "the slice keeps the buffers alive")
	arr := MakeFromData(slice).(*List)
	slice.Release()

	assert.Equal(t, "[[3]]", arr.String())
	arr.Release()
}

func TestDataCopy(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	dt := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Uint8, ValueType: arrow.BinaryTypes.String}
	data, err := MakeDictionaryData(mem, dt, []string{"a", "b", "a"}, []bool{true, false, true})
	require.NoError(t, err)
	defer data.Release()

	slice := NewSliceData(data, 1, 3)
	defer slice.Release()

	cp := slice.Copy(mem)
	defer cp.Release()

	assert.Equal(t, slice.Offset(), cp.Offset())
	assert.Equal(t, slice.Len(), cp.Len())
	assert.Equal(t, 1, cp.NullN())
	require.NotNil(t, cp.Dictionary())
	assert.NotSame(t, data.dictionary, cp.dictionary)
	assert.NotSame(t, data.buffers[0], cp.buffers[0])

	a, b := MakeFromData(slice), MakeFromData(cp)
	defer a.Release()
	defer b.Release()
	assert.True(t, Equal(a, b))
}
