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
	"bytes"
	"errors"
	"testing"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/array"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTypedFloats(t *testing.T, mem memory.Allocator, values []float64, valid []bool) *array.TypedArray[float64] {
	t.Helper()
	data, err := array.MakeFixedSizeData(mem, values, valid)
	require.NoError(t, err)
	defer data.Release()

	arr, err := array.AsTyped[float64](data)
	require.NoError(t, err)
	return arr
}

func TestTypedArrayAccess(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr := makeTypedFloats(t, mem, []float64{1, 2, 0, 4}, []bool{true, true, false, true})
	defer arr.Release()

	assert.Equal(t, 4, arr.Len())
	assert.False(t, arr.Empty())
	assert.Equal(t, 1, arr.NullN())

	v, err := arr.At(1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v.Value())

	v, err = arr.At(2)
	require.NoError(t, err)
	assert.False(t, v.HasValue())

	assert.Equal(t, 1.0, arr.Front().Value())
	assert.Equal(t, 4.0, arr.Back().Value())
	assert.Equal(t, 4.0, arr.Value(3))
	assert.Equal(t, "[1 2 (null) 4]", arr.String())
}

func TestTypedArrayAtOutOfRange(t *testing.T) {
	arr := makeTypedFloats(t, memory.DefaultAllocator, []float64{1, 2}, nil)
	defer arr.Release()

	for _, i := range []int{-1, 2, 100} {
		_, err := arr.At(i)
		require.Error(t, err)
		assert.ErrorIs(t, err, arrow.ErrIndex)

		var idxErr *arrow.IndexError
		require.True(t, errors.As(err, &idxErr))
		assert.Equal(t, i, idxErr.Index)
		assert.Equal(t, 2, idxErr.Size)
	}
}

func TestTypedArrayIter(t *testing.T) {
	arr := makeTypedFloats(t, memory.DefaultAllocator, []float64{1, 0, 3}, []bool{true, false, true})
	defer arr.Release()

	var (
		idx   []int
		valid []bool
	)
	for it := arr.Iter(); it.Next(); {
		idx = append(idx, it.Index())
		valid = append(valid, it.Value().HasValue())
	}
	assert.Equal(t, []int{0, 1, 2}, idx)
	assert.Equal(t, []bool{true, false, true}, valid)

	empty := makeTypedFloats(t, memory.DefaultAllocator, nil, nil)
	defer empty.Release()
	assert.True(t, empty.Empty())
	assert.False(t, empty.Iter().Next())
}

func TestTypedArrayValidPositionsRoundTrip(t *testing.T) {
	values := []int64{10, -3, 0, 42, 7}
	valid := []bool{true, false, true, true, false}

	data, err := array.MakeFixedSizeData(memory.DefaultAllocator, values, valid)
	require.NoError(t, err)
	defer data.Release()

	arr, err := array.AsTyped[int64](data)
	require.NoError(t, err)
	defer arr.Release()

	require.Equal(t, len(values), arr.Len())
	for i, v := range arr.Values() {
		assert.Equal(t, valid[i], v.HasValue())
		if valid[i] {
			assert.Equal(t, values[i], v.Value())
		}
	}
}

func TestTypedArrayWrongType(t *testing.T) {
	data, err := array.MakeFixedSizeData(memory.DefaultAllocator, []int32{1}, nil)
	require.NoError(t, err)
	defer data.Release()

	_, err = array.AsTyped[int64](data)
	assert.ErrorIs(t, err, arrow.ErrType)
	_, err = array.AsTyped[string](data)
	assert.ErrorIs(t, err, arrow.ErrType)
}

func TestTypedArrayLayouts(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	t.Run("string and bytes", func(t *testing.T) {
		data, err := array.MakeBinaryData(mem, arrow.BinaryTypes.LargeString, []string{"ab", "cde"}, nil)
		require.NoError(t, err)
		defer data.Release()

		strs, err := array.AsTyped[string](data)
		require.NoError(t, err)
		defer strs.Release()
		assert.Equal(t, "cde", strs.Value(1))

		raw, err := array.AsTyped[[]byte](data)
		require.NoError(t, err)
		defer raw.Release()
		assert.Equal(t, []byte("ab"), raw.Value(0))
	})

	t.Run("tuples", func(t *testing.T) {
		tuples := [][]byte{
			arrowBytes([]float32{1, 2}),
			arrowBytes([]float32{3, 4}),
		}
		data, err := array.MakeFixedSizeBinaryData(mem, 8, tuples, nil)
		require.NoError(t, err)
		defer data.Release()

		arr, err := array.AsTyped[[]float32](data)
		require.NoError(t, err)
		defer arr.Release()
		assert.Equal(t, []float32{3, 4}, arr.Value(1))

		_, err = array.AsTyped[[]float64](data)
		assert.NoError(t, err, "8 bytes hold one float64")
		_, err = array.AsTyped[[]int64](data)
		assert.NoError(t, err)
	})

	t.Run("dictionary", func(t *testing.T) {
		dt := &arrow.DictionaryType{ValueType: arrow.BinaryTypes.String}
		data, err := array.MakeDictionaryData(mem, dt, []string{"x", "y", "", "x"}, []bool{true, true, false, true})
		require.NoError(t, err)
		defer data.Release()

		arr, err := array.AsTyped[string](data)
		require.NoError(t, err)
		defer arr.Release()
		assert.Equal(t, `["x" "y" (null) "x"]`, arr.String())
	})

	t.Run("run end encoded", func(t *testing.T) {
		values, err := array.MakeFixedSizeData(mem, []int32{5, 6}, nil)
		require.NoError(t, err)
		defer values.Release()

		data, err := array.MakeRunEndEncodedData(mem, []int64{3, 4}, values, 4)
		require.NoError(t, err)
		defer data.Release()

		arr, err := array.AsTyped[int32](data)
		require.NoError(t, err)
		defer arr.Release()
		assert.Equal(t, "[5 5 5 6]", arr.String())
	})

	t.Run("list", func(t *testing.T) {
		child, err := array.MakeFixedSizeData(mem, []int32{1, 2, 3}, nil)
		require.NoError(t, err)
		defer child.Release()

		data, err := array.MakeListDataFromLengths(mem, arrow.ListOf(arrow.PrimitiveTypes.Int32), []int{1, 2}, nil, child)
		require.NoError(t, err)
		defer data.Release()

		arr, err := array.AsTyped[array.ListValue](data)
		require.NoError(t, err)
		defer arr.Release()
		assert.Equal(t, 2, arr.Value(1).Len())
	})

	t.Run("null", func(t *testing.T) {
		data := array.MakeNullData(2)
		defer data.Release()

		arr, err := array.AsTyped[float64](data)
		require.NoError(t, err)
		defer arr.Release()
		assert.False(t, arr.Front().HasValue())
	})
}

func arrowBytes(v []float32) []byte {
	return append([]byte(nil), arrow.GetBytes(v)...)
}

func TestTypedArrayCloneIsIndependent(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	orig := makeTypedFloats(t, mem, []float64{1, 2, 3}, nil)
	cp := orig.CloneWithAllocator(mem)
	defer cp.Release()

	assert.True(t, array.EqualComparable(orig, cp))
	assert.NotSame(t, orig.Data(), cp.Data())

	raw := arrow.GetData[float64](orig.Data().Buffers()[0].Bytes())
	raw[0] = 100
	assert.Equal(t, 1.0, cp.Value(0), "clone does not share buffers")

	orig.Release()
	assert.Equal(t, 3.0, cp.Value(2), "clone outlives the original")
}

func TestTypedArrayCopyFrom(t *testing.T) {
	a := makeTypedFloats(t, memory.DefaultAllocator, []float64{1}, nil)
	defer a.Release()
	b := makeTypedFloats(t, memory.DefaultAllocator, []float64{7, 8}, []bool{true, false})
	defer b.Release()

	a.CopyFrom(b)
	assert.Equal(t, 2, a.Len())
	assert.True(t, array.EqualComparable(a, b))
	assert.NotSame(t, a.Data(), b.Data())
}

func TestTypedArrayCompare(t *testing.T) {
	mk := func(values []float64, valid []bool) *array.TypedArray[float64] {
		return makeTypedFloats(t, memory.DefaultAllocator, values, valid)
	}

	tests := []struct {
		name string
		a, b *array.TypedArray[float64]
		want int
	}{
		{"equal", mk([]float64{1, 2}, nil), mk([]float64{1, 2}, nil), 0},
		{"less", mk([]float64{1, 2}, nil), mk([]float64{1, 3}, nil), -1},
		{"greater", mk([]float64{2}, nil), mk([]float64{1, 5}, nil), 1},
		{"null first", mk([]float64{0}, []bool{false}), mk([]float64{-10}, nil), -1},
		{"value after null", mk([]float64{-10}, nil), mk([]float64{0}, []bool{false}), 1},
		{"nulls equal", mk([]float64{1, 0}, []bool{true, false}), mk([]float64{1, 9}, []bool{true, false}), 0},
		{"prefix", mk([]float64{1}, nil), mk([]float64{1, 0}, nil), -1},
		{"empty", mk(nil, nil), mk(nil, nil), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer tt.a.Release()
			defer tt.b.Release()

			assert.Equal(t, tt.want, array.CompareOrdered(tt.a, tt.b))
			assert.Equal(t, -tt.want, array.CompareOrdered(tt.b, tt.a))
			assert.Equal(t, tt.want == 0, array.EqualComparable(tt.a, tt.b))
		})
	}
}

func TestTypedArrayEqualFunc(t *testing.T) {
	data1, err := array.MakeBinaryData(memory.DefaultAllocator, arrow.BinaryTypes.Binary, []string{"a", "b"}, nil)
	require.NoError(t, err)
	defer data1.Release()
	data2, err := array.MakeBinaryData(memory.DefaultAllocator, arrow.BinaryTypes.Binary, []string{"a", "c"}, nil)
	require.NoError(t, err)
	defer data2.Release()

	a, err := array.AsTyped[[]byte](data1)
	require.NoError(t, err)
	defer a.Release()
	b, err := array.AsTyped[[]byte](data2)
	require.NoError(t, err)
	defer b.Release()

	assert.True(t, array.EqualFunc(a, a, bytes.Equal))
	assert.False(t, array.EqualFunc(a, b, bytes.Equal))
	assert.Equal(t, -1, array.Compare(a, b, bytes.Compare))
}
