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

package builder_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/array"
	"github.com/quiverdata/quiver/arrow/builder"
	"github.com/quiverdata/quiver/arrow/float16"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func ptr[T any](v T) *T { return &v }

func TestBuildFixedSize(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := builder.Build([]*float64{ptr(1.0), ptr(2.0), nil, ptr(4.0)}, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	require.IsType(t, (*array.Float64)(nil), arr)
	assert.Equal(t, 4, arr.Len())
	assert.Equal(t, 1, arr.NullN())
	for i, valid := range []bool{true, true, false, true} {
		assert.Equal(t, valid, arr.IsValid(i), "element %d", i)
	}
	vals := arr.(*array.Float64).Values()
	assert.Equal(t, 1.0, vals[0])
	assert.Equal(t, 2.0, vals[1])
	assert.Equal(t, 4.0, vals[3])
}

func TestBuildNullableWrapper(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	in := []arrow.Nullable[int32]{arrow.NewNullable[int32](7), arrow.NullOf[int32](), arrow.NewNullable[int32](-3)}
	arr, err := builder.BuildTyped[arrow.Nullable[int32], int32](in, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int32, arr.DataType()))
	assert.Equal(t, in, arr.Values())
}

type celsius float64

func TestBuildPrimitiveKinds(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	tests := []struct {
		name  string
		build func() (arrow.Array, error)
		want  arrow.DataType
		str   string
	}{
		{"bool", func() (arrow.Array, error) {
			return builder.Build([]bool{true, false}, builder.WithAllocator(mem))
		}, arrow.FixedWidthTypes.Boolean, "[true false]"},
		{"int", func() (arrow.Array, error) {
			return builder.Build([]int{-1, 2}, builder.WithAllocator(mem))
		}, arrow.PrimitiveTypes.Int64, "[-1 2]"},
		{"uint", func() (arrow.Array, error) {
			return builder.Build([]uint{1, 2}, builder.WithAllocator(mem))
		}, arrow.PrimitiveTypes.Uint64, "[1 2]"},
		{"int8", func() (arrow.Array, error) {
			return builder.Build([]int8{-128, 127}, builder.WithAllocator(mem))
		}, arrow.PrimitiveTypes.Int8, "[-128 127]"},
		{"uint16", func() (arrow.Array, error) {
			return builder.Build([]uint16{65535}, builder.WithAllocator(mem))
		}, arrow.PrimitiveTypes.Uint16, "[65535]"},
		{"float32", func() (arrow.Array, error) {
			return builder.Build([]float32{0.5}, builder.WithAllocator(mem))
		}, arrow.PrimitiveTypes.Float32, "[0.5]"},
		{"float16", func() (arrow.Array, error) {
			return builder.Build([]float16.Num{float16.New(1.5), float16.New(-2)}, builder.WithAllocator(mem))
		}, arrow.FixedWidthTypes.Float16, "[1.5 -2]"},
		{"named", func() (arrow.Array, error) {
			return builder.Build([]celsius{21.5}, builder.WithAllocator(mem))
		}, arrow.PrimitiveTypes.Float64, "[21.5]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr, err := tt.build()
			require.NoError(t, err)
			defer arr.Release()

			assert.Truef(t, arrow.TypeEqual(tt.want, arr.DataType()), "got %s", arr.DataType())
			assert.Equal(t, tt.str, arr.String())
		})
	}
}

func TestBuildBinary(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := builder.Build([]string{"ab", "cde"}, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	strs := arr.(*array.String)
	assert.Equal(t, []int32{0, 2, 5}, strs.ValueOffsets())
	assert.Equal(t, []byte("abcde"), strs.ValueBytes())

	raw, err := builder.Build([][]byte{[]byte("x"), nil, []byte("yz")}, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer raw.Release()

	require.IsType(t, (*array.Binary)(nil), raw)
	assert.Equal(t, []int32{0, 1, 1, 3}, raw.(*array.Binary).ValueOffsets())
	assert.Zero(t, raw.NullN(), "a nil slice is an empty value, not a null")
}

func TestBuildLargeOffsets(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := builder.Build([][]string{{"a"}, {"b", "c"}}, builder.WithAllocator(mem), builder.WithLargeOffsets())
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, "large_list<item: large_utf8>", arr.DataType().String())
	assert.Equal(t, []int64{0, 1, 3}, arr.(*array.LargeList).Offsets())
}

func TestBuildList(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := builder.Build([][]int32{{1, 2, 3}, {4, 5}}, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	lst := arr.(*array.List)
	assert.Equal(t, []int32{0, 3, 5}, lst.Offsets())
	assert.Equal(t, 5, lst.ListValues().Len())
	assert.Equal(t, "[1 2 3]", lst.Value(0).String())
	assert.Equal(t, "list<item: int32>", arr.DataType().String())
}

func TestBuildListNulls(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := builder.Build([]*[]*int64{ptr([]*int64{ptr(int64(1)), nil}), nil, ptr([]*int64{})}, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	lst := arr.(*array.List)
	assert.Equal(t, "list<item: int64, nullable>", arr.DataType().String())
	assert.Equal(t, []int32{0, 2, 2, 2}, lst.Offsets(), "null elements span no child values")
	assert.True(t, lst.IsNull(1))
	assert.True(t, lst.IsValid(2))
	assert.Equal(t, "[[1 (null)] (null) []]", arr.String())
}

func TestBuildArrayOfStrings(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := builder.Build([][2]string{{"a", "b"}, {"c", "d"}}, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, arrow.LIST, arr.DataType().ID())
	assert.Equal(t, []int32{0, 2, 4}, arr.(*array.List).Offsets())
}

func TestBuildDictionary(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	in := []string{"x", "y", "x", "z"}
	arr, err := builder.Build(in, builder.WithAllocator(mem), builder.WithDictionaryEncoding())
	require.NoError(t, err)
	defer arr.Release()

	dict := arr.(*array.Dictionary)
	assert.Equal(t, 3, dict.Dictionary().Len())
	assert.ElementsMatch(t, []string{"x", "y", "z"}, []string{
		dict.Dictionary().(*array.String).Value(0),
		dict.Dictionary().(*array.String).Value(1),
		dict.Dictionary().(*array.String).Value(2),
	})
	for i, want := range in {
		assert.Equal(t, want, dict.ValueAt(i).Value())
	}
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Uint8, dict.Indices().DataType()))
}

type pair struct {
	A *float64
	B int32
}

func TestBuildStruct(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := builder.Build([]pair{{A: nil, B: 2}, {A: ptr(3.5), B: 4}}, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	st := arr.(*array.Struct)
	require.Equal(t, 2, st.NumField())
	assert.Equal(t, "struct<A: float64, B: int32>", arr.DataType().String())
	assert.True(t, arr.DataType().(*arrow.StructType).Field(0).Nullable)
	assert.False(t, arr.DataType().(*arrow.StructType).Field(1).Nullable)

	a, b := st.Field(0), st.Field(1)
	assert.True(t, a.IsNull(0))
	assert.True(t, b.IsValid(0), "field validity is independent")
	assert.Equal(t, 3.5, a.(*array.Float64).Value(1))
	assert.Equal(t, []int32{2, 4}, b.(*array.Int32).Values())
}

func TestBuildStructRows(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := builder.Build([]*pair{{A: ptr(1.5), B: 2}, nil}, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, 1, arr.NullN())
	assert.True(t, arr.IsNull(1))
	assert.Equal(t, 2, arr.Child(1).Len())
	assert.Equal(t, "[{1.5 2} (null)]", arr.String())
}

type tagged struct {
	Name    string  `arrow:"name"`
	Label   string  `arrow:"label,dict"`
	Day     int32   `arrow:"day,ree"`
	Skipped int     `arrow:"-"`
	Plain   float32 `arrow:",dict"`
	hidden  bool
}

func TestBuildStructTags(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	in := []tagged{
		{Name: "a", Label: "red", Day: 1, Plain: 1},
		{Name: "b", Label: "red", Day: 1, Plain: 2},
		{Name: "c", Label: "blue", Day: 2, Plain: 3, hidden: true},
	}
	arr, err := builder.Build(in, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	st := arr.(*array.Struct)
	dt := arr.DataType().(*arrow.StructType)
	require.Equal(t, 4, dt.NumFields())
	assert.Equal(t, "name", dt.Field(0).Name)
	assert.Equal(t, "label", dt.Field(1).Name)
	assert.Equal(t, "day", dt.Field(2).Name)
	assert.Equal(t, "Plain", dt.Field(3).Name)

	assert.Equal(t, arrow.STRING, dt.Field(0).Type.ID())
	assert.Equal(t, arrow.DICTIONARY, dt.Field(1).Type.ID())
	assert.Equal(t, arrow.RUN_END_ENCODED, dt.Field(2).Type.ID())
	assert.Equal(t, arrow.FLOAT32, dt.Field(3).Type.ID(), "dict has no effect on numbers")

	assert.Equal(t, 2, st.Field(1).(*array.Dictionary).Dictionary().Len())
	assert.Equal(t, "[{2 -> 1},{3 -> 2}]", st.Field(2).String())
}

func TestBuildTuple(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	in := [][3]int16{{1, 2, 3}, {-4, 5, -6}}
	arr, err := builder.BuildTyped[[3]int16, []int16](in, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	assert.True(t, arrow.TypeEqual(&arrow.FixedSizeBinaryType{ByteWidth: 6}, arr.DataType()))
	assert.Equal(t, []int16{1, 2, 3}, arr.Value(0))
	assert.Equal(t, []int16{-4, 5, -6}, arr.Value(1))

	ids, err := builder.Build([]*[4]byte{{0xde, 0xad, 0xbe, 0xef}, nil}, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer ids.Release()

	fsb := ids.(*array.FixedSizeBinary)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, fsb.Value(0))
	assert.True(t, fsb.IsNull(1))
}

type doc struct {
	Tags   []string  `arrow:"tags"`
	Scores []float32 `arrow:"scores"`
}

func TestBuildNested(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	in := [][]doc{
		{{Tags: []string{"a", "b"}, Scores: []float32{1}}, {Tags: nil, Scores: []float32{2.5, 3}}},
		{},
		{{Tags: []string{"c"}}},
	}
	arr, err := builder.Build(in, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, len(in), arr.Len())
	assert.Equal(t, "list<item: struct<tags: list<item: utf8>, scores: list<item: float32>>>", arr.DataType().String())

	out, err := arr.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[
		[{"tags": ["a", "b"], "scores": [1]}, {"tags": [], "scores": [2.5, 3]}],
		[],
		[{"tags": ["c"], "scores": []}]
	]`, string(out))
}

func TestBuildRunEndEncoded(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	in := []*string{ptr("a"), ptr("a"), nil, ptr("b"), ptr("b"), ptr("b")}
	arr, err := builder.Build(in, builder.WithAllocator(mem), builder.WithRunEndEncoding())
	require.NoError(t, err)
	defer arr.Release()

	ree := arr.(*array.RunEndEncoded)
	assert.Equal(t, 6, ree.Len())
	assert.Equal(t, 3, ree.Values().Len())
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int16, ree.RunEndsArr().DataType()))
	assert.Equal(t, `[{2 -> "a"},{3 -> (null)},{6 -> "b"}]`, ree.String())
	assert.True(t, ree.IsNull(2))
	assert.Equal(t, "b", ree.ValueAt(4).Value())
}

func TestBuildRunEndEncodedAbsentPayload(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	in := []arrow.Nullable[int32]{
		arrow.MakeNullable(int32(5), false),
		arrow.NullOf[int32](),
		arrow.NewNullable(int32(1)),
		arrow.NewNullable(int32(1)),
	}
	arr, err := builder.Build(in, builder.WithAllocator(mem), builder.WithRunEndEncoding())
	require.NoError(t, err)
	defer arr.Release()

	ree := arr.(*array.RunEndEncoded)
	assert.Equal(t, 2, ree.Values().Len())
	assert.Equal(t, "[{2 -> (null)},{4 -> 1}]", ree.String())

	type row struct {
		Score arrow.Nullable[int32] `arrow:"score,ree"`
	}
	rows := []row{
		{Score: arrow.MakeNullable(int32(7), false)},
		{Score: arrow.NullOf[int32]()},
		{Score: arrow.NewNullable(int32(7))},
	}
	st, err := builder.Build(rows, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer st.Release()

	assert.Equal(t, "[{2 -> (null)},{3 -> 7}]", st.(*array.Struct).Field(0).String())
}

func TestBuildEmpty(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	arr, err := builder.Build([]pair{}, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer arr.Release()

	assert.Zero(t, arr.Len())
	assert.Equal(t, arrow.STRUCT, arr.DataType().ID())

	none, err := builder.Build[[]string](nil, builder.WithAllocator(mem))
	require.NoError(t, err)
	defer none.Release()
	assert.Zero(t, none.Len())
}

type recursive struct {
	Name     string
	Children []recursive
}

type withMap struct {
	ID    int
	Attrs map[string]string
}

func TestBuildUnsupported(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"map", func() error { _, err := builder.Build([]map[string]int{}); return err }},
		{"chan", func() error { _, err := builder.Build([]chan int(nil)); return err }},
		{"func", func() error { _, err := builder.Build([]func(){}); return err }},
		{"interface", func() error { _, err := builder.Build([]any{1, "a"}); return err }},
		{"field", func() error { _, err := builder.Build([]withMap{{ID: 1}}); return err }},
		{"recursive", func() error { _, err := builder.Build([]recursive{{Name: "root"}}); return err }},
		{"type of", func() error { _, err := builder.DataTypeOf[[]map[int]int](); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			assert.True(t, errors.Is(err, arrow.ErrNotImplemented), "got %v", err)
		})
	}
}

func TestDataTypeOf(t *testing.T) {
	tests := []struct {
		name string
		fn   func(...builder.Option) (arrow.DataType, error)
		opts []builder.Option
		want string
	}{
		{"scalar", builder.DataTypeOf[int16], nil, "int16"},
		{"pointer", builder.DataTypeOf[*bool], nil, "bool"},
		{"string", builder.DataTypeOf[string], nil, "utf8"},
		{"large", builder.DataTypeOf[[]byte], []builder.Option{builder.WithLargeOffsets()}, "large_binary"},
		{"tuple", builder.DataTypeOf[[2]float64], nil, "fixed_size_binary[16]"},
		{"list", builder.DataTypeOf[[][]*int8], nil, "list<item: list<item: int8, nullable>>"},
		{"struct", builder.DataTypeOf[pair], nil, "struct<A: float64, B: int32>"},
		{"dict", builder.DataTypeOf[string], []builder.Option{builder.WithDictionaryEncoding()},
			"dictionary<values=utf8, indices=auto, ordered=false>"},
		{"ree", builder.DataTypeOf[uint32], []builder.Option{builder.WithRunEndEncoding()},
			"run_end_encoded<run_ends: auto, values: uint32>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, err := tt.fn(tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dt.String())
		})
	}
}

func TestBuildSizeMatchesInput(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	for n := 0; n < 70; n += 7 {
		in := make([]*string, n)
		for i := range in {
			if i%3 != 0 {
				in[i] = ptr(fmt.Sprint(i % 4))
			}
		}
		for _, opts := range [][]builder.Option{nil, {builder.WithDictionaryEncoding()}, {builder.WithRunEndEncoding()}} {
			arr, err := builder.Build(in, append(opts, builder.WithAllocator(mem))...)
			require.NoError(t, err)
			assert.Equal(t, n, arr.Len())
			for i, v := range in {
				got := arr.ValueAt(i)
				require.Equal(t, v != nil, got.HasValue(), "n=%d element %d", n, i)
				if v != nil {
					assert.Equal(t, *v, got.Value())
				}
			}
			arr.Release()
		}
	}
}

func TestBuildConcurrent(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		i := i
		g.Go(func() error {
			arr, err := builder.Build([]pair{{B: int32(i)}, {A: ptr(float64(i)), B: 1}}, builder.WithAllocator(mem))
			if err != nil {
				return err
			}
			defer arr.Release()
			if got := arr.(*array.Struct).Field(1).(*array.Int32).Value(0); got != int32(i) {
				return fmt.Errorf("worker %d read %d", i, got)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
