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

package encoded_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/array"
	"github.com/quiverdata/quiver/arrow/encoded"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPhysicalIndex(t *testing.T) {
	runEnds := []int32{1, 2, 5, 100}
	tests := []struct {
		logical, physical int
	}{
		{0, 0}, {1, 1}, {2, 2}, {4, 2}, {5, 3}, {99, 3}, {100, 4},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.logical), func(t *testing.T) {
			assert.Equal(t, tt.physical, encoded.FindPhysicalIndex(runEnds, tt.logical))
		})
	}
	assert.Zero(t, encoded.FindPhysicalIndex([]int64{}, 0))
}

func TestPhysicalOffsetAndLength(t *testing.T) {
	for _, endsType := range []arrow.DataType{arrow.PrimitiveTypes.Int16, arrow.PrimitiveTypes.Int32, arrow.PrimitiveTypes.Int64} {
		t.Run(endsType.String(), func(t *testing.T) {
			dt := arrow.RunEndEncodedOf(endsType, arrow.PrimitiveTypes.Float64)
			arr, err := array.FromJSON(memory.DefaultAllocator, dt, strings.NewReader(`[1, 1, 2, 3, 3, 3, 4]`))
			require.NoError(t, err)
			defer arr.Release()

			assert.Equal(t, []int64{2, 3, 6, 7}, encoded.RunEnds(arr.Data()))
			assert.Equal(t, 0, encoded.FindPhysicalOffset(arr.Data()))
			assert.Equal(t, 4, encoded.GetPhysicalLength(arr.Data()))

			tests := []struct {
				i, j           int
				offset, length int
			}{
				{0, 7, 0, 4},
				{1, 3, 0, 2},
				{2, 3, 1, 1},
				{3, 6, 2, 1},
				{5, 7, 2, 2},
				{4, 4, 2, 0},
			}
			for _, tt := range tests {
				slice := array.NewSliceData(arr.Data(), tt.i, tt.j)
				if tt.j > tt.i {
					assert.Equal(t, tt.offset, encoded.FindPhysicalOffset(slice), "[%d:%d]", tt.i, tt.j)
				}
				assert.Equal(t, tt.length, encoded.GetPhysicalLength(slice), "[%d:%d]", tt.i, tt.j)
				for k := 0; k < slice.Len(); k++ {
					assert.Equal(t, encoded.PhysicalIndex(arr.Data(), tt.i+k), encoded.PhysicalIndex(slice, k))
				}
				slice.Release()
			}
		})
	}
}

func TestRunsFrom(t *testing.T) {
	values := []string{"a", "a", "b", "a", "a", "a"}
	ends, heads := encoded.RunsFrom(len(values), func(i, j int) bool { return values[i] == values[j] })
	assert.Equal(t, []int64{2, 3, 6}, ends)
	assert.Equal(t, []int{0, 2, 3}, heads)

	ends, heads = encoded.RunsFrom(0, nil)
	assert.Empty(t, ends)
	assert.Empty(t, heads)
}
