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

// Package encoded provides the lookups shared by run-end encoded arrays.
package encoded

import (
	"math"
	"sort"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/internal/debug"
)

// FindPhysicalIndex performs a binary search on the run-ends to return
// the appropriate physical index into the values array to find the value
// for the logical index i: the smallest k such that runEnds[k] > i. An
// index at or past the final run end returns len(runEnds).
func FindPhysicalIndex[T arrow.RunEndType](runEnds []T, i int) int {
	return sort.Search(len(runEnds), func(k int) bool { return int64(runEnds[k]) > int64(i) })
}

// RunEnds returns the run ends of a run-end encoded record as int64
// values, ignoring the logical offset of the record.
func RunEnds(arr arrow.ArrayData) []int64 {
	runEnds := arr.Children()[0]
	out := make([]int64, runEnds.Len())
	switch runEnds.DataType().ID() {
	case arrow.INT16:
		for i, v := range runEndValues[int16](runEnds) {
			out[i] = int64(v)
		}
	case arrow.INT32:
		for i, v := range runEndValues[int32](runEnds) {
			out[i] = int64(v)
		}
	case arrow.INT64:
		copy(out, runEndValues[int64](runEnds))
	default:
		panic("arrow/encoded: invalid run ends type " + runEnds.DataType().String())
	}
	return out
}

func runEndValues[T arrow.RunEndType](runEnds arrow.ArrayData) []T {
	bufs := runEnds.Buffers()
	if len(bufs) == 0 || bufs[0] == nil {
		return []T{}
	}
	vals := arrow.GetData[T](bufs[0].Bytes())
	return vals[runEnds.Offset() : runEnds.Offset()+runEnds.Len()]
}

// FindPhysicalOffset returns the physical index of the first logical
// element of a run-end encoded record, honoring its logical offset.
func FindPhysicalOffset(arr arrow.ArrayData) int {
	return PhysicalIndex(arr, 0)
}

// PhysicalIndex returns the index into the values child holding logical
// element i of the run-end encoded record arr.
func PhysicalIndex(arr arrow.ArrayData, i int) int {
	logical := arr.Offset() + i
	runEnds := arr.Children()[0]
	switch runEnds.DataType().ID() {
	case arrow.INT16:
		debug.Assert(logical <= math.MaxInt16, "arrow/encoded: logical index overflows int16 run ends")
		return FindPhysicalIndex(runEndValues[int16](runEnds), logical)
	case arrow.INT32:
		debug.Assert(logical <= math.MaxInt32, "arrow/encoded: logical index overflows int32 run ends")
		return FindPhysicalIndex(runEndValues[int32](runEnds), logical)
	case arrow.INT64:
		return FindPhysicalIndex(runEndValues[int64](runEnds), logical)
	default:
		panic("arrow/encoded: invalid run ends type " + runEnds.DataType().String())
	}
}

// GetPhysicalLength returns the number of runs overlapping the logical
// window [offset, offset+len) of arr.
func GetPhysicalLength(arr arrow.ArrayData) int {
	if arr.Len() == 0 {
		return 0
	}
	start := FindPhysicalOffset(arr)
	end := PhysicalIndex(arr, arr.Len()-1)
	return end - start + 1
}

// RunsFrom computes run ends for a sequence of n values, where same(i, j)
// reports whether positions i and j belong to the same run.
func RunsFrom(n int, same func(i, j int) bool) (ends []int64, heads []int) {
	for i := 0; i < n; i++ {
		if i == 0 || !same(i-1, i) {
			heads = append(heads, i)
			ends = append(ends, int64(i+1))
			continue
		}
		ends[len(ends)-1] = int64(i + 1)
	}
	return ends, heads
}
