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

// Package util holds helpers that inspect arrays without depending on
// their concrete type.
package util

import (
	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/memory"
)

func totalArrayDataSize(data arrow.ArrayData, seenBuffers map[*memory.Buffer]struct{}) int64 {
	var sum int64
	count := func(buf *memory.Buffer) {
		if buf == nil {
			return
		}
		if _, ok := seenBuffers[buf]; !ok {
			sum += int64(buf.Len())
			seenBuffers[buf] = struct{}{}
		}
	}

	count(data.BitmapBuffer())
	for _, buf := range data.Buffers() {
		count(buf)
	}
	for _, child := range data.Children() {
		sum += totalArrayDataSize(child, seenBuffers)
	}
	if dict := data.Dictionary(); dict != nil {
		sum += totalArrayDataSize(dict, seenBuffers)
	}
	return sum
}

// TotalArraySize returns the number of bytes held by the buffers backing
// arr, its children and its dictionary. Buffers are counted in full even
// when arr is a slice, and a buffer reachable twice is counted once.
func TotalArraySize(arr arrow.Array) int64 {
	return TotalArrayDataSize(arr.Data())
}

// TotalArrayDataSize is TotalArraySize for a bare record.
func TotalArrayDataSize(data arrow.ArrayData) int64 {
	return totalArrayDataSize(data, make(map[*memory.Buffer]struct{}))
}
