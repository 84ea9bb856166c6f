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
	"bytes"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/float16"
)

// Equal reports whether the two provided arrays are equal: same type,
// same length, the same validity and equal values at every valid
// position. Encoded arrays compare their logical values.
func Equal(left, right arrow.Array) bool {
	if !arrow.TypeEqual(left.DataType(), right.DataType()) {
		return false
	}
	if left.Len() != right.Len() {
		return false
	}
	if left.NullN() != right.NullN() {
		return false
	}
	for i := 0; i < left.Len(); i++ {
		if !valueEqual(left.ValueAt(i), right.ValueAt(i)) {
			return false
		}
	}
	return true
}

// SliceEqual reports whether slices left[lbeg:lend] and right[rbeg:rend] are equal.
func SliceEqual(left arrow.Array, lbeg, lend int, right arrow.Array, rbeg, rend int) bool {
	l := NewSlice(left, lbeg, lend)
	defer l.Release()
	r := NewSlice(right, rbeg, rend)
	defer r.Release()

	return Equal(l, r)
}

func valueEqual(a, b arrow.AnyNullable) bool {
	if a.HasValue() != b.HasValue() {
		return false
	}
	if !a.HasValue() {
		return true
	}

	switch av := a.Value().(type) {
	case []byte:
		bv, ok := b.Value().([]byte)
		return ok && bytes.Equal(av, bv)
	case float16.Num:
		bv, ok := b.Value().(float16.Num)
		return ok && av.Equal(bv)
	case ListValue:
		bv, ok := b.Value().(ListValue)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for j := 0; j < av.Len(); j++ {
			if !valueEqual(av.ValueAt(j), bv.ValueAt(j)) {
				return false
			}
		}
		return true
	case StructValue:
		bv, ok := b.Value().(StructValue)
		if !ok || av.NumField() != bv.NumField() {
			return false
		}
		for j := 0; j < av.NumField(); j++ {
			if !valueEqual(av.Field(j), bv.Field(j)) {
				return false
			}
		}
		return true
	default:
		return a.Value() == b.Value()
	}
}
