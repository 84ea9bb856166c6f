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
	"fmt"
	"strings"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/encoded"
)

// RunEndEncoded represents an array containing two children:
// an array of int16, int32 or int64 values defining the ends of each
// run of values and an array of values
type RunEndEncoded struct {
	array

	ends   arrow.Array
	values arrow.Array
}

// NewRunEndEncodedData returns a new RunEndEncoded array from data.
func NewRunEndEncodedData(data arrow.ArrayData) *RunEndEncoded {
	r := &RunEndEncoded{}
	r.refCount = 1
	r.setData(data.(*Data))
	return r
}

func (r *RunEndEncoded) setData(data *Data) {
	if len(data.childData) != 2 {
		panic(fmt.Errorf("%w: arrow/array: RLE array must have exactly 2 children", arrow.ErrInvalid))
	}
	if !arrow.IsRunEndType(data.childData[0].DataType().ID()) {
		panic(fmt.Errorf("%w: arrow/array: run ends array must be int16, int32, or int64", arrow.ErrInvalid))
	}
	if data.childData[0].NullN() > 0 {
		panic(fmt.Errorf("%w: arrow/array: run ends array cannot contain nulls", arrow.ErrInvalid))
	}

	r.array.setData(data)

	r.ends = MakeFromData(data.childData[0])
	r.values = MakeFromData(data.childData[1])
}

// Values returns the array of run values, one per run.
func (r *RunEndEncoded) Values() arrow.Array { return r.values }

// RunEndsArr returns the array of run ends.
func (r *RunEndEncoded) RunEndsArr() arrow.Array { return r.ends }

// GetPhysicalOffset returns the physical index of the first logical element.
func (r *RunEndEncoded) GetPhysicalOffset() int {
	return encoded.FindPhysicalOffset(r.data)
}

// GetPhysicalLength returns the number of physical values spanned by the
// logical window of the array.
func (r *RunEndEncoded) GetPhysicalLength() int {
	return encoded.GetPhysicalLength(r.data)
}

// GetPhysicalIndex returns the index into Values() of logical element i.
func (r *RunEndEncoded) GetPhysicalIndex(i int) int {
	return encoded.PhysicalIndex(r.data, i)
}

func (r *RunEndEncoded) IsNull(i int) bool  { return r.values.IsNull(r.GetPhysicalIndex(i)) }
func (r *RunEndEncoded) IsValid(i int) bool { return r.values.IsValid(r.GetPhysicalIndex(i)) }

func (r *RunEndEncoded) ValueAt(i int) arrow.AnyNullable {
	return r.values.ValueAt(r.GetPhysicalIndex(i))
}

func (r *RunEndEncoded) NumChildren() int { return 2 }

func (r *RunEndEncoded) Child(i int) arrow.Array {
	switch i {
	case 0:
		return r.ends
	case 1:
		return r.values
	}
	return r.array.Child(i)
}

// String renders the array as its runs, {run_ends, values}.
func (r *RunEndEncoded) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	ends := encoded.RunEnds(r.data)
	for i := 0; i < r.values.Len(); i++ {
		if i != 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "{%d -> %s}", ends[i], formatValue(r.values.ValueAt(i)))
	}
	buf.WriteByte(']')
	return buf.String()
}

// MarshalJSON encodes the logical, decoded values.
func (r *RunEndEncoded) MarshalJSON() ([]byte, error) { return marshalArray(r) }

func (r *RunEndEncoded) Retain() {
	r.array.Retain()
	r.ends.Retain()
	r.values.Retain()
}

func (r *RunEndEncoded) Release() {
	r.array.Release()
	r.ends.Release()
	r.values.Release()
}

var (
	_ arrow.Array = (*RunEndEncoded)(nil)
)
