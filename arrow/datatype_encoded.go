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

package arrow

import (
	"fmt"
	"math"
)

// RunEndEncodedType is the datatype to represent a run-end encoded
// array of data. ValueNullable defaults to true, but can be set false
// if this should represent a type with a non-nullable value field.
type RunEndEncodedType struct {
	runEnds       DataType
	values        DataType
	ValueNullable bool
}

// RunEndEncodedOf returns the run-end encoded type whose run ends use
// runEnds (int16, int32 or int64) and whose values use values.
func RunEndEncodedOf(runEnds, values DataType) *RunEndEncodedType {
	return &RunEndEncodedType{runEnds: runEnds, values: values, ValueNullable: true}
}

// typeString names dt, or "auto" for a type chosen when data is built.
func typeString(dt DataType) string {
	if dt == nil {
		return "auto"
	}
	return dt.String()
}

// RunEndsTypeFor returns the narrowest run ends type able to hold n.
func RunEndsTypeFor(n int64) FixedWidthDataType {
	switch {
	case n <= math.MaxInt16:
		return PrimitiveTypes.Int16
	case n <= math.MaxInt32:
		return PrimitiveTypes.Int32
	default:
		return PrimitiveTypes.Int64
	}
}

func (*RunEndEncodedType) ID() Type     { return RUN_END_ENCODED }
func (*RunEndEncodedType) Name() string { return "run_end_encoded" }
func (*RunEndEncodedType) Layout() DataTypeLayout {
	return DataTypeLayout{}
}

func (t *RunEndEncodedType) String() string {
	return fmt.Sprintf("%s<run_ends: %s, values: %s>", t.Name(), typeString(t.runEnds), typeString(t.values))
}

func (t *RunEndEncodedType) RunEnds() DataType { return t.runEnds }
func (t *RunEndEncodedType) Encoded() DataType { return t.values }

func (t *RunEndEncodedType) Fields() []Field {
	return []Field{
		{Name: "run_ends", Type: t.runEnds},
		{Name: "values", Type: t.values, Nullable: t.ValueNullable},
	}
}

func (t *RunEndEncodedType) NumFields() int { return 2 }

// ValidRunEndsType reports whether the run ends type is int16, int32 or int64.
func (*RunEndEncodedType) ValidRunEndsType(dt DataType) bool {
	return IsRunEndType(dt.ID())
}

var (
	_ NestedType  = (*RunEndEncodedType)(nil)
	_ EncodedType = (*RunEndEncodedType)(nil)
)
