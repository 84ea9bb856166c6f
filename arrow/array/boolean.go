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
	"github.com/quiverdata/quiver/arrow"
)

// A type which represents an immutable sequence of boolean values.
type Boolean struct {
	array
	layout BooleanLayout
}

// NewBooleanData returns a new Boolean array from data.
func NewBooleanData(data arrow.ArrayData) *Boolean {
	a := &Boolean{}
	a.refCount = 1
	a.setData(data.(*Data))
	return a
}

func (a *Boolean) setData(data *Data) {
	a.array.setData(data)
	a.layout.Bind(data)
}

func (a *Boolean) Value(i int) bool {
	if i < 0 || i >= a.data.length {
		panic("arrow/array: index out of range")
	}
	return a.layout.Value(i)
}

func (a *Boolean) ValueAt(i int) arrow.AnyNullable {
	return arrow.MakeNullable[any](a.Value(i), a.IsValid(i))
}

func (a *Boolean) String() string { return formatArray(a) }

func (a *Boolean) MarshalJSON() ([]byte, error) { return marshalArray(a) }

var (
	_ arrow.Array = (*Boolean)(nil)
)
