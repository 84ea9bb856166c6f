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

// Dictionary represents the type for dictionary-encoded data with a data
// dependent dictionary.
//
// A dictionary array contains an array of non-negative integers (the
// "dictionary indices") along with a data type containing a "dictionary"
// corresponding to the distinct values represented in the data.
//
// For example, the array:
//
//	["foo", "bar", "foo", "bar", "foo", "bar"]
//
// with dictionary ["bar", "foo"], would have the representation of:
//
//	indices: [1, 0, 1, 0, 1, 0]
//	dictionary: ["bar", "foo"]
//
// The indices in principle may be any integer type.
type Dictionary struct {
	array

	indices arrow.Array
	dict    arrow.Array
	reader  indexReader
}

// NewDictionaryData creates a strongly typed Dictionary array from
// an ArrayData object with a datatype of arrow.Dictionary and a dictionary
func NewDictionaryData(data arrow.ArrayData) *Dictionary {
	a := &Dictionary{}
	a.refCount = 1
	a.setData(data.(*Data))
	return a
}

func (d *Dictionary) setData(data *Data) {
	d.array.setData(data)

	dictType := data.dtype.(*arrow.DictionaryType)
	if data.dictionary == nil {
		panic("arrow/array: no dictionary set in Data for Dictionary array")
	}

	d.dict = MakeFromData(data.dictionary)

	// indices share the validity bitmap and offset of the dictionary record
	indexData := NewData(dictType.IndexType, data.length, data.bitmap, data.buffers, nil, int(data.nulls), data.offset)
	defer indexData.Release()
	d.indices = MakeFromData(indexData)
	d.reader = newIndexReader(data)
}

// Dictionary returns the values array that is referenced by the indices.
func (d *Dictionary) Dictionary() arrow.Array { return d.dict }

// Indices returns the underlying array of indices.
func (d *Dictionary) Indices() arrow.Array { return d.indices }

// GetValueIndex returns the dictionary index for the value at index i of the array.
// The actual value can be retrieved by using d.Dictionary().(valuetype).Value(d.GetValueIndex(i))
func (d *Dictionary) GetValueIndex(i int) int { return d.reader.At(i) }

func (d *Dictionary) ValueAt(i int) arrow.AnyNullable {
	if d.IsNull(i) {
		return arrow.AnyNullable{}
	}
	return d.dict.ValueAt(d.GetValueIndex(i))
}

func (d *Dictionary) String() string { return formatArray(d) }

func (d *Dictionary) MarshalJSON() ([]byte, error) { return marshalArray(d) }

func (d *Dictionary) Retain() {
	d.array.Retain()
	d.indices.Retain()
	d.dict.Retain()
}

func (d *Dictionary) Release() {
	d.array.Release()
	d.indices.Release()
	d.dict.Release()
}

var (
	_ arrow.Array = (*Dictionary)(nil)
)
