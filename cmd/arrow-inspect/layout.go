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

package main

import (
	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/util"
	"github.com/quiverdata/quiver/internal/json"
)

type buffer struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type layout struct {
	Type       string          `json:"type"`
	Length     int             `json:"length"`
	Offset     int             `json:"offset"`
	NullCount  int             `json:"null_count"`
	Buffers    []buffer        `json:"buffers"`
	Children   []layout        `json:"children,omitempty"`
	Dictionary *layout         `json:"dictionary,omitempty"`
	Values     json.RawMessage `json:"values,omitempty"`
	TotalBytes int64           `json:"total_bytes,omitempty"`
}

func bufferNames(dt arrow.DataType) []string {
	switch dt.(type) {
	case *arrow.NullType, *arrow.RunEndEncodedType, *arrow.StructType:
		return nil
	case arrow.BinaryDataType:
		return []string{"offsets", "data"}
	case arrow.ListLikeType:
		return []string{"offsets"}
	case *arrow.DictionaryType:
		return []string{"indices"}
	case arrow.FixedWidthDataType:
		return []string{"data"}
	}
	return nil
}

func describeData(data arrow.ArrayData) layout {
	out := layout{
		Type:      data.DataType().String(),
		Length:    data.Len(),
		Offset:    data.Offset(),
		NullCount: data.NullN(),
		Buffers:   []buffer{},
	}

	if arrow.HasValidityBitmap(data.DataType().ID()) {
		v := buffer{Name: "validity"}
		if b := data.BitmapBuffer(); b != nil {
			v.Size = b.Len()
		}
		out.Buffers = append(out.Buffers, v)
	}
	names := bufferNames(data.DataType())
	for i, b := range data.Buffers() {
		buf := buffer{Name: "data"}
		if i < len(names) {
			buf.Name = names[i]
		}
		if b != nil {
			buf.Size = b.Len()
		}
		out.Buffers = append(out.Buffers, buf)
	}

	for _, c := range data.Children() {
		out.Children = append(out.Children, describeData(c))
	}
	if dict := data.Dictionary(); dict != nil {
		d := describeData(dict)
		out.Dictionary = &d
	}
	return out
}

func describe(arr arrow.Array, withValues bool) (layout, error) {
	out := describeData(arr.Data())
	out.TotalBytes = util.TotalArraySize(arr)
	if withValues {
		raw, err := arr.MarshalJSON()
		if err != nil {
			return out, err
		}
		out.Values = raw
	}
	return out, nil
}
