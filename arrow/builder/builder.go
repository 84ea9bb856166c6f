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

// Package builder builds arrays from slices of Go values.
//
// The layout of the result follows the static Go type of the values:
//
//	bool                      BOOL
//	int8 ... uint64, floats   fixed size (int and uint as 64 bits)
//	float16.Num               FLOAT16
//	string                    STRING (LARGE_STRING)
//	[]byte                    BINARY (LARGE_BINARY)
//	[]U, [N]U                 LIST (LARGE_LIST) of U
//	[N]E, E fixed width       FIXED_SIZE_BINARY of N*sizeof(E) bytes
//	struct                    STRUCT, one field per exported field
//	*U, arrow.Nullable[U]     U with a validity bitmap
//
// Any type with the methods HasValue() bool and Get() U is treated like
// arrow.Nullable[U]. Struct fields honor the arrow tag:
//
//	Name  string `arrow:"name"`       // field name
//	Label string `arrow:"label,dict"` // dictionary encoded
//	Day   int32  `arrow:"day,ree"`    // run-end encoded
//	Skip  int    `arrow:"-"`          // ignored
//
// Maps, channels, functions and interfaces are not supported.
package builder

import (
	"reflect"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/array"
)

// Build returns an array holding values. The caller must Release it.
func Build[T any](values []T, opts ...Option) (arrow.Array, error) {
	cfg := newConfig(opts)
	p, err := planOf(reflect.TypeOf((*T)(nil)).Elem(), cfg)
	if err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(values)
	col := make([]reflect.Value, len(values))
	for i := range col {
		col[i] = rv.Index(i)
	}

	data, err := p.build(cfg.mem, col, nil)
	if err != nil {
		return nil, err
	}
	defer data.Release()
	return array.MakeFromData(data), nil
}

// BuildTyped is Build returning a typed container reading elements as V,
// such as BuildTyped[*float64, float64].
func BuildTyped[T, V any](values []T, opts ...Option) (*array.TypedArray[V], error) {
	arr, err := Build(values, opts...)
	if err != nil {
		return nil, err
	}
	defer arr.Release()
	return array.AsTyped[V](arr.Data())
}

// DataTypeOf returns the type Build produces for T. Dictionary index
// types and run end types depend on the data and are reported as nil.
func DataTypeOf[T any](opts ...Option) (arrow.DataType, error) {
	p, err := planOf(reflect.TypeOf((*T)(nil)).Elem(), newConfig(opts))
	if err != nil {
		return nil, err
	}
	return p.dataType(), nil
}
