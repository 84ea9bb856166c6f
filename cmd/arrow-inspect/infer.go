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
	"fmt"
	"sort"
	"strings"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/internal/json"
)

type inferOptions struct {
	large bool
	dict  bool
}

type kind int

const (
	kindNull kind = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindList
	kindStruct
)

func kindOf(v interface{}) (kind, error) {
	switch v := v.(type) {
	case nil:
		return kindNull, nil
	case bool:
		return kindBool, nil
	case json.Number:
		if strings.ContainsAny(v.String(), ".eE") {
			return kindFloat, nil
		}
		return kindInt, nil
	case string:
		return kindString, nil
	case []interface{}:
		return kindList, nil
	case map[string]interface{}:
		return kindStruct, nil
	}
	return kindNull, fmt.Errorf("%w: unexpected JSON value %T", arrow.ErrType, v)
}

// inferType returns the narrowest type holding every one of values. Ints
// widen to float64 when mixed with other numbers; nulls fit any type and a
// column of nulls only is of type null.
func inferType(values []interface{}, opts inferOptions) (arrow.DataType, error) {
	k := kindNull
	for i, v := range values {
		vk, err := kindOf(v)
		if err != nil {
			return nil, err
		}
		switch {
		case vk == kindNull || vk == k:
		case k == kindNull:
			k = vk
		case (k == kindInt && vk == kindFloat) || (k == kindFloat && vk == kindInt):
			k = kindFloat
		default:
			return nil, fmt.Errorf("%w: element %d does not match the preceding elements", arrow.ErrType, i)
		}
	}

	switch k {
	case kindBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case kindInt:
		return arrow.PrimitiveTypes.Int64, nil
	case kindFloat:
		return arrow.PrimitiveTypes.Float64, nil
	case kindString:
		var dt arrow.DataType = arrow.BinaryTypes.String
		if opts.large {
			dt = arrow.BinaryTypes.LargeString
		}
		if opts.dict {
			dt = &arrow.DictionaryType{ValueType: dt}
		}
		return dt, nil
	case kindList:
		return inferList(values, opts)
	case kindStruct:
		return inferStruct(values, opts)
	}
	return arrow.Null, nil
}

func inferList(values []interface{}, opts inferOptions) (arrow.DataType, error) {
	var elems []interface{}
	for _, v := range values {
		if l, ok := v.([]interface{}); ok {
			elems = append(elems, l...)
		}
	}
	elem, err := inferType(elems, opts)
	if err != nil {
		return nil, fmt.Errorf("list element: %w", err)
	}
	if opts.large {
		return arrow.LargeListOf(elem), nil
	}
	return arrow.ListOf(elem), nil
}

// inferStruct builds a struct with the union of the keys of values, sorted
// by name. Missing keys read as null.
func inferStruct(values []interface{}, opts inferOptions) (arrow.DataType, error) {
	seen := make(map[string]struct{})
	for _, v := range values {
		if obj, ok := v.(map[string]interface{}); ok {
			for name := range obj {
				seen[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		col := make([]interface{}, 0, len(values))
		for _, v := range values {
			if obj, ok := v.(map[string]interface{}); ok {
				col = append(col, obj[name])
			}
		}
		dt, err := inferType(col, opts)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: true}
	}
	return arrow.StructOf(fields...), nil
}
