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
	"encoding/base64"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/encoded"
	"github.com/quiverdata/quiver/arrow/float16"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/quiverdata/quiver/internal/json"
)

// FromJSON creates an array of type dt from a JSON array read from r,
// such as:
//
//	[1, 2, null, 4]
//	[{"a": 1.5, "b": 2}, null]
//
// JSON null is a null element. Binary values are base64 strings; list
// values are JSON arrays; struct values are JSON objects keyed by field
// name, missing keys being null fields. Dictionary and run-end encoded
// types take the logical values and encode them.
func FromJSON(mem memory.Allocator, dt arrow.DataType, r io.Reader) (arrow.Array, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var values []interface{}
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("arrow/array: could not decode JSON array: %w", err)
	}

	data, err := dataFromJSON(mem, dt, values)
	if err != nil {
		return nil, err
	}
	defer data.Release()
	return MakeFromData(data), nil
}

func validityOf(values []interface{}) []bool {
	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = v != nil
	}
	return valid
}

func jsonTypeError(dt arrow.DataType, v interface{}) error {
	return fmt.Errorf("%w: arrow/array: cannot convert JSON %T to %s", arrow.ErrInvalid, v, dt)
}

func dataFromJSON(mem memory.Allocator, dt arrow.DataType, values []interface{}) (*Data, error) {
	switch dt := dt.(type) {
	case *arrow.NullType:
		for _, v := range values {
			if v != nil {
				return nil, jsonTypeError(dt, v)
			}
		}
		return MakeNullData(len(values)), nil
	case *arrow.BooleanType:
		out := make([]bool, len(values))
		for i, v := range values {
			switch v := v.(type) {
			case nil:
			case bool:
				out[i] = v
			default:
				return nil, jsonTypeError(dt, v)
			}
		}
		return MakeBooleanData(mem, out, validityOf(values))
	case *arrow.Int8Type:
		return intsFromJSON[int8](mem, dt, values)
	case *arrow.Int16Type:
		return intsFromJSON[int16](mem, dt, values)
	case *arrow.Int32Type:
		return intsFromJSON[int32](mem, dt, values)
	case *arrow.Int64Type:
		return intsFromJSON[int64](mem, dt, values)
	case *arrow.Uint8Type:
		return uintsFromJSON[uint8](mem, dt, values)
	case *arrow.Uint16Type:
		return uintsFromJSON[uint16](mem, dt, values)
	case *arrow.Uint32Type:
		return uintsFromJSON[uint32](mem, dt, values)
	case *arrow.Uint64Type:
		return uintsFromJSON[uint64](mem, dt, values)
	case *arrow.Float16Type:
		return fixedFromJSON(mem, dt, values, func(n json.Number) (float16.Num, error) {
			f, err := strconv.ParseFloat(n.String(), 32)
			return float16.New(float32(f)), err
		})
	case *arrow.Float32Type:
		return fixedFromJSON(mem, dt, values, func(n json.Number) (float32, error) {
			f, err := strconv.ParseFloat(n.String(), 32)
			return float32(f), err
		})
	case *arrow.Float64Type:
		return fixedFromJSON(mem, dt, values, func(n json.Number) (float64, error) {
			return n.Float64()
		})
	case arrow.BinaryDataType:
		out, err := bytesFromJSON(dt, values)
		if err != nil {
			return nil, err
		}
		return MakeBinaryData(mem, dt, out, validityOf(values))
	case *arrow.FixedSizeBinaryType:
		out, err := bytesFromJSON(dt, values)
		if err != nil {
			return nil, err
		}
		return MakeFixedSizeBinaryData(mem, dt.ByteWidth, out, validityOf(values))
	case arrow.ListLikeType:
		return listFromJSON(mem, dt, values)
	case *arrow.StructType:
		return structFromJSON(mem, dt, values)
	case *arrow.DictionaryType:
		valueType, ok := dt.ValueType.(arrow.BinaryDataType)
		if !ok {
			return nil, fmt.Errorf("%w: arrow/array: cannot dictionary encode %s", arrow.ErrNotImplemented, dt.ValueType)
		}
		out, err := bytesFromJSON(valueType, values)
		if err != nil {
			return nil, err
		}
		return MakeDictionaryData(mem, dt, out, validityOf(values))
	case *arrow.RunEndEncodedType:
		return runEndsFromJSON(mem, dt, values)
	}
	return nil, fmt.Errorf("%w: arrow/array: JSON conversion to %s", arrow.ErrNotImplemented, dt)
}

func fixedFromJSON[T arrow.FixedWidthType](mem memory.Allocator, dt arrow.DataType, values []interface{}, parse func(json.Number) (T, error)) (*Data, error) {
	out := make([]T, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case nil:
		case json.Number:
			x, err := parse(v)
			if err != nil {
				return nil, fmt.Errorf("%w: arrow/array: %s element %d: %s", arrow.ErrInvalid, dt, i, err)
			}
			out[i] = x
		default:
			return nil, jsonTypeError(dt, v)
		}
	}
	return MakeFixedSizeData(mem, out, validityOf(values))
}

func intsFromJSON[T arrow.IntType](mem memory.Allocator, dt arrow.FixedWidthDataType, values []interface{}) (*Data, error) {
	return fixedFromJSON(mem, dt, values, func(n json.Number) (T, error) {
		v, err := strconv.ParseInt(n.String(), 10, dt.BitWidth())
		return T(v), err
	})
}

func uintsFromJSON[T arrow.UintType](mem memory.Allocator, dt arrow.FixedWidthDataType, values []interface{}) (*Data, error) {
	return fixedFromJSON(mem, dt, values, func(n json.Number) (T, error) {
		v, err := strconv.ParseUint(n.String(), 10, dt.BitWidth())
		return T(v), err
	})
}

func bytesFromJSON(dt arrow.DataType, values []interface{}) ([][]byte, error) {
	isUtf8 := false
	if bt, ok := dt.(arrow.BinaryDataType); ok {
		isUtf8 = bt.IsUtf8()
	}

	out := make([][]byte, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case nil:
		case string:
			if isUtf8 {
				out[i] = []byte(v)
				continue
			}
			b, err := base64.StdEncoding.DecodeString(v)
			if err != nil {
				return nil, fmt.Errorf("%w: arrow/array: %s element %d is not base64: %s", arrow.ErrInvalid, dt, i, err)
			}
			out[i] = b
		default:
			return nil, jsonTypeError(dt, v)
		}
	}
	return out, nil
}

func listFromJSON(mem memory.Allocator, dt arrow.ListLikeType, values []interface{}) (*Data, error) {
	var (
		flat    []interface{}
		lengths = make([]int, len(values))
	)
	for i, v := range values {
		switch v := v.(type) {
		case nil:
		case []interface{}:
			lengths[i] = len(v)
			flat = append(flat, v...)
		default:
			return nil, jsonTypeError(dt, v)
		}
	}

	child, err := dataFromJSON(mem, dt.Elem(), flat)
	if err != nil {
		return nil, err
	}
	defer child.Release()
	return MakeListDataFromLengths(mem, dt, lengths, validityOf(values), child)
}

func structFromJSON(mem memory.Allocator, dt *arrow.StructType, values []interface{}) (*Data, error) {
	columns := make([][]interface{}, dt.NumFields())
	for j := range columns {
		columns[j] = make([]interface{}, len(values))
	}
	for i, v := range values {
		switch v := v.(type) {
		case nil:
		case map[string]interface{}:
			for j := range columns {
				columns[j][i] = v[dt.Field(j).Name]
			}
		default:
			return nil, jsonTypeError(dt, v)
		}
	}

	children := make([]arrow.ArrayData, len(columns))
	for j, col := range columns {
		child, err := dataFromJSON(mem, dt.Field(j).Type, col)
		if err != nil {
			return nil, err
		}
		defer child.Release()
		children[j] = child
	}
	return MakeStructData(mem, dt, len(values), validityOf(values), children)
}

func runEndsFromJSON(mem memory.Allocator, dt *arrow.RunEndEncodedType, values []interface{}) (*Data, error) {
	ends, heads := encoded.RunsFrom(len(values), func(i, j int) bool {
		return reflect.DeepEqual(values[i], values[j])
	})

	runValues := make([]interface{}, len(heads))
	for k, h := range heads {
		runValues[k] = values[h]
	}
	child, err := dataFromJSON(mem, dt.Encoded(), runValues)
	if err != nil {
		return nil, err
	}
	defer child.Release()

	data, err := MakeRunEndEncodedData(mem, ends, child, len(values))
	if err != nil {
		return nil, err
	}
	if !arrow.TypeEqual(data.dtype.(*arrow.RunEndEncodedType).RunEnds(), dt.RunEnds()) {
		defer data.Release()
		return castRunEnds(mem, data, dt)
	}
	return data, nil
}

// castRunEnds rewrites the run ends of data in the run ends type of dt.
func castRunEnds(mem memory.Allocator, data *Data, dt *arrow.RunEndEncodedType) (*Data, error) {
	runEnds := encoded.RunEnds(data)
	if n := len(runEnds); n > 0 && runEnds[n-1] > maxRunEnd(dt.RunEnds().ID()) {
		return nil, fmt.Errorf("%w: arrow/array: run end %d overflows %s", arrow.ErrInvalid, runEnds[n-1], dt.RunEnds())
	}

	var (
		ends *Data
		err  error
	)
	switch dt.RunEnds().ID() {
	case arrow.INT16:
		ends, err = MakeFixedSizeData(mem, narrowRunEnds[int16](runEnds), nil)
	case arrow.INT32:
		ends, err = MakeFixedSizeData(mem, narrowRunEnds[int32](runEnds), nil)
	case arrow.INT64:
		ends, err = MakeFixedSizeData(mem, runEnds, nil)
	default:
		return nil, fmt.Errorf("%w: arrow/array: invalid run ends type %s", arrow.ErrType, dt.RunEnds())
	}
	if err != nil {
		return nil, err
	}
	defer ends.Release()
	return NewData(dt, data.length, nil, nil, []arrow.ArrayData{ends, data.childData[1]}, 0, 0), nil
}

func maxRunEnd(id arrow.Type) int64 {
	switch id {
	case arrow.INT16:
		return 1<<15 - 1
	case arrow.INT32:
		return 1<<31 - 1
	}
	return 1<<63 - 1
}
