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

package builder

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unsafe"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/array"
	"github.com/quiverdata/quiver/arrow/encoded"
	"github.com/quiverdata/quiver/arrow/float16"
	"github.com/quiverdata/quiver/arrow/internal/debug"
	"github.com/quiverdata/quiver/arrow/memory"
)

// node builds the column of one Go type. vals holds one value per
// element; elements that valid marks as null hold the zero value and are
// never read for their payload. A nil valid means every element is valid.
type node interface {
	dataType() arrow.DataType
	nullable() bool
	build(mem memory.Allocator, vals []reflect.Value, valid []bool) (*array.Data, error)
}

type planKey struct {
	typ   reflect.Type
	large bool
	dict  bool
	ree   bool
}

var plans sync.Map // planKey -> node

func planOf(t reflect.Type, cfg config) (node, error) {
	key := planKey{typ: t, large: cfg.large, dict: cfg.dict, ree: cfg.ree}
	if p, ok := plans.Load(key); ok {
		return p.(node), nil
	}

	p, err := newPlanner().plan(t, cfg)
	if err != nil {
		return nil, err
	}
	debug.Log(fmt.Sprintf("arrow/builder: %s planned as %s", t, p.dataType()))
	actual, _ := plans.LoadOrStore(key, p)
	return actual.(node), nil
}

type planner struct {
	// types whose plan is being computed; meeting one again means the
	// type contains itself.
	active map[reflect.Type]bool
}

func newPlanner() *planner { return &planner{active: make(map[reflect.Type]bool)} }

func unsupported(t reflect.Type, why string) error {
	return fmt.Errorf("%w: arrow/builder: cannot build %s: %s", arrow.ErrNotImplemented, t, why)
}

func (p *planner) plan(t reflect.Type, cfg config) (node, error) {
	if cfg.ree {
		inner := cfg
		inner.ree = false
		n, err := p.plan(t, inner)
		if err != nil {
			return nil, err
		}
		return &reeNode{values: n}, nil
	}

	if p.active[t] {
		return nil, unsupported(t, "recursive type")
	}
	p.active[t] = true
	defer delete(p.active, t)

	if t.Kind() == reflect.Pointer {
		elem, err := p.plan(t.Elem(), cfg)
		if err != nil {
			return nil, err
		}
		return &nullableNode{elem: elem, payload: t.Elem(),
			present: func(v reflect.Value) bool { return !v.IsNil() },
			get:     func(v reflect.Value) reflect.Value { return v.Elem() },
		}, nil
	}

	if hasValue, get, ok := nullableMethods(t); ok {
		elem, err := p.plan(get.Type.Out(0), cfg)
		if err != nil {
			return nil, err
		}
		return &nullableNode{elem: elem, payload: get.Type.Out(0), present: func(v reflect.Value) bool {
			return hasValue.Func.Call([]reflect.Value{v})[0].Bool()
		}, get: func(v reflect.Value) reflect.Value {
			return get.Func.Call([]reflect.Value{v})[0]
		}}, nil
	}

	if dt, ok := arrow.FixedWidthTypeForKind(t); ok {
		return newPrimitiveNode(dt), nil
	}

	switch t.Kind() {
	case reflect.String:
		return newBinaryNode(true, cfg), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return newBinaryNode(false, cfg), nil
		}
		return p.planList(t, cfg)
	case reflect.Array:
		if _, ok := arrow.FixedWidthTypeForKind(t.Elem()); ok && t.Elem().Kind() != reflect.Bool {
			if t.Len() == 0 {
				return nil, unsupported(t, "zero length tuple")
			}
			return &tupleNode{typ: t, width: int(t.Size())}, nil
		}
		return p.planList(t, cfg)
	case reflect.Struct:
		return p.planStruct(t, cfg)
	}
	return nil, unsupported(t, "no layout for kind "+t.Kind().String())
}

// nullableMethods reports whether t has the methods HasValue() bool and
// Get() U, as arrow.Nullable[U] does.
func nullableMethods(t reflect.Type) (hasValue, get reflect.Method, ok bool) {
	hasValue, ok = t.MethodByName("HasValue")
	if !ok || hasValue.Type.NumIn() != 1 || hasValue.Type.NumOut() != 1 || hasValue.Type.Out(0).Kind() != reflect.Bool {
		return hasValue, get, false
	}
	get, ok = t.MethodByName("Get")
	if !ok || get.Type.NumIn() != 1 || get.Type.NumOut() != 1 {
		return hasValue, get, false
	}
	return hasValue, get, true
}

func (p *planner) planList(t reflect.Type, cfg config) (node, error) {
	elem, err := p.plan(t.Elem(), cfg)
	if err != nil {
		return nil, err
	}
	return &listNode{elem: elem, large: cfg.large}, nil
}

func (p *planner) planStruct(t reflect.Type, cfg config) (node, error) {
	sn := &structNode{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts := parseTag(f)
		if name == "-" {
			continue
		}

		fcfg := cfg
		fcfg.ree = opts.ree
		if opts.dict {
			fcfg.dict = true
		}
		n, err := p.plan(f.Type, fcfg)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		sn.fields = append(sn.fields, structField{name: name, index: i, node: n})
	}
	return sn, nil
}

type tagOptions struct {
	dict bool
	ree  bool
}

// parseTag reads `arrow:"name,dict,ree"`. An empty name keeps the Go
// field name.
func parseTag(f reflect.StructField) (string, tagOptions) {
	var opts tagOptions
	tag, ok := f.Tag.Lookup("arrow")
	if !ok {
		return f.Name, opts
	}
	name, rest, _ := strings.Cut(tag, ",")
	for rest != "" {
		var opt string
		opt, rest, _ = strings.Cut(rest, ",")
		switch strings.TrimSpace(opt) {
		case "dict":
			opts.dict = true
		case "ree":
			opts.ree = true
		}
	}
	if name == "" {
		name = f.Name
	}
	return name, opts
}

type nullableNode struct {
	elem    node
	payload reflect.Type
	present func(reflect.Value) bool
	get     func(reflect.Value) reflect.Value
}

func (n *nullableNode) dataType() arrow.DataType { return n.elem.dataType() }
func (n *nullableNode) nullable() bool           { return true }

func (n *nullableNode) build(mem memory.Allocator, vals []reflect.Value, valid []bool) (*array.Data, error) {
	inner := make([]reflect.Value, len(vals))
	innerValid := make([]bool, len(vals))
	zero := reflect.Zero(n.payload)
	for i, v := range vals {
		if (valid == nil || valid[i]) && n.present(v) {
			inner[i], innerValid[i] = n.get(v), true
			continue
		}
		inner[i] = zero
	}
	return n.elem.build(mem, inner, innerValid)
}

type primitiveNode struct {
	dt   arrow.FixedWidthDataType
	make func(memory.Allocator, []reflect.Value, []bool) (*array.Data, error)
}

func (n *primitiveNode) dataType() arrow.DataType { return n.dt }
func (n *primitiveNode) nullable() bool           { return false }

func (n *primitiveNode) build(mem memory.Allocator, vals []reflect.Value, valid []bool) (*array.Data, error) {
	return n.make(mem, vals, valid)
}

func fixedColumn[T arrow.FixedWidthType](conv func(reflect.Value) T) func(memory.Allocator, []reflect.Value, []bool) (*array.Data, error) {
	return func(mem memory.Allocator, vals []reflect.Value, valid []bool) (*array.Data, error) {
		out := make([]T, len(vals))
		for i, v := range vals {
			out[i] = conv(v)
		}
		return array.MakeFixedSizeData(mem, out, valid)
	}
}

var float16Type = reflect.TypeOf(float16.Num{})

func newPrimitiveNode(dt arrow.FixedWidthDataType) *primitiveNode {
	n := &primitiveNode{dt: dt}
	switch dt.ID() {
	case arrow.BOOL:
		n.make = func(mem memory.Allocator, vals []reflect.Value, valid []bool) (*array.Data, error) {
			out := make([]bool, len(vals))
			for i, v := range vals {
				out[i] = v.Bool()
			}
			return array.MakeBooleanData(mem, out, valid)
		}
	case arrow.INT8:
		n.make = fixedColumn(func(v reflect.Value) int8 { return int8(v.Int()) })
	case arrow.INT16:
		n.make = fixedColumn(func(v reflect.Value) int16 { return int16(v.Int()) })
	case arrow.INT32:
		n.make = fixedColumn(func(v reflect.Value) int32 { return int32(v.Int()) })
	case arrow.INT64:
		n.make = fixedColumn(func(v reflect.Value) int64 { return v.Int() })
	case arrow.UINT8:
		n.make = fixedColumn(func(v reflect.Value) uint8 { return uint8(v.Uint()) })
	case arrow.UINT16:
		n.make = fixedColumn(func(v reflect.Value) uint16 { return uint16(v.Uint()) })
	case arrow.UINT32:
		n.make = fixedColumn(func(v reflect.Value) uint32 { return uint32(v.Uint()) })
	case arrow.UINT64:
		n.make = fixedColumn(func(v reflect.Value) uint64 { return v.Uint() })
	case arrow.FLOAT16:
		n.make = fixedColumn(func(v reflect.Value) float16.Num { return v.Convert(float16Type).Interface().(float16.Num) })
	case arrow.FLOAT32:
		n.make = fixedColumn(func(v reflect.Value) float32 { return float32(v.Float()) })
	case arrow.FLOAT64:
		n.make = fixedColumn(func(v reflect.Value) float64 { return v.Float() })
	default:
		panic("arrow/builder: unexpected fixed width type " + dt.String())
	}
	return n
}

type binaryNode struct {
	utf8 bool
	dt   arrow.BinaryDataType
	dict bool
}

func newBinaryNode(utf8 bool, cfg config) *binaryNode {
	n := &binaryNode{utf8: utf8, dict: cfg.dict}
	switch {
	case utf8 && cfg.large:
		n.dt = arrow.BinaryTypes.LargeString
	case utf8:
		n.dt = arrow.BinaryTypes.String
	case cfg.large:
		n.dt = arrow.BinaryTypes.LargeBinary
	default:
		n.dt = arrow.BinaryTypes.Binary
	}
	return n
}

func (n *binaryNode) dataType() arrow.DataType {
	if n.dict {
		return &arrow.DictionaryType{ValueType: n.dt}
	}
	return n.dt
}

func (n *binaryNode) nullable() bool { return false }

func (n *binaryNode) build(mem memory.Allocator, vals []reflect.Value, valid []bool) (*array.Data, error) {
	if n.utf8 {
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = v.String()
		}
		if n.dict {
			return array.MakeDictionaryData(mem, &arrow.DictionaryType{ValueType: n.dt}, out, valid)
		}
		return array.MakeBinaryData(mem, n.dt, out, valid)
	}

	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = v.Bytes()
	}
	if n.dict {
		return array.MakeDictionaryData(mem, &arrow.DictionaryType{ValueType: n.dt}, out, valid)
	}
	return array.MakeBinaryData(mem, n.dt, out, valid)
}

// tupleNode stores [N]E of a fixed-width E as the N*sizeof(E) bytes of
// the array value.
type tupleNode struct {
	typ   reflect.Type
	width int
}

func (n *tupleNode) dataType() arrow.DataType {
	return &arrow.FixedSizeBinaryType{ByteWidth: n.width}
}

func (n *tupleNode) nullable() bool { return false }

func (n *tupleNode) build(mem memory.Allocator, vals []reflect.Value, valid []bool) (*array.Data, error) {
	out := make([][]byte, len(vals))
	for i, v := range vals {
		if valid != nil && !valid[i] {
			continue
		}
		p := reflect.New(n.typ)
		p.Elem().Set(v)
		out[i] = unsafe.Slice((*byte)(p.UnsafePointer()), n.width)
	}
	return array.MakeFixedSizeBinaryData(mem, n.width, out, valid)
}

type listNode struct {
	elem  node
	large bool
}

func (n *listNode) listOf(elem arrow.DataType) arrow.ListLikeType {
	f := arrow.Field{Name: "item", Type: elem, Nullable: n.elem.nullable()}
	if n.large {
		return arrow.LargeListOfField(f)
	}
	return arrow.ListOfField(f)
}

func (n *listNode) dataType() arrow.DataType { return n.listOf(n.elem.dataType()) }
func (n *listNode) nullable() bool           { return false }

func (n *listNode) build(mem memory.Allocator, vals []reflect.Value, valid []bool) (*array.Data, error) {
	lengths := make([]int, len(vals))
	var flat []reflect.Value
	for i, v := range vals {
		if valid != nil && !valid[i] {
			continue
		}
		lengths[i] = v.Len()
		for j := 0; j < v.Len(); j++ {
			flat = append(flat, v.Index(j))
		}
	}

	child, err := n.elem.build(mem, flat, nil)
	if err != nil {
		return nil, err
	}
	defer child.Release()
	return array.MakeListDataFromLengths(mem, n.listOf(child.DataType()), lengths, valid, child)
}

type structField struct {
	name  string
	index int
	node  node
}

type structNode struct {
	fields []structField
}

func (n *structNode) structOf(types []arrow.DataType) *arrow.StructType {
	fs := make([]arrow.Field, len(n.fields))
	for i, f := range n.fields {
		fs[i] = arrow.Field{Name: f.name, Type: types[i], Nullable: f.node.nullable()}
	}
	return arrow.StructOf(fs...)
}

func (n *structNode) dataType() arrow.DataType {
	types := make([]arrow.DataType, len(n.fields))
	for i, f := range n.fields {
		types[i] = f.node.dataType()
	}
	return n.structOf(types)
}

func (n *structNode) nullable() bool { return false }

func (n *structNode) build(mem memory.Allocator, vals []reflect.Value, valid []bool) (*array.Data, error) {
	children := make([]arrow.ArrayData, 0, len(n.fields))
	types := make([]arrow.DataType, 0, len(n.fields))
	defer func() {
		for _, c := range children {
			c.Release()
		}
	}()

	col := make([]reflect.Value, len(vals))
	for _, f := range n.fields {
		for i, v := range vals {
			col[i] = v.Field(f.index)
		}
		child, err := f.node.build(mem, col, nil)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		children = append(children, child)
		types = append(types, child.DataType())
	}
	return array.MakeStructData(mem, n.structOf(types), len(vals), valid, children)
}

// reeNode run-end encodes the column built by values. Consecutive elements
// form one run when both are null or both hold the same value as seen by
// values, so two absent Nullables join a run whatever payload they carry.
type reeNode struct {
	values node
}

func (n *reeNode) dataType() arrow.DataType { return arrow.RunEndEncodedOf(nil, n.values.dataType()) }
func (n *reeNode) nullable() bool           { return n.values.nullable() }

func (n *reeNode) build(mem memory.Allocator, vals []reflect.Value, valid []bool) (*array.Data, error) {
	isValid := func(i int) bool { return valid == nil || valid[i] }
	ends, heads := encoded.RunsFrom(len(vals), func(i, j int) bool {
		if isValid(i) != isValid(j) {
			return false
		}
		return !isValid(i) || sameValue(n.values, vals[i], vals[j])
	})

	headVals := make([]reflect.Value, len(heads))
	var headValid []bool
	if valid != nil {
		headValid = make([]bool, len(heads))
	}
	for k, h := range heads {
		headVals[k] = vals[h]
		if headValid != nil {
			headValid[k] = valid[h]
		}
	}

	values, err := n.values.build(mem, headVals, headValid)
	if err != nil {
		return nil, err
	}
	defer values.Release()
	return array.MakeRunEndEncodedData(mem, ends, values, len(vals))
}

// sameValue reports whether a and b encode to the same element under n.
func sameValue(n node, a, b reflect.Value) bool {
	switch n := n.(type) {
	case *nullableNode:
		pa, pb := n.present(a), n.present(b)
		if pa != pb {
			return false
		}
		return !pa || sameValue(n.elem, n.get(a), n.get(b))
	case *reeNode:
		return sameValue(n.values, a, b)
	case *structNode:
		for _, f := range n.fields {
			if !sameValue(f.node, a.Field(f.index), b.Field(f.index)) {
				return false
			}
		}
		return true
	case *listNode:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !sameValue(n.elem, a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case *primitiveNode, *tupleNode:
		return a.Equal(b)
	case *binaryNode:
		if a.Kind() == reflect.String {
			return a.String() == b.String()
		}
		if a.Kind() == reflect.Slice {
			return bytes.Equal(a.Bytes(), b.Bytes())
		}
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}
