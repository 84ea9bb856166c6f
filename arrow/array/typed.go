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
	"sync/atomic"

	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/float16"
	"github.com/quiverdata/quiver/arrow/internal/debug"
	"github.com/quiverdata/quiver/arrow/memory"
	"golang.org/x/exp/constraints"
)

// TypedArray is a read-only container of nullable T values owning one
// record and one layout bound to it.
type TypedArray[T any] struct {
	refCount  int64
	data      *Data
	layout    Layout[T]
	newLayout func() Layout[T]
}

// NewTypedArray returns a container reading data through layouts built by
// newLayout. It retains data.
func NewTypedArray[T any](data *Data, newLayout func() Layout[T]) *TypedArray[T] {
	data.Retain()
	l := newLayout()
	l.Bind(data)
	return &TypedArray[T]{refCount: 1, data: data, layout: l, newLayout: newLayout}
}

// AsTyped returns a container reading data as values of T, selecting the
// layout from the type of data. It fails with ErrType when T is not the
// value type of that layout. It retains data.
func AsTyped[T any](data arrow.ArrayData) (*TypedArray[T], error) {
	newLayout, err := layoutFor[T](data.DataType())
	if err != nil {
		return nil, err
	}
	return NewTypedArray(data.(*Data), newLayout), nil
}

func layoutFor[T any](dt arrow.DataType) (func() Layout[T], error) {
	var fn func() Layout[T]
	switch dt := dt.(type) {
	case *arrow.NullType:
		return func() Layout[T] { return &NullLayout[T]{} }, nil
	case *arrow.DictionaryType:
		inner, err := layoutFor[T](dt.ValueType)
		if err != nil {
			return nil, err
		}
		return func() Layout[T] { return NewDictionaryLayout(inner) }, nil
	case *arrow.RunEndEncodedType:
		inner, err := layoutFor[T](dt.Encoded())
		if err != nil {
			return nil, err
		}
		return func() Layout[T] { return NewRunEndLayout(inner) }, nil
	case *arrow.FixedSizeBinaryType:
		fn = fixedSizeBinaryLayoutFor[T](dt.ByteWidth)
	default:
		fn = candidate[T](layoutCandidates(dt.ID())...)
	}
	if fn == nil {
		var z T
		return nil, fmt.Errorf("%w: arrow/array: cannot read %s as %T", arrow.ErrType, dt, z)
	}
	return fn, nil
}

func layoutCandidates(id arrow.Type) []func() any {
	switch id {
	case arrow.BOOL:
		return []func() any{func() any { return &BooleanLayout{} }}
	case arrow.INT8:
		return []func() any{func() any { return &FixedSizeLayout[int8]{} }}
	case arrow.INT16:
		return []func() any{func() any { return &FixedSizeLayout[int16]{} }}
	case arrow.INT32:
		return []func() any{func() any { return &FixedSizeLayout[int32]{} }}
	case arrow.INT64:
		return []func() any{func() any { return &FixedSizeLayout[int64]{} }}
	case arrow.UINT8:
		return []func() any{func() any { return &FixedSizeLayout[uint8]{} }}
	case arrow.UINT16:
		return []func() any{func() any { return &FixedSizeLayout[uint16]{} }}
	case arrow.UINT32:
		return []func() any{func() any { return &FixedSizeLayout[uint32]{} }}
	case arrow.UINT64:
		return []func() any{func() any { return &FixedSizeLayout[uint64]{} }}
	case arrow.FLOAT16:
		return []func() any{func() any { return &FixedSizeLayout[float16.Num]{} }}
	case arrow.FLOAT32:
		return []func() any{func() any { return &FixedSizeLayout[float32]{} }}
	case arrow.FLOAT64:
		return []func() any{func() any { return &FixedSizeLayout[float64]{} }}
	case arrow.STRING, arrow.BINARY:
		return []func() any{
			func() any { return &StringLayout[int32]{} },
			func() any { return &BinaryLayout[int32]{} },
		}
	case arrow.LARGE_STRING, arrow.LARGE_BINARY:
		return []func() any{
			func() any { return &StringLayout[int64]{} },
			func() any { return &BinaryLayout[int64]{} },
		}
	case arrow.LIST:
		return []func() any{func() any { return &ListLayout[int32]{} }}
	case arrow.LARGE_LIST:
		return []func() any{func() any { return &ListLayout[int64]{} }}
	case arrow.STRUCT:
		return []func() any{func() any { return &StructLayout{} }}
	}
	return nil
}

// candidate returns the first constructor whose layout reads values of T.
func candidate[T any](mk ...func() any) func() Layout[T] {
	for _, m := range mk {
		m := m
		if _, ok := m().(Layout[T]); ok {
			return func() Layout[T] { return m().(Layout[T]) }
		}
	}
	return nil
}

// fixedSizeBinaryLayoutFor reads fixed size binary values as []byte, or
// as tuples of a fixed-width element dividing the byte width.
func fixedSizeBinaryLayoutFor[T any](width int) func() Layout[T] {
	if fn := candidate[T](func() any { return &FixedSizeBinaryLayout{} }); fn != nil {
		return fn
	}
	var z T
	switch any(z).(type) {
	case []int8, []uint8:
		return candidate[T](func() any { return &TupleLayout[int8]{} }, func() any { return &TupleLayout[uint8]{} })
	case []int16, []uint16, []float16.Num:
		if width%2 != 0 {
			return nil
		}
		return candidate[T](func() any { return &TupleLayout[int16]{} }, func() any { return &TupleLayout[uint16]{} },
			func() any { return &TupleLayout[float16.Num]{} })
	case []int32, []uint32, []float32:
		if width%4 != 0 {
			return nil
		}
		return candidate[T](func() any { return &TupleLayout[int32]{} }, func() any { return &TupleLayout[uint32]{} },
			func() any { return &TupleLayout[float32]{} })
	case []int64, []uint64, []float64:
		if width%8 != 0 {
			return nil
		}
		return candidate[T](func() any { return &TupleLayout[int64]{} }, func() any { return &TupleLayout[uint64]{} },
			func() any { return &TupleLayout[float64]{} })
	}
	return nil
}

// Retain increases the reference count by 1.
func (t *TypedArray[T]) Retain() { atomic.AddInt64(&t.refCount, 1) }

// Release decreases the reference count by 1, releasing the record and
// layout when it reaches zero.
func (t *TypedArray[T]) Release() {
	debug.Assert(atomic.LoadInt64(&t.refCount) > 0, "too many releases")

	if atomic.AddInt64(&t.refCount, -1) == 0 {
		t.layout.Release()
		t.data.Release()
		t.data = nil
	}
}

// Data returns the underlying record.
func (t *TypedArray[T]) Data() *Data { return t.data }

func (t *TypedArray[T]) DataType() arrow.DataType { return t.data.dtype }

func (t *TypedArray[T]) Len() int { return t.data.length }

func (t *TypedArray[T]) Empty() bool { return t.data.length == 0 }

func (t *TypedArray[T]) NullN() int { return t.data.NullN() }

func (t *TypedArray[T]) IsValid(i int) bool { return t.layout.IsValid(i) }

// At returns element i, or an *arrow.IndexError when i is out of range.
func (t *TypedArray[T]) At(i int) (arrow.Nullable[T], error) {
	if i < 0 || i >= t.Len() {
		return arrow.NullOf[T](), &arrow.IndexError{Index: i, Size: t.Len()}
	}
	return t.get(i), nil
}

// Value returns the value of element i without checking i or its
// validity.
func (t *TypedArray[T]) Value(i int) T {
	debug.Assert(i >= 0 && i < t.Len(), "arrow/array: index out of range")
	return t.layout.Value(i)
}

func (t *TypedArray[T]) get(i int) arrow.Nullable[T] {
	if !t.layout.IsValid(i) {
		return arrow.NullOf[T]()
	}
	return arrow.NewNullable(t.layout.Value(i))
}

// Front returns the first element. The array must not be empty.
func (t *TypedArray[T]) Front() arrow.Nullable[T] {
	debug.Assert(!t.Empty(), "arrow/array: Front of empty array")
	return t.get(0)
}

// Back returns the last element. The array must not be empty.
func (t *TypedArray[T]) Back() arrow.Nullable[T] {
	debug.Assert(!t.Empty(), "arrow/array: Back of empty array")
	return t.get(t.Len() - 1)
}

// Values returns every element in order.
func (t *TypedArray[T]) Values() []arrow.Nullable[T] {
	out := make([]arrow.Nullable[T], t.Len())
	for i := range out {
		out[i] = t.get(i)
	}
	return out
}

// Iter returns an iterator positioned before the first element.
func (t *TypedArray[T]) Iter() *Iterator[T] { return &Iterator[T]{arr: t, pos: -1} }

// Array wraps the record in the concrete array of its type.
func (t *TypedArray[T]) Array() arrow.Array { return MakeFromData(t.data) }

// Clone returns a deep copy allocated from the default allocator.
func (t *TypedArray[T]) Clone() *TypedArray[T] {
	return t.CloneWithAllocator(memory.DefaultAllocator)
}

// CloneWithAllocator returns a deep copy allocated from mem with its own
// layout.
func (t *TypedArray[T]) CloneWithAllocator(mem memory.Allocator) *TypedArray[T] {
	cp := t.data.Copy(mem)
	defer cp.Release()
	return NewTypedArray(cp, t.newLayout)
}

// CopyFrom replaces the contents of t with a deep copy of other, keeping
// the layout of t and rebinding it to the copy.
func (t *TypedArray[T]) CopyFrom(other *TypedArray[T]) {
	if t == other {
		return
	}
	cp := other.data.Copy(memory.DefaultAllocator)
	t.layout.Bind(cp)
	t.data.Release()
	t.data = cp
}

func (t *TypedArray[T]) String() string {
	var o strings.Builder
	o.WriteString("[")
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			o.WriteString(" ")
		}
		o.WriteString(formatValue(t.get(i).Any()))
	}
	o.WriteString("]")
	return o.String()
}

// Iterator walks the elements of a TypedArray.
//
//	for it := arr.Iter(); it.Next(); {
//		v := it.Value()
//	}
type Iterator[T any] struct {
	arr *TypedArray[T]
	pos int
}

// Next advances to the next element, reporting whether there is one.
func (it *Iterator[T]) Next() bool {
	if it.pos >= it.arr.Len() {
		return false
	}
	it.pos++
	return it.pos < it.arr.Len()
}

// Index returns the position of the current element.
func (it *Iterator[T]) Index() int { return it.pos }

// Value returns the current element.
func (it *Iterator[T]) Value() arrow.Nullable[T] { return it.arr.get(it.pos) }

// EqualFunc reports whether a and b have the same length and equal
// elements: both null, or both valid with eq reporting their values equal.
func EqualFunc[T any](a, b *TypedArray[T], eq func(T, T) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		va, vb := a.IsValid(i), b.IsValid(i)
		if va != vb {
			return false
		}
		if va && !eq(a.layout.Value(i), b.layout.Value(i)) {
			return false
		}
	}
	return true
}

// EqualComparable is EqualFunc using ==.
func EqualComparable[T comparable](a, b *TypedArray[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}

// Compare orders a and b lexicographically by element, returning -1, 0
// or 1. A null element sorts before any value and two nulls are equal;
// when one array is a prefix of the other, the shorter sorts first.
func Compare[T any](a, b *TypedArray[T], cmp func(T, T) int) int {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	for i := 0; i < n; i++ {
		va, vb := a.IsValid(i), b.IsValid(i)
		switch {
		case !va && !vb:
			continue
		case !va:
			return -1
		case !vb:
			return 1
		}
		if c := cmp(a.layout.Value(i), b.layout.Value(i)); c != 0 {
			return c
		}
	}
	switch {
	case a.Len() < b.Len():
		return -1
	case a.Len() > b.Len():
		return 1
	}
	return 0
}

// CompareOrdered is Compare using the natural order of T.
func CompareOrdered[T constraints.Ordered](a, b *TypedArray[T]) int {
	return Compare(a, b, func(x, y T) int {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})
}
