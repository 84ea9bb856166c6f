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

// TypeEqual checks if two DataType are the same. Field names of lists are
// ignored, field names of structs are compared.
func TypeEqual(left, right DataType) bool {
	switch {
	case left == nil || right == nil:
		return left == nil && right == nil
	case left.ID() != right.ID():
		return false
	}

	switch l := left.(type) {
	case *FixedSizeBinaryType:
		return l.ByteWidth == right.(*FixedSizeBinaryType).ByteWidth
	case ListLikeType:
		r := right.(ListLikeType)
		return l.ElemField().Nullable == r.ElemField().Nullable && TypeEqual(l.Elem(), r.Elem())
	case *StructType:
		r := right.(*StructType)
		switch {
		case len(l.fields) != len(r.fields):
			return false
		case !equalIndexMaps(l.index, r.index):
			return false
		}
		for i := range l.fields {
			if !l.fields[i].Equal(r.fields[i]) {
				return false
			}
		}
		return true
	case *DictionaryType:
		r := right.(*DictionaryType)
		return TypeEqual(l.IndexType, r.IndexType) &&
			TypeEqual(l.ValueType, r.ValueType) &&
			l.Ordered == r.Ordered
	case *RunEndEncodedType:
		r := right.(*RunEndEncodedType)
		return TypeEqual(l.Encoded(), r.Encoded()) &&
			TypeEqual(l.RunEnds(), r.RunEnds()) &&
			l.ValueNullable == r.ValueNullable
	default:
		return true
	}
}

func equalIndexMaps(l, r map[string][]int) bool {
	if len(l) != len(r) {
		return false
	}
	for k, lv := range l {
		rv, ok := r[k]
		if !ok || len(lv) != len(rv) {
			return false
		}
		for i := range lv {
			if lv[i] != rv[i] {
				return false
			}
		}
	}
	return true
}
