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
	"strconv"
)

type BooleanType struct{}

func (t *BooleanType) ID() Type       { return BOOL }
func (t *BooleanType) Name() string   { return "bool" }
func (t *BooleanType) String() string { return "bool" }

// BitWidth returns the number of bits required to store a single element of this data type in memory.
func (t *BooleanType) BitWidth() int { return 1 }

// Bytes is 0 for bit-packed booleans; use BitWidth.
func (t *BooleanType) Bytes() int { return 0 }

func (t *BooleanType) Layout() DataTypeLayout {
	return DataTypeLayout{Buffers: []BufferSpec{SpecBitmap(), SpecBitmap()}}
}

// FixedSizeBinaryType describes values that each occupy ByteWidth bytes.
// Homogeneous fixed-width tuples such as [3]float32 are stored this way.
type FixedSizeBinaryType struct {
	ByteWidth int
}

func (*FixedSizeBinaryType) ID() Type          { return FIXED_SIZE_BINARY }
func (*FixedSizeBinaryType) Name() string      { return "fixed_size_binary" }
func (t *FixedSizeBinaryType) BitWidth() int  { return 8 * t.ByteWidth }
func (t *FixedSizeBinaryType) Bytes() int     { return t.ByteWidth }
func (t *FixedSizeBinaryType) String() string {
	return "fixed_size_binary[" + strconv.Itoa(t.ByteWidth) + "]"
}
func (t *FixedSizeBinaryType) Layout() DataTypeLayout {
	return DataTypeLayout{Buffers: []BufferSpec{SpecBitmap(), SpecFixedWidth(t.ByteWidth)}}
}

type Float16Type struct{}

func (t *Float16Type) ID() Type       { return FLOAT16 }
func (t *Float16Type) Name() string   { return "float16" }
func (t *Float16Type) String() string { return "float16" }
func (t *Float16Type) BitWidth() int  { return 16 }
func (t *Float16Type) Bytes() int     { return Float16SizeBytes }
func (t *Float16Type) Layout() DataTypeLayout {
	return DataTypeLayout{Buffers: []BufferSpec{SpecBitmap(), SpecFixedWidth(Float16SizeBytes)}}
}

var (
	FixedWidthTypes = struct {
		Boolean FixedWidthDataType
		Float16 FixedWidthDataType
	}{
		Boolean: &BooleanType{},
		Float16: &Float16Type{},
	}

	_ FixedWidthDataType = (*FixedSizeBinaryType)(nil)
)
