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

// Package float16 implements the IEEE 754 half-precision value stored by
// FLOAT16 arrays.
package float16

import (
	"strconv"

	"github.com/x448/float16"
)

// Num is a half-precision float. Its in-memory form is exactly the two
// bytes of the IEEE 754 binary16 encoding, so slices of Num can be cast
// to and from array buffers.
type Num struct{ bits uint16 }

var (
	MaxNum = Num{bits: 0x7bff}
	MinNum = MaxNum.Negate()
)

// New converts f to the nearest half-precision value.
func New(f float32) Num {
	return Num{bits: float16.Fromfloat32(f).Bits()}
}

// FromBits returns the Num with the given binary16 encoding.
func FromBits(src uint16) Num { return Num{bits: src} }

func (n Num) Float32() float32 { return float16.Frombits(n.bits).Float32() }

// Uint16 returns the binary16 encoding of n.
func (n Num) Uint16() uint16 { return n.bits }

func (n Num) Negate() Num { return Num{bits: n.bits ^ 0x8000} }

func (n Num) IsNaN() bool { return float16.Frombits(n.bits).IsNaN() }

func (n Num) IsZero() bool { return n.bits&0x7fff == 0 }

// Equal compares by numeric value, so +0 equals -0 and NaN equals nothing.
func (n Num) Equal(rhs Num) bool {
	if n.IsNaN() || rhs.IsNaN() {
		return false
	}
	return n.bits == rhs.bits || (n.IsZero() && rhs.IsZero())
}

func (n Num) Less(rhs Num) bool { return n.Float32() < rhs.Float32() }

func (n Num) String() string {
	return strconv.FormatFloat(float64(n.Float32()), 'g', -1, 32)
}
