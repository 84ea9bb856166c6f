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

package bitutil

import (
	"strings"

	"github.com/quiverdata/quiver/arrow/internal/debug"
)

// Bitmap is a read-only view of length bits starting at bit offset of buf.
// A Bitmap with a nil buffer reports every bit as set, which is how an
// absent validity bitmap is read.
type Bitmap struct {
	buf    []byte
	offset int
	length int
}

// NewBitmap returns a view of length bits of buf starting at offset.
func NewBitmap(buf []byte, offset, length int) Bitmap {
	debug.Assert(buf == nil || int(BytesForBits(int64(offset+length))) <= len(buf),
		"bitutil: bitmap view exceeds buffer")
	return Bitmap{buf: buf, offset: offset, length: length}
}

// Len returns the number of bits visible through the view.
func (b Bitmap) Len() int { return b.length }

// Offset returns the bit offset of position 0 within the underlying bytes.
func (b Bitmap) Offset() int { return b.offset }

// Bytes returns the underlying bytes, nil when every bit is implicitly set.
func (b Bitmap) Bytes() []byte { return b.buf }

// AllSet reports whether the view has no backing bytes.
func (b Bitmap) AllSet() bool { return b.buf == nil }

// IsSet reports whether bit i of the view is set.
func (b Bitmap) IsSet(i int) bool {
	debug.Assert(i >= 0 && i < b.length, "bitutil: bitmap index out of range")
	return b.buf == nil || BitIsSet(b.buf, b.offset+i)
}

// CountSet returns the number of set bits in the view.
func (b Bitmap) CountSet() int {
	if b.buf == nil {
		return b.length
	}
	return CountSetBits(b.buf, b.offset, b.length)
}

// Slice returns the bits [i, j) of the view without copying.
func (b Bitmap) Slice(i, j int) Bitmap {
	debug.Assert(i >= 0 && i <= j && j <= b.length, "bitutil: invalid bitmap slice bounds")
	return Bitmap{buf: b.buf, offset: b.offset + i, length: j - i}
}

func (b Bitmap) String() string {
	var sb strings.Builder
	sb.Grow(b.length)
	for i := 0; i < b.length; i++ {
		if b.IsSet(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
