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

// Package bitutil provides the bit-level helpers used for validity bitmaps
// and bit-packed boolean values. Bits are numbered least significant first
// within each byte, as the Arrow format requires.
package bitutil

import (
	"math/bits"
)

var (
	BitMask        = [8]byte{1, 2, 4, 8, 16, 32, 64, 128}
	FlippedBitMask = [8]byte{254, 253, 251, 247, 239, 223, 191, 127}
)

// IsMultipleOf8 returns whether v is a multiple of 8.
func IsMultipleOf8(v int64) bool { return v&7 == 0 }

func BytesForBits(bits int64) int64 { return (bits + 7) >> 3 }

// BitIsSet returns true if the bit at index i in buf is set (1).
func BitIsSet(buf []byte, i int) bool { return (buf[uint(i)/8] & BitMask[byte(i)%8]) != 0 }

// BitIsNotSet returns true if the bit at index i in buf is not set (0).
func BitIsNotSet(buf []byte, i int) bool { return (buf[uint(i)/8] & BitMask[byte(i)%8]) == 0 }

// SetBit sets the bit at index i in buf to 1.
func SetBit(buf []byte, i int) { buf[uint(i)/8] |= BitMask[byte(i)%8] }

// ClearBit sets the bit at index i in buf to 0.
func ClearBit(buf []byte, i int) { buf[uint(i)/8] &= FlippedBitMask[byte(i)%8] }

// SetBitTo sets the bit at index i in buf to val.
func SetBitTo(buf []byte, i int, val bool) {
	if val {
		SetBit(buf, i)
	} else {
		ClearBit(buf, i)
	}
}

// CountSetBits counts the number of 1's in buf up to n bits, starting at
// bit offset.
func CountSetBits(buf []byte, offset, n int) int {
	if n == 0 {
		return 0
	}
	count := 0

	// leading bits until the next byte boundary
	for offset%8 != 0 && n > 0 {
		if BitIsSet(buf, offset) {
			count++
		}
		offset++
		n--
	}

	whole := buf[offset/8 : offset/8+n/8]
	for len(whole) >= 8 {
		w := uint64(whole[0]) | uint64(whole[1])<<8 | uint64(whole[2])<<16 | uint64(whole[3])<<24 |
			uint64(whole[4])<<32 | uint64(whole[5])<<40 | uint64(whole[6])<<48 | uint64(whole[7])<<56
		count += bits.OnesCount64(w)
		whole = whole[8:]
	}
	for _, b := range whole {
		count += bits.OnesCount8(b)
	}

	for i := offset + (n/8)*8; i < offset+n; i++ {
		if BitIsSet(buf, i) {
			count++
		}
	}
	return count
}
