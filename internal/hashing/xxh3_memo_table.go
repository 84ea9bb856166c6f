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

// Package hashing provides the memo tables used to deduplicate values when
// building dictionary encoded arrays.
package hashing

import (
	"bytes"
	"unsafe"

	"github.com/zeebo/xxh3"
)

// Hash computes the seeded xxh3 hash of b.
func Hash(b []byte, alg uint64) uint64 {
	return xxh3.HashSeed(b, alg)
}

func hashString(val string, alg uint64) uint64 {
	return xxh3.HashStringSeed(val, alg)
}

const (
	sentinel      uint64 = 0
	loadFactor    int64  = 2
	minCapacity   int64  = 32
	emptyMemoIdx  int32  = -1
	hashAlgorithm uint64 = 0
)

type entry struct {
	h       uint64
	memoIdx int32
}

func (e entry) Valid() bool { return e.h != sentinel }

// fixHash reserves the zero hash for empty slots.
func fixHash(h uint64) uint64 {
	if h == sentinel {
		return 42
	}
	return h
}

// BinaryMemoTable assigns dense, insertion ordered indices to distinct byte
// strings. Inserted keys are copied into storage owned by the table, so
// callers may reuse their buffers.
type BinaryMemoTable struct {
	entries []entry
	size    int64
	mask    uint64

	offsets []int64
	data    []byte
}

// NewBinaryMemoTable returns a table sized for roughly num distinct values.
func NewBinaryMemoTable(num int64) *BinaryMemoTable {
	capacity := minCapacity
	for capacity < num*loadFactor {
		capacity <<= 1
	}
	return &BinaryMemoTable{
		entries: make([]entry, capacity),
		mask:    uint64(capacity - 1),
		offsets: make([]int64, 1, num+1),
	}
}

// Size returns the number of distinct values in the table.
func (b *BinaryMemoTable) Size() int { return len(b.offsets) - 1 }

// ValuesSize returns the total byte length of all distinct values.
func (b *BinaryMemoTable) ValuesSize() int { return len(b.data) }

// Value returns the value stored at memo index i. The returned slice
// aliases the table storage.
func (b *BinaryMemoTable) Value(i int) []byte {
	return b.data[b.offsets[i]:b.offsets[i+1]]
}

// Offsets returns the offsets of every value into ValueBytes, including the
// trailing end offset.
func (b *BinaryMemoTable) Offsets() []int64 { return b.offsets }

// ValueBytes returns the concatenated bytes of every value in memo order.
func (b *BinaryMemoTable) ValueBytes() []byte { return b.data }

// VisitValues calls fn for every value in memo order.
func (b *BinaryMemoTable) VisitValues(fn func(i int, v []byte)) {
	for i := 0; i < b.Size(); i++ {
		fn(i, b.Value(i))
	}
}

func (b *BinaryMemoTable) lookup(h uint64, val []byte) (*entry, bool) {
	const perturbShift uint8 = 5

	var (
		idx     uint64
		perturb uint64
		e       *entry
	)

	h = fixHash(h)
	idx = h & b.mask
	perturb = (h >> uint64(perturbShift)) + 1

	for {
		e = &b.entries[idx]
		if e.h == h && bytes.Equal(b.Value(int(e.memoIdx)), val) {
			return e, true
		}

		if !e.Valid() {
			return e, false
		}

		// perturbation logic inspired from CPython's set/dict object
		// the goal is that all 64 bits of unmasked hash value eventually
		// participate in the probing sequence, to minimize clustering
		idx = (idx + perturb) & b.mask
		perturb = (perturb >> uint64(perturbShift)) + 1
	}
}

// Get returns the memo index of val, if present.
func (b *BinaryMemoTable) Get(val []byte) (int, bool) {
	if e, ok := b.lookup(Hash(val, hashAlgorithm), val); ok {
		return int(e.memoIdx), true
	}
	return int(emptyMemoIdx), false
}

// GetOrInsert returns the memo index of val, inserting it when absent.
// found reports whether the value was already present.
func (b *BinaryMemoTable) GetOrInsert(val []byte) (idx int, found bool) {
	return b.getOrInsert(Hash(val, hashAlgorithm), val)
}

// GetOrInsertString is GetOrInsert for strings without copying val first.
func (b *BinaryMemoTable) GetOrInsertString(val string) (idx int, found bool) {
	return b.getOrInsert(hashString(val, hashAlgorithm), unsafe.Slice(unsafe.StringData(val), len(val)))
}

func (b *BinaryMemoTable) getOrInsert(h uint64, val []byte) (idx int, found bool) {
	e, ok := b.lookup(h, val)
	if ok {
		return int(e.memoIdx), true
	}

	idx = b.Size()
	b.data = append(b.data, val...)
	b.offsets = append(b.offsets, int64(len(b.data)))
	e.h, e.memoIdx = fixHash(h), int32(idx)
	b.size++
	if b.size*loadFactor >= int64(len(b.entries)) {
		b.upsize(int64(len(b.entries)) * 2)
	}
	return idx, false
}

func (b *BinaryMemoTable) upsize(newcap int64) {
	old := b.entries
	b.entries = make([]entry, newcap)
	b.mask = uint64(newcap - 1)
	for _, e := range old {
		if !e.Valid() {
			continue
		}
		idx := e.h & b.mask
		perturb := (e.h >> 5) + 1
		for b.entries[idx].Valid() {
			idx = (idx + perturb) & b.mask
			perturb = (perturb >> 5) + 1
		}
		b.entries[idx] = e
	}
}
