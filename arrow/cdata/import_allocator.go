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

//go:build cgo
// +build cgo

package cdata

import (
	"sync/atomic"
	"unsafe"

	"github.com/quiverdata/quiver/arrow/internal/debug"
)

// #include "arrow/c/helpers.h"
// #include <stdlib.h>
import "C"

// importAllocator is the allocator of every buffer imported from one C
// array. It holds one reference for the import itself plus one per
// buffer; the C array is released when the last of them is freed.
type importAllocator struct {
	bufCount int64
	released int32

	arr *CArrowArray
}

func newImportAllocator(arr *CArrowArray) *importAllocator {
	return &importAllocator{bufCount: 1, arr: arr}
}

func (i *importAllocator) addBuffer() {
	atomic.AddInt64(&i.bufCount, 1)
}

func (*importAllocator) Allocate(int) []byte {
	panic("cannot allocate from importAllocator")
}

func (*importAllocator) Reallocate(int, []byte) []byte {
	panic("cannot reallocate from importAllocator")
}

func (i *importAllocator) Free([]byte) {
	debug.Assert(atomic.LoadInt64(&i.bufCount) > 0, "too many releases")

	if atomic.AddInt64(&i.bufCount, -1) == 0 {
		i.releaseC()
	}
}

// releaseC calls the release callback of the C array once.
func (i *importAllocator) releaseC() {
	if !atomic.CompareAndSwapInt32(&i.released, 0, 1) {
		return
	}

	defer C.free(unsafe.Pointer(i.arr))
	C.ArrowArrayRelease(i.arr)
	if C.ArrowArrayIsReleased(i.arr) != 1 {
		panic("did not release C mem")
	}
}
