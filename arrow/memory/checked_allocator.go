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

package memory

import (
	"fmt"
	"os"
	"reflect"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"
)

// CheckedAllocator wraps an Allocator and records every live allocation
// with its call site, so tests can assert that nothing leaked.
type CheckedAllocator struct {
	mem Allocator
	sz  int64

	mu     sync.Mutex
	allocs map[uintptr]allocation
}

type allocation struct {
	size int
	site string
}

func NewCheckedAllocator(mem Allocator) *CheckedAllocator {
	return &CheckedAllocator{mem: mem, allocs: make(map[uintptr]allocation)}
}

// CurrentAlloc returns the number of bytes currently allocated and not
// yet freed.
func (a *CheckedAllocator) CurrentAlloc() int { return int(atomic.LoadInt64(&a.sz)) }

func (a *CheckedAllocator) Allocate(size int) []byte {
	atomic.AddInt64(&a.sz, int64(size))
	out := a.mem.Allocate(size)
	a.track(out, allocFrames)
	return out
}

func (a *CheckedAllocator) Reallocate(size int, b []byte) []byte {
	atomic.AddInt64(&a.sz, int64(size-len(b)))
	a.untrack(b)
	out := a.mem.Reallocate(size, b)
	a.track(out, reallocFrames)
	return out
}

func (a *CheckedAllocator) Free(b []byte) {
	atomic.AddInt64(&a.sz, -int64(len(b)))
	a.untrack(b)
	a.mem.Free(b)
}

func (a *CheckedAllocator) track(b []byte, frames int) {
	if len(b) == 0 {
		return
	}
	site := callSite(frames)
	a.mu.Lock()
	a.allocs[uintptr(unsafe.Pointer(&b[0]))] = allocation{size: len(b), site: site}
	a.mu.Unlock()
}

func (a *CheckedAllocator) untrack(b []byte) {
	if len(b) == 0 {
		return
	}
	a.mu.Lock()
	delete(a.allocs, uintptr(unsafe.Pointer(&b[0])))
	a.mu.Unlock()
}

// Leaks returns a description of every allocation not yet freed, ordered
// by call site.
func (a *CheckedAllocator) Leaks() []string {
	a.mu.Lock()
	out := make([]string, 0, len(a.allocs))
	for _, info := range a.allocs {
		out = append(out, fmt.Sprintf("%d bytes from %s", info.size, info.site))
	}
	a.mu.Unlock()
	sort.Strings(out)
	return out
}

// The QUIVER_CHECKED_ALLOC_FRAMES and QUIVER_CHECKED_REALLOC_FRAMES
// environment variables pin the number of frames skipped when recording
// the call site of an allocation. Unset, the first caller outside this
// package is recorded.
var (
	allocFrames, reallocFrames = framesFromEnv("QUIVER_CHECKED_ALLOC_FRAMES"), framesFromEnv("QUIVER_CHECKED_REALLOC_FRAMES")

	pkgPrefix = reflect.TypeOf(CheckedAllocator{}).PkgPath() + "."
)

func framesFromEnv(name string) int {
	if val, ok := os.LookupEnv(name); ok {
		if f, err := strconv.Atoi(val); err == nil && f > 0 {
			return f
		}
	}
	return 0
}

func callSite(frames int) string {
	if frames > 0 {
		pc, _, line, ok := runtime.Caller(frames)
		if !ok {
			return "unknown"
		}
		return runtime.FuncForPC(pc).Name() + ":" + strconv.Itoa(line)
	}

	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	iter := runtime.CallersFrames(pcs[:n])
	for {
		fr, more := iter.Next()
		if !strings.HasPrefix(fr.Function, pkgPrefix) {
			return fr.Function + ":" + strconv.Itoa(fr.Line)
		}
		if !more {
			return "unknown"
		}
	}
}

type TestingT interface {
	Errorf(format string, args ...interface{})
	Helper()
}

// AssertSize reports every leaked allocation and fails when the number of
// bytes allocated differs from sz.
func (a *CheckedAllocator) AssertSize(t TestingT, sz int) {
	t.Helper()
	if cur := a.CurrentAlloc(); cur != sz {
		for _, leak := range a.Leaks() {
			t.Errorf("LEAK of %s", leak)
		}
		t.Errorf("invalid memory size exp=%d, got=%d", sz, cur)
	}
}

// CheckedAllocatorScope remembers the allocated size of a CheckedAllocator
// so that a block of code can be checked for leaks in isolation.
type CheckedAllocatorScope struct {
	alloc *CheckedAllocator
	sz    int
}

func NewCheckedAllocatorScope(alloc *CheckedAllocator) *CheckedAllocatorScope {
	return &CheckedAllocatorScope{alloc: alloc, sz: alloc.CurrentAlloc()}
}

func (c *CheckedAllocatorScope) CheckSize(t TestingT) {
	t.Helper()
	if sz := c.alloc.CurrentAlloc(); c.sz != sz {
		t.Errorf("invalid memory size exp=%d, got=%d", c.sz, sz)
	}
}

var (
	_ Allocator = (*CheckedAllocator)(nil)
)
