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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoAllocatorAlignment(t *testing.T) {
	for _, sz := range []int{1, 33, 64, 65, 4097, 8192} {
		t.Run(fmt.Sprintf("sz=%d", sz), func(t *testing.T) {
			buf := NewGoAllocator().Allocate(sz)
			assert.True(t, isMultipleOfPowerOf2(int(addressOf(buf)), alignment))
			assert.Len(t, buf, sz)
			assert.Equal(t, sz, cap(buf))
		})
	}
}

func TestGoAllocatorReallocateKeepsPrefix(t *testing.T) {
	a := NewGoAllocator()
	buf := a.Allocate(200)
	for i := range buf {
		buf[i] = byte(i)
	}

	smaller := a.Reallocate(100, buf)
	assert.Equal(t, buf[:100], smaller)

	larger := a.Reallocate(300, buf)
	assert.Equal(t, buf, larger[:200])
	assert.Equal(t, make([]byte, 100), larger[200:])
}

func TestRoundUpToMultipleOf64(t *testing.T) {
	tests := []struct{ v, exp int }{
		{0, 0}, {1, 64}, {63, 64}, {64, 64}, {65, 128}, {122, 128},
	}
	for _, test := range tests {
		assert.Equal(t, test.exp, roundUpToMultipleOf64(test.v), "v=%d", test.v)
	}
}

type recordingT struct{ errs []string }

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}
func (r *recordingT) Helper() {}

func TestCheckedAllocatorReportsLeak(t *testing.T) {
	mem := NewCheckedAllocator(NewGoAllocator())
	leaked := mem.Allocate(32)

	rec := &recordingT{}
	mem.AssertSize(rec, 0)
	assert.Len(t, rec.errs, 2)
	assert.Contains(t, rec.errs[0], "LEAK of 32 bytes from ")

	mem.Free(leaked)
	rec = &recordingT{}
	mem.AssertSize(rec, 0)
	assert.Empty(t, rec.errs)
}
