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

package float16_test

import (
	"math"
	"testing"

	"github.com/quiverdata/quiver/arrow/float16"
	"github.com/stretchr/testify/assert"
)

func TestFloat16RoundTrip(t *testing.T) {
	cases := []struct {
		f    float32
		bits uint16
	}{
		{0, 0x0000},
		{1, 0x3c00},
		{-2, 0xc000},
		{0.5, 0x3800},
		{65504, 0x7bff},
		{float32(math.Inf(1)), 0x7c00},
	}
	for _, c := range cases {
		n := float16.New(c.f)
		assert.Equal(t, c.bits, n.Uint16(), "encode %v", c.f)
		assert.Equal(t, c.f, float16.FromBits(c.bits).Float32(), "decode %#x", c.bits)
	}
}

func TestFloat16Compare(t *testing.T) {
	one, two := float16.New(1), float16.New(2)
	assert.True(t, one.Less(two))
	assert.False(t, two.Less(one))
	assert.True(t, float16.New(0).Equal(float16.New(0).Negate()))

	nan := float16.New(float32(math.NaN()))
	assert.True(t, nan.IsNaN())
	assert.False(t, nan.Equal(nan))
	assert.Equal(t, float32(65504), float16.MaxNum.Float32())
	assert.Equal(t, float32(-65504), float16.MinNum.Float32())
	assert.Equal(t, "1.5", float16.New(1.5).String())
}
