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

package builder

import (
	"github.com/quiverdata/quiver/arrow/memory"
)

type config struct {
	mem   memory.Allocator
	large bool
	dict  bool
	ree   bool
}

// Option configures Build and DataTypeOf.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{mem: memory.DefaultAllocator}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// WithAllocator sets the allocator the built buffers come from.
func WithAllocator(mem memory.Allocator) Option {
	return func(c *config) { c.mem = mem }
}

// WithLargeOffsets builds strings, byte slices and lists with 64-bit
// offsets.
func WithLargeOffsets() Option {
	return func(c *config) { c.large = true }
}

// WithDictionaryEncoding dictionary encodes every string and byte slice
// column.
func WithDictionaryEncoding() Option {
	return func(c *config) { c.dict = true }
}

// WithRunEndEncoding run-end encodes the built column.
func WithRunEndEncoding() Option {
	return func(c *config) { c.ree = true }
}
