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

/*
Package arrow provides the type system of an in-memory columnar format
compatible with Apache Arrow.

An array is described by an ArrayData record: a DataType, a logical
length and offset, an optional validity bitmap, a set of buffers whose
meaning is fixed by the type, child records for nested types and an
optional dictionary. The array sub-package builds and reads those
records, the builder sub-package derives them from Go values of any
supported shape, and the cdata sub-package moves them across the Arrow C
Data Interface without copying.

Supported types

	NULL
	BOOL                               bit-packed
	INT8 ... UINT64, FLOAT16 ... FLOAT64  fixed-width
	STRING, BINARY                     int32 offsets + data
	LARGE_STRING, LARGE_BINARY         int64 offsets + data
	FIXED_SIZE_BINARY                  fixed-width byte tuples
	LIST, LARGE_LIST                   offsets + one child
	STRUCT                             one child per field
	DICTIONARY                         indices + dictionary values
	RUN_END_ENCODED                    run ends child + values child
*/
package arrow
