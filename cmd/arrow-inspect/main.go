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

// Command arrow-inspect reads a JSON array, builds the Arrow array it
// describes and prints the physical layout of the result.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/docopt/docopt-go"
	"github.com/quiverdata/quiver/arrow"
	"github.com/quiverdata/quiver/arrow/array"
	"github.com/quiverdata/quiver/arrow/memory"
	"github.com/quiverdata/quiver/internal/json"
	"go.uber.org/zap"
)

const usage = `Arrow Layout Inspector.
Usage:
  arrow-inspect -h | --help
  arrow-inspect [--dict] [--ree] [--large] [--roundtrip] [--values] [-v] [<file>]
Options:
  -h --help     Show this screen.
  --dict        Dictionary encode string values.
  --ree         Run-end encode the top level array.
  --large       Use 64-bit offsets for strings and lists.
  --roundtrip   Export and re-import the array through the C Data Interface.
  --values      Include the values of each array in the output.
  -v --verbose  Log progress to stderr.`

type config struct {
	Dict      bool
	Ree       bool
	Large     bool
	Roundtrip bool
	Values    bool
	Verbose   bool
	File      string
}

func main() {
	opts, _ := docopt.ParseDoc(usage)
	var cfg config
	if err := opts.Bind(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	logger := zap.NewNop()
	if cfg.Verbose {
		logger = zap.Must(zap.NewDevelopment())
	}
	defer logger.Sync()

	in := io.Reader(os.Stdin)
	if cfg.File != "" {
		f, err := os.Open(cfg.File)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error opening input:", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	if err := run(cfg, in, os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfg config, in io.Reader, out io.Writer, logger *zap.Logger) error {
	dec := json.NewDecoder(in)
	dec.UseNumber()

	var values []interface{}
	if err := dec.Decode(&values); err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}
	logger.Debug("decoded input", zap.Int("values", len(values)))

	dt, err := inferType(values, inferOptions{large: cfg.Large, dict: cfg.Dict})
	if err != nil {
		return err
	}
	if cfg.Ree {
		dt = arrow.RunEndEncodedOf(arrow.PrimitiveTypes.Int32, dt)
	}
	logger.Debug("inferred type", zap.Stringer("type", dt))

	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	arr, err := array.FromJSON(mem, dt, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer arr.Release()

	if cfg.Roundtrip {
		imported, err := roundTrip(arr)
		if err != nil {
			return fmt.Errorf("c data round trip: %w", err)
		}
		defer imported.Release()
		if !array.Equal(arr, imported) {
			return fmt.Errorf("%w: c data round trip changed the array", arrow.ErrInvalid)
		}
		logger.Debug("round tripped through the C data interface")
		arr = imported
	}

	desc, err := describe(arr, cfg.Values)
	if err != nil {
		return err
	}
	logger.Debug("described layout", zap.Int("allocated", mem.CurrentAlloc()))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(desc)
}
