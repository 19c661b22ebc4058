// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Command chunkdump encodes columns of text values
// into chunk files and materializes chunk files
// through a configurable sink.
//
//	chunkdump -encode [-compression zstd] < values.txt > col.chunk
//	chunkdump [-sink dense] [-config sink.yaml] col.chunk...
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/SnellerInc/colsink/chunk"
	"github.com/SnellerInc/colsink/sink"
	"github.com/google/uuid"
	"sigs.k8s.io/yaml"
)

var (
	dashencode  bool
	dashcomp    string
	dashsink    string
	dashconfig  string
	dashdefault string
	dashwidth   int
	dashna      string
	dashv       bool
)

func init() {
	flag.BoolVar(&dashencode, "encode", false, "encode one value per line from stdin into a chunk on stdout")
	flag.StringVar(&dashcomp, "compression", "zstd", "compression for -encode (zstd, zstd-better, s2, none)")
	flag.StringVar(&dashsink, "sink", "dense", "sink kind (dense, sparse, accumulate, narrow)")
	flag.StringVar(&dashconfig, "config", "", "YAML sink configuration (overrides -sink)")
	flag.StringVar(&dashdefault, "default", "zero", "implicit default for -sink sparse (zero, missing)")
	flag.IntVar(&dashwidth, "width", 32, "integer width for -sink narrow")
	flag.StringVar(&dashna, "na", "", "missing-value sentinel")
	flag.BoolVar(&dashv, "v", false, "log diagnostics")
}

func exitf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Parse()
	if dashv {
		sink.Errorf = log.Printf
		chunk.Errorf = log.Printf
	}
	if dashencode {
		buf, err := encode(os.Stdin, dashcomp)
		if err != nil {
			exitf("encode: %s", err)
		}
		if _, err := os.Stdout.Write(buf); err != nil {
			exitf("%s", err)
		}
		return
	}
	conf, err := config()
	if err != nil {
		exitf("%s", err)
	}
	args := flag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}
	o := bufio.NewWriter(os.Stdout)
	for _, arg := range args {
		var buf []byte
		if arg == "-" {
			buf, err = io.ReadAll(os.Stdin)
		} else {
			buf, err = os.ReadFile(arg)
		}
		if err != nil {
			exitf("can't read %q: %s", arg, err)
		}
		if err := dump(o, buf, conf); err != nil {
			exitf("input %s: %s", arg, err)
		}
	}
	if err := o.Flush(); err != nil {
		exitf("%s", err)
	}
}

func config() (*sink.Config, error) {
	conf := &sink.Config{Kind: dashsink, Width: dashwidth}
	if dashconfig != "" {
		text, err := os.ReadFile(dashconfig)
		if err != nil {
			return nil, err
		}
		conf = &sink.Config{}
		if err := yaml.Unmarshal(text, conf); err != nil {
			return nil, fmt.Errorf("%s: %w", dashconfig, err)
		}
	} else {
		if err := conf.Default.UnmarshalText([]byte(dashdefault)); err != nil {
			return nil, err
		}
		if dashna != "" {
			f, err := strconv.ParseFloat(dashna, 64)
			if err != nil {
				return nil, fmt.Errorf("-na: %w", err)
			}
			conf.Sentinel = &f
		}
	}
	return conf, conf.Validate()
}

// encode reads one value per line from r
// and returns the encoded chunk
func encode(r io.Reader, comp string) ([]byte, error) {
	var b chunk.Builder
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		if err := appendValue(&b, s.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return chunk.Encode(b.Chunk(), comp)
}

// appendValue parses a single text value:
// "NA" or an empty line is missing, integers
// and plain decimals are kept exact, other
// numbers are floats, "uuid:..." is a UUID and
// anything else is text
func appendValue(b *chunk.Builder, s string) error {
	s = strings.TrimSpace(s)
	switch s {
	case "", "NA":
		return b.Missing(1)
	case "0":
		return b.Zeros(1)
	}
	if rest, ok := strings.CutPrefix(s, "uuid:"); ok {
		u, err := uuid.Parse(rest)
		if err != nil {
			return err
		}
		lo, hi := sink.SplitUUID(u)
		return b.UUID(lo, hi)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return b.Int32(int32(i))
		}
		return b.Int64(i)
	}
	if m, e, ok := decimal(s); ok {
		return b.Scaled(m, e)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return b.Float(f)
	}
	return b.Text([]byte(s))
}

// decimal splits "123.45" into (12345, -2)
func decimal(s string) (int64, int, bool) {
	whole, frac, ok := strings.Cut(s, ".")
	if !ok || frac == "" || strings.ContainsAny(frac, "+-") {
		return 0, 0, false
	}
	m, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return m, -len(frac), true
}

type output struct {
	Rows    int     `json:"len"`
	Sparse  int     `json:"sparse_len,omitempty"`
	Indices []int32 `json:"indices,omitempty"`
	Values  []any   `json:"values"`
}

func floats[F float32 | float64](vals []F) []any {
	out := make([]any, len(vals))
	for i, f := range vals {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			out[i] = nil // not representable in JSON
		} else {
			out[i] = f
		}
	}
	return out
}

func integers[I int8 | int16 | int32 | int64](vals []I) []any {
	out := make([]any, len(vals))
	for i := range vals {
		out[i] = vals[i]
	}
	return out
}

func dump(w io.Writer, buf []byte, conf *sink.Config) error {
	c, err := chunk.Decode(buf)
	if err != nil {
		return err
	}
	v, err := conf.New(c.Len())
	if err != nil {
		return err
	}
	if err := c.Visit(v); err != nil {
		return err
	}
	out := output{Rows: v.Len()}
	switch v := v.(type) {
	case *sink.Dense[float64]:
		out.Values = floats(v.Values())
	case *sink.Permute[float64]:
		out.Values = floats(v.Values())
	case *sink.Accumulate[float64]:
		out.Values = floats(v.Values())
	case *sink.Sparse[float64]:
		out.Sparse = v.SparseLen()
		out.Indices = v.Indices()
		out.Values = floats(v.Values())
	case *sink.Narrow[int8]:
		out.Values = integers(v.Values())
	case *sink.Narrow[int16]:
		out.Values = integers(v.Values())
	case *sink.Narrow[int32]:
		out.Values = integers(v.Values())
	case *sink.Narrow[int64]:
		out.Values = integers(v.Values())
	default:
		return fmt.Errorf("unexpected sink %T", v)
	}
	return json.NewEncoder(w).Encode(&out)
}
