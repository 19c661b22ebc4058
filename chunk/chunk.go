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

// Package chunk implements a simple run-length
// column chunk and the decode loop that drives
// a sink.Visitor over it.
//
// Chunks are built by visiting values into a
// Builder and can be serialized with Encode and
// Decode.
package chunk

import (
	"bytes"
	"fmt"
	"math"

	"github.com/SnellerInc/colsink/ints"
	"github.com/SnellerInc/colsink/sink"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// Errorf is a global diagnostic function
// that can be set during init() to capture
// additional diagnostic information about
// failed visits and corrupt chunks.
var Errorf func(f string, args ...any)

func errorf(f string, args ...any) {
	if Errorf != nil {
		Errorf(f, args...)
	}
}

type kind uint8

const (
	kindInt32 kind = iota
	kindInt64
	kindFloat
	kindScaled
	kindText
	kindUUID
	kindZero
	kindMissing

	numKinds
)

var kindNames = [numKinds]string{
	"int32", "int64", "float", "scaled", "text", "uuid", "zero", "missing",
}

func (k kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// caps returns the visitor operations
// needed to emit a run of k
func (k kind) caps(expanded bool) sink.Capability {
	switch k {
	case kindInt32, kindInt64:
		return sink.CapInt
	case kindFloat:
		return sink.CapFloat
	case kindScaled:
		if expanded {
			return sink.CapScaled
		}
		return sink.CapFloat
	case kindText:
		return sink.CapText
	case kindUUID:
		return sink.CapUUID
	default:
		return sink.CapRuns
	}
}

// run is count consecutive rows of one kind;
// value kinds start at element off of the
// kind's value slice
type run struct {
	kind  kind
	count int
	off   int
}

// Chunk is a run-length encoded column chunk.
//
// The zero value is an empty chunk.
type Chunk struct {
	runs []run
	rows int

	ints   []int64 // kindInt32, kindInt64
	mant   []int64 // kindScaled
	exps   []int32 // kindScaled
	floats []float64
	text   [][]byte
	uuids  []uuid.UUID
}

// Len returns the number of rows in c.
func (c *Chunk) Len() int { return c.rows }

// Runs returns the number of runs in c.
func (c *Chunk) Runs() int { return len(c.runs) }

// Needs returns the set of visitor operations
// required to visit every row of c. Scaled
// values need sink.CapScaled when expanded is
// set and sink.CapFloat otherwise.
func (c *Chunk) Needs(expanded bool) sink.Capability {
	return c.needs(expanded, 0, c.rows)
}

// needs returns the capabilities required
// to visit rows [from, to) of c
func (c *Chunk) needs(expanded bool, from, to int) sink.Capability {
	var need sink.Capability
	row := 0
	for i := range c.runs {
		start := row
		row += c.runs[i].count
		if row <= from {
			continue
		}
		if start >= to {
			break
		}
		need |= c.runs[i].kind.caps(expanded)
	}
	return need
}

// Visit visits every row of c in order.
func (c *Chunk) Visit(v sink.Visitor) error {
	return c.VisitRange(v, 0, c.rows)
}

// VisitRange visits rows [from, to) of c in order.
// The bounds are clamped to the chunk.
//
// Scaled decimals are passed to v as mantissa and
// exponent when v.Expanded() is set; otherwise they
// are converted with sink.Pow10 and passed to
// v.Float.
//
// v only needs the capabilities used by the rows
// in range. VisitRange returns the first error
// returned by v and leaves v in an unspecified
// state.
func (c *Chunk) VisitRange(v sink.Visitor, from, to int) error {
	from = ints.Clamp(from, 0, c.rows)
	to = ints.Clamp(to, from, c.rows)
	if err := sink.Require(v, c.needs(v.Expanded(), from, to)); err != nil {
		return err
	}
	row := 0
	for i := range c.runs {
		r := &c.runs[i]
		start := row
		row += r.count
		if row <= from {
			continue
		}
		if start >= to {
			break
		}
		lo := ints.Max(start, from) - start
		hi := ints.Min(row, to) - start
		if err := c.emit(v, r, lo, hi); err != nil {
			errorf("chunk: visiting %s run at row %d into %T: %s", r.kind, start, v, err)
			return fmt.Errorf("chunk: %s run at row %d: %w", r.kind, start, err)
		}
	}
	return nil
}

// emit passes rows [lo, hi) of r to v
func (c *Chunk) emit(v sink.Visitor, r *run, lo, hi int) error {
	switch r.kind {
	case kindZero:
		return v.Zeros(hi - lo)
	case kindMissing:
		return v.Missing(hi - lo)
	}
	expanded := v.Expanded()
	for i := r.off + lo; i < r.off+hi; i++ {
		var err error
		switch r.kind {
		case kindInt32:
			err = v.Int32(int32(c.ints[i]))
		case kindInt64:
			err = v.Int64(c.ints[i])
		case kindFloat:
			err = v.Float(c.floats[i])
		case kindScaled:
			if expanded {
				err = v.Scaled(c.mant[i], int(c.exps[i]))
			} else {
				err = v.Float(sink.Pow10(c.mant[i], int(c.exps[i])))
			}
		case kindText:
			err = v.Text(c.text[i])
		case kindUUID:
			l, h := sink.SplitUUID(c.uuids[i])
			err = v.UUID(l, h)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Equal returns whether a and b hold the same
// runs and values. Floats are compared bitwise,
// so NaN values compare equal to themselves.
func Equal(a, b *Chunk) bool {
	return a.rows == b.rows &&
		slices.Equal(a.runs, b.runs) &&
		slices.Equal(a.ints, b.ints) &&
		slices.Equal(a.mant, b.mant) &&
		slices.Equal(a.exps, b.exps) &&
		slices.EqualFunc(a.floats, b.floats, func(x, y float64) bool {
			return math.Float64bits(x) == math.Float64bits(y)
		}) &&
		slices.EqualFunc(a.text, b.text, bytes.Equal) &&
		slices.Equal(a.uuids, b.uuids)
}
