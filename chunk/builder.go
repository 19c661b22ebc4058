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

package chunk

import (
	"fmt"
	"math"

	"github.com/SnellerInc/colsink/sink"
)

// Builder is a sink.Visitor that accumulates
// visited rows into a new Chunk. It accepts every
// kind of value and keeps scaled decimals exact.
//
// Consecutive values of the same kind are merged
// into a single run.
type Builder struct {
	c Chunk
}

var _ sink.Visitor = (*Builder)(nil)

func (b *Builder) Caps() sink.Capability { return sink.CapAll }

// Expanded implements sink.Visitor.Expanded.
// A Builder wants scaled values unconverted.
func (b *Builder) Expanded() bool { return true }

// Len implements sink.Visitor.Len.
func (b *Builder) Len() int { return b.c.rows }

// Chunk returns the chunk built so far
// and resets b.
func (b *Builder) Chunk() *Chunk {
	c := b.c
	b.c = Chunk{}
	return &c
}

// add appends n rows of kind k whose values
// (if any) start at off
func (b *Builder) add(k kind, n, off int) {
	c := &b.c
	if last := len(c.runs) - 1; last >= 0 && c.runs[last].kind == k {
		c.runs[last].count += n
	} else {
		c.runs = append(c.runs, run{kind: k, count: n, off: off})
	}
	c.rows += n
}

func (b *Builder) Text(t []byte) error {
	b.add(kindText, 1, len(b.c.text))
	b.c.text = append(b.c.text, append([]byte(nil), t...))
	return nil
}

func (b *Builder) UUID(lo, hi int64) error {
	b.add(kindUUID, 1, len(b.c.uuids))
	b.c.uuids = append(b.c.uuids, sink.MakeUUID(lo, hi))
	return nil
}

func (b *Builder) Int32(v int32) error {
	b.add(kindInt32, 1, len(b.c.ints))
	b.c.ints = append(b.c.ints, int64(v))
	return nil
}

func (b *Builder) Int64(v int64) error {
	b.add(kindInt64, 1, len(b.c.ints))
	b.c.ints = append(b.c.ints, v)
	return nil
}

// Float implements sink.Visitor.Float.
// NaN is recorded as a missing row.
func (b *Builder) Float(f float64) error {
	if math.IsNaN(f) {
		return b.Missing(1)
	}
	b.add(kindFloat, 1, len(b.c.floats))
	b.c.floats = append(b.c.floats, f)
	return nil
}

func (b *Builder) Scaled(m int64, e int) error {
	if e < math.MinInt32 || e > math.MaxInt32 {
		return fmt.Errorf("chunk: exponent %d: %w", e, sink.ErrRange)
	}
	b.add(kindScaled, 1, len(b.c.mant))
	b.c.mant = append(b.c.mant, m)
	b.c.exps = append(b.c.exps, int32(e))
	return nil
}

func (b *Builder) runOf(k kind, n int) error {
	if n < 0 {
		return fmt.Errorf("chunk: %s run of %d rows: %w", k, n, sink.ErrNegativeRun)
	}
	if n > 0 {
		b.add(k, n, 0)
	}
	return nil
}

func (b *Builder) Zeros(n int) error { return b.runOf(kindZero, n) }

func (b *Builder) Missing(n int) error { return b.runOf(kindMissing, n) }
