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

package sink

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Default selects which value a Sparse sink
// leaves implicit. Runs of the default value
// are absorbed; runs of the other are stored.
type Default uint8

const (
	// ZeroDefault absorbs runs of zeros
	// and stores missing values.
	ZeroDefault Default = iota
	// MissingDefault absorbs runs of missing
	// values and stores zeros.
	MissingDefault
)

func (d Default) String() string {
	switch d {
	case ZeroDefault:
		return "zero"
	case MissingDefault:
		return "missing"
	default:
		return fmt.Sprintf("Default(%d)", uint8(d))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Default) MarshalText() ([]byte, error) {
	if d > MissingDefault {
		return nil, fmt.Errorf("sink: invalid default %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Default) UnmarshalText(b []byte) error {
	switch string(b) {
	case "zero", "":
		*d = ZeroDefault
	case "missing", "na":
		*d = MissingDefault
	default:
		return fmt.Errorf("sink: unknown default %q", b)
	}
	return nil
}

// Sparse records visited rows as (index, value)
// pairs, leaving runs of the implicit default
// value out.
//
// Explicit scalars are always stored, even when
// they equal the default. The value and index
// slices must be long enough to hold the worst
// case (every row stored); writing past the end
// of either slice panics.
type Sparse[F constraints.Float] struct {
	Unsupported
	vals      []F
	idx       []int32
	sparseLen int
	len       int
	def       Default
	na        F
}

// NewSparse returns a Sparse sink writing into
// vals and idx.
func NewSparse[F constraints.Float](vals []F, idx []int32, def Default, opts ...Option) *Sparse[F] {
	return &Sparse[F]{vals: vals, idx: idx, def: def, na: sentinel[F](opts)}
}

// Caps implements Visitor.Caps.
func (s *Sparse[F]) Caps() Capability { return CapNumeric }

// Len implements Visitor.Len.
func (s *Sparse[F]) Len() int { return s.len }

// SparseLen returns the number of stored pairs.
func (s *Sparse[F]) SparseLen() int { return s.sparseLen }

// Default returns the implicit default.
func (s *Sparse[F]) Default() Default { return s.def }

// Values returns the stored values.
func (s *Sparse[F]) Values() []F { return s.vals[:s.sparseLen] }

// Indices returns the row index of each
// stored value, in increasing order.
func (s *Sparse[F]) Indices() []int32 { return s.idx[:s.sparseLen] }

func (s *Sparse[F]) put(v F) {
	s.idx[s.sparseLen] = int32(s.len)
	s.vals[s.sparseLen] = v
	s.sparseLen++
	s.len++
}

// Int32 implements Visitor.Int32.
func (s *Sparse[F]) Int32(v int32) error {
	s.put(F(v))
	return nil
}

// Int64 implements Visitor.Int64.
func (s *Sparse[F]) Int64(v int64) error {
	s.put(F(v))
	return nil
}

// Float implements Visitor.Float.
func (s *Sparse[F]) Float(f float64) error {
	if math.IsNaN(f) {
		s.put(s.na)
	} else {
		s.put(F(f))
	}
	return nil
}

// Scaled implements Visitor.Scaled.
func (s *Sparse[F]) Scaled(m int64, e int) error {
	return s.Float(Pow10(m, e))
}

// run stores n copies of v unless v's
// kind of run is the implicit default
func (s *Sparse[F]) run(n int, v F, absorb bool) {
	if absorb {
		s.len += n
		return
	}
	end := s.sparseLen + n
	idx := s.idx[s.sparseLen:end]
	for i := range idx {
		idx[i] = int32(s.len + i)
	}
	fill(s.vals[s.sparseLen:end], v)
	s.sparseLen = end
	s.len += n
}

// Zeros implements Visitor.Zeros.
func (s *Sparse[F]) Zeros(n int) error {
	if err := checkRun(n); err != nil {
		return err
	}
	s.run(n, 0, s.def == ZeroDefault)
	return nil
}

// Missing implements Visitor.Missing.
func (s *Sparse[F]) Missing(n int) error {
	if err := checkRun(n); err != nil {
		return err
	}
	s.run(n, s.na, s.def == MissingDefault)
	return nil
}

// Dense expands the stored pairs into dst, which
// must hold at least Len() elements. Rows that were
// absorbed take the implicit default: zero for
// ZeroDefault, the sentinel for MissingDefault.
func (s *Sparse[F]) Dense(dst []F) []F {
	dst = dst[:s.len]
	if s.def == ZeroDefault {
		fill(dst, 0)
	} else {
		fill(dst, s.na)
	}
	for i, at := range s.Indices() {
		dst[at] = s.vals[i]
	}
	return dst
}
