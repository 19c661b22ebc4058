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
	"math"

	"golang.org/x/exp/constraints"
)

// Accumulate adds each visited row into the
// corresponding element of a caller-owned slice.
//
// A missing value overwrites its element with the
// sentinel instead of being added, so a missing
// row is never folded into a sum. Reset rewinds
// the sink so that several chunks can be folded
// into the same slice.
type Accumulate[F constraints.Float] struct {
	Unsupported
	vals []F
	k    int
	na   F
}

// NewAccumulate returns an Accumulate sink
// folding into buf.
func NewAccumulate[F constraints.Float](buf []F, opts ...Option) *Accumulate[F] {
	return &Accumulate[F]{vals: buf, na: sentinel[F](opts)}
}

// Caps implements Visitor.Caps.
func (a *Accumulate[F]) Caps() Capability { return CapNumeric }

// Len implements Visitor.Len.
func (a *Accumulate[F]) Len() int { return a.k }

// Values returns the accumulator slice.
func (a *Accumulate[F]) Values() []F { return a.vals }

// Reset rewinds the sink to the first row
// without clearing the accumulated values.
func (a *Accumulate[F]) Reset() { a.k = 0 }

// Int32 implements Visitor.Int32.
func (a *Accumulate[F]) Int32(v int32) error {
	a.vals[a.k] += F(v)
	a.k++
	return nil
}

// Int64 implements Visitor.Int64.
func (a *Accumulate[F]) Int64(v int64) error {
	a.vals[a.k] += F(v)
	a.k++
	return nil
}

// Float implements Visitor.Float.
func (a *Accumulate[F]) Float(f float64) error {
	if math.IsNaN(f) {
		a.vals[a.k] = a.na
	} else {
		a.vals[a.k] += F(f)
	}
	a.k++
	return nil
}

// Scaled implements Visitor.Scaled.
func (a *Accumulate[F]) Scaled(m int64, e int) error {
	return a.Float(Pow10(m, e))
}

// Zeros implements Visitor.Zeros.
func (a *Accumulate[F]) Zeros(n int) error {
	if err := checkRun(n); err != nil {
		return err
	}
	_ = a.vals[a.k : a.k+n] // bounds check
	a.k += n
	return nil
}

// Missing implements Visitor.Missing.
func (a *Accumulate[F]) Missing(n int) error {
	if err := checkRun(n); err != nil {
		return err
	}
	fill(a.vals[a.k:a.k+n], a.na)
	a.k += n
	return nil
}
