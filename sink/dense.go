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

// Dense writes each visited row into the next
// element of a pre-sized slice.
//
// The slice must be at least as long as the
// number of rows visited; writing past the end
// of the slice panics.
type Dense[F constraints.Float] struct {
	Unsupported
	vals []F
	k    int
	na   F
}

// NewDense returns a Dense sink writing into buf.
func NewDense[F constraints.Float](buf []F, opts ...Option) *Dense[F] {
	return &Dense[F]{vals: buf, na: sentinel[F](opts)}
}

// Caps implements Visitor.Caps.
func (d *Dense[F]) Caps() Capability { return CapNumeric }

// Len implements Visitor.Len.
func (d *Dense[F]) Len() int { return d.k }

// Values returns the destination slice.
func (d *Dense[F]) Values() []F { return d.vals }

// Int32 implements Visitor.Int32.
func (d *Dense[F]) Int32(v int32) error {
	d.vals[d.k] = F(v)
	d.k++
	return nil
}

// Int64 implements Visitor.Int64.
func (d *Dense[F]) Int64(v int64) error {
	d.vals[d.k] = F(v)
	d.k++
	return nil
}

// Float implements Visitor.Float.
func (d *Dense[F]) Float(f float64) error {
	if math.IsNaN(f) {
		d.vals[d.k] = d.na
	} else {
		d.vals[d.k] = F(f)
	}
	d.k++
	return nil
}

// Scaled implements Visitor.Scaled.
func (d *Dense[F]) Scaled(m int64, e int) error {
	return d.Float(Pow10(m, e))
}

// Zeros implements Visitor.Zeros.
func (d *Dense[F]) Zeros(n int) error {
	if err := checkRun(n); err != nil {
		return err
	}
	fill(d.vals[d.k:d.k+n], 0)
	d.k += n
	return nil
}

// Missing implements Visitor.Missing.
func (d *Dense[F]) Missing(n int) error {
	if err := checkRun(n); err != nil {
		return err
	}
	fill(d.vals[d.k:d.k+n], d.na)
	d.k += n
	return nil
}
