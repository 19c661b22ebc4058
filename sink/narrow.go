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

	"github.com/SnellerInc/colsink/ints"
	"golang.org/x/exp/constraints"
)

// Narrow writes each visited row into a slice of
// fixed-width integers.
//
// Values that cannot be represented exactly are
// rejected: integers outside the range of I fail
// with ErrRange and floats with a fractional part
// fail with ErrPrecision. Nothing is truncated or
// clamped.
type Narrow[I constraints.Signed] struct {
	Unsupported
	vals []I
	k    int
	na   I
}

// NarrowOption configures a Narrow sink.
type NarrowOption[I constraints.Signed] func(*Narrow[I])

// WithIntSentinel sets the value stored for missing
// rows and NaN inputs. The default is the smallest
// value of I.
func WithIntSentinel[I constraints.Signed](na I) NarrowOption[I] {
	return func(n *Narrow[I]) { n.na = na }
}

// NewNarrow returns a Narrow sink writing into buf.
func NewNarrow[I constraints.Signed](buf []I, opts ...NarrowOption[I]) *Narrow[I] {
	n := &Narrow[I]{vals: buf, na: ints.MinOf[I]()}
	for _, fn := range opts {
		fn(n)
	}
	return n
}

// Caps implements Visitor.Caps.
func (n *Narrow[I]) Caps() Capability { return CapNumeric }

// Len implements Visitor.Len.
func (n *Narrow[I]) Len() int { return n.k }

// Values returns the destination slice.
func (n *Narrow[I]) Values() []I { return n.vals }

// Sentinel returns the value stored for missing rows.
func (n *Narrow[I]) Sentinel() I { return n.na }

// Int32 implements Visitor.Int32.
func (n *Narrow[I]) Int32(v int32) error {
	return n.Int64(int64(v))
}

// Int64 implements Visitor.Int64.
func (n *Narrow[I]) Int64(v int64) error {
	if !ints.Fits[I](v) {
		errorf("row %d: %d overflows int%d", n.k, v, ints.Bits[I]())
		return fmt.Errorf("%d does not fit in int%d: %w", v, ints.Bits[I](), ErrRange)
	}
	n.vals[n.k] = I(v)
	n.k++
	return nil
}

// Float implements Visitor.Float.
func (n *Narrow[I]) Float(f float64) error {
	if math.IsNaN(f) {
		n.vals[n.k] = n.na
		n.k++
		return nil
	}
	if math.Trunc(f) != f {
		errorf("row %d: %g is not integral", n.k, f)
		return fmt.Errorf("%g does not fit in int%d: %w", f, ints.Bits[I](), ErrPrecision)
	}
	if !ints.FloatFits[I](f) {
		errorf("row %d: %g overflows int%d", n.k, f, ints.Bits[I]())
		return fmt.Errorf("%g does not fit in int%d: %w", f, ints.Bits[I](), ErrRange)
	}
	n.vals[n.k] = I(f)
	n.k++
	return nil
}

// Scaled implements Visitor.Scaled.
func (n *Narrow[I]) Scaled(m int64, e int) error {
	return n.Float(Pow10(m, e))
}

// Zeros implements Visitor.Zeros.
func (n *Narrow[I]) Zeros(c int) error {
	if err := checkRun(c); err != nil {
		return err
	}
	fill(n.vals[n.k:n.k+c], 0)
	n.k += c
	return nil
}

// Missing implements Visitor.Missing.
func (n *Narrow[I]) Missing(c int) error {
	if err := checkRun(c); err != nil {
		return err
	}
	fill(n.vals[n.k:n.k+c], n.na)
	n.k += c
	return nil
}
