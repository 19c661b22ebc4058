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

// Package sink implements destinations for decoded
// column chunks.
//
// A decode loop walks a chunk in row order and calls
// exactly one of the Visitor methods for each value
// or run of values it finds. The Visitor decides what
// "appending a row" means: writing into a dense slice,
// scattering into a permuted slice, recording sparse
// (index, value) pairs, accumulating into an existing
// slice, or narrowing into a fixed-width integer slice.
//
// Visitors are single-use and not safe for concurrent
// use; one decode pass drives one Visitor.
package sink

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnsupported is returned when a Visitor
	// is asked to accept a value it cannot store.
	ErrUnsupported = errors.New("operation not supported by sink")
	// ErrRange is returned when an integer value
	// does not fit in the destination type.
	ErrRange = errors.New("value out of range")
	// ErrPrecision is returned when a floating-point
	// value would lose its fractional part.
	ErrPrecision = errors.New("value not integral")
	// ErrNegativeRun is returned when a run of
	// zero or missing rows has a negative length.
	ErrNegativeRun = errors.New("negative run length")
)

// Errorf is a global diagnostic function
// that can be set during init() to capture
// additional diagnostic information when a
// sink rejects a value.
var Errorf func(f string, args ...any)

func errorf(f string, args ...any) {
	if Errorf != nil {
		Errorf(f, args...)
	}
}

func checkRun(n int) error {
	if n < 0 {
		errorf("rejecting run of %d rows", n)
		return fmt.Errorf("run of %d rows: %w", n, ErrNegativeRun)
	}
	return nil
}

// Capability is a set of Visitor operations.
type Capability uint8

const (
	CapText   Capability = 1 << iota // Text
	CapUUID                          // UUID
	CapInt                           // Int32, Int64
	CapFloat                         // Float
	CapScaled                        // Scaled
	CapRuns                          // Zeros, Missing

	// CapNumeric is the set of operations
	// supported by every numeric sink.
	CapNumeric = CapInt | CapFloat | CapScaled | CapRuns
	// CapAll is every operation.
	CapAll = CapText | CapUUID | CapNumeric
)

var capNames = []string{"text", "uuid", "int", "float", "scaled", "runs"}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for i, name := range capNames {
		if c&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// Visitor is the set of operations a decode loop
// uses to push values into a destination.
//
// Every call advances the logical row position:
// scalar calls by one, Zeros and Missing by n.
type Visitor interface {
	// Caps returns the operations the
	// Visitor implements.
	Caps() Capability
	// Expanded returns whether the Visitor
	// wants scaled decimals as (mantissa, exponent)
	// pairs rather than pre-computed floats.
	Expanded() bool
	// Len returns the number of rows visited so far.
	Len() int

	Text(b []byte) error
	UUID(lo, hi int64) error
	Int32(v int32) error
	Int64(v int64) error
	Float(f float64) error
	// Scaled appends m * 10^e.
	Scaled(m int64, e int) error
	// Zeros appends n zeros.
	Zeros(n int) error
	// Missing appends n missing values.
	Missing(n int) error
}

// Require returns an error wrapping ErrUnsupported
// if v does not implement every operation in need.
func Require(v Visitor, need Capability) error {
	if lack := need &^ v.Caps(); lack != 0 {
		return fmt.Errorf("%T lacks %s: %w", v, lack, ErrUnsupported)
	}
	return nil
}

// Unsupported can be embedded in a Visitor
// implementation to provide ErrUnsupported
// for every operation it does not override.
type Unsupported struct{}

func (Unsupported) Caps() Capability { return 0 }
func (Unsupported) Expanded() bool { return false }

func (Unsupported) Text([]byte) error { return unsupported("Text") }
func (Unsupported) UUID(int64, int64) error { return unsupported("UUID") }
func (Unsupported) Int32(int32) error { return unsupported("Int32") }
func (Unsupported) Int64(int64) error { return unsupported("Int64") }
func (Unsupported) Float(float64) error { return unsupported("Float") }
func (Unsupported) Scaled(int64, int) error { return unsupported("Scaled") }
func (Unsupported) Zeros(int) error { return unsupported("Zeros") }
func (Unsupported) Missing(int) error { return unsupported("Missing") }

func unsupported(op string) error {
	return fmt.Errorf("%s: %w", op, ErrUnsupported)
}

// Pow10 returns m * 10^e as a float64.
//
// The result is the nearest float to the product
// of two floats, so large mantissas can lose
// precision; callers that need the exact value
// should keep (m, e). A zero mantissa is
// always 0, even when 10^e overflows.
func Pow10(m int64, e int) float64 {
	if m == 0 {
		return 0
	}
	if e >= 0 {
		return float64(m) * math.Pow10(e)
	}
	// dividing by an exact power of ten
	// rounds better than multiplying by
	// an inexact negative power
	return float64(m) / math.Pow10(-e)
}

// MakeUUID assembles a UUID from its two halves;
// hi holds the most-significant 8 bytes.
func MakeUUID(lo, hi int64) uuid.UUID {
	var u uuid.UUID
	for i := 0; i < 8; i++ {
		u[i] = byte(uint64(hi) >> (56 - 8*i))
		u[8+i] = byte(uint64(lo) >> (56 - 8*i))
	}
	return u
}

// SplitUUID is the inverse of MakeUUID.
func SplitUUID(u uuid.UUID) (lo, hi int64) {
	var l, h uint64
	for i := 0; i < 8; i++ {
		h = h<<8 | uint64(u[i])
		l = l<<8 | uint64(u[8+i])
	}
	return int64(l), int64(h)
}
