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

// Permute scatters each visited row to the
// position given by a destination index.
//
// Row k is written to vals[dest[k]]; rows with a
// negative destination are dropped. Dropped rows
// are still consumed, so dest must hold one entry
// for every row visited.
type Permute[F constraints.Float] struct {
	Unsupported
	vals []F
	dest []int32
	k    int
	na   F
}

// NewPermute returns a Permute sink writing into
// buf according to dest. The sink does not take
// ownership of either slice.
func NewPermute[F constraints.Float](buf []F, dest []int32, opts ...Option) *Permute[F] {
	return &Permute[F]{vals: buf, dest: dest, na: sentinel[F](opts)}
}

// Caps implements Visitor.Caps.
func (p *Permute[F]) Caps() Capability { return CapNumeric }

// Len implements Visitor.Len.
func (p *Permute[F]) Len() int { return p.k }

// Values returns the destination slice.
func (p *Permute[F]) Values() []F { return p.vals }

func (p *Permute[F]) put(v F) {
	if d := p.dest[p.k]; d >= 0 {
		p.vals[d] = v
	}
	p.k++
}

// Int32 implements Visitor.Int32.
func (p *Permute[F]) Int32(v int32) error {
	p.put(F(v))
	return nil
}

// Int64 implements Visitor.Int64.
func (p *Permute[F]) Int64(v int64) error {
	p.put(F(v))
	return nil
}

// Float implements Visitor.Float.
func (p *Permute[F]) Float(f float64) error {
	if math.IsNaN(f) {
		p.put(p.na)
	} else {
		p.put(F(f))
	}
	return nil
}

// Scaled implements Visitor.Scaled.
func (p *Permute[F]) Scaled(m int64, e int) error {
	return p.Float(Pow10(m, e))
}

func (p *Permute[F]) run(n int, v F) {
	for _, d := range p.dest[p.k : p.k+n] {
		if d >= 0 {
			p.vals[d] = v
		}
	}
	p.k += n
}

// Zeros implements Visitor.Zeros.
func (p *Permute[F]) Zeros(n int) error {
	if err := checkRun(n); err != nil {
		return err
	}
	p.run(n, 0)
	return nil
}

// Missing implements Visitor.Missing.
func (p *Permute[F]) Missing(n int) error {
	if err := checkRun(n); err != nil {
		return err
	}
	p.run(n, p.na)
	return nil
}
