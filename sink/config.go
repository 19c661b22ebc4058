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
	"errors"
	"fmt"
	"math"

	"github.com/SnellerInc/colsink/ints"
	"golang.org/x/exp/constraints"
)

// Config is a declarative description of a sink.
// The json tags also apply when the Config is
// loaded from YAML.
type Config struct {
	// Kind is one of "dense", "permute",
	// "sparse", "accumulate" or "narrow".
	Kind string `json:"kind"`
	// Sentinel is the missing-value marker.
	// When nil, float sinks use NaN and narrow
	// sinks use the smallest integer.
	Sentinel *float64 `json:"sentinel,omitempty"`
	// Default is the implicit value of a
	// sparse sink.
	Default Default `json:"default,omitempty"`
	// Width is the integer width in bits
	// of a narrow sink.
	Width int `json:"width,omitempty"`
	// Dest is the destination index of
	// a permute sink.
	Dest []int32 `json:"dest,omitempty"`
}

// Validate checks that c describes a sink
// that New can build.
func (c *Config) Validate() error {
	switch c.Kind {
	case "dense", "sparse", "accumulate":
	case "permute":
		if len(c.Dest) == 0 {
			return errors.New("sink: permute requires dest")
		}
	case "narrow":
		switch c.Width {
		case 8, 16, 32, 64:
		default:
			return fmt.Errorf("sink: unsupported narrow width %d", c.Width)
		}
		if c.Sentinel != nil {
			f := *c.Sentinel
			if math.Trunc(f) != f || !widthFits(c.Width, f) {
				return fmt.Errorf("sink: sentinel %g is not an int%d", f, c.Width)
			}
		}
	default:
		return fmt.Errorf("sink: unknown kind %q", c.Kind)
	}
	if c.Default > MissingDefault {
		return fmt.Errorf("sink: invalid default %d", uint8(c.Default))
	}
	return nil
}

func widthFits(width int, f float64) bool {
	switch width {
	case 8:
		return ints.FloatFits[int8](f)
	case 16:
		return ints.FloatFits[int16](f)
	case 32:
		return ints.FloatFits[int32](f)
	default:
		return ints.FloatFits[int64](f)
	}
}

func (c *Config) options() []Option {
	if c.Sentinel == nil {
		return nil
	}
	return []Option{WithSentinel(*c.Sentinel)}
}

func narrow[I constraints.Signed](c *Config, rows int) *Narrow[I] {
	var opts []NarrowOption[I]
	if c.Sentinel != nil {
		opts = append(opts, WithIntSentinel(I(*c.Sentinel)))
	}
	return NewNarrow(make([]I, rows), opts...)
}

// New returns a sink described by c with
// freshly allocated storage for rows rows.
// Permute sinks size their output to the
// largest destination index.
func (c *Config) New(rows int) (Visitor, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Kind {
	case "dense":
		return NewDense(make([]float64, rows), c.options()...), nil
	case "permute":
		if len(c.Dest) < rows {
			return nil, fmt.Errorf("sink: dest has %d entries for %d rows", len(c.Dest), rows)
		}
		size := int32(0)
		for _, d := range c.Dest {
			size = ints.Max(size, d+1)
		}
		return NewPermute(make([]float64, size), c.Dest, c.options()...), nil
	case "sparse":
		return NewSparse(make([]float64, rows), make([]int32, rows), c.Default, c.options()...), nil
	case "accumulate":
		return NewAccumulate(make([]float64, rows), c.options()...), nil
	}
	switch c.Width {
	case 8:
		return narrow[int8](c, rows), nil
	case 16:
		return narrow[int16](c, rows), nil
	case 32:
		return narrow[int32](c, rows), nil
	default:
		return narrow[int64](c, rows), nil
	}
}
