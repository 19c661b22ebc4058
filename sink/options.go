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

type options struct {
	na float64
}

// Option configures a floating-point sink.
type Option func(*options)

// WithSentinel sets the value stored for missing
// rows and NaN inputs. The default is NaN.
func WithSentinel(na float64) Option {
	return func(o *options) { o.na = na }
}

func sentinel[F constraints.Float](opts []Option) F {
	o := options{na: math.NaN()}
	for _, fn := range opts {
		fn(&o)
	}
	return F(o.na)
}

// fill sets every element of dst to v.
func fill[T any](dst []T, v T) {
	for i := range dst {
		dst[i] = v
	}
}
