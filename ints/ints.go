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

// Package ints provides int-related common functions,
// mostly range checks used when narrowing wide values
// into fixed-width integer columns.
package ints

import (
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Min returns the smaller value of x and y
func Min[T constraints.Integer](x, y T) T {
	if x <= y {
		return x
	}
	return y
}

// Max returns the greater value of x and y
func Max[T constraints.Integer](x, y T) T {
	if x >= y {
		return x
	}
	return y
}

// Clamp returns x if it is in [lo, hi]. Otherwise, the nearest bounding value is returned
func Clamp[T constraints.Integer](x, lo, hi T) T {
	return Max(lo, Min(x, hi))
}

// Bits returns the width of T in bits.
func Bits[T constraints.Integer]() int {
	var t T
	return int(unsafe.Sizeof(t) * 8)
}

// Signed returns whether T is a signed integer type.
func Signed[T constraints.Integer]() bool {
	return ^T(0) < 0
}

// MinOf returns the smallest value representable by T.
func MinOf[T constraints.Integer]() T {
	if !Signed[T]() {
		return 0
	}
	return T(1) << (Bits[T]() - 1)
}

// MaxOf returns the largest value representable by T.
func MaxOf[T constraints.Integer]() T {
	return ^MinOf[T]()
}

// Fits returns whether v can be converted to T
// without changing its value.
func Fits[T constraints.Integer](v int64) bool {
	t := T(v)
	return int64(t) == v && (t < 0) == (v < 0)
}

// FloatFits returns whether the integral value f
// lies within the range of T.
//
// The result for non-integral f is unspecified;
// callers should reject fractions first.
func FloatFits[T constraints.Integer](f float64) bool {
	n := Bits[T]()
	if Signed[T]() {
		// -2^(n-1) <= f < 2^(n-1); both bounds
		// are exact in float64
		return f >= -math.Ldexp(1, n-1) && f < math.Ldexp(1, n-1)
	}
	return f >= 0 && f < math.Ldexp(1, n)
}
