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

package ints

import (
	"math"
	"testing"
)

func TestBounds(t *testing.T) {
	if MinOf[int8]() != math.MinInt8 || MaxOf[int8]() != math.MaxInt8 {
		t.Errorf("int8 bounds: %d %d", MinOf[int8](), MaxOf[int8]())
	}
	if MinOf[int64]() != math.MinInt64 || MaxOf[int64]() != math.MaxInt64 {
		t.Errorf("int64 bounds: %d %d", MinOf[int64](), MaxOf[int64]())
	}
	if MinOf[uint16]() != 0 || MaxOf[uint16]() != math.MaxUint16 {
		t.Errorf("uint16 bounds: %d %d", MinOf[uint16](), MaxOf[uint16]())
	}
	if Bits[int32]() != 32 || Signed[uint32]() || !Signed[int16]() {
		t.Error("bad Bits/Signed")
	}
}

func TestFits(t *testing.T) {
	tcs := []struct {
		v                int64
		i8, u8, i32, u64 bool
	}{
		{0, true, true, true, true},
		{127, true, true, true, true},
		{128, false, true, true, true},
		{255, false, true, true, true},
		{256, false, false, true, true},
		{-1, true, false, true, false},
		{-128, true, false, true, false},
		{-129, false, false, true, false},
		{math.MaxInt32 + 1, false, false, false, true},
		{math.MinInt32, false, false, true, false},
		{math.MinInt64, false, false, false, false},
	}
	for _, tc := range tcs {
		if got := Fits[int8](tc.v); got != tc.i8 {
			t.Errorf("Fits[int8](%d) = %v", tc.v, got)
		}
		if got := Fits[uint8](tc.v); got != tc.u8 {
			t.Errorf("Fits[uint8](%d) = %v", tc.v, got)
		}
		if got := Fits[int32](tc.v); got != tc.i32 {
			t.Errorf("Fits[int32](%d) = %v", tc.v, got)
		}
		if got := Fits[uint64](tc.v); got != tc.u64 {
			t.Errorf("Fits[uint64](%d) = %v", tc.v, got)
		}
	}
}

func TestFloatFits(t *testing.T) {
	tcs := []struct {
		f       float64
		i8, i64 bool
	}{
		{0, true, true},
		{127, true, true},
		{128, false, true},
		{-128, true, true},
		{-129, false, true},
		{math.Ldexp(1, 63), false, false},
		{-math.Ldexp(1, 63), false, true},
		{math.Inf(-1), false, false},
		{math.NaN(), false, false},
	}
	for _, tc := range tcs {
		if got := FloatFits[int8](tc.f); got != tc.i8 {
			t.Errorf("FloatFits[int8](%g) = %v", tc.f, got)
		}
		if got := FloatFits[int64](tc.f); got != tc.i64 {
			t.Errorf("FloatFits[int64](%g) = %v", tc.f, got)
		}
	}
	if FloatFits[uint8](-1) || !FloatFits[uint8](255) || FloatFits[uint8](256) {
		t.Error("bad uint8 range")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-2, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Error("bad Clamp")
	}
}
