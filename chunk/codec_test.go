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

package chunk

import (
	"bytes"
	"errors"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	chunks := map[string]*Chunk{
		"empty":   {},
		"numeric": numeric(t),
		"mixed":   mixed(t),
	}
	var b Builder
	for i := 0; i < 5000; i++ {
		switch i % 7 {
		case 0:
			b.Zeros(i)
		case 3:
			b.Missing(1)
		default:
			b.Int64(int64(i * i))
		}
	}
	chunks["large"] = b.Chunk()

	for name, c := range chunks {
		for _, comp := range []string{"zstd", "zstd-better", "s2", "none", ""} {
			buf, err := Encode(c, comp)
			if err != nil {
				t.Fatalf("%s/%s: %s", name, comp, err)
			}
			out, err := Decode(buf)
			if err != nil {
				t.Fatalf("%s/%s: %s", name, comp, err)
			}
			if !Equal(c, out) {
				t.Fatalf("%s/%s: decoded chunk differs", name, comp)
			}
		}
	}
}

func TestCodecCompresses(t *testing.T) {
	var b Builder
	for i := 0; i < 10000; i++ {
		b.Text([]byte("the same string, over and over"))
	}
	c := b.Chunk()
	plain, err := Encode(c, "none")
	if err != nil {
		t.Fatal(err)
	}
	for _, comp := range []string{"zstd", "s2"} {
		buf, err := Encode(c, comp)
		if err != nil {
			t.Fatal(err)
		}
		if len(buf) >= len(plain)/10 {
			t.Errorf("%s: %d bytes compressed vs %d plain", comp, len(buf), len(plain))
		}
	}
}

func TestDecodeCorrupt(t *testing.T) {
	buf, err := Encode(mixed(t), "s2")
	if err != nil {
		t.Fatal(err)
	}
	// flipping any single byte must be detected
	for i := range buf {
		cp := bytes.Clone(buf)
		cp[i] ^= 0x40
		if _, err := Decode(cp); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("byte %d: got %v, want ErrCorrupt", i, err)
		}
	}
	for _, n := range []int{0, 3, 8, len(buf) - 1} {
		if _, err := Decode(buf[:n]); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("truncated to %d: got %v, want ErrCorrupt", n, err)
		}
	}
}

func TestDecodeBadBody(t *testing.T) {
	tcs := []struct {
		name string
		body []byte
	}{
		{"no runs", []byte{}},
		{"unknown kind", []byte{1, 42, 1}},
		{"empty run", []byte{1, byte(kindZero), 0}},
		{"missing values", []byte{1, byte(kindInt64), 3, 2}},
		{"trailing", []byte{1, byte(kindZero), 2, 9}},
		{"int32 overflow", []byte{1, byte(kindInt32), 1, 0x80, 0x80, 0x80, 0x80, 0x20}},
	}
	for _, tc := range tcs {
		if _, err := decodeBody(tc.body); !errors.Is(err, ErrCorrupt) {
			t.Errorf("%s: got %v, want ErrCorrupt", tc.name, err)
		}
	}
}

func TestUnknownCompression(t *testing.T) {
	if _, err := Encode(numeric(t), "lz77"); !errors.Is(err, ErrUnknownCompression) {
		t.Fatalf("got %v", err)
	}
}
