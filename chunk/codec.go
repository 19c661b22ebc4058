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
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/dchest/siphash"
	"github.com/google/uuid"
)

// ErrCorrupt is returned by Decode when the
// input is not a valid encoded chunk.
var ErrCorrupt = errors.New("corrupt chunk")

const (
	magic = "CSK1"

	// checksum keys
	k0 = 0x736e656c6c657221
	k1 = 0x636f6c73696e6b31

	maxRows = math.MaxInt32
)

// Encode serializes c, compressing the body with
// the named algorithm ("zstd", "zstd-better", "s2"
// or "none"; the empty string means "zstd").
//
// The frame is the magic string, the compression
// name, the raw and compressed body sizes, the
// body, and a siphash of everything before it.
func Encode(c *Chunk, comp string) ([]byte, error) {
	cmp, err := compression(comp)
	if err != nil {
		return nil, err
	}
	raw := c.appendBody(nil)
	body := cmp.Compress(raw, nil)

	name := cmp.Name()
	out := make([]byte, 0, len(magic)+1+len(name)+2*binary.MaxVarintLen64+len(body)+8)
	out = append(out, magic...)
	out = append(out, byte(len(name)))
	out = append(out, name...)
	out = binary.AppendUvarint(out, uint64(len(raw)))
	out = binary.AppendUvarint(out, uint64(len(body)))
	out = append(out, body...)
	out = binary.LittleEndian.AppendUint64(out, siphash.Hash(k0, k1, out))
	return out, nil
}

func (c *Chunk) appendBody(dst []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(c.runs)))
	for i := range c.runs {
		dst = append(dst, byte(c.runs[i].kind))
		dst = binary.AppendUvarint(dst, uint64(c.runs[i].count))
	}
	for _, v := range c.ints {
		dst = binary.AppendVarint(dst, v)
	}
	for i := range c.mant {
		dst = binary.AppendVarint(dst, c.mant[i])
		dst = binary.AppendVarint(dst, int64(c.exps[i]))
	}
	for _, f := range c.floats {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(f))
	}
	for _, t := range c.text {
		dst = binary.AppendUvarint(dst, uint64(len(t)))
		dst = append(dst, t...)
	}
	for i := range c.uuids {
		dst = append(dst, c.uuids[i][:]...)
	}
	return dst
}

func corrupt(f string, args ...any) error {
	msg := fmt.Sprintf(f, args...)
	errorf("chunk: decode: %s", msg)
	return fmt.Errorf("%s: %w", msg, ErrCorrupt)
}

// reader consumes an encoded chunk,
// remembering the first error
type reader struct {
	buf []byte
	err error
}

func (r *reader) fail(what string) {
	if r.err == nil {
		r.err = corrupt("truncated %s", what)
	}
	r.buf = nil
}

func (r *reader) uvarint(what string) uint64 {
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		r.fail(what)
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *reader) varint(what string) int64 {
	v, n := binary.Varint(r.buf)
	if n <= 0 {
		r.fail(what)
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *reader) bytes(n uint64, what string) []byte {
	if uint64(len(r.buf)) < n {
		r.fail(what)
		return nil
	}
	b := r.buf[:n:n]
	r.buf = r.buf[n:]
	return b
}

// Decode deserializes a chunk produced by Encode.
// Errors caused by malformed input wrap ErrCorrupt.
func Decode(buf []byte) (*Chunk, error) {
	if len(buf) < len(magic)+1+8 || string(buf[:len(magic)]) != magic {
		return nil, corrupt("bad magic")
	}
	end := len(buf) - 8
	if sum := binary.LittleEndian.Uint64(buf[end:]); sum != siphash.Hash(k0, k1, buf[:end]) {
		return nil, corrupt("checksum mismatch")
	}
	r := reader{buf: buf[len(magic):end]}
	nlen := r.bytes(1, "header")
	if r.err != nil {
		return nil, r.err
	}
	name := string(r.bytes(uint64(nlen[0]), "compression name"))
	rawlen := r.uvarint("raw size")
	body := r.bytes(r.uvarint("body size"), "body")
	if r.err != nil {
		return nil, r.err
	}
	if len(r.buf) != 0 {
		return nil, corrupt("%d trailing bytes", len(r.buf))
	}
	dec, err := decompression(name)
	if err != nil {
		return nil, err
	}
	if rawlen > math.MaxInt32 {
		return nil, corrupt("raw size %d too large", rawlen)
	}
	raw := make([]byte, rawlen)
	if err := dec.Decompress(body, raw); err != nil {
		return nil, corrupt("%s: %s", name, err)
	}
	return decodeBody(raw)
}

func decodeBody(raw []byte) (*Chunk, error) {
	r := reader{buf: raw}
	c := &Chunk{}
	nruns := r.uvarint("run count")
	// each run takes at least 2 bytes
	if nruns > uint64(len(r.buf))/2 {
		return nil, corrupt("%d runs in %d bytes", nruns, len(raw))
	}
	c.runs = make([]run, nruns)
	var nvals [numKinds]int
	for i := range c.runs {
		kb := r.bytes(1, "run kind")
		n := r.uvarint("run length")
		if r.err != nil {
			return nil, r.err
		}
		k := kind(kb[0])
		if k >= numKinds {
			return nil, corrupt("run %d: unknown kind %d", i, kb[0])
		}
		if n == 0 || n > uint64(maxRows-c.rows) {
			return nil, corrupt("run %d: bad length %d", i, n)
		}
		slot := k
		if k == kindInt32 {
			slot = kindInt64 // shares c.ints
		}
		c.runs[i] = run{kind: k, count: int(n)}
		if k != kindZero && k != kindMissing {
			c.runs[i].off = nvals[slot]
			nvals[slot] += int(n)
		}
		c.rows += int(n)
	}
	// every value takes at least one byte
	total := 0
	for _, n := range nvals {
		total += n
	}
	if total > len(r.buf) {
		return nil, corrupt("%d values in %d bytes", total, len(r.buf))
	}
	if n := nvals[kindInt64]; n > 0 {
		c.ints = make([]int64, n)
		for i := range c.ints {
			c.ints[i] = r.varint("int")
		}
	}
	for i := range c.runs {
		if c.runs[i].kind == kindInt32 {
			for _, v := range c.ints[c.runs[i].off : c.runs[i].off+c.runs[i].count] {
				if v < math.MinInt32 || v > math.MaxInt32 {
					return nil, corrupt("int32 run %d holds %d", i, v)
				}
			}
		}
	}
	if n := nvals[kindScaled]; n > 0 {
		c.mant = make([]int64, n)
		c.exps = make([]int32, n)
		for i := range c.mant {
			c.mant[i] = r.varint("mantissa")
			e := r.varint("exponent")
			if e < math.MinInt32 || e > math.MaxInt32 {
				return nil, corrupt("exponent %d", e)
			}
			c.exps[i] = int32(e)
		}
	}
	if n := nvals[kindFloat]; n > 0 {
		c.floats = make([]float64, n)
		for i := range c.floats {
			b := r.bytes(8, "float")
			if r.err != nil {
				return nil, r.err
			}
			c.floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		}
	}
	if n := nvals[kindText]; n > 0 {
		c.text = make([][]byte, n)
		for i := range c.text {
			c.text[i] = r.bytes(r.uvarint("text length"), "text")
		}
	}
	if n := nvals[kindUUID]; n > 0 {
		c.uuids = make([]uuid.UUID, n)
		for i := range c.uuids {
			b := r.bytes(16, "uuid")
			if r.err != nil {
				return nil, r.err
			}
			copy(c.uuids[i][:], b)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if len(r.buf) != 0 {
		return nil, corrupt("%d trailing body bytes", len(r.buf))
	}
	return c, nil
}
