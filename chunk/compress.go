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
	"errors"
	"fmt"
	"runtime"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// ErrUnknownCompression is returned when a chunk
// names a compression algorithm that is not known.
var ErrUnknownCompression = errors.New("unknown compression")

// compressor appends the compressed
// contents of src to dst
type compressor interface {
	Name() string
	Compress(src, dst []byte) []byte
}

// decompressor decompresses src into dst,
// which must be exactly the decompressed size
type decompressor interface {
	Decompress(src, dst []byte) error
}

var zstdDecoder *zstd.Decoder

func init() {
	// by default, concurrency is set to min(4, GOMAXPROCS);
	// we'd like it to *always* be GOMAXPROCS
	z, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdDecoder = z
}

type zstdCompressor struct {
	name string
	enc  *zstd.Encoder
}

func (z zstdCompressor) Name() string { return z.name }

func (z zstdCompressor) Compress(src, dst []byte) []byte {
	return z.enc.EncodeAll(src, dst)
}

type zstdDecompressor struct{}

func (zstdDecompressor) Decompress(src, dst []byte) error {
	ret, err := zstdDecoder.DecodeAll(src, dst[:0:len(dst)])
	if err != nil {
		return err
	}
	return checkSize(ret, dst)
}

type s2Codec struct{}

func (s2Codec) Name() string { return "s2" }

func (s2Codec) Compress(src, dst []byte) []byte {
	return append(dst, s2.Encode(nil, src)...)
}

func (s2Codec) Decompress(src, dst []byte) error {
	n, err := s2.DecodedLen(src)
	if err != nil {
		return err
	}
	if n != len(dst) {
		return fmt.Errorf("s2: expected %d bytes decompressed; got %d", len(dst), n)
	}
	ret, err := s2.Decode(dst, src)
	if err != nil {
		return err
	}
	return checkSize(ret, dst)
}

type noCompression struct{}

func (noCompression) Name() string { return "none" }

func (noCompression) Compress(src, dst []byte) []byte {
	return append(dst, src...)
}

func (noCompression) Decompress(src, dst []byte) error {
	if len(src) != len(dst) {
		return fmt.Errorf("expected %d bytes; got %d", len(dst), len(src))
	}
	copy(dst, src)
	return nil
}

func checkSize(ret, dst []byte) error {
	if len(ret) != len(dst) {
		return fmt.Errorf("expected %d bytes decompressed; got %d", len(dst), len(ret))
	}
	// the decoder should not have had to
	// realloc the buffer
	if len(dst) > 0 && &ret[0] != &dst[0] {
		return fmt.Errorf("decompress: output buffer realloc'd")
	}
	return nil
}

// compression selects a compressor by name.
// "zstd-better" is written as plain "zstd".
func compression(name string) (compressor, error) {
	switch name {
	case "zstd", "":
		z, _ := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		return zstdCompressor{"zstd", z}, nil
	case "zstd-better":
		z, _ := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithEncoderConcurrency(1))
		return zstdCompressor{"zstd", z}, nil
	case "s2":
		return s2Codec{}, nil
	case "none":
		return noCompression{}, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownCompression)
}

func decompression(name string) (decompressor, error) {
	switch name {
	case "zstd":
		return zstdDecompressor{}, nil
	case "s2":
		return s2Codec{}, nil
	case "none":
		return noCompression{}, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownCompression)
}
