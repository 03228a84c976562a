// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/therootcompany/xz"
)

const (
	sigGzip = "\x1f\x8b"
	sigXz   = "\xfd7zXZ\x00"
	sigZstd = "\x28\xb5\x2f\xfd"
)

// safe for concurrent DecodeAll
var zstdDecoder = newZstdDecoder()

func newZstdDecoder() *zstd.Decoder {
	d, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		panic(err)
	}
	return d
}

// unwrap strips whole-blob compression, repeatedly. A gzip layer that fails
// to inflate is an error. xz and zstd signatures are only a guess at what the
// blob holds, so a layer that fails to inflate is logged and kept as it is.
func unwrap(buf []byte) ([]byte, error) {
	for {
		var (
			inner []byte
			err   error
		)
		switch {
		case bytes.HasPrefix(buf, []byte(sigGzip)):
			var r io.Reader
			r, err = gzip.NewReader(bytes.NewReader(buf))
			if err == nil {
				inner, err = io.ReadAll(r)
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFormat, err)
			}
		case bytes.HasPrefix(buf, []byte(sigXz)):
			var r io.Reader
			r, err = xz.NewReader(bytes.NewReader(buf), xz.DefaultDictMax)
			if err == nil {
				inner, err = io.ReadAll(r)
			}
		case bytes.HasPrefix(buf, []byte(sigZstd)):
			inner, err = zstdDecoder.DecodeAll(buf, nil)
		default:
			return buf, nil
		}
		if err != nil {
			slog.Info("alWrapperNotInflated", "magic", magic(buf), "err", err)
			return buf, nil
		}
		buf = inner
	}
}

const l4HeaderSize = 12

// inflateLZ4 decodes an ALL4 chunk: a 12-byte header, the last word of which
// is taken as a first guess at the inflated size, then a raw LZ4 block.
func inflateLZ4(buf []byte) ([]byte, error) {
	if len(buf) < l4HeaderSize {
		return nil, fmt.Errorf("%w: short ALL4 header", ErrFormat)
	}
	src := buf[l4HeaderSize:]
	limit := 255*len(src) + 64 // LZ4 cannot expand a block further than this
	size := min(max(int(binary.LittleEndian.Uint32(buf[8:])), 4*len(src), 64), limit)
	for {
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(src, dst)
		if err == nil {
			return dst[:n], nil
		}
		if size >= limit {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		size = min(2*size, limit)
	}
}
