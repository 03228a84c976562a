// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/elliotnunn/alfuel/internal/allz"
)

// A Cache remembers inflated payloads, keyed by the hash of the compressed chunk.
// Implementations must be safe for concurrent use
// and must not modify the slices they are given.
type Cache interface {
	Get(key uint64) ([]byte, bool)
	Add(key uint64, val []byte)
}

// A Decoder turns blobs into chunks. The zero value is ready to use.
type Decoder struct {
	Cache Cache // optional
}

// Parse decodes a blob with a zero [Decoder].
func Parse(buf []byte) (Chunk, error) {
	var d Decoder
	return d.Parse(buf)
}

// Parse strips any gzip, xz or zstd wrapping from the blob and decodes the chunk inside.
// Tags without a decoder yield a *Default holding the bytes unchanged.
func (d *Decoder) Parse(buf []byte) (Chunk, error) {
	buf, err := unwrap(buf)
	if err != nil {
		return nil, err
	}
	return d.parse(buf)
}

func (d *Decoder) parse(buf []byte) (Chunk, error) {
	m := magic(buf)
	var (
		c   Chunk
		err error
	)
	switch m {
	case allz.Magic:
		inner, err := d.inflate(buf, allz.Decompress)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		return d.parse(inner)
	case "ALL4":
		inner, err := d.inflate(buf, inflateLZ4)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		return d.parse(inner)
	case "ALTB":
		c, err = decodeTable(buf)
	case "ALAR":
		c, err = d.decodeArchive(buf)
	case "ALTX":
		c, err = decodeTexture(buf)
	case "ALIG":
		c, err = decodeImage(buf)
	case "ALOD":
		c, err = decodeObject(buf)
	case "ALRD":
		c, err = decodeSchema(buf)
	case "ALMT":
		// a motion outside an ALOD degrades to a default chunk
		c, err = decodeMotion(buf)
		if err != nil {
			slog.Warn("alMotionDecodeError", "size", len(buf), "err", err)
			return &Default{Header: newHeader(buf)}, nil
		}
	default:
		slog.Info("alUnsupportedType", "magic", m, "type", TypeName(m), "size", len(buf))
		return &Default{Header: newHeader(buf)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m, err)
	}
	return c, nil
}

func (d *Decoder) inflate(buf []byte, fn func([]byte) ([]byte, error)) ([]byte, error) {
	if d.Cache == nil {
		return fn(buf)
	}
	key := xxhash.Sum64(buf)
	if got, ok := d.Cache.Get(key); ok {
		return got, nil
	}
	got, err := fn(buf)
	if err != nil {
		return nil, err
	}
	d.Cache.Add(key, got)
	return got, nil
}
