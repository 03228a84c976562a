// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"errors"
	"io"
	"slices"

	"github.com/elliotnunn/alfuel/internal/al"
)

// sniff reports what the start of a file holds: a known AL tag, the name of
// a compression format that might wrap one, or "" for anything else.
func sniff(r io.Reader) (string, error) {
	var header []byte
	var accessError error
	matchAt := func(s string, offset int) bool {
		if len(header) < offset+len(s) && len(header) == cap(header) {
			target := (offset + len(s) + 63) &^ 63
			header = slices.Grow(header, target-len(header))
			n, err := io.ReadFull(r, header[len(header):cap(header)])
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && accessError == nil {
				accessError = err
			}
			header = header[:len(header)+n]
		}
		return len(header) >= offset+len(s) && string(header[offset:][:len(s)]) == s
	}

	switch {
	case matchAt("\x1f\x8b", 0):
		return "gzip", nil
	case matchAt("\xfd7zXZ\x00", 0):
		return "xz", nil
	case matchAt("\x28\xb5\x2f\xfd", 0):
		return "zstd", nil
	case matchAt("AL", 0) && len(header) >= 4:
		if tag := string(header[:4]); al.TypeName(tag) != "" {
			return tag, nil
		}
	}
	return "", accessError
}
