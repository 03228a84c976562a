// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package al decodes the AL family of asset chunks. Each chunk starts with a
// four-letter tag such as ALTB or ALAR, and [Parse] routes a blob to the
// decoder for its tag, unwrapping compression layers on the way.
//
// Decoded chunks keep a reference to the bytes they were decoded from,
// which callers must treat as read-only.
package al

import (
	"errors"
	"log/slog"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrFormat  = errors.New("malformed AL chunk")
	ErrVersion = errors.New("unsupported AL chunk version")
)

// A Chunk is one of *Default, *Text, *Schema, *Table, *Archive, *Texture,
// *Image, *Object or *Motion.
type Chunk interface {
	Magic() string
	Bytes() []byte
}

// Header is embedded in every chunk type.
type Header struct {
	Tag    string `json:"tag"` // first four bytes, as text
	Buffer []byte `json:"-"`
}

func (h *Header) Magic() string { return h.Tag }
func (h *Header) Bytes() []byte { return h.Buffer }

func newHeader(buf []byte) Header {
	return Header{Tag: magic(buf), Buffer: buf}
}

func magic(buf []byte) string {
	return string(buf[:min(4, len(buf))])
}

// Default is a chunk that is not decoded any further.
type Default struct {
	Header
}

// Text is a chunk of UTF-8 text, or UTF-16 if it starts with a byte order mark.
type Text struct {
	Header
	Text string
}

func decodeText(buf []byte) *Text {
	t := &Text{Header: newHeader(buf)}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	s, _, err := transform.Bytes(dec, buf)
	if err != nil {
		slog.Warn("alTextDecodeError", "err", err)
		s = buf
	}
	t.Text = string(s)
	return t
}

var typeNames = map[string]string{
	"ALTB": "AL Table",
	"ALOD": "AL Object Definition",
	"ALRD": "AL Record Prop",
	"ALSD": "AL Shader",
	"ALIG": "AL Image",
	"ALTM": "AL Tile Map",
	"ALSN": "AL Sound",
	"ALAR": "AL Archive",
	"ALMS": "AL Mesh Collision",
	"ALCT": "AL Container",
	"ALFT": "AL Font",
	"ALMT": "AL Motion",
	"ALPT": "AL Pad Trace",
	"ALTX": "AL Texture",
	"ALLZ": "AL Compress",
	"ALL4": "AL Compress (LZ4)",
}

// TypeName returns a readable name for a chunk tag, or "" if the tag is unknown.
func TypeName(magic string) string {
	return typeNames[magic]
}
