// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/elliotnunn/alfuel/internal/cursor"
)

// Keyframe streams are (time, value) pairs ending at streamEnd.
// A time of streamMarker is followed by no value and produces no sample.
// What it marks is not known.
const (
	streamEnd    = 0xffff
	streamMarker = 0x494c

	motionPrologueBase = 0x2a
)

// Motion is an ALMT chunk: keyframe tracks for a set of named entries.
type Motion struct {
	Header
	Version    uint8
	Aux1       uint8
	Aux2       uint8
	Aux3       uint16
	DataOffset uint32
	Fields     []MotionField
	Pattern    uint32
	Length     uint16
	Rate       uint8
	Flag1      uint8
	Aux4       uint16 // sizes the skipped prologue
	Entries    []MotionEntry
}

type MotionField struct {
	Offset   uint16
	ID1, ID2 uint8
	Name     string
}

type MotionEntry struct {
	Name   string
	Tracks []Track
}

// A Track is the animation of one field. A track that is not streamed
// has a single sample at time zero.
type Track struct {
	Name     string
	Kind     FieldKind
	Streamed bool
	Samples  []Sample
}

type Sample struct {
	Time  uint16
	Value Value
}

func decodeMotion(buf []byte) (*Motion, error) {
	c := cursor.New(buf)
	c.Seek(4, io.SeekStart)

	m := &Motion{Header: newHeader(buf)}
	m.Version = c.U8()
	m.Aux1 = c.U8()
	nEntries := int(c.U16())
	nFields := int(c.U8())
	m.Aux2 = c.U8()
	m.Aux3 = c.U16()
	if nEntries*4 > c.Len() {
		return nil, fmt.Errorf("%w: %d entries", ErrFormat, nEntries)
	}
	for range nEntries {
		m.Entries = append(m.Entries, MotionEntry{Name: c.String(4)})
	}
	m.DataOffset = c.U32()
	m.Fields = make([]MotionField, nFields)
	for i := range m.Fields {
		m.Fields[i].Offset = c.U16()
	}
	for i := range m.Fields {
		m.Fields[i].ID1 = c.U8()
		m.Fields[i].ID2 = c.U8()
		m.Fields[i].Name = c.CString()
	}
	c.Align(4)

	m.Pattern = c.U32()
	m.Length = c.U16()
	m.Rate = c.U8()
	m.Flag1 = c.U8()
	m.Aux4 = c.U16()
	if d := int(m.Aux4) - motionPrologueBase; d > 0 {
		c.Seek(2*((d+1)/2), io.SeekCurrent)
	}
	if c.Err() != nil {
		return nil, c.Err()
	}

	for i := range m.Entries {
		if err := m.readEntry(c, &m.Entries[i]); err != nil {
			return nil, fmt.Errorf("entry %q: %w", m.Entries[i].Name, err)
		}
	}
	return m, nil
}

func (m *Motion) readEntry(c *cursor.Cursor, e *MotionEntry) error {
	base := c.Pos()
	nStatic := int(c.U8())
	nStreamed := int(c.U8())
	descs := c.Bytes(nStatic + nStreamed)
	c.Align(2)
	offsets := make([]int, len(descs))
	for k := range offsets {
		offsets[k] = base + int(c.U16())
	}
	if c.Err() != nil {
		return c.Err()
	}

	furthest := c.Pos()
	for k, desc := range descs {
		streamed := k >= nStatic
		c.Seek(offsets[k], io.SeekStart)

		var f MotionField
		kind := FieldUnknown
		if fi := int(desc & 0x0f); fi < len(m.Fields) {
			f = m.Fields[fi]
			kind = motionFields[f.Name]
			if kind == FieldUnknown {
				slog.Warn("alMotionFieldUnknown", "entry", e.Name, "field", f.Name)
			}
		} else {
			slog.Warn("alMotionFieldIndexOutOfRange", "entry", e.Name, "descriptor", desc)
		}
		if kind == FieldUnknown {
			// the samples cannot be decoded, but the entry still ends after them
			if streamed {
				skipStream(c)
				if c.Err() != nil {
					return fmt.Errorf("descriptor %#x: %w", desc, c.Err())
				}
				furthest = max(furthest, c.Pos())
			}
			continue
		}

		tr := Track{Name: f.Name, Kind: kind, Streamed: streamed}
		if tr.Streamed {
			for {
				t := c.U16()
				if c.Err() != nil || t == streamEnd {
					break
				}
				if t == streamMarker {
					continue
				}
				tr.Samples = append(tr.Samples, Sample{Time: t, Value: kind.read(c)})
			}
		} else {
			tr.Samples = []Sample{{Value: kind.read(c)}}
		}
		if c.Err() != nil {
			return fmt.Errorf("track %s: %w", f.Name, c.Err())
		}
		furthest = max(furthest, c.Pos())
		e.Tracks = append(e.Tracks, tr)
	}
	c.Seek(furthest, io.SeekStart)
	return nil
}

// skipStream moves past a stream whose sample width is unknown,
// by scanning word by word for its terminator.
func skipStream(c *cursor.Cursor) {
	for c.Err() == nil && c.U16() != streamEnd {
	}
}
