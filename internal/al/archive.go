// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/elliotnunn/alfuel/internal/cursor"
)

// Version 2 entries do not store their names inline. The name is a
// NUL-terminated string v2NameBack bytes before the entry's address,
// and an extra word sits v2AuxBack bytes before it.
const (
	v2NameBack = 0x22
	v2AuxBack  = 0x02
)

// Archive is an ALAR chunk. Its entries are decoded on demand by [Archive.Entries].
type Archive struct {
	Header
	Version  uint8
	Reserved uint8
	Count    uint16

	// version 3 only
	Aux1, Aux2 uint16
	DataOffset uint16
	TOC        []uint16

	ReservedBytes []byte

	table int // 4-aligned start of the entry table, which entry addresses count from
	dec   *Decoder
}

// An Entry is one file in an archive.
type Entry struct {
	Index    uint16
	Aux1     uint16
	Address  uint32 // from the start of the entry table
	Size     uint32
	Reserved []byte
	Name     string
	Aux3     uint16 // version 2 only
	Content  Chunk
}

func (d *Decoder) decodeArchive(buf []byte) (*Archive, error) {
	c := cursor.New(buf)
	c.Seek(4, io.SeekStart)

	a := &Archive{Header: newHeader(buf), dec: d}
	a.Version = c.U8()
	a.Reserved = c.U8()
	switch a.Version {
	case 2:
		a.Count = c.U16()
		a.ReservedBytes = c.Bytes(8)
	case 3:
		a.Count = c.U16()
		a.Aux1 = c.U16()
		a.Aux2 = c.U16()
		a.ReservedBytes = c.Bytes(4)
		a.DataOffset = c.U16()
		for range a.Count {
			a.TOC = append(a.TOC, c.U16())
			if c.Err() != nil {
				break
			}
		}
	default:
		if c.Err() != nil {
			return nil, c.Err()
		}
		return nil, fmt.Errorf("%w: archive version %d", ErrVersion, a.Version)
	}
	if c.Err() != nil {
		return nil, c.Err()
	}
	c.Align(4)
	a.table = min(c.Pos(), len(buf))
	return a, nil
}

// Entries decodes the table of contents in order, decoding each entry's
// content as it is reached. Every call starts again from the first entry.
// A malformed entry ends the sequence with an error.
func (a *Archive) Entries() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		body := a.Buffer[a.table:]
		c := cursor.New(body)
		for range a.Count {
			e, err := a.readEntry(c)
			if err == nil {
				end := uint64(e.Address) + uint64(e.Size)
				if end > uint64(len(body)) {
					err = fmt.Errorf("%w: entry %q at %#x+%#x overruns archive body of %#x",
						ErrFormat, e.Name, e.Address, e.Size, len(body))
				} else {
					e.Content = a.content(e.Name, body[e.Address:end])
				}
			}
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (a *Archive) readEntry(c *cursor.Cursor) (Entry, error) {
	var e Entry
	e.Index = c.U16()
	e.Aux1 = c.U16()
	e.Address = c.U32()
	e.Size = c.U32()
	switch a.Version {
	case 2:
		e.Reserved = c.Bytes(4)
		at(c, int(e.Address)-v2NameBack, func() { e.Name = c.CString() })
		at(c, int(e.Address)-v2AuxBack, func() { e.Aux3 = c.U16() })
	default:
		e.Reserved = c.Bytes(6)
		e.Name = c.CString()
		c.Align(4)
	}
	return e, c.Err()
}

// at runs fn with the cursor at pos, then returns the cursor to where it was.
func at(c *cursor.Cursor, pos int, fn func()) {
	defer c.Seek(c.Pos(), io.SeekStart)
	c.Seek(pos, io.SeekStart)
	fn()
}

// content decodes an entry according to its file extension.
func (a *Archive) content(name string, body []byte) Chunk {
	ext := name[strings.LastIndexByte(name, '.')+1:]
	switch {
	case strings.HasPrefix(ext, "a"):
		ch, err := a.dec.parse(body)
		if err != nil {
			slog.Warn("alArchiveEntryError", "name", name, "err", err)
			return &Default{Header: newHeader(body)}
		}
		return ch
	case ext == "txt":
		return decodeText(body)
	default:
		slog.Info("alArchiveEntryNotDecoded", "name", name)
		return &Default{Header: newHeader(body)}
	}
}
