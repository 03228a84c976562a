// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"bytes"
	"errors"
	"testing"
)

type testFile struct {
	name string
	body []byte
}

func archiveV3(files ...testFile) []byte {
	w := new(builder).raw("ALAR").u8(3, 0).u16(uint16(len(files)), 0x11, 0x22).pad(4).u16(0)
	for range files {
		w.u16(0) // table of contents, unused by the decoder
	}
	w.align(4)
	table := w.pos() // addresses count from here
	addrAt := make([]int, len(files))
	for i, f := range files {
		w.u16(uint16(i), 0)
		addrAt[i] = w.pos()
		w.u32(0, uint32(len(f.body))).pad(6).cstr(f.name).align(4)
	}
	for i, f := range files {
		w.put32(addrAt[i], uint32(w.pos()-table))
		w.raw(string(f.body)).align(4)
	}
	return w.b
}

func archiveV2(files ...testFile) []byte {
	w := new(builder).raw("ALAR").u8(2, 0).u16(uint16(len(files))).pad(8)
	table := w.pos()
	addrAt := make([]int, len(files))
	for i, f := range files {
		w.u16(uint16(i), 0)
		addrAt[i] = w.pos()
		w.u32(0, uint32(len(f.body))).pad(4)
	}
	for i, f := range files {
		w.fixed(f.name, 0x20).u16(uint16(0x100 + i))
		w.put32(addrAt[i], uint32(w.pos()-table))
		w.raw(string(f.body)).align(4)
	}
	return w.b
}

var testFiles = []testFile{
	{"readme.txt", []byte("hello\n")},
	{"units.atb", tableChunk(0x14, []string{"Alice"}, []testRow{{id: 1}})},
	{"broken.aar", []byte("ALAR\x09")},
	{"sound.wav", []byte("RIFF....")},
	{"noext", []byte("XXXX")},
}

func collect(t *testing.T, a *Archive) []Entry {
	t.Helper()
	var out []Entry
	for e, err := range a.Entries() {
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, e)
	}
	return out
}

func TestArchiveEntries(t *testing.T) {
	for name, buf := range map[string][]byte{"v2": archiveV2(testFiles...), "v3": archiveV3(testFiles...)} {
		t.Run(name, func(t *testing.T) {
			ch, err := Parse(buf)
			if err != nil {
				t.Fatal(err)
			}
			a, ok := ch.(*Archive)
			if !ok {
				t.Fatalf("got %T", ch)
			}
			entries := collect(t, a)
			if len(entries) != len(testFiles) {
				t.Fatalf("got %d entries", len(entries))
			}
			for i, e := range entries {
				if e.Name != testFiles[i].name || int(e.Index) != i {
					t.Errorf("entry %d is %d %q", i, e.Index, e.Name)
				}
				if !bytes.Equal(e.Content.Bytes(), testFiles[i].body) {
					t.Errorf("%s content %q", e.Name, e.Content.Bytes())
				}
			}

			if txt, ok := entries[0].Content.(*Text); !ok || txt.Text != "hello\n" {
				t.Errorf("readme.txt decoded as %#v", entries[0].Content)
			}
			if _, ok := entries[1].Content.(*Table); !ok {
				t.Errorf("units.atb decoded as %T", entries[1].Content)
			}
			for _, e := range entries[2:] {
				if _, ok := e.Content.(*Default); !ok {
					t.Errorf("%s decoded as %T", e.Name, e.Content)
				}
			}
			if name == "v2" && entries[3].Aux3 != 0x103 {
				t.Errorf("aux word %#x", entries[3].Aux3)
			}
		})
	}
}

func TestArchiveRestartable(t *testing.T) {
	ch, err := Parse(archiveV3(testFiles...))
	if err != nil {
		t.Fatal(err)
	}
	a := ch.(*Archive)

	// stop the first pass early, which must not disturb later passes
	for range a.Entries() {
		break
	}
	first, second := collect(t, a), collect(t, a)
	if len(first) != len(second) {
		t.Fatalf("lengths %d and %d", len(first), len(second))
	}
	for i := range first {
		f, s := first[i], second[i]
		if f.Index != s.Index || f.Address != s.Address || f.Size != s.Size || f.Name != s.Name {
			t.Errorf("entry %d: %+v then %+v", i, f, s)
		}
	}
}

func TestArchiveVersion(t *testing.T) {
	_, err := Parse([]byte("ALAR\x04\x00\x00\x00"))
	if !errors.Is(err, ErrVersion) {
		t.Errorf("expected ErrVersion, got %v", err)
	}
}

func TestArchiveOverrun(t *testing.T) {
	buf := archiveV3(testFile{"a.txt", []byte("abcd")})
	buf = buf[:len(buf)-2]
	ch, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	var n int
	for _, err := range ch.(*Archive).Entries() {
		n++
		if !errors.Is(err, ErrFormat) {
			t.Errorf("expected ErrFormat, got %v", err)
		}
	}
	if n != 1 {
		t.Errorf("sequence continued after an error: %d items", n)
	}
}

func TestArchiveAddressesFromTable(t *testing.T) {
	buf := archiveV2(testFile{"readme.txt", []byte("hello")})
	ch, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	entries := collect(t, ch.(*Archive))
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	// 16-byte header, then one 16-byte entry, a 0x20-byte name and the aux word
	if e.Address != 0x32 {
		t.Errorf("address %#x, want 0x32 counted from the entry table", e.Address)
	}
	if e.Name != "readme.txt" || e.Aux3 != 0x100 {
		t.Errorf("name %q aux %#x", e.Name, e.Aux3)
	}
	if txt, ok := e.Content.(*Text); !ok || txt.Text != "hello" {
		t.Errorf("content %#v", e.Content)
	}
}
