// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/elliotnunn/alfuel/internal/al"
)

// dump writes a short description of a chunk, indented by its depth in the archive tree.
func dump(w io.Writer, name string, ch al.Chunk, depth int) {
	indent := strings.Repeat("    ", depth)
	fmt.Fprintf(w, "%s%#v\n", indent, name)
	fmt.Fprintf(w, "%s    %s size=%d xxh=%016x\n",
		indent, kind(ch), len(ch.Bytes()), xxhash.Sum64(ch.Bytes()))
	for _, l := range summary(ch) {
		fmt.Fprintf(w, "%s    %s\n", indent, l)
	}
}

func kind(ch al.Chunk) string {
	switch ch.(type) {
	case *al.Text:
		return "text"
	case *al.Default:
		if n := al.TypeName(ch.Magic()); n != "" {
			return fmt.Sprintf("%s (%s, not decoded)", ch.Magic(), n)
		}
		return fmt.Sprintf("opaque %q", ch.Magic())
	}
	return fmt.Sprintf("%s (%s)", ch.Magic(), al.TypeName(ch.Magic()))
}

func summary(ch al.Chunk) []string {
	var l []string
	add := func(format string, a ...any) {
		l = append(l, fmt.Sprintf(format, a...))
	}

	switch c := ch.(type) {
	case *al.Archive:
		add("version=%d entries=%d", c.Version, c.Count)
	case *al.Schema:
		add("version=%d rowsize=%d", c.Version, c.Size)
		for _, f := range c.Fields {
			add("field %q/%q type=%#x offset=%d", f.NameEN, f.NameJP, f.Type, f.Offset)
		}
	case *al.Table:
		add("version=%d form=%#x label=%q rows=%d columns=%d strings=%d",
			c.Version, c.Form, c.Label, len(c.Rows), len(c.Schema), len(c.Pool))
		if c.Name != "" {
			add("name=%q", c.Name)
		}
		cols := make([]string, len(c.Schema))
		for i, f := range c.Schema {
			cols[i] = f.NameEN
		}
		add("columns %s", strings.Join(cols, " "))
	case *al.Texture:
		add("version=%d form=%#x sprites=%d", c.Version, c.Form, len(c.Sprites))
		if len(c.Ambiguous) > 0 {
			add("ambiguous sprite names %v", c.Ambiguous)
		}
		if c.Placeholder != "" {
			add("%dx%d placeholder=%q", c.Width, c.Height, c.Placeholder)
		}
		if c.Image != nil {
			l = append(l, imageSummary(c.Image))
		}
	case *al.Image:
		l = append(l, imageSummary(c))
	case *al.Object:
		add("version=%d form=%d entries=%d fields=%s",
			c.Version, c.Form, len(c.Entries), strings.Join(c.FieldNames, " "))
		if c.Motion != nil {
			add("motion entries=%d fields=%d length=%d rate=%d",
				len(c.Motion.Entries), len(c.Motion.Fields), c.Motion.Length, c.Motion.Rate)
		}
	case *al.Motion:
		add("version=%d entries=%d fields=%d pattern=%d length=%d rate=%d",
			c.Version, len(c.Entries), len(c.Fields), c.Pattern, c.Length, c.Rate)
	case *al.Text:
		first, _, _ := strings.Cut(c.Text, "\n")
		if len(first) > 60 {
			first = first[:60] + "..."
		}
		add("lines=%d %q", strings.Count(c.Text, "\n")+1, first)
	}
	return l
}

func imageSummary(im *al.Image) string {
	s := fmt.Sprintf("image %dx%d format=%s", im.Width, im.Height, im.Format)
	if im.Palette != nil {
		s += fmt.Sprintf(" palette=%s/%d", im.PaletteFormat, len(im.Palette))
	}
	return s
}
