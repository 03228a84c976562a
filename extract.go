// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/elliotnunn/alfuel/internal/al"
)

// extract writes one chunk under r.outDir. Archives become directories.
func (r *runner) extract(name string, ch al.Chunk, depth int) error {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		slog.Warn("extractUnsafeName", "name", name)
		return nil
	}
	dst := filepath.Join(r.outDir, rel)

	switch c := ch.(type) {
	case *al.Archive:
		return os.MkdirAll(dst, 0o777)
	case *al.Table:
		return writeJSON(dst+".json", tableJSON(c), c)
	case *al.Schema, *al.Object, *al.Motion:
		return writeJSON(dst+".json", c, c)
	case *al.Image:
		return writePNG(dst+".png", c)
	case *al.Texture:
		if c.Image != nil {
			if err := writePNG(dst+".png", c.Image); err != nil {
				return err
			}
		}
		return writeJSON(dst+".json", c, c)
	case *al.Text:
		return writeFile(dst, []byte(c.Text))
	default:
		return writeFile(dst, ch.Bytes())
	}
}

type tableView struct {
	Tag    string     `json:"tag"`
	Label  string     `json:"label,omitempty"`
	Name   string     `json:"name,omitempty"`
	Fields []al.Field `json:"fields"`
	Rows   [][]any    `json:"rows"` // cells in field order, null where absent
}

func tableJSON(t *al.Table) tableView {
	v := tableView{
		Tag:    t.Tag,
		Label:  t.Label,
		Name:   t.Name,
		Fields: t.Schema,
		Rows:   make([][]any, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cells := make([]any, len(t.Schema))
		for j, f := range t.Schema {
			if val, ok := row[f.NameEN]; ok {
				cells[j] = val
			}
		}
		v.Rows[i] = cells
	}
	return v
}

// writeJSON falls back to the raw chunk when the decoded form has no JSON
// representation, as happens with NaN floats.
func writeJSON(name string, v any, raw al.Chunk) error {
	b, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		slog.Warn("extractJSONError", "path", name, "err", err)
		return writeFile(name[:len(name)-len(".json")], raw.Bytes())
	}
	return writeFile(name, append(b, '\n'))
}

func writePNG(name string, im *al.Image) error {
	if im.Width == 0 || im.Height == 0 {
		slog.Info("extractEmptyImage", "path", name)
		return writeFile(name[:len(name)-len(".png")], im.Bytes())
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, im.NRGBA()); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return writeFile(name, buf.Bytes())
}

func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o777); err != nil {
		return err
	}
	return os.WriteFile(name, data, 0o666)
}
