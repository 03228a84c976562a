// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/elliotnunn/alfuel/internal/al"
	"github.com/elliotnunn/alfuel/internal/walk"
)

type runner struct {
	dec    *al.Decoder
	files  string // pattern for files found in directories
	match  string // pattern for archive entry names
	outDir string // extract here if set

	mu  sync.Mutex // guards out
	out io.Writer

	failed atomic.Bool
}

// An input is a file to decode.
type input struct {
	path string // on disk
	name string // slash-separated, for display and extraction
}

func (r *runner) run(args []string, concurrency int) {
	slog.Info("decodeStart")
	t := time.Now()
	inputs := r.inputs(args)

	wg := new(sync.WaitGroup)
	wg.Add(concurrency)
	for range concurrency {
		go func() {
			for in := range inputs {
				if err := r.decodeFile(in); err != nil {
					slog.Error("decodeError", "path", in.path, "err", err)
					r.failed.Store(true)
				}
			}
			wg.Done()
		}()
	}
	wg.Wait()
	slog.Info("decodeStop", "duration", time.Since(t).Truncate(time.Millisecond).String())
}

// inputs lists the files named on the command line, and the files inside
// the directories named on the command line that look like AL chunks.
func (r *runner) inputs(args []string) <-chan input {
	out := make(chan input)
	go func() {
		defer close(out)
		for _, arg := range args {
			info, err := os.Stat(arg)
			if err != nil {
				slog.Error("statError", "path", arg, "err", err)
				r.failed.Store(true)
				continue
			} else if !info.IsDir() {
				out <- input{path: arg, name: filepath.Base(arg)}
				continue
			}

			fsys := os.DirFS(arg)
			waysort, files := walk.FilesInDiskOrder(fsys)
			slog.Info("walkDir", "path", arg, "sortorder", waysort)
			files, err = walk.Matching(r.files, files)
			if err != nil {
				panic(err) // main checks the pattern
			}
			for name := range files {
				kind, err := sniffFile(fsys, name)
				if err != nil {
					slog.Warn("sniffError", "path", name, "err", err)
					continue
				} else if kind == "" {
					slog.Debug("sniffSkip", "path", name)
					continue
				}
				out <- input{
					path: filepath.Join(arg, filepath.FromSlash(name)),
					name: path.Join(filepath.ToSlash(filepath.Base(arg)), name),
				}
			}
		}
	}()
	return out
}

func sniffFile(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return sniff(f)
}

func (r *runner) decodeFile(in input) error {
	data, release, err := readFile(in.path)
	if err != nil {
		return err
	}
	defer release()

	ch, err := r.dec.Parse(data)
	if err != nil {
		return err
	}

	if r.outDir != "" {
		return r.each(in.name, ch, 0, r.extract)
	}

	// keep each file's tree together
	var buf bytes.Buffer
	err = r.each(in.name, ch, 0, func(name string, ch al.Chunk, depth int) error {
		dump(&buf, name, ch, depth)
		return nil
	})
	r.mu.Lock()
	r.out.Write(buf.Bytes())
	r.mu.Unlock()
	return err
}

// each calls fn on a chunk and, if it is an archive, on its entries in turn.
// Entries that are not themselves archives are skipped unless they match r.match.
func (r *runner) each(name string, ch al.Chunk, depth int, fn func(string, al.Chunk, int) error) error {
	if err := fn(name, ch, depth); err != nil {
		return err
	}
	a, ok := ch.(*al.Archive)
	if !ok {
		return nil
	}
	for e, err := range a.Entries() {
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, nested := e.Content.(*al.Archive); !nested && r.match != "" && !doublestar.MatchUnvalidated(r.match, e.Name) {
			continue
		}
		if err := r.each(name+"/"+e.Name, e.Content, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
