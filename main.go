// Command alfuel decodes the AL asset chunks found in a mobile game's bundles.
//
// Usage:
//
//	alfuel [flags] path...
//
// Each path is a bundle file or a directory to search for them. By default a
// tree of the decoded chunks is printed. With -o the chunks are extracted
// instead: tables and other structured chunks as JSON, images as PNG, text
// as text and everything else as it was found.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/elliotnunn/alfuel/internal/al"
	"github.com/elliotnunn/alfuel/internal/blobcache"
)

func main() {
	var (
		files    = flag.String("files", "", "only decode files in directories that match `pattern`")
		match    = flag.String("match", "", "only show archive entries whose names match `pattern`")
		outDir   = flag.String("o", "", "extract into `dir` instead of printing a tree")
		jobs     = flag.Int("j", runtime.NumCPU(), "decode `n` files at once")
		cacheDir = flag.String("cache", defaultCacheDir(), "keep inflated chunks in a database in `dir`")
		verbose  = flag.Bool("v", false, "log every decoding decision")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] path...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() == 0 || *jobs < 1 {
		flag.Usage()
		os.Exit(2)
	}
	for _, p := range []string{*files, *match} {
		if p != "" && !doublestar.ValidatePattern(p) {
			fmt.Fprintf(os.Stderr, "bad pattern: %q\n", p)
			os.Exit(2)
		}
	}

	cache := blobcache.New(cacheBudget)
	if *cacheDir != "" {
		var err error
		cache, err = blobcache.Open(cacheBudget, *cacheDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	r := &runner{
		dec:    &al.Decoder{Cache: cache},
		files:  *files,
		match:  *match,
		outDir: *outDir,
		out:    os.Stdout,
	}
	r.run(flag.Args(), *jobs)

	if err := cache.Close(); err != nil {
		slog.Error("cacheCloseError", "err", err)
	}
	if r.failed.Load() {
		os.Exit(1)
	}
}
