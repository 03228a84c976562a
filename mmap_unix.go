//go:build unix

package main

import (
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// readFile maps a file into memory. The data is valid until release is called.
func readFile(name string) (data []byte, release func(), err error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size == 0 || int64(int(size)) != size {
		return slurp(name)
	}

	data, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		slog.Debug("mmapFallback", "path", name, "err", err)
		return slurp(name)
	}
	return data, func() { unix.Munmap(data) }, nil
}

func slurp(name string) ([]byte, func(), error) {
	data, err := os.ReadFile(name)
	return data, func() {}, err
}
