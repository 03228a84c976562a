package main

import (
	"math"
	"os"
	"strconv"
)

var cacheBudget int = calcCacheBudget()

func calcCacheBudget() int {
	n, err := parseMegabytes(os.Getenv("ALFUEL_CACHE_MB"))
	if err != nil {
		panic("malformed ALFUEL_CACHE_MB environment variable, should be a number of megabytes: " + err.Error())
	}
	return n
}

// parseMegabytes returns a byte count, falling back on 256 MiB for an empty string.
func parseMegabytes(e string) (int, error) {
	if e == "" {
		return 256 * 1024 * 1024, nil
	}
	f, err := strconv.ParseFloat(e, 64)
	if err == nil && (math.IsNaN(f) || math.IsInf(f, 0) || f < 0) {
		err = strconv.ErrRange
	}
	if err != nil {
		return 0, err
	}
	return int(f * 1024 * 1024), nil
}

// defaultCacheDir enables the on-disk cache without a command line flag.
func defaultCacheDir() string {
	return os.Getenv("ALFUEL_CACHE_DIR")
}
