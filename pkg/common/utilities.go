package common

import (
	"math"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

func PageSize() int {
	return unix.Getpagesize()
}

func Pages2b(numPages uint64) uint64 {
	return numPages * uint64(PageSize())
}

func B2Pages(numB uint64) uint64 {
	return numB / uint64(PageSize())
}

func B2Kib(numB uint64) uint64 {
	return numB / 1024
}

func Pages2Mib(numPages uint64) float64 {
	return float64(Pages2b(numPages)) / (1024 * 1024)
}

// PageCount truncates a sampled page count to a whole number of pages.
// Negative and non-finite draws become zero.
func PageCount(sample float64) uint64 {
	if math.IsNaN(sample) || sample <= 0 {
		return 0
	}
	if sample >= math.MaxInt64 {
		return math.MaxInt64
	}
	return uint64(sample)
}

func Check(e error) {
	if e != nil {
		log.Fatal(e)
	}
}

func IsStringInList(s string, list []string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
