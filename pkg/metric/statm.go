package metric

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// procRoot is the mount point for the proc filesystem
var procRoot = "/proc"

// MemoryUsage mirrors /proc/[pid]/statm. All values are in pages.
type MemoryUsage struct {
	Size     uint64 // total program size
	Resident uint64 // resident set size
	Shared   uint64 // resident shared pages
	Text     uint64 // code
	Lib      uint64 // unused since Linux 2.6
	Data     uint64 // data + stack
	Dirty    uint64 // unused since Linux 2.6
}

// ScrapeMemoryUsage reads the current memory usage of process pid. It fails
// when the process does not exist (yet, or any more).
func ScrapeMemoryUsage(pid int) (MemoryUsage, error) {
	// /proc/[pid]/statm looks like this:
	// size resident shared text lib data dt
	// 1364 294 252 5 0 128 0
	content, err := os.ReadFile(filepath.Join(procRoot, strconv.Itoa(pid), "statm"))
	if err != nil {
		return MemoryUsage{}, err
	}

	return parseStatm(string(content))
}

func parseStatm(content string) (MemoryUsage, error) {
	fields := strings.Fields(content)
	if len(fields) < 7 {
		return MemoryUsage{}, fmt.Errorf("statm has %d fields, expected 7", len(fields))
	}

	values := make([]uint64, 7)
	for i := range values {
		v, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			return MemoryUsage{}, fmt.Errorf("invalid statm field %d %q: %w", i, fields[i], err)
		}
		values[i] = v
	}

	return MemoryUsage{
		Size:     values[0],
		Resident: values[1],
		Shared:   values[2],
		Text:     values[3],
		Lib:      values[4],
		Data:     values[5],
		Dirty:    values[6],
	}, nil
}
