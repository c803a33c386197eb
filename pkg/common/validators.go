package common

import (
	"math"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

func CheckPath(path string) {
	if path == "" {
		return
	}
	_, err := os.Stat(path)
	if err != nil {
		log.Fatal(err)
	}
}

// EnsureParentDirectory creates the directory a file is about to be written to.
func EnsureParentDirectory(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

func IsWholeNumber(value float64) bool {
	return !math.IsInf(value, 0) && !math.IsNaN(value) && value == math.Trunc(value)
}

func IsFinite(value float64) bool {
	return !math.IsInf(value, 0) && !math.IsNaN(value)
}
