package metric

import (
	"fmt"
	"os"

	"github.com/eth-easl/memanomaly/pkg/common"
)

// DataSink appends one "trial reading prediction" line per trial. Lines are
// written through immediately so a live plotter tailing the file sees them.
type DataSink struct {
	path string
	file *os.File
}

// OpenDataSink creates or truncates the data file.
func OpenDataSink(path string) (*DataSink, error) {
	if err := common.EnsureParentDirectory(path); err != nil {
		return nil, common.NewError(common.SinkError, err, "cannot create directory for %s", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, common.NewError(common.SinkError, err, "unable to open %s", path)
	}

	return &DataSink{path: path, file: file}, nil
}

func (s *DataSink) Path() string {
	return s.path
}

func (s *DataSink) WriteTrial(trial int, reading uint64, prediction int) error {
	if s.file == nil {
		return common.NewError(common.SinkError, os.ErrClosed, "unable to write to %s", s.path)
	}

	if _, err := fmt.Fprintf(s.file, "%d %d %d\n", trial, reading, prediction); err != nil {
		return common.NewError(common.SinkError, err, "unable to write to %s", s.path)
	}
	return nil
}

func (s *DataSink) Close() error {
	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil
	if err != nil {
		return common.NewError(common.SinkError, err, "unable to close %s", s.path)
	}
	return nil
}
