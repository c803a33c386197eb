package metric

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eth-easl/memanomaly/pkg/common"
)

func testRecords() []TrialRecord {
	return []TrialRecord{
		{RunID: "run", Trial: 0, Phase: "training", Distribution: "D1", Mean: 100, StdDev: 5, RequestedPages: 101, PeakPages: 1101, NetPages: 101, Polls: 812, Allocated: true, Prediction: 1},
		{RunID: "run", Trial: 1, Phase: "classification", Distribution: "D1", Mean: 100, StdDev: 5, RequestedPages: 97, PeakPages: 1097, NetPages: 97, Polls: 790, Allocated: true, Prediction: 1},
		{RunID: "run", Trial: 2, Phase: "classification", Distribution: "D2", Mean: 500, StdDev: 5, RequestedPages: 503, PeakPages: 1503, NetPages: 503, Polls: 801, Allocated: true, Prediction: 0},
	}
}

func TestExporterFinishAndSave(t *testing.T) {
	exporter := NewExporter()
	for _, record := range testRecords() {
		exporter.ReportTrial(record)
	}
	assert.Equal(t, 3, exporter.GetTrialRecordLen())

	prefix := filepath.Join(t.TempDir(), "out", "experiment")
	fileName, err := exporter.FinishAndSave(prefix)
	require.NoError(t, err)
	assert.Equal(t, prefix+"_trials.csv", fileName)

	content, err := os.ReadFile(fileName)
	require.NoError(t, err)
	header := strings.SplitN(string(content), "\n", 2)[0]
	assert.Equal(t, "runID,trial,phase,distribution,mean,stddev,requestedPages,peakPages,netPages,polls,allocated,prediction", header)

	records, err := ReadTrialRecords(fileName)
	require.NoError(t, err)
	assert.Equal(t, testRecords(), records)
}

func TestExporterUnwritableOutput(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := NewExporter().FinishAndSave(filepath.Join(blocker, "experiment"))
	assert.True(t, errors.Is(err, common.ErrSink))
}

func TestDataSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "mem.data")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("stale content\n"), 0644))

	sink, err := OpenDataSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.WriteTrial(0, 120, 1))
	require.NoError(t, sink.WriteTrial(1, 480, 0))
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close(), "closing twice is harmless")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0 120 1\n1 480 0\n", string(content))

	err = sink.WriteTrial(2, 1, 1)
	assert.True(t, errors.Is(err, common.ErrSink))
}
