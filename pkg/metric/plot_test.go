package metric

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotTrials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figs", "trials.png")

	require.NoError(t, PlotTrials(testRecords(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlotTrialsEmpty(t *testing.T) {
	assert.Error(t, PlotTrials(nil, filepath.Join(t.TempDir(), "empty.png")))
}

func TestSummarizeReadings(t *testing.T) {
	summaries := SummarizeReadings(testRecords())
	require.Len(t, summaries, 2)

	assert.Equal(t, "D1", summaries[0].Distribution)
	assert.Equal(t, 2, summaries[0].Count)
	assert.InDelta(t, 99, summaries[0].Mean, 1e-12)
	assert.InDelta(t, 2, summaries[0].StdDev, 1e-12)
	assert.Equal(t, 97.0, summaries[0].Min)
	assert.Equal(t, 101.0, summaries[0].Max)

	assert.Equal(t, "D2", summaries[1].Distribution)
	assert.Equal(t, 1, summaries[1].Count)
	assert.Equal(t, 0.0, summaries[1].StdDev)
}
