package driver

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eth-easl/memanomaly/pkg/common"
	"github.com/eth-easl/memanomaly/pkg/config"
	"github.com/eth-easl/memanomaly/pkg/generator"
	"github.com/eth-easl/memanomaly/pkg/metric"
	"github.com/eth-easl/memanomaly/pkg/workload"
)

// stubRunner answers trials with readings chosen by the test.
type stubRunner struct {
	reading func(trial int, req workload.Request) (uint64, error)
	trials  int
}

func (r *stubRunner) RunTrial(_ context.Context, req workload.Request) (*TrialResult, error) {
	trial := r.trials
	r.trials++

	pages, err := r.reading(trial, req)
	if err != nil {
		return nil, err
	}

	return &TrialResult{
		Request:   req,
		PeakPages: pages + 1000,
		NetPages:  pages,
		Polls:     3,
		Report: &workload.Report{
			Iteration:      req.Assignment.Iteration,
			Distribution:   req.Assignment.Distribution.String(),
			RequestedPages: pages,
			Allocated:      true,
		},
	}, nil
}

// Distribution one cycles through 95, 100 and 105 pages, distribution two reads 500.
func separableReadings(trial int, req workload.Request) (uint64, error) {
	if req.Assignment.Distribution == common.SecondDistribution {
		return 500, nil
	}
	return uint64(95 + 5*(trial%3)), nil
}

func createTestConfiguration(t *testing.T, total, training int) *config.MonitorConfiguration {
	dir := t.TempDir()

	cfg := config.DefaultConfiguration()
	cfg.TotalTrials = total
	cfg.TrainingTrials = training
	cfg.HoldDurationMilli = 0
	cfg.DistributionStatePath = filepath.Join(dir, "dist.info")
	cfg.DataPath = filepath.Join(dir, "mem.data")
	cfg.OutputPathPrefix = filepath.Join(dir, "out", "experiment")
	cfg.RenderFigure = false

	return &cfg
}

func createTestDriver(t *testing.T, cfg *config.MonitorConfiguration, threshold float64, runner TrialRunner) *Driver {
	controller, err := generator.InitializeDistributionController(cfg.DistributionStatePath,
		[]float64{threshold, 100, 5, 500, 5})
	require.NoError(t, err)

	return NewDriver(&DriverConfiguration{
		MonitorConfiguration: cfg,
		Controller:           controller,
		Runner:               runner,
		RunID:                "test-run",
	})
}

func readDataLines(t *testing.T, path string) []string {
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestRunExperimentRoutesTrainingAndClassification(t *testing.T) {
	cfg := createTestConfiguration(t, 40, 9)
	cfg.RenderFigure = true
	cfg.MetricsTextfilePath = filepath.Join(filepath.Dir(cfg.DataPath), "metrics.prom")

	driver := createTestDriver(t, cfg, 25, &stubRunner{reading: separableReadings})

	summary, err := driver.RunExperiment(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, "test-run", summary.RunID)
	assert.Equal(t, 16.0, summary.Statistics.TruePositive)
	assert.Equal(t, 15.0, summary.Statistics.TrueNegative)
	assert.Equal(t, 0.0, summary.Statistics.FalsePositive)
	assert.Equal(t, 0.0, summary.Statistics.FalseNegative)
	assert.Equal(t, "1.00000000", summary.Statistics.Accuracy().String())
	assert.Equal(t, "1.00000000", summary.Statistics.F1().String())

	assert.InDelta(t, 100, summary.Model.Mean, 1e-9)
	assert.InDelta(t, 4.0824829, summary.Model.StdDev, 1e-6)

	lines := readDataLines(t, cfg.DataPath)
	require.Len(t, lines, 40)
	assert.Equal(t, "0 95 1", lines[0])
	assert.Equal(t, "8 105 1", lines[8])
	assert.Equal(t, "9 95 1", lines[9])
	assert.Equal(t, "10 100 1", lines[10])
	assert.Equal(t, "24 95 1", lines[24])
	assert.Equal(t, "25 500 0", lines[25])
	assert.Equal(t, "39 500 0", lines[39])

	records, err := metric.ReadTrialRecords(summary.TrialsFile)
	require.NoError(t, err)
	require.Len(t, records, 40)
	assert.Equal(t, "training", records[0].Phase)
	assert.Equal(t, "training", records[8].Phase)
	assert.Equal(t, "classification", records[9].Phase)
	assert.Equal(t, "D2", records[25].Distribution)
	assert.Equal(t, uint64(1500), records[25].PeakPages)

	require.Len(t, summary.Readings, 2)
	assert.Equal(t, 25, summary.Readings[0].Count)
	assert.Equal(t, 15, summary.Readings[1].Count)

	assert.FileExists(t, summary.FigureFile)
	assert.FileExists(t, summary.MetricsFile)

	state, err := driver.Configuration.Controller.State()
	require.NoError(t, err)
	assert.Equal(t, int64(40), state.Iteration)
}

func TestRunExperimentOnlyTraining(t *testing.T) {
	cfg := createTestConfiguration(t, 6, 6)
	driver := createTestDriver(t, cfg, 250, &stubRunner{reading: separableReadings})

	summary, err := driver.RunExperiment(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0.0, summary.Statistics.Total())

	var report bytes.Buffer
	require.NoError(t, WriteReport(&report, summary.Statistics))
	assert.Contains(t, report.String(), "Accuracy  = undefined\n")
	assert.Contains(t, report.String(), "F1-score  = undefined\n")
}

func TestRunExperimentConstantTrainingReadings(t *testing.T) {
	cfg := createTestConfiguration(t, 20, 5)
	driver := createTestDriver(t, cfg, 250, &stubRunner{
		reading: func(int, workload.Request) (uint64, error) { return 0, nil },
	})

	summary, err := driver.RunExperiment(context.Background())
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, common.ErrTraining)

	// Nothing past training is measured or exported.
	assert.Len(t, readDataLines(t, cfg.DataPath), 4)
	assert.NoFileExists(t, cfg.OutputPathPrefix+"_trials.csv")
}

func TestRunExperimentRunnerFailure(t *testing.T) {
	cfg := createTestConfiguration(t, 20, 5)
	driver := createTestDriver(t, cfg, 250, &stubRunner{
		reading: func(trial int, req workload.Request) (uint64, error) {
			if trial == 7 {
				return 0, common.NewError(common.SpawnError, nil, "fork failed")
			}
			return separableReadings(trial, req)
		},
	})

	summary, err := driver.RunExperiment(context.Background())
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, common.ErrSpawn)

	state, err := driver.Configuration.Controller.State()
	require.NoError(t, err)
	assert.Equal(t, int64(8), state.Iteration)
	assert.Len(t, readDataLines(t, cfg.DataPath), 7)
}

func TestRunExperimentUnwritableDataPath(t *testing.T) {
	cfg := createTestConfiguration(t, 20, 5)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	cfg.DataPath = filepath.Join(blocker, "mem.data")

	runner := &stubRunner{reading: separableReadings}
	driver := createTestDriver(t, cfg, 250, runner)

	summary, err := driver.RunExperiment(context.Background())
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, common.ErrSink)
	assert.Equal(t, 0, runner.trials)
}

func TestRunExperimentMissingState(t *testing.T) {
	cfg := createTestConfiguration(t, 20, 5)
	driver := NewDriver(&DriverConfiguration{
		MonitorConfiguration: cfg,
		Controller:           generator.NewDistributionController(cfg.DistributionStatePath),
		Runner:               &stubRunner{reading: separableReadings},
	})

	assert.NotEmpty(t, driver.Configuration.RunID)

	hook := logtest.NewGlobal()
	defer hook.Reset()
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(level)

	_, err := driver.RunExperiment(context.Background())
	assert.ErrorIs(t, err, common.ErrConfig)

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == log.DebugLevel && strings.Contains(entry.Message, "Cannot read distribution state") {
			logged = true
		}
	}
	assert.True(t, logged, "unreadable state is not logged")
}

func TestWriteReport(t *testing.T) {
	statistics := metric.NewConfusionMatrix()
	statistics.Record(true, true)
	statistics.Record(true, false)
	statistics.Record(false, false)
	statistics.Record(false, false)

	var report bytes.Buffer
	require.NoError(t, WriteReport(&report, statistics))

	output := report.String()
	assert.True(t, strings.HasPrefix(output, statistics.RenderConfusionMatrix()))
	assert.Contains(t, output, "Accuracy  = 0.75000000\n")
	assert.Contains(t, output, "Recall    = 0.50000000\n")
	assert.Contains(t, output, "Precision = 1.00000000\n")
	assert.Contains(t, output, "F1-score  = 0.66666667\n")
}

func TestRunExperimentWithWorkers(t *testing.T) {
	skipWithoutProc(t)

	cfg := createTestConfiguration(t, 10, 4)
	cfg.HoldDurationMilli = 50

	controller, err := generator.InitializeDistributionController(cfg.DistributionStatePath,
		[]float64{6, 100, 5, 500, 5})
	require.NoError(t, err)

	monitor := newTestMonitor(t, MonitorConfiguration{})
	driver := NewDriver(&DriverConfiguration{
		MonitorConfiguration: cfg,
		Controller:           controller,
		Runner:               monitor,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	summary, err := driver.RunExperiment(ctx)
	require.NoError(t, err)

	assert.Equal(t, 6.0, summary.Statistics.Total())
	assert.Equal(t, 4.0, summary.Statistics.TrueNegative)
	assert.Equal(t, 0.0, summary.Statistics.FalsePositive)
	assert.Equal(t, 2.0, summary.Statistics.TruePositive+summary.Statistics.FalseNegative)
	assert.Len(t, readDataLines(t, cfg.DataPath), 10)

	assert.InDelta(t, 100, summary.Model.Mean, 40)
	require.Len(t, summary.Readings, 2)
	assert.InDelta(t, 100, summary.Readings[0].Mean, 40)
	assert.InDelta(t, 500, summary.Readings[1].Mean, 40)
}

func TestRealtimePlotter(t *testing.T) {
	args := plotterArguments("data/mem.data")
	assert.Equal(t, "data/mem.data", args[0])
	assert.Contains(t, args, "Mem. Usage (pages)")

	assert.Nil(t, StartRealtimePlotter(filepath.Join(t.TempDir(), "missing-plotter"), "data/mem.data"))

	var missing *RealtimePlotter
	missing.Kill()
	missing.Release()

	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep is not available")
	}
	// sleep rejects the plotter arguments and exits on its own.
	plotter := StartRealtimePlotter("sleep", "1")
	require.NotNil(t, plotter)
	plotter.Kill()
}
