package driver

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/eth-easl/memanomaly/pkg/common"
	"github.com/eth-easl/memanomaly/pkg/generator"
	"github.com/eth-easl/memanomaly/pkg/metric"
	"github.com/eth-easl/memanomaly/pkg/workload"
)

// WorkerModeFlag is the first argument that switches the binary into worker mode.
const WorkerModeFlag = "-worker"

type MemoryScraper func(pid int) (metric.MemoryUsage, error)

// WorkerCommandFactory builds the command of one worker from its arguments.
type WorkerCommandFactory func(args []string) *exec.Cmd

type MonitorConfiguration struct {
	// PollInterval is slept between two polls. Zero spins.
	PollInterval time.Duration
	// WorkerTimeout kills workers that outlive it. Zero waits forever.
	WorkerTimeout time.Duration

	// CalibrationWorkers is the number of empty workers the baseline is taken from.
	CalibrationWorkers int

	WorkerCommand WorkerCommandFactory
	Scraper       MemoryScraper
}

type TrialResult struct {
	Request workload.Request

	// Measurements in pages
	PeakPages uint64
	NetPages  uint64

	Polls    int
	Duration time.Duration

	// Report is nil when the worker did not print a decodable report.
	Report *workload.Report
}

// MemoryMonitor runs one worker at a time and records its peak data pages.
type MemoryMonitor struct {
	baseline uint64
	config   MonitorConfiguration
}

// SelfWorkerCommand re-executes the running binary in worker mode.
func SelfWorkerCommand(args []string) *exec.Cmd {
	executable, err := os.Executable()
	if err != nil {
		executable = os.Args[0]
	}

	return exec.Command(executable, append([]string{WorkerModeFlag}, args...)...)
}

// NewMemoryMonitor calibrates the baseline before any trial runs: it starts
// CalibrationWorkers workers that allocate nothing and keeps the median of
// their peak data pages. Workers do not inherit the monitor's memory, so
// the baseline has to come from a worker.
func NewMemoryMonitor(ctx context.Context, config MonitorConfiguration) (*MemoryMonitor, error) {
	if config.WorkerCommand == nil {
		config.WorkerCommand = SelfWorkerCommand
	}
	if config.Scraper == nil {
		config.Scraper = metric.ScrapeMemoryUsage
	}
	if config.CalibrationWorkers <= 0 {
		config.CalibrationWorkers = common.DefaultCalibrationWorkers
	}

	m := &MemoryMonitor{config: config}
	if err := m.calibrate(ctx); err != nil {
		return nil, err
	}

	log.Infof("Baseline memory usage of a worker: %d data pages", m.baseline)
	return m, nil
}

func (m *MemoryMonitor) calibrate(ctx context.Context) error {
	peaks := make([]float64, 0, m.config.CalibrationWorkers)

	for i := 0; i < m.config.CalibrationWorkers; i++ {
		result, err := m.RunTrial(ctx, workload.Request{
			Assignment:   generator.Assignment{Distribution: common.FirstDistribution},
			HoldDuration: common.DefaultHoldDuration,
		})
		if err != nil {
			return common.NewError(common.ConfigError, err, "calibration worker %d failed", i)
		}
		if result.PeakPages == 0 {
			return common.NewError(common.ConfigError, nil, "no memory reading from calibration worker %d", i)
		}

		peaks = append(peaks, float64(result.PeakPages))
	}

	sort.Float64s(peaks)
	m.baseline = uint64(stat.Quantile(0.5, stat.Empirical, peaks, nil))

	log.Debugf("Calibration peaks (pages): %v", peaks)
	return nil
}

func (m *MemoryMonitor) Baseline() uint64 {
	return m.baseline
}

// RunTrial starts a worker for req and polls its memory usage until it exits.
func (m *MemoryMonitor) RunTrial(ctx context.Context, req workload.Request) (*TrialResult, error) {
	if m.config.WorkerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.WorkerTimeout)
		defer cancel()
	}

	var stdout bytes.Buffer
	cmd := m.config.WorkerCommand(workload.Arguments(req))
	cmd.Stdout = &stdout
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, common.NewError(common.SpawnError, err, "unable to start worker for trial %d", req.Assignment.Iteration)
	}

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	pid := cmd.Process.Pid
	peak, polls := uint64(0), 0

	for running := true; running; {
		select {
		case err := <-exited:
			// Only termination matters, not how the worker exited.
			if err != nil {
				log.Debugf("Worker %d (trial %d) exited: %v", pid, req.Assignment.Iteration, err)
			}
			running = false
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			<-exited
			return nil, common.NewError(common.SpawnError, ctx.Err(),
				"worker %d (trial %d) did not finish", pid, req.Assignment.Iteration)
		default: //* Non-blocking.
			usage, err := m.config.Scraper(pid)
			polls++
			// The worker may not be set up yet or may be gone already.
			if err == nil && usage.Data > peak {
				peak = usage.Data
			}
			if m.config.PollInterval > 0 {
				time.Sleep(m.config.PollInterval)
			}
		}
	}

	result := &TrialResult{
		Request:   req,
		PeakPages: peak,
		NetPages:  m.netPages(peak),
		Polls:     polls,
		Duration:  time.Since(start),
	}

	if stdout.Len() > 0 {
		report, err := workload.DecodeReport(stdout.Bytes())
		if err != nil {
			log.Warnf("Cannot decode report of trial %d: %v", req.Assignment.Iteration, err)
		} else {
			result.Report = &report
		}
	}

	log.Tracef("%s: %d polls, peak %d pages, net %d pages", req, polls, peak, result.NetPages)
	return result, nil
}

func (m *MemoryMonitor) netPages(peak uint64) uint64 {
	if peak < m.baseline {
		return 0
	}
	return peak - m.baseline
}
