package config

import (
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/eth-easl/memanomaly/pkg/common"
)

// DefaultConfiguration is used for every field a configuration file leaves out.
func DefaultConfiguration() MonitorConfiguration {
	return MonitorConfiguration{
		TotalTrials:     common.DefaultTotalTrials,
		TrainingTrials:  common.DefaultTrainingTrials,
		ZScoreThreshold: common.ZScoreThreshold,

		HoldDurationMilli:    int(common.DefaultHoldDuration / time.Millisecond),
		PollIntervalMicro:    0,
		WorkerTimeoutSeconds: 0,
		CalibrationWorkers:   common.DefaultCalibrationWorkers,

		DistributionStatePath: common.DefaultDistributionStatePath,
		DataPath:              common.DefaultDataPath,
		OutputPathPrefix:      common.DefaultOutputPathPrefix,

		EnablePlotter:  false,
		PlotterCommand: common.DefaultPlotterCommand,
	}
}

func (c *MonitorConfiguration) HoldDuration() time.Duration {
	return time.Duration(c.HoldDurationMilli) * time.Millisecond
}

// PollInterval is zero when the monitor should spin without sleeping.
func (c *MonitorConfiguration) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMicro) * time.Microsecond
}

// WorkerTimeout is zero when workers may run indefinitely.
func (c *MonitorConfiguration) WorkerTimeout() time.Duration {
	return time.Duration(c.WorkerTimeoutSeconds) * time.Second
}

func (c *MonitorConfiguration) ClassificationTrials() int {
	return c.TotalTrials - c.TrainingTrials
}

// CheckConfiguration reports every invalid field at once.
func CheckConfiguration(c *MonitorConfiguration) error {
	var errs *multierror.Error

	if c.TrainingTrials < 1 {
		errs = multierror.Append(errs, common.NewError(common.ConfigError, nil,
			"TrainingTrials must be at least 1, got %d", c.TrainingTrials))
	}
	if c.TotalTrials < c.TrainingTrials {
		errs = multierror.Append(errs, common.NewError(common.ConfigError, nil,
			"TotalTrials (%d) must not be smaller than TrainingTrials (%d)", c.TotalTrials, c.TrainingTrials))
	}
	if !common.IsFinite(c.ZScoreThreshold) {
		errs = multierror.Append(errs, common.NewError(common.ConfigError, nil,
			"ZScoreThreshold must be a finite number"))
	}
	if c.HoldDurationMilli < 0 {
		errs = multierror.Append(errs, common.NewError(common.ConfigError, nil,
			"HoldDurationMilli must not be negative, got %d", c.HoldDurationMilli))
	}
	if c.PollIntervalMicro < 0 {
		errs = multierror.Append(errs, common.NewError(common.ConfigError, nil,
			"PollIntervalMicro must not be negative, got %d", c.PollIntervalMicro))
	}
	if c.WorkerTimeoutSeconds < 0 {
		errs = multierror.Append(errs, common.NewError(common.ConfigError, nil,
			"WorkerTimeoutSeconds must not be negative, got %d", c.WorkerTimeoutSeconds))
	}
	if c.CalibrationWorkers < 1 {
		errs = multierror.Append(errs, common.NewError(common.ConfigError, nil,
			"CalibrationWorkers must be at least 1, got %d", c.CalibrationWorkers))
	}
	if c.DistributionStatePath == "" {
		errs = multierror.Append(errs, common.NewError(common.ConfigError, nil, "DistributionStatePath is empty"))
	}
	if c.DataPath == "" {
		errs = multierror.Append(errs, common.NewError(common.ConfigError, nil, "DataPath is empty"))
	}
	if c.OutputPathPrefix == "" {
		errs = multierror.Append(errs, common.NewError(common.ConfigError, nil, "OutputPathPrefix is empty"))
	}
	if c.EnablePlotter && c.PlotterCommand == "" {
		errs = multierror.Append(errs, common.NewError(common.ConfigError, nil, "EnablePlotter is set without PlotterCommand"))
	}

	return errs.ErrorOrNil()
}
