package driver

import (
	"context"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/eth-easl/memanomaly/pkg/classifier"
	"github.com/eth-easl/memanomaly/pkg/common"
	"github.com/eth-easl/memanomaly/pkg/config"
	"github.com/eth-easl/memanomaly/pkg/generator"
	mc "github.com/eth-easl/memanomaly/pkg/metric"
	"github.com/eth-easl/memanomaly/pkg/workload"
)

// TrialRunner executes a single worker and measures it.
type TrialRunner interface {
	RunTrial(ctx context.Context, req workload.Request) (*TrialResult, error)
}

type DriverConfiguration struct {
	MonitorConfiguration *config.MonitorConfiguration
	Controller           *generator.DistributionController
	Runner               TrialRunner

	// Optional, a Gaussian classifier with the configured threshold otherwise.
	Classifier classifier.OneClassClassifier
	// Optional, a random UUID otherwise.
	RunID string
}

type Driver struct {
	Configuration *DriverConfiguration

	classifier  classifier.OneClassClassifier
	statistics  *mc.ConfusionMatrix
	exporter    *mc.Exporter
	metrics     *mc.MonitorMetrics
	trainingSet []float64
}

// Summary is the outcome of a completed experiment.
type Summary struct {
	RunID      string
	Statistics *mc.ConfusionMatrix
	Model      classifier.Model
	Readings   []mc.ReadingSummary

	TrialsFile  string
	FigureFile  string
	MetricsFile string
}

func NewDriver(driverConfig *DriverConfiguration) *Driver {
	if driverConfig.RunID == "" {
		driverConfig.RunID = uuid.New().String()
	}

	clf := driverConfig.Classifier
	if clf == nil {
		clf = classifier.NewGaussianClassifier(driverConfig.MonitorConfiguration.ZScoreThreshold)
	}

	return &Driver{
		Configuration: driverConfig,
		classifier:    clf,
		statistics:    mc.NewConfusionMatrix(),
		exporter:      mc.NewExporter(),
		metrics:       mc.NewMonitorMetrics(driverConfig.RunID),
		trainingSet:   make([]float64, 0, driverConfig.MonitorConfiguration.TrainingTrials),
	}
}

/////////////////////////////////////////
// DRIVER LOGIC
/////////////////////////////////////////

// RunExperiment runs all trials sequentially: the first TrainingTrials train
// the classifier and every later trial is classified. Any error aborts the
// experiment and no summary is returned.
func (d *Driver) RunExperiment(ctx context.Context) (summary *Summary, err error) {
	cfg := d.Configuration.MonitorConfiguration
	d.warnOnMixedTraining()

	sink, err := mc.OpenDataSink(cfg.DataPath)
	if err != nil {
		return nil, err
	}

	var plotter *RealtimePlotter
	if cfg.EnablePlotter {
		plotter = StartRealtimePlotter(cfg.PlotterCommand, sink.Path())
	}

	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}

		if err != nil {
			plotter.Kill()
			summary = nil
		} else {
			plotter.Release()
		}
	}()

	log.Infof("Starting experiment %s: %d trials, %d for training", d.Configuration.RunID, cfg.TotalTrials, cfg.TrainingTrials)

	for trial := 0; trial < cfg.TotalTrials; trial++ {
		if err = d.runTrial(ctx, trial, sink); err != nil {
			return nil, err
		}
	}

	return d.finish()
}

func (d *Driver) runTrial(ctx context.Context, trial int, sink *mc.DataSink) error {
	cfg := d.Configuration.MonitorConfiguration

	assignment, err := d.Configuration.Controller.NextDistributionParams()
	if err != nil {
		return err
	}

	req := workload.Request{
		Assignment:   assignment,
		HoldDuration: cfg.HoldDuration(),
	}

	result, err := d.Configuration.Runner.RunTrial(ctx, req)
	if err != nil {
		return err
	}

	record := mc.TrialRecord{
		RunID:        d.Configuration.RunID,
		Trial:        trial,
		Distribution: assignment.Distribution.String(),
		Mean:         assignment.Mean,
		StdDev:       assignment.StdDev,
		PeakPages:    result.PeakPages,
		NetPages:     result.NetPages,
		Polls:        result.Polls,
	}
	if result.Report != nil {
		record.RequestedPages = result.Report.RequestedPages
		record.Allocated = result.Report.Allocated
	}

	reading := float64(result.NetPages)

	if trial < cfg.TrainingTrials {
		record.Phase = common.TrainingPhase.String()
		record.Prediction = common.TrainingMarker

		d.trainingSet = append(d.trainingSet, reading)
		if trial == cfg.TrainingTrials-1 {
			if err := d.classifier.Train(d.trainingSet); err != nil {
				return err
			}
			d.trainingSet = nil
			log.Infof("Training finished after %d trials", cfg.TrainingTrials)
		}
	} else {
		record.Phase = common.ClassificationPhase.String()

		inClass, err := d.classifier.Classify(reading)
		if err != nil {
			return err
		}

		actual := assignment.Distribution == common.FirstDistribution
		d.statistics.Record(actual, inClass)
		d.metrics.ObserveOutcome(actual, inClass)

		if inClass {
			record.Prediction = 1
		}
	}

	if err := sink.WriteTrial(trial, result.NetPages, record.Prediction); err != nil {
		return err
	}

	d.exporter.ReportTrial(record)
	d.metrics.ObserveTrial(record)

	log.Debugf("Trial %d (%s, %s): net %d pages, prediction %d",
		trial, record.Phase, record.Distribution, record.NetPages, record.Prediction)
	return nil
}

func (d *Driver) finish() (*Summary, error) {
	cfg := d.Configuration.MonitorConfiguration
	records := d.exporter.Records()

	summary := &Summary{
		RunID:      d.Configuration.RunID,
		Statistics: d.statistics,
		Readings:   mc.SummarizeReadings(records),
	}
	if trained, ok := d.classifier.(interface{ Model() (classifier.Model, bool) }); ok {
		summary.Model, _ = trained.Model()
	}

	trialsFile, err := d.exporter.FinishAndSave(cfg.OutputPathPrefix)
	if err != nil {
		return nil, err
	}
	summary.TrialsFile = trialsFile

	if cfg.RenderFigure {
		figureFile := cfg.OutputPathPrefix + "_trials.png"
		if err := mc.PlotTrials(records, figureFile); err != nil {
			log.Warnf("Failed to render %s: %v", figureFile, err)
		} else {
			summary.FigureFile = figureFile
		}
	}

	if cfg.MetricsTextfilePath != "" {
		if err := d.metrics.WriteToTextfile(cfg.MetricsTextfilePath); err != nil {
			return nil, err
		}
		summary.MetricsFile = cfg.MetricsTextfilePath
	}

	return summary, nil
}

func (d *Driver) warnOnMixedTraining() {
	state, err := d.Configuration.Controller.State()
	if err != nil {
		log.Debugf("Cannot read distribution state before the first trial: %v", err)
		return
	}

	remaining := state.SwitchThreshold - state.Iteration
	if remaining < int64(d.Configuration.MonitorConfiguration.TrainingTrials) {
		log.Warnf("Distribution switches after %d trials, training will include samples of %s",
			remaining, common.SecondDistribution)
	}
}
