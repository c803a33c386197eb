package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/eth-easl/memanomaly/pkg/common"
	"github.com/eth-easl/memanomaly/pkg/metric"
)

var filePattern = regexp.MustCompile(`^(.+)_trials\.csv$`)

type Experiment struct {
	name    string
	records []metric.TrialRecord
}

func main() {
	var (
		inputDir   = flag.String("i", "data/out", "Path to the directory with trial CSV files")
		outputDir  = flag.String("o", "figs", "Path to the directory for output figures")
		debugLevel = flag.String("d", "info", "Debug level: info, debug")
	)
	flag.Parse()
	log.SetOutput(os.Stdout)

	switch *debugLevel {
	case "info":
		log.SetLevel(log.InfoLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
		log.Debug("Debug mode is enabled")
	}

	experiments := parseFiles(*inputDir)
	log.Infof("Found %d experiments in %s", len(experiments), *inputDir)

	plotFig(*outputDir, experiments)
}

func plotFig(outputDir string, experiments []Experiment) {
	if _, err := os.Stat(outputDir); errors.Is(err, os.ErrNotExist) {
		log.Info("Creating the output directory")
		err := os.MkdirAll(outputDir, os.ModePerm)
		if err != nil {
			log.Fatal(err)
		}
	}

	for _, experiment := range experiments {
		if err := metric.PlotTrials(experiment.records, filepath.Join(outputDir, experiment.name+".png")); err != nil {
			log.Fatal(err)
		}
	}

	p := plot.New()

	p.Title.Text = "Running accuracy"
	p.X.Label.Text = "Child process"
	p.Y.Label.Text = "Accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	var lines []interface{}
	for _, experiment := range experiments {
		if xys := getAccuracyXY(experiment.records); len(xys) > 0 {
			lines = append(lines, experiment.name, xys)
		}
	}

	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		log.Fatal(err)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(outputDir, "accuracy.png")); err != nil {
		log.Fatal(err)
	}
}

func parseFiles(inputDir string) []Experiment {
	files, err := os.ReadDir(inputDir)
	if err != nil {
		log.Fatal("Cannot open the input directory:", err)
	}

	var experiments []Experiment
	for _, file := range files {
		match := filePattern.FindStringSubmatch(file.Name())
		if match == nil {
			continue
		}

		log.Debug("Open file ", file.Name())

		records, err := metric.ReadTrialRecords(filepath.Join(inputDir, file.Name()))
		if err != nil {
			log.Fatal("Cannot parse trial records:", err)
		}
		if len(records) == 0 {
			log.Warn("Skipping empty file ", file.Name())
			continue
		}

		logReadings(match[1], records)
		experiments = append(experiments, Experiment{name: match[1], records: records})
	}

	sort.Slice(experiments, func(i, j int) bool {
		return experiments[i].name < experiments[j].name
	})

	return experiments
}

// getAccuracyXY replays the classification phase and returns the accuracy
// after every classified trial.
func getAccuracyXY(records []metric.TrialRecord) plotter.XYs {
	statistics := metric.NewConfusionMatrix()

	var pts plotter.XYs
	for _, record := range records {
		if record.Phase != common.ClassificationPhase.String() {
			continue
		}

		statistics.Record(record.Distribution == common.FirstDistribution.String(), record.Prediction == 1)
		pts = append(pts, plotter.XY{X: float64(record.Trial), Y: statistics.Accuracy().Value})
	}

	return pts
}

func logReadings(name string, records []metric.TrialRecord) {
	for _, readings := range metric.SummarizeReadings(records) {
		netPages := make([]float64, 0, readings.Count)
		for _, record := range records {
			if record.Distribution == readings.Distribution {
				netPages = append(netPages, float64(record.NetPages))
			}
		}

		log.Debugf("%s %s: mean=%.2f sd=%.2f median=%.2f", name, readings.Distribution,
			readings.Mean, readings.StdDev, median(netPages))
	}
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
