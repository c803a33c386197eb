package metric

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/eth-easl/memanomaly/pkg/common"
)

// PlotTrials renders net memory per trial, split into training readings and
// readings the classifier accepted or rejected.
func PlotTrials(records []TrialRecord, outputPath string) error {
	if len(records) == 0 {
		return errors.New("no trial records to plot")
	}

	var training, inClass, outOfClass plotter.XYs
	for _, record := range records {
		point := plotter.XY{X: float64(record.Trial), Y: float64(record.NetPages)}

		switch {
		case record.Phase == common.TrainingPhase.String():
			training = append(training, point)
		case record.Prediction == 1:
			inClass = append(inClass, point)
		default:
			outOfClass = append(outOfClass, point)
		}
	}

	p := plot.New()
	p.Title.Text = "Worker peak memory"
	p.X.Label.Text = "Child process"
	p.Y.Label.Text = "Mem. usage (pages)"
	p.Y.Min = 0
	p.Legend.Top = true

	var series []interface{}
	for _, s := range []struct {
		name string
		xys  plotter.XYs
	}{
		{name: "training", xys: training},
		{name: "in class", xys: inClass},
		{name: "out of class", xys: outOfClass},
	} {
		if len(s.xys) > 0 {
			series = append(series, s.name, s.xys)
		}
	}

	if err := plotutil.AddScatters(p, series...); err != nil {
		return errors.Wrap(err, "cannot add scatter series")
	}

	if err := common.EnsureParentDirectory(outputPath); err != nil {
		return errors.Wrapf(err, "cannot create directory for %s", outputPath)
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, outputPath); err != nil {
		return errors.Wrapf(err, "cannot save figure to %s", outputPath)
	}

	log.Debugf("Plotted %d trials to %s", len(records), outputPath)
	return nil
}
