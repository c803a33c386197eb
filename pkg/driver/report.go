package driver

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/eth-easl/memanomaly/pkg/common"
	mc "github.com/eth-easl/memanomaly/pkg/metric"
)

// WriteReport prints the confusion matrix followed by the derived scores.
func WriteReport(w io.Writer, statistics mc.Statistics) error {
	_, err := fmt.Fprintf(w, "%s\nAccuracy  = %s\nRecall    = %s\nPrecision = %s\nF1-score  = %s\n",
		statistics.RenderConfusionMatrix(),
		statistics.Accuracy(),
		statistics.Recall(),
		statistics.Precision(),
		statistics.F1(),
	)
	return err
}

// LogSummary writes the fitted model and per-distribution readings to the log.
func LogSummary(summary *Summary) {
	log.Infof("Experiment %s: model mean %.2f pages (%.2f MiB), standard deviation %.2f pages",
		summary.RunID, summary.Model.Mean, common.Pages2Mib(uint64(summary.Model.Mean)), summary.Model.StdDev)

	for _, readings := range summary.Readings {
		log.Infof("%s: %d trials, net pages mean %.2f, sd %.2f, min %.0f, max %.0f",
			readings.Distribution, readings.Count, readings.Mean, readings.StdDev, readings.Min, readings.Max)
	}

	for _, file := range []string{summary.TrialsFile, summary.FigureFile, summary.MetricsFile} {
		if file != "" {
			log.Infof("Output written to %s", file)
		}
	}
}
