package classifier

import (
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/eth-easl/memanomaly/pkg/common"
)

// OneClassClassifier is trained once on in-class samples and then decides
// membership of every later sample.
type OneClassClassifier interface {
	Train(samples []float64) error
	Classify(sample float64) (bool, error)
}

// Model is the fitted Gaussian. It is never modified after training.
type Model struct {
	Mean   float64
	StdDev float64
}

// ZScore returns how many standard deviations the sample lies above the mean.
func (m Model) ZScore(sample float64) float64 {
	return (sample - m.Mean) / m.StdDev
}

// GaussianClassifier accepts a sample when its z-score is at most Threshold.
// Only upward deviations are rejected.
type GaussianClassifier struct {
	Threshold float64

	model *Model
}

func NewGaussianClassifier(threshold float64) *GaussianClassifier {
	return &GaussianClassifier{Threshold: threshold}
}

// Train fits mean and population standard deviation (divide by N).
func (c *GaussianClassifier) Train(samples []float64) error {
	if c.model != nil {
		return common.NewError(common.StateError, nil, "classifier is already trained")
	}
	if len(samples) == 0 {
		return common.NewError(common.TrainingError, nil, "empty training set")
	}

	mean, stddev := stat.PopMeanStdDev(samples, nil)
	if math.IsNaN(mean) || math.IsNaN(stddev) {
		return common.NewError(common.TrainingError, nil, "training set contains non-numeric samples")
	}
	if stddev == 0 {
		return common.NewError(common.TrainingError, nil,
			"all %d training samples equal %g, standard deviation is zero", len(samples), mean)
	}

	c.model = &Model{Mean: mean, StdDev: stddev}
	log.Infof("Trained one-class classifier on %d samples: mean=%.3f stddev=%.3f", len(samples), mean, stddev)

	return nil
}

func (c *GaussianClassifier) Classify(sample float64) (bool, error) {
	if c.model == nil {
		return false, common.NewError(common.StateError, nil, "classify called before train")
	}

	z := c.model.ZScore(sample)
	log.Tracef("Sample %g has z-score %.4f", sample, z)

	return z <= c.Threshold, nil
}

func (c *GaussianClassifier) IsTrained() bool {
	return c.model != nil
}

// Model returns the fitted model, or false before training.
func (c *GaussianClassifier) Model() (Model, bool) {
	if c.model == nil {
		return Model{}, false
	}
	return *c.model, true
}
