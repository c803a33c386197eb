/*
 * MIT License
 *
 * Copyright (c) 2023 EASL and the vHive community
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package common

import "time"

const (
	// DefaultTotalTrials Number of workers spawned in a single experiment.
	DefaultTotalTrials = 1000
	// DefaultTrainingTrials Number of leading trials whose readings train the classifier.
	DefaultTrainingTrials = 250

	// DefaultHoldDuration How long a worker keeps its allocation before releasing it.
	DefaultHoldDuration = 100 * time.Millisecond
	// DefaultCalibrationWorkers Number of empty workers whose median peak is the baseline.
	DefaultCalibrationWorkers = 3

	// ZScoreThreshold Readings more than this many standard deviations above the
	// trained mean are out of class. Readings below the mean are never rejected.
	ZScoreThreshold = 3.0
)

const (
	DefaultDistributionStatePath = "data/dist.info"
	DefaultDataPath              = "data/mem.data"
	DefaultOutputPathPrefix      = "data/out/experiment"

	DefaultPlotterCommand = "/usr/bin/kst2"
)

// NumDistributionParameters threshold, mean1, stddev1, mean2, stddev2
const NumDistributionParameters = 5

type Distribution int

const (
	FirstDistribution Distribution = iota + 1
	SecondDistribution
)

func (d Distribution) String() string {
	switch d {
	case FirstDistribution:
		return "D1"
	case SecondDistribution:
		return "D2"
	default:
		return "unknown"
	}
}

type ExperimentPhase int

const (
	TrainingPhase       ExperimentPhase = 1
	ClassificationPhase ExperimentPhase = 2
)

func (p ExperimentPhase) String() string {
	if p == TrainingPhase {
		return "training"
	}
	return "classification"
}

// TrainingMarker is written as the prediction of trials that fed the training set.
const TrainingMarker = 1
