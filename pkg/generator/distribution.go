package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eth-easl/memanomaly/pkg/common"
)

// DistributionConfig is the persisted state shared by all trials of an
// experiment. Workers draw from the first distribution until Iteration
// reaches SwitchThreshold and from the second one afterwards.
type DistributionConfig struct {
	Iteration       int64
	SwitchThreshold int64

	Mean1   float64
	StdDev1 float64
	Mean2   float64
	StdDev2 float64
}

// Assignment is what a single worker is told to sample from.
type Assignment struct {
	Iteration    int64
	Distribution common.Distribution
	Mean         float64
	StdDev       float64
}

// NewDistributionConfig validates the five positional parameters
// (threshold, mean1, stddev1, mean2, stddev2) and returns a config at iteration 0.
func NewDistributionConfig(params []float64) (DistributionConfig, error) {
	if len(params) != common.NumDistributionParameters {
		return DistributionConfig{}, common.NewError(common.ConfigError, nil,
			"expected %d distribution parameters (threshold mean1 stddev1 mean2 stddev2), got %d",
			common.NumDistributionParameters, len(params))
	}

	threshold := params[0]
	if !common.IsWholeNumber(threshold) || threshold < 0 {
		return DistributionConfig{}, common.NewError(common.ConfigError, nil,
			"switch threshold must be a non-negative integer, got %v", threshold)
	}

	for i, value := range params[1:] {
		if !common.IsFinite(value) {
			return DistributionConfig{}, common.NewError(common.ConfigError, nil,
				"distribution parameter %d is not a finite number", i+2)
		}
	}
	if params[2] < 0 || params[4] < 0 {
		return DistributionConfig{}, common.NewError(common.ConfigError, nil,
			"standard deviations must be non-negative, got %v and %v", params[2], params[4])
	}

	return DistributionConfig{
		Iteration:       0,
		SwitchThreshold: int64(threshold),
		Mean1:           params[1],
		StdDev1:         params[2],
		Mean2:           params[3],
		StdDev2:         params[4],
	}, nil
}

// Select picks the distribution for the current iteration without advancing it.
func (c DistributionConfig) Select() Assignment {
	if c.Iteration < c.SwitchThreshold {
		return Assignment{
			Iteration:    c.Iteration,
			Distribution: common.FirstDistribution,
			Mean:         c.Mean1,
			StdDev:       c.StdDev1,
		}
	}

	return Assignment{
		Iteration:    c.Iteration,
		Distribution: common.SecondDistribution,
		Mean:         c.Mean2,
		StdDev:       c.StdDev2,
	}
}

// MarshalText writes the single-line "iteration threshold mean1 stddev1 mean2 stddev2" form.
func (c DistributionConfig) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d %d %s %s %s %s\n",
		c.Iteration,
		c.SwitchThreshold,
		formatFloat(c.Mean1),
		formatFloat(c.StdDev1),
		formatFloat(c.Mean2),
		formatFloat(c.StdDev2),
	)), nil
}

func (c *DistributionConfig) UnmarshalText(text []byte) error {
	fields := strings.Fields(string(text))
	if len(fields) != 6 {
		return fmt.Errorf("expected 6 fields in distribution state, got %d", len(fields))
	}

	var err error
	if c.Iteration, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
		return fmt.Errorf("invalid iteration %q: %w", fields[0], err)
	}
	if c.SwitchThreshold, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
		return fmt.Errorf("invalid threshold %q: %w", fields[1], err)
	}

	floats := []*float64{&c.Mean1, &c.StdDev1, &c.Mean2, &c.StdDev2}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(fields[i+2], 64); err != nil {
			return fmt.Errorf("invalid distribution parameter %q: %w", fields[i+2], err)
		}
	}

	return nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
