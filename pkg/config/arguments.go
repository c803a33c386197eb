package config

import (
	"strconv"

	"github.com/eth-easl/memanomaly/pkg/common"
)

const DistributionUsage = `Usage: monitor [flags] thresh mu_1 sigma_1 mu_2 sigma_2

	thresh  - number of iterations after which to use the second distribution
	mu_1    - mean of the first distribution (pages)
	sigma_1 - standard deviation of the first distribution (pages)
	mu_2    - mean of the second distribution (pages)
	sigma_2 - standard deviation of the second distribution (pages)`

// ParseDistributionArguments converts the five positional arguments to numbers.
func ParseDistributionArguments(args []string) ([]float64, error) {
	if len(args) != common.NumDistributionParameters {
		return nil, common.NewError(common.ConfigError, nil,
			"expected %d positional arguments, got %d", common.NumDistributionParameters, len(args))
	}

	params := make([]float64, len(args))
	for i, arg := range args {
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, common.NewError(common.ConfigError, err, "argument %d (%q) is not a number", i+1, arg)
		}
		params[i] = value
	}

	return params, nil
}
