package workload

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/eth-easl/memanomaly/pkg/common"
	"github.com/eth-easl/memanomaly/pkg/generator"
)

// Arguments encodes a request as worker command line flags.
func Arguments(req Request) []string {
	return []string{
		"-iteration=" + strconv.FormatInt(req.Assignment.Iteration, 10),
		"-distribution=" + strconv.Itoa(int(req.Assignment.Distribution)),
		"-mean=" + strconv.FormatFloat(req.Assignment.Mean, 'g', -1, 64),
		"-stddev=" + strconv.FormatFloat(req.Assignment.StdDev, 'g', -1, 64),
		"-hold=" + req.HoldDuration.String(),
	}
}

func ParseArguments(args []string) (Request, error) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		iteration    = fs.Int64("iteration", 0, "Trial index")
		distribution = fs.Int("distribution", int(common.FirstDistribution), "Distribution to sample from (1 or 2)")
		mean         = fs.Float64("mean", 0, "Mean page count")
		stddev       = fs.Float64("stddev", 0, "Standard deviation of the page count")
		hold         = fs.Duration("hold", common.DefaultHoldDuration, "How long to hold the allocation")
	)

	if err := fs.Parse(args); err != nil {
		return Request{}, fmt.Errorf("invalid worker arguments: %w", err)
	}

	d := common.Distribution(*distribution)
	if d != common.FirstDistribution && d != common.SecondDistribution {
		return Request{}, fmt.Errorf("invalid distribution %d", *distribution)
	}
	if *stddev < 0 || *hold < 0 {
		return Request{}, fmt.Errorf("stddev and hold must not be negative")
	}

	return Request{
		Assignment: generator.Assignment{
			Iteration:    *iteration,
			Distribution: d,
			Mean:         *mean,
			StdDev:       *stddev,
		},
		HoldDuration: *hold,
	}, nil
}

func (r Request) String() string {
	return fmt.Sprintf("trial %d %s N(%g, %g) hold %s",
		r.Assignment.Iteration, r.Assignment.Distribution, r.Assignment.Mean, r.Assignment.StdDev, r.HoldDuration)
}
