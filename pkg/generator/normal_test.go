package generator

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat"
)

func TestNormalSamplerConvergence(t *testing.T) {
	tests := []struct {
		mu    float64
		sigma float64
	}{
		{mu: 0, sigma: 1},
		{mu: 100, sigma: 5},
		{mu: 500, sigma: 50},
		{mu: -20, sigma: 0.5},
	}

	const sampleSize = 200_000

	for _, test := range tests {
		t.Run(fmt.Sprintf("N(%g,%g)", test.mu, test.sigma), func(t *testing.T) {
			sampler := NewNormalSampler(42)

			samples := make([]float64, sampleSize)
			for i := range samples {
				samples[i] = sampler.Sample(test.mu, test.sigma)
			}

			mean, stddev := stat.MeanStdDev(samples, nil)

			// standard error of the mean is sigma/sqrt(n); allow five of them
			meanTolerance := 5 * test.sigma / math.Sqrt(sampleSize)
			assert.InDelta(t, test.mu, mean, meanTolerance)
			assert.InDelta(t, test.sigma, stddev, 0.01*test.sigma)
		})
	}
}

func TestNormalSamplerZeroSigma(t *testing.T) {
	sampler := NewNormalSampler(7)

	for i := 0; i < 100; i++ {
		assert.Equal(t, 42.0, sampler.Sample(42, 0))
	}
}

func TestNormalSamplerSeeding(t *testing.T) {
	first := NewNormalSampler(123)
	second := NewNormalSampler(123)
	other := NewNormalSampler(124)

	same, different := 0, 0
	for i := 0; i < 10; i++ {
		a, b, c := first.StandardNormal(), second.StandardNormal(), other.StandardNormal()
		if a == b {
			same++
		}
		if a != c {
			different++
		}
	}

	assert.Equal(t, 10, same, "equal seeds must replay the same sequence")
	assert.Greater(t, different, 0, "different seeds must diverge")
}

func TestStandardNormalSymmetry(t *testing.T) {
	sampler := NewNormalSampler(99)

	samples := make([]float64, 100_000)
	for i := range samples {
		samples[i] = sampler.StandardNormal()
	}

	assert.InDelta(t, 0, stat.Skew(samples, nil), 0.05)
	// roughly 68% of the mass lies within one standard deviation
	within := 0
	for _, s := range samples {
		if math.Abs(s) <= 1 {
			within++
		}
	}
	assert.InDelta(t, 0.6827, float64(within)/float64(len(samples)), 0.01)
}
