package metric

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

type ReadingSummary struct {
	Distribution string
	Count        int
	Mean         float64
	StdDev       float64
	Min          float64
	Max          float64
}

// SummarizeReadings groups net readings by the distribution the worker drew from.
func SummarizeReadings(records []TrialRecord) []ReadingSummary {
	grouped := make(map[string][]float64)
	for _, record := range records {
		grouped[record.Distribution] = append(grouped[record.Distribution], float64(record.NetPages))
	}

	summaries := make([]ReadingSummary, 0, len(grouped))
	for distribution, readings := range grouped {
		mean, stddev := stat.PopMeanStdDev(readings, nil)

		sorted := append([]float64(nil), readings...)
		sort.Float64s(sorted)

		summaries = append(summaries, ReadingSummary{
			Distribution: distribution,
			Count:        len(readings),
			Mean:         mean,
			StdDev:       stddev,
			Min:          sorted[0],
			Max:          sorted[len(sorted)-1],
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Distribution < summaries[j].Distribution
	})
	return summaries
}
