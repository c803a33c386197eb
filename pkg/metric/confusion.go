package metric

import (
	"fmt"
	"strconv"
	"strings"
)

// Score is a derived statistic. It is undefined when its denominator is zero.
type Score struct {
	Value   float64
	Defined bool
}

func undefined() Score {
	return Score{}
}

func ratio(numerator, denominator float64) Score {
	if denominator == 0 {
		return undefined()
	}
	return Score{Value: numerator / denominator, Defined: true}
}

func (s Score) String() string {
	if !s.Defined {
		return "undefined"
	}
	return strconv.FormatFloat(s.Value, 'f', 8, 64)
}

// Statistics accumulates binary classification outcomes.
type Statistics interface {
	Record(actual, predicted bool)
	Accuracy() Score
	Recall() Score
	Precision() Score
	F1() Score
	RenderConfusionMatrix() string
}

// ConfusionMatrix counts outcomes with D1 as the positive class: actual is
// true for samples drawn from the first distribution, predicted is true when
// the classifier accepted the sample.
type ConfusionMatrix struct {
	TruePositive  float64
	TrueNegative  float64
	FalsePositive float64
	FalseNegative float64
}

func NewConfusionMatrix() *ConfusionMatrix {
	return &ConfusionMatrix{}
}

func (m *ConfusionMatrix) Record(actual, predicted bool) {
	switch {
	case actual && predicted:
		m.TruePositive++
	case actual && !predicted:
		m.FalseNegative++
	case !actual && predicted:
		m.FalsePositive++
	default:
		m.TrueNegative++
	}
}

func (m *ConfusionMatrix) Total() float64 {
	return m.TruePositive + m.TrueNegative + m.FalsePositive + m.FalseNegative
}

func (m *ConfusionMatrix) Accuracy() Score {
	return ratio(m.TruePositive+m.TrueNegative, m.Total())
}

func (m *ConfusionMatrix) Recall() Score {
	return ratio(m.TruePositive, m.TruePositive+m.FalseNegative)
}

func (m *ConfusionMatrix) Precision() Score {
	return ratio(m.TruePositive, m.TruePositive+m.FalsePositive)
}

func (m *ConfusionMatrix) F1() Score {
	precision, recall := m.Precision(), m.Recall()
	if !precision.Defined || !recall.Defined {
		return undefined()
	}

	return ratio(2*precision.Value*recall.Value, precision.Value+recall.Value)
}

// RenderConfusionMatrix draws the counts with predicted classes as rows and
// actual classes as columns.
func (m *ConfusionMatrix) RenderConfusionMatrix() string {
	var sb strings.Builder

	blank := "|   |      |                  |                  |\n"
	row := func(side, label string, first, second float64) string {
		return fmt.Sprintf("| %s |  %s  | % 16.8f | % 16.8f |\n", side, label, first, second)
	}

	sb.WriteString("           +-------------------------------------+\n")
	sb.WriteString("           |                Actual               |\n")
	sb.WriteString("           |------------------+------------------|\n")
	sb.WriteString("           |         D1       |         D2       |\n")
	sb.WriteString("+---+------+------------------+------------------|\n")
	sb.WriteString(blank)
	sb.WriteString("| P |      |                  |                  |\n")
	sb.WriteString(row("r", "D1", m.TruePositive, m.FalsePositive))
	sb.WriteString("| e |      |                  |                  |\n")
	sb.WriteString("| d |      |                  |                  |\n")
	sb.WriteString("| i |------+------------------+------------------|\n")
	sb.WriteString("| c |      |                  |                  |\n")
	sb.WriteString("| t |      |                  |                  |\n")
	sb.WriteString(row("e", "D2", m.FalseNegative, m.TrueNegative))
	sb.WriteString("| d |      |                  |                  |\n")
	sb.WriteString(blank)
	sb.WriteString("+---+------+------------------+------------------+\n")

	return sb.String()
}
