package metric

type TrialRecord struct {
	RunID        string  `csv:"runID"`
	Trial        int     `csv:"trial"`
	Phase        string  `csv:"phase"`
	Distribution string  `csv:"distribution"`
	Mean         float64 `csv:"mean"`
	StdDev       float64 `csv:"stddev"`

	// Measurements in pages
	RequestedPages uint64 `csv:"requestedPages"`
	PeakPages      uint64 `csv:"peakPages"`
	NetPages       uint64 `csv:"netPages"`

	Polls      int  `csv:"polls"`
	Allocated  bool `csv:"allocated"`
	Prediction int  `csv:"prediction"`
}
