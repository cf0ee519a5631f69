// Package series derives the real-variation signal from the raw goal
// performance series: positional day-over-day differencing of each series,
// then a date-keyed join that nets deposit activity out of balance changes.
package series

// RawSample is one observation of a source series as delivered by the
// portal: an epoch-millis date plus a decimal value. Order is the order the
// portal supplied; samples are never re-sorted.
type RawSample struct {
	Date  int64   `json:"date"`
	Value float64 `json:"value"`
}

// DeltaSample extends a raw sample with its day-over-day difference.
type DeltaSample struct {
	Date       int64   `json:"date"`
	Value      float64 `json:"value"`
	Difference float64 `json:"difference"`
}

// ReconciledSample extends a balance delta with its real difference: the
// balance change with the same-day deposit change removed.
type ReconciledSample struct {
	Date           int64   `json:"date"`
	Value          float64 `json:"value"`
	Difference     float64 `json:"difference"`
	RealDifference float64 `json:"realDifference"`
}

// Diff converts an ordered raw series into its delta series. Output has the
// same length and order as the input. The first sample has no prior
// reference point, so its difference is defined as zero. Values are not
// validated here; non-finite inputs pass through unchanged.
func Diff(samples []RawSample) []DeltaSample {
	deltas := make([]DeltaSample, 0, len(samples))
	var prev float64
	for i, s := range samples {
		var diff float64
		if i > 0 {
			diff = s.Value - prev
		}
		deltas = append(deltas, DeltaSample{
			Date:       s.Date,
			Value:      s.Value,
			Difference: diff,
		})
		prev = s.Value
	}
	return deltas
}
