package series

// Reconcile joins a balance delta series with a deposit delta series by
// exact date and computes the real difference per balance entry:
//
//	realDifference = balance.Difference - deposit.Difference(same date)
//
// A balance date with no deposit entry uses a deposit difference of zero.
// Deposit dates absent from the balance series are dropped. When several
// deposit entries share a date, the last one wins; that collision rule is
// load-bearing and must not be flipped.
//
// The returned total is the sum of real differences across the series. It
// is logged for diagnostics only and never feeds transaction amounts.
func Reconcile(balanceDeltas, depositDeltas []DeltaSample) ([]ReconciledSample, float64) {
	depositsByDate := make(map[int64]float64, len(depositDeltas))
	for _, d := range depositDeltas {
		depositsByDate[d.Date] = d.Difference
	}

	reconciled := make([]ReconciledSample, 0, len(balanceDeltas))
	var total float64
	for _, b := range balanceDeltas {
		real := b.Difference - depositsByDate[b.Date]
		total += real
		reconciled = append(reconciled, ReconciledSample{
			Date:           b.Date,
			Value:          b.Value,
			Difference:     b.Difference,
			RealDifference: real,
		})
	}
	return reconciled, total
}
