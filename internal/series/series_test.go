package series

import (
	"math"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name    string
		samples []RawSample
		want    []DeltaSample
	}{
		{
			name:    "empty series",
			samples: nil,
			want:    []DeltaSample{},
		},
		{
			name:    "single sample has zero difference",
			samples: []RawSample{{Date: 100, Value: 5000}},
			want:    []DeltaSample{{Date: 100, Value: 5000, Difference: 0}},
		},
		{
			name: "increasing series",
			samples: []RawSample{
				{Date: 100, Value: 1000},
				{Date: 200, Value: 1250.5},
				{Date: 300, Value: 1100},
			},
			want: []DeltaSample{
				{Date: 100, Value: 1000, Difference: 0},
				{Date: 200, Value: 1250.5, Difference: 250.5},
				{Date: 300, Value: 1100, Difference: -150.5},
			},
		},
		{
			name: "flat series yields zero deltas",
			samples: []RawSample{
				{Date: 1, Value: 7},
				{Date: 2, Value: 7},
				{Date: 3, Value: 7},
			},
			want: []DeltaSample{
				{Date: 1, Value: 7, Difference: 0},
				{Date: 2, Value: 7, Difference: 0},
				{Date: 3, Value: 7, Difference: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.samples)
			if len(got) != len(tt.want) {
				t.Fatalf("Diff() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Diff()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDiffPreservesOrderAndLength(t *testing.T) {
	samples := []RawSample{
		{Date: 500, Value: 10},
		{Date: 100, Value: 20}, // out of order on purpose; Diff does not sort
		{Date: 300, Value: 15},
	}
	got := Diff(samples)
	if len(got) != len(samples) {
		t.Fatalf("length changed: got %d, want %d", len(got), len(samples))
	}
	for i := range got {
		if got[i].Date != samples[i].Date {
			t.Errorf("order changed at %d: got date %d, want %d", i, got[i].Date, samples[i].Date)
		}
	}
	if got[0].Difference != 0 {
		t.Errorf("first difference = %v, want 0", got[0].Difference)
	}
}

func TestDiffPropagatesNonFinite(t *testing.T) {
	got := Diff([]RawSample{
		{Date: 1, Value: 10},
		{Date: 2, Value: math.NaN()},
	})
	if !math.IsNaN(got[1].Difference) {
		t.Errorf("expected NaN difference to propagate, got %v", got[1].Difference)
	}
}

func TestReconcile(t *testing.T) {
	balance := []DeltaSample{
		{Date: 100, Value: 1000, Difference: 0},
		{Date: 200, Value: 1500, Difference: 500},
		{Date: 300, Value: 1400, Difference: -100},
	}
	deposits := []DeltaSample{
		{Date: 200, Value: 400, Difference: 400},
		{Date: 999, Value: 50, Difference: 50}, // no matching balance date
	}

	got, total := Reconcile(balance, deposits)

	if len(got) != len(balance) {
		t.Fatalf("Reconcile() len = %d, want %d", len(got), len(balance))
	}
	wantReal := []float64{0, 100, -100}
	for i, r := range got {
		if r.Date != balance[i].Date {
			t.Errorf("entry %d date = %d, want %d", i, r.Date, balance[i].Date)
		}
		if r.RealDifference != wantReal[i] {
			t.Errorf("entry %d realDifference = %v, want %v", i, r.RealDifference, wantReal[i])
		}
	}
	if total != 0 {
		t.Errorf("total = %v, want 0", total)
	}
}

func TestReconcileUnmatchedDepositDropped(t *testing.T) {
	balance := []DeltaSample{{Date: 100, Difference: 10}}
	deposits := []DeltaSample{
		{Date: 100, Difference: 3},
		{Date: 200, Difference: 999},
	}
	got, _ := Reconcile(balance, deposits)
	if len(got) != 1 {
		t.Fatalf("unmatched deposit date produced extra entries: len = %d", len(got))
	}
	if got[0].RealDifference != 7 {
		t.Errorf("realDifference = %v, want 7", got[0].RealDifference)
	}
}

func TestReconcileDuplicateDepositDateLastWins(t *testing.T) {
	balance := []DeltaSample{{Date: 100, Difference: 10}}
	deposits := []DeltaSample{
		{Date: 100, Difference: 2},
		{Date: 100, Difference: 6}, // last entry for the date must win
	}
	got, _ := Reconcile(balance, deposits)
	if got[0].RealDifference != 4 {
		t.Errorf("realDifference = %v, want 4 (last deposit entry wins)", got[0].RealDifference)
	}
}

func TestReconcileTotalMatchesSums(t *testing.T) {
	balance := []DeltaSample{
		{Date: 1, Difference: 5},
		{Date: 2, Difference: -2.5},
		{Date: 3, Difference: 7},
	}
	deposits := []DeltaSample{
		{Date: 2, Difference: 1},
		{Date: 3, Difference: 4},
	}
	got, total := Reconcile(balance, deposits)

	var sum float64
	for _, r := range got {
		sum += r.RealDifference
	}
	if total != sum {
		t.Errorf("total = %v, want %v (sum over reconciled series)", total, sum)
	}
	// 5 + (-2.5-1) + (7-4) = 4.5
	if sum != 4.5 {
		t.Errorf("sum = %v, want 4.5", sum)
	}
}

func TestReconcileEmptyBalance(t *testing.T) {
	got, total := Reconcile(nil, []DeltaSample{{Date: 1, Difference: 9}})
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d entries", len(got))
	}
	if total != 0 {
		t.Errorf("total = %v, want 0", total)
	}
}
