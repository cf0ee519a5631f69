// Package replay turns a reconciled snapshot into idempotent ledger
// transactions: one aggregated base entry for everything before the cutover
// date, one entry per day on or after it. Keys derive only from dates, so
// replaying the same snapshot reproduces identical transactions and the
// ledger's upsert-by-imported_id suppresses duplicates.
package replay

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SebastianMaluk/fintual-sync/internal/actual"
	"github.com/SebastianMaluk/fintual-sync/internal/logger"
	"github.com/SebastianMaluk/fintual-sync/internal/snapshot"
)

// Notes carried on the two transaction kinds.
const (
	notesDaily = "Variation"
	notesBase  = "Base variation"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// Importer is the ledger operation the replayer drives.
type Importer interface {
	ImportTransactions(ctx context.Context, accountID string, txs []actual.Transaction) (*actual.ImportResult, error)
}

// Report summarizes one replay batch as counted by the ledger.
type Report struct {
	Added   int
	Updated int
	Errors  int
}

// Replayer submits snapshot-derived transactions to the ledger.
type Replayer struct {
	importer Importer
}

// New creates a replayer on top of a ledger importer.
func New(importer Importer) *Replayer {
	return &Replayer{importer: importer}
}

// Transactions derives the full transaction batch for a snapshot. The
// derivation is deterministic: same snapshot and cutover, same batch.
//
// Amounts are minor currency units. Each amount is rounded exactly once,
// half away from zero; the base amount is summed in decimal and rounded at
// the end, never accumulated from per-day rounded values. Binary-float
// rounding would drift here (1.005*100 rounds to 100 in float64, 101 in
// decimal), so the decimal path is load-bearing.
func Transactions(snap *snapshot.Snapshot, cutover time.Time, accountID, payee string) []actual.Transaction {
	cutoverMillis := cutover.UnixMilli()

	txs := make([]actual.Transaction, 0, len(snap.Balance)+1)

	// One aggregated entry for everything before cutover. An empty or
	// all-zero subset still emits a zero-amount entry, kept for audit.
	baseSum := decimal.Zero
	for _, b := range snap.Balance {
		if b.Date < cutoverMillis {
			baseSum = baseSum.Add(decimal.NewFromFloat(b.RealDifference))
		}
	}
	cutoverKey := strconv.FormatInt(cutoverMillis, 10)
	txs = append(txs, actual.Transaction{
		ID:         cutoverKey,
		Account:    accountID,
		Payee:      payee,
		Amount:     baseSum.Mul(hundred).Round(0).IntPart(),
		Date:       cutover.UTC().Format(dateLayout),
		ImportedID: cutoverKey + "_base",
		Notes:      notesBase,
	})

	// One entry per day on or after cutover.
	for _, b := range snap.Balance {
		if b.Date < cutoverMillis {
			continue
		}
		key := strconv.FormatInt(b.Date, 10)
		txs = append(txs, actual.Transaction{
			ID:         key,
			Account:    accountID,
			Payee:      payee,
			Amount:     decimal.NewFromFloat(b.RealDifference).Mul(hundred).Round(0).IntPart(),
			Date:       time.UnixMilli(b.Date).UTC().Format(dateLayout),
			ImportedID: key,
			Notes:      notesDaily,
		})
	}
	return txs
}

// Replay derives the batch for the snapshot and submits it in a single
// import call. The ledger deduplicates by imported_id; the replayer tracks
// nothing locally and does not retry partial failures, it only reports the
// counts the ledger returned.
func (r *Replayer) Replay(ctx context.Context, snap *snapshot.Snapshot, cutover time.Time, accountID, payee string) (*Report, error) {
	log := logger.FromContext(ctx)

	txs := Transactions(snap, cutover, accountID, payee)
	result, err := r.importer.ImportTransactions(ctx, accountID, txs)
	if err != nil {
		return nil, fmt.Errorf("replay snapshot: %w", err)
	}

	report := &Report{
		Added:   len(result.Added),
		Updated: len(result.Updated),
		Errors:  len(result.Errors),
	}
	log.Info().
		Int("transactions", len(txs)).
		Int("added", report.Added).
		Int("updated", report.Updated).
		Int("errors", report.Errors).
		Msg("Replayed snapshot into ledger")
	return report, nil
}
