package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/SebastianMaluk/fintual-sync/internal/series"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Balance: []series.ReconciledSample{
			{Date: 1700000000000, Value: 1000, Difference: 0, RealDifference: 0},
			{Date: 1700086400000, Value: 1500, Difference: 500, RealDifference: 100},
		},
		Deposits: []series.DeltaSample{
			{Date: 1700086400000, Value: 400, Difference: 400},
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "balance.json")
	store := NewFileStore(path)
	ctx := context.Background()

	want := testSnapshot()
	if err := store.Write(ctx, want); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got.Balance) != 2 || len(got.Deposits) != 1 {
		t.Fatalf("Read() shape = %d/%d, want 2/1", len(got.Balance), len(got.Deposits))
	}
	if got.Balance[1] != want.Balance[1] {
		t.Errorf("Balance[1] = %+v, want %+v", got.Balance[1], want.Balance[1])
	}
}

func TestFileStoreWriteCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "balance.json")
	store := NewFileStore(path)

	if err := store.Write(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("snapshot file missing after write: %v", err)
	}
}

func TestFileStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.json")
	store := NewFileStore(path)
	ctx := context.Background()

	if err := store.Write(ctx, testSnapshot()); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	second := &Snapshot{
		Balance:  []series.ReconciledSample{{Date: 42, Value: 1, Difference: 0, RealDifference: 0}},
		Deposits: []series.DeltaSample{},
	}
	if err := store.Write(ctx, second); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}

	got, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got.Balance) != 1 || got.Balance[0].Date != 42 {
		t.Errorf("store kept stale snapshot: %+v", got.Balance)
	}
}

func TestDecodeRejectsMissingDeposits(t *testing.T) {
	doc := []byte(`{"balance": []}`)
	_, err := Decode(doc)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Decode() error = %v, want ErrInvalid", err)
	}
}

func TestDecodeRejectsMalformedEntries(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"balance entry missing realDifference", `{"balance":[{"date":1,"value":2,"difference":0}],"deposits":[]}`},
		{"deposit entry with string date", `{"balance":[],"deposits":[{"date":"1","value":2,"difference":0}]}`},
		{"balance not an array", `{"balance":{},"deposits":[]}`},
		{"not json", `{]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.doc)); !errors.Is(err, ErrInvalid) {
				t.Errorf("Decode() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestDecodeAcceptsValidDocument(t *testing.T) {
	doc := []byte(`{
		"balance": [{"date": 100, "value": 10.5, "difference": 0, "realDifference": 0}],
		"deposits": []
	}`)
	snap, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if snap.Balance[0].Value != 10.5 {
		t.Errorf("Value = %v, want 10.5", snap.Balance[0].Value)
	}
}

func TestEncodeNormalizesNilSlices(t *testing.T) {
	data, err := Encode(&Snapshot{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	// The persisted document must satisfy the schema on the read side.
	if _, err := Decode(data); err != nil {
		t.Errorf("Decode(Encode(empty)) error = %v", err)
	}
}

func TestNewStoreSelectsBackend(t *testing.T) {
	store, err := NewStore("/tmp/balance.json")
	if err != nil {
		t.Fatalf("NewStore(file) error = %v", err)
	}
	if _, ok := store.(*FileStore); !ok {
		t.Errorf("NewStore(file path) = %T, want *FileStore", store)
	}

	store, err = NewStore("gs://bucket/fintual/balance.json")
	if err != nil {
		t.Fatalf("NewStore(gcs) error = %v", err)
	}
	if _, ok := store.(*GCSStore); !ok {
		t.Errorf("NewStore(gs:// URI) = %T, want *GCSStore", store)
	}

	if _, err := NewStore("gs://bucket-only"); err == nil {
		t.Errorf("NewStore(gs:// without object) expected error")
	}
}
