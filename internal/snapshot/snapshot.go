// Package snapshot owns the intermediate artifact handed from the scrape
// phase to the replay phase: the reconciled balance series plus the deposit
// delta series, persisted at one fixed location. The write side belongs to
// the scrape phase and the read side to the replay phase, so a failed
// replay can be rerun against the same snapshot without re-scraping.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/SebastianMaluk/fintual-sync/internal/series"
)

// ErrInvalid reports a snapshot document that does not match the expected
// schema. Replay must stop before any ledger call when it sees this.
var ErrInvalid = errors.New("snapshot invalid")

// Snapshot is the persisted handoff between the two pipeline phases.
type Snapshot struct {
	Balance  []series.ReconciledSample `json:"balance"`
	Deposits []series.DeltaSample      `json:"deposits"`
}

// Store is the single-slot persistence contract for the snapshot.
type Store interface {
	Write(ctx context.Context, snap *Snapshot) error
	Read(ctx context.Context) (*Snapshot, error)
}

const schemaURL = "snapshot.schema.json"

const schemaDoc = `{
  "type": "object",
  "required": ["balance", "deposits"],
  "properties": {
    "balance": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["date", "value", "difference", "realDifference"],
        "properties": {
          "date": {"type": "number"},
          "value": {"type": "number"},
          "difference": {"type": "number"},
          "realDifference": {"type": "number"}
        }
      }
    },
    "deposits": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["date", "value", "difference"],
        "properties": {
          "date": {"type": "number"},
          "value": {"type": "number"},
          "difference": {"type": "number"}
        }
      }
    }
  }
}`

var snapshotSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(schemaDoc)))
	if err != nil {
		panic(fmt.Sprintf("snapshot schema is not valid JSON: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		panic(fmt.Sprintf("snapshot schema resource: %v", err))
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("snapshot schema compile: %v", err))
	}
	return schema
}

// Decode validates raw snapshot bytes against the schema and unmarshals
// them. Any schema violation comes back wrapped in ErrInvalid.
func Decode(data []byte) (*Snapshot, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := snapshotSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &snap, nil
}

// Encode serializes the snapshot the way it is persisted. Nil slices are
// written as empty arrays so the stored document always satisfies the
// schema on the read side.
func Encode(snap *Snapshot) ([]byte, error) {
	out := *snap
	if out.Balance == nil {
		out.Balance = []series.ReconciledSample{}
	}
	if out.Deposits == nil {
		out.Deposits = []series.DeltaSample{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}
