package fintual

import (
	"fmt"

	"github.com/SebastianMaluk/fintual-sync/internal/series"
)

// Series is one named time series inside the goal performance document.
type Series struct {
	Name       string             `json:"name"`
	Identifier string             `json:"identifier"`
	Data       []series.RawSample `json:"data"`
	Balance    float64            `json:"balance"`
}

// GoalPerformance is the decoded performance document for one goal.
type GoalPerformance struct {
	GoalID      string
	Performance []Series
}

// goalPerformanceDoc mirrors the wire shape of the portal response.
type goalPerformanceDoc struct {
	Data struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			ID          int64    `json:"id"`
			Performance []Series `json:"performance"`
		} `json:"attributes"`
	} `json:"data"`
}

// Series returns the series with the given identifier, or ErrSeriesMissing
// when the payload does not carry it.
func (g *GoalPerformance) Series(identifier string) (*Series, error) {
	for i := range g.Performance {
		if g.Performance[i].Identifier == identifier {
			return &g.Performance[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSeriesMissing, identifier)
}
