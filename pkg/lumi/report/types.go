// Package report persists a JSON audit trail of compute operations so
// physicists can compare luminosity estimates across time as data lands
// on the filesystem.
package report

import (
	"time"

	"github.com/hps-dq/lumi/pkg/lumi/calc"
)

// Entry represents a single recorded compute operation.
type Entry struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Source    string           `json:"source"`
	Catalog   string           `json:"catalog"`
	Runs      []calc.RunResult `json:"runs"`
	Summary   Summary          `json:"summary"`
}

// Summary contains the aggregate outcome of a compute operation.
type Summary struct {
	RunsMatched     int     `json:"runs_matched"`
	TotalLuminosity float64 `json:"total_luminosity"`
}
