package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaselineManifest is the manifest.json written inside every baseline
// directory. Compare reads exactly what Create wrote, possibly months
// apart, so this layout must stay stable.
type BaselineManifest struct {
	ID         string                     `json:"id"`
	Label      string                     `json:"label"`
	CreatedAt  time.Time                  `json:"created_at"`
	WindowDays int                        `json:"window_days"`
	Summary    map[string]decimal.Decimal `json:"summary"`
	Files      []string                   `json:"files"`
}
