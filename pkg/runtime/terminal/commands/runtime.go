package commands

import (
	"context"

	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/runtime/terminal/export"
	"github.com/seo-tools/searchledger/pkg/services/attribution"
	"github.com/seo-tools/searchledger/pkg/services/baseline"
)

// Runtime is what commands need from the shell that hosts them: the
// resolved account's services and a reporter for output.
type Runtime interface {
	Engine(ctx context.Context) (attribution.Service, error)
	Snapshotter(ctx context.Context) (baseline.Service, error)
	Accounts(ctx context.Context) ([]domain.Account, error)
	Reporter() *export.Reporter
}
