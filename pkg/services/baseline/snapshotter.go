// Package baseline snapshots the full report bundle under a label and
// compares stored snapshots against the same window later, which is how
// "did the site migration help" gets answered months after the fact.
package baseline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"

	"github.com/seo-tools/searchledger/pkg/adapters"
	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/models/store"
	"github.com/seo-tools/searchledger/pkg/services/attribution"
	baselinestore "github.com/seo-tools/searchledger/pkg/store/baseline"
)

const (
	queriesArtifact       = "queries.json"
	categoriesArtifact    = "categories.json"
	opportunitiesArtifact = "opportunities.json"
	pagesArtifact         = "pages.json"
)

// Service is the snapshot surface exposed to HTTP handlers and terminal
// commands.
type Service interface {
	Create(ctx context.Context, days int, label string) (*domain.Baseline, error)
	Compare(ctx context.Context, label string) (*domain.BaselineComparison, error)
	List(ctx context.Context) ([]domain.Baseline, error)
}

type Dependencies struct {
	Engine attribution.Service
	Store  *baselinestore.Store
	Clock  func() time.Time
}

type Snapshotter struct {
	engine attribution.Service
	store  *baselinestore.Store
	clock  func() time.Time
	logger zerolog.Logger
}

func NewSnapshotter(logger zerolog.Logger, deps Dependencies) *Snapshotter {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Snapshotter{
		engine: deps.Engine,
		store:  deps.Store,
		clock:  clock,
		logger: logger,
	}
}

// Create snapshots the current window under label. The label's directory is
// reserved before any source is contacted, so creating over an existing
// label fails fast without burning upstream quota. The manifest is written
// last; a crash mid-create leaves a torn directory that List ignores.
func (s *Snapshotter) Create(ctx context.Context, days int, label string) (*domain.Baseline, error) {
	if err := baselinestore.ValidateLabel(label); err != nil {
		return nil, err
	}
	if err := s.store.Reserve(label); err != nil {
		return nil, err
	}

	created, err := s.create(ctx, days, label)
	if err != nil {
		if derr := s.store.Discard(label); derr != nil {
			s.logger.Warn().Err(derr).Str("label", label).Msg("failed to discard torn baseline")
		}
		return nil, err
	}
	return created, nil
}

func (s *Snapshotter) create(ctx context.Context, days int, label string) (*domain.Baseline, error) {
	// The snapshot keeps the full query set; row limits are a presentation
	// concern and would make old snapshots incomparable.
	queries, err := s.engine.RevenueQueries(ctx, days, 0)
	if err != nil {
		return nil, err
	}
	categories, err := s.engine.CategoryPerformance(ctx, days)
	if err != nil {
		return nil, err
	}
	opportunities, err := s.engine.ContentOpportunities(ctx, days)
	if err != nil {
		return nil, err
	}
	pages, err := s.engine.PageSummaries(ctx, days)
	if err != nil {
		return nil, err
	}
	summary, err := s.engine.Summary(ctx, days)
	if err != nil {
		return nil, err
	}

	artifacts := []struct {
		name    string
		payload any
	}{
		{queriesArtifact, adapters.MapRevenueQueriesDomainToApi(queries)},
		{categoriesArtifact, adapters.MapCategoryReportDomainToApi(categories)},
		{opportunitiesArtifact, adapters.MapOpportunityReportDomainToApi(opportunities)},
		{pagesArtifact, adapters.MapPageSummaryReportDomainToApi(pages)},
	}

	files := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		if err := s.store.WriteArtifact(label, artifact.name, artifact.payload); err != nil {
			return nil, err
		}
		files = append(files, artifact.name)
	}

	manifest := &store.BaselineManifest{
		ID:         uuid.NewString(),
		Label:      label,
		CreatedAt:  s.clock().UTC(),
		WindowDays: days,
		Summary:    maps.Clone(summary.Metrics),
		Files:      files,
	}
	if err := s.store.WriteManifest(label, manifest); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("label", label).
		Str("id", manifest.ID).
		Int("days", days).
		Msg("baseline created")

	created := adapters.MapBaselineManifestStoreToDomain(manifest)
	return &created, nil
}

// Compare recomputes the summary for the snapshot's own window and reports
// the change per metric. The stored snapshot is never touched.
func (s *Snapshotter) Compare(ctx context.Context, label string) (*domain.BaselineComparison, error) {
	manifest, err := s.store.ReadManifest(label)
	if err != nil {
		return nil, err
	}

	current, err := s.engine.Summary(ctx, manifest.WindowDays)
	if err != nil {
		return nil, err
	}

	deltas := make([]domain.MetricDelta, 0, len(domain.MetricOrder))
	for _, metric := range domain.MetricOrder {
		base := manifest.Summary[metric]
		cur := current.Metrics[metric]
		deltas = append(deltas, domain.MetricDelta{
			Metric:   metric,
			Baseline: base,
			Current:  cur,
			Change:   formatChange(base, cur),
		})
	}

	return &domain.BaselineComparison{
		Label:      manifest.Label,
		CreatedAt:  manifest.CreatedAt,
		WindowDays: manifest.WindowDays,
		Deltas:     deltas,
	}, nil
}

// List returns every stored snapshot, newest first. It reads manifests
// only and never touches the live sources.
func (s *Snapshotter) List(ctx context.Context) ([]domain.Baseline, error) {
	manifests, err := s.store.List()
	if err != nil {
		return nil, err
	}

	baselines := make([]domain.Baseline, 0, len(manifests))
	for _, manifest := range manifests {
		baselines = append(baselines, adapters.MapBaselineManifestStoreToDomain(manifest))
	}
	sort.Slice(baselines, func(i, j int) bool {
		if !baselines[i].CreatedAt.Equal(baselines[j].CreatedAt) {
			return baselines[i].CreatedAt.After(baselines[j].CreatedAt)
		}
		return baselines[i].Label < baselines[j].Label
	})
	return baselines, nil
}

var hundred = decimal.NewFromInt(100)

// formatChange renders the relative change between a stored metric and its
// current value. Growth from a zero baseline has no finite percentage, so
// it renders as a signed infinity instead of dividing by zero.
func formatChange(baseline, current decimal.Decimal) string {
	if baseline.IsZero() {
		switch {
		case current.IsZero():
			return "0.0%"
		case current.IsPositive():
			return "+∞"
		default:
			return "-∞"
		}
	}

	pct := current.Sub(baseline).Mul(hundred).DivRound(baseline.Abs(), 1)
	switch {
	case pct.IsZero():
		return "0.0%"
	case pct.IsPositive():
		return "+" + pct.StringFixed(1) + "%"
	default:
		return pct.StringFixed(1) + "%"
	}
}
