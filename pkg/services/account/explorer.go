// Package account turns credential profiles into ready-to-use service
// stacks: one attribution engine and one baseline snapshotter per
// configured account.
package account

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/seo-tools/searchledger/pkg/metrics"
	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/services/attribution"
	baselinesvc "github.com/seo-tools/searchledger/pkg/services/baseline"
	"github.com/seo-tools/searchledger/pkg/services/config"
	"github.com/seo-tools/searchledger/pkg/store/analytics"
	baselinestore "github.com/seo-tools/searchledger/pkg/store/baseline"
	"github.com/seo-tools/searchledger/pkg/store/cache"
	"github.com/seo-tools/searchledger/pkg/store/searchconsole"
)

type Explorer interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetEngine(ctx context.Context, account domain.Account) (attribution.Service, error)
	GetSnapshotter(ctx context.Context, account domain.Account) (baselinesvc.Service, error)
}

type Dependencies struct {
	Registry config.Registry
	Settings *config.Settings
	Metrics  *metrics.Metrics
}

type accountExplorer struct {
	registry config.Registry
	settings *config.Settings
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	mu      sync.Mutex
	engines map[string]*attribution.Engine
}

func NewExplorer(logger zerolog.Logger, deps Dependencies) (Explorer, error) {
	settings := deps.Settings
	if settings == nil {
		var err error
		settings, err = config.LoadSettings("")
		if err != nil {
			return nil, err
		}
	}

	return &accountExplorer{
		registry: deps.Registry,
		settings: settings,
		metrics:  deps.Metrics,
		logger:   logger,
		engines:  make(map[string]*attribution.Engine),
	}, nil
}

func (a *accountExplorer) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	profiles, err := a.registry.GetProfiles(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(profiles))
	for _, name := range profiles {
		accounts = append(accounts, domain.Account{Name: name})
	}
	return accounts, nil
}

// GetEngine returns the account's attribution engine, building it on first
// use. Engines are shared per account: concurrent requests then hit one
// cache and duplicate in-flight fetches collapse instead of racing.
func (a *accountExplorer) GetEngine(ctx context.Context, account domain.Account) (attribution.Service, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if engine, ok := a.engines[account.Name]; ok {
		return engine, nil
	}

	profile, err := a.registry.GetProfile(ctx, account.Name)
	if err != nil {
		return nil, err
	}

	engine, err := a.buildEngine(profile)
	if err != nil {
		return nil, err
	}
	a.engines[account.Name] = engine
	return engine, nil
}

// GetSnapshotter assembles a baseline snapshotter on top of the account's
// engine. Snapshotters hold no state of their own, so one per call is fine.
func (a *accountExplorer) GetSnapshotter(ctx context.Context, account domain.Account) (baselinesvc.Service, error) {
	engine, err := a.GetEngine(ctx, account)
	if err != nil {
		return nil, err
	}

	store, err := baselinestore.NewStore(filepath.Join(a.settings.Baseline.Dir, account.Name))
	if err != nil {
		return nil, err
	}

	logger := a.logger.With().Str("account", account.Name).Logger()
	return baselinesvc.NewSnapshotter(logger, baselinesvc.Dependencies{
		Engine: engine,
		Store:  store,
	}), nil
}

func (a *accountExplorer) buildEngine(profile *domain.AccountProfile) (*attribution.Engine, error) {
	logger := a.logger.With().Str("account", profile.Name).Logger()

	analyticsClient := analytics.NewClient(logger, analytics.Config{
		BaseURL:  profile.AnalyticsBaseURL,
		Property: profile.AnalyticsProperty,
		Token:    profile.AnalyticsToken,
		Timeout:  a.settings.Sources.Timeout(),
		RetryMax: a.settings.Sources.RetryMax,
	})
	searchClient := searchconsole.NewClient(logger, searchconsole.Config{
		BaseURL:  profile.SearchBaseURL,
		Site:     profile.SearchSite,
		Token:    profile.SearchToken,
		Timeout:  a.settings.Sources.Timeout(),
		RetryMax: a.settings.Sources.RetryMax,
	})

	// Cache entries are keyed by source and window only, so each account
	// needs its own backend directory to keep entries from crossing over.
	backend, err := cache.NewFSStore(filepath.Join(a.settings.Cache.Dir, profile.Name))
	if err != nil {
		return nil, err
	}
	sourceCache := cache.New(logger, backend, cache.Settings{
		DefaultTTL:  a.settings.Cache.DefaultTTL(),
		TTLBySource: a.settings.Cache.TTLBySource(),
	}, a.metrics)

	return attribution.NewEngine(logger, attribution.Config{
		Settings: attribution.Settings{
			SearchRowLimit:       a.settings.Reports.SearchRowLimit,
			MinOpportunityClicks: a.settings.Reports.MinOpportunityClicks,
			TopQueriesPerPage:    a.settings.Reports.TopQueriesPerPage,
			Categories:           categoryRules(a.settings.Reports.Categories),
		},
		Dependencies: attribution.Dependencies{
			Analytics: analyticsClient,
			Search:    searchClient,
			Cache:     sourceCache,
			Metrics:   a.metrics,
		},
	}), nil
}

// categoryRules converts configured rules, keeping file order. An empty
// list returns nil so the engine falls back to its defaults.
func categoryRules(settings []config.CategoryRuleSetting) attribution.CategoryRules {
	if len(settings) == 0 {
		return nil
	}
	rules := make(attribution.CategoryRules, 0, len(settings))
	for _, s := range settings {
		rules = append(rules, attribution.CategoryRule{Prefix: s.Prefix, Category: s.Category})
	}
	return rules
}
