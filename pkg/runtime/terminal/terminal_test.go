package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-tools/searchledger/pkg/models/api"
	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/models/store"
	"github.com/seo-tools/searchledger/pkg/services/attribution"
	"github.com/seo-tools/searchledger/pkg/services/baseline"
)

type stubEngine struct {
	cleared int
}

func (s *stubEngine) Combine(ctx context.Context, days int) (*domain.CombineResult, error) {
	return nil, nil
}

func (s *stubEngine) RevenueQueries(ctx context.Context, days, limit int) (*domain.RevenueQueriesReport, error) {
	return nil, nil
}

func (s *stubEngine) CategoryPerformance(ctx context.Context, days int) (*domain.CategoryReport, error) {
	return nil, nil
}

func (s *stubEngine) ContentOpportunities(ctx context.Context, days int) (*domain.OpportunityReport, error) {
	return nil, nil
}

func (s *stubEngine) PageSummaries(ctx context.Context, days int) (*domain.PageSummaryReport, error) {
	return nil, nil
}

func (s *stubEngine) Summary(ctx context.Context, days int) (*domain.WindowSummary, error) {
	return &domain.WindowSummary{
		Period: domain.TimePeriod{
			Start:    time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
			Duration: days,
		},
		Metrics: map[string]decimal.Decimal{
			domain.MetricSessions: decimal.NewFromInt(150),
		},
	}, nil
}

func (s *stubEngine) CacheStats() ([]store.CacheNamespaceStats, error) {
	return []store.CacheNamespaceStats{
		{Source: "analytics", TotalEntries: 1, ValidEntries: 1, SizeBytes: 64},
	}, nil
}

func (s *stubEngine) ClearCache() (int, error) {
	s.cleared++
	return 2, nil
}

type fakeExplorer struct {
	accounts    []domain.Account
	engine      *stubEngine
	engineNames []string
}

func (f *fakeExplorer) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return f.accounts, nil
}

func (f *fakeExplorer) GetEngine(ctx context.Context, account domain.Account) (attribution.Service, error) {
	f.engineNames = append(f.engineNames, account.Name)
	return f.engine, nil
}

func (f *fakeExplorer) GetSnapshotter(ctx context.Context, account domain.Account) (baseline.Service, error) {
	return nil, nil
}

func newTestCLI(explorer *fakeExplorer) (*CLI, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cli := NewCLI(Options{
		Logger:   zerolog.Nop(),
		Output:   out,
		Explorer: explorer,
	})
	return cli, out
}

func TestAccountsCommandNeedsNoSelection(t *testing.T) {
	explorer := &fakeExplorer{
		accounts: []domain.Account{{Name: "shop"}, {Name: "blog"}},
		engine:   &stubEngine{},
	}
	cli, out := newTestCLI(explorer)

	cli.rootCmd.SetArgs([]string{"accounts"})
	err := cli.Execute(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "shop")
	assert.Contains(t, out.String(), "blog")
	assert.Empty(t, explorer.engineNames)
}

func TestReportRequiresSelectionWithMultipleAccounts(t *testing.T) {
	explorer := &fakeExplorer{
		accounts: []domain.Account{{Name: "shop"}, {Name: "blog"}},
		engine:   &stubEngine{},
	}
	cli, _ := newTestCLI(explorer)
	cli.rootCmd.SilenceErrors = true

	cli.rootCmd.SetArgs([]string{"report", "summary"})
	err := cli.Execute(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--account")
	assert.Contains(t, err.Error(), "shop")
}

func TestExplicitAccountFlagWins(t *testing.T) {
	explorer := &fakeExplorer{
		accounts: []domain.Account{{Name: "shop"}, {Name: "blog"}},
		engine:   &stubEngine{},
	}
	cli, out := newTestCLI(explorer)

	cli.rootCmd.SetArgs([]string{"report", "summary", "--account", "blog", "--days", "7"})
	err := cli.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"blog"}, explorer.engineNames)
	assert.Contains(t, out.String(), "sessions")
	assert.Contains(t, out.String(), "(7 days)")
}

func TestSingleAccountIsImplicit(t *testing.T) {
	explorer := &fakeExplorer{
		accounts: []domain.Account{{Name: "shop"}},
		engine:   &stubEngine{},
	}
	cli, out := newTestCLI(explorer)

	cli.rootCmd.SetArgs([]string{"cache", "clear"})
	err := cli.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"shop"}, explorer.engineNames)
	assert.Equal(t, 1, explorer.engine.cleared)
	assert.Contains(t, out.String(), "Removed 2 cache entries.")
}

func TestJSONFlagSwitchesOutput(t *testing.T) {
	explorer := &fakeExplorer{
		accounts: []domain.Account{{Name: "shop"}},
		engine:   &stubEngine{},
	}
	cli, out := newTestCLI(explorer)

	cli.rootCmd.SetArgs([]string{"cache", "clear", "--json"})
	err := cli.Execute(context.Background())

	require.NoError(t, err)

	var result api.CacheClearResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, api.CacheClearResult{Removed: 2}, result)
}

func TestNoAccountsConfigured(t *testing.T) {
	explorer := &fakeExplorer{engine: &stubEngine{}}
	cli, _ := newTestCLI(explorer)
	cli.rootCmd.SilenceErrors = true

	cli.rootCmd.SetArgs([]string{"cache", "stats"})
	err := cli.Execute(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no accounts configured")
}
