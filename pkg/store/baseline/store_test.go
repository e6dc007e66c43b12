package baseline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/models/store"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		wantErr bool
	}{
		{name: "simple", label: "v1"},
		{name: "single char", label: "a"},
		{name: "dots dashes underscores", label: "2024.q3_pre-launch"},
		{name: "max length", label: strings.Repeat("x", 64)},
		{name: "empty", label: "", wantErr: true},
		{name: "too long", label: strings.Repeat("x", 65), wantErr: true},
		{name: "leading dot", label: ".hidden", wantErr: true},
		{name: "leading dash", label: "-v1", wantErr: true},
		{name: "path separator", label: "a/b", wantErr: true},
		{name: "traversal", label: "../escape", wantErr: true},
		{name: "whitespace", label: "pre launch", wantErr: true},
		{name: "non ascii", label: "café", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.label)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidLabel)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStore_ReserveDetectsConflict(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Reserve("v1"))

	err = s.Reserve("v1")
	require.Error(t, err)
	var conflict *domain.BaselineConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "v1", conflict.Label)
	assert.Equal(t, s.Dir("v1"), conflict.Path)
}

func TestStore_DiscardFreesTheLabel(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Reserve("v1"))
	require.NoError(t, s.Discard("v1"))
	assert.NoError(t, s.Reserve("v1"))

	// Discarding a label that was never reserved is a no-op.
	assert.NoError(t, s.Discard("never-reserved"))
}

func TestStore_ManifestRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Reserve("pre-launch"))

	written := &store.BaselineManifest{
		ID:         "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		Label:      "pre-launch",
		CreatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		WindowDays: 30,
		Summary: map[string]decimal.Decimal{
			domain.MetricRevenue: decimal.RequireFromString("1234.56"),
			domain.MetricClicks:  decimal.NewFromInt(100),
		},
		Files: []string{"queries.json", "categories.json"},
	}
	require.NoError(t, s.WriteManifest("pre-launch", written))

	read, err := s.ReadManifest("pre-launch")
	require.NoError(t, err)
	assert.Equal(t, written.ID, read.ID)
	assert.Equal(t, written.Label, read.Label)
	assert.True(t, written.CreatedAt.Equal(read.CreatedAt))
	assert.Equal(t, 30, read.WindowDays)
	assert.Equal(t, written.Files, read.Files)
	assert.True(t, read.Summary[domain.MetricRevenue].Equal(decimal.RequireFromString("1234.56")))
}

func TestStore_ReadManifestMissing(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.ReadManifest("ghost")
	require.Error(t, err)
	var notFound *domain.BaselineNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Label)
	assert.Equal(t, s.ManifestPath("ghost"), notFound.ManifestPath)
}

func TestStore_WriteArtifact(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Reserve("v1"))

	payload := map[string]int{"total_queries": 7}
	require.NoError(t, s.WriteArtifact("v1", "queries.json", payload))

	data, err := os.ReadFile(filepath.Join(s.Dir("v1"), "queries.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "total_queries")

	// Without a reserved directory there is nowhere to write.
	assert.Error(t, s.WriteArtifact("unreserved", "queries.json", payload))
}

func TestStore_ListSkipsTornSnapshots(t *testing.T) {
	root := t.TempDir()
	s, err := NewStore(root)
	require.NoError(t, err)

	require.NoError(t, s.Reserve("complete"))
	require.NoError(t, s.WriteManifest("complete", &store.BaselineManifest{
		ID:    "id-1",
		Label: "complete",
	}))

	// Reserved but never finished: no manifest.
	require.NoError(t, s.Reserve("torn"))

	// Manifest exists but does not parse.
	require.NoError(t, s.Reserve("corrupt"))
	require.NoError(t, os.WriteFile(s.ManifestPath("corrupt"), []byte("{not json"), 0o644))

	// Stray files in the root are not snapshots.
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644))

	manifests, err := s.List()
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, "complete", manifests[0].Label)
}
