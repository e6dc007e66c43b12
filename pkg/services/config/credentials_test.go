package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCredentials(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const testCredentials = `
[shop]
analytics_property = 123456789
analytics_token    = tok-analytics
search_site        = sc-domain:shop.example.com
search_token       = tok-search

[blog]
analytics_base_url = http://127.0.0.1:8081
analytics_property = 987654321
analytics_token    = tok-analytics-blog
search_base_url    = http://127.0.0.1:8082
search_site        = sc-domain:blog.example.com
search_token       = tok-search-blog
`

func TestNewRegistry_MissingFile(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRegistry_GetProfiles(t *testing.T) {
	registry, err := NewRegistry(writeCredentials(t, testCredentials))
	require.NoError(t, err)

	profiles, err := registry.GetProfiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"shop", "blog"}, profiles)
}

func TestRegistry_GetProfile(t *testing.T) {
	registry, err := NewRegistry(writeCredentials(t, testCredentials))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("defaults for base urls", func(t *testing.T) {
		profile, err := registry.GetProfile(ctx, "shop")
		require.NoError(t, err)
		assert.Equal(t, "shop", profile.Name)
		assert.Equal(t, "123456789", profile.AnalyticsProperty)
		assert.Equal(t, "tok-analytics", profile.AnalyticsToken)
		assert.Equal(t, "sc-domain:shop.example.com", profile.SearchSite)
		assert.Equal(t, "tok-search", profile.SearchToken)
		assert.Empty(t, profile.AnalyticsBaseURL)
		assert.Empty(t, profile.SearchBaseURL)
	})

	t.Run("base url overrides", func(t *testing.T) {
		profile, err := registry.GetProfile(ctx, "blog")
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:8081", profile.AnalyticsBaseURL)
		assert.Equal(t, "http://127.0.0.1:8082", profile.SearchBaseURL)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := registry.GetProfile(ctx, "nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("default section is not an account", func(t *testing.T) {
		_, err := registry.GetProfile(ctx, "DEFAULT")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestRegistry_GetProfileIncomplete(t *testing.T) {
	registry, err := NewRegistry(writeCredentials(t, `
[partial]
analytics_token = tok
search_site     = sc-domain:x.example.com
`))
	require.NoError(t, err)

	_, err = registry.GetProfile(context.Background(), "partial")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analytics_property")
}
