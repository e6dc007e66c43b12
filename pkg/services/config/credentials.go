// Package config loads the two configuration surfaces: the ini credentials
// file holding one profile per account, and the yaml settings file tuning
// cache, baseline and report behavior.
package config

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/seo-tools/searchledger/pkg/models/domain"
)

var ErrAccountNotFound = errors.New("account not found")

// Registry resolves account names against the credentials file.
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, account string) (*domain.AccountProfile, error)
}

type credentialsRegistry struct {
	cfg *ini.File
}

// NewRegistry loads the credentials file at path. Each section is one
// account:
//
//	[shop]
//	analytics_property = 123456789
//	analytics_token    = ya29...
//	search_site        = sc-domain:shop.example.com
//	search_token       = ya29...
//
// analytics_base_url and search_base_url override the public endpoints for
// proxies and tests.
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load credentials file %s: %w", path, err)
	}
	return &credentialsRegistry{cfg: cfg}, nil
}

func (r *credentialsRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range r.cfg.Sections() {
		if section.Name() == ini.DefaultSection || len(section.Keys()) == 0 {
			continue
		}
		profiles = append(profiles, section.Name())
	}
	return profiles, nil
}

func (r *credentialsRegistry) GetProfile(_ context.Context, account string) (*domain.AccountProfile, error) {
	if !r.cfg.HasSection(account) || account == ini.DefaultSection {
		return nil, fmt.Errorf("%w: %q", ErrAccountNotFound, account)
	}
	section := r.cfg.Section(account)
	if len(section.Keys()) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrAccountNotFound, account)
	}

	profile := &domain.AccountProfile{
		Name:              account,
		AnalyticsBaseURL:  section.Key("analytics_base_url").String(),
		AnalyticsProperty: section.Key("analytics_property").String(),
		AnalyticsToken:    section.Key("analytics_token").String(),
		SearchBaseURL:     section.Key("search_base_url").String(),
		SearchSite:        section.Key("search_site").String(),
		SearchToken:       section.Key("search_token").String(),
	}
	if profile.AnalyticsProperty == "" {
		return nil, fmt.Errorf("account %q: analytics_property is not set", account)
	}
	if profile.SearchSite == "" {
		return nil, fmt.Errorf("account %q: search_site is not set", account)
	}
	return profile, nil
}
