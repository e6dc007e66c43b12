package domain

// Account identifies one configured analytics property / search site pair.
type Account struct {
	Name string
}

// AccountProfile carries the upstream endpoints and credentials for one
// account, as loaded from the credentials file.
type AccountProfile struct {
	Name string

	AnalyticsBaseURL  string
	AnalyticsProperty string
	AnalyticsToken    string

	SearchBaseURL string
	SearchSite    string
	SearchToken   string
}
