package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare path unchanged", raw: "/boots/a", want: "/boots/a"},
		{name: "full url reduced to path", raw: "https://shop.example.com/boots/a?ref=x", want: "/boots/a"},
		{name: "host case irrelevant", raw: "https://Shop.Example.com/boots/a#reviews", want: "/boots/a"},
		{name: "url with port", raw: "https://shop.example.com:8443/boots/a", want: "/boots/a"},
		{name: "bare domain is root", raw: "https://shop.example.com", want: "/"},
		{name: "trailing slash trimmed", raw: "/boots/a/", want: "/boots/a"},
		{name: "repeated trailing slashes trimmed", raw: "/boots/a///", want: "/boots/a"},
		{name: "root kept", raw: "/", want: "/"},
		{name: "slashes collapse to root", raw: "///", want: "/"},
		{name: "query string dropped", raw: "/boots/a?utm_source=mail", want: "/boots/a"},
		{name: "fragment dropped", raw: "/boots/a#top", want: "/boots/a"},
		{name: "surrounding whitespace trimmed", raw: "  /boots/a ", want: "/boots/a"},
		{name: "missing leading slash added", raw: "boots/a", want: "/boots/a"},
		{name: "unparseable url falls back to cutting at query", raw: "/p%zz?ref=1", want: "/p%zz"},
		{name: "empty stays empty", raw: "", want: ""},
		{name: "whitespace only stays empty", raw: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePage(tt.raw))
		})
	}
}
