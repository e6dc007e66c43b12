package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryRules_Categorize(t *testing.T) {
	rules := DefaultCategoryRules()

	tests := []struct {
		page string
		want string
	}{
		{page: "/products/steel-toe-boot", want: "products"},
		{page: "/products", want: "products"},
		{page: "/collections/work-boots", want: "collections"},
		{page: "/blogs/news/boot-care", want: "blog"},
		{page: "/pages/about", want: "pages"},
		{page: "/", want: DefaultCategory},
		{page: "/checkout", want: DefaultCategory},
		{page: "/productions/off-by-a-suffix", want: DefaultCategory},
		{page: "", want: DefaultCategory},
	}

	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Categorize(tt.page))
		})
	}
}

func TestCategoryRules_FirstMatchWins(t *testing.T) {
	rules := CategoryRules{
		{Prefix: "/shop/", Category: "shop"},
		{Prefix: "/shop/outlet/", Category: "outlet"},
	}

	assert.Equal(t, "shop", rules.Categorize("/shop/outlet/boots"))
}

func TestCategoryRules_CustomRulesReplaceDefaults(t *testing.T) {
	rules := CategoryRules{{Prefix: "/docs/", Category: "docs"}}

	assert.Equal(t, "docs", rules.Categorize("/docs/setup"))
	assert.Equal(t, DefaultCategory, rules.Categorize("/products/widget"))
}
