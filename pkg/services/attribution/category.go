package attribution

import "strings"

// DefaultCategory is where every page lands when no rule matches, keeping
// categorization total: a page always has exactly one category.
const DefaultCategory = "other"

// CategoryRule maps one path prefix onto a reporting category.
type CategoryRule struct {
	Prefix   string
	Category string
}

// CategoryRules is an ordered rule list evaluated top to bottom; the first
// matching prefix wins.
type CategoryRules []CategoryRule

// DefaultCategoryRules covers the storefront URL layout the reports were
// designed around.
func DefaultCategoryRules() CategoryRules {
	return CategoryRules{
		{Prefix: "/products/", Category: "products"},
		{Prefix: "/collections/", Category: "collections"},
		{Prefix: "/blogs/", Category: "blog"},
		{Prefix: "/pages/", Category: "pages"},
	}
}

// Categorize classifies a normalized page path. A rule with prefix
// "/products/" also claims the bare "/products" listing page, since
// normalization trims the trailing slash.
func (r CategoryRules) Categorize(page string) string {
	for _, rule := range r {
		if strings.HasPrefix(page, rule.Prefix) || page == strings.TrimSuffix(rule.Prefix, "/") {
			return rule.Category
		}
	}
	return DefaultCategory
}
