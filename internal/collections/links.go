package collections

import (
	"strings"

	"WooWithTypesense/internal/cache"
	"WooWithTypesense/internal/wooapi/models"
)

// TermLinks builds term archive permalinks following the default
// WooCommerce rewrite bases.
type TermLinks struct {
	SiteURL       string
	CategoryBase  string
	TagBase       string
	AttributeBase string
	Terms         cache.CacheTerms
}

type Breadcrumb struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Link returns the absolute archive url of term.
func (l TermLinks) Link(taxonomy string, term *models.Term) string {
	var parts []string
	switch {
	case taxonomy == cache.TaxonomyCategory:
		parts = append(parts, l.CategoryBase)
		chain := l.Terms.Ancestors(taxonomy, term.ID)
		if len(chain) == 0 {
			parts = append(parts, term.Slug)
		}
		for _, t := range chain {
			parts = append(parts, t.Slug)
		}
	case taxonomy == cache.TaxonomyTag:
		parts = append(parts, l.TagBase, term.Slug)
	case strings.HasPrefix(taxonomy, "pa_"):
		if l.AttributeBase != "" {
			parts = append(parts, l.AttributeBase)
		}
		parts = append(parts, strings.TrimPrefix(taxonomy, "pa_"), term.Slug)
	default:
		parts = append(parts, taxonomy, term.Slug)
	}

	path := strings.Trim(strings.Join(parts, "/"), "/")
	return strings.TrimRight(l.SiteURL, "/") + "/" + path + "/"
}

// Breadcrumbs lists the term and its ancestors, root first, with relative urls.
func (l TermLinks) Breadcrumbs(taxonomy string, term *models.Term) []Breadcrumb {
	chain := l.Terms.Ancestors(taxonomy, term.ID)
	if len(chain) == 0 {
		chain = []*models.Term{term}
	}
	out := make([]Breadcrumb, 0, len(chain))
	for _, t := range chain {
		out = append(out, Breadcrumb{Title: t.Name, URL: models.MakeLinkRelative(l.Link(taxonomy, t))})
	}
	return out
}
