package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooWithTypesense/internal/wooapi/models"
	"WooWithTypesense/internal/wooapi/wooapitest"
)

func newFake() *wooapitest.Fake {
	f := wooapitest.New()
	f.Categories = []*models.Term{
		{ID: 1, Name: "Clothing", Slug: "clothing"},
		{ID: 2, Name: "Shirts", Slug: "shirts", Parent: 1, MenuOrder: 2},
		{ID: 3, Name: "Orphan", Slug: "orphan", Parent: 99},
	}
	f.Tags = []*models.Term{{ID: 10, Name: "Sale", Slug: "sale"}}
	f.Attributes = []*models.ProductAttribute{{ID: 5, Name: "Color", Slug: "pa_color"}}
	f.AttrTerms[5] = []*models.Term{{ID: 50, Name: "Red", Slug: "red"}}
	return f
}

func TestRefreshTerms(t *testing.T) {
	c := NewCacheTerms(newFake())
	assert.False(t, c.Loaded())

	require.NoError(t, c.RefreshTerms())
	assert.True(t, c.Loaded())

	assert.Equal(t, []string{"pa_color", "product_cat", "product_tag"}, c.Taxonomies())

	term, ok := c.TermByName("pa_color", "red")
	require.True(t, ok)
	assert.Equal(t, 50, term.ID)

	_, ok = c.Term(TaxonomyTag, 10)
	assert.True(t, ok)

	a, ok := c.Attribute(5)
	require.True(t, ok)
	assert.Equal(t, "pa_color", AttributeTaxonomy(a))
}

func TestAncestors(t *testing.T) {
	c := NewCacheTerms(newFake())
	require.NoError(t, c.RefreshTerms())

	chain := c.Ancestors(TaxonomyCategory, 2)
	require.Len(t, chain, 2)
	assert.Equal(t, "clothing", chain[0].Slug)
	assert.Equal(t, "shirts", chain[1].Slug)

	chain = c.Ancestors(TaxonomyCategory, 3)
	require.Len(t, chain, 1)
	assert.Equal(t, "orphan", chain[0].Slug)
}

func TestTermsOrdering(t *testing.T) {
	f := newFake()
	f.Categories = append(f.Categories, &models.Term{ID: 4, Name: "Accessories", Slug: "accessories"})
	c := NewCacheTerms(f)
	require.NoError(t, c.RefreshTerms())

	list := c.Terms(TaxonomyCategory)
	require.Len(t, list, 4)
	assert.Equal(t, 4, list[0].ID, "same menu_order sorts by name")
	assert.Equal(t, 1, list[1].ID)
	assert.Equal(t, 3, list[2].ID)
	assert.Equal(t, 2, list[3].ID)
}

func TestAttributeTaxonomyAddsPrefix(t *testing.T) {
	assert.Equal(t, "pa_size", AttributeTaxonomy(&models.ProductAttribute{Slug: "size"}))
}
