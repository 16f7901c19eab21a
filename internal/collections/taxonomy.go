package collections

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"

	"WooWithTypesense/internal/cache"
	"WooWithTypesense/internal/typesense"
	"WooWithTypesense/internal/wooapi/models"
	"WooWithTypesense/pkg/logging"
)

// Taxonomy indexes product_cat, product_tag and attribute terms.
type Taxonomy struct {
	*Base
	terms     cache.CacheTerms
	links     TermLinks
	exclude   *regexp.Regexp
	termOrder bool
	batchSize int
	now       func() time.Time
}

func NewTaxonomy(client typesense.Client, storeID string, terms cache.CacheTerms, opts ProductOptions) *Taxonomy {
	links := opts.Links
	links.Terms = terms
	if links.SiteURL == "" {
		links.SiteURL = opts.SiteURL
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 50
	}
	return &Taxonomy{
		Base:      NewBase(client, "taxonomy", storeID),
		terms:     terms,
		links:     links,
		exclude:   opts.TaxonomyExclude,
		termOrder: opts.TermOrder,
		batchSize: batch,
		now:       time.Now,
	}
}

func (t *Taxonomy) schema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Fields: []api.Field{
			field("id", "string"),
			field("termId", "string", facet),
			field("name", "string", facet, sortable),
			field("slug", "string", facet),
			field("type", "string", facet),
			field("permalink", "string"),
			field("description", "string", optional),
			field("parentTerm", "string", facet, optional),
			field("parentSlug", "string", optional),
			field("order", "int64", sortable),
			field("productCount", "int64"),
			field("thumbnail", "object", optional),
			field("breadcrumbs", "object[]", optional),
			field("updatedAt", "int64"),
		},
		DefaultSortingField: pointer.String("updatedAt"),
		EnableNestedFields:  pointer.True(),
	}
}

// Document maps one term onto a taxonomy document.
func (t *Taxonomy) Document(taxonomy string, term *models.Term) map[string]interface{} {
	var parentName, parentSlug string
	if term.Parent != 0 {
		if parent, ok := t.terms.Term(taxonomy, term.Parent); ok {
			parentName, parentSlug = parent.Name, parent.Slug
		}
	}
	order := 0
	if t.termOrder {
		order = term.MenuOrder
	}
	thumb := Image{}
	if term.Image != nil {
		thumb = Image{ID: term.Image.ID, Title: term.Image.Name, AltText: term.Image.Alt, Src: term.Image.Src}
	}

	id := strconv.Itoa(term.ID)
	return map[string]interface{}{
		"id":           id,
		"termId":       id,
		"name":         term.Name,
		"slug":         term.Slug,
		"type":         taxonomy,
		"permalink":    models.MakeLinkRelative(t.links.Link(taxonomy, term)),
		"description":  term.Description,
		"parentTerm":   parentName,
		"parentSlug":   parentSlug,
		"order":        order,
		"productCount": term.Count,
		"thumbnail":    thumb,
		"breadcrumbs":  t.links.Breadcrumbs(taxonomy, term),
		"updatedAt":    t.now().Unix(),
	}
}

// IndexAll recreates the collection from a fresh term cache.
func (t *Taxonomy) IndexAll(ctx context.Context) (*IndexResult, error) {
	logger := logging.GetLogger()
	logger.Info("Start Taxonomy.IndexAll")
	defer logger.Info("End Taxonomy.IndexAll")

	if err := t.terms.RefreshTerms(); err != nil {
		return nil, errors.Wrap(err, "failed RefreshTerms")
	}

	if err := t.Drop(ctx); err != nil {
		logger.Debugf("drop %s: %v", t.Name(), err)
	}
	if err := t.Create(ctx, t.schema()); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", t.Name())
	}

	var documents []interface{}
	for _, taxonomy := range t.terms.Taxonomies() {
		if t.exclude != nil && t.exclude.MatchString(taxonomy) {
			continue
		}
		for _, term := range t.terms.Terms(taxonomy) {
			documents = append(documents, t.Document(taxonomy, term))
		}
	}

	result := &IndexResult{}
	for start := 0; start < len(documents); start += t.batchSize {
		end := start + t.batchSize
		if end > len(documents) {
			end = len(documents)
		}
		rows, err := t.Import(ctx, documents[start:end])
		if err != nil {
			logger.Errorf("failed taxonomy import: %v", err)
			result.Failed += end - start
			continue
		}
		for _, row := range rows {
			if row.Success {
				result.Indexed++
			} else {
				logger.Debugf("taxonomy import failed: %s %s", row.Document, row.Error)
				result.Failed++
			}
		}
	}

	logger.Infof("Terms indexed: %d, failed: %d", result.Indexed, result.Failed)
	return result, nil
}
