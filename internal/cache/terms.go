package cache

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"WooWithTypesense/internal/wooapi"
	"WooWithTypesense/internal/wooapi/models"
	"WooWithTypesense/pkg/logging"
)

const (
	TaxonomyCategory = "product_cat"
	TaxonomyTag      = "product_tag"
)

// CacheTerms keeps every product taxonomy term of the store in memory so
// document generation does not hit the REST API per term.
type CacheTerms interface {
	RefreshTerms() error
	Loaded() bool

	Term(taxonomy string, ID int) (*models.Term, bool)
	TermByName(taxonomy, name string) (*models.Term, bool)
	Terms(taxonomy string) []*models.Term
	Taxonomies() []string
	Ancestors(taxonomy string, ID int) []*models.Term

	Attribute(ID int) (*models.ProductAttribute, bool)
}

type terms struct {
	api wooapi.WOOAPI

	mu         sync.RWMutex
	loaded     bool
	byID       map[string]map[int]*models.Term
	byName     map[string]map[string]*models.Term
	attributes map[int]*models.ProductAttribute
}

func NewCacheTerms(api wooapi.WOOAPI) CacheTerms {
	return &terms{api: api}
}

func (t *terms) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

func (t *terms) RefreshTerms() error {
	logger := logging.GetLogger()
	logger.Info("Start RefreshTerms")
	defer logger.Info("End RefreshTerms")

	byID := map[string]map[int]*models.Term{}
	byName := map[string]map[string]*models.Term{}
	attributes := map[int]*models.ProductAttribute{}

	add := func(taxonomy string, list []*models.Term) {
		if byID[taxonomy] == nil {
			byID[taxonomy] = map[int]*models.Term{}
			byName[taxonomy] = map[string]*models.Term{}
		}
		for _, term := range list {
			byID[taxonomy][term.ID] = term
			byName[taxonomy][strings.ToLower(term.Name)] = term
		}
	}

	categories, err := t.api.ProductCategoryListAll()
	if err != nil {
		return errors.Wrap(err, "failed ProductCategoryListAll")
	}
	add(TaxonomyCategory, categories)
	logger.Infof("Categories cached: %d", len(categories))

	tags, err := t.api.ProductTagListAll()
	if err != nil {
		return errors.Wrap(err, "failed ProductTagListAll")
	}
	add(TaxonomyTag, tags)
	logger.Infof("Tags cached: %d", len(tags))

	attributeList, err := t.api.AttributeList()
	if err != nil {
		return errors.Wrap(err, "failed AttributeList")
	}
	for _, attribute := range attributeList {
		attributes[attribute.ID] = attribute
		list, err := t.api.AttributeTermListAll(attribute.ID)
		if err != nil {
			return errors.Wrapf(err, "failed AttributeTermListAll(%d)", attribute.ID)
		}
		add(AttributeTaxonomy(attribute), list)
	}
	logger.Infof("Attributes cached: %d", len(attributes))

	t.mu.Lock()
	t.byID, t.byName, t.attributes, t.loaded = byID, byName, attributes, true
	t.mu.Unlock()

	return nil
}

// AttributeTaxonomy returns the pa_ taxonomy name of a global attribute.
func AttributeTaxonomy(a *models.ProductAttribute) string {
	if strings.HasPrefix(a.Slug, "pa_") {
		return a.Slug
	}
	return "pa_" + a.Slug
}

func (t *terms) Term(taxonomy string, ID int) (*models.Term, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	term, ok := t.byID[taxonomy][ID]
	return term, ok
}

func (t *terms) TermByName(taxonomy, name string) (*models.Term, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	term, ok := t.byName[taxonomy][strings.ToLower(name)]
	return term, ok
}

// Terms returns the terms of one taxonomy ordered by menu_order, then name,
// then id.
func (t *terms) Terms(taxonomy string) []*models.Term {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*models.Term, 0, len(t.byID[taxonomy]))
	for _, term := range t.byID[taxonomy] {
		out = append(out, term)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MenuOrder != out[j].MenuOrder {
			return out[i].MenuOrder < out[j].MenuOrder
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (t *terms) Taxonomies() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.byID))
	for taxonomy := range t.byID {
		out = append(out, taxonomy)
	}
	sort.Strings(out)
	return out
}

// Ancestors returns the chain root..term for hierarchical taxonomies.
// A broken parent link ends the chain.
func (t *terms) Ancestors(taxonomy string, ID int) []*models.Term {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var chain []*models.Term
	seen := map[int]bool{}
	for id := ID; id != 0 && !seen[id]; {
		seen[id] = true
		term, ok := t.byID[taxonomy][id]
		if !ok {
			break
		}
		chain = append([]*models.Term{term}, chain...)
		id = term.Parent
	}
	return chain
}

func (t *terms) Attribute(ID int) (*models.ProductAttribute, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.attributes[ID]
	return a, ok
}
