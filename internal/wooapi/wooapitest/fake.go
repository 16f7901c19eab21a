// Package wooapitest provides an in-memory wooapi.WOOAPI for tests.
package wooapitest

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"WooWithTypesense/internal/wooapi"
	"WooWithTypesense/internal/wooapi/models"
	optionsWoo "WooWithTypesense/internal/wooapi/options"
)

type Fake struct {
	Products   map[int]*models.Product
	Variations map[int][]*models.Variation
	Categories []*models.Term
	Tags       []*models.Term
	Attributes []*models.ProductAttribute
	AttrTerms  map[int][]*models.Term
	Settings   map[string]*models.Setting

	// Related is returned by ProductIDs regardless of filters when set.
	Related []int
	// Queries records every ProductIDs/ProductPage query.
	Queries []url.Values
}

var _ wooapi.WOOAPI = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Products:   map[int]*models.Product{},
		Variations: map[int][]*models.Variation{},
		AttrTerms:  map[int][]*models.Term{},
		Settings:   map[string]*models.Setting{},
	}
}

func (f *Fake) Add(products ...*models.Product) {
	for _, p := range products {
		f.Products[p.ID] = p
	}
}

func params(opts []optionsWoo.Option) url.Values {
	v := url.Values{}
	for _, o := range opts {
		s := new(optionsWoo.OptionStruct)
		o(s)
		v.Set(s.Key, s.Value)
	}
	return v
}

func (f *Fake) ProductGet(ID int) (*models.Product, error) {
	p, ok := f.Products[ID]
	if !ok {
		e := &models.ErrorWoo{Code: "woocommerce_rest_product_invalid_id", Message: "Invalid ID."}
		e.Data.Status = 404
		return nil, e
	}
	return p, nil
}

func (f *Fake) sorted(v url.Values) []*models.Product {
	var out []*models.Product
	for _, p := range f.Products {
		if s := v.Get("status"); s != "" && s != "any" && p.Status != s {
			continue
		}
		if t := v.Get("type"); t != "" && p.Type != t {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *Fake) ProductPage(opts ...optionsWoo.Option) (*wooapi.ProductPage, error) {
	v := params(opts)
	f.Queries = append(f.Queries, v)

	all := f.sorted(v)
	page, _ := strconv.Atoi(v.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(v.Get("per_page"))
	if perPage < 1 {
		perPage = 10
	}
	totalPages := (len(all) + perPage - 1) / perPage
	start := (page - 1) * perPage
	end := start + perPage
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}
	return &wooapi.ProductPage{
		Products:   all[start:end],
		Page:       page,
		Total:      len(all),
		TotalPages: totalPages,
	}, nil
}

func (f *Fake) ProductList(opts ...optionsWoo.Option) ([]*models.Product, error) {
	p, err := f.ProductPage(opts...)
	if err != nil {
		return nil, err
	}
	return p.Products, nil
}

func (f *Fake) ProductListAll(opts ...optionsWoo.Option) ([]*models.Product, error) {
	return f.sorted(params(opts)), nil
}

func (f *Fake) ProductIDs(opts ...optionsWoo.Option) ([]int, error) {
	v := params(opts)
	f.Queries = append(f.Queries, v)
	if f.Related != nil {
		return f.Related, nil
	}

	exclude := map[string]bool{}
	for _, id := range strings.Split(v.Get("exclude"), ",") {
		exclude[id] = true
	}
	categories := map[string]bool{}
	for _, id := range strings.Split(v.Get("category"), ",") {
		if id != "" {
			categories[id] = true
		}
	}
	limit, _ := strconv.Atoi(v.Get("per_page"))

	var ids []int
	for _, p := range f.sorted(v) {
		if exclude[strconv.Itoa(p.ID)] {
			continue
		}
		if s := v.Get("stock_status"); s != "" && p.StockStatus != s {
			continue
		}
		if len(categories) > 0 {
			match := false
			for _, c := range p.Categories {
				if categories[strconv.Itoa(c.ID)] {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		ids = append(ids, p.ID)
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids, nil
}

func (f *Fake) ProductVariations(productID int) ([]*models.Variation, error) {
	return f.Variations[productID], nil
}

func (f *Fake) ProductCategoryListAll() ([]*models.Term, error) { return f.Categories, nil }

func (f *Fake) ProductTagListAll() ([]*models.Term, error) { return f.Tags, nil }

func (f *Fake) AttributeList() ([]*models.ProductAttribute, error) { return f.Attributes, nil }

func (f *Fake) AttributeTermListAll(attributeID int) ([]*models.Term, error) {
	return f.AttrTerms[attributeID], nil
}

func (f *Fake) SettingGet(group, id string) (*models.Setting, error) {
	s, ok := f.Settings[group+"/"+id]
	if !ok {
		return nil, errors.Errorf("setting %s/%s not found", group, id)
	}
	return s, nil
}
