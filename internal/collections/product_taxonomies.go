package collections

import (
	"strconv"

	"WooWithTypesense/internal/cache"
	"WooWithTypesense/internal/wooapi/models"
	optionsWoo "WooWithTypesense/internal/wooapi/options"
	"WooWithTypesense/pkg/logging"
)

// TaxonomyItem is one term attached to a product document.
type TaxonomyItem struct {
	TermID int `json:"-"`

	Name               string       `json:"name"`
	URL                string       `json:"url"`
	Type               string       `json:"type"`
	Slug               string       `json:"slug"`
	NameAndType        string       `json:"nameAndType"`
	ChildAndParentTerm string       `json:"childAndParentTerm"`
	ParentTerm         string       `json:"parentTerm"`
	Breadcrumbs        []Breadcrumb `json:"breadcrumbs"`
	Filters            string       `json:"filters"`
}

type productTerm struct {
	taxonomy string
	term     *models.Term
}

// productTerms returns the product's terms grouped by taxonomy: categories,
// tags, then global attributes in product order.
func (p *Product) productTerms(product *models.Product) []productTerm {
	var out []productTerm

	resolve := func(taxonomy string, embedded *models.Term) *models.Term {
		if t, ok := p.terms.Term(taxonomy, embedded.ID); ok {
			return t
		}
		return embedded
	}
	for _, t := range product.Categories {
		out = append(out, productTerm{cache.TaxonomyCategory, resolve(cache.TaxonomyCategory, t)})
	}
	for _, t := range product.Tags {
		out = append(out, productTerm{cache.TaxonomyTag, resolve(cache.TaxonomyTag, t)})
	}

	for _, a := range product.Attributes {
		if a.Id == 0 {
			continue
		}
		attribute, ok := p.terms.Attribute(a.Id)
		if !ok {
			continue
		}
		taxonomy := cache.AttributeTaxonomy(attribute)
		options := a.Options
		if len(options) == 0 && a.Option != "" {
			options = []string{a.Option}
		}
		for _, name := range options {
			if t, ok := p.terms.TermByName(taxonomy, name); ok {
				out = append(out, productTerm{taxonomy, t})
			}
		}
	}
	return out
}

// termsMissing reports whether product uses a term or global attribute the
// cache has not seen yet.
func (p *Product) termsMissing(product *models.Product) bool {
	if !p.terms.Loaded() {
		return true
	}
	for _, t := range product.Categories {
		if _, ok := p.terms.Term(cache.TaxonomyCategory, t.ID); !ok {
			return true
		}
	}
	for _, t := range product.Tags {
		if _, ok := p.terms.Term(cache.TaxonomyTag, t.ID); !ok {
			return true
		}
	}
	for _, a := range product.Attributes {
		if a.Id == 0 {
			continue
		}
		attribute, ok := p.terms.Attribute(a.Id)
		if !ok {
			return true
		}
		options := a.Options
		if len(options) == 0 && a.Option != "" {
			options = []string{a.Option}
		}
		for _, name := range options {
			if _, ok := p.terms.TermByName(cache.AttributeTaxonomy(attribute), name); !ok {
				return true
			}
		}
	}
	return false
}

// RefreshTermsFor reloads the term cache when product references terms
// created after the last refresh.
func (p *Product) RefreshTermsFor(product *models.Product) {
	if !p.termsMissing(product) {
		return
	}
	if err := p.terms.RefreshTerms(); err != nil {
		logging.GetLogger().Errorf("failed RefreshTerms: %v", err)
	}
}

// Taxonomies lists the taxonomy items of a product. Variations use the
// terms of their parent product.
func (p *Product) Taxonomies(product *models.Product) []TaxonomyItem {
	source := product
	if product.IsType("variation") && product.ParentId != 0 {
		if parent := p.parent(product.ParentId); parent != nil {
			source = parent
		}
	}

	items := []TaxonomyItem{}
	for _, pt := range p.productTerms(source) {
		if p.opts.TaxonomyExclude.MatchString(pt.taxonomy) {
			continue
		}
		items = append(items, p.taxonomyItem(pt.taxonomy, pt.term))
	}
	return items
}

func (p *Product) taxonomyItem(taxonomy string, term *models.Term) TaxonomyItem {
	var parentName, parentSlug string
	if term.Parent != 0 {
		if parent, ok := p.terms.Term(taxonomy, term.Parent); ok {
			parentName, parentSlug = parent.Name, parent.Slug
		}
	}

	order := 0
	if p.opts.TermOrder {
		order = term.MenuOrder
	}

	link := p.opts.Links.Link(taxonomy, term)
	thumbSrc := ""
	if term.Image != nil {
		thumbSrc = term.Image.Src
	}

	childAndParent := ""
	if parentName != "" {
		childAndParent = term.Name + "|" + parentName
	}

	return TaxonomyItem{
		TermID:             term.ID,
		Name:               term.Name,
		URL:                link,
		Type:               taxonomy,
		Slug:               term.Slug,
		NameAndType:        term.Name + "|" + taxonomy,
		ChildAndParentTerm: childAndParent,
		ParentTerm:         parentName,
		Breadcrumbs:        p.opts.Links.Breadcrumbs(taxonomy, term),
		Filters: term.Name + "|" + taxonomy + "|" + term.Slug + "|" + parentName + "|" +
			strconv.Itoa(order) + "|" + models.MakeLinkRelative(link) + "|" + parentSlug + "|" + thumbSrc,
	}
}

// RelatedProductIDs returns up to RelatedLimit published, in-stock products
// sharing a product_cat term, excluding productID.
func (p *Product) RelatedProductIDs(productID int, taxonomies []TaxonomyItem) []int {
	var categories []int
	for _, t := range taxonomies {
		if t.Type == cache.TaxonomyCategory {
			categories = append(categories, t.TermID)
		}
	}

	opts := []optionsWoo.Option{
		optionsWoo.Exclude(productID),
		optionsWoo.PerPage(p.opts.RelatedLimit),
		optionsWoo.Page(1),
		optionsWoo.Status("publish"),
		optionsWoo.StockStatus("instock"),
	}
	if len(categories) > 0 {
		opts = append(opts, optionsWoo.Category(categories...))
	}

	ids, err := p.woo.ProductIDs(opts...)
	if err != nil {
		logging.GetLogger().Errorf("failed related ProductIDs(%d): %v", productID, err)
		return []int{}
	}
	if ids == nil {
		return []int{}
	}
	return ids
}

// RelatedProducts is RelatedProductIDs, optionally expanded into cards.
func (p *Product) RelatedProducts(productID int, taxonomies []TaxonomyItem, asObjects bool) interface{} {
	ids := p.RelatedProductIDs(productID, taxonomies)
	if !asObjects {
		return ids
	}
	return p.ProductsByIDs(ids)
}

type VariationCard struct {
	VariationID   int                `json:"variationId"`
	Attributes    map[string]string  `json:"attributes"`
	Price         map[string]float64 `json:"price"`
	RegularPrice  map[string]float64 `json:"regularPrice"`
	SalePrice     map[string]float64 `json:"salePrice"`
	StockQuantity int                `json:"stockQuantity"`
	StockStatus   string             `json:"stockStatus"`
	Backorder     string             `json:"backorder"`
	OnSale        bool               `json:"onSale"`
	Sku           string             `json:"sku"`
	Image         Image              `json:"image"`
}

// ProductCard is the compact product shape used for recommendations.
type ProductCard struct {
	ID            int                `json:"id"`
	Name          string             `json:"name"`
	Permalink     string             `json:"permalink"`
	Slug          string             `json:"slug"`
	Thumbnail     Image              `json:"thumbnail"`
	Price         map[string]float64 `json:"price"`
	RegularPrice  map[string]float64 `json:"regularPrice"`
	SalePrice     map[string]float64 `json:"salePrice"`
	OnSale        bool               `json:"onSale"`
	StockStatus   string             `json:"stockStatus"`
	Backorder     string             `json:"backorder"`
	CreatedAt     int64              `json:"createdAt"`
	PublishedAt   int64              `json:"publishedAt"`
	DaysPassed    int64              `json:"daysPassed"`
	GalleryImages []Image            `json:"galleryImages"`
	ProductType   string             `json:"productType"`
	StockQuantity int                `json:"stockQuantity"`
	Variations    []VariationCard    `json:"variations"`
}

// ProductsByIDs loads each id and renders it as a card. Zero ids and
// products that cannot be loaded are skipped.
func (p *Product) ProductsByIDs(ids []int) []ProductCard {
	logger := logging.GetLogger()

	cards := []ProductCard{}
	for _, id := range ids {
		if id == 0 {
			continue
		}
		product, err := p.woo.ProductGet(id)
		if err != nil {
			logger.Errorf("failed ProductGet(%d): %v", id, err)
			continue
		}

		price, regular, sale := p.prices(product)
		card := ProductCard{
			ID:            product.ID,
			Name:          product.Name,
			Permalink:     models.MakeLinkRelative(product.Permalink),
			Slug:          product.Slug,
			Thumbnail:     thumbnail(product.Thumbnail()),
			Price:         price,
			RegularPrice:  regular,
			SalePrice:     sale,
			OnSale:        product.OnSale,
			StockStatus:   product.StockStatus,
			Backorder:     product.Backorders,
			CreatedAt:     product.Created(),
			PublishedAt:   product.Created(),
			DaysPassed:    p.DaysPassed(product.Created()),
			GalleryImages: gallery(product.Gallery()),
			ProductType:   product.Type,
			StockQuantity: product.Stock(),
			Variations:    []VariationCard{},
		}

		if product.IsType("variable") || product.IsType("pw-gift-card") {
			card.Variations = p.variationCards(product)
		}
		cards = append(cards, card)
	}
	return cards
}

func (p *Product) variationCards(product *models.Product) []VariationCard {
	variations, err := p.woo.ProductVariations(product.ID)
	if err != nil {
		logging.GetLogger().Errorf("failed ProductVariations(%d): %v", product.ID, err)
		return []VariationCard{}
	}

	cards := []VariationCard{}
	for _, v := range variations {
		if v.Status != "" && v.Status != "publish" {
			continue
		}
		variation := v.AsProduct(product)
		price, regular, sale := p.prices(variation)

		image := Image{}
		if v.Image != nil {
			image = thumbnail(v.Image)
		}
		cards = append(cards, VariationCard{
			VariationID:   v.ID,
			Attributes:    v.AttributeMap(),
			Price:         price,
			RegularPrice:  regular,
			SalePrice:     sale,
			StockQuantity: variation.Stock(),
			StockStatus:   v.StockStatus,
			Backorder:     v.Backorders,
			OnSale:        v.OnSale,
			Sku:           v.Sku,
			Image:         image,
		})
	}
	return cards
}
