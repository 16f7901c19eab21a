package collections

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"

	"WooWithTypesense/internal/cache"
	"WooWithTypesense/internal/config"
	"WooWithTypesense/internal/typesense"
	"WooWithTypesense/internal/wooapi"
	"WooWithTypesense/internal/wooapi/models"
	optionsWoo "WooWithTypesense/internal/wooapi/options"
	"WooWithTypesense/pkg/logging"
)

const (
	sourceImport       = "wooless-product-import"
	sourceFailedImport = "wooless-failed-product-import"
	sourceInitialize   = "wooless-product-collection-initialize"
	sourceUpdate       = "wooless-product-update"
)

// ProductExtension lets optional integrations add schema fields and
// document data, e.g. Product Bundles.
type ProductExtension interface {
	Fields(fields []api.Field) []api.Field
	Data(document map[string]interface{}, product *models.Product) map[string]interface{}
}

// ProductEvents receives a notification after a product document was upserted.
type ProductEvents interface {
	ProductUpdated(productID int, product *models.Product) error
}

type ProductOptions struct {
	SiteURL          string
	Currency         string
	Currencies       []string
	BatchSize        int
	RelatedLimit     int
	ProductTypes     []string
	TaxonomyExclude  *regexp.Regexp
	TermOrder        bool
	ExpandVariations bool
	Links            TermLinks
}

// ProductOptionsFromConfig fills everything but Currency and Links.Terms.
func ProductOptionsFromConfig(cfg *config.Config) ProductOptions {
	return ProductOptions{
		SiteURL:          cfg.WORDPRESS.URL,
		Currency:         cfg.WOOCOMMERCE.Currency,
		Currencies:       cfg.WOOCOMMERCE.Currencies,
		BatchSize:        cfg.SYNC.BatchSize,
		RelatedLimit:     cfg.SYNC.RelatedLimit,
		ProductTypes:     cfg.SYNC.ProductTypes,
		TaxonomyExclude:  regexp.MustCompile(cfg.SYNC.TaxonomyExclude),
		TermOrder:        cfg.SYNC.TermOrder == 1,
		ExpandVariations: cfg.SYNC.ExpandVariations == 1,
		Links: TermLinks{
			SiteURL:       cfg.WORDPRESS.URL,
			CategoryBase:  cfg.SYNC.CategoryBase,
			TagBase:       cfg.SYNC.TagBase,
			AttributeBase: cfg.SYNC.AttributeBase,
		},
	}
}

type Product struct {
	*Base
	woo        wooapi.WOOAPI
	terms      cache.CacheTerms
	opts       ProductOptions
	extensions []ProductExtension
	events     ProductEvents
	now        func() time.Time

	mu      sync.Mutex
	parents map[int]*models.Product
}

func NewProduct(client typesense.Client, storeID string, woo wooapi.WOOAPI, terms cache.CacheTerms, opts ProductOptions) *Product {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.RelatedLimit <= 0 {
		opts.RelatedLimit = 10
	}
	if opts.TaxonomyExclude == nil {
		opts.TaxonomyExclude = regexp.MustCompile(`^(ef_|elementor|nav_|ml-|ufaq|translation_priority|wpcode_)`)
	}
	opts.Links.Terms = terms
	if opts.Links.SiteURL == "" {
		opts.Links.SiteURL = opts.SiteURL
	}
	return &Product{
		Base:    NewBase(client, "product", storeID),
		woo:     woo,
		terms:   terms,
		opts:    opts,
		now:     time.Now,
		parents: map[int]*models.Product{},
	}
}

// Use registers extensions; they run in registration order.
func (p *Product) Use(extensions ...ProductExtension) {
	p.extensions = append(p.extensions, extensions...)
}

// SetEvents sets the receiver of product-updated notifications.
func (p *Product) SetEvents(events ProductEvents) {
	p.events = events
}

func (p *Product) currencies() []string {
	if len(p.opts.Currencies) > 0 {
		return p.opts.Currencies
	}
	return []string{p.opts.Currency}
}

func recommendationSchema(kind string) []api.Field {
	name := "crossSellProducts"
	switch kind {
	case "related":
		name = "relatedProducts"
	case "upsell":
		name = "upsellProducts"
	}
	return []api.Field{field(name, "int64[]", optional)}
}

func (p *Product) priceSchema() []api.Field {
	fields := []api.Field{
		field("price", "object", facet),
		field("regularPrice", "object"),
		field("salePrice", "object"),
	}
	for _, currency := range p.currencies() {
		fields = append(fields,
			field("price."+currency, "float", optional, facet),
			field("regularPrice."+currency, "float", optional),
			field("salePrice."+currency, "float", optional),
		)
	}
	return fields
}

// Fields is the product collection schema.
func (p *Product) Fields() []api.Field {
	fields := []api.Field{
		field("id", "string", facet),
		field("productId", "string", facet),
		field("parentId", "int64", facet),
		field("shortDescription", "string", optional),
		field("description", "string"),
		field("name", "string", facet, sortable),
		field("permalink", "string"),
		field("slug", "string", facet),
		field("seoFullHead", "string", optional),
		field("sku", "string"),
		field("onSale", "bool", facet),
		field("stockQuantity", "int64"),
		field("stockStatus", "string", sortable, facet),
		field("backorder", "string", sortable, facet),
		field("status", "string", sortable, facet),
		field("shippingClass", "string"),
		field("updatedAt", "int64"),
		field("createdAt", "int64"),
		field("publishedAt", "int64", optional, facet),
		field("daysPassed", "int64", optional, facet),
		field("isFeatured", "bool", facet),
		field("totalSales", "int64"),
		field("productType", "string", facet),
		field("taxonomies", "object[]", facet, optional),
		// string[] because nested object arrays are flattened into arrays
		field("taxonomies.name", "string[]", facet, optional),
		field("taxonomies.url", "string[]", optional),
		field("taxonomies.type", "string[]", facet, optional),
		field("taxonomies.slug", "string[]", facet, optional),
		field("taxonomies.nameAndType", "string[]", facet, optional),
		field("taxonomies.childAndParentTerm", "string[]", facet, optional),
		field("taxonomies.parentTerm", "string[]", optional),
		field("taxonomies.breadcrumbs", "object[]", optional),
		field("taxonomies.filters", "string[]", optional, facet),
		field("judgemeReviews", "object", optional),
		field("judgemeReviews.id", "int64", optional),
		field("judgemeReviews.externalId", "int64", optional),
		field("judgemeReviews.average", "float", optional),
		field("judgemeReviews.count", "int32", optional),
		field("judgemeReviews.percentage", "object[]", optional),
		field("yotpoReviews", "object", optional),
		field("yotpoReviews.product_score", "float", optional),
		field("yotpoReviews.total_reviews", "int64", optional),
		field("thumbnail", "object"),
		field("thumbnail.altText", "string", optional),
		field("thumbnail.id", "int64", optional),
		field("menuOrder", "int64", optional),
		field("thumbnail.src", "string", optional),
		field("thumbnail.title", "string", optional),
		field("metaData", "object", optional),
		field("metaData.priceWithTax", "object", optional),
		field("metaData.priceWithTax.AUD", "float", optional),
		field("metaData.priceWithTax.NZD", "float", optional),
		field("metaData.priceWithTax.USD", "float", optional),
		field("metaData.priceWithTax.GBP", "float", optional),
		field("metaData.priceWithTax.CAD", "float", optional),
		field("metaData.priceWithTax.EUR", "float", optional),
		field("metaData.productLabel", "string", optional),
	}

	fields = append(fields, recommendationSchema("cross-sell")...)
	fields = append(fields, recommendationSchema("related")...)
	fields = append(fields, recommendationSchema("upsell")...)
	fields = append(fields, p.priceSchema()...)

	for _, e := range p.extensions {
		fields = e.Fields(fields)
	}
	return fields
}

// Initialize recreates the collection. Creation failures are logged only.
func (p *Product) Initialize(ctx context.Context) {
	logger := logging.GetLogger().GetLoggerWithField("source", sourceInitialize)
	logger.Debug("Start Initialize")
	defer logger.Debug("End Initialize")

	if err := p.Drop(ctx); err != nil {
		logger.Errorf("failed to drop %s: %v", p.Name(), err)
	}

	logger.Debugf("TS Product collection: %s", p.Name())
	err := p.Create(ctx, &api.CollectionSchema{
		Fields:              p.Fields(),
		DefaultSortingField: pointer.String("updatedAt"),
		EnableNestedFields:  pointer.True(),
	})
	if err != nil {
		logger.Errorf("TS Product collection initialize error: %v", err)
	}
}

// ImportResult is the progress report of one product page.
type ImportResult struct {
	ImportedProductsCount int  `json:"imported_products_count"`
	TotalImports          int  `json:"total_imports"`
	HasNextData           bool `json:"has_next_data"`
	NextPage              *int `json:"next_page"`
}

func (p *Product) allowedType(t string) bool {
	for _, allowed := range p.opts.ProductTypes {
		if allowed == t {
			return true
		}
	}
	return len(p.opts.ProductTypes) == 0
}

// IndexPage imports one batch of published products. Page 1 recreates the
// collection first. Failed rows are logged and skipped.
func (p *Product) IndexPage(ctx context.Context, page int) (*ImportResult, error) {
	logger := logging.GetLogger().GetLoggerWithField("source", sourceImport)
	failed := logging.GetLogger().GetLoggerWithField("source", sourceFailedImport)
	logger.Infof("Start IndexPage %d", page)
	defer logger.Infof("End IndexPage %d", page)

	failed.Debug("============================ START OF PRODUCT IMPORT ============================")
	defer failed.Debug("============================ END OF PRODUCT IMPORT ============================")

	if page < 1 {
		page = 1
	}
	if page == 1 {
		p.Initialize(ctx)
	}
	if page == 1 || !p.terms.Loaded() {
		if err := p.terms.RefreshTerms(); err != nil {
			logger.Errorf("failed RefreshTerms: %v", err)
		}
	}

	batch, err := p.woo.ProductPage(
		optionsWoo.Status("publish"),
		optionsWoo.Page(page),
		optionsWoo.PerPage(p.opts.BatchSize),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed ProductPage(%d)", page)
	}

	p.mu.Lock()
	p.parents = map[int]*models.Product{}
	p.mu.Unlock()

	var documents []interface{}
	for _, product := range p.expand(batch.Products) {
		if doc := p.GenerateDocument(product); doc != nil {
			documents = append(documents, doc)
		}
	}

	result := &ImportResult{TotalImports: len(documents)}
	if len(documents) > 0 {
		rows, err := p.Import(ctx, documents)
		if err != nil {
			logger.Errorf("TS Product Import error: %v", err)
		}
		for _, row := range rows {
			if row.Success {
				result.ImportedProductsCount++
				continue
			}
			b, _ := json.Marshal(row)
			failed.Debug(string(b))
		}
		logger.Debugf("TS Product Import result: %d/%d", result.ImportedProductsCount, result.TotalImports)
	}

	result.HasNextData = batch.HasNext() || (batch.TotalPages == 0 && len(batch.Products) == p.opts.BatchSize)
	if result.HasNextData {
		next := page + 1
		result.NextPage = &next
	}
	return result, nil
}

// expand filters products by the allowed types and adds the variations of
// variable products right after their parent.
func (p *Product) expand(products []*models.Product) []*models.Product {
	logger := logging.GetLogger().GetLoggerWithField("source", sourceImport)

	var out []*models.Product
	for _, product := range products {
		if !p.allowedType(product.Type) {
			continue
		}
		out = append(out, product)

		if !product.IsType("variable") || !p.opts.ExpandVariations || !p.allowedType("variation") {
			continue
		}
		p.mu.Lock()
		p.parents[product.ID] = product
		p.mu.Unlock()

		variations, err := p.woo.ProductVariations(product.ID)
		if err != nil {
			logger.Errorf("failed ProductVariations(%d): %v", product.ID, err)
			continue
		}
		for _, v := range variations {
			variation := v.AsProduct(product)
			if variation.Status != "publish" {
				continue
			}
			out = append(out, variation)
		}
	}
	return out
}

func (p *Product) parent(id int) *models.Product {
	p.mu.Lock()
	parent, ok := p.parents[id]
	p.mu.Unlock()
	if ok {
		return parent
	}

	parent, err := p.woo.ProductGet(id)
	if err != nil {
		logging.GetLogger().Errorf("failed ProductGet(%d) for variation parent: %v", id, err)
		return nil
	}
	p.mu.Lock()
	p.parents[id] = parent
	p.mu.Unlock()
	return parent
}

func (p *Product) prices(product *models.Product) (price, regular, sale map[string]float64) {
	currency := p.opts.Currency
	return map[string]float64{currency: models.Money(product.Price)},
		map[string]float64{currency: models.Money(product.RegularPrice)},
		map[string]float64{currency: models.Money(product.SalePrice)}
}

// GenerateDocument maps a product onto a collection document. nil in, nil out.
func (p *Product) GenerateDocument(product *models.Product) map[string]interface{} {
	if product == nil {
		return nil
	}

	publishedAt := product.Created()
	taxonomies := p.Taxonomies(product)

	related, crossSell, upsell := []int{}, []int{}, []int{}
	if !product.IsType("variation") {
		related = p.RelatedProductIDs(product.ID, taxonomies)
		if product.CrossSellIds != nil {
			crossSell = product.CrossSellIds
		}
		if product.UpsellIds != nil {
			upsell = product.UpsellIds
		}
	}

	price, regular, sale := p.prices(product)
	id := strconv.Itoa(product.ID)

	document := map[string]interface{}{
		"id":                id,
		"productId":         id,
		"parentId":          product.ParentId,
		"shortDescription":  Autop(product.ShortDescription),
		"description":       Autop(product.Description),
		"name":              product.Name,
		"permalink":         models.MakeLinkRelative(product.Permalink),
		"slug":              product.Slug,
		"thumbnail":         thumbnail(product.Thumbnail()),
		"sku":               product.Sku,
		"price":             price,
		"regularPrice":      regular,
		"salePrice":         sale,
		"onSale":            product.OnSale,
		"stockQuantity":     product.Stock(),
		"stockStatus":       product.StockStatus,
		"backorder":         product.Backorders,
		"shippingClass":     product.ShippingClass,
		"updatedAt":         product.Modified(),
		"createdAt":         product.Created(),
		"publishedAt":       publishedAt,
		"daysPassed":        p.DaysPassed(publishedAt),
		"isFeatured":        product.Featured,
		"totalSales":        int(product.TotalSales),
		"galleryImages":     gallery(product.Gallery()),
		"taxonomies":        taxonomies,
		"productType":       product.Type,
		"crossSellProducts": crossSell,
		"relatedProducts":   related,
		"upsellProducts":    upsell,
		"additionalTabs":    AdditionalTabs(product),
		"status":            product.Status,
		"menuOrder":         product.MenuOrder,
		"metaData":          map[string]interface{}{},
	}

	for _, e := range p.extensions {
		document = e.Data(document, product)
	}
	return document
}

// SyncResult is the outcome of a single product upsert.
type SyncResult struct {
	DataSent map[string]interface{} `json:"data_sent"`
	Response map[string]interface{} `json:"response,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// Sync upserts one product and notifies ProductEvents on success.
func (p *Product) Sync(ctx context.Context, product *models.Product) *SyncResult {
	logger := logging.GetLogger().GetLoggerWithField("source", sourceUpdate)

	document := p.GenerateDocument(product)
	response, err := p.Upsert(ctx, document)
	if err != nil {
		logger.Errorf("TS Product Update error: %v", err)
		return &SyncResult{DataSent: document, Error: err.Error()}
	}

	if p.events != nil {
		if err := p.events.ProductUpdated(product.ID, product); err != nil {
			logger.Errorf("failed ProductUpdated(%d): %v", product.ID, err)
		}
	}
	return &SyncResult{DataSent: document, Response: response}
}

// SyncWithVariations syncs product and, when variations are expanded, its
// published variations. Products of a type that is not indexed are skipped.
func (p *Product) SyncWithVariations(ctx context.Context, product *models.Product) []*SyncResult {
	p.RefreshTermsFor(product)
	results := []*SyncResult{}
	for _, item := range p.expand([]*models.Product{product}) {
		results = append(results, p.Sync(ctx, item))
	}
	return results
}

// DaysPassed is the number of whole days between ts and now.
func (p *Product) DaysPassed(ts int64) int64 {
	diff := p.now().Unix() - ts
	return int64(math.Floor(float64(diff) / 86400))
}

type Image struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	AltText string `json:"altText"`
	Src     string `json:"src"`
}

func thumbnail(img *models.ProductImage) Image {
	if img == nil {
		return Image{}
	}
	alt := img.Alt
	if alt == "" {
		alt = img.Name
	}
	return Image{ID: img.Id, Title: img.Name, AltText: alt, Src: img.Src}
}

func gallery(images []models.ProductImage) []Image {
	out := make([]Image, 0, len(images))
	for i := range images {
		out = append(out, thumbnail(&images[i]))
	}
	return out
}

type Tab struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AdditionalTabs reads the _additional_tabs meta ([{tab_title, tab_content}]).
func AdditionalTabs(product *models.Product) []Tab {
	tabs := []Tab{}
	value, ok := product.Meta("_additional_tabs")
	if !ok {
		return tabs
	}
	list, ok := value.([]interface{})
	if !ok {
		return tabs
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		title, _ := m["tab_title"].(string)
		content, _ := m["tab_content"].(string)
		tabs = append(tabs, Tab{Title: title, Content: content})
	}
	return tabs
}

var (
	blockTag       = regexp.MustCompile(`(?i)^<(p|div|ul|ol|li|h[1-6]|table|blockquote|pre|figure|section|hr|form|dl)[\s>/]`)
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
)

// Autop wraps double line break separated blocks in <p> and turns single
// line breaks into <br />, like WordPress's wpautop for plain content.
func Autop(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var b strings.Builder
	for _, block := range paragraphBreak.Split(strings.TrimSpace(text), -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if blockTag.MatchString(block) {
			b.WriteString(block + "\n")
			continue
		}
		b.WriteString("<p>" + strings.ReplaceAll(block, "\n", "<br />\n") + "</p>\n")
	}
	return b.String()
}
