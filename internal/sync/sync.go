// Package sync pushes WooCommerce and WordPress data into the store's
// Typesense collections.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/pkg/errors"

	"WooWithTypesense/internal/cache"
	"WooWithTypesense/internal/collections"
	"WooWithTypesense/internal/extensions/bundle"
	"WooWithTypesense/internal/settings"
	"WooWithTypesense/internal/wooapi"
	wp_api "WooWithTypesense/internal/wp-api"
	"WooWithTypesense/pkg/logging"
)

type Options struct {
	Product        collections.ProductOptions
	MyAccount      collections.MyAccountMenu
	ProductBundles bool
	// StoreFrontURL is published in site_info.
	StoreFrontURL string
}

type Service struct {
	woo      wooapi.WOOAPI
	wp       wp_api.API
	settings *settings.Settings
	events   collections.ProductEvents
	terms    cache.CacheTerms
	opts     Options

	currencyOnce gosync.Once
}

func NewService(woo wooapi.WOOAPI, wp wp_api.API, st *settings.Settings, events collections.ProductEvents, opts Options) *Service {
	return &Service{
		woo:      woo,
		wp:       wp,
		settings: st,
		events:   events,
		terms:    cache.NewCacheTerms(woo),
		opts:     opts,
	}
}

// Collections are the store's Typesense collections bound to one connection.
type Collections struct {
	Product  *collections.Product
	Menu     *collections.Menu
	Taxonomy *collections.Taxonomy
	SiteInfo *collections.SiteInfo
	Bundle   *bundle.Extension
	StoreID  string
}

func (s *Service) productOptions() collections.ProductOptions {
	s.currencyOnce.Do(func() {
		s.opts.Product.Currency = collections.ResolveCurrency(s.woo, s.opts.Product.Currency)
	})
	return s.opts.Product
}

// Collections connects with the stored credentials.
func (s *Service) Collections() (*Collections, error) {
	client, creds, err := s.settings.Client()
	if err != nil {
		return nil, err
	}
	opts := s.productOptions()

	c := &Collections{
		Product:  collections.NewProduct(client, creds.StoreID, s.woo, s.terms, opts),
		Menu:     collections.NewMenu(client, creds.StoreID, s.wp, s.opts.MyAccount),
		Taxonomy: collections.NewTaxonomy(client, creds.StoreID, s.terms, opts),
		SiteInfo: collections.NewSiteInfo(client, creds.StoreID),
		StoreID:  creds.StoreID,
	}
	if s.opts.ProductBundles {
		c.Bundle = bundle.New(s.woo)
		c.Product.Use(c.Bundle)
	}
	if s.events != nil {
		c.Product.SetEvents(s.events)
	}
	return c, nil
}

// SyncProducts imports one page of products.
func (s *Service) SyncProducts(ctx context.Context, page int) (*collections.ImportResult, error) {
	c, err := s.Collections()
	if err != nil {
		return nil, err
	}
	return c.Product.IndexPage(ctx, page)
}

// ProductsResult totals a full product import.
type ProductsResult struct {
	Pages    int `json:"pages"`
	Imported int `json:"imported_products_count"`
	Total    int `json:"total_imports"`
}

// SyncAllProducts imports pages until the store reports no more data.
func (s *Service) SyncAllProducts(ctx context.Context) (*ProductsResult, error) {
	logger := logging.GetLogger()
	logger.Info("Start SyncAllProducts")
	defer logger.Info("End SyncAllProducts")

	c, err := s.Collections()
	if err != nil {
		return nil, err
	}

	result := &ProductsResult{}
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		r, err := c.Product.IndexPage(ctx, page)
		if err != nil {
			return result, err
		}
		result.Pages++
		result.Imported += r.ImportedProductsCount
		result.Total += r.TotalImports
		if !r.HasNextData {
			break
		}
	}
	logger.Infof("Products imported: %d/%d in %d pages", result.Imported, result.Total, result.Pages)
	return result, nil
}

// SyncProduct re-indexes one product, with its variations.
func (s *Service) SyncProduct(ctx context.Context, productID int) ([]*collections.SyncResult, error) {
	logger := logging.GetLogger()
	logger.Infof("Start SyncProduct(%d)", productID)
	defer logger.Infof("End SyncProduct(%d)", productID)

	c, err := s.Collections()
	if err != nil {
		return nil, err
	}
	product, err := s.woo.ProductGet(productID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed ProductGet(%d)", productID)
	}
	return c.Product.SyncWithVariations(ctx, product), nil
}

func (s *Service) SyncMenus(ctx context.Context) (*collections.IndexResult, error) {
	c, err := s.Collections()
	if err != nil {
		return nil, err
	}
	return c.Menu.IndexAll(ctx)
}

func (s *Service) SyncMenu(ctx context.Context, menuID int) (string, error) {
	c, err := s.Collections()
	if err != nil {
		return collections.MenuError, err
	}
	return c.Menu.OnMenuUpdate(ctx, menuID)
}

func (s *Service) SyncTaxonomies(ctx context.Context) (*collections.IndexResult, error) {
	c, err := s.Collections()
	if err != nil {
		return nil, err
	}
	return c.Taxonomy.IndexAll(ctx)
}

// SiteInfoEntries are the site_info values: the general settings flags, the
// store currency and the store front url.
func (s *Service) SiteInfoEntries() (map[string]interface{}, error) {
	entries, err := s.settings.AdditionalSiteInfo()
	if err != nil {
		return nil, err
	}
	entries["currency"] = s.productOptions().Currency
	if s.opts.StoreFrontURL != "" {
		entries["store_front_url"] = s.opts.StoreFrontURL
	}
	return entries, nil
}

func (s *Service) SyncSiteInfo(ctx context.Context) (*collections.IndexResult, error) {
	c, err := s.Collections()
	if err != nil {
		return nil, err
	}
	entries, err := s.SiteInfoEntries()
	if err != nil {
		return nil, err
	}
	return c.SiteInfo.IndexAll(ctx, entries)
}

type AllResult struct {
	Products   *ProductsResult          `json:"products"`
	Menus      *collections.IndexResult `json:"menus"`
	Taxonomies *collections.IndexResult `json:"taxonomies"`
	SiteInfo   *collections.IndexResult `json:"site_info"`
	Errors     []string                 `json:"errors,omitempty"`
}

// SyncAll runs every sync in turn. A failing step is recorded and the next
// one still runs.
func (s *Service) SyncAll(ctx context.Context) (*AllResult, error) {
	logger := logging.GetLogger()
	logger.Info("Start SyncAll")
	defer logger.Info("End SyncAll")

	if _, _, err := s.settings.Client(); err != nil {
		return nil, err
	}

	result := &AllResult{}
	record := func(step string, err error) {
		if err != nil {
			logger.Errorf("SyncAll %s: %v", step, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", step, err))
		}
	}

	var err error
	result.Products, err = s.SyncAllProducts(ctx)
	record("products", err)
	result.Menus, err = s.SyncMenus(ctx)
	record("menus", err)
	result.Taxonomies, err = s.SyncTaxonomies(ctx)
	record("taxonomies", err)
	result.SiteInfo, err = s.SyncSiteInfo(ctx)
	record("site info", err)

	return result, nil
}

// Sync runs the named target: products, menus, taxonomies, site-info or all.
func (s *Service) Sync(ctx context.Context, target string) (interface{}, error) {
	switch target {
	case "products":
		return s.SyncAllProducts(ctx)
	case "menus":
		return s.SyncMenus(ctx)
	case "taxonomies":
		return s.SyncTaxonomies(ctx)
	case "site-info":
		return s.SyncSiteInfo(ctx)
	case "", "all":
		return s.SyncAll(ctx)
	}
	return nil, errors.Errorf("unknown sync target %q", target)
}

// Run repeats SyncAll every interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	logger := logging.GetLogger()
	logger.Info("Start Service Sync")
	defer logger.Info("End Service Sync")

	for {
		timeStart := time.Now()
		result, err := s.SyncAll(ctx)
		if err != nil {
			logger.Errorf("failed SyncAll: %v", err)
		} else if len(result.Errors) > 0 {
			reportf("Sync finished with errors: %v", result.Errors)
		}
		logger.Infof("Full sync time: %s", time.Since(timeStart))

		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
