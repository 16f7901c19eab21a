package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                int            `json:"id,omitempty"`
	Name              string         `json:"name,omitempty"`
	Slug              string         `json:"slug,omitempty"`
	Permalink         string         `json:"permalink,omitempty"`
	DateCreated       string         `json:"date_created,omitempty"`
	DateCreatedGmt    string         `json:"date_created_gmt,omitempty"`
	DateModified      string         `json:"date_modified,omitempty"`
	DateModifiedGmt   string         `json:"date_modified_gmt,omitempty"`
	Type              string         `json:"type,omitempty"`
	Status            string         `json:"status,omitempty"`
	Featured          bool           `json:"featured,omitempty"`
	CatalogVisibility string         `json:"catalog_visibility,omitempty"`
	Description       string         `json:"description,omitempty"`
	ShortDescription  string         `json:"short_description,omitempty"`
	Sku               string         `json:"sku,omitempty"`
	Price             string         `json:"price,omitempty"`
	RegularPrice      string         `json:"regular_price,omitempty"`
	SalePrice         string         `json:"sale_price,omitempty"`
	OnSale            bool           `json:"on_sale,omitempty"`
	Purchasable       bool           `json:"purchasable,omitempty"`
	TotalSales        FlexInt        `json:"total_sales,omitempty"`
	ManageStock       bool           `json:"manage_stock,omitempty"`
	StockQuantity     *int           `json:"stock_quantity,omitempty"`
	StockStatus       string         `json:"stock_status,omitempty"`
	Backorders        string         `json:"backorders,omitempty"`
	ShippingClass     string         `json:"shipping_class,omitempty"`
	ShippingClassId   int            `json:"shipping_class_id,omitempty"`
	UpsellIds         []int          `json:"upsell_ids,omitempty"`
	CrossSellIds      []int          `json:"cross_sell_ids,omitempty"`
	RelatedIds        []int          `json:"related_ids,omitempty"`
	ParentId          int            `json:"parent_id,omitempty"`
	Categories        []*Term        `json:"categories,omitempty"`
	Tags              []*Term        `json:"tags,omitempty"`
	Images            []ProductImage `json:"images,omitempty"`
	Attributes        []Attribute    `json:"attributes,omitempty"`
	Variations        []int          `json:"variations,omitempty"`
	MenuOrder         int            `json:"menu_order,omitempty"`
	MetaData          []MetaData     `json:"meta_data,omitempty"`

	// Product Bundles extension fields, present for type=bundle only.
	BundleLayout              string        `json:"bundle_layout,omitempty"`
	BundleAddToCartFormLocate string        `json:"bundle_add_to_cart_form_location,omitempty"`
	BundleEditableInCart      bool          `json:"bundle_editable_in_cart,omitempty"`
	BundleMinSize             FlexInt       `json:"bundle_min_size,omitempty"`
	BundleMaxSize             FlexInt       `json:"bundle_max_size,omitempty"`
	BundledItems              []BundledItem `json:"bundled_items,omitempty"`
}

type ProductImage struct {
	Id              int    `json:"id,omitempty"`
	DateCreated     string `json:"date_created,omitempty"`
	DateCreatedGmt  string `json:"date_created_gmt,omitempty"`
	DateModified    string `json:"date_modified,omitempty"`
	DateModifiedGmt string `json:"date_modified_gmt,omitempty"`
	Src             string `json:"src,omitempty"`
	Name            string `json:"name,omitempty"`
	Alt             string `json:"alt,omitempty"`
}

// Attribute is a product attribute. Taxonomy attributes have ID > 0;
// on variations only Option is filled.
type Attribute struct {
	Id        int      `json:"id"`
	Name      string   `json:"name,omitempty"`
	Slug      string   `json:"slug,omitempty"`
	Position  int      `json:"position,omitempty"`
	Visible   bool     `json:"visible,omitempty"`
	Variation bool     `json:"variation,omitempty"`
	Options   []string `json:"options,omitempty"`
	Option    string   `json:"option,omitempty"`
}

type MetaData struct {
	Id    int         `json:"id,omitempty"`
	Key   string      `json:"key,omitempty"`
	Value interface{} `json:"value,omitempty"`
}

// Meta returns the first meta value stored under key.
func (p *Product) Meta(key string) (interface{}, bool) {
	for _, m := range p.MetaData {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// IsType mirrors WC_Product::is_type.
func (p *Product) IsType(t string) bool {
	return p != nil && p.Type == t
}

// Stock returns stock_quantity with null mapped to 0.
func (p *Product) Stock() int {
	if p.StockQuantity == nil {
		return 0
	}
	return *p.StockQuantity
}

// Created is date_created_gmt as unix seconds, 0 when absent.
func (p *Product) Created() int64 {
	return ParseDate(p.DateCreatedGmt, p.DateCreated)
}

// Modified is date_modified_gmt as unix seconds, 0 when absent.
func (p *Product) Modified() int64 {
	return ParseDate(p.DateModifiedGmt, p.DateModified)
}

// Thumbnail is the featured image, the first entry of images.
func (p *Product) Thumbnail() *ProductImage {
	if len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}

// Gallery is every image after the featured one.
func (p *Product) Gallery() []ProductImage {
	if len(p.Images) < 2 {
		return nil
	}
	return p.Images[1:]
}

// ParseDate parses the WooCommerce REST date format. The GMT value wins.
func ParseDate(gmt, local string) int64 {
	for _, s := range []string{gmt, local} {
		if s == "" {
			continue
		}
		for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.Unix()
			}
		}
	}
	return 0
}

// Money parses a REST price string. Empty or malformed values are 0,
// like floatval() on the store side.
func Money(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// FlexInt accepts both 12 and "12".
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		*f = FlexInt(i)
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*f = FlexInt(d.IntPart())
	return nil
}
