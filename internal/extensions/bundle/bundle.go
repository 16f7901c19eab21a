// Package bundle adds WooCommerce Product Bundles data to product documents
// and serves the check-bundle-data endpoint.
package bundle

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"

	"WooWithTypesense/internal/collections"
	"WooWithTypesense/internal/wooapi"
	"WooWithTypesense/internal/wooapi/models"
	"WooWithTypesense/pkg/logging"
)

var errNotBundle = errors.New("Product is not a bundle")

type Settings struct {
	Layout        string `json:"layout"`
	FormLocation  string `json:"formLocation"`
	MinBundleSize int    `json:"minBundleSize"`
	MaxBundleSize int    `json:"maxBundleSize"`
	EditInCart    bool   `json:"editInCart"`
}

type ItemProduct struct {
	ID          int    `json:"id"`
	StockStatus string `json:"stockStatus"`
	BundleID    int    `json:"bundleId"`
}

type ItemSettings struct {
	MinQuantity         int    `json:"minQuantity"`
	MaxQuantity         int    `json:"maxQuantity"`
	DefaultQuantity     int    `json:"defaultQuantity"`
	Optional            bool   `json:"optional"`
	ShippedIndividually bool   `json:"shippedIndividually"`
	PricedIndividually  bool   `json:"pricedIndividually"`
	DiscountPercent     string `json:"discountPercent"`
	ProductVisible      bool   `json:"productVisible"`
	PriceVisible        bool   `json:"priceVisible"`
	OverrideTitle       bool   `json:"overrideTitle"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	HideThumbnail       bool   `json:"hideThumbnail"`
}

type Item struct {
	Product  ItemProduct  `json:"product"`
	Settings ItemSettings `json:"settings"`
}

type Data struct {
	Settings Settings    `json:"settings"`
	Products []Item      `json:"products"`
	MinPrice interface{} `json:"minPrice"`
	MaxPrice interface{} `json:"maxPrice"`
}

type Extension struct {
	woo wooapi.WOOAPI
}

var _ collections.ProductExtension = (*Extension)(nil)

func New(woo wooapi.WOOAPI) *Extension {
	return &Extension{woo: woo}
}

func (e *Extension) Fields(fields []api.Field) []api.Field {
	return append(fields, api.Field{Name: "bundle", Type: "object", Optional: pointer.True()})
}

// Data sets document["bundle"] for bundle products and leaves others untouched.
func (e *Extension) Data(document map[string]interface{}, product *models.Product) map[string]interface{} {
	if !product.IsType("bundle") {
		return document
	}
	document["bundle"] = BundledData(product)
	return document
}

// BundledItems renders bundled_items; nil for non-bundles.
func BundledItems(product *models.Product) []Item {
	if !product.IsType("bundle") {
		return nil
	}
	items := make([]Item, 0, len(product.BundledItems))
	for _, b := range product.BundledItems {
		items = append(items, Item{
			Product: ItemProduct{
				ID:          b.ProductID,
				StockStatus: b.StockStatus,
				BundleID:    b.BundledItemID,
			},
			Settings: ItemSettings{
				MinQuantity:         int(b.QuantityMin),
				MaxQuantity:         int(b.QuantityMax),
				DefaultQuantity:     int(b.QuantityDefault),
				Optional:            b.Optional,
				ShippedIndividually: b.ShippedIndividually,
				PricedIndividually:  b.PricedIndividually,
				DiscountPercent:     b.Discount,
				ProductVisible:      b.Visible(),
				PriceVisible:        b.PriceVisible(),
				OverrideTitle:       b.OverrideTitle,
				Title:               b.Title,
				Description:         b.Description,
				HideThumbnail:       b.HideThumbnail,
			},
		})
	}
	return items
}

// BundledData is the bundle object of a product document; nil for non-bundles.
func BundledData(product *models.Product) *Data {
	if !product.IsType("bundle") {
		return nil
	}
	minPrice, _ := product.Meta("_wc_pb_base_price")
	maxPrice, _ := product.Meta("_wc_sw_max_price")
	return &Data{
		Settings: Settings{
			Layout:        product.BundleLayout,
			FormLocation:  product.BundleAddToCartFormLocate,
			MinBundleSize: int(product.BundleMinSize),
			MaxBundleSize: int(product.BundleMaxSize),
			EditInCart:    product.BundleEditableInCart,
		},
		Products: BundledItems(product),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}
}

// CheckBundleData answers GET check-bundle-data: 201 with the bundle data,
// or 400 with {"error": ...} when the product is missing or not a bundle.
func (e *Extension) CheckBundleData(productID string) (int, interface{}) {
	logger := logging.GetLogger()
	logger.Debugf("Start CheckBundleData(%s)", productID)
	defer logger.Debugf("End CheckBundleData(%s)", productID)

	fail := func(err error) (int, interface{}) {
		return http.StatusBadRequest, map[string]string{"error": err.Error()}
	}

	if productID == "" {
		return fail(errors.New("Missing parameter(s): product_id"))
	}
	id, err := strconv.Atoi(productID)
	if err != nil || id <= 0 {
		return fail(errNotBundle)
	}

	product, err := e.woo.ProductGet(id)
	if err != nil {
		logger.Debugf("ProductGet(%d): %v", id, err)
		return fail(errNotBundle)
	}
	if !product.IsType("bundle") {
		return fail(errNotBundle)
	}
	return http.StatusCreated, BundledData(product)
}
