package models

// BundledItem is one entry of bundled_items exposed by the Product Bundles extension.
type BundledItem struct {
	BundledItemID        int     `json:"bundled_item_id"`
	ProductID            int     `json:"product_id"`
	MenuOrder            int     `json:"menu_order,omitempty"`
	QuantityMin          FlexInt `json:"quantity_min"`
	QuantityMax          FlexInt `json:"quantity_max"`
	QuantityDefault      FlexInt `json:"quantity_default"`
	PricedIndividually   bool    `json:"priced_individually"`
	ShippedIndividually  bool    `json:"shipped_individually"`
	OverrideTitle        bool    `json:"override_title"`
	Title                string  `json:"title"`
	OverrideDescription  bool    `json:"override_description"`
	Description          string  `json:"description"`
	Optional             bool    `json:"optional"`
	HideThumbnail        bool    `json:"hide_thumbnail"`
	Discount             string  `json:"discount"`
	SingleProductVisible string  `json:"single_product_visibility"`
	SinglePriceVisible   string  `json:"single_product_price_visibility"`
	StockStatus          string  `json:"stock_status,omitempty"`
}

// Visible reports single_product_visibility == "visible".
func (b *BundledItem) Visible() bool {
	return b.SingleProductVisible == "" || b.SingleProductVisible == "visible"
}

// PriceVisible reports single_product_price_visibility == "visible".
func (b *BundledItem) PriceVisible() bool {
	return b.SinglePriceVisible == "" || b.SinglePriceVisible == "visible"
}
