package models

// Variation is a /products/{id}/variations item.
type Variation struct {
	ID              int           `json:"id"`
	DateCreatedGmt  string        `json:"date_created_gmt,omitempty"`
	DateModifiedGmt string        `json:"date_modified_gmt,omitempty"`
	Description     string        `json:"description,omitempty"`
	Permalink       string        `json:"permalink,omitempty"`
	Sku             string        `json:"sku,omitempty"`
	Price           string        `json:"price,omitempty"`
	RegularPrice    string        `json:"regular_price,omitempty"`
	SalePrice       string        `json:"sale_price,omitempty"`
	OnSale          bool          `json:"on_sale,omitempty"`
	Status          string        `json:"status,omitempty"`
	StockQuantity   *int          `json:"stock_quantity,omitempty"`
	StockStatus     string        `json:"stock_status,omitempty"`
	Backorders      string        `json:"backorders,omitempty"`
	ShippingClass   string        `json:"shipping_class,omitempty"`
	Image           *ProductImage `json:"image,omitempty"`
	Attributes      []Attribute   `json:"attributes,omitempty"`
	MenuOrder       int           `json:"menu_order,omitempty"`
	MetaData        []MetaData    `json:"meta_data,omitempty"`
}

// AsProduct lifts a variation into a Product of type "variation" so it can
// be indexed next to its parent. Name and taxonomy-related fields come from
// the parent.
func (v *Variation) AsProduct(parent *Product) *Product {
	p := &Product{
		ID:              v.ID,
		Name:            parent.Name,
		Slug:            parent.Slug,
		Permalink:       v.Permalink,
		DateCreatedGmt:  v.DateCreatedGmt,
		DateModifiedGmt: v.DateModifiedGmt,
		Type:            "variation",
		Status:          v.Status,
		Description:     v.Description,
		Sku:             v.Sku,
		Price:           v.Price,
		RegularPrice:    v.RegularPrice,
		SalePrice:       v.SalePrice,
		OnSale:          v.OnSale,
		StockQuantity:   v.StockQuantity,
		StockStatus:     v.StockStatus,
		Backorders:      v.Backorders,
		ShippingClass:   v.ShippingClass,
		ParentId:        parent.ID,
		Categories:      parent.Categories,
		Tags:            parent.Tags,
		Attributes:      v.Attributes,
		MenuOrder:       v.MenuOrder,
		MetaData:        v.MetaData,
	}
	if p.Status == "" {
		p.Status = parent.Status
	}
	if v.Image != nil {
		p.Images = []ProductImage{*v.Image}
	}
	return p
}

// AttributeMap renders variation attributes the way the storefront expects:
// attribute_<slug> => option.
func (v *Variation) AttributeMap() map[string]string {
	out := make(map[string]string, len(v.Attributes))
	for _, a := range v.Attributes {
		key := a.Slug
		if key == "" {
			key = a.Name
		}
		out["attribute_"+key] = a.Option
	}
	return out
}
