package models

// Term is the embedded {id,name,slug} reference on a product and also the
// full product_cat / product_tag / attribute term resource.
type Term struct {
	ID          int    `json:"id"`
	Name        string `json:"name,omitempty"`
	Slug        string `json:"slug,omitempty"`
	Parent      int    `json:"parent,omitempty"`
	Description string `json:"description,omitempty"`
	Display     string `json:"display,omitempty"`
	Image       *Image `json:"image,omitempty"`
	MenuOrder   int    `json:"menu_order,omitempty"`
	Count       int    `json:"count,omitempty"`
}

type Image struct {
	ID   int    `json:"id,omitempty"`
	Src  string `json:"src,omitempty"`
	Name string `json:"name,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

// ProductAttribute is a global (taxonomy backed) attribute, pa_<slug>.
type ProductAttribute struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type,omitempty"`
	OrderBy     string `json:"order_by,omitempty"`
	HasArchives bool   `json:"has_archives,omitempty"`
}

// Setting is one WooCommerce settings option.
type Setting struct {
	ID    string      `json:"id"`
	Label string      `json:"label,omitempty"`
	Value interface{} `json:"value"`
}
