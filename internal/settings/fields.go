package settings

import "context"

type Field struct {
	ID          string            `json:"id"`
	Label       string            `json:"label"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Options     map[string]string `json:"options,omitempty"`
}

type Section struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Options []Field `json:"options"`
}

// Fields describes the general settings form. The display checkboxes only
// appear once the store is connected.
func (s *Settings) Fields(ctx context.Context) []Section {
	section := Section{
		ID:    "wooless_general_settings_section",
		Label: "General Settings",
		Options: []Field{
			{
				ID:          "environment",
				Label:       "Environment",
				Type:        "select",
				Description: "Select which environment to use.",
				Options:     map[string]string{"test": "Test", "live": "Live"},
			},
			{ID: "api_key", Label: "API Key", Type: "password", Description: "API Key generated from the Blaze Commerce Admin Portal."},
			{ID: "shop_domain", Label: "Shop Domain", Type: "text", Description: "Live site domain. (e.g. website.com.au)"},
		},
	}

	if s.Connected(ctx) {
		section.Options = append(section.Options,
			Field{
				ID:          "show_free_shipping_banner",
				Label:       "Show free shipping banner",
				Type:        "checkbox",
				Description: "Check this to show shipping banner dynamically based on nearest free shipping rate.",
			},
			Field{
				ID:          "show_free_shipping_minicart_component",
				Label:       "Show free shipping minicart component",
				Type:        "checkbox",
				Description: "Check this to show shipping minicart component dynamically based on nearest free shipping rate.",
			},
			Field{
				ID:          "show_variant_as_separate_product_cards",
				Label:       "Display separate variant product cards",
				Type:        "checkbox",
				Description: "Check this to show variant as product cards in catalog pages or in any product list.",
			},
			Field{
				ID:          "enable_redirect",
				Label:       "Enable Redirect to non cart.* Url",
				Type:        "checkbox",
				Description: "Check this to enable redirect for homepage, product page, and product category page. This will work only if the user is not administrator.",
			},
		)
	}
	return []Section{section}
}
