package options // import "WooWithTypesense/internal/wc-api-go/options"

import "time"

// Basic holds the store address and REST credentials.
type Basic struct {
	URL     string
	Key     string
	Secret  string
	Options Advanced
}

// Advanced tunes the WooCommerce REST transport.
type Advanced struct {
	WPAPI           bool
	WPAPIPrefix     string
	Version         string
	QueryStringAuth bool
	Timeout         time.Duration
}

// Prefix returns the REST prefix, /wp-json/ for WP API mode.
func (a Advanced) Prefix() string {
	if a.WPAPIPrefix != "" {
		return a.WPAPIPrefix
	}
	return "/wp-json/"
}

// APIVersion defaults to wc/v3.
func (a Advanced) APIVersion() string {
	if a.Version != "" {
		return a.Version
	}
	return "wc/v3"
}
