package request

import (
	"net/url"
)

// Request is one read against the WooCommerce REST API.
type Request struct {
	Method   string
	Endpoint string
	Values   url.Values
}
