package net // import "WooWithTypesense/internal/wc-api-go/net"

import (
	"WooWithTypesense/internal/wc-api-go/request"
)

// URLBuilder interface
type URLBuilder interface {
	GetURL(req request.Request) string
}
