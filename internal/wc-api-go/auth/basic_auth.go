package auth // import "WooWithTypesense/internal/wc-api-go/auth"

import (
	"net/http"
	"net/url"

	"WooWithTypesense/internal/wc-api-go/options"
)

// BasicAuthentication puts consumer credentials either into the query string
// or into the Authorization header.
type BasicAuthentication struct {
	Options options.Basic
}

// GetEnrichedQuery adds consumer_key/consumer_secret when QueryStringAuth is on.
func (b *BasicAuthentication) GetEnrichedQuery(p url.Values, o options.Basic) url.Values {
	if p == nil {
		p = url.Values{}
	}
	if o.Options.QueryStringAuth {
		p.Set("consumer_key", o.Key)
		p.Set("consumer_secret", o.Secret)
	}
	return p
}

// EnrichRequest sets HTTP basic auth unless credentials already travel in the query.
func (b *BasicAuthentication) EnrichRequest(r *http.Request, _ string) {
	if r == nil || b.Options.Options.QueryStringAuth {
		return
	}
	r.SetBasicAuth(b.Options.Key, b.Options.Secret)
}
