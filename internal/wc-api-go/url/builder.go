package url

import (
	URL "net/url"
	"strings"

	"WooWithTypesense/internal/wc-api-go/options"
	"WooWithTypesense/internal/wc-api-go/request"
)

// Builder turns a Request into an absolute REST URL.
type Builder struct {
	options       options.Basic
	queryEnricher QueryEnricher
}

// NewBuilder ...
func NewBuilder(o options.Basic, qe QueryEnricher) *Builder {
	return &Builder{options: o, queryEnricher: qe}
}

// GetURL ...
func (b *Builder) GetURL(req request.Request) string {
	u := b.base() + strings.TrimLeft(req.Endpoint, "/")
	query := req.Values
	if b.queryEnricher != nil {
		query = b.queryEnricher.GetEnrichedQuery(u, query, req)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (b *Builder) base() string {
	host := strings.TrimRight(b.options.URL, "/")
	prefix := "/" + strings.Trim(b.options.Options.Prefix(), "/") + "/"
	version := strings.Trim(b.options.Options.APIVersion(), "/") + "/"
	return host + prefix + version
}

// AuthQueryEnricher adapts an auth provider to QueryEnricher.
type AuthQueryEnricher struct {
	Options options.Basic
	Auth    interface {
		GetEnrichedQuery(p URL.Values, o options.Basic) URL.Values
	}
}

// GetEnrichedQuery ...
func (a *AuthQueryEnricher) GetEnrichedQuery(_ string, query URL.Values, _ request.Request) URL.Values {
	q := URL.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	return a.Auth.GetEnrichedQuery(q, a.Options)
}
