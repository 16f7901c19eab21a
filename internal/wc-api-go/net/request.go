package net

import (
	"io"
	"net/http"
)

// RequestEnricher adds Basic Authentication settings in Request in case of Basic Authentication
type RequestEnricher interface {
	EnrichRequest(r *http.Request, URL string)
}

// Client is the subset of *http.Client used by Sender
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestCreator builds outgoing requests
type RequestCreator interface {
	NewRequest(method, url string, body io.Reader) (*http.Request, error)
}

// DefaultRequestCreator uses http.NewRequest
type DefaultRequestCreator struct{}

// NewRequest ...
func (DefaultRequestCreator) NewRequest(method, url string, body io.Reader) (*http.Request, error) {
	return http.NewRequest(method, url, body)
}
