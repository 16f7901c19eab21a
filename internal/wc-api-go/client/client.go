package client // import "WooWithTypesense/internal/wc-api-go/client"

import (
	"net/http"
	"net/url"
	"time"

	"WooWithTypesense/internal/wc-api-go/auth"
	wcnet "WooWithTypesense/internal/wc-api-go/net"
	"WooWithTypesense/internal/wc-api-go/options"
	"WooWithTypesense/internal/wc-api-go/request"
	wcurl "WooWithTypesense/internal/wc-api-go/url"
)

// Client is upper level class which delegate all work to Requester
type Client struct {
	sender Sender
}

// NewClient wires a Sender for the store described by o.
func NewClient(o options.Basic) Client {
	authentication := &auth.BasicAuthentication{Options: o}

	timeout := o.Options.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	sender := &wcnet.Sender{}
	sender.SetRequestEnricher(authentication)
	sender.SetURLBuilder(wcurl.NewBuilder(o, &wcurl.AuthQueryEnricher{Options: o, Auth: authentication}))
	sender.SetHTTPClient(&http.Client{Timeout: timeout})
	sender.SetRequestCreator(wcnet.DefaultRequestCreator{})

	return Client{sender: sender}
}

// NewClientWithSender is used by tests and by callers with their own transport.
func NewClientWithSender(s Sender) Client {
	return Client{sender: s}
}

// Get Method loads data from Endpoint with specified parameters
func (c *Client) Get(endpoint string, parameters url.Values) (*http.Response, error) {
	return c.sender.Send(request.Request{
		Method:   "GET",
		Endpoint: endpoint,
		Values:   parameters,
	})
}
