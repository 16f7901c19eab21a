package client

import (
	"WooWithTypesense/internal/wc-api-go/options"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	parameters := url.Values{}
	parameters.Set("foo", "bar")

	sender := &SenderMock{Body: "Hello GET!"}
	client := NewClientWithSender(sender)

	r, err := client.Get("products", parameters)
	require.NoError(t, err)
	defer r.Body.Close()

	body, _ := io.ReadAll(r.Body)
	assert.Equal(t, "Hello GET!", string(body))
	require.Len(t, sender.Requests, 1)
	assert.Equal(t, "GET", sender.Requests[0].Method)
	assert.Equal(t, "products", sender.Requests[0].Endpoint)
	assert.Equal(t, "bar", sender.Requests[0].Values.Get("foo"))
}

func TestNewClientQueryStringAuth(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(options.Basic{
		URL:    srv.URL,
		Key:    "ck_1",
		Secret: "cs_1",
		Options: options.Advanced{
			QueryStringAuth: true,
		},
	})

	params := url.Values{}
	params.Set("page", "2")
	resp, err := c.Get("products", params)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NotNil(t, got)
	assert.Equal(t, "/wp-json/wc/v3/products", got.URL.Path)
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "ck_1", got.URL.Query().Get("consumer_key"))
	assert.Equal(t, "cs_1", got.URL.Query().Get("consumer_secret"))
	_, _, hasBasic := got.BasicAuth()
	assert.False(t, hasBasic)
}

func TestNewClientBasicAuth(t *testing.T) {
	var user, pass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ = r.BasicAuth()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(options.Basic{URL: srv.URL + "/", Key: "ck_2", Secret: "cs_2"})
	resp, err := c.Get("products/7", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "ck_2", user)
	assert.Equal(t, "cs_2", pass)
}
