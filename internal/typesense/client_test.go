package typesense

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionServerURL(t *testing.T) {
	c := Connection{HostLive: "live.example.com", HostTest: "test.example.com", Protocol: "https", Port: 443}

	c.Environment = "live"
	assert.Equal(t, "https://live.example.com:443", c.ServerURL())

	c.Environment = "test"
	assert.Equal(t, "https://test.example.com:443", c.ServerURL())

	c.Environment = ""
	c.Port = 0
	assert.Equal(t, "https://test.example.com", c.ServerURL())
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "product-42", CollectionName("product", "42"))
	assert.Equal(t, "menu", CollectionName("menu", ""))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Connection{})
	assert.Error(t, err)
}
