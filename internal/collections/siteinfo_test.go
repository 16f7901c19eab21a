package collections

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooWithTypesense/internal/typesense/typesensetest"
	"WooWithTypesense/internal/wooapi/models"
)

func TestSiteInfoDocument(t *testing.T) {
	s := NewSiteInfo(typesensetest.New(), "42")
	s.now = func() time.Time { return fixedNow }

	doc := s.Document(VariantAsCardsName, true)
	assert.Equal(t, "1002457", doc["id"])
	assert.Equal(t, "true", doc["value"])
	assert.Equal(t, fixedNow.Unix(), doc["updated_at"])

	assert.Equal(t, `"AUD"`, s.Document("currency", "AUD")["value"])
	assert.Equal(t, `"123"`, s.Document("store_front_url", "123")["value"])
	assert.Equal(t, `"true"`, s.Document("show_free_shipping_banner", "true")["value"])
	assert.Equal(t, `{"a":1}`, s.Document("banner", json.RawMessage(`{"a":1}`))["value"])
	assert.Equal(t, "currency", s.Document("currency", "AUD")["id"])
}

func TestSiteInfoIndexAllAndSet(t *testing.T) {
	ts := typesensetest.New()
	s := NewSiteInfo(ts, "42")
	ctx := context.Background()

	result, err := s.IndexAll(ctx, map[string]interface{}{"currency": "AUD", VariantAsCardsName: false})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Indexed)

	require.NoError(t, s.Set(ctx, VariantAsCardsName, true))
	assert.Equal(t, "true", ts.Doc("site_info-42", "1002457").(map[string]interface{})["value"])
}

func TestResolveCurrency(t *testing.T) {
	woo := newWoo()
	assert.Equal(t, "USD", ResolveCurrency(woo, "USD"))

	woo.Settings["general/woocommerce_currency"] = &models.Setting{ID: "woocommerce_currency", Value: "NZD"}
	assert.Equal(t, "NZD", ResolveCurrency(woo, "USD"))
}
