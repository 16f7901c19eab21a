package settings

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooWithTypesense/internal/database"
	"WooWithTypesense/internal/typesense"
	"WooWithTypesense/internal/typesense/typesensetest"
)

type harness struct {
	*Settings
	ts    *typesensetest.Fake
	calls []Credentials
}

func newSettings(t *testing.T) *harness {
	db := sqlx.MustConnect("sqlite3", ":memory:")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	h := &harness{ts: typesensetest.New()}
	h.Settings = New(db, func(c Credentials) (typesense.Client, error) {
		h.calls = append(h.calls, c)
		return h.ts, nil
	}, "https://cart.example.com", "https://example.com")
	return h
}

func portalKey(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestDecodeAPIKey(t *testing.T) {
	key, store, err := DecodeAPIKey(portalKey("xyz:42"))
	require.NoError(t, err)
	assert.Equal(t, "xyz", key)
	assert.Equal(t, "42", store)

	_, _, err = DecodeAPIKey("!!!")
	assert.Error(t, err)
	_, _, err = DecodeAPIKey(portalKey("nostore"))
	assert.Error(t, err)
}

func TestSaveConnects(t *testing.T) {
	h := newSettings(t)
	ctx := context.Background()

	err := h.Save(ctx, GeneralOptions{
		Environment:                       "live",
		APIKey:                            portalKey("xyz:42"),
		ShowVariantAsSeparateProductCards: true,
	})
	require.NoError(t, err)

	for name, want := range map[string]string{TypesenseAPIKey: "xyz", StoreID: "42", PrivateKeyMaster: portalKey("xyz:42")} {
		got, err := h.Option(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	assert.Equal(t, []Credentials{{APIKey: "xyz", StoreID: "42", Environment: "live"}}, h.calls)

	doc, ok := h.ts.Doc("site_info-42", "1002457").(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "true", doc["value"])

	c, err := h.Credentials()
	require.NoError(t, err)
	assert.Equal(t, Credentials{APIKey: "xyz", StoreID: "42", Environment: "live"}, c)
	assert.True(t, h.Connected(ctx))
}

func TestSaveConnectionFailure(t *testing.T) {
	h := newSettings(t)
	h.ts.HealthErr = errors.New("unauthorized")

	err := h.Save(context.Background(), GeneralOptions{Environment: "test", APIKey: portalKey("bad:1"), ShopDomain: "shop.com"})
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)

	general, err := h.General()
	require.NoError(t, err)
	assert.Equal(t, "shop.com", general.ShopDomain, "options are kept")

	key, err := h.Option(TypesenseAPIKey)
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.False(t, h.Connected(context.Background()))
}

func TestSaveKeepsStoredKey(t *testing.T) {
	h := newSettings(t)
	ctx := context.Background()
	key := portalKey("xyz:42")
	require.NoError(t, h.Save(ctx, GeneralOptions{Environment: "live", APIKey: key}))

	general, err := h.General()
	require.NoError(t, err)
	general.APIKey = MaskedAPIKey
	general.EnableRedirect = true
	require.NoError(t, h.Save(ctx, *general))

	general, err = h.General()
	require.NoError(t, err)
	assert.Equal(t, key, general.APIKey)
	assert.True(t, general.EnableRedirect)

	general.APIKey = ""
	require.NoError(t, h.Save(ctx, *general))
	stored, err := h.Option(PrivateKeyMaster)
	require.NoError(t, err)
	assert.Equal(t, key, stored)
	assert.Len(t, h.calls, 3)
}

func TestFieldsDependOnConnection(t *testing.T) {
	h := newSettings(t)
	ctx := context.Background()

	fields := h.Fields(ctx)
	require.Len(t, fields, 1)
	assert.Len(t, fields[0].Options, 3)

	require.NoError(t, h.Save(ctx, GeneralOptions{Environment: "test", APIKey: portalKey("k:1")}))
	fields = h.Fields(ctx)
	assert.Len(t, fields[0].Options, 7)
	assert.Equal(t, "enable_redirect", fields[0].Options[6].ID)
}

func TestAdditionalSiteInfo(t *testing.T) {
	h := newSettings(t)
	require.NoError(t, h.Save(context.Background(), GeneralOptions{ShowFreeShippingBanner: true}))

	info, err := h.AdditionalSiteInfo()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"show_free_shipping_banner":              true,
		"show_free_shipping_minicart_component":  false,
		"show_variant_as_separate_product_cards": false,
	}, info)
}

func TestOverwriteRestURL(t *testing.T) {
	h := newSettings(t)
	assert.Equal(t, "https://cart.example.com/wp-json/wp/v2/posts", h.OverwriteRestURL("https://example.com/wp-json/wp/v2/posts"))
	assert.Equal(t, "https://other.com/wp-json/", h.OverwriteRestURL("https://other.com/wp-json/"))
}

func TestDecide(t *testing.T) {
	h := newSettings(t)

	cases := []struct {
		name    string
		page    PageContext
		enabled bool
		want    Decision
	}{
		{"disabled", PageContext{IsCart: true}, false, Decision{Action: RedirectNone}},
		{"admin", PageContext{IsAdmin: true, IsCart: true}, true, Decision{Action: RedirectNone}},
		{"ajax", PageContext{IsAjax: true, IsProduct: true}, true, Decision{Action: RedirectNone}},
		{"cart", PageContext{IsCart: true, RequestURI: "/cart/"}, true, Decision{Action: RedirectHome, Location: "https://example.com"}},
		{"product", PageContext{IsProduct: true, RequestURI: "/product/mug/"}, true, Decision{Action: RedirectHome, Location: "https://example.com/product/mug/"}},
		{"logout", PageContext{IsLoggedIn: true, LoggedInCookie: "false", RequestURI: "/my-account/"}, true, Decision{Action: RedirectLogout, Location: "https://example.com/my-account/"}},
		{"checkout", PageContext{RequestURI: "/checkout/"}, true, Decision{Action: RedirectNone}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, h.Decide(c.page, c.enabled), c.name)
	}
}

func TestGeneralStoreFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	s := New(sqlx.NewDb(mockDB, "sqlite3"), nil, "https://example.com", "")
	mock.ExpectQuery("SELECT Name, Value, UpdatedAt FROM Options").WillReturnError(errors.New("database is locked"))

	_, err = s.RedirectDecision(PageContext{IsCart: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}
