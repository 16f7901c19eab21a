package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooWithTypesense/internal/collections"
	"WooWithTypesense/internal/database"
	"WooWithTypesense/internal/extensions/bundle"
	"WooWithTypesense/internal/session"
	"WooWithTypesense/internal/settings"
	"WooWithTypesense/internal/typesense"
	"WooWithTypesense/internal/typesense/typesensetest"
	"WooWithTypesense/internal/wooapi/models"
	"WooWithTypesense/internal/wooapi/wooapitest"
)

type fakeSync struct {
	pages    []int
	targets  []string
	products []int
	menu     int
	err      error
}

func (f *fakeSync) SyncProducts(_ context.Context, page int) (*collections.ImportResult, error) {
	f.pages = append(f.pages, page)
	return &collections.ImportResult{ImportedProductsCount: 2, TotalImports: 2}, f.err
}

func (f *fakeSync) SyncMenus(context.Context) (*collections.IndexResult, error) {
	return &collections.IndexResult{Indexed: 1}, f.err
}

func (f *fakeSync) SyncMenu(_ context.Context, id int) (string, error) {
	f.menu = id
	return collections.MenuCreated, f.err
}

func (f *fakeSync) SyncTaxonomies(context.Context) (*collections.IndexResult, error) {
	return &collections.IndexResult{}, f.err
}

func (f *fakeSync) SyncSiteInfo(context.Context) (*collections.IndexResult, error) {
	return &collections.IndexResult{}, f.err
}

func (f *fakeSync) Sync(_ context.Context, target string) (interface{}, error) {
	f.targets = append(f.targets, target)
	return map[string]string{"target": target}, f.err
}

func (f *fakeSync) SyncProduct(_ context.Context, id int) ([]*collections.SyncResult, error) {
	f.products = append(f.products, id)
	return []*collections.SyncResult{{DataSent: map[string]interface{}{"id": "1"}}}, f.err
}

type fixture struct {
	server *httptest.Server
	sync   *fakeSync
	h      *Handler
}

const adminToken = "s3cret"

func newFixture(t *testing.T) *fixture {
	db := sqlx.MustConnect("sqlite3", ":memory:")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	woo := wooapitest.New()
	woo.Add(&models.Product{ID: 5, Type: "bundle", BundleLayout: "grid"}, &models.Product{ID: 6, Type: "simple"})

	ts := typesensetest.New()
	f := &fixture{sync: &fakeSync{}}
	f.h = &Handler{
		Sync: f.sync,
		Settings: settings.New(db, func(settings.Credentials) (typesense.Client, error) { return ts, nil },
			"https://cart.example.com", "https://example.com"),
		Sessions:      session.NewStore(db, time.Hour, ".example.com"),
		Bundle:        bundle.New(woo),
		AdminToken:    adminToken,
		WebhookSecret: "hook",
	}
	f.server = httptest.NewServer(f.h.Routes([]string{"https://example.com"}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, headers map[string]string) (*http.Response, map[string]interface{}) {
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

var admin = map[string]string{"X-Admin-Token": adminToken}

func TestVersion(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCheckBundleData(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/wp-json/wooless-wc/v1/check-bundle-data?product_id=5", "", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "grid", body["settings"].(map[string]interface{})["layout"])

	resp, body = f.do(t, http.MethodGet, "/wp-json/wooless-wc/v1/check-bundle-data?product_id=6", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Product is not a bundle", body["error"])
}

func TestAdminRequiresToken(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/admin/sync/all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/admin/sync/all", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/admin/sync/all", "", map[string]string{"Authorization": "Bearer " + adminToken})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "all", body["target"])
	assert.Empty(t, f.sync.products)
}

func TestSyncEndpoints(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/admin/sync/products?page=3", "", admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["imported_products_count"])
	assert.Equal(t, []int{3}, f.sync.pages)

	resp, _ = f.do(t, http.MethodPost, "/admin/sync/products?page=x", "", admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, http.MethodPost, "/admin/sync/menus/12444", "", admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "created", body["status"])
	assert.Equal(t, 12444, f.sync.menu)

	f.do(t, http.MethodPost, "/admin/sync/taxonomies", "", admin)
	f.do(t, http.MethodPost, "/admin/sync/site-info", "", admin)
	assert.Equal(t, []string{"taxonomies", "site-info"}, f.sync.targets)

	f.sync.err = errors.New("typesense is not configured")
	resp, body = f.do(t, http.MethodPost, "/admin/sync/menus", "", admin)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "typesense is not configured", body["error"])
}

func sign(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookProduct(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/webhook/product", "webhook_id=3", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	payload := `{"id":42,"name":"Mug"}`
	resp, _ = f.do(t, http.MethodPost, "/webhook/product", payload, map[string]string{signatureHeader: sign(payload, "wrong")})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, f.sync.products)

	resp, _ = f.do(t, http.MethodPost, "/webhook/product", payload, map[string]string{signatureHeader: sign(payload, "hook")})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int{42}, f.sync.products)

	resp, _ = f.do(t, http.MethodPost, "/webhook/product", `{}`, map[string]string{signatureHeader: sign(`{}`, "hook")})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettingsEndpoints(t *testing.T) {
	f := newFixture(t)

	key := base64.StdEncoding.EncodeToString([]byte("abc:9"))
	resp, body := f.do(t, http.MethodPost, "/admin/settings", `{"environment":"test","api_key":"`+key+`","enable_redirect":true}`, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["connected"])

	resp, body = f.do(t, http.MethodGet, "/admin/settings", "", admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["connected"])
	assert.Equal(t, settings.MaskedAPIKey, body["options"].(map[string]interface{})["api_key"])

	resp, body = f.do(t, http.MethodPost, "/admin/settings", `{"environment":"test","api_key":"bm9wZQ=="}`, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	resp, body = f.do(t, http.MethodGet, "/redirect?is_product=1&request_uri=/product/mug/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, settings.RedirectNone, body["action"], "enable_redirect was reset by the last save")

	resp, body = f.do(t, http.MethodGet, "/rest-url?url="+url.QueryEscape("https://example.com/wp-json/wp/v2"), "", nil)
	assert.Equal(t, "https://cart.example.com/wp-json/wp/v2", body["url"])
}

func TestSettingsRoundTrip(t *testing.T) {
	f := newFixture(t)

	key := base64.StdEncoding.EncodeToString([]byte("abc:9"))
	resp, _ := f.do(t, http.MethodPost, "/admin/settings", `{"environment":"test","api_key":"`+key+`"}`, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := f.do(t, http.MethodGet, "/admin/settings", "", admin)
	options := body["options"].(map[string]interface{})
	assert.Equal(t, settings.MaskedAPIKey, options["api_key"])
	options["enable_redirect"] = true
	b, err := json.Marshal(options)
	require.NoError(t, err)

	resp, body = f.do(t, http.MethodPost, "/admin/settings", string(b), admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)

	general, err := f.h.Settings.General()
	require.NoError(t, err)
	assert.Equal(t, key, general.APIKey)
	assert.True(t, general.EnableRedirect)
}

func TestRedirectEnabled(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.h.Settings.Save(context.Background(), settings.GeneralOptions{EnableRedirect: true}))

	_, body := f.do(t, http.MethodGet, "/redirect?is_product=true&request_uri=/product/mug/", "", nil)
	assert.Equal(t, settings.RedirectHome, body["action"])
	assert.Equal(t, "https://example.com/product/mug/", body["location"])

	_, body = f.do(t, http.MethodGet, "/redirect?is_logged_in=1&request_uri=/my-account/", "", map[string]string{"Cookie": "isLoggedIn=false"})
	assert.Equal(t, settings.RedirectLogout, body["action"])
}

func TestSessionEndpoints(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPut, "/session/guest", `{"customer":{"id":0},"cart":{"a":{"qty":1}}}`, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "domain=.example.com")

	resp, body := f.do(t, http.MethodPost, "/session/load-cart?session_id=guest", `{"session_key":"current"}`, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "current", body["session_key"])
	assert.Equal(t, map[string]interface{}{"a": map[string]interface{}{"qty": float64(1)}}, body["data"].(map[string]interface{})["cart"])

	var names []string
	for _, c := range resp.Cookies() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "guest_session_cart")

	resp, _ = f.do(t, http.MethodPut, "/session/user", `{"customer":{"id":8}}`, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = f.do(t, http.MethodPost, "/session/load-user", "", map[string]string{
		"Cookie":        session.CustomerSessionCookie + "=user",
		"X-Admin-Token": adminToken,
	})
	assert.Equal(t, float64(8), body["user_id"])
}

func TestSessionHandOverRequiresToken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.h.Sessions.Save("victim", session.Data{"cart": json.RawMessage(`{"mine":1}`)}))
	require.NoError(t, f.h.Sessions.Save("other", session.Data{"cart": json.RawMessage(`{"evil":1}`)}))

	resp, _ := f.do(t, http.MethodPost, "/session/load-cart", `{"session_key":"victim"}`,
		map[string]string{"Cookie": session.CustomerSessionCookie + "=other"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	data, err := f.h.Sessions.Get("victim")
	require.NoError(t, err)
	assert.JSONEq(t, `{"mine":1}`, string(data["cart"]))

	resp, _ = f.do(t, http.MethodPost, "/session/load-user", `{"user_id":0}`,
		map[string]string{"Cookie": session.CustomerSessionCookie + "=other"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestValidSignature(t *testing.T) {
	assert.True(t, ValidSignature([]byte("x"), sign("x", "k"), "k"))
	assert.False(t, ValidSignature([]byte("x"), sign("y", "k"), "k"))
}
