package collections

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooWithTypesense/internal/typesense/typesensetest"
	"WooWithTypesense/internal/wp-api/wpapitest"
)

func newMenu() (*Menu, *wpapitest.Fake, *typesensetest.Fake) {
	wp := wpapitest.New()
	wp.AddMenu(1, "Main", "Shop", "https://example.com/shop/")
	wp.AddMenu(2, "Footer")
	ts := typesensetest.New()
	m := NewMenu(ts, "42", wp, MyAccountMenu{
		PageURL:   "https://cart.example.com/my-account",
		Endpoints: []string{"orders:Orders", "customer-logout:Log out"},
	})
	m.now = func() time.Time { return fixedNow }
	return m, wp, ts
}

func TestMenuIndexAll(t *testing.T) {
	m, _, ts := newMenu()

	result, err := m.IndexAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Indexed)

	schema := ts.Collections["menu-42"]
	require.NotNil(t, schema)
	assert.Equal(t, "Wp_Menu_Id", *schema.DefaultSortingField)

	main := ts.Doc("menu-42", "1").(map[string]interface{})
	assert.Equal(t, "Main", main["name"])
	assert.Equal(t, 1, main["Wp_Menu_Id"])
	assert.Equal(t, `[{"title":"Shop","url":"https://example.com/shop/"}]`, main["items"])
	assert.Equal(t, fixedNow.Unix(), main["updated_at"])

	footer := ts.Doc("menu-42", "2").(map[string]interface{})
	assert.Equal(t, "[]", footer["items"])

	account := ts.Doc("menu-42", "12444").(map[string]interface{})
	var items []MenuItem
	require.NoError(t, json.Unmarshal([]byte(account["items"].(string)), &items))
	assert.Equal(t, []MenuItem{
		{Title: "Orders", URL: "https://cart.example.com/my-account/orders/"},
		{Title: "Log out", URL: "https://cart.example.com/my-account/customer-logout/"},
	}, items)

	// a second run drops and recreates the collection
	_, err = m.IndexAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"menu-42"}, ts.Dropped)
}

func TestOnMenuUpdate(t *testing.T) {
	m, wp, ts := newMenu()
	ctx := context.Background()
	_, err := m.IndexAll(ctx)
	require.NoError(t, err)

	wp.AddMenu(2, "Footer", "About", "/about/")
	outcome, err := m.OnMenuUpdate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, MenuUpdated, outcome)
	assert.Equal(t, `[{"title":"About","url":"/about/"}]`, ts.Doc("menu-42", "2").(map[string]interface{})["items"])

	wp.AddMenu(3, "New")
	outcome, err = m.OnMenuUpdate(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, MenuCreated, outcome)
	assert.NotNil(t, ts.Doc("menu-42", "3"))

	outcome, err = m.OnMenuUpdate(ctx, 99)
	assert.Error(t, err)
	assert.Equal(t, MenuError, outcome)
}
