package wp_api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuItemsPaginatesAndAuthenticates(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "wooless", user)
		assert.Equal(t, "app-pass", pass)
		assert.Equal(t, "/wp-json/wp/v2/menu-items", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("menus"))
		_, _ = w.Write([]byte(`[{"id":1,"title":{"rendered":"Shop"},"url":"https://cart.example.com/shop/"}]`))
	}))
	defer srv.Close()

	a := NewAPI(srv.URL+"/", "wooless", "app-pass")
	items, err := a.MenuItems(7)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "Shop", items[0].Title.Rendered)
	assert.Equal(t, 1, calls)
}

func TestMenuListInvalidPageEndsLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"rest_post_invalid_page_number","message":"bad page","data":{"status":400}}`))
	}))
	defer srv.Close()

	menus, err := NewAPI(srv.URL, "", "").MenuList()
	require.NoError(t, err)
	assert.Empty(t, menus)
}

func TestMenuGetError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"rest_term_invalid","message":"Term does not exist.","data":{"status":404}}`))
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL, "", "").MenuGet(3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Term does not exist.")
}
