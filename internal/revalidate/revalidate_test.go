package revalidate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooWithTypesense/internal/database"
	"WooWithTypesense/internal/database/model/action"
	"WooWithTypesense/internal/wooapi/models"
)

func memoryDB(t *testing.T) *sqlx.DB {
	db := sqlx.MustConnect("sqlite3", ":memory:")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func secret(s string) SecretFunc { return func() string { return s } }

func TestFrontendURL(t *testing.T) {
	r := New(nil, nil, Options{SiteURL: "https://cart.example.com.au/"})
	assert.Equal(t, "https://example.com.au", r.FrontendURL())

	r = New(nil, nil, Options{SiteURL: "https://cart.example.com.au", FrontendURL: "https://shop.example.com/"})
	assert.Equal(t, "https://shop.example.com", r.FrontendURL())
}

func TestProductUpdatedSchedulesOnce(t *testing.T) {
	db := memoryDB(t)
	now := time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC)
	r := New(db, secret("k"), Options{SiteURL: "https://example.com"})
	r.now = func() time.Time { return now }

	p := &models.Product{ID: 1, Status: "publish", Permalink: "https://example.com/product/mug/"}
	require.NoError(t, r.ProductUpdated(1, p))
	require.NoError(t, r.ProductUpdated(1, p))
	require.NoError(t, r.ProductUpdated(2, &models.Product{ID: 2, Status: "inherit", Permalink: "https://example.com/?p=2"}))

	pending, err := action.SelectByStatus(db, action.STATUS_PENDING)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, Hook, pending[0].Hook)
	assert.Equal(t, `["/product/mug/"]`, pending[0].Args)
	assert.Equal(t, now.Add(time.Second).Unix(), pending[0].ScheduledAt)
}

func TestRequestPageRevalidation(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/revalidate", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-secret-token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"revalidated":true}`))
	}))
	defer srv.Close()

	r := New(nil, secret("secret"), Options{FrontendURL: srv.URL})
	res, err := r.RequestPageRevalidation(context.Background(), []string{"/shop/", "/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/shop/", "/"}, got)
	assert.Equal(t, map[string]interface{}{"revalidated": true}, res)
}

func TestRequestPageRevalidationNoop(t *testing.T) {
	res, err := New(nil, secret(""), Options{FrontendURL: "http://127.0.0.1:1"}).
		RequestPageRevalidation(context.Background(), []string{"/"})
	assert.NoError(t, err)
	assert.Nil(t, res)

	res, err = New(nil, secret("k"), Options{}).RequestPageRevalidation(context.Background(), []string{"/"})
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestRequestPageRevalidationTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(nil, secret("k"), Options{FrontendURL: url, Timeout: time.Second}).
		RequestPageRevalidation(context.Background(), []string{"/"})
	assert.Error(t, err)
}

func TestRunDue(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	db := memoryDB(t)
	now := time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC)
	r := New(db, secret("k"), Options{FrontendURL: srv.URL})
	r.now = func() time.Time { return now }

	require.NoError(t, r.Schedule([]string{"/a/"}))

	ran, err := r.RunDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ran, "not due yet")

	now = now.Add(2 * time.Second)
	ran, err = r.RunDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, calls)

	done, err := action.SelectByStatus(db, action.STATUS_COMPLETE)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, 1, done[0].Attempts)

	require.NoError(t, r.Schedule([]string{"/a/"}), "completed actions do not block a new one")
	pending, err := action.SelectByStatus(db, action.STATUS_PENDING)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRunDueRetriesAbandonedClaim(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	db := memoryDB(t)
	now := time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC)
	r := New(db, secret("k"), Options{FrontendURL: srv.URL})
	r.now = func() time.Time { return now }

	p := &models.Product{ID: 1, Status: "publish", Permalink: "https://example.com/product/mug/"}
	require.NoError(t, r.ProductUpdated(1, p))
	pending, err := action.SelectByStatus(db, action.STATUS_PENDING)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	// the worker dies right after claiming the action
	require.NoError(t, pending[0].SetStatus(db, action.STATUS_RUNNING, "", now.Unix()))

	now = now.Add(24 * time.Hour)
	require.NoError(t, r.ProductUpdated(1, p))
	ran, err := r.RunDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, calls)

	done, err := action.SelectByStatus(db, action.STATUS_COMPLETE)
	require.NoError(t, err)
	assert.Len(t, done, 1)

	require.NoError(t, r.ProductUpdated(1, p))
	pending, err = action.SelectByStatus(db, action.STATUS_PENDING)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "later updates are scheduled again")
}
