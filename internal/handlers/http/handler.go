package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"WooWithTypesense/internal/collections"
	"WooWithTypesense/internal/extensions/bundle"
	"WooWithTypesense/internal/session"
	"WooWithTypesense/internal/settings"
	"WooWithTypesense/internal/version"
	"WooWithTypesense/pkg/logging"
)

// Syncer is the sync service as the admin endpoints use it.
type Syncer interface {
	SyncProducts(ctx context.Context, page int) (*collections.ImportResult, error)
	SyncMenus(ctx context.Context) (*collections.IndexResult, error)
	SyncMenu(ctx context.Context, menuID int) (string, error)
	SyncTaxonomies(ctx context.Context) (*collections.IndexResult, error)
	SyncSiteInfo(ctx context.Context) (*collections.IndexResult, error)
	Sync(ctx context.Context, target string) (interface{}, error)
	SyncProduct(ctx context.Context, productID int) ([]*collections.SyncResult, error)
}

type Handler struct {
	Sync          Syncer
	Settings      *settings.Settings
	Sessions      *session.Store
	Bundle        *bundle.Extension
	AdminToken    string
	WebhookSecret string
	// Timeout bounds admin sync requests; 0 means no limit.
	Timeout time.Duration
}

// Routes builds the router wrapped in CORS for the storefront origins.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	router := httprouter.New()

	router.GET("/", h.HandlerOtherAll)
	router.GET("/wp-json/wooless-wc/v1/check-bundle-data", h.HandlerCheckBundleData)
	router.GET("/redirect", h.HandlerRedirect)
	router.GET("/rest-url", h.HandlerRestURL)

	router.POST("/admin/sync/products", h.admin(h.HandlerSyncProducts))
	router.POST("/admin/sync/menus", h.admin(h.HandlerSyncMenus))
	router.POST("/admin/sync/menus/:id", h.admin(h.HandlerSyncMenu))
	router.POST("/admin/sync/taxonomies", h.admin(h.HandlerSyncTarget("taxonomies")))
	router.POST("/admin/sync/site-info", h.admin(h.HandlerSyncTarget("site-info")))
	router.POST("/admin/sync/all", h.admin(h.HandlerSyncTarget("all")))
	router.GET("/admin/settings", h.admin(h.HandlerGetSettings))
	router.POST("/admin/settings", h.admin(h.HandlerSaveSettings))

	router.POST("/webhook/product", h.HandlerWebhookProduct)

	// session hand-over is called by the shop, which vouches for the user
	// id and the session being loaded into
	router.POST("/session/load-cart", h.admin(h.HandlerLoadCart))
	router.POST("/session/load-user", h.admin(h.HandlerLoadUser))
	router.PUT("/session/:key", h.admin(h.HandlerSaveSession))

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Admin-Token"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.GetLogger().Errorf("failed to send response, error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.Timeout > 0 {
		return context.WithTimeout(r.Context(), h.Timeout)
	}
	return context.WithCancel(r.Context())
}

// admin requires the admin token in X-Admin-Token or as a bearer token.
// Without a configured token every admin request is refused.
func (h *Handler) admin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if h.AdminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.AdminToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r, ps)
	}
}

func (h *Handler) HandlerOtherAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Debug("Start HandlerOtherAll")
	defer logger.Debug("End HandlerOtherAll")

	logger.Debug("Method\n\t", r.Method)
	logger.Debug("URL\n\t", r.URL)

	v := version.GetVersion()
	if _, err := fmt.Fprintf(w, "%s %s", version.NAME, v.String()); err != nil {
		logger.Errorf("failed to send response, error: %v", err)
	}
}

func (h *Handler) HandlerCheckBundleData(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerCheckBundleData")
	defer logger.Info("End HandlerCheckBundleData")

	if h.Bundle == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product bundles are disabled"})
		return
	}
	status, body := h.Bundle.CheckBundleData(r.URL.Query().Get("product_id"))
	writeJSON(w, status, body)
}

func (h *Handler) HandlerRestURL(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"url": h.Settings.OverwriteRestURL(r.URL.Query().Get("url"))})
}
