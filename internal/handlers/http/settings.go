package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"WooWithTypesense/internal/settings"
	"WooWithTypesense/pkg/logging"
)

type settingsResponse struct {
	Options   *settings.GeneralOptions `json:"options"`
	Connected bool                     `json:"connected"`
	Fields    []settings.Section       `json:"fields"`
}

func (h *Handler) HandlerGetSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	general, err := h.Settings.General()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if general.APIKey != "" {
		general.APIKey = settings.MaskedAPIKey
	}
	writeJSON(w, http.StatusOK, settingsResponse{
		Options:   general,
		Connected: h.Settings.Connected(r.Context()),
		Fields:    h.Settings.Fields(r.Context()),
	})
}

func (h *Handler) HandlerSaveSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerSaveSettings")
	defer logger.Info("End HandlerSaveSettings")

	var opts settings.GeneralOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid settings body"))
		return
	}

	err := h.Settings.Save(r.Context(), opts)
	var connErr *settings.ConnectionError
	switch {
	case errors.As(err, &connErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": connErr.Message})
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"connected": true})
	}
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

// HandlerRedirect tells the storefront edge whether a shop page should be
// sent to the headless frontend.
func (h *Handler) HandlerRedirect(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := settings.PageContext{
		IsAdmin:           queryBool(r, "is_admin"),
		IsAjax:            queryBool(r, "is_ajax"),
		IsLoggedIn:        queryBool(r, "is_logged_in"),
		IsCart:            queryBool(r, "is_cart"),
		IsHome:            queryBool(r, "is_home"),
		IsFrontPage:       queryBool(r, "is_front_page"),
		IsShop:            queryBool(r, "is_shop"),
		IsProductCategory: queryBool(r, "is_product_category"),
		IsProduct:         queryBool(r, "is_product"),
		RequestURI:        r.URL.Query().Get("request_uri"),
	}
	if c, err := r.Cookie("isLoggedIn"); err == nil {
		page.LoggedInCookie = c.Value
	}

	decision, err := h.Settings.RedirectDecision(page)
	if err != nil {
		logging.GetLogger().Errorf("failed RedirectDecision: %v", err)
	}
	writeJSON(w, http.StatusOK, decision)
}
