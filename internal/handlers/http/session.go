package http

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"WooWithTypesense/internal/session"
	"WooWithTypesense/pkg/logging"
)

type sessionRequest struct {
	UserID     int    `json:"user_id"`
	SessionKey string `json:"session_key"`
}

func readSessionRequest(r *http.Request) (session.Request, error) {
	var body sessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return session.Request{}, errors.Wrap(err, "invalid session body")
		}
	}
	cookies := map[string]string{}
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}
	return session.Request{
		UserID:     body.UserID,
		CurrentKey: body.SessionKey,
		Cookies:    cookies,
		Query:      r.URL.Query(),
	}, nil
}

func (h *Handler) HandlerLoadCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Debug("Start HandlerLoadCart")
	defer logger.Debug("End HandlerLoadCart")

	req, err := readSessionRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.Sessions.LoadCartFromSession(req)
	if err != nil {
		logger.Errorf("failed LoadCartFromSession: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	for _, c := range result.Cookies {
		http.SetCookie(w, c)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_key": result.SessionKey,
		"data":        result.Data,
	})
}

func (h *Handler) HandlerLoadUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, err := readSessionRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	userID, err := h.Sessions.LoadUserFromSession(req)
	if err != nil {
		logging.GetLogger().Errorf("failed LoadUserFromSession: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"user_id": userID})
}

// HandlerSaveSession mirrors a WooCommerce session pushed by the shop.
func (h *Handler) HandlerSaveSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var data session.Data
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid session data"))
		return
	}
	if err := h.Sessions.Save(ps.ByName("key"), data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Set-Cookie", h.Sessions.SessionCookie(session.CustomerSessionCookie+"="+ps.ByName("key")+"; path=/"))
	writeJSON(w, http.StatusOK, map[string]string{"session_key": ps.ByName("key")})
}
