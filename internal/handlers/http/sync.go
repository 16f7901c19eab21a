package http

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"WooWithTypesense/internal/telegram"
	"WooWithTypesense/pkg/logging"
)

func (h *Handler) HandlerSyncProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerSyncProducts")
	defer logger.Info("End HandlerSyncProducts")

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, errors.Errorf("invalid page %q", p))
			return
		}
		page = n
	}

	ctx, cancel := h.context(r)
	defer cancel()
	result, err := h.Sync.SyncProducts(ctx, page)
	if err != nil {
		logger.Errorf("failed SyncProducts(%d): %v", page, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandlerSyncMenus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.context(r)
	defer cancel()
	result, err := h.Sync.SyncMenus(ctx)
	if err != nil {
		logging.GetLogger().Errorf("failed SyncMenus: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandlerSyncMenu(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.Atoi(ps.ByName("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Errorf("invalid menu id %q", ps.ByName("id")))
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()
	outcome, err := h.Sync.SyncMenu(ctx, id)
	if err != nil {
		logging.GetLogger().Errorf("failed SyncMenu(%d): %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": outcome, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": outcome})
}

// HandlerSyncTarget runs one of the named syncs.
func (h *Handler) HandlerSyncTarget(target string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		logger := logging.GetLogger()
		logger.Infof("Start HandlerSyncTarget(%s)", target)
		defer logger.Infof("End HandlerSyncTarget(%s)", target)

		ctx, cancel := h.context(r)
		defer cancel()
		result, err := h.Sync.Sync(ctx, target)
		if err != nil {
			logger.Errorf("failed Sync(%s): %v", target, err)
			telegram.SendMessageToTelegramWithLogError("sync " + target + " failed: " + err.Error())
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
