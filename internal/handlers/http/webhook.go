package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"WooWithTypesense/internal/telegram"
	"WooWithTypesense/pkg/logging"
)

const signatureHeader = "X-WC-Webhook-Signature"

// ValidSignature checks base64(HMAC-SHA256(body, secret)) as WooCommerce signs webhooks.
func ValidSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandlerWebhookProduct re-indexes the product named by a WooCommerce
// product.created/updated webhook.
func (h *Handler) HandlerWebhookProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerWebhookProduct")
	defer logger.Info("End HandlerWebhookProduct")

	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	logger.Debug("body\n\t", string(body))

	// WooCommerce pings a new webhook with a form body
	if bytes.HasPrefix(body, []byte("webhook_id=")) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if h.WebhookSecret != "" && !ValidSignature(body, r.Header.Get(signatureHeader), h.WebhookSecret) {
		logger.Errorf("webhook signature mismatch, topic %s", r.Header.Get("X-WC-Webhook-Topic"))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	var payload struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.ID == 0 {
		writeError(w, http.StatusBadRequest, errors.New("webhook body has no product id"))
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()
	results, err := h.Sync.SyncProduct(ctx, payload.ID)
	if err != nil {
		text := "failed to sync product " + r.Header.Get("X-WC-Webhook-Topic") + ": " + err.Error()
		logger.Error(text)
		telegram.SendMessageToTelegramWithLogError(text)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
