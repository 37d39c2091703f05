package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/logger"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

const (
	SignatureHeader = "X-Webhook-Signature"
	maxWebhookBytes = 64 << 10
)

// WebhookHandler accepts leads pushed by the clinic's website form.
type WebhookHandler struct {
	Leads  *usecase.LeadUseCase
	Secret string
}

func NewWebhookHandler(leads *usecase.LeadUseCase, secret string) *WebhookHandler {
	return &WebhookHandler{Leads: leads, Secret: secret}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes+1))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_body", "could not read request body")
		return
	}
	if len(body) > maxWebhookBytes {
		writeErrorCode(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		return
	}

	if !VerifySignature(body, h.Secret, r.Header.Get(SignatureHeader)) {
		log.Warn("webhook signature rejected", zap.String("remote_ip", r.RemoteAddr))
		writeErrorCode(w, http.StatusUnauthorized, "invalid_signature", "missing or invalid signature")
		return
	}

	var input usecase.CreateLeadInput
	if err := json.Unmarshal(body, &input); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return
	}

	lead, err := h.Leads.Capture(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Info("lead captured from webhook", zap.String("lead_id", lead.ID), zap.String("chiropractor", lead.Chiropractor))
	writeJSON(w, http.StatusCreated, map[string]string{"id": lead.ID, "status": string(lead.Status)})
}

// VerifySignature checks signature == hex(sha256(body + secret)). An empty
// secret rejects everything.
func VerifySignature(body []byte, secret, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	sum := sha256.Sum256(append(append([]byte{}, body...), secret...))
	expected := hex.EncodeToString(sum[:])
	given := strings.ToLower(strings.TrimSpace(signature))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}
