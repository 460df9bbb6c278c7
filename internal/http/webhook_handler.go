package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/logger"
)

const (
	HeaderTopic = "X-Shopify-Topic"
	HeaderHMAC  = "X-Shopify-Hmac-Sha256"
)

// Invalidator drops cached catalog responses by tag.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string) (int64, error)
}

type WebhookHandler struct {
	secret  string
	catalog Invalidator
	timeout time.Duration
	now     func() time.Time
}

func NewWebhookHandler(secret string, catalog Invalidator, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		secret:  secret,
		catalog: catalog,
		timeout: timeout,
		now:     time.Now,
	}
}

type WebhookResponse struct {
	Message string `json:"message"`
	Now     int64  `json:"now,omitempty"`
}

// Revalidate handles the platform's product and collection webhooks by
// dropping every cached catalog response.
func (h *WebhookHandler) Revalidate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	topic := r.Header.Get(HeaderTopic)
	signature := r.Header.Get(HeaderHMAC)
	if h.secret == "" || topic == "" || signature == "" {
		respondJSON(w, http.StatusBadRequest, WebhookResponse{Message: "Missing secret, topic, or hmac"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, WebhookResponse{Message: "Invalid body"})
		return
	}
	if !validSignature(h.secret, body, signature) {
		logger.FromContext(ctx).Warn("webhook signature mismatch", zap.String("topic", topic))
		respondJSON(w, http.StatusUnauthorized, WebhookResponse{Message: "Invalid signature"})
		return
	}

	evicted, err := h.catalog.Invalidate(ctx, cache.TagCollections, cache.TagProducts)
	if err != nil {
		logger.FromContext(ctx).Error("catalog invalidation failed", zap.String("topic", topic), zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, WebhookResponse{Message: "Revalidation failed"})
		return
	}

	logger.FromContext(ctx).Info("revalidating catalog", zap.String("topic", topic), zap.Int64("evicted", evicted))
	respondJSON(w, http.StatusOK, WebhookResponse{
		Message: "Revalidation triggered",
		Now:     h.now().UnixMilli(),
	})
}

// validSignature checks the base64 HMAC-SHA256 of body.
func validSignature(secret string, body []byte, signature string) bool {
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}
