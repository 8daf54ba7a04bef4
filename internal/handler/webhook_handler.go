package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cornerconsole/internal/service"
	"cornerconsole/pkg/gateway"
)

type WebhookHandler struct {
	paymentService *service.PaymentService
	gw             gateway.Gateway
}

func NewWebhookHandler(paymentService *service.PaymentService, gw gateway.Gateway) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService, gw: gw}
}

// HandleStripe receives gateway callbacks. The signature is verified against
// the raw body before anything else; an unverifiable request never reaches
// the event log. Verified events are always acknowledged with 200 so the
// gateway does not retry events we have already recorded.
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	sig := c.GetHeader("Stripe-Signature")
	if sig == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing signature header"})
		return
	}

	ev, err := h.gw.ConstructEvent(body, sig)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			log.Printf("[webhook] signature verification failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	if err := h.paymentService.HandleWebhookEvent(c.Request.Context(), ev); err != nil {
		// Only the event-log insert can fail here; the gateway should
		// retry this delivery.
		log.Printf("[webhook] could not record event %s: %v", ev.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event not recorded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
