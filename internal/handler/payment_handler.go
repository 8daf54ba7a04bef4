package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/middleware"
	"cornerconsole/internal/repository"
	"cornerconsole/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	paymentRepo    *repository.PaymentRepository
}

func NewPaymentHandler(paymentService *service.PaymentService, paymentRepo *repository.PaymentRepository) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, paymentRepo: paymentRepo}
}

type createCheckoutRequest struct {
	RentalID    uint   `json:"rental_id" binding:"required"`
	PaymentType string `json:"payment_type" binding:"required"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
}

// CreateCheckout opens a hosted checkout session for a rental charge,
// deposit, or late fee.
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.paymentService.CreateCheckoutSession(
		c.Request.Context(), middleware.GetUserID(c), req.RentalID,
		req.PaymentType, req.SuccessURL, req.CancelURL,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	payment, err := h.paymentRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	if payment.UserID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) ListMine(c *gin.Context) {
	payments, err := h.paymentRepo.ListByUser(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

type refundRequest struct {
	Amount *string `json:"amount"` // omit for a full refund
	Reason string  `json:"reason"`
}

// Refund issues a full or partial refund on a completed payment. Admin only.
func (h *PaymentHandler) Refund(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req refundRequest
	_ = c.ShouldBindJSON(&req)

	var amount *decimal.Decimal
	if req.Amount != nil {
		d, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid refund amount"})
			return
		}
		amount = &d
	}

	payment, err := h.paymentService.Refund(c.Request.Context(), uint(id), amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
