package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cornerconsole/internal/domain"
)

// respondError maps domain errors onto HTTP statuses in one place so every
// handler reports failures the same way.
func respondError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	var sce *domain.StateConflictError
	var stc *domain.StockConflictError
	var ge *domain.GatewayError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &sce):
		c.JSON(http.StatusConflict, gin.H{"error": sce.Error()})
	case errors.As(err, &stc):
		c.JSON(http.StatusConflict, gin.H{"error": stc.Error()})
	case errors.Is(err, domain.ErrDuplicateReview), errors.Is(err, domain.ErrNotRefundable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotReviewOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRentalNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &ge):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway error"})
	default:
		log.Printf("[http] internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parseDate reads a YYYY-MM-DD query or body value as a UTC calendar date.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, domain.Validationf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}
