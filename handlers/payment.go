// File: handlers/payment.go
package handlers

import (
	"errors"
	"net/http"

	"flat2study/middleware"
	"flat2study/models"
	"flat2study/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler exposes the booking payment workflow over HTTP.
type PaymentHandler struct {
	Workflow booking.PaymentWorkflowService
	Logger   *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(workflow booking.PaymentWorkflowService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Workflow: workflow, Logger: logger}
}

// respondError maps the workflow error taxonomy onto HTTP statuses.
func (ph *PaymentHandler) respondError(c *gin.Context, err error) {
	var (
		validation *booking.ValidationError
		notFound   *booking.NotFoundError
		authz      *booking.AuthorizationError
		conflict   *booking.StateConflictError
		dependency *booking.DependencyError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Message})
	case errors.As(err, &authz):
		c.JSON(http.StatusForbidden, gin.H{"error": authz.Message})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Message})
	case errors.As(err, &dependency):
		ph.Logger.Error("payment dependency failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": dependency.Message})
	default:
		ph.Logger.Error("payment workflow failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CreatePaymentAuthorization creates a manual-capture hold and a pending booking.
func (ph *PaymentHandler) CreatePaymentAuthorization(c *gin.Context) {
	tenant := middleware.ProfileFromContext(c)
	if tenant == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req models.AuthorizeBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	resp, err := ph.Workflow.Authorize(c.Request.Context(), tenant, req)
	if err != nil {
		ph.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":                  true,
		"clientSecret":             resp.ClientSecret,
		"bookingId":                resp.BookingID,
		"paymentIntentId":          resp.PaymentIntentID,
		"landlordResponseDeadline": resp.LandlordResponseDeadline,
	})
}

// VerifyPaymentAuthorization reconciles a booking with the gateway's intent state.
func (ph *PaymentHandler) VerifyPaymentAuthorization(c *gin.Context) {
	var req struct {
		PaymentIntentID string `json:"paymentIntentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := ph.Workflow.VerifyAuthorization(c.Request.Context(), req.PaymentIntentID)
	if err != nil {
		ph.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":                  true,
		"booking":                  result.Booking,
		"paymentStatus":            result.PaymentStatus,
		"requiresLandlordResponse": result.RequiresLandlordResponse,
	})
}

// RespondToBooking records the landlord's approve/decline decision.
func (ph *PaymentHandler) RespondToBooking(c *gin.Context) {
	caller := middleware.ProfileFromContext(c)
	if caller == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		BookingID        string                  `json:"bookingId"`
		LandlordResponse models.LandlordResponse `json:"landlordResponse"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	updated, err := ph.Workflow.RespondToBooking(c.Request.Context(), caller, req.BookingID, req.LandlordResponse)
	if err != nil {
		ph.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"booking":          updated,
		"landlordResponse": updated.LandlordResponse,
	})
}

// ManualCapturePayment finalizes an approved hold. Admin only.
func (ph *PaymentHandler) ManualCapturePayment(c *gin.Context) {
	caller := middleware.ProfileFromContext(c)
	if caller == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		BookingID string `json:"bookingId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	updated, captured, err := ph.Workflow.CapturePayment(c.Request.Context(), caller, req.BookingID)
	if err != nil {
		ph.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"booking":       updated,
		"paymentIntent": captured,
	})
}

// HealthHandler reports liveness.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
