package booking

import (
	"context"

	"flat2study/models"
)

// PaymentWorkflowService drives the delayed-capture booking payment workflow:
// authorize → verify → landlord respond → capture, with expiry as the
// scheduled fallback for unanswered authorizations.
type PaymentWorkflowService interface {
	// Authorize creates a manual-capture hold and the pending booking record.
	Authorize(ctx context.Context, tenant *models.Profile, req models.AuthorizeBookingRequest) (*models.AuthorizeBookingResponse, error)

	// VerifyAuthorization reconciles the booking with the gateway's
	// authoritative intent status after the tenant's client-side confirmation.
	VerifyAuthorization(ctx context.Context, paymentIntentID string) (*models.VerifyAuthorizationResult, error)

	// RespondToBooking records the landlord's approve/decline decision inside
	// the response window. Decline releases the hold at the gateway.
	RespondToBooking(ctx context.Context, caller *models.Profile, bookingID string, response models.LandlordResponse) (*models.Booking, error)

	// CapturePayment finalizes an approved hold. Admin only.
	CapturePayment(ctx context.Context, caller *models.Profile, bookingID string) (*models.Booking, *models.CapturedPayment, error)

	// ExpireAuthorization cancels a hold whose landlord never responded.
	// Invoked by the scheduled expiry worker, never by request handlers.
	ExpireAuthorization(ctx context.Context, bookingID string) error
}
