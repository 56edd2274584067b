// File: database/repository/booking/booking_interface.go
package bookingRepo

import (
	"context"
	"time"

	"flat2study/models"
)

// BookingRepository defines the data-access contract for bookings.
//
// The conditional update methods are the concurrency arbiters of the payment
// workflow: each one re-checks its precondition and applies the transition in a
// single round trip, so two racing callers can never both win.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByPaymentAuthorizationID(ctx context.Context, intentID string) (*models.Booking, error)

	// RecordLandlordResponse sets the landlord's decision and the coupled
	// payment/booking statuses, but only while the booking is still
	// unresponded, still authorized, and still inside the response window.
	// Returns ErrNoMatch when the preconditions no longer hold.
	RecordLandlordResponse(ctx context.Context, bookingID string, response models.LandlordResponse, next models.BookingState, now time.Time) (*models.Booking, error)

	// MarkCaptured finalizes a booking that is still approved_awaiting_capture.
	// Returns ErrNoMatch when a concurrent capture already won.
	MarkCaptured(ctx context.Context, bookingID string, next models.BookingState) (*models.Booking, error)

	// ReconcilePaymentState sets the payment/booking statuses for the booking
	// carrying the given payment authorization id. Returns ErrNoMatch when no
	// booking references the authorization.
	ReconcilePaymentState(ctx context.Context, intentID string, next models.BookingState) (*models.Booking, error)

	// MarkExpired cancels a booking whose landlord never responded, but only
	// while it is still unresponded and authorized. Returns ErrNoMatch when the
	// landlord answered in the meantime.
	MarkExpired(ctx context.Context, bookingID string, next models.BookingState) (*models.Booking, error)
}
