package booking

import (
	"context"
	"errors"
	"time"

	bookingRepo "flat2study/database/repository/booking"
	"flat2study/models"
	"flat2study/services/events"

	"go.uber.org/zap"
)

// checkResponsePreconditions runs the ordered precondition checks against a
// read of the booking. Each violation yields its own error so the landlord
// sees exactly why the action was refused.
func checkResponsePreconditions(caller *models.Profile, b *models.Booking, now time.Time) error {
	if b.LandlordID != caller.ID {
		return NewAuthorizationError("only the landlord of this booking may respond")
	}
	if b.LandlordResponse != models.ResponseNone {
		return NewStateConflictError("a landlord response was already recorded for this booking")
	}
	if now.After(b.LandlordResponseDueAt) {
		return NewStateConflictError("the landlord response deadline has passed")
	}
	if b.PaymentStatus != models.PaymentAuthorized {
		return NewStateConflictError("booking payment is %q, expected %q", b.PaymentStatus, models.PaymentAuthorized)
	}
	return nil
}

// RespondToBooking records the landlord's decision. Approval does not capture
// the payment; capture is a separate privileged step. Decline releases the
// hold at the gateway before any local state changes, so a failed cancellation
// leaves the booking untouched.
func (s *DefaultPaymentWorkflowService) RespondToBooking(ctx context.Context, caller *models.Profile, bookingID string, response models.LandlordResponse) (*models.Booking, error) {
	if caller == nil {
		return nil, NewAuthorizationError("authentication required")
	}
	if bookingID == "" {
		return nil, NewValidationError("bookingId is required")
	}
	if response != models.ResponseApproved && response != models.ResponseDeclined {
		return nil, NewValidationError("landlordResponse must be %q or %q", models.ResponseApproved, models.ResponseDeclined)
	}

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewNotFoundError("booking %s not found", bookingID)
		}
		return nil, NewDependencyError(err, "failed to load booking")
	}

	now := s.clock()
	if err := checkResponsePreconditions(caller, b, now); err != nil {
		return nil, err
	}

	action := models.ActionApprove
	eventType := events.EventBookingApproved
	if response == models.ResponseDeclined {
		action = models.ActionDecline
		eventType = events.EventBookingDeclined
	}
	next, err := models.Transition(b.PaymentStatus, action)
	if err != nil {
		return nil, NewStateConflictError("%v", err)
	}

	if response == models.ResponseDeclined {
		if b.PaymentAuthorizationID == "" {
			return nil, NewStateConflictError("booking has no payment authorization to cancel")
		}
		if _, err := s.Gateway.CancelIntent(ctx, b.PaymentAuthorizationID); err != nil {
			return nil, NewDependencyError(err, "failed to cancel payment authorization")
		}
	}

	// The conditional update is the arbiter against concurrent responses: the
	// preconditions are re-checked in the same round trip as the write.
	updated, err := s.Repo.RecordLandlordResponse(ctx, bookingID, response, next, now)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNoMatch) {
			return nil, s.diagnoseResponseConflict(ctx, caller, bookingID)
		}
		return nil, NewDependencyError(err, "failed to record landlord response")
	}

	s.publish(ctx, eventType, updated)

	s.Logger.Info("landlord response recorded",
		zap.String("bookingId", bookingID),
		zap.String("response", string(response)),
		zap.String("paymentStatus", string(updated.PaymentStatus)))

	return updated, nil
}

// diagnoseResponseConflict re-reads the booking after a lost conditional
// update to report which precondition a concurrent writer invalidated.
func (s *DefaultPaymentWorkflowService) diagnoseResponseConflict(ctx context.Context, caller *models.Profile, bookingID string) error {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return NewStateConflictError("booking is no longer in a respondable state")
	}
	if err := checkResponsePreconditions(caller, b, s.clock()); err != nil {
		return err
	}
	return NewStateConflictError("booking is no longer in a respondable state")
}
