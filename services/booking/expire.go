package booking

import (
	"context"
	"errors"

	bookingRepo "flat2study/database/repository/booking"
	"flat2study/models"
	"flat2study/services/events"

	"go.uber.org/zap"
)

// ExpireAuthorization cancels a hold the landlord never answered. A response
// recorded in the meantime always wins: the conditional update requires the
// response to still be unset, and a lost update is treated as a no-op.
func (s *DefaultPaymentWorkflowService) ExpireAuthorization(ctx context.Context, bookingID string) error {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			s.Logger.Warn("expiry check found no booking", zap.String("bookingId", bookingID))
			return nil
		}
		return NewDependencyError(err, "failed to load booking for expiry")
	}

	if b.LandlordResponse != models.ResponseNone || b.PaymentStatus != models.PaymentAuthorized {
		return nil
	}

	next, err := models.Transition(b.PaymentStatus, models.ActionExpire)
	if err != nil {
		return nil
	}

	// Release the hold first. If the gateway call fails the task is retried
	// and local state stays untouched.
	if b.PaymentAuthorizationID != "" {
		if _, err := s.Gateway.CancelIntent(ctx, b.PaymentAuthorizationID); err != nil {
			return NewDependencyError(err, "failed to cancel expired authorization")
		}
	}

	updated, err := s.Repo.MarkExpired(ctx, bookingID, next)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNoMatch) {
			// A landlord response landed between the read and the update.
			return nil
		}
		return NewDependencyError(err, "failed to mark booking expired")
	}

	s.publish(ctx, events.EventBookingExpired, updated)

	s.Logger.Info("unanswered authorization expired",
		zap.String("bookingId", bookingID),
		zap.String("paymentIntentId", b.PaymentAuthorizationID))

	return nil
}
