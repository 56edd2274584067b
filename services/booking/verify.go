package booking

import (
	"context"
	"errors"

	bookingRepo "flat2study/database/repository/booking"
	"flat2study/models"
	"flat2study/services/events"
	"flat2study/services/payment"

	"go.uber.org/zap"
)

// reconcileIntentStatus is the fixed mapping from the gateway's authoritative
// intent status to the local payment/booking state.
func reconcileIntentStatus(status string) (models.BookingState, string) {
	switch status {
	case payment.IntentStatusRequiresCapture:
		return models.BookingState{Payment: models.PaymentAuthorized, Booking: models.BookingPendingLandlordResponse},
			events.EventBookingAuthorized
	case payment.IntentStatusSucceeded:
		return models.BookingState{Payment: models.PaymentCaptured, Booking: models.BookingConfirmed},
			events.EventBookingCaptured
	case payment.IntentStatusCanceled:
		return models.BookingState{Payment: models.PaymentCancelled, Booking: models.BookingCancelled}, ""
	case payment.IntentStatusRequiresPaymentMethod, payment.IntentStatusRequiresConfirmation:
		return models.BookingState{Payment: models.PaymentFailed, Booking: models.BookingCancelled},
			events.EventBookingPaymentFailed
	default:
		return models.BookingState{Payment: models.PaymentPending, Booking: models.BookingPendingPayment}, ""
	}
}

// VerifyAuthorization reconciles local booking state with the intent the
// gateway reports. The mapping is a pure function of the gateway status, so
// repeated calls converge on the same state.
func (s *DefaultPaymentWorkflowService) VerifyAuthorization(ctx context.Context, paymentIntentID string) (*models.VerifyAuthorizationResult, error) {
	if paymentIntentID == "" {
		return nil, NewValidationError("paymentIntentId is required")
	}

	intent, err := s.Gateway.GetIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, NewDependencyError(err, "failed to retrieve payment intent")
	}

	// Metadata travelled through the gateway; validate it survived the redirect flow.
	if _, err := models.IntentMetadataFromMap(intent.Metadata); err != nil {
		s.Logger.Warn("payment intent carries invalid booking metadata",
			zap.String("paymentIntentId", paymentIntentID), zap.Error(err))
	}

	next, eventType := reconcileIntentStatus(intent.Status)

	updated, err := s.Repo.ReconcilePaymentState(ctx, paymentIntentID, next)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNoMatch) {
			// No booking references this intent. Recoverable: log and report
			// the mapped status without a booking.
			s.Logger.Warn("no booking found for payment intent",
				zap.String("paymentIntentId", paymentIntentID),
				zap.String("intentStatus", intent.Status))
			return &models.VerifyAuthorizationResult{
				PaymentStatus:            next.Payment,
				RequiresLandlordResponse: false,
			}, nil
		}
		return nil, NewDependencyError(err, "failed to reconcile booking state")
	}

	if eventType != "" {
		s.publish(ctx, eventType, updated)
	}

	s.Logger.Info("payment authorization verified",
		zap.String("paymentIntentId", paymentIntentID),
		zap.String("intentStatus", intent.Status),
		zap.String("paymentStatus", string(updated.PaymentStatus)))

	return &models.VerifyAuthorizationResult{
		Booking:                  updated,
		PaymentStatus:            updated.PaymentStatus,
		RequiresLandlordResponse: updated.PaymentStatus == models.PaymentAuthorized,
	}, nil
}
