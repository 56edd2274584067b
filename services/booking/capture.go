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

// CapturePayment finalizes a previously approved hold. Local state moves only
// when the gateway reports the capture succeeded; on any other outcome the
// booking is left as it was, and the caller must reconcile against whatever
// the gateway reports.
func (s *DefaultPaymentWorkflowService) CapturePayment(ctx context.Context, caller *models.Profile, bookingID string) (*models.Booking, *models.CapturedPayment, error) {
	if caller == nil {
		return nil, nil, NewAuthorizationError("authentication required")
	}
	if !caller.IsAdmin() {
		return nil, nil, NewAuthorizationError("capture requires administrative privilege")
	}
	if bookingID == "" {
		return nil, nil, NewValidationError("bookingId is required")
	}

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, nil, NewNotFoundError("booking %s not found", bookingID)
		}
		return nil, nil, NewDependencyError(err, "failed to load booking")
	}

	if b.PaymentStatus != models.PaymentApprovedAwaitingCapture {
		return nil, nil, NewStateConflictError("booking payment is %q, expected %q",
			b.PaymentStatus, models.PaymentApprovedAwaitingCapture)
	}
	if b.PaymentAuthorizationID == "" {
		return nil, nil, NewStateConflictError("booking has no payment authorization to capture")
	}

	next, err := models.Transition(b.PaymentStatus, models.ActionCapture)
	if err != nil {
		return nil, nil, NewStateConflictError("%v", err)
	}

	intent, err := s.Gateway.CaptureIntent(ctx, b.PaymentAuthorizationID)
	if err != nil {
		return nil, nil, NewDependencyError(err, "payment capture failed")
	}
	if intent.Status != payment.IntentStatusSucceeded {
		return nil, nil, NewDependencyError(nil, "capture returned status %q, booking left unchanged", intent.Status)
	}

	updated, err := s.Repo.MarkCaptured(ctx, bookingID, next)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNoMatch) {
			return nil, nil, NewStateConflictError("booking was captured concurrently")
		}
		return nil, nil, NewDependencyError(err, "failed to record captured payment")
	}

	s.publish(ctx, events.EventBookingCaptured, updated)

	s.Logger.Info("payment captured",
		zap.String("bookingId", bookingID),
		zap.String("paymentIntentId", intent.ID),
		zap.Int64("amount", intent.Amount))

	return updated, &models.CapturedPayment{
		ID:       intent.ID,
		Status:   intent.Status,
		Amount:   intent.Amount,
		Currency: intent.Currency,
	}, nil
}
