package booking

import (
	"context"
	"time"

	bookingRepo "flat2study/database/repository/booking"
	profileRepo "flat2study/database/repository/profile"
	"flat2study/models"
	"flat2study/services/events"
	"flat2study/services/payment"
	"flat2study/services/tasks"

	"go.uber.org/zap"
)

// DefaultPaymentWorkflowService implements PaymentWorkflowService.
type DefaultPaymentWorkflowService struct {
	Repo     bookingRepo.BookingRepository
	Profiles profileRepo.ProfileRepository
	Gateway  payment.Gateway
	Events   events.Publisher
	Expiry   tasks.Scheduler
	Logger   *zap.Logger

	// Workflow windows, injected from config so tests can shrink them.
	ResponseWindow        time.Duration
	AuthorizationValidity time.Duration
	ExpiryGrace           time.Duration

	now func() time.Time
}

// NewPaymentWorkflowService wires the workflow with its collaborators.
func NewPaymentWorkflowService(
	repo bookingRepo.BookingRepository,
	profiles profileRepo.ProfileRepository,
	gateway payment.Gateway,
	publisher events.Publisher,
	expiry tasks.Scheduler,
	logger *zap.Logger,
	responseWindow, authorizationValidity, expiryGrace time.Duration,
) *DefaultPaymentWorkflowService {
	return &DefaultPaymentWorkflowService{
		Repo:                  repo,
		Profiles:              profiles,
		Gateway:               gateway,
		Events:                publisher,
		Expiry:                expiry,
		Logger:                logger,
		ResponseWindow:        responseWindow,
		AuthorizationValidity: authorizationValidity,
		ExpiryGrace:           expiryGrace,
		now:                   time.Now,
	}
}

func (s *DefaultPaymentWorkflowService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// publish emits a lifecycle event, best effort. Event delivery never affects
// the outcome of a workflow operation.
func (s *DefaultPaymentWorkflowService) publish(ctx context.Context, eventType string, b *models.Booking) {
	if s.Events == nil || b == nil {
		return
	}
	ev := events.BookingEvent{
		Type:          eventType,
		BookingID:     b.ID,
		ListingID:     b.ListingID,
		LandlordID:    b.LandlordID,
		TenantID:      b.TenantID,
		PaymentStatus: b.PaymentStatus,
		Status:        b.Status,
		TotalAmount:   b.TotalAmount,
		OccurredAt:    s.clock(),
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		s.Logger.Warn("booking event not published",
			zap.String("type", eventType), zap.String("bookingId", b.ID), zap.Error(err))
	}
}
