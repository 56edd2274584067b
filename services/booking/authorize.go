package booking

import (
	"context"
	"errors"
	"math"

	profileRepo "flat2study/database/repository/profile"
	"flat2study/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// amountsMatch compares EUR amounts at cent precision.
func amountsMatch(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

func validateAuthorizeRequest(req models.AuthorizeBookingRequest) error {
	if req.ListingID == "" {
		return NewValidationError("listingId is required")
	}
	if req.LandlordID == "" {
		return NewValidationError("landlordId is required")
	}
	checkIn, err := models.ParseBookingDate(req.CheckInDate)
	if err != nil {
		return NewValidationError("checkInDate must be a valid YYYY-MM-DD date")
	}
	checkOut, err := models.ParseBookingDate(req.CheckOutDate)
	if err != nil {
		return NewValidationError("checkOutDate must be a valid YYYY-MM-DD date")
	}
	if !checkOut.After(checkIn) {
		return NewValidationError("checkOutDate must be after checkInDate")
	}
	if req.TotalAmount <= 0 {
		return NewValidationError("totalAmount must be positive")
	}
	if req.FirstMonthRent < 0 || req.ServiceFee < 0 || req.SecurityDeposit < 0 {
		return NewValidationError("amounts may not be negative")
	}
	if !amountsMatch(req.TotalAmount, req.FirstMonthRent+req.ServiceFee) {
		return NewValidationError("totalAmount must equal firstMonthRent plus serviceFee")
	}
	return nil
}

// Authorize creates a manual-capture hold at the gateway and the pending
// booking record referencing it. If the booking insert fails after the intent
// was created, the intent is cancelled best-effort so no orphaned hold stays
// on the tenant's card.
func (s *DefaultPaymentWorkflowService) Authorize(ctx context.Context, tenant *models.Profile, req models.AuthorizeBookingRequest) (*models.AuthorizeBookingResponse, error) {
	if tenant == nil {
		return nil, NewAuthorizationError("authentication required")
	}
	if err := validateAuthorizeRequest(req); err != nil {
		return nil, err
	}

	listing, err := s.Profiles.GetListingByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, profileRepo.ErrNotFound) {
			return nil, NewValidationError("listing %s does not exist", req.ListingID)
		}
		return nil, NewDependencyError(err, "failed to load listing")
	}
	if listing.LandlordID != req.LandlordID {
		return nil, NewValidationError("listing %s does not belong to landlord %s", req.ListingID, req.LandlordID)
	}

	customerID, err := s.Gateway.FindOrCreateCustomer(ctx, tenant.Email, tenant.FullName)
	if err != nil {
		return nil, NewDependencyError(err, "failed to resolve gateway customer")
	}

	metadata := models.IntentMetadata{
		ListingID:    req.ListingID,
		LandlordID:   req.LandlordID,
		TenantID:     tenant.ID,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
	}

	amountCents := int64(math.Round(req.TotalAmount * 100))
	intent, err := s.Gateway.CreateManualCaptureIntent(ctx, amountCents, models.BookingCurrency, customerID, metadata.ToMap())
	if err != nil {
		return nil, NewDependencyError(err, "failed to create payment authorization")
	}

	now := s.clock()
	b := &models.Booking{
		ID:                     uuid.New().String(),
		ListingID:              req.ListingID,
		TenantID:               tenant.ID,
		LandlordID:             req.LandlordID,
		CheckInDate:            req.CheckInDate,
		CheckOutDate:           req.CheckOutDate,
		MonthlyRent:            req.FirstMonthRent,
		SecurityDeposit:        req.SecurityDeposit,
		TotalAmount:            req.TotalAmount,
		Currency:               models.BookingCurrency,
		PaymentAuthorizationID: intent.ID,
		PaymentStatus:          models.PaymentPending,
		AuthorizationExpiresAt: now.Add(s.AuthorizationValidity),
		LandlordResponse:       models.ResponseNone,
		LandlordResponseDueAt:  now.Add(s.ResponseWindow),
		Status:                 models.BookingPendingPayment,
		ApplicationData:        req.ApplicationData,
	}

	if err := s.Repo.Create(ctx, b); err != nil {
		// Compensate: release the hold so the intent is not orphaned.
		if _, cancelErr := s.Gateway.CancelIntent(ctx, intent.ID); cancelErr != nil {
			s.Logger.Error("failed to cancel orphaned payment intent",
				zap.String("paymentIntentId", intent.ID), zap.Error(cancelErr))
		}
		return nil, NewDependencyError(err, "failed to create booking record")
	}

	if s.Expiry != nil {
		fireAt := b.LandlordResponseDueAt.Add(s.ExpiryGrace)
		if err := s.Expiry.ScheduleExpiry(ctx, b.ID, fireAt); err != nil {
			s.Logger.Warn("failed to schedule authorization expiry",
				zap.String("bookingId", b.ID), zap.Error(err))
		}
	}

	s.Logger.Info("payment authorization created",
		zap.String("bookingId", b.ID),
		zap.String("paymentIntentId", intent.ID),
		zap.Int64("amountCents", amountCents))

	return &models.AuthorizeBookingResponse{
		ClientSecret:             intent.ClientSecret,
		BookingID:                b.ID,
		PaymentIntentID:          intent.ID,
		LandlordResponseDeadline: b.LandlordResponseDueAt,
	}, nil
}
