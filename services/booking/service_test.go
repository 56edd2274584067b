package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"flat2study/models"
	"flat2study/services/payment"
	"flat2study/services/tasks"

	"go.uber.org/zap"
)

var (
	tenantProfile   = &models.Profile{ID: "tenant-1", Email: "tenant@example.com", FullName: "Tina Tenant", Role: models.RoleTenant}
	landlordProfile = &models.Profile{ID: "landlord-1", Email: "landlord@example.com", Role: models.RoleLandlord}
	adminProfile    = &models.Profile{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}
	strangerProfile = &models.Profile{ID: "stranger-1", Email: "other@example.com", Role: models.RoleLandlord}
)

type testEnv struct {
	svc     *DefaultPaymentWorkflowService
	repo    *fakeBookingRepo
	gateway *fakeGateway
	events  *fakePublisher
	now     time.Time
}

func newTestEnv() *testEnv {
	repo := newFakeBookingRepo()
	gateway := newFakeGateway()
	publisher := &fakePublisher{}
	profiles := &fakeProfiles{
		profiles: map[string]*models.Profile{
			tenantProfile.ID:   tenantProfile,
			landlordProfile.ID: landlordProfile,
			adminProfile.ID:    adminProfile,
		},
		listings: map[string]*models.Listing{
			"listing-1": {ID: "listing-1", LandlordID: "landlord-1", Active: true},
		},
	}

	svc := NewPaymentWorkflowService(
		repo, profiles, gateway, publisher, tasks.NopScheduler{}, zap.NewNop(),
		24*time.Hour, 7*24*time.Hour, 5*time.Minute,
	)
	env := &testEnv{svc: svc, repo: repo, gateway: gateway, events: publisher, now: time.Now()}
	svc.now = func() time.Time { return env.now }
	return env
}

func validRequest() models.AuthorizeBookingRequest {
	return models.AuthorizeBookingRequest{
		ListingID:      "listing-1",
		LandlordID:     "landlord-1",
		CheckInDate:    "2026-09-01",
		CheckOutDate:   "2027-06-30",
		FirstMonthRent: 800,
		ServiceFee:     200,
		TotalAmount:    1000,
	}
}

// authorizeAndVerify drives a booking to the authorized state.
func (env *testEnv) authorizeAndVerify(t *testing.T) *models.Booking {
	t.Helper()
	resp, err := env.svc.Authorize(context.Background(), tenantProfile, validRequest())
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	env.gateway.setStatus(resp.PaymentIntentID, payment.IntentStatusRequiresCapture)
	result, err := env.svc.VerifyAuthorization(context.Background(), resp.PaymentIntentID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Booking == nil {
		t.Fatal("verify returned no booking")
	}
	return result.Booking
}

func TestAuthorizeCreatesPendingBooking(t *testing.T) {
	env := newTestEnv()

	resp, err := env.svc.Authorize(context.Background(), tenantProfile, validRequest())
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if resp.ClientSecret == "" || resp.BookingID == "" || resp.PaymentIntentID == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}
	if want := env.now.Add(24 * time.Hour); !resp.LandlordResponseDeadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", resp.LandlordResponseDeadline, want)
	}

	b, err := env.repo.GetByID(context.Background(), resp.BookingID)
	if err != nil {
		t.Fatalf("booking not persisted: %v", err)
	}
	if b.PaymentStatus != models.PaymentPending || b.Status != models.BookingPendingPayment {
		t.Fatalf("new booking in state (%s, %s)", b.PaymentStatus, b.Status)
	}
	if b.PaymentAuthorizationID != resp.PaymentIntentID {
		t.Fatal("booking does not reference the created intent")
	}

	intent, _ := env.gateway.GetIntent(context.Background(), resp.PaymentIntentID)
	if intent.Amount != 100000 {
		t.Fatalf("intent amount = %d minor units, want 100000", intent.Amount)
	}
	if _, err := models.IntentMetadataFromMap(intent.Metadata); err != nil {
		t.Fatalf("intent metadata invalid: %v", err)
	}
}

func TestAuthorizeValidation(t *testing.T) {
	env := newTestEnv()

	cases := []struct {
		name   string
		mutate func(*models.AuthorizeBookingRequest)
	}{
		{"missing listing", func(r *models.AuthorizeBookingRequest) { r.ListingID = "" }},
		{"missing landlord", func(r *models.AuthorizeBookingRequest) { r.LandlordID = "" }},
		{"bad check-in", func(r *models.AuthorizeBookingRequest) { r.CheckInDate = "yesterday" }},
		{"checkout before checkin", func(r *models.AuthorizeBookingRequest) { r.CheckOutDate = "2026-08-01" }},
		{"zero amount", func(r *models.AuthorizeBookingRequest) { r.TotalAmount = 0; r.FirstMonthRent = 0; r.ServiceFee = 0 }},
		{"amount mismatch", func(r *models.AuthorizeBookingRequest) { r.TotalAmount = 999 }},
		{"unknown listing", func(r *models.AuthorizeBookingRequest) { r.ListingID = "listing-404" }},
		{"landlord mismatch", func(r *models.AuthorizeBookingRequest) { r.LandlordID = "stranger-1" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := env.svc.Authorize(context.Background(), tenantProfile, req)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
		})
	}

	if _, err := env.svc.Authorize(context.Background(), nil, validRequest()); err == nil {
		t.Fatal("expected unauthenticated authorize to fail")
	}
}

func TestAuthorizeCancelsIntentWhenInsertFails(t *testing.T) {
	env := newTestEnv()
	env.repo.createErr = errors.New("store unavailable")

	_, err := env.svc.Authorize(context.Background(), tenantProfile, validRequest())
	var dependency *DependencyError
	if !errors.As(err, &dependency) {
		t.Fatalf("expected *DependencyError, got %v", err)
	}
	if len(env.gateway.cancelCalls) != 1 {
		t.Fatalf("orphaned intent not compensated, cancel calls = %d", len(env.gateway.cancelCalls))
	}
}

// Scenario A: authorize 1000 EUR, gateway reports requires_capture, verify.
func TestVerifyAuthorizedPayment(t *testing.T) {
	env := newTestEnv()

	resp, err := env.svc.Authorize(context.Background(), tenantProfile, validRequest())
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	env.gateway.setStatus(resp.PaymentIntentID, payment.IntentStatusRequiresCapture)

	result, err := env.svc.VerifyAuthorization(context.Background(), resp.PaymentIntentID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.PaymentStatus != models.PaymentAuthorized {
		t.Fatalf("payment status = %s, want authorized", result.PaymentStatus)
	}
	if result.Booking.Status != models.BookingPendingLandlordResponse {
		t.Fatalf("booking status = %s, want pending_landlord_response", result.Booking.Status)
	}
	if !result.RequiresLandlordResponse {
		t.Fatal("expected landlord response to be required")
	}
}

func TestVerifyStatusMapping(t *testing.T) {
	cases := []struct {
		intentStatus string
		payment      models.PaymentStatus
		booking      models.BookingStatus
	}{
		{payment.IntentStatusSucceeded, models.PaymentCaptured, models.BookingConfirmed},
		{payment.IntentStatusCanceled, models.PaymentCancelled, models.BookingCancelled},
		{payment.IntentStatusRequiresPaymentMethod, models.PaymentFailed, models.BookingCancelled},
		{payment.IntentStatusRequiresConfirmation, models.PaymentFailed, models.BookingCancelled},
		{"processing", models.PaymentPending, models.BookingPendingPayment},
	}
	for _, tc := range cases {
		t.Run(tc.intentStatus, func(t *testing.T) {
			env := newTestEnv()
			resp, err := env.svc.Authorize(context.Background(), tenantProfile, validRequest())
			if err != nil {
				t.Fatalf("authorize failed: %v", err)
			}
			env.gateway.setStatus(resp.PaymentIntentID, tc.intentStatus)

			result, err := env.svc.VerifyAuthorization(context.Background(), resp.PaymentIntentID)
			if err != nil {
				t.Fatalf("verify failed: %v", err)
			}
			if result.Booking.PaymentStatus != tc.payment || result.Booking.Status != tc.booking {
				t.Fatalf("got (%s, %s), want (%s, %s)",
					result.Booking.PaymentStatus, result.Booking.Status, tc.payment, tc.booking)
			}
			if result.RequiresLandlordResponse {
				t.Fatal("landlord response should not be required")
			}
		})
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)

	second, err := env.svc.VerifyAuthorization(context.Background(), b.PaymentAuthorizationID)
	if err != nil {
		t.Fatalf("second verify failed: %v", err)
	}
	if second.Booking.PaymentStatus != b.PaymentStatus || second.Booking.Status != b.Status {
		t.Fatalf("second verify diverged: (%s, %s) vs (%s, %s)",
			second.Booking.PaymentStatus, second.Booking.Status, b.PaymentStatus, b.Status)
	}
}

func TestVerifyUnknownIntentIsRecoverable(t *testing.T) {
	env := newTestEnv()
	resp, err := env.svc.Authorize(context.Background(), tenantProfile, validRequest())
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	// Simulate an intent the store never heard of.
	env.repo.bookings = map[string]*models.Booking{}

	result, err := env.svc.VerifyAuthorization(context.Background(), resp.PaymentIntentID)
	if err != nil {
		t.Fatalf("expected recoverable no-op, got %v", err)
	}
	if result.Booking != nil {
		t.Fatal("no booking should be returned")
	}
}

// Scenario B: approve records the decision without capturing.
func TestApproveDoesNotCapture(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)

	updated, err := env.svc.RespondToBooking(context.Background(), landlordProfile, b.ID, models.ResponseApproved)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if updated.PaymentStatus != models.PaymentApprovedAwaitingCapture {
		t.Fatalf("payment status = %s, want approved_awaiting_capture", updated.PaymentStatus)
	}
	if updated.Status != models.BookingApprovedAwaitingPayment {
		t.Fatalf("booking status = %s, want approved_awaiting_payment", updated.Status)
	}
	if updated.LandlordResponse != models.ResponseApproved {
		t.Fatalf("landlord response = %q, want approved", updated.LandlordResponse)
	}
	if len(env.gateway.captureCalls) != 0 {
		t.Fatal("approve must not capture the payment")
	}
}

// Scenario C: decline cancels the hold at the gateway exactly once.
func TestDeclineCancelsAuthorization(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)

	updated, err := env.svc.RespondToBooking(context.Background(), landlordProfile, b.ID, models.ResponseDeclined)
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if updated.PaymentStatus != models.PaymentCancelled || updated.Status != models.BookingCancelled {
		t.Fatalf("decline left state (%s, %s)", updated.PaymentStatus, updated.Status)
	}
	if len(env.gateway.cancelCalls) != 1 || env.gateway.cancelCalls[0] != b.PaymentAuthorizationID {
		t.Fatalf("expected exactly one cancel for %s, got %v", b.PaymentAuthorizationID, env.gateway.cancelCalls)
	}
}

func TestDeclineAbortsWhenGatewayCancelFails(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)
	env.gateway.cancelErr = errors.New("gateway down")

	_, err := env.svc.RespondToBooking(context.Background(), landlordProfile, b.ID, models.ResponseDeclined)
	var dependency *DependencyError
	if !errors.As(err, &dependency) {
		t.Fatalf("expected *DependencyError, got %v", err)
	}

	after, _ := env.repo.GetByID(context.Background(), b.ID)
	if after.PaymentStatus != models.PaymentAuthorized || after.LandlordResponse != models.ResponseNone {
		t.Fatal("failed gateway cancel must not mutate the booking")
	}
}

// The landlord response is recorded at most once.
func TestResponseRecordedAtMostOnce(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)

	if _, err := env.svc.RespondToBooking(context.Background(), landlordProfile, b.ID, models.ResponseApproved); err != nil {
		t.Fatalf("first response failed: %v", err)
	}
	_, err := env.svc.RespondToBooking(context.Background(), landlordProfile, b.ID, models.ResponseDeclined)
	var conflict *StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *StateConflictError, got %v", err)
	}

	after, _ := env.repo.GetByID(context.Background(), b.ID)
	if after.LandlordResponse != models.ResponseApproved {
		t.Fatal("second response overwrote the first")
	}
	if len(env.gateway.cancelCalls) != 0 {
		t.Fatal("rejected decline must not reach the gateway")
	}
}

// Scenario E: responses past the deadline are refused, state unchanged.
func TestRespondAfterDeadline(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)

	env.now = env.now.Add(25 * time.Hour)

	_, err := env.svc.RespondToBooking(context.Background(), landlordProfile, b.ID, models.ResponseApproved)
	var conflict *StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *StateConflictError, got %v", err)
	}

	after, _ := env.repo.GetByID(context.Background(), b.ID)
	if after.PaymentStatus != models.PaymentAuthorized || after.LandlordResponse != models.ResponseNone {
		t.Fatal("late response mutated the booking")
	}
}

// Scenario F: only the booking's landlord may respond.
func TestRespondRequiresOwningLandlord(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)

	_, err := env.svc.RespondToBooking(context.Background(), strangerProfile, b.ID, models.ResponseApproved)
	var authz *AuthorizationError
	if !errors.As(err, &authz) {
		t.Fatalf("expected *AuthorizationError, got %v", err)
	}

	after, _ := env.repo.GetByID(context.Background(), b.ID)
	if after.LandlordResponse != models.ResponseNone {
		t.Fatal("foreign response mutated the booking")
	}
}

func TestRespondWrongPaymentState(t *testing.T) {
	env := newTestEnv()
	resp, err := env.svc.Authorize(context.Background(), tenantProfile, validRequest())
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	// Still pending: the tenant never confirmed.
	_, err = env.svc.RespondToBooking(context.Background(), landlordProfile, resp.BookingID, models.ResponseApproved)
	var conflict *StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *StateConflictError, got %v", err)
	}
}

// Scenario D: admin capture on an approved booking confirms it.
func TestManualCapture(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)
	if _, err := env.svc.RespondToBooking(context.Background(), landlordProfile, b.ID, models.ResponseApproved); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	updated, captured, err := env.svc.CapturePayment(context.Background(), adminProfile, b.ID)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if updated.PaymentStatus != models.PaymentCaptured || updated.Status != models.BookingConfirmed {
		t.Fatalf("capture left state (%s, %s)", updated.PaymentStatus, updated.Status)
	}
	if captured.Status != payment.IntentStatusSucceeded || captured.Amount != 100000 {
		t.Fatalf("captured payment = %+v", captured)
	}
	if captured.Currency != models.BookingCurrency {
		t.Fatalf("captured currency = %s", captured.Currency)
	}
}

func TestCaptureRequiresAdmin(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)
	if _, err := env.svc.RespondToBooking(context.Background(), landlordProfile, b.ID, models.ResponseApproved); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	_, _, err := env.svc.CapturePayment(context.Background(), landlordProfile, b.ID)
	var authz *AuthorizationError
	if !errors.As(err, &authz) {
		t.Fatalf("expected *AuthorizationError, got %v", err)
	}
	if len(env.gateway.captureCalls) != 0 {
		t.Fatal("unauthorized capture must not reach the gateway")
	}
}

// Capture outside approved_awaiting_capture fails without touching the booking.
func TestCaptureWrongState(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)

	_, _, err := env.svc.CapturePayment(context.Background(), adminProfile, b.ID)
	var conflict *StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *StateConflictError, got %v", err)
	}
	if len(env.gateway.captureCalls) != 0 {
		t.Fatal("capture in wrong state must not reach the gateway")
	}

	after, _ := env.repo.GetByID(context.Background(), b.ID)
	if after.PaymentStatus != models.PaymentAuthorized {
		t.Fatal("failed capture mutated the booking")
	}
}

func TestCaptureUnexpectedGatewayStatus(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)
	if _, err := env.svc.RespondToBooking(context.Background(), landlordProfile, b.ID, models.ResponseApproved); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	env.gateway.captureStatus = "processing"

	_, _, err := env.svc.CapturePayment(context.Background(), adminProfile, b.ID)
	var dependency *DependencyError
	if !errors.As(err, &dependency) {
		t.Fatalf("expected *DependencyError, got %v", err)
	}

	after, _ := env.repo.GetByID(context.Background(), b.ID)
	if after.PaymentStatus != models.PaymentApprovedAwaitingCapture {
		t.Fatal("unexpected gateway status must leave the booking unchanged")
	}
}

func TestExpireUnansweredAuthorization(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)

	if err := env.svc.ExpireAuthorization(context.Background(), b.ID); err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	after, _ := env.repo.GetByID(context.Background(), b.ID)
	if after.PaymentStatus != models.PaymentCancelled || after.Status != models.BookingCancelled {
		t.Fatalf("expire left state (%s, %s)", after.PaymentStatus, after.Status)
	}
	if after.LandlordResponse != models.ResponseNone {
		t.Fatal("expiry is not a landlord response")
	}
	if len(env.gateway.cancelCalls) != 1 {
		t.Fatalf("expected one gateway cancel, got %d", len(env.gateway.cancelCalls))
	}
}

func TestExpireSkipsAnsweredBooking(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)
	if _, err := env.svc.RespondToBooking(context.Background(), landlordProfile, b.ID, models.ResponseApproved); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if err := env.svc.ExpireAuthorization(context.Background(), b.ID); err != nil {
		t.Fatalf("expire should no-op, got %v", err)
	}
	after, _ := env.repo.GetByID(context.Background(), b.ID)
	if after.PaymentStatus != models.PaymentApprovedAwaitingCapture {
		t.Fatal("expiry overrode a recorded landlord response")
	}
	if len(env.gateway.cancelCalls) != 0 {
		t.Fatal("no cancel expected for an answered booking")
	}
}

func TestLifecycleEventsPublished(t *testing.T) {
	env := newTestEnv()
	b := env.authorizeAndVerify(t)
	if _, err := env.svc.RespondToBooking(context.Background(), landlordProfile, b.ID, models.ResponseApproved); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, _, err := env.svc.CapturePayment(context.Background(), adminProfile, b.ID); err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	got := env.events.types()
	want := []string{"booking.authorized", "booking.approved", "booking.captured"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}
