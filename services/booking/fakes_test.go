package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	bookingRepo "flat2study/database/repository/booking"
	profileRepo "flat2study/database/repository/profile"
	"flat2study/models"
	"flat2study/services/events"
	"flat2study/services/payment"
)

// fakeBookingRepo mirrors the conditional-update semantics of the Mongo repo.
type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[string]*models.Booking
	createErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func copyBooking(b *models.Booking) *models.Booking {
	cp := *b
	return &cp
}

func (r *fakeBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.bookings[b.ID] = copyBooking(b)
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return copyBooking(b), nil
}

func (r *fakeBookingRepo) GetByPaymentAuthorizationID(ctx context.Context, intentID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.PaymentAuthorizationID == intentID {
			return copyBooking(b), nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *fakeBookingRepo) RecordLandlordResponse(ctx context.Context, bookingID string, response models.LandlordResponse, next models.BookingState, now time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok ||
		b.LandlordResponse != models.ResponseNone ||
		b.PaymentStatus != models.PaymentAuthorized ||
		now.After(b.LandlordResponseDueAt) {
		return nil, bookingRepo.ErrNoMatch
	}
	b.LandlordResponse = response
	b.PaymentStatus = next.Payment
	b.Status = next.Booking
	b.UpdatedAt = time.Now()
	return copyBooking(b), nil
}

func (r *fakeBookingRepo) MarkCaptured(ctx context.Context, bookingID string, next models.BookingState) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.PaymentStatus != models.PaymentApprovedAwaitingCapture {
		return nil, bookingRepo.ErrNoMatch
	}
	b.PaymentStatus = next.Payment
	b.Status = next.Booking
	b.UpdatedAt = time.Now()
	return copyBooking(b), nil
}

func (r *fakeBookingRepo) ReconcilePaymentState(ctx context.Context, intentID string, next models.BookingState) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.PaymentAuthorizationID == intentID {
			b.PaymentStatus = next.Payment
			b.Status = next.Booking
			b.UpdatedAt = time.Now()
			return copyBooking(b), nil
		}
	}
	return nil, bookingRepo.ErrNoMatch
}

func (r *fakeBookingRepo) MarkExpired(ctx context.Context, bookingID string, next models.BookingState) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.LandlordResponse != models.ResponseNone || b.PaymentStatus != models.PaymentAuthorized {
		return nil, bookingRepo.ErrNoMatch
	}
	b.PaymentStatus = next.Payment
	b.Status = next.Booking
	b.UpdatedAt = time.Now()
	return copyBooking(b), nil
}

// fakeGateway is a programmable in-memory payment processor.
type fakeGateway struct {
	mu            sync.Mutex
	intents       map[string]*payment.Intent
	nextIntentID  int
	createErr     error
	getErr        error
	captureErr    error
	cancelErr     error
	captureStatus string
	captureCalls  []string
	cancelCalls   []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		intents:       make(map[string]*payment.Intent),
		captureStatus: payment.IntentStatusSucceeded,
	}
}

func (g *fakeGateway) FindOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	return "cus_" + email, nil
}

func (g *fakeGateway) CreateManualCaptureIntent(ctx context.Context, amount int64, currency, customerID string, metadata map[string]string) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextIntentID++
	id := fmt.Sprintf("pi_%d", g.nextIntentID)
	intent := &payment.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       payment.IntentStatusRequiresConfirmation,
		Amount:       amount,
		Currency:     currency,
		Metadata:     metadata,
	}
	g.intents[id] = intent
	cp := *intent
	return &cp, nil
}

func (g *fakeGateway) setStatus(id, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if intent, ok := g.intents[id]; ok {
		intent.Status = status
	}
}

func (g *fakeGateway) GetIntent(ctx context.Context, id string) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getErr != nil {
		return nil, g.getErr
	}
	intent, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such intent %s", id)
	}
	cp := *intent
	return &cp, nil
}

func (g *fakeGateway) CaptureIntent(ctx context.Context, id string) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captureCalls = append(g.captureCalls, id)
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	intent, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such intent %s", id)
	}
	intent.Status = g.captureStatus
	cp := *intent
	return &cp, nil
}

func (g *fakeGateway) CancelIntent(ctx context.Context, id string) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelCalls = append(g.cancelCalls, id)
	if g.cancelErr != nil {
		return nil, g.cancelErr
	}
	intent, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such intent %s", id)
	}
	intent.Status = payment.IntentStatusCanceled
	cp := *intent
	return &cp, nil
}

// fakeProfiles serves profiles and listings from maps.
type fakeProfiles struct {
	profiles map[string]*models.Profile
	listings map[string]*models.Listing
}

func (f *fakeProfiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, profileRepo.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) GetListingByID(ctx context.Context, id string) (*models.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, profileRepo.ErrNotFound
	}
	return l, nil
}

// fakePublisher records emitted events.
type fakePublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
