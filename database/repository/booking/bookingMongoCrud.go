// File: database/repository/booking/bookingMongoCrud.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flat2study/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new booking document.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID fetches a booking by its id.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// GetByPaymentAuthorizationID fetches the booking referencing a payment intent.
func (r *MongoBookingRepo) GetByPaymentAuthorizationID(ctx context.Context, intentID string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"payment_authorization_id": intentID}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking for intent %s: %w", intentID, err)
	}
	return &booking, nil
}

// findOneAndApply runs a conditional FindOneAndUpdate returning the updated document.
func (r *MongoBookingRepo) findOneAndApply(ctx context.Context, filter, set bson.M) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	set["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply booking update: %w", err)
	}
	return &booking, nil
}

// RecordLandlordResponse applies the approve/decline transition atomically:
// the response must still be unset, the payment still authorized, and the
// deadline not yet passed, all checked in the same round trip as the write.
func (r *MongoBookingRepo) RecordLandlordResponse(ctx context.Context, bookingID string, response models.LandlordResponse, next models.BookingState, now time.Time) (*models.Booking, error) {
	filter := bson.M{
		"id":                       bookingID,
		"landlord_response":        models.ResponseNone,
		"payment_status":           models.PaymentAuthorized,
		"landlord_response_due_at": bson.M{"$gte": now},
	}
	set := bson.M{
		"landlord_response": response,
		"payment_status":    next.Payment,
		"status":            next.Booking,
	}
	return r.findOneAndApply(ctx, filter, set)
}

// MarkCaptured finalizes the booking only if it is still awaiting capture.
func (r *MongoBookingRepo) MarkCaptured(ctx context.Context, bookingID string, next models.BookingState) (*models.Booking, error) {
	filter := bson.M{
		"id":             bookingID,
		"payment_status": models.PaymentApprovedAwaitingCapture,
	}
	set := bson.M{
		"payment_status": next.Payment,
		"status":         next.Booking,
	}
	return r.findOneAndApply(ctx, filter, set)
}

// ReconcilePaymentState overwrites the payment/booking statuses with the state
// derived from the gateway's authoritative intent status.
func (r *MongoBookingRepo) ReconcilePaymentState(ctx context.Context, intentID string, next models.BookingState) (*models.Booking, error) {
	filter := bson.M{"payment_authorization_id": intentID}
	set := bson.M{
		"payment_status": next.Payment,
		"status":         next.Booking,
	}
	return r.findOneAndApply(ctx, filter, set)
}

// MarkExpired cancels an unanswered authorization. A landlord response recorded
// concurrently wins: the filter requires the response to still be unset.
func (r *MongoBookingRepo) MarkExpired(ctx context.Context, bookingID string, next models.BookingState) (*models.Booking, error) {
	filter := bson.M{
		"id":                bookingID,
		"landlord_response": models.ResponseNone,
		"payment_status":    models.PaymentAuthorized,
	}
	set := bson.M{
		"payment_status": next.Payment,
		"status":         next.Booking,
	}
	return r.findOneAndApply(ctx, filter, set)
}
