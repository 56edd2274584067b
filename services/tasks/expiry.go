package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeExpireAuthorization = "booking:expire"

// ExpiryPayload identifies the booking an expiry task should re-check.
type ExpiryPayload struct {
	BookingID string `json:"bookingId"`
}

// NewExpiryTask builds the delayed task fired after the landlord response window.
func NewExpiryTask(bookingID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ExpiryPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeExpireAuthorization, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt), asynq.MaxRetry(5)}

	return task, opts, nil
}

// Scheduler enqueues delayed expiry checks for unanswered authorizations.
type Scheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID string, fireAt time.Time) error
}

// AsynqScheduler implements Scheduler on an asynq client.
type AsynqScheduler struct {
	client *asynq.Client
}

func NewAsynqScheduler(redisOpt asynq.RedisClientOpt) *AsynqScheduler {
	return &AsynqScheduler{client: asynq.NewClient(redisOpt)}
}

func (s *AsynqScheduler) ScheduleExpiry(ctx context.Context, bookingID string, fireAt time.Time) error {
	task, opts, err := NewExpiryTask(bookingID, fireAt)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, opts...)
	return err
}

// NopScheduler drops expiry tasks; used in tests.
type NopScheduler struct{}

func (NopScheduler) ScheduleExpiry(ctx context.Context, bookingID string, fireAt time.Time) error {
	return nil
}
