package events

import (
	"context"
	"encoding/json"
	"time"

	"flat2study/models"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Booking lifecycle event types.
const (
	EventBookingAuthorized    = "booking.authorized"
	EventBookingApproved      = "booking.approved"
	EventBookingDeclined      = "booking.declined"
	EventBookingCaptured      = "booking.captured"
	EventBookingExpired       = "booking.expired"
	EventBookingPaymentFailed = "booking.payment_failed"
)

// BookingEvent is the payload published for analytics consumers.
type BookingEvent struct {
	Type          string               `json:"type"`
	BookingID     string               `json:"bookingId"`
	ListingID     string               `json:"listingId"`
	LandlordID    string               `json:"landlordId"`
	TenantID      string               `json:"tenantId"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	Status        models.BookingStatus `json:"status"`
	TotalAmount   float64              `json:"totalAmount"`
	OccurredAt    time.Time            `json:"occurredAt"`
}

// Publisher emits booking lifecycle events. Delivery is best effort: failures
// are logged by callers and never surfaced to the booking workflow.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

// KafkaPublisher implements Publisher on a synchronous Kafka producer.
type KafkaPublisher struct {
	sync   sarama.SyncProducer
	topic  string
	logger *zap.Logger
}

// NewKafkaPublisher creates an idempotent sync producer for the booking topic.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1

	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{sync: sync, topic: topic, logger: logger}, nil
}

// Publish sends the event keyed by booking id so per-booking ordering holds.
func (p *KafkaPublisher) Publish(ctx context.Context, event BookingEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.BookingID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	}
	_, _, err = p.sync.SendMessage(msg)
	if err != nil {
		p.logger.Warn("failed to publish booking event",
			zap.String("type", event.Type), zap.String("bookingId", event.BookingID), zap.Error(err))
	}
	return err
}

func (p *KafkaPublisher) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

// NopPublisher drops events; used when Kafka is not configured and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event BookingEvent) error { return nil }
func (NopPublisher) Close() error                                          { return nil }
