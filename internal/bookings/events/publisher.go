// Package events announces saved bookings to downstream consumers.
package events

import (
	"context"
	"fmt"
	"path/filepath"

	"bookingsheet/pkg/config"
	"bookingsheet/pkg/kafka"
	"bookingsheet/pkg/logger"
	"bookingsheet/pkg/middleware"
	"bookingsheet/pkg/model"
)

const (
	EventTypeBookingSaved = "booking.saved"
	SchemaVersion         = "1"
)

type Publisher interface {
	// BookingSaved reports that booking was stored as row number row.
	BookingSaved(ctx context.Context, booking *model.Booking, row int) error
	Close() error
}

// BookingSavedEvent is the payload of a booking.saved message.
type BookingSavedEvent struct {
	Row     int            `json:"row"`
	Booking *model.Booking `json:"booking"`
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer messagePublisher
	key      string
	source   string
}

// NewKafkaPublisher publishes booking.saved events to cfg.Kafka.Topic. All
// events share the store file name as key so they land on one partition in
// save order.
func NewKafkaPublisher(cfg *config.Config, source string, log *logger.Logger) (Publisher, error) {
	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	producer.Use(kafka.LoggingProducerMiddleware(log, producer.Topic()))

	return newKafkaPublisher(producer, filepath.Base(cfg.StoreFile), source), nil
}

func newKafkaPublisher(producer messagePublisher, key, source string) *kafkaPublisher {
	return &kafkaPublisher{
		producer: producer,
		key:      key,
		source:   source,
	}
}

func (p *kafkaPublisher) BookingSaved(ctx context.Context, booking *model.Booking, row int) error {
	msg, err := kafka.NewMessage().
		WithKey(p.key).
		WithValue(BookingSavedEvent{Row: row, Booking: booking}).
		WithEventType(EventTypeBookingSaved).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("build %s event: %w", EventTypeBookingSaved, err)
	}
	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a Publisher that drops every event. It is used
// when no brokers are configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) BookingSaved(context.Context, *model.Booking, int) error { return nil }

func (noopPublisher) Close() error { return nil }
