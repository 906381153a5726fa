package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"sales-inventory/app/domain"

	"github.com/nats-io/nats.go/jetstream"
)

// jsPublisher is the subset of jetstream.JetStream used here.
type jsPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type stockBroker struct {
	js      jsPublisher
	subject string
}

// NewStockBrokerPublisher publishes stock levels to "<stream>.available".
func NewStockBrokerPublisher(js jsPublisher, streamName string) domain.StockPublisher {
	return &stockBroker{
		js:      js,
		subject: strings.ToLower(streamName) + ".available",
	}
}

func (s *stockBroker) PublishStockAvailable(ctx context.Context, data domain.StockMessage) error {
	msg, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "[stockBroker] PublishStockAvailable", "json.Marshal", err)
		return err
	}

	if _, err = s.js.Publish(ctx, s.subject, msg); err != nil {
		slog.ErrorContext(ctx, "[stockBroker] PublishStockAvailable", "Publish", err)
		return err
	}

	slog.InfoContext(ctx, "[stockBroker] PublishStockAvailable", "subject", s.subject, "productID", data.ProductID, "available", data.Available)
	return nil
}

type noopStockBroker struct{}

// NewNoopStockPublisher is used when NATS is not configured.
func NewNoopStockPublisher() domain.StockPublisher {
	return noopStockBroker{}
}

func (noopStockBroker) PublishStockAvailable(context.Context, domain.StockMessage) error {
	return nil
}
