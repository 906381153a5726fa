package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sales-inventory/app/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/nats-io/nats.go/jetstream"
)

type fakeJetStream struct {
	subject string
	payload []byte
	err     error
}

func (f *fakeJetStream) Publish(_ context.Context, subject string, payload []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.subject, f.payload = subject, payload
	if f.err != nil {
		return nil, f.err
	}
	return &jetstream.PubAck{Stream: "STOCK", Sequence: 1}, nil
}

func TestPublishStockAvailable(t *testing.T) {
	js := &fakeJetStream{}
	p := NewStockBrokerPublisher(js, "STOCK")

	id := uuid.Must(uuid.NewV4())
	if err := p.PublishStockAvailable(context.Background(), domain.StockMessage{ProductID: id, Available: 7}); err != nil {
		t.Fatalf("PublishStockAvailable: %v", err)
	}
	if js.subject != "stock.available" {
		t.Fatalf("subject = %q", js.subject)
	}

	var msg domain.StockMessage
	if err := json.Unmarshal(js.payload, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.ProductID != id || msg.Available != 7 {
		t.Fatalf("message = %+v", msg)
	}
}

func TestPublishStockAvailableError(t *testing.T) {
	js := &fakeJetStream{err: errors.New("no responders")}
	p := NewStockBrokerPublisher(js, "stock")

	if err := p.PublishStockAvailable(context.Background(), domain.StockMessage{}); err == nil {
		t.Fatal("expected publish error")
	}
}
