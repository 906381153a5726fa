package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
)

func TestDecodeOrderConfirmedWireFormat(t *testing.T) {
	body := []byte(`{"OrderId":"6f1b8a52-1c7e-4c8b-9a43-2f1a9c3b7d10","ProductId":"0c9d6b1e-5f2a-4e37-8a11-7b6c5d4e3f21","Quantity":3,"ConfirmedAtUtc":"2025-01-02T03:04:05.123Z"}`)

	event, err := DecodeOrderConfirmed(body)
	if err != nil {
		t.Fatalf("DecodeOrderConfirmed: %v", err)
	}
	if event.ProductID.String() != "0c9d6b1e-5f2a-4e37-8a11-7b6c5d4e3f21" || event.Quantity != 3 {
		t.Fatalf("event = %+v", event)
	}
	if !event.ConfirmedAt.Equal(time.Date(2025, 1, 2, 3, 4, 5, 123e6, time.UTC)) {
		t.Fatalf("ConfirmedAt = %v", event.ConfirmedAt)
	}
}

func TestDecodeOrderConfirmedMalformed(t *testing.T) {
	bodies := map[string]string{
		"empty":         ``,
		"not json":      `hello`,
		"null":          `null`,
		"bad uuid":      `{"OrderId":"x","ProductId":"0c9d6b1e-5f2a-4e37-8a11-7b6c5d4e3f21","Quantity":1}`,
		"no product":    `{"OrderId":"6f1b8a52-1c7e-4c8b-9a43-2f1a9c3b7d10","Quantity":1}`,
		"zero quantity": `{"OrderId":"6f1b8a52-1c7e-4c8b-9a43-2f1a9c3b7d10","ProductId":"0c9d6b1e-5f2a-4e37-8a11-7b6c5d4e3f21","Quantity":0}`,
	}
	for name, body := range bodies {
		if _, err := DecodeOrderConfirmed([]byte(body)); !errors.Is(err, ErrMalformedEvent) {
			t.Fatalf("%s: err = %v, want ErrMalformedEvent", name, err)
		}
	}
}

func TestNewOrderConfirmedStampsUTC(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	at := time.Date(2025, 5, 1, 9, 0, 0, 0, loc)

	event := NewOrderConfirmed(uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), 1, at)
	if event.ConfirmedAt.Location() != time.UTC || !event.ConfirmedAt.Equal(at) {
		t.Fatalf("ConfirmedAt = %v", event.ConfirmedAt)
	}
}
