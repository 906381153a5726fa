package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
)

const OrderConfirmedQueue = "sales.order_confirmed"

// OrderConfirmed is emitted by sales after an order is persisted. The JSON
// keys are shared with other producers of the queue and must not change.
type OrderConfirmed struct {
	OrderID     uuid.UUID `json:"OrderId"`
	ProductID   uuid.UUID `json:"ProductId"`
	Quantity    int       `json:"Quantity"`
	ConfirmedAt time.Time `json:"ConfirmedAtUtc"`
}

func NewOrderConfirmed(orderID, productID uuid.UUID, quantity int, at time.Time) OrderConfirmed {
	return OrderConfirmed{
		OrderID:     orderID,
		ProductID:   productID,
		Quantity:    quantity,
		ConfirmedAt: at.UTC(),
	}
}

func (e OrderConfirmed) Validate() error {
	switch {
	case e.OrderID.IsNil():
		return fmt.Errorf("%w: missing order id", ErrMalformedEvent)
	case e.ProductID.IsNil():
		return fmt.Errorf("%w: missing product id", ErrMalformedEvent)
	case e.Quantity < 1:
		return fmt.Errorf("%w: quantity %d", ErrMalformedEvent, e.Quantity)
	}
	return nil
}

// DecodeOrderConfirmed parses a delivery body. Every failure wraps
// ErrMalformedEvent.
func DecodeOrderConfirmed(body []byte) (OrderConfirmed, error) {
	var event OrderConfirmed
	if len(body) == 0 {
		return event, fmt.Errorf("%w: empty body", ErrMalformedEvent)
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := event.Validate(); err != nil {
		return event, err
	}
	return event, nil
}

// DeliveryOutcome is how a consumed message must be settled with the broker.
type DeliveryOutcome int

const (
	OutcomeAck DeliveryOutcome = iota
	// OutcomeReject discards the message without requeue. It only reaches a
	// dead-letter queue when one is configured.
	OutcomeReject
)

func (o DeliveryOutcome) String() string {
	switch o {
	case OutcomeAck:
		return "ack"
	case OutcomeReject:
		return "reject"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}
