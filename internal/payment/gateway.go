// Package payment talks to the payment gateway and verifies its callbacks.
package payment

import (
	"context"
	"errors"
)

const (
	PaymentCaptured   = "captured"
	PaymentAuthorized = "authorized"
	PaymentFailed     = "failed"
)

var ErrGatewayResponse = errors.New("unexpected gateway response")

type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

type Payment struct {
	ID       string
	OrderID  string
	Amount   int64
	Currency string
	Status   string
}

func (p Payment) Captured() bool {
	return p.Status == PaymentCaptured
}

// Gateway is the subset of the payment provider's API the service relies on.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	FetchOrderPayments(ctx context.Context, orderID string) ([]Payment, error)
	// KeyID is the public key handed to the browser checkout.
	KeyID() string
}
