package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	razorpay "github.com/razorpay/razorpay-go"

	"nfccard-backend/internal/logger"
)

// orderAPI is the slice of the Razorpay SDK's order resource we call.
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Payments(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayGateway struct {
	orders orderAPI
	keyID  string
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayGateway{orders: client.Order, keyID: keyID}
}

func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		notes := make(map[string]interface{}, len(req.Notes))
		for k, v := range req.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	logger.ExternalServiceCall("razorpay", "orders.create", "receipt", req.Receipt, "amount", req.Amount)
	body, err := g.orders.Create(data, nil)
	logger.ExternalServiceResult("razorpay", "orders.create", err, "receipt", req.Receipt)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	return parseOrder(body)
}

func (g *RazorpayGateway) FetchOrderPayments(ctx context.Context, orderID string) ([]Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.ExternalServiceCall("razorpay", "orders.payments", "orderID", orderID)
	body, err := g.orders.Payments(orderID, nil, nil)
	logger.ExternalServiceResult("razorpay", "orders.payments", err, "orderID", orderID)
	if err != nil {
		return nil, fmt.Errorf("razorpay fetch payments for %s: %w", orderID, err)
	}
	return parsePayments(body)
}

func parseOrder(body map[string]interface{}) (*Order, error) {
	id := stringField(body, "id")
	if id == "" {
		return nil, fmt.Errorf("%w: order id missing", ErrGatewayResponse)
	}
	amount, err := intField(body, "amount")
	if err != nil {
		return nil, err
	}
	return &Order{
		ID:       id,
		Amount:   amount,
		Currency: stringField(body, "currency"),
		Receipt:  stringField(body, "receipt"),
		Status:   stringField(body, "status"),
	}, nil
}

func parsePayments(body map[string]interface{}) ([]Payment, error) {
	raw, ok := body["items"]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: items is %T", ErrGatewayResponse, raw)
	}

	payments := make([]Payment, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: payment item is %T", ErrGatewayResponse, it)
		}
		amount, err := intField(m, "amount")
		if err != nil {
			return nil, err
		}
		payments = append(payments, Payment{
			ID:       stringField(m, "id"),
			OrderID:  stringField(m, "order_id"),
			Amount:   amount,
			Currency: stringField(m, "currency"),
			Status:   stringField(m, "status"),
		})
	}
	return payments, nil
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func intField(m map[string]interface{}, key string) (int64, error) {
	switch v := m[key].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %s is %T", ErrGatewayResponse, key, v)
	}
}
