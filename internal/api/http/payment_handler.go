package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/service"
)

type PaymentHandler struct {
	orders   service.OrderService
	payments service.PaymentService
	errs     errorResponder
}

func NewPaymentHandler(orders service.OrderService, payments service.PaymentService, errs errorResponder) *PaymentHandler {
	return &PaymentHandler{orders: orders, payments: payments, errs: errs}
}

// flexibleID accepts the application id as a JSON number or a numeric string.
type flexibleID int64

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexibleID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexibleID(n)
	return nil
}

type createOrderRequest struct {
	ApplicationID flexibleID `json:"applicationId"`
}

type verifyPaymentRequest struct {
	ApplicationID flexibleID `json:"applicationId"`
	OrderID       string     `json:"razorpay_order_id"`
	PaymentID     string     `json:"razorpay_payment_id"`
	Signature     string     `json:"razorpay_signature"`
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		h.errs.respond(w, r, badRequest(err))
		return
	}
	if req.ApplicationID <= 0 {
		h.errs.respond(w, r, domain.NewValidationError([]domain.FieldError{{Field: "applicationId", Message: "applicationId is required"}}))
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), int64(req.ApplicationID))
	if err != nil {
		h.errs.respond(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Order created", order)
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		h.errs.respond(w, r, badRequest(err))
		return
	}

	res, err := h.payments.VerifyPayment(r.Context(), service.VerifyPaymentInput{
		ApplicationID: int64(req.ApplicationID),
		OrderID:       req.OrderID,
		PaymentID:     req.PaymentID,
		Signature:     req.Signature,
	})
	if err != nil {
		h.errs.respond(w, r, err)
		return
	}

	message := "Payment verified successfully"
	if res.AlreadyPaid {
		message = "Payment already recorded"
	}
	respondOK(w, http.StatusOK, message, res)
}
