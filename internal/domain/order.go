package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubmissionState string

const (
	SubmissionDraft                    SubmissionState = "DRAFT"
	SubmissionSubmitting               SubmissionState = "SUBMITTING"
	SubmissionSubmitted                SubmissionState = "SUBMITTED"
	SubmissionRejected                 SubmissionState = "REJECTED"
	SubmissionPaymentPending           SubmissionState = "PAYMENT_PENDING"
	SubmissionPaymentConfirmed         SubmissionState = "PAYMENT_CONFIRMED"
	SubmissionPaymentFailedRecoverable SubmissionState = "PAYMENT_FAILED_RECOVERABLE"
)

// OrderSubmission tracks a single checkout attempt. It lives only as long
// as the attempt; the durable order is server side and referenced by OrderID.
type OrderSubmission struct {
	AttemptID      string          `json:"attempt_id"`
	IdempotencyKey string          `json:"-"`
	State          SubmissionState `json:"state"`
	VendorID       string          `json:"vendor_id,omitempty"`
	OrderID        string          `json:"order_id,omitempty"`
	PaymentIntent  string          `json:"payment_intent_id,omitempty"`
	Error          string          `json:"error,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Transition moves the submission to state and stamps the time.
func (s *OrderSubmission) Transition(state SubmissionState) {
	s.State = state
	s.UpdatedAt = time.Now()
}

const RouteOrderDetail = "order_detail"

// Navigation is where the client goes after checkout terminates.
type Navigation struct {
	Route          string `json:"route"`
	OrderID        string `json:"order_id"`
	Placed         bool   `json:"placed,omitempty"`
	PaymentPending bool   `json:"payment_pending,omitempty"`
}

// OrderItemModifier is a modifier as sent in an order request.
type OrderItemModifier struct {
	ModifierID string          `json:"modifier_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
}

// OrderItem is a cart line as sent in an order request.
type OrderItem struct {
	MenuItemID        string              `json:"menu_item_id"`
	Quantity          int                 `json:"quantity"`
	SelectedModifiers []OrderItemModifier `json:"selected_modifiers"`
}

const OrderTypeDelivery = "DELIVERY"

// OrderRequest is the order creation payload.
type OrderRequest struct {
	VendorID            string          `json:"vendor_id"`
	DeliveryAddressID   string          `json:"delivery_address_id"`
	OrderType           string          `json:"order_type"`
	Items               []OrderItem     `json:"items"`
	TipAmount           decimal.Decimal `json:"tip_amount"`
	ContactlessDelivery bool            `json:"contactless_delivery"`
}

// OrderResponse is the subset of the created order the client relies on.
type OrderResponse struct {
	ID          string          `json:"id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// PaymentIntentRequest asks the backend to create a payment intent.
type PaymentIntentRequest struct {
	OrderID        string          `json:"order_id"`
	PaymentMethod  string          `json:"payment_method"`
	Amount         decimal.Decimal `json:"amount"`
	CardID         string          `json:"card_id,omitempty"`
	CardData       *CardData       `json:"card_data,omitempty"`
	UPIID          string          `json:"upi_id,omitempty"`
	WalletProvider string          `json:"wallet_provider,omitempty"`
}

type PaymentIntentResponse struct {
	ID string `json:"id"`
}

// PaymentConfirmRequest confirms a previously created intent.
type PaymentConfirmRequest struct {
	OrderID         string `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	PaymentMethod   string `json:"payment_method"`
	CardID          string `json:"card_id,omitempty"`
	UPIID           string `json:"upi_id,omitempty"`
	WalletProvider  string `json:"wallet_provider,omitempty"`
}

type PaymentConfirmResponse struct {
	Status string `json:"status"`
}
