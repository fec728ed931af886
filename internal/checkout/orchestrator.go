// Package checkout sequences a checkout attempt: form validation, order
// creation and payment, ending in a navigation hand-off.
package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/backend"
	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/metrics"
	"github.com/vikram583135/platepal2.o-sub000/internal/payment"
	"github.com/vikram583135/platepal2.o-sub000/internal/retry"
)

// Cart is the cart a checkout reads and finally clears.
type Cart interface {
	LoadingCart
	ValidItems() []domain.CartLineItem
	VendorID() string
	ClearCart(ctx context.Context) error
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (*domain.OrderResponse, error)
}

type PaymentRunner interface {
	Run(ctx context.Context, order payment.Order, sel domain.PaymentSelection) payment.Result
}

// Form holds the checkout selections.
type Form struct {
	AddressID           string                  `json:"address_id"`
	Tip                 decimal.Decimal         `json:"tip"`
	Payment             domain.PaymentSelection `json:"payment"`
	ContactlessDelivery bool                    `json:"contactless_delivery"`
}

// Outcome is the terminal result of a submission that reached the backend.
type Outcome struct {
	Submission domain.OrderSubmission `json:"submission"`
	Navigation domain.Navigation      `json:"navigation"`
	Payment    *payment.Result        `json:"payment,omitempty"`
}

type Orchestrator struct {
	mu         sync.Mutex
	form       Form
	submission *domain.OrderSubmission

	inFlight atomic.Bool

	cart      Cart
	orders    OrderCreator
	payments  PaymentRunner
	hydration retry.Policy
	logger    *zap.SugaredLogger
}

func NewOrchestrator(cart Cart, orders OrderCreator, payments PaymentRunner, logger *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		cart:      cart,
		orders:    orders,
		payments:  payments,
		hydration: retry.HydrationPolicy,
		logger:    logger,
	}
}

// InFlight reports whether HandleSubmit is running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// WithHydrationPolicy replaces the hydration gate policy.
func (o *Orchestrator) WithHydrationPolicy(p retry.Policy) *Orchestrator {
	o.hydration = p
	return o
}

func (o *Orchestrator) SetAddress(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.AddressID = id
}

func (o *Orchestrator) SetTip(tip decimal.Decimal) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.Tip = tip
}

func (o *Orchestrator) SetPayment(sel domain.PaymentSelection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.Payment = sel
}

func (o *Orchestrator) SetContactless(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.ContactlessDelivery = v
}

// ApplyForm replaces every selection at once.
func (o *Orchestrator) ApplyForm(f Form) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form = f
}

func (o *Orchestrator) Form() Form {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.form
}

// Submission returns the latest attempt, if any.
func (o *Orchestrator) Submission() (domain.OrderSubmission, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.submission == nil {
		return domain.OrderSubmission{}, false
	}
	return *o.submission, true
}

// ValidateForm checks the current selections against the cart. An empty
// result means the form can be submitted.
func (o *Orchestrator) ValidateForm() ValidationErrors {
	return validate(o.Form(), o.cart.ItemCount(), o.cart.VendorID())
}

// AwaitCart runs the hydration gate.
func (o *Orchestrator) AwaitCart(ctx context.Context) bool {
	return WaitForHydration(ctx, o.cart, o.hydration)
}

// HandleSubmit runs one checkout attempt. The attempt is not tied to ctx's
// cancellation: once started it runs to a terminal state.
func (o *Orchestrator) HandleSubmit(ctx context.Context) (*Outcome, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		metrics.RecordSubmission("in_flight")
		return nil, ErrSubmissionInFlight
	}
	defer o.inFlight.Store(false)

	ctx = context.WithoutCancel(ctx)

	if !o.AwaitCart(ctx) {
		o.logger.Debugw("cart not hydrated, using current state")
	}

	form := o.Form()
	if errs := validate(form, o.cart.ItemCount(), o.cart.VendorID()); len(errs) > 0 {
		if errs.Corrupted() {
			o.logger.Warnw("checkout blocked by corrupted cart session", "fields", errs)
			metrics.RecordSubmission("corrupted")
		} else {
			metrics.RecordSubmission("invalid")
		}
		return nil, &ValidationError{Fields: errs}
	}

	items := o.cart.ValidItems()
	if len(items) == 0 {
		metrics.RecordSubmission("no_items")
		return nil, ErrNoValidItems
	}
	vendorID := o.cart.VendorID()

	sub := o.begin(vendorID)
	req := BuildOrderRequest(form, vendorID, items)

	o.logger.Infow("submitting order",
		"attempt_id", sub.AttemptID, "vendor_id", vendorID, "items", len(items), "payment_method", form.Payment.Method)

	order, err := o.orders.CreateOrder(ctx, req, sub.IdempotencyKey)
	if err != nil {
		msg := backend.GenericOrderError
		if apiErr, ok := backend.AsAPIError(err); ok {
			msg = backend.ErrorMessage(apiErr.Body)
		}
		o.update(func(s *domain.OrderSubmission) {
			s.Error = msg
			s.Transition(domain.SubmissionRejected)
		})
		o.logger.Errorw("failed to create order", "attempt_id", sub.AttemptID, "error", err)
		metrics.RecordSubmission("rejected")
		return nil, &SubmissionError{Message: msg, Err: err}
	}

	o.update(func(s *domain.OrderSubmission) {
		s.OrderID = order.ID
		s.Transition(domain.SubmissionSubmitted)
	})
	o.logger.Infow("order created", "attempt_id", sub.AttemptID, "order_id", order.ID)

	nav := domain.Navigation{Route: domain.RouteOrderDetail, OrderID: order.ID}

	if form.Payment.Method == domain.PaymentCash {
		o.clearCart(ctx, order.ID)
		nav.Placed = true
		metrics.RecordSubmission("placed")
		return &Outcome{Submission: o.current(), Navigation: nav}, nil
	}

	res := o.payments.Run(ctx, payment.Order{ID: order.ID, Amount: paymentAmount(order, items, form.Tip)}, form.Payment)
	o.clearCart(ctx, order.ID)

	state, outcome := domain.SubmissionPaymentConfirmed, "payment_confirmed"
	switch {
	case res.State == domain.IntentConfirmed:
		nav.Placed = true
	case res.Pending():
		state, outcome = domain.SubmissionPaymentPending, "payment_pending"
		nav.PaymentPending = true
	default:
		state, outcome = domain.SubmissionPaymentFailedRecoverable, "payment_failed"
		nav.PaymentPending = true
	}

	o.update(func(s *domain.OrderSubmission) {
		s.PaymentIntent = res.IntentID
		if res.Err != nil {
			s.Error = res.Err.Error()
		}
		s.Transition(state)
	})
	metrics.RecordSubmission(outcome)

	return &Outcome{Submission: o.current(), Navigation: nav, Payment: &res}, nil
}

func (o *Orchestrator) begin(vendorID string) domain.OrderSubmission {
	now := time.Now()
	sub := &domain.OrderSubmission{
		AttemptID:      uuid.NewString(),
		IdempotencyKey: uuid.NewString(),
		VendorID:       vendorID,
		State:          domain.SubmissionDraft,
		StartedAt:      now,
		UpdatedAt:      now,
	}
	sub.Transition(domain.SubmissionSubmitting)

	o.mu.Lock()
	o.submission = sub
	o.mu.Unlock()
	return *sub
}

func (o *Orchestrator) update(fn func(s *domain.OrderSubmission)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(o.submission)
}

func (o *Orchestrator) current() domain.OrderSubmission {
	o.mu.Lock()
	defer o.mu.Unlock()
	return *o.submission
}

// clearCart empties the cart once the order exists server side. A failure
// here does not change the outcome.
func (o *Orchestrator) clearCart(ctx context.Context, orderID string) {
	if err := o.cart.ClearCart(ctx); err != nil {
		o.logger.Errorw("failed to clear cart after order", "order_id", orderID, "error", err)
	}
}
