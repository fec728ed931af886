// Package payment runs the intent/confirm protocol for an order that has
// already been created.
package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/metrics"
)

// Gateway is the part of the backend the sequencer talks to.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req domain.PaymentIntentRequest) (*domain.PaymentIntentResponse, error)
	ConfirmPayment(ctx context.Context, req domain.PaymentConfirmRequest) (*domain.PaymentConfirmResponse, error)
}

// Order is what the sequencer needs to know about the created order.
type Order struct {
	ID     string
	Amount decimal.Decimal
}

// Result is the terminal state of a run. Failures are reported here and
// never as an error: the order exists whatever happens to the payment.
type Result struct {
	State domain.PaymentIntentState `json:"state"`
	// FailedAt is the step a failed run stopped in: IntentPending when the
	// intent was never created, IntentConfirm when confirmation failed.
	FailedAt domain.PaymentIntentState `json:"failed_at,omitempty"`
	IntentID string                    `json:"payment_intent_id,omitempty"`
	Status   string                    `json:"status,omitempty"`
	Err      error                     `json:"-"`
}

// Pending reports a confirmation the gateway has not settled yet.
func (r Result) Pending() bool {
	return r.State == domain.IntentFailed && r.Status == domain.PaymentStatusPending
}

type Sequencer struct {
	gateway Gateway
	logger  *zap.SugaredLogger
}

func NewSequencer(gateway Gateway, logger *zap.SugaredLogger) *Sequencer {
	return &Sequencer{gateway: gateway, logger: logger}
}

// Run creates and confirms a payment intent. Nothing is retried or rolled
// back. Cash orders are skipped without calling the gateway.
func (s *Sequencer) Run(ctx context.Context, order Order, sel domain.PaymentSelection) Result {
	res := s.run(ctx, order, sel)
	metrics.RecordPaymentResult(sel.Method.Wire(), string(res.State))
	return res
}

func (s *Sequencer) run(ctx context.Context, order Order, sel domain.PaymentSelection) Result {
	if sel.Method == domain.PaymentCash {
		return Result{State: domain.IntentSkipped}
	}

	s.logger.Infow("creating payment intent", "order_id", order.ID, "payment_method", sel.Method)

	intent, err := s.gateway.CreatePaymentIntent(ctx, intentRequest(order, sel))
	if err != nil {
		s.logger.Errorw("failed to create payment intent", "order_id", order.ID, "error", err)
		return Result{
			State:    domain.IntentFailed,
			FailedAt: domain.IntentPending,
			Err:      fmt.Errorf("failed to create payment intent: %w", err),
		}
	}
	s.logger.Infow("payment intent created", "order_id", order.ID, "payment_intent_id", intent.ID)

	confirm, err := s.gateway.ConfirmPayment(ctx, confirmRequest(order, intent.ID, sel))
	if err != nil {
		s.logger.Errorw("failed to confirm payment", "order_id", order.ID, "payment_intent_id", intent.ID, "error", err)
		return Result{
			State:    domain.IntentFailed,
			FailedAt: domain.IntentConfirm,
			IntentID: intent.ID,
			Err:      fmt.Errorf("failed to confirm payment: %w", err),
		}
	}

	if confirm.Status != domain.PaymentStatusSucceeded {
		s.logger.Warnw("payment not confirmed", "order_id", order.ID, "payment_intent_id", intent.ID, "status", confirm.Status)
		return Result{
			State:    domain.IntentFailed,
			FailedAt: domain.IntentConfirm,
			IntentID: intent.ID,
			Status:   confirm.Status,
			Err:      fmt.Errorf("payment confirmation returned status %q", confirm.Status),
		}
	}

	s.logger.Infow("payment confirmed", "order_id", order.ID, "payment_intent_id", intent.ID)
	return Result{State: domain.IntentConfirmed, IntentID: intent.ID, Status: confirm.Status}
}

func intentRequest(order Order, sel domain.PaymentSelection) domain.PaymentIntentRequest {
	req := domain.PaymentIntentRequest{
		OrderID:       order.ID,
		PaymentMethod: sel.Method.Wire(),
		Amount:        order.Amount,
	}

	switch sel.Method {
	case domain.PaymentCard:
		if sel.SavedCardID != "" {
			req.CardID = sel.SavedCardID
		} else {
			req.CardData = sel.Card
		}
	case domain.PaymentUPI:
		req.UPIID = sel.UPIHandle
	case domain.PaymentWallet:
		req.WalletProvider = sel.WalletProvider
	}
	return req
}

// confirmRequest echoes the method specific fields of the intent. Raw card
// data is not sent twice.
func confirmRequest(order Order, intentID string, sel domain.PaymentSelection) domain.PaymentConfirmRequest {
	req := domain.PaymentConfirmRequest{
		OrderID:         order.ID,
		PaymentIntentID: intentID,
		PaymentMethod:   sel.Method.Wire(),
	}

	switch sel.Method {
	case domain.PaymentCard:
		req.CardID = sel.SavedCardID
	case domain.PaymentUPI:
		req.UPIID = sel.UPIHandle
	case domain.PaymentWallet:
		req.WalletProvider = sel.WalletProvider
	}
	return req
}
