package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
)

type fakeGateway struct {
	intentErr  error
	confirmErr error
	status     string

	intents  []domain.PaymentIntentRequest
	confirms []domain.PaymentConfirmRequest
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, req domain.PaymentIntentRequest) (*domain.PaymentIntentResponse, error) {
	g.intents = append(g.intents, req)
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	return &domain.PaymentIntentResponse{ID: "pi_1"}, nil
}

func (g *fakeGateway) ConfirmPayment(_ context.Context, req domain.PaymentConfirmRequest) (*domain.PaymentConfirmResponse, error) {
	g.confirms = append(g.confirms, req)
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	return &domain.PaymentConfirmResponse{Status: g.status}, nil
}

var order = Order{ID: "o1", Amount: decimal.NewFromInt(520)}

func TestRun_Confirmed(t *testing.T) {
	g := &fakeGateway{status: domain.PaymentStatusSucceeded}
	s := NewSequencer(g, zap.NewNop().Sugar())

	res := s.Run(context.Background(), order, domain.PaymentSelection{Method: domain.PaymentUPI, UPIHandle: "me@bank"})

	assert.Equal(t, domain.IntentConfirmed, res.State)
	assert.Empty(t, res.FailedAt)
	assert.Equal(t, "pi_1", res.IntentID)
	assert.NoError(t, res.Err)
	require.Len(t, g.intents, 1)
	assert.Equal(t, "upi", g.intents[0].PaymentMethod)
	assert.Equal(t, "me@bank", g.intents[0].UPIID)
	assert.True(t, g.intents[0].Amount.Equal(order.Amount))
	require.Len(t, g.confirms, 1)
	assert.Equal(t, "pi_1", g.confirms[0].PaymentIntentID)
	assert.Equal(t, "me@bank", g.confirms[0].UPIID)
}

func TestRun_CardFields(t *testing.T) {
	card := &domain.CardData{Number: "4111", HolderName: "A", ExpiryMonth: "01", ExpiryYear: "30", CVV: "123"}

	t.Run("saved card", func(t *testing.T) {
		g := &fakeGateway{status: domain.PaymentStatusSucceeded}
		NewSequencer(g, zap.NewNop().Sugar()).Run(context.Background(), order,
			domain.PaymentSelection{Method: domain.PaymentCard, SavedCardID: "card_1", Card: card})

		assert.Equal(t, "card_1", g.intents[0].CardID)
		assert.Nil(t, g.intents[0].CardData)
		assert.Equal(t, "card_1", g.confirms[0].CardID)
	})

	t.Run("raw card", func(t *testing.T) {
		g := &fakeGateway{status: domain.PaymentStatusSucceeded}
		NewSequencer(g, zap.NewNop().Sugar()).Run(context.Background(), order,
			domain.PaymentSelection{Method: domain.PaymentCard, Card: card})

		assert.Equal(t, card, g.intents[0].CardData)
		assert.Empty(t, g.confirms[0].CardID)
	})
}

func TestRun_IntentFailure(t *testing.T) {
	g := &fakeGateway{intentErr: errors.New("connection reset")}
	res := NewSequencer(g, zap.NewNop().Sugar()).Run(context.Background(), order, domain.PaymentSelection{Method: domain.PaymentCard, SavedCardID: "c"})

	assert.Equal(t, domain.IntentFailed, res.State)
	assert.Equal(t, domain.IntentPending, res.FailedAt)
	assert.Empty(t, res.IntentID)
	assert.Error(t, res.Err)
	assert.False(t, res.Pending())
	assert.Empty(t, g.confirms)
}

func TestRun_ConfirmFailure(t *testing.T) {
	g := &fakeGateway{confirmErr: errors.New("gateway timeout")}
	res := NewSequencer(g, zap.NewNop().Sugar()).Run(context.Background(), order, domain.PaymentSelection{Method: domain.PaymentWallet, WalletProvider: "paytm"})

	assert.Equal(t, domain.IntentFailed, res.State)
	assert.Equal(t, domain.IntentConfirm, res.FailedAt)
	assert.Equal(t, "pi_1", res.IntentID)
	assert.Equal(t, "paytm", g.confirms[0].WalletProvider)
}

func TestRun_Statuses(t *testing.T) {
	for _, status := range []string{domain.PaymentStatusFailed, domain.PaymentStatusPending} {
		t.Run(status, func(t *testing.T) {
			g := &fakeGateway{status: status}
			res := NewSequencer(g, zap.NewNop().Sugar()).Run(context.Background(), order, domain.PaymentSelection{Method: domain.PaymentNetBanking})

			assert.Equal(t, domain.IntentFailed, res.State)
			assert.Equal(t, domain.IntentConfirm, res.FailedAt)
			assert.Equal(t, status, res.Status)
			assert.Equal(t, status == domain.PaymentStatusPending, res.Pending())
		})
	}
}

func TestRun_CashSkipsGateway(t *testing.T) {
	g := &fakeGateway{}
	res := NewSequencer(g, zap.NewNop().Sugar()).Run(context.Background(), order, domain.PaymentSelection{Method: domain.PaymentCash})

	assert.Equal(t, domain.IntentSkipped, res.State)
	assert.Empty(t, g.intents)
}
