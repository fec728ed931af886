package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type PaymentMethod string

const (
	PaymentCard       PaymentMethod = "CARD"
	PaymentUPI        PaymentMethod = "UPI"
	PaymentWallet     PaymentMethod = "WALLET"
	PaymentNetBanking PaymentMethod = "NET_BANKING"
	PaymentCash       PaymentMethod = "CASH"
)

// ParsePaymentMethod accepts the method names the front ends send.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "card", "credit_card", "debit_card":
		return PaymentCard, nil
	case "upi":
		return PaymentUPI, nil
	case "wallet":
		return PaymentWallet, nil
	case "net_banking", "netbanking":
		return PaymentNetBanking, nil
	case "cash", "cod":
		return PaymentCash, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
}

// UnmarshalJSON accepts any spelling ParsePaymentMethod does. An empty
// string leaves the method unset.
func (m *PaymentMethod) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*m = ""
		return nil
	}
	pm, err := ParsePaymentMethod(s)
	if err != nil {
		return err
	}
	*m = pm
	return nil
}

// Wire returns the lower-case name the order/payment backend expects.
func (m PaymentMethod) Wire() string {
	return strings.ToLower(string(m))
}

// CardData holds raw card fields entered at checkout.
type CardData struct {
	Number      string `json:"number"`
	HolderName  string `json:"holder_name"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

// Complete reports whether every card field is filled in.
func (c *CardData) Complete() bool {
	if c == nil {
		return false
	}
	for _, f := range []string{c.Number, c.HolderName, c.ExpiryMonth, c.ExpiryYear, c.CVV} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// PaymentSelection is the payment method picked at checkout together with
// the fields that method requires.
type PaymentSelection struct {
	Method         PaymentMethod `json:"method"`
	SavedCardID    string        `json:"card_id,omitempty"`
	Card           *CardData     `json:"card_data,omitempty"`
	UPIHandle      string        `json:"upi_id,omitempty"`
	WalletProvider string        `json:"wallet_provider,omitempty"`
}

// MissingDetails describes what the selected method still needs, or ""
// when the selection is complete.
func (p PaymentSelection) MissingDetails() string {
	switch p.Method {
	case "":
		return "Please select a payment method"
	case PaymentCard:
		if strings.TrimSpace(p.SavedCardID) == "" && !p.Card.Complete() {
			return "Please select a saved card or enter complete card details"
		}
	case PaymentUPI:
		if strings.TrimSpace(p.UPIHandle) == "" {
			return "Please enter your UPI ID"
		}
	case PaymentWallet:
		if strings.TrimSpace(p.WalletProvider) == "" {
			return "Please select a wallet provider"
		}
	case PaymentNetBanking, PaymentCash:
	default:
		return "Unsupported payment method"
	}
	return ""
}

type PaymentIntentState string

const (
	IntentPending   PaymentIntentState = "INTENT_PENDING"
	IntentCreated   PaymentIntentState = "INTENT_CREATED"
	IntentConfirm   PaymentIntentState = "CONFIRMING"
	IntentConfirmed PaymentIntentState = "CONFIRMED"
	IntentFailed    PaymentIntentState = "FAILED"
	IntentSkipped   PaymentIntentState = "SKIPPED"
)

// Payment confirmation statuses returned by the backend.
const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusPending   = "pending"
)
