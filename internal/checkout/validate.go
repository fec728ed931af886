package checkout

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrSubmissionInFlight = errors.New("a checkout submission is already in progress")
	ErrNoValidItems       = errors.New("cart has no valid items")
	ErrCorruptedSession   = errors.New("cart session is corrupted")
)

// Validation error keys.
const (
	FieldAddress    = "address"
	FieldPayment    = "payment"
	FieldTip        = "tip"
	FieldCart       = "cart"
	FieldRestaurant = "restaurant"
)

var (
	MinTip = decimal.Zero
	MaxTip = decimal.NewFromInt(1000)
)

// ValidationErrors maps a form field to its message.
type ValidationErrors map[string]string

// Corrupted reports a cart with items but no vendor binding. The session
// has to be reset rather than corrected by the user.
func (v ValidationErrors) Corrupted() bool {
	_, ok := v[FieldRestaurant]
	return ok
}

// ValidationError is returned by HandleSubmit when the form is incomplete.
type ValidationError struct {
	Fields ValidationErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "checkout validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	if e.Fields.Corrupted() {
		return ErrCorruptedSession
	}
	return nil
}

// SubmissionError is a rejected order creation. Message is safe to show.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// TipInRange reports whether tip lies within [MinTip, MaxTip].
func TipInRange(tip decimal.Decimal) bool {
	return tip.GreaterThanOrEqual(MinTip) && tip.LessThanOrEqual(MaxTip)
}

// ClampTip forces tip into [MinTip, MaxTip].
func ClampTip(tip decimal.Decimal) decimal.Decimal {
	if tip.LessThan(MinTip) {
		return MinTip
	}
	if tip.GreaterThan(MaxTip) {
		return MaxTip
	}
	return tip
}

// validate checks the form against the cart state. It does no I/O.
func validate(f Form, itemCount int, vendorID string) ValidationErrors {
	errs := ValidationErrors{}

	if strings.TrimSpace(f.AddressID) == "" {
		errs[FieldAddress] = "Please select a delivery address"
	}
	if msg := f.Payment.MissingDetails(); msg != "" {
		errs[FieldPayment] = msg
	}
	if !TipInRange(f.Tip) {
		errs[FieldTip] = "Tip must be between 0 and 1000"
	}
	if itemCount == 0 {
		errs[FieldCart] = "Your cart is empty"
	} else if strings.TrimSpace(vendorID) == "" {
		errs[FieldRestaurant] = "Restaurant information is missing. Please clear your cart and add items again"
	}

	return errs
}
