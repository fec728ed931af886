package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vikram583135/platepal2.o-sub000/internal/cart"
	"github.com/vikram583135/platepal2.o-sub000/internal/checkout"
	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
)

// Exit codes.
const (
	exitSuccess      = 0
	exitFailure      = 1 // checkout rejected or invalid
	exitCommandError = 2 // bad flags, unreadable database
)

// exitError carries the process exit code for an error.
type exitError struct {
	Code int
	Err  error
}

func (e *exitError) Error() string {
	return e.Err.Error()
}

func (e *exitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &exitError{Code: exitCommandError, Err: err}
}

func commandError(err error) error {
	return &exitError{Code: exitCommandError, Err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitFailure
}

type cartView struct {
	Session   string                `json:"session"`
	VendorID  string                `json:"vendor_id,omitempty"`
	Items     []domain.CartLineItem `json:"items"`
	ItemCount int                   `json:"item_count"`
	Total     decimal.Decimal       `json:"total"`
}

func newCartView(sessionID string, s *cart.Store) cartView {
	return cartView{
		Session:   sessionID,
		VendorID:  s.VendorID(),
		Items:     s.ValidItems(),
		ItemCount: s.ItemCount(),
		Total:     s.Total(),
	}
}

// printer writes command results as text or JSON.
type printer struct {
	format string
	w      io.Writer
}

func (p printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p printer) cart(v cartView) error {
	if p.format == "json" {
		return p.json(v)
	}

	if len(v.Items) == 0 {
		_, err := fmt.Fprintln(p.w, "cart is empty")
		return err
	}

	fmt.Fprintf(p.w, "vendor %s\n", v.VendorID)
	for _, li := range v.Items {
		fmt.Fprintf(p.w, "  %-12s %-24s x%-3d %10s\n", li.MenuItem.ID, li.MenuItem.Name, li.Quantity, li.LineTotal().StringFixed(2))
		for _, m := range li.SelectedModifiers {
			fmt.Fprintf(p.w, "      + %s %s\n", m.Name, m.Price.StringFixed(2))
		}
	}
	_, err := fmt.Fprintf(p.w, "%d item(s), total %s\n", v.ItemCount, v.Total.StringFixed(2))
	return err
}

func (p printer) outcome(o *checkout.Outcome) error {
	if p.format == "json" {
		return p.json(o)
	}

	fmt.Fprintf(p.w, "order %s %s\n", o.Navigation.OrderID, strings.ToLower(string(o.Submission.State)))
	if o.Navigation.PaymentPending {
		fmt.Fprintln(p.w, "payment is pending, complete it from the order page")
	}
	return nil
}

func (p printer) validation(errs checkout.ValidationErrors) error {
	if p.format == "json" {
		return p.json(map[string]any{"valid": len(errs) == 0, "errors": errs})
	}

	if len(errs) == 0 {
		_, err := fmt.Fprintln(p.w, "checkout form is valid")
		return err
	}
	for _, field := range []string{checkout.FieldAddress, checkout.FieldPayment, checkout.FieldTip, checkout.FieldCart, checkout.FieldRestaurant} {
		if msg, ok := errs[field]; ok {
			fmt.Fprintf(p.w, "%s: %s\n", field, msg)
		}
	}
	return nil
}
