package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vikram583135/platepal2.o-sub000/internal/backend"
	"github.com/vikram583135/platepal2.o-sub000/internal/checkout"
	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/env"
	"github.com/vikram583135/platepal2.o-sub000/internal/payment"
)

type checkoutOptions struct {
	BackendURL     string
	Token          string
	Timeout        time.Duration
	Address        string
	Tip            string
	Method         string
	CardID         string
	Card           domain.CardData
	UPIID          string
	WalletProvider string
	Contactless    bool
	DryRun         bool
}

func newCheckoutCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &checkoutOptions{}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Long: `Validate the checkout selections, create the order and run the payment.
The cart is cleared once the order exists, even when the payment is left
pending. With --dry-run only validation runs.`,
		Example: `  cartctl checkout --address addr-1 --method upi --upi me@bank --tip 20
  cartctl checkout --address addr-1 --method card --card-number 4111111111111111 \
    --card-holder "A Kumar" --card-expiry-month 12 --card-expiry-year 2030 --card-cvv 123`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := opts.form()
			if err != nil {
				return usageError(err)
			}

			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			client := backend.New(backend.Config{
				BaseURL: opts.BackendURL,
				Token:   opts.Token,
				Timeout: opts.Timeout,
			})
			o := checkout.NewOrchestrator(s.cart, client, payment.NewSequencer(client, s.logger), s.logger)
			o.ApplyForm(form)

			out := printer{rootOpts.Format, cmd.OutOrStdout()}

			if opts.DryRun {
				errs := o.ValidateForm()
				if err := out.validation(errs); err != nil {
					return err
				}
				if len(errs) > 0 {
					return &exitError{Code: exitFailure, Err: &checkout.ValidationError{Fields: errs}}
				}
				return nil
			}

			outcome, err := o.HandleSubmit(cmd.Context())
			if err != nil {
				var verr *checkout.ValidationError
				if errors.As(err, &verr) {
					_ = out.validation(verr.Fields)
				}
				return err
			}

			return out.outcome(outcome)
		},
	}

	cmd.Flags().StringVar(&opts.BackendURL, "backend-url", env.GetString("BACKEND_URL", "http://localhost:8000/api"), "order and payment API base URL")
	cmd.Flags().StringVar(&opts.Token, "token", env.GetString("BACKEND_TOKEN", ""), "bearer token for the backend")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", env.GetDuration("BACKEND_TIMEOUT", 15*time.Second), "backend request timeout")
	cmd.Flags().StringVar(&opts.Address, "address", "", "delivery address id")
	cmd.Flags().StringVar(&opts.Tip, "tip", "0", "tip amount, clamped to [0, 1000]")
	cmd.Flags().StringVar(&opts.Method, "method", "", "payment method (card|upi|wallet|net_banking|cash)")
	cmd.Flags().StringVar(&opts.CardID, "card-id", "", "saved card id")
	cmd.Flags().StringVar(&opts.Card.Number, "card-number", "", "card number, for a card that is not saved")
	cmd.Flags().StringVar(&opts.Card.HolderName, "card-holder", "", "card holder name")
	cmd.Flags().StringVar(&opts.Card.ExpiryMonth, "card-expiry-month", "", "card expiry month (MM)")
	cmd.Flags().StringVar(&opts.Card.ExpiryYear, "card-expiry-year", "", "card expiry year (YYYY)")
	cmd.Flags().StringVar(&opts.Card.CVV, "card-cvv", "", "card security code")
	cmd.Flags().StringVar(&opts.UPIID, "upi", "", "UPI id")
	cmd.Flags().StringVar(&opts.WalletProvider, "wallet", "", "wallet provider")
	cmd.Flags().BoolVar(&opts.Contactless, "contactless", false, "contactless delivery")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "validate only")

	return cmd
}

func (o *checkoutOptions) form() (checkout.Form, error) {
	tip, err := decimal.NewFromString(o.Tip)
	if err != nil {
		return checkout.Form{}, fmt.Errorf("invalid tip %q: %w", o.Tip, err)
	}

	var method domain.PaymentMethod
	if o.Method != "" {
		method, err = domain.ParsePaymentMethod(o.Method)
		if err != nil {
			return checkout.Form{}, err
		}
	}

	sel := domain.PaymentSelection{
		Method:         method,
		SavedCardID:    o.CardID,
		UPIHandle:      o.UPIID,
		WalletProvider: o.WalletProvider,
	}
	if o.Card != (domain.CardData{}) {
		card := o.Card
		sel.Card = &card
	}

	return checkout.Form{
		AddressID:           o.Address,
		Tip:                 tip,
		Payment:             sel,
		ContactlessDelivery: o.Contactless,
	}, nil
}

func newSessionCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new-session",
		Short: "Print a fresh session id",
		Long:  "Print a fresh session id for use with --session or CARTCTL_SESSION.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := uuid.NewString()
			if rootOpts.Format == "json" {
				return printer{rootOpts.Format, cmd.OutOrStdout()}.json(map[string]string{"session": id})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
}
