package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
)

type addOptions struct {
	Name      string
	Price     string
	Vendor    string
	Modifiers []string
}

func newAddCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add <item-id>",
		Short: "Add one unit of a menu item",
		Long: `Add one unit of a menu item to the cart. Adding an item from another
vendor replaces the cart. Adding an item already in the cart increments it
and keeps the modifiers chosen the first time.`,
		Example: `  cartctl add paneer-tikka --name "Paneer Tikka" --price 249 --vendor 12 -m extra-cheese:"Extra cheese":30`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := decimal.NewFromString(opts.Price)
			if err != nil {
				return usageError(fmt.Errorf("invalid price %q: %w", opts.Price, err))
			}
			mods, err := parseModifiers(opts.Modifiers)
			if err != nil {
				return usageError(err)
			}
			if strings.TrimSpace(opts.Vendor) == "" {
				return usageError(fmt.Errorf("--vendor is required"))
			}

			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			item := domain.MenuItemRef{ID: args[0], Name: opts.Name, Price: price}
			if err := s.cart.AddItem(cmd.Context(), item, mods, opts.Vendor); err != nil {
				return fmt.Errorf("failed to add item: %w", err)
			}

			return printer{rootOpts.Format, cmd.OutOrStdout()}.cart(newCartView(rootOpts.Session, s.cart))
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "item name")
	cmd.Flags().StringVar(&opts.Price, "price", "0", "unit price")
	cmd.Flags().StringVar(&opts.Vendor, "vendor", "", "vendor (restaurant) id, required")
	cmd.Flags().StringArrayVarP(&opts.Modifiers, "modifier", "m", nil, "modifier as id[:name[:price]], repeatable")

	return cmd
}

func newRemoveCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.cart.RemoveItem(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to remove item: %w", err)
			}

			return printer{rootOpts.Format, cmd.OutOrStdout()}.cart(newCartView(rootOpts.Session, s.cart))
		},
	}
}

func newSetQuantityCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-qty <item-id> <quantity>",
		Short: "Set the quantity of a line; zero removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return usageError(fmt.Errorf("invalid quantity %q", args[1]))
			}

			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.cart.UpdateQuantity(cmd.Context(), args[0], qty); err != nil {
				return fmt.Errorf("failed to update quantity: %w", err)
			}

			return printer{rootOpts.Format, cmd.OutOrStdout()}.cart(newCartView(rootOpts.Session, s.cart))
		},
	}
}

func newShowCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			return printer{rootOpts.Format, cmd.OutOrStdout()}.cart(newCartView(rootOpts.Session, s.cart))
		},
	}
}

func newClearCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.cart.ClearCart(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear cart: %w", err)
			}

			return printer{rootOpts.Format, cmd.OutOrStdout()}.cart(newCartView(rootOpts.Session, s.cart))
		},
	}
}

// parseModifiers reads id[:name[:price]] flag values.
func parseModifiers(values []string) ([]domain.Modifier, error) {
	mods := make([]domain.Modifier, 0, len(values))
	for _, v := range values {
		parts := strings.SplitN(v, ":", 3)
		m := domain.Modifier{ID: strings.TrimSpace(parts[0]), IsAvailable: true}
		if m.ID == "" {
			return nil, fmt.Errorf("invalid modifier %q: id is required", v)
		}
		if len(parts) > 1 {
			m.Name = parts[1]
		}
		if len(parts) > 2 {
			price, err := decimal.NewFromString(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid modifier %q: %w", v, err)
			}
			m.Price = price
		}
		mods = append(mods, m)
	}
	return mods, nil
}
