package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"

	"github.com/vikram583135/platepal2.o-sub000/internal/cart"
	"github.com/vikram583135/platepal2.o-sub000/internal/checkout"
	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
)

// mutations wait this long for a fresh store to finish loading
const hydrationWait = 2 * time.Second

type CartResponse struct {
	Items     []domain.CartLineItem `json:"items"`
	VendorID  string                `json:"vendor_id,omitempty"`
	Total     decimal.Decimal       `json:"total"`
	ItemCount int                   `json:"item_count"`
	Hydrated  bool                  `json:"hydrated"`
	Persisted bool                  `json:"persisted"`
}

type MenuItemPayload struct {
	ID    string          `json:"id" validate:"required"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type AddItemRequest struct {
	MenuItem  MenuItemPayload   `json:"menu_item" validate:"required"`
	Modifiers []domain.Modifier `json:"modifiers"`
	VendorID  string            `json:"vendor_id" validate:"required"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func cartResponse(s *cart.Store, persisted bool) CartResponse {
	snap := s.Snapshot()
	return CartResponse{
		Items:     s.ValidItems(),
		VendorID:  snap.VendorID,
		Total:     s.Total(),
		ItemCount: s.ItemCount(),
		Hydrated:  s.Hydrated(),
		Persisted: persisted,
	}
}

// awaitStore waits for a store to finish rehydrating so that a mutation
// does not race the stored cart.
func awaitStore(ctx context.Context, s *cart.Store) {
	ctx, cancel := context.WithTimeout(ctx, hydrationWait)
	defer cancel()

	select {
	case <-s.HydrationDone():
	case <-ctx.Done():
	}
}

// writeCart answers a mutation. A failed save keeps the mutation, so the
// cart is returned with persisted=false.
func (app *application) writeCart(w http.ResponseWriter, r *http.Request, s *cart.Store, err error) {
	if err != nil {
		app.logger.Warnw("cart mutation not persisted", "session_id", sessionFromContext(r), "error", err)
	}
	if err := app.jsonResponse(w, http.StatusOK, cartResponse(s, err == nil)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getCartHandler godoc
//
//	@Summary		Get cart
//	@Description	Returns the session's cart after reconciliation
//	@Tags			cart
//	@Produce		json
//	@Param			X-Session-ID	header		string	true	"Session ID"
//	@Success		200				{object}	CartResponse
//	@Failure		400				{object}	map[string]string
//	@Router			/cart [get]
func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	s := app.cartFromRequest(r)
	checkout.WaitForHydration(r.Context(), s, app.config.hydration)

	if err := app.jsonResponse(w, http.StatusOK, cartResponse(s, true)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// addCartItemHandler godoc
//
//	@Summary		Add item to cart
//	@Description	Adds one unit of a menu item. An item from another vendor replaces the cart.
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string			true	"Session ID"
//	@Param			request			body		AddItemRequest	true	"Item to add"
//	@Success		200				{object}	CartResponse
//	@Failure		400				{object}	map[string]string
//	@Router			/cart/items [post]
func (app *application) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	s := app.cartFromRequest(r)
	awaitStore(r.Context(), s)

	item := domain.MenuItemRef{ID: req.MenuItem.ID, Name: req.MenuItem.Name, Price: req.MenuItem.Price}
	err := s.AddItem(r.Context(), item, req.Modifiers, req.VendorID)
	if errors.Is(err, cart.ErrInvalidItem) {
		app.badRequestResponse(w, r, err)
		return
	}

	app.writeCart(w, r, s, err)
}

// updateCartItemHandler godoc
//
//	@Summary		Set item quantity
//	@Description	Sets the quantity of a cart line. A quantity of zero or less removes it.
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string					true	"Session ID"
//	@Param			item_id			path		string					true	"Menu item ID"
//	@Param			request			body		UpdateQuantityRequest	true	"New quantity"
//	@Success		200				{object}	CartResponse
//	@Failure		400				{object}	map[string]string
//	@Failure		404				{object}	map[string]string
//	@Router			/cart/items/{item_id} [patch]
func (app *application) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")

	var req UpdateQuantityRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	s := app.cartFromRequest(r)
	awaitStore(r.Context(), s)

	err := s.UpdateQuantity(r.Context(), itemID, req.Quantity)
	if errors.Is(err, cart.ErrItemNotInCart) {
		app.notFoundError(w, r, err)
		return
	}

	app.writeCart(w, r, s, err)
}

// removeCartItemHandler godoc
//
//	@Summary		Remove item from cart
//	@Tags			cart
//	@Produce		json
//	@Param			X-Session-ID	header		string	true	"Session ID"
//	@Param			item_id			path		string	true	"Menu item ID"
//	@Success		200				{object}	CartResponse
//	@Router			/cart/items/{item_id} [delete]
func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	s := app.cartFromRequest(r)
	awaitStore(r.Context(), s)

	err := s.RemoveItem(r.Context(), chi.URLParam(r, "item_id"))
	app.writeCart(w, r, s, err)
}

// clearCartHandler godoc
//
//	@Summary		Clear cart
//	@Tags			cart
//	@Produce		json
//	@Param			X-Session-ID	header		string	true	"Session ID"
//	@Success		200				{object}	CartResponse
//	@Router			/cart [delete]
func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	s := app.cartFromRequest(r)
	awaitStore(r.Context(), s)

	err := s.ClearCart(r.Context())
	app.writeCart(w, r, s, err)
}
