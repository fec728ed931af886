package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
)

var ErrInvalidID = errors.New("invalid ID format")

// getOrderHandler godoc
//
//	@Summary		Get order
//	@Description	Order detail view, served from the view cache and refreshed by push events
//	@Tags			orders
//	@Produce		json
//	@Param			X-Session-ID	header		string	true	"Session ID"
//	@Param			order_id		path		string	true	"Order ID"
//	@Success		200				{object}	map[string]interface{}
//	@Failure		400				{object}	map[string]string
//	@Failure		404				{object}	map[string]string
//	@Failure		502				{object}	map[string]string
//	@Router			/orders/{order_id} [get]
func (app *application) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	order, err := app.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			app.notFoundError(w, r, err)
			return
		}
		app.badGatewayResponse(w, r, err, "failed to load order")
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, order); err != nil {
		app.internalServerError(w, r, err)
	}
}
