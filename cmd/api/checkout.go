package main

import (
	"errors"
	"net/http"

	"github.com/vikram583135/platepal2.o-sub000/internal/checkout"
)

type ValidateCheckoutResponse struct {
	Valid  bool                      `json:"valid"`
	Errors checkout.ValidationErrors `json:"errors"`
}

func (app *application) orchestratorFromRequest(r *http.Request) *checkout.Orchestrator {
	return app.checkouts.Get(sessionFromContext(r), app.cartFromRequest(r))
}

// validateCheckoutHandler godoc
//
//	@Summary		Validate checkout form
//	@Description	Checks address, payment, tip and cart without submitting
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string			true	"Session ID"
//	@Param			request			body		checkout.Form	true	"Checkout selections"
//	@Success		200				{object}	ValidateCheckoutResponse
//	@Failure		400				{object}	map[string]string
//	@Router			/checkout/validate [post]
func (app *application) validateCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := readJson(w, r, &form); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	o := app.orchestratorFromRequest(r)
	o.ApplyForm(form)
	o.AwaitCart(r.Context())

	errs := o.ValidateForm()
	response := ValidateCheckoutResponse{Valid: len(errs) == 0, Errors: errs}

	if err := app.jsonResponse(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

// submitCheckoutHandler godoc
//
//	@Summary		Place order
//	@Description	Validates the form, creates the order and runs the payment. Payment failures still return 201 with a payment-pending navigation.
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string			true	"Session ID"
//	@Param			request			body		checkout.Form	true	"Checkout selections"
//	@Success		201				{object}	checkout.Outcome
//	@Failure		400				{object}	map[string]string
//	@Failure		409				{object}	map[string]interface{}
//	@Failure		422				{object}	map[string]interface{}
//	@Failure		429				{object}	map[string]string
//	@Failure		502				{object}	map[string]string
//	@Router			/checkout [post]
func (app *application) submitCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := readJson(w, r, &form); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	o := app.orchestratorFromRequest(r)
	o.ApplyForm(form)

	outcome, err := o.HandleSubmit(r.Context())

	// the attempt is over once an order was created or rejected
	var serr *checkout.SubmissionError
	if err == nil || errors.As(err, &serr) {
		app.checkouts.Discard(sessionFromContext(r))
	}

	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.Is(err, checkout.ErrSubmissionInFlight):
			app.submissionInFlightResponse(w, r)
		case errors.As(err, &verr):
			app.validationErrorResponse(w, r, verr)
		case errors.Is(err, checkout.ErrNoValidItems):
			writeJsonError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.As(err, &serr):
			app.badGatewayResponse(w, r, serr.Err, serr.Message)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.orders.AnnounceOrder(r.Context(), outcome.Navigation.OrderID, outcome.Submission.VendorID, sessionFromContext(r)); err != nil {
		app.logger.Warnw("order placed but not announced", "order_id", outcome.Navigation.OrderID, "error", err)
	}

	if err := app.jsonResponse(w, http.StatusCreated, outcome); err != nil {
		app.internalServerError(w, r, err)
	}
}
