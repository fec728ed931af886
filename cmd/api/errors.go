package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vikram583135/platepal2.o-sub000/internal/checkout"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJsonError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJsonError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJsonError(w, http.StatusNotFound, "not found")
}

func (app *application) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error, message string) {
	app.logger.Errorw("backend error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJsonError(w, http.StatusBadGateway, message)
}

func (app *application) validationErrorResponse(w http.ResponseWriter, r *http.Request, verr *checkout.ValidationError) {
	status := http.StatusUnprocessableEntity
	if verr.Fields.Corrupted() {
		status = http.StatusConflict
	}
	app.logger.Warnw("checkout validation failed", "method", r.Method, "path", r.URL.Path, "fields", verr.Fields)

	type envelope struct {
		Error  string                    `json:"error"`
		Fields checkout.ValidationErrors `json:"fields"`
	}
	writeJson(w, status, &envelope{Error: "checkout validation failed", Fields: verr.Fields})
}

func (app *application) submissionInFlightResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("duplicate checkout submission", "method", r.Method, "path", r.URL.Path)

	writeJsonError(w, http.StatusTooManyRequests, checkout.ErrSubmissionInFlight.Error())
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	seconds := int(retryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))

	writeJsonError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+strconv.Itoa(seconds)+"s")
}
