package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// GenericOrderError is shown when a failed response carries nothing usable.
const GenericOrderError = "Failed to place order. Please try again."

// APIError is a non-2xx response from the backend.
type APIError struct {
	Operation  string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: backend returned %d: %s", e.Operation, e.StatusCode, ErrorMessage(e.Body))
}

func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// reserved keys are not treated as per-field validation errors.
var reserved = map[string]struct{}{
	"error":            {},
	"non_field_errors": {},
	"details":          {},
	"detail":           {},
}

// ErrorMessage extracts one human readable message from an error body.
// Sources are tried in order: "error", per-field error lists,
// "non_field_errors", "details", a bare string body, "detail".
func ErrorMessage(body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return GenericOrderError
	}
	if !gjson.Valid(raw) {
		return raw
	}

	doc := gjson.Parse(raw)
	if doc.Type == gjson.String {
		if s := strings.TrimSpace(doc.Str); s != "" {
			return s
		}
		return GenericOrderError
	}
	if !doc.IsObject() {
		return GenericOrderError
	}

	if msg := text(doc.Get("error")); msg != "" {
		return msg
	}

	var fields []string
	doc.ForEach(func(key, value gjson.Result) bool {
		if _, skip := reserved[key.String()]; skip {
			return true
		}
		if value.IsArray() {
			if msg := text(value); msg != "" {
				fields = append(fields, key.String()+": "+msg)
			}
		}
		return true
	})
	if len(fields) > 0 {
		return strings.Join(fields, "; ")
	}

	if msg := text(doc.Get("non_field_errors")); msg != "" {
		return msg
	}
	if msg := text(doc.Get("details")); msg != "" {
		return msg
	}
	if msg := text(doc.Get("detail")); msg != "" {
		return msg
	}
	return GenericOrderError
}

// text flattens a string or a list of strings.
func text(v gjson.Result) string {
	switch {
	case v.Type == gjson.String:
		return strings.TrimSpace(v.Str)
	case v.IsArray():
		var parts []string
		for _, e := range v.Array() {
			if s := text(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case v.IsObject():
		if m := v.Get("message"); m.Exists() {
			return text(m)
		}
	}
	return ""
}
