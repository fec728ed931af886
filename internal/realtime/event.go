package realtime

import (
	"errors"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
)

var ErrMalformedEvent = errors.New("malformed realtime event")

var (
	typeFields   = []string{"event_type", "eventType", "type", "event"}
	orderFields  = []string{"order_id", "orderId", "order.id"}
	vendorFields = []string{"vendor_id", "vendorId", "restaurant_id", "restaurantId", "order.vendor_id"}
	userFields   = []string{"user_id", "userId", "customer_id", "order.user_id"}
	riderFields  = []string{"rider_id", "riderId", "order.rider_id"}
)

// ParseEvent reads a push message. Fields may sit at the top level or in a
// "data" or "payload" envelope, and ids may be strings or numbers.
func ParseEvent(msg []byte) (domain.RealtimeEvent, error) {
	if !gjson.ValidBytes(msg) {
		return domain.RealtimeEvent{}, ErrMalformedEvent
	}
	doc := gjson.ParseBytes(msg)
	if !doc.IsObject() {
		return domain.RealtimeEvent{}, ErrMalformedEvent
	}

	body := doc
	for _, env := range []string{"data", "payload"} {
		if v := doc.Get(env); v.IsObject() {
			body = v
			break
		}
	}

	ev := domain.RealtimeEvent{
		EventType: strings.ToLower(lookup(doc, body, typeFields)),
		OrderID:   lookup(doc, body, orderFields),
		VendorID:  lookup(doc, body, vendorFields),
		UserID:    lookup(doc, body, userFields),
		RiderID:   lookup(doc, body, riderFields),
	}
	if ev.EventType == "" {
		return domain.RealtimeEvent{}, ErrMalformedEvent
	}

	if ts := lookup(doc, body, []string{"timestamp", "created_at"}); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			ev.Timestamp = t
		}
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	return ev, nil
}

// lookup returns the first field found on the top level or the envelope.
func lookup(doc, body gjson.Result, fields []string) string {
	for _, src := range []gjson.Result{doc, body} {
		for _, f := range fields {
			v := src.Get(f)
			switch v.Type {
			case gjson.String:
				if s := strings.TrimSpace(v.Str); s != "" {
					return s
				}
			case gjson.Number:
				return v.Raw
			}
		}
	}
	return ""
}
