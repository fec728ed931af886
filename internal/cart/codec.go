package cart

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/reconcile"
)

// SchemaVersion is written into every saved cart record.
const SchemaVersion = 1

const storageKeyPrefix = "cart-storage:v1:"

// StorageKey is the fixed key a session's cart record lives under.
func StorageKey(sessionID string) string {
	return storageKeyPrefix + sessionID
}

type record struct {
	Version  int                   `json:"version"`
	Items    []domain.CartLineItem `json:"items"`
	VendorID string                `json:"vendorId,omitempty"`
}

// Encode serializes a cart into the current record version.
func Encode(c domain.Cart) ([]byte, error) {
	items := c.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}

	b, err := json.Marshal(record{Version: SchemaVersion, Items: items, VendorID: c.VendorID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart: %w", err)
	}
	return b, nil
}

// Decoded is the result of reading a stored record.
type Decoded struct {
	Cart    domain.Cart
	Version int
	// Changed is set when the stored record should be rewritten: it was
	// written by an older client or reconciliation dropped entries.
	Changed bool
}

var (
	itemsFields  = []string{"items", "cartItems", "cart"}
	vendorFields = []string{"vendorId", "vendor_id", "restaurantId", "restaurant_id", "restaurant", "vendor"}
)

// Decode reads a stored cart record. It never fails: missing or corrupted
// data decodes to an empty cart. Accepted layouts are the current
// versioned record, the older {"state": {...}, "version": 0} envelope and
// a bare item array.
func Decode(data []byte, r *reconcile.Reconciler) Decoded {
	if r == nil {
		r = reconcile.New(nil)
	}

	empty := Decoded{Cart: domain.Cart{Items: []domain.CartLineItem{}}}
	if !gjson.ValidBytes(data) {
		empty.Changed = strings.TrimSpace(string(data)) != ""
		return empty
	}

	doc := gjson.ParseBytes(data)

	var state, rawItems gjson.Result
	version := 0
	switch {
	case doc.IsArray():
		rawItems = doc
	case doc.IsObject():
		state = doc
		if s := doc.Get("state"); s.IsObject() {
			state = s
		}
		version = int(doc.Get("version").Int())
		rawItems = firstOf(state, itemsFields)
	default:
		empty.Changed = true
		return empty
	}

	items := r.FromResult(rawItems)
	out := Decoded{
		Cart:    domain.Cart{Items: items},
		Version: version,
	}
	if len(items) > 0 {
		out.Cart.VendorID = vendorID(firstOf(state, vendorFields))
	}

	rawCount := len(rawItems.Array())
	if version <= SchemaVersion {
		out.Changed = version < SchemaVersion || rawCount != len(items)
	}

	return out
}

func firstOf(v gjson.Result, fields []string) gjson.Result {
	for _, f := range fields {
		r := v.Get(f)
		if r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

func vendorID(v gjson.Result) string {
	if v.IsObject() {
		v = firstOf(v, []string{"id", "_id"})
	}
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str)
	case gjson.Number:
		return v.Raw
	}
	return ""
}
