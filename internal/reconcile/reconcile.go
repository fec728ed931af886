// Package reconcile turns untrusted or legacy cart data into canonical
// cart line items.
//
// Cart entries have been persisted by several generations of clients, so an
// entry may carry its item as a nested object or a bare id, its quantity as a
// number or a string, and its modifiers under one of several field names.
// The reconciler reads every known variant and emits one canonical shape.
// Its output is a fixed point: reconciling encoded output again yields the
// same items.
package reconcile

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/metrics"
)

var (
	itemRefFields      = []string{"menuItem", "menu_item", "item", "product"}
	itemIDFields       = []string{"id", "_id", "menuItemId", "menu_item_id"}
	topLevelIDFields   = []string{"menuItemId", "menu_item_id", "itemId", "item_id", "id"}
	quantityFields     = []string{"quantity", "qty"}
	modifierListFields = []string{"selectedModifiers", "selected_modifiers", "modifiers", "options", "addons"}
	modifierIDFields   = []string{"id", "_id", "modifierId", "modifier_id"}
	groupFields        = []string{"group", "groupId", "group_id"}
	availableFields    = []string{"isAvailable", "is_available", "available"}
	requiredFields     = []string{"isRequired", "is_required", "required"}
)

const maxQuantity = math.MaxInt32

type Reconciler struct {
	logger *zap.SugaredLogger
}

func New(logger *zap.SugaredLogger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Reconciler{logger: logger}
}

var std = New(nil)

// Reconcile reconciles a JSON array of cart entries without logging.
func Reconcile(raw []byte) []domain.CartLineItem {
	return std.Reconcile(raw)
}

// Reconcile parses raw as a JSON array of cart entries. Anything that is
// not a JSON array reconciles to an empty cart.
func (r *Reconciler) Reconcile(raw []byte) []domain.CartLineItem {
	if !gjson.ValidBytes(raw) {
		if len(strings.TrimSpace(string(raw))) > 0 {
			r.logger.Warnw("discarding unparseable cart data", "bytes", len(raw))
			metrics.RecordReconcileDropped("document")
		}
		return []domain.CartLineItem{}
	}
	return r.FromResult(gjson.ParseBytes(raw))
}

// ReconcileValues reconciles in-memory values (decoded JSON, maps, structs).
func (r *Reconciler) ReconcileValues(v any) []domain.CartLineItem {
	raw, err := json.Marshal(v)
	if err != nil {
		r.logger.Warnw("discarding unencodable cart data", "error", err)
		metrics.RecordReconcileDropped("document")
		return []domain.CartLineItem{}
	}
	return r.Reconcile(raw)
}

// ReconcileItems re-validates typed items, which may still hold values that
// were never checked (zero quantities, duplicate lines, empty ids).
func (r *Reconciler) ReconcileItems(items []domain.CartLineItem) []domain.CartLineItem {
	return r.ReconcileValues(items)
}

// FromResult reconciles an already parsed JSON value.
func (r *Reconciler) FromResult(doc gjson.Result) []domain.CartLineItem {
	out := []domain.CartLineItem{}
	if !doc.IsArray() {
		if doc.Exists() && doc.Type != gjson.Null {
			r.logger.Warnw("cart data is not a list", "type", doc.Type.String())
			metrics.RecordReconcileDropped("document")
		}
		return out
	}

	index := make(map[string]int)
	for i, entry := range doc.Array() {
		item, ok := r.entry(entry)
		if !ok {
			r.logger.Warnw("dropping cart entry without item id", "index", i)
			metrics.RecordReconcileDropped("item")
			continue
		}

		if at, dup := index[item.MenuItem.ID]; dup {
			out[at].Quantity = addQuantity(out[at].Quantity, item.Quantity)
			continue
		}
		index[item.MenuItem.ID] = len(out)
		out = append(out, item)
	}

	return out
}

func (r *Reconciler) entry(entry gjson.Result) (domain.CartLineItem, bool) {
	if !entry.IsObject() {
		id := scalarID(entry)
		if id == "" {
			return domain.CartLineItem{}, false
		}
		return domain.CartLineItem{
			MenuItem:          domain.MenuItemRef{ID: id, Price: decimal.Zero},
			Quantity:          1,
			SelectedModifiers: []domain.Modifier{},
		}, true
	}

	ref, ok := itemRef(entry)
	if !ok {
		return domain.CartLineItem{}, false
	}

	return domain.CartLineItem{
		MenuItem:          ref,
		Quantity:          quantity(first(entry, quantityFields)),
		SelectedModifiers: r.modifiers(entry, ref.ID),
	}, true
}

func itemRef(entry gjson.Result) (domain.MenuItemRef, bool) {
	var ref domain.MenuItemRef
	var nested gjson.Result

	for _, f := range itemRefFields {
		v := entry.Get(f)
		if v.IsObject() {
			if id := scalarID(first(v, itemIDFields)); id != "" {
				ref.ID = id
				nested = v
				break
			}
			continue
		}
		if id := scalarID(v); id != "" {
			ref.ID = id
			break
		}
	}

	if ref.ID == "" {
		ref.ID = scalarID(first(entry, topLevelIDFields))
	}
	if ref.ID == "" {
		return ref, false
	}

	name := nested.Get("name")
	if !name.Exists() {
		name = entry.Get("name")
	}
	ref.Name = strings.TrimSpace(name.String())

	price := nested.Get("price")
	if !price.Exists() {
		price = entry.Get("price")
	}
	ref.Price = money(price)

	return ref, true
}

func (r *Reconciler) modifiers(entry gjson.Result, itemID string) []domain.Modifier {
	out := []domain.Modifier{}

	list := first(entry, modifierListFields)
	if !list.IsArray() {
		return out
	}

	seen := make(map[string]struct{})
	for _, raw := range list.Array() {
		m, ok := modifier(raw)
		if !ok {
			r.logger.Debugw("dropping modifier without id", "menu_item_id", itemID)
			metrics.RecordReconcileDropped("modifier")
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}

	return out
}

func modifier(raw gjson.Result) (domain.Modifier, bool) {
	if !raw.IsObject() {
		id := scalarID(raw)
		return domain.Modifier{ID: id, Price: decimal.Zero, IsAvailable: true}, id != ""
	}

	m := domain.Modifier{
		ID:          scalarID(first(raw, modifierIDFields)),
		Name:        strings.TrimSpace(raw.Get("name").String()),
		Price:       money(raw.Get("price")),
		Group:       strings.TrimSpace(first(raw, groupFields).String()),
		Type:        strings.TrimSpace(raw.Get("type").String()),
		IsRequired:  flag(first(raw, requiredFields), false),
		IsAvailable: flag(first(raw, availableFields), true),
	}
	return m, m.ID != ""
}

// first returns the first of fields present on v with a non-null value.
func first(v gjson.Result, fields []string) gjson.Result {
	for _, f := range fields {
		r := v.Get(f)
		if r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

func scalarID(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str)
	case gjson.Number:
		return v.Raw
	}
	return ""
}

func quantity(v gjson.Result) int {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if n, err := strconv.Atoi(s); err == nil {
			f = float64(n)
		} else if x, err := strconv.ParseFloat(s, 64); err == nil {
			f = x
		} else {
			return 1
		}
	default:
		return 1
	}

	if math.IsNaN(f) || f < 1 {
		return 1
	}
	if f > maxQuantity {
		return maxQuantity
	}
	return int(math.Floor(f))
}

func addQuantity(a, b int) int {
	if a > maxQuantity-b {
		return maxQuantity
	}
	return a + b
}

// money parses a non-negative price; anything else is zero.
func money(v gjson.Result) decimal.Decimal {
	var s string
	switch v.Type {
	case gjson.Number:
		s = v.Raw
	case gjson.String:
		s = strings.TrimSpace(v.Str)
	default:
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func flag(v gjson.Result, def bool) bool {
	if !v.Exists() {
		return def
	}
	return v.Bool()
}
