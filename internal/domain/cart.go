package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Modifier is an add-on or variant attached to a menu item.
type Modifier struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Group       string          `json:"group,omitempty"`
	Type        string          `json:"type,omitempty"`
	IsRequired  bool            `json:"isRequired"`
	IsAvailable bool            `json:"isAvailable"`
}

// singleSelectTypes behave as one-of even when no group is set.
var singleSelectTypes = map[string]struct{}{
	"size":        {},
	"spice":       {},
	"spice_level": {},
	"crust":       {},
	"variant":     {},
}

// exclusiveKey returns the key under which m is mutually exclusive with
// other modifiers, or "" when m can be combined freely.
func (m Modifier) exclusiveKey() string {
	if m.Group != "" {
		return "group:" + m.Group
	}
	t := strings.ToLower(strings.TrimSpace(m.Type))
	if _, ok := singleSelectTypes[t]; ok {
		return "type:" + t
	}
	if m.IsRequired {
		return "required:" + t
	}
	return ""
}

// NormalizeModifiers applies selection rules to a list of modifiers in the
// order they were picked: duplicate ids collapse, and within an exclusive
// group the most recent pick replaces the earlier one.
func NormalizeModifiers(selected []Modifier) []Modifier {
	out := make([]Modifier, 0, len(selected))
	byKey := make(map[string]int)
	seen := make(map[string]int)

	for _, m := range selected {
		if m.ID == "" {
			continue
		}
		if i, ok := seen[m.ID]; ok {
			out[i] = m
			continue
		}
		if key := m.exclusiveKey(); key != "" {
			if i, ok := byKey[key]; ok {
				delete(seen, out[i].ID)
				out[i] = m
				seen[m.ID] = i
				continue
			}
			byKey[key] = len(out)
		}
		seen[m.ID] = len(out)
		out = append(out, m)
	}

	return out
}

// MenuItemRef is the minimal menu item snapshot a cart line keeps.
type MenuItemRef struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CartLineItem is one line of the cart. Quantity is always >= 1.
type CartLineItem struct {
	MenuItem          MenuItemRef `json:"menuItem"`
	Quantity          int         `json:"quantity"`
	SelectedModifiers []Modifier  `json:"selectedModifiers"`
}

// UnitPrice is the item price plus all selected modifier prices.
func (li CartLineItem) UnitPrice() decimal.Decimal {
	price := li.MenuItem.Price
	for _, m := range li.SelectedModifiers {
		price = price.Add(m.Price)
	}
	return price
}

// LineTotal is UnitPrice multiplied by quantity.
func (li CartLineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart holds line items bound to a single vendor.
type Cart struct {
	Items    []CartLineItem `json:"items"`
	VendorID string         `json:"vendorId,omitempty"`
}

// IsEmpty reports whether the cart has no line items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// IndexOf returns the position of the line for itemID, or -1.
func (c Cart) IndexOf(itemID string) int {
	for i, li := range c.Items {
		if li.MenuItem.ID == itemID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy that shares nothing with c.
func (c Cart) Clone() Cart {
	out := Cart{VendorID: c.VendorID, Items: make([]CartLineItem, len(c.Items))}
	for i, li := range c.Items {
		li.SelectedModifiers = append([]Modifier(nil), li.SelectedModifiers...)
		out.Items[i] = li
	}
	return out
}
