package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
)

// BuildOrderRequest turns reconciled cart lines into the order creation
// payload. The tip is clamped to its allowed range.
func BuildOrderRequest(f Form, vendorID string, items []domain.CartLineItem) domain.OrderRequest {
	lines := make([]domain.OrderItem, 0, len(items))
	for _, li := range items {
		mods := make([]domain.OrderItemModifier, 0, len(li.SelectedModifiers))
		for _, m := range li.SelectedModifiers {
			mods = append(mods, domain.OrderItemModifier{ModifierID: m.ID, Name: m.Name, Price: m.Price})
		}
		lines = append(lines, domain.OrderItem{
			MenuItemID:        li.MenuItem.ID,
			Quantity:          li.Quantity,
			SelectedModifiers: mods,
		})
	}

	return domain.OrderRequest{
		VendorID:            vendorID,
		DeliveryAddressID:   f.AddressID,
		OrderType:           domain.OrderTypeDelivery,
		Items:               lines,
		TipAmount:           ClampTip(f.Tip),
		ContactlessDelivery: f.ContactlessDelivery,
	}
}

// paymentAmount prefers the total the backend computed for the order.
func paymentAmount(resp *domain.OrderResponse, items []domain.CartLineItem, tip decimal.Decimal) decimal.Decimal {
	if resp.TotalAmount.IsPositive() {
		return resp.TotalAmount
	}
	total := ClampTip(tip)
	for _, li := range items {
		total = total.Add(li.LineTotal())
	}
	return total
}
