package domain

import "time"

// RealtimeEvent is a push event announced by the order backend.
type RealtimeEvent struct {
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id,omitempty"`
	VendorID  string    `json:"vendor_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	RiderID   string    `json:"rider_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventOrderCreated   = "order.created"
	EventOrderAccepted  = "order.accepted"
	EventOrderRejected  = "order.rejected"
	EventOrderUpdated   = "order.updated"
	EventOrderCompleted = "order.completed"

	EventPaymentCaptured        = "payment.captured"
	EventPaymentFailed          = "payment.failed"
	EventPaymentRefundInitiated = "payment.refund_initiated"
	EventPaymentRefundCompleted = "payment.refund_completed"

	EventDeliveryAssigned  = "delivery.assigned"
	EventDeliveryPickedUp  = "delivery.picked_up"
	EventDeliveryInTransit = "delivery.in_transit"
	EventDeliveryDelivered = "delivery.delivered"

	EventMenuUpdated      = "menu.updated"
	EventInventoryChanged = "inventory.changed"
)

// Surface is the front end whose cached views a bridge keeps fresh.
type Surface string

const (
	SurfaceCustomer   Surface = "customer"
	SurfaceRider      Surface = "rider"
	SurfaceRestaurant Surface = "restaurant"
)

// ParseSurface validates a surface name.
func ParseSurface(s string) (Surface, error) {
	switch Surface(s) {
	case SurfaceCustomer, SurfaceRider, SurfaceRestaurant:
		return Surface(s), nil
	}
	return "", ErrUnknownSurface
}

// View cache keys.
const (
	ViewOrders             = "orders"
	ViewWallet             = "wallet"
	ViewRiderDeliveries    = "rider:deliveries"
	ViewRiderEarnings      = "rider:earnings"
	ViewRestaurantOrders   = "restaurant:orders"
	ViewRestaurantMenu     = "restaurant:menu"
	ViewRestaurantPayments = "restaurant:payments"
)

// OrderViewKey is the cache key of a single order detail view.
func OrderViewKey(orderID string) string {
	return "order:" + orderID
}

// MenuViewKey is the cache key of a vendor's menu as customers see it.
func MenuViewKey(vendorID string) string {
	return "menu:" + vendorID
}
