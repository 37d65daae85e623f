package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Item represents a line item of an order
type Item struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"orderId"`
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	Image         string          `json:"image"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	SelectedColor *string         `json:"selectedColor"`
	SelectedSize  *string         `json:"selectedSize"`
	IsReturned    bool            `json:"isReturned"`
	ReturnReason  *string         `json:"returnReason"`
	ReturnedAt    *time.Time      `json:"returnedAt"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// LineTotal returns price * quantity
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingAddress is the single delivery address of an order
type ShippingAddress struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	Mobile    string    `json:"mobile"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Customer is the buyer summary embedded in an order
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// StatusHistoryEntry is an immutable audit record of one accepted status change.
// Entries are appended by the order store and never edited or removed.
type StatusHistoryEntry struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	PreviousStatus Status    `json:"previousStatus"`
	NewStatus      Status    `json:"newStatus"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Order is the console's read model of a store order.
// The remote order store owns it; the console never mutates it locally.
type Order struct {
	ID                string               `json:"id"`
	OrderNumber       string               `json:"orderNumber"`
	UserID            string               `json:"userId"`
	Status            Status               `json:"status"`
	Subtotal          decimal.Decimal      `json:"subtotal"`
	Discount          decimal.Decimal      `json:"discount"`
	Shipping          decimal.Decimal      `json:"shipping"`
	Tax               decimal.Decimal      `json:"tax"`
	Total             decimal.Decimal      `json:"total"`
	Currency          string               `json:"currency"`
	IsPaid            bool                 `json:"isPaid"`
	PaidAt            *time.Time           `json:"paidAt"`
	AddressID         string               `json:"addressId"`
	Tracking          *string              `json:"tracking"`
	Carrier           *string              `json:"carrier"`
	EstimatedDelivery *time.Time           `json:"estimatedDelivery"`
	DeliveredAt       *time.Time           `json:"deliveredAt"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
	CancelledAt       *time.Time           `json:"cancelledAt"`
	Items             []Item               `json:"items"`
	ShippingAddress   ShippingAddress      `json:"shippingAddress"`
	User              Customer             `json:"user"`
	StatusHistory     []StatusHistoryEntry `json:"statusHistory"`
}

// AllowedTransitions returns the statuses this order may move to
func (o *Order) AllowedTransitions() []Status {
	return AllowedTransitions(o.Status)
}

// RequestTransition validates a requested status change against the transition table.
// It has no side effects: the order is left untouched whether or not the check passes.
func (o *Order) RequestTransition(target Status) error {
	return RequestTransition(o, target)
}

// RequestTransition is the guard used before presenting choices and again before
// issuing a remote mutation.
func RequestTransition(o *Order, target Status) error {
	if o == nil {
		return &InvalidTransitionError{To: target}
	}
	if !o.Status.CanTransitionTo(target) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}
	return nil
}

// LatestHistory returns the most recent history entry, or nil
func (o *Order) LatestHistory() *StatusHistoryEntry {
	if len(o.StatusHistory) == 0 {
		return nil
	}
	latest := o.StatusHistory[0]
	for _, h := range o.StatusHistory[1:] {
		if !h.CreatedAt.Before(latest.CreatedAt) {
			latest = h
		}
	}
	return &latest
}

// PaymentLabel returns the payment badge shown next to the order status
func (o *Order) PaymentLabel() string {
	switch {
	case o.Status == StatusPaymentPending:
		return "payment pending"
	case o.IsPaid:
		return "paid"
	default:
		return "pending"
	}
}

// ItemCount returns the total number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Page is one page of orders as returned by the order store
type Page struct {
	Orders     []Order `json:"orders"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
	TotalItems int64   `json:"totalItems"`
}

// ListFilter holds the order list query parameters
type ListFilter struct {
	Page      int
	Limit     int
	Status    Status
	StartDate string
	EndDate   string
	Search    string
}

// CacheKey returns a stable key identifying this filter
func (f ListFilter) CacheKey() string {
	return fmt.Sprintf("p=%d|l=%d|s=%s|from=%s|to=%s|q=%s",
		f.Page, f.Limit, f.Status, f.StartDate, f.EndDate, f.Search)
}
