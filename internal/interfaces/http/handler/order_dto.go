package handler

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/console/internal/domain/order"
)

// OrderListQuery represents the query parameters of the order list
type OrderListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status    string `form:"status" binding:"omitempty,order_status"`
	StartDate string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Search    string `form:"search" binding:"omitempty,max=100"`
}

// Filter converts the query into an order store filter
func (q OrderListQuery) Filter() order.ListFilter {
	f := order.ListFilter{
		Page:      q.Page,
		Limit:     q.Limit,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Search:    strings.TrimSpace(q.Search),
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if s, ok := order.ParseStatus(q.Status); ok {
		f.Status = s
	}
	return f
}

// UpdateOrderStatusRequest is the body of a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// TransitionOption is one status the operator may pick
type TransitionOption struct {
	Status order.Status `json:"status"`
	Label  string       `json:"label"`
}

// OrderTransitionsResponse lists the statuses an order may move to
type OrderTransitionsResponse struct {
	OrderID string             `json:"order_id"`
	Current TransitionOption   `json:"current"`
	Allowed []TransitionOption `json:"allowed"`
	// Terminal is true when no further change is possible
	Terminal bool `json:"terminal"`
}

func optionOf(s order.Status) TransitionOption {
	return TransitionOption{Status: s, Label: s.Label()}
}

// OrderItemResponse is a line item with its computed total
type OrderItemResponse struct {
	order.Item
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// OrderResponse is an order with the figures shown next to it in the console
type OrderResponse struct {
	order.Order
	Items         []OrderItemResponse       `json:"items"`
	StatusLabel   string                    `json:"statusLabel"`
	PaymentLabel  string                    `json:"paymentLabel"`
	ItemCount     int                       `json:"itemCount"`
	LatestHistory *order.StatusHistoryEntry `json:"latestHistory,omitempty"`
}

func newOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		Order:         *o,
		Items:         make([]OrderItemResponse, 0, len(o.Items)),
		StatusLabel:   o.Status.Label(),
		PaymentLabel:  o.PaymentLabel(),
		ItemCount:     o.ItemCount(),
		LatestHistory: o.LatestHistory(),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{Item: item, LineTotal: item.LineTotal()})
	}
	return resp
}

func newOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderResponse(&orders[i]))
	}
	return out
}

// StatusOption describes one order status for filters and badges
type StatusOption struct {
	Status   order.Status   `json:"status"`
	Label    string         `json:"label"`
	Terminal bool           `json:"terminal"`
	Next     []order.Status `json:"next"`
}

func statusOptions() []StatusOption {
	all := order.AllStatuses()
	out := make([]StatusOption, 0, len(all))
	for _, s := range all {
		out = append(out, StatusOption{
			Status:   s,
			Label:    s.Label(),
			Terminal: s.IsTerminal(),
			Next:     order.AllowedTransitions(s),
		})
	}
	return out
}
