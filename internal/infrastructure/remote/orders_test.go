package remote

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/console/internal/domain/order"
	"github.com/storefront/console/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStore_Get(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "ord-1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":          "ord-1",
			"orderNumber": "A100",
			"status":      "SHIPPED",
			"total":       135.75,
		})
	})
	store := NewOrderStore(newFakeAPI(t, mux).client(t))

	t.Run("found", func(t *testing.T) {
		o, err := store.Get(context.Background(), "ord-1")
		require.NoError(t, err)
		assert.Equal(t, order.StatusShipped, o.Status)
		assert.True(t, o.Total.Equal(decimal.RequireFromString("135.75")))
	})

	t.Run("missing order is not found", func(t *testing.T) {
		_, err := store.Get(context.Background(), "ord-404")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NotErrorIs(t, err, shared.ErrRemote)
	})
}

func TestOrderStore_List(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"orders":     []map[string]any{{"id": "ord-1", "status": "PENDING"}},
			"page":       2,
			"limit":      5,
			"totalPages": 3,
			"totalItems": 11,
		})
	})
	api := newFakeAPI(t, mux)
	store := NewOrderStore(api.client(t))

	page, err := store.List(context.Background(), order.ListFilter{
		Page:   2,
		Limit:  5,
		Status: order.StatusPending,
		Search: "asha",
	})
	require.NoError(t, err)

	assert.Len(t, page.Orders, 1)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(11), page.TotalItems)
	assert.Equal(t, "limit=5&page=2&search=asha&status=PENDING", api.received()[0].Query)
}

func TestOrderStore_List_EmptyFilterSendsNoQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"page": 1})
	})
	api := newFakeAPI(t, mux)

	page, err := NewOrderStore(api.client(t)).List(context.Background(), order.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, page.Orders)
	assert.Empty(t, api.received()[0].Query)
}

func TestOrderStore_UpdateStatus(t *testing.T) {
	t.Run("sends only the status and returns the server order", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("PUT /api/orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"id":     r.PathValue("id"),
				"status": "DELIVERED",
				"statusHistory": []map[string]any{
					{"id": "h-1", "previousStatus": "SHIPPED", "newStatus": "DELIVERED"},
				},
			})
		})
		api := newFakeAPI(t, mux)

		o, err := NewOrderStore(api.client(t)).UpdateStatus(context.Background(), "ord-1", order.StatusDelivered)
		require.NoError(t, err)

		assert.Equal(t, order.StatusDelivered, o.Status)
		require.Len(t, o.StatusHistory, 1)
		assert.Equal(t, map[string]any{"status": "DELIVERED"}, api.received()[0].Body)
	})

	t.Run("server rejection carries the message", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("PUT /api/orders/{id}/status", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Cannot change status from PROCESSING to DELIVERED"})
		})
		store := NewOrderStore(newFakeAPI(t, mux).client(t))

		_, err := store.UpdateStatus(context.Background(), "ord-1", order.StatusDelivered)

		var re *shared.RemoteError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, http.StatusBadRequest, re.StatusCode)
		assert.Equal(t, "Cannot change status from PROCESSING to DELIVERED", re.Message)
	})

	t.Run("order deleted meanwhile", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("PUT /api/orders/{id}/status", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
		})
		store := NewOrderStore(newFakeAPI(t, mux).client(t))

		_, err := store.UpdateStatus(context.Background(), "ord-1", order.StatusDelivered)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
