package notification

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForEvent(t *testing.T) {
	assert.Equal(t, KindNewOrder, KindForEvent("new:order"))
	assert.Equal(t, Kind("order:refunded"), KindForEvent("order:refunded"))
}

func TestDecodePayload(t *testing.T) {
	t.Run("new order payload", func(t *testing.T) {
		p := DecodePayload(KindNewOrder, json.RawMessage(`{"message":"New order placed","orderNumber":"A100","total":99}`))
		np, ok := p.(NewOrderPayload)
		require.True(t, ok)
		assert.Equal(t, "New order placed", np.Message)
		assert.Equal(t, "A100", np.OrderNumber)
		assert.JSONEq(t, `99`, string(np.Extra["total"]))
		assert.Equal(t, "New order placed", p.Summary())
	})

	t.Run("summary falls back to order number", func(t *testing.T) {
		p := DecodePayload(KindNewOrder, json.RawMessage(`{"orderNumber":"A100"}`))
		assert.Equal(t, "New order #A100", p.Summary())
	})

	t.Run("unknown kind keeps raw body", func(t *testing.T) {
		p := DecodePayload(Kind("stock:low"), json.RawMessage(`{"sku":"X"}`))
		up, ok := p.(UnknownPayload)
		require.True(t, ok)
		assert.Equal(t, Kind("stock:low"), up.Kind())
		assert.JSONEq(t, `{"sku":"X"}`, string(up.Raw))
	})

	t.Run("numeric order number", func(t *testing.T) {
		p := DecodePayload(KindNewOrder, json.RawMessage(`{"orderNumber":1042}`))
		np, ok := p.(NewOrderPayload)
		require.True(t, ok)
		assert.Equal(t, "1042", np.OrderNumber)
		assert.Equal(t, "New order #1042", p.Summary())
	})

	t.Run("order number of another type falls back to unknown", func(t *testing.T) {
		p := DecodePayload(KindNewOrder, json.RawMessage(`{"orderNumber":{"id":1}}`))
		_, ok := p.(UnknownPayload)
		assert.True(t, ok)
	})

	t.Run("malformed known kind falls back to unknown", func(t *testing.T) {
		p := DecodePayload(KindNewOrder, json.RawMessage(`"just text"`))
		_, ok := p.(UnknownPayload)
		assert.True(t, ok)
		assert.Equal(t, KindNewOrder, p.Kind())
	})
}

func TestEvent_Known(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	assert.True(t, NewEvent(1, KindNewOrder, json.RawMessage(`{"orderNumber":7}`), at).Known())
	assert.False(t, NewEvent(2, KindNewOrder, json.RawMessage(`"just text"`), at).Known())
	assert.False(t, NewEvent(3, Kind("order:refunded"), json.RawMessage(`{}`), at).Known())
	assert.False(t, Event{Type: KindNewOrder}.Known())
}

func TestEvent_JSONLayout(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	e := NewEvent(7, KindNewOrder, json.RawMessage(`{"orderNumber":"A100","message":"hi"}`), at)

	b, err := json.Marshal(e)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Contains(t, fields, "id")
	assert.JSONEq(t, `7`, string(fields["seq"]))
	assert.JSONEq(t, `"new_order"`, string(fields["type"]))
	assert.JSONEq(t, `{"orderNumber":"A100","message":"hi"}`, string(fields["data"]))
	assert.JSONEq(t, `"2024-05-01T10:00:00Z"`, string(fields["time"]))

	var decoded Event
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, e.Seq, decoded.Seq)
	assert.True(t, e.ReceivedAt.Equal(decoded.ReceivedAt))
	assert.Equal(t, e.Payload, decoded.Payload)
}

func TestEvent_UnmarshalLegacyRecord(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(`{"type":"new_order","data":{"orderNumber":"A1"},"time":"2024-01-01T00:00:00Z"}`), &e))
	assert.Equal(t, uuid.Nil, e.ID)
	assert.Equal(t, "New order #A1", e.Summary())
}

func TestEvent_UnmarshalRejectsIncompleteRecords(t *testing.T) {
	var e Event
	assert.Error(t, json.Unmarshal([]byte(`{"data":{},"time":"2024-01-01T00:00:00Z"}`), &e))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"new_order","data":{}}`), &e))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &e))
}

func TestEvent_UnknownPayloadRoundTrip(t *testing.T) {
	e := NewEvent(1, Kind("stock:low"), json.RawMessage(`{"sku":"X"}`), time.Now().UTC())
	b, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(b, &decoded))
	data, err := decoded.Data()
	require.NoError(t, err)
	assert.JSONEq(t, `{"sku":"X"}`, string(data))
}
