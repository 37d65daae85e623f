package eventsource

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOpenPacket(t *testing.T) {
	open, err := parseOpenPacket(openFrame)
	require.NoError(t, err)
	assert.Equal(t, "s1", open.SID)
	assert.Equal(t, 45*time.Second, open.heartbeat())

	_, err = parseOpenPacket(`40`)
	assert.Error(t, err)

	_, err = parseOpenPacket(`0{not json`)
	assert.Error(t, err)

	_, err = parseOpenPacket(`0{"sid":"s1"}`)
	assert.Error(t, err)
}

func TestParseSocketPacket(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		typ       byte
		namespace string
		ackID     int
		payload   string
	}{
		{"connect", `0`, sioConnect, "/", -1, ""},
		{"connect ack", `0{"sid":"abc"}`, sioConnect, "/", -1, `{"sid":"abc"}`},
		{"event", `2["new:order",{"orderNumber":"A100"}]`, sioEvent, "/", -1, `["new:order",{"orderNumber":"A100"}]`},
		{"namespaced event with ack", `2/admin,12["x"]`, sioEvent, "/admin", 12, `["x"]`},
		{"namespaced disconnect", `1/admin,`, sioDisconnect, "/admin", -1, ""},
		{"namespace without comma", `1/admin`, sioDisconnect, "/admin", -1, ""},
		{"binary event", `51-["upload",{"_placeholder":true,"num":0}]`, sioBinaryEvent, "/", -1, `["upload",{"_placeholder":true,"num":0}]`},
		{"connect error", `4{"message":"nope"}`, sioConnectError, "/", -1, `{"message":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := parseSocketPacket(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, tt.namespace, p.Namespace)
			assert.Equal(t, tt.ackID, p.AckID)
			assert.Equal(t, tt.payload, string(p.Payload))
		})
	}
}

func TestParseSocketPacket_Invalid(t *testing.T) {
	_, err := parseSocketPacket("")
	assert.ErrorIs(t, err, errEmptyPacket)

	_, err = parseSocketPacket("9[]")
	assert.Error(t, err)

	_, err = parseSocketPacket(`5["no attachments"]`)
	assert.Error(t, err)
}

func TestEncodeSocketPacket(t *testing.T) {
	assert.Equal(t, "40", encodeSocketPacket(sioConnect, "/", -1, nil))
	assert.Equal(t, `40{"token":"t"}`, encodeSocketPacket(sioConnect, "/", -1, []byte(`{"token":"t"}`)))
	assert.Equal(t, "40/admin,", encodeSocketPacket(sioConnect, "/admin", -1, nil))
	assert.Equal(t, "43/admin,5[]", encodeSocketPacket(sioAck, "/admin", 5, []byte("[]")))
	assert.Equal(t, "431[]", encodeSocketPacket(sioAck, "", 1, []byte("[]")))
}

func TestDecodeEvent(t *testing.T) {
	name, data, err := decodeEvent(json.RawMessage(`["new:order",{"message":"New order","orderNumber":"A100"},"extra"]`))
	require.NoError(t, err)
	assert.Equal(t, "new:order", name)
	assert.JSONEq(t, `{"message":"New order","orderNumber":"A100"}`, string(data))

	name, data, err = decodeEvent(json.RawMessage(`["refresh"]`))
	require.NoError(t, err)
	assert.Equal(t, "refresh", name)
	assert.Equal(t, "null", string(data))

	for _, bad := range []string{`{}`, `[]`, `[1,{}]`, `[""]`} {
		_, _, err := decodeEvent(json.RawMessage(bad))
		assert.Error(t, err, bad)
	}
}

func TestConnectError(t *testing.T) {
	assert.EqualError(t, connectError(json.RawMessage(`{"message":"Not authorized"}`)),
		"event source refused the connection: Not authorized")
	assert.EqualError(t, connectError(json.RawMessage(`"plain"`)),
		`event source refused the connection: "plain"`)
}
