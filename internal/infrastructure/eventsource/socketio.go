package eventsource

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Engine.IO v4 packet types, the first byte of every websocket frame
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
	eioNoop    = '6'
)

// Socket.IO v5 packet types, the byte after an Engine.IO message
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioAck          = '3'
	sioConnectError = '4'
	sioBinaryEvent  = '5'
	sioBinaryAck    = '6'
)

const defaultNamespace = "/"

var (
	// ErrServerDisconnect is returned when the server closes the namespace or the session
	ErrServerDisconnect = errors.New("event source closed the session")
	errEmptyPacket      = errors.New("empty packet")
)

// openPacket is the Engine.IO handshake payload. Durations are milliseconds.
type openPacket struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

// heartbeat is how long the connection may stay silent before it is considered dead
func (p openPacket) heartbeat() time.Duration {
	return time.Duration(p.PingInterval+p.PingTimeout) * time.Millisecond
}

func parseOpenPacket(frame string) (openPacket, error) {
	var open openPacket
	if frame == "" || frame[0] != eioOpen {
		return open, fmt.Errorf("expected engine.io open packet, got %q", truncate(frame))
	}
	if err := json.Unmarshal([]byte(frame[1:]), &open); err != nil {
		return open, fmt.Errorf("invalid engine.io open packet: %w", err)
	}
	if open.PingInterval <= 0 || open.PingTimeout <= 0 {
		return open, fmt.Errorf("engine.io open packet without heartbeat settings: %q", truncate(frame))
	}
	return open, nil
}

// socketPacket is one Socket.IO packet carried in an Engine.IO message
type socketPacket struct {
	Type      byte
	Namespace string
	// AckID is -1 when the sender expects no acknowledgement
	AckID   int
	Payload json.RawMessage
}

// parseSocketPacket decodes "<type>[<attachments>-][<nsp>,][<ack id>][<json>]"
func parseSocketPacket(data string) (socketPacket, error) {
	p := socketPacket{Namespace: defaultNamespace, AckID: -1}
	if data == "" {
		return p, errEmptyPacket
	}
	p.Type = data[0]
	if p.Type < sioConnect || p.Type > sioBinaryAck {
		return p, fmt.Errorf("unknown socket.io packet type %q", p.Type)
	}
	rest := data[1:]

	if p.Type == sioBinaryEvent || p.Type == sioBinaryAck {
		dash := strings.IndexByte(rest, '-')
		if dash < 0 {
			return p, fmt.Errorf("binary packet without attachment count: %q", truncate(data))
		}
		rest = rest[dash+1:]
	}

	if strings.HasPrefix(rest, "/") {
		comma := strings.IndexByte(rest, ',')
		if comma < 0 {
			p.Namespace, rest = rest, ""
		} else {
			p.Namespace, rest = rest[:comma], rest[comma+1:]
		}
	}

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		id, err := strconv.Atoi(rest[:digits])
		if err != nil {
			return p, fmt.Errorf("invalid ack id in %q: %w", truncate(data), err)
		}
		p.AckID = id
		rest = rest[digits:]
	}

	if rest != "" {
		p.Payload = json.RawMessage(rest)
	}
	return p, nil
}

// encodeSocketPacket builds the Engine.IO message frame for a Socket.IO packet
func encodeSocketPacket(typ byte, namespace string, ackID int, payload []byte) string {
	var b strings.Builder
	b.WriteByte(eioMessage)
	b.WriteByte(typ)
	if namespace != "" && namespace != defaultNamespace {
		b.WriteString(namespace)
		b.WriteByte(',')
	}
	if ackID >= 0 {
		b.WriteString(strconv.Itoa(ackID))
	}
	b.Write(payload)
	return b.String()
}

// decodeEvent splits an EVENT payload ["name", arg, ...] into the name and its first argument
func decodeEvent(payload json.RawMessage) (string, json.RawMessage, error) {
	var args []json.RawMessage
	if err := json.Unmarshal(payload, &args); err != nil {
		return "", nil, fmt.Errorf("event payload is not an array: %w", err)
	}
	if len(args) == 0 {
		return "", nil, errors.New("event payload without a name")
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil || name == "" {
		return "", nil, fmt.Errorf("event name must be a non-empty string, got %s", truncate(string(args[0])))
	}
	if len(args) == 1 {
		return name, json.RawMessage("null"), nil
	}
	return name, args[1], nil
}

// connectError extracts the message of a CONNECT_ERROR payload
func connectError(payload json.RawMessage) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Message == "" {
		return fmt.Errorf("event source refused the connection: %s", truncate(string(payload)))
	}
	return fmt.Errorf("event source refused the connection: %s", body.Message)
}

func truncate(s string) string {
	const limit = 64
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
