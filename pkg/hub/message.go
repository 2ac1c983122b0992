// Package hub provides a thread-safe websocket broadcast hub using the
// channel-based fan-out pattern. One hub per stream: frame state goes out
// as JSON, the audio monitor as binary packets.
package hub

// MessageType indicates the websocket message format.
type MessageType int

const (
	// JSONMessage is a JSON-encoded message (frame state, status).
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data (opus audio packets).
	BinaryMessage
)

// Message is one payload to fan out to every connected client.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON bytes.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps raw binary data.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
