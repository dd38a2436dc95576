package ws

import "encoding/json"

// MessageType constants for the room-events WebSocket protocol.
const (
	// Client -> Server
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"

	// Server -> Client
	TypeRoomUpdate   = "room_update"
	TypeGameStarted  = "game_started"
	TypeAnswerResult = "answer_result"
	TypeNextQuestion = "next_question"
	TypeGameOver     = "game_over"
	TypeError        = "error"
	TypePing         = "ping"
	TypePong         = "pong"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribePayload asks for events of one room.
type SubscribePayload struct {
	RoomID string `json:"room_id"`
}

// RoomEventPayload carries room lifecycle events. Data holds the
// event-specific document (room snapshot, question, final result).
type RoomEventPayload struct {
	RoomID string          `json:"room_id"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ErrorPayload reports a protocol error to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage marshals payload into a typed message. Marshaling failures
// degrade to a payload-less message rather than dropping the event.
func NewMessage(msgType string, payload interface{}) Message {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{Type: msgType}
	}
	return Message{Type: msgType, Payload: data}
}
