package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	httperrors "github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/pkg/http/errors"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/pkg/http/ws"
)

// WSUpgrader handles WebSocket upgrades (configure CORS/security as needed).
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: implement proper origin checking for production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// HandleWebSocket upgrades GET /ws/rooms and serves the room-events
// protocol: clients subscribe to room ids and receive lifecycle events.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	clientID := uuid.NewString()
	conn := ws.NewConnection(wsConn, h.logger.With().Str("client_id", clientID).Logger())
	h.hub.Register(clientID, conn)

	go conn.WritePump()
	conn.ReadPump(func(msg ws.Message) error {
		return h.handleWSMessage(clientID, conn, msg)
	})
	h.hub.Unregister(clientID)
}

func (h *Handlers) handleWSMessage(clientID string, conn *ws.Connection, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeSubscribe:
		var payload ws.SubscribePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.RoomID == "" {
			return conn.Send(ws.NewMessage(ws.TypeError, ws.ErrorPayload{
				Code:    httperrors.ErrCodeInvalidPayload,
				Message: "subscribe requires a room_id",
			}))
		}
		// Send the current snapshot so late subscribers are not blind
		// until the next event.
		h.hub.Subscribe(payload.RoomID, clientID)
		if room, err := h.engine.GetGameState(payload.RoomID); err == nil {
			data, _ := json.Marshal(room)
			return conn.Send(ws.NewMessage(ws.TypeRoomUpdate, ws.RoomEventPayload{
				RoomID: payload.RoomID,
				Data:   data,
			}))
		}
		return nil

	case ws.TypeUnsubscribe:
		var payload ws.SubscribePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.RoomID == "" {
			return nil
		}
		h.hub.Unsubscribe(payload.RoomID, clientID)
		return nil

	case ws.TypePing:
		return conn.Send(ws.NewMessage(ws.TypePong, nil))

	default:
		return conn.Send(ws.NewMessage(ws.TypeError, ws.ErrorPayload{
			Code:    httperrors.ErrCodeInvalidPayload,
			Message: "unknown message type",
		}))
	}
}
