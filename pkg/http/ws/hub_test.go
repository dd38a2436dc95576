package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialTestHub runs a minimal server that registers every connection
// under its own id and handles subscribe/unsubscribe messages.
func dialTestHub(t *testing.T, hub *Hub, clientID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConnection(raw, zerolog.Nop())
		hub.Register(clientID, conn)
		go conn.WritePump()
		go func() {
			conn.ReadPump(func(msg Message) error {
				var payload SubscribePayload
				if err := json.Unmarshal(msg.Payload, &payload); err != nil {
					return err
				}
				switch msg.Type {
				case TypeSubscribe:
					hub.Subscribe(payload.RoomID, clientID)
				case TypeUnsubscribe:
					hub.Unsubscribe(payload.RoomID, clientID)
				}
				return nil
			})
			hub.Unregister(clientID)
		}()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func subscribed(hub *Hub, roomID, clientID string) bool {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for _, id := range hub.subscriptions[roomID] {
		if id == clientID {
			return true
		}
	}
	return false
}

func TestBroadcastReachesSubscriber(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := dialTestHub(t, hub, "client-1")

	require.NoError(t, client.WriteJSON(NewMessage(TypeSubscribe, SubscribePayload{RoomID: "room-1"})))
	require.Eventually(t, func() bool {
		return subscribed(hub, "room-1", "client-1")
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom("room-1", NewMessage(TypeRoomUpdate, RoomEventPayload{RoomID: "room-1"}))

	client.SetReadDeadline(time.Now().Add(time.Second))
	var got Message
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, TypeRoomUpdate, got.Type)

	var payload RoomEventPayload
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.Equal(t, "room-1", payload.RoomID)
}

func TestBroadcastSkipsOtherRooms(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := dialTestHub(t, hub, "client-1")

	require.NoError(t, client.WriteJSON(NewMessage(TypeSubscribe, SubscribePayload{RoomID: "room-1"})))
	require.Eventually(t, func() bool {
		return subscribed(hub, "room-1", "client-1")
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom("room-2", NewMessage(TypeRoomUpdate, RoomEventPayload{RoomID: "room-2"}))
	hub.BroadcastToRoom("room-1", NewMessage(TypeRoomUpdate, RoomEventPayload{RoomID: "room-1"}))

	client.SetReadDeadline(time.Now().Add(time.Second))
	var got Message
	require.NoError(t, client.ReadJSON(&got))
	var payload RoomEventPayload
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.Equal(t, "room-1", payload.RoomID, "client must only see its own room")
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := dialTestHub(t, hub, "client-1")

	require.NoError(t, client.WriteJSON(NewMessage(TypeSubscribe, SubscribePayload{RoomID: "room-1"})))
	require.Eventually(t, func() bool {
		return subscribed(hub, "room-1", "client-1")
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, client.WriteJSON(NewMessage(TypeUnsubscribe, SubscribePayload{RoomID: "room-1"})))
	require.Eventually(t, func() bool {
		return !subscribed(hub, "room-1", "client-1")
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom("room-1", NewMessage(TypeRoomUpdate, RoomEventPayload{RoomID: "room-1"}))

	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var got Message
	err := client.ReadJSON(&got)
	assert.Error(t, err, "no message should arrive after unsubscribe")
}

func TestSendOnClosedConnection(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	_ = dialTestHub(t, hub, "client-1")

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, ok := hub.connections["client-1"]
		return ok
	}, time.Second, 10*time.Millisecond)

	hub.mu.RLock()
	conn := hub.connections["client-1"]
	hub.mu.RUnlock()

	conn.Close()
	assert.ErrorIs(t, conn.Send(Message{Type: TypePing}), ErrConnectionClosed)
}
