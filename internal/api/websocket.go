package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WebSocket message types for plan change notifications
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected       = "connected"
	MsgTypeDocumentChanged = "document:changed"
	MsgTypeError           = "error"
	MsgTypePong            = "pong"
)

// clientSendBuffer is how many messages may queue for a slow client before
// it is dropped
const clientSendBuffer = 64

// WebSocket message structure
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// DocumentChangedPayload tells clients which operation changed the plan
type DocumentChangedPayload struct {
	PlanID string `json:"planId"`
	Op     string `json:"op"`
}

// WebSocket error response
type WSErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage
}

// Hub fans plan change notifications out to the WebSocket clients
// watching each plan
type Hub struct {
	plans          PlanManager
	upgrader       websocket.Upgrader
	maxMessageSize int64

	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{}
}

// NewHub creates a hub. maxMessageSize bounds client messages in bytes.
func NewHub(plans PlanManager, maxMessageSize int64) *Hub {
	if maxMessageSize <= 0 {
		maxMessageSize = 64 * 1024
	}
	return &Hub{
		plans: plans,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  64 * 1024, // 64KB read buffer
			WriteBufferSize: 64 * 1024, // 64KB write buffer
		},
		maxMessageSize: maxMessageSize,
		clients:        make(map[string]map[*wsClient]struct{}),
	}
}

// HandleWebSocket upgrades the connection and streams change notifications
// for the plan in the path
func (h *Hub) HandleWebSocket(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	planID := p.ID()

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	ws.SetReadLimit(h.maxMessageSize)

	client := &wsClient{conn: ws, send: make(chan WSMessage, clientSendBuffer)}
	h.register(planID, client)
	fmt.Printf("[WebSocket] Client connected to plan %s\n", planID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(client)
	}()

	client.send <- WSMessage{
		Type:      MsgTypeConnected,
		ID:        planID,
		Timestamp: time.Now().UnixMilli(),
	}

	// Main message loop
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("[WebSocket] Connection error: %v\n", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			// Respond with pong to keep connection alive
			h.enqueue(client, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		default:
			h.enqueue(client, errorMessage("Unknown message type: "+msg.Type, "INVALID_TYPE"))
		}
	}

	h.unregister(planID, client)
	<-done
	ws.Close()
	fmt.Printf("[WebSocket] Client disconnected from plan %s\n", planID)
	return nil
}

// Notify sends a document:changed message to every client of planID
func (h *Hub) Notify(planID, op string) {
	msg := WSMessage{
		Type:      MsgTypeDocumentChanged,
		ID:        planID,
		Payload:   mustJSON(DocumentChangedPayload{PlanID: planID, Op: op}),
		Timestamp: time.Now().UnixMilli(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[planID] {
		h.enqueue(client, msg)
	}
}

// ClientCount returns the number of clients watching planID
func (h *Hub) ClientCount(planID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[planID])
}

func (h *Hub) register(planID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[planID] == nil {
		h.clients[planID] = make(map[*wsClient]struct{})
	}
	h.clients[planID][client] = struct{}{}
}

// unregister removes the client and closes its queue, ending its write loop.
func (h *Hub) unregister(planID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[planID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, planID)
	}
	close(client.send)
}

// enqueue never blocks; a client whose queue is full misses the message.
func (h *Hub) enqueue(client *wsClient, msg WSMessage) {
	select {
	case client.send <- msg:
	default:
		fmt.Println("[WebSocket] Client queue full, dropping message")
	}
}

func (h *Hub) writeLoop(client *wsClient) {
	for msg := range client.send {
		if err := client.conn.WriteJSON(msg); err != nil {
			fmt.Printf("[WebSocket] Failed to send message: %v\n", err)
			// Unblock the read loop
			client.conn.Close()
			for range client.send {
			}
			return
		}
	}
}

func errorMessage(message, code string) WSMessage {
	return WSMessage{
		Type:      MsgTypeError,
		Timestamp: time.Now().UnixMilli(),
		Payload: mustJSON(WSErrorResponse{
			Type:    MsgTypeError,
			Message: message,
			Code:    code,
		}),
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
