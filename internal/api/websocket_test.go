package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastsDocumentChanges(t *testing.T) {
	plans := newTestPlans()
	hub := NewHub(plans, 0)
	plans.OnChange(hub.Notify)

	e := echo.New()
	SetupMiddleware(e)
	handlers := NewHandlers(&Dependencies{Plans: plans, Hub: hub})
	RegisterWebSocketRoutes(e, handlers)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/plans/party/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg WSMessage
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, MsgTypeConnected, msg.Type)
	assert.Equal(t, "party", msg.ID)
	assert.Equal(t, 1, hub.ClientCount("party"))

	// Changes to other plans are not delivered
	openTestPlan(t, plans, "other").AddGuest("Zed", "")

	p := openTestPlan(t, plans, "party")
	p.AddGuest("Ana", "")

	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, MsgTypeDocumentChanged, msg.Type)
	var payload DocumentChangedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, DocumentChangedPayload{PlanID: "party", Op: "addGuest"}, payload)

	require.NoError(t, ws.WriteJSON(WSMessage{Type: MsgTypePing}))
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, MsgTypePong, msg.Type)

	require.NoError(t, ws.WriteJSON(WSMessage{Type: "bogus"}))
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, MsgTypeError, msg.Type)
}

func TestHubRejectsInvalidPlanID(t *testing.T) {
	hub := NewHub(newTestPlans(), 0)
	c, _ := newContext("GET", "/", "", "planId", "not valid")
	requireAPIError(t, hub.HandleWebSocket(c), "VALIDATION_ERROR")
}
