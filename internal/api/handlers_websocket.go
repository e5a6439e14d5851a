package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are restricted by the CORS middleware
		return true
	},
}

// HandleWebSocket handles WebSocket connections for model change events
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Printf("WebSocket upgrade error: %v", err)
		return err
	}

	client := &Client{
		hub:  s.wsHub,
		conn: ws,
		send: make(chan []byte, 256),
	}

	select {
	case client.hub.register <- client:
	case <-client.hub.done:
		_ = ws.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()

	return nil
}

// GetWebSocketStats returns WebSocket connection statistics
func (s *Server) GetWebSocketStats(c echo.Context) error {
	stats := map[string]interface{}{
		"connected_clients": s.wsHub.ClientCount(),
		"status":            "operational",
	}
	return c.JSON(http.StatusOK, stats)
}
