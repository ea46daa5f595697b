// Package ws pushes status board changes to connected display screens.
package ws

import (
	"log"
	"net/http"
	"sync"

	"garage-backend/internal/models"

	"github.com/gorilla/websocket"
)

// The board is public, so any origin may connect
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StatusHub fans one estimate status change out to every connected client.
// It satisfies the estimate service's notifier interface.
type StatusHub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan models.StatusBoardRow

	// snapshot supplies the full board for newly connected clients
	snapshot func() []models.StatusBoardRow
}

func NewStatusHub(snapshot func() []models.StatusBoardRow) *StatusHub {
	h := &StatusHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan models.StatusBoardRow, 16),
		snapshot:  snapshot,
	}
	go h.run()
	return h
}

// BroadcastStatus queues one changed row for delivery. Non-blocking: a slow
// display must not hold up the dashboard's status update.
func (h *StatusHub) BroadcastStatus(row models.StatusBoardRow) {
	select {
	case h.broadcast <- row:
	default:
		log.Println("[WS] Broadcast queue full, dropping status update")
	}
}

// boardMessage is the wire envelope so clients can tell a full snapshot
// from an incremental update.
type boardMessage struct {
	Type string                  `json:"type"` // "snapshot" or "update"
	Rows []models.StatusBoardRow `json:"rows,omitempty"`
	Row  *models.StatusBoardRow  `json:"row,omitempty"`
}

// HandleConnection upgrades the request and keeps the socket registered
// until the client goes away.
func (h *StatusHub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[WS] Upgrade error:", err)
		return
	}
	defer conn.Close()

	if h.snapshot != nil {
		if err := conn.WriteJSON(boardMessage{Type: "snapshot", Rows: h.snapshot()}); err != nil {
			return
		}
	}

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			break
		}
	}
}

func (h *StatusHub) run() {
	for row := range h.broadcast {
		msg := boardMessage{Type: "update", Row: &row}
		h.clientsMux.Lock()
		for client := range h.clients {
			if err := client.WriteJSON(msg); err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.clientsMux.Unlock()
	}
}
