package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Progress message types
const (
	MsgPassStarted   MessageType = "pass_started"
	MsgPassCompleted MessageType = "pass_completed"
	MsgReportReady   MessageType = "report_ready"
	MsgReportFailed  MessageType = "report_failed"
	MsgError         MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for report progress watchers
type Hub struct {
	// Partnership -> connections
	watchers map[string]map[*Connection]bool

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	PartnershipID string
	Send          chan []byte
	Hub           *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	PartnershipID string
	Message       *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		watchers:   make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.watchers[conn.PartnershipID] == nil {
				h.watchers[conn.PartnershipID] = make(map[*Connection]bool)
			}
			h.watchers[conn.PartnershipID][conn] = true
			log.Printf("Watcher connected for partnership %s", conn.PartnershipID)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.watchers[conn.PartnershipID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					log.Printf("Watcher disconnected from partnership %s", conn.PartnershipID)
				}
				if len(conns) == 0 {
					delete(h.watchers, conn.PartnershipID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if conns, ok := h.watchers[msg.PartnershipID]; ok {
				for conn := range conns {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastProgress sends a message to all watchers of a partnership (implements service.Broadcaster)
func (h *Hub) BroadcastProgress(partnershipID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		PartnershipID: partnershipID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
