package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains the set of connected clients and fans room events out to the
// clients subscribed to each room. Events originate from the HTTP handlers
// (chat messages, participants joining and leaving, meeting start/end); the
// hub itself never touches the database.
type Hub struct {
	// Connected clients
	clients map[*Client]bool

	// Rooms mapping (room code -> subscribed clients)
	rooms map[string]map[*Client]bool

	// Mutex for rooms map
	roomsMux sync.RWMutex

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// Event is the message shape pushed to subscribers
type Event struct {
	Type     string      `json:"type"`
	RoomCode string      `json:"room_code"`
	Payload  interface{} `json:"payload"`
}

// NewHub creates a new hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				// Remove client from all rooms
				h.roomsMux.Lock()
				for roomCode, clients := range h.rooms {
					if _, ok := clients[client]; ok {
						delete(h.rooms[roomCode], client)
						// Clean up empty rooms
						if len(h.rooms[roomCode]) == 0 {
							delete(h.rooms, roomCode)
						}
					}
				}
				h.roomsMux.Unlock()
			}
		}
	}
}

// subscribe adds a client to a room's audience
func (h *Hub) subscribe(client *Client, roomCode string) {
	h.roomsMux.Lock()
	defer h.roomsMux.Unlock()

	if _, ok := h.rooms[roomCode]; !ok {
		h.rooms[roomCode] = make(map[*Client]bool)
	}
	h.rooms[roomCode][client] = true
}

// unsubscribe removes a client from a room's audience
func (h *Hub) unsubscribe(client *Client, roomCode string) {
	h.roomsMux.Lock()
	defer h.roomsMux.Unlock()

	if _, ok := h.rooms[roomCode]; ok {
		delete(h.rooms[roomCode], client)
		// Clean up empty rooms
		if len(h.rooms[roomCode]) == 0 {
			delete(h.rooms, roomCode)
		}
	}
}

// broadcastToRoom sends a raw message to every client subscribed to the room
func (h *Hub) broadcastToRoom(roomCode string, message []byte) {
	h.roomsMux.RLock()
	defer h.roomsMux.RUnlock()

	if clients, ok := h.rooms[roomCode]; ok {
		for client := range clients {
			select {
			case client.send <- message:
			default:
				close(client.send)
				delete(clients, client)
				delete(h.clients, client)
			}
		}
	}
}

// BroadcastToRoom publishes a room event to all subscribers of that room
func BroadcastToRoom(roomCode string, eventType string, payload interface{}) {
	event := Event{
		Type:     eventType,
		RoomCode: roomCode,
		Payload:  payload,
	}

	msgBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("error marshaling event: %v", err)
		return
	}

	hub.broadcastToRoom(roomCode, msgBytes)
}

// Global hub instance
var hub *Hub

// InitHub initializes the global hub
func InitHub() {
	hub = NewHub()
	go hub.Run()
}
