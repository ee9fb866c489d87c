package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Clients map[string]map[*websocket.Conn]*Client // Theo từng lessonID
	Mutex   sync.RWMutex
}

var H = Hub{
	Clients: make(map[string]map[*websocket.Conn]*Client),
}

// Struct gửi trạng thái job nền của 1 lesson (audio, ảnh, recap)
type LessonStatusUpdate struct {
	LessonID uint   `json:"lesson_id"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Register theo lessonID riêng
func (h *Hub) Register(lessonID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[lessonID]; !ok {
		h.Clients[lessonID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Clients[lessonID][conn] = client

	go h.readPump(lessonID, conn)
	go h.writePump(lessonID, conn)
}

// Broadcast theo lessonID
func (h *Hub) Broadcast(lessonID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[lessonID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// Unregister client theo lessonID
func (h *Hub) Unregister(lessonID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[lessonID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, lessonID)
		}
	}
}

func (h *Hub) readPump(lessonID string, conn *websocket.Conn) {
	defer h.Unregister(lessonID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writePump(lessonID string, conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.Clients[lessonID][conn]
	h.Mutex.RUnlock()
	if client == nil {
		return
	}
	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// GetStats trả về số lesson đang có client theo dõi và tổng số kết nối
func (h *Hub) GetStats() (lessons int, connections int) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, clients := range h.Clients {
		connections += len(clients)
	}
	return len(h.Clients), connections
}

// SendLessonStatus đẩy trạng thái job nền tới các client đang theo dõi lesson
func SendLessonStatus(lessonID uint, kind, status, errorMsg string) {
	update := LessonStatusUpdate{
		LessonID: lessonID,
		Kind:     kind,
		Status:   status,
		Error:    errorMsg,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(fmt.Sprintf("%d", lessonID), data)
}
