package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/ruralfund-backend/internal/logger"
)

const (
	EventInvestmentStatusChanged = "investment_status_changed"
	EventProjectReviewed         = "project_reviewed"
)

// Hub держит подключения, сгруппированные по владельцу токена.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
}

type message struct {
	userID  uuid.UUID
	payload []byte
}

// Envelope задаёт формат сообщения, которое получает клиент.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		done:       make(chan struct{}),
	}
}

// Run обслуживает хаб до отмены ctx, после чего закрывает все подключения.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.userID, msg.payload)
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToUser ставит событие в очередь доставки. Доставка best-effort:
// при переполненной очереди событие отбрасывается.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event string, data interface{}) error {
	raw, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case <-h.done:
		return fmt.Errorf("ws: хаб остановлен")
	default:
	}

	select {
	case h.broadcast <- message{userID: userID, payload: raw}:
		return nil
	default:
		logger.Entry(logrus.Fields{"user_id": userID, "event": event}).Warn("ws: очередь переполнена, событие отброшено")
		return nil
	}
}

// Connected возвращает число активных подключений пользователя.
func (h *Hub) Connected(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, present := clients[client]; present {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// медленный клиент отключается
			delete(h.clients[userID], client)
			close(client.send)
		}
	}
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, userID)
	}
}
