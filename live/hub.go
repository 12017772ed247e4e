package live

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Типы событий, рассылаемых подписчикам турнира.
const (
	EventGamesGenerated      = "GAMES_GENERATED"
	EventTournamentCompleted = "TOURNAMENT_COMPLETED"
	EventGameResultUpdated   = "GAME_RESULT_UPDATED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Event — сообщение для клиентов одной комнаты (турнира).
type Event struct {
	Type         string      `json:"type"`
	TournamentID int         `json:"tournament_id"`
	Payload      interface{} `json:"payload"`
}

type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	tournamentID int
	closed       bool
	mu           sync.Mutex
}

func NewClient(hub *Hub, conn *websocket.Conn, tournamentID int) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, 16),
		tournamentID: tournamentID,
	}
}

// Hub держит подписчиков по комнатам-турнирам и рассылает события.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms map[int]map[*Client]bool
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[int]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.tournamentID]; !ok {
				h.rooms[client.tournamentID] = make(map[*Client]bool)
			}
			h.rooms[client.tournamentID][client] = true
			h.mu.Unlock()
			log.Printf("live: client joined tournament room %d", client.tournamentID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.tournamentID]; ok {
				if _, okClient := room[client]; okClient {
					client.mu.Lock()
					if !client.closed {
						close(client.send)
						client.closed = true
					}
					client.mu.Unlock()
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.tournamentID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("live: client left tournament room %d", client.tournamentID)
		}
	}
}

// NotifyTournament отправляет событие всем подписчикам турнира.
// Отсутствие подписчиков — не ошибка.
func (h *Hub) NotifyTournament(tournamentID int, eventType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[tournamentID]
	if !ok || len(room) == 0 {
		return
	}

	message, err := json.Marshal(Event{
		Type:         eventType,
		TournamentID: tournamentID,
		Payload:      payload,
	})
	if err != nil {
		log.Printf("live: failed to marshal %s event for tournament %d: %v", eventType, tournamentID, err)
		return
	}

	for client := range room {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- message:
		default:
			// Медленный клиент: не блокируем рассылку остальным.
			log.Printf("live: dropping %s event for a slow client in room %d", eventType, tournamentID)
		}
		client.mu.Unlock()
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Клиенты только слушают; входящие сообщения игнорируются.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("live: unexpected close in room %s: %v", strconv.Itoa(c.tournamentID), err)
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("live: write failed in room %d: %v", c.tournamentID, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
