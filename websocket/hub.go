package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"newsdesk/auth"
	"newsdesk/logger"
	"newsdesk/models"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// FollowerSource resolves the followers of a post author.
type FollowerSource interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}

type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

type Message struct {
	Type    string `json:"type"`
	PostID  string `json:"postId,omitempty"`
	Title   string `json:"title,omitempty"`
	AdminID string `json:"adminId,omitempty"`
	UserID  string `json:"userId,omitempty"`
	Time    int64  `json:"time,omitempty"`
}

type delivery struct {
	userIDs []primitive.ObjectID
	payload []byte
}

// Hub tracks live reader connections and pushes notifications to the
// followers of an author when one of their posts goes live.
type Hub struct {
	clients    map[primitive.ObjectID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	admins     FollowerSource
	mu         sync.RWMutex
}

type Client struct {
	conn   *websocket.Conn
	userID primitive.ObjectID
	send   chan []byte
	hub    *Hub
}

func NewHub(admins FollowerSource) *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery),
		done:       make(chan struct{}),
		admins:     admins,
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()
			logger.Log.Debug("WebSocket client registered", zap.String("userID", client.userID.Hex()))

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.deliver:
			h.mu.Lock()
			for _, id := range d.userIDs {
				for client := range h.clients[id] {
					select {
					case client.send <- d.payload:
					default:
						h.removeLocked(client)
					}
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	h.removeLocked(client)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

// ConnectedUsers counts distinct users with at least one open connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) PostPublished(ctx context.Context, post *models.Post) error {
	admin, err := h.admins.FindByID(ctx, post.CreatedBy)
	if err != nil {
		return err
	}
	if len(admin.Followers) == 0 {
		return nil
	}

	payload, err := json.Marshal(Message{
		Type:    "post_published",
		PostID:  post.ID.Hex(),
		Title:   post.Title,
		AdminID: post.CreatedBy.Hex(),
	})
	if err != nil {
		return err
	}

	select {
	case h.deliver <- delivery{userIDs: admin.Followers, payload: payload}:
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (h *Hub) PostDeleted(context.Context, *models.Post) error {
	return nil
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades a reader connection authenticated by the token query parameter.
func (h *Hub) Handler(tokens TokenParser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "Token required", http.StatusUnauthorized)
			return
		}
		identity, err := tokens.Parse(token)
		if err != nil || identity.Role != auth.RoleUser {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Log.Warn("WebSocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			conn:   conn,
			userID: identity.ID,
			send:   make(chan []byte, sendBuffer),
			hub:    h,
		}

		// Queued directly: trySend drops frames until Run has stored the client.
		welcome, _ := json.Marshal(Message{Type: "connected", UserID: identity.ID.Hex(), Time: time.Now().Unix()})
		client.send <- welcome

		select {
		case h.register <- client:
		case <-h.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			pong, _ := json.Marshal(Message{Type: "pong", Time: time.Now().Unix()})
			c.trySend(pong)
		}
	}
}

// trySend queues data unless the hub has already closed the channel.
func (c *Client) trySend(data []byte) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c.userID][c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) writePump() {
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
