package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

const writeWait = 5 * time.Second

// client serializa as escritas numa conexão (gorilla não aceita escritas concorrentes)
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas por aposta
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// betID -> conexões inscritas
	subs map[string]map[*client]struct{}
}

// NewHub cria o Hub com a política de origem informada (CORS)
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS mantém a conexão: subscribe/unsubscribe por betId e ping/pong
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn}
	defer func() {
		h.drop(c)
		conn.Close()
	}()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "subscribe":
			if msg.BetID == "" {
				h.reply(c, ServerMsg{Type: "error", Error: "betId required"})
				continue
			}
			h.subscribe(c, msg.BetID)
		case "unsubscribe":
			h.unsubscribe(c, msg.BetID)
		case "ping":
			h.reply(c, ServerMsg{Type: "pong"})
		default:
			h.reply(c, ServerMsg{Type: "error", Error: "unknown message type"})
		}
	}
}

func (h *Hub) subscribe(c *client, betID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[betID]; !ok {
		h.subs[betID] = make(map[*client]struct{})
	}
	h.subs[betID][c] = struct{}{}
}

func (h *Hub) unsubscribe(c *client, betID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[betID]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, betID)
		}
	}
}

// drop remove a conexão de todas as assinaturas
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
}

func (h *Hub) reply(c *client, msg ServerMsg) {
	b, _ := json.Marshal(msg)
	_ = c.write(b)
}

// Subscribers devolve quantas conexões acompanham a aposta
func (h *Hub) Subscribers(betID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[betID])
}

// Broadcast envia a atualização para os inscritos na aposta
func (h *Hub) Broadcast(update events.PoolUpdate) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[update.BetID]))
	for c := range h.subs[update.BetID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, _ := json.Marshal(ServerMsg{Type: "pool", BetID: update.BetID, Payload: &update})
	for _, c := range targets {
		if err := c.write(b); err != nil {
			h.log.Debug("ws write failed", zap.String("betId", update.BetID), zap.Error(err))
		}
	}
}
