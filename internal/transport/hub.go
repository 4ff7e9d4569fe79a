package transport

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	"github.com/example/planboard/internal/telemetry"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
	// maxMessageSize bounds one inbound envelope. Pen strokes are the largest.
	maxMessageSize = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// peer is one connection registered with the hub.
type peer struct {
	hub     *Hub
	conn    *websocket.Conn
	floorID string
	userID  string
	send    chan []byte
}

type broadcast struct {
	floorID string
	msg     []byte
	sender  *peer
}

// Hub relays envelopes between the connections of each floor. Messages are
// never echoed to their sender.
type Hub struct {
	rooms      map[string]map[*peer]bool
	mu         sync.RWMutex
	register   chan *peer
	unregister chan *peer
	broadcast  chan broadcast
	done       chan struct{}
	once       sync.Once
}

// NewHub returns a hub. Call Run to start relaying.
func NewHub() *Hub {
	return &Hub{
		rooms:      map[string]map[*peer]bool{},
		register:   make(chan *peer),
		unregister: make(chan *peer),
		broadcast:  make(chan broadcast, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done or Close is
// called.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.Close()
			h.shutdown()
			return
		case <-h.done:
			h.shutdown()
			return
		case p := <-h.register:
			h.add(p)
		case p := <-h.unregister:
			h.remove(p)
		case b := <-h.broadcast:
			h.relay(b)
		}
	}
}

// Close stops Run.
func (h *Hub) Close() {
	h.once.Do(func() { close(h.done) })
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	room := h.rooms[p.floorID]
	if room == nil {
		room = map[*peer]bool{}
		h.rooms[p.floorID] = room
	}
	room[p] = true
	n := len(room)
	h.mu.Unlock()
	log.Printf("hub: %s joined floor %s (%d connected)", p.userID, p.floorID, n)
	h.relay(h.notice(TypeJoin, p, p))
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	room, ok := h.rooms[p.floorID]
	if !ok || !room[p] {
		h.mu.Unlock()
		return
	}
	delete(room, p)
	close(p.send)
	if len(room) == 0 {
		delete(h.rooms, p.floorID)
	}
	n := len(room)
	h.mu.Unlock()
	log.Printf("hub: %s left floor %s (%d connected)", p.userID, p.floorID, n)
	h.relay(h.notice(TypeLeave, p, nil))
}

func (h *Hub) notice(t MessageType, p, sender *peer) broadcast {
	msg, _ := json.Marshal(Envelope{Type: t, FloorID: p.floorID, UserID: p.userID})
	return broadcast{floorID: p.floorID, msg: msg, sender: sender}
}

func (h *Hub) relay(b broadcast) {
	h.mu.RLock()
	var slow []*peer
	for p := range h.rooms[b.floorID] {
		if p == b.sender {
			continue
		}
		select {
		case p.send <- b.msg:
		default:
			slow = append(slow, p)
		}
	}
	h.mu.RUnlock()
	for _, p := range slow {
		log.Printf("hub: dropping slow connection %s", p.userID)
		h.remove(p)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for p := range room {
			close(p.send)
		}
	}
	h.rooms = map[string]map[*peer]bool{}
}

// Connected returns the user ids connected to floorID.
func (h *Hub) Connected(floorID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.rooms[floorID]))
	for p := range h.rooms[floorID] {
		out = append(out, p.userID)
	}
	return out
}

// ServeHTTP upgrades a request on /ws/floors/{floorID}. The user id comes
// from the "user" query parameter; a random one is assigned when absent.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	floorID := mux.Vars(r)["floorID"]
	if floorID == "" {
		http.Error(w, "missing floor id", http.StatusBadRequest)
		return
	}
	userID := r.URL.Query().Get("user")
	if userID == "" {
		userID = uuid.NewString()
	}
	ctx, span := telemetry.StartSpan(r.Context(), "ws.connect",
		attribute.String("floor.id", floorID), attribute.String("user.id", userID))
	defer span.End()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		telemetry.SpanError(ctx, err)
		return
	}
	p := &peer{hub: h, conn: conn, floorID: floorID, userID: userID, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- p:
	case <-h.done:
		conn.Close()
		return
	}
	go p.writePump()
	go p.readPump()
}

func (p *peer) readPump() {
	defer func() {
		select {
		case p.hub.unregister <- p:
		case <-p.hub.done:
		}
		p.conn.Close()
	}()
	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read: %v", err)
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("ws decode: %v", err)
			continue
		}
		if env.Type == TypeJoin || env.Type == TypeLeave {
			continue
		}
		env.FloorID = p.floorID
		env.UserID = p.userID
		msg, err := json.Marshal(env)
		if err != nil {
			log.Printf("ws encode: %v", err)
			continue
		}
		select {
		case p.hub.broadcast <- broadcast{floorID: p.floorID, msg: msg, sender: p}:
		case <-p.hub.done:
			return
		}
	}
}

func (p *peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
