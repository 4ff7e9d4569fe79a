package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/ephemeral"
)

// Client is one participant's connection to a hub. It implements the board's
// outbound Transport and feeds inbound messages to a Receiver.
type Client struct {
	conn    *websocket.Conn
	floorID string
	userID  string
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// FloorURL returns the WebSocket URL of floorID on the server at base, which
// may use an http, https, ws or wss scheme.
func FloorURL(base, floorID, userID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws", "":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/floors/" + url.PathEscape(floorID)
	q := u.Query()
	q.Set("user", userID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial connects to floorID on the server at base.
func Dial(ctx context.Context, base, floorID, userID string) (*Client, error) {
	addr, err := FloorURL(base, floorID, userID)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{
		conn:    conn,
		floorID: floorID,
		userID:  userID,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}, nil
}

// Listen starts the read and write pumps. Inbound messages are passed to r
// from the read goroutine.
func (c *Client) Listen(r Receiver) {
	c.wg.Add(2)
	go c.writePump()
	go c.readPump(r)
}

// Close shuts the connection and waits for the pumps to exit.
func (c *Client) Close() error {
	c.once.Do(func() { close(c.done) })
	c.wg.Wait()
	return c.conn.Close()
}

func (c *Client) readPump(r Receiver) {
	defer c.wg.Done()
	defer c.once.Do(func() { close(c.done) })
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPingHandler(func(data string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return c.conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("ws read: %v", err)
				}
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("ws decode: %v", err)
			continue
		}
		if r == nil {
			continue
		}
		if err := Dispatch(env, r); err != nil {
			log.Printf("ws dispatch: %v", err)
		}
	}
}

func (c *Client) writePump() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			// Unblock the read pump.
			c.conn.SetReadDeadline(time.Now())
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("ws write: %v", err)
				c.once.Do(func() { close(c.done) })
				c.conn.SetReadDeadline(time.Now())
				return
			}
		}
	}
}

func (c *Client) emit(t MessageType, payload any) {
	env, err := NewEnvelope(t, c.floorID, c.userID, payload)
	if err != nil {
		log.Printf("ws emit: %v", err)
		return
	}
	msg, err := json.Marshal(env)
	if err != nil {
		log.Printf("ws emit: %v", err)
		return
	}
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		log.Printf("ws emit: send buffer full, dropping %s", t)
	}
}

func (c *Client) EmitCursor(cur ephemeral.Cursor) { c.emit(TypeCursor, cur) }

func (c *Client) EmitLaser(s ephemeral.Stroke, final bool) {
	if final {
		c.emit(TypeLaserEnd, s)
		return
	}
	c.emit(TypeLaser, s)
}

func (c *Client) EmitCreated(d drawing.Draw) { c.emit(TypeDrawCreated, d) }

func (c *Client) EmitUpdated(id string, p drawing.Patch) {
	c.emit(TypeDrawUpdated, DrawUpdated{ID: id, Patch: p})
}

func (c *Client) EmitDeleted(ids []string) { c.emit(TypeDrawDeleted, DrawDeleted{IDs: ids}) }
