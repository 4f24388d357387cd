package wsproto

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pulsehq/pulse-core/query"
)

// connState is the connection-level state table of spec §4.7.
type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateReady
	stateClosed
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// entry is one active subscription multiplexed over the shared socket.
type entry struct {
	req        query.Request
	onData     func(data any)
	onError    func(err error)
	onComplete func()
}

// Client is a single graphql-ws connection multiplexing every
// subscription a query.Client opens through it over one socket, grounded
// on the read-pump/write-pump/ping-pong pattern of a chat hub connection
// generalized from fan-out broadcast to per-id dispatch.
type Client struct {
	url    string
	header http.Header

	mu      sync.Mutex
	state   connState
	conn    *websocket.Conn
	sendCh  chan []byte
	subs    map[string]*entry
	pending []Frame // subscribe frames queued while not yet ready

	nextID int

	logger *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// Dial opens a graphql-ws connection to url and starts its pumps. The
// dial itself is synchronous; connection_init/connection_ack handshaking
// happens asynchronously and gates queued subscribe frames.
func Dial(url string, header http.Header) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return nil, fmt.Errorf("wsproto: dial: %w", err)
	}

	c := &Client{
		url:    url,
		header: header,
		state:  stateConnecting,
		conn:   conn,
		sendCh: make(chan []byte, 256),
		subs:   make(map[string]*entry),
		logger: slog.Default(),
		done:   make(chan struct{}),
	}

	go c.writePump()
	go c.readPump()

	c.send(TypeConnectionInit, "", nil)

	return c, nil
}

// Subscribe implements query.SubscriptionTransport: it registers
// callbacks under a fresh id and either sends the subscribe frame
// immediately (ready) or queues it until connection_ack arrives.
func (c *Client) Subscribe(req query.Request, onData func(data any), onError func(err error), onComplete func()) query.SubscriptionHandle {
	c.mu.Lock()
	c.nextID++
	id := fmt.Sprintf("%d", c.nextID)
	c.subs[id] = &entry{req: req, onData: onData, onError: onError, onComplete: onComplete}

	frame := Frame{Type: TypeSubscribe, ID: id}
	payload, _ := json.Marshal(SubscribePayload{
		Query:         req.Query,
		Variables:     req.Variables,
		OperationName: req.OperationName,
	})
	frame.Payload = payload

	ready := c.state == stateReady
	if !ready {
		c.pending = append(c.pending, frame)
	}
	c.mu.Unlock()

	if ready {
		c.sendFrame(frame)
	}

	return &handle{client: c, id: id}
}

// handle is the query.SubscriptionHandle Subscribe returns.
type handle struct {
	client *Client
	id     string
}

func (h *handle) Unsubscribe() { h.client.unsubscribe(h.id) }

func (c *Client) unsubscribe(id string) {
	c.mu.Lock()
	_, ok := c.subs[id]
	delete(c.subs, id)
	connected := c.state == stateReady
	c.mu.Unlock()

	if ok && connected {
		c.send(TypeComplete, id, nil)
	}
}

// Close tears down the socket; every active subscription's onError fires
// with code SUBSCRIPTION_ERROR (spec §4.7 "closed ... notifies every
// active subscription's onError"). sendCh is never closed — only done is —
// since send/sendFrame can race Close from another goroutine; closing the
// channel they write to would panic, while closing done just makes their
// select's other arm ready and lets writePump's own done case return it.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = stateClosed
		subs := c.subs
		c.subs = make(map[string]*entry)
		c.mu.Unlock()

		close(c.done)
		_ = c.conn.Close()

		for _, sub := range subs {
			if sub.onError != nil {
				sub.onError(query.NewError(query.CodeSubscriptionError, "connection closed", nil))
			}
		}
	})
}

func (c *Client) send(frameType, id string, payload any) {
	encoded, err := encodeFrame(frameType, id, payload)
	if err != nil {
		c.logger.Error("wsproto: encode frame", "type", frameType, "error", err)
		return
	}
	select {
	case c.sendCh <- encoded:
	case <-c.done:
	}
}

func (c *Client) sendFrame(f Frame) {
	encoded, err := json.Marshal(f)
	if err != nil {
		c.logger.Error("wsproto: encode frame", "type", f.Type, "error", err)
		return
	}
	select {
	case c.sendCh <- encoded:
	case <-c.done:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.sendCh:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleFrame(data)
	}
}

func (c *Client) handleFrame(data []byte) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.logger.Error("wsproto: invalid frame", "error", err)
		return
	}

	switch frame.Type {
	case TypeConnectionAck:
		c.onReady()

	case TypePing:
		c.send(TypePong, "", nil)

	case TypePong:
		// heartbeat response, nothing to do

	case TypeNext:
		c.dispatch(frame.ID, func(e *entry) {
			var payload NextPayload
			if err := json.Unmarshal(frame.Payload, &payload); err != nil {
				return
			}
			var data any
			_ = json.Unmarshal(payload.Data, &data)
			if e.onData != nil {
				e.onData(data)
			}
		})

	case TypeError:
		c.dispatch(frame.ID, func(e *entry) {
			if e.onError != nil {
				e.onError(query.NewError(query.CodeSubscriptionError, string(frame.Payload), nil))
			}
		})

	case TypeComplete:
		c.mu.Lock()
		e, ok := c.subs[frame.ID]
		delete(c.subs, frame.ID)
		c.mu.Unlock()
		if ok && e.onComplete != nil {
			e.onComplete()
		}

	default:
		c.logger.Warn("wsproto: unknown frame type", "type", frame.Type)
	}
}

func (c *Client) dispatch(id string, fn func(*entry)) {
	c.mu.Lock()
	e, ok := c.subs[id]
	c.mu.Unlock()
	if ok {
		fn(e)
	}
}

// onReady flushes every subscribe frame queued while the handshake was
// in flight (spec §4.7 "flushes queued subscribe frames; subsequent
// subscribes go direct").
func (c *Client) onReady() {
	c.mu.Lock()
	c.state = stateReady
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, frame := range pending {
		c.sendFrame(frame)
	}
}
