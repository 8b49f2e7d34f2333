package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"outreach/internal/budget"
	"outreach/internal/core"
	"outreach/internal/log"
	"outreach/internal/store"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// liveMessage is one snapshot of a collection.
type liveMessage struct {
	Collection string `json:"collection"`
	Items      any    `json:"items"`
}

// liveClient is one websocket subscriber. send is never closed so that
// a snapshot pushed after teardown is dropped instead of panicking.
type liveClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *log.Logger
}

func (c *liveClient) enqueue(collection string, items any) {
	raw, err := json.Marshal(liveMessage{Collection: collection, Items: items})
	if err != nil {
		c.logger.Error("Failed to encode snapshot", log.FieldError, err, log.FieldCollection, collection)
		return
	}
	select {
	case <-c.done:
	case c.send <- raw:
	default:
		c.logger.Warn("Live client too slow, snapshot dropped", log.FieldCollection, collection)
	}
}

func (c *liveClient) stop() {
	c.once.Do(func() { close(c.done) })
}

// subscribeCollection wires c to the named collection's feed. Budget
// rows and expenditures are sent in display order.
func subscribeCollection(ctx context.Context, live *store.Live, collection string, c *liveClient) (func(), error) {
	switch collection {
	case store.CollectionOrganizations:
		return live.SubscribeOrganizations(ctx, func(items []core.Organization) {
			c.enqueue(collection, items)
		})
	case store.CollectionPerformances:
		return live.SubscribePerformances(ctx, func(items []core.PerformanceRecord) {
			c.enqueue(collection, items)
		})
	case store.CollectionBudgetItems:
		return live.SubscribeBudgetItems(ctx, func(items []core.BudgetItem) {
			c.enqueue(collection, budget.SortItems(items))
		})
	case store.CollectionExpenditures:
		return live.SubscribeExpenditures(ctx, func(items []core.Expenditure) {
			c.enqueue(collection, budget.SortExpenditures(items))
		})
	}
	return nil, core.ErrNotFound
}

func knownCollection(name string) bool {
	for _, c := range store.Collections() {
		if c == name {
			return true
		}
	}
	return false
}

// handleLive streams every version of a collection over a websocket
// until the client goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if !knownCollection(collection) {
		ErrorResponse(r, core.ErrNotFound, "구독 실패").Write(w)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		s.logger.WarnContext(r.Context(), "Websocket upgrade failed", log.FieldError, err)
		return
	}
	defer conn.Close()

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentLive).
		With(log.FieldCollection, collection)
	c := &liveClient{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	unsubscribe, err := subscribeCollection(ctx, s.deps.Live, collection, c)
	if err != nil {
		logger.Error("Subscription failed", log.FieldError, err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"),
			time.Now().Add(writeWait))
		return
	}
	defer unsubscribe()

	logger.Debug("Live client connected", "subscribers", s.deps.Live.Subscribers(collection))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writePump()
	}()

	c.readPump()
	c.stop()
	wg.Wait()
	logger.Debug("Live client disconnected")
}

// readPump discards client frames and keeps the pong deadline fresh. It
// returns when the connection closes.
func (c *liveClient) readPump() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Unexpected websocket close", log.FieldError, err)
			}
			return
		}
	}
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case raw := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				c.logger.Debug("Websocket write failed", log.FieldError, err)
				c.stop()
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.stop()
				_ = c.conn.Close()
				return
			}
		}
	}
}
