package events

import (
	"io"
	"net/http"
	"time"

	"splitters/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Subscriber is the part of store.Store the push endpoints need.
type Subscriber interface {
	Subscribe() (<-chan store.Event, func())
	Version() uint64
}

type EventsHandler struct {
	store     Subscriber
	log       *zap.Logger
	upgrader  websocket.Upgrader
	keepAlive time.Duration
}

func NewEventsHandler(s Subscriber, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		store: s,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		keepAlive: 30 * time.Second,
	}
}

func (h *EventsHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/events", h.Stream)
	router.GET("/ws", h.WebSocket)
}

// Stream pushes a "version" server-sent event for the current version and then for every
// store change until the client goes away.
func (h *EventsHandler) Stream(c *gin.Context) {
	events, unsubscribe := h.store.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("version", store.Event{Version: h.store.Version(), Source: store.SourceLocal})
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("version", ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"version": h.store.Version()})
			return true
		}
	})
}

func (h *EventsHandler) WebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, unsubscribe := h.store.Subscribe()
	defer unsubscribe()

	// Reads only detect the client closing; incoming messages are ignored.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(store.Event{Version: h.store.Version(), Source: store.SourceLocal}); err != nil {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug("Websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}
