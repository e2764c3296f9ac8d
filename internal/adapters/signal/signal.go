package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/apurv-sgh/test-edtech/internal/app"
	"github.com/apurv-sgh/test-edtech/internal/config"
	"github.com/apurv-sgh/test-edtech/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// Controller terminates websocket transports and dispatches their frames to
// the presence registry, the room hub and the signaling relay.
type Controller struct {
	Presence *app.Presence
	Rooms    *app.RoomHub

	chatLimiter *RateLimiter
	readLimit   int64
	pingPeriod  time.Duration
	writeWait   time.Duration
}

func NewController(presence *app.Presence, rooms *app.RoomHub, cfg *config.Config) *Controller {
	return &Controller{
		Presence:    presence,
		Rooms:       rooms,
		chatLimiter: NewRateLimiter(cfg.ChatRateLimit, cfg.ChatRateWindow),
		readLimit:   cfg.ReadLimit,
		pingPeriod:  cfg.PingPeriod,
		writeWait:   5 * time.Second,
	}
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// client carries the per-connection state handlers need: the transport
// identity, the outbound connection and the cookie-scoped fallback user id
// for guests that announce without an id of their own.
type client struct {
	tid        core.TransportID
	conn       *wsConn
	fallbackID string
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and runs the connection until it drops.
// Each connection gets a fresh opaque transport identity; nothing about it
// survives a reconnect.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	tid := core.TransportID(uuid.NewString())
	log.Info().Str("module", "signal").Str("tid", string(tid)).Msg("new WS connection")

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	cl := &client{
		tid:        tid,
		conn:       conn,
		fallbackID: c.GetString("client_token"),
	}

	ctl.Presence.Bind(tid, conn)
	ctl.sendJSON(conn, connectedEvent{Type: "connected", TransportID: string(tid)})

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cl)
}

type connectedEvent struct {
	Type        string `json:"type"`
	TransportID string `json:"transportId"`
}
