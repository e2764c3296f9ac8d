package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/apurv-sgh/test-edtech/internal/core"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cl *client) {
	defer func() {
		log.Info().Str("module", "signal").Str("tid", string(cl.tid)).Msg("readPump closing")
		ctl.disconnect(cl)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := cl.conn.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("tid", string(cl.tid)).Msg("readPump read error")
				return
			}
			ctl.handleFrame(cl, data)
		}
	}
}

// disconnect is the only cleanup trigger there is: no heartbeat eviction
// exists, a transport lives until its read loop errors out.
func (ctl *Controller) disconnect(cl *client) {
	left := ctl.Rooms.LeaveAll(cl.tid)
	user, announced := ctl.Presence.Unbind(cl.tid)
	cl.conn.Close()
	ctl.chatLimiter.Forget(cl.tid)
	if announced {
		ctl.Presence.BroadcastExcept(cl.tid, mustMarshal(userEvent{Type: "user-left", User: user}))
	}
	log.Info().Str("module", "signal").Str("tid", string(cl.tid)).Int("rooms_left", len(left)).Msg("disconnected")
}

func (ctl *Controller) handleFrame(cl *client, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(cl.conn, "bad_payload")
		return
	}

	switch env.Type {
	case "join-user":
		ctl.handleJoinUser(cl, data)
	case "join-room":
		ctl.handleJoinRoom(cl, data)
	case "send-message":
		ctl.handleSendMessage(cl, data)
	case "join-live-session":
		ctl.handleJoinLiveSession(cl, data)
	case "offer":
		ctl.handleOffer(cl, data)
	case "answer":
		ctl.handleAnswer(cl, data)
	case "ice-candidate":
		ctl.handleICECandidate(cl, data)
	case "start-screen-share":
		ctl.handleScreenShare(cl, data, "screen-share-started")
	case "stop-screen-share":
		ctl.handleScreenShare(cl, data, "screen-share-stopped")
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(cl.conn, "unknown_type")
	}
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *wsConn, code string) {
	ctl.sendJSON(c, map[string]any{"type": "error", "error": code})
}

func mustMarshal(v any) core.Frame {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal frame")
		return core.Frame("{}")
	}
	return b
}
