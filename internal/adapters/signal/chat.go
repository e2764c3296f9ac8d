package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/apurv-sgh/test-edtech/internal/domain"
)

func (ctl *Controller) handleJoinRoom(cl *client, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-room payload")
		ctl.sendError(cl.conn, "bad_payload")
		return
	}
	ctl.Rooms.Join(p.RoomID, cl.tid, cl.conn)
	log.Info().Str("module", "signal").Str("tid", string(cl.tid)).Str("room", p.RoomID).Msg("joined chat room")
}

type receiveMessageEvent struct {
	Type string `json:"type"`
	domain.ChatMessage
}

// handleSendMessage stamps the message with a server id and timestamp and
// fans it out to the room, sender excluded. Membership is not enforced on
// send; knowing the room id is enough to address it.
func (ctl *Controller) handleSendMessage(cl *client, data []byte) {
	var p struct {
		Type    string `json:"type"`
		RoomID  string `json:"roomId"`
		Message string `json:"message"`
		Sender  string `json:"sender"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad send-message payload")
		ctl.sendError(cl.conn, "bad_payload")
		return
	}
	if !ctl.chatLimiter.Allow(cl.tid) {
		log.Warn().Str("module", "signal").Str("tid", string(cl.tid)).Msg("chat rate limited")
		ctl.sendError(cl.conn, "rate_limited")
		return
	}

	msg := domain.NewChatMessage(p.RoomID, p.Sender, p.Message)
	ctl.Rooms.Broadcast(p.RoomID, cl.tid, mustMarshal(receiveMessageEvent{Type: "receive-message", ChatMessage: msg}))
}
