package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// sessionRoom maps a session identifier onto its signaling room token.
func sessionRoom(sessionID string) string {
	return "session-" + sessionID
}

// handleJoinLiveSession is room join plus an announcement of the joining
// transport. Capacity gating happened on the REST join; any client that
// knows the session id may subscribe here.
func (ctl *Controller) handleJoinLiveSession(cl *client, data []byte) {
	var p struct {
		Type      string `json:"type"`
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-live-session payload")
		ctl.sendError(cl.conn, "bad_payload")
		return
	}

	ctl.Rooms.Join(sessionRoom(p.SessionID), cl.tid, cl.conn)
	ctl.Rooms.Broadcast(sessionRoom(p.SessionID), cl.tid, mustMarshal(senderEvent{
		Type:     "user-joined-session",
		SenderID: string(cl.tid),
	}))
	log.Info().Str("module", "signal").Str("tid", string(cl.tid)).Str("session", p.SessionID).Msg("joined live session room")
}

type senderEvent struct {
	Type     string `json:"type"`
	SenderID string `json:"senderId"`
}

// The relay is a pure opaque-payload forwarder: SDP and ICE bodies travel
// as raw JSON and are never inspected or validated here. Its job is
// delivery, not correctness of media negotiation.

func (ctl *Controller) handleOffer(cl *client, data []byte) {
	var p struct {
		Type      string          `json:"type"`
		SessionID string          `json:"sessionId"`
		Offer     json.RawMessage `json:"offer"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(cl.conn, "bad_payload")
		return
	}
	out := struct {
		Type     string          `json:"type"`
		Offer    json.RawMessage `json:"offer"`
		SenderID string          `json:"senderId"`
	}{"offer", p.Offer, string(cl.tid)}
	ctl.Rooms.Broadcast(sessionRoom(p.SessionID), cl.tid, mustMarshal(out))
}

func (ctl *Controller) handleAnswer(cl *client, data []byte) {
	var p struct {
		Type      string          `json:"type"`
		SessionID string          `json:"sessionId"`
		Answer    json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(cl.conn, "bad_payload")
		return
	}
	out := struct {
		Type     string          `json:"type"`
		Answer   json.RawMessage `json:"answer"`
		SenderID string          `json:"senderId"`
	}{"answer", p.Answer, string(cl.tid)}
	ctl.Rooms.Broadcast(sessionRoom(p.SessionID), cl.tid, mustMarshal(out))
}

func (ctl *Controller) handleICECandidate(cl *client, data []byte) {
	var p struct {
		Type      string          `json:"type"`
		SessionID string          `json:"sessionId"`
		Candidate json.RawMessage `json:"candidate"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(cl.conn, "bad_payload")
		return
	}
	out := struct {
		Type      string          `json:"type"`
		Candidate json.RawMessage `json:"candidate"`
		SenderID  string          `json:"senderId"`
	}{"ice-candidate", p.Candidate, string(cl.tid)}
	ctl.Rooms.Broadcast(sessionRoom(p.SessionID), cl.tid, mustMarshal(out))
}

func (ctl *Controller) handleScreenShare(cl *client, data []byte, event string) {
	var p struct {
		Type      string `json:"type"`
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(cl.conn, "bad_payload")
		return
	}
	ctl.Rooms.Broadcast(sessionRoom(p.SessionID), cl.tid, mustMarshal(senderEvent{
		Type:     event,
		SenderID: string(cl.tid),
	}))
}
