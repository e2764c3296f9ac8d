package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/apurv-sgh/test-edtech/internal/domain"
)

type userEvent struct {
	Type string      `json:"type"`
	User domain.User `json:"user"`
}

// handleJoinUser records the announced identity and tells every other
// connected transport about it. The broadcast is process-wide, not
// room-scoped.
func (ctl *Controller) handleJoinUser(cl *client, data []byte) {
	var p struct {
		Type string      `json:"type"`
		User domain.User `json:"user"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-user payload")
		ctl.sendError(cl.conn, "bad_payload")
		return
	}
	if len(p.User.ID) > domain.MaxUserIDLen {
		log.Warn().Str("module", "signal").Str("tid", string(cl.tid)).Msg("announced user id too long")
		ctl.sendError(cl.conn, "bad_payload")
		return
	}
	if err := p.User.SetName(p.User.Name); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("tid", string(cl.tid)).Msg("announced user name rejected")
		ctl.sendError(cl.conn, "bad_payload")
		return
	}
	if p.User.ID == "" {
		// Guests keep a stable identity per browser via the client
		// token cookie; without one they get a freshly minted identity.
		p.User.ID = domain.UserID(cl.fallbackID)
	}
	if p.User.ID == "" {
		minted, err := domain.NewUser(p.User.Name)
		if err != nil {
			ctl.sendError(cl.conn, "bad_payload")
			return
		}
		p.User.ID = minted.ID
	}

	ctl.Presence.Announce(cl.tid, p.User)
	ctl.Presence.BroadcastExcept(cl.tid, mustMarshal(userEvent{Type: "user-joined", User: p.User}))
	log.Info().Str("module", "signal").Str("tid", string(cl.tid)).Str("user", string(p.User.ID)).Msg("user announced")
}
