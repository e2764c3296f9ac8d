package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/apurv-sgh/test-edtech/internal/core"
	"github.com/apurv-sgh/test-edtech/internal/domain"
)

// Presence is the process-wide registry of connected transports and the
// users they have announced. It starts empty and holds nothing durable;
// a restart drops every entry by design.
type Presence struct {
	mu    sync.RWMutex
	conns map[core.TransportID]core.SignalConn
	users map[core.TransportID]domain.User
}

func NewPresence() *Presence {
	return &Presence{
		conns: make(map[core.TransportID]core.SignalConn),
		users: make(map[core.TransportID]domain.User),
	}
}

// Bind registers a freshly connected transport. No announcement happens
// until the client sends its user data.
func (p *Presence) Bind(tid core.TransportID, conn core.SignalConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[tid] = conn
	log.Info().Str("module", "app.presence").Str("tid", string(tid)).Msg("transport connected")
}

// Announce records (or overwrites) the user identity for a transport.
// The caller broadcasts the user-joined event afterwards, so the mapping
// write always happens before anyone is notified.
func (p *Presence) Announce(tid core.TransportID, user domain.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.conns[tid]; !ok {
		return
	}
	p.users[tid] = user
	log.Info().Str("module", "app.presence").Str("tid", string(tid)).Str("user", string(user.ID)).Msg("announced")
}

// Unbind removes the transport and returns the announced user, if any.
// The second return is false for transports that never announced; those
// leave silently.
func (p *Presence) Unbind(tid core.TransportID) (domain.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, announced := p.users[tid]
	delete(p.users, tid)
	delete(p.conns, tid)
	log.Info().Str("module", "app.presence").Str("tid", string(tid)).Bool("announced", announced).Msg("transport gone")
	return user, announced
}

func (p *Presence) User(tid core.TransportID) (domain.User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.users[tid]
	return u, ok
}

func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns)
}

// BroadcastExcept fans a frame out to every connected transport but tid.
// Presence events are process-wide, not room-scoped.
func (p *Presence) BroadcastExcept(tid core.TransportID, data core.Frame) core.PublishResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	res := core.PublishResult{}
	for other, conn := range p.conns {
		if other == tid {
			continue
		}
		if err := conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, other)
			continue
		}
		res.SentTo++
	}
	return res
}
