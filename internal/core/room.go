package core

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Room is a threadsafe in-memory broadcast group keyed by transport.
// It never closes adapter-owned connections and knows nothing about
// session semantics; the same type backs chat rooms and signaling rooms.
type Room struct {
	token   string
	mu      sync.RWMutex
	members map[TransportID]SignalConn
}

func NewRoom(token string) *Room {
	return &Room{
		token:   token,
		members: make(map[TransportID]SignalConn),
	}
}

func (r *Room) Token() string { return r.token }

func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *Room) Empty() bool { return r.MemberCount() == 0 }

// AddMember is idempotent; re-joining replaces the stored connection.
func (r *Room) AddMember(tid TransportID, conn SignalConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[tid] = conn
	log.Debug().Str("module", "core.room").Str("room", r.token).Str("tid", string(tid)).Msg("member added")
}

func (r *Room) RemoveMember(tid TransportID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, tid)
	log.Debug().Str("module", "core.room").Str("room", r.token).Str("tid", string(tid)).Msg("member removed")
}

func (r *Room) HasMember(tid TransportID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[tid]
	return ok
}

// Broadcast delivers data to every member except from. The sender does not
// have to be a member; any caller that knows the token may address the room.
func (r *Room) Broadcast(from TransportID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for tid, conn := range r.members {
		if tid == from {
			continue
		}
		if err := conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, tid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", r.token).Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *Room) Members() []TransportID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TransportID, 0, len(r.members))
	for tid := range r.members {
		out = append(out, tid)
	}
	return out
}
