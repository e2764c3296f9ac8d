package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/apurv-sgh/test-edtech/internal/core"
)

// RoomHub multiplexes room tokens onto member sets. Rooms are created
// lazily on the first join and discarded as soon as the last member
// leaves; an empty room is indistinguishable from one that never existed.
type RoomHub struct {
	mu    sync.RWMutex
	rooms map[string]*core.Room
}

func NewRoomHub() *RoomHub {
	return &RoomHub{rooms: make(map[string]*core.Room)}
}

// Join adds the transport to the room, creating it if absent.
// Joining twice is a no-op.
func (h *RoomHub) Join(token string, tid core.TransportID, conn core.SignalConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[token]
	if !ok {
		room = core.NewRoom(token)
		h.rooms[token] = room
	}
	room.AddMember(tid, conn)
	log.Info().Str("module", "app.rooms").Str("room", token).Str("tid", string(tid)).Msg("joined room")
}

// Leave removes the membership and garbage-collects the room when the
// member set becomes empty.
func (h *RoomHub) Leave(token string, tid core.TransportID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[token]
	if !ok {
		return
	}
	room.RemoveMember(tid)
	if room.Empty() {
		delete(h.rooms, token)
		log.Debug().Str("module", "app.rooms").Str("room", token).Msg("room discarded")
	}
}

// LeaveAll drops the transport from every room it joined and returns the
// tokens it was removed from. Called on disconnect.
func (h *RoomHub) LeaveAll(tid core.TransportID) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var left []string
	for token, room := range h.rooms {
		if !room.HasMember(tid) {
			continue
		}
		room.RemoveMember(tid)
		left = append(left, token)
		if room.Empty() {
			delete(h.rooms, token)
		}
	}
	return left
}

// Broadcast delivers data to every member of the room except from.
// Addressing a missing room, or a room the sender never joined, is allowed
// and simply reaches whoever is there.
func (h *RoomHub) Broadcast(token string, from core.TransportID, data core.Frame) core.PublishResult {
	h.mu.RLock()
	room, ok := h.rooms[token]
	h.mu.RUnlock()
	if !ok {
		return core.PublishResult{}
	}
	return room.Broadcast(from, data)
}

func (h *RoomHub) MemberCount(token string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[token]; ok {
		return room.MemberCount()
	}
	return 0
}

func (h *RoomHub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
