package domain

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type SessionStatus string

const (
	StatusScheduled SessionStatus = "scheduled"
	StatusLive      SessionStatus = "live"
	StatusEnded     SessionStatus = "ended"
	StatusCancelled SessionStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s SessionStatus) Terminal() bool {
	return s == StatusEnded || s == StatusCancelled
}

// CanBecome encodes the monotonic state machine:
// scheduled -> live -> ended, with cancelled reachable from scheduled and live.
func (s SessionStatus) CanBecome(to SessionStatus) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case StatusLive:
		return s == StatusScheduled
	case StatusEnded, StatusCancelled:
		return s == StatusScheduled || s == StatusLive
	}
	return false
}

// Participant is one roster entry, ordered by join time.
type Participant struct {
	UserID   UserID    `json:"userId"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Session is one live class instance. The room token is the multiplex key
// for its signaling room and is immutable once assigned.
type Session struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description,omitempty"`
	InstructorID       UserID        `json:"instructorId"`
	InstructorName     string        `json:"instructorName"`
	Subject            string        `json:"subject"`
	ScheduledAt        time.Time     `json:"scheduledTime"`
	Duration           int           `json:"duration"` // minutes
	Status             SessionStatus `json:"status"`
	RoomToken          string        `json:"roomId"`
	MaxParticipants    int           `json:"maxParticipants"`
	IsRecording        bool          `json:"isRecording"`
	RecordingURL       string        `json:"recordingUrl,omitempty"`
	ChatEnabled        bool          `json:"chatEnabled"`
	ScreenShareEnabled bool          `json:"screenShareEnabled"`
	Participants       []Participant `json:"participants"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// Participant returns the roster entry for uid, if any.
func (s *Session) Participant(uid UserID) (Participant, bool) {
	for _, p := range s.Participants {
		if p.UserID == uid {
			return p, true
		}
	}
	return Participant{}, false
}

// NewRoomToken builds an opaque unique room token. ULIDs combine a
// millisecond time component with monotonic random entropy, so collision
// probability is negligible even across instances.
func NewRoomToken() string {
	return "session_" + strings.ToLower(ulid.Make().String())
}
