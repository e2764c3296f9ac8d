package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/apurv-sgh/test-edtech/internal/domain"
)

const (
	DefaultDuration        = 60 // minutes
	DefaultMaxParticipants = 100
)

// SessionStore is the persistence collaborator behind the lifecycle
// controller. AddParticipant must be atomic with respect to the capacity
// check: the process may run as multiple instances, so the store, not an
// in-process lock, guards the roster.
type SessionStore interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	ListSessions(ctx context.Context, status domain.SessionStatus, subject string, limit int) ([]domain.Session, error)
	SetSessionStatus(ctx context.Context, id string, to domain.SessionStatus, from ...domain.SessionStatus) (*domain.Session, error)
	AddParticipant(ctx context.Context, id string, p domain.Participant) (*domain.Session, error)
}

// Lifecycle enforces session state transitions and ownership rules.
type Lifecycle struct {
	store SessionStore
}

func NewLifecycle(st SessionStore) *Lifecycle {
	return &Lifecycle{store: st}
}

type CreateSessionInput struct {
	Title           string
	Description     string
	Subject         string
	ScheduledAt     time.Time
	Duration        int
	MaxParticipants int
	Instructor      domain.User
}

func (l *Lifecycle) Create(ctx context.Context, in CreateSessionInput) (*domain.Session, error) {
	if in.Duration <= 0 {
		in.Duration = DefaultDuration
	}
	if in.MaxParticipants <= 0 {
		in.MaxParticipants = DefaultMaxParticipants
	}
	now := time.Now().UTC()
	s := &domain.Session{
		ID:                 uuid.NewString(),
		Title:              in.Title,
		Description:        in.Description,
		InstructorID:       in.Instructor.ID,
		InstructorName:     in.Instructor.Name,
		Subject:            in.Subject,
		ScheduledAt:        in.ScheduledAt,
		Duration:           in.Duration,
		Status:             domain.StatusScheduled,
		RoomToken:          domain.NewRoomToken(),
		MaxParticipants:    in.MaxParticipants,
		ChatEnabled:        true,
		ScreenShareEnabled: true,
		Participants:       []domain.Participant{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := l.store.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.lifecycle").Str("session", s.ID).Str("room", s.RoomToken).Msg("session created")
	return s, nil
}

// Start transitions scheduled -> live. Starting an already-live session is
// an idempotent no-op; starting from a terminal state fails.
func (l *Lifecycle) Start(ctx context.Context, id string, requester domain.UserID) (*domain.Session, error) {
	s, err := l.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.InstructorID != requester {
		return nil, domain.ErrNotInstructor
	}
	if s.Status == domain.StatusLive {
		return s, nil
	}
	if !s.Status.CanBecome(domain.StatusLive) {
		return nil, domain.ErrBadState
	}
	return l.store.SetSessionStatus(ctx, id, domain.StatusLive, domain.StatusScheduled)
}

// Stop transitions scheduled|live -> ended. Stopping an already-ended
// session is an idempotent no-op; stopping a cancelled one fails.
func (l *Lifecycle) Stop(ctx context.Context, id string, requester domain.UserID) (*domain.Session, error) {
	s, err := l.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.InstructorID != requester {
		return nil, domain.ErrNotInstructor
	}
	if s.Status == domain.StatusEnded {
		return s, nil
	}
	if !s.Status.CanBecome(domain.StatusEnded) {
		return nil, domain.ErrBadState
	}
	return l.store.SetSessionStatus(ctx, id, domain.StatusEnded, domain.StatusScheduled, domain.StatusLive)
}

// Cancel transitions scheduled|live -> cancelled, idempotently.
func (l *Lifecycle) Cancel(ctx context.Context, id string, requester domain.UserID) (*domain.Session, error) {
	s, err := l.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.InstructorID != requester {
		return nil, domain.ErrNotInstructor
	}
	if s.Status == domain.StatusCancelled {
		return s, nil
	}
	if !s.Status.CanBecome(domain.StatusCancelled) {
		return nil, domain.ErrBadState
	}
	return l.store.SetSessionStatus(ctx, id, domain.StatusCancelled, domain.StatusScheduled, domain.StatusLive)
}

// Join appends the user to the roster of a live session. Joining twice is a
// no-op; a full roster fails with domain.ErrSessionFull and leaves the
// roster untouched. The caller is expected to follow up with a room join on
// the session's room token.
func (l *Lifecycle) Join(ctx context.Context, id string, user domain.User) (*domain.Session, error) {
	s, err := l.store.AddParticipant(ctx, id, domain.Participant{
		UserID:   user.ID,
		Name:     user.Name,
		JoinedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.lifecycle").Str("session", id).Str("user", string(user.ID)).Int("roster", len(s.Participants)).Msg("participant joined")
	return s, nil
}

func (l *Lifecycle) Get(ctx context.Context, id string) (*domain.Session, error) {
	return l.store.GetSession(ctx, id)
}

func (l *Lifecycle) List(ctx context.Context, status domain.SessionStatus, subject string) ([]domain.Session, error) {
	return l.store.ListSessions(ctx, status, subject, 20)
}
