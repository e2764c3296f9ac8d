// Package store persists live sessions in PostgreSQL. Capacity and
// idempotency checks on the roster run inside a transaction holding the
// session row lock, so concurrent joins across multiple server instances
// cannot oversubscribe a session.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/apurv-sgh/test-edtech/internal/domain"
)

type Store struct {
	db DB
}

type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func New(db DB) *Store {
	return &Store{db: db}
}

const sessionColumns = `id, title, description, instructor_id, instructor_name, subject, scheduled_at, duration_minutes, status, room_token, max_participants, is_recording, recording_url, chat_enabled, screen_share_enabled, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(
		&s.ID, &s.Title, &s.Description, &s.InstructorID, &s.InstructorName, &s.Subject,
		&s.ScheduledAt, &s.Duration, &s.Status, &s.RoomToken, &s.MaxParticipants,
		&s.IsRecording, &s.RecordingURL, &s.ChatEnabled, &s.ScreenShareEnabled,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Participants = []domain.Participant{}
	return &s, nil
}

func (s *Store) CreateSession(ctx context.Context, sess *domain.Session) error {
	const q = `
insert into sessions (` + sessionColumns + `)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	if _, err := s.db.Exec(ctx, q,
		sess.ID, sess.Title, sess.Description, sess.InstructorID, sess.InstructorName, sess.Subject,
		sess.ScheduledAt, sess.Duration, sess.Status, sess.RoomToken, sess.MaxParticipants,
		sess.IsRecording, sess.RecordingURL, sess.ChatEnabled, sess.ScreenShareEnabled,
		sess.CreatedAt, sess.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	const q = `select ` + sessionColumns + ` from sessions where id = $1`

	out, err := scanSession(s.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}

	const pq = `
select user_id, display_name, joined_at
from session_participants
where session_id = $1
order by joined_at asc`

	rows, err := s.db.Query(ctx, pq, id)
	if err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.UserID, &p.Name, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out.Participants = append(out.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return out, nil
}

// ListSessions returns sessions newest-scheduled first, optionally filtered
// by status and subject. Rosters are not loaded here; use GetSession.
func (s *Store) ListSessions(ctx context.Context, status domain.SessionStatus, subject string, limit int) ([]domain.Session, error) {
	q := `select ` + sessionColumns + ` from sessions where 1=1`
	args := []any{}
	if status != "" {
		args = append(args, status)
		q += fmt.Sprintf(" and status = $%d", len(args))
	}
	if subject != "" {
		args = append(args, subject)
		q += fmt.Sprintf(" and subject = $%d", len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(" order by scheduled_at desc limit $%d", len(args))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := []domain.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// SetSessionStatus moves the session to the target status, but only from
// one of the allowed source statuses. The condition runs in the database so
// concurrent writers cannot skip the state machine backwards.
func (s *Store) SetSessionStatus(ctx context.Context, id string, to domain.SessionStatus, from ...domain.SessionStatus) (*domain.Session, error) {
	allowed := make([]string, 0, len(from))
	for _, st := range from {
		allowed = append(allowed, string(st))
	}

	const q = `update sessions set status = $2, updated_at = now() where id = $1 and status = any($3)`
	tag, err := s.db.Exec(ctx, q, id, to, allowed)
	if err != nil {
		return nil, fmt.Errorf("update session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the session is missing or someone beat us to a
		// conflicting transition; re-read to tell the two apart.
		if _, err := s.GetSession(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrBadState
	}
	return s.GetSession(ctx, id)
}

// AddParticipant appends a roster entry if and only if the session is live,
// the user is not already on the roster and the roster is below the
// configured maximum. The session row lock serializes concurrent joins.
func (s *Store) AddParticipant(ctx context.Context, id string, p domain.Participant) (*domain.Session, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin join tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const lockQ = `select status, max_participants from sessions where id = $1 for update`
	var status domain.SessionStatus
	var maxParticipants int
	if err := tx.QueryRow(ctx, lockQ, id).Scan(&status, &maxParticipants); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock session: %w", err)
	}
	if status != domain.StatusLive {
		return nil, domain.ErrBadState
	}

	const existsQ = `select exists(select 1 from session_participants where session_id = $1 and user_id = $2)`
	var alreadyJoined bool
	if err := tx.QueryRow(ctx, existsQ, id, p.UserID).Scan(&alreadyJoined); err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}

	if !alreadyJoined {
		const countQ = `select count(*) from session_participants where session_id = $1`
		var roster int
		if err := tx.QueryRow(ctx, countQ, id).Scan(&roster); err != nil {
			return nil, fmt.Errorf("count roster: %w", err)
		}
		if roster >= maxParticipants {
			return nil, domain.ErrSessionFull
		}

		const insertQ = `insert into session_participants (session_id, user_id, display_name, joined_at) values ($1, $2, $3, $4)`
		if _, err := tx.Exec(ctx, insertQ, id, p.UserID, p.Name, p.JoinedAt); err != nil {
			return nil, fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit join tx: %w", err)
	}
	return s.GetSession(ctx, id)
}
