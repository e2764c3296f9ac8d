package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/apurv-sgh/test-edtech/internal/domain"
)

const selectSessionPrefix = `select id, title, description, instructor_id, instructor_name, subject, scheduled_at, duration_minutes, status, room_token, max_participants, is_recording, recording_url, chat_enabled, screen_share_enabled, created_at, updated_at from sessions`

func sessionRow(id string, status domain.SessionStatus, maxParticipants int) *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows([]string{
		"id", "title", "description", "instructor_id", "instructor_name", "subject",
		"scheduled_at", "duration_minutes", "status", "room_token", "max_participants",
		"is_recording", "recording_url", "chat_enabled", "screen_share_enabled",
		"created_at", "updated_at",
	}).AddRow(
		id, "Algebra II", "", domain.UserID("instr-1"), "Prof. Das", "math",
		now, 60, status, "session_01hx", maxParticipants,
		false, "", true, true,
		now, now,
	)
}

func participantRows(entries ...string) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"user_id", "display_name", "joined_at"})
	for _, uid := range entries {
		rows.AddRow(domain.UserID(uid), uid, time.Now().UTC())
	}
	return rows
}

func expectGetSession(mock pgxmock.PgxPoolIface, id string, status domain.SessionStatus, maxParticipants int, participants ...string) {
	mock.ExpectQuery(regexp.QuoteMeta(selectSessionPrefix)).
		WithArgs(id).
		WillReturnRows(sessionRow(id, status, maxParticipants))
	mock.ExpectQuery(regexp.QuoteMeta("select user_id, display_name, joined_at")).
		WithArgs(id).
		WillReturnRows(participantRows(participants...))
}

func TestAddParticipant_SessionFull(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("select status, max_participants from sessions where id = $1 for update")).
		WithArgs("ses_1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "max_participants"}).AddRow(domain.StatusLive, 2))
	mock.ExpectQuery(regexp.QuoteMeta("select exists(")).
		WithArgs("ses_1", domain.UserID("u3")).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta("select count(*) from session_participants")).
		WithArgs("ses_1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	s := New(mock)
	_, err = s.AddParticipant(context.Background(), "ses_1", domain.Participant{UserID: "u3", Name: "u3", JoinedAt: time.Now()})
	if !errors.Is(err, domain.ErrSessionFull) {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddParticipant_NotLive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("select status, max_participants from sessions where id = $1 for update")).
		WithArgs("ses_1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "max_participants"}).AddRow(domain.StatusScheduled, 10))
	mock.ExpectRollback()

	s := New(mock)
	_, err = s.AddParticipant(context.Background(), "ses_1", domain.Participant{UserID: "u1", Name: "u1", JoinedAt: time.Now()})
	if !errors.Is(err, domain.ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddParticipant_AlreadyJoined_Idempotent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("select status, max_participants from sessions where id = $1 for update")).
		WithArgs("ses_1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "max_participants"}).AddRow(domain.StatusLive, 10))
	mock.ExpectQuery(regexp.QuoteMeta("select exists(")).
		WithArgs("ses_1", domain.UserID("u1")).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectCommit()
	expectGetSession(mock, "ses_1", domain.StatusLive, 10, "u1")

	s := New(mock)
	out, err := s.AddParticipant(context.Background(), "ses_1", domain.Participant{UserID: "u1", Name: "u1", JoinedAt: time.Now()})
	if err != nil {
		t.Fatalf("AddParticipant returned err: %v", err)
	}
	if len(out.Participants) != 1 {
		t.Fatalf("expected unchanged roster of 1, got %d", len(out.Participants))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddParticipant_AppendsEntry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	defer mock.Close()

	joinedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("select status, max_participants from sessions where id = $1 for update")).
		WithArgs("ses_1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "max_participants"}).AddRow(domain.StatusLive, 10))
	mock.ExpectQuery(regexp.QuoteMeta("select exists(")).
		WithArgs("ses_1", domain.UserID("u1")).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta("select count(*) from session_participants")).
		WithArgs("ses_1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("insert into session_participants")).
		WithArgs("ses_1", domain.UserID("u1"), "Uma", joinedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	expectGetSession(mock, "ses_1", domain.StatusLive, 10, "u1")

	s := New(mock)
	out, err := s.AddParticipant(context.Background(), "ses_1", domain.Participant{UserID: "u1", Name: "Uma", JoinedAt: joinedAt})
	if err != nil {
		t.Fatalf("AddParticipant returned err: %v", err)
	}
	if len(out.Participants) != 1 {
		t.Fatalf("expected roster of 1, got %d", len(out.Participants))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddParticipant_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("select status, max_participants from sessions where id = $1 for update")).
		WithArgs("ses_missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	s := New(mock)
	_, err = s.AddParticipant(context.Background(), "ses_missing", domain.Participant{UserID: "u1", Name: "u1", JoinedAt: time.Now()})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetSessionStatus_ConflictingTransition(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("update sessions set status = $2")).
		WithArgs("ses_1", domain.StatusLive, []string{"scheduled"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	// Session exists but sits in a state the transition does not allow.
	expectGetSession(mock, "ses_1", domain.StatusEnded, 10)

	s := New(mock)
	_, err = s.SetSessionStatus(context.Background(), "ses_1", domain.StatusLive, domain.StatusScheduled)
	if !errors.Is(err, domain.ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetSessionStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("update sessions set status = $2")).
		WithArgs("ses_missing", domain.StatusLive, []string{"scheduled"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta(selectSessionPrefix)).
		WithArgs("ses_missing").
		WillReturnError(pgx.ErrNoRows)

	s := New(mock)
	_, err = s.SetSessionStatus(context.Background(), "ses_missing", domain.StatusLive, domain.StatusScheduled)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectSessionPrefix)).
		WithArgs("ses_missing").
		WillReturnError(pgx.ErrNoRows)

	s := New(mock)
	_, err = s.GetSession(context.Background(), "ses_missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
