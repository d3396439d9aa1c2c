package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleet-crm/pkg/database"
	errs "fleet-crm/pkg/errors"
)

// SQLStore appends events to the audit_events table created by database.EnsureSchema.
// seq (AUTO_INCREMENT) gives the append order.
type SQLStore struct {
	db *database.DB
}

func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Append(ctx context.Context, ev ...Event) error {
	if len(ev) == 0 {
		return nil
	}
	tx, err := s.db.Conn().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return errs.NewDB("events.Append", "begin tx", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO audit_events (id, type, subject_id, actor_id, payload, created_at) VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return errs.NewDB("events.Append", "prepare insert", err)
	}
	defer stmt.Close()

	for _, e := range ev {
		b, err := encode(e)
		if err != nil {
			return errs.NewDB("events.Append", "marshal payload", err)
		}
		at := e.Timestamp()
		if at.IsZero() {
			at = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), e.Type(), e.SubjectID(), e.Actor(), string(b), at); err != nil {
			return errs.NewDB("events.Append", "insert event", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.NewDB("events.Append", "commit tx", err)
	}
	return nil
}

func (s *SQLStore) ListBySubject(ctx context.Context, subjectID string) ([]StoredEvent, error) {
	return s.query(ctx, "events.ListBySubject",
		`SELECT id, type, subject_id, actor_id, payload, created_at FROM audit_events WHERE subject_id = ? ORDER BY seq ASC`, subjectID)
}

// Recent returns the newest events first.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.query(ctx, "events.Recent",
		`SELECT id, type, subject_id, actor_id, payload, created_at FROM audit_events ORDER BY seq DESC LIMIT ?`, limit)
}

func (s *SQLStore) query(ctx context.Context, op, q string, args ...any) ([]StoredEvent, error) {
	rows, err := s.db.Conn().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errs.NewDB(op, "query events", err)
	}
	defer rows.Close()

	out := make([]StoredEvent, 0)
	for rows.Next() {
		var se StoredEvent
		var payload sql.NullString
		if err := rows.Scan(&se.ID, &se.Type, &se.SubjectID, &se.ActorID, &payload, &se.Ts); err != nil {
			return nil, errs.NewDB(op, "scan event", err)
		}
		if payload.Valid {
			se.Payload = json.RawMessage(payload.String)
		}
		out = append(out, se)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDB(op, "iterate events", err)
	}
	return out, nil
}

// MemoryStore keeps events in append order. Used without a database and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	events []StoredEvent
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, ev ...Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range ev {
		b, err := encode(e)
		if err != nil {
			return err
		}
		at := e.Timestamp()
		if at.IsZero() {
			at = time.Now().UTC()
		}
		s.events = append(s.events, StoredEvent{
			ID: uuid.NewString(), Type: e.Type(), SubjectID: e.SubjectID(), ActorID: e.Actor(), Ts: at, Payload: b,
		})
	}
	return nil
}

func (s *MemoryStore) ListBySubject(_ context.Context, subjectID string) ([]StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoredEvent, 0)
	for _, se := range s.events {
		if se.SubjectID == subjectID {
			out = append(out, se)
		}
	}
	return out, nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	out := make([]StoredEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
