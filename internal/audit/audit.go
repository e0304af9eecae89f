package audit

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionUserDelete = "user.delete"
	ActionUsersNuke  = "users.nuke"
)

type Entry struct {
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	IP         string
	UserAgent  string
	Metadata   map[string]any
}

type Writer interface {
	Write(ctx context.Context, e Entry) error
}

// PGWriter stores entries in audit_logs.
type PGWriter struct {
	Pool *pgxpool.Pool
}

func NewPGWriter(pool *pgxpool.Pool) *PGWriter {
	return &PGWriter{Pool: pool}
}

// Write records an audit entry; failures are returned so callers can ignore if needed.
func (w *PGWriter) Write(ctx context.Context, e Entry) error {
	if w == nil || w.Pool == nil {
		return nil
	}

	var metadata any
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		metadata = json.RawMessage(raw)
	}

	_, err := w.Pool.Exec(ctx, `
INSERT INTO audit_logs (actor, action, entity_type, entity_id, ip, user_agent, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, nullable(e.Actor), e.Action, e.EntityType, nullable(e.EntityID), nullable(e.IP), nullable(e.UserAgent), metadata)

	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Nop discards entries. Used with the in-memory store.
type Nop struct{}

func (Nop) Write(context.Context, Entry) error { return nil }

// Memory keeps entries for inspection in tests.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *Memory) Write(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}
