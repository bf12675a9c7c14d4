package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoSnapshot is returned when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot found")

// Snapshot is one stored export.
type Snapshot struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId,omitempty"`
	Count     int       `json:"count"`
	Payload   []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// SnapshotRepository stores history and knowledge exports.
type SnapshotRepository struct {
	db  *DB
	now func() time.Time
}

// NewSnapshotRepository creates a repository on db.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

func (r *SnapshotRepository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}

// SaveHistory stores a history export for a session. count is the number
// of builds in the payload.
func (r *SnapshotRepository) SaveHistory(ctx context.Context, sessionID string, count int, payload []byte) (*Snapshot, error) {
	created := r.timestamp()
	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO history_snapshots (session_id, build_count, payload, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, count, string(payload), created,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save history snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot id: %w", err)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, created)
	return &Snapshot{ID: id, SessionID: sessionID, Count: count, Payload: payload, CreatedAt: createdAt}, nil
}

// LatestHistory returns the newest history snapshot for a session.
func (r *SnapshotRepository) LatestHistory(ctx context.Context, sessionID string) (*Snapshot, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, session_id, build_count, payload, created_at
		 FROM history_snapshots WHERE session_id = ? ORDER BY id DESC LIMIT 1`,
		sessionID,
	)
	return scanSnapshot(row)
}

// ListHistory returns up to limit snapshots for a session, newest first.
func (r *SnapshotRepository) ListHistory(ctx context.Context, sessionID string, limit int) ([]*Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, session_id, build_count, payload, created_at
		 FROM history_snapshots WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []*Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history snapshots: %w", err)
	}
	return snapshots, nil
}

// SaveKnowledge stores a knowledge base export and prunes all but the
// newest keep snapshots in the same transaction.
func (r *SnapshotRepository) SaveKnowledge(ctx context.Context, count int, payload []byte, keep int) (*Snapshot, error) {
	created := r.timestamp()
	snapshot := &Snapshot{Count: count, Payload: payload}

	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO knowledge_snapshots (user_count, payload, created_at) VALUES (?, ?, ?)`,
			count, string(payload), created,
		)
		if err != nil {
			return fmt.Errorf("failed to save knowledge snapshot: %w", err)
		}
		if snapshot.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read snapshot id: %w", err)
		}

		if keep > 0 {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM knowledge_snapshots WHERE id NOT IN (
					SELECT id FROM knowledge_snapshots ORDER BY id DESC LIMIT ?)`,
				keep,
			); err != nil {
				return fmt.Errorf("failed to prune knowledge snapshots: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	snapshot.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return snapshot, nil
}

// LatestKnowledge returns the newest knowledge base snapshot.
func (r *SnapshotRepository) LatestKnowledge(ctx context.Context) (*Snapshot, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, '', user_count, payload, created_at
		 FROM knowledge_snapshots ORDER BY id DESC LIMIT 1`,
	)
	return scanSnapshot(row)
}

// CountKnowledge returns the number of stored knowledge snapshots.
func (r *SnapshotRepository) CountKnowledge(ctx context.Context) (int, error) {
	var n int
	if err := r.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count knowledge snapshots: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (*Snapshot, error) {
	var (
		snap    Snapshot
		payload string
		created string
	)
	if err := s.Scan(&snap.ID, &snap.SessionID, &snap.Count, &payload, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	snap.Payload = []byte(payload)
	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot time %q: %w", created, err)
	}
	snap.CreatedAt = createdAt
	return &snap, nil
}
