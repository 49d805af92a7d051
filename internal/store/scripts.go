package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScriptRecord is a persisted teaching script with its owner and the
// full document body as JSON.
type ScriptRecord struct {
	ID        string          `json:"id"`
	OwnerID   int64           `json:"-"`
	Title     string          `json:"title"`
	Topic     string          `json:"topic"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
}

// ScriptRepo persists generated teaching scripts.
type ScriptRepo interface {
	// Save stores a new script and returns it with its assigned id.
	Save(ctx context.Context, ownerID int64, title, topic string, content json.RawMessage) (*ScriptRecord, error)

	// Update replaces the stored content of an existing script, used
	// after narration audio is attached to the document.
	Update(ctx context.Context, id string, ownerID int64, content json.RawMessage) error

	// Load fetches a script owned by ownerID. Returns ErrNotFound if
	// the id is unknown or owned by someone else.
	Load(ctx context.Context, id string, ownerID int64) (*ScriptRecord, error)

	// Delete removes a script owned by ownerID.
	Delete(ctx context.Context, id string, ownerID int64) error

	// ListByOwner returns the owner's scripts, newest first. Content
	// is included so callers can render summaries without extra reads.
	ListByOwner(ctx context.Context, ownerID int64) ([]*ScriptRecord, error)
}

type scriptRepo struct {
	db *sql.DB
}

func (r *scriptRepo) Save(ctx context.Context, ownerID int64, title, topic string, content json.RawMessage) (*ScriptRecord, error) {
	rec := &ScriptRecord{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Topic:     topic,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scripts (id, owner_id, title, topic, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, rec.Title, rec.Topic, string(rec.Content), rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert script: %w", err)
	}
	return rec, nil
}

func (r *scriptRepo) Update(ctx context.Context, id string, ownerID int64, content json.RawMessage) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE scripts SET content = ? WHERE id = ? AND owner_id = ?`,
		string(content), id, ownerID)
	if err != nil {
		return fmt.Errorf("update script: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scriptRepo) Load(ctx context.Context, id string, ownerID int64) (*ScriptRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, topic, content, created_at
		 FROM scripts WHERE id = ? AND owner_id = ?`, id, ownerID)

	var rec ScriptRecord
	var content string
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Title, &rec.Topic, &content, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan script: %w", err)
	}
	rec.Content = json.RawMessage(content)
	return &rec, nil
}

func (r *scriptRepo) Delete(ctx context.Context, id string, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM scripts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete script: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scriptRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*ScriptRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, topic, content, created_at
		 FROM scripts WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()

	var out []*ScriptRecord
	for rows.Next() {
		var rec ScriptRecord
		var content string
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Title, &rec.Topic, &content, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan script: %w", err)
		}
		rec.Content = json.RawMessage(content)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
