package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LLMEventData captures a single model call for the audit trail.
type LLMEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored audit record.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMEventData
}

// UsageStat aggregates token usage for one provider/model pair.
type UsageStat struct {
	Provider     string
	Model        string
	Calls        int64
	Failures     int64
	InputTokens  int64
	OutputTokens int64
}

// EventRepo records and reports model call events.
type EventRepo interface {
	// AppendLLMEvent stores one model call record.
	AppendLLMEvent(ctx context.Context, data LLMEventData) error

	// RecentLLMEvents returns the newest events, most recent first.
	RecentLLMEvents(ctx context.Context, limit int) ([]*LLMEvent, error)

	// GetLLMEvent fetches one event by id, including the request and
	// response bodies. Returns ErrNotFound for unknown ids.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// UsageStats aggregates token usage grouped by provider and model.
	UsageStats(ctx context.Context) ([]*UsageStat, error)
}

type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendLLMEvent(ctx context.Context, data LLMEventData) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO llm_events
		 (provider, model, purpose, input_tokens, output_tokens, latency_ms,
		  success, error_message, request_body, response_body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
		data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if err != nil {
		return fmt.Errorf("insert llm event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentLLMEvents(ctx context.Context, limit int) ([]*LLMEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, provider, model, purpose, input_tokens, output_tokens,
		        latency_ms, success, error_message, request_body, response_body
		 FROM llm_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list llm events: %w", err)
	}
	defer rows.Close()

	var out []*LLMEvent
	for rows.Next() {
		var ev LLMEvent
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.Provider, &ev.Model, &ev.Purpose,
			&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &ev.Success,
			&ev.ErrorMessage, &ev.RequestBody, &ev.ResponseBody); err != nil {
			return nil, fmt.Errorf("scan llm event: %w", err)
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, timestamp, provider, model, purpose, input_tokens, output_tokens,
		        latency_ms, success, error_message, request_body, response_body
		 FROM llm_events WHERE id = ?`, id)

	var ev LLMEvent
	err := row.Scan(&ev.ID, &ev.Timestamp, &ev.Provider, &ev.Model, &ev.Purpose,
		&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &ev.Success,
		&ev.ErrorMessage, &ev.RequestBody, &ev.ResponseBody)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan llm event: %w", err)
	}
	return &ev, nil
}

func (r *eventRepo) UsageStats(ctx context.Context) ([]*UsageStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT provider, model, COUNT(*),
		        SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END),
		        COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		 FROM llm_events GROUP BY provider, model ORDER BY provider, model`)
	if err != nil {
		return nil, fmt.Errorf("usage stats: %w", err)
	}
	defer rows.Close()

	var out []*UsageStat
	for rows.Next() {
		var st UsageStat
		if err := rows.Scan(&st.Provider, &st.Model, &st.Calls, &st.Failures,
			&st.InputTokens, &st.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage stat: %w", err)
		}
		out = append(out, &st)
	}
	return out, rows.Err()
}
