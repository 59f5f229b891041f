package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"triage-chatbot/pkg"
)

// Repository stores conversations as JSONB documents in Postgres.  The
// message array keeps its order inside the document.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a new Repository from an existing sql.DB.
// The caller is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// GetConversation loads a conversation document by id.
func (r *Repository) GetConversation(ctx context.Context, id string) (*pkg.Conversation, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `SELECT doc FROM conversations WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("conversation %s: %w", id, pkg.ErrNotFound)
		}
		return nil, err
	}
	var conv pkg.Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	conv.ID = id
	return &conv, nil
}

// SaveConversation upserts the whole document.
func (r *Repository) SaveConversation(ctx context.Context, conv *pkg.Conversation) error {
	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO conversations (id, doc, state, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5)
         ON CONFLICT (id) DO UPDATE
         SET doc = EXCLUDED.doc, state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`,
		conv.ID, raw, string(conv.State()), conv.CreatedAt, conv.UpdatedAt,
	)
	return err
}

// GetSpecialist loads a specialist by id.
func (r *Repository) GetSpecialist(ctx context.Context, id string) (*pkg.Specialist, error) {
	var s pkg.Specialist
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, specialty, available FROM specialists WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Specialty, &s.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("specialist %s: %w", id, pkg.ErrNotFound)
		}
		return nil, err
	}
	return &s, nil
}

// FindAvailableSpecialist returns the first available specialist whose
// specialty matches case-insensitively, ordered by name.
func (r *Repository) FindAvailableSpecialist(ctx context.Context, specialty string) (*pkg.Specialist, error) {
	var s pkg.Specialist
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, specialty, available
         FROM specialists
         WHERE lower(specialty) = lower($1) AND available
         ORDER BY name, id
         LIMIT 1`, specialty,
	).Scan(&s.ID, &s.Name, &s.Specialty, &s.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("specialist for %q: %w", specialty, pkg.ErrNotFound)
		}
		return nil, err
	}
	return &s, nil
}

// UpsertSpecialist creates or replaces a specialist row.
func (r *Repository) UpsertSpecialist(ctx context.Context, s *pkg.Specialist) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO specialists (id, name, specialty, available)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (id) DO UPDATE
         SET name = EXCLUDED.name, specialty = EXCLUDED.specialty, available = EXCLUDED.available`,
		s.ID, s.Name, s.Specialty, s.Available,
	)
	return err
}

// AppendTriage inserts a triage record.  Records are never updated.
func (r *Repository) AppendTriage(ctx context.Context, rec *pkg.TriageRecord) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO triage_records (id, conversation_id, symptoms, specialty, specialist_id, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, nullString(rec.ConversationID), rec.Symptoms, rec.Specialty, nullString(rec.SpecialistID), rec.CreatedAt,
	)
	return err
}

// GetTriage loads a triage record by id.
func (r *Repository) GetTriage(ctx context.Context, id string) (*pkg.TriageRecord, error) {
	var (
		rec          pkg.TriageRecord
		convID, spID sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, conversation_id, symptoms, specialty, specialist_id, created_at
         FROM triage_records WHERE id = $1`, id,
	).Scan(&rec.ID, &convID, &rec.Symptoms, &rec.Specialty, &spID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("triage %s: %w", id, pkg.ErrNotFound)
		}
		return nil, err
	}
	rec.ConversationID = convID.String
	rec.SpecialistID = spID.String
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
