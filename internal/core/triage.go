package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"triage-chatbot/pkg"
)

// TriageService classifies symptom text, looks up an available specialist
// and writes the audit record.
type TriageService struct {
	Store Store
	Log   *zap.Logger
	Now   func() time.Time
}

// NewTriageService constructs a TriageService.
func NewTriageService(store Store) *TriageService {
	return &TriageService{Store: store, Log: zap.NewNop(), Now: time.Now}
}

// TriageResult is the outcome of one triage.  Specialist is nil when no
// available specialist matched.
type TriageResult struct {
	Record     *pkg.TriageRecord
	Specialist *pkg.Specialist
}

// Triage handles a symptom description submitted outside the chat flow.
// A non-empty conversationID must refer to an existing conversation.
func (t *TriageService) Triage(ctx context.Context, symptoms, conversationID string) (*TriageResult, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return nil, ErrEmptySymptoms
	}
	if conversationID != "" {
		if _, err := t.Store.GetConversation(ctx, conversationID); err != nil {
			return nil, fmt.Errorf("load conversation: %w", err)
		}
	}
	return t.Assign(ctx, conversationID, symptoms, MatchSpecialty(symptoms))
}

// Assign finds an available specialist for specialty and records the
// triage either way.
func (t *TriageService) Assign(ctx context.Context, conversationID, symptoms, specialty string) (*TriageResult, error) {
	specialist, err := t.Store.FindAvailableSpecialist(ctx, specialty)
	if err != nil {
		if !errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("find specialist: %w", err)
		}
		specialist = nil
	}

	rec := &pkg.TriageRecord{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Symptoms:       symptoms,
		Specialty:      specialty,
		CreatedAt:      t.Now(),
	}
	if specialist != nil {
		rec.SpecialistID = specialist.ID
	}
	if err := t.Store.AppendTriage(ctx, rec); err != nil {
		return nil, fmt.Errorf("append triage: %w", err)
	}
	t.Log.Info("triage recorded",
		zap.String("triage_id", rec.ID),
		zap.String("conversation_id", conversationID),
		zap.String("specialty", specialty),
		zap.Bool("matched", specialist != nil))
	return &TriageResult{Record: rec, Specialist: specialist}, nil
}

// GetTriage loads a triage record.
func (t *TriageService) GetTriage(ctx context.Context, id string) (*pkg.TriageRecord, error) {
	return t.Store.GetTriage(ctx, id)
}

// GetSpecialist loads a specialist.
func (t *TriageService) GetSpecialist(ctx context.Context, id string) (*pkg.Specialist, error) {
	return t.Store.GetSpecialist(ctx, id)
}
