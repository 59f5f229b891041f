package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"triage-chatbot/pkg"
)

// MemoryStore is an in-process document store for development and tests.
// Documents are copied on the way in and out, so callers never share state
// with the store.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*pkg.Conversation
	specialists   map[string]pkg.Specialist
	triage        map[string]pkg.TriageRecord
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*pkg.Conversation),
		specialists:   make(map[string]pkg.Specialist),
		triage:        make(map[string]pkg.TriageRecord),
	}
}

func (m *MemoryStore) GetConversation(_ context.Context, id string) (*pkg.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, pkg.ErrNotFound)
	}
	return conv.Clone(), nil
}

func (m *MemoryStore) SaveConversation(_ context.Context, conv *pkg.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[conv.ID] = conv.Clone()
	return nil
}

func (m *MemoryStore) GetSpecialist(_ context.Context, id string) (*pkg.Specialist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.specialists[id]
	if !ok {
		return nil, fmt.Errorf("specialist %s: %w", id, pkg.ErrNotFound)
	}
	return &s, nil
}

// FindAvailableSpecialist picks the first match by name, like the Postgres
// query does.
func (m *MemoryStore) FindAvailableSpecialist(_ context.Context, specialty string) (*pkg.Specialist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matches []pkg.Specialist
	for _, s := range m.specialists {
		if s.Available && strings.EqualFold(s.Specialty, specialty) {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("specialist for %q: %w", specialty, pkg.ErrNotFound)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Name != matches[j].Name {
			return matches[i].Name < matches[j].Name
		}
		return matches[i].ID < matches[j].ID
	})
	return &matches[0], nil
}

func (m *MemoryStore) UpsertSpecialist(_ context.Context, s *pkg.Specialist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specialists[s.ID] = *s
	return nil
}

func (m *MemoryStore) AppendTriage(_ context.Context, rec *pkg.TriageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.triage[rec.ID]; exists {
		return fmt.Errorf("triage %s already exists", rec.ID)
	}
	m.triage[rec.ID] = *rec
	return nil
}

func (m *MemoryStore) GetTriage(_ context.Context, id string) (*pkg.TriageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.triage[id]
	if !ok {
		return nil, fmt.Errorf("triage %s: %w", id, pkg.ErrNotFound)
	}
	return &rec, nil
}

// TriageRecords returns every record for a conversation in creation order.
func (m *MemoryStore) TriageRecords(conversationID string) []pkg.TriageRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []pkg.TriageRecord
	for _, rec := range m.triage {
		if rec.ConversationID == conversationID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
