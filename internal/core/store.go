package core

import (
	"context"

	"triage-chatbot/pkg"
)

// Store is the document store the core reads and writes.  Implementations
// must keep a conversation's messages in insertion order and return
// pkg.ErrNotFound (possibly wrapped) for unknown identities.
type Store interface {
	GetConversation(ctx context.Context, id string) (*pkg.Conversation, error)
	SaveConversation(ctx context.Context, conv *pkg.Conversation) error
	GetSpecialist(ctx context.Context, id string) (*pkg.Specialist, error)
	// FindAvailableSpecialist matches specialty case-insensitively.
	FindAvailableSpecialist(ctx context.Context, specialty string) (*pkg.Specialist, error)
	AppendTriage(ctx context.Context, rec *pkg.TriageRecord) error
	GetTriage(ctx context.Context, id string) (*pkg.TriageRecord, error)
}

// Locker serialises work on one key.  The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// HandoffNotifier is told when a conversation is bound to a specialist.
type HandoffNotifier interface {
	NotifyHandoff(ctx context.Context, conversationID, specialistID string) error
}

func lockConversation(ctx context.Context, l Locker, id string) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	return l.Lock(ctx, "conversation:"+id)
}
