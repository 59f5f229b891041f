package pkg

import "time"

// MessageRole describes who authored a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is a single transcript entry.  Messages are never edited once
// appended; compaction may drop a prefix of older ones.
type Message struct {
	Role      MessageRole `json:"role" firestore:"role"`
	Content   string      `json:"content" firestore:"content"`
	CreatedAt time.Time   `json:"created_at" firestore:"created_at"`
}

// ConversationState is derived from which specialist slot is populated.
type ConversationState string

const (
	StateFreeChat            ConversationState = "free_chat"
	StatePendingConfirmation ConversationState = "pending_confirmation"
	StateConnected           ConversationState = "connected"
)

// Specialist is a doctor record that triage can hand a patient off to.
type Specialist struct {
	ID        string `json:"id" firestore:"id"`
	Name      string `json:"name" firestore:"name"`
	Specialty string `json:"specialty" firestore:"specialty"`
	Available bool   `json:"available" firestore:"available"`
}

// Conversation is the document stored per patient thread.  At most one of
// BoundSpecialist and PendingSpecialist is set.
type Conversation struct {
	ID                        string      `json:"id" firestore:"-"`
	Messages                  []Message   `json:"messages" firestore:"messages"`
	BoundSpecialist           *Specialist `json:"bound_specialist,omitempty" firestore:"bound_specialist"`
	PendingSpecialist         *Specialist `json:"pending_specialist,omitempty" firestore:"pending_specialist"`
	AwaitingConfirmationRetry bool        `json:"awaiting_confirmation_retry" firestore:"awaiting_confirmation_retry"`
	Summary                   string      `json:"summary" firestore:"summary"`
	CreatedAt                 time.Time   `json:"created_at" firestore:"created_at"`
	UpdatedAt                 time.Time   `json:"updated_at" firestore:"updated_at"`
}

// State reports which phase of the handoff flow the conversation is in.
func (c *Conversation) State() ConversationState {
	switch {
	case c.BoundSpecialist != nil:
		return StateConnected
	case c.PendingSpecialist != nil:
		return StatePendingConfirmation
	default:
		return StateFreeChat
	}
}

// Append adds a message stamped with the given time.
func (c *Conversation) Append(role MessageRole, content string, at time.Time) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content, CreatedAt: at})
}

// Clone returns a deep copy so stores never share slices or pointers with
// callers.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = append([]Message(nil), c.Messages...)
	if c.BoundSpecialist != nil {
		s := *c.BoundSpecialist
		out.BoundSpecialist = &s
	}
	if c.PendingSpecialist != nil {
		s := *c.PendingSpecialist
		out.PendingSpecialist = &s
	}
	return &out
}

// TriageRecord is an append-only audit entry of a specialty classification.
type TriageRecord struct {
	ID             string    `json:"id" firestore:"-"`
	ConversationID string    `json:"conversation_id,omitempty" firestore:"conversation_id"`
	Symptoms       string    `json:"symptoms" firestore:"symptoms"`
	Specialty      string    `json:"specialty" firestore:"specialty"`
	SpecialistID   string    `json:"specialist_id,omitempty" firestore:"specialist_id"`
	CreatedAt      time.Time `json:"created_at" firestore:"created_at"`
}

// ChatRequest is the body of a message submission.
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// ChatResponse carries the assistant reply and the conversation state after
// the turn.
type ChatResponse struct {
	ConversationID    string            `json:"conversation_id"`
	Reply             string            `json:"reply"`
	State             ConversationState `json:"state"`
	PendingSpecialist *Specialist       `json:"pending_specialist,omitempty"`
	BoundSpecialist   *Specialist       `json:"bound_specialist,omitempty"`
}

// TriageRequest submits a symptom description outside the chat flow.
type TriageRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Symptoms       string `json:"symptoms"`
}

// TriageResponse reports the matched specialty and, when one is available,
// a specialist.
type TriageResponse struct {
	TriageID   string      `json:"triage_id"`
	Specialty  string      `json:"specialty"`
	Specialist *Specialist `json:"specialist,omitempty"`
}
