package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"triage-chatbot/internal/llm"
	"triage-chatbot/pkg"
)

// Branch names the transition taken by a turn.
type Branch string

const (
	BranchConfirmed       Branch = "confirmed"
	BranchDeclined        Branch = "declined"
	BranchReasked         Branch = "reasked"
	BranchYesNoFallback   Branch = "yes_no_fallback"
	BranchSpecialistReply Branch = "specialist_reply"
	BranchSuggested       Branch = "suggested"
	BranchNoSpecialist    Branch = "no_specialist"
	BranchAssistantReply  Branch = "assistant_reply"
)

// compacts reports whether the branch triggers background compaction.  The
// two re-prompt branches add little text and skip it.
func (b Branch) compacts() bool {
	return b != BranchReasked && b != BranchYesNoFallback
}

// ChatService runs the per-conversation handoff state machine.  Each turn
// is a read-modify-write of the conversation document with exactly one
// save.  Without a Locker, concurrent turns on the same conversation may
// overwrite each other.
type ChatService struct {
	Store     Store
	LLM       llm.Client
	Intent    *IntentClassifier
	Triage    *TriageService
	Compactor *Compactor
	Locker    Locker
	Notifier  HandoffNotifier
	Log       *zap.Logger
	Now       func() time.Time
}

// NewChatService wires a chat service.  Locker, Notifier and Compactor are
// optional and may be set on the returned value.
func NewChatService(store Store, client llm.Client, intent *IntentClassifier, triage *TriageService) *ChatService {
	return &ChatService{
		Store:  store,
		LLM:    client,
		Intent: intent,
		Triage: triage,
		Log:    zap.NewNop(),
		Now:    time.Now,
	}
}

// TurnResult is the outcome of one inbound message.
type TurnResult struct {
	Reply        string
	Branch       Branch
	Conversation *pkg.Conversation
	Triage       *pkg.TriageRecord
}

// State is the conversation state after the turn.
func (r *TurnResult) State() pkg.ConversationState {
	return r.Conversation.State()
}

// CreateConversation stores a new, empty free-chat conversation.
func (s *ChatService) CreateConversation(ctx context.Context) (*pkg.Conversation, error) {
	conv := s.newConversation()
	if err := s.Store.SaveConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	s.Log.Info("conversation created", zap.String("conversation_id", conv.ID))
	return conv, nil
}

// newConversation builds an unsaved free-chat conversation.
func (s *ChatService) newConversation() *pkg.Conversation {
	now := s.Now()
	return &pkg.Conversation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetConversation loads a conversation.
func (s *ChatService) GetConversation(ctx context.Context, id string) (*pkg.Conversation, error) {
	return s.Store.GetConversation(ctx, id)
}

// HandleMessage processes one patient message.  An empty conversationID
// starts a new conversation, which is first stored by the turn's single
// save; an unknown one is rejected with pkg.ErrNotFound before anything is
// written.
func (s *ChatService) HandleMessage(ctx context.Context, conversationID, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	var conv *pkg.Conversation
	if conversationID == "" {
		conv = s.newConversation()
		conversationID = conv.ID
	}

	unlock, err := lockConversation(ctx, s.Locker, conversationID)
	if err != nil {
		return nil, fmt.Errorf("lock conversation: %w", err)
	}
	defer unlock()

	if conv == nil {
		conv, err = s.Store.GetConversation(ctx, conversationID)
		if err != nil {
			return nil, fmt.Errorf("load conversation: %w", err)
		}
	}
	log := s.Log.With(zap.String("conversation_id", conv.ID), zap.String("state", string(conv.State())))

	conv.Append(pkg.RoleUser, text, s.Now())

	var res *TurnResult
	switch conv.State() {
	case pkg.StatePendingConfirmation:
		res = s.handlePending(conv, text)
	case pkg.StateConnected:
		res = s.handleConnected(ctx, conv, text)
	default:
		res, err = s.handleFreeChat(ctx, conv, text)
		if err != nil {
			return nil, err
		}
	}

	conv.Append(pkg.RoleAssistant, res.Reply, s.Now())
	conv.UpdatedAt = s.Now()
	if err := s.Store.SaveConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	res.Conversation = conv
	log.Info("turn completed", zap.String("branch", string(res.Branch)), zap.String("next_state", string(conv.State())))

	if res.Branch == BranchConfirmed && s.Notifier != nil {
		if err := s.Notifier.NotifyHandoff(ctx, conv.ID, conv.BoundSpecialist.ID); err != nil {
			log.Warn("handoff notification failed", zap.Error(err))
		}
	}
	if res.Branch.compacts() && s.Compactor != nil {
		s.Compactor.Dispatch(conv.ID)
	}
	return res, nil
}

func (s *ChatService) handlePending(conv *pkg.Conversation, text string) *TurnResult {
	pending := conv.PendingSpecialist
	switch ParseShortReply(text) {
	case ShortYes:
		conv.BoundSpecialist = pending
		conv.PendingSpecialist = nil
		conv.AwaitingConfirmationRetry = false
		return &TurnResult{
			Reply:  fmt.Sprintf(ConnectedReply, pending.Name, pending.Specialty),
			Branch: BranchConfirmed,
		}
	case ShortNo:
		conv.PendingSpecialist = nil
		conv.AwaitingConfirmationRetry = false
		return &TurnResult{Reply: DeclinedReply, Branch: BranchDeclined}
	}
	if !conv.AwaitingConfirmationRetry {
		conv.AwaitingConfirmationRetry = true
		return &TurnResult{Reply: fmt.Sprintf(ReaskReply, pending.Name), Branch: BranchReasked}
	}
	conv.AwaitingConfirmationRetry = false
	return &TurnResult{Reply: YesNoFallbackReply, Branch: BranchYesNoFallback}
}

func (s *ChatService) handleConnected(ctx context.Context, conv *pkg.Conversation, text string) *TurnResult {
	reply := s.generate(ctx, conv, SpecialistPersona(conv.BoundSpecialist), text)
	return &TurnResult{Reply: reply, Branch: BranchSpecialistReply}
}

func (s *ChatService) handleFreeChat(ctx context.Context, conv *pkg.Conversation, text string) (*TurnResult, error) {
	if !s.Intent.WantsSpecialist(ctx, text) {
		reply := s.generate(ctx, conv, Persona{}, text)
		return &TurnResult{Reply: reply, Branch: BranchAssistantReply}, nil
	}

	specialty, symptoms := s.matchSpecialty(conv, text)
	tr, err := s.Triage.Assign(ctx, conv.ID, symptoms, specialty)
	if err != nil {
		return nil, err
	}
	if tr.Specialist == nil {
		return &TurnResult{
			Reply:  fmt.Sprintf(NoSpecialistReply, specialty),
			Branch: BranchNoSpecialist,
			Triage: tr.Record,
		}, nil
	}
	conv.PendingSpecialist = tr.Specialist
	conv.AwaitingConfirmationRetry = false
	return &TurnResult{
		Reply:  fmt.Sprintf(SuggestSpecialistReply, specialty, tr.Specialist.Name),
		Branch: BranchSuggested,
		Triage: tr.Record,
	}, nil
}

// matchSpecialty classifies the current message.  When that yields only
// the default, the recent user messages are tried together, since a
// request like "cho tôi gặp bác sĩ" usually follows the symptom
// description rather than containing it.
func (s *ChatService) matchSpecialty(conv *pkg.Conversation, text string) (string, string) {
	specialty := MatchSpecialty(text)
	if specialty != SpecialtyGeneral {
		return specialty, text
	}
	var parts []string
	for _, m := range Recent(conv.Messages, PromptWindow) {
		if m.Role == pkg.RoleUser {
			parts = append(parts, m.Content)
		}
	}
	combined := strings.Join(parts, ". ")
	if fromContext := MatchSpecialty(combined); fromContext != SpecialtyGeneral {
		return fromContext, combined
	}
	return specialty, text
}

// generate asks the text generator for a reply and degrades to
// ApologyReply on any failure.  The just-appended user message is passed
// as the question, not as history.
func (s *ChatService) generate(ctx context.Context, conv *pkg.Conversation, persona Persona, question string) string {
	history := conv.Messages[:len(conv.Messages)-1]
	prompt := BuildPrompt(conv.Summary, history, persona, question)
	reply, err := s.LLM.Complete(ctx, prompt)
	if err != nil {
		s.Log.Warn("text generation failed", zap.String("conversation_id", conv.ID), zap.Error(err))
		return ApologyReply
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ApologyReply
	}
	return reply
}
