package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"triage-chatbot/internal/core"
	"triage-chatbot/internal/db"
	"triage-chatbot/pkg"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// fakeLLM records prompts and answers through respond.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	respond := f.respond
	f.mu.Unlock()
	if respond == nil {
		return "phản hồi", nil
	}
	return respond(prompt)
}

func (f *fakeLLM) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func replyWith(text string) func(string) (string, error) {
	return func(string) (string, error) { return text, nil }
}

func failWith(err error) func(string) (string, error) {
	return func(string) (string, error) { return "", err }
}

var errGenerator = errors.New("generator unavailable")

// stubFallback answers ambiguous intent questions.
type stubFallback struct {
	wants bool
	err   error
	calls int
}

func (s *stubFallback) WantsSpecialist(context.Context, string) (bool, error) {
	s.calls++
	return s.wants, s.err
}

type fixture struct {
	store    *db.MemoryStore
	llm      *fakeLLM
	fallback *stubFallback
	chat     *core.ChatService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := db.NewMemoryStore()
	gen := &fakeLLM{}
	fallback := &stubFallback{}

	triage := core.NewTriageService(store)
	triage.Now = clock
	chat := core.NewChatService(store, gen, core.NewIntentClassifier(fallback, nil), triage)
	chat.Now = clock
	return &fixture{store: store, llm: gen, fallback: fallback, chat: chat}
}

func (f *fixture) addSpecialist(t *testing.T, id, name, specialty string, available bool) *pkg.Specialist {
	t.Helper()
	sp := &pkg.Specialist{ID: id, Name: name, Specialty: specialty, Available: available}
	require.NoError(t, f.store.UpsertSpecialist(context.Background(), sp))
	return sp
}

func (f *fixture) seedConversation(t *testing.T, conv *pkg.Conversation) {
	t.Helper()
	require.NoError(t, f.store.SaveConversation(context.Background(), conv))
}

func (f *fixture) load(t *testing.T, id string) *pkg.Conversation {
	t.Helper()
	conv, err := f.store.GetConversation(context.Background(), id)
	require.NoError(t, err)
	return conv
}

func messages(n int) []pkg.Message {
	out := make([]pkg.Message, 0, n)
	for i := 0; i < n; i++ {
		role := pkg.RoleUser
		if i%2 == 1 {
			role = pkg.RoleAssistant
		}
		out = append(out, pkg.Message{Role: role, Content: "tin nhắn " + string(rune('a'+i%26)), CreatedAt: fixedNow})
	}
	return out
}
