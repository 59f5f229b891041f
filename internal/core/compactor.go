package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"triage-chatbot/internal/llm"
	"triage-chatbot/pkg"
)

const (
	DefaultCompactThreshold = 30
	DefaultCompactKeep      = 10
	DefaultCompactTimeout   = 60 * time.Second

	summarySeparator = "\n"
)

var errEmptySynopsis = errors.New("empty synopsis")

// Compactor keeps a conversation's transcript bounded.  Once the message
// count reaches Threshold, everything but the last Keep messages is
// summarised into the running Summary and dropped.
type Compactor struct {
	Store     Store
	LLM       llm.Client
	Locker    Locker
	Log       *zap.Logger
	Threshold int
	Keep      int
	Timeout   time.Duration
	Now       func() time.Time

	group singleflight.Group
	wg    sync.WaitGroup
}

// NewCompactor returns a compactor with the default threshold and window.
func NewCompactor(store Store, client llm.Client) *Compactor {
	return &Compactor{
		Store:     store,
		LLM:       client,
		Log:       zap.NewNop(),
		Threshold: DefaultCompactThreshold,
		Keep:      DefaultCompactKeep,
		Timeout:   DefaultCompactTimeout,
		Now:       time.Now,
	}
}

// Dispatch compacts the conversation in the background.  The caller does
// not wait, and the run is not ordered against later turns on the same
// conversation.  Concurrent dispatches for one id share a single run.
func (c *Compactor) Dispatch(conversationID string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
		defer cancel()
		v, err, _ := c.group.Do(conversationID, func() (interface{}, error) {
			return c.Compact(ctx, conversationID)
		})
		if err != nil {
			c.Log.Warn("compaction skipped", zap.String("conversation_id", conversationID), zap.Error(err))
			return
		}
		if done, _ := v.(bool); done {
			c.Log.Info("conversation compacted", zap.String("conversation_id", conversationID))
		}
	}()
}

// Wait blocks until all dispatched compactions have finished.
func (c *Compactor) Wait() {
	c.wg.Wait()
}

// Compact runs one compaction synchronously.  It reports whether the
// conversation was rewritten; on any error the stored conversation is
// left untouched.
func (c *Compactor) Compact(ctx context.Context, conversationID string) (bool, error) {
	unlock, err := lockConversation(ctx, c.Locker, conversationID)
	if err != nil {
		return false, fmt.Errorf("lock conversation: %w", err)
	}
	defer unlock()

	conv, err := c.Store.GetConversation(ctx, conversationID)
	if err != nil {
		return false, fmt.Errorf("load conversation: %w", err)
	}
	if len(conv.Messages) < c.Threshold || len(conv.Messages) <= c.Keep {
		return false, nil
	}

	cut := len(conv.Messages) - c.Keep
	prompt := SummarizationInstruction + "\n\n" + RenderTranscript(conv.Messages[:cut])
	synopsis, err := c.LLM.Complete(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("summarize: %w", err)
	}
	synopsis = strings.TrimSpace(synopsis)
	if synopsis == "" {
		return false, errEmptySynopsis
	}

	conv.Summary = appendSummary(conv.Summary, synopsis)
	conv.Messages = append([]pkg.Message(nil), conv.Messages[cut:]...)
	conv.UpdatedAt = c.Now()
	if err := c.Store.SaveConversation(ctx, conv); err != nil {
		return false, fmt.Errorf("save compacted conversation: %w", err)
	}
	return true, nil
}

// appendSummary keeps the summary cumulative: prior text is always a
// prefix of the result.
func appendSummary(prior, synopsis string) string {
	if prior == "" {
		return synopsis
	}
	return prior + summarySeparator + synopsis
}
