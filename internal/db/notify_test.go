package db

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNotifier_RoundTrip publishes a handoff and reads it back through
// Listen.  It needs TEST_DATABASE_URL.
func TestNotifier_RoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer sqlDB.Close()

	// mixed case checks the channel name survives unquoted pg_notify
	channel := "Handoffs_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")
	n := NewNotifier(sqlDB, dsn, channel, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	handoffs, err := n.Listen(ctx)
	require.NoError(t, err)

	require.NoError(t, n.NotifyHandoff(ctx, "c1", "sp-1"))

	select {
	case h := <-handoffs:
		assert.Equal(t, Handoff{ConversationID: "c1", SpecialistID: "sp-1"}, h)
	case <-ctx.Done():
		t.Fatal("no handoff received")
	}

	cancel()
	for range handoffs {
	}
}
