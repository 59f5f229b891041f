package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Handoff is the payload published when a patient accepts a specialist.
type Handoff struct {
	ConversationID string `json:"conversation_id"`
	SpecialistID   string `json:"specialist_id"`
}

// Notifier publishes handoffs on a Postgres channel so specialist
// dashboards can pick them up, and listens for them.
type Notifier struct {
	DB      *sql.DB
	DSN     string
	Channel string
	Log     *zap.Logger
}

// NewNotifier constructs a new Notifier.  The channel should match the
// POSTGRES_NOTIFY_CHANNEL environment variable.
func NewNotifier(db *sql.DB, dsn, channel string, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{DB: db, DSN: dsn, Channel: channel, Log: log}
}

// NotifyHandoff sends the handoff as a JSON payload.
func (n *Notifier) NotifyHandoff(ctx context.Context, conversationID, specialistID string) error {
	payload, err := json.Marshal(Handoff{ConversationID: conversationID, SpecialistID: specialistID})
	if err != nil {
		return err
	}
	// pg_notify takes bind parameters, NOTIFY does not
	_, err = n.DB.ExecContext(ctx, `SELECT pg_notify($1, $2)`, n.Channel, string(payload))
	return err
}

// Listen subscribes to the channel on a dedicated connection.  The
// returned channel is closed when ctx is cancelled.
func (n *Notifier) Listen(ctx context.Context) (<-chan Handoff, error) {
	listener := pq.NewListener(n.DSN, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			n.Log.Warn("notify listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	if err := listener.Listen(n.Channel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen %q: %w", n.Channel, err)
	}

	out := make(chan Handoff)
	go func() {
		defer func() {
			_ = listener.Close()
			close(out)
		}()
		ping := time.NewTicker(90 * time.Second)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				// keeps the connection alive on idle channels
				go func() { _ = listener.Ping() }()
			case note := <-listener.Notify:
				// nil after a reconnect
				if note == nil {
					continue
				}
				var h Handoff
				if err := json.Unmarshal([]byte(note.Extra), &h); err != nil {
					n.Log.Warn("malformed handoff payload", zap.String("payload", note.Extra), zap.Error(err))
					continue
				}
				select {
				case out <- h:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
