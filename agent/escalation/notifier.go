package escalation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Notifier delivers a routed escalation to its destination department.
type Notifier interface {
	Notify(ctx context.Context, callID string, record Record) error
}

// NoopNotifier drops notifications. Used when no queue is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, string, Record) error { return nil }

// Publisher is the message-queue collaborator used for delivery.
type Publisher interface {
	Publish(ctx context.Context, destination string, message any) error
}

type NotifierConfig struct {
	// Webhooks maps department identifiers to their intake webhook URLs.
	Webhooks map[string]string `envconfig:"WEBHOOKS" split_words:"true"`
}

// QueueNotifier publishes escalation records to per-department webhooks
// through a message queue, so delivery retries happen off the call path.
type QueueNotifier struct {
	publisher Publisher
	webhooks  map[string]string
}

func NewQueueNotifier(publisher Publisher, cfg NotifierConfig) *QueueNotifier {
	webhooks := make(map[string]string, len(cfg.Webhooks))
	for department, webhook := range cfg.Webhooks {
		if webhook != "" {
			webhooks[department] = webhook
		}
	}
	return &QueueNotifier{
		publisher: publisher,
		webhooks:  webhooks,
	}
}

type escalationMessage struct {
	CallID      string    `json:"call_id"`
	Category    Category  `json:"category"`
	Urgency     Urgency   `json:"urgency"`
	Department  string    `json:"department"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notify publishes the record to the department's webhook. Departments
// without a configured webhook are skipped, not failed.
func (n *QueueNotifier) Notify(ctx context.Context, callID string, record Record) error {
	webhook, ok := n.webhooks[record.Department]
	if !ok {
		log.Debug().
			Str("department", record.Department).
			Msg("no webhook configured for department, skipping notification")
		return nil
	}

	return n.publisher.Publish(ctx, webhook, escalationMessage{
		CallID:      callID,
		Category:    record.Category,
		Urgency:     record.Urgency,
		Department:  record.Department,
		Description: record.Description,
		CreatedAt:   record.CreatedAt,
	})
}
