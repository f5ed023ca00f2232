package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/pcoutinho/legal-management/internal/core/events"
)

const EventTypeRecorded = "audit.recorded"

// auditEvent carries the entry through the event bus.
type auditEvent struct {
	id         string
	occurredAt time.Time
	entry      Entry
}

func (e auditEvent) EventType() string     { return EventTypeRecorded }
func (e auditEvent) EventID() string       { return e.id }
func (e auditEvent) OccurredAt() time.Time { return e.occurredAt }
func (e auditEvent) Payload() interface{}  { return e.entry }

// BusRecorder publishes entries onto the event bus. The business mutation's
// transaction has committed before Record is called; the write itself
// happens on a handler goroutine detached from the request's cancellation,
// so a client disconnect never drops an audit row.
type BusRecorder struct {
	bus    *events.EventBus
	logger *slog.Logger
}

func NewBusRecorder(bus *events.EventBus, repo Repository, logger *slog.Logger) *BusRecorder {
	r := &BusRecorder{bus: bus, logger: logger}

	bus.Subscribe(EventTypeRecorded, func(ctx context.Context, event events.Event) error {
		entry, ok := event.Payload().(Entry)
		if !ok {
			logger.Error("audit event with unexpected payload", "event_id", event.EventID())
			return nil
		}

		log := &AuditLog{
			ID:           ulid.Make().String(),
			UserID:       entry.ActorID,
			Action:       entry.Action,
			ResourceType: entry.ResourceType,
			ResourceID:   entry.ResourceID,
			Details:      entry.Details,
			CreatedAt:    event.OccurredAt(),
		}
		if entry.IPAddress != "" {
			ip := entry.IPAddress
			log.IPAddress = &ip
		}

		if err := repo.Create(ctx, log); err != nil {
			// Swallowed: audit failure never propagates or rolls back the
			// already-committed business transaction.
			logger.Error("audit write failed",
				"action", entry.Action,
				"resource_type", entry.ResourceType,
				"error", err)
		}
		return nil
	})

	return r
}

func (r *BusRecorder) Record(ctx context.Context, entry Entry) {
	event := auditEvent{
		id:         uuid.NewString(),
		occurredAt: time.Now(),
		entry:      entry,
	}

	// Detach from the request's cancellation token so the write survives
	// client disconnects.
	if err := r.bus.Publish(context.WithoutCancel(ctx), event); err != nil {
		r.logger.Error("failed to publish audit event", "error", err)
	}
}
