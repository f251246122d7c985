package employee

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/missiontime/internal/core/events"
)

// AuditLog writes every committed ledger change to the structured log.
type AuditLog struct {
	logger *slog.Logger
}

func NewAuditLog(logger *slog.Logger) *AuditLog {
	return &AuditLog{logger: logger.With("component", "ledger_audit")}
}

func (a *AuditLog) HandleLedgerEvent(ctx context.Context, event events.Event) error {
	ledgerEvent, ok := event.(*events.LedgerEvent)
	if !ok {
		a.logger.Error("invalid event type for ledger audit handler", "event_type", event.EventType())
		return fmt.Errorf("expected LedgerEvent, got %T", event)
	}

	a.logger.InfoContext(ctx, "ledger change recorded",
		"event_type", ledgerEvent.EventType(),
		"event_id", ledgerEvent.EventID(),
		"employee_id", ledgerEvent.EmployeeID,
		"segment_id", ledgerEvent.SegmentID,
		"department_id", ledgerEvent.DepartmentID,
		"effective_on", ledgerEvent.EffectiveOn,
		"occurred_at", ledgerEvent.OccurredAt())
	return nil
}

func (a *AuditLog) RegisterEventHandlers(eventBus *events.EventBus) {
	for _, eventType := range events.LedgerEventTypes {
		eventBus.Subscribe(eventType, a.HandleLedgerEvent)
	}
}
