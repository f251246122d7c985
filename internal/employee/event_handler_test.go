package employee_test

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/frahmantamala/missiontime/internal/core/events"
	"github.com/frahmantamala/missiontime/internal/employee"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type otherEvent struct {
	events.BaseEvent
}

var _ = Describe("AuditLog", func() {
	var (
		buf bytes.Buffer
		bus *events.EventBus
	)

	BeforeEach(func() {
		buf.Reset()
		slogger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
		bus = events.NewEventBus(slogger)
		employee.NewAuditLog(slogger).RegisterEventHandlers(bus)
	})

	It("should log every ledger event it receives", func() {
		err := bus.PublishSync(context.Background(), events.NewLedgerEvent(events.EventTypeEmployeeTransferred, 3, 8, 2, "2025-02-01"))
		Expect(err).NotTo(HaveOccurred())

		Expect(buf.String()).To(ContainSubstring("ledger change recorded"))
		Expect(buf.String()).To(ContainSubstring("employee_id=3"))
		Expect(buf.String()).To(ContainSubstring("effective_on=2025-02-01"))
	})

	It("should reject events of another shape", func() {
		audit := employee.NewAuditLog(slog.New(slog.NewTextHandler(&buf, nil)))
		err := audit.HandleLedgerEvent(context.Background(), &otherEvent{BaseEvent: events.BaseEvent{Type: events.EventTypeEmployeeFired}})
		Expect(err).To(HaveOccurred())
	})
})
