package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeEmployeeHired       = "employee.hired"
	EventTypeEmployeeTransferred = "employee.transferred"
	EventTypeEmployeeFired       = "employee.fired"
	EventTypeOperationCancelled  = "employee.operation_cancelled"
)

// LedgerEventTypes lists every event the employment ledger publishes.
var LedgerEventTypes = []string{
	EventTypeEmployeeHired,
	EventTypeEmployeeTransferred,
	EventTypeEmployeeFired,
	EventTypeOperationCancelled,
}

// LedgerEvent records one committed change to an employee's segments.
// SegmentID is the segment that is open (or was closed, for a fire) after the change.
type LedgerEvent struct {
	BaseEvent
	EmployeeID   int64  `json:"employee_id"`
	SegmentID    int64  `json:"segment_id"`
	DepartmentID int64  `json:"department_id"`
	EffectiveOn  string `json:"effective_on"`
}

func NewLedgerEvent(eventType string, employeeID, segmentID, departmentID int64, effectiveOn string) *LedgerEvent {
	return &LedgerEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id":   employeeID,
				"segment_id":    segmentID,
				"department_id": departmentID,
				"effective_on":  effectiveOn,
			},
		},
		EmployeeID:   employeeID,
		SegmentID:    segmentID,
		DepartmentID: departmentID,
		EffectiveOn:  effectiveOn,
	}
}
