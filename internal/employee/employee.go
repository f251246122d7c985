package employee

import (
	"fmt"
	"time"

	errors "github.com/frahmantamala/missiontime/internal"
	employeeDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/employee"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
)

// Action is the operation that created or closed a segment.
type Action int

const (
	ActionHire     Action = 1
	ActionTransfer Action = 2
	ActionFire     Action = 3
)

func (a Action) String() string {
	switch a {
	case ActionHire:
		return "hire"
	case ActionTransfer:
		return "transfer"
	case ActionFire:
		return "fire"
	}
	return "unknown"
}

// State is an employee's position in the employment state machine.
type State int

const (
	// StateNone is an employee without any segment.
	StateNone State = iota
	// StateActive is an employee with an open segment.
	StateActive
	// StateSeparated is an employee whose segments are all closed.
	StateSeparated
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateActive:
		return "active"
	case StateSeparated:
		return "separated"
	}
	return "unknown"
}

type Operation int

const (
	OpHire Operation = iota + 1
	OpTransfer
	OpFire
	OpCancel
)

func (o Operation) String() string {
	switch o {
	case OpHire:
		return "hire"
	case OpTransfer:
		return "transfer"
	case OpFire:
		return "fire"
	case OpCancel:
		return "cancel"
	}
	return "unknown"
}

// Transition returns the state reached by applying op in state s.
// Hiring an active employee is a validation error; every other illegal move is an
// invalid transition.
func Transition(s State, op Operation) (State, error) {
	switch op {
	case OpHire:
		switch s {
		case StateNone, StateSeparated:
			return StateActive, nil
		case StateActive:
			return s, errors.NewValidationError("employee already has an open segment", errors.ErrCodeAlreadyEmployed)
		}
	case OpTransfer:
		if s == StateActive {
			return StateActive, nil
		}
		return s, errors.NewInvalidTransitionError(fmt.Sprintf("cannot transfer a %s employee: no open segment", s), errors.ErrCodeNoOpenSegment)
	case OpFire:
		if s == StateActive {
			return StateSeparated, nil
		}
		return s, errors.NewInvalidTransitionError(fmt.Sprintf("cannot fire a %s employee: no open segment", s), errors.ErrCodeNoOpenSegment)
	case OpCancel:
		switch s {
		case StateActive, StateSeparated:
			return StateActive, nil
		case StateNone:
			return s, errors.NewInvalidTransitionError("employee has no operation to cancel", errors.ErrCodeNothingToCancel)
		}
	}
	return s, errors.NewInvalidTransitionError(fmt.Sprintf("unknown operation %d", op), errors.ErrCodeValidationFailed)
}

type Employee struct {
	ID  int64  `json:"id"`
	Fio string `json:"fio"`
}

// Segment is one continuous (department, position) assignment. EndDate is inclusive;
// nil means the segment is open.
type Segment struct {
	ID           int64
	EmployeeID   int64
	DepartmentID int64
	PositionID   int64
	StartDate    time.Time
	EndDate      *time.Time
	Action       Action
	Note         *string
}

func (s *Segment) IsOpen() bool {
	return s.EndDate == nil
}

// Covers reports whether d falls inside the segment.
func (s *Segment) Covers(d time.Time) bool {
	d = dateutil.Truncate(d)
	if d.Before(s.StartDate) {
		return false
	}
	return s.EndDate == nil || !d.After(*s.EndDate)
}

// StateOf derives the state from an employee's segments.
func StateOf(segments []*Segment) State {
	if len(segments) == 0 {
		return StateNone
	}
	for _, s := range segments {
		if s.IsOpen() {
			return StateActive
		}
	}
	return StateSeparated
}

// Summary is one row of the employee list: the employee and the open segment's
// department and position, which are empty for separated employees.
type Summary struct {
	ID             int64   `json:"id"`
	Fio            string  `json:"fio"`
	DepartmentID   *int64  `json:"department_id,omitempty"`
	DepartmentName *string `json:"department_name,omitempty"`
	PositionID     *int64  `json:"position_id,omitempty"`
	PositionName   *string `json:"position_name,omitempty"`
}

// HistoryItem is a segment with its position name, for the employee history view.
type HistoryItem struct {
	Segment
	DepartmentName string
	PositionName   string
}

// Owner names the employee and department a segment belongs to.
type Owner struct {
	Fio            string `json:"fio"`
	DepartmentName string `json:"department_name"`
}

type HireInput struct {
	// EmployeeID is zero for a new employee, or the id of a separated employee to rehire.
	EmployeeID   int64
	Fio          string
	DepartmentID int64
	PositionID   int64
	StartDate    time.Time
	Note         *string
}

type TransferInput struct {
	EmployeeID      int64
	NewDepartmentID int64
	NewPositionID   int64
	TransferDate    time.Time
	Note            *string
}

type FireInput struct {
	EmployeeID int64
	FireDate   time.Time
	Note       *string
}

type HireResult struct {
	EmployeeID int64 `json:"employee_id"`
	SegmentID  int64 `json:"segment_id"`
}

func SegmentFromDataModel(h *employeeDatamodel.PositionHistory) (*Segment, error) {
	start, err := dateutil.Parse(h.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := dateutil.ParsePtr(h.EndDate)
	if err != nil {
		return nil, err
	}
	return &Segment{
		ID:           h.ID,
		EmployeeID:   h.EmployeeID,
		DepartmentID: h.DepartmentID,
		PositionID:   h.PositionID,
		StartDate:    start,
		EndDate:      end,
		Action:       Action(h.Action),
		Note:         h.Note,
	}, nil
}

func SegmentToDataModel(s *Segment) *employeeDatamodel.PositionHistory {
	return &employeeDatamodel.PositionHistory{
		ID:           s.ID,
		EmployeeID:   s.EmployeeID,
		DepartmentID: s.DepartmentID,
		PositionID:   s.PositionID,
		StartDate:    dateutil.Format(s.StartDate),
		EndDate:      dateutil.FormatPtr(s.EndDate),
		Action:       int(s.Action),
		Note:         s.Note,
	}
}

func segmentsFromRows(rows []*employeeDatamodel.PositionHistory) ([]*Segment, error) {
	out := make([]*Segment, 0, len(rows))
	for _, r := range rows {
		s, err := SegmentFromDataModel(r)
		if err != nil {
			return nil, errors.NewInternalError(fmt.Sprintf("segment %d has a malformed date", r.ID), err)
		}
		out = append(out, s)
	}
	return out, nil
}
