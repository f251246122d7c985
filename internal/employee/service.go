package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/core/common/validation"
	employeeDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/employee"
	"github.com/frahmantamala/missiontime/internal/core/events"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
)

type RepositoryAPI interface {
	// Transaction runs fn against a repository bound to one database transaction.
	Transaction(fn func(repo RepositoryAPI) error) error

	CreateEmployee(e *employeeDatamodel.Employee) error
	GetEmployeeByID(id int64) (*employeeDatamodel.Employee, error)
	UpdateEmployeeFio(id int64, fio string) error
	ListEmployees(showFired bool) ([]*employeeDatamodel.SummaryRow, error)

	DepartmentExists(id int64) (bool, error)
	PositionExists(id int64) (bool, error)

	// GetSegments returns every segment of the employee ordered by start date, then id.
	GetSegments(employeeID int64) ([]*employeeDatamodel.PositionHistory, error)
	GetSegmentByID(id int64) (*employeeDatamodel.PositionHistory, error)
	CreateSegment(s *employeeDatamodel.PositionHistory) error
	CloseSegment(id int64, endDate string, action int, note *string) error
	ReopenSegment(id int64, action int) error
	DeleteSegment(id int64) error
	CountSegmentEntries(segmentID int64) (int64, error)

	GetHistory(employeeID int64) ([]*employeeDatamodel.HistoryRow, error)
	GetSegmentOwner(segmentID int64) (*employeeDatamodel.OwnerRow, error)
}

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
}

// NewService builds the ledger service. bus may be nil, in which case no events are published.
func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// ledger is the loaded segment list of one employee inside a transaction.
type ledger struct {
	segments []*Segment
}

func (l *ledger) state() State {
	return StateOf(l.segments)
}

func (l *ledger) open() *Segment {
	for _, s := range l.segments {
		if s.IsOpen() {
			return s
		}
	}
	return nil
}

// last returns the n-th most recent segment, 0 being the latest.
func (l *ledger) last(n int) *Segment {
	i := len(l.segments) - 1 - n
	if i < 0 {
		return nil
	}
	return l.segments[i]
}

func loadLedger(repo RepositoryAPI, employeeID int64) (*ledger, error) {
	emp, err := repo.GetEmployeeByID(employeeID)
	if err != nil {
		return nil, errors.NewInternalError("failed to get employee", err)
	}
	if emp == nil {
		return nil, errors.ErrEmployeeNotFound
	}
	rows, err := repo.GetSegments(employeeID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load employment segments", err)
	}
	segments, err := segmentsFromRows(rows)
	if err != nil {
		return nil, err
	}
	return &ledger{segments: segments}, nil
}

func checkReferences(repo RepositoryAPI, departmentID, positionID int64) error {
	ok, err := repo.DepartmentExists(departmentID)
	if err != nil {
		return errors.NewInternalError("failed to look up department", err)
	}
	if !ok {
		return errors.NewValidationFieldError("department_id", fmt.Sprintf("department %d does not exist", departmentID), errors.ErrCodeDepartmentNotFound)
	}
	ok, err = repo.PositionExists(positionID)
	if err != nil {
		return errors.NewInternalError("failed to look up position", err)
	}
	if !ok {
		return errors.NewValidationFieldError("position_id", fmt.Sprintf("position %d does not exist", positionID), errors.ErrCodePositionNotFound)
	}
	return nil
}

// checkAfterStart rejects a transfer or fire that does not fall strictly after the open
// segment's start, since closing the segment the day before would end it before it began.
func checkAfterStart(op Operation, open *Segment, date time.Time) error {
	if date.After(open.StartDate) {
		return nil
	}
	code := errors.ErrCodeDateBeforeStart
	if date.Equal(open.StartDate) {
		code = errors.ErrCodeSameDayTransition
	}
	return errors.NewInvalidTransitionError(
		fmt.Sprintf("%s date %s must be after the current segment start %s", op, dateutil.Format(date), dateutil.Format(open.StartDate)),
		code,
	)
}

// originalAction is the action a segment carried while it was open: Transfer when its
// predecessor was closed by a transfer on the day before it started, Hire otherwise.
func originalAction(s, predecessor *Segment) Action {
	if predecessor == nil || predecessor.EndDate == nil || predecessor.Action != ActionTransfer {
		return ActionHire
	}
	if dateutil.AddDays(*predecessor.EndDate, 1).Equal(s.StartDate) {
		return ActionTransfer
	}
	return ActionHire
}

func (s *Service) publish(ctx context.Context, eventType string, employeeID, segmentID, departmentID int64, on time.Time) {
	if s.bus == nil {
		return
	}
	event := events.NewLedgerEvent(eventType, employeeID, segmentID, departmentID, dateutil.Format(on))
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.logger.Warn("ledger event not delivered", "error", err, "event_type", eventType, "employee_id", employeeID)
	}
}

// ----------------- STATE TRANSITIONS -----------------

// Hire creates a new employee with an open segment, or reopens employment for a
// separated employee when in.EmployeeID is set.
func (s *Service) Hire(ctx context.Context, in HireInput) (*HireResult, error) {
	in.Fio = strings.TrimSpace(in.Fio)
	in.StartDate = dateutil.Truncate(in.StartDate)

	validator := validation.NewValidator()
	if in.EmployeeID == 0 {
		validator.Field("fio", in.Fio).Required().MaxLength(255)
	} else {
		validator.Field("employee_id", in.EmployeeID).Required()
	}
	validator.Field("department_id", in.DepartmentID).Required()
	validator.Field("position_id", in.PositionID).Required()
	validator.Field("start_date", in.StartDate).Required()
	if err := validator.Validate(); err != nil {
		return nil, err
	}

	result := &HireResult{EmployeeID: in.EmployeeID}
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		if err := checkReferences(repo, in.DepartmentID, in.PositionID); err != nil {
			return err
		}

		state := StateNone
		if in.EmployeeID == 0 {
			emp := &employeeDatamodel.Employee{Fio: in.Fio}
			if err := repo.CreateEmployee(emp); err != nil {
				return errors.NewInternalError("failed to create employee", err)
			}
			result.EmployeeID = emp.ID
		} else {
			l, err := loadLedger(repo, in.EmployeeID)
			if err != nil {
				return err
			}
			state = l.state()
			if last := l.last(0); last != nil && last.EndDate != nil && !in.StartDate.After(*last.EndDate) {
				return errors.NewInvalidTransitionError(
					fmt.Sprintf("rehire date %s must be after the last segment end %s", dateutil.Format(in.StartDate), dateutil.Format(*last.EndDate)),
					errors.ErrCodeOverlappingSpan,
				)
			}
		}
		if _, err := Transition(state, OpHire); err != nil {
			return err
		}

		row := SegmentToDataModel(&Segment{
			EmployeeID:   result.EmployeeID,
			DepartmentID: in.DepartmentID,
			PositionID:   in.PositionID,
			StartDate:    in.StartDate,
			Action:       ActionHire,
			Note:         in.Note,
		})
		if err := repo.CreateSegment(row); err != nil {
			return errors.NewInternalError("failed to create employment segment", err)
		}
		result.SegmentID = row.ID
		return nil
	})
	if err != nil {
		s.logger.Warn("hire rejected", "error", err, "employee_id", in.EmployeeID, "department_id", in.DepartmentID)
		return nil, err
	}

	s.logger.Info("employee hired",
		"employee_id", result.EmployeeID,
		"segment_id", result.SegmentID,
		"department_id", in.DepartmentID,
		"start_date", dateutil.Format(in.StartDate))
	s.publish(ctx, events.EventTypeEmployeeHired, result.EmployeeID, result.SegmentID, in.DepartmentID, in.StartDate)
	return result, nil
}

// Transfer closes the open segment the day before in.TransferDate and opens a new one
// in the target department and position. It returns the new segment's id.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (int64, error) {
	in.TransferDate = dateutil.Truncate(in.TransferDate)

	validator := validation.NewValidator()
	validator.Field("employee_id", in.EmployeeID).Required()
	validator.Field("department_id", in.NewDepartmentID).Required()
	validator.Field("position_id", in.NewPositionID).Required()
	validator.Field("transfer_date", in.TransferDate).Required()
	if err := validator.Validate(); err != nil {
		return 0, err
	}

	var segmentID int64
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		l, err := loadLedger(repo, in.EmployeeID)
		if err != nil {
			return err
		}
		if _, err := Transition(l.state(), OpTransfer); err != nil {
			return err
		}
		open := l.open()
		if err := checkAfterStart(OpTransfer, open, in.TransferDate); err != nil {
			return err
		}
		if err := checkReferences(repo, in.NewDepartmentID, in.NewPositionID); err != nil {
			return err
		}

		end := dateutil.Format(dateutil.AddDays(in.TransferDate, -1))
		if err := repo.CloseSegment(open.ID, end, int(ActionTransfer), open.Note); err != nil {
			return errors.NewInternalError("failed to close employment segment", err)
		}

		row := SegmentToDataModel(&Segment{
			EmployeeID:   in.EmployeeID,
			DepartmentID: in.NewDepartmentID,
			PositionID:   in.NewPositionID,
			StartDate:    in.TransferDate,
			Action:       ActionTransfer,
			Note:         in.Note,
		})
		if err := repo.CreateSegment(row); err != nil {
			return errors.NewInternalError("failed to create employment segment", err)
		}
		segmentID = row.ID
		return nil
	})
	if err != nil {
		s.logger.Warn("transfer rejected", "error", err, "employee_id", in.EmployeeID, "transfer_date", dateutil.Format(in.TransferDate))
		return 0, err
	}

	s.logger.Info("employee transferred",
		"employee_id", in.EmployeeID,
		"segment_id", segmentID,
		"department_id", in.NewDepartmentID,
		"transfer_date", dateutil.Format(in.TransferDate))
	s.publish(ctx, events.EventTypeEmployeeTransferred, in.EmployeeID, segmentID, in.NewDepartmentID, in.TransferDate)
	return segmentID, nil
}

// Fire closes the open segment the day before in.FireDate. The segment keeps its note
// unless a new one is given. It returns the closed segment's id.
func (s *Service) Fire(ctx context.Context, in FireInput) (int64, error) {
	in.FireDate = dateutil.Truncate(in.FireDate)

	validator := validation.NewValidator()
	validator.Field("employee_id", in.EmployeeID).Required()
	validator.Field("fire_date", in.FireDate).Required()
	if err := validator.Validate(); err != nil {
		return 0, err
	}

	var closed *Segment
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		l, err := loadLedger(repo, in.EmployeeID)
		if err != nil {
			return err
		}
		if _, err := Transition(l.state(), OpFire); err != nil {
			return err
		}
		open := l.open()
		if err := checkAfterStart(OpFire, open, in.FireDate); err != nil {
			return err
		}

		note := open.Note
		if in.Note != nil {
			note = in.Note
		}
		end := dateutil.Format(dateutil.AddDays(in.FireDate, -1))
		if err := repo.CloseSegment(open.ID, end, int(ActionFire), note); err != nil {
			return errors.NewInternalError("failed to close employment segment", err)
		}
		closed = open
		return nil
	})
	if err != nil {
		s.logger.Warn("fire rejected", "error", err, "employee_id", in.EmployeeID, "fire_date", dateutil.Format(in.FireDate))
		return 0, err
	}

	s.logger.Info("employee fired",
		"employee_id", in.EmployeeID,
		"segment_id", closed.ID,
		"fire_date", dateutil.Format(in.FireDate))
	s.publish(ctx, events.EventTypeEmployeeFired, in.EmployeeID, closed.ID, closed.DepartmentID, in.FireDate)
	return closed.ID, nil
}

// CancelLastOperation reverses exactly one step. For an active employee it undoes the
// last transfer, deleting the new segment and reopening its predecessor; this is refused
// while the new segment has time entries. For a separated employee it undoes the last fire.
// It returns the segment that is open afterwards.
func (s *Service) CancelLastOperation(ctx context.Context, employeeID int64) (*Segment, error) {
	if err := validation.ValidateID("employee_id", employeeID); err != nil {
		return nil, err
	}

	var reopened *Segment
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		l, err := loadLedger(repo, employeeID)
		if err != nil {
			return err
		}
		state := l.state()
		if _, err := Transition(state, OpCancel); err != nil {
			return err
		}

		if state == StateActive {
			reopened, err = cancelTransfer(repo, l)
		} else {
			reopened, err = cancelFire(repo, l)
		}
		return err
	})
	if err != nil {
		s.logger.Warn("cancel rejected", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("last operation cancelled", "employee_id", employeeID, "segment_id", reopened.ID)
	s.publish(ctx, events.EventTypeOperationCancelled, employeeID, reopened.ID, reopened.DepartmentID, reopened.StartDate)
	return reopened, nil
}

func cancelTransfer(repo RepositoryAPI, l *ledger) (*Segment, error) {
	current, prev := l.last(0), l.last(1)
	if !current.IsOpen() || current.Action != ActionTransfer || originalAction(current, prev) != ActionTransfer {
		return nil, errors.NewInvalidTransitionError("the open segment was not created by a transfer; nothing to cancel", errors.ErrCodeNothingToCancel)
	}

	count, err := repo.CountSegmentEntries(current.ID)
	if err != nil {
		return nil, errors.NewInternalError("failed to count timesheet entries", err)
	}
	if count > 0 {
		return nil, errors.NewConflictError(
			fmt.Sprintf("cannot cancel transfer: segment %d has %d timesheet entries", current.ID, count),
			errors.ErrCodeHasEntries, "timesheet entries", count,
		)
	}

	if err := repo.DeleteSegment(current.ID); err != nil {
		return nil, errors.NewInternalError("failed to delete employment segment", err)
	}
	action := originalAction(prev, l.last(2))
	if err := repo.ReopenSegment(prev.ID, int(action)); err != nil {
		return nil, errors.NewInternalError("failed to reopen employment segment", err)
	}
	prev.EndDate = nil
	prev.Action = action
	return prev, nil
}

func cancelFire(repo RepositoryAPI, l *ledger) (*Segment, error) {
	last := l.last(0)
	if last.Action != ActionFire {
		return nil, errors.NewInvalidTransitionError("the last segment was not closed by a fire; nothing to cancel", errors.ErrCodeNothingToCancel)
	}
	// the reopened segment must stay the only open one and the latest one
	for _, seg := range l.segments {
		if seg.ID == last.ID {
			continue
		}
		if seg.IsOpen() || !seg.StartDate.Before(last.StartDate) {
			return nil, errors.NewInvalidTransitionError(
				fmt.Sprintf("segment %d overlaps the segment being reopened", seg.ID),
				errors.ErrCodeOverlappingSpan,
			)
		}
	}

	action := originalAction(last, l.last(1))
	if err := repo.ReopenSegment(last.ID, int(action)); err != nil {
		return nil, errors.NewInternalError("failed to reopen employment segment", err)
	}
	last.EndDate = nil
	last.Action = action
	return last, nil
}

// ----------------- EMPLOYEES -----------------

func (s *Service) UpdateFio(employeeID int64, fio string) error {
	fio = strings.TrimSpace(fio)
	validator := validation.NewValidator()
	validator.Field("employee_id", employeeID).Required()
	validator.Field("fio", fio).Required().MaxLength(255)
	if err := validator.Validate(); err != nil {
		return err
	}

	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		emp, err := repo.GetEmployeeByID(employeeID)
		if err != nil {
			return errors.NewInternalError("failed to get employee", err)
		}
		if emp == nil {
			return errors.ErrEmployeeNotFound
		}
		if err := repo.UpdateEmployeeFio(employeeID, fio); err != nil {
			return errors.NewInternalError("failed to update employee", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update employee fio", "error", err, "employee_id", employeeID)
		return err
	}
	return nil
}

func (s *Service) Get(employeeID int64) (*Employee, error) {
	emp, err := s.repo.GetEmployeeByID(employeeID)
	if err != nil {
		s.logger.Error("failed to get employee", "error", err, "employee_id", employeeID)
		return nil, errors.NewInternalError("failed to get employee", err)
	}
	if emp == nil {
		return nil, errors.ErrEmployeeNotFound
	}
	return &Employee{ID: emp.ID, Fio: emp.Fio}, nil
}

// List returns active employees ordered by name; showFired adds separated ones.
func (s *Service) List(showFired bool) ([]*Summary, error) {
	rows, err := s.repo.ListEmployees(showFired)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, errors.NewInternalError("failed to list employees", err)
	}
	out := make([]*Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, &Summary{
			ID:             r.ID,
			Fio:            r.Fio,
			DepartmentID:   r.DepartmentID,
			DepartmentName: r.DepartmentName,
			PositionID:     r.PositionID,
			PositionName:   r.PositionName,
		})
	}
	return out, nil
}

func (s *Service) State(employeeID int64) (State, error) {
	l, err := loadLedger(s.repo, employeeID)
	if err != nil {
		return StateNone, err
	}
	return l.state(), nil
}

// History returns the employee's segments in chronological order.
func (s *Service) History(employeeID int64) ([]*HistoryItem, error) {
	if _, err := s.Get(employeeID); err != nil {
		return nil, err
	}
	rows, err := s.repo.GetHistory(employeeID)
	if err != nil {
		s.logger.Error("failed to load employee history", "error", err, "employee_id", employeeID)
		return nil, errors.NewInternalError("failed to load employee history", err)
	}
	out := make([]*HistoryItem, 0, len(rows))
	for _, r := range rows {
		seg, err := SegmentFromDataModel(&r.PositionHistory)
		if err != nil {
			return nil, errors.NewInternalError(fmt.Sprintf("segment %d has a malformed date", r.ID), err)
		}
		out = append(out, &HistoryItem{Segment: *seg, DepartmentName: r.DepartmentName, PositionName: r.PositionName})
	}
	return out, nil
}

// CurrentAssignment returns the open segment with its department and position names.
func (s *Service) CurrentAssignment(employeeID int64) (*HistoryItem, error) {
	history, err := s.History(employeeID)
	if err != nil {
		return nil, err
	}
	for _, h := range history {
		if h.IsOpen() {
			return h, nil
		}
	}
	return nil, errors.NewNotFoundError(fmt.Sprintf("employee %d has no open segment", employeeID), errors.ErrCodeNoOpenSegment)
}

func (s *Service) Segment(segmentID int64) (*Segment, error) {
	row, err := s.repo.GetSegmentByID(segmentID)
	if err != nil {
		s.logger.Error("failed to get segment", "error", err, "segment_id", segmentID)
		return nil, errors.NewInternalError("failed to get segment", err)
	}
	if row == nil {
		return nil, errors.ErrSegmentNotFound
	}
	seg, err := SegmentFromDataModel(row)
	if err != nil {
		return nil, errors.NewInternalError("stored segment has a malformed date", err)
	}
	return seg, nil
}

// SegmentOwner names the employee and department of a segment.
func (s *Service) SegmentOwner(segmentID int64) (*Owner, error) {
	row, err := s.repo.GetSegmentOwner(segmentID)
	if err != nil {
		s.logger.Error("failed to get segment owner", "error", err, "segment_id", segmentID)
		return nil, errors.NewInternalError("failed to get segment owner", err)
	}
	if row == nil {
		return nil, errors.ErrSegmentNotFound
	}
	return &Owner{Fio: row.Fio, DepartmentName: row.DepartmentName}, nil
}
