package timesheet

import (
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/core/common/validation"
	"github.com/frahmantamala/missiontime/internal/employee"
	employeeDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/employee"
	timesheetDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
)

type RepositoryAPI interface {
	// Transaction runs fn against a repository bound to one database transaction.
	Transaction(fn func(repo RepositoryAPI) error) error

	FindHeader(year, month int, departmentID int64) (*timesheetDatamodel.Timesheet, error)
	GetHeaderByID(id int64) (*timesheetDatamodel.Timesheet, error)
	CreateHeader(t *timesheetDatamodel.Timesheet) error

	DepartmentExists(id int64) (bool, error)
	ProgramExists(id int64) (bool, error)
	WorkItemExists(id int64) (bool, error)
	GetSegmentByID(id int64) (*employeeDatamodel.PositionHistory, error)
	// DepartmentInSubtree reports whether departmentID is rootID or one of its descendants.
	DepartmentInSubtree(rootID, departmentID int64) (bool, error)

	// UpsertEntry inserts e or, on a natural key collision, overwrites its minutes
	// and, when updateNote is set, its note.
	UpsertEntry(e *timesheetDatamodel.Entry, updateNote bool) error
	FindEntry(timesheetID int64, workDate string, segmentID, programID, workID int64) (*timesheetDatamodel.Entry, error)
	CountEntries(segmentID, programID, workID int64, from, to string) (int64, error)
	DeleteEntries(segmentID, programID, workID int64, from, to string) (int64, error)
	CountEntriesForSegment(segmentID int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// GetOrCreateHeader returns the department's header for the month, creating it on first use.
func (s *Service) GetOrCreateHeader(year, month int, departmentID int64) (int64, error) {
	if err := validateHeader(year, month, departmentID); err != nil {
		return 0, err
	}

	var id int64
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		var err error
		id, err = getOrCreateHeader(repo, year, month, departmentID, s.now())
		return err
	})
	if err != nil {
		s.logger.Error("failed to get or create timesheet", "error", err, "year", year, "month", month, "department_id", departmentID)
		return 0, err
	}
	return id, nil
}

func getOrCreateHeader(repo RepositoryAPI, year, month int, departmentID int64, now time.Time) (int64, error) {
	existing, err := repo.FindHeader(year, month, departmentID)
	if err != nil {
		return 0, errors.NewInternalError("failed to look up timesheet", err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	ok, err := repo.DepartmentExists(departmentID)
	if err != nil {
		return 0, errors.NewInternalError("failed to look up department", err)
	}
	if !ok {
		return 0, errors.ErrDepartmentNotFound
	}

	header := &timesheetDatamodel.Timesheet{
		Year:         year,
		Month:        month,
		DepartmentID: departmentID,
		CreatedAt:    dateutil.Format(now),
	}
	if err := repo.CreateHeader(header); err != nil {
		return 0, errors.NewInternalError("failed to create timesheet", err)
	}
	return header.ID, nil
}

func (s *Service) GetHeader(id int64) (*Header, error) {
	row, err := s.repo.GetHeaderByID(id)
	if err != nil {
		s.logger.Error("failed to get timesheet", "error", err, "timesheet_id", id)
		return nil, errors.NewInternalError("failed to get timesheet", err)
	}
	if row == nil {
		return nil, errors.ErrTimesheetNotFound
	}
	return HeaderFromDataModel(row), nil
}

// UpsertEntry writes minutes for the entry's natural key. Saving the same key twice
// keeps a single row; zero minutes is stored as a zero row, not deleted.
func (s *Service) UpsertEntry(in UpsertEntryInput) error {
	in.WorkDate = dateutil.Truncate(in.WorkDate)
	if err := validateEntry(in); err != nil {
		return err
	}

	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		return upsertEntry(repo, in)
	})
	if err != nil {
		s.logger.Warn("timesheet entry not saved", "error", err,
			"timesheet_id", in.TimesheetID,
			"segment_id", in.SegmentID,
			"work_date", dateutil.Format(in.WorkDate))
		return err
	}
	return nil
}

// SaveCell resolves the department's header for the work date's month and upserts the
// entry, both in one transaction.
func (s *Service) SaveCell(in SaveCellInput) (int64, error) {
	in.WorkDate = dateutil.Truncate(in.WorkDate)
	year, month := in.WorkDate.Year(), int(in.WorkDate.Month())
	if err := validateHeader(year, month, in.DepartmentID); err != nil {
		return 0, err
	}
	entry := UpsertEntryInput{
		EntryKey: EntryKey{
			WorkDate:   in.WorkDate,
			SegmentID:  in.SegmentID,
			ProgramID:  in.ProgramID,
			WorkItemID: in.WorkItemID,
		},
		Minutes: in.Minutes,
		Note:    in.Note,
	}

	var timesheetID int64
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		id, err := getOrCreateHeader(repo, year, month, in.DepartmentID, s.now())
		if err != nil {
			return err
		}
		timesheetID = id
		entry.TimesheetID = id
		if err := validateEntry(entry); err != nil {
			return err
		}
		return upsertEntry(repo, entry)
	})
	if err != nil {
		s.logger.Warn("timesheet cell not saved", "error", err,
			"department_id", in.DepartmentID,
			"segment_id", in.SegmentID,
			"work_date", dateutil.Format(in.WorkDate))
		return 0, err
	}
	return timesheetID, nil
}

func upsertEntry(repo RepositoryAPI, in UpsertEntryInput) error {
	header, err := repo.GetHeaderByID(in.TimesheetID)
	if err != nil {
		return errors.NewInternalError("failed to get timesheet", err)
	}
	if header == nil {
		return errors.ErrTimesheetNotFound
	}
	if in.WorkDate.Year() != header.Year || int(in.WorkDate.Month()) != header.Month {
		return errors.NewValidationFieldError("work_date",
			fmt.Sprintf("work date %s is outside timesheet %04d-%02d", dateutil.Format(in.WorkDate), header.Year, header.Month),
			errors.ErrCodeInvalidDate)
	}

	row, err := repo.GetSegmentByID(in.SegmentID)
	if err != nil {
		return errors.NewInternalError("failed to get employment segment", err)
	}
	if row == nil {
		return errors.ErrSegmentNotFound
	}
	seg, err := employee.SegmentFromDataModel(row)
	if err != nil {
		return errors.NewInternalError(fmt.Sprintf("segment %d has a malformed date", row.ID), err)
	}
	if !seg.Covers(in.WorkDate) {
		return errors.NewValidationFieldError("work_date",
			fmt.Sprintf("segment %d does not cover %s", seg.ID, dateutil.Format(in.WorkDate)),
			errors.ErrCodeInvalidDate)
	}
	// the grid only reads a department's own and descendant timesheets
	owned, err := repo.DepartmentInSubtree(header.DepartmentID, seg.DepartmentID)
	if err != nil {
		return errors.NewInternalError("failed to resolve department tree", err)
	}
	if !owned {
		return errors.NewValidationFieldError("segment_id",
			fmt.Sprintf("segment %d belongs to department %d, outside timesheet department %d", seg.ID, seg.DepartmentID, header.DepartmentID),
			errors.ErrCodeForeignSegment)
	}

	ok, err := repo.ProgramExists(in.ProgramID)
	if err != nil {
		return errors.NewInternalError("failed to look up program", err)
	}
	if !ok {
		return errors.ErrProgramNotFound
	}
	ok, err = repo.WorkItemExists(in.WorkItemID)
	if err != nil {
		return errors.NewInternalError("failed to look up work item", err)
	}
	if !ok {
		return errors.ErrWorkItemNotFound
	}

	entry := EntryToDataModel(&Entry{
		TimesheetID: in.TimesheetID,
		WorkDate:    in.WorkDate,
		SegmentID:   in.SegmentID,
		ProgramID:   in.ProgramID,
		WorkItemID:  in.WorkItemID,
		Minutes:     in.Minutes,
		Note:        in.Note,
	})
	if err := repo.UpsertEntry(entry, in.Note != nil); err != nil {
		return errors.NewInternalError("failed to save timesheet entry", err)
	}
	return nil
}

// GetEntry returns the entry stored under key, or NotFound.
func (s *Service) GetEntry(key EntryKey) (*Entry, error) {
	row, err := s.repo.FindEntry(key.TimesheetID, dateutil.Format(key.WorkDate), key.SegmentID, key.ProgramID, key.WorkItemID)
	if err != nil {
		s.logger.Error("failed to get timesheet entry", "error", err, "timesheet_id", key.TimesheetID)
		return nil, errors.NewInternalError("failed to get timesheet entry", err)
	}
	if row == nil {
		return nil, errors.NewNotFoundError("Timesheet entry not found", errors.ErrCodeTimesheetNotFound)
	}
	entry, err := EntryFromDataModel(row)
	if err != nil {
		return nil, errors.NewInternalError("stored entry has a malformed date", err)
	}
	return entry, nil
}

// CountEntries counts a segment's entries for one program and work item in a month.
func (s *Service) CountEntries(scope Scope) (int64, error) {
	if err := validateScope(scope); err != nil {
		return 0, err
	}
	from, to := scope.bounds()
	n, err := s.repo.CountEntries(scope.SegmentID, scope.ProgramID, scope.WorkItemID, from, to)
	if err != nil {
		s.logger.Error("failed to count timesheet entries", "error", err, "segment_id", scope.SegmentID)
		return 0, errors.NewInternalError("failed to count timesheet entries", err)
	}
	return n, nil
}

// DeleteEntries removes the entries CountEntries would count and returns how many went.
func (s *Service) DeleteEntries(scope Scope) (int64, error) {
	if err := validateScope(scope); err != nil {
		return 0, err
	}
	from, to := scope.bounds()

	var n int64
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		var err error
		n, err = repo.DeleteEntries(scope.SegmentID, scope.ProgramID, scope.WorkItemID, from, to)
		if err != nil {
			return errors.NewInternalError("failed to delete timesheet entries", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to delete timesheet entries", "error", err, "segment_id", scope.SegmentID)
		return 0, err
	}
	s.logger.Info("timesheet entries deleted",
		"segment_id", scope.SegmentID,
		"program_id", scope.ProgramID,
		"work_id", scope.WorkItemID,
		"deleted", n)
	return n, nil
}

func (s *Service) CountEntriesForSegment(segmentID int64) (int64, error) {
	if err := validation.ValidateID("segment_id", segmentID); err != nil {
		return 0, err
	}
	n, err := s.repo.CountEntriesForSegment(segmentID)
	if err != nil {
		s.logger.Error("failed to count segment entries", "error", err, "segment_id", segmentID)
		return 0, errors.NewInternalError("failed to count timesheet entries", err)
	}
	return n, nil
}

func validateHeader(year, month int, departmentID int64) error {
	if err := validation.ValidateYearMonth(year, month); err != nil {
		return err
	}
	if err := validation.ValidateID("department_id", departmentID); err != nil {
		return err
	}
	return nil
}

func validateEntry(in UpsertEntryInput) error {
	validator := validation.NewValidator()
	validator.Field("timesheet_id", in.TimesheetID).Required()
	validator.Field("work_date", in.WorkDate).Required()
	validator.Field("segment_id", in.SegmentID).Required()
	validator.Field("program_id", in.ProgramID).Required()
	validator.Field("work_id", in.WorkItemID).Required()
	validator.Field("minutes", in.Minutes).
		MinInt(0, errors.ErrCodeInvalidMinutes).
		MaxInt(24*60, errors.ErrCodeInvalidMinutes)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

func validateScope(scope Scope) error {
	validator := validation.NewValidator()
	validator.Field("segment_id", scope.SegmentID).Required()
	validator.Field("program_id", scope.ProgramID).Required()
	validator.Field("work_id", scope.WorkItemID).Required()
	validator.Field("year", scope.Year).MinInt(1900, errors.ErrCodeInvalidDate).MaxInt(9999, errors.ErrCodeInvalidDate)
	validator.Field("month", scope.Month).MinInt(1, errors.ErrCodeInvalidDate).MaxInt(12, errors.ErrCodeInvalidDate)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}
