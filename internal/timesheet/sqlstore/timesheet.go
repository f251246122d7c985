package sqlstore

import (
	"errors"

	catalogDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/catalog"
	employeeDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/employee"
	timesheetDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/missiontime/internal/timesheet"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// entryKeyColumns is the unique natural key of timesheet_entries.
var entryKeyColumns = []clause.Column{
	{Name: "timesheet_id"},
	{Name: "work_date"},
	{Name: "employee_positions_history_id"},
	{Name: "program_id"},
	{Name: "work_id"},
}

type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) timesheet.RepositoryAPI {
	return &TimesheetRepository{db: db}
}

func (r *TimesheetRepository) Transaction(fn func(repo timesheet.RepositoryAPI) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&TimesheetRepository{db: tx})
	})
}

func (r *TimesheetRepository) FindHeader(year, month int, departmentID int64) (*timesheetDatamodel.Timesheet, error) {
	var t timesheetDatamodel.Timesheet
	err := r.db.Where("year = ? AND month = ? AND department_id = ?", year, month, departmentID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TimesheetRepository) GetHeaderByID(id int64) (*timesheetDatamodel.Timesheet, error) {
	var t timesheetDatamodel.Timesheet
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TimesheetRepository) CreateHeader(t *timesheetDatamodel.Timesheet) error {
	return r.db.Create(t).Error
}

func (r *TimesheetRepository) exists(model interface{}, id int64) (bool, error) {
	var n int64
	err := r.db.Model(model).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *TimesheetRepository) DepartmentExists(id int64) (bool, error) {
	return r.exists(&catalogDatamodel.Department{}, id)
}

func (r *TimesheetRepository) DepartmentInSubtree(rootID, departmentID int64) (bool, error) {
	seen := make(map[int64]bool)
	id := &departmentID
	for id != nil && !seen[*id] {
		if *id == rootID {
			return true, nil
		}
		seen[*id] = true

		var dept catalogDatamodel.Department
		err := r.db.Select("id", "parent_id").Where("id = ?", *id).First(&dept).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		id = dept.ParentID
	}
	return false, nil
}

func (r *TimesheetRepository) ProgramExists(id int64) (bool, error) {
	return r.exists(&catalogDatamodel.Program{}, id)
}

func (r *TimesheetRepository) WorkItemExists(id int64) (bool, error) {
	return r.exists(&catalogDatamodel.WorkItem{}, id)
}

func (r *TimesheetRepository) GetSegmentByID(id int64) (*employeeDatamodel.PositionHistory, error) {
	var seg employeeDatamodel.PositionHistory
	err := r.db.Where("id = ?", id).First(&seg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &seg, nil
}

func (r *TimesheetRepository) UpsertEntry(e *timesheetDatamodel.Entry, updateNote bool) error {
	updates := []string{"minutes"}
	if updateNote {
		updates = append(updates, "note")
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   entryKeyColumns,
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(e).Error
}

func (r *TimesheetRepository) FindEntry(timesheetID int64, workDate string, segmentID, programID, workID int64) (*timesheetDatamodel.Entry, error) {
	var e timesheetDatamodel.Entry
	err := r.db.
		Where("timesheet_id = ? AND work_date = ?", timesheetID, workDate).
		Where("employee_positions_history_id = ? AND program_id = ? AND work_id = ?", segmentID, programID, workID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *TimesheetRepository) scoped(segmentID, programID, workID int64, from, to string) *gorm.DB {
	return r.db.Model(&timesheetDatamodel.Entry{}).
		Where("employee_positions_history_id = ? AND program_id = ? AND work_id = ?", segmentID, programID, workID).
		Where("work_date BETWEEN ? AND ?", from, to)
}

func (r *TimesheetRepository) CountEntries(segmentID, programID, workID int64, from, to string) (int64, error) {
	var n int64
	err := r.scoped(segmentID, programID, workID, from, to).Count(&n).Error
	return n, err
}

func (r *TimesheetRepository) DeleteEntries(segmentID, programID, workID int64, from, to string) (int64, error) {
	res := r.scoped(segmentID, programID, workID, from, to).Delete(&timesheetDatamodel.Entry{})
	return res.RowsAffected, res.Error
}

func (r *TimesheetRepository) CountEntriesForSegment(segmentID int64) (int64, error) {
	var n int64
	err := r.db.Model(&timesheetDatamodel.Entry{}).Where("employee_positions_history_id = ?", segmentID).Count(&n).Error
	return n, err
}
