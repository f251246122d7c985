package timesheet

import (
	"time"

	timesheetDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
)

// Header is the monthly timesheet of one department.
type Header struct {
	ID           int64  `json:"id"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	DepartmentID int64  `json:"department_id"`
	CreatedAt    string `json:"created_at"`
}

// Entry is the minutes one segment logged on one day for a (program, work item) pair.
type Entry struct {
	ID          int64
	TimesheetID int64
	WorkDate    time.Time
	SegmentID   int64
	ProgramID   int64
	WorkItemID  int64
	Minutes     int
	Note        *string
}

// EntryKey is the natural key of an entry.
type EntryKey struct {
	TimesheetID int64
	WorkDate    time.Time
	SegmentID   int64
	ProgramID   int64
	WorkItemID  int64
}

type UpsertEntryInput struct {
	EntryKey
	Minutes int
	// Note replaces the stored note when set; a nil note leaves it untouched.
	Note *string
}

// SaveCellInput addresses a grid cell by department and month instead of header id.
type SaveCellInput struct {
	DepartmentID int64
	WorkDate     time.Time
	SegmentID    int64
	ProgramID    int64
	WorkItemID   int64
	Minutes      int
	Note         *string
}

// Scope selects one segment's entries for a (program, work item) pair within a month.
type Scope struct {
	SegmentID  int64
	ProgramID  int64
	WorkItemID int64
	Year       int
	Month      int
}

func (s Scope) bounds() (string, string) {
	m := time.Month(s.Month)
	return dateutil.Format(dateutil.MonthStart(s.Year, m)), dateutil.Format(dateutil.MonthEnd(s.Year, m))
}

func HeaderFromDataModel(t *timesheetDatamodel.Timesheet) *Header {
	return &Header{
		ID:           t.ID,
		Year:         t.Year,
		Month:        t.Month,
		DepartmentID: t.DepartmentID,
		CreatedAt:    t.CreatedAt,
	}
}

func EntryFromDataModel(e *timesheetDatamodel.Entry) (*Entry, error) {
	d, err := dateutil.Parse(e.WorkDate)
	if err != nil {
		return nil, err
	}
	return &Entry{
		ID:          e.ID,
		TimesheetID: e.TimesheetID,
		WorkDate:    d,
		SegmentID:   e.SegmentID,
		ProgramID:   e.ProgramID,
		WorkItemID:  e.WorkID,
		Minutes:     e.Minutes,
		Note:        e.Note,
	}, nil
}

func EntryToDataModel(e *Entry) *timesheetDatamodel.Entry {
	return &timesheetDatamodel.Entry{
		ID:          e.ID,
		TimesheetID: e.TimesheetID,
		WorkDate:    dateutil.Format(e.WorkDate),
		SegmentID:   e.SegmentID,
		ProgramID:   e.ProgramID,
		WorkID:      e.WorkItemID,
		Minutes:     e.Minutes,
		Note:        e.Note,
	}
}
