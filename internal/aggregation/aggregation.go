package aggregation

import (
	"sort"
	"strings"
	"time"

	aggregationDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/aggregation"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
)

// MaxDays is the width of a month grid.
const MaxDays = 31

// DefaultRecentWeeks is how many active weeks a weekly rollup keeps when none is asked for.
const DefaultRecentWeeks = 6

// DayState tells an empty cell apart from a cell the employee could not have logged.
type DayState int

const (
	// NotApplicable marks days outside the segment's clipped window.
	NotApplicable DayState = iota
	Active
	// OutOfMonth marks grid columns past the month's last day.
	OutOfMonth
)

func (s DayState) String() string {
	switch s {
	case NotApplicable:
		return "not_applicable"
	case Active:
		return "active"
	case OutOfMonth:
		return "out_of_month"
	}
	return "unknown"
}

type DayCell struct {
	State DayState `json:"state"`
	// Minutes is what the cell shows: ProgramMinutes under a program filter, else AllMinutes.
	Minutes        int `json:"minutes"`
	AllMinutes     int `json:"all_minutes"`
	ProgramMinutes int `json:"program_minutes"`
}

// Display renders the cell as the grid shows it: "-" for not applicable, blank past
// the month end, H:MM otherwise.
func (c DayCell) Display() string {
	switch c.State {
	case NotApplicable:
		return "-"
	case OutOfMonth:
		return ""
	}
	return dateutil.FormatMinutes(c.Minutes)
}

// Assignment is an employment segment clipped to a query window.
type Assignment struct {
	SegmentID      int64     `json:"segment_id"`
	EmployeeID     int64     `json:"employee_id"`
	Fio            string    `json:"fio"`
	DepartmentID   int64     `json:"department_id"`
	DepartmentName string    `json:"department_name"`
	PositionID     int64     `json:"position_id"`
	PositionName   string    `json:"position_name"`
	SegStart       time.Time `json:"seg_start"`
	SegEnd         time.Time `json:"seg_end"`
}

func (a *Assignment) Window() Window {
	return Window{Start: a.SegStart, End: a.SegEnd}
}

type GridQuery struct {
	DepartmentID int64
	Year         int
	Month        int
	// ProgramID zero means every program.
	ProgramID int64
	// IncludeFired is accepted for callers but does not filter anything: whether a
	// segment shows is decided by date overlap alone.
	IncludeFired bool
}

type GridRow struct {
	Assignment
	Days           [MaxDays]DayCell `json:"days"`
	TotalMinutes   int              `json:"total_minutes"`
	ProgramMinutes int              `json:"program_minutes"`
}

type Grid struct {
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	DaysInMonth int       `json:"days_in_month"`
	ProgramID   int64     `json:"program_id"`
	Rows        []GridRow `json:"rows"`
}

// WorkItemRef identifies a work item in rollups.
type WorkItemRef struct {
	WorkItemID  int64  `json:"work_id"`
	Name        string `json:"name"`
	SpecialCode string `json:"special_code"`
}

// DisplayName is "code — name", or just the name for uncoded items.
func (w WorkItemRef) DisplayName() string {
	code := strings.TrimSpace(w.SpecialCode)
	if code == "" {
		return w.Name
	}
	return code + " — " + w.Name
}

type WorkDay struct {
	WorkItemRef
	WorkDate time.Time `json:"work_date"`
	Minutes  int       `json:"minutes"`
}

// Breakdown lists what one segment worked on under a program.
type Breakdown struct {
	WorkItems []WorkItemRef `json:"work_items"`
	Days      []WorkDay     `json:"days"`
}

// Week is a numbered span of a program's calendar.
type Week struct {
	Number int       `json:"number"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type WeekRollupQuery struct {
	DepartmentID int64
	ProgramID    int64
	// Through is the last day the rollup covers, usually the end of the report week.
	Through time.Time
	LastN   int
}

type WeekRollupRow struct {
	WorkItemRef
	// Minutes is aligned with WeekRollup.Weeks.
	Minutes []int `json:"minutes"`
	Total   int   `json:"total"`
}

type WeekRollup struct {
	Weeks []Week          `json:"weeks"`
	Rows  []WeekRollupRow `json:"rows"`
}

type Headcount struct {
	DepartmentID int64  `json:"department_id"`
	Name         string `json:"name"`
	Level        int    `json:"level"`
	Depth        int    `json:"depth"`
	Employees    int    `json:"employees"`
}

func assignmentFromRow(r aggregationDatamodel.AssignmentRow) (Assignment, error) {
	start, err := dateutil.Parse(r.SegStart)
	if err != nil {
		return Assignment{}, err
	}
	end, err := dateutil.Parse(r.SegEnd)
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{
		SegmentID:      r.SegmentID,
		EmployeeID:     r.EmployeeID,
		Fio:            r.Fio,
		DepartmentID:   r.DepartmentID,
		DepartmentName: r.DepartmentName,
		PositionID:     r.PositionID,
		PositionName:   r.PositionName,
		SegStart:       start,
		SegEnd:         end,
	}, nil
}

func workDayFromRow(r aggregationDatamodel.WorkDayRow) (WorkDay, error) {
	d, err := dateutil.Parse(r.WorkDate)
	if err != nil {
		return WorkDay{}, err
	}
	return WorkDay{
		WorkItemRef: WorkItemRef{WorkItemID: r.WorkID, Name: r.Name, SpecialCode: r.SpecialCode},
		WorkDate:    d,
		Minutes:     r.Minutes,
	}, nil
}

// sortWorkItems orders coded items first, then by code, name and id.
func sortWorkItems(items []WorkItemRef) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ac, bc := strings.TrimSpace(a.SpecialCode), strings.TrimSpace(b.SpecialCode)
		if (ac == "") != (bc == "") {
			return ac != ""
		}
		if ac != bc {
			return ac < bc
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.WorkItemID < b.WorkItemID
	})
}

// ProgramCalendar splits [start, through] into weeks ending on Sunday. The first week
// starts on start itself and the last is cut at through.
func ProgramCalendar(start, through time.Time) []Week {
	start, through = dateutil.Truncate(start), dateutil.Truncate(through)
	var weeks []Week
	for cur, n := start, 1; !cur.After(through); n++ {
		end := dateutil.AddDays(dateutil.Monday(cur), 6)
		if end.After(through) {
			end = through
		}
		weeks = append(weeks, Week{Number: n, Start: cur, End: end})
		cur = dateutil.AddDays(end, 1)
	}
	return weeks
}
