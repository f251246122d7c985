// Package aggregation holds the read-side rows scanned by sqlx.
package aggregation

// AssignmentRow is a segment clipped to a query window, with display names.
type AssignmentRow struct {
	SegmentID      int64  `db:"segment_id"`
	EmployeeID     int64  `db:"employee_id"`
	Fio            string `db:"fio"`
	DepartmentID   int64  `db:"department_id"`
	DepartmentName string `db:"department_name"`
	PositionID     int64  `db:"position_id"`
	PositionName   string `db:"position_name"`
	SegStart       string `db:"seg_start"`
	SegEnd         string `db:"seg_end"`
}

// SegmentDayRow sums one segment's minutes on one day, in total and for a program.
type SegmentDayRow struct {
	SegmentID  int64  `db:"segment_id"`
	WorkDate   string `db:"work_date"`
	MinAll     int    `db:"min_all"`
	MinProgram int    `db:"min_program"`
}

type WorkItemRow struct {
	WorkID      int64  `db:"work_id"`
	Name        string `db:"name"`
	SpecialCode string `db:"special_code"`
}

// WorkDayRow sums minutes for one work item on one day.
type WorkDayRow struct {
	WorkID      int64  `db:"work_id"`
	Name        string `db:"name"`
	SpecialCode string `db:"special_code"`
	WorkDate    string `db:"work_date"`
	Minutes     int    `db:"minutes"`
}

type ProgramRow struct {
	ID        int64   `db:"id"`
	Name      string  `db:"name"`
	ShortName string  `db:"short_name"`
	DateStart string  `db:"date_start"`
	DateEnd   *string `db:"date_end"`
}

type SegmentSpanRow struct {
	ID           int64   `db:"id"`
	EmployeeID   int64   `db:"employee_id"`
	DepartmentID int64   `db:"department_id"`
	StartDate    string  `db:"start_date"`
	EndDate      *string `db:"end_date"`
}

type DepartmentRow struct {
	ID        int64  `db:"id"`
	ParentID  *int64 `db:"parent_id"`
	Name      string `db:"name"`
	Level     int    `db:"level"`
	SortOrder int    `db:"sort_order"`
}
