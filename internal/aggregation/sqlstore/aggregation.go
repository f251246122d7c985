package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/missiontime/internal/aggregation"
	aggregationDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/aggregation"
	"github.com/jmoiron/sqlx"
)

// deptTree expands the root department bound to the first placeholder into its subtree.
const deptTree = `
WITH RECURSIVE dept(id) AS (
    SELECT CAST(? AS BIGINT)
    UNION ALL
    SELECT d.id FROM departments d JOIN dept ON d.parent_id = dept.id
)`

// clippedSegment selects a segment's bounds clipped to [?, ?] (window start, window end),
// binding start, start, end, end, end, end in that order.
const clippedSegment = `
    CASE WHEN h.start_date > ? THEN h.start_date ELSE ? END AS seg_start,
    CASE WHEN COALESCE(h.end_date, ?) < ? THEN COALESCE(h.end_date, ?) ELSE ? END AS seg_end`

const assignmentColumns = `
    h.id AS segment_id,
    e.id AS employee_id,
    e.fio AS fio,
    h.department_id AS department_id,
    d.name AS department_name,
    h.position_id AS position_id,
    p.name AS position_name,` + clippedSegment

const assignmentOrder = `ORDER BY e.fio, seg_start, d.name, p.name, h.id`

// workItemOrder puts coded items first.
const workItemOrder = `CASE WHEN TRIM(w.special_code) = '' THEN 1 ELSE 0 END, w.special_code, w.name, w.id`

type AggregationRepository struct {
	db *sqlx.DB
}

func NewAggregationRepository(db *sqlx.DB) aggregation.RepositoryAPI {
	return &AggregationRepository{db: db}
}

func (r *AggregationRepository) selectRows(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return r.db.SelectContext(ctx, dest, r.db.Rebind(query), args...)
}

// getRow loads one row into dest, reporting (false, nil) when nothing matches.
func (r *AggregationRepository) getRow(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := r.db.GetContext(ctx, dest, r.db.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *AggregationRepository) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM departments WHERE id = ?`), id)
	return n > 0, err
}

func (r *AggregationRepository) DepartmentLevel(ctx context.Context, id int64) (int, bool, error) {
	var level int
	found, err := r.getRow(ctx, &level, `SELECT level FROM departments WHERE id = ?`, id)
	return level, found, err
}

func (r *AggregationRepository) GetProgram(ctx context.Context, id int64) (*aggregationDatamodel.ProgramRow, error) {
	var p aggregationDatamodel.ProgramRow
	found, err := r.getRow(ctx, &p, `SELECT id, name, short_name, date_start, date_end FROM programs WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *AggregationRepository) GetSegment(ctx context.Context, id int64) (*aggregationDatamodel.SegmentSpanRow, error) {
	var s aggregationDatamodel.SegmentSpanRow
	found, err := r.getRow(ctx, &s, `
SELECT id, employee_id, department_id, start_date, end_date
FROM employee_positions_history
WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

func (r *AggregationRepository) Assignments(ctx context.Context, rootID int64, from, to string) ([]aggregationDatamodel.AssignmentRow, error) {
	rows := []aggregationDatamodel.AssignmentRow{}
	err := r.selectRows(ctx, &rows, deptTree+`
SELECT`+assignmentColumns+`
FROM employee_positions_history h
JOIN employees e ON e.id = h.employee_id
JOIN departments d ON d.id = h.department_id
JOIN positions p ON p.id = h.position_id
WHERE h.department_id IN (SELECT id FROM dept)
  AND h.start_date <= ?
  AND COALESCE(h.end_date, ?) >= ?
`+assignmentOrder,
		rootID,
		from, from, to, to, to, to,
		to, to, from)
	return rows, err
}

func (r *AggregationRepository) MinutesBySegmentDay(ctx context.Context, rootID int64, from, to string, programID int64) ([]aggregationDatamodel.SegmentDayRow, error) {
	rows := []aggregationDatamodel.SegmentDayRow{}
	err := r.selectRows(ctx, &rows, deptTree+`
SELECT
    te.employee_positions_history_id AS segment_id,
    te.work_date AS work_date,
    SUM(te.minutes) AS min_all,
    SUM(CASE WHEN ? = 0 OR te.program_id = ? THEN te.minutes ELSE 0 END) AS min_program
FROM timesheet_entries te
JOIN timesheets ts ON ts.id = te.timesheet_id
WHERE ts.department_id IN (SELECT id FROM dept)
  AND te.work_date BETWEEN ? AND ?
GROUP BY te.employee_positions_history_id, te.work_date
ORDER BY te.employee_positions_history_id, te.work_date`,
		rootID, programID, programID, from, to)
	return rows, err
}

func (r *AggregationRepository) WorkedSegments(ctx context.Context, rootID, programID int64, from, to string) ([]aggregationDatamodel.AssignmentRow, error) {
	rows := []aggregationDatamodel.AssignmentRow{}
	err := r.selectRows(ctx, &rows, deptTree+`,
worked AS (
    SELECT DISTINCT te.employee_positions_history_id AS segment_id
    FROM timesheet_entries te
    JOIN timesheets ts ON ts.id = te.timesheet_id
    WHERE ts.department_id IN (SELECT id FROM dept)
      AND te.program_id = ?
      AND te.work_date BETWEEN ? AND ?
      AND te.minutes > 0
)
SELECT`+assignmentColumns+`
FROM worked w
JOIN employee_positions_history h ON h.id = w.segment_id
JOIN employees e ON e.id = h.employee_id
JOIN departments d ON d.id = h.department_id
JOIN positions p ON p.id = h.position_id
`+assignmentOrder,
		rootID, programID, from, to,
		from, from, to, to, to, to)
	return rows, err
}

func (r *AggregationRepository) CountPositiveEntries(ctx context.Context, rootID, programID int64, from, to string) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, r.db.Rebind(deptTree+`
SELECT COUNT(*)
FROM timesheet_entries te
JOIN timesheets ts ON ts.id = te.timesheet_id
WHERE ts.department_id IN (SELECT id FROM dept)
  AND te.program_id = ?
  AND te.work_date BETWEEN ? AND ?
  AND te.minutes > 0`),
		rootID, programID, from, to)
	return n, err
}

func (r *AggregationRepository) SegmentWorkItems(ctx context.Context, segmentID, programID int64, from, to string) ([]aggregationDatamodel.WorkItemRow, error) {
	rows := []aggregationDatamodel.WorkItemRow{}
	err := r.selectRows(ctx, &rows, `
SELECT w.id AS work_id, w.name AS name, w.special_code AS special_code
FROM list_of_work w
WHERE w.id IN (
    SELECT te.work_id
    FROM timesheet_entries te
    WHERE te.employee_positions_history_id = ?
      AND te.program_id = ?
      AND te.work_date BETWEEN ? AND ?
)
ORDER BY `+workItemOrder,
		segmentID, programID, from, to)
	return rows, err
}

func (r *AggregationRepository) SegmentWorkDays(ctx context.Context, segmentID, programID int64, from, to string) ([]aggregationDatamodel.WorkDayRow, error) {
	rows := []aggregationDatamodel.WorkDayRow{}
	err := r.selectRows(ctx, &rows, `
SELECT
    w.id AS work_id,
    w.name AS name,
    w.special_code AS special_code,
    te.work_date AS work_date,
    SUM(te.minutes) AS minutes
FROM timesheet_entries te
JOIN list_of_work w ON w.id = te.work_id
WHERE te.employee_positions_history_id = ?
  AND te.program_id = ?
  AND te.work_date BETWEEN ? AND ?
GROUP BY w.id, w.name, w.special_code, te.work_date
ORDER BY w.id, te.work_date`,
		segmentID, programID, from, to)
	return rows, err
}

func (r *AggregationRepository) WorkDays(ctx context.Context, rootID, programID int64, from, to string) ([]aggregationDatamodel.WorkDayRow, error) {
	rows := []aggregationDatamodel.WorkDayRow{}
	err := r.selectRows(ctx, &rows, deptTree+`
SELECT
    w.id AS work_id,
    w.name AS name,
    w.special_code AS special_code,
    te.work_date AS work_date,
    SUM(te.minutes) AS minutes
FROM timesheet_entries te
JOIN timesheets ts ON ts.id = te.timesheet_id
JOIN list_of_work w ON w.id = te.work_id
WHERE ts.department_id IN (SELECT id FROM dept)
  AND te.program_id = ?
  AND te.work_date BETWEEN ? AND ?
  AND te.minutes > 0
GROUP BY w.id, w.name, w.special_code, te.work_date
ORDER BY `+workItemOrder+`, te.work_date`,
		rootID, programID, from, to)
	return rows, err
}

func (r *AggregationRepository) ProgramActiveDates(ctx context.Context, programID int64) ([]string, error) {
	dates := []string{}
	err := r.selectRows(ctx, &dates, `
SELECT work_date
FROM timesheet_entries
WHERE program_id = ?
GROUP BY work_date
HAVING SUM(minutes) > 0
ORDER BY work_date`, programID)
	return dates, err
}

func (r *AggregationRepository) Departments(ctx context.Context) ([]aggregationDatamodel.DepartmentRow, error) {
	rows := []aggregationDatamodel.DepartmentRow{}
	err := r.selectRows(ctx, &rows, `SELECT id, parent_id, name, level, sort_order FROM departments`)
	return rows, err
}

func (r *AggregationRepository) SegmentsOverlapping(ctx context.Context, from, to string) ([]aggregationDatamodel.SegmentSpanRow, error) {
	rows := []aggregationDatamodel.SegmentSpanRow{}
	err := r.selectRows(ctx, &rows, `
SELECT id, employee_id, department_id, start_date, end_date
FROM employee_positions_history
WHERE start_date <= ?
  AND (end_date IS NULL OR end_date >= ?)
ORDER BY id`, to, from)
	return rows, err
}
