package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	errors "github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/catalog"
	"github.com/frahmantamala/missiontime/internal/core/common/validation"
	aggregationDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/aggregation"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
)

// RepositoryAPI is the read side. Dates are yyyy-MM-dd strings and every range is inclusive.
// Queries taking a root department cover its whole subtree.
type RepositoryAPI interface {
	DepartmentExists(ctx context.Context, id int64) (bool, error)
	// DepartmentLevel returns false when the department does not exist.
	DepartmentLevel(ctx context.Context, id int64) (int, bool, error)
	GetProgram(ctx context.Context, id int64) (*aggregationDatamodel.ProgramRow, error)
	GetSegment(ctx context.Context, id int64) (*aggregationDatamodel.SegmentSpanRow, error)

	Assignments(ctx context.Context, rootID int64, from, to string) ([]aggregationDatamodel.AssignmentRow, error)
	// MinutesBySegmentDay reads entries filed under timesheets of the subtree.
	MinutesBySegmentDay(ctx context.Context, rootID int64, from, to string, programID int64) ([]aggregationDatamodel.SegmentDayRow, error)
	WorkedSegments(ctx context.Context, rootID, programID int64, from, to string) ([]aggregationDatamodel.AssignmentRow, error)
	CountPositiveEntries(ctx context.Context, rootID, programID int64, from, to string) (int64, error)

	SegmentWorkItems(ctx context.Context, segmentID, programID int64, from, to string) ([]aggregationDatamodel.WorkItemRow, error)
	SegmentWorkDays(ctx context.Context, segmentID, programID int64, from, to string) ([]aggregationDatamodel.WorkDayRow, error)
	WorkDays(ctx context.Context, rootID, programID int64, from, to string) ([]aggregationDatamodel.WorkDayRow, error)
	ProgramActiveDates(ctx context.Context, programID int64) ([]string, error)

	Departments(ctx context.Context) ([]aggregationDatamodel.DepartmentRow, error)
	SegmentsOverlapping(ctx context.Context, from, to string) ([]aggregationDatamodel.SegmentSpanRow, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) requireDepartment(ctx context.Context, id int64) error {
	if err := validation.ValidateID("department_id", id); err != nil {
		return err
	}
	ok, err := s.repo.DepartmentExists(ctx, id)
	if err != nil {
		return errors.NewInternalError("failed to look up department", err)
	}
	if !ok {
		return errors.ErrDepartmentNotFound
	}
	return nil
}

// DepartmentLevel returns the level of a report target.
func (s *Service) DepartmentLevel(ctx context.Context, id int64) (catalog.DepartmentLevel, error) {
	if err := validation.ValidateID("department_id", id); err != nil {
		return 0, err
	}
	level, ok, err := s.repo.DepartmentLevel(ctx, id)
	if err != nil {
		return 0, errors.NewInternalError("failed to look up department", err)
	}
	if !ok {
		return 0, errors.ErrDepartmentNotFound
	}
	return catalog.DepartmentLevel(level), nil
}

func (s *Service) program(ctx context.Context, id int64) (*aggregationDatamodel.ProgramRow, error) {
	if err := validation.ValidateID("program_id", id); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProgram(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to get program", err)
	}
	if p == nil {
		return nil, errors.ErrProgramNotFound
	}
	return p, nil
}

func validateWindow(w Window) error {
	if w.Start.IsZero() || w.End.IsZero() {
		return errors.NewValidationError("window start and end are required", errors.ErrCodeInvalidPeriod)
	}
	if w.Empty() {
		return errors.NewValidationFieldError("end", "end cannot be before start", errors.ErrCodeInvalidPeriod)
	}
	return nil
}

func toAssignments(rows []aggregationDatamodel.AssignmentRow) ([]Assignment, error) {
	out := make([]Assignment, 0, len(rows))
	for _, r := range rows {
		a, err := assignmentFromRow(r)
		if err != nil {
			return nil, errors.NewInternalError(fmt.Sprintf("segment %d has a malformed date", r.SegmentID), err)
		}
		out = append(out, a)
	}
	return out, nil
}

func toWorkDays(rows []aggregationDatamodel.WorkDayRow) ([]WorkDay, error) {
	out := make([]WorkDay, 0, len(rows))
	for _, r := range rows {
		d, err := workDayFromRow(r)
		if err != nil {
			return nil, errors.NewInternalError("timesheet entry has a malformed date", err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Assignments returns every segment in the department subtree overlapping w, clipped
// to w and ordered by fio, start, department, position and id. includeFired does not
// filter: a segment ended by a fire still shows for the days it covers.
func (s *Service) Assignments(ctx context.Context, departmentID int64, w Window, includeFired bool) ([]Assignment, error) {
	if err := s.requireDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	if err := validateWindow(w); err != nil {
		return nil, err
	}
	from, to := w.bounds()
	rows, err := s.repo.Assignments(ctx, departmentID, from, to)
	if err != nil {
		s.logger.Error("failed to list assignments", "error", err, "department_id", departmentID, "from", from, "to", to)
		return nil, errors.NewInternalError("failed to list assignments", err)
	}
	return toAssignments(rows)
}

// MonthGrid builds one row per segment of the subtree overlapping the month, with a cell
// per day. Minutes logged on days the segment does not cover are ignored.
func (s *Service) MonthGrid(ctx context.Context, q GridQuery) (*Grid, error) {
	if err := validation.ValidateYearMonth(q.Year, q.Month); err != nil {
		return nil, err
	}
	if q.ProgramID < 0 {
		return nil, errors.NewValidationFieldError("program_id", "program_id cannot be negative", errors.ErrCodeInvalidID)
	}
	w := MonthWindow(q.Year, time.Month(q.Month))

	assignments, err := s.Assignments(ctx, q.DepartmentID, w, q.IncludeFired)
	if err != nil {
		return nil, err
	}

	from, to := w.bounds()
	minutes, err := s.repo.MinutesBySegmentDay(ctx, q.DepartmentID, from, to, q.ProgramID)
	if err != nil {
		s.logger.Error("failed to sum minutes by day", "error", err, "department_id", q.DepartmentID, "year", q.Year, "month", q.Month)
		return nil, errors.NewInternalError("failed to sum minutes", err)
	}

	type key struct {
		segmentID int64
		day       int
	}
	byDay := make(map[key]aggregationDatamodel.SegmentDayRow, len(minutes))
	for _, m := range minutes {
		d, err := dateutil.Parse(m.WorkDate)
		if err != nil {
			return nil, errors.NewInternalError("timesheet entry has a malformed date", err)
		}
		byDay[key{m.SegmentID, d.Day()}] = m
	}

	grid := &Grid{
		Year:        q.Year,
		Month:       q.Month,
		DaysInMonth: dateutil.DaysInMonth(q.Year, time.Month(q.Month)),
		ProgramID:   q.ProgramID,
		Rows:        make([]GridRow, 0, len(assignments)),
	}
	for _, a := range assignments {
		row := GridRow{Assignment: a}
		seg := a.Window()
		for day := 1; day <= MaxDays; day++ {
			cell := &row.Days[day-1]
			if day > grid.DaysInMonth {
				cell.State = OutOfMonth
				continue
			}
			if !seg.Contains(dateutil.Date(q.Year, time.Month(q.Month), day)) {
				cell.State = NotApplicable
				continue
			}
			cell.State = Active
			m := byDay[key{a.SegmentID, day}]
			cell.AllMinutes = m.MinAll
			cell.ProgramMinutes = m.MinProgram
			cell.Minutes = m.MinAll
			if q.ProgramID != 0 {
				cell.Minutes = m.MinProgram
			}
			row.TotalMinutes += m.MinAll
			row.ProgramMinutes += m.MinProgram
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid, nil
}

// WorkedSegments returns the subtree's segments with positive minutes under the program
// within w, clipped to w.
func (s *Service) WorkedSegments(ctx context.Context, departmentID, programID int64, w Window) ([]Assignment, error) {
	if err := s.requireDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	if err := validation.ValidateID("program_id", programID); err != nil {
		return nil, err
	}
	if err := validateWindow(w); err != nil {
		return nil, err
	}

	from, to := w.bounds()
	rows, err := s.repo.WorkedSegments(ctx, departmentID, programID, from, to)
	if err != nil {
		s.logger.Error("failed to list worked segments", "error", err, "department_id", departmentID, "program_id", programID)
		return nil, errors.NewInternalError("failed to list worked segments", err)
	}
	return toAssignments(rows)
}

// HasHours reports whether anyone in the subtree logged positive minutes under the program within w.
func (s *Service) HasHours(ctx context.Context, departmentID, programID int64, w Window) (bool, error) {
	if err := validation.ValidateID("department_id", departmentID); err != nil {
		return false, err
	}
	if err := validation.ValidateID("program_id", programID); err != nil {
		return false, err
	}
	if err := validateWindow(w); err != nil {
		return false, err
	}

	from, to := w.bounds()
	n, err := s.repo.CountPositiveEntries(ctx, departmentID, programID, from, to)
	if err != nil {
		s.logger.Error("failed to count entries", "error", err, "department_id", departmentID, "program_id", programID)
		return false, errors.NewInternalError("failed to count entries", err)
	}
	return n > 0, nil
}

// SegmentWindow clips a segment to the month. The second result is false when the
// segment does not reach into the month.
func (s *Service) SegmentWindow(ctx context.Context, segmentID int64, year, month int) (Window, bool, error) {
	if err := validation.ValidateID("segment_id", segmentID); err != nil {
		return Window{}, false, err
	}
	if err := validation.ValidateYearMonth(year, month); err != nil {
		return Window{}, false, err
	}

	seg, err := s.repo.GetSegment(ctx, segmentID)
	if err != nil {
		return Window{}, false, errors.NewInternalError("failed to get employment segment", err)
	}
	if seg == nil {
		return Window{}, false, errors.ErrSegmentNotFound
	}
	start, err := dateutil.Parse(seg.StartDate)
	if err != nil {
		return Window{}, false, errors.NewInternalError("segment has a malformed start date", err)
	}
	end, err := dateutil.ParsePtr(seg.EndDate)
	if err != nil {
		return Window{}, false, errors.NewInternalError("segment has a malformed end date", err)
	}
	w, ok := Clip(start, end, MonthWindow(year, time.Month(month)))
	return w, ok, nil
}

// SegmentWorkBreakdown lists the work items a segment logged under the program within w
// and the minutes per (work item, day).
func (s *Service) SegmentWorkBreakdown(ctx context.Context, segmentID, programID int64, w Window) (*Breakdown, error) {
	if err := validation.ValidateID("segment_id", segmentID); err != nil {
		return nil, err
	}
	if err := validation.ValidateID("program_id", programID); err != nil {
		return nil, err
	}
	if err := validateWindow(w); err != nil {
		return nil, err
	}

	from, to := w.bounds()
	items, err := s.repo.SegmentWorkItems(ctx, segmentID, programID, from, to)
	if err != nil {
		s.logger.Error("failed to list segment work items", "error", err, "segment_id", segmentID)
		return nil, errors.NewInternalError("failed to list work items", err)
	}
	days, err := s.repo.SegmentWorkDays(ctx, segmentID, programID, from, to)
	if err != nil {
		s.logger.Error("failed to sum segment minutes", "error", err, "segment_id", segmentID)
		return nil, errors.NewInternalError("failed to sum minutes", err)
	}

	out := &Breakdown{WorkItems: make([]WorkItemRef, 0, len(items))}
	for _, it := range items {
		out.WorkItems = append(out.WorkItems, WorkItemRef{WorkItemID: it.WorkID, Name: it.Name, SpecialCode: it.SpecialCode})
	}
	if out.Days, err = toWorkDays(days); err != nil {
		return nil, err
	}
	return out, nil
}

// WorkDayRollup sums the subtree's positive minutes under the program per (work item, day).
func (s *Service) WorkDayRollup(ctx context.Context, departmentID, programID int64, w Window) ([]WorkDay, error) {
	if err := s.requireDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	if err := validation.ValidateID("program_id", programID); err != nil {
		return nil, err
	}
	if err := validateWindow(w); err != nil {
		return nil, err
	}

	from, to := w.bounds()
	rows, err := s.repo.WorkDays(ctx, departmentID, programID, from, to)
	if err != nil {
		s.logger.Error("failed to roll up work days", "error", err, "department_id", departmentID, "program_id", programID)
		return nil, errors.NewInternalError("failed to roll up work days", err)
	}
	return toWorkDays(rows)
}

// ProgramWeeks returns the Monday-start weeks in which anyone logged positive minutes
// under the program, numbered from 1 in date order.
func (s *Service) ProgramWeeks(ctx context.Context, programID int64) ([]Week, error) {
	if _, err := s.program(ctx, programID); err != nil {
		return nil, err
	}

	dates, err := s.repo.ProgramActiveDates(ctx, programID)
	if err != nil {
		s.logger.Error("failed to list program dates", "error", err, "program_id", programID)
		return nil, errors.NewInternalError("failed to list program dates", err)
	}

	var weeks []Week
	for _, raw := range dates {
		d, err := dateutil.Parse(raw)
		if err != nil {
			return nil, errors.NewInternalError("timesheet entry has a malformed date", err)
		}
		monday := dateutil.Monday(d)
		if n := len(weeks); n > 0 && weeks[n-1].Start.Equal(monday) {
			continue
		}
		weeks = append(weeks, Week{Number: len(weeks) + 1, Start: monday, End: dateutil.AddDays(monday, 6)})
	}
	return weeks, nil
}

// WeeksForMonth returns the program's active weeks whose Monday falls in the walk over
// the program's days within the month, keeping their program-wide numbers.
func (s *Service) WeeksForMonth(ctx context.Context, programID int64, year, month int) ([]Week, error) {
	if err := validation.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	p, err := s.program(ctx, programID)
	if err != nil {
		return nil, err
	}
	pStart, err := dateutil.Parse(p.DateStart)
	if err != nil {
		return nil, errors.NewInternalError("program has a malformed start date", err)
	}
	pEnd, err := dateutil.ParsePtr(p.DateEnd)
	if err != nil {
		return nil, errors.NewInternalError("program has a malformed end date", err)
	}
	span, ok := Clip(pStart, pEnd, MonthWindow(year, time.Month(month)))
	if !ok {
		return nil, nil
	}

	all, err := s.ProgramWeeks(ctx, programID)
	if err != nil {
		return nil, err
	}
	byMonday := make(map[time.Time]Week, len(all))
	for _, wk := range all {
		byMonday[wk.Start] = wk
	}

	var out []Week
	for monday := dateutil.Monday(span.Start); !monday.After(span.End); monday = dateutil.AddDays(monday, 7) {
		if wk, ok := byMonday[monday]; ok {
			out = append(out, wk)
		}
	}
	return out, nil
}

// WorkWeekRollup walks the months from the program start to q.Through one at a time,
// keeps the program-calendar weeks that have activity, and sums minutes per (work item,
// week) over the most recent q.LastN of them.
func (s *Service) WorkWeekRollup(ctx context.Context, q WeekRollupQuery) (*WeekRollup, error) {
	if err := s.requireDepartment(ctx, q.DepartmentID); err != nil {
		return nil, err
	}
	if q.Through.IsZero() {
		return nil, errors.NewValidationFieldError("through", "through date is required", errors.ErrCodeInvalidDate)
	}
	p, err := s.program(ctx, q.ProgramID)
	if err != nil {
		return nil, err
	}
	start, err := dateutil.Parse(p.DateStart)
	if err != nil {
		return nil, errors.NewInternalError("program has a malformed start date", err)
	}
	through := dateutil.Truncate(q.Through)
	lastN := q.LastN
	if lastN <= 0 {
		lastN = DefaultRecentWeeks
	}

	result := &WeekRollup{Weeks: []Week{}, Rows: []WeekRollupRow{}}
	if through.Before(start) {
		return result, nil
	}

	var days []WorkDay
	for month := dateutil.MonthStart(start.Year(), start.Month()); !month.After(through); month = month.AddDate(0, 1, 0) {
		part, err := s.WorkDayRollup(ctx, q.DepartmentID, q.ProgramID, MonthWindow(month.Year(), month.Month()))
		if err != nil {
			return nil, err
		}
		for _, d := range part {
			if d.Minutes > 0 && !d.WorkDate.After(through) {
				days = append(days, d)
			}
		}
	}

	var active []Week
	for _, wk := range ProgramCalendar(start, through) {
		window := Window{Start: wk.Start, End: wk.End}
		for _, d := range days {
			if window.Contains(d.WorkDate) {
				active = append(active, wk)
				break
			}
		}
	}
	if len(active) > lastN {
		active = active[len(active)-lastN:]
	}
	result.Weeks = active

	refs := make(map[int64]WorkItemRef)
	for _, d := range days {
		refs[d.WorkItemID] = d.WorkItemRef
	}
	ordered := make([]WorkItemRef, 0, len(refs))
	byWork := ByWeek(days, active)
	for id := range byWork {
		ordered = append(ordered, refs[id])
	}
	sortWorkItems(ordered)

	for _, ref := range ordered {
		row := WeekRollupRow{WorkItemRef: ref, Minutes: byWork[ref.WorkItemID]}
		for _, m := range row.Minutes {
			row.Total += m
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// DepartmentHeadcounts counts, per department, the distinct employees holding a segment
// that overlaps the month anywhere in its subtree. Departments with nobody are left out;
// the rest come in tree order.
func (s *Service) DepartmentHeadcounts(ctx context.Context, year, month int) ([]Headcount, error) {
	if err := validation.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	from, to := MonthWindow(year, time.Month(month)).bounds()

	deptRows, err := s.repo.Departments(ctx)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, errors.NewInternalError("failed to list departments", err)
	}
	segments, err := s.repo.SegmentsOverlapping(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to list segments", "error", err, "from", from, "to", to)
		return nil, errors.NewInternalError("failed to list segments", err)
	}

	depts := make([]*catalog.Department, 0, len(deptRows))
	for _, d := range deptRows {
		depts = append(depts, &catalog.Department{
			ID:        d.ID,
			ParentID:  d.ParentID,
			Name:      d.Name,
			Level:     catalog.DepartmentLevel(d.Level),
			SortOrder: d.SortOrder,
		})
	}
	ancestors := catalog.Ancestors(depts)

	staff := make(map[int64]map[int64]struct{})
	for _, seg := range segments {
		for _, id := range ancestors[seg.DepartmentID] {
			if staff[id] == nil {
				staff[id] = make(map[int64]struct{})
			}
			staff[id][seg.EmployeeID] = struct{}{}
		}
	}

	var out []Headcount
	for _, node := range catalog.BuildTree(depts) {
		n := len(staff[node.ID])
		if n == 0 {
			continue
		}
		out = append(out, Headcount{
			DepartmentID: node.ID,
			Name:         node.Name,
			Level:        int(node.Level),
			Depth:        node.Depth,
			Employees:    n,
		})
	}
	return out, nil
}

// FormatMinutes renders minutes as H:MM, clamping negatives to zero.
func FormatMinutes(m int) string {
	return dateutil.FormatMinutes(m)
}

// ByWeek sums a day rollup into the given weeks, dropping days outside all of them.
func ByWeek(days []WorkDay, weeks []Week) map[int64][]int {
	out := make(map[int64][]int)
	for _, d := range days {
		i := sort.Search(len(weeks), func(i int) bool { return !weeks[i].End.Before(d.WorkDate) })
		if i == len(weeks) || d.WorkDate.Before(weeks[i].Start) {
			continue
		}
		if out[d.WorkItemID] == nil {
			out[d.WorkItemID] = make([]int, len(weeks))
		}
		out[d.WorkItemID][i] += d.Minutes
	}
	return out
}
