package aggregation

import "github.com/frahmantamala/missiontime/pkg/dateutil"

type DayCellResponse struct {
	Day     int    `json:"day"`
	State   string `json:"state"`
	Minutes int    `json:"minutes"`
	Display string `json:"display"`
}

type AssignmentResponse struct {
	SegmentID      int64  `json:"segment_id"`
	EmployeeID     int64  `json:"employee_id"`
	Fio            string `json:"fio"`
	DepartmentID   int64  `json:"department_id"`
	DepartmentName string `json:"department_name"`
	PositionID     int64  `json:"position_id"`
	PositionName   string `json:"position_name"`
	SegStart       string `json:"seg_start"`
	SegEnd         string `json:"seg_end"`
}

type GridRowResponse struct {
	AssignmentResponse
	Days           []DayCellResponse `json:"days"`
	TotalMinutes   int               `json:"total_minutes"`
	ProgramMinutes int               `json:"program_minutes"`
	Total          string            `json:"total"`
	ProgramTotal   string            `json:"program_total"`
}

type GridResponse struct {
	Year        int               `json:"year"`
	Month       int               `json:"month"`
	DaysInMonth int               `json:"days_in_month"`
	ProgramID   int64             `json:"program_id"`
	Rows        []GridRowResponse `json:"rows"`
}

type AssignmentsResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
}

type WeekResponse struct {
	Number int    `json:"number"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type WeeksResponse struct {
	Weeks []WeekResponse `json:"weeks"`
}

type WorkDayResponse struct {
	WorkItemID int64  `json:"work_id"`
	WorkName   string `json:"work_name"`
	WorkDate   string `json:"work_date"`
	Minutes    int    `json:"minutes"`
}

type WorkDaysResponse struct {
	Days []WorkDayResponse `json:"days"`
}

type WorkItemResponse struct {
	WorkItemID int64  `json:"work_id"`
	WorkName   string `json:"work_name"`
}

type BreakdownResponse struct {
	WorkItems []WorkItemResponse `json:"work_items"`
	Days      []WorkDayResponse  `json:"days"`
}

type WeekRollupRowResponse struct {
	WorkItemID int64  `json:"work_id"`
	WorkName   string `json:"work_name"`
	Minutes    []int  `json:"minutes"`
	Total      int    `json:"total"`
}

type WeekRollupResponse struct {
	Weeks []WeekResponse          `json:"weeks"`
	Rows  []WeekRollupRowResponse `json:"rows"`
}

type HeadcountsResponse struct {
	Departments []Headcount `json:"departments"`
}

type HasHoursResponse struct {
	HasHours bool `json:"has_hours"`
}

type SegmentWindowResponse struct {
	Covered bool   `json:"covered"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

func (a *Assignment) ToResponse() AssignmentResponse {
	return AssignmentResponse{
		SegmentID:      a.SegmentID,
		EmployeeID:     a.EmployeeID,
		Fio:            a.Fio,
		DepartmentID:   a.DepartmentID,
		DepartmentName: a.DepartmentName,
		PositionID:     a.PositionID,
		PositionName:   a.PositionName,
		SegStart:       dateutil.Format(a.SegStart),
		SegEnd:         dateutil.Format(a.SegEnd),
	}
}

func (g *Grid) ToResponse() GridResponse {
	resp := GridResponse{
		Year:        g.Year,
		Month:       g.Month,
		DaysInMonth: g.DaysInMonth,
		ProgramID:   g.ProgramID,
		Rows:        make([]GridRowResponse, 0, len(g.Rows)),
	}
	for i := range g.Rows {
		row := &g.Rows[i]
		out := GridRowResponse{
			AssignmentResponse: row.Assignment.ToResponse(),
			Days:               make([]DayCellResponse, 0, MaxDays),
			TotalMinutes:       row.TotalMinutes,
			ProgramMinutes:     row.ProgramMinutes,
			Total:              FormatMinutes(row.TotalMinutes),
			ProgramTotal:       FormatMinutes(row.ProgramMinutes),
		}
		for d, cell := range row.Days {
			out.Days = append(out.Days, DayCellResponse{
				Day:     d + 1,
				State:   cell.State.String(),
				Minutes: cell.Minutes,
				Display: cell.Display(),
			})
		}
		resp.Rows = append(resp.Rows, out)
	}
	return resp
}

func assignmentsResponse(list []Assignment) AssignmentsResponse {
	resp := AssignmentsResponse{Assignments: make([]AssignmentResponse, 0, len(list))}
	for i := range list {
		resp.Assignments = append(resp.Assignments, list[i].ToResponse())
	}
	return resp
}

func weeksResponse(weeks []Week) []WeekResponse {
	out := make([]WeekResponse, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, WeekResponse{Number: w.Number, Start: dateutil.Format(w.Start), End: dateutil.Format(w.End)})
	}
	return out
}

func workDaysResponse(days []WorkDay) []WorkDayResponse {
	out := make([]WorkDayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, WorkDayResponse{
			WorkItemID: d.WorkItemID,
			WorkName:   d.DisplayName(),
			WorkDate:   dateutil.Format(d.WorkDate),
			Minutes:    d.Minutes,
		})
	}
	return out
}

func (b *Breakdown) ToResponse() BreakdownResponse {
	resp := BreakdownResponse{
		WorkItems: make([]WorkItemResponse, 0, len(b.WorkItems)),
		Days:      workDaysResponse(b.Days),
	}
	for _, w := range b.WorkItems {
		resp.WorkItems = append(resp.WorkItems, WorkItemResponse{WorkItemID: w.WorkItemID, WorkName: w.DisplayName()})
	}
	return resp
}

func (r *WeekRollup) ToResponse() WeekRollupResponse {
	resp := WeekRollupResponse{
		Weeks: weeksResponse(r.Weeks),
		Rows:  make([]WeekRollupRowResponse, 0, len(r.Rows)),
	}
	for _, row := range r.Rows {
		resp.Rows = append(resp.Rows, WeekRollupRowResponse{
			WorkItemID: row.WorkItemID,
			WorkName:   row.DisplayName(),
			Minutes:    row.Minutes,
			Total:      row.Total,
		})
	}
	return resp
}
