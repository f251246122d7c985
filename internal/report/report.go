// Package report writes aggregation results into plain xlsx workbooks.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/aggregation"
	"github.com/frahmantamala/missiontime/internal/catalog"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
	"github.com/xuri/excelize/v2"
)

const (
	SheetWeekly = "Weekly"
	SheetDaily  = "Daily"
	SheetGrid   = "Grid"
)

type AggregationAPI interface {
	DepartmentLevel(ctx context.Context, id int64) (catalog.DepartmentLevel, error)
	MonthGrid(ctx context.Context, q aggregation.GridQuery) (*aggregation.Grid, error)
	WorkDayRollup(ctx context.Context, departmentID, programID int64, w aggregation.Window) ([]aggregation.WorkDay, error)
	WorkWeekRollup(ctx context.Context, q aggregation.WeekRollupQuery) (*aggregation.WeekRollup, error)
}

// Request selects a department or complex subtree, a program and the report week. The weekly
// sheet runs up to WeekEnd and the grid covers WeekEnd's month.
type Request struct {
	DepartmentID int64
	ProgramID    int64
	WeekStart    time.Time
	WeekEnd      time.Time
	LastN        int
}

type Workbook struct {
	Weekly *aggregation.WeekRollup
	Daily  []aggregation.WorkDay
	Days   aggregation.Window
	Grid   *aggregation.Grid
}

type Exporter struct {
	agg    AggregationAPI
	logger *slog.Logger
}

func NewExporter(agg AggregationAPI, logger *slog.Logger) *Exporter {
	return &Exporter{agg: agg, logger: logger}
}

// Build runs the month-by-month aggregation the workbook needs.
func (e *Exporter) Build(ctx context.Context, req Request) (*Workbook, error) {
	days := aggregation.NewWindow(req.WeekStart, req.WeekEnd)
	if req.WeekStart.IsZero() || req.WeekEnd.IsZero() || days.Empty() {
		return nil, errors.NewValidationError("report week needs a start on or before its end", errors.ErrCodeInvalidPeriod)
	}
	level, err := e.agg.DepartmentLevel(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}
	// a complex reports the sum of its departments
	if level != catalog.LevelDepartment && level != catalog.LevelComplex {
		return nil, errors.NewValidationFieldError("department_id",
			fmt.Sprintf("department %d is a %s, reports need a department or a complex", req.DepartmentID, level),
			errors.ErrCodeInvalidLevel)
	}

	weekly, err := e.agg.WorkWeekRollup(ctx, aggregation.WeekRollupQuery{
		DepartmentID: req.DepartmentID,
		ProgramID:    req.ProgramID,
		Through:      days.End,
		LastN:        req.LastN,
	})
	if err != nil {
		return nil, err
	}
	daily, err := e.agg.WorkDayRollup(ctx, req.DepartmentID, req.ProgramID, days)
	if err != nil {
		return nil, err
	}
	grid, err := e.agg.MonthGrid(ctx, aggregation.GridQuery{
		DepartmentID: req.DepartmentID,
		Year:         days.End.Year(),
		Month:        int(days.End.Month()),
		ProgramID:    req.ProgramID,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("report built",
		"department_id", req.DepartmentID,
		"program_id", req.ProgramID,
		"weeks", len(weekly.Weeks),
		"grid_rows", len(grid.Rows))
	return &Workbook{Weekly: weekly, Daily: daily, Days: days, Grid: grid}, nil
}

// Export builds the workbook for req and writes it to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer, req Request) error {
	wb, err := e.Build(ctx, req)
	if err != nil {
		return err
	}
	return WriteWorkbook(w, wb)
}

// WriteWorkbook writes the weekly, daily and grid sheets without any styling.
func WriteWorkbook(w io.Writer, wb *Workbook) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetWeekly); err != nil {
		return err
	}
	for _, name := range []string{SheetDaily, SheetGrid} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	writers := []struct {
		sheet string
		rows  [][]interface{}
	}{
		{SheetWeekly, weeklyRows(wb.Weekly)},
		{SheetDaily, dailyRows(wb.Daily, wb.Days)},
		{SheetGrid, gridRows(wb.Grid)},
	}
	for _, s := range writers {
		if err := writeRows(f, s.sheet, s.rows); err != nil {
			return fmt.Errorf("failed to write %s sheet: %w", s.sheet, err)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	return nil
}

func weeklyRows(rollup *aggregation.WeekRollup) [][]interface{} {
	header := []interface{}{"Code", "Work item"}
	if rollup == nil {
		return [][]interface{}{append(header, "Total")}
	}
	for _, wk := range rollup.Weeks {
		header = append(header, fmt.Sprintf("Week %d %s-%s", wk.Number, wk.Start.Format("02.01"), wk.End.Format("02.01.06")))
	}
	header = append(header, "Total")

	rows := [][]interface{}{header}
	for _, r := range rollup.Rows {
		row := []interface{}{r.SpecialCode, r.Name}
		for _, m := range r.Minutes {
			row = append(row, dateutil.FormatMinutes(m))
		}
		row = append(row, dateutil.FormatMinutes(r.Total))
		rows = append(rows, row)
	}
	return rows
}

func dailyRows(days []aggregation.WorkDay, w aggregation.Window) [][]interface{} {
	n := w.Days()
	header := []interface{}{"Code", "Work item"}
	for i := 0; i < n; i++ {
		header = append(header, dateutil.AddDays(w.Start, i).Format("02.01"))
	}
	header = append(header, "Total")

	type line struct {
		ref     aggregation.WorkItemRef
		minutes []int
	}
	var order []int64
	lines := make(map[int64]*line)
	for _, d := range days {
		if !w.Contains(d.WorkDate) {
			continue
		}
		l, ok := lines[d.WorkItemID]
		if !ok {
			l = &line{ref: d.WorkItemRef, minutes: make([]int, n)}
			lines[d.WorkItemID] = l
			order = append(order, d.WorkItemID)
		}
		l.minutes[int(d.WorkDate.Sub(w.Start).Hours()/24)] += d.Minutes
	}

	rows := [][]interface{}{header}
	for _, id := range order {
		l := lines[id]
		row := []interface{}{l.ref.SpecialCode, l.ref.Name}
		total := 0
		for _, m := range l.minutes {
			row = append(row, dateutil.FormatMinutes(m))
			total += m
		}
		rows = append(rows, append(row, dateutil.FormatMinutes(total)))
	}
	return rows
}

func gridRows(g *aggregation.Grid) [][]interface{} {
	header := []interface{}{"Fio", "Department", "Position"}
	for day := 1; day <= aggregation.MaxDays; day++ {
		header = append(header, day)
	}
	header = append(header, "Program total", "Total")
	rows := [][]interface{}{header}
	if g == nil {
		return rows
	}

	for _, r := range g.Rows {
		row := []interface{}{r.Fio, r.DepartmentName, r.PositionName}
		for _, cell := range r.Days {
			row = append(row, cell.Display())
		}
		row = append(row, dateutil.FormatMinutes(r.ProgramMinutes), dateutil.FormatMinutes(r.TotalMinutes))
		rows = append(rows, row)
	}
	return rows
}
