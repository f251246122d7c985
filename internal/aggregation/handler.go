package aggregation

import (
	"context"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/transport"
)

type ServiceAPI interface {
	MonthGrid(ctx context.Context, q GridQuery) (*Grid, error)
	Assignments(ctx context.Context, departmentID int64, w Window, includeFired bool) ([]Assignment, error)
	WorkedSegments(ctx context.Context, departmentID, programID int64, w Window) ([]Assignment, error)
	HasHours(ctx context.Context, departmentID, programID int64, w Window) (bool, error)
	SegmentWindow(ctx context.Context, segmentID int64, year, month int) (Window, bool, error)
	SegmentWorkBreakdown(ctx context.Context, segmentID, programID int64, w Window) (*Breakdown, error)
	WorkDayRollup(ctx context.Context, departmentID, programID int64, w Window) ([]WorkDay, error)
	ProgramWeeks(ctx context.Context, programID int64) ([]Week, error)
	WeeksForMonth(ctx context.Context, programID int64, year, month int) ([]Week, error)
	WorkWeekRollup(ctx context.Context, q WeekRollupQuery) (*WeekRollup, error)
	DepartmentHeadcounts(ctx context.Context, year, month int) ([]Headcount, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// ints reads the named integer query parameters, defaulting absent ones to zero.
func (h *Handler) ints(r *http.Request, names ...string) ([]int64, error) {
	out := make([]int64, len(names))
	for i, name := range names {
		v, err := h.QueryInt(r, name, 0)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (h *Handler) window(r *http.Request) (Window, error) {
	from, err := h.QueryDate(r, "from")
	if err != nil {
		return Window{}, err
	}
	to, err := h.QueryDate(r, "to")
	if err != nil {
		return Window{}, err
	}
	return NewWindow(from, to), nil
}

func (h *Handler) includeFired(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("include_fired")
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewValidationFieldError("include_fired", "include_fired must be a boolean", errors.ErrCodeValidationFailed)
	}
	return v, nil
}

func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	vals, err := h.ints(r, "department_id", "year", "month", "program_id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	fired, err := h.includeFired(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	grid, err := h.Service.MonthGrid(r.Context(), GridQuery{
		DepartmentID: vals[0],
		Year:         int(vals[1]),
		Month:        int(vals[2]),
		ProgramID:    vals[3],
		IncludeFired: fired,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, grid.ToResponse())
}

func (h *Handler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	dept, err := h.QueryInt(r, "department_id", 0)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	win, err := h.window(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	fired, err := h.includeFired(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	list, err := h.Service.Assignments(r.Context(), dept, win, fired)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, assignmentsResponse(list))
}

func (h *Handler) GetWorkedSegments(w http.ResponseWriter, r *http.Request) {
	vals, err := h.ints(r, "department_id", "program_id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	win, err := h.window(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	list, err := h.Service.WorkedSegments(r.Context(), vals[0], vals[1], win)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, assignmentsResponse(list))
}

func (h *Handler) GetHasHours(w http.ResponseWriter, r *http.Request) {
	vals, err := h.ints(r, "department_id", "program_id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	win, err := h.window(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	has, err := h.Service.HasHours(r.Context(), vals[0], vals[1], win)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, HasHoursResponse{HasHours: has})
}

func (h *Handler) GetWorkDays(w http.ResponseWriter, r *http.Request) {
	vals, err := h.ints(r, "department_id", "program_id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	win, err := h.window(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	days, err := h.Service.WorkDayRollup(r.Context(), vals[0], vals[1], win)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, WorkDaysResponse{Days: workDaysResponse(days)})
}

func (h *Handler) GetWorkWeeks(w http.ResponseWriter, r *http.Request) {
	vals, err := h.ints(r, "department_id", "program_id", "last_n")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	through, err := h.QueryDate(r, "through")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	rollup, err := h.Service.WorkWeekRollup(r.Context(), WeekRollupQuery{
		DepartmentID: vals[0],
		ProgramID:    vals[1],
		Through:      through,
		LastN:        int(vals[2]),
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rollup.ToResponse())
}

// GetProgramWeeks lists all active weeks, or only a month's when year and month are given.
func (h *Handler) GetProgramWeeks(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	vals, err := h.ints(r, "year", "month")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var weeks []Week
	if vals[0] != 0 || vals[1] != 0 {
		weeks, err = h.Service.WeeksForMonth(r.Context(), id, int(vals[0]), int(vals[1]))
	} else {
		weeks, err = h.Service.ProgramWeeks(r.Context(), id)
	}
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, WeeksResponse{Weeks: weeksResponse(weeks)})
}

func (h *Handler) GetSegmentBreakdown(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	program, err := h.QueryInt(r, "program_id", 0)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	win, err := h.window(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	b, err := h.Service.SegmentWorkBreakdown(r.Context(), id, program, win)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b.ToResponse())
}

func (h *Handler) GetSegmentWindow(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	vals, err := h.ints(r, "year", "month")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	win, ok, err := h.Service.SegmentWindow(r.Context(), id, int(vals[0]), int(vals[1]))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	resp := SegmentWindowResponse{Covered: ok}
	if ok {
		resp.Start, resp.End = win.bounds()
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetHeadcounts(w http.ResponseWriter, r *http.Request) {
	vals, err := h.ints(r, "year", "month")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	counts, err := h.Service.DepartmentHeadcounts(r.Context(), int(vals[0]), int(vals[1]))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	if counts == nil {
		counts = []Headcount{}
	}
	h.WriteJSON(w, http.StatusOK, HeadcountsResponse{Departments: counts})
}
