package timesheet

import (
	"net/http"

	"github.com/frahmantamala/missiontime/internal/transport"
)

type ServiceAPI interface {
	GetOrCreateHeader(year, month int, departmentID int64) (int64, error)
	GetHeader(id int64) (*Header, error)
	SaveCell(in SaveCellInput) (int64, error)
	CountEntries(scope Scope) (int64, error)
	DeleteEntries(scope Scope) (int64, error)
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

func (h *Handler) OpenTimesheet(w http.ResponseWriter, r *http.Request) {
	var req HeaderRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}

	id, err := h.Service.GetOrCreateHeader(req.Year, req.Month, req.DepartmentID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, HeaderResponse{TimesheetID: id})
}

func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	header, err := h.Service.GetHeader(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, header)
}

func (h *Handler) SaveCell(w http.ResponseWriter, r *http.Request) {
	var req CellRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	day, err := h.ParseDate("work_date", req.WorkDate)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	id, err := h.Service.SaveCell(SaveCellInput{
		DepartmentID: req.DepartmentID,
		WorkDate:     day,
		SegmentID:    req.SegmentID,
		ProgramID:    req.ProgramID,
		WorkItemID:   req.WorkItemID,
		Minutes:      req.Minutes,
		Note:         req.Note,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, HeaderResponse{TimesheetID: id})
}

func (h *Handler) CountEntries(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scope(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	n, err := h.Service.CountEntries(scope)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CountResponse{Count: n})
}

func (h *Handler) DeleteEntries(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scope(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	n, err := h.Service.DeleteEntries(scope)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DeleteResponse{Deleted: n})
}

// scope reads segment_id, program_id, work_id, year and month from the query string.
func (h *Handler) scope(r *http.Request) (Scope, error) {
	var (
		scope Scope
		vals  [5]int64
	)
	for i, name := range []string{"segment_id", "program_id", "work_id", "year", "month"} {
		v, err := h.QueryInt(r, name, 0)
		if err != nil {
			return scope, err
		}
		vals[i] = v
	}
	scope.SegmentID = vals[0]
	scope.ProgramID = vals[1]
	scope.WorkItemID = vals[2]
	scope.Year = int(vals[3])
	scope.Month = int(vals[4])
	return scope, nil
}
