package employee

import (
	"context"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/transport"
)

type ServiceAPI interface {
	Hire(ctx context.Context, in HireInput) (*HireResult, error)
	Transfer(ctx context.Context, in TransferInput) (int64, error)
	Fire(ctx context.Context, in FireInput) (int64, error)
	CancelLastOperation(ctx context.Context, employeeID int64) (*Segment, error)
	UpdateFio(employeeID int64, fio string) error
	Get(employeeID int64) (*Employee, error)
	List(showFired bool) ([]*Summary, error)
	History(employeeID int64) ([]*HistoryItem, error)
	CurrentAssignment(employeeID int64) (*HistoryItem, error)
	SegmentOwner(segmentID int64) (*Owner, error)
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

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	showFired := false
	if raw := r.URL.Query().Get("show_fired"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.WriteAppError(w, errors.NewValidationFieldError("show_fired", "show_fired must be a boolean", errors.ErrCodeValidationFailed))
			return
		}
		showFired = v
	}

	list, err := h.Service.List(showFired)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, EmployeesResponse{Employees: list})
}

func (h *Handler) HireEmployee(w http.ResponseWriter, r *http.Request) {
	var req HireRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	start, err := h.ParseDate("start_date", req.StartDate)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	result, err := h.Service.Hire(r.Context(), HireInput{
		Fio:          req.Fio,
		DepartmentID: req.DepartmentID,
		PositionID:   req.PositionID,
		StartDate:    start,
		Note:         req.Note,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, TransitionResponse{EmployeeID: result.EmployeeID, SegmentID: result.SegmentID, State: StateActive.String()})
}

func (h *Handler) RehireEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	var req RehireRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	start, err := h.ParseDate("start_date", req.StartDate)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	result, err := h.Service.Hire(r.Context(), HireInput{
		EmployeeID:   id,
		DepartmentID: req.DepartmentID,
		PositionID:   req.PositionID,
		StartDate:    start,
		Note:         req.Note,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, TransitionResponse{EmployeeID: result.EmployeeID, SegmentID: result.SegmentID, State: StateActive.String()})
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	emp, err := h.Service.Get(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) RenameEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	var req RenameRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if err := h.Service.UpdateFio(id, req.Fio); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	history, err := h.Service.History(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	resp := HistoryResponse{EmployeeID: id, Segments: make([]SegmentResponse, 0, len(history))}
	for _, item := range history {
		resp.Segments = append(resp.Segments, item.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetCurrentAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	current, err := h.Service.CurrentAssignment(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, current.ToResponse())
}

func (h *Handler) TransferEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	var req TransferRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	date, err := h.ParseDate("transfer_date", req.TransferDate)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	segmentID, err := h.Service.Transfer(r.Context(), TransferInput{
		EmployeeID:      id,
		NewDepartmentID: req.DepartmentID,
		NewPositionID:   req.PositionID,
		TransferDate:    date,
		Note:            req.Note,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, TransitionResponse{EmployeeID: id, SegmentID: segmentID, State: StateActive.String()})
}

func (h *Handler) FireEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	var req FireRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	date, err := h.ParseDate("fire_date", req.FireDate)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	segmentID, err := h.Service.Fire(r.Context(), FireInput{EmployeeID: id, FireDate: date, Note: req.Note})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, TransitionResponse{EmployeeID: id, SegmentID: segmentID, State: StateSeparated.String()})
}

func (h *Handler) CancelLastOperation(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	seg, err := h.Service.CancelLastOperation(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, seg.ToResponse())
}

func (h *Handler) GetSegmentOwner(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	owner, err := h.Service.SegmentOwner(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, owner)
}
