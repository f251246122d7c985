package catalog

import (
	"net/http"

	errors "github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/transport"
)

type ServiceAPI interface {
	DepartmentTree() ([]TreeNode, error)
	CreateDepartment(name string, level DepartmentLevel, parentID *int64, sortOrder int) (*Department, error)
	RenameDepartment(id int64, name string) error
	DeleteDepartment(id int64) error

	ListPositions() ([]*Position, error)
	CreatePosition(name string) (*Position, error)
	UpdatePosition(id int64, name string) (*Position, error)
	DeletePosition(id int64) error

	ListPrograms() ([]*Program, error)
	ListProgramsForMonth(year, month int) ([]*Program, error)
	CreateProgram(in ProgramInput) (*Program, error)
	UpdateProgram(id int64, in ProgramInput) (*Program, error)
	DeleteProgram(id int64) error

	ListWorkItems() ([]*WorkItem, error)
	CreateWorkItem(in WorkItemInput) (*WorkItem, error)
	UpdateWorkItem(id int64, in WorkItemInput) (*WorkItem, error)
	DeleteWorkItem(id int64) error
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

func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	tree, err := h.Service.DepartmentTree()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DepartmentsResponse{Departments: tree})
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req CreateDepartmentRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	dept, err := h.Service.CreateDepartment(req.Name, DepartmentLevel(req.Level), req.ParentID, req.SortOrder)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, dept)
}

func (h *Handler) RenameDepartment(w http.ResponseWriter, r *http.Request) {
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
	if err := h.Service.RenameDepartment(id, req.Name); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Service.DeleteDepartment)
}

func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Service.ListPositions()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PositionsResponse{Positions: positions})
}

func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	p, err := h.Service.CreatePosition(req.Name)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
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
	p, err := h.Service.UpdatePosition(id, req.Name)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Service.DeletePosition)
}

// GetPrograms lists all programs, or only those active in ?year=&month= when given.
func (h *Handler) GetPrograms(w http.ResponseWriter, r *http.Request) {
	year, err := h.QueryInt(r, "year", 0)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	month, err := h.QueryInt(r, "month", 0)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var programs []*Program
	if year != 0 || month != 0 {
		programs, err = h.Service.ListProgramsForMonth(int(year), int(month))
	} else {
		programs, err = h.Service.ListPrograms()
	}
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp := ProgramsResponse{Programs: make([]ProgramResponse, 0, len(programs))}
	for _, p := range programs {
		resp.Programs = append(resp.Programs, p.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeProgram(w, r)
	if !ok {
		return
	}
	p, err := h.Service.CreateProgram(in)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p.ToResponse())
}

func (h *Handler) UpdateProgram(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	in, ok := h.decodeProgram(w, r)
	if !ok {
		return
	}
	p, err := h.Service.UpdateProgram(id, in)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

func (h *Handler) DeleteProgram(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Service.DeleteProgram)
}

func (h *Handler) GetWorkItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListWorkItems()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	resp := WorkItemsResponse{WorkItems: make([]WorkItemResponse, 0, len(items))}
	for _, it := range items {
		resp.WorkItems = append(resp.WorkItems, WorkItemResponse{WorkItem: *it, DisplayName: it.DisplayName()})
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateWorkItem(w http.ResponseWriter, r *http.Request) {
	var req WorkItemRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	item, err := h.Service.CreateWorkItem(WorkItemInput{ParentID: req.ParentID, Name: req.Name, SpecialCode: req.SpecialCode})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateWorkItem(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	var req WorkItemRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	item, err := h.Service.UpdateWorkItem(id, WorkItemInput{ParentID: req.ParentID, Name: req.Name, SpecialCode: req.SpecialCode})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteWorkItem(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Service.DeleteWorkItem)
}

func (h *Handler) decodeProgram(w http.ResponseWriter, r *http.Request) (ProgramInput, bool) {
	var req ProgramRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return ProgramInput{}, false
	}
	in, err := req.ToInput()
	if err != nil {
		h.WriteAppError(w, errors.NewValidationError(err.Error(), errors.ErrCodeInvalidDate))
		return ProgramInput{}, false
	}
	return in, true
}

func (h *Handler) deleteByID(w http.ResponseWriter, r *http.Request, del func(id int64) error) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	if err := del(id); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
