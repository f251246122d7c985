package employee

import (
	"github.com/frahmantamala/missiontime/pkg/dateutil"
)

type HireRequest struct {
	Fio          string  `json:"fio" validate:"required,max=255"`
	DepartmentID int64   `json:"department_id" validate:"required,gt=0"`
	PositionID   int64   `json:"position_id" validate:"required,gt=0"`
	StartDate    string  `json:"start_date" validate:"required,isodate"`
	Note         *string `json:"note,omitempty"`
}

type RehireRequest struct {
	DepartmentID int64   `json:"department_id" validate:"required,gt=0"`
	PositionID   int64   `json:"position_id" validate:"required,gt=0"`
	StartDate    string  `json:"start_date" validate:"required,isodate"`
	Note         *string `json:"note,omitempty"`
}

type TransferRequest struct {
	DepartmentID int64   `json:"department_id" validate:"required,gt=0"`
	PositionID   int64   `json:"position_id" validate:"required,gt=0"`
	TransferDate string  `json:"transfer_date" validate:"required,isodate"`
	Note         *string `json:"note,omitempty"`
}

type FireRequest struct {
	FireDate string  `json:"fire_date" validate:"required,isodate"`
	Note     *string `json:"note,omitempty"`
}

type RenameRequest struct {
	Fio string `json:"fio" validate:"required,max=255"`
}

type SegmentResponse struct {
	ID             int64   `json:"id"`
	EmployeeID     int64   `json:"employee_id"`
	DepartmentID   int64   `json:"department_id"`
	DepartmentName string  `json:"department_name,omitempty"`
	PositionID     int64   `json:"position_id"`
	PositionName   string  `json:"position_name,omitempty"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date"`
	Action         string  `json:"action"`
	Note           *string `json:"note,omitempty"`
}

func (s *Segment) ToResponse() SegmentResponse {
	return SegmentResponse{
		ID:           s.ID,
		EmployeeID:   s.EmployeeID,
		DepartmentID: s.DepartmentID,
		PositionID:   s.PositionID,
		StartDate:    dateutil.Format(s.StartDate),
		EndDate:      dateutil.FormatPtr(s.EndDate),
		Action:       s.Action.String(),
		Note:         s.Note,
	}
}

func (h *HistoryItem) ToResponse() SegmentResponse {
	resp := h.Segment.ToResponse()
	resp.DepartmentName = h.DepartmentName
	resp.PositionName = h.PositionName
	return resp
}

type EmployeesResponse struct {
	Employees []*Summary `json:"employees"`
}

type HistoryResponse struct {
	EmployeeID int64             `json:"employee_id"`
	Segments   []SegmentResponse `json:"segments"`
}

type TransitionResponse struct {
	EmployeeID int64  `json:"employee_id"`
	SegmentID  int64  `json:"segment_id"`
	State      string `json:"state"`
}
