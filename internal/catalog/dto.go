package catalog

import (
	"github.com/frahmantamala/missiontime/pkg/dateutil"
)

type CreateDepartmentRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Level     int    `json:"level" validate:"required,min=1,max=4"`
	ParentID  *int64 `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
	SortOrder int    `json:"sort_order"`
}

type RenameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type ProgramRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	ShortName string  `json:"short_name" validate:"required,max=64"`
	DateStart string  `json:"date_start" validate:"required,isodate"`
	DateEnd   *string `json:"date_end,omitempty" validate:"omitempty,isodate"`
}

// ToInput converts the request; dates were already checked by the isodate tag.
func (r ProgramRequest) ToInput() (ProgramInput, error) {
	start, err := dateutil.Parse(r.DateStart)
	if err != nil {
		return ProgramInput{}, err
	}
	end, err := dateutil.ParsePtr(r.DateEnd)
	if err != nil {
		return ProgramInput{}, err
	}
	return ProgramInput{Name: r.Name, ShortName: r.ShortName, DateStart: start, DateEnd: end}, nil
}

type WorkItemRequest struct {
	ParentID    *int64 `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
	Name        string `json:"name" validate:"required,max=255"`
	SpecialCode string `json:"special_code" validate:"max=64"`
}

type ProgramResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	ShortName string  `json:"short_name"`
	DateStart string  `json:"date_start"`
	DateEnd   *string `json:"date_end,omitempty"`
}

func (p *Program) ToResponse() ProgramResponse {
	return ProgramResponse{
		ID:        p.ID,
		Name:      p.Name,
		ShortName: p.ShortName,
		DateStart: dateutil.Format(p.DateStart),
		DateEnd:   dateutil.FormatPtr(p.DateEnd),
	}
}

type WorkItemResponse struct {
	WorkItem
	DisplayName string `json:"display_name"`
}

type DepartmentsResponse struct {
	Departments []TreeNode `json:"departments"`
}

type PositionsResponse struct {
	Positions []*Position `json:"positions"`
}

type ProgramsResponse struct {
	Programs []ProgramResponse `json:"programs"`
}

type WorkItemsResponse struct {
	WorkItems []WorkItemResponse `json:"work_items"`
}
