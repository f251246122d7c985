package catalog

import (
	"strings"
	"time"

	catalogDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/catalog"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
)

// DepartmentLevel is the depth class of a department node.
type DepartmentLevel int

const (
	LevelCenter     DepartmentLevel = 1
	LevelComplex    DepartmentLevel = 2
	LevelDepartment DepartmentLevel = 3
	LevelGroup      DepartmentLevel = 4
)

func (l DepartmentLevel) Valid() bool {
	return l >= LevelCenter && l <= LevelGroup
}

func (l DepartmentLevel) String() string {
	switch l {
	case LevelCenter:
		return "center"
	case LevelComplex:
		return "complex"
	case LevelDepartment:
		return "department"
	case LevelGroup:
		return "group"
	}
	return "unknown"
}

type Department struct {
	ID        int64           `json:"id"`
	ParentID  *int64          `json:"parent_id,omitempty"`
	Name      string          `json:"name"`
	Level     DepartmentLevel `json:"level"`
	SortOrder int             `json:"sort_order"`
}

// TreeNode is a department with its depth-first position in the tree.
type TreeNode struct {
	Department
	Depth int `json:"depth"`
}

type Position struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Program struct {
	ID        int64
	Name      string
	ShortName string
	DateStart time.Time
	DateEnd   *time.Time
}

type WorkItem struct {
	ID          int64  `json:"id"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	Name        string `json:"name"`
	SpecialCode string `json:"special_code"`
}

// DisplayName is "code — name", or just the name for uncoded items.
func (w *WorkItem) DisplayName() string {
	code := strings.TrimSpace(w.SpecialCode)
	if code == "" {
		return w.Name
	}
	return code + " — " + w.Name
}

// ComplexAndDepartment names a level-3 department and its parent complex.
type ComplexAndDepartment struct {
	ComplexName    string `json:"complex_name"`
	DepartmentName string `json:"department_name"`
}

func DepartmentFromDataModel(d *catalogDatamodel.Department) *Department {
	return &Department{
		ID:        d.ID,
		ParentID:  d.ParentID,
		Name:      d.Name,
		Level:     DepartmentLevel(d.Level),
		SortOrder: d.SortOrder,
	}
}

func DepartmentToDataModel(d *Department) *catalogDatamodel.Department {
	return &catalogDatamodel.Department{
		ID:        d.ID,
		ParentID:  d.ParentID,
		Name:      d.Name,
		Level:     int(d.Level),
		SortOrder: d.SortOrder,
	}
}

func PositionFromDataModel(p *catalogDatamodel.Position) *Position {
	return &Position{ID: p.ID, Name: p.Name}
}

func ProgramFromDataModel(p *catalogDatamodel.Program) (*Program, error) {
	start, err := dateutil.Parse(p.DateStart)
	if err != nil {
		return nil, err
	}
	end, err := dateutil.ParsePtr(p.DateEnd)
	if err != nil {
		return nil, err
	}
	return &Program{
		ID:        p.ID,
		Name:      p.Name,
		ShortName: p.ShortName,
		DateStart: start,
		DateEnd:   end,
	}, nil
}

func ProgramToDataModel(p *Program) *catalogDatamodel.Program {
	return &catalogDatamodel.Program{
		ID:        p.ID,
		Name:      p.Name,
		ShortName: p.ShortName,
		DateStart: dateutil.Format(p.DateStart),
		DateEnd:   dateutil.FormatPtr(p.DateEnd),
	}
}

func WorkItemFromDataModel(w *catalogDatamodel.WorkItem) *WorkItem {
	return &WorkItem{
		ID:          w.ID,
		ParentID:    w.ParentID,
		Name:        w.Name,
		SpecialCode: w.SpecialCode,
	}
}

func WorkItemToDataModel(w *WorkItem) *catalogDatamodel.WorkItem {
	return &catalogDatamodel.WorkItem{
		ID:          w.ID,
		ParentID:    w.ParentID,
		Name:        w.Name,
		SpecialCode: w.SpecialCode,
	}
}
