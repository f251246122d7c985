package catalog

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/core/common/validation"
	catalogDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/catalog"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
)

type RepositoryAPI interface {
	// Transaction runs fn against a repository bound to one database transaction.
	Transaction(fn func(repo RepositoryAPI) error) error

	GetAllDepartments() ([]*catalogDatamodel.Department, error)
	GetDepartmentByID(id int64) (*catalogDatamodel.Department, error)
	CreateDepartment(d *catalogDatamodel.Department) error
	UpdateDepartmentName(id int64, name string) error
	DeleteDepartment(id int64) error
	CountDepartmentUsage(id int64) (Usage, error)

	GetAllPositions() ([]*catalogDatamodel.Position, error)
	GetPositionByID(id int64) (*catalogDatamodel.Position, error)
	GetPositionByName(name string) (*catalogDatamodel.Position, error)
	CreatePosition(p *catalogDatamodel.Position) error
	UpdatePosition(p *catalogDatamodel.Position) error
	DeletePosition(id int64) error
	CountPositionUsage(id int64) (Usage, error)

	GetAllPrograms() ([]*catalogDatamodel.Program, error)
	GetProgramsOverlapping(from, to string) ([]*catalogDatamodel.Program, error)
	GetProgramByID(id int64) (*catalogDatamodel.Program, error)
	CreateProgram(p *catalogDatamodel.Program) error
	UpdateProgram(p *catalogDatamodel.Program) error
	DeleteProgram(id int64) error
	CountProgramUsage(id int64) (Usage, error)

	GetAllWorkItems() ([]*catalogDatamodel.WorkItem, error)
	GetWorkItemsByIDs(ids []int64) ([]*catalogDatamodel.WorkItem, error)
	GetWorkItemByID(id int64) (*catalogDatamodel.WorkItem, error)
	CreateWorkItem(w *catalogDatamodel.WorkItem) error
	UpdateWorkItem(w *catalogDatamodel.WorkItem) error
	DeleteWorkItem(id int64) error
	CountWorkItemUsage(id int64) (Usage, error)
}

// Usage counts the rows that reference a catalog entry.
type Usage struct {
	Children   int64
	Segments   int64
	Timesheets int64
	Entries    int64
}

// Blocking returns the first kind of referencing row, if any.
func (u Usage) Blocking() (string, int64) {
	switch {
	case u.Entries > 0:
		return "timesheet entries", u.Entries
	case u.Segments > 0:
		return "employment segments", u.Segments
	case u.Timesheets > 0:
		return "timesheets", u.Timesheets
	case u.Children > 0:
		return "child entries", u.Children
	}
	return "", 0
}

type ProgramInput struct {
	Name      string
	ShortName string
	DateStart time.Time
	DateEnd   *time.Time
}

type WorkItemInput struct {
	ParentID    *int64
	Name        string
	SpecialCode string
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

// ----------------- DEPARTMENTS -----------------

func (s *Service) ListDepartments() ([]*Department, error) {
	rows, err := s.repo.GetAllDepartments()
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, errors.NewInternalError("failed to list departments", err)
	}
	out := make([]*Department, 0, len(rows))
	for _, r := range rows {
		out = append(out, DepartmentFromDataModel(r))
	}
	return out, nil
}

func (s *Service) DepartmentTree() ([]TreeNode, error) {
	depts, err := s.ListDepartments()
	if err != nil {
		return nil, err
	}
	return BuildTree(depts), nil
}

func (s *Service) ListDepartmentsByLevel(level DepartmentLevel) ([]*Department, error) {
	depts, err := s.ListDepartments()
	if err != nil {
		return nil, err
	}
	var out []*Department
	for _, d := range depts {
		if d.Level == level {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Service) GetDepartment(id int64) (*Department, error) {
	row, err := s.repo.GetDepartmentByID(id)
	if err != nil {
		s.logger.Error("failed to get department", "error", err, "department_id", id)
		return nil, errors.NewInternalError("failed to get department", err)
	}
	if row == nil {
		return nil, errors.ErrDepartmentNotFound
	}
	return DepartmentFromDataModel(row), nil
}

// CreateDepartment inserts a node. A center has no parent; every other level
// needs a parent of a strictly higher rank (lower level number).
func (s *Service) CreateDepartment(name string, level DepartmentLevel, parentID *int64, sortOrder int) (*Department, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName("name", name); err != nil {
		return nil, err
	}
	if !level.Valid() {
		return nil, errors.NewValidationFieldError("level", fmt.Sprintf("unknown department level %d", level), errors.ErrCodeInvalidLevel)
	}
	if level == LevelCenter && parentID != nil {
		return nil, errors.NewValidationFieldError("parent_id", "a center cannot have a parent", errors.ErrCodeInvalidParent)
	}
	if level != LevelCenter && parentID == nil {
		return nil, errors.NewValidationFieldError("parent_id", fmt.Sprintf("a %s requires a parent", level), errors.ErrCodeInvalidParent)
	}

	dept := &Department{ParentID: parentID, Name: name, Level: level, SortOrder: sortOrder}
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		if parentID != nil {
			parent, err := repo.GetDepartmentByID(*parentID)
			if err != nil {
				return errors.NewInternalError("failed to load parent department", err)
			}
			if parent == nil {
				return errors.ErrDepartmentNotFound
			}
			if DepartmentLevel(parent.Level) >= level {
				return errors.NewValidationFieldError("parent_id",
					fmt.Sprintf("a %s cannot be placed under a %s", level, DepartmentLevel(parent.Level)),
					errors.ErrCodeInvalidParent)
			}
		}
		row := DepartmentToDataModel(dept)
		if err := repo.CreateDepartment(row); err != nil {
			return errors.NewInternalError("failed to create department", err)
		}
		dept.ID = row.ID
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create department", "error", err, "name", name, "level", int(level))
		return nil, err
	}

	s.logger.Info("department created", "department_id", dept.ID, "level", int(level))
	return dept, nil
}

func (s *Service) RenameDepartment(id int64, name string) error {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName("name", name); err != nil {
		return err
	}
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		row, err := repo.GetDepartmentByID(id)
		if err != nil {
			return errors.NewInternalError("failed to get department", err)
		}
		if row == nil {
			return errors.ErrDepartmentNotFound
		}
		if err := repo.UpdateDepartmentName(id, name); err != nil {
			return errors.NewInternalError("failed to rename department", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to rename department", "error", err, "department_id", id)
		return err
	}
	return nil
}

func (s *Service) DeleteDepartment(id int64) error {
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		row, err := repo.GetDepartmentByID(id)
		if err != nil {
			return errors.NewInternalError("failed to get department", err)
		}
		if row == nil {
			return errors.ErrDepartmentNotFound
		}
		usage, err := repo.CountDepartmentUsage(id)
		if err != nil {
			return errors.NewInternalError("failed to count department usage", err)
		}
		if err := conflictFor("department", usage); err != nil {
			return err
		}
		if err := repo.DeleteDepartment(id); err != nil {
			return errors.NewInternalError("failed to delete department", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("department not deleted", "error", err, "department_id", id)
		return err
	}
	s.logger.Info("department deleted", "department_id", id)
	return nil
}

// ComplexAndDepartmentNames returns a department's name with its parent's name.
func (s *Service) ComplexAndDepartmentNames(departmentID int64) (*ComplexAndDepartment, error) {
	dept, err := s.GetDepartment(departmentID)
	if err != nil {
		return nil, err
	}
	out := &ComplexAndDepartment{DepartmentName: dept.Name}
	if dept.ParentID != nil {
		parent, err := s.GetDepartment(*dept.ParentID)
		if err != nil {
			return nil, err
		}
		out.ComplexName = parent.Name
	}
	return out, nil
}

// ----------------- POSITIONS -----------------

func (s *Service) ListPositions() ([]*Position, error) {
	rows, err := s.repo.GetAllPositions()
	if err != nil {
		s.logger.Error("failed to list positions", "error", err)
		return nil, errors.NewInternalError("failed to list positions", err)
	}
	out := make([]*Position, 0, len(rows))
	for _, r := range rows {
		out = append(out, PositionFromDataModel(r))
	}
	return out, nil
}

func (s *Service) CreatePosition(name string) (*Position, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName("name", name); err != nil {
		return nil, err
	}

	row := &catalogDatamodel.Position{Name: name}
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		existing, err := repo.GetPositionByName(name)
		if err != nil {
			return errors.NewInternalError("failed to look up position", err)
		}
		if existing != nil {
			return errors.NewConflictError(fmt.Sprintf("position %q already exists", name), errors.ErrCodeDuplicateName, "positions", 1)
		}
		if err := repo.CreatePosition(row); err != nil {
			return errors.NewInternalError("failed to create position", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create position", "error", err, "name", name)
		return nil, err
	}
	s.logger.Info("position created", "position_id", row.ID)
	return PositionFromDataModel(row), nil
}

func (s *Service) UpdatePosition(id int64, name string) (*Position, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName("name", name); err != nil {
		return nil, err
	}

	var updated *catalogDatamodel.Position
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		row, err := repo.GetPositionByID(id)
		if err != nil {
			return errors.NewInternalError("failed to get position", err)
		}
		if row == nil {
			return errors.ErrPositionNotFound
		}
		existing, err := repo.GetPositionByName(name)
		if err != nil {
			return errors.NewInternalError("failed to look up position", err)
		}
		if existing != nil && existing.ID != id {
			return errors.NewConflictError(fmt.Sprintf("position %q already exists", name), errors.ErrCodeDuplicateName, "positions", 1)
		}
		row.Name = name
		if err := repo.UpdatePosition(row); err != nil {
			return errors.NewInternalError("failed to update position", err)
		}
		updated = row
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update position", "error", err, "position_id", id)
		return nil, err
	}
	return PositionFromDataModel(updated), nil
}

func (s *Service) DeletePosition(id int64) error {
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		row, err := repo.GetPositionByID(id)
		if err != nil {
			return errors.NewInternalError("failed to get position", err)
		}
		if row == nil {
			return errors.ErrPositionNotFound
		}
		usage, err := repo.CountPositionUsage(id)
		if err != nil {
			return errors.NewInternalError("failed to count position usage", err)
		}
		if err := conflictFor("position", usage); err != nil {
			return err
		}
		if err := repo.DeletePosition(id); err != nil {
			return errors.NewInternalError("failed to delete position", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("position not deleted", "error", err, "position_id", id)
		return err
	}
	s.logger.Info("position deleted", "position_id", id)
	return nil
}

// ----------------- PROGRAMS -----------------

func (s *Service) ListPrograms() ([]*Program, error) {
	rows, err := s.repo.GetAllPrograms()
	if err != nil {
		s.logger.Error("failed to list programs", "error", err)
		return nil, errors.NewInternalError("failed to list programs", err)
	}
	return programsFromRows(rows)
}

// ListProgramsForMonth returns programs active at any point of the month.
func (s *Service) ListProgramsForMonth(year, month int) ([]*Program, error) {
	if err := validation.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	from := dateutil.MonthStart(year, time.Month(month))
	to := dateutil.MonthEnd(year, time.Month(month))

	rows, err := s.repo.GetProgramsOverlapping(dateutil.Format(from), dateutil.Format(to))
	if err != nil {
		s.logger.Error("failed to list programs for month", "error", err, "year", year, "month", month)
		return nil, errors.NewInternalError("failed to list programs", err)
	}
	return programsFromRows(rows)
}

func (s *Service) GetProgram(id int64) (*Program, error) {
	row, err := s.repo.GetProgramByID(id)
	if err != nil {
		s.logger.Error("failed to get program", "error", err, "program_id", id)
		return nil, errors.NewInternalError("failed to get program", err)
	}
	if row == nil {
		return nil, errors.ErrProgramNotFound
	}
	p, err := ProgramFromDataModel(row)
	if err != nil {
		return nil, errors.NewInternalError("stored program has a malformed date", err)
	}
	return p, nil
}

func (s *Service) CreateProgram(in ProgramInput) (*Program, error) {
	in = normalizeProgram(in)
	if err := validateProgram(in); err != nil {
		return nil, err
	}

	program := &Program{Name: in.Name, ShortName: in.ShortName, DateStart: in.DateStart, DateEnd: in.DateEnd}
	row := ProgramToDataModel(program)
	if err := s.repo.CreateProgram(row); err != nil {
		s.logger.Error("failed to create program", "error", err, "name", in.Name)
		return nil, errors.NewInternalError("failed to create program", err)
	}
	program.ID = row.ID
	s.logger.Info("program created", "program_id", program.ID)
	return program, nil
}

func (s *Service) UpdateProgram(id int64, in ProgramInput) (*Program, error) {
	in = normalizeProgram(in)
	if err := validateProgram(in); err != nil {
		return nil, err
	}

	program := &Program{ID: id, Name: in.Name, ShortName: in.ShortName, DateStart: in.DateStart, DateEnd: in.DateEnd}
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		row, err := repo.GetProgramByID(id)
		if err != nil {
			return errors.NewInternalError("failed to get program", err)
		}
		if row == nil {
			return errors.ErrProgramNotFound
		}
		if err := repo.UpdateProgram(ProgramToDataModel(program)); err != nil {
			return errors.NewInternalError("failed to update program", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update program", "error", err, "program_id", id)
		return nil, err
	}
	return program, nil
}

func (s *Service) DeleteProgram(id int64) error {
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		row, err := repo.GetProgramByID(id)
		if err != nil {
			return errors.NewInternalError("failed to get program", err)
		}
		if row == nil {
			return errors.ErrProgramNotFound
		}
		usage, err := repo.CountProgramUsage(id)
		if err != nil {
			return errors.NewInternalError("failed to count program usage", err)
		}
		if err := conflictFor("program", usage); err != nil {
			return err
		}
		if err := repo.DeleteProgram(id); err != nil {
			return errors.NewInternalError("failed to delete program", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("program not deleted", "error", err, "program_id", id)
		return err
	}
	s.logger.Info("program deleted", "program_id", id)
	return nil
}

func normalizeProgram(in ProgramInput) ProgramInput {
	in.Name = strings.TrimSpace(in.Name)
	in.ShortName = strings.TrimSpace(in.ShortName)
	in.DateStart = dateutil.Truncate(in.DateStart)
	if in.DateEnd != nil {
		end := dateutil.Truncate(*in.DateEnd)
		in.DateEnd = &end
	}
	return in
}

func validateProgram(in ProgramInput) *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("name", in.Name).Required().MaxLength(255)
	validator.Field("short_name", in.ShortName).Required().MaxLength(64)
	validator.Field("date_start", in.DateStart).Required()
	validator.Field("date_end", in.DateEnd).NotBefore(in.DateStart, "date_start")
	return validator.Validate()
}

func programsFromRows(rows []*catalogDatamodel.Program) ([]*Program, error) {
	out := make([]*Program, 0, len(rows))
	for _, r := range rows {
		p, err := ProgramFromDataModel(r)
		if err != nil {
			return nil, errors.NewInternalError(fmt.Sprintf("program %d has a malformed date", r.ID), err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ----------------- WORK ITEMS -----------------

func (s *Service) ListWorkItems() ([]*WorkItem, error) {
	rows, err := s.repo.GetAllWorkItems()
	if err != nil {
		s.logger.Error("failed to list work items", "error", err)
		return nil, errors.NewInternalError("failed to list work items", err)
	}
	return workItemsFromRows(rows), nil
}

func (s *Service) WorkItemsByIDs(ids []int64) ([]*WorkItem, error) {
	if len(ids) == 0 {
		return []*WorkItem{}, nil
	}
	rows, err := s.repo.GetWorkItemsByIDs(ids)
	if err != nil {
		s.logger.Error("failed to get work items", "error", err, "count", len(ids))
		return nil, errors.NewInternalError("failed to get work items", err)
	}
	return workItemsFromRows(rows), nil
}

func (s *Service) CreateWorkItem(in WorkItemInput) (*WorkItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SpecialCode = strings.TrimSpace(in.SpecialCode)
	if err := validation.ValidateName("name", in.Name); err != nil {
		return nil, err
	}

	item := &WorkItem{ParentID: in.ParentID, Name: in.Name, SpecialCode: in.SpecialCode}
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		if in.ParentID != nil {
			parent, err := repo.GetWorkItemByID(*in.ParentID)
			if err != nil {
				return errors.NewInternalError("failed to get parent work item", err)
			}
			if parent == nil {
				return errors.ErrWorkItemNotFound
			}
		}
		row := WorkItemToDataModel(item)
		if err := repo.CreateWorkItem(row); err != nil {
			return errors.NewInternalError("failed to create work item", err)
		}
		item.ID = row.ID
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create work item", "error", err, "name", in.Name)
		return nil, err
	}
	s.logger.Info("work item created", "work_id", item.ID)
	return item, nil
}

func (s *Service) UpdateWorkItem(id int64, in WorkItemInput) (*WorkItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SpecialCode = strings.TrimSpace(in.SpecialCode)
	if err := validation.ValidateName("name", in.Name); err != nil {
		return nil, err
	}

	item := &WorkItem{ID: id, ParentID: in.ParentID, Name: in.Name, SpecialCode: in.SpecialCode}
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		row, err := repo.GetWorkItemByID(id)
		if err != nil {
			return errors.NewInternalError("failed to get work item", err)
		}
		if row == nil {
			return errors.ErrWorkItemNotFound
		}
		// walk up from the new parent; meeting id would close a cycle
		for parentID := in.ParentID; parentID != nil; {
			if *parentID == id {
				return errors.NewValidationFieldError("parent_id", "a work item cannot be nested under itself", errors.ErrCodeInvalidParent)
			}
			parent, err := repo.GetWorkItemByID(*parentID)
			if err != nil {
				return errors.NewInternalError("failed to get parent work item", err)
			}
			if parent == nil {
				return errors.ErrWorkItemNotFound
			}
			parentID = parent.ParentID
		}
		if err := repo.UpdateWorkItem(WorkItemToDataModel(item)); err != nil {
			return errors.NewInternalError("failed to update work item", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update work item", "error", err, "work_id", id)
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteWorkItem(id int64) error {
	err := s.repo.Transaction(func(repo RepositoryAPI) error {
		row, err := repo.GetWorkItemByID(id)
		if err != nil {
			return errors.NewInternalError("failed to get work item", err)
		}
		if row == nil {
			return errors.ErrWorkItemNotFound
		}
		usage, err := repo.CountWorkItemUsage(id)
		if err != nil {
			return errors.NewInternalError("failed to count work item usage", err)
		}
		if err := conflictFor("work item", usage); err != nil {
			return err
		}
		if err := repo.DeleteWorkItem(id); err != nil {
			return errors.NewInternalError("failed to delete work item", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("work item not deleted", "error", err, "work_id", id)
		return err
	}
	s.logger.Info("work item deleted", "work_id", id)
	return nil
}

func workItemsFromRows(rows []*catalogDatamodel.WorkItem) []*WorkItem {
	out := make([]*WorkItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, WorkItemFromDataModel(r))
	}
	return out
}

func conflictFor(entity string, usage Usage) error {
	resource, count := usage.Blocking()
	if count == 0 {
		return nil
	}
	return errors.NewConflictError(
		fmt.Sprintf("cannot delete %s: it is referenced by %d %s", entity, count, resource),
		errors.ErrCodeInUse, resource, count,
	)
}
