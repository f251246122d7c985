package sqlstore

import (
	"errors"

	"github.com/frahmantamala/missiontime/internal/catalog"
	catalogDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/catalog"
	employeeDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/employee"
	timesheetDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/timesheet"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.RepositoryAPI {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Transaction(fn func(repo catalog.RepositoryAPI) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&CatalogRepository{db: tx})
	})
}

// first loads one row into dest, reporting (false, nil) when nothing matches.
func (r *CatalogRepository) first(dest interface{}, query string, args ...interface{}) (bool, error) {
	err := r.db.Where(query, args...).First(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *CatalogRepository) count(model interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	err := r.db.Model(model).Where(query, args...).Count(&n).Error
	return n, err
}

// ----------------- DEPARTMENTS -----------------

func (r *CatalogRepository) GetAllDepartments() ([]*catalogDatamodel.Department, error) {
	var depts []*catalogDatamodel.Department
	err := r.db.Order("level ASC, sort_order ASC, name ASC, id ASC").Find(&depts).Error
	return depts, err
}

func (r *CatalogRepository) GetDepartmentByID(id int64) (*catalogDatamodel.Department, error) {
	var dept catalogDatamodel.Department
	found, err := r.first(&dept, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &dept, nil
}

func (r *CatalogRepository) CreateDepartment(d *catalogDatamodel.Department) error {
	return r.db.Create(d).Error
}

func (r *CatalogRepository) UpdateDepartmentName(id int64, name string) error {
	return r.db.Model(&catalogDatamodel.Department{}).Where("id = ?", id).Update("name", name).Error
}

func (r *CatalogRepository) DeleteDepartment(id int64) error {
	return r.db.Delete(&catalogDatamodel.Department{}, id).Error
}

func (r *CatalogRepository) CountDepartmentUsage(id int64) (catalog.Usage, error) {
	var (
		u   catalog.Usage
		err error
	)
	if u.Children, err = r.count(&catalogDatamodel.Department{}, "parent_id = ?", id); err != nil {
		return u, err
	}
	if u.Segments, err = r.count(&employeeDatamodel.PositionHistory{}, "department_id = ?", id); err != nil {
		return u, err
	}
	if u.Timesheets, err = r.count(&timesheetDatamodel.Timesheet{}, "department_id = ?", id); err != nil {
		return u, err
	}
	return u, nil
}

// ----------------- POSITIONS -----------------

func (r *CatalogRepository) GetAllPositions() ([]*catalogDatamodel.Position, error) {
	var positions []*catalogDatamodel.Position
	err := r.db.Order("name ASC").Find(&positions).Error
	return positions, err
}

func (r *CatalogRepository) GetPositionByID(id int64) (*catalogDatamodel.Position, error) {
	var p catalogDatamodel.Position
	found, err := r.first(&p, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) GetPositionByName(name string) (*catalogDatamodel.Position, error) {
	var p catalogDatamodel.Position
	found, err := r.first(&p, "name = ?", name)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) CreatePosition(p *catalogDatamodel.Position) error {
	return r.db.Create(p).Error
}

func (r *CatalogRepository) UpdatePosition(p *catalogDatamodel.Position) error {
	return r.db.Save(p).Error
}

func (r *CatalogRepository) DeletePosition(id int64) error {
	return r.db.Delete(&catalogDatamodel.Position{}, id).Error
}

func (r *CatalogRepository) CountPositionUsage(id int64) (catalog.Usage, error) {
	n, err := r.count(&employeeDatamodel.PositionHistory{}, "position_id = ?", id)
	return catalog.Usage{Segments: n}, err
}

// ----------------- PROGRAMS -----------------

func (r *CatalogRepository) GetAllPrograms() ([]*catalogDatamodel.Program, error) {
	var programs []*catalogDatamodel.Program
	err := r.db.Order("date_start DESC, name ASC").Find(&programs).Error
	return programs, err
}

func (r *CatalogRepository) GetProgramsOverlapping(from, to string) ([]*catalogDatamodel.Program, error) {
	var programs []*catalogDatamodel.Program
	err := r.db.
		Where("date_start <= ?", to).
		Where("date_end IS NULL OR date_end >= ?", from).
		Order("short_name ASC").
		Find(&programs).Error
	return programs, err
}

func (r *CatalogRepository) GetProgramByID(id int64) (*catalogDatamodel.Program, error) {
	var p catalogDatamodel.Program
	found, err := r.first(&p, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) CreateProgram(p *catalogDatamodel.Program) error {
	return r.db.Create(p).Error
}

func (r *CatalogRepository) UpdateProgram(p *catalogDatamodel.Program) error {
	return r.db.Model(&catalogDatamodel.Program{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":       p.Name,
		"short_name": p.ShortName,
		"date_start": p.DateStart,
		"date_end":   p.DateEnd,
	}).Error
}

func (r *CatalogRepository) DeleteProgram(id int64) error {
	return r.db.Delete(&catalogDatamodel.Program{}, id).Error
}

func (r *CatalogRepository) CountProgramUsage(id int64) (catalog.Usage, error) {
	n, err := r.count(&timesheetDatamodel.Entry{}, "program_id = ?", id)
	return catalog.Usage{Entries: n}, err
}

// ----------------- WORK ITEMS -----------------

func (r *CatalogRepository) GetAllWorkItems() ([]*catalogDatamodel.WorkItem, error) {
	var items []*catalogDatamodel.WorkItem
	err := r.db.Order("name ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *CatalogRepository) GetWorkItemsByIDs(ids []int64) ([]*catalogDatamodel.WorkItem, error) {
	var items []*catalogDatamodel.WorkItem
	err := r.db.Where("id IN ?", ids).Order("name ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *CatalogRepository) GetWorkItemByID(id int64) (*catalogDatamodel.WorkItem, error) {
	var w catalogDatamodel.WorkItem
	found, err := r.first(&w, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &w, nil
}

func (r *CatalogRepository) CreateWorkItem(w *catalogDatamodel.WorkItem) error {
	return r.db.Create(w).Error
}

func (r *CatalogRepository) UpdateWorkItem(w *catalogDatamodel.WorkItem) error {
	return r.db.Model(&catalogDatamodel.WorkItem{}).Where("id = ?", w.ID).Updates(map[string]interface{}{
		"parent_id":    w.ParentID,
		"name":         w.Name,
		"special_code": w.SpecialCode,
	}).Error
}

func (r *CatalogRepository) DeleteWorkItem(id int64) error {
	return r.db.Delete(&catalogDatamodel.WorkItem{}, id).Error
}

func (r *CatalogRepository) CountWorkItemUsage(id int64) (catalog.Usage, error) {
	var (
		u   catalog.Usage
		err error
	)
	if u.Entries, err = r.count(&timesheetDatamodel.Entry{}, "work_id = ?", id); err != nil {
		return u, err
	}
	if u.Children, err = r.count(&catalogDatamodel.WorkItem{}, "parent_id = ?", id); err != nil {
		return u, err
	}
	return u, nil
}
