package sqlstore

import (
	"errors"

	catalogDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/catalog"
	employeeDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/employee"
	timesheetDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/missiontime/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Transaction(fn func(repo employee.RepositoryAPI) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&EmployeeRepository{db: tx})
	})
}

func (r *EmployeeRepository) CreateEmployee(e *employeeDatamodel.Employee) error {
	return r.db.Create(e).Error
}

func (r *EmployeeRepository) GetEmployeeByID(id int64) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	if err := r.db.Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) UpdateEmployeeFio(id int64, fio string) error {
	return r.db.Model(&employeeDatamodel.Employee{}).Where("id = ?", id).Update("fio", fio).Error
}

func (r *EmployeeRepository) ListEmployees(showFired bool) ([]*employeeDatamodel.SummaryRow, error) {
	query := r.db.Table("employees AS e").
		Select("e.id, e.fio, h.department_id, d.name AS department_name, h.position_id, p.name AS position_name").
		Joins("LEFT JOIN employee_positions_history h ON h.employee_id = e.id AND h.end_date IS NULL").
		Joins("LEFT JOIN positions p ON p.id = h.position_id").
		Joins("LEFT JOIN departments d ON d.id = h.department_id")
	if !showFired {
		query = query.Where("h.id IS NOT NULL")
	}

	var rows []*employeeDatamodel.SummaryRow
	err := query.Order("e.fio ASC, e.id ASC").Scan(&rows).Error
	return rows, err
}

func (r *EmployeeRepository) DepartmentExists(id int64) (bool, error) {
	var n int64
	err := r.db.Model(&catalogDatamodel.Department{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *EmployeeRepository) PositionExists(id int64) (bool, error) {
	var n int64
	err := r.db.Model(&catalogDatamodel.Position{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *EmployeeRepository) GetSegments(employeeID int64) ([]*employeeDatamodel.PositionHistory, error) {
	var rows []*employeeDatamodel.PositionHistory
	err := r.db.Where("employee_id = ?", employeeID).
		Order("start_date ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *EmployeeRepository) GetSegmentByID(id int64) (*employeeDatamodel.PositionHistory, error) {
	var h employeeDatamodel.PositionHistory
	if err := r.db.Where("id = ?", id).First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

func (r *EmployeeRepository) CreateSegment(s *employeeDatamodel.PositionHistory) error {
	return r.db.Create(s).Error
}

func (r *EmployeeRepository) CloseSegment(id int64, endDate string, action int, note *string) error {
	return r.db.Model(&employeeDatamodel.PositionHistory{}).Where("id = ? AND end_date IS NULL", id).Updates(map[string]interface{}{
		"end_date": endDate,
		"action":   action,
		"note":     note,
	}).Error
}

func (r *EmployeeRepository) ReopenSegment(id int64, action int) error {
	return r.db.Model(&employeeDatamodel.PositionHistory{}).Where("id = ?", id).Updates(map[string]interface{}{
		"end_date": nil,
		"action":   action,
	}).Error
}

func (r *EmployeeRepository) DeleteSegment(id int64) error {
	return r.db.Delete(&employeeDatamodel.PositionHistory{}, id).Error
}

func (r *EmployeeRepository) CountSegmentEntries(segmentID int64) (int64, error) {
	var n int64
	err := r.db.Model(&timesheetDatamodel.Entry{}).Where("employee_positions_history_id = ?", segmentID).Count(&n).Error
	return n, err
}

func (r *EmployeeRepository) GetHistory(employeeID int64) ([]*employeeDatamodel.HistoryRow, error) {
	var rows []*employeeDatamodel.HistoryRow
	err := r.db.Table("employee_positions_history AS h").
		Select("h.id, h.employee_id, h.department_id, h.position_id, h.start_date, h.end_date, h.action, h.note, " +
			"d.name AS department_name, p.name AS position_name").
		Joins("JOIN positions p ON p.id = h.position_id").
		Joins("JOIN departments d ON d.id = h.department_id").
		Where("h.employee_id = ?", employeeID).
		Order("h.start_date ASC, h.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *EmployeeRepository) GetSegmentOwner(segmentID int64) (*employeeDatamodel.OwnerRow, error) {
	var rows []*employeeDatamodel.OwnerRow
	err := r.db.Table("employee_positions_history AS h").
		Select("e.fio, d.name AS department_name").
		Joins("JOIN employees e ON e.id = h.employee_id").
		Joins("JOIN departments d ON d.id = h.department_id").
		Where("h.id = ?", segmentID).
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}
