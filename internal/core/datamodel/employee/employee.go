package employee

type Employee struct {
	ID  int64  `gorm:"primaryKey"`
	Fio string `gorm:"column:fio;not null"`
}

func (Employee) TableName() string {
	return "employees"
}

// PositionHistory is one row of employee_positions_history.
type PositionHistory struct {
	ID           int64   `gorm:"primaryKey"`
	EmployeeID   int64   `gorm:"column:employee_id;not null"`
	DepartmentID int64   `gorm:"column:department_id;not null"`
	PositionID   int64   `gorm:"column:position_id;not null"`
	StartDate    string  `gorm:"column:start_date;not null"`
	EndDate      *string `gorm:"column:end_date"`
	Action       int     `gorm:"column:action;not null"`
	Note         *string `gorm:"column:note"`
}

func (PositionHistory) TableName() string {
	return "employee_positions_history"
}

// SummaryRow is an employee joined with the department and position of the open segment.
type SummaryRow struct {
	ID             int64   `gorm:"column:id"`
	Fio            string  `gorm:"column:fio"`
	DepartmentID   *int64  `gorm:"column:department_id"`
	DepartmentName *string `gorm:"column:department_name"`
	PositionID     *int64  `gorm:"column:position_id"`
	PositionName   *string `gorm:"column:position_name"`
}

// HistoryRow is a segment joined with its department and position names.
type HistoryRow struct {
	PositionHistory `gorm:"embedded"`
	DepartmentName  string `gorm:"column:department_name"`
	PositionName    string `gorm:"column:position_name"`
}

type OwnerRow struct {
	Fio            string `gorm:"column:fio"`
	DepartmentName string `gorm:"column:department_name"`
}
