package timesheet

type Timesheet struct {
	ID           int64  `gorm:"primaryKey"`
	Year         int    `gorm:"column:year;not null"`
	Month        int    `gorm:"column:month;not null"`
	DepartmentID int64  `gorm:"column:department_id;not null"`
	CreatedAt    string `gorm:"column:created_at;not null"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}

type Entry struct {
	ID          int64   `gorm:"primaryKey"`
	TimesheetID int64   `gorm:"column:timesheet_id;not null"`
	WorkDate    string  `gorm:"column:work_date;not null"`
	SegmentID   int64   `gorm:"column:employee_positions_history_id;not null"`
	ProgramID   int64   `gorm:"column:program_id;not null"`
	WorkID      int64   `gorm:"column:work_id;not null"`
	Minutes     int     `gorm:"column:minutes;not null"`
	Note        *string `gorm:"column:note"`
}

func (Entry) TableName() string {
	return "timesheet_entries"
}
