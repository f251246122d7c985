package catalog

type Department struct {
	ID        int64  `gorm:"primaryKey"`
	ParentID  *int64 `gorm:"column:parent_id"`
	Name      string `gorm:"column:name;not null"`
	Level     int    `gorm:"column:level;not null"`
	SortOrder int    `gorm:"column:sort_order;not null"`
}

func (Department) TableName() string {
	return "departments"
}

type Position struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (Position) TableName() string {
	return "positions"
}

type Program struct {
	ID        int64   `gorm:"primaryKey"`
	Name      string  `gorm:"column:name;not null"`
	ShortName string  `gorm:"column:short_name;not null"`
	DateStart string  `gorm:"column:date_start;not null"`
	DateEnd   *string `gorm:"column:date_end"`
}

func (Program) TableName() string {
	return "programs"
}

type WorkItem struct {
	ID          int64  `gorm:"primaryKey"`
	ParentID    *int64 `gorm:"column:parent_id"`
	Name        string `gorm:"column:name;not null"`
	SpecialCode string `gorm:"column:special_code;not null"`
}

func (WorkItem) TableName() string {
	return "list_of_work"
}
