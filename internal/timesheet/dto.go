package timesheet

type HeaderRequest struct {
	Year         int   `json:"year" validate:"required,gte=1900,lte=9999"`
	Month        int   `json:"month" validate:"required,gte=1,lte=12"`
	DepartmentID int64 `json:"department_id" validate:"required,gt=0"`
}

// CellRequest writes one grid cell. Minutes are range-checked by the service.
type CellRequest struct {
	DepartmentID int64   `json:"department_id" validate:"required,gt=0"`
	WorkDate     string  `json:"work_date" validate:"required,isodate"`
	SegmentID    int64   `json:"segment_id" validate:"required,gt=0"`
	ProgramID    int64   `json:"program_id" validate:"required,gt=0"`
	WorkItemID   int64   `json:"work_id" validate:"required,gt=0"`
	Minutes      int     `json:"minutes"`
	Note         *string `json:"note,omitempty"`
}

type HeaderResponse struct {
	TimesheetID int64 `json:"timesheet_id"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}
