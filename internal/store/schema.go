package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/frahmantamala/missiontime/internal"
	"gorm.io/gorm"
)

// SchemaVersion is the only schema layout this build understands.
const SchemaVersion = 1

const schemaInfoTable = "schema_info"

var sqliteHeader = []byte("SQLite format 3\x00")

// requiredColumns is the table contract checked on every open.
var requiredColumns = []struct {
	Table   string
	Columns []string
}{
	{"departments", []string{"id", "parent_id", "name", "level", "sort_order"}},
	{"positions", []string{"id", "name"}},
	{"list_of_work", []string{"id", "parent_id", "name", "special_code"}},
	{"programs", []string{"id", "name", "short_name", "date_start", "date_end"}},
	{"employees", []string{"id", "fio"}},
	{"employee_positions_history", []string{"id", "employee_id", "department_id", "position_id", "start_date", "end_date", "action", "note"}},
	{"timesheets", []string{"id", "year", "month", "department_id", "created_at"}},
	{"timesheet_entries", []string{"id", "timesheet_id", "work_date", "employee_positions_history_id", "program_id", "work_id", "minutes", "note"}},
}

// CheckFileHeader verifies that path is an existing SQLite database file.
// In-memory sources are accepted as is.
func CheckFileHeader(path string) error {
	if isMemorySource(path) {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return internal.NewSchemaError(fmt.Sprintf("database file %s does not exist", path), internal.ErrCodeNotSQLite)
		}
		return internal.NewSchemaError(fmt.Sprintf("cannot open database file %s", path), internal.ErrCodeNotSQLite).WithCause(err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, header); err != nil {
		return internal.NewSchemaError(fmt.Sprintf("%s is not a SQLite database", path), internal.ErrCodeNotSQLite).WithCause(err)
	}
	if !bytes.Equal(header, sqliteHeader) {
		return internal.NewSchemaError(fmt.Sprintf("%s is not a SQLite database", path), internal.ErrCodeNotSQLite)
	}
	return nil
}

// CheckSchema validates the stored version and the table contract.
func CheckSchema(db *gorm.DB) error {
	migrator := db.Migrator()

	if !migrator.HasTable(schemaInfoTable) {
		return internal.NewSchemaError("schema version table is missing", internal.ErrCodeMissingTable)
	}

	var versions []int
	if err := db.Table(schemaInfoTable).Pluck("schema_version", &versions).Error; err != nil {
		return internal.NewSchemaError("cannot read schema version", internal.ErrCodeVersionMismatch).WithCause(err)
	}
	if len(versions) != 1 {
		return internal.NewSchemaError(fmt.Sprintf("expected exactly one schema version row, found %d", len(versions)), internal.ErrCodeVersionMismatch)
	}
	if versions[0] != SchemaVersion {
		return internal.NewSchemaError(
			fmt.Sprintf("schema version %d is not supported (expected %d)", versions[0], SchemaVersion),
			internal.ErrCodeVersionMismatch,
		)
	}

	for _, t := range requiredColumns {
		if !migrator.HasTable(t.Table) {
			return internal.NewSchemaError(fmt.Sprintf("table %s is missing", t.Table), internal.ErrCodeMissingTable)
		}
		for _, col := range t.Columns {
			if !migrator.HasColumn(t.Table, col) {
				return internal.NewSchemaError(fmt.Sprintf("column %s.%s is missing", t.Table, col), internal.ErrCodeMissingColumn)
			}
		}
	}
	return nil
}
