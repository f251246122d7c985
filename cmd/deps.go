package cmd

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/aggregation"
	aggregationSQL "github.com/frahmantamala/missiontime/internal/aggregation/sqlstore"
	"github.com/frahmantamala/missiontime/internal/catalog"
	catalogSQL "github.com/frahmantamala/missiontime/internal/catalog/sqlstore"
	"github.com/frahmantamala/missiontime/internal/core/events"
	"github.com/frahmantamala/missiontime/internal/employee"
	employeeSQL "github.com/frahmantamala/missiontime/internal/employee/sqlstore"
	"github.com/frahmantamala/missiontime/internal/store"
	"github.com/frahmantamala/missiontime/internal/timesheet"
	timesheetSQL "github.com/frahmantamala/missiontime/internal/timesheet/sqlstore"
	"github.com/frahmantamala/missiontime/pkg/logger"
)

type Dependencies struct {
	Config      *internal.Config
	DB          *store.DB
	Logger      *slog.Logger
	EventBus    *events.EventBus
	Catalog     *catalog.Service
	Employee    *employee.Service
	Timesheet   *timesheet.Service
	Aggregation *aggregation.Service
}

// initializeDependencies loads config, opens a schema-checked database and builds
// every service on top of it.
func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := store.Open(config.Database, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)
	employee.NewAuditLog(lg).RegisterEventHandlers(bus)

	return &Dependencies{
		Config:      config,
		DB:          db,
		Logger:      lg,
		EventBus:    bus,
		Catalog:     catalog.NewService(catalogSQL.NewCatalogRepository(db.Gorm), lg),
		Employee:    employee.NewService(employeeSQL.NewEmployeeRepository(db.Gorm), bus, lg),
		Timesheet:   timesheet.NewService(timesheetSQL.NewTimesheetRepository(db.Gorm), lg),
		Aggregation: aggregation.NewService(aggregationSQL.NewAggregationRepository(db.SQL), lg),
	}, nil
}

func (d *Dependencies) Close() {
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}
