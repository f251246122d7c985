package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/missiontime/api"
	"github.com/frahmantamala/missiontime/internal/aggregation"
	"github.com/frahmantamala/missiontime/internal/catalog"
	"github.com/frahmantamala/missiontime/internal/employee"
	"github.com/frahmantamala/missiontime/internal/timesheet"
	"github.com/frahmantamala/missiontime/internal/transport/middleware"
	"github.com/frahmantamala/missiontime/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything RegisterAllRoutes mounts. Nil handlers are skipped.
type Handlers struct {
	Health      *HealthHandler
	Catalog     *catalog.Handler
	Employee    *employee.Handler
	Timesheet   *timesheet.Handler
	Aggregation *aggregation.Handler
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, requestTimeout time.Duration, logger *slog.Logger) {
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if requestTimeout > 0 {
		router.Use(chiMiddleware.Timeout(requestTimeout))
	}

	// OpenAPI document and Swagger UI live outside the API prefix
	router.Get(swagger.SpecPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.OpenAPI)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Catalog != nil {
			r.Route("/departments", func(sr chi.Router) {
				sr.Get("/", h.Catalog.GetDepartments)
				sr.Post("/", h.Catalog.CreateDepartment)
				sr.Put("/{id}", h.Catalog.RenameDepartment)
				sr.Delete("/{id}", h.Catalog.DeleteDepartment)
			})
			r.Route("/positions", func(sr chi.Router) {
				sr.Get("/", h.Catalog.GetPositions)
				sr.Post("/", h.Catalog.CreatePosition)
				sr.Put("/{id}", h.Catalog.UpdatePosition)
				sr.Delete("/{id}", h.Catalog.DeletePosition)
			})
			r.Route("/programs", func(sr chi.Router) {
				sr.Get("/", h.Catalog.GetPrograms)
				sr.Post("/", h.Catalog.CreateProgram)
				sr.Put("/{id}", h.Catalog.UpdateProgram)
				sr.Delete("/{id}", h.Catalog.DeleteProgram)
				if h.Aggregation != nil {
					sr.Get("/{id}/weeks", h.Aggregation.GetProgramWeeks)
				}
			})
			r.Route("/work-items", func(sr chi.Router) {
				sr.Get("/", h.Catalog.GetWorkItems)
				sr.Post("/", h.Catalog.CreateWorkItem)
				sr.Put("/{id}", h.Catalog.UpdateWorkItem)
				sr.Delete("/{id}", h.Catalog.DeleteWorkItem)
			})
		}

		if h.Employee != nil {
			r.Route("/employees", func(er chi.Router) {
				er.Get("/", h.Employee.ListEmployees)
				er.Post("/", h.Employee.HireEmployee)
				er.Get("/{id}", h.Employee.GetEmployee)
				er.Patch("/{id}", h.Employee.RenameEmployee)
				er.Get("/{id}/history", h.Employee.GetHistory)
				er.Get("/{id}/assignment", h.Employee.GetCurrentAssignment)
				er.Post("/{id}/rehire", h.Employee.RehireEmployee)
				er.Post("/{id}/transfer", h.Employee.TransferEmployee)
				er.Post("/{id}/fire", h.Employee.FireEmployee)
				er.Post("/{id}/cancel", h.Employee.CancelLastOperation)
			})
			r.Get("/segments/{id}/owner", h.Employee.GetSegmentOwner)
		}

		if h.Timesheet != nil {
			r.Route("/timesheets", func(tr chi.Router) {
				tr.Post("/", h.Timesheet.OpenTimesheet)
				tr.Get("/{id}", h.Timesheet.GetTimesheet)
				tr.Put("/cells", h.Timesheet.SaveCell)
				tr.Get("/entries/count", h.Timesheet.CountEntries)
				tr.Delete("/entries", h.Timesheet.DeleteEntries)
			})
		}

		if h.Aggregation != nil {
			r.Get("/grid", h.Aggregation.GetGrid)
			r.Get("/segments/{id}/window", h.Aggregation.GetSegmentWindow)
			r.Get("/segments/{id}/breakdown", h.Aggregation.GetSegmentBreakdown)
			r.Route("/reports", func(rr chi.Router) {
				rr.Get("/assignments", h.Aggregation.GetAssignments)
				rr.Get("/worked-segments", h.Aggregation.GetWorkedSegments)
				rr.Get("/has-hours", h.Aggregation.GetHasHours)
				rr.Get("/work-days", h.Aggregation.GetWorkDays)
				rr.Get("/work-weeks", h.Aggregation.GetWorkWeeks)
				rr.Get("/headcounts", h.Aggregation.GetHeadcounts)
			})
		}
	})
}
