package rest_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/missiontime/api"
	"github.com/frahmantamala/missiontime/internal/aggregation"
	aggregationSQL "github.com/frahmantamala/missiontime/internal/aggregation/sqlstore"
	"github.com/frahmantamala/missiontime/internal/catalog"
	catalogSQL "github.com/frahmantamala/missiontime/internal/catalog/sqlstore"
	"github.com/frahmantamala/missiontime/internal/employee"
	employeeSQL "github.com/frahmantamala/missiontime/internal/employee/sqlstore"
	"github.com/frahmantamala/missiontime/internal/store"
	"github.com/frahmantamala/missiontime/internal/store/storetest"
	"github.com/frahmantamala/missiontime/internal/timesheet"
	timesheetSQL "github.com/frahmantamala/missiontime/internal/timesheet/sqlstore"
	"github.com/frahmantamala/missiontime/internal/transport"
	"github.com/frahmantamala/missiontime/internal/transport/middleware"
	"github.com/frahmantamala/missiontime/internal/transport/rest"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"
)

var _ = Describe("RegisterAllRoutes", func() {
	var (
		db     *store.DB
		router *chi.Mux
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		db, err = storetest.NewMemoryDB()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		base := transport.NewBaseHandler(slogger)
		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health:      rest.NewHealthHandler(db.SQL, db.Driver),
			Catalog:     catalog.NewHandler(base, catalog.NewService(catalogSQL.NewCatalogRepository(db.Gorm), slogger)),
			Employee:    employee.NewHandler(base, employee.NewService(employeeSQL.NewEmployeeRepository(db.Gorm), nil, slogger)),
			Timesheet:   timesheet.NewHandler(base, timesheet.NewService(timesheetSQL.NewTimesheetRepository(db.Gorm), slogger)),
			Aggregation: aggregation.NewHandler(base, aggregation.NewService(aggregationSQL.NewAggregationRepository(db.SQL), slogger)),
		}, 0, slogger)
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	It("should serve health under /api/v1 with a trace id", func() {
		w := do(http.MethodGet, "/api/v1/health", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get(middleware.TraceHeader)).NotTo(BeEmpty())
	})

	It("should walk a department through hire and grid", func() {
		Expect(do(http.MethodPost, "/api/v1/departments/", `{"name":"Center","level":1}`).Code).To(Equal(http.StatusCreated))
		Expect(do(http.MethodPost, "/api/v1/positions/", `{"name":"Engineer"}`).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPost, "/api/v1/employees/", `{"fio":"Ivanov","department_id":1,"position_id":1,"start_date":"2025-01-10"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodGet, "/api/v1/grid?department_id=1&year=2025&month=1", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"fio":"Ivanov"`))
		Expect(w.Body.String()).To(ContainSubstring(`"state":"not_applicable"`))

		w = do(http.MethodPost, "/api/v1/employees/1/fire", `{"fire_date":"2025-01-10"}`)
		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
	})

	It("should return the error envelope for unknown resources", func() {
		w := do(http.MethodGet, "/api/v1/employees/42", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring(`"code":"EMPLOYEE_NOT_FOUND"`))
	})

	It("should serve the OpenAPI document and the Swagger UI", func() {
		w := do(http.MethodGet, "/openapi.yml", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/yaml"))
		Expect(w.Body.Bytes()).To(Equal(api.OpenAPI))

		w = do(http.MethodGet, "/swagger/index.html", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("swagger-ui"))
	})

	It("should document every route mounted under /api/v1", func() {
		var doc struct {
			Paths map[string]map[string]interface{} `yaml:"paths"`
		}
		Expect(yaml.Unmarshal(api.OpenAPI, &doc)).To(Succeed())

		var routes int
		err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			path, ok := strings.CutPrefix(route, "/api/v1")
			if !ok {
				return nil
			}
			if path != "/" {
				path = strings.TrimSuffix(path, "/")
			}
			routes++
			Expect(doc.Paths).To(HaveKey(path), "%s %s", method, route)
			Expect(doc.Paths[path]).To(HaveKey(strings.ToLower(method)), "%s %s", method, route)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(routes).To(BeNumerically(">", 40))
	})
})
