package catalog_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/missiontime/internal/catalog"
	catalogSQL "github.com/frahmantamala/missiontime/internal/catalog/sqlstore"
	"github.com/frahmantamala/missiontime/internal/store"
	"github.com/frahmantamala/missiontime/internal/store/storetest"
	"github.com/frahmantamala/missiontime/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

var _ = Describe("Catalog Handler Integration", func() {
	var (
		db      *store.DB
		service *catalog.Service
		handler *catalog.Handler
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = storetest.NewMemoryDB()
		Expect(err).NotTo(HaveOccurred())

		service = catalog.NewService(catalogSQL.NewCatalogRepository(db.Gorm), slogger)
		handler = catalog.NewHandler(transport.NewBaseHandler(slogger), service)
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	It("should create a department and return it in the tree", func() {
		body := strings.NewReader(`{"name":"Center","level":1}`)
		req := httptest.NewRequest(http.MethodPost, "/departments", body)
		w := httptest.NewRecorder()

		handler.CreateDepartment(w, req)
		Expect(w.Code).To(Equal(http.StatusCreated))

		req = httptest.NewRequest(http.MethodGet, "/departments", nil)
		w = httptest.NewRecorder()
		handler.GetDepartments(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var response catalog.DepartmentsResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Departments).To(HaveLen(1))
		Expect(response.Departments[0].Name).To(Equal("Center"))
	})

	It("should reject a request body that fails validation", func() {
		req := httptest.NewRequest(http.MethodPost, "/departments", strings.NewReader(`{"name":"","level":7}`))
		w := httptest.NewRecorder()

		handler.CreateDepartment(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("VALIDATION_ERROR"))
	})

	It("should reject a program with a malformed date", func() {
		req := httptest.NewRequest(http.MethodPost, "/programs",
			strings.NewReader(`{"name":"P","short_name":"P","date_start":"2024-13-01"}`))
		w := httptest.NewRecorder()

		handler.CreateProgram(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should filter programs by month", func() {
		for _, body := range []string{
			`{"name":"Alpha","short_name":"A","date_start":"2024-01-01","date_end":"2024-01-31"}`,
			`{"name":"Beta","short_name":"B","date_start":"2024-02-01"}`,
		} {
			w := httptest.NewRecorder()
			handler.CreateProgram(w, httptest.NewRequest(http.MethodPost, "/programs", strings.NewReader(body)))
			Expect(w.Code).To(Equal(http.StatusCreated))
		}

		w := httptest.NewRecorder()
		handler.GetPrograms(w, httptest.NewRequest(http.MethodGet, "/programs?year=2024&month=2", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		var response catalog.ProgramsResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Programs).To(HaveLen(1))
		Expect(response.Programs[0].ShortName).To(Equal("B"))
		Expect(response.Programs[0].DateEnd).To(BeNil())
	})

	It("should return 404 when deleting an unknown position", func() {
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/positions/42", nil), "id", "42")
		w := httptest.NewRecorder()

		handler.DeletePosition(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should return 409 with the blocking count for a referenced work item", func() {
		parent, err := service.CreateWorkItem(catalog.WorkItemInput{Name: "Design", SpecialCode: "D"})
		Expect(err).NotTo(HaveOccurred())
		_, err = service.CreateWorkItem(catalog.WorkItemInput{Name: "Review", ParentID: &parent.ID})
		Expect(err).NotTo(HaveOccurred())

		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/work-items/1", nil), "id", "1")
		w := httptest.NewRecorder()
		handler.DeleteWorkItem(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring(`"blocking_count":1`))
	})

	It("should list work items with their display names", func() {
		_, err := service.CreateWorkItem(catalog.WorkItemInput{Name: "Design", SpecialCode: "D1"})
		Expect(err).NotTo(HaveOccurred())

		w := httptest.NewRecorder()
		handler.GetWorkItems(w, httptest.NewRequest(http.MethodGet, "/work-items", nil))

		var response catalog.WorkItemsResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.WorkItems).To(HaveLen(1))
		Expect(response.WorkItems[0].DisplayName).To(Equal("D1 — Design"))
	})
})
