package aggregation_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/missiontime/internal/aggregation"
	aggregationSQL "github.com/frahmantamala/missiontime/internal/aggregation/sqlstore"
	"github.com/frahmantamala/missiontime/internal/employee"
	employeeSQL "github.com/frahmantamala/missiontime/internal/employee/sqlstore"
	"github.com/frahmantamala/missiontime/internal/store"
	"github.com/frahmantamala/missiontime/internal/store/storetest"
	"github.com/frahmantamala/missiontime/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Aggregation Handler Integration", func() {
	var (
		db      *store.DB
		handler *aggregation.Handler
		seg     int64
	)

	get := func(h http.HandlerFunc, url string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, url, nil))
		return w
	}

	BeforeEach(func() {
		var err error
		db, err = storetest.NewMemoryDB()
		Expect(err).NotTo(HaveOccurred())
		seedCatalog(db)

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ledger := employee.NewService(employeeSQL.NewEmployeeRepository(db.Gorm), nil, slogger)
		res, err := ledger.Hire(context.Background(), employee.HireInput{Fio: "Ivanov", DepartmentID: deptA, PositionID: 1, StartDate: date("2025-01-10")})
		Expect(err).NotTo(HaveOccurred())
		seg = res.SegmentID

		service := aggregation.NewService(aggregationSQL.NewAggregationRepository(db.SQL), slogger)
		handler = aggregation.NewHandler(transport.NewBaseHandler(slogger), service)
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	It("should render the grid with per-day states", func() {
		w := get(handler.GetGrid, "/grid?department_id=2&year=2025&month=2")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp aggregation.GridResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.DaysInMonth).To(Equal(28))
		Expect(resp.Rows).To(HaveLen(1))
		Expect(resp.Rows[0].SegStart).To(Equal("2025-02-01"))
		Expect(resp.Rows[0].Days).To(HaveLen(31))
		Expect(resp.Rows[0].Days[0].Display).To(Equal("0:00"))
		Expect(resp.Rows[0].Days[30].State).To(Equal("out_of_month"))
	})

	It("should answer 404 for an unknown department", func() {
		w := get(handler.GetGrid, "/grid?department_id=99&year=2025&month=1")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should answer 400 for a malformed window", func() {
		w := get(handler.GetAssignments, "/assignments?department_id=2&from=2025-01-01&to=soon")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report a segment's month window", func() {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", "1")
		req := httptest.NewRequest(http.MethodGet, "/segments/1/window?year=2025&month=1", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		w := httptest.NewRecorder()
		handler.GetSegmentWindow(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp aggregation.SegmentWindowResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(seg).To(Equal(int64(1)))
		Expect(resp.Covered).To(BeTrue())
		Expect(resp.Start).To(Equal("2025-01-10"))
		Expect(resp.End).To(Equal("2025-01-31"))
	})

	It("should return an empty headcount list as an array", func() {
		w := get(handler.GetHeadcounts, "/headcounts?year=2020&month=1")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"departments":[]`))
	})
})
