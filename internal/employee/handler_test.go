package employee_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"

	"github.com/frahmantamala/missiontime/internal/employee"
	employeeSQL "github.com/frahmantamala/missiontime/internal/employee/sqlstore"
	"github.com/frahmantamala/missiontime/internal/store"
	"github.com/frahmantamala/missiontime/internal/store/storetest"
	"github.com/frahmantamala/missiontime/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func withID(req *http.Request, id int64) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", strconv.FormatInt(id, 10))
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

var _ = Describe("Employee Handler Integration", func() {
	var (
		db      *store.DB
		handler *employee.Handler
	)

	post := func(h http.HandlerFunc, id int64, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if id > 0 {
			req = withID(req, id)
		}
		w := httptest.NewRecorder()
		h(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		db, err = storetest.NewMemoryDB()
		Expect(err).NotTo(HaveOccurred())
		seedCatalog(db)

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := employee.NewService(employeeSQL.NewEmployeeRepository(db.Gorm), nil, slogger)
		handler = employee.NewHandler(transport.NewBaseHandler(slogger), service)
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	It("should hire, transfer and return the history", func() {
		w := post(handler.HireEmployee, 0, `{"fio":"Ivanov","department_id":1,"position_id":1,"start_date":"2025-01-10"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var hired employee.TransitionResponse
		Expect(json.NewDecoder(w.Body).Decode(&hired)).To(Succeed())
		Expect(hired.State).To(Equal("active"))

		w = post(handler.TransferEmployee, hired.EmployeeID, `{"department_id":2,"position_id":2,"transfer_date":"2025-02-01"}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		req := withID(httptest.NewRequest(http.MethodGet, "/", nil), hired.EmployeeID)
		w = httptest.NewRecorder()
		handler.GetHistory(w, req)

		var history employee.HistoryResponse
		Expect(json.NewDecoder(w.Body).Decode(&history)).To(Succeed())
		Expect(history.Segments).To(HaveLen(2))
		Expect(*history.Segments[0].EndDate).To(Equal("2025-01-31"))
		Expect(history.Segments[0].Action).To(Equal("transfer"))
		Expect(history.Segments[1].DepartmentName).To(Equal("Dept B"))
	})

	It("should answer 422 for a same-day transfer", func() {
		w := post(handler.HireEmployee, 0, `{"fio":"Ivanov","department_id":1,"position_id":1,"start_date":"2025-01-10"}`)
		var hired employee.TransitionResponse
		Expect(json.NewDecoder(w.Body).Decode(&hired)).To(Succeed())

		w = post(handler.TransferEmployee, hired.EmployeeID, `{"department_id":2,"position_id":2,"transfer_date":"2025-01-10"}`)
		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(w.Body.String()).To(ContainSubstring("SAME_DAY_TRANSITION"))
	})

	DescribeTable("answering 400 for a malformed date without touching the history",
		func(endpoint func(*employee.Handler) http.HandlerFunc, field, body string) {
			w := post(handler.HireEmployee, 0, `{"fio":"Ivanov","department_id":1,"position_id":1,"start_date":"2025-01-10"}`)
			var hired employee.TransitionResponse
			Expect(json.NewDecoder(w.Body).Decode(&hired)).To(Succeed())

			w = post(endpoint(handler), hired.EmployeeID, body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring(field))

			var n int64
			Expect(db.Gorm.Raw("SELECT COUNT(*) FROM employee_positions_history").Scan(&n).Error).To(Succeed())
			Expect(n).To(Equal(int64(1)))
		},
		Entry("hire", func(h *employee.Handler) http.HandlerFunc { return h.HireEmployee },
			"start_date", `{"fio":"Petrov","department_id":1,"position_id":1,"start_date":"10.01.2025"}`),
		Entry("rehire", func(h *employee.Handler) http.HandlerFunc { return h.RehireEmployee },
			"start_date", `{"department_id":1,"position_id":1,"start_date":"2025-02-30"}`),
		Entry("transfer", func(h *employee.Handler) http.HandlerFunc { return h.TransferEmployee },
			"transfer_date", `{"department_id":2,"position_id":2,"transfer_date":"2025/02/01"}`),
		Entry("fire", func(h *employee.Handler) http.HandlerFunc { return h.FireEmployee },
			"fire_date", `{"fire_date":"March 1"}`),
	)

	It("should fire and cancel the fire", func() {
		w := post(handler.HireEmployee, 0, `{"fio":"Ivanov","department_id":1,"position_id":1,"start_date":"2025-01-10"}`)
		var hired employee.TransitionResponse
		Expect(json.NewDecoder(w.Body).Decode(&hired)).To(Succeed())

		w = post(handler.FireEmployee, hired.EmployeeID, `{"fire_date":"2025-03-01"}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = post(handler.CancelLastOperation, hired.EmployeeID, ``)
		Expect(w.Code).To(Equal(http.StatusOK))
		var seg employee.SegmentResponse
		Expect(json.NewDecoder(w.Body).Decode(&seg)).To(Succeed())
		Expect(seg.ID).To(Equal(hired.SegmentID))
		Expect(seg.EndDate).To(BeNil())
	})

	It("should answer 404 for an unknown employee", func() {
		req := withID(httptest.NewRequest(http.MethodGet, "/", nil), 77)
		w := httptest.NewRecorder()
		handler.GetEmployee(w, req)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should validate the show_fired flag", func() {
		w := httptest.NewRecorder()
		handler.ListEmployees(w, httptest.NewRequest(http.MethodGet, "/employees?show_fired=maybe", nil))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
