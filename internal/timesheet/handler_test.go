package timesheet_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/missiontime/internal/store"
	"github.com/frahmantamala/missiontime/internal/store/storetest"
	"github.com/frahmantamala/missiontime/internal/timesheet"
	timesheetSQL "github.com/frahmantamala/missiontime/internal/timesheet/sqlstore"
	"github.com/frahmantamala/missiontime/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Timesheet Handler Integration", func() {
	var (
		db      *store.DB
		handler *timesheet.Handler
	)

	BeforeEach(func() {
		var err error
		db, err = storetest.NewMemoryDB()
		Expect(err).NotTo(HaveOccurred())
		seedLedger(db)

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := timesheet.NewService(timesheetSQL.NewTimesheetRepository(db.Gorm), slogger)
		handler = timesheet.NewHandler(transport.NewBaseHandler(slogger), service)
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	It("should open a timesheet idempotently", func() {
		open := func() int64 {
			req := httptest.NewRequest(http.MethodPost, "/timesheets", strings.NewReader(`{"year":2024,"month":2,"department_id":1}`))
			w := httptest.NewRecorder()
			handler.OpenTimesheet(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
			var resp timesheet.HeaderResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			return resp.TimesheetID
		}
		Expect(open()).To(Equal(open()))
	})

	It("should save a cell, count it and delete it", func() {
		body := `{"department_id":1,"work_date":"2024-02-05","segment_id":2,"program_id":1,"work_id":1,"minutes":75}`
		req := httptest.NewRequest(http.MethodPut, "/timesheets/cells", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.SaveCell(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))

		query := "/timesheets/entries?segment_id=2&program_id=1&work_id=1&year=2024&month=2"
		w = httptest.NewRecorder()
		handler.CountEntries(w, httptest.NewRequest(http.MethodGet, query, nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		var count timesheet.CountResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &count)).To(Succeed())
		Expect(count.Count).To(Equal(int64(1)))

		w = httptest.NewRecorder()
		handler.DeleteEntries(w, httptest.NewRequest(http.MethodDelete, query, nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		var deleted timesheet.DeleteResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &deleted)).To(Succeed())
		Expect(deleted.Deleted).To(Equal(int64(1)))
	})

	It("should reject minutes above a day with 400", func() {
		body := `{"department_id":1,"work_date":"2024-02-05","segment_id":2,"program_id":1,"work_id":1,"minutes":1441}`
		w := httptest.NewRecorder()
		handler.SaveCell(w, httptest.NewRequest(http.MethodPut, "/timesheets/cells", strings.NewReader(body)))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should reject a malformed work date with 400", func() {
		body := `{"department_id":1,"work_date":"05.02.2024","segment_id":2,"program_id":1,"work_id":1,"minutes":10}`
		w := httptest.NewRecorder()
		handler.SaveCell(w, httptest.NewRequest(http.MethodPut, "/timesheets/cells", strings.NewReader(body)))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for an unknown segment", func() {
		body := `{"department_id":1,"work_date":"2024-02-05","segment_id":77,"program_id":1,"work_id":1,"minutes":10}`
		w := httptest.NewRecorder()
		handler.SaveCell(w, httptest.NewRequest(http.MethodPut, "/timesheets/cells", strings.NewReader(body)))
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
