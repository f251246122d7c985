package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/missiontime/internal/transport/middleware"
	"github.com/frahmantamala/missiontime/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Middleware", func() {
	var (
		buf *bytes.Buffer
		lg  *slog.Logger
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		lg = slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})

	Describe("RequestID", func() {
		It("should generate a trace id and expose it to the request logger", func() {
			var fromCtx *slog.Logger
			h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fromCtx = logger.From(r.Context())
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(w.Header().Get(middleware.TraceHeader)).NotTo(BeEmpty())
			Expect(fromCtx).NotTo(BeNil())
		})

		It("should keep a trace id sent by the caller", func() {
			h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(middleware.TraceHeader, "trace-123")

			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			Expect(w.Header().Get(middleware.TraceHeader)).To(Equal("trace-123"))
		})
	})

	Describe("RecoveryMiddleware", func() {
		It("should answer a panic with the internal error envelope", func() {
			h := middleware.RecoveryMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic("boom")
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(ContainSubstring(`"type":"INTERNAL_ERROR"`))
			Expect(buf.String()).To(ContainSubstring("panic recovered"))
		})
	})

	Describe("LoggingMiddleware", func() {
		It("should log status and filter credentials at debug level", func() {
			h := middleware.LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
				_, _ = w.Write([]byte("ok"))
			}))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/timesheets/", strings.NewReader(`{"year":2024}`))
			req.Header.Set("Authorization", "Bearer secret")

			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusTeapot))
			Expect(buf.String()).To(ContainSubstring(`"status_code":418`))
			Expect(buf.String()).To(ContainSubstring("[FILTERED]"))
			Expect(buf.String()).NotTo(ContainSubstring("secret"))
			Expect(buf.String()).To(ContainSubstring(`{\"year\":2024}`))
		})
	})
})
