package transport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
	"github.com/frahmantamala/missiontime/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger   *slog.Logger
	validate *validator.Validate
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg, validate: newValidator()}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := dateutil.Parse(s)
		return err == nil
	})
	return v
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteAppError maps an error to its HTTP status. Errors that are not AppErrors become 500.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.NewInternalError("unexpected error", err)
	}
	if appErr.StatusCode >= http.StatusInternalServerError {
		h.Logger.Error("request failed", "error", err)
	} else {
		h.Logger.Warn("request rejected", "type", appErr.Type, "code", appErr.Code, "message", appErr.GetDetailedMessage())
	}
	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// DecodeJSON decodes the request body into dst and runs struct validation on it.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return internal.NewValidationError(fmt.Sprintf("invalid request body: %v", err), internal.ErrCodeValidationFailed)
	}
	return h.Validate(dst)
}

// Validate runs struct validation and converts failures into a validation AppError.
func (h *BaseHandler) Validate(dst interface{}) error {
	if h.validate == nil {
		h.validate = newValidator()
	}
	err := h.validate.Struct(dst)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	details := internal.ValidationErrors{Errors: make([]internal.ValidationError, 0, len(verrs))}
	for _, fe := range verrs {
		details.Errors = append(details.Errors, internal.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()),
			Code:    string(internal.ErrCodeValidationFailed),
		})
	}
	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(details)
}

// PathID reads a positive integer URL parameter.
func (h *BaseHandler) PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, fmt.Sprintf("%s must be a positive integer", name), internal.ErrCodeInvalidID)
	}
	return id, nil
}

// QueryInt reads an integer query parameter, returning def when it is absent.
func (h *BaseHandler) QueryInt(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, internal.NewValidationFieldError(name, fmt.Sprintf("%s must be an integer", name), internal.ErrCodeValidationFailed)
	}
	return v, nil
}

// QueryDate reads a required yyyy-MM-dd query parameter.
func (h *BaseHandler) QueryDate(r *http.Request, name string) (time.Time, error) {
	return h.ParseDate(name, r.URL.Query().Get(name))
}

// ParseDate parses a yyyy-MM-dd request field into a validation error naming the field.
func (h *BaseHandler) ParseDate(field, raw string) (time.Time, error) {
	t, err := dateutil.Parse(raw)
	if err != nil {
		return time.Time{}, internal.NewValidationFieldError(field, fmt.Sprintf("%s must be a yyyy-MM-dd date", field), internal.ErrCodeInvalidDate)
	}
	return t, nil
}
