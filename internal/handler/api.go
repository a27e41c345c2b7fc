package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/angeloszaimis/interactive-app/internal/metrics"
)

// isoLayout matches JavaScript's Date.toISOString: UTC, millisecond precision.
const isoLayout = "2006-01-02T15:04:05.000Z"

type APIHandler struct {
	logger           *slog.Logger
	clock            clockwork.Clock
	environment      string
	metricsCollector *metrics.Collector
}

func NewAPIHandler(logger *slog.Logger, clock clockwork.Clock, environment string, collector *metrics.Collector) *APIHandler {
	return &APIHandler{
		logger:           logger,
		clock:            clock,
		environment:      environment,
		metricsCollector: collector,
	}
}

func (h *APIHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, InfoResponse{
		Version:     Version,
		Environment: h.environment,
		Endpoints:   append([]string(nil), Endpoints...),
	})
}

func (h *APIHandler) Submit(c echo.Context) error {
	req, err := bindSubmission(c)
	if err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		h.logger.DebugContext(c.Request().Context(), "Rejected submission", slog.String("error", err.Error()))
		h.recordSubmission(false)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrMessageRequired})
	}

	h.recordSubmission(true)
	return c.JSON(http.StatusOK, Process(req.Message, h.clock.Now()))
}

func (h *APIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    StatusHealthy,
		Timestamp: formatTimestamp(h.clock.Now()),
	})
}

// bindSubmission decodes JSON and url-encoded bodies only. Any other content
// type, multipart included, parses to an empty request. The query string is
// never consulted.
func bindSubmission(c echo.Context) (SubmissionRequest, error) {
	var req SubmissionRequest
	r := c.Request()
	ctype := r.Header.Get(echo.HeaderContentType)

	switch {
	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
			return SubmissionRequest{}, err
		}
	case strings.HasPrefix(ctype, echo.MIMEApplicationForm):
		if err := r.ParseForm(); err != nil {
			return SubmissionRequest{}, echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
		}
		req.Message = r.PostForm.Get("message")
	}

	return req, nil
}

// Validate checks that a message is present. Whitespace is not trimmed.
func (r SubmissionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required),
	)
}

// Process builds the response for an accepted submission at time now.
func Process(message string, now time.Time) SubmissionResponse {
	return SubmissionResponse{
		Status:          StatusSuccess,
		ReceivedMessage: message,
		ProcessedAt:     formatTimestamp(now),
		Response:        responsePrefix + message,
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func (h *APIHandler) recordSubmission(accepted bool) {
	h.metricsCollector.Emit(metrics.MetricEvent{
		Type:      metrics.EventSubmissionProcessed,
		Timestamp: h.clock.Now(),
		Accepted:  accepted,
	})
}
