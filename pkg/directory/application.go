package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	directoryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "esm",
		Subsystem: "directory",
		Name:      "request_duration_seconds",
		Help:      "Duration of external directory requests",
	}, []string{"directory", "operation"})

	directoryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "esm",
		Subsystem: "directory",
		Name:      "request_failures_total",
		Help:      "Number of failed external directory requests",
	}, []string{"directory", "operation", "kind"})
)

// Config defines connection options shared by the directory clients.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// ApplicationClient implements ApplicationDirectory against the scholarship
// system's REST API.
type ApplicationClient struct {
	base   *url.URL
	apiKey string
	http   *http.Client
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewApplicationClient builds a client for the application directory.
func NewApplicationClient(cfg Config) (*ApplicationClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("application directory base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid application directory base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ApplicationClient{
		base:   base,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: timeout},
		tracer: otel.Tracer("github.com/twistedwarden/esmv2-sub001/pkg/directory/application"),
		logger: cfg.Logger.With().Str("component", "application_directory").Logger(),
	}, nil
}

// ListApplications fetches applications filtered by directory status.
func (c *ApplicationClient) ListApplications(parent context.Context, status string) ([]Application, error) {
	ctx, span := c.tracer.Start(parent, "directory.applications.list", trace.WithAttributes(
		attribute.String("status", status),
	))
	defer span.End()

	endpoint := c.endpoint("/applications")
	if status != "" {
		endpoint += "?status=" + url.QueryEscape(status)
	}

	var applications []Application
	if err := c.do(ctx, span, "list", http.MethodGet, endpoint, nil, &applications); err != nil {
		return nil, err
	}

	return applications, nil
}

// GetApplication fetches a single application by id.
func (c *ApplicationClient) GetApplication(parent context.Context, id uint) (Application, error) {
	ctx, span := c.tracer.Start(parent, "directory.applications.get", trace.WithAttributes(
		attribute.Int("application_id", int(id)),
	))
	defer span.End()

	var application Application
	if err := c.do(ctx, span, "get", http.MethodGet, c.endpoint(fmt.Sprintf("/applications/%d", id)), nil, &application); err != nil {
		return Application{}, err
	}

	if application.ID == 0 {
		err := fmt.Errorf("%w: application payload missing id", ErrUpstreamFailure)
		span.RecordError(err)
		return Application{}, err
	}

	return application, nil
}

// UpdateApplicationStatus advances the directory's status for an application.
func (c *ApplicationClient) UpdateApplicationStatus(parent context.Context, id uint, status string) error {
	ctx, span := c.tracer.Start(parent, "directory.applications.update_status", trace.WithAttributes(
		attribute.Int("application_id", int(id)),
		attribute.String("status", status),
	))
	defer span.End()

	payload := map[string]string{"status": status}
	return c.do(ctx, span, "update_status", http.MethodPatch, c.endpoint(fmt.Sprintf("/applications/%d/status", id)), payload, nil)
}

func (c *ApplicationClient) endpoint(path string) string {
	return strings.TrimRight(c.base.String(), "/") + path
}

func (c *ApplicationClient) do(ctx context.Context, span trace.Span, operation, method, endpoint string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode directory request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	directoryDuration.WithLabelValues("application", operation).Observe(time.Since(start).Seconds())
	if err != nil {
		kind := "failure"
		mapped := fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
		if isTimeout(err) {
			kind = "timeout"
			mapped = fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		directoryFailures.WithLabelValues("application", operation, kind).Inc()
		span.RecordError(mapped)
		span.SetStatus(codes.Error, mapped.Error())
		return mapped
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		directoryFailures.WithLabelValues("application", operation, "not_found").Inc()
		return ErrApplicationNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		directoryFailures.WithLabelValues("application", operation, "status").Inc()
		err := fmt.Errorf("%w: unexpected status %d", ErrUpstreamFailure, resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		directoryFailures.WithLabelValues("application", operation, "decode").Inc()
		mapped := fmt.Errorf("%w: decode payload: %v", ErrUpstreamFailure, err)
		span.RecordError(mapped)
		span.SetStatus(codes.Error, mapped.Error())
		return mapped
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	return false
}
