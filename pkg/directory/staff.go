package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StaffClient implements StaffDirectory against the staff service's REST API.
type StaffClient struct {
	base   *url.URL
	apiKey string
	http   *http.Client
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewStaffClient builds a client for the staff directory.
func NewStaffClient(cfg Config) (*StaffClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("staff directory base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid staff directory base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &StaffClient{
		base:   base,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: timeout},
		tracer: otel.Tracer("github.com/twistedwarden/esmv2-sub001/pkg/directory/staff"),
		logger: cfg.Logger.With().Str("component", "staff_directory").Logger(),
	}, nil
}

// ListInterviewers fetches the interviewers eligible for assignment.
func (c *StaffClient) ListInterviewers(parent context.Context) ([]Interviewer, error) {
	ctx, span := c.tracer.Start(parent, "directory.staff.list_interviewers")
	defer span.End()

	endpoint := strings.TrimRight(c.base.String(), "/") + "/interviewers"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build staff request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	directoryDuration.WithLabelValues("staff", "list_interviewers").Observe(time.Since(start).Seconds())
	if err != nil {
		kind := "failure"
		mapped := fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
		if isTimeout(err) {
			kind = "timeout"
			mapped = fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		directoryFailures.WithLabelValues("staff", "list_interviewers", kind).Inc()
		span.RecordError(mapped)
		span.SetStatus(codes.Error, mapped.Error())
		return nil, mapped
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		directoryFailures.WithLabelValues("staff", "list_interviewers", "status").Inc()
		err := fmt.Errorf("%w: unexpected status %d", ErrUpstreamFailure, resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var interviewers []Interviewer
	if err := json.NewDecoder(resp.Body).Decode(&interviewers); err != nil {
		directoryFailures.WithLabelValues("staff", "list_interviewers", "decode").Inc()
		mapped := fmt.Errorf("%w: decode payload: %v", ErrUpstreamFailure, err)
		span.RecordError(mapped)
		span.SetStatus(codes.Error, mapped.Error())
		return nil, mapped
	}

	return interviewers, nil
}
