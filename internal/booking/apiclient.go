package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/clinic-booking/internal/availability"
)

// APIError is a non-validation error response from the booking API.
type APIError struct {
	Status    int
	Message   string
	Details   string
	Retryable bool
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("booking api: %d %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("booking api: %d %s", e.Status, e.Message)
}

// APIClient is a Backend that calls the booking HTTP API.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// AvailableSlots calls GET /api/availability.
func (c *APIClient) AvailableSlots(ctx context.Context, date string) (availability.Result, error) {
	endpoint := c.baseURL + "/api/availability?date=" + url.QueryEscape(date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return availability.Result{}, fmt.Errorf("booking api: build request: %w", err)
	}
	var result availability.Result
	if err := c.do(req, &result); err != nil {
		return availability.Result{}, err
	}
	return result, nil
}

// Confirm calls POST /api/appointments.
func (c *APIClient) Confirm(ctx context.Context, in Request) (*Confirmation, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("booking api: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/appointments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("booking api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var confirmation Confirmation
	if err := c.do(req, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func (c *APIClient) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("booking api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("booking api: read response: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("booking api: decode response: %w", err)
		}
		return nil
	}

	var payload struct {
		Error     string            `json:"error"`
		Details   string            `json:"details"`
		Fields    map[string]string `json:"fields"`
		Retryable bool              `json:"retryable"`
	}
	_ = json.Unmarshal(raw, &payload)
	if resp.StatusCode == http.StatusBadRequest && len(payload.Fields) > 0 {
		return &ValidationError{Fields: payload.Fields}
	}
	if payload.Error == "" {
		payload.Error = strings.TrimSpace(string(raw))
	}
	return &APIError{
		Status:    resp.StatusCode,
		Message:   payload.Error,
		Details:   payload.Details,
		Retryable: payload.Retryable,
	}
}

var _ Backend = (*APIClient)(nil)
