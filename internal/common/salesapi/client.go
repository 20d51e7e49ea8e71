// Package salesapi talks to the sales backend that owns projects, leads, KYC approvals
// and bookings.
package salesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	commonhttp "booking-workers/internal/common/http"
	"booking-workers/internal/models"
)

// ErrNoLeadRelation is returned when the caller may not see the lead (403) or it does not exist (404).
var ErrNoLeadRelation = errors.New("no relation to lead")

// APIError is a non-2xx response. Body holds the raw response for error aggregation.
type APIError struct {
	Operation  string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Operation, e.StatusCode, truncate(string(e.Body), 200))
}

// Temporary reports whether retrying the call may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type Client struct {
	baseURL    string
	httpClient *commonhttp.Client
}

func NewClient(baseURL, apiToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: commonhttp.NewClient(timeout).
			WithBearerToken(apiToken).
			WithHeader("Accept", "application/json"),
	}
}

// envelope is how every successful response is wrapped.
type envelope[T any] struct {
	Data T `json:"data"`
}

// ==========================
// Inventory
// ==========================

// GetProject returns project metadata, the tower/floor/unit tree and plan templates.
func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	if err := c.getJSON(ctx, "get project", "/projects/"+url.PathEscape(projectID), &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ==========================
// Leads
// ==========================

func (c *Client) GetLead(ctx context.Context, leadID string) (*models.Lead, error) {
	var lead models.Lead
	err := c.getJSON(ctx, "get lead", "/leads/"+url.PathEscape(leadID), &lead)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusForbidden || apiErr.StatusCode == http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoLeadRelation, leadID)
		}
		return nil, err
	}
	return &lead, nil
}

func (c *Client) GetCostTemplate(ctx context.Context, leadID string) (*models.CostTemplate, error) {
	var tmpl models.CostTemplate
	if err := c.getJSON(ctx, "get cost template", "/leads/"+url.PathEscape(leadID)+"/cost-template", &tmpl); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (c *Client) GetOffers(ctx context.Context, leadID string) ([]models.Offer, error) {
	var offers []models.Offer
	if err := c.getJSON(ctx, "get offers", "/leads/"+url.PathEscape(leadID)+"/offers", &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// ==========================
// KYC
// ==========================

func (c *Client) CreateKYCRequest(ctx context.Context, req models.KYCRequest) (*models.KYCRecord, error) {
	var record models.KYCRecord
	if err := c.sendJSON(ctx, "create kyc request", http.MethodPost, "/kyc/requests", req, &record); err != nil {
		return nil, err
	}
	if record.ID == "" {
		return nil, fmt.Errorf("create kyc request: no id in response")
	}
	return &record, nil
}

func (c *Client) GetKYCStatus(ctx context.Context, requestID string) (*models.KYCRecord, error) {
	var record models.KYCRecord
	if err := c.getJSON(ctx, "get kyc status", "/kyc/requests/"+url.PathEscape(requestID), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// LinkKYC associates an approved KYC request with a created booking.
func (c *Client) LinkKYC(ctx context.Context, requestID, bookingID string) error {
	body := map[string]string{"bookingId": bookingID}
	return c.sendJSON(ctx, "link kyc request", http.MethodPost, "/kyc/requests/"+url.PathEscape(requestID)+"/link", body, nil)
}

// ==========================
// Bookings
// ==========================

// SubmitBooking posts an encoded multipart booking and returns the created booking id.
// A rejection is returned as *APIError carrying the backend's field errors.
func (c *Client) SubmitBooking(ctx context.Context, contentType string, body io.Reader, idempotencyKey string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings", body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(req, "submit booking", &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("submit booking: no booking id in response")
	}
	return created.ID, nil
}

// ==========================
// Transport
// ==========================

func (c *Client) getJSON(ctx context.Context, op, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, op, out)
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, in, out interface{}) error {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal %s body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Operation: op, StatusCode: resp.StatusCode, Body: body}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	env := envelope[json.RawMessage]{}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%s: no data in response", op)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", op, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
