// Package api implements the HTTP client for the incident service. All
// persistence and business rules live on the server; this client only
// moves JSON and carries the session cookie on every call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/devbyilmir/incidents-manager/internal/incident"
)

// SessionCookie is the cookie the service issues on login and expects on
// every credentialed call.
const SessionCookie = "incident_access_token"

// Error is a non-2xx response from the service, carrying the JSON
// `detail` message when the server provided one.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// Client talks to the incident service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
	logger     *log.Logger
}

// NewClient creates a service client. The session may be nil for
// unauthenticated probing; requests then go out without a cookie.
func NewClient(baseURL string, session *Session, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		session: session,
		logger:  logger,
	}
}

// do sends a request with the session cookie attached and returns the
// response. Non-2xx responses are converted into *Error with the server's
// detail message when the body carries one.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

// decodeError extracts {"detail": "..."} from an error response body.
func decodeError(resp *http.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Detail = body.Detail
	}
	return apiErr
}

// List fetches the full incident collection.
func (c *Client) List(ctx context.Context) ([]incident.Incident, error) {
	resp, err := c.do(ctx, http.MethodGet, "/incidents/", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var incidents []incident.Incident
	if err := json.NewDecoder(resp.Body).Decode(&incidents); err != nil {
		return nil, fmt.Errorf("decode incident list: %w", err)
	}
	return incidents, nil
}

// Create posts a new incident and returns the created record.
func (c *Client) Create(ctx context.Context, draft incident.Draft) (*incident.Incident, error) {
	resp, err := c.do(ctx, http.MethodPost, "/incidents/", draft)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var created incident.Incident
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode created incident: %w", err)
	}
	return &created, nil
}

// UpdateFields sends a partial update of the editable fields.
func (c *Client) UpdateFields(ctx context.Context, id int, draft incident.Draft) (*incident.Incident, error) {
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/incidents/%d", id), draft)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var updated incident.Incident
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, fmt.Errorf("decode updated incident: %w", err)
	}
	return &updated, nil
}

// UpdateStatus flips a record's status. The new status travels as a query
// parameter, not a body; this mirrors the service contract.
func (c *Client) UpdateStatus(ctx context.Context, id int, status incident.Status) error {
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/incidents/%d?status=%s", id, status), nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, id int) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/incidents/%d", id), nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
