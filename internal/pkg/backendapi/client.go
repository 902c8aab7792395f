// Package backendapi reads employees, attendance and leave from the legacy REST backend.
package backendapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/leave"
	"github.com/google/uuid"
)

const DefaultTimeout = 15 * time.Second

// maxBodySize caps a single response; the legacy backend returns whole collections.
const maxBodySize = 32 << 20

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend API error [%d] %s: %s", e.StatusCode, e.Path, e.Body)
}

// Client implements employee.Reader, attendance.Reader and leave.Reader over HTTP.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialProvider
	timeout     time.Duration
}

func NewClient(baseURL string, credentials CredentialProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		credentials: credentials,
		timeout:     timeout,
	}
}

var (
	_ employee.Reader   = (*Client)(nil)
	_ attendance.Reader = (*Client)(nil)
	_ leave.Reader      = (*Client)(nil)
)

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.credentials != nil {
		auth, err := c.credentials.Authorization(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request %s failed: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Path: path, Body: snippet}
	}
	return body, nil
}

func rangeQuery(from, to time.Time) url.Values {
	q := url.Values{}
	q.Set("date_from", from.Format("2006-01-02"))
	q.Set("date_to", to.Format("2006-01-02"))
	return q
}

// GetByID implements employee.Reader.
func (c *Client) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	body, err := c.get(ctx, "/employees/"+url.PathEscape(id), nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	remote, err := decodeOne[remoteEmployee](body)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to decode employee: %w", err)
	}
	return remote.toEntity(), nil
}

// ListActive implements employee.Reader.
func (c *Client) ListActive(ctx context.Context) ([]employee.Employee, error) {
	body, err := c.get(ctx, "/employees", url.Values{"status": {string(employee.StatusActive)}})
	if err != nil {
		return nil, err
	}
	remote, err := decodeList[remoteEmployee](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}

	out := make([]employee.Employee, 0, len(remote))
	for _, r := range remote {
		e := r.toEntity()
		if e.ID == "" {
			slog.Warn("Skipping backend employee without id", "employee_code", e.EmployeeCode)
			continue
		}
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListByDateRange implements attendance.Reader.
func (c *Client) ListByDateRange(ctx context.Context, from, to time.Time) ([]attendance.Attendance, error) {
	body, err := c.get(ctx, "/attendance", rangeQuery(from, to))
	if err != nil {
		return nil, err
	}
	remote, err := decodeList[remoteAttendance](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attendance: %w", err)
	}

	out := make([]attendance.Attendance, 0, len(remote))
	for _, r := range remote {
		out = append(out, r.toEntity())
	}
	return out, nil
}

// ListApproved implements leave.Reader.
func (c *Client) ListApproved(ctx context.Context, from, to time.Time) ([]leave.LeaveRequest, error) {
	q := rangeQuery(from, to)
	q.Set("status", string(leave.StatusApproved))

	body, err := c.get(ctx, "/leave-requests", q)
	if err != nil {
		return nil, err
	}
	remote, err := decodeList[remoteLeave](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode leave requests: %w", err)
	}

	out := make([]leave.LeaveRequest, 0, len(remote))
	for _, r := range remote {
		l := r.toEntity()
		if l.IsApproved() {
			out = append(out, l)
		}
	}
	return out, nil
}
