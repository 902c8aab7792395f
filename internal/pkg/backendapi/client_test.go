package backendapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendsCredentialsAndDecodesEnvelope(t *testing.T) {
	var gotAuth, gotRequestID, gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotStatus = r.URL.Query().Get("status")
		_, _ = w.Write([]byte(`{"data": [
			{"id": 7, "employee_code": "D-07", "full_name": "Salim", "salary": "450.500", "leave_balance": "12"},
			{"id": "8", "full_name": 42, "salary": 300, "status": "Inactive"},
			{"employee_code": "D-09"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", StaticToken("secret-token"), time.Second)
	employees, err := c.ListActive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	_, err = uuid.Parse(gotRequestID)
	assert.NoError(t, err)
	assert.Equal(t, "active", gotStatus)

	require.Len(t, employees, 1)
	e := employees[0]
	assert.Equal(t, "7", e.ID)
	assert.Equal(t, "D-07", e.EmployeeCode)
	assert.Equal(t, "450.5", e.Salary.String())
	require.NotNil(t, e.LeaveBalance)
	assert.Equal(t, 12, *e.LeaveBalance)
}

func TestClient_AttendanceBareList(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/attendance", r.URL.Path)
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`[
			{"id": 1, "employee_id": 17, "date": "2024-01-16T00:00:00Z", "check_in": "07:30", "status": null},
			{"id": 2, "employee_id": "D-01", "date": "garbage", "check_in": "", "status": "Absent"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, time.Second)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	records, err := c.ListByDateRange(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, "date_from=2024-01-01&date_to=2024-01-31", query)
	require.Len(t, records, 2)
	assert.Equal(t, "17", records[0].EmployeeID)
	assert.Equal(t, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.True(t, records[0].IsPresent())
	assert.Nil(t, records[0].Status)

	assert.True(t, records[1].Date.IsZero())
	assert.Nil(t, records[1].CheckIn)
	assert.True(t, records[1].IsAbsent())
}

func TestClient_ListApprovedFiltersStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "approved", r.URL.Query().Get("status"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": 1, "employee_id": "emp-1", "leave_type": "annual", "start_date": "2024-01-20", "end_date": "2024-01-22", "status": "approved"},
				{"id": 2, "employee_id": "emp-1", "leave_type": "sick", "start_date": "2024-01-25", "end_date": "2024-01-25", "status": "pending"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, time.Second)
	leaves, err := c.ListApproved(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, 3, leaves[0].DaysCount)
}

func TestClient_GetByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/employees/emp-1" {
			_, _ = w.Write([]byte(`{"data": {"id": "emp-1", "full_name": "Aisha"}}`))
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, time.Second)
	e, err := c.GetByID(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Aisha", e.FullName)

	_, err = c.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestClient_ErrorsAndTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/employees":
			http.Error(w, "boom", http.StatusBadGateway)
		default:
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, 50*time.Millisecond)

	_, err := c.ListActive(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)

	start := time.Now()
	_, err = c.ListByDateRange(context.Background(), time.Now(), time.Now())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	_, err = NewClient(srv.URL, StaticToken(" "), time.Second).ListActive(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestClientCredentials(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "issued-token", "token_type": "bearer", "expires_in": 3600}`))
	}))
	defer tokenSrv.Close()

	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer api.Close()

	creds := ClientCredentials(context.Background(), "dairy-hr", "s3cret", tokenSrv.URL)
	c := NewClient(api.URL, creds, time.Second)

	employees, err := c.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, employees)
	assert.Equal(t, "Bearer issued-token", gotAuth)
}

func TestFlexString(t *testing.T) {
	var v struct {
		A flexString `json:"a"`
		B flexString `json:"b"`
		C flexString `json:"c"`
		D flexString `json:"d"`
		E flexString `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": " x ", "b": 12.50, "c": null, "d": true, "e": {"k": 1}}`), &v))
	assert.Equal(t, flexString("x"), v.A)
	assert.Equal(t, flexString("12.50"), v.B)
	assert.Equal(t, flexString(""), v.C)
	assert.Equal(t, flexString(""), v.D)
	assert.Equal(t, flexString(""), v.E)
}
