package status

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosmatov/palbot/sched"
)

type fakeJobs struct{ statuses []sched.JobStatus }

func (f fakeJobs) Statuses() []sched.JobStatus { return f.statuses }

type fakeReg struct{ installed bool }

func (f fakeReg) Installed() bool { return f.installed }

func Test_healthz(t *testing.T) {
	s := New(":0", fakeJobs{}, fakeReg{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func Test_jobs_listing(t *testing.T) {
	next := time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC)
	s := New(":0", fakeJobs{statuses: []sched.JobStatus{
		{Name: "evening_summary", NextRun: next},
	}}, fakeReg{installed: true})

	req := httptest.NewRequest("GET", "/jobs", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var body jobsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Installed)
	require.Len(t, body.Jobs, 1)
	assert.Equal(t, "evening_summary", body.Jobs[0].Name)
	assert.True(t, body.Jobs[0].NextRun.Equal(next))
}

func Test_metric_endpoint(t *testing.T) {
	s := New(":0", fakeJobs{}, fakeReg{})

	req := httptest.NewRequest("GET", "/metric", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
}
