package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/vouch/internal/app"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/pkg/config"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

const testUser = "user-1"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		AppEnv:                "development",
		SQLitePath:            filepath.Join(t.TempDir(), "vouch.db"),
		Timezone:              "UTC",
		MaxOverdueCommitments: 3,
		DeadlineAITimeout:     time.Second,
		TrustReportCacheTTL:   time.Minute,
		OutboxBatchSize:       10,
	}
	require.NoError(t, cfg.Validate())

	c, err := app.NewContainer(context.Background(), cfg, observability.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	srv := NewServer(DefaultServerConfig(), HandlersFromContainer(c), c.Health, observability.DiscardLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func asUser() map[string]string {
	return map[string]string{userHeader: testUser}
}

func decodeError(t *testing.T, data []byte) apiErrorBody {
	t.Helper()
	var env struct {
		Error apiErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &env), string(data))
	return env.Error
}

func createCommitment(t *testing.T, ts *httptest.Server, who string) CommitmentResponse {
	t.Helper()
	resp, data := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/commitments",
		map[string]string{"who": who, "what": "send the deck", "when": "tomorrow at 3pm"}, asUser())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var out CommitmentResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, data := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/healthz", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"status":"ok"`)
}

func TestCreateAndGetCommitment(t *testing.T) {
	ts := newTestServer(t)

	created := createCommitment(t, ts, "Alice")
	assert.Equal(t, "Alice", created.Who)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "rules", created.DeadlineStage)
	assert.Equal(t, 15, created.Deadline.Hour())

	resp, data := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/commitments/"+created.ID.String(), nil, asUser())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var got queries.CommitmentDTO
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, created.ID, got.ID)

	resp, _ = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/commitments/"+created.ID.String(), nil,
		map[string]string{userHeader: "someone-else"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateCommitment_Errors(t *testing.T) {
	ts := newTestServer(t)

	resp, data := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/commitments",
		map[string]string{"who": "Alice", "what": "x", "when": "someday maybe"}, asUser())
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeError(t, data)
	assert.Equal(t, "validation_failed", body.Code)
	assert.Equal(t, `could not understand when "someday maybe"`, body.Message)

	resp, _ = doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/commitments",
		map[string]string{"who": "Alice", "what": "x", "when": "friday"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "owner header is required")
}

func TestUpdateCommitment(t *testing.T) {
	ts := newTestServer(t)
	url := func(c CommitmentResponse) string { return ts.URL + "/v1/commitments/" + c.ID.String() }

	snoozed := createCommitment(t, ts, "Alice")
	resp, data := doJSON(t, ts.Client(), http.MethodPatch, url(snoozed), map[string]any{"snooze": true}, asUser())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var upd UpdateCommitmentResponse
	require.NoError(t, json.Unmarshal(data, &upd))
	assert.Equal(t, 1, upd.Commitment.SnoozeCount)
	assert.True(t, upd.Commitment.Deadline.Equal(snoozed.Deadline.Add(time.Hour)))

	moved := createCommitment(t, ts, "Bob")
	resp, data = doJSON(t, ts.Client(), http.MethodPatch, url(moved), map[string]any{
		"status": "rescheduled", "rescheduled_to": "next week", "rescheduled_reason": "waiting on data",
	}, asUser())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	upd = UpdateCommitmentResponse{}
	require.NoError(t, json.Unmarshal(data, &upd))
	assert.Equal(t, "rescheduled", upd.Commitment.Status)
	require.NotNil(t, upd.Forwarded)
	assert.Equal(t, "pending", upd.Forwarded.Status)

	done := createCommitment(t, ts, "Carol")
	resp, data = doJSON(t, ts.Client(), http.MethodPatch, url(done), map[string]any{"status": "completed"}, asUser())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, data = doJSON(t, ts.Client(), http.MethodPatch, url(done), map[string]any{"status": "completed"}, asUser())
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "illegal_transition", decodeError(t, data).Code)

	resp, _ = doJSON(t, ts.Client(), http.MethodPatch, url(snoozed), map[string]any{"status": "completed", "snooze": true}, asUser())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doJSON(t, ts.Client(), http.MethodPatch, ts.URL+"/v1/commitments/not-a-uuid", map[string]any{"snooze": true}, asUser())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, data = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/commitments?status=pending", nil, asUser())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var pending []queries.CommitmentDTO
	require.NoError(t, json.Unmarshal(data, &pending))
	assert.Len(t, pending, 2, "snoozed original and the forwarded copy")
}

func TestCalendarFeed(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/commitments/calendar.ics", nil, asUser())
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	c := createCommitment(t, ts, "Alice")

	resp, data := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/commitments/calendar.ics", nil, asUser())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/calendar")
	assert.Contains(t, string(data), c.ID.String()+"@vouch")
}

func TestTrustEndpoints(t *testing.T) {
	ts := newTestServer(t)
	c := createCommitment(t, ts, "Alice")

	resp, data := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/trust/events",
		map[string]string{"commitment_id": c.ID.String(), "details": "pinged on slack"}, asUser())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var ev queries.TrustEventDTO
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, "chased", ev.Type)

	resp, _ = doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/trust/events",
		map[string]string{"type": "commitment_kept", "commitment_id": c.ID.String()}, asUser())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "kept is only recorded by completing")

	resp, data = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/trust/report", nil, asUser())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var report queries.TrustReportDTO
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 1, report.Week.Total)
	require.NotNil(t, report.DaysSinceChased)
	assert.Equal(t, 0, *report.DaysSinceChased)
}

func TestResolveDeadline(t *testing.T) {
	ts := newTestServer(t)

	resp, data := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/deadlines/resolve",
		map[string]any{"text": "by cob"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var out queries.ResolvedDeadlineDTO
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "last_resort", out.Stage)

	resp, _ = doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/deadlines/resolve",
		map[string]any{"text": "by cob", "strict": true}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleError(t *testing.T) {
	e := &endpoints{logger: observability.DiscardLogger()}
	ctx := context.Background()

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{commitment.NewValidationError("who is required"), http.StatusUnprocessableEntity, "validation_failed"},
		{&commitment.PolicyBlockedError{Overdue: 3, Limit: 3}, http.StatusConflict, "policy_blocked"},
		{&commitment.NotFoundError{}, http.StatusNotFound, "not_found"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		got := e.handleError(ctx, tt.err)
		assert.Equal(t, tt.status, got.GetStatus())
		assert.Equal(t, tt.code, got.(*apiError).Body.Code)
	}

	internal := e.handleError(ctx, errors.New("disk on fire"))
	assert.NotContains(t, internal.Error(), "disk")
}
