package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicpulse/clinicpulse/internal/models"
	"github.com/clinicpulse/clinicpulse/internal/notify"
	"github.com/clinicpulse/clinicpulse/internal/realtime"
)

var (
	assetColumns = []string{"id", "name", "type", "status", "priority", "url", "metrics", "last_updated"}
	taskColumns  = []string{"id", "title", "description", "type", "status", "priority", "due_date", "completed", "ai_generated"}
)

type eventRecorder struct {
	mu     sync.Mutex
	events []realtime.UpdateEvent
}

func (r *eventRecorder) record(ev realtime.UpdateEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) snapshot() []realtime.UpdateEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]realtime.UpdateEvent(nil), r.events...)
}

func newTestAPI(t *testing.T) (*API, *fiber.App, *eventRecorder) {
	t.Helper()

	bus := realtime.NewBus(realtime.WithInterval(time.Hour))
	t.Cleanup(bus.Close)

	sink := notify.NewSink()
	t.Cleanup(bus.Subscribe(sink.OnEvent))

	rec := &eventRecorder{}
	t.Cleanup(bus.Subscribe(rec.record))

	api := NewAPI(bus, sink, nil, "Harbor Dental", "v1.2.3")
	app := fiber.New()
	api.Register(app)
	return api, app, rec
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func sampleAssetRows() mockResponse {
	updated := time.Date(2025, time.May, 4, 9, 0, 0, 0, time.UTC)
	return mockResponse{
		match:   "FROM digital_assets",
		columns: assetColumns,
		rows: [][]interface{}{
			{"gmb-1", "Main Street Profile", "gmb", "warning", "high", nil, []byte(`{"views":1200}`), updated},
			{"web-1", "Clinic Website", "website", "active", "medium", "https://clinic.example", []byte(`{}`), updated},
			{"yelp-1", "Yelp Listing", "review_platform", "active", "low", nil, []byte(`{}`), updated.AddDate(0, 0, -10)},
		},
	}
}

func sampleTaskRows() mockResponse {
	due := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	return mockResponse{
		match:   "FROM tasks ORDER BY due_date",
		columns: taskColumns,
		rows: [][]interface{}{
			{"t1", "Reply to new reviews", "Three reviews waiting", "engagement", "pending", "high", due, false, true},
			{"t2", "Update opening hours", "Holiday schedule", "optimization", "completed", "medium", due.AddDate(0, 0, 3), true, false},
			{"t3", "Audit directory listings", "", "monitoring", "pending", "low", nil, false, false},
		},
	}
}

func TestHandleAssetsFiltersAndPaginates(t *testing.T) {
	_, app, _ := newTestAPI(t)
	queue := useMockDB(t, []mockResponse{sampleAssetRows()})

	resp, body := doJSON(t, app, http.MethodGet, "/api/assets?status=active&sort_by=name", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data       []models.Asset `json:"data"`
		Pagination PaginationMeta `json:"pagination"`
		Filters    int            `json:"active_filters"`
	}
	require.NoError(t, json.Unmarshal(body, &out))

	require.Len(t, out.Data, 2)
	assert.Equal(t, "Clinic Website", out.Data[0].Name)
	assert.Equal(t, "Yelp Listing", out.Data[1].Name)
	assert.Equal(t, int64(2), out.Pagination.Total)
	assert.Equal(t, 1, out.Filters)

	require.NoError(t, queue.expectationsMet())
}

func TestHandleAssetsSearchIsCaseInsensitive(t *testing.T) {
	_, app, _ := newTestAPI(t)
	useMockDB(t, []mockResponse{sampleAssetRows()})

	resp, body := doJSON(t, app, http.MethodGet, "/api/assets?search=MAIN", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data []models.Asset `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "gmb-1", out.Data[0].ID)
}

func TestHandleAssetsQueryError(t *testing.T) {
	_, app, _ := newTestAPI(t)
	useMockDB(t, []mockResponse{{match: "FROM digital_assets", err: assert.AnError}})

	resp, body := doJSON(t, app, http.MethodGet, "/api/assets", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "Failed to query assets")
}

func TestHandleTasksCompletedFilter(t *testing.T) {
	_, app, _ := newTestAPI(t)
	useMockDB(t, []mockResponse{sampleTaskRows()})

	resp, body := doJSON(t, app, http.MethodGet, "/api/tasks?completed=false&sort_by=priority", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data []models.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Data, 2)
	assert.Equal(t, "t1", out.Data[0].ID)
	assert.Equal(t, "t3", out.Data[1].ID)
}

func TestHandleTasksDateRangeExcludesUndated(t *testing.T) {
	_, app, _ := newTestAPI(t)
	useMockDB(t, []mockResponse{sampleTaskRows()})

	resp, body := doJSON(t, app, http.MethodGet, "/api/tasks?from=2025-06-01&to=2025-06-01", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data []models.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "t1", out.Data[0].ID)
}

func TestHandleCreateTask(t *testing.T) {
	_, app, _ := newTestAPI(t)
	queue := useMockDB(t, []mockResponse{{
		match:   "INSERT INTO tasks",
		columns: taskColumns,
		rows: [][]interface{}{
			{"new-id", "Post weekly update", "", "content_creation", "pending", "medium", nil, false, false},
		},
	}})

	resp, body := doJSON(t, app, http.MethodPost, "/api/tasks", `{"title":"Post weekly update","type":"content_creation"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var task models.Task
	require.NoError(t, json.Unmarshal(body, &task))
	assert.Equal(t, "new-id", task.ID)
	require.NoError(t, queue.expectationsMet())
}

func TestHandleCreateTaskValidation(t *testing.T) {
	_, app, _ := newTestAPI(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"type":"analysis"}`, "title is required"},
		{"bad type", `{"title":"x","type":"gardening"}`, "type must be one of"},
		{"bad priority", `{"title":"x","type":"analysis","priority":"urgent"}`, "priority must be one of"},
		{"bad due date", `{"title":"x","type":"analysis","due_date":"next week"}`, "due_date must be"},
		{"not json", `title=x`, "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, http.MethodPost, "/api/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, string(body), tt.want)
		})
	}
}

func TestHandleCompleteTaskPublishesEvent(t *testing.T) {
	api, app, rec := newTestAPI(t)
	useMockDB(t, []mockResponse{{
		match:   "UPDATE tasks SET completed = TRUE",
		args:    []interface{}{"t1"},
		columns: taskColumns,
		rows: [][]interface{}{
			{"t1", "Reply to new reviews", "", "engagement", "completed", "high", nil, true, false},
		},
	}})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/tasks/t1/complete", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := rec.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.KindTask, events[0].Kind)
	assert.Equal(t, true, events[0].Payload["completed"])

	notifications := api.Sink.List()
	require.Len(t, notifications, 1)
	assert.Equal(t, "Task Completed", notifications[0].Title)
	assert.Equal(t, notify.SeveritySuccess, notifications[0].Severity)
}

func TestHandleCompleteTaskWithRelayLeavesNotifyToTrigger(t *testing.T) {
	api, app, rec := newTestAPI(t)
	api.RelayNotifications = true
	useMockDB(t, []mockResponse{{
		match:   "UPDATE tasks SET completed = TRUE",
		columns: taskColumns,
		rows: [][]interface{}{
			{"t1", "Reply to new reviews", "", "engagement", "completed", "high", nil, true, false},
		},
	}})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/tasks/t1/complete", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, rec.snapshot())
}

func TestHandleCompleteTaskAlreadyCompletedAnnouncesNothing(t *testing.T) {
	api, app, rec := newTestAPI(t)
	useMockDB(t, []mockResponse{
		{match: "WHERE id = $1 AND NOT completed", args: []interface{}{"t1"}, columns: taskColumns},
		{
			match:   "FROM tasks WHERE id = $1",
			args:    []interface{}{"t1"},
			columns: taskColumns,
			rows: [][]interface{}{
				{"t1", "Reply to new reviews", "", "engagement", "completed", "high", nil, true, false},
			},
		},
	})

	resp, body := doJSON(t, app, http.MethodPost, "/api/tasks/t1/complete", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"completed":true`)
	assert.Empty(t, rec.snapshot())
	assert.Empty(t, api.Sink.List())
}

func TestHandleCompleteTaskNotFound(t *testing.T) {
	_, app, rec := newTestAPI(t)
	useMockDB(t, []mockResponse{
		{match: "UPDATE tasks SET completed = TRUE", columns: taskColumns},
		{match: "FROM tasks WHERE id = $1", columns: taskColumns},
	})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/tasks/missing/complete", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, rec.snapshot())
}

func TestHandleEcosystemCollapsedAndToggle(t *testing.T) {
	_, app, _ := newTestAPI(t)
	useMockDB(t, []mockResponse{sampleAssetRows(), sampleAssetRows()})

	resp, body := doJSON(t, app, http.MethodGet, "/api/ecosystem", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var full EcosystemResponse
	require.NoError(t, json.Unmarshal(body, &full))
	// hub + six categories + three leaves
	assert.Len(t, full.Nodes, 10)
	assert.Equal(t, "Harbor Dental", full.Nodes[0].Label)
	assert.Equal(t, 500.0, full.Nodes[0].Position.X)
	assert.Equal(t, 400.0, full.Nodes[0].Position.Y)

	resp, body = doJSON(t, app, http.MethodGet, "/api/ecosystem?collapsed=category-0&toggle=category-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var collapsed EcosystemResponse
	require.NoError(t, json.Unmarshal(body, &collapsed))
	assert.Equal(t, []string{"category-0", "category-1"}, collapsed.Collapsed)
	for _, n := range collapsed.Nodes {
		if n.Kind == "leaf" {
			assert.NotEqual(t, "gmb-1", n.ID)
			assert.NotEqual(t, "web-1", n.ID)
		}
	}
}

func TestNotificationRoutes(t *testing.T) {
	api, app, _ := newTestAPI(t)

	first := api.Sink.Add("Asset Alert", "GMB profile needs attention", notify.SeverityWarning)
	api.Sink.Add("Task Completed", "Reviews answered", notify.SeveritySuccess)

	resp, body := doJSON(t, app, http.MethodGet, "/api/notifications", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list NotificationsResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, "Task Completed", list.Notifications[0].Title)
	assert.Equal(t, 2, list.Unread)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/notifications/"+first.ID+"/read", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, api.Sink.UnreadCount())

	resp, _ = doJSON(t, app, http.MethodPost, "/api/notifications/unknown/read", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/notifications/read-all", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, api.Sink.UnreadCount())

	for range 2 {
		resp, _ = doJSON(t, app, http.MethodDelete, "/api/notifications/"+first.ID, "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
	assert.Equal(t, 1, api.Sink.Len())
}

func TestHandleTriggerDeliversToSubscribers(t *testing.T) {
	api, app, rec := newTestAPI(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/realtime/trigger", `{"type":"asset","data":{"id":"gmb-1","status":"warning"}}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	events := rec.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.KindAsset, events[0].Kind)
	assert.Equal(t, realtime.ActionUpdate, events[0].Action)

	notifications := api.Sink.List()
	require.Len(t, notifications, 1)
	assert.Equal(t, "Asset Alert", notifications[0].Title)
}

func TestHandleTriggerUsesRelayWhenEnabled(t *testing.T) {
	api, app, rec := newTestAPI(t)
	api.RelayNotifications = true

	var relayed []realtime.UpdateEvent
	api.notifyEvent = func(_ context.Context, ev realtime.UpdateEvent) {
		relayed = append(relayed, ev)
	}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/realtime/trigger", `{"type":"metric","data":{"metricKind":"data_quality","value":91}}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Len(t, relayed, 1)
	assert.Equal(t, realtime.KindMetric, relayed[0].Kind)
	assert.Empty(t, rec.snapshot(), "relayed events reach the bus through the listener")
}

func TestHandleTriggerValidation(t *testing.T) {
	_, app, rec := newTestAPI(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/realtime/trigger", `{"type":"weather"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/realtime/trigger", `{"type":"task","action":"archive"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, rec.snapshot())
}

func TestHandleRealtimeStatus(t *testing.T) {
	_, app, _ := newTestAPI(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/realtime/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status RealtimeStatus
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, realtime.StateRunning, status.State)
	assert.Equal(t, 2, status.Subscribers)
	assert.False(t, status.Relay)
}

func TestHealthUpAndVersion(t *testing.T) {
	_, app, _ := newTestAPI(t)
	useMockDB(t, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"service":"clinicpulse"`)

	resp, _ = doJSON(t, app, http.MethodGet, "/up", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"version":"v1.2.3"}`, string(body))
}
