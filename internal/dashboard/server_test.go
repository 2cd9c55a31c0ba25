package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zulandar/switchboard/internal/dispatch"
	"github.com/zulandar/switchboard/internal/history"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/registry"
	"github.com/zulandar/switchboard/internal/status"
)

func testOpts(t *testing.T) StartOpts {
	t.Helper()

	path := filepath.Join(t.TempDir(), "coords.json")
	content := `{"agents": {
		"Agent-1": {"coordinates": [100, 200]},
		"Agent-2": {"coordinates": [0, 0]}
	}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := registry.Load([]string{path}, "")
	if err != nil {
		t.Fatal(err)
	}

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := gdb.AutoMigrate(&models.DeliveryRecord{}); err != nil {
		t.Fatal(err)
	}
	store := history.NewStore(gdb)

	tracker := status.NewTracker()
	coord, err := dispatch.NewCoordinator(dispatch.Opts{
		Registry:  reg,
		Tracker:   tracker,
		Store:     store,
		InboxRoot: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}

	return StartOpts{
		Registry:    reg,
		Tracker:     tracker,
		Coordinator: coord,
		Store:       store,
	}
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStart_MissingDeps(t *testing.T) {
	err := Start(context.Background(), StartOpts{})
	if err == nil || !strings.Contains(err.Error(), "registry is required") {
		t.Errorf("error = %v, want registry is required", err)
	}

	opts := testOpts(t)
	opts.Coordinator = nil
	err = Start(context.Background(), opts)
	if err == nil || !strings.Contains(err.Error(), "coordinator is required") {
		t.Errorf("error = %v, want coordinator is required", err)
	}
}

func TestAgentsEndpoint(t *testing.T) {
	opts := testOpts(t)
	opts.Tracker.Update("Agent-1", models.AgentActive, 100, 200, "compiling")
	router := newRouter(opts)

	w := get(t, router, "/api/agents")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Source string      `json:"source"`
		Agents []agentView `json:"agents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Source != "flat" {
		t.Errorf("source = %q, want flat", body.Source)
	}
	if len(body.Agents) != 2 {
		t.Fatalf("agents = %d, want 2", len(body.Agents))
	}

	a1 := body.Agents[0]
	if a1.AgentID != "Agent-1" || !a1.Valid || a1.State != "ACTIVE" || a1.CurrentTask != "compiling" {
		t.Errorf("Agent-1 view = %+v", a1)
	}
	a2 := body.Agents[1]
	if a2.Valid || a2.Reason != "default/unconfigured coordinates" || a2.State != "UNKNOWN" {
		t.Errorf("Agent-2 view = %+v", a2)
	}
}

func TestStatsEndpoint(t *testing.T) {
	opts := testOpts(t)
	router := newRouter(opts)

	w := get(t, router, "/api/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var stats dispatch.Metrics
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Total != 0 || stats.QueueDepth != 0 {
		t.Errorf("stats = %+v, want zeroes", stats)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	opts := testOpts(t)
	msg := &models.Message{
		ID: "m1", Sender: "Captain", Recipient: "Agent-1",
		Type: models.TypeText, Priority: models.PriorityNormal,
		Status: models.StatusFailed,
	}
	if err := opts.Store.Record(msg, "gui", errors.New("no focus")); err != nil {
		t.Fatal(err)
	}
	router := newRouter(opts)

	w := get(t, router, "/api/history?failed=true")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Records []models.DeliveryRecord `json:"records"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Records) != 1 || body.Records[0].MessageID != "m1" {
		t.Errorf("records = %+v", body.Records)
	}

	w = get(t, router, "/api/history?agent=Agent-2")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body.Records = nil
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Records) != 0 {
		t.Errorf("records for Agent-2 = %+v, want none", body.Records)
	}
}

func TestSSE_ConnectedEventWithoutStore(t *testing.T) {
	opts := testOpts(t)
	opts.Store = nil
	router := newRouter(opts)

	w := get(t, router, "/api/events")
	if !strings.Contains(w.Body.String(), "event: connected") {
		t.Errorf("SSE body = %q, want connected event", w.Body.String())
	}
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	opts := testOpts(t)
	opts.Port = 18734

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- Start(ctx, opts) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start returned %v after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not shut down after context cancel")
	}
}
