package dispatch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zulandar/switchboard/internal/channel"
	"github.com/zulandar/switchboard/internal/history"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/registry"
)

// recordingAutomator captures the GUI injection calls the coordinator's
// worker makes.
type recordingAutomator struct {
	mu    sync.Mutex
	x, y  int
	typed []string
}

func (r *recordingAutomator) MoveMouse(x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.x, r.y = x, y
	return nil
}

func (r *recordingAutomator) Click() error { return nil }

func (r *recordingAutomator) TypeText(text string, delay time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typed = append(r.typed, text)
	return nil
}

func (r *recordingAutomator) PressKeys(combo string) error { return nil }

func coordRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coords.json")
	content := `{"agents": {
		"Agent-4": {"chat_input_coordinates": [1612, 419]},
		"Agent-9": {"coordinates": [0, 0]}
	}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := registry.Load([]string{path}, "")
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func testHistory(t *testing.T) *history.Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := gdb.AutoMigrate(&models.DeliveryRecord{}); err != nil {
		t.Fatal(err)
	}
	return history.NewStore(gdb)
}

func newTestCoordinator(t *testing.T, opts Opts) *Coordinator {
	t.Helper()
	if opts.Registry == nil {
		opts.Registry = coordRegistry(t)
	}
	if opts.InboxRoot == "" {
		opts.InboxRoot = t.TempDir()
	}
	if opts.Automator == nil {
		opts.Automator = &recordingAutomator{}
	}
	if opts.PollTimeout == 0 {
		opts.PollTimeout = 10 * time.Millisecond
	}
	opts.GUI = channel.GUIOpts{SettleDelay: time.Millisecond, KeyDelay: time.Millisecond}
	c, err := NewCoordinator(opts)
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	t.Cleanup(c.Stop)
	return c
}

// --- Validation ---

func TestEnqueue_Validation(t *testing.T) {
	c := newTestCoordinator(t, Opts{})

	tests := []struct {
		name      string
		sender    string
		recipient string
		content   string
		typ       models.MessageType
		priority  models.Priority
	}{
		{"empty sender", "", "Agent-4", "hi", models.TypeText, models.PriorityNormal},
		{"empty recipient", "Captain", "", "hi", models.TypeText, models.PriorityNormal},
		{"ALL recipient", "Captain", "ALL", "hi", models.TypeText, models.PriorityNormal},
		{"empty content", "Captain", "Agent-4", "", models.TypeText, models.PriorityNormal},
		{"unknown type", "Captain", "Agent-4", "hi", "GOSSIP", models.PriorityNormal},
		{"priority too high", "Captain", "Agent-4", "hi", models.TypeText, models.PriorityUrgent + 1},
		{"priority negative", "Captain", "Agent-4", "hi", models.TypeText, models.Priority(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Enqueue(tt.sender, tt.recipient, tt.content, tt.typ, tt.priority, nil)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
		})
	}

	// Nothing invalid reached the queue.
	if got := c.Stats().QueueDepth; got != 0 {
		t.Errorf("QueueDepth = %d, want 0", got)
	}
}

func TestEnqueue_QueueFull(t *testing.T) {
	c := newTestCoordinator(t, Opts{QueueCapacity: 1})

	if _, err := c.Enqueue("Captain", "Agent-4", "first", models.TypeText, models.PriorityNormal, nil); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	_, err := c.Enqueue("Captain", "Agent-4", "second", models.TypeText, models.PriorityNormal, nil)
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("error = %v, want ErrQueueFull", err)
	}
}

func TestEnqueue_UniqueIDs(t *testing.T) {
	c := newTestCoordinator(t, Opts{})

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := c.Enqueue("Captain", "Agent-4", fmt.Sprintf("msg %d", i), models.TypeText, models.PriorityNormal, nil)
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Fatalf("duplicate message ID %s", id)
		}
		seen[id] = true
	}
}

// --- Delivery scenarios ---

func TestScenario_GUIDeliveryToAgent4(t *testing.T) {
	auto := &recordingAutomator{}
	store := testHistory(t)
	c := newTestCoordinator(t, Opts{Automator: auto, Store: store, Threshold: 5})

	c.Start()
	id, err := c.Enqueue("Captain", "Agent-4", "Test message", models.TypeText, models.PriorityNormal, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !c.WaitIdle(2 * time.Second) {
		t.Fatal("engine never went idle")
	}

	auto.mu.Lock()
	if auto.x != 1612 || auto.y != 419 {
		t.Errorf("GUI invoked at (%d, %d), want (1612, 419)", auto.x, auto.y)
	}
	if len(auto.typed) != 1 || auto.typed[0] != "Test message" {
		t.Errorf("typed = %v, want [Test message]", auto.typed)
	}
	auto.mu.Unlock()

	stats := c.Stats()
	if stats.Successful != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want successful=1 failed=0", stats)
	}

	recs, err := store.Recent(10)
	if err != nil || len(recs) != 1 {
		t.Fatalf("history = (%v, %v)", recs, err)
	}
	if recs[0].MessageID != id || recs[0].Status != "SENT" || recs[0].Channel != "gui" {
		t.Errorf("history record = %+v", recs[0])
	}
}

func TestScenario_UnconfiguredAgent9Fails(t *testing.T) {
	store := testHistory(t)

	var mu sync.Mutex
	var failErr error
	c := newTestCoordinator(t, Opts{
		Store:     store,
		Threshold: 5,
		OnFailure: func(msg *models.Message, err error) {
			mu.Lock()
			failErr = err
			mu.Unlock()
		},
	})

	c.Start()
	if _, err := c.Enqueue("Captain", "Agent-9", "Test message", models.TypeText, models.PriorityNormal, nil); err != nil {
		t.Fatal(err)
	}
	if !c.WaitIdle(2 * time.Second) {
		t.Fatal("engine never went idle")
	}

	stats := c.Stats()
	if stats.Failed != 1 || stats.Successful != 0 {
		t.Errorf("stats = %+v, want failed=1", stats)
	}

	mu.Lock()
	defer mu.Unlock()
	var cfgErr *channel.ConfigurationError
	if !errors.As(failErr, &cfgErr) {
		t.Fatalf("failure error = %v, want *channel.ConfigurationError", failErr)
	}
	if cfgErr.Reason != "default/unconfigured coordinates" {
		t.Errorf("Reason = %q", cfgErr.Reason)
	}

	recs, _ := store.Failures(10)
	if len(recs) != 1 || recs[0].Recipient != "Agent-9" {
		t.Errorf("dead-letter log = %+v", recs)
	}
}

func TestBroadcast_OnePerAgent(t *testing.T) {
	c := newTestCoordinator(t, Opts{})

	ids, err := c.Broadcast("Captain", "all hands", models.TypeCoordination, models.PriorityHigh, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Registry has Agent-4 and Agent-9.
	if len(ids) != 2 {
		t.Fatalf("Broadcast returned %d ids, want 2", len(ids))
	}
	if c.Stats().QueueDepth != 2 {
		t.Errorf("QueueDepth = %d, want 2", c.Stats().QueueDepth)
	}
}

func TestBroadcast_QueueFullReturnsPartialIDs(t *testing.T) {
	c := newTestCoordinator(t, Opts{QueueCapacity: 1})

	ids, err := c.Broadcast("Captain", "all hands", models.TypeText, models.PriorityNormal, nil)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("error = %v, want ErrQueueFull", err)
	}
	if len(ids) != 1 {
		t.Errorf("partial ids = %v, want exactly 1", ids)
	}
}

func TestStartTwice_SingleWorker(t *testing.T) {
	store := testHistory(t)
	c := newTestCoordinator(t, Opts{Store: store})

	c.Start()
	c.Start()

	if _, err := c.Enqueue("Captain", "Agent-4", "hi", models.TypeText, models.PriorityNormal, nil); err != nil {
		t.Fatal(err)
	}
	if !c.WaitIdle(2 * time.Second) {
		t.Fatal("engine never went idle")
	}
	time.Sleep(50 * time.Millisecond)

	recs, _ := store.Recent(10)
	if len(recs) != 1 {
		t.Errorf("message recorded %d times, want exactly 1", len(recs))
	}
}

func TestStopBeforeStart_NoOp(t *testing.T) {
	c := newTestCoordinator(t, Opts{})
	c.Stop() // must not panic or block
}
