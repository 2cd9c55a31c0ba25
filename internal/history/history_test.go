package history

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zulandar/switchboard/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.DeliveryRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(gdb)
}

func record(t *testing.T, s *Store, id, recipient string, status models.Status, deliveryErr error) {
	t.Helper()
	msg := &models.Message{
		ID:        id,
		Sender:    "Captain",
		Recipient: recipient,
		Content:   "body",
		Type:      models.TypeText,
		Priority:  models.PriorityNormal,
		Status:    status,
	}
	if err := s.Record(msg, "file", deliveryErr); err != nil {
		t.Fatalf("Record: %v", err)
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := testStore(t)
	record(t, s, "m1", "Agent-1", models.StatusSent, nil)
	record(t, s, "m2", "Agent-2", models.StatusFailed, errors.New("boom"))

	recs, err := s.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("Recent returned %d records, want 2", len(recs))
	}
	// Newest first.
	if recs[0].MessageID != "m2" || recs[1].MessageID != "m1" {
		t.Errorf("order = %s, %s, want m2, m1", recs[0].MessageID, recs[1].MessageID)
	}
	if recs[0].Error != "boom" {
		t.Errorf("Error = %q, want boom", recs[0].Error)
	}
	if recs[0].Status != "FAILED" || recs[1].Status != "SENT" {
		t.Errorf("statuses = %s, %s", recs[0].Status, recs[1].Status)
	}
}

func TestForAgent(t *testing.T) {
	s := testStore(t)
	record(t, s, "m1", "Agent-1", models.StatusSent, nil)
	record(t, s, "m2", "Agent-2", models.StatusSent, nil)
	record(t, s, "m3", "Agent-1", models.StatusSent, nil)

	recs, err := s.ForAgent("Agent-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("ForAgent returned %d records, want 2", len(recs))
	}

	if _, err := s.ForAgent("", 10); err == nil {
		t.Error("expected error for empty agentID")
	}
}

func TestFailures(t *testing.T) {
	s := testStore(t)
	record(t, s, "m1", "Agent-1", models.StatusSent, nil)
	record(t, s, "m2", "Agent-1", models.StatusFailed, errors.New("no focus"))

	recs, err := s.Failures(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].MessageID != "m2" {
		t.Errorf("Failures = %+v", recs)
	}
}

func TestLatestIDAndSince(t *testing.T) {
	s := testStore(t)

	id, err := s.LatestID()
	if err != nil || id != 0 {
		t.Fatalf("LatestID on empty store = (%d, %v), want (0, nil)", id, err)
	}

	record(t, s, "m1", "Agent-1", models.StatusSent, nil)
	record(t, s, "m2", "Agent-1", models.StatusSent, nil)

	id, err = s.LatestID()
	if err != nil || id == 0 {
		t.Fatalf("LatestID = (%d, %v)", id, err)
	}

	recs, err := s.Since(id - 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].MessageID != "m2" {
		t.Errorf("Since = %+v", recs)
	}
}

func TestNilStoreIsNoOp(t *testing.T) {
	var s *Store
	msg := &models.Message{ID: "m1", Status: models.StatusSent}

	if err := s.Record(msg, "gui", nil); err != nil {
		t.Errorf("nil Record = %v", err)
	}
	if recs, err := s.Recent(10); err != nil || recs != nil {
		t.Errorf("nil Recent = (%v, %v)", recs, err)
	}
	if recs, err := s.Failures(10); err != nil || recs != nil {
		t.Errorf("nil Failures = (%v, %v)", recs, err)
	}
}
