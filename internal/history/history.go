// Package history persists delivery outcomes. Failed rows double as the
// dead-letter log for diagnostics.
package history

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zulandar/switchboard/internal/models"
)

// DefaultLimit bounds history queries when the caller passes no limit.
const DefaultLimit = 50

// Store records and queries delivery history. A nil *Store is a valid
// no-op so the dispatch worker can run without persistence.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a GORM connection. The schema must already be migrated
// (see db.Migrate).
func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// Record writes one delivery outcome.
func (s *Store) Record(msg *models.Message, kind string, deliveryErr error) error {
	if s == nil {
		return nil
	}
	rec := models.DeliveryRecord{
		MessageID: msg.ID,
		Sender:    msg.Sender,
		Recipient: msg.Recipient,
		Channel:   kind,
		Type:      string(msg.Type),
		Priority:  msg.Priority.String(),
		Status:    string(msg.Status),
		CreatedAt: time.Now(),
	}
	if deliveryErr != nil {
		rec.Error = deliveryErr.Error()
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("history: record %s: %w", msg.ID, err)
	}
	return nil
}

// Recent returns the newest records first.
func (s *Store) Recent(limit int) ([]models.DeliveryRecord, error) {
	if s == nil {
		return nil, nil
	}
	return s.query(limit, s.db)
}

// ForAgent returns the newest records for one recipient.
func (s *Store) ForAgent(agentID string, limit int) ([]models.DeliveryRecord, error) {
	if s == nil {
		return nil, nil
	}
	if agentID == "" {
		return nil, fmt.Errorf("history: agentID is required")
	}
	return s.query(limit, s.db.Where("recipient = ?", agentID))
}

// Failures returns the newest failed deliveries.
func (s *Store) Failures(limit int) ([]models.DeliveryRecord, error) {
	if s == nil {
		return nil, nil
	}
	return s.query(limit, s.db.Where("status = ?", string(models.StatusFailed)))
}

func (s *Store) query(limit int, tx *gorm.DB) ([]models.DeliveryRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var recs []models.DeliveryRecord
	if err := tx.Order("id DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	return recs, nil
}

// LatestID returns the highest record ID, or 0 when the store is empty.
// The dashboard SSE stream uses it as its starting watermark.
func (s *Store) LatestID() (uint, error) {
	if s == nil {
		return 0, nil
	}
	var rec models.DeliveryRecord
	err := s.db.Order("id DESC").Limit(1).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("history: latest id: %w", err)
	}
	return rec.ID, nil
}

// Since returns records with ID greater than afterID, oldest first.
func (s *Store) Since(afterID uint) ([]models.DeliveryRecord, error) {
	if s == nil {
		return nil, nil
	}
	var recs []models.DeliveryRecord
	if err := s.db.Where("id > ?", afterID).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("history: since %d: %w", afterID, err)
	}
	return recs, nil
}
