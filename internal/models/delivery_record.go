package models

import "time"

// DeliveryRecord is one row of delivery history, written by the dispatch
// worker after every delivery attempt. Failed rows double as the
// dead-letter log.
type DeliveryRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	MessageID string `gorm:"size:64;not null;index"`
	Sender    string `gorm:"size:64;not null"`
	Recipient string `gorm:"size:64;not null;index"`
	Channel   string `gorm:"size:16"`
	Type      string `gorm:"size:16"`
	Priority  string `gorm:"size:8"`
	Status    string `gorm:"size:8;index"`
	Error     string `gorm:"type:text"`
	CreatedAt time.Time
}
