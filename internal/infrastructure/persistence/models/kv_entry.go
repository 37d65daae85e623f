// Package models holds the gorm models of the console's local database.
package models

import "time"

// KVEntry is one raw value stored under a key
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for KVEntry
func (KVEntry) TableName() string {
	return "kv_entries"
}
