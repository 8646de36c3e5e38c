package model

import "time"

// UploadRecord is the audit-log entry for one processed dataset. Only
// counts and provenance are stored; the analyzed events and metrics
// themselves never leave the in-memory session snapshot.
type UploadRecord struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Source           string    `gorm:"size:256;not null" json:"source"`
	RowCount         int       `gorm:"not null" json:"row_count"`
	EventCount       int       `gorm:"not null" json:"event_count"`
	QuarantinedCount int       `gorm:"not null" json:"quarantined_count"`
	MetricsCount     int       `gorm:"not null" json:"metrics_count"`
	WarningCount     int       `gorm:"not null" json:"warning_count"`
	UploadedAt       time.Time `gorm:"not null;index" json:"uploaded_at"`
}

// QuarantineRatio returns the fraction of source rows that were excluded.
func (r UploadRecord) QuarantineRatio() float64 {
	if r.RowCount == 0 {
		return 0
	}
	return float64(r.QuarantinedCount) / float64(r.RowCount)
}
