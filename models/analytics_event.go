package models

// AnalyticsEvent is an append-only usage log row.
// It corresponds to the 'analytics_events' table.
type AnalyticsEvent struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      *string `gorm:"index" json:"user_id,omitempty"`
	EventType   string  `gorm:"not null;index" json:"event_type"` // inspection, triage, rework
	EventAction string  `gorm:"not null" json:"event_action"`     // created, decided, advanced, etc.
	EventData   *string `gorm:"" json:"event_data,omitempty"`     // free-form JSON payload
	CreatedAt   int64   `gorm:"not null" json:"created_at"`       // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
