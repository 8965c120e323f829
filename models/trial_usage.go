package models

// TrialUsage records one gated-feature use by a user. The trial counter for
// a user/feature pair is the row count.
// It corresponds to the 'trial_usage' table.
type TrialUsage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string `gorm:"not null;index:idx_trial_user_feature" json:"user_id"`
	Feature   string `gorm:"not null;index:idx_trial_user_feature" json:"feature"`
	CreatedAt int64  `gorm:"not null" json:"created_at"` // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (TrialUsage) TableName() string {
	return "trial_usage"
}
