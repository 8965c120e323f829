package models

// WaitlistEntry is a signup for unlimited access once trials run out.
// It corresponds to the 'waitlist_entries' table.
type WaitlistEntry struct {
	ID     uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email  string  `gorm:"not null;uniqueIndex" json:"email"`
	Name   *string `gorm:"" json:"name,omitempty"`
	UserID *string `gorm:"index" json:"user_id,omitempty"`
	Source *string `gorm:"" json:"source,omitempty"` // which feature drove the signup
	Status string  `gorm:"not null;default:'pending';index" json:"status"`

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt int64 `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}
