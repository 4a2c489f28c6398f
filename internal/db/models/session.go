package models

// Session is a key/value row used as session storage on sqlite,
// where no gofiber storage driver is wired.
type Session struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     []byte
	ExpiresAt int64 `gorm:"index"` // unix seconds, 0 never expires
}

// TableName overrides gorm's default naming.
func (Session) TableName() string {
	return "sessions"
}
