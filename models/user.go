package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User carries the preference data read by the recommendation pipeline.
// Accounts are issued by the auth service; this service only reads interests.
type User struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	Email     string         `gorm:"unique;not null" json:"email"`
	FullName  *string        `json:"full_name"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	Interests pq.StringArray `gorm:"type:text[]" json:"interests"` // ["hiking", "museum", "cafe"]
}
