package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	GoogleID     string     `gorm:"type:text;uniqueIndex;not null" json:"-"`
	Email        string     `gorm:"type:text;uniqueIndex;not null" json:"email"`
	Name         string     `gorm:"type:text" json:"name"`
	Picture      string     `gorm:"type:text" json:"picture,omitempty"`
	Role         string     `gorm:"type:text;not null" json:"role"`
	RefreshToken string     `gorm:"type:text" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// GoogleProfile is the subset of the userinfo document we keep.
type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
