package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User rows are never hard-deleted: deactivation clears IsActive and the
// row stays. Email uniqueness is enforced among active rows only, so the
// column carries a plain index instead of a unique one.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"uuid"`
	Email        string    `gorm:"index;not null"           json:"email"`
	FirstName    string    `gorm:"not null"                 json:"firstName"`
	LastName     string    `gorm:"not null"                 json:"lastName"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	IsActive     bool      `gorm:"not null;default:true"    json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
