package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

type AccountStatus string

const (
	AccountActive      AccountStatus = "active"
	AccountDisabled    AccountStatus = "disabled"
	AccountDeactivated AccountStatus = "deactivated"
)

// User is the owner of activities and the account credits are charged
// against. Authentication is external (Casdoor); this row carries the
// local profile and serves as the lock anchor for credit accounting.
type User struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalID   string        `json:"external_id" gorm:"uniqueIndex;size:255;not null"` // Casdoor subject
	Name         *string       `json:"name" gorm:"size:50"`
	Email        *string       `json:"email" gorm:"size:255"`
	PhoneNum     *string       `json:"phone_num" gorm:"size:20"`
	Role         UserRole      `json:"role" gorm:"size:20;default:teacher"`
	Status       AccountStatus `json:"account_status" gorm:"size:20;default:active"`
	LastActiveAt time.Time     `json:"last_active_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
