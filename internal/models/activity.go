package models

import (
	"time"

	"github.com/google/uuid"
)

type ProductType string

const (
	ProductQGen ProductType = "qgen"
)

// Activity is the top-level owner-scoped unit of work. Deleting an
// activity cascades to every generated question and draft under it.
type Activity struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID     uuid.UUID   `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name        string      `json:"name" gorm:"size:200;not null"`
	ProductType ProductType `json:"product_type" gorm:"size:30;not null"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Relations
	Owner     User          `json:"-" gorm:"foreignKey:OwnerID"`
	Questions []GenQuestion `json:"-" gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE"`
	Drafts    []QgenDraft   `json:"-" gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE"`
}
