package models

import (
	"time"

	"github.com/google/uuid"
)

// Curriculum taxonomy: board -> class -> subject -> chapter -> topic ->
// concept. The generation engine reads concepts (and the bank questions
// mapped to them); it never writes these tables.

type Board struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SchoolClass struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BoardID     uuid.UUID `json:"board_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Position    int       `json:"position" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Subject struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SchoolClassID uuid.UUID `json:"school_class_id" gorm:"type:uuid;not null;index"`
	Name          string    `json:"name" gorm:"size:100;not null"`
	Description   *string   `json:"description" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Chapter struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubjectID   uuid.UUID `json:"subject_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Position    string    `json:"position" gorm:"size:20"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Topic struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChapterID   uuid.UUID `json:"chapter_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Position    string    `json:"position" gorm:"size:20"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Concept is the leaf curriculum node questions are generated against.
type Concept struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TopicID     uuid.UUID `json:"topic_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:300;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	PageNumber  int       `json:"page_number" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
