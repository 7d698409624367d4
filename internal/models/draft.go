package models

import (
	"time"

	"github.com/google/uuid"
)

// QgenDraft is a paper-in-progress: ordered sections of generated
// questions, destined for PDF/DOCX export by the rendering layer.
// Creating a qgen draft always creates its first section ("Section A")
// in the same transaction; see ActivityService.
type QgenDraft struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActivityID    uuid.UUID  `json:"activity_id" gorm:"type:uuid;not null;index"`
	PaperTitle    *string    `json:"paper_title" gorm:"size:300"`
	PaperSubtitle *string    `json:"paper_subtitle" gorm:"size:300"`
	InstituteName *string    `json:"institute_name" gorm:"size:300"`
	SubjectName   *string    `json:"subject_name" gorm:"size:100"`
	ClassName     *string    `json:"school_class_name" gorm:"column:school_class_name;size:100"`
	MaximumMarks  *int       `json:"maximum_marks"`
	PaperDatetime *time.Time `json:"paper_datetime"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Sections []QgenDraftSection `json:"sections,omitempty" gorm:"foreignKey:DraftID;constraint:OnDelete:CASCADE"`
}

func (QgenDraft) TableName() string { return "qgen_drafts" }

// QgenDraftSection orders questions inside a draft. PositionInDraft is
// dense and zero-based within the draft; question positions are dense
// and zero-based within the section.
type QgenDraftSection struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DraftID         uuid.UUID `json:"qgen_draft_id" gorm:"column:qgen_draft_id;type:uuid;not null;index"`
	SectionName     string    `json:"section_name" gorm:"size:100;not null"`
	PositionInDraft int       `json:"position_in_draft" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (QgenDraftSection) TableName() string { return "qgen_draft_sections" }

// QgenDraftInstruction is a free-text instruction line shown on the
// exported paper.
type QgenDraftInstruction struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DraftID         uuid.UUID `json:"qgen_draft_id" gorm:"column:qgen_draft_id;type:uuid;not null;index"`
	InstructionText string    `json:"instruction_text" gorm:"type:text;not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (QgenDraftInstruction) TableName() string { return "qgen_draft_instructions" }
