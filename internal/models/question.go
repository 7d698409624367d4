package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuestionType is the canonical persisted enumeration. The API boundary
// also accepts the aliases true_false and fill_in_the_blank; those are
// resolved before anything reaches this package.
type QuestionType string

const (
	MCQ4            QuestionType = "mcq4"
	MSQ4            QuestionType = "msq4"
	TrueOrFalse     QuestionType = "true_or_false"
	FillInTheBlanks QuestionType = "fill_in_the_blanks"
	ShortAnswer     QuestionType = "short_answer"
	LongAnswer      QuestionType = "long_answer"
)

var questionTypeAliases = map[string]QuestionType{
	string(MCQ4):            MCQ4,
	string(MSQ4):            MSQ4,
	string(TrueOrFalse):     TrueOrFalse,
	string(FillInTheBlanks): FillInTheBlanks,
	string(ShortAnswer):     ShortAnswer,
	string(LongAnswer):      LongAnswer,
	"true_false":            TrueOrFalse,
	"fill_in_the_blank":     FillInTheBlanks,
}

// ResolveQuestionType maps an input type string, canonical or alias,
// onto the persisted enumeration.
func ResolveQuestionType(s string) (QuestionType, bool) {
	qt, ok := questionTypeAliases[s]
	return qt, ok
}

// IsKnownUnrepresentableType reports types the API vocabulary mentions
// but the persisted schema cannot hold. They get a dedicated rejection
// message instead of a generic "unknown type".
func IsKnownUnrepresentableType(s string) bool {
	return s == "match_the_following"
}

type HardnessLevel string

const (
	HardnessEasy   HardnessLevel = "easy"
	HardnessMedium HardnessLevel = "medium"
	HardnessHard   HardnessLevel = "hard"
)

// HardnessLevels in canonical order, used for rounding tie-breaks and
// deterministic plan ordering.
var HardnessLevels = []HardnessLevel{HardnessEasy, HardnessMedium, HardnessHard}

func IsValidHardness(s string) bool {
	switch HardnessLevel(s) {
	case HardnessEasy, HardnessMedium, HardnessHard:
		return true
	}
	return false
}

// GenQuestion is a generated question accepted by the normalizer and
// persisted under an activity. Option columns are populated exactly when
// the type spec says so: mcq4/msq4 carry four options, everything else
// carries none.
type GenQuestion struct {
	ID         uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActivityID uuid.UUID     `json:"activity_id" gorm:"type:uuid;not null;index"`
	Type       QuestionType  `json:"question_type" gorm:"column:question_type;size:30;not null;index"`
	Hardness   HardnessLevel `json:"hardness_level" gorm:"column:hardness_level;size:10;not null"`
	Marks      int           `json:"marks" gorm:"default:1"`

	QuestionText string  `json:"question_text" gorm:"type:text;not null"`
	AnswerText   *string `json:"answer_text" gorm:"type:text"` // nil for mcq4/msq4
	Explanation  *string `json:"explanation" gorm:"type:text"`

	// mcq4 / msq4 only
	Option1          *string `json:"option1" gorm:"type:text"`
	Option2          *string `json:"option2" gorm:"type:text"`
	Option3          *string `json:"option3" gorm:"type:text"`
	Option4          *string `json:"option4" gorm:"type:text"`
	CorrectMCQOption *int    `json:"correct_mcq_option"` // 1..4, mcq4 only
	MSQOption1Answer *bool   `json:"msq_option1_answer"`
	MSQOption2Answer *bool   `json:"msq_option2_answer"`
	MSQOption3Answer *bool   `json:"msq_option3_answer"`
	MSQOption4Answer *bool   `json:"msq_option4_answer"`

	// Draft placement
	IsInDraft          bool       `json:"is_in_draft" gorm:"default:false;index"`
	DraftSectionID     *uuid.UUID `json:"qgen_draft_section_id" gorm:"column:qgen_draft_section_id;type:uuid;index"`
	PositionInSection  *int       `json:"position_in_section"`
	IsPageBreakBelow   bool       `json:"is_page_break_below" gorm:"default:false"`
	IsExerciseQuestion bool       `json:"is_exercise_question" gorm:"default:false"`
	IsSolvedExample    bool       `json:"is_solved_example" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Activity    Activity             `json:"-" gorm:"foreignKey:ActivityID"`
	ConceptMaps []GenQuestionConcept `json:"-" gorm:"foreignKey:GenQuestionID;constraint:OnDelete:CASCADE"`
}

// GenQuestionConcept links a generated question to the curriculum
// concepts it covers. The pair is unique and cascade-deleted with either
// parent.
type GenQuestionConcept struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GenQuestionID uuid.UUID `json:"gen_question_id" gorm:"type:uuid;not null;uniqueIndex:idx_genq_concept"`
	ConceptID     uuid.UUID `json:"concept_id" gorm:"type:uuid;not null;uniqueIndex:idx_genq_concept"`
	CreatedAt     time.Time `json:"created_at"`
}

func (GenQuestionConcept) TableName() string { return "gen_questions_concepts_maps" }

// BankQuestion is a curated textbook question used as reference context
// in generation prompts. Read-only for this service.
type BankQuestion struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubjectID        uuid.UUID      `json:"subject_id" gorm:"type:uuid;not null;index"`
	ChapterID        *uuid.UUID     `json:"chapter_id" gorm:"type:uuid;index"`
	Type             QuestionType   `json:"question_type" gorm:"column:question_type;size:30;not null"`
	Hardness         *HardnessLevel `json:"hardness_level" gorm:"column:hardness_level;size:10"`
	Marks            *int           `json:"marks"`
	QuestionText     string         `json:"question_text" gorm:"type:text;not null"`
	AnswerText       string         `json:"answer_text" gorm:"type:text;not null"`
	Explanation      *string        `json:"explanation" gorm:"type:text"`
	Option1          *string        `json:"option1" gorm:"type:text"`
	Option2          *string        `json:"option2" gorm:"type:text"`
	Option3          *string        `json:"option3" gorm:"type:text"`
	Option4          *string        `json:"option4" gorm:"type:text"`
	CorrectMCQOption *int           `json:"correct_mcq_option"`
	MSQOption1Answer *bool          `json:"msq_option1_answer"`
	MSQOption2Answer *bool          `json:"msq_option2_answer"`
	MSQOption3Answer *bool          `json:"msq_option3_answer"`
	MSQOption4Answer *bool          `json:"msq_option4_answer"`
	IsFromExercise   bool           `json:"is_from_exercise" gorm:"default:false"`
	IsSolvedExample  bool           `json:"is_solved_example" gorm:"default:false"`
	Metadata         datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// BankQuestionConcept maps bank questions to concepts.
type BankQuestionConcept struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BankQuestionID uuid.UUID `json:"bank_question_id" gorm:"type:uuid;not null;uniqueIndex:idx_bankq_concept"`
	ConceptID      uuid.UUID `json:"concept_id" gorm:"type:uuid;not null;uniqueIndex:idx_bankq_concept"`
	CreatedAt      time.Time `json:"created_at"`
}

func (BankQuestionConcept) TableName() string { return "bank_questions_concepts_maps" }
