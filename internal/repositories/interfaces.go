package repositories

import (
	"errors"
	"time"

	"github.com/papersetu/qgen-service/internal/models"
)

// ErrNotFound is returned by Get* methods when no row matches. Callers
// use errors.Is rather than depending on gorm directly.
var ErrNotFound = errors.New("record not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type ActivityFilters struct {
	ProductType *models.ProductType `json:"product_type"`
	DateFrom    *time.Time          `json:"date_from"`
	DateTo      *time.Time          `json:"date_to"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
	SortBy      string              `json:"sort_by"`    // "created_at", "name"
	SortOrder   string              `json:"sort_order"` // "asc", "desc"
}

type GenQuestionFilters struct {
	Type      *models.QuestionType  `json:"type"`
	Hardness  *models.HardnessLevel `json:"hardness"`
	IsInDraft *bool                 `json:"is_in_draft"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type BankQuestionFilters struct {
	Type     *models.QuestionType  `json:"type"`
	Hardness *models.HardnessLevel `json:"hardness"`
	Limit    int                   `json:"limit"`
}
