package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LedgerReason string

const (
	LedgerTopUp             LedgerReason = "top_up"
	LedgerGenerationReserve LedgerReason = "generation_reserve"
	LedgerGenerationRefund  LedgerReason = "generation_refund"
)

// CreditLedgerEntry is append-only. The owner's balance is the running
// sum of Amount; reservations are negative entries, refunds positive.
type CreditLedgerEntry struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID    uuid.UUID    `json:"owner_id" gorm:"type:uuid;not null;index"`
	Amount     int          `json:"amount" gorm:"not null"`
	Reason     LedgerReason `json:"reason" gorm:"size:40;not null"`
	ActivityID *uuid.UUID   `json:"related_activity_id" gorm:"column:related_activity_id;type:uuid;index"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (CreditLedgerEntry) TableName() string { return "credit_ledger_entries" }

// GenerationCommit records a completed commit keyed by the caller's
// idempotency token. A retry of the same generation request finds the
// row and gets the original result back instead of inserting twice.
type GenerationCommit struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Token         string         `json:"token" gorm:"uniqueIndex;size:128;not null"`
	ActivityID    uuid.UUID      `json:"activity_id" gorm:"type:uuid;not null;index"`
	AcceptedCount int            `json:"accepted_count" gorm:"not null"`
	QuestionIDs   datatypes.JSON `json:"question_ids" gorm:"type:jsonb"` // []uuid as JSON array
	CreatedAt     time.Time      `json:"created_at"`
}

func (GenerationCommit) TableName() string { return "generation_commits" }
