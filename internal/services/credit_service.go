package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/repositories"
	"github.com/papersetu/qgen-service/internal/validator"
)

type creditService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCreditService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) CreditService {
	return &creditService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== LEDGER WRITES =====

// Reserve debits cost credits for a generation run. The owner's user
// row is locked first so the balance check and the append are one
// atomic step against concurrent runs.
func (s *creditService) Reserve(ctx context.Context, ownerID uuid.UUID, activityID uuid.UUID, cost int) error {
	if cost <= 0 {
		return fmt.Errorf("reservation cost must be positive, got %d", cost)
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Credit().LockOwner(ctx, nil, ownerID); err != nil {
			if repositories.IsNotFound(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock owner: %w", err)
		}

		balance, err := txRepo.Credit().Balance(ctx, nil, ownerID)
		if err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}
		if balance < cost {
			s.logger.Warn("Credit reservation rejected",
				"owner_id", ownerID,
				"balance", balance,
				"cost", cost)
			return ErrInsufficientCredits
		}

		entry := &models.CreditLedgerEntry{
			OwnerID:    ownerID,
			Amount:     -cost,
			Reason:     models.LedgerGenerationReserve,
			ActivityID: &activityID,
		}
		return txRepo.Credit().Append(ctx, nil, entry)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Credits reserved",
		"owner_id", ownerID,
		"activity_id", activityID,
		"cost", cost)
	return nil
}

// Refund returns amount credits from an earlier reservation. Zero is a
// no-op so callers can pass requested minus accepted unconditionally.
func (s *creditService) Refund(ctx context.Context, ownerID uuid.UUID, activityID uuid.UUID, amount int) error {
	if amount == 0 {
		return nil
	}
	if amount < 0 {
		return fmt.Errorf("refund amount must not be negative, got %d", amount)
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Credit().LockOwner(ctx, nil, ownerID); err != nil {
			if repositories.IsNotFound(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock owner: %w", err)
		}

		entry := &models.CreditLedgerEntry{
			OwnerID:    ownerID,
			Amount:     amount,
			Reason:     models.LedgerGenerationRefund,
			ActivityID: &activityID,
		}
		return txRepo.Credit().Append(ctx, nil, entry)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Credits refunded",
		"owner_id", ownerID,
		"activity_id", activityID,
		"amount", amount)
	return nil
}

func (s *creditService) TopUp(ctx context.Context, ownerID uuid.UUID, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("top-up amount must be positive, got %d", amount)
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Credit().LockOwner(ctx, nil, ownerID); err != nil {
			if repositories.IsNotFound(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock owner: %w", err)
		}

		entry := &models.CreditLedgerEntry{
			OwnerID: ownerID,
			Amount:  amount,
			Reason:  models.LedgerTopUp,
		}
		return txRepo.Credit().Append(ctx, nil, entry)
	})
}

// ===== LEDGER READS =====

func (s *creditService) Balance(ctx context.Context, ownerID uuid.UUID) (*BalanceResponse, error) {
	balance, err := s.repo.Credit().Balance(ctx, nil, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	return &BalanceResponse{OwnerID: ownerID, Balance: balance}, nil
}

func (s *creditService) History(ctx context.Context, ownerID uuid.UUID, page, size int) (*LedgerHistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	entries, total, err := s.repo.Credit().History(ctx, nil, ownerID, size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return &LedgerHistoryResponse{
		Entries: entries,
		Total:   total,
		Page:    page,
		Size:    size,
	}, nil
}
