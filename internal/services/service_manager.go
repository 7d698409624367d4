package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/config"
	"github.com/papersetu/qgen-service/internal/events"
	"github.com/papersetu/qgen-service/internal/llm"
	"github.com/papersetu/qgen-service/internal/repositories"
	"github.com/papersetu/qgen-service/internal/validator"
)

// serviceManager implements ServiceManager
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	client    llm.Client
	publisher events.EventPublisher
	genConfig config.GenerationConfig

	// Service instances
	generationService GenerationService
	activityService   ActivityService
	draftService      DraftService
	creditService     CreditService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies.
// The publisher may be nil; event emission is then skipped.
func NewServiceManager(
	db *gorm.DB,
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	client llm.Client,
	publisher events.EventPublisher,
	genConfig config.GenerationConfig,
) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: v,
		client:    client,
		publisher: publisher,
		genConfig: genConfig,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	businessValidator := validator.NewBusinessValidator(sm.validator)

	sm.creditService = NewCreditService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Credit service initialized")

	sm.activityService = NewActivityService(sm.repo, sm.db, sm.logger, businessValidator, sm.publisher)
	sm.logger.Info("Activity service initialized")

	sm.draftService = NewDraftService(sm.repo, sm.db, sm.logger, businessValidator)
	sm.logger.Info("Draft service initialized")

	sm.generationService = NewGenerationService(
		sm.repo, sm.db, sm.logger, businessValidator,
		sm.client, sm.creditService, sm.publisher, sm.genConfig)
	sm.logger.Info("Generation service initialized")

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")
	return nil
}

// ===== SERVICE GETTERS =====

func (sm *serviceManager) Generation() GenerationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.generationService
}

func (sm *serviceManager) Activity() ActivityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.activityService
}

func (sm *serviceManager) Draft() DraftService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.draftService
}

func (sm *serviceManager) Credit() CreditService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.creditService
}

// ===== LIFECYCLE =====

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}
	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Warn("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down")
	return nil
}
