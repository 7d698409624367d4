package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/papersetu/qgen-service/internal/config"
	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/repositories"
	"github.com/papersetu/qgen-service/internal/services"
	"github.com/papersetu/qgen-service/internal/utils"
	"github.com/papersetu/qgen-service/internal/validator"
)

type HandlerManager struct {
	generationHandler *GenerationHandler
	activityHandler   *ActivityHandler
	draftHandler      *DraftHandler
	creditHandler     *CreditHandler
	authMiddleware    *CasdoorAuthMiddleware
	serviceManager    services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		generationHandler: NewGenerationHandler(serviceManager.Generation(), logger),
		activityHandler:   NewActivityHandler(serviceManager.Activity(), logger),
		draftHandler:      NewDraftHandler(serviceManager.Draft(), logger),
		creditHandler:     NewCreditHandler(serviceManager.Credit(), logger),
		authMiddleware:    authMiddleware,
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Activity routes
		activities := v1.Group("/activities")
		{
			activities.POST("", hm.activityHandler.Create)
			activities.GET("", hm.activityHandler.List)
			activities.GET("/:id", hm.activityHandler.GetByID)
			activities.DELETE("/:id", hm.activityHandler.Delete)
		}

		// Question generation routes
		qgen := v1.Group("/qgen")
		{
			qgen.POST("/activities/:id/generate", hm.generationHandler.Generate)
			qgen.GET("/activities/:id/questions", hm.generationHandler.ListQuestions)

			// Draft routes
			qgen.GET("/drafts/:id", hm.draftHandler.GetDraft)
			qgen.PUT("/drafts/:id", hm.draftHandler.UpdateDraft)
			qgen.POST("/drafts/:id/sections", hm.draftHandler.CreateSection)
			qgen.POST("/drafts/:id/instructions", hm.draftHandler.AddInstruction)
			qgen.GET("/drafts/:id/instructions", hm.draftHandler.ListInstructions)
			qgen.PUT("/sections/:id", hm.draftHandler.RenameSection)
			qgen.PUT("/sections/:id/questions", hm.draftHandler.PlaceQuestions)
			qgen.PUT("/questions/:id/layout", hm.draftHandler.SetPageBreak)
		}

		// Credit routes
		credits := v1.Group("/credits")
		{
			credits.GET("/balance", hm.creditHandler.Balance)
			credits.GET("/history", hm.creditHandler.History)
			credits.POST("/topup", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.creditHandler.TopUp)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{
				"status":  "unhealthy",
				"service": "qgen-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "qgen-service",
		})
	})
}
