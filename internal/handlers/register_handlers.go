package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/smallbooks/smallbooks_backend/cmd/docs"
	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/middleware"
	"github.com/smallbooks/smallbooks_backend/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies through the
// service container interfaces.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Public authentication routes
	registerAuthRoutes(r, services.User)

	setupAPIV1Routes(r, cfg, services)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the per-entity
// route registrations.
func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerAccountRoutes(v1, services.Account, services.Ledger)
	registerJournalRoutes(v1, services.Ledger, services.Adjustment)
	registerReconciliationRoutes(v1, services.Reconciliation)
	registerTransactionRoutes(v1, services.Staging)
	registerInvoiceRoutes(v1, services.Invoice)
	registerReportingRoutes(v1, services.Reporting)
}

// setupSwaggerRoutes configures the swagger documentation routes.
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
