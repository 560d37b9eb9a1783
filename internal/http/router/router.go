package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/ruralfund-backend/internal/config"
	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/http/handlers"
	"github.com/ignatzorin/ruralfund-backend/internal/http/middleware"
	"github.com/ignatzorin/ruralfund-backend/internal/service"
)

// Handlers собирает все HTTP хэндлеры приложения.
type Handlers struct {
	Projects    *handlers.ProjectHandler
	Investments *handlers.InvestmentHandler
	Accounts    *handlers.AccountHandler
	Contacts    *handlers.ContactHandler
	WS          *handlers.WSHandler
	Health      *handlers.HealthHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.ErrorHandler())

	r.GET("/health", h.Health.Health)
	r.Static("/uploads", cfg.UploadStoragePath)

	api := r.Group("/api")
	api.GET("/health", h.Health.Health)
	api.GET("/ws", h.WS.Handle)

	auth := middleware.AuthMiddleware(tokenManager)
	anyRole := middleware.RequireRole(valueobject.RoleUser, valueobject.RoleInvestor, valueobject.RoleAdmin)
	userOnly := middleware.RequireRole(valueobject.RoleUser)
	adminOnly := middleware.RequireRole(valueobject.RoleAdmin)
	loginLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	contactLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	projects := api.Group("/projects")
	{
		projects.GET("", h.Projects.ListOpen)
		projects.GET("/project/:id", middleware.UUIDValidator("id"), h.Projects.Get)
		projects.GET("/project/:id/progress", middleware.UUIDValidator("id"), h.Projects.Progress)

		projects.GET("/investor/approved", auth, anyRole, h.Projects.ListApproved)
		projects.GET("/owner/:ownerId", auth, anyRole, middleware.UUIDValidator("ownerId"), h.Projects.ListByOwner)

		projects.POST("/create", auth, userOnly, h.Projects.Create)
		projects.PUT("/:id", auth, userOnly, middleware.UUIDValidator("id"), h.Projects.Update)
		projects.DELETE("/:id", auth, userOnly, middleware.UUIDValidator("id"), h.Projects.Delete)
		projects.PATCH("/status/:id", auth, userOnly, middleware.UUIDValidator("id"), h.Projects.SetStatus)
		projects.PATCH("/notes/:id", auth, userOnly, middleware.UUIDValidator("id"), h.Projects.UpdateNotes)
		projects.PATCH("/fund-details/:id", auth, userOnly, middleware.UUIDValidator("id"), h.Projects.UpdateFundDetails)

		admin := projects.Group("/admin", auth, adminOnly)
		admin.GET("/all", h.Projects.ListAll)
		admin.GET("/stats", h.Projects.Stats)
		admin.PUT("/:id", middleware.UUIDValidator("id"), h.Projects.Review)
	}

	investments := api.Group("/investments", auth)
	{
		investments.POST("/create", userOnly, h.Investments.Create)
		investments.GET("/investor/:id", anyRole, middleware.UUIDValidator("id"), h.Investments.ListByInvestor)
		investments.GET("/project/:id", anyRole, middleware.UUIDValidator("id"), h.Investments.ListByProject)

		admin := investments.Group("/admin", adminOnly)
		admin.GET("/all", h.Investments.ListAll)
		admin.GET("/export", h.Investments.Export)
		admin.PUT("/:id", middleware.UUIDValidator("id"), h.Investments.Review)
	}

	users := api.Group("/users")
	{
		users.POST("/create", h.Accounts.CreateUser)
		users.POST("/login", loginLimit, h.Accounts.LoginUser)
		users.GET("/:id", auth, anyRole, middleware.UUIDValidator("id"), h.Accounts.GetUser)
	}

	investors := api.Group("/investors")
	{
		investors.POST("/create", h.Accounts.CreateInvestor)
		investors.POST("/login", loginLimit, h.Accounts.LoginInvestor)
	}

	api.POST("/admin/login", loginLimit, h.Accounts.LoginAdmin)

	contact := api.Group("/contact")
	{
		contact.POST("", contactLimit, h.Contacts.Submit)

		admin := contact.Group("/admin", auth, adminOnly)
		admin.GET("/all", h.Contacts.ListAll)
		admin.PUT("/:id", middleware.UUIDValidator("id"), h.Contacts.SetStatus)
	}

	return r
}
