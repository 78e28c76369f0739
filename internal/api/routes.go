package api

import (
	"net/http"

	"pariksha/paper-share/internal/domain"
	"pariksha/paper-share/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	paperService service.PaperService,
	adminService service.AdminService,
) {
	authHandler := NewAuthHandler(authService)
	paperHandler := NewPaperHandler(paperService)
	userHandler := NewUserHandler(paperService)
	adminHandler := NewAdminHandler(adminService)

	authMiddleware := AuthMiddleware(jwtSecret)
	optionalAuth := OptionalAuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiGroup := router.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Public paper routes. Specific routes before the :id routes.
		paperGroup := apiGroup.Group("/papers")
		{
			paperGroup.GET("/filters", paperHandler.FilterPapers)
			paperGroup.GET("/filter-options", paperHandler.FilterOptions)

			// Optional auth: admins may download papers in any state.
			paperGroup.POST("/:id/download", optionalAuth, paperHandler.DownloadPaper)
			paperGroup.GET("/:id", paperHandler.GetPaperByID)
			paperGroup.GET("", paperHandler.ListApproved)

			paperGroup.POST("/upload", authMiddleware, paperHandler.UploadPaper)
		}

		apiGroup.GET("/home/stats", paperHandler.HomeStats)

		// Student self-service routes.
		userGroup := apiGroup.Group("/users")
		userGroup.Use(authMiddleware)
		{
			userGroup.GET("/dashboard", userHandler.MyDashboard)
			userGroup.DELETE("/papers/:id", userHandler.DeleteMyPaper)
		}

		// Admin routes: authenticated AND admin role.
		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(authMiddleware, RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/stats", adminHandler.Stats)
			adminGroup.GET("/pending-papers", adminHandler.ListPending)
			adminGroup.GET("/papers", adminHandler.ListAll)
			adminGroup.PUT("/papers/:id/approve", adminHandler.ApprovePaper)
			adminGroup.PUT("/papers/:id/reject", adminHandler.RejectPaper)
			adminGroup.DELETE("/papers/:id", adminHandler.DeletePaper)
		}
	}
}
