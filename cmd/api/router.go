package main

import (
	"log/slog"

	_ "accessapi/api/swagger" // swagger docs
	"accessapi/internal/auth"
	"accessapi/internal/config"
	"accessapi/internal/handler"
	"accessapi/internal/middleware"
	"accessapi/internal/obs"
	"accessapi/internal/repository"
	"accessapi/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type app struct {
	router *gin.Engine
	rbac   service.RBACService
}

// newApp wires Repository -> Service -> Handler and builds the gin engine.
func newApp(cfg *config.Config, db *gorm.DB, logger *slog.Logger) *app {
	tokens := auth.NewTokenService(cfg.SecretKey, cfg.RefreshSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	userRepo := repository.NewUserRepository(db)
	rbacRepo := repository.NewRBACRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	userService := service.NewUserService(userRepo, rbacRepo, auditRepo, txManager)
	authService := service.NewAuthService(userRepo, tokens)
	rbacService := service.NewRBACService(rbacRepo, auditRepo, txManager)
	auditService := service.NewAuditService(auditRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(obs.Instrument())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.HeaderRequestID}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{middleware.HeaderRequestID}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(obs.Handler()))

	root := router.Group("")
	handler.NewSystemHandler(cfg.ProjectName).RegisterRoutes(root)
	handler.NewUserHandler(userService, authService, tokens).RegisterRoutes(root)
	handler.NewRBACHandler(rbacService).RegisterRoutes(root)
	handler.NewAuditHandler(auditService, tokens).RegisterRoutes(root)

	return &app{router: router, rbac: rbacService}
}
