package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/codestreak/config"
	"github.com/cppla/codestreak/controllers"
	"github.com/cppla/codestreak/middleware"
	"github.com/cppla/codestreak/services"
	"github.com/cppla/codestreak/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, quotes services.QuoteSource) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(accessLog(cfg)...)

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.Monitor())

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", middleware.MetricsHandler())

	authController := controllers.NewAuthController(db)
	challengeController := controllers.NewChallengeController(db)
	checkInController := controllers.NewCheckInController(db, quotes)
	profileController := controllers.NewProfileController(db)
	statsController := controllers.NewStatsController(db)
	configController := controllers.NewConfigController()
	quoteController := controllers.NewQuoteController(quotes)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/email-code", authController.SendEmailCode)
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	public := api.Group("")
	public.Use(middleware.OptionalAuth(), middleware.RateLimitMiddleware())
	public.GET("/challenges/today", challengeController.Today)
	public.GET("/quotes/random", quoteController.Random)
	public.GET("/stats", statsController.GetStats)
	public.GET("/config", configController.GetPublicConfig)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/checkins", checkInController.Create)
	protected.GET("/checkins", checkInController.List)
	protected.GET("/me/streak", statsController.MyStreak)
	protected.GET("/me/calendar", checkInController.Calendar)
	protected.GET("/me/profile", profileController.GetProfile)
	protected.PATCH("/me/profile", profileController.UpdateProfile)
	protected.GET("/me/roles", authController.Roles)

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminRequired(db))
	admin.GET("/challenges", challengeController.ListAll)
	admin.POST("/challenges", challengeController.Create)
	admin.PUT("/challenges/:id", challengeController.Update)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	})

	return r
}

// accessLog writes gin requests to the rolling access log, or to the app logger
// when no access log path is configured.
func accessLog(cfg config.AppConfig) []gin.HandlerFunc {
	var gl *zap.Logger
	if cfg.GinPath != "" {
		l, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err != nil {
			utils.Sugar.Warnf("gin access log disabled: %v", err)
			return []gin.HandlerFunc{gin.Recovery()}
		}
		gl = l
	} else {
		gl = utils.Logger
	}
	return []gin.HandlerFunc{
		ginzap.Ginzap(gl, time.RFC3339, true),
		ginzap.RecoveryWithZap(gl, true),
	}
}
