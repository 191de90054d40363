package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/steermate/steermate-backend-go/internal/auth"
	"github.com/steermate/steermate-backend-go/internal/config"
	"github.com/steermate/steermate-backend-go/internal/handler"
	"github.com/steermate/steermate-backend-go/internal/inference"
	"github.com/steermate/steermate-backend-go/internal/middleware"
	"github.com/steermate/steermate-backend-go/internal/repository"
	"github.com/steermate/steermate-backend-go/internal/service"
)

// Version is reported by GET /.
const Version = "1.0.0"

// Dependencies are the collaborators built at startup.
type Dependencies struct {
	Config     *config.Config
	DB         *sqlx.DB
	Logger     *zap.Logger
	Classifier inference.Classifier // nil disables sign prediction
}

// SetupRouter 设置路由. Background work started here stops when ctx is done.
func SetupRouter(ctx context.Context, deps Dependencies) *gin.Engine {
	cfg := deps.Config

	userRepo := repository.NewUserRepository(deps.DB)
	tripRepo := repository.NewTripRepository(deps.DB)

	tokens := auth.NewJWT(cfg.Auth)
	authService := service.NewAuthService(userRepo, auth.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, deps.Logger)
	tripService := service.NewTripService(tripRepo, deps.Logger)
	reportService := service.NewReportService(tripService, tripRepo, deps.Classifier)
	userService := service.NewUserService(userRepo)

	authHandler := handler.NewAuthHandler(authService)
	tripHandler := handler.NewTripHandler(tripService)
	reportHandler := handler.NewReportHandler(reportService)
	userHandler := handler.NewUserHandler(userService)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go limiter.Cleanup(ctx.Done())

	r := gin.New()
	r.MaxMultipartMemory = handler.MaxImageSize
	r.Use(
		middleware.RequestID(),
		middleware.Logger(deps.Logger),
		gin.Recovery(),
		cors.New(corsConfig(cfg.CORS)),
	)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "SteerMate API", "version": Version})
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := deps.DB.PingContext(pingCtx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API 路由组
	v1 := r.Group("/api/v1")
	{
		authGroup := v1.Group("/auth", middleware.RateLimit(limiter))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		protected := v1.Group("", middleware.Auth(authService))

		trips := protected.Group("/trips")
		{
			trips.POST("/upload", tripHandler.UploadTrip)
			trips.GET("", tripHandler.GetTrips)
			trips.GET("/:id", tripHandler.GetTripByID)
		}

		reports := protected.Group("/reports")
		{
			reports.GET("/analytics/trends", reportHandler.GetTrends)
			reports.POST("/predict_sign", reportHandler.PredictSign)
			reports.GET("/:trip_id", reportHandler.GetTripReport)
		}

		users := protected.Group("/users")
		{
			users.GET("/profile", userHandler.GetProfile)
		}
	}

	return r
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowOrigins
		cc.AllowCredentials = true
	}
	return cc
}
