package main

import (
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"simkos/internal/account"
	"simkos/internal/auth"
	"simkos/internal/cooldown"
	"simkos/internal/emailcheck"
	"simkos/internal/finance"
	"simkos/internal/handler"
	"simkos/internal/mailer"
	"simkos/internal/middleware"
	"simkos/internal/model"
	"simkos/internal/occupancy"
	"simkos/pkg/config"
	"simkos/pkg/database"
	"simkos/pkg/jwtutil"
	"simkos/pkg/logger"
	"simkos/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("simkos")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting kos management service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(db,
		&model.User{}, &model.Room{}, &model.Tenant{}, &model.LedgerEntry{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT utility
	jwtUtil := jwtutil.NewJWTUtil(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Mail sender: SMTP when configured, log-only otherwise
	var mail mailer.Sender
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPSender(&cfg.SMTP)
		log.Info("SMTP mail sender initialized", zap.String("host", cfg.SMTP.Host))
	} else {
		mail = mailer.NewLogSender(log)
		log.Warn("SMTP not configured, OTP mail will be logged only")
	}

	// Cooldown store: redis when configured, in-memory otherwise
	var cooldowns cooldown.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cooldowns = cooldown.NewRedisStore(client, "simkos:cooldown")
		log.Info("Redis cooldown store initialized", zap.String("addr", cfg.Redis.Addr))
	} else {
		cooldowns = cooldown.NewMemoryStore()
	}

	checker := emailcheck.NewDNSChecker()

	// Domain services
	coordinator := occupancy.NewCoordinator(db, log)
	aggregator := finance.NewAggregator(db, log)
	authSvc := auth.NewService(db, log, jwtUtil, mail, checker, cfg.OTP.TTL)
	accountSvc := account.NewService(db, log, mail, checker, cooldowns, cfg.OTP.ResendCooldown, cfg.OTP.TTL)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	roomHandler := handler.NewRoomHandler(coordinator)
	tenantHandler := handler.NewTenantHandler(coordinator)
	financeHandler := handler.NewFinanceHandler(aggregator)
	profileHandler := handler.NewProfileHandler(accountSvc)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/", handler.HealthCheck)
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Authentication routes
	authGroup := e.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/verify", authHandler.Verify)
	authGroup.GET("/me", profileHandler.Profile, middleware.JWTAuthMiddleware(jwtUtil))

	authRequired := middleware.JWTAuthMiddleware(jwtUtil)

	// Rooms
	rooms := e.Group("/rooms", authRequired)
	rooms.GET("/me", roomHandler.List)
	rooms.POST("/me", roomHandler.Create)
	rooms.PUT("/:id", roomHandler.Update)
	rooms.DELETE("/:id", roomHandler.Delete)

	// Tenants
	tenants := e.Group("/tenants", authRequired)
	tenants.POST("", tenantHandler.Create)
	tenants.PUT("/:id", tenantHandler.Update)
	tenants.POST("/:id/checkout", tenantHandler.Checkout)
	tenants.POST("/:id/extend", tenantHandler.Extend)

	// Finance
	financeGroup := e.Group("/finance", authRequired)
	financeGroup.GET("/summary", financeHandler.Summary)
	financeGroup.POST("/expense", financeHandler.Expense)

	// Profile
	profile := e.Group("/profile", authRequired)
	profile.GET("/me", profileHandler.Profile)
	profile.PUT("/nama-kos", profileHandler.UpdateNamaKos)
	profile.POST("/email/request", profileHandler.RequestEmailChange)
	profile.POST("/email/verify", profileHandler.VerifyEmailChange)
	profile.DELETE("/clear-data", profileHandler.ClearData)
	profile.DELETE("/delete-account", profileHandler.DeleteAccount)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
