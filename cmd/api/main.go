package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "authgate/api/swagger" // swagger docs
	"authgate/internal/config"
	"authgate/internal/database"
	"authgate/internal/handler"
	"authgate/internal/middleware"
	"authgate/internal/password"
	"authgate/internal/ratelimit"
	"authgate/internal/repository"
	"authgate/internal/service"
	"authgate/internal/token"
	"authgate/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Authgate API
// @version         1.0
// @description     Seller authentication and operator role management.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey AdminBearer
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DatabaseURL, database.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("close database", "error", err)
		}
	}()
	logger.Info("connected to PostgreSQL")

	tokens, err := token.NewService(token.Options{
		Secret:       []byte(cfg.JWTSecret),
		LegacySecret: []byte(cfg.LegacyTokenSecret),
		TTL:          cfg.TokenTTL,
		LegacyMaxAge: cfg.LegacyTokenMaxAge,
		Issuer:       cfg.TokenIssuer,
	})
	if err != nil {
		return err
	}

	limiter := ratelimit.NewMemoryLimiter(ratelimit.MemoryConfig{})
	if cfg.RedisURL != "" {
		redisLimiter, client, err := ratelimit.NewRedisLimiter(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		limiter = redisLimiter
		logger.Info("login throttling backed by redis")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub(cfg.CORSAllowedOrigins, logger)
	go hub.Run(ctx)

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	roleRepo := repository.NewAdminRoleRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	domainRepo := repository.NewDomainRepository(db)
	sellerRepo := repository.NewSellerRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	hasher := password.NewHasher(password.DefaultParams)
	auditService := service.NewAuditService(auditRepo)
	roleService := service.NewAdminRoleService(roleRepo, assignmentRepo, domainRepo, txManager, auditService, logger)
	sellerService := service.NewSellerService(sellerRepo, txManager, hasher, auditService, hub, logger)
	authService := service.NewSellerAuthService(sellerRepo, hasher, tokens, limiter, service.LoginThrottle{
		Limit:  cfg.LoginRateLimit,
		Window: cfg.LoginRateWindow,
	}, auditService, logger)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Length", "Content-Type", "Authorization", "Accept",
		middleware.LegacyTokenHeader, middleware.HeaderAdminUserID, middleware.HeaderAdminEmail,
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/ws", hub.ServeWs(authService))

	guard := middleware.NewSellerGuard(authService, logger, handler.PublicSellerPaths...)
	handler.NewAuthHandler(authService).RegisterRoutes(router.Group(""))
	handler.NewSellerHandler(guard).RegisterRoutes(router.Group(""))

	admin := router.Group("/admin")
	if cfg.AdminTrustedHeaders {
		admin.Use(middleware.TrustedHeaderSession())
	}
	admin.Use(middleware.AdminGuard(cfg.AdminAPISecret))
	handler.NewAdminRoleHandler(roleService).RegisterRoutes(admin)
	handler.NewAdminSellerHandler(sellerService, roleService).RegisterRoutes(admin)
	handler.NewAuditHandler(auditService, roleService).RegisterRoutes(admin)

	if cfg.AdminAPISecret == "" && !cfg.AdminTrustedHeaders {
		logger.Warn("admin routes are unreachable: set ADMIN_API_SECRET or ADMIN_TRUSTED_HEADERS")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
