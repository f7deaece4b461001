package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/config"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/cache"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/database/postgres"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/handlers"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/middleware"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/repository"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/db"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/httpclient"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/identity"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/jwt"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/mailer"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/objectstorage"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/profiling"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/tracing"
)

// registerPublicRoutes registers the unauthenticated catalog surface
func registerPublicRoutes(
	group *gin.RouterGroup,
	generalRateLimiter *middleware.RateLimiter,
	courseHandler *handlers.CourseHandler,
	eventHandler *handlers.EventHandler,
	ebookHandler *handlers.EbookHandler,
) {
	group.GET("/courses", generalRateLimiter.Middleware(), courseHandler.ListPublished)
	group.GET("/courses/:slug", generalRateLimiter.Middleware(), courseHandler.GetBySlug)
	group.GET("/events", generalRateLimiter.Middleware(), eventHandler.ListUpcoming)
	group.GET("/ebooks", generalRateLimiter.Middleware(), ebookHandler.ListPublished)
}

// registerAuthenticatedRoutes registers everything behind the bearer-token middleware
func registerAuthenticatedRoutes(
	router *gin.Engine,
	tokenManager *jwt.TokenManager,
	profileRepo repository.ProfileStore,
	generalRateLimiter, provisioningRateLimiter, uploadRateLimiter *middleware.RateLimiter,
	provisioningHandler *handlers.ProvisioningHandler,
	courseHandler *handlers.CourseHandler,
	eventHandler *handlers.EventHandler,
	ebookHandler *handlers.EbookHandler,
	enrollmentHandler *handlers.EnrollmentHandler,
	profileHandler *handlers.ProfileHandler,
) {
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(tokenManager, profileRepo))

	// Bulk provisioning; the hourly quota is enforced inside the service
	v1.POST("/add-students", provisioningRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), provisioningHandler.AddStudents)

	// Creator catalog management
	v1.GET("/my/catalog/courses", generalRateLimiter.Middleware(), courseHandler.ListMine)
	v1.POST("/courses", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), courseHandler.Create)
	v1.PUT("/courses/:id", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), courseHandler.Update)
	v1.POST("/courses/:id/cover", uploadRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(15*1024*1024), courseHandler.UploadCover)

	v1.GET("/my/catalog/events", generalRateLimiter.Middleware(), eventHandler.ListMine)
	v1.POST("/events", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), eventHandler.Create)
	v1.POST("/events/:id/publish", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024), eventHandler.Publish)

	v1.POST("/ebooks", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), ebookHandler.Create)
	v1.POST("/ebooks/:id/file", uploadRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(15*1024*1024), ebookHandler.UploadFile)
	v1.POST("/ebooks/:id/publish", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024), ebookHandler.Publish)

	// Student self-service
	v1.POST("/courses/:id/enroll", generalRateLimiter.Middleware(), enrollmentHandler.EnrollInCourse)
	v1.POST("/events/:id/register", generalRateLimiter.Middleware(), enrollmentHandler.RegisterForEvent)
	v1.GET("/my/courses", generalRateLimiter.Middleware(), enrollmentHandler.ListMyCourses)
	v1.GET("/my/events", generalRateLimiter.Middleware(), enrollmentHandler.ListMyEvents)

	// Profile
	v1.GET("/profile", generalRateLimiter.Middleware(), profileHandler.GetProfile)
	v1.PUT("/profile", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), profileHandler.UpdateProfile)
	v1.POST("/profile/avatar", uploadRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(15*1024*1024), profileHandler.UploadAvatar)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Aula Nexo API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling (no-op unless enabled)
	stopProfiler, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Error("Failed to initialize profiler", zap.Error(err))
	} else {
		defer stopProfiler()
	}

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize PostgreSQL connection pool
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	// NOTE: Database migrations run separately via the migrate command

	dbClient := postgres.NewClient(pool)

	// Object storage client for covers, e-book files and avatars
	var storageClient *objectstorage.StorageClient
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		storageClient, err = objectstorage.NewStorageClient(
			cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey,
			cfg.Storage.BucketName,
			cfg.Storage.Endpoint,
			cfg.Storage.Region,
		)
		if err != nil {
			logger.Fatal("Failed to initialize object storage client", zap.Error(err))
		}
	}

	// Repositories
	profileRepo := repository.NewProfileRepository(dbClient)
	catalogRepo := repository.NewCatalogRepository(dbClient)
	enrollmentRepo := repository.NewEnrollmentRepository(dbClient)
	rateLimitRepo := repository.NewRateLimitRepository(dbClient)
	twoFactorRepo := repository.NewTwoFactorRepository(dbClient)

	// Catalog cache, populated synchronously before accepting requests
	catalogCache := cache.NewCatalogCache(catalogRepo, cfg.Cache.CatalogTTLSeconds)
	if cfg.Cache.DisableCatalogCache {
		logger.Warn("Catalog cache is DISABLED - reading from database on every request")
		catalogCache = nil
	} else if err := catalogCache.Initialize(); err != nil {
		logger.Fatal("Failed to initialize catalog cache", zap.Error(err))
	}

	// External collaborators
	httpClient := httpclient.NewStandardClient()

	identityClient, err := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.ServiceRoleKey, httpClient)
	if err != nil {
		logger.Fatal("Failed to initialize identity gateway client", zap.Error(err))
	}

	sendgridMailer, err := mailer.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	if err != nil {
		logger.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	tokenManager := jwt.NewTokenManager(cfg.Identity.JWTSecret, cfg.Identity.JWTIssuer, 24)

	// Services
	provisioningService := services.NewProvisioningService(profileRepo, catalogRepo, enrollmentRepo, rateLimitRepo, identityClient, cfg)
	twoFactorService := services.NewTwoFactorService(twoFactorRepo, sendgridMailer, cfg)
	catalogService := services.NewCatalogService(catalogRepo, catalogCache, storageClient)
	enrollmentService := services.NewEnrollmentService(enrollmentRepo, catalogRepo)
	profileService := services.NewProfileService(profileRepo, storageClient)

	// Handlers
	provisioningHandler := handlers.NewProvisioningHandler(provisioningService)
	twoFactorHandler := handlers.NewTwoFactorHandler(twoFactorService)
	courseHandler := handlers.NewCourseHandler(catalogService)
	eventHandler := handlers.NewEventHandler(catalogService)
	ebookHandler := handlers.NewEbookHandler(catalogService)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
	profileHandler := handlers.NewProfileHandler(profileService)

	cacheReadyFunc := func() bool { return true }
	if catalogCache != nil {
		cacheReadyFunc = catalogCache.IsReady
	}
	healthHandler := handlers.NewHealthHandler(dbClient.Ping, cacheReadyFunc)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	// Restricted origins everywhere except the function-style endpoints,
	// which are embedded in checkout pages on arbitrary origins
	router.Use(middleware.CORSMiddleware(allowedOrigins, []string{
		"/api/v1/add-students",
		"/api/v1/send-2fa-code",
		"/api/v1/verify-2fa-code",
	}))

	// Rate limiters per endpoint class
	generalRateLimiter := middleware.NewRateLimiter(100, 200)       // 100 req/sec, burst of 200
	provisioningRateLimiter := middleware.NewRateLimiter(1, 5)      // bulk writes, keep bursts small
	twoFactorRateLimiter := middleware.NewRateLimiter(0.2, 3)       // 1 req/5sec, code spam prevention
	uploadRateLimiter := middleware.NewRateLimiter(2, 5)            // base64 media uploads

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Function-style 2FA endpoints
	twoFactor := router.Group("/api/v1")
	twoFactor.POST("/send-2fa-code", twoFactorRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024), twoFactorHandler.SendCode)
	twoFactor.POST("/verify-2fa-code", twoFactorRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024), twoFactorHandler.VerifyCode)

	// Public catalog
	registerPublicRoutes(router.Group("/api/v1"), generalRateLimiter, courseHandler, eventHandler, ebookHandler)

	// Authenticated surface
	registerAuthenticatedRoutes(router, tokenManager, profileRepo,
		generalRateLimiter, provisioningRateLimiter, uploadRateLimiter,
		provisioningHandler, courseHandler, eventHandler, ebookHandler, enrollmentHandler, profileHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
