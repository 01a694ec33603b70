package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/vertinimas/portal/docs"
	appauth "github.com/vertinimas/portal/internal/application/auth"
	appclient "github.com/vertinimas/portal/internal/application/client"
	appgeocode "github.com/vertinimas/portal/internal/application/geocode"
	apporder "github.com/vertinimas/portal/internal/application/order"
	appreport "github.com/vertinimas/portal/internal/application/report"
	appvaluator "github.com/vertinimas/portal/internal/application/valuator"
	"github.com/vertinimas/portal/internal/infrastructure/auth"
	"github.com/vertinimas/portal/internal/infrastructure/config"
	"github.com/vertinimas/portal/internal/infrastructure/i18n"
	"github.com/vertinimas/portal/internal/infrastructure/logger"
	"github.com/vertinimas/portal/internal/infrastructure/persistence"
	"github.com/vertinimas/portal/internal/infrastructure/telemetry"
	"github.com/vertinimas/portal/internal/interfaces/http/handler"
	"github.com/vertinimas/portal/internal/interfaces/http/middleware"
	"github.com/vertinimas/portal/internal/interfaces/http/router"
)

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs --parseInternal

//	@title			Vertinimo portalo API
//	@version		1.0
//	@description	Turto vertinimo užsakymų portalas: klientų užsakymai, vertintojai, ataskaitos.

//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						vp_session
//	@description				Session cookie set by login and registration

// shutdownTimeout bounds the graceful drain of in-flight requests
const shutdownTimeout = 30 * time.Second

func main() {
	// a missing .env is fine; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootLog, err := newLogger(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			bootLog.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	log := bootLog
	if providers.Logs.IsEnabled() {
		core := providers.Logs.ZapCore(logger.ParseLevel(cfg.Log.Level))
		if log, err = newLogger(cfg, []zapcore.Core{core}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting valuation portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := openDatabase(cfg, providers.Meter.Meter(telemetry.MeterName), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	infra, err := newInfrastructure(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	users := persistence.NewGormUserRepository(db.DB)
	valuators := persistence.NewGormValuatorRepository(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appauth.NewService(users, jwtService, infra.blacklist, log)
	if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		return err
	}

	orderService := apporder.NewService(orders, users, valuators, infra.orderGeocoder, infra.objects, apporder.Config{
		Location:      cfg.App.Location(),
		MaxReportSize: cfg.Storage.MaxUploadSize,
	}, log)
	orderService.SetBusinessMetrics(providers.Business)

	geocodeService := appgeocode.NewService(infra.geocoder, log)
	geocodeService.SetBusinessMetrics(providers.Business)

	reportService := appreport.NewService(orders, users, valuators, infra.reportCache, appreport.Config{
		Location: cfg.App.Location(),
		CacheTTL: cfg.Report.CacheTTL,
		Writers:  infra.writers,
	}, log)
	reportService.SetBusinessMetrics(providers.Business)

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService, cfg.Cookie),
		Order:      handler.NewOrderHandler(orderService),
		AdminOrder: handler.NewAdminOrderHandler(orderService),
		Valuator:   handler.NewValuatorHandler(appvaluator.NewService(valuators, orders, log)),
		Client:     handler.NewClientHandler(appclient.NewService(users, orders, infra.blacklist, cfg.JWT.Expiration, log)),
		Report:     handler.NewReportHandler(reportService),
		Geocode:    handler.NewGeocodeHandler(geocodeService),
	}

	tr, err := i18n.New(cfg.App.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	guards := router.Guards{
		Authenticated: middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: infra.blacklist,
			CookieName:     cfg.Cookie.Name,
			Logger:         log,
		}),
		Admin: middleware.RequireAdmin(),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer limiter.Stop()
		guards.AuthRateLimit = middleware.RateLimit(limiter)
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}

	engine := newEngine(cfg, tr, log)
	router.RegisterSystemRoutes(engine, handler.NewHealthHandler(db), cfg.Swagger.Enabled)
	router.NewRouter(engine).Register(router.APIGroups(handlers, guards)...).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited gracefully")
	return nil
}

func newLogger(cfg *config.Config, extra []zapcore.Core) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		ExtraCores: extra,
	})
}

// newEngine installs the global middleware stack in order:
// request id, panic recovery, access log, tracing, security headers, CORS,
// localization and body limits
func newEngine(cfg *config.Config, tr *i18n.Translator, log *zap.Logger) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Failed to set trusted proxies", zap.Error(err))
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanAttributes(),
		middleware.Secure(security),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		}),
		middleware.Locale(tr),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize, map[string]int64{
			// multipart framing on top of the largest accepted file
			router.ReportUploadPath: cfg.Storage.MaxUploadSize + 1<<20,
		}),
	)
	return engine
}
