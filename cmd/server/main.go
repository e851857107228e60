package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/tn-gestion/backend/internal/application/catalog"
	documentapp "github.com/tn-gestion/backend/internal/application/document"
	financeapp "github.com/tn-gestion/backend/internal/application/finance"
	hrapp "github.com/tn-gestion/backend/internal/application/hr"
	partnerapp "github.com/tn-gestion/backend/internal/application/partner"
	printingapp "github.com/tn-gestion/backend/internal/application/printing"
	projectapp "github.com/tn-gestion/backend/internal/application/project"
	reportapp "github.com/tn-gestion/backend/internal/application/report"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/hr"
	"github.com/tn-gestion/backend/internal/domain/printing"
	"github.com/tn-gestion/backend/internal/infrastructure/cache"
	"github.com/tn-gestion/backend/internal/infrastructure/config"
	"github.com/tn-gestion/backend/internal/infrastructure/logger"
	"github.com/tn-gestion/backend/internal/infrastructure/migration"
	"github.com/tn-gestion/backend/internal/infrastructure/persistence"
	printinfra "github.com/tn-gestion/backend/internal/infrastructure/printing"
	"github.com/tn-gestion/backend/internal/infrastructure/storage"
	"github.com/tn-gestion/backend/internal/infrastructure/telemetry"
	"github.com/tn-gestion/backend/internal/interfaces/http/handler"
	"github.com/tn-gestion/backend/internal/interfaces/http/middleware"
	"github.com/tn-gestion/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}

	// Export logs through OTLP when asked; the console core is kept
	var logProvider *telemetry.LoggerProvider
	if cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled {
		logProvider, err = telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
		if err != nil {
			log.Warn("OTLP log export disabled", zap.Error(err))
		} else {
			otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, logProvider, logger.ParseLevel(cfg.Log.Level))
			if bridged, err := logger.New(logCfg, otelCore); err == nil {
				log = bridged
			}
		}
	}
	defer logger.Sync(log)

	log.Info("Starting gestion backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold),
		logger.WithSQLValues(cfg.Database.LogSQLValues),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:    true,
			LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			log.Warn("Database tracing disabled", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		migrator, err := migration.New(sqlDB, log)
		if err != nil {
			log.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := migrator.Up(); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	metrics := telemetry.NewMetrics()
	if err := metrics.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
		log.Warn("Database pool metrics disabled", zap.Error(err))
	}

	// Repositories
	partnerRepo := persistence.NewGormPartnerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	payslipRepo := persistence.NewGormPayslipRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)

	// Application services
	calc := fiscal.NewCalculator(fiscal.Settings{
		FODECRate:   cfg.Fiscal.FODECRate,
		StampAmount: cfg.Fiscal.StampAmount,
	})
	customerService := partnerapp.NewCustomerService(partnerRepo, documentRepo)
	supplierService := partnerapp.NewSupplierService(partnerRepo, documentRepo)
	productService := catalogapp.NewProductService(productRepo, calc)
	documentService := documentapp.NewDocumentService(
		documentRepo,
		partnerRepo,
		persistence.NewGormDocumentTransactionScope(db.DB),
		calc,
		documentapp.Options{
			InvoiceDueDays:         cfg.Fiscal.InvoiceDueDays,
			QuoteValidityDays:      cfg.Fiscal.QuoteValidityDays,
			DefaultWithholdingRate: cfg.Fiscal.DefaultWithholdingRate,
		},
		metrics,
		log,
	)
	expenseService := financeapp.NewExpenseService(expenseRepo, partnerRepo, projectRepo, log)
	employeeService := hrapp.NewEmployeeService(employeeRepo, payslipRepo)
	payslipService := hrapp.NewPayslipService(payslipRepo, employeeRepo, hr.Rates{
		CNSSEmployee: cfg.HR.CNSSEmployeeRate,
		CNSSEmployer: cfg.HR.CNSSEmployerRate,
	}, log)
	projectService := projectapp.NewProjectService(projectRepo, partnerRepo)
	reportService := reportapp.NewReportService(reportRepo, expenseRepo, payslipRepo, projectRepo)

	printService, closePrinting := setupPrinting(ctx, cfg, documentRepo, calc, metrics, log)
	defer closePrinting()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up validator", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID so every later log line and error carries it
	// 2. Recovery
	// 3. Request logging, skipping probes
	// 4. Tracing, then span enrichment
	// 5. Prometheus HTTP metrics
	// 6. Security headers, CORS, body limit
	// 7. Rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health", cfg.Metrics.Path))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanAttributes(), middleware.SpanErrorMarker())
	if cfg.Metrics.Enabled {
		engine.Use(middleware.HTTPMetrics(metrics, "/health", cfg.Metrics.Path))
	}
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, sqlDB)
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = metrics.Handler()
	}
	router.RegisterRoot(engine, systemHandler, metricsHandler, cfg.Metrics.Path)

	// locally stored PDFs are served by the API itself
	if cfg.Storage.Driver == storage.DriverLocal && strings.HasPrefix(cfg.Storage.PublicBaseURL, "/") {
		engine.Static(cfg.Storage.PublicBaseURL, cfg.Storage.LocalDir)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(r, router.Handlers{
		Customers: handler.NewPartnerHandler(customerService),
		Suppliers: handler.NewPartnerHandler(supplierService),
		Products:  handler.NewProductHandler(productService),
		Documents: handler.NewDocumentHandler(documentService, printService),
		Tools:     handler.NewToolsHandler(printService),
		Expenses:  handler.NewExpenseHandler(expenseService),
		HR:        handler.NewHRHandler(employeeService, payslipService),
		Projects:  handler.NewProjectHandler(projectService),
		Reports:   handler.NewReportHandler(reportService),
		System:    systemHandler,
	})
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}
	if logProvider != nil {
		if err := logProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to flush logs", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// setupPrinting builds the PDF pipeline: templates, headless Chrome, the
// configured object storage and the rendition cache. The returned func
// releases the browser and the cache.
func setupPrinting(
	ctx context.Context,
	cfg *config.Config,
	documents *persistence.GormDocumentRepository,
	calc *fiscal.Calculator,
	metrics *telemetry.Metrics,
	log *zap.Logger,
) (*printingapp.PrintService, func()) {
	engine, err := printinfra.NewTemplateEngine(cfg.Printing.TemplateDir)
	if err != nil {
		log.Fatal("Failed to load print templates", zap.Error(err))
	}

	renderer, err := printinfra.NewChromedpRenderer(printinfra.ChromedpConfig{
		ExecPath:       cfg.Printing.ChromePath,
		RemoteURL:      cfg.Printing.ChromeURL,
		DefaultTimeout: cfg.Printing.Timeout,
		NoSandbox:      true,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}

	pdfStorage, err := storage.NewPDFStorage(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize PDF storage", zap.Error(err))
	}
	log.Info("PDF storage ready", zap.String("driver", cfg.Storage.Driver))

	pdfCache, err := cache.NewPDFCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize PDF cache", zap.Error(err))
	}

	paper, err := printing.ParsePaperSize(cfg.Printing.DefaultPaperSize)
	if err != nil {
		log.Warn("Invalid default paper size, using A4", zap.String("paper", cfg.Printing.DefaultPaperSize))
		paper = printing.PaperSizeA4
	}

	svc := printingapp.NewPrintService(
		documents,
		engine,
		printinfra.NewDocumentDataBuilder(printinfra.CompanyFromConfig(cfg.Company)),
		renderer,
		pdfStorage,
		pdfCache,
		calc,
		metrics,
		log,
		printingapp.Options{
			DefaultPaperSize: paper,
			CacheTTL:         cfg.Printing.CacheTTL,
			RenderTimeout:    cfg.Printing.Timeout,
		},
	)

	return svc, func() {
		if err := renderer.Close(); err != nil {
			log.Warn("Failed to close PDF renderer", zap.Error(err))
		}
		if err := pdfCache.Close(); err != nil {
			log.Warn("Failed to close PDF cache", zap.Error(err))
		}
	}
}
