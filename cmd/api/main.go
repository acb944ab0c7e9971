package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/config"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/database"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/memory"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/handler"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/middleware"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/routes"
	"github.com/sangkips/pharmacy-pos/internal/scheduler"
	"github.com/sangkips/pharmacy-pos/pkg/logger"
	"github.com/sangkips/pharmacy-pos/pkg/metrics"
	"github.com/sangkips/pharmacy-pos/pkg/printer"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"go.uber.org/zap"
)

// stores groups the repositories of whichever backend DB_DRIVER selects
type stores struct {
	products      domainRepo.ProductRepository
	inventory     domainRepo.InventoryRepository
	customers     domainRepo.CustomerRepository
	bills         domainRepo.BillRepository
	orders        domainRepo.OrderRepository
	users         domainRepo.UserRepository
	organizations domainRepo.OrganizationRepository
	idempotency   domainRepo.IdempotencyRepository
	transactor    domainRepo.Transactor
}

func main() {
	cfg := config.Load()

	log := logger.Must(logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.App.Env,
		ServiceName: cfg.App.Name,
	}))
	defer func() { _ = log.Sync() }()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStores(cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	if cfg.Database.Seed {
		_, err := database.SeedDemoData(context.Background(), database.SeedRepositories{
			Organizations: st.organizations,
			Users:         st.users,
			Products:      st.products,
			Inventory:     st.inventory,
			Orders:        st.orders,
		}, database.SeedOptions{
			UserEmail:    cfg.Database.SeedUserEmail,
			UserPassword: cfg.Database.SeedUserPassword,
		}, logger.Named(log, "seed"))
		if err != nil {
			log.Warn("failed to seed demo data", zap.Error(err))
		}
	}

	appMetrics := metrics.New("pharmacy_pos")
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	billNumbers, err := service.NewSnowflakeBillNumbers(cfg.Billing.SnowflakeNode)
	if err != nil {
		log.Fatal("failed to create bill number generator", zap.Error(err))
	}

	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Warn("failed to initialize printer, receipts will not print", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	// Initialize services
	stockService := service.NewStockService(st.inventory)
	customerService := service.NewCustomerService(st.customers)
	billingService := service.NewBillingService(
		service.BillingRepositories{
			Products:   st.products,
			Inventory:  st.inventory,
			Bills:      st.bills,
			Transactor: st.transactor,
		},
		stockService,
		customerService,
		billNumbers,
		service.BillingOptions{
			PostingMode: cfg.Billing.PostingMode,
			TaxRate:     cfg.Billing.GSTRate,
		},
		logger.Named(log, "billing"),
		appMetrics,
	)
	receiptService := service.NewReceiptService(billingService, thermalPrinter, service.ReceiptOptions{
		Header: entity.ReceiptHeader{
			StoreName: cfg.Billing.StoreName,
			Address:   cfg.Billing.StoreAddress,
			Phone:     cfg.Billing.StorePhone,
		},
		TaxRate:     cfg.Billing.GSTRate,
		PrinterType: cfg.Printer.Type,
		CharWidth:   cfg.Printer.CharWidth,
	}, logger.Named(log, "receipt"), appMetrics)
	dashboardService := service.NewDashboardService(st.orders, st.products, stockService)
	authService := service.NewAuthService(st.users, jwtManager, logger.Named(log, "auth"))

	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Billing:   handler.NewBillingHandler(billingService, receiptService),
		Customer:  handler.NewCustomerHandler(customerService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Printer:   handler.NewPrinterHandler(receiptService),
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: st.idempotency,
		Metrics:         appMetrics,
		Logger:          logger.Named(log, "http"),
		RateLimiter:     rateLimiter,
	})

	sched := scheduler.NewScheduler(cfg.Scheduler.IdempotencyPurgeCron, st.idempotency, appMetrics, logger.Named(log, "scheduler"))
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting server",
			zap.String("port", cfg.App.Port),
			zap.String("env", cfg.App.Env),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("posting_mode", billingService.PostingMode()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStores(cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.Database.Driver == "memory" {
		mem := memory.NewStore()
		return &stores{
			products:      mem.Products(),
			inventory:     mem.Inventory(),
			customers:     mem.Customers(),
			bills:         mem.Bills(),
			orders:        mem.Orders(),
			users:         mem.Users(),
			organizations: mem.Organizations(),
			idempotency:   mem.Idempotency(),
			transactor:    mem.Transactor(),
		}, nil
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.IsProduction(), logger.Named(log, "database"))
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, log); err != nil {
		return nil, err
	}

	return &stores{
		products:      repository.NewProductRepository(db),
		inventory:     repository.NewInventoryRepository(db),
		customers:     repository.NewCustomerRepository(db),
		bills:         repository.NewBillRepository(db),
		orders:        repository.NewOrderRepository(db),
		users:         repository.NewUserRepository(db),
		organizations: repository.NewOrganizationRepository(db),
		idempotency:   repository.NewIdempotencyRepository(db),
		transactor:    repository.NewTransactor(db),
	}, nil
}
