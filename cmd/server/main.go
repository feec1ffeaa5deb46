package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/auto-service-desk/internal/audit"
	"github.com/iliyamo/auto-service-desk/internal/config"
	"github.com/iliyamo/auto-service-desk/internal/database"
	"github.com/iliyamo/auto-service-desk/internal/handler"
	"github.com/iliyamo/auto-service-desk/internal/middleware"
	"github.com/iliyamo/auto-service-desk/internal/queue"
	"github.com/iliyamo/auto-service-desk/internal/repository"
	"github.com/iliyamo/auto-service-desk/internal/router"
)

func main() {
	// .env is optional; real deployments set variables in the environment
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	// Repositories
	requests := repository.NewServiceRequestRepo(db)
	parts := repository.NewPartsRepo(db)
	history := repository.NewHistoryRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	customers := repository.NewCustomerRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	employees := repository.NewEmployeeRepo(db)
	inventory := repository.NewInventoryRepo(db)
	insurance := repository.NewInsuranceRepo(db)
	feedback := repository.NewFeedbackRepo(db)
	dashboard := repository.NewDashboardRepo(db)

	recorder := audit.NewRecorder(history)

	// Background consumer mirrors lifecycle events into logs/service.log.
	go func() {
		if err := queue.StartLifecycleConsumer(); err != nil {
			log.Printf("lifecycle consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)

	api := e.Group("/api")
	api.Use(middleware.NewResponseCache(config.LoadCacheConfig(), rdb))
	router.RegisterServiceRoutes(api,
		handler.NewServiceHandler(requests, parts, history, recorder),
		handler.NewInvoiceHandler(invoices),
		handler.NewHistoryHandler(history),
		handler.NewDashboardHandler(dashboard),
	)
	router.RegisterCRUDRoutes(api,
		handler.NewCustomerHandler(customers),
		handler.NewVehicleHandler(vehicles),
		handler.NewEmployeeHandler(employees),
		handler.NewInventoryHandler(inventory),
		handler.NewInsuranceHandler(insurance),
		handler.NewFeedbackHandler(feedback),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	// Drain in-flight audit writes before shutting the server down.
	recorder.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
