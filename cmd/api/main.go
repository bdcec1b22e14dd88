package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-stay/internal/app"
	"github.com/cimillas/ultimate-stay/internal/clock"
	"github.com/cimillas/ultimate-stay/internal/config"
	"github.com/cimillas/ultimate-stay/internal/logging"
	"github.com/cimillas/ultimate-stay/internal/pricing"
	"github.com/cimillas/ultimate-stay/internal/storage/cache"
	"github.com/cimillas/ultimate-stay/internal/storage/memory"
	"github.com/cimillas/ultimate-stay/internal/storage/postgres"
	"github.com/cimillas/ultimate-stay/internal/storage/resilient"
	transporthttp "github.com/cimillas/ultimate-stay/internal/transport/http"
	"github.com/cimillas/ultimate-stay/migrations"
)

const shutdownTimeout = 10 * time.Second

// stores is the persistence pair the services run on.
type stores struct {
	inventory    cache.Inventory
	reservations app.ReservationRepository
	health       transporthttp.StorageStateReporter
	close        func()
}

func main() {
	bootLog := logrus.New()
	config.LoadEnvFile(bootLog)

	cfg, err := config.Load(bootLog)
	if err != nil {
		bootLog.WithError(err).Fatal("load config")
	}

	log, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	}, os.Stdout)
	if err != nil {
		bootLog.WithError(err).Fatal("configure logging")
	}
	defer func() {
		if err := closeLog(); err != nil {
			bootLog.WithError(err).Error("close log file")
		}
	}()

	st, err := openStores(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open storage")
	}
	defer st.close()

	inventory := cache.NewInventoryCache(st.inventory, cfg.InventoryCacheTTL)
	defer inventory.Stop()

	calc, err := pricing.NewCalculator(cfg.Pricing)
	if err != nil {
		log.WithError(err).Fatal("pricing policy")
	}
	clk := clock.NewSystem(nil)

	stays := app.NewAvailabilityService(inventory, st.reservations, calc, clk,
		app.WithMaxNights(cfg.MaxNights),
		app.WithHorizonDays(cfg.HorizonDays),
		app.WithLogger(log),
	)
	search := app.NewSearchService(inventory, st.reservations, stays, calc, clk,
		app.WithSearchConcurrency(cfg.SearchConcurrency),
		app.WithSearchLogger(log),
	)

	handler := transporthttp.NewRouter(transporthttp.Deps{
		Search:      search,
		Stays:       stays,
		Admin:       app.NewAdminService(inventory),
		Log:         log,
		Storage:     st.health,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.WithFields(logrus.Fields{"port": cfg.Port, "storage": cfg.Storage}).Info("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}

func openStores(cfg config.Config, log logrus.FieldLogger) (stores, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("using in-memory storage; reservations are lost on restart")
		store := memory.NewStore()
		return stores{inventory: store, reservations: store, close: func() {}}, nil
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	if err := pool.Ping(startupCtx); err != nil {
		pool.Close()
		return stores{}, err
	}
	if err := migrations.Apply(startupCtx, pool, log); err != nil {
		pool.Close()
		return stores{}, err
	}

	breaker := resilient.NewBreaker(resilient.Settings{
		Name:        "postgres",
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
	}, log)
	return stores{
		inventory:    resilient.NewInventoryStore(postgres.NewInventoryRepository(pool), breaker),
		reservations: resilient.NewReservationStore(postgres.NewReservationRepository(pool), breaker),
		health:       breaker,
		close:        pool.Close,
	}, nil
}
