// FundScope server entrypoint.
//
// Startup order:
//  1. Load configuration from environment (.env supported)
//  2. Initialize structured logging
//  3. Open the three databases (funds, portfolio, cache) and their schemas
//  4. Wire repositories, clients and services
//  5. Register the scheduled fund refresh job
//  6. Start the HTTP server
//  7. Wait for SIGINT/SIGTERM and shut down gracefully
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fundscope/internal/clientdata"
	"fundscope/internal/clients/mfapi"
	"fundscope/internal/config"
	"fundscope/internal/database"
	"fundscope/internal/modules/funds"
	fundshandlers "fundscope/internal/modules/funds/handlers"
	"fundscope/internal/modules/virtualportfolio"
	virtualportfoliohandlers "fundscope/internal/modules/virtualportfolio/handlers"
	"fundscope/internal/modules/watchlist"
	watchlisthandlers "fundscope/internal/modules/watchlist/handlers"
	"fundscope/internal/scheduler"
	"fundscope/internal/server"
	"fundscope/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting FundScope")

	// Databases
	fundsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "funds.db"),
		Profile: database.ProfileStandard,
		Name:    "funds",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open funds database")
	}
	defer fundsDB.Close()

	portfolioDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "portfolio.db"),
		Profile: database.ProfileStandard,
		Name:    "portfolio",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open portfolio database")
	}
	defer portfolioDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	// Repositories
	cacheRepo := clientdata.NewRepository(cacheDB.Conn())
	fundRepo := funds.NewRepository(fundsDB.Conn(), log)
	watchlistRepo := watchlist.NewRepository(portfolioDB.Conn(), log)
	portfolioRepo := virtualportfolio.NewRepository(portfolioDB.Conn(), log)

	for name, init := range map[string]func() error{
		"cache":             cacheRepo.InitSchema,
		"funds":             fundRepo.InitSchema,
		"watchlist":         watchlistRepo.InitSchema,
		"virtual portfolio": portfolioRepo.InitSchema,
	} {
		if err := init(); err != nil {
			log.Fatal().Err(err).Str("schema", name).Msg("Failed to initialize schema")
		}
	}

	// Clients and services
	providerClient := mfapi.NewClient(cfg.ProviderBaseURL, cacheRepo, log)
	fundService := funds.NewService(fundRepo, providerClient, cfg.HistoryKeepDays, log)
	syncService := funds.NewSyncService(fundService, fundRepo, log)
	watchlistService := watchlist.NewService(watchlistRepo, fundService, log)
	portfolioService := virtualportfolio.NewService(portfolioRepo, fundService, log)

	// Scheduled jobs
	sched := scheduler.New(log)
	if cfg.RefreshEnabled {
		job := scheduler.NewRefreshFundsJob(syncService, log)
		if err := sched.AddJob(cfg.RefreshSchedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Failed to register refresh job")
		}
	}
	if err := sched.AddJob("0 30 2 * * *", clientdata.NewCleanupJob(cacheRepo, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Log:               log,
		Port:              cfg.Port,
		DevMode:           cfg.DevMode,
		FundsHandler:      fundshandlers.NewHandler(fundService, log),
		WatchlistHandler:  watchlisthandlers.NewHandler(watchlistRepo, watchlistService, log),
		PortfoliosHandler: virtualportfoliohandlers.NewHandler(portfolioService, log),
		CalcHandlers:      server.NewCalcHandlers(fundService, log),
		SystemHandlers: server.NewSystemHandlers(log, cfg.DataDir,
			[]*database.DB{fundsDB, portfolioDB, cacheDB}, syncService),
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
