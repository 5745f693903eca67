package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hotpotspot/franchise-ledger/internal/adapter"
	"github.com/hotpotspot/franchise-ledger/internal/api/middleware"
	"github.com/hotpotspot/franchise-ledger/internal/api/rest"
	"github.com/hotpotspot/franchise-ledger/internal/api/server"
	"github.com/hotpotspot/franchise-ledger/internal/claim"
	"github.com/hotpotspot/franchise-ledger/internal/config"
	"github.com/hotpotspot/franchise-ledger/internal/consensus"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
	"github.com/hotpotspot/franchise-ledger/internal/logger"
	"github.com/hotpotspot/franchise-ledger/internal/monitor"
	"github.com/hotpotspot/franchise-ledger/internal/providers/jetstream"
	"github.com/hotpotspot/franchise-ledger/internal/purchase"
	"github.com/hotpotspot/franchise-ledger/internal/registry"
	"github.com/hotpotspot/franchise-ledger/internal/store"
	"github.com/hotpotspot/franchise-ledger/internal/sweeper"
)

var envFile = flag.String("env", "", "Path to environment file")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "ledgerd",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting franchise ledger daemon")

	// Build the in-memory ledger
	ledgerCfg := ledger.DefaultConfig()
	ledgerCfg.MainOwnerWallet = cfg.MainOwnerWallet
	ledgerCfg.CharityWallet = cfg.CharityWallet
	ledgerCfg.Difficulty = cfg.Difficulty
	ledgerCfg.MinStake = domain.Amount(cfg.MinStake)
	ledgerCfg.BlockReward = domain.Amount(cfg.BlockReward)

	l, err := ledger.New(ledgerCfg, adapter.NewClock())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create ledger", zap.Error(err))
	}

	// Connect to the durable store and recover the latest checkpoint
	var dataStore store.Store
	if cfg.PostgresDSN != "" {
		pg, err := store.NewPGStore(cfg.PostgresDSN)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
		}
		dataStore = pg

		snap, err := dataStore.LatestSnapshot(ctx)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to load latest snapshot", zap.Error(err))
		}
		if snap != nil {
			if err := l.Restore(snap); err != nil {
				logger.FatalCtx(ctx, "Failed to restore ledger from snapshot", zap.Error(err))
			}
			logger.InfoCtx(ctx, "Restored ledger from snapshot",
				zap.Int("holders", len(snap.Holders)),
				zap.Int("blocks", len(snap.Blocks)))
		}
	} else {
		logger.WarnCtx(ctx, "Postgres DSN not configured, running without durable storage")
	}

	// Connect the kitchen order publisher
	var dispatcher purchase.KitchenDispatcher
	if cfg.NATSURL != "" {
		publisher, err := jetstream.NewPublisher(adapter.NewNatsJetStream(), adapter.NewJSON(), cfg.NATSURL)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATSURL))
		}
		defer publisher.Close()
		dispatcher = publisher
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATSURL))
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, kitchen orders will not be dispatched")
	}

	// Load the POS terminal whitelist
	whitelist := registry.NewPOSWhitelist(adapter.NewFileSystem())
	if cfg.POSWhitelistFile != "" {
		if err := whitelist.Load(cfg.POSWhitelistFile); err != nil {
			logger.FatalCtx(ctx, "Failed to load POS whitelist",
				zap.Error(err),
				zap.String("path", cfg.POSWhitelistFile))
		}
		logger.InfoCtx(ctx, "Loaded POS whitelist",
			zap.String("path", cfg.POSWhitelistFile),
			zap.Int("terminals", len(whitelist.Terminals())))
	} else {
		logger.WarnCtx(ctx, "POS whitelist not configured, terminals must be added via the admin API")
	}

	// Wire the services
	random := adapter.NewRandom()
	engine := purchase.NewEngine(l, random, whitelist, dispatcher)
	defer engine.Stop()
	claims := claim.NewService(l, random)
	mon := monitor.New(l)
	validators := consensus.NewRegistry(ledgerCfg.MinStake)
	sealer := consensus.NewSealer(l, validators, random)

	// Annual redistribution sweeper, run in-process
	sweep := sweeper.NewRedistributionSweeper(l, cfg.SweepInterval)
	go func(s sweeper.Sweeper) {
		if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err, zap.String("component", s.Name()))
		}
	}(sweep)

	// Periodic block sealing
	go runSealLoop(ctx, sealer, dataStore, cfg.SealInterval)

	// Periodic durable checkpoints
	if dataStore != nil {
		go runPersistLoop(ctx, l, dataStore, cfg.SnapshotInterval)
	}

	// Create and start server
	handler := rest.NewHandler(l, engine, claims, mon, sealer, validators, sweep, whitelist)
	srv := server.New(cfg.Port, cfg.Debug, handler, middleware.AuthConfig{
		JWTPublicKey: cfg.JWTPublicKey,
		APIKeys:      cfg.APIKeys,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()
	logger.InfoCtx(ctx, "API server listening", zap.Int("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Shutdown context with timeout (don't use the canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}
	if err := sweep.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", sweep.Name()))
	}

	// Final checkpoint before exit
	if dataStore != nil {
		if err := dataStore.SaveSnapshot(shutdownCtx, l.Snapshot()); err != nil {
			logger.ErrorCtx(shutdownCtx, err, zap.String("component", "store"))
		}
	}

	logger.Info("Ledger daemon stopped")
}

// runSealLoop periodically seals pending transactions into blocks. Sealed
// blocks are persisted when a store is configured.
func runSealLoop(ctx context.Context, sealer *consensus.Sealer, dataStore store.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			block, err := sealer.MineBlock(ctx)
			if err != nil {
				if errors.Is(err, domain.ErrNoPendingTransactions) || errors.Is(err, domain.ErrNoValidators) {
					continue
				}
				logger.ErrorCtx(ctx, err, zap.String("component", "sealer"))
				continue
			}
			logger.InfoCtx(ctx, "Sealed block",
				zap.Uint64("index", block.Index),
				zap.Int("transactions", len(block.Transactions)))

			if dataStore != nil {
				if err := dataStore.SaveBlock(ctx, block); err != nil {
					logger.ErrorCtx(ctx, err, zap.Uint64("index", block.Index))
				}
			}
		}
	}
}

// runPersistLoop checkpoints the ledger and flushes new audit records to the
// store. Transfers and distributions are append-only, so a high-water mark
// per slice is enough to avoid rewriting rows.
func runPersistLoop(ctx context.Context, l *ledger.Ledger, dataStore store.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var savedTransfers, savedDistributions int
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := l.Snapshot()
			if err := dataStore.SaveSnapshot(ctx, snap); err != nil {
				logger.ErrorCtx(ctx, err, zap.String("component", "store"))
				continue
			}

			for _, rec := range snap.Transfers[savedTransfers:] {
				if err := dataStore.SaveTransfer(ctx, rec); err != nil {
					logger.ErrorCtx(ctx, err, zap.String("transferID", rec.TransferID))
					break
				}
				savedTransfers++
			}
			for _, d := range snap.Distributions[savedDistributions:] {
				if err := dataStore.SaveDistribution(ctx, d); err != nil {
					logger.ErrorCtx(ctx, err, zap.String("distributionID", d.DistributionID))
					break
				}
				savedDistributions++
			}
		}
	}
}
