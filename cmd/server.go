package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap/zapcore"

	"memebattles/internal/config"
	"memebattles/internal/db"
	"memebattles/internal/http/handler"
	"memebattles/internal/http/handler/middleware"
	"memebattles/internal/http/payload"
	"memebattles/internal/http/server"
	"memebattles/internal/league/claim"
	"memebattles/internal/league/fees"
	"memebattles/internal/league/finalize"
	"memebattles/internal/league/leaderboard"
	"memebattles/internal/league/operator"
	"memebattles/internal/league/pool"
	"memebattles/internal/repository"
	"memebattles/internal/scheduler"
	"memebattles/internal/vault"
	"memebattles/pkg/jwt"
	"memebattles/pkg/log"
)

const poolCacheTTL = time.Minute

func Start() error {
	logger := log.NewZapLogger("memebattles", zapcore.InfoLevel)

	config, err := config.NewApp()
	if err != nil {
		logger.Errorw("failed to create config", "error", err)
		return err
	}

	dbConn, err := db.NewPostgresDB(config.DBConnectionURL, logger)
	if err != nil {
		logger.Errorw("failed to connect to database", "error", err)
		return err
	}

	// jwt service
	jwtService := jwt.NewJWTService([]byte(config.JWTSecret))

	// repository
	repo := repository.NewLeagueRepository(dbConn, logger)
	if err := repo.MigrateAndSeed(); err != nil {
		logger.Errorw("failed to migrate tables to database", "error", err)
		return err
	}

	clients := make(map[int64]vault.EthClient, len(config.ChainIDs))
	for _, chainID := range config.ChainIDs {
		client, err := ethclient.Dial(config.NodeURL)
		if err != nil {
			logger.Errorw("node connection failed", "error", err, "chain_id", chainID)
			return err
		}
		clients[chainID] = client
	}
	vaultClient := vault.NewClient(logger, config.VaultAddress, clients)

	clock := clockwork.NewRealClock()

	// prize accounting
	inverter := fees.NewInverter(logger, config.ProtocolFeeBps, config.LeagueFeeBps)
	poolCache := pool.NewCache(clock, poolCacheTTL)
	calculator := pool.NewCalculator(logger, repo, inverter, pool.Config{
		ProtocolFeeBps:   config.ProtocolFeeBps,
		LeagueFeeBps:     config.LeagueFeeBps,
		WeeklyBudgetBps:  config.WeeklyBudgetBps,
		MonthlyBudgetBps: config.MonthlyBudgetBps,
	}, poolCache)
	boards := leaderboard.NewEngine(logger, repo)

	// settlement
	coordinator := claim.NewCoordinator(logger, repo, vaultClient, clock)
	operators := operator.NewService(logger, repo, jwtService)

	// batch jobs
	finalizer := finalize.NewFinalizer(logger, repo, boards, calculator, poolCache, config.ChainIDs)
	sweeper := finalize.NewSweeper(logger, repo, config.ChainIDs)
	jobs := scheduler.New(logger, finalizer, sweeper, clock)
	if err := jobs.Start(config.FinalizeCron, config.SweepCron); err != nil {
		logger.Errorw("failed to start scheduler", "error", err)
		return err
	}
	defer jobs.Stop()

	// handler
	leagueHlr := handler.NewLeagueHandler(
		logger,
		payload.DecodeValidator{},
		coordinator,
		calculator,
		boards,
		operators,
		clock)

	// middleware
	mux := http.NewServeMux()
	hdlr := middleware.NewLoggingMiddleware(logger).Logging(mux)
	hdlr = middleware.NewRequestIDMiddleware().RequestID(hdlr)

	// register routes
	mux.HandleFunc(handler.Authenticate, leagueHlr.HandleAuthenticate)
	mux.HandleFunc(handler.IssueNonce, leagueHlr.HandleIssueNonce)
	mux.HandleFunc(handler.SettleClaim, leagueHlr.HandleClaim)
	mux.HandleFunc(handler.RecordPayout, leagueHlr.HandleRecord)
	mux.HandleFunc(handler.OperatorPayout, leagueHlr.HandleOperatorPayout)
	mux.HandleFunc(handler.GetEpoch, leagueHlr.HandleGetEpoch)
	mux.HandleFunc(handler.GetPool, leagueHlr.HandleGetPool)
	mux.HandleFunc(handler.GetLeaderboard, leagueHlr.HandleGetLeaderboard)
	mux.HandleFunc(handler.GetUnpaid, leagueHlr.HandleGetUnpaid)

	srv := server.NewHTTP(logger, hdlr, config.Port)
	return run(srv)
}

func run(server *server.HTTPServer) error {
	// expect a signal to gracefully shutdown the server
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	errChan := server.Run()

	var err error
	select {
	case <-sig:
	case err = <-errChan:
	}

	sdErr := server.Shutdown()
	if err == http.ErrServerClosed && sdErr != nil {
		return fmt.Errorf("server shutdown: %w", sdErr)
	}

	return err
}
