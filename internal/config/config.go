package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var errEnvVarNotFound error = errors.New("environment variable not found")

const (
	apiPortEnvKey      = "API_PORT"
	ethNodeEnvKey      = "ETH_NODE_URL"
	dbConnEnvKey       = "DB_CONNECTION_URL"
	jwtSecretEnvKey    = "JWT_SECRET"
	vaultAddrEnvKey    = "VAULT_ADDRESS"
	chainIDsEnvKey     = "CHAIN_IDS"
	protocolFeeEnvKey  = "PROTOCOL_FEE_BPS"
	leagueFeeEnvKey    = "LEAGUE_FEE_BPS"
	weeklyBudgetEnvKey = "WEEKLY_BUDGET_BPS"
	finalizeCronEnvKey = "FINALIZE_CRON"
	sweepCronEnvKey    = "SWEEP_CRON"
)

const (
	defaultProtocolFeeBps  = 200
	defaultLeagueFeeBps    = 75
	defaultWeeklyBudgetBps = 6000
	defaultFinalizeCron    = "@hourly"
	defaultSweepCron       = "@daily"
)

type App struct {
	Port            string
	NodeURL         string
	DBConnectionURL string
	JWTSecret       string
	VaultAddress    string
	ChainIDs        []int64

	ProtocolFeeBps  int64
	LeagueFeeBps    int64
	WeeklyBudgetBps int64
	// MonthlyBudgetBps is the complement of the weekly split.
	MonthlyBudgetBps int64

	FinalizeCron string
	SweepCron    string
}

func NewApp() (App, error) {

	port, ok := os.LookupEnv(apiPortEnvKey)
	if !ok {
		return App{}, fmt.Errorf("%w: %s", errEnvVarNotFound, apiPortEnvKey)
	}

	nodeURL, ok := os.LookupEnv(ethNodeEnvKey)
	if !ok {
		return App{}, fmt.Errorf("%w: %s", errEnvVarNotFound, ethNodeEnvKey)
	}

	dbConn, ok := os.LookupEnv(dbConnEnvKey)
	if !ok {
		return App{}, fmt.Errorf("%w: %s", errEnvVarNotFound, dbConnEnvKey)
	}

	jwtSecret, ok := os.LookupEnv(jwtSecretEnvKey)
	if !ok {
		return App{}, fmt.Errorf("%w: %s", errEnvVarNotFound, jwtSecretEnvKey)
	}

	vaultAddr, ok := os.LookupEnv(vaultAddrEnvKey)
	if !ok {
		return App{}, fmt.Errorf("%w: %s", errEnvVarNotFound, vaultAddrEnvKey)
	}

	chainIDs, err := parseChainIDs(os.Getenv(chainIDsEnvKey))
	if err != nil {
		return App{}, fmt.Errorf("parse %s: %w", chainIDsEnvKey, err)
	}

	protocolFee, err := bpsFromEnv(protocolFeeEnvKey, defaultProtocolFeeBps)
	if err != nil {
		return App{}, err
	}

	leagueFee, err := bpsFromEnv(leagueFeeEnvKey, defaultLeagueFeeBps)
	if err != nil {
		return App{}, err
	}

	weeklyBudget, err := bpsFromEnv(weeklyBudgetEnvKey, defaultWeeklyBudgetBps)
	if err != nil {
		return App{}, err
	}

	return App{
		Port:             port,
		NodeURL:          nodeURL,
		DBConnectionURL:  dbConn,
		JWTSecret:        jwtSecret,
		VaultAddress:     vaultAddr,
		ChainIDs:         chainIDs,
		ProtocolFeeBps:   protocolFee,
		LeagueFeeBps:     leagueFee,
		WeeklyBudgetBps:  weeklyBudget,
		MonthlyBudgetBps: 10000 - weeklyBudget,
		FinalizeCron:     envOrDefault(finalizeCronEnvKey, defaultFinalizeCron),
		SweepCron:        envOrDefault(sweepCronEnvKey, defaultSweepCron),
	}, nil
}

func parseChainIDs(raw string) ([]int64, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: %s", errEnvVarNotFound, chainIDsEnvKey)
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chain id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func bpsFromEnv(key string, fallback int64) (int64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	bps, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	// fee inversion divides by (10000 - bps), so 10000 itself is invalid
	if bps < 0 || bps >= 10000 {
		return 0, fmt.Errorf("%s out of range: %d", key, bps)
	}
	return bps, nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
