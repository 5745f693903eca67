package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the daemon configuration, loaded from environment
// variables with the LEDGER_ prefix. A .env file is honored when present.
type Config struct {
	Debug        bool
	Port         int
	SentryDSN    string
	JWTPublicKey string
	APIKeys      []string

	PostgresDSN string
	NATSURL     string

	POSWhitelistFile string

	MainOwnerWallet string
	CharityWallet   string

	Difficulty  int
	MinStake    uint64
	BlockReward uint64

	SweepInterval    time.Duration
	SnapshotInterval time.Duration
	SealInterval     time.Duration
}

// Load reads configuration from the environment. envFile, when non-empty,
// is loaded first without overriding variables already set.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("debug", false)
	v.SetDefault("port", 8080)
	v.SetDefault("difficulty", 4)
	v.SetDefault("min_stake", 1000)
	v.SetDefault("block_reward", 500)
	v.SetDefault("sweep_interval", 24*time.Hour)
	v.SetDefault("snapshot_interval", 5*time.Minute)
	v.SetDefault("seal_interval", 10*time.Second)

	cfg := &Config{
		Debug:            v.GetBool("debug"),
		Port:             v.GetInt("port"),
		SentryDSN:        v.GetString("sentry_dsn"),
		JWTPublicKey:     v.GetString("jwt_public_key"),
		APIKeys:          splitNonEmpty(v.GetString("api_keys")),
		PostgresDSN:      v.GetString("postgres_dsn"),
		NATSURL:          v.GetString("nats_url"),
		POSWhitelistFile: v.GetString("pos_whitelist_file"),
		MainOwnerWallet:  v.GetString("main_owner_wallet"),
		CharityWallet:    v.GetString("charity_wallet"),
		Difficulty:       v.GetInt("difficulty"),
		MinStake:         v.GetUint64("min_stake"),
		BlockReward:      v.GetUint64("block_reward"),
		SweepInterval:    v.GetDuration("sweep_interval"),
		SnapshotInterval: v.GetDuration("snapshot_interval"),
		SealInterval:     v.GetDuration("seal_interval"),
	}

	if cfg.MainOwnerWallet == "" {
		return nil, fmt.Errorf("LEDGER_MAIN_OWNER_WALLET is required")
	}
	if cfg.Difficulty < 1 || cfg.Difficulty > 8 {
		return nil, fmt.Errorf("difficulty must be between 1 and 8, got %d", cfg.Difficulty)
	}

	return cfg, nil
}

// splitNonEmpty parses a comma-separated list, dropping empty entries.
func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
