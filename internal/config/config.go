package config

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fastapi1403/building-management/internal/middleware"
	"github.com/fastapi1403/building-management/internal/utils"
)

type Config struct {
	AppName        string
	AppPort        string
	AppUrl         string
	DBUrl          string
	StoreDriver    string
	RSAPublicKey   *rsa.PublicKey
	TokenIssuer    string
	DefaultActor   string
	CSRFEnabled    bool
	PurgeRetention time.Duration
	PurgeSchedule  string
	CacheTTL       time.Duration
	LDSDKKey       string

	LDFlag_SoftDeleteCascadeDepth int
	LDFlag_HardDeleteCascadeDepth int
	LDFlag_EnableReadCache        bool
	LDFlag_CORSHighSecurity       bool
	LDFlag_SeedDbWithTestData     bool
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	LDConnectionTimeout = 5 * time.Second
	EnvPrefix           = "bm"
)

// Overridable with -ldflags "-X .../config.AppName=...".
var (
	AppName             = "building-management"
	LDServerContextKey  = "building-management"
	LDServerContextKind = "service"
)

// flagSource is the part of the LaunchDarkly client config reads.
type flagSource interface {
	BoolVariation(key string, context ldcontext.Context, defaultVal bool) (bool, error)
	IntVariation(key string, context ldcontext.Context, defaultVal int) (int, error)
	Close() error
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.String("config", "", "optional config file (yaml, json or toml)")
	fs.String("app-port", "8080", "HTTP listen port")
	fs.String("app-url", "", "public base URL, used as the allowed CORS origin")
	fs.String("db-url", "", "Postgres connection URL")
	fs.String("store", StoreDriverPostgres, "entity store: postgres or memory")
	fs.String("rsa-public-key-base64", "", "base64 PEM public key for bearer tokens; empty disables token auth")
	fs.String("token-issuer", middleware.DefaultTokenIssuer, "expected iss claim")
	fs.String("default-actor", "admin", "actor recorded when token auth is disabled")
	fs.Bool("csrf", true, "require X-CSRFToken on state-changing requests")
	fs.Duration("purge-retention", 0, "hard-delete records soft-deleted longer than this; 0 disables")
	fs.String("purge-schedule", "@daily", "cron spec of the retention purge")
	fs.Duration("cache-ttl", 30*time.Second, "read cache entry lifetime")
	fs.String("ld-sdk-key", "", "LaunchDarkly SDK key; empty uses the values below")
	fs.Int("soft-delete-cascade-depth", 1, "levels a soft delete cascades")
	fs.Int("hard-delete-cascade-depth", 2, "levels a cascading hard delete may reach")
	fs.Bool("enable-read-cache", false, "cache single-entity reads")
	fs.Bool("cors-high-security", false, "restrict CORS to app-url")
	fs.Bool("seed-db-with-test-data", false, "create a demo building hierarchy when the store is empty")
	return fs
}

// Load resolves configuration from flags, BM_* environment variables and an
// optional config file, in that order of precedence.
func Load(v *viper.Viper, args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		AppName:                       AppName,
		AppPort:                       v.GetString("app-port"),
		AppUrl:                        v.GetString("app-url"),
		DBUrl:                         v.GetString("db-url"),
		StoreDriver:                   v.GetString("store"),
		TokenIssuer:                   v.GetString("token-issuer"),
		DefaultActor:                  v.GetString("default-actor"),
		CSRFEnabled:                   v.GetBool("csrf"),
		PurgeRetention:                v.GetDuration("purge-retention"),
		PurgeSchedule:                 v.GetString("purge-schedule"),
		CacheTTL:                      v.GetDuration("cache-ttl"),
		LDSDKKey:                      v.GetString("ld-sdk-key"),
		LDFlag_SoftDeleteCascadeDepth: v.GetInt("soft-delete-cascade-depth"),
		LDFlag_HardDeleteCascadeDepth: v.GetInt("hard-delete-cascade-depth"),
		LDFlag_EnableReadCache:        v.GetBool("enable-read-cache"),
		LDFlag_CORSHighSecurity:       v.GetBool("cors-high-security"),
		LDFlag_SeedDbWithTestData:     v.GetBool("seed-db-with-test-data"),
	}

	if pubB64 := v.GetString("rsa-public-key-base64"); pubB64 != "" {
		pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
		if err != nil {
			return nil, fmt.Errorf("rsa-public-key-base64: %w", err)
		}
		cfg.RSAPublicKey, err = jwt.ParseRSAPublicKeyFromPEM(pubPEM)
		if err != nil {
			return nil, fmt.Errorf("parsing RSA public key: %w", err)
		}
	}

	if cfg.LDSDKKey != "" {
		client, err := ld.MakeClient(cfg.LDSDKKey, LDConnectionTimeout)
		if err != nil {
			return nil, fmt.Errorf("creating LaunchDarkly client: %w", err)
		}
		if err := applyFlags(cfg, client); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overrides the flag-backed fields with LaunchDarkly values,
// using the locally configured values as defaults. It closes src.
func applyFlags(cfg *Config, src flagSource) error {
	defer src.Close()
	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	softDepth, err := src.IntVariation("soft_delete_cascade_depth", ctx, cfg.LDFlag_SoftDeleteCascadeDepth)
	if err != nil {
		return fmt.Errorf("retrieving soft_delete_cascade_depth flag: %w", err)
	}
	utils.Logger.Debugf("soft_delete_cascade_depth flag: %d", softDepth)

	hardDepth, err := src.IntVariation("hard_delete_cascade_depth", ctx, cfg.LDFlag_HardDeleteCascadeDepth)
	if err != nil {
		return fmt.Errorf("retrieving hard_delete_cascade_depth flag: %w", err)
	}
	utils.Logger.Debugf("hard_delete_cascade_depth flag: %d", hardDepth)

	readCache, err := src.BoolVariation("enable_read_cache", ctx, cfg.LDFlag_EnableReadCache)
	if err != nil {
		return fmt.Errorf("retrieving enable_read_cache flag: %w", err)
	}
	utils.Logger.Debugf("enable_read_cache flag: %t", readCache)

	corsHighSecurity, err := src.BoolVariation("cors_high_security", ctx, cfg.LDFlag_CORSHighSecurity)
	if err != nil {
		return fmt.Errorf("retrieving cors_high_security flag: %w", err)
	}
	utils.Logger.Debugf("cors_high_security flag: %t", corsHighSecurity)

	seed, err := src.BoolVariation("seed_db_with_test_data", ctx, cfg.LDFlag_SeedDbWithTestData)
	if err != nil {
		return fmt.Errorf("retrieving seed_db_with_test_data flag: %w", err)
	}
	utils.Logger.Debugf("seed_db_with_test_data flag: %t", seed)

	cfg.LDFlag_SoftDeleteCascadeDepth = softDepth
	cfg.LDFlag_HardDeleteCascadeDepth = hardDepth
	cfg.LDFlag_EnableReadCache = readCache
	cfg.LDFlag_CORSHighSecurity = corsHighSecurity
	cfg.LDFlag_SeedDbWithTestData = seed
	return nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if c.DBUrl == "" {
			return errors.New("db-url is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.StoreDriver)
	}
	if c.AppPort == "" {
		return errors.New("app-port is required")
	}
	if c.LDFlag_SoftDeleteCascadeDepth < 0 || c.LDFlag_HardDeleteCascadeDepth < 0 {
		return errors.New("cascade depths must not be negative")
	}
	if c.RSAPublicKey == nil && c.DefaultActor == "" {
		return errors.New("default-actor is required when token auth is disabled")
	}
	return nil
}

// LoadConfig is Load over the process arguments; any problem is fatal.
func LoadConfig() *Config {
	utils.Logger.Info("Loading config for app: ", AppName)
	cfg, err := Load(viper.New(), os.Args[1:])
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to load config")
	}
	return cfg
}
