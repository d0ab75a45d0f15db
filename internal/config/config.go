package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"flareVault/internal/feeds"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Network Network
	RPCURL  string
	Feeds   feeds.Table

	Account   string
	Addresses []string

	PriceInterval  time.Duration
	MarketInterval time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration

	Out           string
	PGDSN         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Listen        string

	FromBlock         uint64
	ToBlock           uint64
	BatchSize         uint64
	Checkpoint        string
	CheckpointEnabled bool

	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FLAREVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", "coston2")
	v.SetDefault("price-interval", 10*time.Second)
	v.SetDefault("market-interval", 30*time.Second)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("out", "./data/flarevault.jsonl")
	v.SetDefault("redis-db", 0)
	v.SetDefault("listen", ":8080")
	v.SetDefault("batch-size", uint64(30))
	v.SetDefault("checkpoint", "./data/checkpoint.json")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	network, err := LookupNetwork(v.GetString("network"))
	if err != nil {
		return Config{}, err
	}
	if err := applyOverrides(v, &network); err != nil {
		return Config{}, err
	}

	table, err := parseFeeds(getStringSlice(v, "feeds"))
	if err != nil {
		return Config{}, err
	}
	if err := table.Validate(); err != nil {
		return Config{}, fmt.Errorf("feed table: %w", err)
	}

	rpcURL := v.GetString("rpc")
	if rpcURL == "" {
		rpcURL = network.RPCURL
	}

	cfg := Config{
		Network:           network,
		RPCURL:            rpcURL,
		Feeds:             table,
		Account:           v.GetString("account"),
		Addresses:         getStringSlice(v, "addresses"),
		PriceInterval:     v.GetDuration("price-interval"),
		MarketInterval:    v.GetDuration("market-interval"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		Out:               v.GetString("out"),
		PGDSN:             v.GetString("pg-dsn"),
		RedisAddr:         v.GetString("redis-addr"),
		RedisPassword:     v.GetString("redis-password"),
		RedisDB:           v.GetInt("redis-db"),
		Listen:            v.GetString("listen"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		BatchSize:         v.GetUint64("batch-size"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		LogLevel:          v.GetString("log-level"),
	}
	if cfg.Account != "" && !common.IsHexAddress(cfg.Account) {
		return Config{}, fmt.Errorf("invalid account: %s", cfg.Account)
	}

	return cfg, nil
}

// applyOverrides replaces network contract addresses with configured ones.
func applyOverrides(v *viper.Viper, n *Network) error {
	overrides := []struct {
		key  string
		addr *common.Address
	}{
		{"flarebet", &n.FlareBet},
		{"asset-manager", &n.AssetManager},
		{"fxrp", &n.FXRP},
		{"vault", &n.StXRP},
		{"registry", &n.ContractRegistry},
		{"multicall", &n.Multicall3},
	}
	for _, o := range overrides {
		addr, err := optionalAddress(v, o.key)
		if err != nil {
			return err
		}
		if addr != (common.Address{}) {
			*o.addr = addr
		}
	}
	return nil
}

func optionalAddress(v *viper.Viper, key string) (common.Address, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid %s address: %s", key, raw)
	}
	return common.HexToAddress(raw), nil
}

// parseFeeds reads "PAIR=0xID" entries. No entries selects the default table.
func parseFeeds(entries []string) (feeds.Table, error) {
	if len(entries) == 0 {
		return feeds.DefaultTable(), nil
	}
	table := make(feeds.Table, 0, len(entries))
	for _, entry := range entries {
		pair, id, ok := strings.Cut(entry, "=")
		pair = strings.TrimSpace(pair)
		id = strings.TrimSpace(id)
		if !ok || pair == "" || id == "" {
			return nil, fmt.Errorf("invalid feed entry %q, want PAIR=0xID", entry)
		}
		table = append(table, feeds.Entry{Pair: pair, ID: id})
	}
	return table, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
