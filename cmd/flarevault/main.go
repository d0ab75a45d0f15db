package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "flarevault",
		Short:        "Flare portfolio and prediction market backend",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	marketsCmd := &cobra.Command{
		Use:   "markets",
		Short: "Print current market views as JSON lines",
		RunE:  runMarkets,
	}
	addNetworkFlags(marketsCmd.Flags())
	root.AddCommand(marketsCmd)

	pricesCmd := &cobra.Command{
		Use:   "prices",
		Short: "Print the current price snapshot",
		RunE:  runPrices,
	}
	addNetworkFlags(pricesCmd.Flags())
	addRedisFlags(pricesCmd.Flags())
	pricesCmd.Flags().Bool("cached", false, "read the last snapshot from redis instead of FTSOv2")
	root.AddCommand(pricesCmd)

	pollCmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll prices and markets and store snapshots",
		RunE:  runPoll,
	}
	addNetworkFlags(pollCmd.Flags())
	addPollFlags(pollCmd.Flags())
	addSinkFlags(pollCmd.Flags())
	root.AddCommand(pollCmd)

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Index FAssets CollateralReserved events",
		RunE:  runScan,
	}
	addNetworkFlags(scanCmd.Flags())
	scanCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	scanCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	scanCmd.Flags().Uint64("batch-size", 30, "blocks per batch")
	scanCmd.Flags().String("out", "./data/flarevault.jsonl", "output JSONL path")
	scanCmd.Flags().String("pg-dsn", "", "Postgres DSN, replaces the JSONL output and file checkpoint")
	scanCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	scanCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	root.AddCommand(scanCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Poll in the background and serve the HTTP API",
		RunE:  runServe,
	}
	addNetworkFlags(serveCmd.Flags())
	addPollFlags(serveCmd.Flags())
	addSinkFlags(serveCmd.Flags())
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().StringSlice("addresses", nil, "default portfolio addresses (comma-separated)")
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addNetworkFlags(flags *pflag.FlagSet) {
	flags.String("network", "coston2", "network (flare, coston2)")
	flags.String("rpc", "", "RPC URL, defaults to the network's public endpoint")
	flags.String("account", "", "account whose positions are read")
	flags.String("flarebet", "", "FlareBet contract address")
	flags.String("asset-manager", "", "FAssets AssetManager address")
	flags.String("vault", "", "stFXRP vault address")
	flags.String("fxrp", "", "FXRP token address")
	flags.String("registry", "", "ContractRegistry address")
	flags.String("multicall", "", "Multicall3 address")
	flags.StringSlice("feeds", nil, "feed table entries PAIR=0xID (comma-separated)")
	flags.Int("max-retries", 5, "maximum retry attempts")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func addPollFlags(flags *pflag.FlagSet) {
	flags.Duration("price-interval", 10*time.Second, "price poll interval")
	flags.Duration("market-interval", 30*time.Second, "market poll interval")
}

func addRedisFlags(flags *pflag.FlagSet) {
	flags.String("redis-addr", "", "Redis address for the price cache")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database")
}

func addSinkFlags(flags *pflag.FlagSet) {
	flags.String("out", "./data/flarevault.jsonl", "output JSONL path, empty disables")
	flags.String("pg-dsn", "", "Postgres DSN")
	addRedisFlags(flags)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
