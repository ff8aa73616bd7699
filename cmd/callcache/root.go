package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/callcache"
	"github.com/unkn0wn-root/callcache/config"
	zaplog "github.com/unkn0wn-root/callcache/log/zap"
)

// app carries what every subcommand needs once the root has parsed flags.
type app struct {
	cfg *config.Config
	log *zap.Logger

	redisAddr string
	redisDB   int
	noFlush   bool
	logLevel  string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "callcache",
		Short: "Store values in Redis with call counting and history, and query MongoDB",
		Long: `callcache stores values under random keys in Redis, counts and records
every store, and replays the recorded history. It also runs a few MongoDB
queries over a school collection and an nginx request-log collection.

Configuration comes from the environment (REDIS_*, CACHE_*, MONGO_*), a .env
file in the working directory, then the flags below.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.redisAddr, "redis-addr", "", "Redis address (overrides REDIS_ADDR)")
	pf.IntVar(&a.redisDB, "redis-db", 0, "Redis database (overrides REDIS_DB)")
	pf.BoolVar(&a.noFlush, "no-flush", false, "do not flush the database on connect")
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newStoreCmd(a),
		newGetCmd(a),
		newReplayCmd(a),
		newSchoolsCmd(a),
		newTopCmd(a),
		newStatsCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr = a.redisAddr
	}
	if flags.Changed("redis-db") {
		cfg.Redis.DB = a.redisDB
	}
	if flags.Changed("no-flush") {
		cfg.Cache.NoFlush = a.noFlush
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = newLogger(a.logLevel)
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// dial opens a cache. History-reading commands pass noFlush so connecting
// does not wipe what they are about to read.
func (a *app) dial(ctx context.Context, noFlush bool) (*callcache.Cache, error) {
	return callcache.Dial(ctx, a.cfg.Redis, callcache.Options{
		Logger:  zaplog.ZapLogger{L: a.log},
		NoFlush: noFlush || a.cfg.Cache.NoFlush,
		Prefix:  a.cfg.Cache.Prefix,
	})
}
