package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/optigate"
	"github.com/aretw0/optigate/internal/logging"
	"github.com/aretw0/optigate/pkg/adapters/memory"
	"github.com/aretw0/optigate/pkg/adapters/redis"
	"github.com/aretw0/optigate/pkg/ports"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "optigate",
	Short: "optigate exposes an experimentation host to applications",
	Long: `optigate reads experiment state from an experimentation host and enqueues
activation, tagging and tracking commands on it. The host is either loaded
from a fixture file (in memory) or shared through Redis.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("fixture", "", "YAML or JSON file describing the host state")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address of a shared host (overrides the in-memory host)")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database")
	rootCmd.PersistentFlags().String("redis-prefix", "optigate:", "Key prefix of the Redis host")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

// session bundles what every command needs.
type session struct {
	client *optigate.Client
	host   ports.Host
	logger *slog.Logger
	close  func()
}

// openSession builds the host selected by the flags, seeds the fixture into
// it and wraps it in a client.
func openSession(cmd *cobra.Command, opts ...optigate.Option) (*session, error) {
	flags := cmd.Flags()
	level, _ := flags.GetString("log-level")
	fixturePath, _ := flags.GetString("fixture")
	redisAddr, _ := flags.GetString("redis-addr")

	logger := logging.New(logging.ParseLevel(level), os.Stderr)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		host   ports.Host
		seeder ports.Seeder
		closer = func() {}
	)
	if redisAddr != "" {
		password, _ := flags.GetString("redis-password")
		db, _ := flags.GetInt("redis-db")
		prefix, _ := flags.GetString("redis-prefix")

		rh := redis.New(redisAddr, password, db, redis.WithPrefix(prefix))
		if err := rh.Probe(ctx); err != nil {
			rh.Close()
			return nil, err
		}
		host, seeder = rh, rh
		closer = func() {
			if err := rh.Close(); err != nil {
				logger.Warn("failed to close redis host", "error", err)
			}
		}
		logger.Debug("using redis host", "addr", redisAddr, "prefix", prefix)
	} else {
		mh := memory.NewHost(memory.WithAutoActivate())
		host, seeder = mh, mh
		logger.Debug("using in-memory host")
	}

	if fixturePath != "" {
		fixture, err := memory.LoadFixture(fixturePath)
		if err != nil {
			closer()
			return nil, err
		}
		if err := fixture.Apply(ctx, seeder); err != nil {
			closer()
			return nil, err
		}
		logger.Debug("fixture applied", "path", fixturePath, "experiments", len(fixture.Experiments))
	}

	opts = append([]optigate.Option{optigate.WithLogger(logger)}, opts...)
	return &session{
		client: optigate.New(host, opts...),
		host:   host,
		logger: logger,
		close:  closer,
	}, nil
}
