package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kindredapp/kindred/internal/profile"
	"github.com/kindredapp/kindred/server"
	"github.com/kindredapp/kindred/server/aggregator"
	"github.com/kindredapp/kindred/server/runner/memoryprofile"
	"github.com/kindredapp/kindred/store"
	"github.com/kindredapp/kindred/store/db"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "kindred",
	Short: "Kindred is the personalization core of the task companion",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile, st, err := setup()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s, err := server.NewServer(ctx, instanceProfile, st)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
			s.Shutdown(context.Background())
		}()

		if err := s.Start(ctx); err != nil {
			slog.Error("server exited", "error", err)
		}
		return nil
	},
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Recompute memory profiles for all users once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile, st, err := setup()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate store: %w", err)
		}

		agg := aggregator.New(st, instanceProfile.AggregationWindow, instanceProfile.AggregationConcurrency)
		runner := memoryprofile.NewRunner(st, agg, instanceProfile.AggregationInterval)
		result := runner.RunOnce(ctx)

		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	},
}

func setup() (*profile.Profile, *store.Store, error) {
	instanceProfile := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: version,
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid profile: %w", err)
	}

	driver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create db driver: %w", err)
	}

	return instanceProfile, store.New(driver, instanceProfile), nil
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8231, "port of the server")
	rootCmd.PersistentFlags().String("data", ".", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("kindred")
	viper.AutomaticEnv()

	rootCmd.AddCommand(aggregateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
