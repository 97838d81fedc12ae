// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/leadcap/internal/config"
	"github.com/carterperez-dev/leadcap/internal/core"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "leadcapctl",
		Short:         "Operator tooling for the leadcap API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(
		&configPath, "config", "c", "config.yaml", "path to config file",
	)

	env := &environment{configPath: &configPath}

	rootCmd.AddCommand(migrateCmd(env))
	rootCmd.AddCommand(keygenCmd(env))
	rootCmd.AddCommand(userCmd(env))
	rootCmd.AddCommand(otpCmd(env))

	return rootCmd
}

// environment loads configuration and opens the database lazily so
// commands like keygen work without a reachable database.
type environment struct {
	configPath *string
	cfg        *config.Config
}

func (e *environment) loadConfig() (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}

	cfg, err := config.Load(*e.configPath)
	if err != nil {
		return nil, err
	}
	e.cfg = cfg
	return cfg, nil
}

func (e *environment) database(ctx context.Context) (*core.Database, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	return core.NewDatabase(ctx, cfg.Database)
}
