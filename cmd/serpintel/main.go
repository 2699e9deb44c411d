// Command serpintel serves and runs SERP analyses for print-on-demand graphic tees.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/config"
	logpkg "github.com/kailas-cloud/serpintel/internal/logger"
	"github.com/kailas-cloud/serpintel/internal/version"
)

// cli holds state shared by subcommands after the root pre-run.
type cli struct {
	env        string
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "serpintel",
		Short:         "SERP intelligence for print-on-demand graphic tees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.env, "env", "", "environment name selecting config/<env>.yaml (default $ENV or local)")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "explicit config file path")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(c),
		newAnalyzeCmd(c),
		newPrioritizeCmd(c),
		newMigrateCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) init() error {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if c.env == "" {
		c.env = config.GetEnv()
	}

	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFile(c.configPath)
	} else {
		c.cfg, err = config.Load(c.env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := c.cfg.Logging.Level
	if c.logLevel != "" {
		level = c.logLevel
	}
	c.logger, err = logpkg.NewLogger(c.env, level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		// skip config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "serpintel %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
