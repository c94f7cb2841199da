package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/topcard/internal/app"
	"github.com/jason-s-yu/topcard/internal/config"
	"github.com/jason-s-yu/topcard/internal/logging"
	"github.com/spf13/cobra"
)

// skipApp marks commands that run without storage.
const skipApp = "skipApp"

// Options holds the global flags.
type Options struct {
	EnvFile string
	Output  string
	Verbose bool
}

var (
	opts        *Options
	application *app.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts = &Options{Output: "text"}
	application = nil

	rootCmd := &cobra.Command{
		Use:   "topcard",
		Short: "Play TopCard and manage the player directory",
		Long: `topcard deals hands from a shuffled 52-card deck, settles wagers between
players and keeps a durable directory of player accounts.

Settings are read from the environment and from a .env file in the working
directory (see TOPCARD_* variables).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipApp] == "true" {
				return nil
			}
			return openApp(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeApp()
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "Additional .env file to load")
	rootCmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", opts.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging")

	// Add subcommands
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newDeckCmd())
	rootCmd.AddCommand(newKeygenCmd())

	return rootCmd
}

func openApp(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if opts.EnvFile != "" {
		cfg, err = config.LoadFiles(opts.EnvFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Debug || opts.Verbose)
	application, err = app.New(commandContext(cmd), cfg, logger)
	return err
}

func closeApp() error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	// a failed RunE skips the post-run hook
	_ = closeApp()
	if err != nil {
		os.Exit(1)
	}
}
