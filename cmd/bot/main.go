package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"MarketBrief/internal/config"
	"MarketBrief/internal/logger"
	"MarketBrief/internal/scheduler"
)

var version = "dev"

type options struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "marketbrief",
		Short:         "Scheduled market briefs for Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "path to the YAML config")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newRunCmd(opts),
		newListCmd(opts),
		newCrontabCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <job>",
		Short: "Run one job now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}

			app, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.sched.Run(ctx, args[0])
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List jobs with their schedule and next run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := offlineScheduler(opts)
			if err != nil {
				return err
			}
			entries, err := sched.List()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "JOB\tSCHEDULE\tENABLED\tNEXT RUN")
			for _, e := range entries {
				next := "-"
				if !e.Next.IsZero() {
					next = e.Next.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", e.Name, e.Schedule, e.Enabled, next)
			}
			return w.Flush()
		},
	}
}

func newCrontabCmd(opts *options) *cobra.Command {
	var binary string
	cmd := &cobra.Command{
		Use:   "crontab",
		Short: "Print crontab lines for every enabled job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := offlineScheduler(opts)
			if err != nil {
				return err
			}
			if binary == "" {
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("resolve binary path: %w", err)
				}
				binary = exe
			}
			configPath, err := filepath.Abs(opts.configPath)
			if err != nil {
				return err
			}
			tab, err := sched.Crontab(binary, configPath)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), tab)
			return nil
		},
	}
	cmd.Flags().StringVar(&binary, "binary", "", "binary path written into each line (defaults to this executable)")
	return cmd
}

func setup(opts *options) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// offlineScheduler builds a scheduler without clients, enough for list
// and crontab. Credentials are not required.
func offlineScheduler(opts *options) (*scheduler.Scheduler, error) {
	cfg, log, err := setup(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateJobs(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return scheduler.New(cfg.Jobs, scheduler.Deps{Log: log}), nil
}
