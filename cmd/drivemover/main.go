package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Ning0612/Drivemover/internal/config"
	"github.com/Ning0612/Drivemover/internal/gateway"
	"github.com/Ning0612/Drivemover/internal/gateway/gdrive"
	"github.com/Ning0612/Drivemover/internal/lock"
	"github.com/Ning0612/Drivemover/internal/logger"
	"github.com/Ning0612/Drivemover/internal/service"
	"github.com/Ning0612/Drivemover/internal/state"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.AddCommand(authCmd, showCmd, planCmd, applyCmd, tidyCmd, historyCmd)
}

var rootCmd = &cobra.Command{
	Use:   "drivemover",
	Short: "Reorganize Google Drive ownership, names, and sharing before an account migration",
	Long: `drivemover walks a Google Drive folder tree and prepares it for
migration to another account: it creates owned copies of unowned files
and folders, moves entries into the owned copies, strips 'Copy of '
name prefixes, and removes stale sharing permissions.

Changes are planned first (read-only) and applied later from the
reviewed plan file, so no mutation happens without an explicit apply.`,
	SilenceUsage: true,
}

// signalContext returns a context cancelled by SIGINT or SIGTERM. The
// current entry finishes before the run stops.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func initLogger(cfg *config.Config) error {
	logConfig := logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Format:  logger.ParseFormat(cfg.Log.Format),
		Outputs: []logger.OutputConfig{{Type: logger.OutputStderr}},
	}
	if cfg.Log.File != "" {
		logConfig.Outputs = append(logConfig.Outputs, logger.OutputConfig{Type: logger.OutputFile})
		logConfig.File = logger.FileConfig{
			Enabled:    true,
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSize,
			MaxAgeDays: cfg.Log.MaxAge,
			MaxBackups: cfg.Log.Backups,
			Compress:   cfg.Log.Compress,
		}
	}
	return logger.Init(logConfig)
}

// newGateway authenticates and builds the Drive gateway
func newGateway(ctx context.Context, cfg *config.Config) (gateway.Gateway, error) {
	auth := gdrive.NewAuthenticator(cfg.Auth.ClientID, cfg.Auth.ClientSecret, cfg.Auth.TokenFile)
	token, err := auth.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication required, run 'drivemover auth': %w", err)
	}
	return gdrive.New(ctx, token, auth.Config(), cfg.Account, cfg.Retries)
}

// newRunner wires the runner with its lock and run history. The caller
// must call the returned cleanup function.
func newRunner(ctx context.Context, cfg *config.Config) (*service.Runner, func(), error) {
	gw, err := newGateway(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	states, err := state.NewManager(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	locks, err := lock.NewFileLock(cfg.DataDir)
	if err != nil {
		states.Close()
		return nil, nil, err
	}

	runner := service.NewRunner(cfg, gw, states, locks, logger.Get())
	cleanup := func() {
		states.Close()
	}
	return runner, cleanup, nil
}

// runAction handles the shared setup and teardown around one runner action
func runAction(run func(ctx context.Context, runner *service.Runner) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}
	defer logger.Shutdown()

	ctx, cancel := signalContext()
	defer cancel()

	runner, cleanup, err := newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return run(ctx, runner)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to the Google Drive account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		auth := gdrive.NewAuthenticator(cfg.Auth.ClientID, cfg.Auth.ClientSecret, cfg.Auth.TokenFile)
		if _, err := auth.Authenticate(ctx); err != nil {
			return err
		}

		fmt.Printf("Token saved to %s\n", auth.TokenPath())
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Report all entries and permissions without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(func(ctx context.Context, runner *service.Runner) error {
			path, err := runner.Show(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Entries report written to %s\n", path)
			return nil
		})
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a plan of changes for review (read-only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(func(ctx context.Context, runner *service.Runner) error {
			path, err := runner.Plan(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Plan written to %s\n", path)
			fmt.Println("Review the plan, then run 'drivemover apply' with it.")
			return nil
		})
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <plan-file>",
	Short: "Apply the changes from a previously written plan file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(func(ctx context.Context, runner *service.Runner) error {
			path, err := runner.Apply(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Outcomes written to %s\n", path)
			return nil
		})
	},
}

var tidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Remove the pairing properties this tool added to entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(func(ctx context.Context, runner *service.Runner) error {
			_, err := runner.Tidy(ctx)
			return err
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs for the configured account",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		states, err := state.NewManager(cfg.DataDir)
		if err != nil {
			return err
		}
		defer states.Close()

		records, err := states.GetHistory(cfg.Account.AccountID, limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tACTION\tSTATUS\tENTRIES\tPLANS\tOK\tSKIP\tFAIL\tREPORT")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
				r.StartTime.Format("2006-01-02 15:04:05"),
				r.Action, r.Status,
				r.EntryCount, r.PlanCount,
				r.SuccessCount, r.SkipCount, r.FailCount,
				r.ReportPath)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
}
