package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"straycare/internal/app"
	"straycare/internal/config"
	"straycare/internal/logging"
	"straycare/internal/notify"
)

var (
	// Global flags
	verbose    bool
	configPath string
	noOffline  bool

	logger      *zap.Logger
	application *app.App
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "stray",
	Short: "straycare - community stray animal reporting from your terminal",
	Long: `straycare reports and tracks stray animals in your community.

Sightings go through a short wizard, land with the moderators, and once
approved show up for everyone nearby. Care records, feeding logs and
community updates hang off each animal.

Run without arguments to see the dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		path := configPath
		if path == "" {
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		application, err = app.New(cfg, logger, notify.NewWriter(os.Stderr, logger), app.Options{
			NoOffline: noOffline,
		})
		if err != nil {
			return err
		}
		resolvedConfigPath = path
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			_ = application.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context())
	},
}

// resolvedConfigPath is the config file the session loaded, kept for the
// watch view's reload-on-change.
var resolvedConfigPath string

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file (default ~/.straycare/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noOffline, "no-offline", false, "disable the offline snapshot store")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(animalsCmd, reportCmd, meCmd)
	rootCmd.AddCommand(careCmd, communityCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(watchCmd, dashboardCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// restoreSession validates any saved session before a command that wants
// the user signed in. It never blocks startup longer than the configured
// timeout.
func restoreSession(ctx context.Context) {
	application.Session.Initialize(ctx, application.Config.AuthInitTimeout())
}

// requireAuth fails fast when nobody is signed in.
func requireAuth(ctx context.Context) error {
	restoreSession(ctx)
	if !application.Session.IsAuthenticated() {
		return fmt.Errorf("you are not signed in; run 'stray login' first")
	}
	return nil
}
