// Command storectx inspects and edits the storectx persistence backends and
// serves the inspector.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storectx/internal/config"
	"github.com/vango-dev/storectx/internal/errors"
	"github.com/vango-dev/storectx/pkg/persist"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// skipSetup marks commands that need neither configuration nor backends.
const skipSetup = "skip-setup"

// app holds what PersistentPreRunE prepared for the running command.
type app struct {
	configPath string
	session    bool

	cfg     *config.Config
	logger  *slog.Logger
	handles *config.Handles
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storectx",
		Short: "Inspect and edit storectx storage",
		Long: `storectx reads and writes the values that components share through
the local and session storage handles, and serves a live inspector.

Storage backends are chosen in the configuration file (--config or
STORECTX_CONFIG) or through STORECTX_ environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return a.setup(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Configuration file (default $"+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().BoolVar(&a.session, "session", false, "Use the session handle instead of the local one")

	rootCmd.AddCommand(
		getCmd(a),
		setCmd(a),
		rmCmd(a),
		lsCmd(a),
		serveCmd(a),
		demoCmd(),
		versionCmd(),
	)
	return rootCmd
}

func (a *app) setup(logOut io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(logOut)
	slog.SetDefault(a.logger)

	handles, err := config.Open(cfg, a.logger)
	if err != nil {
		return err
	}
	a.handles = handles
	return nil
}

func (a *app) close() {
	if a.handles == nil {
		return
	}
	if err := a.handles.Close(); err != nil {
		a.logger.Error("closing storage", "error", err)
	}
	a.handles = nil
}

// storage returns the handle selected by --session.
func (a *app) storage() persist.Storage {
	if a.session {
		return persist.Session()
	}
	return persist.Local()
}

// channel returns the channel name selected by --session.
func (a *app) channel() string {
	if a.session {
		return persist.SessionName
	}
	return persist.LocalName
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
