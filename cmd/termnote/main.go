package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/termnote/internal/app"
	"github.com/five82/termnote/internal/config"
	"github.com/five82/termnote/internal/logging"
	"github.com/five82/termnote/internal/prefs"
	"github.com/five82/termnote/internal/store"
	"github.com/five82/termnote/internal/ui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "termnote: %v\n", err)
		return 1
	}
	return 0
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	statePath  string
	logLevel   string
	ephemeral  bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "termnote",
		Short:         "A notebook of shell commands you can run in one keystroke",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, g)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "path to config file (default "+config.DefaultPath()+")")
	flags.StringVar(&g.statePath, "state", "", "override the state file path")
	flags.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&g.ephemeral, "ephemeral", false, "keep state in memory only")

	root.AddCommand(newListCmd(g))
	root.AddCommand(newAddCmd(g))
	root.AddCommand(newRenameCmd(g))
	root.AddCommand(newDeleteCmd(g))
	root.AddCommand(newCopyCmd(g))
	root.AddCommand(newRunCmd(g))
	root.AddCommand(newFavCmd(g))
	root.AddCommand(newExportCmd(g))
	root.AddCommand(newImportCmd(g))
	root.AddCommand(newLockCmd(g, true))
	root.AddCommand(newLockCmd(g, false))
	root.AddCommand(newResetCmd(g))
	root.AddCommand(newLogsCmd(g))
	root.AddCommand(newVersionCmd())
	return root
}

// env bundles what a command needs and how to release it.
type env struct {
	nb  *app.Notebook
	log *zap.Logger
}

func (s *env) Close() {
	s.nb.Close()
	_ = s.log.Sync()
}

// open loads config, builds the file logger and the notebook. mirror, when
// not nil, receives terminal output.
func open(g *globalFlags, mirror io.Writer) (*env, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.statePath != "" {
		path, err := config.ExpandPath(g.statePath)
		if err != nil {
			return nil, err
		}
		cfg.StatePath = path
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}

	logger, err := logging.New(logging.FileConfig(cfg.LogPath, cfg.LogLevel))
	if err != nil {
		return nil, err
	}

	opts := app.Options{Config: cfg, Logger: logger, Mirror: mirror}
	if g.ephemeral {
		opts.Store = store.NewMemory()
	}
	nb, err := app.New(opts)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &env{nb: nb, log: logger}, nil
}

func runUI(cmd *cobra.Command, g *globalFlags) error {
	s, err := open(g, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	s.nb.Watch(ctx)

	prefsPath := prefs.DefaultPath()
	p, err := prefs.Load(prefsPath)
	if err != nil {
		s.log.Warn("prefs unavailable", zap.Error(err))
	}
	return ui.Run(ui.Options{
		Context:   ctx,
		Notebook:  s.nb,
		Prefs:     p,
		PrefsPath: prefsPath,
	})
}

// report prints t and turns failed toasts into an error.
func report(cmd *cobra.Command, t app.Toast) error {
	if t.Failed() {
		return errors.New(t.Text)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Text)
	return err
}
