// Package cli implements the pantry command-line interface: it initializes
// a store, runs schema migrations, and commits document and index commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/pantry"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the exit code a failed command should end with.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// exitCode maps err to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	debug     bool
}

// app is the state shared by one invocation of the root command.
type app struct {
	flags  rootFlags
	logger *zap.Logger
}

// NewRootCmd creates the top-level "pantry" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pantry",
		Short: "A relational document store with map/reduce indexes",
		Long: "Pantry stores JSON documents in a relational database and maintains\n" +
			"map and reduce index tables next to them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: .pantry-db)")
	root.PersistentFlags().BoolVar(&a.flags.debug, "debug", false, "log every executed SQL statement")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newMigrateCmd(a))
	root.AddCommand(newDocCmd(a))
	root.AddCommand(newIndexCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// initLogger builds a development logger at debug level when --debug is set
// and a production logger otherwise.
func (a *app) initLogger() error {
	var (
		logger *zap.Logger
		err    error
	)
	if a.flags.debug {
		cfg := zap.NewDevelopmentConfig()
		logger, err = cfg.Build()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return sysError("build logger: %w", err)
	}
	a.logger = logger
	return nil
}

// openStore loads the configuration and attaches a store. The caller must
// Detach it.
func (a *app) openStore(ctx context.Context) (*pantry.Store, error) {
	cfg, err := a.loadStoreConfig()
	if err != nil {
		return nil, err
	}
	s, err := pantry.Open(ctx, cfg, a.logger)
	if err != nil {
		return nil, sysError("attach store: %w", err)
	}
	return s, nil
}
