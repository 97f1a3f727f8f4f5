// Package cli implements the pantry command-line interface.
package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/pkg/pantry"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataFile  string
	jsonMode  bool
	verbose   bool
}

// app carries the state shared by the subcommands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	v         *viper.Viper
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "pantry" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "pantry",
		Short:   "A single-file JSON table store",
		Long:    "Pantry keeps named tables of rows in one JSON file.\nRows get stable integer identifiers that are never reused.",
		Version: pantry.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = newLogger(cmd.ErrOrStderr(), a.flags.verbose)

			configDir, err := paths.ResolveConfigDir(a.flags.configDir)
			if err != nil {
				return err
			}
			v, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			a.configDir = configDir
			a.v = v
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/pantry)")
	root.PersistentFlags().StringVar(&a.flags.dataFile, "data-file", "", "store file (default: $(CWD)/pantry.json)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log engine activity to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newTablesCmd())
	root.AddCommand(a.newCreateTableCmd())
	root.AddCommand(a.newDropTableCmd())
	root.AddCommand(a.newInsertCmd())
	root.AddCommand(a.newSelectCmd())
	root.AddCommand(a.newReadCmd())
	root.AddCommand(a.newUpdateCmd())
	root.AddCommand(a.newDeleteCmd())
	root.AddCommand(a.newExportCmd())
	root.AddCommand(a.newImportCmd())
	root.AddCommand(a.newWatchCmd())

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return exitCode(err)
	}
	return exitSuccess
}

// exitCode maps storage failures to exitSysError and everything else
// (bad arguments, missing tables or rows) to exitUserError.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrStoreUnavailable),
		errors.Is(err, types.ErrCorruptStore),
		errors.Is(err, types.ErrIOFailure),
		errors.Is(err, types.ErrClosedStore):
		return exitSysError
	}
	return exitUserError
}
