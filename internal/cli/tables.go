package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func (a *app) newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(types.ModeConnect, func(db types.Pantry[jsonValue]) error {
				names, err := db.Tables()
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					if names == nil {
						names = []string{}
					}
					return writeJSON(cmd.OutOrStdout(), names)
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func (a *app) newCreateTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-table <name>",
		Short: "Create an empty table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(types.ModeConnect, func(db types.Pantry[jsonValue]) error {
				if err := db.CreateTable(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created table %s\n", args[0])
				return nil
			})
		},
	}
}

func (a *app) newDropTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop-table <name>",
		Short: "Drop a table and all of its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(types.ModeConnect, func(db types.Pantry[jsonValue]) error {
				if err := db.DropTable(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dropped table %s\n", args[0])
				return nil
			})
		},
	}
}
