package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func (a *app) newInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <table> <value>",
		Short: "Append a row and print its id",
		Long: `Insert appends a row to the table and prints the identifier it was given.

A value that parses as JSON is stored as that JSON; anything else is stored
as a JSON string.

Example:
  pantry insert customers '{"name":"Ada"}'
  pantry insert notes hello`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseValue(args[1])
			if err != nil {
				return err
			}
			return a.withStore(types.ModeConnect, func(db types.Pantry[jsonValue]) error {
				id, err := db.Insert(args[0], value)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]int64{"id": id})
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}

const limitUsage = "0 for all rows, n for the first n, -n for the last n"

func (a *app) newSelectCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Print rows with their ids",
		Long: `Select prints the rows of a table in order, one "id<TAB>value" line each.

Example:
  pantry select customers
  pantry select customers --limit 2
  pantry select customers --limit -1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(types.ModeConnect, func(db types.Pantry[jsonValue]) error {
				rows, err := db.Select(args[0], limit)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					if rows == nil {
						rows = []types.Row[jsonValue]{}
					}
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				for _, r := range rows {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", r.ID, r.Value)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, limitUsage)
	return cmd
}

func (a *app) newReadCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "read <table>",
		Short: "Print row values without ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(types.ModeConnect, func(db types.Pantry[jsonValue]) error {
				values, err := db.Read(args[0], limit)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					if values == nil {
						values = []jsonValue{}
					}
					return writeJSON(cmd.OutOrStdout(), values)
				}
				for _, v := range values {
					fmt.Fprintln(cmd.OutOrStdout(), string(v))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, limitUsage)
	return cmd
}

func (a *app) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <id> <value>",
		Short: "Replace the value of a row",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			value, err := parseValue(args[2])
			if err != nil {
				return err
			}
			return a.withStore(types.ModeConnect, func(db types.Pantry[jsonValue]) error {
				if err := db.Update(args[0], id, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s row %d\n", args[0], id)
				return nil
			})
		},
	}
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a row",
		Long: `Delete removes a row. Every command runs its own session and a reload
only knows the largest id still present, so deleting the row with the
largest id lets the next insert reuse that id. Other deleted ids stay
retired while a larger id exists.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return a.withStore(types.ModeConnect, func(db types.Pantry[jsonValue]) error {
				if err := db.Delete(args[0], id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s row %d\n", args[0], id)
				return nil
			})
		},
	}
}
