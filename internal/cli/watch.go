package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/watch"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

func (a *app) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print table summaries whenever the store file changes",
		Long: `Watch follows the store file and prints one line per table (name, row
count, highest issued id) each time another process persists it. Stop with
Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.storeConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := watch.New(cfg.DataFile, cfg.GetFormat(), a.logger)
			return w.Run(ctx, func(snap types.Snapshot) {
				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					if err := writeJSON(out, snap); err != nil {
						a.logger.Warn("Failed to print snapshot", "err", err)
					}
					return
				}
				fmt.Fprintf(out, "-- %d tables\n", len(snap.Tables))
				for _, ts := range snap.Tables {
					fmt.Fprintf(out, "%s\t%d rows\thighest id %d\n", ts.Name, len(ts.Rows), ts.HighestID)
				}
			})
		},
	}
}
