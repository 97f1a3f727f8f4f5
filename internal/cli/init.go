package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func (a *app) newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize pantry storage",
		Long: `Write config.yaml into the config directory when it is missing, then
open the store file so that it exists. Existing content is kept unless
--force is given, which truncates the store to an empty document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.storeConfig()
			if err != nil {
				return err
			}

			written, err := writeConfigIfMissing(a.configDir, cfg)
			if err != nil {
				return err
			}
			if written {
				a.logger.Debug("wrote config", "dir", a.configDir)
			}

			mode := types.ModeConnect
			if force {
				mode = types.ModeCreate
			}
			if err := a.withStore(mode, func(types.Pantry[jsonValue]) error { return nil }); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Pantry initialized at %s\n", cfg.DataFile)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "discard existing store content")
	return cmd
}
