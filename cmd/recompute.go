package cmd

import (
	"github.com/spf13/cobra"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute every user's overall score once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		c, err := buildComponents(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer c.db.Close()

		return c.aggregator.RecomputeAll(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(recomputeCmd)
}
