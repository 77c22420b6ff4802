package cmd

import (
	"github.com/spf13/cobra"
)

func baselineCmd() *cobra.Command {
	var region, model string

	cmd := &cobra.Command{
		Use:   "baseline <brand>",
		Short: "Show the salePrice baseline for a brand",
		Long: "Look up new-vehicle price candidates for a brand in a region and\n" +
			"show which one the matcher picks for an optional model.",
		Example: `  vdc baseline honda
  vdc baseline honda --model cr-v --region REGION_STATE_TX`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().GetBaseline(cmd.Context(), args[0], region, model)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), resp)
			}
			return printBaseline(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "provider region code (server default when empty)")
	cmd.Flags().StringVar(&model, "model", "", "model to match against the candidates")

	return cmd
}

func quotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show the salePrice daily quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := newClient().GetQuota(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), q)
			}
			return printQuota(cmd.OutOrStdout(), q)
		},
	}
}
