package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/vehicle-deal-checker/internal/api/client"
)

func evaluationsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "evaluations",
		Aliases: []string{"history"},
		Short:   "Browse evaluation history",
		Long: "Query evaluations stored by the server. Requires the server to\n" +
			"run with a database.",
	}

	root.AddCommand(
		evaluationsListCmd(),
		evaluationsShowCmd(),
	)

	return root
}

func evaluationsListCmd() *cobra.Command {
	var (
		maker   string
		rating  string
		since   time.Duration
		limit   int
		offset  int
		orderBy string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List evaluations with optional filters",
		Example: `  # Latest evaluations
  vdc evaluations list

  # Excellent deals on Hondas from the last week
  vdc evaluations list --maker honda --rating "Excellent Deal" --since 168h

  # Cheapest first
  vdc evaluations list --order-by listing_price --limit 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := &apiclient.ListEvaluationsParams{
				Maker:   maker,
				Rating:  rating,
				Limit:   limit,
				Offset:  offset,
				OrderBy: orderBy,
			}
			if since > 0 {
				p.Since = time.Now().Add(-since)
			}

			resp, err := newClient().ListEvaluations(cmd.Context(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, resp)
			}

			if len(resp.Evaluations) == 0 {
				_, err := fmt.Fprintln(out, "No evaluations found.")
				return err
			}

			if _, err := fmt.Fprintf(out, "Showing %d of %d evaluations\n\n", len(resp.Evaluations), resp.Total); err != nil {
				return err
			}
			return printEvaluationsTable(out, resp.Evaluations)
		},
	}
	cmd.Flags().StringVar(&maker, "maker", "", "make filter")
	cmd.Flags().StringVar(&rating, "rating", "", "deal rating filter")
	cmd.Flags().DurationVar(&since, "since", 0, "only evaluations newer than this, e.g. 24h")
	cmd.Flags().IntVar(&limit, "limit", 50, "number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "result offset")
	cmd.Flags().
		StringVar(&orderBy, "order-by", "", "sort order (created_at, valuation_price, listing_price)")

	return cmd
}

func evaluationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Short:   "Show a stored evaluation",
		Example: `  vdc evaluations show 3f2a9c1e-8b7d-4c55-9a61-0d2e4f6b7a88`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eval, err := newClient().GetEvaluation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), eval)
			}
			return printEvaluation(cmd.OutOrStdout(), eval)
		},
	}
}
