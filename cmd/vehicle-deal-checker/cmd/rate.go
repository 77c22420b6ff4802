package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

func rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <listing-price> <valuation-price>",
		Short: "Rate a listing price against a valuation offline",
		Example: `  vehicle-deal-checker rate 10000 11748
  vehicle-deal-checker rate '$12,500' 11748`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			listing, err := parsePrice(args[0])
			if err != nil {
				return err
			}
			val, err := parsePrice(args[1])
			if err != nil {
				return err
			}

			r := valuation.Classify(listing, val)
			cmd.Printf("%s\n%s\n", r.Rating, r.Comment)
			return nil
		},
	}
}

// parsePrice accepts plain numbers and "$12,500" style amounts.
func parsePrice(s string) (float64, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	n, ok := valuation.CoerceInt(s)
	if !ok {
		return 0, fmt.Errorf("not a price: %q", s)
	}
	return float64(n), nil
}
