package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

// recordFlags collects a vehicle record from command-line flags. Numeric
// fields are only sent when their flag was given.
type recordFlags struct {
	maker     string
	model     string
	year      int
	mileage   int
	price     string
	region    string
	bodyType  string
	condition string
	vin       string
	zip       string
}

func (f *recordFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.maker, "maker", "", "vehicle make, e.g. Honda")
	fs.StringVar(&f.model, "model", "", "vehicle model, e.g. Civic")
	fs.IntVar(&f.year, "year", 0, "model year")
	fs.IntVar(&f.mileage, "mileage", 0, "odometer miles")
	fs.StringVar(&f.price, "price", "", "asking price, e.g. 12500 or '$12,500'")
	fs.StringVar(&f.region, "region", "", "provider region code, e.g. REGION_STATE_AZ")
	fs.StringVar(&f.bodyType, "body-type", "", "sedan, suv, pickup, minivan, or other")
	fs.StringVar(&f.condition, "condition", "", "excellent, good, or fair")
	fs.StringVar(&f.vin, "vin", "", "vehicle identification number")
	fs.StringVar(&f.zip, "zip", "", "listing ZIP code")
}

func (f *recordFlags) record(fs *pflag.FlagSet) (domain.VehicleRecord, error) {
	rec := domain.VehicleRecord{
		Maker:      f.maker,
		Model:      f.model,
		RegionName: f.region,
		BodyType:   domain.BodyType(strings.ToLower(f.bodyType)),
		Condition:  domain.Condition(strings.ToLower(f.condition)),
		VIN:        f.vin,
		Zip:        f.zip,
	}
	if fs.Changed("year") {
		rec.Year = &f.year
	}
	if fs.Changed("mileage") {
		rec.Mileage = &f.mileage
	}
	if f.price != "" {
		p, ok := valuation.CoerceInt(f.price)
		if !ok {
			return rec, fmt.Errorf("not a price: %q", f.price)
		}
		rec.Price = &p
	}
	return rec, nil
}

func valuateCmd() *cobra.Command {
	var (
		rf       recordFlags
		evaluate bool
	)

	cmd := &cobra.Command{
		Use:   "valuate",
		Short: "Value a vehicle described by flags",
		Long: "Estimate the market value of a vehicle from its make, model, year,\n" +
			"and mileage. With --evaluate the asking price is rated and risk\n" +
			"flags are raised as well.",
		Example: `  # Value a 2018 Civic with 60k miles
  vdc valuate --maker Honda --model Civic --year 2018 --mileage 60000

  # Full evaluation with an asking price
  vdc valuate --evaluate --maker Honda --model Civic --year 2018 \
    --mileage 60000 --price '$10,000' --region REGION_STATE_AZ`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := rf.record(cmd.Flags())
			if err != nil {
				return err
			}
			if rec.Maker == "" {
				return errors.New("--maker is required")
			}

			c := newClient()
			out := cmd.OutOrStdout()

			if evaluate {
				eval, err := c.EvaluateRecord(cmd.Context(), rec)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(out, eval)
				}
				return printEvaluation(out, eval)
			}

			val, err := c.Valuate(cmd.Context(), rec)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(out, val)
			}
			return printValuation(out, val)
		},
	}
	rf.register(cmd.Flags())
	cmd.Flags().BoolVar(&evaluate, "evaluate", false, "also rate the price and raise risk flags")

	return cmd
}

func flagsCmd() *cobra.Command {
	var rf recordFlags

	cmd := &cobra.Command{
		Use:     "flags",
		Short:   "List risk flags for a vehicle described by flags",
		Example: `  vdc flags --maker Ford --model F-150 --year 2012 --mileage 180000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := rf.record(cmd.Flags())
			if err != nil {
				return err
			}

			flags, err := newClient().Flags(cmd.Context(), rec)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), flags)
			}
			return printFlags(cmd.OutOrStdout(), flags)
		},
	}
	rf.register(cmd.Flags())

	return cmd
}

func rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <listing-price> <valuation-price>",
		Short: "Rate a listing price against a valuation",
		Example: `  vdc rate 10000 11748
  vdc rate '$12,500' '$11,748'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			listing, ok := valuation.CoerceInt(args[0])
			if !ok {
				return fmt.Errorf("not a price: %q", args[0])
			}
			val, ok := valuation.CoerceInt(args[1])
			if !ok {
				return fmt.Errorf("not a price: %q", args[1])
			}

			r, err := newClient().RateDeal(cmd.Context(), float64(listing), float64(val))
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), r)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", r.Rating, r.Comment)
			return err
		},
	}
}
