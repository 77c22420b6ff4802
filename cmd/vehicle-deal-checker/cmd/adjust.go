package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/vehicle-deal-checker/internal/config"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

func adjustCmd() *cobra.Command {
	var (
		in        valuation.AdjustInput
		bodyType  string
		condition string
	)

	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Run the age/mileage adjustment offline",
		Long: "Applies the age, mileage, and condition adjustment to a baseline price using the\n" +
			"valuation section of the config file, or the built-in parameters when there is none.",
		Example: `  # 2018 sedan with 60k miles on a $25,000 baseline
  vehicle-deal-checker adjust --base-price 25000 --year 2018 --mileage 60000 --body-type sedan`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adjCfg, err := loadAdjustmentConfig(cfgFile)
			if err != nil {
				return err
			}

			in.BodyType = domain.BodyType(bodyType)
			in.Condition = domain.Condition(condition)
			if in.CurrentYear == 0 {
				in.CurrentYear = time.Now().Year()
			}

			res, err := valuation.Adjust(in, adjCfg)
			if err != nil {
				return err
			}
			return printAdjustment(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVar(&in.BasePrice, "base-price", 0, "baseline new-vehicle price in USD")
	cmd.Flags().IntVar(&in.Year, "year", 0, "model year")
	cmd.Flags().IntVar(&in.Mileage, "mileage", 0, "odometer reading in miles")
	cmd.Flags().IntVar(&in.CurrentYear, "current-year", 0, "reference year (default: this year)")
	cmd.Flags().StringVar(&bodyType, "body-type", string(domain.BodyOther), "sedan, suv, pickup, minivan, other")
	cmd.Flags().StringVar(&condition, "condition", string(domain.ConditionGood), "excellent, good, fair")
	cobra.CheckErr(cmd.MarkFlagRequired("base-price"))
	cobra.CheckErr(cmd.MarkFlagRequired("year"))

	return cmd
}

// loadAdjustmentConfig reads the valuation section from path. A missing
// file yields the built-in parameters.
func loadAdjustmentConfig(path string) (valuation.AdjustmentConfig, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return valuation.DefaultAdjustmentConfig(), nil
	}
	if err != nil {
		return valuation.AdjustmentConfig{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg.AdjustmentConfig(), nil
}

func printAdjustment(w io.Writer, r domain.AdjustmentResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Fair value", valuation.Dollars(float64(r.Fair))},
		{"Range", valuation.Dollars(float64(r.Low)) + " - " + valuation.Dollars(float64(r.High))},
		{"Age", strconv.Itoa(r.Age) + " yr"},
		{"Retention", strconv.FormatFloat(r.Retention, 'f', 2, 64)},
		{"Used base", valuation.Dollars(float64(r.UsedBase))},
		{"Miles vs expected", valuation.Thousands(r.DeltaMiles)},
		{"Mileage adjustment", valuation.Dollars(float64(r.MileageAdj))},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}
