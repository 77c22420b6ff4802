package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	apiclient "github.com/donaldgifford/vehicle-deal-checker/internal/api/client"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func dollars(n int) string {
	return valuation.Dollars(float64(n))
}

func optInt(v *int, format func(int) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}

func vehicleTitle(r *domain.VehicleRecord) string {
	title := r.Maker
	if r.Model != "" {
		title += " " + r.Model
	}
	if r.Year != nil {
		title = fmt.Sprintf("%d %s", *r.Year, title)
	}
	return title
}

func writeRecord(tw *tabWriter, r *domain.VehicleRecord) {
	tw.writef("Vehicle:\t%s\n", vehicleTitle(r))
	tw.writef("Mileage:\t%s\n", optInt(r.Mileage, func(n int) string { return valuation.Thousands(n) + " mi" }))
	tw.writef("Price:\t%s\n", optInt(r.Price, dollars))
	tw.writef("Body:\t%s\n", r.BodyType)
	tw.writef("Condition:\t%s\n", r.Condition)
	if r.RegionName != "" {
		tw.writef("Region:\t%s\n", r.RegionName)
	}
	if r.Zip != "" {
		tw.writef("ZIP:\t%s\n", r.Zip)
	}
	if r.VIN != "" {
		tw.writef("VIN:\t%s\n", r.VIN)
	}
	if r.URL != "" {
		tw.writef("URL:\t%s\n", r.URL)
	}
}

func writeValuation(tw *tabWriter, v *domain.Valuation) {
	tw.writef("Valuation:\t%s (%s)\n", dollars(v.ValuationPrice), v.Source)
	if v.Range != nil {
		tw.writef("Range:\t%s - %s\n", dollars(v.Range.Low), dollars(v.Range.High))
	}
	if d := v.AdjustDetail; d != nil {
		picked := "-"
		if d.PickedModel != nil {
			picked = *d.PickedModel
		}
		tw.writef("Baseline:\t%s (%s)\n", dollars(d.BasePrice), picked)
		tw.writef("Age:\t%d years, retention %.2f\n", d.Age, d.Retention)
		tw.writef("Used base:\t%s\n", dollars(d.UsedBase))
		tw.writef("Mileage adj:\t%s (%s mi over expected)\n", dollars(d.MileageAdj), valuation.Thousands(d.DeltaMiles))
	}
}

func printRecord(w io.Writer, r *domain.VehicleRecord) error {
	tw := newTabWriter(w)
	writeRecord(tw, r)
	return tw.finish()
}

func printValuation(w io.Writer, v *domain.Valuation) error {
	tw := newTabWriter(w)
	writeValuation(tw, v)
	return tw.finish()
}

func printEvaluation(w io.Writer, e *domain.Evaluation) error {
	tw := newTabWriter(w)
	if e.ID != "" {
		tw.writef("ID:\t%s\n", e.ID)
	}
	writeRecord(tw, &e.Vehicle)
	writeValuation(tw, &e.Valuation)
	tw.writef("Rating:\t%s\n", e.DealRating.Rating)
	tw.writef("\t%s\n", e.DealRating.Comment)
	for _, f := range e.Flags {
		tw.writef("Flag:\t[%s] %s: %s\n", f.Level, f.Label, f.Message)
	}
	return tw.finish()
}

func printFlags(w io.Writer, flags []domain.Flag) error {
	if len(flags) == 0 {
		_, err := fmt.Fprintln(w, "No risk flags.")
		return err
	}
	tw := newTabWriter(w)
	tw.writef("CODE\tLEVEL\tMESSAGE\n")
	for _, f := range flags {
		tw.writef("%s\t%s\t%s\n", f.Code, f.Level, f.Message)
	}
	return tw.finish()
}

func printEvaluationsTable(w io.Writer, evals []domain.Evaluation) error {
	tw := newTabWriter(w)
	tw.writef("ID\tVEHICLE\tPRICE\tVALUATION\tRATING\tCREATED\n")
	for i := range evals {
		e := &evals[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			truncate(vehicleTitle(&e.Vehicle), 32),
			optInt(e.Vehicle.Price, dollars),
			dollars(e.Valuation.ValuationPrice),
			e.DealRating.Rating,
			e.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return tw.finish()
}

func printBaseline(w io.Writer, b *apiclient.BaselineResponse) error {
	tw := newTabWriter(w)
	tw.writef("Brand:\t%s\n", b.Brand)
	if b.Region != "" {
		tw.writef("Region:\t%s\n", b.Region)
	}
	picked := "(median)"
	if b.PickedModel != nil {
		picked = *b.PickedModel
	}
	tw.writef("Base price:\t%s %s\n", dollars(b.BasePrice), picked)
	tw.writef("\n")
	tw.writef("CANDIDATE\tPRICE\n")
	for _, c := range b.Candidates {
		price := "-"
		if c.StatisticalPrice > 0 {
			price = valuation.Dollars(c.StatisticalPrice)
		}
		tw.writef("%s\t%s\n", c.Name, price)
	}
	return tw.finish()
}

func printQuota(w io.Writer, q *apiclient.QuotaResponse) error {
	tw := newTabWriter(w)
	if q.DailyLimit == 0 {
		tw.writef("Daily limit:\tunlimited\n")
	} else {
		tw.writef("Daily limit:\t%d\n", q.DailyLimit)
		if q.Exhausted {
			tw.writef("Remaining:\t0 (exhausted)\n")
		} else {
			tw.writef("Remaining:\t%d\n", q.Remaining)
		}
	}
	tw.writef("Used:\t%d\n", q.DailyUsed)
	if q.ResetAt != "" {
		tw.writef("Resets:\t%s\n", q.ResetAt)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
