// Package validate checks generated dashboards and rules: every PromQL
// expression must parse and reference only known metrics.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/vehicle-deal-checker/tools/dashgen/rules"
)

// histogramSuffixes are stripped before looking a series up in the known set.
var histogramSuffixes = []string{"_bucket", "_sum", "_count"}

// Result collects validation problems. Errors fail generation; warnings are
// reported only.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether there were no errors.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Expr parses expr and returns the metric names it selects.
func Expr(expr string) ([]string, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		if vs, ok := n.(*parser.VectorSelector); ok && vs.Name != "" {
			seen[vs.Name] = true
		}
		return nil
	})

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func knownMetric(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suf := range histogramSuffixes {
		if base, ok := strings.CutSuffix(name, suf); ok && known[base] {
			return true
		}
	}
	return false
}

func checkExpr(r *Result, where, expr string, known map[string]bool) {
	names, err := Expr(expr)
	if err != nil {
		r.errorf("%s: invalid PromQL %q: %v", where, expr, err)
		return
	}
	for _, n := range names {
		if !knownMetric(n, known) {
			r.errorf("%s: unknown metric %q", where, n)
		}
	}
}

// dashboardJSON is the subset of the Grafana dashboard model that carries
// queries.
type dashboardJSON struct {
	Panels []panelJSON `json:"panels"`
}

type panelJSON struct {
	Title   string       `json:"title"`
	Type    string       `json:"type"`
	Targets []targetJSON `json:"targets"`
	Panels  []panelJSON  `json:"panels"`
}

type targetJSON struct {
	RefID string `json:"refId"`
	Expr  string `json:"expr"`
}

// Dashboard validates every panel query in a built dashboard.
func Dashboard(dash any, known map[string]bool) Result {
	var r Result

	data, err := json.Marshal(dash)
	if err != nil {
		r.errorf("marshaling dashboard: %v", err)
		return r
	}
	var d dashboardJSON
	if err := json.Unmarshal(data, &d); err != nil {
		r.errorf("decoding dashboard: %v", err)
		return r
	}

	var walk func(panels []panelJSON)
	walk = func(panels []panelJSON) {
		for _, p := range panels {
			if p.Type == "row" {
				walk(p.Panels)
				continue
			}
			if len(p.Targets) == 0 {
				r.warnf("panel %q has no queries", p.Title)
			}
			for _, t := range p.Targets {
				checkExpr(&r, fmt.Sprintf("panel %q query %s", p.Title, t.RefID), t.Expr, known)
			}
		}
	}
	walk(d.Panels)

	return r
}

// Rules validates the expressions of a PrometheusRule and checks that each
// rule is either a recording rule or an alert, not both.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var r Result

	for _, g := range cr.Spec.Groups {
		for i, rule := range g.Rules {
			name := rule.Record
			if name == "" {
				name = rule.Alert
			}
			where := fmt.Sprintf("group %q rule %d (%s)", g.Name, i, name)

			switch {
			case rule.Record != "" && rule.Alert != "":
				r.errorf("%s: sets both record and alert", where)
			case rule.Record == "" && rule.Alert == "":
				r.errorf("%s: sets neither record nor alert", where)
			}
			if rule.Record != "" && !known[rule.Record] {
				r.warnf("%s: recording rule is not in the known metric set", where)
			}

			checkExpr(&r, where, rule.Expr, known)
		}
	}

	return r
}
