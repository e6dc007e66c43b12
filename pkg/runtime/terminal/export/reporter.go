package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/seo-tools/searchledger/pkg/models/api"
)

// Reporter renders report payloads to the console, either as aligned
// text tables or as the same JSON the HTTP API serves.
type Reporter struct {
	writer     io.Writer
	jsonOutput bool
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (r *Reporter) SetJSON(enabled bool) {
	r.jsonOutput = enabled
}

type table struct {
	Title  string
	Period *api.TimePeriod
	Header []string
	Rows   [][]string
	Footer []string
}

const tableTemplate = `
{{.Title}}{{if .Period}} ({{.Period.Duration}} days)
Period: {{.Period.Start.Format "2006-01-02"}} to {{.Period.End.Format "2006-01-02"}}{{end}}

{{separator}}
{{formatRow .Header}}
{{separator}}
{{range .Rows}}{{formatRow .}}
{{end}}{{separator}}
{{range .Footer}}{{.}}
{{end}}`

func (r *Reporter) render(t table) error {
	widths := columnWidths(t.Header, t.Rows)

	funcMap := template.FuncMap{
		"formatRow": func(cells []string) string {
			parts := make([]string, len(cells))
			for i, cell := range cells {
				parts[i] = fmt.Sprintf(" %-*s ", widths[i], cell)
			}
			return "|" + strings.Join(parts, "|") + "|"
		},
		"separator": func() string {
			parts := make([]string, len(widths))
			for i, w := range widths {
				parts[i] = strings.Repeat("-", w+2)
			}
			return "+" + strings.Join(parts, "+") + "+"
		},
	}

	tmpl, err := template.New("table").Funcs(funcMap).Parse(tableTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return tmpl.Execute(r.writer, t)
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func (r *Reporter) encode(payload any) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func cacheNote(flags api.SourceFlags) string {
	var cached []string
	if flags.Analytics {
		cached = append(cached, "analytics")
	}
	if flags.Search {
		cached = append(cached, "search")
	}
	if len(cached) == 0 {
		return ""
	}
	return "Served from cache: " + strings.Join(cached, ", ")
}

func (r *Reporter) RevenueQueries(report api.RevenueQueriesReport) error {
	if r.jsonOutput {
		return r.encode(report)
	}

	rows := make([][]string, 0, len(report.Data))
	for _, q := range report.Data {
		rows = append(rows, []string{
			q.Query,
			strconv.Itoa(q.Pages),
			strconv.Itoa(q.Clicks),
			strconv.Itoa(q.Impressions),
			fmt.Sprintf("%.1f", q.AvgPosition),
			q.Revenue.StringFixed(2),
			q.Conversions.StringFixed(2),
		})
	}

	footer := []string{
		fmt.Sprintf("Queries: %d of %d", len(report.Data), report.TotalQueries),
		fmt.Sprintf("Dark revenue (pages without recorded clicks): %s", report.DarkRevenue.StringFixed(2)),
	}
	if note := cacheNote(report.FromCache); note != "" {
		footer = append(footer, note)
	}

	return r.render(table{
		Title:  "Revenue by query",
		Period: &report.Period,
		Header: []string{"Query", "Pages", "Clicks", "Impressions", "Position", "Revenue", "Conversions"},
		Rows:   rows,
		Footer: footer,
	})
}

func (r *Reporter) Categories(report api.CategoryReport) error {
	if r.jsonOutput {
		return r.encode(report)
	}

	rows := make([][]string, 0, len(report.Data))
	for _, c := range report.Data {
		rows = append(rows, []string{
			c.Category,
			strconv.Itoa(c.Pages),
			strconv.Itoa(c.Sessions),
			strconv.Itoa(c.Clicks),
			c.Revenue.StringFixed(2),
			c.AttributedRevenue.StringFixed(2),
			c.Conversions.StringFixed(2),
		})
	}

	var footer []string
	if note := cacheNote(report.FromCache); note != "" {
		footer = append(footer, note)
	}

	return r.render(table{
		Title:  "Performance by category",
		Period: &report.Period,
		Header: []string{"Category", "Pages", "Sessions", "Clicks", "Revenue", "Attributed", "Conversions"},
		Rows:   rows,
		Footer: footer,
	})
}

func (r *Reporter) Opportunities(report api.OpportunityReport) error {
	if r.jsonOutput {
		return r.encode(report)
	}

	rows := make([][]string, 0, len(report.Data))
	for _, o := range report.Data {
		rows = append(rows, []string{
			o.Query,
			strconv.Itoa(o.Pages),
			strconv.Itoa(o.Clicks),
			strconv.Itoa(o.Impressions),
			fmt.Sprintf("%.1f", o.AvgPosition),
			fmt.Sprintf("%.1f", o.OpportunityScore),
		})
	}

	var footer []string
	if note := cacheNote(report.FromCache); note != "" {
		footer = append(footer, note)
	}

	return r.render(table{
		Title:  "Content opportunities",
		Period: &report.Period,
		Header: []string{"Query", "Pages", "Clicks", "Impressions", "Position", "Score"},
		Rows:   rows,
		Footer: footer,
	})
}

func (r *Reporter) Pages(report api.PageSummaryReport) error {
	if r.jsonOutput {
		return r.encode(report)
	}

	rows := make([][]string, 0, len(report.Data))
	for _, p := range report.Data {
		queries := make([]string, 0, len(p.TopQueries))
		for _, q := range p.TopQueries {
			queries = append(queries, fmt.Sprintf("%s (%d)", q.Query, q.Clicks))
		}
		rows = append(rows, []string{
			p.Page,
			p.Category,
			strconv.Itoa(p.Sessions),
			strconv.Itoa(p.Clicks),
			p.Revenue.StringFixed(2),
			p.Conversions.StringFixed(2),
			strings.Join(queries, ", "),
		})
	}

	var footer []string
	if note := cacheNote(report.FromCache); note != "" {
		footer = append(footer, note)
	}

	return r.render(table{
		Title:  "Page summaries",
		Period: &report.Period,
		Header: []string{"Page", "Category", "Sessions", "Clicks", "Revenue", "Conversions", "Top queries"},
		Rows:   rows,
		Footer: footer,
	})
}

func (r *Reporter) Summary(summary api.WindowSummary) error {
	if r.jsonOutput {
		return r.encode(summary)
	}

	rows := make([][]string, 0, len(summary.Metrics))
	for _, m := range summary.Metrics {
		rows = append(rows, []string{m.Name, m.Value.String()})
	}

	var footer []string
	if note := cacheNote(summary.FromCache); note != "" {
		footer = append(footer, note)
	}

	return r.render(table{
		Title:  "Window summary",
		Period: &summary.Period,
		Header: []string{"Metric", "Value"},
		Rows:   rows,
		Footer: footer,
	})
}

func (r *Reporter) Accounts(accounts []api.Account) error {
	if r.jsonOutput {
		return r.encode(accounts)
	}

	if len(accounts) == 0 {
		_, err := fmt.Fprintln(r.writer, "No accounts configured.")
		return err
	}
	for _, a := range accounts {
		if _, err := fmt.Fprintln(r.writer, a.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) BaselineCreated(baseline api.Baseline) error {
	if r.jsonOutput {
		return r.encode(baseline)
	}

	_, err := fmt.Fprintf(r.writer, "Baseline %q stored: %d day window, %d artifacts.\n",
		baseline.Label, baseline.WindowDays, len(baseline.Files))
	return err
}

func (r *Reporter) Baselines(baselines []api.Baseline) error {
	if r.jsonOutput {
		return r.encode(baselines)
	}

	if len(baselines) == 0 {
		_, err := fmt.Fprintln(r.writer, "No baselines stored.")
		return err
	}

	rows := make([][]string, 0, len(baselines))
	for _, b := range baselines {
		rows = append(rows, []string{
			b.Label,
			b.CreatedAt.Format("2006-01-02 15:04"),
			strconv.Itoa(b.WindowDays),
			strconv.Itoa(len(b.Files)),
		})
	}

	return r.render(table{
		Title:  "Stored baselines",
		Header: []string{"Label", "Created", "Window", "Artifacts"},
		Rows:   rows,
	})
}

func (r *Reporter) Comparison(comparison api.BaselineComparison) error {
	if r.jsonOutput {
		return r.encode(comparison)
	}

	rows := make([][]string, 0, len(comparison.Deltas))
	for _, d := range comparison.Deltas {
		rows = append(rows, []string{
			d.Metric,
			d.Baseline.String(),
			d.Current.String(),
			d.Change,
		})
	}

	return r.render(table{
		Title:  fmt.Sprintf("Baseline %q vs current", comparison.Label),
		Header: []string{"Metric", "Baseline", "Current", "Change"},
		Rows:   rows,
		Footer: []string{fmt.Sprintf("Snapshot taken %s, %d day window.",
			comparison.CreatedAt.Format("2006-01-02"), comparison.WindowDays)},
	})
}

func (r *Reporter) CacheStats(stats api.CacheStats) error {
	if r.jsonOutput {
		return r.encode(stats)
	}

	if len(stats.Namespaces) == 0 {
		_, err := fmt.Fprintln(r.writer, "Cache is empty.")
		return err
	}

	rows := make([][]string, 0, len(stats.Namespaces))
	for _, ns := range stats.Namespaces {
		rows = append(rows, []string{
			ns.Source,
			strconv.Itoa(ns.TotalEntries),
			strconv.Itoa(ns.ValidEntries),
			strconv.FormatInt(ns.SizeBytes, 10),
		})
	}

	return r.render(table{
		Title:  "Cache contents",
		Header: []string{"Source", "Entries", "Valid", "Bytes"},
		Rows:   rows,
	})
}

func (r *Reporter) CacheCleared(result api.CacheClearResult) error {
	if r.jsonOutput {
		return r.encode(result)
	}

	_, err := fmt.Fprintf(r.writer, "Removed %d cache entries.\n", result.Removed)
	return err
}
