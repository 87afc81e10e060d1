package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

// cardColors cycles through the per-column summary cards.
var cardColors = []string{"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899"}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"cardColor": func(i int) string {
		return cardColors[i%len(cardColors)]
	},
	"pct": func(v float64) string {
		return fmt.Sprintf("%.1f", v)
	},
	"ratio": func(v float64) string {
		return fmt.Sprintf("%.3f", v)
	},
	"avg": func(v float64) string {
		return fmt.Sprintf("%.1f", v)
	},
	"meaningsFor": func(t TopCode, column string) []string {
		return t.PerColumn[column]
	},
	"friendly": FriendlyName,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Meanings Comparison Report</title>
<style>
  *, *::before, *::after { box-sizing: border-box; }
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
         margin: 0; padding: 2rem; background: #f8fafc; color: #1e293b; line-height: 1.6; }
  h1 { margin: 0 0 .25rem; font-size: 1.8rem; }
  .subtitle { color: #64748b; margin-bottom: 2rem; }
  h2 { margin: 2.5rem 0 1rem; font-size: 1.3rem; border-bottom: 2px solid #e2e8f0; padding-bottom: .4rem; }
  .cards { display: flex; gap: 1rem; flex-wrap: wrap; margin-bottom: 1.5rem; }
  .card { border-radius: 10px; padding: 1.25rem 1.5rem; color: #fff; min-width: 200px; flex: 1; }
  .card .label { font-size: .85rem; opacity: .85; margin-bottom: .25rem; }
  .card .big { font-size: 2rem; font-weight: 700; }
  .card .detail { font-size: .8rem; opacity: .8; margin-top: .35rem; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; background: #fff;
          border-radius: 8px; overflow: hidden; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
  th, td { padding: .65rem 1rem; text-align: left; }
  th { background: #f1f5f9; font-weight: 600; font-size: .85rem; color: #475569; text-transform: uppercase; letter-spacing: .03em; }
  tr:nth-child(even) td { background: #f8fafc; }
  td { font-size: .9rem; border-top: 1px solid #e2e8f0; }
  .num { text-align: right; font-variant-numeric: tabular-nums; }
  .tag { display: inline-block; background: #e2e8f0; color: #334155; border-radius: 4px;
         padding: .15rem .45rem; font-size: .78rem; margin: .15rem .2rem .15rem 0; }
  .overview-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 1rem; margin-bottom: 1.5rem; }
  .overview-box { background: #fff; border-radius: 8px; padding: 1rem 1.25rem; box-shadow: 0 1px 3px rgba(0,0,0,.08); text-align: center; }
  .overview-box .big { font-size: 1.6rem; font-weight: 700; color: #1e293b; }
  .overview-box .label { font-size: .8rem; color: #64748b; }
</style>
</head>
<body>
<h1>Meanings Comparison Report</h1>
<p class="subtitle">{{.TotalCodes}} airport codes &middot; {{len .Columns}} meaning columns</p>

<h2>Per-Column Summary</h2>
<div class="cards">
{{- range $i, $s := .PerColumn}}
<div class="card" style="background:{{cardColor $i}}">
  <div class="label">{{$s.Friendly}}</div>
  <div class="big">{{$s.Count}}</div>
  <div class="detail">{{pct $s.Pct}}% of codes &middot; {{$s.TotalMeanings}} total meanings</div>
  <div class="detail">avg {{avg $s.Avg}} &middot; min {{$s.Min}} &middot; max {{$s.Max}} per code</div>
</div>
{{- end}}
</div>

<h2>Overall Overlap</h2>
<div class="overview-grid">
<div class="overview-box">
  <div class="big">{{.Overlap.Any}}</div>
  <div class="label">In Any Column ({{pct .Overlap.AnyPct}}%)</div>
</div>
<div class="overview-box">
  <div class="big">{{.Overlap.All}}</div>
  <div class="label">In All Columns ({{pct .Overlap.AllPct}}%)</div>
</div>
<div class="overview-box">
  <div class="big">{{.Overlap.None}}</div>
  <div class="label">No Meanings ({{pct .Overlap.NonePct}}%)</div>
</div>
</div>

{{- if .Pairwise}}
<h2>Pairwise Overlap</h2>
<table>
<tr><th>Column A</th><th>Column B</th><th class="num">Both</th><th class="num">Only A</th><th class="num">Only B</th><th class="num">Jaccard</th></tr>
{{- range .Pairwise}}
<tr><td>{{.FriendlyA}}</td><td>{{.FriendlyB}}</td><td class="num">{{.Both}}</td><td class="num">{{.OnlyA}}</td><td class="num">{{.OnlyB}}</td><td class="num">{{ratio .Jaccard}}</td></tr>
{{- end}}
</table>
{{- end}}

{{- if .Agreement}}
<h2>Agreement Analysis</h2>
<p>For codes present in both columns, how often they share at least one normalized meaning token.</p>
<table>
<tr><th>Column A</th><th>Column B</th><th class="num">Shared Codes</th><th class="num">Agree</th><th class="num">Rate</th></tr>
{{- range .Agreement}}
<tr><td>{{.FriendlyA}}</td><td>{{.FriendlyB}}</td><td class="num">{{.SharedCodes}}</td><td class="num">{{.AgreeCount}}</td><td class="num">{{pct .AgreePct}}%</td></tr>
{{- end}}
</table>
{{- end}}

{{- if .TopCodes}}
<h2>Top {{len .TopCodes}} Codes by Distinct Meanings</h2>
<table>
<tr><th>Code</th><th class="num">Distinct</th>{{range .Columns}}<th>{{friendly .}}</th>{{end}}</tr>
{{- $columns := .Columns}}
{{- range .TopCodes}}
{{- $top := .}}
<tr><td><strong>{{.Code}}</strong></td><td class="num">{{.Distinct}}</td>
{{- range $columns}}
<td>{{- $meanings := meaningsFor $top . -}}
{{- if $meanings}}{{range $meanings}}<span class="tag">{{.}}</span>{{end}}{{else}}&mdash;{{end}}</td>
{{- end}}
</tr>
{{- end}}
</table>
{{- end}}
</body></html>
`))

// Render writes the HTML report for stats to w.
func Render(w io.Writer, stats *Stats) error {
	return reportTemplate.Execute(w, stats)
}

// WriteFile renders the report to path, creating parent directories.
func WriteFile(path string, stats *Stats) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := Render(f, stats); err != nil {
		f.Close()
		return fmt.Errorf("render report: %w", err)
	}
	return f.Close()
}
