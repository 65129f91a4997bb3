package dashboard

import "html/template"

const missingTableHint = "Run `psxscreener build` once to create data/stocks.csv"

type pageData struct {
	Title     string
	Filter    Filter
	SliderMin int
	SliderMax int
	Columns   []string
	Rows      [][]string
	Total     int
	Missing   string
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, Arial, sans-serif; padding: 16px; }
form { display: flex; gap: 24px; align-items: center; margin-bottom: 12px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 6px 8px; }
th { background: #f2f2f2; }
.warning { background: #fff4e5; border: 1px solid #f0c36d; padding: 12px; }
.caption { color: #666; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
{{- if .Missing}}
<p class="warning">{{.Missing}}</p>
{{- else}}
<p class="caption">Educational use only. Numbers are approximate/paraphrased from PSX company pages.</p>
<form method="get" action="/">
  <label>Filter by sector text
    <input type="text" name="sector" value="{{.Filter.Sector}}">
  </label>
  <label>Min discount vs fair (%)
    <input type="range" name="min_discount" min="{{.SliderMin}}" max="{{.SliderMax}}" step="1"
      value="{{.Filter.MinDiscountPct}}" oninput="this.nextElementSibling.value = this.value"
      onchange="this.form.submit()">
    <output>{{.Filter.MinDiscountPct}}</output>
  </label>
  <button type="submit">Apply</button>
</form>
<p class="caption">{{len .Rows}} of {{.Total}} rows</p>
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- end}}
</body>
</html>
`))
