package report

import (
	"fmt"
	"html/template"
	"io"

	"psxscreener/valuation"
)

const DefaultTitle = "PSX Fair-Value Screener (PE-based)"

var pageTemplate = template.Must(template.New("stocks").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, Arial, sans-serif; padding: 16px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 8px; }
th { cursor: pointer; background: #f2f2f2; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
<p>Click headers to sort. <em>Educational use only.</em></p>
<table id="stocks">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
<script>
(function() {
  const tbl = document.getElementById("stocks");
  const get = (r, c) => r.children[c].innerText || "";
  let asc = true;

  tbl.querySelectorAll("th").forEach((th, idx) => {
    th.addEventListener("click", () => {
      const rows = [...tbl.querySelectorAll("tbody tr")];
      rows.sort((a, b) => {
        const aN = parseFloat(get(a, idx).replace(/[^0-9.\-]/g, ""));
        const bN = parseFloat(get(b, idx).replace(/[^0-9.\-]/g, ""));
        if (!isNaN(aN) && !isNaN(bN)) return asc ? aN - bN : bN - aN;
        return asc ? get(a, idx).localeCompare(get(b, idx))
                   : get(b, idx).localeCompare(get(a, idx));
      });
      rows.forEach(r => tbl.tBodies[0].appendChild(r));
      asc = !asc;
    });
  });
})();
</script>
</body>
</html>
`))

type page struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// WriteHTML renders rows as a standalone page with click-to-sort headers.
// Rows are written in the order given.
func WriteHTML(w io.Writer, rows []valuation.Row, title string) error {
	if title == "" {
		title = DefaultTitle
	}

	p := page{Title: title, Columns: Columns, Rows: make([][]string, len(rows))}
	for i, row := range rows {
		p.Rows[i] = NewRecord(row).Cells()
	}

	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	return nil
}
