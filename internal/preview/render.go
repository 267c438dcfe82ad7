package preview

import (
	"html/template"
	"io"
)

// TemplateName is the name the preview page is registered under
const TemplateName = "preview.html"

const page = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:sans-serif;margin:2rem;color:#1f2933}
table{border-collapse:collapse;margin-bottom:1.5rem;width:100%}
th,td{border:1px solid #cbd2d9;padding:.3rem .6rem;text-align:left}
th{background:#d9e1f2}
.note{color:#616e7c;font-style:italic}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Sections}}<section>
<h2>{{.Title}}{{if .Truncated}} <small class="note">({{.Indicator}})</small>{{end}}</h2>
{{if .Empty}}<p class="note">{{.Placeholder}}</p>
{{else}}<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{end}}</section>
{{end}}</body>
</html>
`

var tmpl = template.Must(template.New(TemplateName).Parse(page))

// Template returns the parsed preview template, for hosts that render
// through their own engine.
func Template() *template.Template {
	return tmpl
}

// Render writes m as an HTML page. Every interpolated value is escaped.
func Render(w io.Writer, m *Model) error {
	return tmpl.Execute(w, m)
}
