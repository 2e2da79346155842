package report

const ganttTemplate = `@startgantt
Project starts the {{.ProjectStart}}
{{range .Lines -}}
[{{.Name}}] as [{{.ID}}] starts the {{.Start}} and lasts {{.Days}} days and is colored in {{.Color}}
{{end -}}
{{.Extra}}@endgantt
`

const narrativeTemplate = `# {{.Project}}
{{range .Epics}}
## {{.Heading}}

_{{.Status}}, {{.Percent}}% accepted, {{.Start}} to {{.End}} ({{.Days}} days)_
{{- if .Description}}

{{.Description}}
{{- end}}
{{- if .NotStarted}}

### Not yet started
{{range .NotStarted}}
- [{{.Name}}]({{.URL}})
{{- end}}
{{- end}}
{{end -}}
{{if .Extra}}
{{.Extra}}{{end}}`
