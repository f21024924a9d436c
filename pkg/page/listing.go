package page

import (
	"bytes"
	"html/template"
	"sort"
	"strings"

	"go.uber.org/zap"
)

type (
	listing struct {
		Path    string
		Entries []listEntry
	}
	listEntry struct {
		Name   string
		Folder bool
		Size   int
		Hash   string
	}
)

var listTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>Contents of {{.Path}}</title>
	<link rel="icon" href="data:image/png;base64,iVBORw0KGgo=">
	<style>
		body { font-family: monospace; }
		th, td { text-align: left; padding-right: 20px; }
	</style>
</head>
<body>
	<h1>Contents of {{.Path}}</h1>
	<table>
		<tr>
			<th>&nbsp;</th>
			<th>Item</th>
			<th>Size</th>
			<th>Hash</th>
		</tr>
{{- range .Entries}}
		<tr>
			<td>{{if .Folder}}&#128193;{{else}}&#128196;{{end}}</td>
			<td><a href="{{$.Path}}{{.Name}}">{{.Name}}</a></td>
			<td>{{if .Folder}}&nbsp;{{else}}{{.Size}}{{end}}</td>
			<td>{{if .Folder}}&nbsp;{{else}}{{.Hash}}{{end}}</td>
		</tr>
{{- end}}
	</table>
</body>
</html>
`))

// ListFolder renders a deterministic directory listing for a folder path.
// Immediate child folders and files below path are listed in lexical order,
// with a parent entry unless path is the page's own root. It reports false
// when nothing lives below path.
func (p *Page) ListFolder(path string) (string, bool) {
	s := p.snapshot()
	if s == nil {
		return "", false
	}

	entries := map[string]listEntry{}
	for _, full := range s.paths {
		rest, ok := strings.CutPrefix(full, path)
		if !ok {
			continue
		}
		if child, _, ok := strings.Cut(rest, "/"); ok {
			name := child + "/"
			entries[name] = listEntry{Name: name, Folder: true}
		} else {
			file := s.files[full]
			entries[rest] = listEntry{Name: rest, Size: len(file.Data), Hash: file.Hash}
		}
	}
	if len(entries) == 0 {
		return "", false
	}

	if path != p.config.Prefix {
		entries["../"] = listEntry{Name: "../", Folder: true}
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	data := listing{Path: path}
	for _, name := range names {
		data.Entries = append(data.Entries, entries[name])
	}

	var buf bytes.Buffer
	if err := listTemplate.Execute(&buf, data); err != nil {
		p.l.Error("failed to render folder listing", zap.Error(err))
		return "", false
	}
	return buf.String(), true
}
