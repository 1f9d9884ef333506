package render

import (
	"html/template"
	"io"
	"strings"

	"github.com/inful/mdfigure/internal/docs"
)

// pageTemplate is the minimal HTML shell rendered pages are wrapped in. The
// closing body tag matters: the preview server injects its live reload script
// right before it.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main>
{{.Body}}</main>
</body>
</html>
`))

// Page is a rendered document wrapped in the standalone HTML shell.
type Page struct {
	Title string
	Body  template.HTML
}

// Write renders the page shell to w.
func (p Page) Write(w io.Writer) error {
	return pageTemplate.Execute(w, p)
}

// pageTitle derives the browser title for a document. Index files carry the
// site title alone.
func pageTitle(siteTitle string, doc *docs.DocFile) string {
	name := strings.ToLower(doc.Name)
	if name == "" || name == "index" || name == "readme" {
		return siteTitle
	}
	return doc.Name + " - " + siteTitle
}
