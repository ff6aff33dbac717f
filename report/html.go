package report

import (
	"html/template"
	"io"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <script src="https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"></script>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            max-width: 1200px;
            margin: 40px auto;
            padding: 0 20px;
            line-height: 1.6;
        }
        h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 10px; }
        h2 { color: #34495e; margin-top: 40px; border-left: 4px solid #3498db; padding-left: 15px; }
        table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        th, td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; }
        th { background-color: #3498db; color: white; font-weight: 600; }
        .mermaid { padding: 20px; margin: 20px 0; }
    </style>
</head>
<body>
{{.Body}}
<script>
    mermaid.initialize({ startOnLoad: true, theme: 'default' });
</script>
</body>
</html>
`))

const (
	mermaidOpen  = `<pre><code class="language-mermaid">`
	mermaidClose = `</code></pre>`
)

// HTML renders a Markdown report as a standalone page. Fenced mermaid
// blocks become diagrams drawn in the browser.
func HTML(w io.Writer, markdown []byte, title string) error {
	body := mermaidBlocks(string(blackfriday.Run(markdown)))
	return page.Execute(w, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
}

// mermaidBlocks swaps blackfriday's code blocks for the div mermaid.js
// looks for. The escaped content is left alone: mermaid reads text.
func mermaidBlocks(html string) string {
	var sb strings.Builder
	for {
		i := strings.Index(html, mermaidOpen)
		if i < 0 {
			break
		}
		j := strings.Index(html[i:], mermaidClose)
		if j < 0 {
			break
		}
		sb.WriteString(html[:i])
		sb.WriteString(`<div class="mermaid">`)
		sb.WriteString(html[i+len(mermaidOpen) : i+j])
		sb.WriteString(`</div>`)
		html = html[i+j+len(mermaidClose):]
	}
	sb.WriteString(html)
	return sb.String()
}
