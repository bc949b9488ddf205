package report

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
)

// HTMLReporter renders every annotated source file with hover decorations
type HTMLReporter struct {
	sourceRoot string
}

// NewHTMLReporter creates a new HTML reporter. Annotated paths are read
// relative to sourceRoot.
func NewHTMLReporter(sourceRoot string) *HTMLReporter {
	return &HTMLReporter{sourceRoot: sourceRoot}
}

// Format formats annotations as HTML and writes to the writer
func (r *HTMLReporter) Format(ann *annotation.Annotations, writer io.Writer) error {
	files := ann.GetFiles()

	if err := r.writeHeader(ann, writer); err != nil {
		return err
	}

	if err := r.writeSummary(ann, files, writer); err != nil {
		return err
	}

	for _, file := range files {
		if err := r.writeFileDetail(ann.Files[file], writer); err != nil {
			return err
		}
	}

	return r.writeFooter(writer)
}

// writeHeader writes the HTML document header with CSS
func (r *HTMLReporter) writeHeader(ann *annotation.Annotations, writer io.Writer) error {
	timestamp := time.Now().Format(time.RFC1123)
	if !ann.Timestamp.IsZero() {
		timestamp = ann.Timestamp.Format(time.RFC1123)
	}

	_, err := fmt.Fprintf(writer, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>esqlscan Host Variable Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; background: #f5f5f5; color: #333; }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        header { background: #2c3e50; color: white; padding: 30px 0; margin-bottom: 30px; }
        header h1 { font-size: 2.2em; margin-bottom: 10px; }
        header .meta { opacity: 0.8; font-size: 0.9em; }
        section { background: white; border-radius: 8px; padding: 25px; margin-bottom: 30px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        section h2, section h3 { margin-bottom: 15px; color: #2c3e50; }
        table { width: 100%%; border-collapse: collapse; }
        th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ecf0f1; }
        td.num { text-align: right; font-variant-numeric: tabular-nums; }
        .file-name { font-family: 'Courier New', monospace; }
        .source-code { background: #282c34; color: #abb2bf; font-family: 'Courier New', monospace; font-size: 0.9em; line-height: 1.6; border-radius: 6px; overflow-x: auto; }
        .source-line { display: flex; }
        .line-number { padding: 0 15px; text-align: right; user-select: none; color: #5c6370; min-width: 60px; }
        .line-content { padding: 0 15px; flex: 1; white-space: pre; }
        .declaration { color: #e5c07b; text-decoration: underline; }
        .sql-reference { color: #61afef; font-weight: bold; }
        .bare-reference { color: #98c379; text-decoration: underline dotted; }
        .sql-statement { background: rgba(198, 120, 221, 0.12); }
        .missing { color: #7f8c8d; font-style: italic; }
        footer { text-align: center; padding: 30px 0; color: #7f8c8d; font-size: 0.9em; }
    </style>
</head>
<body>
    <header>
        <div class="container">
            <h1>esqlscan Host Variable Report</h1>
            <div class="meta">Generated: %s | Version: %s</div>
        </div>
    </header>
    <div class="container">
`, timestamp, html.EscapeString(ann.Version))
	return err
}

// writeSummary writes one table row per file
func (r *HTMLReporter) writeSummary(ann *annotation.Annotations, files []string, writer io.Writer) error {
	if _, err := io.WriteString(writer, `        <section class="summary">
            <h2>Summary</h2>
            <table>
                <tr><th>File</th><th>Language</th><th>Functions</th><th>Declarations</th><th>SQL references</th><th>Bare references</th><th>Statements</th></tr>
`); err != nil {
		return err
	}

	for _, file := range files {
		f := ann.Files[file]
		_, err := fmt.Fprintf(writer, "                <tr><td class=\"file-name\">%s</td><td>%s</td><td class=\"num\">%d</td><td class=\"num\">%d</td><td class=\"num\">%d</td><td class=\"num\">%d</td><td class=\"num\">%d</td></tr>\n",
			html.EscapeString(file), html.EscapeString(f.Language), len(f.Functions),
			f.Count(annotation.KindDeclaration), f.Count(annotation.KindSQLReference),
			f.Count(annotation.KindBareReference), f.Count(annotation.KindSQLStatement))
		if err != nil {
			return err
		}
	}

	totals := ann.Totals()
	_, err := fmt.Fprintf(writer, `                <tr><th>Total</th><th></th><th class="num">%d</th><th class="num">%d</th><th class="num">%d</th><th class="num">%d</th><th class="num">%d</th></tr>
            </table>
        </section>

`, ann.FunctionCount(), totals[annotation.KindDeclaration], totals[annotation.KindSQLReference],
		totals[annotation.KindBareReference], totals[annotation.KindSQLStatement])
	return err
}

// writeFileDetail writes the decorated source of a single file
func (r *HTMLReporter) writeFileDetail(f *annotation.FileAnnotations, writer io.Writer) error {
	_, err := fmt.Fprintf(writer, `        <section class="file-detail">
            <h3 class="file-name">%s</h3>
`, html.EscapeString(f.Path))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(r.sourceRoot, filepath.FromSlash(f.Path)))
	if err != nil {
		_, err = fmt.Fprintf(writer, "            <p class=\"missing\">source not available: %s</p>\n        </section>\n\n", html.EscapeString(err.Error()))
		return err
	}

	if _, err := io.WriteString(writer, "            <div class=\"source-code\">\n"); err != nil {
		return err
	}

	text := string(data)
	lines := annotation.NewLineIndex(text)
	anns := f.Sorted()
	for n := 1; n <= lines.Lines(); n++ {
		start := lines.LineStart(n)
		end := len(text)
		if n < lines.Lines() {
			end = lines.LineStart(n+1) - 1
		}
		var b strings.Builder
		renderLine(&b, text, start, end, anns)
		if _, err := fmt.Fprintf(writer, "                <div class=\"source-line\"><div class=\"line-number\">%d</div><div class=\"line-content\">%s</div></div>\n", n, b.String()); err != nil {
			return err
		}
	}

	_, err = io.WriteString(writer, "            </div>\n        </section>\n\n")
	return err
}

// renderLine writes text[start:end] as escaped HTML. Each run of bytes is
// wrapped in a span for the innermost annotation covering it.
func renderLine(b *strings.Builder, text string, start, end int, anns []annotation.Annotation) {
	pos := start
	for pos < end {
		next := end
		var inner *annotation.Annotation
		for i := range anns {
			a := &anns[i]
			if a.Offset > pos {
				next = min(next, a.Offset)
				continue
			}
			if a.End() <= pos {
				continue
			}
			next = min(next, a.End())
			if inner == nil || a.Length < inner.Length {
				inner = a
			}
		}

		chunk := html.EscapeString(text[pos:next])
		if inner == nil {
			b.WriteString(chunk)
		} else {
			fmt.Fprintf(b, `<span class="%s" title="%s">%s</span>`, inner.Kind, html.EscapeString(inner.Label), chunk)
		}
		pos = next
	}
}

// writeFooter writes the HTML document footer
func (r *HTMLReporter) writeFooter(writer io.Writer) error {
	_, err := io.WriteString(writer, `        <footer>
            Generated by <strong>esqlscan</strong> - embedded SQL host variable annotator
        </footer>
    </div>
</body>
</html>
`)
	return err
}

// FormatString returns annotations as an HTML string
func (r *HTMLReporter) FormatString(ann *annotation.Annotations) (string, error) {
	var buf strings.Builder
	if err := r.Format(ann, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Name returns the name of this reporter
func (r *HTMLReporter) Name() string {
	return "html"
}
