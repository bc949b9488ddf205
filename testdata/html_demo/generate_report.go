package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/discovery"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/report"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/runner"
)

// Renders testdata/samples as testdata/html_demo/report.html.
// Run from the repository root: go run ./testdata/html_demo
func main() {
	root := filepath.Join("testdata", "samples")

	files, err := discovery.Discover(root, nil, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering samples: %v\n", err)
		os.Exit(1)
	}

	collector := annotation.NewCollector()
	collector.Annotations().Root = root
	for i := range files {
		data, err := os.ReadFile(files[i].Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", files[i].Path, err)
			os.Exit(1)
		}
		collector.Add(runner.Analyze(&files[i], string(data)))
	}

	out := filepath.Join("testdata", "html_demo", "report.html")
	file, err := os.Create(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating report file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	if err := report.NewHTMLReporter(root).Format(collector.Annotations(), file); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	ann := collector.Annotations()
	totals := ann.Totals()
	fmt.Printf("HTML report generated: %s\n", out)
	fmt.Printf("  %d files, %d functions, %d host variables\n",
		len(ann.Files), ann.FunctionCount(), totals[annotation.KindDeclaration])
}
