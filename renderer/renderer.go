// Package renderer renders reports as markdown, and markdown as HTML.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/folio"
)

//go:embed templates
var templatesFS embed.FS

var templates = mustSub(templatesFS, "templates")

func mustSub(f fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(f, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// RenderHolding renders the open positions of a report to markdown.
func RenderHolding(r *folio.Report, currency string) string {
	partials := map[string]string{
		"holding_title":     "holding_title.md",
		"holding_positions": "holding_positions.md",
		"holding_summary":   "holding_summary.md",
	}
	return renderTemplate("holding", "holding.md", partials, newReportView(r, currency))
}

// RenderReport renders the full analytics report to markdown.
func RenderReport(r *folio.Report, currency string) string {
	partials := map[string]string{
		"report_title":      "report_title.md",
		"report_summary":    "report_summary.md",
		"report_allocation": "report_allocation.md",
		"report_movers":     "report_movers.md",
		"report_activity":   "report_activity.md",
		"report_risk":       "report_risk.md",
	}
	return renderTemplate("report", "report.md", partials, newReportView(r, currency))
}

// RenderLog renders the ledger to markdown, in the given order.
func RenderLog(txs []folio.Transaction, currency string) string {
	return renderTemplate("log", "log.md", nil, &logView{Transactions: txs, formatter: formatter(currency)})
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
