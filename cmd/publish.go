package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

// reportTask is one published file, and the data of the front matter template.
type reportTask struct {
	Date    folio.Date
	Report  string
	Summary folio.Summary
}

type publishCmd struct {
	outputDir      string
	frontMatterTpl string
}

func (*publishCmd) Name() string { return "publish" }

func (*publishCmd) Synopsis() string { return "writes the portfolio reports to a directory" }

func (*publishCmd) Usage() string {
	return `pcs publish [-o <dir>] [-frontmatter <file>]

  Writes the reports of the day into <dir>/<date>/: report.md, holding.md,
  log.md, report.html and report.json. A copy of the ledger is written to
  <dir>/transactions.jsonl.

  The front matter template, if any, is executed with .Date, .Report and
  .Summary and prepended to every markdown file, for static site generators.
`
}

func (c *publishCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputDir, "o", "reports", "Root directory for the generated reports")
	f.StringVar(&c.frontMatterTpl, "frontmatter", "", "Path to a Go template file for the report front matter")
}

func (c *publishCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var frontMatterTpl *template.Template
	if c.frontMatterTpl != "" {
		var err error
		frontMatterTpl, err = template.ParseFiles(c.frontMatterTpl)
		if err != nil {
			return fail("failed to parse front matter template: %v", err)
		}
	}

	s, release, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer release()

	report, txs, err := store.Snapshot(ctx, s, now())
	if err != nil {
		return fail("Error loading portfolio: %v", err)
	}
	if len(txs) == 0 {
		fmt.Fprintln(stdout, "Ledger is empty, nothing to publish.")
		return subcommands.ExitSuccess
	}
	folio.SortTransactions(txs)

	md := map[string]string{
		"report":  renderer.RenderReport(report, cfg.Currency),
		"holding": renderer.RenderHolding(report, cfg.Currency),
		"log":     renderer.RenderLog(txs, cfg.Currency),
	}
	files := make(map[string][]byte)
	for name, content := range md {
		if frontMatterTpl != nil {
			fm, err := renderFrontMatter(frontMatterTpl, reportTask{Date: report.AsOf, Report: name, Summary: report.Summary})
			if err != nil {
				return fail("failed to render front matter for %s report: %v", name, err)
			}
			content = fm + "\n" + content // Prepend front matter to markdown
		}
		files[filepath.Join(report.AsOf.String(), name+".md")] = []byte(content)
	}

	page, err := renderer.HTMLPage("Portfolio Report "+report.AsOf.String(), md["report"])
	if err != nil {
		return fail("failed to render HTML report: %v", err)
	}
	files[filepath.Join(report.AsOf.String(), "report.html")] = []byte(page)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fail("failed to encode JSON report: %v", err)
	}
	files[filepath.Join(report.AsOf.String(), "report.json")] = data

	var ledger bytes.Buffer
	if err := folio.EncodeTransactions(&ledger, txs); err != nil {
		return fail("failed to encode ledger: %v", err)
	}
	files["transactions.jsonl"] = ledger.Bytes()

	for filePath, content := range files {
		fullPath := filepath.Join(c.outputDir, filePath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return fail("failed to create output directory for file %s: %v", filePath, err)
		}
		if err := os.WriteFile(fullPath, content, 0644); err != nil {
			return fail("failed to write file %s: %v", filePath, err)
		}
		log.Debug().Str("file", fullPath).Msg("published")
	}
	fmt.Fprintf(stdout, "Published %d files to %s\n", len(files), c.outputDir)
	return subcommands.ExitSuccess
}

func renderFrontMatter(tpl *template.Template, task reportTask) (string, error) {
	var fmBuffer bytes.Buffer
	if err := tpl.Execute(&fmBuffer, task); err != nil {
		return "", err
	}
	return fmBuffer.String(), nil
}
