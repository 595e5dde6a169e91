package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/news"
	"google.golang.org/genai"
)

// Analyst produces the AI insights of a portfolio: a commentary of its
// current state and the recent news about its stocks.
//
// Every call is a fresh conversation, an Analyst is safe for concurrent use.
type Analyst struct {
	gen   Generator
	model string
}

// NewAnalyst returns an Analyst generating with model, DefaultModel if empty.
func NewAnalyst(gen Generator, model string) *Analyst {
	return &Analyst{gen: gen, model: orDefault(model)}
}

var _ news.Fetcher = (*Analyst)(nil)

const commentaryInstruction = `
You are a portfolio analyst writing for a retail investor.
Given the summary and the positions of a stock portfolio, write a short commentary in markdown:
an overall assessment, the concentration and risk you notice, and one or two points of attention.
Do not invent figures, only use the ones provided. Do not give buy or sell orders.
`

// Commentary returns a markdown narrative about the portfolio.
func (a *Analyst) Commentary(ctx context.Context, summary folio.Summary, positions []folio.Position) (string, error) {
	data, err := json.Marshal(struct {
		Summary   folio.Summary    `json:"summary"`
		Positions []folio.Position `json:"positions"`
	}{summary, positions})
	if err != nil {
		return "", err
	}

	e := &Expert{
		Name:      "Analyst",
		ModelName: a.model,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: commentaryInstruction}}},
		},
	}
	content, err := e.Ask(ctx, a.gen, &genai.Part{Text: "Here is my portfolio:\n" + string(data)})
	if err != nil {
		return "", fmt.Errorf("could not generate commentary: %w", err)
	}
	return strings.TrimSpace(textOf(content)), nil
}

const newsInstruction = `
You are a financial news desk. Search the web for the most recent news about the listed company
identified by the stock symbol given by the user.
Answer with a JSON array only, at most 5 items, most recent first, each item being an object with
the fields "title", "source", "url", "published" (YYYY-MM-DD) and "summary" (one sentence).
Answer [] if you find nothing.
`

// News looks up recent news about symbol, grounded on Google Search.
func (a *Analyst) News(ctx context.Context, symbol string) ([]news.Item, error) {
	e := &Expert{
		Name:      "News",
		ModelName: a.model,
		Config: &genai.GenerateContentConfig{
			Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: newsInstruction}}},
		},
	}
	content, err := e.Ask(ctx, a.gen, &genai.Part{Text: symbol})
	if err != nil {
		return nil, fmt.Errorf("could not fetch news for %s: %w", symbol, err)
	}
	items, err := parseNews(textOf(content))
	if err != nil {
		return nil, fmt.Errorf("could not read news for %s: %w", symbol, err)
	}
	return items, nil
}

// newsItem is the JSON an Analyst is asked to answer, dates are loosely formatted.
type newsItem struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	URL       string `json:"url"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
}

// parseNews extracts the JSON array of news from a model reply, possibly
// wrapped in a markdown code fence or in some prose.
func parseNews(reply string) ([]news.Item, error) {
	start, end := strings.Index(reply, "["), strings.LastIndex(reply, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in reply %q", reply)
	}
	var raw []newsItem
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return nil, err
	}
	items := make([]news.Item, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		item := news.Item{Title: r.Title, Source: r.Source, URL: r.URL, Summary: r.Summary}
		if d, err := folio.ParseDate(r.Published); r.Published != "" && err == nil {
			item.Published = d.Time()
		}
		items = append(items, item)
	}
	return items, nil
}

// textOf concatenates the text parts of a content.
func textOf(c *genai.Content) string {
	var b strings.Builder
	for _, p := range c.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
