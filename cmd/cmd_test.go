package cmd

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/etnz/folio/agent"
	"github.com/etnz/folio/config"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// setup runs commands against cfg with a frozen clock and a captured output.
func setup(t *testing.T, c *config.Config) {
	t.Helper()
	t.Setenv(EnvTestingNow, "2024-07-03 12:00:00")
	previousCfg, previousOut, previousPlain := cfg, stdout, *plain
	t.Cleanup(func() { cfg, stdout, *plain = previousCfg, previousOut, previousPlain })
	if c.Currency == "" {
		c.Currency = "TWD"
	}
	cfg = c
	*plain = true
}

// run executes the command line args and returns its output.
func run(t *testing.T, args ...string) (string, subcommands.ExitStatus) {
	t.Helper()
	var buf bytes.Buffer
	stdout = &buf
	f := flag.NewFlagSet("pcs", flag.ContinueOnError)
	commander := subcommands.NewCommander(f, "pcs")
	Register(commander)
	require.NoError(t, f.Parse(args))
	status := commander.Execute(context.Background())
	return buf.String(), status
}

func TestHolding(t *testing.T) {
	setup(t, &config.Config{Store: config.StoreDemo})
	out, status := run(t, "holding")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "# Holding on 2024-07-03")
	assert.Contains(t, out, "| 2330 | TSMC | 1000 |")
	assert.NotContains(t, out, "| 1301 |")
}

func TestReport(t *testing.T) {
	setup(t, &config.Config{Store: config.StoreDemo})

	out, status := run(t, "report")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "# Portfolio Report on 2024-07-03")
	assert.Contains(t, out, "## Risk")

	out, status = run(t, "report", "-json")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, `"asOf": "2024-07-03"`)
	assert.Contains(t, out, `"totalAssets": 1582775`)

	out, status = run(t, "report", "-html")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"), out)

	_, status = run(t, "report", "-json", "-html")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestReport_AIUnavailable(t *testing.T) {
	setup(t, &config.Config{Store: config.StoreDemo})
	previous := newGenerator
	t.Cleanup(func() { newGenerator = previous })
	newGenerator = func(context.Context) (agent.Generator, error) { return nil, errNoAI }

	out, status := run(t, "report", "-ai")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "## Commentary")
	assert.Contains(t, out, "Commentary unavailable")
}

// replies is a Generator answering the same text to every request.
type replies string

func (r replies) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: string(r)}}}}}}, nil
}

func fakeAI(t *testing.T, reply string) {
	t.Helper()
	previous := newGenerator
	t.Cleanup(func() { newGenerator = previous })
	newGenerator = func(context.Context) (agent.Generator, error) { return replies(reply), nil }
}

func TestInsight(t *testing.T) {
	setup(t, &config.Config{Store: config.StoreDemo})
	fakeAI(t, "The portfolio is concentrated in semiconductors.")
	out, status := run(t, "insight")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "# Commentary")
	assert.Contains(t, out, "concentrated in semiconductors")
}

func TestNews(t *testing.T) {
	setup(t, &config.Config{Store: config.StoreDemo})
	fakeAI(t, `[{"title":"Record revenue","source":"Reuters","url":"https://example.com","published":"2024-07-01","summary":"Up 30%."}]`)
	out, status := run(t, "news", "2330")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "## 2330")
	assert.Contains(t, out, "* **[Record revenue](https://example.com)** (Reuters, 2024-07-01): Up 30%.")

	// every open position by default
	out, status = run(t, "news")
	require.Equal(t, subcommands.ExitSuccess, status)
	for _, symbol := range []string{"2330", "0050", "2317", "2454", "2882"} {
		assert.Contains(t, out, "## "+symbol)
	}
}

func TestLedgerLifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "folio.db")
	setup(t, &config.Config{Store: config.StoreDemo, DatabasePath: db})

	out, status := run(t, "import")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Imported 8 new transactions")

	cfg.Store = config.StoreSQLite
	out, status = run(t, "buy", "-s", "2603", "-n", "Evergreen", "-q", "100", "-p", "190", "-f", "27", "-d", "-1d")
	require.Equal(t, subcommands.ExitSuccess, status)
	id := regexp.MustCompile(`\(id ([^)]+)\)`).FindStringSubmatch(out)
	require.Len(t, id, 2, out)

	out, status = run(t, "log", "-symbol", "2603")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "| 2024-07-02 | BUY | 2603 | Evergreen | 100 |")

	out, status = run(t, "holding")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "| 2603 | Evergreen | 100 |")

	out, status = run(t, "delete", id[1])
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Deleted "+id[1])

	_, status = run(t, "delete", id[1])
	assert.Equal(t, subcommands.ExitFailure, status)

	out, _ = run(t, "log", "-symbol", "2603")
	assert.Contains(t, out, "The ledger is empty")
}

func TestBuy_Invalid(t *testing.T) {
	setup(t, &config.Config{Store: config.StoreDemo})
	for name, args := range map[string][]string{
		"no symbol":   {"buy", "-q", "1", "-p", "1"},
		"bad shares":  {"buy", "-s", "2330", "-q", "many", "-p", "1"},
		"zero shares": {"sell", "-s", "2330", "-q", "0", "-p", "1"},
		"bad date":    {"buy", "-s", "2330", "-q", "1", "-p", "1", "-d", "tomorrow"},
	} {
		t.Run(name, func(t *testing.T) {
			_, status := run(t, args...)
			assert.Equal(t, subcommands.ExitUsageError, status)
		})
	}
}

func TestLog_Filter(t *testing.T) {
	setup(t, &config.Config{Store: config.StoreDemo})

	out, status := run(t, "log", "-s", "2024-01-01", "-d", "2024-03-31")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, 3, strings.Count(out, "| 2024-0"), out)

	out, _ = run(t, "log", "-tail", "1")
	assert.Contains(t, out, "| 2024-06-28 | SELL | 1301 |")
	assert.NotContains(t, out, "| 2023-10-01 |")

	_, status = run(t, "log", "-head", "1", "-tail", "1")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestTopic(t *testing.T) {
	setup(t, &config.Config{Store: config.StoreDemo})

	out, status := run(t, "topic")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "# folio documentation")

	out, status = run(t, "topic", "-l")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "cost-basis\tCost basis\n")

	_, status = run(t, "topic", "nope")
	assert.Equal(t, subcommands.ExitFailure, status)
}

func TestCompletion(t *testing.T) {
	commander := subcommands.NewCommander(flag.NewFlagSet("pcs", flag.ContinueOnError), "pcs")
	Register(commander)
	c := Completion(commander)

	require.Contains(t, c.Sub, "report")
	assert.Contains(t, c.Sub["report"].Flags, "json")
	assert.Contains(t, c.Sub["buy"].Flags, "s")
	assert.Contains(t, c.Flags, "store")
	assert.Contains(t, c.Sub["topic"].Args.Predict(""), "cost-basis")
	assert.ElementsMatch(t, []string{"demo", "sheet", "sqlite"}, c.Flags["store"].Predict(""))
}

// models is a Generator recording the model of every request.
type models struct{ used []string }

func (m *models) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.used = append(m.used, model)
	return replies("Mostly semiconductors.").GenerateContent(ctx, model, contents, config)
}

func TestAssist_Model(t *testing.T) {
	setup(t, &config.Config{Store: config.StoreDemo, Model: "gemini-2.5-flash"})
	gen := &models{}
	previous, previousIn := newGenerator, stdin
	t.Cleanup(func() { newGenerator, stdin = previous, previousIn })
	newGenerator = func(context.Context) (agent.Generator, error) { return gen, nil }
	stdin = strings.NewReader("bye\n")

	out, status := run(t, "assist", "what", "do", "I", "hold?")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Mostly semiconductors.")
	require.NotEmpty(t, gen.used)
	for _, m := range gen.used {
		assert.Equal(t, "gemini-2.5-flash", m)
	}
}
