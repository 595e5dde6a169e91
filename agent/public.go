package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/docs"
	"github.com/etnz/folio/renderer"
	"github.com/etnz/folio/store"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-pro"

func orDefault(model string) string {
	if model == "" {
		return DefaultModel
	}
	return model
}

// creates the facilitator
func newFacilitator(gen Generator, model string, experts ...*Expert) *Expert {
	consultants := make([]consultant, 0, len(experts))
	for _, e := range experts {
		consultants = append(consultants, consultant{Expert: e, gen: gen})
	}
	return &Expert{
		Name:      "Facilitator",
		ModelName: orDefault(model),
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(consultants)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is here primarily to understand his portfolio: its value, its performance,
			its risk, and the news about the stocks he holds.

			Devise a plan of questions to ask to each experts and come up with the best reponse to the user's request.

			The user will assume that you know about his stock symbols, check the portfolio first to understand what they are.
		`}}},
		},
		Library: NewLibrary(consultants),
	}
}

// NewTrader creates the expert grounded on Google Search, generating with
// model, DefaultModel if empty.
func NewTrader(model string) *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert trader,
		Very well aware of the listed companies, their sectors and the market,
		about the latest news about the different companies.
		Ask the Trader whenever you need recent or grounding information.`,
		ModelName: orDefault(model),
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a expert in Trading, you can search and find about anything related to
			listed companies, sectors and markets. You Leverage Google Search to
			ground your assertions in a solid truth.
			You can get the latests news too, and you know how to relate them to the user's request.
				`}}},
		},
	}
}

// NewAccountant creates the expert that reads the user's ledger from s.
func NewAccountant(s store.Store, currency, model string, now func() time.Time) *Expert {
	a := &accountant{store: s, currency: currency, now: now}
	lib := []Function{a.reportFunc(), a.positionsFunc(), a.transactionsFunc(), topicFunc}

	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant. He is in charge of reading the user's portfolio's ledger.
		He knows the positions, their cost basis, the realized and unrealized gains, the allocation and the risk of the portfolio.`,
		ModelName: orDefault(model),
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an accountant in charge of the user's portfolio's ledger.
				You know how to use the Tools to extract relevant information about the user's portfolio and wealth.
				You are part of a team of experts, yours is everything about the user's portfolio. They might ask
				you questions about the user's portfolio, pardon their approximative language and figure out what they meant.

				Use the available tools to get for information about the user's portfolio
				  - the full report
				  - positions
				  - transactions
				  - the documentation of how figures are computed
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

type accountant struct {
	store    store.Store
	currency string
	now      func() time.Time
}

func (a *accountant) snapshot(ctx context.Context) (*folio.Report, []folio.Transaction, error) {
	r, txs, err := store.Snapshot(ctx, a.store, a.now())
	if err != nil {
		return nil, nil, fmt.Errorf("could not load ledger: %w", err)
	}
	return r, txs, nil
}

func (a *accountant) reportFunc() *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Report",
			Description: `Report computes the complete portfolio report: summary, sector allocation, position weights, winners and losers, trading activity and risk.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted report.",
			},
		},
		Func: func(ctx context.Context, _ map[string]any) (string, error) {
			r, _, err := a.snapshot(ctx)
			if err != nil {
				return "", err
			}
			return renderer.RenderReport(r, a.currency), nil
		},
	}
}

func (a *accountant) positionsFunc() *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Positions",
			Description: `Positions lists the open positions with their shares, average cost, current price, value and unrealized gain.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table of the open positions.",
			},
		},
		Func: func(ctx context.Context, _ map[string]any) (string, error) {
			r, _, err := a.snapshot(ctx)
			if err != nil {
				return "", err
			}
			return renderer.RenderHolding(r, a.currency), nil
		},
	}
}

func (a *accountant) transactionsFunc() *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Transactions",
			Description: `Transactions lists every buy and sell of the ledger, in date order.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table of the transactions.",
			},
		},
		Func: func(ctx context.Context, _ map[string]any) (string, error) {
			_, txs, err := a.snapshot(ctx)
			if err != nil {
				return "", err
			}
			folio.SortTransactions(txs)
			return renderer.RenderLog(txs, a.currency), nil
		},
	}
}

var topicFunc = &Func{
	Decl: &genai.FunctionDeclaration{
		Name:        "Documentation",
		Description: `Documentation returns the user documentation about a topic, for instance how the cost basis or the report figures are computed. Use "readme" to list the topics.`,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"topic": {
					Type:        genai.TypeString,
					Description: "The topic name.",
				},
			},
			Required: []string{"topic"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "The markdown documentation.",
		},
	},
	Func: func(_ context.Context, args map[string]any) (string, error) {
		topic, ok := args["topic"].(string)
		if !ok {
			return "", fmt.Errorf("invalid type got %T, expected string", args["topic"])
		}
		return docs.GetTopic(topic)
	},
}
