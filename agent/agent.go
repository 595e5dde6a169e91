// Package agent implements the AI assistant and the AI insights of the
// portfolio, on top of Gemini.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w           io.Writer
	in          *bufio.Scanner
	gen         Generator
	Facilitator *Expert
	Experts     []*Expert
}

// New creates an Agent talking through gen, writing to w and reading the
// user's questions from r, one per line. The facilitator generates with model,
// DefaultModel if empty.
func New(gen Generator, model string, w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		in:          bufio.NewScanner(r),
		gen:         gen,
		Experts:     experts,
		Facilitator: newFacilitator(gen, model, experts...),
	}
}

const prompt = "assist> "

// Run is the interactive session. prompts are answered first, as if the user
// typed them. It ends on "bye" or at the end of the input.
func (a *Agent) Run(ctx context.Context, prompts ...string) error {
	fmt.Fprintln(a.w, "Welcome to folio assist. Type 'bye' to exit.")
	for {
		fmt.Fprint(a.w, prompt)
		input, ok := a.next(&prompts)
		if !ok {
			return a.in.Err()
		}
		switch input {
		case "":
			continue
		case "bye":
			return nil
		}

		content, err := a.Facilitator.Ask(ctx, a.gen, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, textOf(content))
	}
}

// next returns the next pending prompt, echoed, or the next line typed.
func (a *Agent) next(prompts *[]string) (string, bool) {
	if len(*prompts) > 0 {
		p := strings.TrimSpace((*prompts)[0])
		*prompts = (*prompts)[1:]
		fmt.Fprintln(a.w, p)
		return p, true
	}
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}
