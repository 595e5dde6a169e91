package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Generator is the content generation part of the Gemini client (client.Models).
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// maxFunctionCalls bounds the function call round trips of a single question.
const maxFunctionCalls = 8

// Expert represent a conversation with a business expert.
type Expert struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	ModelName   string                       `json:"model_name"`
	Config      *genai.GenerateContentConfig `json:"config"`
	Library     Library
	history     []*genai.Content
}

// Ask sends parts to the expert and returns its answer. The expert keeps the
// context of previous questions.
//
// Function calls requested by the model are answered from the Library until a
// real response comes back.
func (e *Expert) Ask(ctx context.Context, gen Generator, parts ...*genai.Part) (*genai.Content, error) {
	e.history = append(e.history, &genai.Content{Role: genai.RoleUser, Parts: parts})

	for range maxFunctionCalls {
		resp, err := gen.GenerateContent(ctx, e.ModelName, e.history, e.Config)
		if err != nil {
			return nil, err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("no response from expert %s", e.Name)
		}
		content := resp.Candidates[0].Content
		if content.Role == "" {
			content.Role = genai.RoleModel
		}
		e.history = append(e.history, content)

		part0 := content.Parts[0]
		if part0.FunctionCall == nil {
			return content, nil
		}
		if e.Library == nil {
			return nil, fmt.Errorf("expert %s doesn't know how to make function calls", e.Name)
		}
		log.Debug().Str("expert", e.Name).Str("function", part0.FunctionCall.Name).Msg("function call")

		// No possible error, this error should be sent via 'resp'
		fresp := e.Library(ctx, part0.FunctionCall)
		e.history = append(e.history, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{FunctionResponse: fresp}}})
	}
	return nil, fmt.Errorf("expert %s made too many function calls", e.Name)
}

// Declaration returns the function declaration to ask this expert.
func (e *Expert) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        e.Name,
		Description: e.Description,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {
					Type:        genai.TypeString,
					Description: "The question to ask the expert.",
				},
			},
			Required: []string{"question"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "Expert's response.",
		},
	}
}

// consultant lets an expert be called as a function by another expert.
type consultant struct {
	*Expert
	gen Generator
}

// Call perform the call of asking this expert.
func (c consultant) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	d := c.Declaration()
	fresp := &genai.FunctionResponse{
		ID:   id,
		Name: d.Name,
	}

	arg0 := args[d.Parameters.Required[0]]
	question, ok := arg0.(string)
	if !ok {
		fresp.Response = map[string]any{"error": fmt.Sprintf("invalid type got %T, expected string", arg0)}
		return fresp
	}

	response, err := c.Ask(ctx, c.gen, &genai.Part{Text: question})
	if err != nil {
		fresp.Response = map[string]any{"error": fmt.Sprintf("something went wrong while calling the expert: %v", err)}
		return fresp
	}

	r := response.Parts[0].Text
	log.Debug().Str("expert", c.Name).Str("question", question).Str("answer", r).Msg("expert consulted")
	fresp.Response = map[string]any{
		"output": r,
	}
	return fresp
}
