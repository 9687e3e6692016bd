package structured

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/cost"
	"github.com/sells-group/community-cli/pkg/anthropic"
	"github.com/sells-group/community-cli/pkg/perplexity"
)

// Prompt is one structured-text request.
type Prompt struct {
	System      string
	User        string
	Schema      json.RawMessage
	MaxTokens   int
	Temperature float64
}

// Completion is the raw text answer plus any web sources the backend used.
type Completion struct {
	Text      string
	Citations []community.Citation
	Model     string
	Usage     cost.Usage
}

// Backend sends a prompt to a language model.
type Backend interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (*Completion, error)
}

// PerplexityBackend completes prompts with Perplexity's json_schema
// response format and surfaces its search results as citations.
type PerplexityBackend struct {
	client perplexity.Client
	model  string
}

// NewPerplexityBackend wraps a Perplexity client.
func NewPerplexityBackend(client perplexity.Client, model string) *PerplexityBackend {
	return &PerplexityBackend{client: client, model: model}
}

// Name returns "perplexity".
func (b *PerplexityBackend) Name() string { return "perplexity" }

// Complete sends p as a system + user chat completion.
func (b *PerplexityBackend) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	req := perplexity.ChatCompletionRequest{
		Model: b.model,
		Messages: []perplexity.Message{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
	}
	if len(p.Schema) > 0 {
		req.ResponseFormat = perplexity.NewJSONSchemaFormat(p.Schema)
	}
	if p.MaxTokens > 0 {
		req.MaxTokens = &p.MaxTokens
	}
	if p.Temperature > 0 {
		req.Temperature = &p.Temperature
	}

	resp, err := b.client.ChatCompletion(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "structured: perplexity completion")
	}

	out := &Completion{
		Text:  resp.Content(),
		Model: b.model,
		Usage: cost.Usage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
		},
	}
	for _, sr := range resp.SearchResults {
		if sr.URL == "" {
			continue
		}
		out.Citations = append(out.Citations, community.Citation{Title: sr.Title, URL: sr.URL, Source: sr.Source})
	}
	if len(out.Citations) == 0 {
		for _, u := range resp.Citations {
			out.Citations = append(out.Citations, community.Citation{URL: u})
		}
	}
	return out, nil
}

// AnthropicBackend completes prompts with the Messages API. The schema is
// appended to the system prompt since there is no response-format field.
type AnthropicBackend struct {
	client anthropic.Client
	model  string
}

// NewAnthropicBackend wraps an Anthropic client.
func NewAnthropicBackend(client anthropic.Client, model string) *AnthropicBackend {
	return &AnthropicBackend{client: client, model: model}
}

// Name returns "anthropic".
func (b *AnthropicBackend) Name() string { return "anthropic" }

// Complete sends p as a single-turn message.
func (b *AnthropicBackend) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	system := p.System
	if len(p.Schema) > 0 {
		var sb strings.Builder
		sb.WriteString(system)
		sb.WriteString("\n\nRespond with a single JSON object and nothing else. It must match this JSON schema:\n")
		sb.Write(p.Schema)
		system = sb.String()
	}

	req := anthropic.MessageRequest{
		Model:     b.model,
		MaxTokens: int64(p.MaxTokens),
		System:    system,
		Messages:  []anthropic.Message{{Role: "user", Content: p.User}},
	}
	if p.Temperature > 0 {
		req.Temperature = &p.Temperature
	}

	resp, err := b.client.CreateMessage(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "structured: anthropic message")
	}
	model := resp.Model
	if model == "" {
		model = b.model
	}
	return &Completion{
		Text:  resp.Text(),
		Model: model,
		Usage: cost.Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens},
	}, nil
}
