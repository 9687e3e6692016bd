package structured

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/cost"
	"github.com/sells-group/community-cli/pkg/anthropic"
	"github.com/sells-group/community-cli/pkg/perplexity"
)

type fakePerplexity struct {
	got  perplexity.ChatCompletionRequest
	resp *perplexity.ChatCompletionResponse
	err  error
}

func (f *fakePerplexity) ChatCompletion(_ context.Context, req perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	f.got = req
	return f.resp, f.err
}

type fakeAnthropic struct {
	got  anthropic.MessageRequest
	resp *anthropic.MessageResponse
	err  error
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.got = req
	return f.resp, f.err
}

func testPrompt() Prompt {
	return Prompt{System: "sys", User: "user", Schema: itemsSchema, MaxTokens: 900, Temperature: 0.2}
}

func TestPerplexityBackend_Complete(t *testing.T) {
	fake := &fakePerplexity{resp: &perplexity.ChatCompletionResponse{
		Choices: []perplexity.Choice{{Message: perplexity.Message{Role: "assistant", Content: `{"items":[]}`}}},
		SearchResults: []perplexity.SearchResult{
			{Title: "Visit Austin", URL: "https://www.austintexas.org", Source: "web"},
			{Title: "no url"},
		},
		Citations: []string{"https://ignored.example"},
		Usage:     perplexity.Usage{PromptTokens: 410, CompletionTokens: 220},
	}}
	b := NewPerplexityBackend(fake, "sonar-pro")

	c, err := b.Complete(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, c.Text)
	assert.Equal(t, []community.Citation{{Title: "Visit Austin", URL: "https://www.austintexas.org", Source: "web"}}, c.Citations)
	assert.Equal(t, "sonar-pro", c.Model)
	assert.Equal(t, cost.Usage{InputTokens: 410, OutputTokens: 220}, c.Usage)

	require.Len(t, fake.got.Messages, 2)
	assert.Equal(t, "system", fake.got.Messages[0].Role)
	assert.Equal(t, "user", fake.got.Messages[1].Content)
	assert.Equal(t, "sonar-pro", fake.got.Model)
	require.NotNil(t, fake.got.ResponseFormat)
	assert.Equal(t, "json_schema", fake.got.ResponseFormat.Type)
	assert.JSONEq(t, string(itemsSchema), string(fake.got.ResponseFormat.JSONSchema.Schema))
	require.NotNil(t, fake.got.MaxTokens)
	assert.Equal(t, 900, *fake.got.MaxTokens)
	assert.Equal(t, "perplexity", b.Name())
}

func TestPerplexityBackend_CitationsFallback(t *testing.T) {
	fake := &fakePerplexity{resp: &perplexity.ChatCompletionResponse{
		Choices:   []perplexity.Choice{{Message: perplexity.Message{Content: "{}"}}},
		Citations: []string{"https://a.example", "https://b.example"},
	}}
	c, err := NewPerplexityBackend(fake, "").Complete(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Len(t, c.Citations, 2)
	assert.Equal(t, "https://a.example", c.Citations[0].URL)
}

func TestPerplexityBackend_Error(t *testing.T) {
	fake := &fakePerplexity{err: errors.New("boom")}
	_, err := NewPerplexityBackend(fake, "").Complete(context.Background(), testPrompt())
	assert.ErrorContains(t, err, "structured: perplexity completion")
}

func TestAnthropicBackend_Complete(t *testing.T) {
	fake := &fakeAnthropic{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: `{"items":`}, {Type: "text", Text: `[]}`}},
		Usage:   anthropic.TokenUsage{InputTokens: 300, OutputTokens: 90},
	}}
	b := NewAnthropicBackend(fake, "claude-test")

	c, err := b.Complete(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, c.Text)
	assert.Empty(t, c.Citations)
	assert.Equal(t, "claude-test", c.Model)
	assert.Equal(t, int64(90), c.Usage.OutputTokens)

	assert.Equal(t, "claude-test", fake.got.Model)
	assert.Equal(t, int64(900), fake.got.MaxTokens)
	assert.Contains(t, fake.got.System, "sys\n\nRespond with a single JSON object")
	assert.Contains(t, fake.got.System, `"required":["items"]`)
	require.Len(t, fake.got.Messages, 1)
	assert.Equal(t, "user", fake.got.Messages[0].Role)
	assert.Equal(t, "anthropic", b.Name())
}

func TestItemsSchemaIsValidJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal(itemsSchema, &v))
	assert.Equal(t, "object", v["type"])
}
