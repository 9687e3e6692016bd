package orchestrator

import (
	"context"
	"sync"

	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/structured"
)

// fakeProvider implements community.Provider only.
type fakeProvider struct {
	name string
	data *community.Data
	err  error

	mu   sync.Mutex
	reqs []community.Request
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ByZip(_ context.Context, req community.Request) (*community.Data, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.data, f.err
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func (f *fakeProvider) lastRequest() community.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[len(f.reqs)-1]
}

// richProvider implements every optional capability.
type richProvider struct {
	fakeProvider
	audienceData *community.Data
	avoid        map[string][]string
	events       *community.CategoryPayload

	prefetched [][]string
}

func (f *richProvider) ByZipAndAudience(_ context.Context, req community.Request) (*community.Data, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.audienceData != nil {
		return f.audienceData, f.err
	}
	return f.data, f.err
}

func (f *richProvider) AvoidRecommendations(context.Context, community.Request, []string) (map[string][]string, error) {
	return f.avoid, nil
}

func (f *richProvider) MonthlyEvents(context.Context, community.Request) (*community.CategoryPayload, error) {
	return f.events, nil
}

func (f *richProvider) PrefetchCategories(_ context.Context, _ community.Request, categories []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefetched = append(f.prefetched, categories)
	return nil
}

type fakeBackend struct {
	text  string
	err   error
	calls int
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Complete(context.Context, structured.Prompt) (*structured.Completion, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return &structured.Completion{Text: b.text}, nil
}
