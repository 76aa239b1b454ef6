package planner

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"wellness-planner/internal/llm"
	"wellness-planner/internal/shared"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu       sync.Mutex
	plans    map[string]Plan
	getErr   error
	writeErr error
	upserts  int
}

func newMemStore() *memStore {
	return &memStore{plans: make(map[string]Plan)}
}

func (s *memStore) Get(_ context.Context, date string) (*Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	p, ok := s.plans[date]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *memStore) Upsert(_ context.Context, plan *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.upserts++
	s.plans[plan.Date] = *plan
	return nil
}

func (s *memStore) Delete(_ context.Context, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.plans[date]
	delete(s.plans, date)
	return ok, nil
}

func (s *memStore) DeleteOlderThan(_ context.Context, date string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for d := range s.plans {
		if d < date {
			delete(s.plans, d)
			n++
		}
	}
	return n, nil
}

func (s *memStore) List(_ context.Context, limit int) ([]Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make([]Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) Close() error { return nil }

// countingGenerator returns a distinct valid plan on every call.
type countingGenerator struct {
	calls int
	err   error
}

func (g *countingGenerator) Generate(_ context.Context, date string) (*Plan, []shared.AgentMeta, error) {
	g.calls++
	if g.err != nil {
		return nil, []shared.AgentMeta{{AgentName: "QuoteWriter"}}, g.err
	}
	p := FallbackPlan(date)
	p.Quote = Quote{Text: "Generated quote " + strings.Repeat("!", g.calls), Author: "Test"}
	return p, []shared.AgentMeta{{AgentName: "QuoteWriter", Usage: shared.TokenUsage{PromptTokens: 1}}}, nil
}

type recorder struct {
	metas []shared.AgentMeta
}

func (r *recorder) RecordMeta(meta shared.AgentMeta) error {
	r.metas = append(r.metas, meta)
	return nil
}

// scriptedTextGenerator answers by prompt heading.
type scriptedTextGenerator struct {
	quote   string
	workout string
	meals   string
	err     error
}

func (m *scriptedTextGenerator) GenerateContent(_ context.Context, prompt string) (llm.ContentResponse, error) {
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	usage := shared.TokenUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30, Model: "test"}
	switch {
	case strings.Contains(prompt, "# Quote Writer Prompt"):
		return llm.ContentResponse{Content: m.quote, Usage: usage}, nil
	case strings.Contains(prompt, "# Coach Prompt"):
		return llm.ContentResponse{Content: m.workout, Usage: usage}, nil
	case strings.Contains(prompt, "# Nutritionist Prompt"):
		return llm.ContentResponse{Content: m.meals, Usage: usage}, nil
	}
	return llm.ContentResponse{}, errors.New("unexpected prompt")
}
