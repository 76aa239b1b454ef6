package planner

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"wellness-planner/internal/shared"
)

//go:embed quote_prompt.md
var quotePrompt string

type QuoteResult struct {
	Quote Quote
	Meta  shared.AgentMeta
}

func (g *Generator) runQuoteWriter(ctx context.Context, data promptData) (QuoteResult, error) {
	start := time.Now()
	result := QuoteResult{Meta: shared.AgentMeta{AgentName: "QuoteWriter"}}

	prompt, err := renderPrompt("QuoteWriter", quotePrompt, data)
	if err != nil {
		return result, err
	}

	resp, err := g.quoteGen.GenerateContent(ctx, prompt)
	result.Meta.Latency = time.Since(start)
	if err != nil {
		return result, err
	}
	result.Meta.Usage = resp.Usage

	quote, err := parseQuote(resp.Content)
	if err != nil {
		return result, fmt.Errorf("failed to parse Quote %w, :%s", err, resp.Content)
	}
	result.Quote = quote
	return result, nil
}

func parseQuote(raw string) (Quote, error) {
	var q Quote
	if err := decodeResponse(raw, &q); err != nil {
		return Quote{}, err
	}
	q.Text = strings.TrimSpace(q.Text)
	q.Author = strings.TrimSpace(q.Author)
	if err := q.validate(); err != nil {
		return Quote{}, err
	}
	if q.Author == "" {
		q.Author = "Unknown"
	}
	return q, nil
}
