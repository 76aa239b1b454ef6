package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/template"

	"wellness-planner/internal/llm"
	"wellness-planner/internal/logger"
	"wellness-planner/internal/shared"
)

// ContentGenerator produces a complete plan for a date.
type ContentGenerator interface {
	Generate(ctx context.Context, date string) (*Plan, []shared.AgentMeta, error)
}

// Generator builds plans from three LLM sub-generations. Each slot is validated
// on its own and replaced by its static default when rejected.
type Generator struct {
	quoteGen   llm.TextGenerator
	programGen llm.TextGenerator
	log        *logger.Logger
}

// NewGenerator creates a Generator. quoteGen is used for the quote and
// programGen for the workout and meals, so they can run at different temperatures.
func NewGenerator(quoteGen, programGen llm.TextGenerator, log *logger.Logger) *Generator {
	return &Generator{
		quoteGen:   quoteGen,
		programGen: programGen,
		log:        log.With("component", "Generator"),
	}
}

type promptData struct {
	Date    string
	Weekday string
	Month   string
	Count   int
}

// Generate runs the quote writer, coach and nutritionist in turn. It returns a
// *GenerationError only when no slot produced usable output.
func (g *Generator) Generate(ctx context.Context, date string) (*Plan, []shared.AgentMeta, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, nil, err
	}
	data := promptData{
		Date:    date,
		Weekday: day.Weekday().String(),
		Month:   day.Format("January 2006"),
		Count:   WorkoutSize,
	}

	plan := &Plan{Date: date}
	metas := make([]shared.AgentMeta, 0, 3)
	var failures []error

	quote, err := g.runQuoteWriter(ctx, data)
	if err != nil {
		g.log.Warn("Quote rejected, using fallback", "date", date, "error", err)
		failures = append(failures, err)
		quote.Quote = FallbackQuote(date)
		quote.Meta.FellBack = true
	}
	plan.Quote = quote.Quote
	metas = append(metas, quote.Meta)

	workout, err := g.runCoach(ctx, data)
	if err != nil {
		g.log.Warn("Workout rejected, using fallback", "date", date, "error", err)
		failures = append(failures, err)
		workout.Workout = FallbackWorkout()
		workout.Meta.FellBack = true
	}
	plan.Workout = workout.Workout
	metas = append(metas, workout.Meta)

	meals, err := g.runNutritionist(ctx, data)
	if err != nil {
		g.log.Warn("Meals rejected, using fallback", "date", date, "error", err)
		failures = append(failures, err)
		meals.Meals = FallbackMeals()
		meals.Meta.FellBack = true
	}
	plan.Meals = meals.Meals
	metas = append(metas, meals.Meta)

	if len(failures) == len(metas) {
		return nil, metas, &GenerationError{Date: date, Err: errors.Join(failures...)}
	}
	return plan, metas, nil
}

// decodeResponse extracts the JSON object from raw model output into dst.
func decodeResponse(raw string, dst any) error {
	body, err := llm.ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return nil
}

func renderPrompt(name, text string, data promptData) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
