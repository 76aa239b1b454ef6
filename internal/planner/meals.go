package planner

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"wellness-planner/internal/shared"
)

//go:embed meals_prompt.md
var mealsPrompt string

type MealsResult struct {
	Meals Meals
	Meta  shared.AgentMeta
}

func (g *Generator) runNutritionist(ctx context.Context, data promptData) (MealsResult, error) {
	start := time.Now()
	result := MealsResult{Meta: shared.AgentMeta{AgentName: "Nutritionist"}}

	prompt, err := renderPrompt("Nutritionist", mealsPrompt, data)
	if err != nil {
		return result, err
	}

	resp, err := g.programGen.GenerateContent(ctx, prompt)
	result.Meta.Latency = time.Since(start)
	if err != nil {
		return result, err
	}
	result.Meta.Usage = resp.Usage

	meals, err := parseMeals(resp.Content)
	if err != nil {
		return result, fmt.Errorf("failed to parse Meals %w, :%s", err, resp.Content)
	}
	result.Meals = meals
	return result, nil
}

func parseMeals(raw string) (Meals, error) {
	var payload struct {
		Meals *Meals `json:"meals"`
	}
	if err := decodeResponse(raw, &payload); err != nil {
		return Meals{}, err
	}
	if payload.Meals == nil {
		return Meals{}, fmt.Errorf("response has no meals object")
	}
	if err := payload.Meals.validate(); err != nil {
		return Meals{}, err
	}
	return *payload.Meals, nil
}
