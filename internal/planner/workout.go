package planner

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"wellness-planner/internal/shared"
)

//go:embed workout_prompt.md
var workoutPrompt string

type WorkoutResult struct {
	Workout []Exercise
	Meta    shared.AgentMeta
}

func (g *Generator) runCoach(ctx context.Context, data promptData) (WorkoutResult, error) {
	start := time.Now()
	result := WorkoutResult{Meta: shared.AgentMeta{AgentName: "Coach"}}

	prompt, err := renderPrompt("Coach", workoutPrompt, data)
	if err != nil {
		return result, err
	}

	resp, err := g.programGen.GenerateContent(ctx, prompt)
	result.Meta.Latency = time.Since(start)
	if err != nil {
		return result, err
	}
	result.Meta.Usage = resp.Usage

	workout, err := parseWorkout(resp.Content)
	if err != nil {
		return result, fmt.Errorf("failed to parse Workout %w, :%s", err, resp.Content)
	}
	result.Workout = workout
	return result, nil
}

func parseWorkout(raw string) ([]Exercise, error) {
	var payload struct {
		Workout []Exercise `json:"workout"`
	}
	if err := decodeResponse(raw, &payload); err != nil {
		return nil, err
	}
	for i := range payload.Workout {
		ex := &payload.Workout[i]
		ex.Name = strings.TrimSpace(ex.Name)
		ex.Description = strings.TrimSpace(ex.Description)
		ex.Duration = strings.TrimSpace(ex.Duration)
	}
	if err := validateWorkout(payload.Workout); err != nil {
		return nil, err
	}
	return payload.Workout, nil
}
