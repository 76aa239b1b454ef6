package planner

import (
	"context"
	"errors"
	"testing"

	"wellness-planner/internal/logger"
)

const validQuote = `{"text": "Move a little every day.", "author": "Coach Kim"}`

const validWorkout = `{"workout": [
  {"name": "Jog in place", "description": "Light cardio", "duration": "3 minutes"},
  {"name": "Push-ups", "description": "Upper body", "duration": "3 sets", "sets": "3", "reps": "12"},
  {"name": "Squats", "description": "Legs", "duration": "3 sets", "sets": "3", "reps": "15"},
  {"name": "Plank", "description": "Core", "duration": "1 minute"},
  {"name": "Glute bridge", "description": "Hips", "duration": "2 sets", "sets": "2", "reps": "15"},
  {"name": "Cat-cow", "description": "Mobility", "duration": "2 minutes"},
  {"name": "Walk", "description": "Cool down", "duration": "5 minutes"}
]}`

const validMeals = `{"meals": {
  "breakfast": {"name": "Oats", "description": "Warm oats", "calories": 380, "ingredients": ["oats", "milk"], "instructions": ["Simmer"]},
  "lunch": {"name": "Lentil soup", "description": "Hearty", "calories": 510, "ingredients": ["lentils"], "instructions": ["Cook"]},
  "dinner": {"name": "Tofu bowl", "description": "Light", "calories": 600, "ingredients": ["tofu", "rice"], "instructions": ["Fry", "Serve"]}
}}`

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	textGen := &scriptedTextGenerator{
		quote:   "```json\n" + validQuote + "\n```",
		workout: validWorkout,
		meals:   validMeals,
	}
	gen := NewGenerator(textGen, textGen, logger.Nop())

	plan, metas, err := gen.Generate(ctx, "2025-01-15")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(metas) != 3 {
		t.Errorf("Expected 3 meta entries, got %d", len(metas))
	}
	if err := plan.Validate(); err != nil {
		t.Fatalf("Expected a valid plan, got %v", err)
	}
	if plan.Date != "2025-01-15" {
		t.Errorf("Expected date 2025-01-15, got %s", plan.Date)
	}
	if plan.Quote.Author != "Coach Kim" {
		t.Errorf("Expected author 'Coach Kim', got '%s'", plan.Quote.Author)
	}
	if plan.Workout[0].Name != "Jog in place" {
		t.Errorf("Expected first exercise 'Jog in place', got '%s'", plan.Workout[0].Name)
	}
	if plan.Meals.Dinner.Calories != 600 {
		t.Errorf("Expected dinner calories 600, got %d", plan.Meals.Dinner.Calories)
	}
	for _, m := range metas {
		if m.FellBack {
			t.Errorf("Expected %s not to fall back", m.AgentName)
		}
	}
}

func TestGenerateSlotFallback(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		textGen     *scriptedTextGenerator
		wantQuote   string
		wantWorkout string
		wantDinner  string
	}{
		{
			name:        "WrongExerciseCount",
			textGen:     &scriptedTextGenerator{quote: validQuote, workout: `{"workout": [{"name": "Only one", "description": "x", "duration": "1 minute"}]}`, meals: validMeals},
			wantQuote:   "Move a little every day.",
			wantWorkout: "Morning Stretch",
			wantDinner:  "Tofu bowl",
		},
		{
			name:        "MissingMealSlot",
			textGen:     &scriptedTextGenerator{quote: validQuote, workout: validWorkout, meals: `{"meals": {"breakfast": {"name": "Oats", "calories": 300, "ingredients": ["oats"], "instructions": ["Cook"]}}}`},
			wantQuote:   "Move a little every day.",
			wantWorkout: "Jog in place",
			wantDinner:  "Grilled Salmon with Roasted Vegetables",
		},
		{
			name:        "QuoteNotJSON",
			textGen:     &scriptedTextGenerator{quote: "Stay strong!", workout: validWorkout, meals: validMeals},
			wantQuote:   FallbackQuote("2025-01-15").Text,
			wantWorkout: "Jog in place",
			wantDinner:  "Tofu bowl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(tt.textGen, tt.textGen, logger.Nop())
			plan, metas, err := gen.Generate(ctx, "2025-01-15")
			if err != nil {
				t.Fatalf("Expected partial success, got %v", err)
			}
			if err := plan.Validate(); err != nil {
				t.Fatalf("Expected a valid plan, got %v", err)
			}
			if plan.Quote.Text != tt.wantQuote {
				t.Errorf("Expected quote %q, got %q", tt.wantQuote, plan.Quote.Text)
			}
			if plan.Workout[0].Name != tt.wantWorkout {
				t.Errorf("Expected first exercise %q, got %q", tt.wantWorkout, plan.Workout[0].Name)
			}
			if plan.Meals.Dinner.Name != tt.wantDinner {
				t.Errorf("Expected dinner %q, got %q", tt.wantDinner, plan.Meals.Dinner.Name)
			}
			fellBack := 0
			for _, m := range metas {
				if m.FellBack {
					fellBack++
				}
			}
			if fellBack != 1 {
				t.Errorf("Expected exactly one slot to fall back, got %d", fellBack)
			}
		})
	}
}

func TestGenerateAllFail(t *testing.T) {
	textGen := &scriptedTextGenerator{err: errors.New("network down")}
	gen := NewGenerator(textGen, textGen, logger.Nop())

	plan, metas, err := gen.Generate(context.Background(), "2025-01-15")
	if err == nil {
		t.Fatal("Expected an error when every slot fails, got nil")
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected *GenerationError, got %T", err)
	}
	if plan != nil {
		t.Errorf("Expected no plan, got %+v", plan)
	}
	if len(metas) != 3 {
		t.Errorf("Expected 3 meta entries, got %d", len(metas))
	}
}

func TestGenerateInvalidDate(t *testing.T) {
	textGen := &scriptedTextGenerator{}
	gen := NewGenerator(textGen, textGen, logger.Nop())

	_, _, err := gen.Generate(context.Background(), "15/01/2025")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}
}

func TestParseQuoteDefaultsAuthor(t *testing.T) {
	q, err := parseQuote(`{"text": "  Rest is training too. "}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if q.Text != "Rest is training too." {
		t.Errorf("Expected trimmed text, got %q", q.Text)
	}
	if q.Author != "Unknown" {
		t.Errorf("Expected author 'Unknown', got %q", q.Author)
	}

	if _, err := parseQuote(`{"author": "Nobody"}`); err == nil {
		t.Error("Expected an error for a quote without text")
	}
}
