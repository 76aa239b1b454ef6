package planner

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical plan date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// WorkoutSize is the number of exercises in every workout.
const WorkoutSize = 7

// Quote is the motivational quote of the day.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Exercise is a single entry of the daily workout.
type Exercise struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Sets        string `json:"sets,omitempty"`
	Reps        string `json:"reps,omitempty"`
}

// Meal is one of the three daily meals.
type Meal struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Calories     int      `json:"calories"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// Meals groups the daily meal slots.
type Meals struct {
	Breakfast Meal `json:"breakfast"`
	Lunch     Meal `json:"lunch"`
	Dinner    Meal `json:"dinner"`
}

// Plan is the complete wellness plan for one calendar date.
type Plan struct {
	Date    string     `json:"date"`
	Quote   Quote      `json:"quote"`
	Workout []Exercise `json:"workout"`
	Meals   Meals      `json:"meals"`
}

// Validate checks that the plan has the full daily shape.
func (p *Plan) Validate() error {
	if p == nil {
		return fmt.Errorf("plan is nil")
	}
	if _, err := ParseDate(p.Date); err != nil {
		return err
	}
	if err := p.Quote.validate(); err != nil {
		return err
	}
	if err := validateWorkout(p.Workout); err != nil {
		return err
	}
	return p.Meals.validate()
}

func (q Quote) validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("quote text is empty")
	}
	return nil
}

func validateWorkout(workout []Exercise) error {
	if len(workout) != WorkoutSize {
		return fmt.Errorf("workout must have exactly %d exercises, got %d", WorkoutSize, len(workout))
	}
	for i, ex := range workout {
		if strings.TrimSpace(ex.Name) == "" {
			return fmt.Errorf("exercise %d has no name", i+1)
		}
		if strings.TrimSpace(ex.Description) == "" {
			return fmt.Errorf("exercise %q has no description", ex.Name)
		}
	}
	return nil
}

func (m Meals) validate() error {
	slots := []struct {
		name string
		meal Meal
	}{
		{"breakfast", m.Breakfast},
		{"lunch", m.Lunch},
		{"dinner", m.Dinner},
	}
	for _, s := range slots {
		if err := s.meal.validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (m Meal) validate() error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return fmt.Errorf("meal has no name")
	case m.Calories <= 0:
		return fmt.Errorf("meal %q has non-positive calories", m.Name)
	case len(m.Ingredients) == 0:
		return fmt.Errorf("meal %q has no ingredients", m.Name)
	case len(m.Instructions) == 0:
		return fmt.Errorf("meal %q has no instructions", m.Name)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date, rejecting any other format.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Msg: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s)}
	}
	return t, nil
}

// FormatDate renders t in the plan date format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TotalCalories sums the three meals.
func (m Meals) TotalCalories() int {
	return m.Breakfast.Calories + m.Lunch.Calories + m.Dinner.Calories
}
