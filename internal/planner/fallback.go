package planner

import "time"

var fallbackQuotes = []Quote{
	{Text: "The groundwork for all happiness is good health.", Author: "Leigh Hunt"},
	{Text: "Take care of your body. It's the only place you have to live.", Author: "Jim Rohn"},
	{Text: "A healthy outside starts from the inside.", Author: "Robert Urich"},
	{Text: "Health is not about the weight you lose, but about the life you gain.", Author: "Dr. Josh Axe"},
	{Text: "Your body can stand almost anything. It's your mind you have to convince.", Author: "Unknown"},
	{Text: "The first wealth is health.", Author: "Ralph Waldo Emerson"},
	{Text: "To keep the body in good health is a duty... otherwise we shall not be able to keep our mind strong and clear.", Author: "Buddha"},
}

// FallbackQuote picks a quote from the fixed list by the date's day of year.
// Unparseable dates get the first quote.
func FallbackQuote(date string) Quote {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return fallbackQuotes[0]
	}
	return fallbackQuotes[t.YearDay()%len(fallbackQuotes)]
}

// FallbackWorkout returns the static bodyweight routine.
func FallbackWorkout() []Exercise {
	return []Exercise{
		{Name: "Morning Stretch", Description: "Full body stretching routine to start your day", Duration: "10 minutes"},
		{Name: "Push-ups", Description: "Classic upper body strength exercise", Duration: "3 sets", Sets: "3", Reps: "10-15"},
		{Name: "Squats", Description: "Lower body strength and mobility", Duration: "3 sets", Sets: "3", Reps: "15-20"},
		{Name: "Plank", Description: "Core strengthening exercise", Duration: "3 sets", Sets: "3", Reps: "30-60 seconds"},
		{Name: "Jumping Jacks", Description: "Cardio warm-up exercise", Duration: "2 minutes"},
		{Name: "Lunges", Description: "Single leg strength and balance", Duration: "3 sets", Sets: "3", Reps: "10 each leg"},
		{Name: "Cool Down Walk", Description: "Gentle walking to cool down", Duration: "5 minutes"},
	}
}

// FallbackMeals returns the static breakfast, lunch and dinner.
func FallbackMeals() Meals {
	return Meals{
		Breakfast: Meal{
			Name:        "Protein Power Bowl",
			Description: "Nutritious start with protein and healthy fats",
			Calories:    450,
			Ingredients: []string{
				"2 eggs",
				"1/2 avocado",
				"1 slice whole grain toast",
				"1 cup spinach",
				"1 tbsp olive oil",
				"Salt and pepper to taste",
			},
			Instructions: []string{
				"Heat olive oil in a pan over medium heat",
				"Sauté spinach until wilted",
				"Scramble eggs and add to pan",
				"Toast bread and top with sliced avocado",
				"Serve eggs over spinach with toast on the side",
			},
		},
		Lunch: Meal{
			Name:        "Mediterranean Quinoa Salad",
			Description: "Fresh and filling Mediterranean-inspired salad",
			Calories:    520,
			Ingredients: []string{
				"1 cup cooked quinoa",
				"1/2 cucumber, diced",
				"1/2 cup cherry tomatoes",
				"1/4 cup red onion",
				"1/4 cup feta cheese",
				"2 tbsp olive oil",
				"1 tbsp lemon juice",
				"Fresh herbs (parsley, mint)",
			},
			Instructions: []string{
				"Cook quinoa according to package instructions and let cool",
				"Dice cucumber, halve cherry tomatoes, and slice red onion",
				"Combine quinoa with vegetables and feta",
				"Whisk olive oil and lemon juice for dressing",
				"Toss salad with dressing and fresh herbs",
			},
		},
		Dinner: Meal{
			Name:        "Grilled Salmon with Roasted Vegetables",
			Description: "Omega-3 rich salmon with colorful roasted vegetables",
			Calories:    580,
			Ingredients: []string{
				"6 oz salmon fillet",
				"1 cup broccoli florets",
				"1 bell pepper, sliced",
				"1/2 zucchini, sliced",
				"2 tbsp olive oil",
				"1 lemon",
				"Garlic powder",
				"Salt and pepper",
			},
			Instructions: []string{
				"Preheat oven to 425°F",
				"Toss vegetables with 1 tbsp olive oil, salt, and pepper",
				"Roast vegetables for 20 minutes",
				"Season salmon with lemon, garlic powder, salt, and pepper",
				"Grill salmon for 4-5 minutes per side",
				"Serve salmon over roasted vegetables",
			},
		},
	}
}

// FallbackPlan assembles the full static plan for date.
func FallbackPlan(date string) *Plan {
	return &Plan{
		Date:    date,
		Quote:   FallbackQuote(date),
		Workout: FallbackWorkout(),
		Meals:   FallbackMeals(),
	}
}
