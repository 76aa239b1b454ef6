package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"wellness-planner/internal/planner"

	"github.com/PuerkitoBio/goquery"
)

//go:embed templates/*.html
var templatesFS embed.FS

// emailPreviewSize is how many exercises the email lists before "...and N more".
const emailPreviewSize = 3

var templates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

// Templates returns the parsed page and email templates.
func Templates() *template.Template {
	return templates
}

// DisplayDate renders a plan date as "Wednesday, January 15, 2025".
func DisplayDate(date string) string {
	t, err := planner.ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

// EmailSubject is the subject line of the daily email.
func EmailSubject(plan *planner.Plan) string {
	return "Your Daily Wellness Plan - " + DisplayDate(plan.Date)
}

// PDFFilename is the attachment name for a plan.
func PDFFilename(plan *planner.Plan) string {
	return fmt.Sprintf("wellness-plan-%s.pdf", plan.Date)
}

type emailData struct {
	Plan          *planner.Plan
	DisplayDate   string
	Preview       []planner.Exercise
	MoreExercises int
}

// EmailHTML renders the HTML summary sent to subscribers.
func EmailHTML(plan *planner.Plan) (string, error) {
	preview := plan.Workout
	if len(preview) > emailPreviewSize {
		preview = preview[:emailPreviewSize]
	}
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "email", emailData{
		Plan:          plan,
		DisplayDate:   DisplayDate(plan.Date),
		Preview:       preview,
		MoreExercises: len(plan.Workout) - len(preview),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

// PlainText strips markup from rendered HTML for the text/plain alternative.
func PlainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find("head, style, script").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		if l := strings.Join(strings.Fields(line), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n"), nil
}

type mealCard struct {
	Slot string
	Meal planner.Meal
}

type dashboardData struct {
	Plan        *planner.Plan
	DisplayDate string
	Source      string
	PDFLink     string
	Meals       []mealCard
}

// DashboardData builds the view model for the dashboard template.
func DashboardData(plan *planner.Plan, source, pdfLink string) any {
	return dashboardData{
		Plan:        plan,
		DisplayDate: DisplayDate(plan.Date),
		Source:      source,
		PDFLink:     pdfLink,
		Meals: []mealCard{
			{Slot: "Breakfast", Meal: plan.Meals.Breakfast},
			{Slot: "Lunch", Meal: plan.Meals.Lunch},
			{Slot: "Dinner", Meal: plan.Meals.Dinner},
		},
	}
}

// Dashboard writes the dashboard page for plan.
func Dashboard(w io.Writer, plan *planner.Plan, source, pdfLink string) error {
	return templates.ExecuteTemplate(w, "dashboard", DashboardData(plan, source, pdfLink))
}
