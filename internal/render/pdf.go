package render

import (
	"bytes"
	"fmt"

	"wellness-planner/internal/planner"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 20.0
	pdfLineWidth = 170.0
)

// PDF renders the full plan as an A4 document.
func PDF(plan *planner.Plan) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(EmailSubject(plan), true)
	// Core fonts are cp1252; translate so characters like "°" and "é" survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(4, 120, 87)
	pdf.CellFormat(pdfLineWidth, 12, "Daily Wellness Plan", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(pdfLineWidth, 8, tr(DisplayDate(plan.Date)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(31, 41, 55)
	pdf.SetFont("Helvetica", "I", 13)
	pdf.MultiCell(pdfLineWidth, 7, tr(fmt.Sprintf("\"%s\"", plan.Quote.Text)), "", "C", false)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(pdfLineWidth, 7, tr("- "+plan.Quote.Author), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	heading(pdf, "Today's Workout")
	for i, ex := range plan.Workout {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(pdfLineWidth, 7, tr(fmt.Sprintf("%d. %s", i+1, ex.Name)), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		detail := ex.Duration
		if ex.Sets != "" {
			detail += fmt.Sprintf(" | %s sets", ex.Sets)
		}
		if ex.Reps != "" {
			detail += fmt.Sprintf(" | %s reps", ex.Reps)
		}
		if detail != "" {
			pdf.MultiCell(pdfLineWidth, 6, tr(detail), "", "L", false)
		}
		pdf.MultiCell(pdfLineWidth, 6, tr(ex.Description), "", "L", false)
		pdf.Ln(2)
	}

	pdf.AddPage()
	heading(pdf, fmt.Sprintf("Today's Meals (%d cal)", plan.Meals.TotalCalories()))
	for _, slot := range []struct {
		name string
		meal planner.Meal
	}{
		{"Breakfast", plan.Meals.Breakfast},
		{"Lunch", plan.Meals.Lunch},
		{"Dinner", plan.Meals.Dinner},
	} {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(pdfLineWidth, 7, tr(fmt.Sprintf("%s: %s (%d cal)", slot.name, slot.meal.Name, slot.meal.Calories)), "", "L", false)
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(pdfLineWidth, 6, tr(slot.meal.Description), "", "L", false)

		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(pdfLineWidth, 7, "Ingredients", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, ing := range slot.meal.Ingredients {
			pdf.MultiCell(pdfLineWidth, 6, tr("- "+ing), "", "L", false)
		}

		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(pdfLineWidth, 7, "Instructions", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for i, step := range slot.meal.Instructions {
			pdf.MultiCell(pdfLineWidth, 6, tr(fmt.Sprintf("%d. %s", i+1, step)), "", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(4, 120, 87)
	pdf.CellFormat(pdfLineWidth, 10, text, "B", 1, "L", false, 0, "")
	pdf.SetTextColor(31, 41, 55)
	pdf.Ln(3)
}
