package telegram

import (
	"context"
	"fmt"
	"strings"

	"wellness-planner/internal/logger"
	"wellness-planner/internal/metrics"
	"wellness-planner/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the subset of *tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts the daily plan and job reports to one Telegram chat.
type Notifier struct {
	api    sender
	chatID int64
	log    *logger.Logger
}

// NewNotifier authorizes the bot token and targets chatID.
func NewNotifier(token string, chatID int64, log *logger.Logger) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Info("Authorized on Telegram", "account", bot.Self.UserName)
	return newNotifier(bot, chatID, log), nil
}

func newNotifier(api sender, chatID int64, log *logger.Logger) *Notifier {
	return &Notifier{api: api, chatID: chatID, log: log.With("component", "TelegramNotifier")}
}

// SendPlan uploads the plan PDF with a markdown summary as caption.
func (n *Notifier) SendPlan(_ context.Context, plan *planner.Plan, pdf []byte, filename string) error {
	doc := tgbotapi.NewDocument(n.chatID, tgbotapi.FileBytes{Name: filename, Bytes: pdf})
	doc.Caption = formatPlanCaption(plan)
	doc.ParseMode = "Markdown"
	if _, err := n.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send plan document: %w", err)
	}
	return nil
}

// SendReport posts a delivery summary with recent LLM usage and health.
func (n *Notifier) SendReport(_ context.Context, text string, usage []metrics.DailyUsage, rt metrics.Runtime) error {
	msg := tgbotapi.NewMessage(n.chatID, formatReport(text, usage, rt))
	msg.ParseMode = "Markdown"
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}
	return nil
}

func formatPlanCaption(plan *planner.Plan) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🌿 *Daily Wellness Plan* (%s)\n\n", plan.Date))
	sb.WriteString(fmt.Sprintf("_\"%s\"_\n— %s\n\n", escapeMarkdown(plan.Quote.Text), escapeMarkdown(plan.Quote.Author)))

	sb.WriteString("💪 *Workout*\n")
	for _, ex := range plan.Workout {
		sb.WriteString(fmt.Sprintf("• %s", escapeMarkdown(ex.Name)))
		if ex.Duration != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", escapeMarkdown(ex.Duration)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n🥗 *Meals*\n")
	sb.WriteString(fmt.Sprintf("• Breakfast: %s (%d cal)\n", escapeMarkdown(plan.Meals.Breakfast.Name), plan.Meals.Breakfast.Calories))
	sb.WriteString(fmt.Sprintf("• Lunch: %s (%d cal)\n", escapeMarkdown(plan.Meals.Lunch.Name), plan.Meals.Lunch.Calories))
	sb.WriteString(fmt.Sprintf("• Dinner: %s (%d cal)\n", escapeMarkdown(plan.Meals.Dinner.Name), plan.Meals.Dinner.Calories))

	// Telegram caps captions at 1024 characters.
	caption := sb.String()
	if r := []rune(caption); len(r) > 1024 {
		caption = string(r[:1021]) + "..."
	}
	return caption
}

func formatReport(text string, usage []metrics.DailyUsage, rt metrics.Runtime) string {
	var sb strings.Builder
	sb.WriteString("📊 *Daily Job Report*\n\n")
	sb.WriteString(escapeMarkdown(text))
	sb.WriteString("\n\n🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs, %d fallbacks)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Fallbacks))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Heap) / %dMB (Sys)\n", rt.HeapMB, rt.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", rt.Goroutines))
	sb.WriteString(fmt.Sprintf("• Data: %s in %d plan files\n", rt.DataSize, rt.PlanFiles))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", rt.Uptime))
	return sb.String()
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escapeMarkdown escapes legacy Markdown control characters.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
