package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/example/englearn/pkg/models"
)

// Constants for callback data
const (
	callbackLeaderboard = "leaderboard"
	callbackHelp        = "help"
)

// MainMenuButtons returns the inline menu shown under bot replies
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{{Text: "🏆 Leaderboard", CallbackData: callbackLeaderboard}},
		{{Text: "📖 Help", CallbackData: callbackHelp}},
	}
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message.Chat == nil {
		return fmt.Errorf("invalid message: chat is missing")
	}
	switch message.Command() {
	case "start":
		return b.handleStart(message.Chat.ID)
	case "help":
		return b.handleHelp(message.Chat.ID)
	case "leaderboard":
		return b.handleLeaderboard(ctx, message.Chat.ID)
	default:
		return b.handleUnknownCommand(message.Chat.ID)
	}
}

// HandleText grades a plain text message as a writing submission
func (b *Bot) HandleText(ctx context.Context, message *tgbotapi.Message) error {
	if message.Chat == nil {
		return fmt.Errorf("invalid message: chat is missing")
	}

	gradeCtx, cancel := context.WithTimeout(ctx, b.config.GradeTimeout)
	defer cancel()

	report, err := b.grader.Assess(gradeCtx, message.Text)
	if errors.Is(err, models.ErrInvalidInput) {
		return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "✍️ Send me a text in English and I will grade it."))
	}
	if err != nil {
		b.sendFailure(message.Chat.ID, "❌ Grading failed, please try again later.")
		return fmt.Errorf("failed to grade text: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"score":   report.TotalScore,
		"cefr":    report.CEFR,
	}).Info("graded telegram message")

	msg := tgbotapi.NewMessage(message.Chat.ID, formatReport(report))
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

// HandleCallback handles inline menu presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.WithError(err).Warn("failed to answer callback")
	}
	if callback.Message == nil || callback.Message.Chat == nil {
		return fmt.Errorf("invalid callback: message is missing")
	}
	chatID := callback.Message.Chat.ID

	switch callback.Data {
	case callbackLeaderboard:
		return b.handleLeaderboard(ctx, chatID)
	case callbackHelp:
		return b.handleHelp(chatID)
	default:
		return fmt.Errorf("unknown callback data %q", callback.Data)
	}
}

func (b *Bot) handleStart(chatID int64) error {
	text := "👋 Welcome to the English writing coach!\n\n" +
		"Send me any text in English and I will check:\n" +
		"1. Grammar\n" +
		"2. Style\n" +
		"3. Readability\n\n" +
		"You get a score out of 100 and an estimated CEFR level (A1–C2)."

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "📖 How to use the bot\n\n" +
		"/start - Show the welcome message\n" +
		"/help - Show this help\n" +
		"/leaderboard - Show the top learners\n\n" +
		"💡 Any other message is graded as a writing exercise. " +
		"Texts of 50 words or more get the full length bonus."

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleLeaderboard(ctx context.Context, chatID int64) error {
	entries, err := b.rankings.Leaderboard(ctx, b.config.LeaderboardSize)
	if err != nil {
		b.sendFailure(chatID, "❌ The leaderboard is unavailable right now.")
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return b.sendMessage(tgbotapi.NewMessage(chatID, formatLeaderboard(entries)))
}

// sendFailure tells the user a request failed. The caller returns the
// original error, so a send error is only logged.
func (b *Bot) sendFailure(chatID int64, text string) {
	if err := b.sendMessage(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.WithError(err).WithField("chat_id", chatID).Warn("failed to send error reply")
	}
}

func (b *Bot) handleUnknownCommand(chatID int64) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see what I can do."))
}

func formatReport(report *models.ScoreReport) string {
	var text strings.Builder
	fmt.Fprintf(&text, "📝 Score: %d/100\n", report.TotalScore)
	fmt.Fprintf(&text, "🎓 CEFR: %s (%s)\n\n", report.CEFR, strings.Join(report.CEFRReasons, " "))
	text.WriteString(report.Feedback)
	if report.Degraded {
		text.WriteString("\n\n⚠️ Grammar check was unavailable, the score is an estimate.")
	}
	return text.String()
}

func formatLeaderboard(entries []models.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "🏆 No scores yet. Complete a lesson to get on the board!"
	}
	var text strings.Builder
	text.WriteString("🏆 Leaderboard\n\n")
	for i, e := range entries {
		fmt.Fprintf(&text, "%d. %s - %d%%\n", i+1, e.Name, e.Score)
	}
	return strings.TrimRight(text.String(), "\n")
}
