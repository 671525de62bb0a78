package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/example/englearn/pkg/models"
)

// Grader assesses free-form writing
type Grader interface {
	Assess(ctx context.Context, text string) (*models.ScoreReport, error)
}

// Rankings serves the leaderboard
type Rankings interface {
	Leaderboard(ctx context.Context, n int) ([]models.LeaderboardEntry, error)
}

// telegramAPI is the subset of *tgbotapi.BotAPI the bot uses
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Bot is the Telegram front-end: plain text messages are graded as writing
// submissions and /leaderboard lists the top learners.
type Bot struct {
	api      telegramAPI
	grader   Grader
	rankings Rankings
	config   *BotConfig
	logger   logrus.FieldLogger
	wg       sync.WaitGroup
}

// New creates a bot authorized with the given token
func New(token string, grader Grader, rankings Rankings, config *BotConfig, logger logrus.FieldLogger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %v", err)
	}
	logger.WithField("account", api.Self.UserName).Info("telegram bot authorized")
	return newBot(api, grader, rankings, config, logger), nil
}

func newBot(api telegramAPI, grader Grader, rankings Rankings, config *BotConfig, logger logrus.FieldLogger) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	return &Bot{
		api:      api,
		grader:   grader,
		rankings: rankings,
		config:   config,
		logger:   logger,
	}
}

// Start polls for updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

// Stop stops polling and waits for in-flight updates
func (b *Bot) Stop(ctx context.Context) error {
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("telegram bot stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.HandleText(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.logger.WithError(err).WithField("update_id", update.UpdateID).Error("failed to handle update")
	}
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %v", err)
	}
	return nil
}
