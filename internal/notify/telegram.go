package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/bullbear/models"
)

// stateDescriptions give the alert a one-line read of each regime.
var stateDescriptions = map[models.MarketState]string{
	models.StateBullOffensive: "uptrend with capital attacking risk assets",
	models.StateBullDefensive: "uptrend but capital is parked defensively",
	models.StateBearOffensive: "downtrend with capital probing back in",
	models.StateBearDefensive: "downtrend with capital in retreat",
}

// Telegram sends market state change alerts to a chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram creates a notifier for the given bot token and chat.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// NotifyStateChange sends an alert describing the transition from prev to
// curr. prev may be nil on the first evaluation after startup.
func (t *Telegram) NotifyStateChange(prev, curr *models.EvaluationResult) error {
	var transition string
	if prev != nil {
		transition = fmt.Sprintf("%s → %s", prev.State, curr.State)
	} else {
		transition = string(curr.State)
	}

	text := fmt.Sprintf(
		"Market state: %s\n%s\n\nRisk level: %s\nConfidence: %.0f%%\nATH drawdown: %.1f%% (%s)\nETF flows: %s",
		transition,
		stateDescriptions[curr.State],
		curr.RiskLevel,
		curr.Confidence*100,
		curr.Validation.ATHDrawdown,
		curr.Validation.RiskThermometer,
		curr.Validation.EtfAccelerator,
	)

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	t.logger.Info().Str("state", string(curr.State)).Msg("State change alert sent")
	return nil
}
