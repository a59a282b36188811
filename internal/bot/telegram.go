package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"
)

var newTeleBot = tele.NewBot

// StartTelegramBot registers the commands and starts long polling in the
// background. An empty token skips startup.
func StartTelegramBot(token string, b *Bot, log zerolog.Logger) (*tele.Bot, error) {
	if token == "" {
		log.Info().Msg("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	tb, err := newTeleBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	tb.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	tb.Handle("/health", func(c tele.Context) error {
		return c.Send(b.Health(context.Background()))
	})
	tb.Handle("/models", func(c tele.Context) error {
		return c.Send(b.Models(context.Background()))
	})
	tb.Handle("/analyze", func(c tele.Context) error {
		if err := c.Send("Analyzing your preferences..."); err != nil {
			return err
		}
		return c.Send(b.Analyze(context.Background(), c.Message().Payload))
	})

	log.Info().Msg("Telegram bot started")
	go tb.Start()
	return tb, nil
}
