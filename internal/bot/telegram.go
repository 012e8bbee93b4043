package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"
	"github.com/mo-hanxuan/crypto-converter/internal/service"

	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

// Bot serves conversion commands over Telegram. Reply text is built by
// plain methods so the formatting is testable without a live session.
type Bot struct {
	convertService *service.ConvertService
}

func New(convertService *service.ConvertService) *Bot {
	return &Bot{convertService: convertService}
}

// Start launches long polling in the background. An empty token disables
// the bot entirely.
func (b *Bot) Start(token string) {
	if token == "" {
		logrus.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	tb, err := tele.NewBot(pref)
	if err != nil {
		logrus.Fatalf("failed to create Telegram bot: %v", err)
	}

	tb.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	tb.Handle("/price", func(c tele.Context) error {
		return c.Send(b.PriceReply(context.Background(), c.Args()))
	})

	tb.Handle("/convert", func(c tele.Context) error {
		return c.Send(b.ConvertReply(context.Background(), c.Args()))
	})

	logrus.Info("Telegram bot started")
	go tb.Start()
}

// PriceReply handles "/price SYMBOL [FIAT]", defaulting the quote
// currency to USD.
func (b *Bot) PriceReply(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return fmt.Sprintf("Usage: /price BTC [USD]\nSupported: %s", domain.FormatSupported())
	}

	from, err := domain.Parse(args[0])
	if err != nil || !from.IsCrypto() {
		return fmt.Sprintf("Unknown crypto symbol: %s\nSupported: %s", strings.ToUpper(args[0]), domain.FormatSupported())
	}
	to := domain.Fiat("USD")
	if len(args) > 1 {
		to, err = domain.Parse(args[1])
		if err != nil || to.IsCrypto() {
			return fmt.Sprintf("Unknown fiat code: %s\nSupported: %s", strings.ToUpper(args[1]), domain.FormatSupported())
		}
	}

	result, err := b.convertService.Convert(ctx, "1", from, to)
	if err != nil {
		return fmt.Sprintf("Error fetching price for %s: %v", from.Code, err)
	}
	return fmt.Sprintf("%s\nPrice: %s %s", from.Code, result.Formatted, to.Code)
}

// ConvertReply handles "/convert AMOUNT FROM TO".
func (b *Bot) ConvertReply(ctx context.Context, args []string) string {
	if len(args) < 3 {
		return fmt.Sprintf("Usage: /convert 0.5 BTC EUR\nSupported: %s", domain.FormatSupported())
	}

	from, err := domain.Parse(args[1])
	if err != nil {
		return fmt.Sprintf("Unknown currency: %s\nSupported: %s", strings.ToUpper(args[1]), domain.FormatSupported())
	}
	to, err := domain.Parse(args[2])
	if err != nil {
		return fmt.Sprintf("Unknown currency: %s\nSupported: %s", strings.ToUpper(args[2]), domain.FormatSupported())
	}

	result, err := b.convertService.Convert(ctx, args[0], from, to)
	if err != nil {
		return fmt.Sprintf("Error converting %s %s to %s: %v", args[0], from.Code, to.Code, err)
	}
	return fmt.Sprintf("%s %s = %s %s", args[0], from.Code, result.Formatted, to.Code)
}
