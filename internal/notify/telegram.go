package notify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"
)

// Messenger delivers a text message to a fixed destination.
type Messenger interface {
	SendText(ctx context.Context, text string) error
}

type TelegramConfig struct {
	Token      string
	ChatID     int64
	ThreadID   int
	RatePerSec int
	Timeout    time.Duration
}

// sender is the part of *tele.Bot the messenger uses.
type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Telegram sends messages to one chat (and optional forum thread) through
// the Bot API, rate limited to RatePerSec.
type Telegram struct {
	bot      sender
	chat     *tele.Chat
	threadID int
	limiter  *rate.Limiter
}

const maxMessageLen = 4000

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	// Offline skips getMe; the daemon only sends and never polls.
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return newTelegram(b, cfg), nil
}

func newTelegram(b sender, cfg TelegramConfig) *Telegram {
	rps := cfg.RatePerSec
	if rps < 1 {
		rps = 1
	}
	return &Telegram{
		bot:      b,
		chat:     &tele.Chat{ID: cfg.ChatID},
		threadID: cfg.ThreadID,
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// SendText waits for the rate limiter, then sends text. Long text is cut.
func (t *Telegram) SendText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	text = clip(text, maxMessageLen)
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := t.bot.Send(t.chat, text, &tele.SendOptions{
		ThreadID:              t.threadID,
		DisableWebPagePreview: true,
	})
	return err
}

// clip cuts s to at most n bytes, backing off to a rune boundary, and
// marks the cut with "...".
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
