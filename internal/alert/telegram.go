package alert

import (
	"context"

	"product-scout/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// TelegramSender is the subset of *tele.Bot used for alerts.
type TelegramSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramSink posts alerts to one chat.
type TelegramSink struct {
	bot  TelegramSender
	chat tele.ChatID
}

func NewTelegramSink(bot TelegramSender, chatID int64) *TelegramSink {
	return &TelegramSink{bot: bot, chat: tele.ChatID(chatID)}
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Send(_ context.Context, f domain.Finding) error {
	msg := Subject(f) + "\n\n" + plainText(f)
	if f.SearchURL != "" {
		msg += "\n" + f.SearchURL
	}
	_, err := s.bot.Send(s.chat, msg)
	return err
}
