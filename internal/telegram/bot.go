package telegram

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// BotConfig configuration of the bot
type BotConfig struct {
	Token          string
	Debug          bool
	UpdatesTimeout int
}

// Bot telegram interaction client
type Bot struct {
	Bot    *tgbotapi.BotAPI
	Config BotConfig
}

// Message a telegram message struct
type Message struct {
	ChatID    int64
	MessageID int
	Text      string
}

// NewBot creates new telegram bot
func NewBot(c BotConfig) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:    bot,
		Config: c,
	}, nil
}

// GetUpdatesChannel gets new updates updates
func (b *Bot) GetUpdatesChannel() tgbotapi.UpdatesChannel {
	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return b.Bot.GetUpdatesChan(updatesConfig)
}

// StopUpdates stops the long polling loop
func (b *Bot) StopUpdates() {
	b.Bot.StopReceivingUpdates()
}

// Send sends a MarkdownV2 telegram message
func (b *Bot) Send(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not send message to chat %d", m.ChatID)
}

// SendPhoto sends a PNG with a MarkdownV2 caption
func (b *Bot) SendPhoto(chatID int64, image []byte, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  "alert.png",
		Bytes: image,
	})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := b.Bot.Send(photo)
	return errors.Wrapf(err, "could not send photo to chat %d", chatID)
}

// Sender is what Transport needs from a bot
type Sender interface {
	Send(m Message) error
	SendPhoto(chatID int64, image []byte, caption string) error
}

// Transport addresses subscribers by their decimal chat id
type Transport struct {
	sender Sender
}

func NewTransport(sender Sender) *Transport {
	return &Transport{sender: sender}
}

func (t *Transport) SendMessage(subscriberID, text string) error {
	chatID, err := ParseSubscriberID(subscriberID)
	if err != nil {
		return err
	}
	return t.sender.Send(Message{ChatID: chatID, Text: text})
}

func (t *Transport) SendImage(subscriberID string, image []byte, caption string) error {
	chatID, err := ParseSubscriberID(subscriberID)
	if err != nil {
		return err
	}
	return t.sender.SendPhoto(chatID, image, caption)
}

// SubscriberID is the alert owner id of a chat
func SubscriberID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func ParseSubscriberID(subscriberID string) (int64, error) {
	chatID, err := strconv.ParseInt(subscriberID, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "subscriber %q is not a chat id", subscriberID)
	}
	return chatID, nil
}
