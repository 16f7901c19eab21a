package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"

	"WooWithTypesense/pkg/logging"
)

// Notifier sends operator messages. The zero configuration is a no-op.
type Notifier interface {
	SendMessage(text string) error
}

type bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

type nop struct{}

func (nop) SendMessage(string) error { return nil }

var (
	global Notifier = nop{}
	mu     sync.RWMutex
)

// NewBot connects to the bot API. An empty token yields a notifier that drops messages.
func NewBot(token string, chatID int64, debug bool) (Notifier, error) {
	if token == "" || chatID == 0 {
		return nop{}, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nop{}, errors.Wrap(err, "failed tgbotapi.NewBotAPI")
	}
	api.Debug = debug
	logging.GetLogger().Infof("Authorized on telegram account %s", api.Self.UserName)
	return &bot{api: api, chatID: chatID}, nil
}

func (b *bot) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return errors.Wrap(err, "failed bot.Send")
	}
	return nil
}

// SetNotifier replaces the process wide notifier used by SendMessage.
func SetNotifier(n Notifier) {
	mu.Lock()
	defer mu.Unlock()
	if n == nil {
		n = nop{}
	}
	global = n
}

func SendMessage(text string) error {
	mu.RLock()
	n := global
	mu.RUnlock()
	return n.SendMessage(text)
}

// SendMessageToTelegramWithLogError logs text as an error and forwards it to the chat.
func SendMessageToTelegramWithLogError(text string) {
	logger := logging.GetLogger()
	logger.Error(text)
	if err := SendMessage(text); err != nil {
		logger.Errorf("failed telegram.SendMessage(), error: %v", err)
	}
}
