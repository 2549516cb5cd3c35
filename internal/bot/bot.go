package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"zametkabot/config"
	"zametkabot/internal/service"
	"zametkabot/internal/session"
	"zametkabot/internal/storage"
)

type Bot struct {
	api             *tgbotapi.BotAPI
	cfg             *config.Config
	storage         *storage.Storage
	noteService     *service.NoteService
	mediaService    *service.MediaService
	reminderService *service.ReminderService
	backupService   *service.BackupService
	sessions        *session.Manager
	log             *zap.SugaredLogger
}

func New(cfg *config.Config, store *storage.Storage, noteSvc *service.NoteService, mediaSvc *service.MediaService, reminderSvc *service.ReminderService, backupSvc *service.BackupService, log *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Infof("authorized as @%s", api.Self.UserName)

	bot := &Bot{
		api:             api,
		cfg:             cfg,
		storage:         store,
		noteService:     noteSvc,
		mediaService:    mediaSvc,
		reminderService: reminderSvc,
		backupService:   backupSvc,
		sessions:        session.NewManager(),
		log:             log,
	}

	bot.setCommands()

	return bot, nil
}

func (b *Bot) setCommands() {
	commands := []tgbotapi.BotCommand{
		{Command: "menu", Description: "📱 Главное меню"},
		{Command: "search", Description: "🔍 Поиск по заметкам"},
		{Command: "stats", Description: "👤 Профиль"},
		{Command: "backup", Description: "📦 Экспорт данных"},
		{Command: "cancel", Description: "❌ Отменить текущее действие"},
		{Command: "help", Description: "❓ Справка"},
	}

	cfg := tgbotapi.NewSetMyCommands(commands...)
	if _, err := b.api.Request(cfg); err != nil {
		b.log.Errorw("failed to set commands", "err", err)
	}
}

// Start получает апдейты длинным опросом и блокируется до отмены ctx.
func (b *Bot) Start(ctx context.Context) error {
	uCfg := tgbotapi.NewUpdate(0)
	uCfg.Timeout = 60

	updates := b.api.GetUpdatesChan(uCfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			go b.handleUpdate(update)
		}
	}
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) editMessage(chatID int64, msgID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = "HTML"
	edit.ReplyMarkup = keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.log.Errorw("failed to edit message", "chat_id", chatID, "err", err)
	}
}
