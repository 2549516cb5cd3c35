package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zametkabot/internal/session"
)

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	switch msg.Command() {
	case "start":
		b.cmdStart(chatID)
	case "menu":
		b.SendMessageWithKeyboard(chatID, "Главное меню:", mainMenuKeyboard())
	case "help":
		b.cmdHelp(chatID)
	case "search":
		next, action := session.Next(b.sessions.Get(userID), session.Event{Kind: session.EventStartSearch})
		b.sessions.Set(userID, next)
		if action == session.ActionPromptQuery {
			b.SendMessageWithKeyboard(chatID, "🔍 Что ищем? Пришли текст запроса:", cancelKeyboard())
		}
	case "stats":
		b.cmdStats(chatID, userID)
	case "backup":
		b.sendBackup(chatID, userID)
	case "cancel":
		next, action := session.Next(b.sessions.Get(userID), session.Event{Kind: session.EventCancel})
		b.sessions.Set(userID, next)
		if action == session.ActionCancelled {
			b.SendMessageWithKeyboard(chatID, "❌ Действие отменено.", mainMenuKeyboard())
		} else {
			b.SendMessage(chatID, "Нечего отменять.")
		}
	default:
		b.SendMessage(chatID, "Неизвестная команда. /help для справки")
	}
}

func (b *Bot) cmdStart(chatID int64) {
	text := "👋 Привет! Я бот для заметок и напоминаний.\n\n" +
		"Просто пришли мне текст — я сохраню его как заметку. " +
		"Если в тексте будет дата («завтра в 15:00»), поставлю напоминание.\n" +
		"Фото, видео и документы тоже сохраню."
	b.SendMessageWithKeyboard(chatID, text, mainMenuKeyboard())
}

func (b *Bot) cmdHelp(chatID int64) {
	text := "❓ <b>Как пользоваться</b>\n\n" +
		"• Текст — новая заметка; дата в тексте станет напоминанием\n" +
		"• Фото/видео/документ — сохраню в медиа\n" +
		"• ⏰ у заметки — напоминание с повтором (один раз / каждый день / каждую неделю)\n\n" +
		"/menu — главное меню\n" +
		"/search — поиск по заметкам\n" +
		"/stats — профиль\n" +
		"/backup — экспорт данных\n" +
		"/cancel — отменить текущее действие"
	b.SendMessage(chatID, text)
}

func (b *Bot) cmdStats(chatID, userID int64) {
	stats, err := b.noteService.Stats(userID)
	if err != nil {
		b.log.Errorw("failed to get stats", "user_id", userID, "err", err)
		b.SendMessage(chatID, "❌ Не получилось получить статистику.")
		return
	}

	text := fmt.Sprintf("👤 <b>Профиль</b>\n\n📝 Заметок: %d\n💾 Файлов: %d", stats.Notes, stats.Media)
	b.SendMessageWithKeyboard(chatID, text, profileKeyboard())
}
