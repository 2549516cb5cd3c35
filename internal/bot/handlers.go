package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zametkabot/internal/domain"
	"zametkabot/internal/session"
)

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.ensureUser(msg.From)

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	// Медиа сохраняется независимо от текущего диалога
	if msg.Photo != nil || msg.Video != nil || msg.Document != nil {
		b.saveMedia(msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	b.handleText(userID, chatID, text)
}

// handleText прогоняет текст через автомат диалогов. В Idle текст — новая
// заметка; в любом другом состоянии он принадлежит активному диалогу.
func (b *Bot) handleText(userID, chatID int64, text string) {
	sess := b.sessions.Get(userID)

	ev := session.Event{Kind: session.EventText, Text: text}
	if sess.State == session.StateSettingReminderTime {
		if at, ok := b.reminderService.ParseFuture(text); ok {
			ev.When = &at
		}
	}

	next, action := session.Next(sess, ev)
	b.sessions.Set(userID, next)

	switch action {
	case session.ActionSaveNote:
		b.saveNote(userID, chatID, text)

	case session.ActionRunSearch:
		b.runSearch(userID, chatID, text)

	case session.ActionUpdateNote:
		if err := b.noteService.UpdateText(sess.NoteID, userID, text); err != nil {
			b.log.Errorw("failed to update note", "note_id", sess.NoteID, "err", err)
			b.SendMessageWithKeyboard(chatID, "❌ Не получилось обновить заметку.", mainMenuKeyboard())
			return
		}
		b.SendMessageWithKeyboard(chatID, "✏️ Заметка обновлена.", mainMenuKeyboard())

	case session.ActionAskRepeat:
		prompt := fmt.Sprintf("📅 %s\n\nКак часто повторять?", b.reminderService.FormatAt(next.RemindAt))
		b.SendMessageWithKeyboard(chatID, prompt, repeatKeyboard())

	case session.ActionReprompt:
		b.SendMessageWithKeyboard(chatID,
			"🤔 Не понял дату. Напиши, например: «завтра в 15:00» или «в пятницу в 9:00».",
			cancelKeyboard())
	}
}

func (b *Bot) saveNote(userID, chatID int64, text string) {
	note, err := b.noteService.Create(userID, text)
	if err != nil {
		b.log.Errorw("failed to create note", "user_id", userID, "err", err)
		b.SendMessage(chatID, "❌ Не получилось сохранить заметку.")
		return
	}

	response := "✅ Заметка сохранена."

	at, ok, err := b.reminderService.CreateFromText(userID, note.ID, text)
	if err != nil {
		b.log.Errorw("failed to create auto reminder", "note_id", note.ID, "err", err)
	} else if ok {
		response += fmt.Sprintf("\n⏰ Напомню: %s", b.reminderService.FormatAt(at))
	}

	b.SendMessageWithKeyboard(chatID, response, mainMenuKeyboard())
}

func (b *Bot) runSearch(userID, chatID int64, query string) {
	notes, count, err := b.noteService.Page(userID, 1, b.cfg.PageSize, query)
	if err != nil {
		b.log.Errorw("search failed", "user_id", userID, "err", err)
		b.SendMessage(chatID, "❌ Поиск не удался.")
		return
	}

	if count == 0 {
		b.SendMessageWithKeyboard(chatID, fmt.Sprintf("🔍 По запросу «%s» ничего не найдено.", query), mainMenuKeyboard())
		return
	}

	text := fmt.Sprintf("🔍 <b>Найдено: %d</b> по запросу «%s»", count, query)
	b.SendMessageWithKeyboard(chatID, text, notesListKeyboard(notes, 1, 1))
}

func (b *Bot) saveMedia(msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	var fileID string
	var fileType domain.MediaType
	switch {
	case msg.Photo != nil:
		fileID = msg.Photo[len(msg.Photo)-1].FileID
		fileType = domain.MediaPhoto
	case msg.Video != nil:
		fileID = msg.Video.FileID
		fileType = domain.MediaVideo
	case msg.Document != nil:
		fileID = msg.Document.FileID
		fileType = domain.MediaDocument
	default:
		return
	}

	if _, err := b.mediaService.Add(userID, fileID, fileType, msg.Caption); err != nil {
		b.log.Errorw("failed to save media", "user_id", userID, "err", err)
		b.SendMessage(chatID, "❌ Не получилось сохранить файл.")
		return
	}

	b.SendMessageWithKeyboard(chatID, "💾 Файл сохранён!", mainMenuKeyboard())
}

func (b *Bot) ensureUser(from *tgbotapi.User) {
	user, err := b.storage.GetUserByTelegramID(from.ID)
	if err != nil {
		b.log.Errorw("failed to get user", "telegram_id", from.ID, "err", err)
		return
	}
	if user != nil {
		return
	}

	newUser := &domain.User{TelegramID: from.ID, Username: from.UserName}
	if err := b.storage.CreateUser(newUser); err != nil {
		b.log.Errorw("failed to register user", "telegram_id", from.ID, "err", err)
		return
	}
	b.log.Infof("registered user %d (@%s)", from.ID, from.UserName)
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	msgID := callback.Message.MessageID

	b.ensureUser(callback.From)

	parts := strings.Split(callback.Data, ":")

	switch parts[0] {
	case "noop":
		b.answer(callback, "")

	case "menu":
		b.answer(callback, "")
		kb := mainMenuKeyboard()
		b.editMessage(chatID, msgID, "Главное меню:", &kb)

	case "notes":
		// notes:page:N
		if len(parts) < 3 {
			return
		}
		b.answer(callback, "")
		b.showNotesPage(chatID, msgID, userID, int(atoi(parts[2])))

	case "media":
		if len(parts) < 3 {
			return
		}
		b.answer(callback, "")
		b.showMediaPage(chatID, msgID, userID, int(atoi(parts[2])))

	case "view_note":
		if len(parts) < 2 {
			return
		}
		b.showNote(callback, chatID, msgID, userID, atoi(parts[1]))

	case "view_media":
		if len(parts) < 2 {
			return
		}
		b.showMedia(callback, chatID, userID, atoi(parts[1]))

	case "pin":
		if len(parts) < 2 {
			return
		}
		noteID := atoi(parts[1])
		pinned, err := b.noteService.TogglePin(noteID, userID)
		if err != nil {
			b.answer(callback, "❌ "+err.Error())
			return
		}
		if pinned {
			b.answer(callback, "📌 Закреплено")
		} else {
			b.answer(callback, "Откреплено")
		}
		b.showNote(callback, chatID, msgID, userID, noteID)

	case "del_note":
		if len(parts) < 2 {
			return
		}
		if err := b.noteService.Delete(atoi(parts[1]), userID); err != nil {
			b.answer(callback, "❌ "+err.Error())
			return
		}
		b.answer(callback, "🗑 Удалено")
		b.showNotesPage(chatID, msgID, userID, 1)

	case "del_media":
		if len(parts) < 2 {
			return
		}
		if err := b.mediaService.Delete(atoi(parts[1]), userID); err != nil {
			b.answer(callback, "❌ "+err.Error())
			return
		}
		b.answer(callback, "🗑 Удалено")
		// сообщение с медиа уже не отредактировать в список — шлём меню
		b.api.Request(tgbotapi.NewDeleteMessage(chatID, msgID))
		b.SendMessageWithKeyboard(chatID, "🗑 Медиафайл удалён.", mainMenuKeyboard())

	case "edit":
		if len(parts) < 2 {
			return
		}
		b.answer(callback, "")
		next, action := session.Next(b.sessions.Get(userID), session.Event{Kind: session.EventStartEdit, NoteID: atoi(parts[1])})
		b.sessions.Set(userID, next)
		if action == session.ActionPromptText {
			b.SendMessageWithKeyboard(chatID, "✏️ Пришли новый текст заметки:", cancelKeyboard())
		}

	case "remind":
		if len(parts) < 2 {
			return
		}
		b.answer(callback, "")
		next, action := session.Next(b.sessions.Get(userID), session.Event{Kind: session.EventStartSetTime, NoteID: atoi(parts[1])})
		b.sessions.Set(userID, next)
		if action == session.ActionPromptTime {
			b.SendMessageWithKeyboard(chatID, "⏰ Когда напомнить? Например: «завтра в 15:00».", cancelKeyboard())
		}

	case "rep":
		// rep:none|daily|weekly
		if len(parts) < 2 {
			return
		}
		b.chooseRepeat(callback, chatID, msgID, userID, domain.Recurrence(parts[1]))

	case "cancel":
		sess := b.sessions.Get(userID)
		next, action := session.Next(sess, session.Event{Kind: session.EventCancel})
		b.sessions.Set(userID, next)
		b.answer(callback, "")
		if action == session.ActionCancelled {
			kb := mainMenuKeyboard()
			b.editMessage(chatID, msgID, "❌ Действие отменено.", &kb)
		}

	case "search":
		b.answer(callback, "")
		next, action := session.Next(b.sessions.Get(userID), session.Event{Kind: session.EventStartSearch})
		b.sessions.Set(userID, next)
		if action == session.ActionPromptQuery {
			b.SendMessageWithKeyboard(chatID, "🔍 Что ищем? Пришли текст запроса:", cancelKeyboard())
		}

	case "profile":
		b.answer(callback, "")
		b.showProfile(chatID, msgID, userID)

	case "backup":
		b.answer(callback, "📦 Готовлю экспорт...")
		b.sendBackup(chatID, userID)
	}
}

func (b *Bot) chooseRepeat(callback *tgbotapi.CallbackQuery, chatID int64, msgID int, userID int64, repeat domain.Recurrence) {
	sess := b.sessions.Get(userID)
	next, action := session.Next(sess, session.Event{Kind: session.EventChooseRepeat, Repeat: repeat})
	b.sessions.Set(userID, next)

	if action != session.ActionSaveReminder {
		b.answer(callback, "")
		return
	}

	reminder, err := b.reminderService.Create(userID, sess.NoteID, sess.RemindAt, repeat)
	if err != nil {
		b.log.Errorw("failed to create reminder", "note_id", sess.NoteID, "err", err)
		b.answer(callback, "❌ Не получилось создать напоминание")
		return
	}

	b.answer(callback, "⏰ Напоминание создано!")
	text := fmt.Sprintf("⏰ Напомню: %s (%s)", b.reminderService.FormatAt(reminder.RemindAt), repeat.Label())
	kb := mainMenuKeyboard()
	b.editMessage(chatID, msgID, text, &kb)
}

func (b *Bot) showNotesPage(chatID int64, msgID int, userID int64, page int) {
	if page < 1 {
		page = 1
	}
	notes, count, err := b.noteService.Page(userID, page, b.cfg.PageSize, "")
	if err != nil {
		b.log.Errorw("failed to list notes", "user_id", userID, "err", err)
		return
	}

	pages := totalPages(count, b.cfg.PageSize)

	text := fmt.Sprintf("📝 <b>Ваши заметки</b> (стр. %d/%d)", page, pages)
	if count == 0 {
		text = "📝 Заметок пока нет. Просто пришли мне текст!"
	}

	kb := notesListKeyboard(notes, page, pages)
	b.editMessage(chatID, msgID, text, &kb)
}

func (b *Bot) showNote(callback *tgbotapi.CallbackQuery, chatID int64, msgID int, userID int64, noteID int64) {
	note, err := b.noteService.Get(noteID)
	if err != nil {
		b.log.Errorw("failed to get note", "note_id", noteID, "err", err)
		return
	}
	if note == nil || note.UserID != userID {
		b.answer(callback, "Заметка не найдена")
		return
	}

	pin := ""
	if note.IsPinned {
		pin = "📌 "
	}
	text := fmt.Sprintf("%s📝 <b>Заметка #%d</b>\n\n%s\n\n📅 %s",
		pin, note.ID, note.Content, note.CreatedAt.Format("02.01.2006 15:04"))

	kb := noteViewKeyboard(note)
	b.editMessage(chatID, msgID, text, &kb)
}

func (b *Bot) showMediaPage(chatID int64, msgID int, userID int64, page int) {
	if page < 1 {
		page = 1
	}
	medias, count, err := b.mediaService.Page(userID, page, b.cfg.PageSize)
	if err != nil {
		b.log.Errorw("failed to list media", "user_id", userID, "err", err)
		return
	}

	pages := totalPages(count, b.cfg.PageSize)

	text := fmt.Sprintf("💾 <b>Ваши файлы</b> (стр. %d/%d)", page, pages)
	if count == 0 {
		text = "💾 Файлов пока нет. Пришли фото, видео или документ!"
	}

	kb := mediaListKeyboard(medias, page, pages)
	b.editMessage(chatID, msgID, text, &kb)
}

func (b *Bot) showMedia(callback *tgbotapi.CallbackQuery, chatID, userID int64, mediaID int64) {
	media, err := b.mediaService.Get(mediaID)
	if err != nil {
		b.log.Errorw("failed to get media", "media_id", mediaID, "err", err)
		return
	}
	if media == nil || media.UserID != userID {
		b.answer(callback, "Файл не найден")
		return
	}

	b.answer(callback, "")

	// меню превращается в сам файл: старое сообщение убираем
	b.api.Request(tgbotapi.NewDeleteMessage(chatID, callback.Message.MessageID))

	caption := media.Caption
	if caption != "" {
		caption += "\n"
	}
	caption += "📅 " + media.CreatedAt.Format("02.01.2006")
	kb := mediaViewKeyboard(media.ID)

	file := tgbotapi.FileID(media.FileID)
	var msg tgbotapi.Chattable
	switch media.FileType {
	case domain.MediaPhoto:
		m := tgbotapi.NewPhoto(chatID, file)
		m.Caption = caption
		m.ReplyMarkup = kb
		msg = m
	case domain.MediaVideo:
		m := tgbotapi.NewVideo(chatID, file)
		m.Caption = caption
		m.ReplyMarkup = kb
		msg = m
	default:
		m := tgbotapi.NewDocument(chatID, file)
		m.Caption = caption
		m.ReplyMarkup = kb
		msg = m
	}

	if _, err := b.api.Send(msg); err != nil {
		b.log.Errorw("failed to send media", "media_id", mediaID, "err", err)
	}
}

func (b *Bot) showProfile(chatID int64, msgID int, userID int64) {
	stats, err := b.noteService.Stats(userID)
	if err != nil {
		b.log.Errorw("failed to get stats", "user_id", userID, "err", err)
		return
	}

	text := fmt.Sprintf("👤 <b>Профиль</b>\n\n📝 Заметок: %d\n💾 Файлов: %d", stats.Notes, stats.Media)
	kb := profileKeyboard()
	b.editMessage(chatID, msgID, text, &kb)
}

func (b *Bot) sendBackup(chatID, userID int64) {
	backup, err := b.backupService.Export(userID)
	if err != nil {
		b.log.Errorw("failed to export backup", "user_id", userID, "err", err)
		b.SendMessage(chatID, "❌ Не получилось подготовить экспорт.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "zametki.json",
		Bytes: backup.Archive,
	})
	doc.Caption = "📦 Экспорт заметок и файлов"
	if _, err := b.api.Send(doc); err != nil {
		b.log.Errorw("failed to send backup archive", "user_id", userID, "err", err)
		return
	}

	if backup.Calendar != nil {
		cal := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  "napominaniya.ics",
			Bytes: backup.Calendar,
		})
		cal.Caption = "⏰ Напоминания в формате календаря"
		if _, err := b.api.Send(cal); err != nil {
			b.log.Errorw("failed to send backup calendar", "user_id", userID, "err", err)
		}
	}
}

func (b *Bot) answer(callback *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, text)); err != nil {
		b.log.Errorw("failed to answer callback", "err", err)
	}
}

func atoi(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func totalPages(count, perPage int) int {
	pages := (count + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	return pages
}
