package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zametkabot/internal/domain"
)

// Main menu keyboard
func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Заметки", "notes:page:1"),
			tgbotapi.NewInlineKeyboardButtonData("💾 Медиа", "media:page:1"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Поиск", "search"),
			tgbotapi.NewInlineKeyboardButtonData("👤 Профиль", "profile"),
		),
	)
}

// Notes list with pagination
func notesListKeyboard(notes []*domain.Note, page, totalPages int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, n := range notes {
		label := n.Preview(25)
		if n.IsPinned {
			label = "📌 " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("view_note:%d", n.ID)),
		))
	}

	rows = append(rows, paginationRow(page, totalPages, "notes"))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Меню", "menu"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Single note view
func noteViewKeyboard(note *domain.Note) tgbotapi.InlineKeyboardMarkup {
	pinLabel := "📌 Закрепить"
	if note.IsPinned {
		pinLabel = "📌 Открепить"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Напомнить", fmt.Sprintf("remind:%d", note.ID)),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить", fmt.Sprintf("edit:%d", note.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(pinLabel, fmt.Sprintf("pin:%d", note.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("del_note:%d", note.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", "notes:page:1"),
		),
	)
}

// Media list with pagination
func mediaListKeyboard(medias []*domain.Media, page, totalPages int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, m := range medias {
		caption := m.Caption
		if caption == "" {
			caption = "Без названия"
		}
		if runes := []rune(caption); len(runes) > 20 {
			caption = string(runes[:20]) + "..."
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", m.Icon(), caption),
				fmt.Sprintf("view_media:%d", m.ID),
			),
		))
	}

	rows = append(rows, paginationRow(page, totalPages, "media"))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Меню", "menu"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func mediaViewKeyboard(mediaID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("del_media:%d", mediaID)),
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", "media:page:1"),
		),
	)
}

// Repeat choice for a new reminder
func repeatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("1️⃣ Один раз", "rep:none"),
			tgbotapi.NewInlineKeyboardButtonData("📅 Каждый день", "rep:daily"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗓 Каждую неделю", "rep:weekly"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "cancel"),
		),
	)
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "cancel"),
		),
	)
}

func profileKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Экспорт", "backup"),
			tgbotapi.NewInlineKeyboardButtonData("🔙 Меню", "menu"),
		),
	)
}

func paginationRow(page, totalPages int, prefix string) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	if page > 1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("%s:page:%d", prefix, page-1)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page, totalPages), "noop"))
	if page < totalPages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("%s:page:%d", prefix, page+1)))
	}
	return row
}
