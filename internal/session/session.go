// Package session хранит состояние многошаговых диалогов с пользователем.
//
// Состояние живёт только в памяти процесса: после рестарта все диалоги
// начинаются заново с Idle.
package session

import (
	"time"

	"zametkabot/internal/domain"
)

type State int

const (
	StateIdle State = iota
	StateSearching
	StateEditing
	StateSettingReminderTime
	StateChoosingRepeat
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateEditing:
		return "editing"
	case StateSettingReminderTime:
		return "setting_reminder_time"
	case StateChoosingRepeat:
		return "choosing_repeat"
	default:
		return "unknown"
	}
}

// Session — диалог одного пользователя: текущее состояние плюс данные,
// накопленные на предыдущих шагах. Нулевое значение — Idle без данных.
type Session struct {
	State    State
	NoteID   int64
	RemindAt time.Time
}

type EventKind int

const (
	// EventText — обычное текстовое сообщение
	EventText EventKind = iota
	// EventCancel — /cancel или кнопка «Отмена»
	EventCancel
	// EventStartSearch — запрос поиска по заметкам
	EventStartSearch
	// EventStartEdit — запрос редактирования заметки
	EventStartEdit
	// EventStartSetTime — запрос напоминания для заметки
	EventStartSetTime
	// EventChooseRepeat — выбор периодичности кнопкой
	EventChooseRepeat
)

type Event struct {
	Kind   EventKind
	Text   string
	NoteID int64
	Repeat domain.Recurrence
	// When заполняется обработчиком до вызова Next: результат разбора
	// Text как будущей даты, nil если дата не распознана или в прошлом.
	// Учитывается только в состоянии SettingReminderTime.
	When *time.Time
}

// Action говорит обработчику, какой эффект выполнить после перехода.
type Action int

const (
	ActionNone Action = iota
	// ActionSaveNote — сохранить текст как новую заметку (Idle)
	ActionSaveNote
	// ActionRunSearch — выполнить поиск по Event.Text
	ActionRunSearch
	// ActionUpdateNote — перезаписать текст заметки из скретчпада
	ActionUpdateNote
	// ActionAskRepeat — дата принята, спросить периодичность
	ActionAskRepeat
	// ActionReprompt — дата не распознана или в прошлом, переспросить
	ActionReprompt
	// ActionSaveReminder — создать напоминание из скретчпада
	ActionSaveReminder
	// ActionCancelled — диалог отменён
	ActionCancelled
	// ActionPromptQuery — спросить поисковый запрос
	ActionPromptQuery
	// ActionPromptText — спросить новый текст заметки
	ActionPromptText
	// ActionPromptTime — спросить время напоминания
	ActionPromptTime
)

// Next — единственная функция переходов автомата. Она чистая: все эффекты
// возвращаются как Action и выполняются вызывающей стороной. Данные
// незавершённого диалога (NoteID, RemindAt) обработчик берёт из сессии,
// какой она была до перехода.
func Next(s Session, ev Event) (Session, Action) {
	switch ev.Kind {
	case EventCancel:
		if s.State == StateIdle {
			return Session{}, ActionNone
		}
		return Session{}, ActionCancelled

	// Начало нового диалога сбрасывает предыдущий из любого состояния.
	case EventStartSearch:
		return Session{State: StateSearching}, ActionPromptQuery
	case EventStartEdit:
		return Session{State: StateEditing, NoteID: ev.NoteID}, ActionPromptText
	case EventStartSetTime:
		return Session{State: StateSettingReminderTime, NoteID: ev.NoteID}, ActionPromptTime
	}

	switch s.State {
	case StateIdle:
		if ev.Kind == EventText {
			return Session{}, ActionSaveNote
		}

	case StateSearching:
		if ev.Kind == EventText {
			return Session{}, ActionRunSearch
		}

	case StateEditing:
		if ev.Kind == EventText {
			return Session{}, ActionUpdateNote
		}

	case StateSettingReminderTime:
		if ev.Kind == EventText {
			if ev.When == nil {
				// переспрашиваем, состояние и заметка сохраняются
				return s, ActionReprompt
			}
			return Session{State: StateChoosingRepeat, NoteID: s.NoteID, RemindAt: *ev.When}, ActionAskRepeat
		}

	case StateChoosingRepeat:
		if ev.Kind == EventChooseRepeat && ev.Repeat.Valid() {
			return Session{}, ActionSaveReminder
		}
	}

	return s, ActionNone
}
