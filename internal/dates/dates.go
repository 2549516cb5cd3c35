// Package dates извлекает дату и время из свободного текста заметки.
package dates

import (
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/olebedev/when/rules/ru"
)

type Parser struct {
	w *when.Parser
}

// NewParser builds a parser with Russian and English rule sets,
// preferring dates in the future relative to the reference time.
func NewParser() *Parser {
	w := when.New(nil)
	w.Add(ru.All...)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w}
}

// ParseFuture returns the moment recognized in text, but only if it is
// strictly after now. "вчера", прошедшие даты и текст без даты дают false.
func (p *Parser) ParseFuture(text string, now time.Time) (time.Time, bool) {
	r, err := p.w.Parse(text, now)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	if !r.Time.After(now) {
		return time.Time{}, false
	}
	return r.Time, true
}
