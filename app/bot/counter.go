package bot

import (
	"errors"

	"github.com/qazobot/qazobot/app/actions"
	"github.com/qazobot/qazobot/app/prayer"
	"github.com/qazobot/qazobot/app/qazo"
	tghelpers "github.com/qazobot/qazobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func (h *Handlers) counterPanel(c tele.Context, _ actions.Action) error {
	counts, err := h.Qazo.Counts(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return h.show(c, textCounterPanel, counterPanel(counts))
}

func (h *Handlers) increment(c tele.Context, a actions.Action) error {
	counts, err := h.Qazo.Increment(tghelpers.BuildContext(c), tghelpers.SenderID(c), a.Prayer)
	if err != nil {
		return h.fail(c, err)
	}
	return h.refreshPanel(c, counts, textAdded)
}

func (h *Handlers) decrement(c tele.Context, a actions.Action) error {
	counts, err := h.Qazo.Decrement(tghelpers.BuildContext(c), tghelpers.SenderID(c), a.Prayer)
	if errors.Is(err, qazo.ErrAlreadyZero) {
		return tghelpers.Respond(c, textAtZero, true)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return h.refreshPanel(c, counts, textRemoved)
}

// refreshPanel redraws the counter panel in place, then confirms the tap.
func (h *Handlers) refreshPanel(c tele.Context, counts prayer.Counts, notice string) error {
	if err := tghelpers.EditOrSendHTML(c, textCounterPanel, counterPanel(counts)); err != nil {
		return err
	}
	return tghelpers.Respond(c, notice, false)
}

func (h *Handlers) rangeStart(c tele.Context, _ actions.Action) error {
	if err := h.Qazo.StartRange(tghelpers.BuildContext(c), tghelpers.SenderID(c)); err != nil {
		return h.fail(c, err)
	}
	return tghelpers.SendHTML(c, textRangeIntro, rangeMenu())
}

var unitPrompts = map[qazo.Unit]string{
	qazo.Years:  textAskYears,
	qazo.Months: textAskMonths,
	qazo.Days:   textAskDays,
}

var unitDone = map[qazo.Unit]string{
	qazo.Years:  textYearsDone,
	qazo.Months: textMonthsDone,
	qazo.Days:   textDaysDone,
}

func (h *Handlers) rangeUnit(c tele.Context, a actions.Action) error {
	if err := h.Qazo.ChooseUnit(tghelpers.BuildContext(c), tghelpers.SenderID(c), a.Unit); err != nil {
		return h.fail(c, err)
	}
	return tghelpers.EditOrSendHTML(c, unitPrompts[a.Unit], backOnly())
}

// rangeChoiceText handles typing while the wizard waits for a button.
func (h *Handlers) rangeChoiceText(c tele.Context) error {
	return tghelpers.SendHTML(c, textPickUnit, rangeMenu())
}

func (h *Handlers) rangeAmount(c tele.Context) error {
	unit, _, err := h.Qazo.SubmitAmount(tghelpers.BuildContext(c), tghelpers.SenderID(c), c.Text())
	switch {
	case errors.Is(err, qazo.ErrInvalidAmount):
		return tghelpers.SendText(c, textBadAmount)
	case err != nil:
		return h.fail(c, err)
	}
	return tghelpers.SendHTML(c, unitDone[unit], mainMenu())
}
