package bot

import (
	"errors"

	"github.com/qazobot/qazobot/app/actions"
	"github.com/qazobot/qazobot/app/storage"
	tghelpers "github.com/qazobot/qazobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func (h *Handlers) faqList(c tele.Context, _ actions.Action) error {
	faqs, err := h.FAQ.ListFAQ(tghelpers.BuildContext(c))
	if err != nil {
		return h.fail(c, err)
	}
	if len(faqs) == 0 {
		return h.show(c, textFAQEmpty, mainMenu())
	}
	return h.show(c, textFAQList, faqMenu(faqs))
}

func (h *Handlers) faqAnswer(c tele.Context, a actions.Action) error {
	f, err := h.FAQ.FAQ(tghelpers.BuildContext(c), a.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return h.show(c, textFAQMissing, faqBack())
	}
	if err != nil {
		return h.fail(c, err)
	}
	return h.show(c, textFAQAnswer(f), faqBack())
}
