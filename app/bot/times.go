package bot

import (
	"log/slog"

	"github.com/qazobot/qazobot/app/actions"
	"github.com/qazobot/qazobot/app/prayertimes"
	"github.com/qazobot/qazobot/core/logger"
	tghelpers "github.com/qazobot/qazobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func (h *Handlers) regions(c tele.Context, _ actions.Action) error {
	return tghelpers.EditOrSendHTML(c, textRegions, regionsMenu())
}

func (h *Handlers) cities(c tele.Context, a actions.Action) error {
	r, ok := prayertimes.RegionAt(a.Region)
	if !ok {
		return h.UnknownCallback()(c)
	}
	return tghelpers.EditOrSendHTML(c, textCities(r.Name), citiesMenu(a.Region, r))
}

func (h *Handlers) timings(c tele.Context, a actions.Action) error {
	_, city, ok := prayertimes.CityAt(a.Region, a.City)
	if !ok {
		return h.UnknownCallback()(c)
	}
	ctx := tghelpers.BuildContext(c)
	t, day, err := h.Timings.Lookup(ctx, city)
	if err != nil {
		logger.Warn(ctx, component, "prayertimes.lookup",
			slog.String("city", city),
			slog.String("status", "fail"),
			logger.Err(err),
		)
		return tghelpers.EditOrSendHTML(c, textTimesError, timingsMenu(a.Region))
	}
	return tghelpers.EditOrSendHTML(c, textTimings(city, day, t), timingsMenu(a.Region))
}
