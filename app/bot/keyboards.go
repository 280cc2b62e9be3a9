package bot

import (
	"strconv"
	"strings"

	"github.com/qazobot/qazobot/app/actions"
	"github.com/qazobot/qazobot/app/prayer"
	"github.com/qazobot/qazobot/app/prayertimes"
	"github.com/qazobot/qazobot/app/qazo"
	"github.com/qazobot/qazobot/app/storage"
	"github.com/qazobot/qazobot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

const (
	labelBack     = "🔙 Orqaga"
	labelToMenu   = "⬅️ Menyuga qaytish"
	labelConfirm  = "✅ Obuna bo‘ldim"
	faqLabelLimit = 60
)

func btn(text string, a actions.Action) keyboard.InlineBtn {
	unique, payload := a.Encode()
	return keyboard.InlineBtn{Text: text, Unique: unique, Data: payload}
}

func kind(k actions.Kind) actions.Action {
	return actions.Action{Kind: k}
}

func mainMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			btn("📊 Qazolarim", kind(actions.QazoPanel)),
			btn("➕ Qazo hisoblash", kind(actions.RangeStart)),
		},
		[]keyboard.InlineBtn{
			btn("📅 Namoz vaqtlari", kind(actions.PrayerTimes)),
			btn("❓ Tez-tez so‘raladigan savollar", kind(actions.FAQList)),
		},
	)
}

func adminMenu(mainAdmin bool) *tele.ReplyMarkup {
	listRow := []keyboard.InlineBtn{btn("📋 Kanallar ro‘yxati", kind(actions.AdminChannelList))}
	if mainAdmin {
		listRow = append(listRow, btn("👥 Adminlarni ko‘rish", kind(actions.AdminList)))
	}
	rows := [][]keyboard.InlineBtn{
		{
			btn("📈 Statistika", kind(actions.AdminStats)),
			btn("📣 Xabar yuborish", kind(actions.AdminBroadcast)),
		},
		{
			btn("➕ Kanal qo‘shish", kind(actions.AdminChannelAdd)),
			btn("➖ Kanal o‘chirish", kind(actions.AdminChannelRemove)),
		},
		listRow,
		{btn("➕ FAQ qo‘shish", kind(actions.AdminFAQAdd))},
	}
	if mainAdmin {
		rows = append(rows, []keyboard.InlineBtn{
			btn("👤 Yangi admin qo‘shish", kind(actions.AdminAdd)),
			btn("🗑 Admin o‘chirish", kind(actions.AdminRemove)),
		})
	}
	return keyboard.InlineButtonsRows(rows...)
}

func backOnly() *tele.ReplyMarkup {
	return keyboard.Single(btn(labelBack, kind(actions.Back)))
}

// counterRows renders the per-prayer ± rows shared by the counter panel and
// the daily reminder.
func counterRows(counts prayer.Counts, label func(prayer.Type) string) [][]keyboard.InlineBtn {
	rows := make([][]keyboard.InlineBtn, 0, 2*len(prayer.All())+1)
	noop := kind(actions.Noop)
	for _, p := range prayer.All() {
		rows = append(rows,
			[]keyboard.InlineBtn{btn(label(p), noop)},
			[]keyboard.InlineBtn{
				btn("➖", actions.Action{Kind: actions.QazoDec, Prayer: p}),
				btn(strconv.Itoa(counts.Get(p)), noop),
				btn("➕", actions.Action{Kind: actions.QazoInc, Prayer: p}),
			},
		)
	}
	return rows
}

func counterPanel(counts prayer.Counts) *tele.ReplyMarkup {
	rows := counterRows(counts, func(p prayer.Type) string { return string(p) })
	rows = append(rows, []keyboard.InlineBtn{btn(labelBack, kind(actions.Menu))})
	return keyboard.InlineButtonsRows(rows...)
}

func reminderKeyboard(counts prayer.Counts) *tele.ReplyMarkup {
	rows := counterRows(counts, prayer.Type.Label)
	rows = append(rows, []keyboard.InlineBtn{btn(labelToMenu, kind(actions.Menu))})
	return keyboard.InlineButtonsRows(rows...)
}

func rangeMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		btn("❗ Ha, 1 yildan oshli", actions.Action{Kind: actions.RangeUnit, Unit: qazo.Years}),
		btn("✅ Yo‘q, oylik hisoblayman", actions.Action{Kind: actions.RangeUnit, Unit: qazo.Months}),
		btn("📖 Yo‘q, kunlik hisoblayman", actions.Action{Kind: actions.RangeUnit, Unit: qazo.Days}),
		btn(labelBack, kind(actions.Back)),
	})
}

func regionsMenu() *tele.ReplyMarkup {
	regions := prayertimes.Regions()
	buttons := make([]keyboard.InlineBtn, 0, len(regions))
	for i, r := range regions {
		buttons = append(buttons, btn(r.Name, actions.Action{Kind: actions.PTRegion, Region: i}))
	}
	rows := keyboard.Chunk(buttons, 2)
	rows = append(rows, []keyboard.InlineBtn{btn(labelBack, kind(actions.Menu))})
	return keyboard.InlineButtonsRows(rows...)
}

func citiesMenu(regionIdx int, r prayertimes.Region) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(r.Cities))
	for i, city := range r.Cities {
		buttons = append(buttons, btn(city, actions.Action{Kind: actions.PTCity, Region: regionIdx, City: i}))
	}
	rows := keyboard.Chunk(buttons, 3)
	rows = append(rows, []keyboard.InlineBtn{btn(labelBack, kind(actions.PrayerTimes))})
	return keyboard.InlineButtonsRows(rows...)
}

func timingsMenu(regionIdx int) *tele.ReplyMarkup {
	return keyboard.Single(btn(labelBack, actions.Action{Kind: actions.PTRegion, Region: regionIdx}))
}

func subscribeMenu(channels []string) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(channels)+2)
	for _, ch := range channels {
		rows = append(rows, []keyboard.InlineBtn{{Text: "📢 " + ch, URL: channelURL(ch)}})
	}
	rows = append(rows,
		[]keyboard.InlineBtn{btn(labelConfirm, kind(actions.Subscribed))},
	)
	return keyboard.InlineButtonsRows(rows...)
}

// channelURL links @username channels; numeric ids have no public link, so
// they fall back to the bare t.me host.
func channelURL(channel string) string {
	if name, ok := strings.CutPrefix(channel, "@"); ok {
		return "https://t.me/" + name
	}
	if _, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return "https://t.me/"
	}
	return "https://t.me/" + channel
}

func faqMenu(faqs []storage.FAQ) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(faqs)+1)
	for _, f := range faqs {
		buttons = append(buttons, btn(truncate(f.Question, faqLabelLimit), actions.Action{Kind: actions.FAQAnswer, ID: f.ID}))
	}
	buttons = append(buttons, btn(labelBack, kind(actions.Menu)))
	return keyboard.InlineButtons(buttons)
}

func faqBack() *tele.ReplyMarkup {
	return keyboard.Single(btn(labelBack, kind(actions.FAQList)))
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
