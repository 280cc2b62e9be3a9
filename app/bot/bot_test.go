package bot

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazobot/qazobot/app/access"
	"github.com/qazobot/qazobot/app/actions"
	"github.com/qazobot/qazobot/app/admin"
	"github.com/qazobot/qazobot/app/prayer"
	"github.com/qazobot/qazobot/app/prayertimes"
	"github.com/qazobot/qazobot/app/qazo"
	"github.com/qazobot/qazobot/app/storage"
	"github.com/qazobot/qazobot/app/subscription"
	coredatabase "github.com/qazobot/qazobot/core/database"
	tg "github.com/qazobot/qazobot/core/telegram"
	"github.com/qazobot/qazobot/core/telegram/state"
	"github.com/qazobot/qazobot/core/telegram/teletest"
	"github.com/qazobot/qazobot/migrations"

	tele "gopkg.in/telebot.v4"
)

const mainAdmin int64 = 1000

type fakeTimings struct {
	t   prayertimes.Timings
	err error
}

func (f fakeTimings) Lookup(context.Context, string) (prayertimes.Timings, time.Time, error) {
	return f.t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), f.err
}

type harness struct {
	srv       *teletest.Server
	bot       *tele.Bot
	store     *storage.Store
	dialogs   *state.Manager
	messenger *Messenger
	callback  tele.HandlerFunc
	text      tele.HandlerFunc
	updates   int
}

func newHarness(t *testing.T, timings Timings) *harness {
	t.Helper()
	ctx := context.Background()

	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: filepath.Join(t.TempDir(), "bot.db")}
	db, err := coredatabase.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, coredatabase.RunMigrations(cfg, migrations.FS))

	store := storage.New(db, mainAdmin)
	require.NoError(t, store.AddUser(ctx, mainAdmin, "Main"))
	_, err = store.AddAdmin(ctx, mainAdmin)
	require.NoError(t, err)

	srv := teletest.NewServer(t)
	b := srv.Bot(t)
	b.Me = &tele.User{ID: 123456, IsBot: true, Username: "test_bot"}

	messenger := NewMessenger()
	messenger.Bind(b, nil)

	dialogs := state.NewManager(nil)
	roles := access.NewChecker(store, mainAdmin)
	if timings == nil {
		timings = fakeTimings{}
	}
	h := New(Options{
		Users:     store,
		FAQ:       store,
		Roles:     roles,
		Gate:      subscription.NewGate(store, roles, messenger),
		Qazo:      qazo.NewService(store, dialogs),
		Admin:     admin.NewService(store, roles, messenger, dialogs),
		Timings:   timings,
		Dialogs:   dialogs,
		Messenger: messenger,
	})
	reg := tg.NewRegistry()
	require.NoError(t, h.Register(reg))

	hs := &harness{srv: srv, bot: b, store: store, dialogs: dialogs, messenger: messenger}
	for _, r := range h.Routes(reg) {
		switch r.Endpoint {
		case tele.OnCallback:
			hs.callback = r.Handler
		case tele.OnText:
			hs.text = r.Handler
		}
	}
	require.NotNil(t, hs.callback)
	require.NotNil(t, hs.text)
	return hs
}

func (h *harness) say(t *testing.T, userID int64, text string) {
	t.Helper()
	h.updates++
	require.NoError(t, h.text(h.bot.NewContext(teletest.MessageUpdate(h.updates, userID, text))))
}

func (h *harness) tap(t *testing.T, userID int64, a actions.Action) {
	t.Helper()
	unique, payload := a.Encode()
	h.tapRaw(t, userID, unique, payload)
}

func (h *harness) tapRaw(t *testing.T, userID int64, unique, payload string) {
	t.Helper()
	h.updates++
	require.NoError(t, h.callback(h.bot.NewContext(teletest.CallbackUpdate(h.updates, userID, unique, payload))))
}

// lastText returns the text of the most recent send or edit.
func (h *harness) lastText(t *testing.T) string {
	t.Helper()
	var last teletest.Call
	for _, c := range h.srv.Calls() {
		if c.Method == "sendMessage" || c.Method == "editMessageText" {
			last = c
		}
	}
	require.NotEmpty(t, last.Method, "no message was sent")
	return last.Param("text")
}

func (h *harness) alert(t *testing.T) teletest.Call {
	t.Helper()
	answers := h.srv.Calls("answerCallbackQuery")
	require.Len(t, answers, 1)
	return answers[0]
}

func memberStatus(status string) teletest.Responder {
	return func(call teletest.Call) (any, *tele.Error) {
		uid, _ := strconv.ParseInt(call.Param("user_id"), 10, 64)
		return map[string]any{
			"status": status,
			"user":   map[string]any{"id": uid, "is_bot": false, "first_name": "User"},
		}, nil
	}
}

func TestStartRegistersNewUser(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.say(t, 10, "/start")
	assert.Equal(t, textWelcome, h.lastText(t))
	ok, err := h.store.UserExists(ctx, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	h.srv.Reset()
	h.say(t, 10, "/start")
	assert.Equal(t, textWelcomeBack, h.lastText(t))
}

func TestStartForAdmin(t *testing.T) {
	h := newHarness(t, nil)

	h.say(t, mainAdmin, "/start")
	assert.Equal(t, textAdminWelcome, h.lastText(t))
	markup := h.srv.Calls("sendMessage")[0].Param("reply_markup")
	assert.Contains(t, markup, "Yangi admin")
}

func TestSubscriptionGate(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.AddChannel(ctx, "-100200"))
	h.srv.Handle("getChatMember", memberStatus("left"))

	h.say(t, 10, "/start")
	assert.Equal(t, textSubscribe, h.lastText(t))
	ok, err := h.store.UserExists(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	// Any other button is held behind the gate too.
	h.srv.Reset()
	h.tap(t, 10, actions.Action{Kind: actions.QazoPanel})
	assert.Equal(t, textSubscribe, h.lastText(t))

	h.srv.Reset()
	h.tap(t, 10, actions.Action{Kind: actions.Subscribed})
	answer := h.alert(t)
	assert.Equal(t, textSubsMissing, answer.Param("text"))
	assert.Equal(t, "true", answer.Param("show_alert"))

	h.srv.Handle("getChatMember", memberStatus("member"))
	h.srv.Reset()
	h.tap(t, 10, actions.Action{Kind: actions.Subscribed})
	assert.Equal(t, textSubsOK, h.lastText(t))
	ok, err = h.store.UserExists(ctx, 10)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCounterButtons(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.AddUser(ctx, 10, "User"))

	h.tap(t, 10, actions.Action{Kind: actions.QazoDec, Prayer: prayer.Bomdod})
	answer := h.alert(t)
	assert.Equal(t, textAtZero, answer.Param("text"))
	assert.Equal(t, "true", answer.Param("show_alert"))

	h.srv.Reset()
	h.tap(t, 10, actions.Action{Kind: actions.QazoInc, Prayer: prayer.Bomdod})
	h.tap(t, 10, actions.Action{Kind: actions.QazoInc, Prayer: prayer.Bomdod})
	require.Len(t, h.srv.Calls("editMessageText"), 2)
	assert.Equal(t, textCounterPanel, h.lastText(t))
	n, err := h.store.Count(ctx, 10, prayer.Bomdod)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	h.srv.Reset()
	h.tap(t, 10, actions.Action{Kind: actions.QazoDec, Prayer: prayer.Bomdod})
	assert.Equal(t, textRemoved, h.alert(t).Param("text"))
	n, err = h.store.Count(ctx, 10, prayer.Bomdod)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRangeWizard(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.AddUser(ctx, 10, "User"))

	h.tap(t, 10, actions.Action{Kind: actions.RangeStart})
	assert.Equal(t, textRangeIntro, h.lastText(t))
	assert.Equal(t, qazo.StateRangeChoice, h.dialogs.Get(ctx, 10).State)

	h.say(t, 10, "5")
	assert.Equal(t, textPickUnit, h.lastText(t))

	h.tap(t, 10, actions.Action{Kind: actions.RangeUnit, Unit: qazo.Years})
	assert.Equal(t, textAskYears, h.lastText(t))

	h.say(t, 10, "uch")
	assert.Equal(t, textBadAmount, h.lastText(t))
	assert.Equal(t, qazo.StateYears, h.dialogs.Get(ctx, 10).State)

	h.say(t, 10, "3")
	assert.Equal(t, textYearsDone, h.lastText(t))
	assert.False(t, h.dialogs.InProgress(ctx, 10))

	counts, err := h.store.UserQazo(ctx, 10)
	require.NoError(t, err)
	for _, p := range prayer.All() {
		assert.Equal(t, 3*365, counts.Get(p), p)
	}
}

func TestAdminButtonsRejectUsers(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.store.AddUser(context.Background(), 10, "User"))

	h.tap(t, 10, actions.Action{Kind: actions.AdminStats})
	answer := h.alert(t)
	assert.Equal(t, textNotAdmin, answer.Param("text"))
	assert.Equal(t, "true", answer.Param("show_alert"))

	h.srv.Reset()
	h.say(t, 10, "Admin")
	assert.Equal(t, textNoRights, h.lastText(t))
}

func TestGrantAdminNotifiesTarget(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.AddUser(ctx, 20, "Target"))

	h.tap(t, mainAdmin, actions.Action{Kind: actions.AdminAdd})
	assert.Equal(t, textAskAdminAdd, h.lastText(t))

	h.say(t, mainAdmin, "abc")
	assert.Equal(t, textBadUserID, h.lastText(t))

	h.srv.Reset()
	h.say(t, mainAdmin, "20")
	sends := h.srv.Calls("sendMessage")
	require.Len(t, sends, 2)
	assert.Equal(t, "20", sends[0].Param("chat_id"))
	assert.Equal(t, textYouAreAdmin, sends[0].Param("text"))
	assert.Equal(t, textAdminGranted(20), sends[1].Param("text"))

	ok, err := h.store.IsAdmin(ctx, 20)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, h.dialogs.InProgress(ctx, mainAdmin))
}

func TestRevokeAdminWhenTargetBlockedBot(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.AddUser(ctx, 20, "Target"))
	_, err := h.store.AddAdmin(ctx, 20)
	require.NoError(t, err)

	h.srv.Handle("sendMessage", func(call teletest.Call) (any, *tele.Error) {
		if call.Param("chat_id") == "20" {
			return nil, &tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}
		}
		chatID, _ := strconv.ParseInt(call.Param("chat_id"), 10, 64)
		return map[string]any{
			"message_id": 1,
			"date":       0,
			"chat":       map[string]any{"id": chatID, "type": "private"},
			"text":       call.Param("text"),
		}, nil
	})

	h.tap(t, mainAdmin, actions.Action{Kind: actions.AdminRemove})
	h.say(t, mainAdmin, "20")
	assert.Equal(t, textAdminRevokedSilent(20), h.lastText(t))

	ok, err := h.store.IsAdmin(ctx, 20)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevokedAdminLosesOpenDialog(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.AddUser(ctx, 20, "Helper"))
	_, err := h.store.AddAdmin(ctx, 20)
	require.NoError(t, err)

	h.tap(t, 20, actions.Action{Kind: actions.AdminBroadcast})
	assert.Equal(t, admin.StateBroadcast, h.dialogs.Get(ctx, 20).State)

	_, err = h.store.RemoveAdmin(ctx, 20)
	require.NoError(t, err)

	h.srv.Reset()
	h.say(t, 20, "hello everyone")
	assert.Equal(t, textNoRights, h.lastText(t))
	assert.False(t, h.dialogs.InProgress(ctx, 20))
}

func TestMainAdminOnlyDialogs(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.AddUser(ctx, 20, "Helper"))
	_, err := h.store.AddAdmin(ctx, 20)
	require.NoError(t, err)

	h.tap(t, 20, actions.Action{Kind: actions.AdminAdd})
	assert.Equal(t, textMainOnly, h.lastText(t))
	assert.False(t, h.dialogs.InProgress(ctx, 20))
}

func TestFAQ(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.AddUser(ctx, 10, "User"))

	h.tap(t, 10, actions.Action{Kind: actions.FAQList})
	assert.Equal(t, textFAQEmpty, h.lastText(t))

	id, err := h.store.AddFAQ(ctx, "Qazo nima?", "O'z vaqtida o'qilmagan namoz.", "")
	require.NoError(t, err)

	h.srv.Reset()
	h.tap(t, 10, actions.Action{Kind: actions.FAQList})
	assert.Equal(t, textFAQList, h.lastText(t))
	assert.Contains(t, h.srv.Calls("editMessageText")[0].Param("reply_markup"), "Qazo nima?")

	h.srv.Reset()
	h.tap(t, 10, actions.Action{Kind: actions.FAQAnswer, ID: id})
	assert.Equal(t, "O&#39;z vaqtida o&#39;qilmagan namoz.", h.lastText(t))

	h.srv.Reset()
	h.tap(t, 10, actions.Action{Kind: actions.FAQAnswer, ID: id + 1})
	assert.Equal(t, textFAQMissing, h.lastText(t))
}

func TestAdminAddsFAQ(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.tap(t, mainAdmin, actions.Action{Kind: actions.AdminFAQAdd})
	h.say(t, mainAdmin, "Vitr vojibmi?")
	assert.Equal(t, textAskFAQAnswer, h.lastText(t))
	h.say(t, mainAdmin, "Ha.")
	assert.Equal(t, textFAQSaved, h.lastText(t))

	faqs, err := h.store.ListFAQ(ctx)
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	assert.Equal(t, "Vitr vojibmi?", faqs[0].Question)
	assert.Equal(t, "Ha.", faqs[0].Answer)
}

func TestPrayerTimes(t *testing.T) {
	timings := fakeTimings{t: prayertimes.Timings{Fajr: "05:01", Sunrise: "06:20", Dhuhr: "12:30", Asr: "16:10", Maghrib: "18:40", Isha: "20:00"}}
	h := newHarness(t, timings)
	require.NoError(t, h.store.AddUser(context.Background(), 10, "User"))

	h.tap(t, 10, actions.Action{Kind: actions.PrayerTimes})
	assert.Equal(t, textRegions, h.lastText(t))

	region, city, ok := prayertimes.CityAt(0, 0)
	require.True(t, ok)

	h.srv.Reset()
	h.tap(t, 10, actions.Action{Kind: actions.PTRegion, Region: 0})
	assert.Equal(t, textCities(region.Name), h.lastText(t))

	h.srv.Reset()
	h.tap(t, 10, actions.Action{Kind: actions.PTCity, Region: 0, City: 0})
	text := h.lastText(t)
	assert.Contains(t, text, city)
	assert.Contains(t, text, "2024-03-10")
	assert.Contains(t, text, "Bomdod: 05:01")
}

func TestPrayerTimesFailure(t *testing.T) {
	h := newHarness(t, fakeTimings{err: errors.New("upstream down")})
	require.NoError(t, h.store.AddUser(context.Background(), 10, "User"))

	h.tap(t, 10, actions.Action{Kind: actions.PTCity, Region: 0, City: 0})
	assert.Equal(t, textTimesError, h.lastText(t))
}

func TestStaleButtons(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.store.AddUser(context.Background(), 10, "User"))

	h.tapRaw(t, 10, "gone", "")
	assert.Equal(t, textStale, h.alert(t).Param("text"))

	h.srv.Reset()
	unique, _ := actions.Action{Kind: actions.QazoInc, Prayer: prayer.Asr}.Encode()
	h.tapRaw(t, 10, unique, "tahajjud")
	assert.Equal(t, textStale, h.alert(t).Param("text"))
}

func TestUnknownTextShowsMenu(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.store.AddUser(context.Background(), 10, "User"))

	h.say(t, 10, "salom")
	assert.Equal(t, textMenu, h.lastText(t))
}

func TestMessengerReminder(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	counts := prayer.Counts{prayer.Asr: 4}
	require.NoError(t, h.messenger.SendReminder(ctx, 10, counts))

	sends := h.srv.Calls("sendMessage")
	require.Len(t, sends, 1)
	assert.Equal(t, "10", sends[0].Param("chat_id"))
	assert.Equal(t, textReminder, sends[0].Param("text"))
	assert.Contains(t, sends[0].Param("reply_markup"), labelToMenu)

	h.messenger.Unbind()
	assert.ErrorIs(t, h.messenger.SendReminder(ctx, 10, counts), ErrNotBound)
	assert.Zero(t, h.messenger.BotID())
}

func TestMessengerMemberStatus(t *testing.T) {
	h := newHarness(t, nil)
	h.srv.Handle("getChatMember", memberStatus("administrator"))

	status, err := h.messenger.MemberStatus(context.Background(), "-100300", 123456)
	require.NoError(t, err)
	assert.Equal(t, "administrator", status)
	assert.Equal(t, int64(123456), h.messenger.BotID())
}

func TestAdminStatsAndChannels(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.AddUser(ctx, 10, "User"))

	h.tap(t, mainAdmin, actions.Action{Kind: actions.AdminStats})
	text := h.lastText(t)
	assert.Contains(t, text, "Umumiy: 2")

	h.srv.Reset()
	h.tap(t, mainAdmin, actions.Action{Kind: actions.AdminChannelList})
	assert.Equal(t, textNoChannels, h.lastText(t))

	require.NoError(t, h.store.AddChannel(ctx, "@qazo_kanal"))
	h.srv.Reset()
	h.tap(t, mainAdmin, actions.Action{Kind: actions.AdminChannelList})
	assert.Contains(t, h.lastText(t), "@qazo_kanal")
}
