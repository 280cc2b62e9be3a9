package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/qazobot/qazobot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Start"}))
	require.NoError(t, reg.RegisterCommand("/admin", commands.Command{Handler: noop, Description: "Admin", AdminOnly: true, Aliases: []string{"Admin"}}))
	require.NoError(t, reg.RegisterCommand("/cancel", commands.Command{Handler: noop, Description: "Cancel"}))

	assert.Error(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "dup"}))
	assert.Error(t, reg.RegisterCommand("help", commands.Command{Handler: noop, Description: "no slash"}))
	assert.Error(t, reg.RegisterCommand("/empty", commands.Command{Handler: noop}))

	visible := reg.ListCommands(true)
	require.Len(t, visible, 2)
	assert.Equal(t, "cancel", visible[0].Text)
	assert.Equal(t, "start", visible[1].Text)
	assert.Len(t, reg.ListCommands(false), 3)

	for _, text := range []string{"/admin", "Admin", "admin", "/admin@qazo_bot", "/admin extra"} {
		key, _, ok := reg.LookupCommand(text)
		assert.Truef(t, ok, "lookup %q", text)
		assert.Equal(t, "/admin", key)
	}
	_, _, ok := reg.LookupCommand("Salom")
	assert.False(t, ok)
	_, _, ok = reg.LookupCommand("")
	assert.False(t, ok)
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("qz_inc", noop))
	require.NoError(t, reg.RegisterCallback("menu", noop))
	assert.Error(t, reg.RegisterCallback("menu", noop))
	assert.Error(t, reg.RegisterCallback("", noop))
	assert.Error(t, reg.RegisterCallback("x", nil))

	_, ok := reg.GetCallback("qz_inc")
	assert.True(t, ok)
	_, ok = reg.GetCallback("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"menu", "qz_inc"}, reg.ListCallbacks())
	assert.NotNil(t, reg.CallbackNotFound())

	reg.SetTextFallback(noop)
	assert.NotNil(t, reg.TextFallback())
}

func TestBuildPoller(t *testing.T) {
	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, defaultLongPollTimeout, lp.Timeout)

	wh, ok := BuildPoller(PollerOptions{RunMode: "WEBHOOK", Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example/hook"}}).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "https://bot.example/hook", wh.Endpoint.PublicURL)
}
