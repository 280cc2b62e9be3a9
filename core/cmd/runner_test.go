package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/qazobot/qazobot/core/config"
	coretelegram "github.com/qazobot/qazobot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type fakeApp struct {
	services []Service
	closed   bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}
func (a *fakeApp) Services() []Service { return a.services }
func (a *fakeApp) Close() error        { a.closed = true; return nil }

func baseOptions(app *fakeApp, run func(ctx context.Context, opts coretelegram.RunOptions) error) Options {
	return Options{
		DefaultConfigPath: "config.yaml",
		DotenvFiles:       []string{},
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return app, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram:    run,
	}
}

func TestRunContextStopsServicesWithBot(t *testing.T) {
	stopped := make(chan struct{})
	app := &fakeApp{services: []Service{{
		Name: "ops",
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return nil
		},
	}}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := RunContext(ctx, baseOptions(app, func(ctx context.Context, opts coretelegram.RunOptions) error {
		require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
		<-ctx.Done()
		return opts.OnStop(context.Background(), coretelegram.Runtime{})
	}))
	require.NoError(t, err)
	<-stopped
	assert.True(t, app.closed)
}

func TestRunContextServiceFailureStopsBot(t *testing.T) {
	boom := errors.New("listen failed")
	app := &fakeApp{services: []Service{{
		Name: "ops",
		Run:  func(context.Context) error { return boom },
	}}}

	err := RunContext(context.Background(), baseOptions(app, func(ctx context.Context, _ coretelegram.RunOptions) error {
		<-ctx.Done()
		return nil
	}))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service ops")
}

func TestRunContextRequiresHooks(t *testing.T) {
	assert.Error(t, RunContext(context.Background(), Options{}))
}
