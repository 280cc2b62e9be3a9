package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazobot/qazobot/app/prayer"
	coredatabase "github.com/qazobot/qazobot/core/database"
	"github.com/qazobot/qazobot/migrations"
)

const mainAdmin int64 = 1000

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: filepath.Join(t.TempDir(), "qazo.db")}
	db, err := coredatabase.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, coredatabase.RunMigrations(cfg, migrations.FS))
	return New(db, mainAdmin)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ok, err := s.UserExists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.AddUser(ctx, 1, "Ali"))
	require.NoError(t, s.AddUser(ctx, 1, "Renamed"))

	u, err := s.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ali", u.FullName)
	assert.False(t, u.IsAdmin)

	_, err = s.GetUser(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQazoCountersClampAtZero(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.AddUser(ctx, 7, "U"))

	counts, err := s.UserQazo(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, counts, 6)
	assert.Zero(t, counts.Total())

	require.NoError(t, s.UpdateQazoCount(ctx, 7, prayer.Asr, -3))
	n, err := s.Count(ctx, 7, prayer.Asr)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.UpdateQazoCount(ctx, 7, prayer.Asr, 2))
	require.NoError(t, s.UpdateQazoCount(ctx, 7, prayer.Asr, 1))
	require.NoError(t, s.UpdateQazoCount(ctx, 7, prayer.Asr, -5))
	n, err = s.Count(ctx, 7, prayer.Asr)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.UpdateQazoCount(ctx, 7, prayer.Asr, 4))
	require.NoError(t, s.UpdateQazoCount(ctx, 7, prayer.Asr, -1))
	n, err = s.Count(ctx, 7, prayer.Asr)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAddQazoToAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.AddUser(ctx, 7, "U"))
	require.NoError(t, s.UpdateQazoCount(ctx, 7, prayer.Vitr, 5))

	require.NoError(t, s.AddQazoToAll(ctx, 7, 365))

	counts, err := s.UserQazo(ctx, 7)
	require.NoError(t, err)
	for _, p := range prayer.All() {
		want := 365
		if p == prayer.Vitr {
			want = 370
		}
		assert.Equal(t, want, counts.Get(p), p)
	}
}

func TestQazoRequiresRegisteredUser(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.AddQazoToAll(context.Background(), 404, 30))

	counts, err := s.UserQazo(context.Background(), 404)
	require.NoError(t, err)
	assert.Zero(t, counts.Total())
}

func TestAdmins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ok, err := s.IsAdmin(ctx, mainAdmin)
	require.NoError(t, err)
	assert.True(t, ok, "main admin without a row")

	ok, err = s.AddAdmin(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok, "unknown user")

	require.NoError(t, s.AddUser(ctx, 5, "Five"))
	ok, err = s.AddAdmin(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsAdmin(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := s.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, mainAdmin}, ids)

	ok, err = s.RemoveAdmin(ctx, mainAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.RemoveAdmin(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.RemoveAdmin(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok, "already demoted")

	ok, err = s.IsAdmin(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMainAdminRowIsFlagged(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.AddUser(ctx, mainAdmin, "Boss"))

	ok, err := s.AddAdmin(ctx, mainAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	u, err := s.GetUser(ctx, mainAdmin)
	require.NoError(t, err)
	assert.True(t, u.IsMainAdmin)
	assert.False(t, u.IsAdmin)

	ids, err := s.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{mainAdmin}, ids)
}

func TestRecipientsExcludeAdmins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, id := range []int64{3, 1, 2, mainAdmin} {
		require.NoError(t, s.AddUser(ctx, id, ""))
	}
	_, err := s.AddAdmin(ctx, 2)
	require.NoError(t, err)

	ids, err := s.ListRecipientIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)

	all, err := s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, mainAdmin}, all)
}

func TestStatsWindows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)

	register := func(id int64, at time.Time) {
		s.now = func() time.Time { return at }
		require.NoError(t, s.AddUser(ctx, id, ""))
	}
	register(1, now.Add(-time.Hour))    // today
	register(2, now.Add(-16*time.Hour)) // yesterday evening
	register(3, now.AddDate(0, 0, -6))  // this week
	register(4, now.AddDate(0, 0, -20)) // this month
	register(5, now.AddDate(0, 0, -90)) // older

	s.now = func() time.Time { return now }
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 5, Daily: 1, Weekly: 3, Monthly: 4}, st)
}

func TestChannels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.AddChannel(ctx, "@b"))
	require.NoError(t, s.AddChannel(ctx, "@a"))
	require.NoError(t, s.AddChannel(ctx, "@a"))

	chs, err := s.ListChannels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"@a", "@b"}, chs)

	ok, err := s.RemoveChannel(ctx, "@a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.RemoveChannel(ctx, "@missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFAQ(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id1, err := s.AddFAQ(ctx, "Q1", "A1", "")
	require.NoError(t, err)
	id2, err := s.AddFAQ(ctx, "Q2", "A2", "https://youtu.be/x")
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	list, err := s.ListFAQ(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].VideoURL)
	require.NotNil(t, list[1].VideoURL)
	assert.Equal(t, "https://youtu.be/x", *list[1].VideoURL)

	f, err := s.FAQ(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "A1", f.Answer)

	_, err = s.FAQ(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
