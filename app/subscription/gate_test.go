package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	users    map[int64]string
	channels []string
}

func newMemStore(channels ...string) *memStore {
	return &memStore{users: map[int64]string{}, channels: channels}
}

func (m *memStore) UserExists(_ context.Context, id int64) (bool, error) {
	_, ok := m.users[id]
	return ok, nil
}

func (m *memStore) AddUser(_ context.Context, id int64, name string) error {
	if _, ok := m.users[id]; !ok {
		m.users[id] = name
	}
	return nil
}

func (m *memStore) ListChannels(context.Context) ([]string, error) {
	return m.channels, nil
}

type roles struct{ main int64 }

func (r roles) IsAdmin(_ context.Context, id int64) bool { return id == r.main }
func (r roles) IsMainAdmin(id int64) bool                { return id == r.main }

type oracle struct {
	status map[string]string
	errs   map[string]error
	asked  []string
}

func (o *oracle) MemberStatus(_ context.Context, ch string, _ int64) (string, error) {
	o.asked = append(o.asked, ch)
	if err := o.errs[ch]; err != nil {
		return "", err
	}
	return o.status[ch], nil
}

func TestEnterWithoutChannels(t *testing.T) {
	store := newMemStore()
	g := NewGate(store, roles{main: 1}, &oracle{})
	ctx := context.Background()

	res, err := g.Enter(ctx, User{ID: 10, FullName: "Ali"})
	require.NoError(t, err)
	assert.Equal(t, ScreenWelcome, res.Screen)
	assert.False(t, res.Gated())
	assert.Equal(t, "Ali", store.users[10])

	res, err = g.Enter(ctx, User{ID: 10, FullName: "Ali"})
	require.NoError(t, err)
	assert.Equal(t, ScreenWelcomeBack, res.Screen)
}

func TestEnterAdminSkipsGate(t *testing.T) {
	store := newMemStore("@ch")
	g := NewGate(store, roles{main: 1}, &oracle{})

	res, err := g.Enter(context.Background(), User{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, ScreenAdmin, res.Screen)
	assert.True(t, res.MainAdmin)
	assert.Contains(t, store.users, int64(1))
}

func TestEnterGatedDoesNotRegister(t *testing.T) {
	store := newMemStore("@a", "@b")
	g := NewGate(store, roles{}, &oracle{})

	res, err := g.Enter(context.Background(), User{ID: 10})
	require.NoError(t, err)
	assert.True(t, res.Gated())
	assert.Equal(t, []string{"@a", "@b"}, res.Channels)
	assert.NotContains(t, store.users, int64(10))
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("all joined", func(t *testing.T) {
		store := newMemStore("@a", "@b")
		o := &oracle{status: map[string]string{"@a": "member", "@b": "creator"}}
		res, err := NewGate(store, roles{}, o).Confirm(ctx, User{ID: 10})
		require.NoError(t, err)
		assert.Equal(t, ScreenConfirmed, res.Screen)
		assert.Contains(t, store.users, int64(10))
	})

	t.Run("one left", func(t *testing.T) {
		store := newMemStore("@a", "@b")
		o := &oracle{status: map[string]string{"@a": "left", "@b": "member"}}
		res, err := NewGate(store, roles{}, o).Confirm(ctx, User{ID: 10})
		require.NoError(t, err)
		assert.True(t, res.Gated())
		assert.Equal(t, []string{"@a"}, o.asked, "first failure short-circuits")
		assert.NotContains(t, store.users, int64(10))
	})

	t.Run("broken channel", func(t *testing.T) {
		store := newMemStore("@a", "@gone")
		o := &oracle{
			status: map[string]string{"@a": "administrator"},
			errs:   map[string]error{"@gone": errors.New("chat not found")},
		}
		res, err := NewGate(store, roles{}, o).Confirm(ctx, User{ID: 10})
		require.NoError(t, err)
		assert.True(t, res.Gated())
	})

	t.Run("no channels", func(t *testing.T) {
		store := newMemStore()
		res, err := NewGate(store, roles{}, &oracle{}).Confirm(ctx, User{ID: 10})
		require.NoError(t, err)
		assert.Equal(t, ScreenNoChannels, res.Screen)
		assert.Contains(t, store.users, int64(10))
	})

	t.Run("admin", func(t *testing.T) {
		store := newMemStore("@a")
		o := &oracle{}
		res, err := NewGate(store, roles{main: 1}, o).Confirm(ctx, User{ID: 1})
		require.NoError(t, err)
		assert.Equal(t, ScreenAdmin, res.Screen)
		assert.Empty(t, o.asked)
	})
}
