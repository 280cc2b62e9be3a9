package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	admins map[int64]bool
	err    error
	calls  int
}

func (f *fakeStore) IsAdmin(_ context.Context, id int64) (bool, error) {
	f.calls++
	return f.admins[id], f.err
}

func TestChecker(t *testing.T) {
	store := &fakeStore{admins: map[int64]bool{5: true}}
	c := NewChecker(store, 1)
	ctx := context.Background()

	assert.True(t, c.IsAdmin(ctx, 1))
	assert.Equal(t, 0, store.calls, "main admin short-circuits storage")
	assert.True(t, c.IsAdmin(ctx, 5))
	assert.False(t, c.IsAdmin(ctx, 6))
	assert.False(t, c.IsAdmin(ctx, 0))

	assert.True(t, c.IsMainAdmin(1))
	assert.False(t, c.IsMainAdmin(5))
}

func TestCheckerStorageErrorDenies(t *testing.T) {
	store := &fakeStore{admins: map[int64]bool{5: true}, err: errors.New("db down")}
	c := NewChecker(store, 1)

	assert.False(t, c.IsAdmin(context.Background(), 5))
	assert.True(t, c.IsAdmin(context.Background(), 1))
}

func TestCheckerWithoutMainAdmin(t *testing.T) {
	c := NewChecker(nil, 0)
	assert.False(t, c.IsMainAdmin(0))
	assert.False(t, c.IsAdmin(context.Background(), 7))
}

func TestAdminOptions(t *testing.T) {
	c := NewChecker(&fakeStore{}, 1)
	opts := c.AdminOptions(nil)
	assert.True(t, opts.IsAdmin(context.Background(), 1))
	assert.False(t, opts.IsAdmin(context.Background(), 2))
}
