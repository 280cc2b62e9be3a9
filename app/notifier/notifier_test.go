package notifier

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazobot/qazobot/app/prayer"
	"github.com/qazobot/qazobot/core/logger"
)

type fakeStore struct {
	ids     []int64
	listErr error
	badRead map[int64]bool
}

func (f fakeStore) ListRecipientIDs(context.Context) ([]int64, error) {
	return f.ids, f.listErr
}

func (f fakeStore) UserQazo(_ context.Context, id int64) (prayer.Counts, error) {
	if f.badRead[id] {
		return nil, errors.New("db timeout")
	}
	return prayer.Counts{prayer.Bomdod: int(id)}, nil
}

type fakeDeliverer struct {
	mu     sync.Mutex
	got    map[int64]prayer.Counts
	reject map[int64]bool
}

func (d *fakeDeliverer) SendReminder(_ context.Context, id int64, counts prayer.Counts) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reject[id] {
		return errors.New("forbidden: bot was blocked by the user")
	}
	d.got[id] = counts
	return nil
}

func TestSweepIsolatesFailures(t *testing.T) {
	store := fakeStore{ids: []int64{1, 2, 3, 4, 5}, badRead: map[int64]bool{4: true}}
	d := &fakeDeliverer{got: map[int64]prayer.Counts{}, reject: map[int64]bool{2: true}}
	n := New(store, d, Options{Workers: 2})

	rep, err := n.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Recipients)
	assert.Equal(t, 3, rep.Sent)
	assert.Equal(t, 2, rep.Failed)
	assert.NotEmpty(t, rep.RunID)

	var ids []int64
	for id := range d.got {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	assert.Equal(t, []int64{1, 3, 5}, ids)
	assert.Equal(t, 3, d.got[3].Get(prayer.Bomdod))
}

func TestSweepKeepsRunID(t *testing.T) {
	n := New(fakeStore{}, &fakeDeliverer{got: map[int64]prayer.Counts{}}, Options{})
	rep, err := n.Sweep(logger.WithRunID(context.Background(), "run-7"))
	require.NoError(t, err)
	assert.Equal(t, "run-7", rep.RunID)
	assert.Zero(t, rep.Recipients)
}

func TestSweepListFailure(t *testing.T) {
	n := New(fakeStore{listErr: errors.New("db down")}, &fakeDeliverer{}, Options{})
	assert.Error(t, n.Job(context.Background()))
}
