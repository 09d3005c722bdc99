package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherfo/internal/weather"
)

func view(name string) weather.ViewModel {
	return weather.ViewModel{Location: weather.Place{Name: name}}
}

func TestCommitLatestGeneration(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	sess := s.Create()
	require.NotEmpty(t, sess.ID)

	gen, err := s.Begin(sess.ID)
	require.NoError(t, err)
	require.NoError(t, s.Commit(sess.ID, gen, view("Jakarta")))

	got, err := s.Latest(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.View)
	assert.Equal(t, "Jakarta", got.View.Location.Name)
	assert.Equal(t, gen, got.View.Generation)
}

func TestStaleResultIsDiscarded(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	id := s.Create().ID

	older, err := s.Begin(id)
	require.NoError(t, err)
	newer, err := s.Begin(id)
	require.NoError(t, err)
	require.Greater(t, newer, older)

	require.NoError(t, s.Commit(id, newer, view("Bandung")))

	// The older request finishes last and must not overwrite the newer view.
	err = s.Commit(id, older, view("Jakarta"))
	assert.True(t, errors.Is(err, weather.ErrStaleResult))

	got, err := s.Latest(id)
	require.NoError(t, err)
	assert.Equal(t, "Bandung", got.View.Location.Name)
}

func TestUnknownSession(t *testing.T) {
	s := NewMemoryStore(time.Hour)

	_, err := s.Begin("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.Commit("missing", 1, view("x")), ErrNotFound))
	_, err = s.Latest("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPruneIdleSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return now }

	idle := s.Create().ID
	now = now.Add(50 * time.Minute)
	active := s.Create().ID

	now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, s.Prune())
	assert.Equal(t, 1, s.Len())

	_, err := s.Latest(idle)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = s.Latest(active)
	assert.NoError(t, err)
}

func TestPruneDisabled(t *testing.T) {
	s := NewMemoryStore(0)
	s.Create()
	s.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	assert.Zero(t, s.Prune())
	assert.Equal(t, 1, s.Len())
}

func TestConcurrentBeginCommit(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	id := s.Create().ID

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gen, err := s.Begin(id)
			if err != nil {
				return
			}
			_ = s.Commit(id, gen, view("x"))
		}()
	}
	wg.Wait()

	got, err := s.Latest(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), got.Generation)
	if got.View != nil {
		assert.LessOrEqual(t, got.View.Generation, got.Generation)
	}
}
