package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherfo/internal/radar"
	"github.com/i474232898/weatherfo/internal/store"
)

type countingSource struct {
	calls atomic.Int32
}

func (s *countingSource) Maps(context.Context) (radar.Maps, error) {
	s.calls.Add(1)
	var m radar.Maps
	m.Radar.Past = []radar.RawFrame{{Time: 1700000000, Path: "/v2/radar/1700000000"}}
	return m, nil
}

func TestRefreshRadarFillsCatalog(t *testing.T) {
	src := &countingSource{}
	catalog := radar.NewCatalog(src)
	s := New(catalog, nil, time.Minute, time.Minute)

	s.RefreshRadar()

	snap, err := catalog.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Frames, 1)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestStartRunsJobsImmediately(t *testing.T) {
	src := &countingSource{}
	s := New(radar.NewCatalog(src), store.NewMemoryStore(time.Hour), time.Hour, time.Hour)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return src.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStartWithNothingToSchedule(t *testing.T) {
	s := New(nil, nil, 0, 0)
	require.NoError(t, s.Start())
	s.Stop()
}
