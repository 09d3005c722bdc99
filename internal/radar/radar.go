// Package radar keeps the list of RainViewer radar frames the map layer animates.
package radar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultTileHost is used when the index does not name a tile host.
const DefaultTileHost = "https://tilecache.rainviewer.com"

// tileSuffix selects 256px tiles, color scheme 1, smoothing on, snow off.
const tileSuffix = "/256/{z}/{x}/{y}/1/1_1.png"

// ErrNoFrames is returned when the index lists no radar frames.
var ErrNoFrames = errors.New("radar index has no frames")

// RawFrame is a frame as listed by weather-maps.json.
type RawFrame struct {
	Time int64  `json:"time"`
	Path string `json:"path"`
}

// Maps is the subset of weather-maps.json the catalog uses.
type Maps struct {
	Generated int64  `json:"generated"`
	Host      string `json:"host"`
	Radar     struct {
		Past    []RawFrame `json:"past"`
		Nowcast []RawFrame `json:"nowcast"`
	} `json:"radar"`
}

// Source fetches the frame index.
type Source interface {
	Maps(ctx context.Context) (Maps, error)
}

// Frame is a playable radar frame.
type Frame struct {
	Time     int64  `json:"time"`
	Path     string `json:"path"`
	TileURL  string `json:"tileUrl"`
	Forecast bool   `json:"nowcast"`
}

// Snapshot is the frame list at one point in time: past frames first, then nowcast.
type Snapshot struct {
	Generated int64     `json:"generated"`
	Frames    []Frame   `json:"frames"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// TileURL builds the tile URL template for a frame path. Older indexes list bare
// frame ids, newer ones a full "/v2/radar/..." path.
func TileURL(host, path string) string {
	if host == "" {
		host = DefaultTileHost
	}
	host = strings.TrimRight(host, "/")
	if strings.HasPrefix(path, "/") {
		return host + path + tileSuffix
	}
	return host + "/v2/radar/" + path + tileSuffix
}

// BuildSnapshot flattens an index into frames.
func BuildSnapshot(m Maps, now time.Time) (Snapshot, error) {
	frames := make([]Frame, 0, len(m.Radar.Past)+len(m.Radar.Nowcast))
	for _, f := range m.Radar.Past {
		frames = append(frames, Frame{Time: f.Time, Path: f.Path, TileURL: TileURL(m.Host, f.Path)})
	}
	for _, f := range m.Radar.Nowcast {
		frames = append(frames, Frame{Time: f.Time, Path: f.Path, TileURL: TileURL(m.Host, f.Path), Forecast: true})
	}
	if len(frames) == 0 {
		return Snapshot{}, ErrNoFrames
	}
	return Snapshot{Generated: m.Generated, Frames: frames, FetchedAt: now}, nil
}

// Catalog holds the latest radar snapshot. It is safe for concurrent use.
type Catalog struct {
	source Source
	now    func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewCatalog creates an empty Catalog.
func NewCatalog(source Source) *Catalog {
	return &Catalog{
		source: source,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Refresh replaces the snapshot with a freshly fetched one. On failure the
// previous snapshot is kept.
func (c *Catalog) Refresh(ctx context.Context) error {
	m, err := c.source.Maps(ctx)
	if err != nil {
		return fmt.Errorf("radar: fetch index: %w", err)
	}
	snap, err := BuildSnapshot(m, c.now())
	if err != nil {
		return fmt.Errorf("radar: %w", err)
	}

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()
	return nil
}

// Snapshot returns the current snapshot, fetching one first if none is held yet.
func (c *Catalog) Snapshot(ctx context.Context) (Snapshot, error) {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()
	if len(snap.Frames) > 0 {
		return snap, nil
	}

	if err := c.Refresh(ctx); err != nil {
		return Snapshot{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, nil
}
