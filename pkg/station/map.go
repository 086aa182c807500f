package station

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/levenlabs/go-lflag"
	"github.com/pumpstation/pumpstation/pkg/types"
)

// DefaultCacheSize is the number of stations a Map keeps by default.
const DefaultCacheSize = 256

// Configured sets up the station Map based on flags.
func Configured() *Map {
	size := lflag.String("station-cache-size", strconv.Itoa(DefaultCacheSize), "Number of evaluated stations to keep in memory")

	m := NewMap(DefaultCacheSize)
	lflag.Do(func() {
		n, err := strconv.Atoi(*size)
		if err != nil || n < 1 {
			panic(fmt.Sprintf("invalid station-cache-size: %s", *size))
		}
		m.size = n
	})
	return m
}

type mapEntry struct {
	key     string
	station *Station
}

// Map memoizes stations by configuration so identical configurations are only
// evaluated once. The oldest entry is evicted once the Map is full.
type Map struct {
	mu       sync.Mutex
	size     int
	stations map[uint64]mapEntry
	order    []uint64
}

// NewMap creates a new station Map holding at most size stations.
func NewMap(size int) *Map {
	if size < 1 {
		size = 1
	}
	return &Map{
		size:     size,
		stations: make(map[uint64]mapEntry),
	}
}

// Key returns the canonical encoding of the configuration and its hash.
func Key(cfg types.Config) (string, uint64, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode config: %w", err)
	}
	return string(b), xxhash.Sum64(b), nil
}

// Station returns the station for the configuration, building it if it isn't
// already cached.
func (m *Map) Station(ctx context.Context, cfg types.Config) (*Station, error) {
	// validate before encoding since NaN fields can't be encoded
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key, sum, err := Key(cfg)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.stations[sum]; ok && e.key == key {
		return e.station, nil
	}

	st, err := Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, ok := m.stations[sum]; !ok {
		m.order = append(m.order, sum)
	}
	m.stations[sum] = mapEntry{key: key, station: st}
	for len(m.order) > m.size {
		delete(m.stations, m.order[0])
		m.order = m.order[1:]
	}
	return st, nil
}

// Len returns the number of cached stations.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stations)
}
