package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	byKey  map[string]Coordinate
	byCode map[string]Coordinate
	saves  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byKey: map[string]Coordinate{}, byCode: map[string]Coordinate{}}
}

func (m *memoryStore) Find(_ context.Context, key string) (Coordinate, bool, error) {
	c, ok := m.byKey[key]
	return c, ok, nil
}

func (m *memoryStore) FindByCode(_ context.Context, code string) (Coordinate, bool, error) {
	c, ok := m.byCode[code]
	return c, ok, nil
}

func (m *memoryStore) Save(_ context.Context, c Coordinate, keys ...string) error {
	m.saves++
	for _, k := range keys {
		m.byKey[k] = c
	}
	if c.Code != "" {
		m.byCode[c.Code] = c
	}
	return nil
}

type scriptedGeocoder struct {
	answers map[string]Coordinate
	err     error
	calls   []string
	at      []time.Time
}

func (g *scriptedGeocoder) Lookup(_ context.Context, name string) (Coordinate, error) {
	g.calls = append(g.calls, name)
	g.at = append(g.at, time.Now())
	if g.err != nil {
		return Coordinate{}, g.err
	}
	c, ok := g.answers[name]
	if !ok {
		return Coordinate{}, ErrNotFound
	}
	return c, nil
}

func TestLocateUsesCacheByCodeFirst(t *testing.T) {
	store := newMemoryStore()
	store.byCode["970008"] = Coordinate{Code: "970008", MatchedName: "Хабаровск", Point: Point{Lat: 48.5, Lon: 135.1}}
	geo := &scriptedGeocoder{}
	l := NewLocator(store, geo, 0)

	c, ok := l.Locate(context.Background(), "ХАБАРОВСК 1 (970008)")
	require.True(t, ok)
	assert.Equal(t, 48.5, c.Lat)
	assert.Empty(t, geo.calls)
}

func TestLocateGeocodesVariantsAndCaches(t *testing.T) {
	store := newMemoryStore()
	geo := &scriptedGeocoder{answers: map[string]Coordinate{
		"ХАБАРОВСК": {MatchedName: "Хабаровск-1", Point: Point{Lat: 48.5, Lon: 135.1}},
	}}
	l := NewLocator(store, geo, 0)

	c, ok := l.Locate(context.Background(), "Хабаровск 2")
	require.True(t, ok)
	assert.Equal(t, "Хабаровск-1", c.MatchedName)
	assert.Equal(t, []string{"ХАБАРОВСК 2", "ХАБАРОВСК"}, geo.calls)
	assert.Contains(t, store.byKey, "Хабаровск 2")
	assert.Contains(t, store.byKey, "ХАБАРОВСК")

	// second time served from the cache
	_, ok = l.Locate(context.Background(), "Хабаровск 2")
	require.True(t, ok)
	assert.Len(t, geo.calls, 2)
	assert.Equal(t, 1, store.saves)
}

func TestLocateCachesGivenCode(t *testing.T) {
	store := newMemoryStore()
	geo := &scriptedGeocoder{answers: map[string]Coordinate{
		"ОМСК": {MatchedName: "Омск", Point: Point{Lat: 54.9, Lon: 73.4}},
	}}
	l := NewLocator(store, geo, 0)

	c, ok := l.Locate(context.Background(), "ОМСК (831000)")
	require.True(t, ok)
	assert.Equal(t, "831000", c.Code)
	require.Contains(t, store.byCode, "831000")
	assert.Equal(t, "Омск", store.byCode["831000"].MatchedName)

	c, ok = l.Locate(context.Background(), "ОМСК-ПАССАЖИРСКИЙ (831000)")
	require.True(t, ok)
	assert.Equal(t, 54.9, c.Lat)
	assert.Equal(t, []string{"ОМСК"}, geo.calls)
}

func TestLocateVariantHitInCache(t *testing.T) {
	store := newMemoryStore()
	store.byKey["МОСКВА"] = Coordinate{MatchedName: "Москва", Point: Point{Lat: 55.7, Lon: 37.6}}
	geo := &scriptedGeocoder{}
	l := NewLocator(store, geo, 0)

	_, ok := l.Locate(context.Background(), "Москва-Сортировочная")
	require.True(t, ok)
	assert.Empty(t, geo.calls)
}

func TestLocateGeocoderFailureIsUnavailable(t *testing.T) {
	store := newMemoryStore()
	geo := &scriptedGeocoder{err: errors.New("connection refused")}
	l := NewLocator(store, geo, 0)

	_, ok := l.Locate(context.Background(), "УГЛОВАЯ")
	assert.False(t, ok)
	assert.Len(t, geo.calls, 1)
	assert.Zero(t, store.saves)
}

func TestLocateNotFoundAnywhere(t *testing.T) {
	l := NewLocator(newMemoryStore(), &scriptedGeocoder{}, 0)
	_, ok := l.Locate(context.Background(), "НЕИЗВЕСТНАЯ")
	assert.False(t, ok)

	_, ok = NewLocator(newMemoryStore(), nil, 0).Locate(context.Background(), "НЕИЗВЕСТНАЯ")
	assert.False(t, ok)

	_, ok = l.Locate(context.Background(), "  ")
	assert.False(t, ok)
}

func TestLocatePausesBetweenGeocoderCalls(t *testing.T) {
	geo := &scriptedGeocoder{}
	l := NewLocator(newMemoryStore(), geo, 60*time.Millisecond)

	start := time.Now()
	_, ok := l.Locate(context.Background(), "ЛЮБЛИНО-СОРТИРОВОЧНОЕ 2")
	assert.False(t, ok)
	require.Len(t, geo.at, 3)
	assert.Less(t, geo.at[0].Sub(start), 50*time.Millisecond)
	assert.GreaterOrEqual(t, geo.at[2].Sub(geo.at[0]), 100*time.Millisecond)
}
