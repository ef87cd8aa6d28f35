package session_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/geo"
	"github.com/UnknownOlympus/wayfarer/internal/metrics"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/UnknownOlympus/wayfarer/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(ttl time.Duration) (*session.Store, *metrics.Metrics) {
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	return session.NewStore(slog.Default(), appMetrics, ttl), appMetrics
}

func TestSession_SetLocation(t *testing.T) {
	store, _ := newStore(time.Minute)
	sess := store.New()

	assert.Nil(t, sess.Location())

	t.Run("invalid coordinates", func(t *testing.T) {
		err := sess.SetLocation(models.Coordinates{Latitude: 120, Longitude: 0})
		require.ErrorIs(t, err, geo.ErrInvalidCoordinates)
		assert.Nil(t, sess.Location())
	})

	t.Run("set once", func(t *testing.T) {
		require.NoError(t, sess.SetLocation(models.Coordinates{Latitude: 17.4, Longitude: 78.5}))

		err := sess.SetLocation(models.Coordinates{Latitude: 10, Longitude: 10})
		require.ErrorIs(t, err, session.ErrLocationAlreadySet)
		assert.Equal(t, &models.Coordinates{Latitude: 17.4, Longitude: 78.5}, sess.Location())
	})

	t.Run("location is a copy", func(t *testing.T) {
		loc := sess.Location()
		loc.Latitude = 0
		assert.InDelta(t, 17.4, sess.Location().Latitude, 1e-9)
	})
}

func TestSession_Annotations(t *testing.T) {
	store, _ := newStore(time.Minute)
	sess := store.New()
	coords := &models.Coordinates{Latitude: 17, Longitude: 78}

	sess.Annotate(
		models.Place{Name: "A", Coordinates: coords, Distance: &models.DistanceAnnotation{Kilometers: 3.2, Precision: models.PrecisionApproximate}},
		models.Place{Name: "C"},
	)
	sess.Annotate(
		models.Place{Name: "A", Coordinates: coords, Distance: &models.DistanceAnnotation{Kilometers: 4.1, Precision: models.PrecisionRefined}},
	)

	annotations := sess.Annotations()
	require.Len(t, annotations, 1)
	assert.Equal(t, models.DistanceAnnotation{Kilometers: 4.1, Precision: models.PrecisionRefined}, annotations["A"])

	input := []models.Place{{Name: "A", Coordinates: coords}, {Name: "B", Coordinates: coords}}
	applied := sess.Apply(input)

	require.NotNil(t, applied[0].Distance)
	assert.InDelta(t, 4.1, applied[0].Distance.Kilometers, 1e-9)
	assert.Nil(t, applied[1].Distance)
	assert.Nil(t, input[0].Distance)
}

func TestSession_RefineGuard(t *testing.T) {
	store, _ := newStore(time.Minute)
	sess := store.New()

	require.NoError(t, sess.BeginRefine("A"))
	require.ErrorIs(t, sess.BeginRefine("A"), session.ErrRefineInFlight)
	require.NoError(t, sess.BeginRefine("B"))

	sess.EndRefine("A")
	require.NoError(t, sess.BeginRefine("A"))
}

func TestSession_RefineGuardConcurrent(t *testing.T) {
	store, _ := newStore(time.Minute)
	sess := store.New()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		acquired int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sess.BeginRefine("A") == nil {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, acquired)
}

func TestStore_NewGet(t *testing.T) {
	store, appMetrics := newStore(time.Minute)

	first := store.New()
	second := store.New()

	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, 2, store.Len())
	assert.InDelta(t, 2.0, testutil.ToFloat64(appMetrics.SessionsActive), 1e-9)

	got, err := store.Get(first.ID())
	require.NoError(t, err)
	assert.Same(t, first, got)

	_, err = store.Get("unknown")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestStore_Sweep(t *testing.T) {
	store, appMetrics := newStore(time.Minute)
	sess := store.New()

	assert.Zero(t, store.Sweep(time.Now()))
	assert.Equal(t, 1, store.Sweep(time.Now().Add(2*time.Minute)))

	_, err := store.Get(sess.ID())
	require.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.Zero(t, testutil.ToFloat64(appMetrics.SessionsActive))
}

func TestStore_Run(t *testing.T) {
	store, _ := newStore(time.Nanosecond)
	store.New()

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestNewStore_DefaultTTL(t *testing.T) {
	store, _ := newStore(0)
	sess := store.New()

	assert.Zero(t, store.Sweep(time.Now().Add(session.DefaultTTL-time.Second)))
	_, err := store.Get(sess.ID())
	require.NoError(t, err)
}
