package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/statekit/pkg/errors"
	"github.com/go-drift/statekit/pkg/store"
	"github.com/go-drift/statekit/pkg/storetest"
)

func newTestStore(opts ...store.Option) *store.Store {
	return store.New(map[string]store.Value{
		"username": store.StringValue("user123"),
		"email":    store.StringValue("me@example.com"),
		"volume":   store.IntValue(40),
		"muted":    store.BoolValue(false),
	}, opts...)
}

func TestStore_Get(t *testing.T) {
	s := newTestStore()

	v, ok := s.Get("username")
	require.True(t, ok)
	assert.Equal(t, "user123", v.Text())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestStore_GetIsIdempotent(t *testing.T) {
	s := newTestStore()

	first := s.Snapshot()
	for i := 0; i < 10; i++ {
		snap := s.Snapshot()
		assert.Equal(t, first.Version(), snap.Version())
		v, ok := snap.Get("volume")
		require.True(t, ok)
		assert.Equal(t, int64(40), v.Int())
	}

	require.NoError(t, s.SetTrusted("volume", store.IntValue(50)))
	assert.Equal(t, first.Version()+1, s.Snapshot().Version())

	// The old snapshot still reads the old value.
	v, _ := first.Get("volume")
	assert.Equal(t, int64(40), v.Int())
}

func TestStore_SetTrustedNotifiesOnce(t *testing.T) {
	s := newTestStore()
	obs := storetest.NewRecordingObserver(s)
	s.Subscribe(obs.Observe)

	require.NoError(t, s.SetTrusted("volume", store.IntValue(70)))

	assert.Equal(t, 1, obs.Count())
	v, ok := s.Get("volume")
	require.True(t, ok)
	assert.Equal(t, int64(70), v.Int())

	seen, ok := obs.Last()
	require.True(t, ok)
	sv, _ := seen.Get("volume")
	assert.Equal(t, int64(70), sv.Int(), "observer sees the new snapshot")
}

func TestStore_SetTrustedCanIntroduceField(t *testing.T) {
	s := newTestStore()

	require.NoError(t, s.SetTrusted("theme", store.StringValue("dark")))
	v, ok := s.Get("theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v.Text())
}

func TestStore_SubscriptionOrder(t *testing.T) {
	s := newTestStore()

	var order []string
	s.Subscribe(func() { order = append(order, "root") })
	s.Subscribe(func() { order = append(order, "child") })

	require.NoError(t, s.SetTrusted("muted", store.BoolValue(true)))
	assert.Equal(t, []string{"root", "child"}, order)
}

func TestStore_Close(t *testing.T) {
	errors.SetHandler(discardHandler{})
	defer errors.SetHandler(nil)

	s := newTestStore()
	obs := storetest.NewRecordingObserver(s)
	s.Subscribe(obs.Observe)

	s.Close()
	s.Close()

	err := s.SetTrusted("volume", store.IntValue(10))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindClosed))
	assert.ErrorIs(t, err, store.ErrClosed)

	// Reads stay valid; nothing was delivered.
	v, ok := s.Get("volume")
	require.True(t, ok)
	assert.Equal(t, int64(40), v.Int())
	assert.Zero(t, obs.Count())
	assert.Zero(t, s.Observers())
}

func TestStore_ObserverErrorsSurfacedToMutator(t *testing.T) {
	errors.SetHandler(discardHandler{})
	defer errors.SetHandler(nil)

	s := newTestStore()
	healthy := 0
	s.Subscribe(func() { panic("render failed") })
	s.Subscribe(func() { healthy++ })

	err := s.SetTrusted("volume", store.IntValue(5))
	require.Error(t, err)

	var batch *errors.ObserverErrors
	require.ErrorAs(t, err, &batch)
	assert.Equal(t, 1, batch.Len())
	assert.Equal(t, 1, healthy, "failure in one observer does not block the rest")

	// The write itself stands.
	v, _ := s.Get("volume")
	assert.Equal(t, int64(5), v.Int())
}

func TestStore_ReentrantMutationDefersToNextCycle(t *testing.T) {
	s := newTestStore()

	cycles := 0
	s.Subscribe(func() {
		cycles++
		if cycles == 1 {
			// Mutating from inside the callback must not re-enter the
			// active loop; the follow-up cycle runs after this one.
			require.NoError(t, s.SetTrusted("volume", store.IntValue(99)))
			assert.Equal(t, 1, cycles)
		}
	})

	require.NoError(t, s.SetTrusted("volume", store.IntValue(10)))
	assert.Equal(t, 2, cycles)
	v, _ := s.Get("volume")
	assert.Equal(t, int64(99), v.Int())
}

func TestStore_WithNowStampsErrors(t *testing.T) {
	errors.SetHandler(discardHandler{})
	defer errors.SetHandler(nil)

	clk := storetest.NewFakeClock()
	clk.Advance(42 * time.Minute)

	s := newTestStore(store.WithNow(clk.Now))
	s.Close()

	err := s.SetTrusted("volume", store.IntValue(1))
	require.Error(t, err)

	var se *errors.StoreError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Timestamp.Equal(clk.Now()))
}

type discardHandler struct{}

func (discardHandler) HandleError(*errors.StoreError)              {}
func (discardHandler) HandleObserverErrors(*errors.ObserverErrors) {}
