package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/statekit/pkg/errors"
	"github.com/go-drift/statekit/pkg/store"
	"github.com/go-drift/statekit/pkg/validate"
)

func TestInMemoryRecorder_WiredIntoStore(t *testing.T) {
	errors.SetHandler(discardHandler{})
	defer errors.SetHandler(nil)

	rec := NewInMemoryRecorder()
	rules := validate.NewSet(
		validate.Field{Name: "username", Rules: []validate.Rule{validate.NonEmpty()}},
	)
	s := store.New(map[string]store.Value{
		"username": store.StringValue("user123"),
		"volume":   store.IntValue(40),
	}, store.WithValidator(rules), store.WithRecorder(rec))

	require.NoError(t, s.SetTrusted("volume", store.IntValue(70)))

	_, err := s.Commit(context.Background(), map[string]store.Value{
		"username": store.StringValue("alice"),
	})
	require.NoError(t, err)

	_, err = s.Commit(context.Background(), map[string]store.Value{
		"username": store.StringValue(""),
	})
	require.Error(t, err)

	assert.Equal(t, int64(1), rec.Commits())
	assert.Equal(t, int64(1), rec.Rejections())
	assert.Equal(t, int64(1), rec.TrustedWrites())
	assert.Equal(t, int64(2), rec.NotifyCycles(), "one per trusted write, one per commit")
	assert.Zero(t, rec.ObserverFailures())
}

func TestInMemoryRecorder_CountsObserverFailures(t *testing.T) {
	errors.SetHandler(discardHandler{})
	defer errors.SetHandler(nil)

	rec := NewInMemoryRecorder()
	s := store.New(map[string]store.Value{
		"volume": store.IntValue(40),
	}, store.WithRecorder(rec))
	s.Subscribe(func() { panic("boom") })

	err := s.SetTrusted("volume", store.IntValue(50))
	require.Error(t, err)
	assert.Equal(t, int64(1), rec.ObserverFailures())
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	rec.RecordCommit(store.OutcomeCommitted, 3*time.Millisecond)
	rec.RecordCommit(store.OutcomeBusy, time.Millisecond)
	rec.RecordTrustedWrite("volume")
	rec.RecordNotify(time.Millisecond, 2)

	assert.Equal(t, float64(1), testutil.ToFloat64(rec.commits.WithLabelValues(store.OutcomeCommitted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.commits.WithLabelValues(store.OutcomeBusy)))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.trustedWrites.WithLabelValues("volume")))
	assert.Equal(t, float64(2), testutil.ToFloat64(rec.observerFails))

	// Second registration of the same collectors must fail.
	_, err = NewPrometheusRecorder(reg)
	require.Error(t, err)
}

type discardHandler struct{}

func (discardHandler) HandleError(*errors.StoreError)              {}
func (discardHandler) HandleObserverErrors(*errors.ObserverErrors) {}
