package deal

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_NewRequestCancelsPrevious(t *testing.T) {
	tr := NewTracker()

	first := tr.Begin(context.Background(), "lead:1")
	second := tr.Begin(context.Background(), "lead:1")

	assert.ErrorIs(t, first.Context().Err(), context.Canceled)
	assert.False(t, first.Current())
	assert.True(t, second.Current())

	assert.ErrorIs(t, first.Finish(nil), ErrSuperseded)
	assert.NoError(t, second.Finish(nil))
}

func TestTracker_KeysAreIndependent(t *testing.T) {
	tr := NewTracker()

	a := tr.Begin(context.Background(), "lead:1")
	b := tr.Begin(context.Background(), "lead:2")

	assert.NoError(t, a.Context().Err())
	assert.NoError(t, a.Finish(nil))
	assert.NoError(t, b.Finish(nil))
}

func TestTracker_FinishPassesThroughError(t *testing.T) {
	tr := NewTracker()
	boom := errors.New("boom")

	h := tr.Begin(context.Background(), "unit:7")
	assert.ErrorIs(t, h.Finish(boom), boom)
	assert.ErrorIs(t, h.Context().Err(), context.Canceled, "finished handles release their context")
}

func TestFetch_StaleResponseIsDiscarded(t *testing.T) {
	tr := NewTracker()
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	var staleErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, staleErr = Fetch(context.Background(), tr, "lead:1", func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	fresh, err := Fetch(context.Background(), tr, "lead:1", func(ctx context.Context) (string, error) {
		return "fresh", nil
	})
	close(release)
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, "fresh", fresh)
	assert.ErrorIs(t, staleErr, ErrSuperseded)
}
