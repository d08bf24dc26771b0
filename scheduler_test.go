package acceptor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RequiresCallback(t *testing.T) {
	s := NewDefaultRunScheduler(0, true, log.New())
	err := s.Start(context.Background())
	assert.Error(t, err)
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewDefaultRunScheduler(0, true, log.New())

	var calls atomic.Int32
	s.RegisterCallback(func() error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_RunOncePropagatesError(t *testing.T) {
	s := NewDefaultRunScheduler(0, true, log.New())

	wantErr := errors.New("pass failed")
	s.RegisterCallback(func() error { return wantErr })

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, wantErr)
}

func TestScheduler_Continuous(t *testing.T) {
	s := NewDefaultRunScheduler(10*time.Millisecond, false, log.New())

	var calls atomic.Int32
	s.RegisterCallback(func() error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.Stopped())

	// The first pass runs synchronously; at least one periodic pass follows
	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.True(t, s.Stopped())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.WaitForShutdown(ctx))

	// No further passes after shutdown
	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, calls.Load())
}

func TestScheduler_ContinuousFirstPassErrorAborts(t *testing.T) {
	s := NewDefaultRunScheduler(10*time.Millisecond, false, log.New())

	wantErr := errors.New("pass failed")
	s.RegisterCallback(func() error { return wantErr })

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, wantErr)
}

func TestScheduler_StopTwice(t *testing.T) {
	s := NewDefaultRunScheduler(time.Hour, false, log.New())
	s.RegisterCallback(func() error { return nil })

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestScheduler_ContextCancelStopsPeriodicPasses(t *testing.T) {
	s := NewDefaultRunScheduler(10*time.Millisecond, false, log.New())

	var calls atomic.Int32
	s.RegisterCallback(func() error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, s.WaitForShutdown(waitCtx))
	assert.True(t, s.Stopped())
}
