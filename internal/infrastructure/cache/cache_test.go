package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryStore_GetSet(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	value := []byte("hello")
	require.NoError(t, s.Set(ctx, "k", value, time.Minute))
	value[0] = 'j'

	got, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	_, found, _ = s.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), time.Hour))

	now = now.Add(2 * time.Minute)
	_, found, _ := s.Get(ctx, "a")
	assert.False(t, found)

	s.evictExpired()
	assert.Len(t, s.entries, 1)

	require.NoError(t, s.Set(ctx, "b", []byte("x"), 0))
	assert.Empty(t, s.entries)
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoader_CachesValue(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	l := NewLoader[payload](s, "test:", time.Minute, zap.NewNop())
	ctx := context.Background()

	var calls int
	load := func(context.Context) (payload, error) {
		calls++
		return payload{Name: "ataskaita", Count: calls}, nil
	}

	first, err := l.Get(ctx, "k", load)
	require.NoError(t, err)
	second, err := l.Get(ctx, "k", load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	_, found, _ := s.Get(ctx, "test:k")
	assert.True(t, found)

	require.NoError(t, s.Delete(ctx, "test:k"))
	third, err := l.Get(ctx, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Count)
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	l := NewLoader[payload](s, "", time.Minute, nil)
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := l.Get(ctx, "k", func(context.Context) (payload, error) { return payload{}, boom })
	assert.ErrorIs(t, err, boom)
	_, found, _ := s.Get(ctx, "k")
	assert.False(t, found)

	v, err := l.Get(ctx, "k", func(context.Context) (payload, error) { return payload{Name: "ok"}, nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v.Name)
}

func TestLoader_DisabledStillLoads(t *testing.T) {
	l := NewLoader[int](nil, "", time.Minute, nil)
	var calls int
	for i := 0; i < 3; i++ {
		v, err := l.Get(context.Background(), "k", func(context.Context) (int, error) {
			calls++
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 3, calls)
}

func TestLoader_CoalescesConcurrentLoads(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	l := NewLoader[int](s, "", time.Minute, nil)

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	const callers = 8
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	results := make([]int, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			v, err := l.Get(context.Background(), "same", load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	started.Wait()
	// let the callers reach the flight before releasing it
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 7, v)
	}
}

func TestLoader_CanceledCallerDoesNotFailOthers(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	l := NewLoader[int](s, "", time.Minute, nil)

	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context) (int, error) {
		calls.Add(1)
		close(entered)
		select {
		case <-release:
			return 7, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Get(firstCtx, "report", load)
		firstErr <- err
	}()
	<-entered

	type result struct {
		v   int
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := l.Get(context.Background(), "report", load)
		second <- result{v, err}
	}()
	// let the second caller join the flight
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("canceled caller kept waiting")
	}

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, 7, got.v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoader_SharedLoadIsBounded(t *testing.T) {
	l := NewLoader[int](nil, "", time.Minute, nil)
	l.loadTimeout = 20 * time.Millisecond

	_, err := l.Get(context.Background(), "slow", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoader_UndecodableEntryIsDropped(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("{not json"), time.Minute))

	l := NewLoader[payload](s, "", time.Minute, nil)
	v, err := l.Get(ctx, "k", func(context.Context) (payload, error) { return payload{Name: "fresh"}, nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v.Name)
}

func TestNewStore_FallsBackToMemory(t *testing.T) {
	s := NewStore(nil, "x:", zap.NewNop())
	defer s.Close()
	_, ok := s.(*MemoryStore)
	assert.True(t, ok)
}
