package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_ExcludesOverlappingKeys(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	release, err := l.Acquire(ctx, []string{PartKey(2), PartKey(1)}, time.Second)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, []string{PartKey(1)}, 20*time.Millisecond)
	require.ErrorIs(t, err, ErrNotAcquired)

	// Disjoint keys are independent.
	other, err := l.Acquire(ctx, []string{PartKey(3)}, 20*time.Millisecond)
	require.NoError(t, err)
	other()

	release()
	release() // idempotent

	again, err := l.Acquire(ctx, []string{PartKey(1), PartKey(2)}, 20*time.Millisecond)
	require.NoError(t, err)
	again()
}

func TestLocal_FailedAcquireReleasesPartialKeys(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	hold, err := l.Acquire(ctx, []string{"b"}, time.Second)
	require.NoError(t, err)
	defer hold()

	_, err = l.Acquire(ctx, []string{"a", "b"}, 20*time.Millisecond)
	require.Error(t, err)

	free, err := l.Acquire(ctx, []string{"a"}, 20*time.Millisecond)
	require.NoError(t, err, "key a must not stay held after the failed call")
	free()
}

func TestLocal_SerialisesConcurrentWriters(t *testing.T) {
	l := NewLocal()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), []string{PartKey(9)}, 5*time.Second)
			if !assert.NoError(t, err) {
				return
			}
			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, counter)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, normalize([]string{"c", "a", "b", "a"}))
}
