package keymutex

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	t.Parallel()

	km := New()
	key := uuid.New()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock(key)
			defer km.Unlock(key)
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyedMutex_IndependentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	km := New()
	a, b := uuid.New(), uuid.New()

	km.Lock(a)
	done := make(chan struct{})
	go func() {
		km.Lock(b)
		km.Unlock(b)
		close(done)
	}()
	<-done
	km.Unlock(a)
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	t.Parallel()

	km := New()
	key := uuid.New()

	km.Lock(key)
	km.Unlock(key)

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.entries, "entry should be removed after last unlock")
}

func TestKeyedMutex_UnlockWithoutLockPanics(t *testing.T) {
	t.Parallel()

	km := New()
	assert.Panics(t, func() { km.Unlock(uuid.New()) })
}
