package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "hubspot_state:org-1:user-1", Key("hubspot", "state", "org-1", "user-1"))
	assert.Equal(t, "hubspot_credentials:o:u", Key("hubspot", "credentials", "o", "u"))
}

func TestValidateKeyParts(t *testing.T) {
	assert.NoError(t, ValidateKeyParts("org-1", "user@example.com"))
	for _, id := range []string{"", "acme:eng", ":", "eng:alice"} {
		assert.ErrorIs(t, ValidateKeyParts("ok", id), ErrInvalidKeyPart, id)
	}
}

// storeFactory returns a fresh store and a function that advances its clock.
type storeFactory func(t *testing.T) (Store, func(time.Duration))

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) (Store, func(time.Duration)) {
			now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			var mu sync.Mutex
			s := NewMemoryStore().WithClock(func() time.Time {
				mu.Lock()
				defer mu.Unlock()
				return now
			})
			return s, func(d time.Duration) {
				mu.Lock()
				now = now.Add(d)
				mu.Unlock()
			}
		},
		"redis": func(t *testing.T) (Store, func(time.Duration)) {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return NewRedisStore(client), mr.FastForward
		},
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s, _ := factory(t)

			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", got)

			require.NoError(t, s.Delete(ctx, "k", "never-set"))
			_, err = s.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_Expiry(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s, advance := factory(t)

			require.NoError(t, s.Set(ctx, "k", "v", 600*time.Second))
			advance(599 * time.Second)
			_, err := s.Get(ctx, "k")
			require.NoError(t, err)

			advance(2 * time.Second)
			_, err = s.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Take(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_TakeIsSingleUse(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s, _ := factory(t)

			require.NoError(t, s.Set(ctx, "k", "v", time.Minute))

			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if v, err := s.Take(ctx, "k"); err == nil {
						assert.Equal(t, "v", v)
						wins.Add(1)
					} else {
						assert.ErrorIs(t, err, ErrNotFound)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), wins.Load())
		})
	}
}

func TestStore_RejectsNonPositiveTTL(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			s, _ := factory(t)
			assert.Error(t, s.Set(context.Background(), "k", "v", 0))
		})
	}
}

func TestMemoryStore_Len(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, s.Set(ctx, "b", "2", time.Minute))
	assert.Equal(t, 2, s.Len())
	_, err := s.Take(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestStore_DeleteIfEqual(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s, _ := factory(t)

			deleted, err := s.DeleteIfEqual(ctx, "missing", "v")
			require.NoError(t, err)
			assert.False(t, deleted)

			require.NoError(t, s.Set(ctx, "k", "newer", time.Minute))
			deleted, err = s.DeleteIfEqual(ctx, "k", "older")
			require.NoError(t, err)
			assert.False(t, deleted)
			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "newer", got)

			deleted, err = s.DeleteIfEqual(ctx, "k", "newer")
			require.NoError(t, err)
			assert.True(t, deleted)
			_, err = s.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
