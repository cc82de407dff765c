package sessions

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zosswater/whatsapp-bot/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func stepPtr(s models.Step) *models.Step { return &s }

// runStoreContract exercises behaviour every Store implementation must share
func runStoreContract(t *testing.T, newStore func(clock *fakeClock) Store) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		store := newStore(newFakeClock())
		s, err := store.Get(ctx, "+1000")
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("set replaces wholesale and stamps activity", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(clock)

		require.NoError(t, store.Set(ctx, "+1001", &models.Session{
			Step:             models.StepAskName,
			RegistrationData: &models.RegistrationData{ProfileName: "Jo"},
		}))
		clock.Advance(time.Minute)
		require.NoError(t, store.Set(ctx, "+1001", &models.Session{
			Step:         models.StepAskIssue,
			CustomerID:   "CUS00001",
			CustomerName: "Jo",
		}))

		s, err := store.Get(ctx, "+1001")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, models.StepAskIssue, s.Step)
		assert.Nil(t, s.RegistrationData)
		assert.True(t, s.LastActivity.Equal(clock.Now()))
	})

	t.Run("update merges shallowly", func(t *testing.T) {
		store := newStore(newFakeClock())
		require.NoError(t, store.Set(ctx, "+1002", &models.Session{
			Step:       models.StepAskModel,
			CustomerID: "CUS00001",
			TicketData: &models.TicketData{Issue: "Leak", Model: "old"},
		}))

		require.NoError(t, store.Update(ctx, "+1002", models.SessionPatch{
			Step:       stepPtr(models.StepAskAddress),
			TicketData: &models.TicketData{Model: "Z-100"},
		}))

		s, err := store.Get(ctx, "+1002")
		require.NoError(t, err)
		assert.Equal(t, models.StepAskAddress, s.Step)
		assert.Equal(t, "CUS00001", s.CustomerID)
		// nested data is replaced, not merged
		assert.Equal(t, &models.TicketData{Model: "Z-100"}, s.TicketData)
	})

	t.Run("update without session reports not found", func(t *testing.T) {
		store := newStore(newFakeClock())
		err := store.Update(ctx, "+1003", models.SessionPatch{Step: stepPtr(models.StepAskEmail)})
		assert.ErrorIs(t, err, ErrNotFound)

		s, err := store.Get(ctx, "+1003")
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		store := newStore(newFakeClock())
		require.NoError(t, store.Set(ctx, "+1004", &models.Session{Step: models.StepAskDate}))
		require.NoError(t, store.Clear(ctx, "+1004"))
		require.NoError(t, store.Clear(ctx, "+1004"))

		s, err := store.Get(ctx, "+1004")
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("sweep removes only stale sessions", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(clock)

		require.NoError(t, store.Set(ctx, "+stale", &models.Session{Step: models.StepAskName}))
		require.NoError(t, store.Set(ctx, "+touched", &models.Session{Step: models.StepAskIssue}))

		clock.Advance(50 * time.Minute)
		require.NoError(t, store.Update(ctx, "+touched", models.SessionPatch{Step: stepPtr(models.StepAskModel)}))
		clock.Advance(20 * time.Minute)

		removed, err := store.Sweep(ctx, clock.Now(), time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		stale, err := store.Get(ctx, "+stale")
		require.NoError(t, err)
		assert.Nil(t, stale)

		touched, err := store.Get(ctx, "+touched")
		require.NoError(t, err)
		require.NotNil(t, touched)
		assert.Equal(t, models.StepAskModel, touched.Step)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("sweep waits for the sender lock", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(clock)

		require.NoError(t, store.Set(ctx, "+1005", &models.Session{Step: models.StepAskIssue}))
		clock.Advance(2 * time.Hour)
		sweepAt := clock.Now()

		unlock := store.Lock("+1005")
		done := make(chan int, 1)
		go func() {
			removed, err := store.Sweep(ctx, sweepAt, time.Hour)
			assert.NoError(t, err)
			done <- removed
		}()

		select {
		case <-done:
			t.Fatal("sweep removed a session while its sender lock was held")
		case <-time.After(50 * time.Millisecond):
		}

		// The request holding the lock advances the session before letting go
		require.NoError(t, store.Update(ctx, "+1005", models.SessionPatch{Step: stepPtr(models.StepAskModel)}))
		unlock()

		select {
		case removed := <-done:
			assert.Equal(t, 0, removed)
		case <-time.After(time.Second):
			t.Fatal("sweep did not finish after the lock was released")
		}

		s, err := store.Get(ctx, "+1005")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, models.StepAskModel, s.Step)
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, func(clock *fakeClock) Store {
		return NewMemoryStore(WithClock(clock.Now))
	})
}

func TestRedisStore_Contract(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set; skipping redis session store test")
	}

	runStoreContract(t, func(clock *fakeClock) Store {
		// Native expiry is disabled here so the fake clock alone decides staleness
		store, err := NewRedisStore(context.Background(), url, WithClock(clock.Now), WithTTL(0))
		require.NoError(t, err)
		require.NoError(t, store.client.FlushDB(context.Background()).Err())
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	original := &models.Session{Step: models.StepAskModel, TicketData: &models.TicketData{Issue: "Leak"}}
	require.NoError(t, store.Set(ctx, "+1", original))
	original.TicketData.Issue = "mutated by caller"

	got, err := store.Get(ctx, "+1")
	require.NoError(t, err)
	assert.Equal(t, "Leak", got.TicketData.Issue)

	got.TicketData.Issue = "mutated by reader"
	again, err := store.Get(ctx, "+1")
	require.NoError(t, err)
	assert.Equal(t, "Leak", again.TicketData.Issue)
}

func TestMemoryStore_ConcurrentSendersAndSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "+sender" + string(rune('A'+i%26)) + string(rune('a'+i/26))
			for j := 0; j < 20; j++ {
				_ = store.Set(ctx, key, &models.Session{Step: models.StepAskIssue})
				_ = store.Update(ctx, key, models.SessionPatch{TicketData: &models.TicketData{Issue: "x"}})
				s, _ := store.Get(ctx, key)
				if s != nil {
					assert.Equal(t, models.StepAskIssue, s.Step)
				}
			}
		}(i)
	}

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				_, _ = store.Sweep(ctx, time.Now(), time.Hour)
			}
		}
	}()

	wg.Wait()
	close(stop)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}
