package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/zosswater/whatsapp-bot/internal/sessions"
)

// SessionSweepJob periodically removes idle conversation sessions
type SessionSweepJob struct {
	store    sessions.Store
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSessionSweepJob creates a sweep job that runs every interval and drops
// sessions idle for longer than ttl
func NewSessionSweepJob(store sessions.Store, interval, ttl time.Duration) *SessionSweepJob {
	return &SessionSweepJob{
		store:    store,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Start begins sweeping in the background
func (j *SessionSweepJob) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.done != nil {
		log.Println("Session sweep job already running")
		return
	}

	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})

	log.Printf("🧹 Session sweep every %v (ttl %v)", j.interval, j.ttl)
	go j.loop(ctx, j.done)
}

// Stop halts the job and waits for an in-flight sweep to finish
func (j *SessionSweepJob) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
	log.Println("Session sweep job stopped")
}

func (j *SessionSweepJob) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and returns how many sessions were removed
func (j *SessionSweepJob) RunOnce(ctx context.Context) int {
	removed, err := j.store.Sweep(ctx, j.now(), j.ttl)
	if err != nil {
		log.Printf("❌ Session sweep failed: %v", err)
		return removed
	}
	if removed > 0 {
		log.Printf("🧹 Cleaned up %d expired sessions", removed)
	}
	return removed
}
