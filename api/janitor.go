/*
janitor.go - Idle session eviction

PURPOSE:
  Sessions live in memory. The janitor runs on a cron schedule and drops
  sessions nobody has touched within the idle timeout. Archived sessions keep
  their rows; only the in-memory engine goes away.

CONFIGURATION:
  - IdleTimeout: Eviction age (default: 2h)
  - Spec: Standard cron spec or descriptor (default: "@every 10m")

USAGE:
  janitor, err := NewJanitor(sessions, 2*time.Hour, "@every 10m")
  janitor.Start()
  // ... later
  janitor.Stop()

SEE ALSO:
  - sessions.go: SessionStore.EvictIdle
  - config/config.go: Sessions section
*/
package api

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor evicts idle sessions on a schedule.
type Janitor struct {
	Sessions    *SessionStore
	IdleTimeout time.Duration

	cron    *cron.Cron
	now     func() time.Time
	mu      sync.Mutex
	running bool
}

// NewJanitor creates a janitor; spec must parse as a standard cron spec.
func NewJanitor(sessions *SessionStore, idle time.Duration, spec string) (*Janitor, error) {
	j := &Janitor{
		Sessions:    sessions,
		IdleTimeout: idle,
		cron:        cron.New(),
		now:         time.Now,
	}
	if _, err := j.cron.AddFunc(spec, func() { j.Sweep() }); err != nil {
		return nil, fmt.Errorf("register sweep %q: %w", spec, err)
	}
	return j, nil
}

// Start begins the schedule.
func (j *Janitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return
	}
	j.cron.Start()
	j.running = true
	log.Printf("[Janitor] Started, idle timeout %v", j.IdleTimeout)
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}
	<-j.cron.Stop().Done()
	j.running = false
	log.Println("[Janitor] Stopped")
}

// Sweep evicts sessions idle for longer than IdleTimeout and returns the count.
func (j *Janitor) Sweep() int {
	n := j.Sessions.EvictIdle(j.now().Add(-j.IdleTimeout))
	if n > 0 {
		log.Printf("[Janitor] Evicted %d idle sessions, %d remain", n, j.Sessions.Len())
	}
	return n
}
