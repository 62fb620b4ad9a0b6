package service

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/cartier55/coachbox-backend/internal/model"
)

// PresenceStore is the slice of the user repository the tracker mutates.
// All writes are single-statement conditional updates so concurrent
// requests never read-modify-write presence state.
type PresenceStore interface {
	Touch(ctx context.Context, id uint64) error
	MarkWelcomed(ctx context.Context, id uint64) error
	MarkActive(ctx context.Context, id uint64) error
	FindStale(ctx context.Context, cutoff time.Time) ([]uint64, error)
	MarkInactive(ctx context.Context, ids []uint64) (int64, error)
}

// Broadcaster fans presence changes out to connected observers. Delivery
// is best-effort; implementations never return an error to the tracker.
type Broadcaster interface {
	Broadcast(v any)
}

// PresenceTracker keeps the per-user active flag and last-seen timestamp
// current and periodically sweeps stale users back to inactive.
type PresenceTracker struct {
	store      PresenceStore
	hub        Broadcaster
	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time
}

func NewPresenceTracker(store PresenceStore, hub Broadcaster, interval, staleAfter time.Duration) *PresenceTracker {
	return &PresenceTracker{
		store:      store,
		hub:        hub,
		interval:   interval,
		staleAfter: staleAfter,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Touch records an authenticated request. High-frequency path: silent, no
// broadcast.
func (p *PresenceTracker) Touch(ctx context.Context, userID uint64) error {
	return p.store.Touch(ctx, userID)
}

// MarkSignedIn runs as part of a successful signin. A user who has never
// been welcomed, or who is currently inactive, is flipped to
// welcomed+active and a single status broadcast goes out. Users already
// welcomed and active produce no broadcast.
func (p *PresenceTracker) MarkSignedIn(ctx context.Context, u model.User) error {
	if u.Welcomed && u.IsActive {
		return nil
	}
	if !u.Welcomed {
		if err := p.store.MarkWelcomed(ctx, u.ID); err != nil {
			return err
		}
	} else {
		if err := p.store.MarkActive(ctx, u.ID); err != nil {
			return err
		}
	}
	log.Printf("presence: user %s signed in, broadcasting status update", u.Email)
	p.hub.Broadcast(model.NewWelcomeUpdate(formatUserID(u.ID)))
	return nil
}

// Sweep computes the set of users whose last request predates the
// staleness threshold, bulk-flips them to inactive, then broadcasts one
// status update per user. Broadcast failures never affect the database
// update — the store write happens first and the hub swallows per-observer
// errors. Returns the ids that were broadcast.
func (p *PresenceTracker) Sweep(ctx context.Context) ([]uint64, error) {
	cutoff := p.now().Add(-p.staleAfter)
	ids, err := p.store.FindStale(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	n, err := p.store.MarkInactive(ctx, ids)
	if err != nil {
		return nil, err
	}
	log.Printf("presence: marked %d users inactive", n)
	if n == 0 {
		return nil, nil
	}
	for _, id := range ids {
		p.hub.Broadcast(model.NewStatusUpdate(formatUserID(id), false))
	}
	return ids, nil
}

// Run owns the periodic sweep: first run immediately, then every interval
// until ctx is cancelled. Sweep errors are logged and the loop keeps
// going; nothing here is fatal to the process.
func (p *PresenceTracker) Run(ctx context.Context) {
	log.Printf("presence: sweeper started (interval=%s, stale-after=%s)", p.interval, p.staleAfter)
	if _, err := p.Sweep(ctx); err != nil {
		log.Printf("presence: sweep failed: %v", err)
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("presence: sweeper stopped")
			return
		case <-ticker.C:
			if _, err := p.Sweep(ctx); err != nil {
				log.Printf("presence: sweep failed: %v", err)
			}
		}
	}
}

func formatUserID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
