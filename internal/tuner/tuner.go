// Package tuner emulates the host's tuners. Each tuner owns a lock that is held
// for the lifetime of one stream session; the transcoder polls it between reads.
package tuner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/attaebra/tuner-ffmpeg/internal/interfaces"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
)

// Tuner is one emulated tuner. owner holds the generation of the session that
// has the lock, or 0 when the tuner is free.
type Tuner struct {
	number int
	owner  atomic.Uint64
	bytes  atomic.Int64

	mu      sync.Mutex
	gen     uint64
	session string
	url     string
	since   time.Time
}

// Number returns the tuner's index.
func (t *Tuner) Number() int {
	return t.number
}

// IsHeld reports whether any session owns the tuner.
func (t *Tuner) IsHeld() bool {
	return t.owner.Load() != 0
}

// Release frees the tuner whichever session holds it. Streams polling the
// session's lease stop at their next chunk.
func (t *Tuner) Release() {
	t.release(0)
}

// release clears the lock. A non-zero gen only clears a lock that generation
// still owns.
func (t *Tuner) release(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	owner := t.owner.Load()
	if owner == 0 || (gen != 0 && owner != gen) {
		return false
	}
	logger.Debug("Released tuner %d (session %s)", t.number, t.session)
	t.owner.Store(0)
	t.session, t.url = "", ""
	return true
}

func (t *Tuner) tryAcquire(session, url string) *Lease {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.owner.Load() != 0 {
		return nil
	}
	t.gen++
	t.owner.Store(t.gen)
	t.session, t.url, t.since = session, url, time.Now()
	t.bytes.Store(0)
	return &Lease{tuner: t, gen: t.gen, session: session}
}

// Lease is one session's hold on a tuner. It stops reporting the lock as held
// once the tuner is released, even if another session acquires it afterwards.
type Lease struct {
	tuner   *Tuner
	gen     uint64
	session string
}

var _ interfaces.LockSource = (*Lease)(nil)

// Number returns the leased tuner's index.
func (l *Lease) Number() int {
	return l.tuner.number
}

// Session returns the id of the session holding the lease.
func (l *Lease) Session() string {
	return l.session
}

// IsHeld reports whether this session still owns the tuner.
func (l *Lease) IsHeld() bool {
	return l.tuner.owner.Load() == l.gen
}

// AddBytes records n bytes delivered to the session's client. It is ignored
// once the lease is no longer held.
func (l *Lease) AddBytes(n int) {
	if l.IsHeld() {
		l.tuner.bytes.Add(int64(n))
	}
}

// Release frees the tuner if this session still owns it. It never touches a
// lock taken by a later session.
func (l *Lease) Release() {
	l.tuner.release(l.gen)
}

// Status is a point-in-time view of a tuner.
type Status struct {
	Number  int
	Held    bool
	Session string
	URL     string
	Since   time.Time
	Bytes   int64
}

// Status returns the tuner's current state.
func (t *Tuner) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Status{Number: t.number, Held: t.IsHeld()}
	if s.Held {
		s.Session, s.URL, s.Since = t.session, t.url, t.since
		s.Bytes = t.bytes.Load()
	}
	return s
}

// Pool is a fixed set of tuners.
type Pool struct {
	tuners []*Tuner
}

// NewPool creates count tuners numbered from 0.
func NewPool(count int) *Pool {
	p := &Pool{tuners: make([]*Tuner, count)}
	for i := range p.tuners {
		p.tuners[i] = &Tuner{number: i}
	}
	return p
}

// Acquire locks the first free tuner for session and returns the session's lease.
func (p *Pool) Acquire(session, url string) (*Lease, error) {
	for _, t := range p.tuners {
		if lease := t.tryAcquire(session, url); lease != nil {
			logger.Debug("Acquired tuner %d for session %s", t.number, session)
			return lease, nil
		}
	}
	return nil, ErrNoTunerAvailable
}

// Get returns tuner number n, or nil.
func (p *Pool) Get(n int) *Tuner {
	if n < 0 || n >= len(p.tuners) {
		return nil
	}
	return p.tuners[n]
}

// Statuses returns the state of every tuner in order.
func (p *Pool) Statuses() []Status {
	out := make([]Status, len(p.tuners))
	for i, t := range p.tuners {
		out[i] = t.Status()
	}
	return out
}

// ReleaseAll frees every tuner.
func (p *Pool) ReleaseAll() {
	for _, t := range p.tuners {
		t.Release()
	}
}
