package convo

import "context"

// fifoLock is the per-session serialization primitive:
// "At most one continue or finalize proceeds on a given session at a time"
// and "competing acquisitions are served in strict FIFO order of arrival".
// Go's sync.Mutex makes no fairness guarantee (an unlucky goroutine can be
// starved by newer arrivals under contention), so FIFO ordering is
// implemented explicitly with a ticket queue rather than by reaching for
// a ready-made fair-lock package.
type fifoLock struct {
	mu      chanMutex
	held    bool
	waiters []chan struct{}
}

// chanMutex is a trivial non-reentrant lock built on a buffered channel,
// used only to protect fifoLock's own bookkeeping (never held across a
// provider call).
type chanMutex chan struct{}

func newChanMutex() chanMutex {
	c := make(chanMutex, 1)
	c <- struct{}{}
	return c
}

func (c chanMutex) Lock()   { <-c }
func (c chanMutex) Unlock() { c <- struct{}{} }

func newFIFOLock() *fifoLock {
	return &fifoLock{mu: newChanMutex()}
}

// Acquire blocks until either the lock is granted (returns true) or ctx is
// done before the lock is granted (returns false). Waiters are granted
// strictly in the order Acquire was called.
func (l *fifoLock) Acquire(ctx context.Context) bool {
	l.mu.Lock()
	if !l.held {
		l.held = true
		l.mu.Unlock()
		return true
	}

	ticket := make(chan struct{})
	l.waiters = append(l.waiters, ticket)
	l.mu.Unlock()

	select {
	case <-ticket:
		// Granted: held was already left true by whoever released to us.
		return true
	case <-ctx.Done():
		l.mu.Lock()
		for i, w := range l.waiters {
			if w == ticket {
				l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
				l.mu.Unlock()
				return false
			}
		}
		// Already popped by a concurrent Release (we won the race against
		// our own cancellation): we hold the lock now but the caller no
		// longer wants it, so hand it straight to the next waiter.
		l.mu.Unlock()
		l.Release()
		return false
	}
}

// Release hands the lock to the next FIFO waiter, or marks it free if none
// are waiting.
func (l *fifoLock) Release() {
	l.mu.Lock()
	if len(l.waiters) > 0 {
		next := l.waiters[0]
		l.waiters = l.waiters[1:]
		l.mu.Unlock()
		close(next)
		return
	}
	l.held = false
	l.mu.Unlock()
}

// queueLen reports the number of goroutines currently waiting, for tests
// and diagnostics only.
func (l *fifoLock) queueLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.waiters)
}
