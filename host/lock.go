package host

import (
	"context"
	"sync"

	"github.com/rigado/fsci"
)

// lockKey scopes the command lock: one command per interface and layer may
// wait for its status.
type lockKey struct {
	iface  uint32
	group  fsci.Group
	status uint8
}

type cmdLocks struct {
	mu    sync.Mutex
	locks map[lockKey]chan struct{}
}

func newCmdLocks() *cmdLocks {
	return &cmdLocks{locks: make(map[lockKey]chan struct{})}
}

func (l *cmdLocks) get(k lockKey) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[k]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[k] = ch
	}
	return ch
}

func (l *cmdLocks) acquire(ctx context.Context, k lockKey, done <-chan struct{}) error {
	select {
	case l.get(k) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return fsci.ErrClosed
	}
}

func (l *cmdLocks) release(k lockKey) {
	<-l.get(k)
}
