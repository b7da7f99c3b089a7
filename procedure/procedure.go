// Package procedure tracks the output locations of GATT procedures that are
// accepted synchronously and complete with a later event.
package procedure

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/fsci"
	"github.com/rigado/fsci/gatt"
)

// Key correlates a completion event with the procedure that caused it. The
// protocol has no request id; the (peer, bearer) pair is the correlation.
type Key struct {
	Peer   uint8
	Bearer uint8
}

// LocalKey is used by procedures against the local database, which have no
// peer.
var LocalKey = Key{Peer: 0xFF, Bearer: 0xFF}

func (k Key) String() string {
	if k == LocalKey {
		return "local"
	}
	return fmt.Sprintf("%d/%d", k.Peer, k.Bearer)
}

// Context holds the output of one procedure. Event decoders write into it;
// the caller reads it once Done is closed.
type Context struct {
	Services        []gatt.Service
	Characteristics []gatt.Characteristic
	Descriptors     []gatt.Descriptor
	Value           []byte
	Count           int

	// Handle and MTU receive scalar results.
	Handle uint16
	MTU    uint16

	// Max bounds the number of elements decoders store into the slices.
	// Zero means no bound.
	Max int

	// Owned marks Value as allocated on behalf of the caller; the store's
	// free hook releases it when the procedure ends.
	Owned bool

	key  Key
	done chan struct{}
	err  error
}

// Key returns the key the context was registered under.
func (c *Context) Key() Key {
	return c.key
}

// Done is closed when the procedure completes or fails.
func (c *Context) Done() <-chan struct{} {
	return c.done
}

// Err returns the failure reason once Done is closed.
func (c *Context) Err() error {
	return c.err
}

// Limit returns n clamped to Max.
func (c *Context) Limit(n int) int {
	if c.Max > 0 && n > c.Max {
		return c.Max
	}
	return n
}

// Wait blocks until the procedure ends or ctx is done.
func (c *Context) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Store is the set of pending procedures, at most one per key.
type Store struct {
	mu      sync.Mutex
	pending map[Key]*Context
	free    func(*Context)
}

// NewStore returns an empty store. free is called exactly once for every
// owned context that leaves the store; it may be nil.
func NewStore(free func(*Context)) *Store {
	return &Store{
		pending: make(map[Key]*Context),
		free:    free,
	}
}

// Register records c as the pending procedure of k.
func (s *Store) Register(k Key, c *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[k]; ok {
		return errors.Wrapf(fsci.ErrProcedurePending, "key %s", k)
	}
	c.key = k
	c.done = make(chan struct{})
	c.err = nil
	s.pending[k] = c
	return nil
}

// Lookup returns the pending context of k, or nil. The entry stays in place
// and may end at any moment; decoders write through Resolve instead.
func (s *Store) Lookup(k Key) *Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[k]
}

// Resolve runs fill on the pending context of k with the store locked, then
// ends the procedure: completed when fill returns nil, failed with its error
// otherwise. A concurrent Fail either ends the procedure before fill runs,
// in which case fill is skipped, or finds nothing left to end. Resolve
// reports whether k was pending and returns fill's error.
func (s *Store) Resolve(k Key, fill func(*Context) error) (bool, error) {
	s.mu.Lock()
	c, ok := s.pending[k]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	var err error
	if fill != nil {
		err = fill(c)
	}
	delete(s.pending, k)
	s.mu.Unlock()

	s.end(c, err)
	return true, err
}

// Complete ends the procedure of k. It returns the context, or nil if none
// was pending.
func (s *Store) Complete(k Key) *Context {
	c := s.remove(k, nil)
	if c != nil {
		s.end(c, nil)
	}
	return c
}

// Fail ends the procedure of k with err.
func (s *Store) Fail(k Key, err error) *Context {
	c := s.remove(k, nil)
	if c != nil {
		s.end(c, failure(err))
	}
	return c
}

// FailIf ends the procedure of k with err only while c is the context
// pending on k. It reports whether it ended c.
func (s *Store) FailIf(k Key, c *Context, err error) bool {
	if s.remove(k, c) == nil {
		return false
	}
	s.end(c, failure(err))
	return true
}

func failure(err error) error {
	if err == nil {
		return fsci.ErrProcedureFailed
	}
	return err
}

// remove deletes the entry of k, if it is c or c is nil.
func (s *Store) remove(k Key, c *Context) *Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[k]
	if !ok || (c != nil && p != c) {
		return nil
	}
	delete(s.pending, k)
	return p
}

// end runs once per context, after its entry left the store.
func (s *Store) end(c *Context, err error) {
	if c.Owned && s.free != nil {
		s.free(c)
	}
	c.err = err
	close(c.done)
}

// FailAll ends every pending procedure with err.
func (s *Store) FailAll(err error) {
	s.FailWhere(func(Key) bool { return true }, err)
}

// FailWhere ends, with err, every pending procedure whose key matches.
// Procedures registered while it runs are left alone.
func (s *Store) FailWhere(match func(Key) bool, err error) {
	s.mu.Lock()
	matched := make(map[Key]*Context)
	for k, c := range s.pending {
		if match(k) {
			matched[k] = c
		}
	}
	s.mu.Unlock()

	for k, c := range matched {
		s.FailIf(k, c, err)
	}
}

// Pending reports whether k has an outstanding procedure.
func (s *Store) Pending(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[k]
	return ok
}

// Len returns the number of outstanding procedures.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
