package procedure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/fsci"
)

type freeCounter struct {
	mu sync.Mutex
	n  map[*Context]int
}

func (f *freeCounter) free(c *Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n == nil {
		f.n = make(map[*Context]int)
	}
	f.n[c]++
}

func (f *freeCounter) count(c *Context) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n[c]
}

func TestOnePerKey(t *testing.T) {
	s := NewStore(nil)
	k := Key{Peer: 3, Bearer: 0}

	first := &Context{}
	if err := s.Register(k, first); err != nil {
		t.Fatalf("register: %v", err)
	}
	second := &Context{}
	if err := s.Register(k, second); errors.Cause(err) != fsci.ErrProcedurePending {
		t.Fatalf("got %v, want %v", err, fsci.ErrProcedurePending)
	}
	if got := s.Lookup(k); got != first {
		t.Fatalf("second register replaced the pending context")
	}

	// other keys are independent
	if err := s.Register(Key{Peer: 3, Bearer: 1}, second); err != nil {
		t.Fatalf("register other bearer: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("got %d pending, want 2", s.Len())
	}

	if s.Complete(k) != first {
		t.Fatalf("complete returned wrong context")
	}
	if s.Pending(k) {
		t.Fatalf("key still pending after complete")
	}
	if err := s.Register(k, &Context{}); err != nil {
		t.Fatalf("register after complete: %v", err)
	}
}

func TestFreeExactlyOnce(t *testing.T) {
	fc := &freeCounter{}
	s := NewStore(fc.free)

	owned := &Context{Owned: true}
	borrowed := &Context{Owned: false}
	ko, kb := Key{1, 0}, Key{2, 0}
	if err := s.Register(ko, owned); err != nil {
		t.Fatal(err)
	}
	if err := s.Register(kb, borrowed); err != nil {
		t.Fatal(err)
	}

	s.Fail(ko, fsci.StatusInvalidParameter)
	s.Fail(ko, fsci.StatusInvalidParameter)
	s.Complete(ko)
	s.Complete(kb)
	s.Complete(kb)

	if n := fc.count(owned); n != 1 {
		t.Fatalf("owned context freed %d times", n)
	}
	if n := fc.count(borrowed); n != 0 {
		t.Fatalf("borrowed context freed %d times", n)
	}
	if errors.Cause(owned.Err()) != fsci.StatusInvalidParameter {
		t.Fatalf("got err %v", owned.Err())
	}
	if borrowed.Err() != nil {
		t.Fatalf("completed context has err %v", borrowed.Err())
	}
}

func TestDoneSignal(t *testing.T) {
	s := NewStore(nil)
	c := &Context{}
	if err := s.Register(LocalKey, c); err != nil {
		t.Fatal(err)
	}

	go func() {
		c.Handle = 0x0010
		s.Complete(LocalKey)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if c.Handle != 0x0010 {
		t.Fatalf("got handle 0x%04X", c.Handle)
	}
}

func TestWaitCancelled(t *testing.T) {
	s := NewStore(nil)
	c := &Context{}
	k := Key{5, 5}
	if err := s.Register(k, c); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Wait(ctx); err != context.Canceled {
		t.Fatalf("got %v", err)
	}
	s.Fail(k, ctx.Err())
	if s.Pending(k) {
		t.Fatalf("key still pending")
	}
	if c.Err() != context.Canceled {
		t.Fatalf("got %v", c.Err())
	}
}

func TestFailAll(t *testing.T) {
	fc := &freeCounter{}
	s := NewStore(fc.free)
	cs := []*Context{{Owned: true}, {Owned: true}, {}}
	for i, c := range cs {
		if err := s.Register(Key{uint8(i), 0}, c); err != nil {
			t.Fatal(err)
		}
	}
	s.FailAll(fsci.ErrClosed)
	if s.Len() != 0 {
		t.Fatalf("got %d pending", s.Len())
	}
	for i, c := range cs {
		select {
		case <-c.Done():
		default:
			t.Fatalf("context %d not done", i)
		}
		if c.Err() != fsci.ErrClosed {
			t.Fatalf("context %d: got %v", i, c.Err())
		}
	}
	if fc.count(cs[0]) != 1 || fc.count(cs[1]) != 1 || fc.count(cs[2]) != 0 {
		t.Fatalf("wrong free counts")
	}
}

func TestLimit(t *testing.T) {
	c := &Context{Max: 2}
	if c.Limit(5) != 2 || c.Limit(1) != 1 {
		t.Fatalf("limit wrong")
	}
	c.Max = 0
	if c.Limit(5) != 5 {
		t.Fatalf("unbounded limit wrong")
	}
	if LocalKey.String() != "local" || (Key{3, 0}).String() != "3/0" {
		t.Fatalf("key strings wrong")
	}
}

func TestFailWhere(t *testing.T) {
	s := NewStore(nil)
	remote := &Context{}
	local := &Context{}
	if err := s.Register(Key{1, 1}, remote); err != nil {
		t.Fatal(err)
	}
	if err := s.Register(LocalKey, local); err != nil {
		t.Fatal(err)
	}

	s.FailWhere(func(k Key) bool { return k != LocalKey }, fsci.ErrProcedureFailed)
	if s.Pending(Key{1, 1}) || !s.Pending(LocalKey) {
		t.Fatalf("wrong keys failed")
	}
	if remote.Err() != fsci.ErrProcedureFailed {
		t.Fatalf("got %v", remote.Err())
	}
}

func TestFailIf(t *testing.T) {
	fc := &freeCounter{}
	s := NewStore(fc.free)
	k := Key{3, 0}

	stale := &Context{Owned: true}
	if err := s.Register(k, stale); err != nil {
		t.Fatal(err)
	}
	s.Fail(k, fsci.StatusInvalidParameter)

	// k is reused before the first caller gets to clean up
	next := &Context{Owned: true}
	if err := s.Register(k, next); err != nil {
		t.Fatal(err)
	}
	if s.FailIf(k, stale, context.Canceled) {
		t.Fatalf("ended a context that was no longer pending")
	}
	if !s.Pending(k) || s.Lookup(k) != next {
		t.Fatalf("other caller's context erased")
	}
	select {
	case <-next.Done():
		t.Fatalf("other caller's context ended")
	default:
	}

	if !s.FailIf(k, next, context.Canceled) {
		t.Fatalf("pending context not ended")
	}
	if next.Err() != context.Canceled {
		t.Fatalf("got %v", next.Err())
	}
	if fc.count(stale) != 1 || fc.count(next) != 1 {
		t.Fatalf("free counts %d %d", fc.count(stale), fc.count(next))
	}
}

func TestResolve(t *testing.T) {
	s := NewStore(nil)
	k := Key{1, 0}
	c := &Context{}
	if err := s.Register(k, c); err != nil {
		t.Fatal(err)
	}

	ok, err := s.Resolve(k, func(c *Context) error {
		c.Count = 2
		return nil
	})
	if !ok || err != nil {
		t.Fatalf("resolve: %v %v", ok, err)
	}
	if c.Count != 2 || c.Err() != nil || s.Pending(k) {
		t.Fatalf("not completed: count %d err %v", c.Count, c.Err())
	}

	ran := false
	ok, _ = s.Resolve(k, func(*Context) error {
		ran = true
		return nil
	})
	if ok || ran {
		t.Fatalf("resolved a key with nothing pending")
	}

	bad := errors.New("short payload")
	c = &Context{}
	if err := s.Register(k, c); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Resolve(k, func(*Context) error { return bad }); err != bad {
		t.Fatalf("got %v", err)
	}
	if c.Err() != bad || s.Pending(k) {
		t.Fatalf("decode error did not fail the procedure: %v", c.Err())
	}
}

// A Fail issued while a decode fills the context waits for it, so the free
// hook never runs on a buffer being written.
func TestResolveExcludesFail(t *testing.T) {
	fc := &freeCounter{}
	s := NewStore(fc.free)
	k := Key{3, 0}
	c := &Context{Owned: true}
	if err := s.Register(k, c); err != nil {
		t.Fatal(err)
	}

	failed := make(chan *Context, 1)
	ok, err := s.Resolve(k, func(c *Context) error {
		go func() { failed <- s.Fail(k, context.Canceled) }()
		select {
		case <-failed:
			t.Errorf("fail ran during the decode")
		case <-time.After(20 * time.Millisecond):
		}
		if fc.count(c) != 0 {
			t.Errorf("freed during the decode")
		}
		c.Count = 1
		return nil
	})
	if !ok || err != nil {
		t.Fatalf("resolve: %v %v", ok, err)
	}

	select {
	case got := <-failed:
		if got != nil {
			t.Fatalf("fail ended a context already resolved")
		}
	case <-time.After(time.Second):
		t.Fatalf("fail never returned")
	}
	if c.Err() != nil {
		t.Fatalf("got %v", c.Err())
	}
	if fc.count(c) != 1 {
		t.Fatalf("freed %d times", fc.count(c))
	}
}
