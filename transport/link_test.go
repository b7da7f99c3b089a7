package transport

import (
	"bytes"
	"io"
	"net"
	"sync"
	"testing"
	"time"
)

type packetSink struct {
	mu    sync.Mutex
	pkts  [][]byte
	iface []uint32
	ch    chan struct{}
}

func newPacketSink() *packetSink {
	return &packetSink{ch: make(chan struct{}, 16)}
}

func (s *packetSink) HandlePacket(b []byte, iface uint32) error {
	s.mu.Lock()
	s.pkts = append(s.pkts, b)
	s.iface = append(s.iface, iface)
	s.mu.Unlock()
	s.ch <- struct{}{}
	return nil
}

func (s *packetSink) wait(t *testing.T, n int) [][]byte {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.ch:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for packet %d", i)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pkts
}

func TestLinkReceive(t *testing.T) {
	host, dev := net.Pipe()
	defer dev.Close()

	l := NewLink(host, 2)
	l.SetErrorHandler(func(err error) { t.Errorf("link error: %v", err) })
	sink := newPacketSink()
	l.Start(sink)
	defer l.Close()

	status := []byte{0x45, 0x80, 0x02, 0x00, 0x00, 0x00}
	seg := segmented(40)

	// whole event split over two writes, then a data packet in three
	writes := [][]byte{
		append([]byte{KindEvent}, status[:3]...),
		status[3:],
		append([]byte{KindData}, seg[:10]...),
		seg[10:30],
		seg[30:],
	}
	go func() {
		for _, w := range writes {
			if _, err := dev.Write(w); err != nil {
				return
			}
		}
	}()

	pkts := sink.wait(t, 2)
	if !bytes.Equal(pkts[0], status) {
		t.Fatalf("got % X, want % X", pkts[0], status)
	}
	if !bytes.Equal(pkts[1], seg) {
		t.Fatalf("reassembled packet differs")
	}
	if sink.iface[0] != 2 {
		t.Fatalf("got iface %d", sink.iface[0])
	}
}

func TestLinkResync(t *testing.T) {
	host, dev := net.Pipe()
	defer dev.Close()

	l := NewLink(host, 0)
	sink := newPacketSink()
	l.Start(sink)
	defer l.Close()

	status := []byte{0x46, 0x80, 0x02, 0x00, 0x01, 0x06}
	go dev.Write(append([]byte{0xAA, 0x00, KindEvent}, status...))

	pkts := sink.wait(t, 1)
	if !bytes.Equal(pkts[0], status) {
		t.Fatalf("got % X, want % X", pkts[0], status)
	}
}

func TestLinkSend(t *testing.T) {
	host, dev := net.Pipe()
	defer dev.Close()

	l := NewLink(host, 1)
	l.Start(newPacketSink())
	defer l.Close()

	cmd := []byte{0x45, 0x09, 0x03, 0x00, 0x03, 0x00, 0x05}
	got := make(chan []byte, 1)
	go func() {
		b := make([]byte, 1+len(cmd))
		if _, err := io.ReadFull(dev, b); err != nil {
			close(got)
			return
		}
		got <- b
	}()

	if err := l.Send(cmd, 1); err != nil {
		t.Fatal(err)
	}
	b := <-got
	if b == nil || b[0] != KindCommand || !bytes.Equal(b[1:], cmd) {
		t.Fatalf("got % X", b)
	}

	if err := l.Send(cmd, 7); err == nil {
		t.Fatalf("send on a foreign interface succeeded")
	}
}

func TestLinkClose(t *testing.T) {
	host, dev := net.Pipe()
	defer dev.Close()

	l := NewLink(host, 0)
	l.Start(newPacketSink())

	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	select {
	case <-l.Done():
	default:
		t.Fatalf("done not closed")
	}
	if err := l.Send([]byte{0x45, 0x01, 0x00, 0x00}, 0); err == nil {
		t.Fatalf("send after close succeeded")
	}
}

func TestLinkRemoteClose(t *testing.T) {
	host, dev := net.Pipe()

	l := NewLink(host, 0)
	errs := make(chan error, 1)
	l.SetErrorHandler(func(err error) { errs <- err })
	l.Start(newPacketSink())

	dev.Close()
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatalf("link not closed after remote close")
	}
	if l.Err() != io.EOF {
		t.Fatalf("got %v, want EOF", l.Err())
	}
	if err := <-errs; err != io.EOF {
		t.Fatalf("got %v", err)
	}
}
