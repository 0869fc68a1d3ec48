package connection

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/minhpascal/IBREST/internal/tws"
)

// fakeSession is an in-memory Session fed by the test.
type fakeSession struct {
	in     chan tws.Event
	closed chan struct{}

	mu   sync.Mutex
	sent []tws.Command
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		in:     make(chan tws.Event, 64),
		closed: make(chan struct{}),
	}
}

func (s *fakeSession) ReadEvent() (tws.Event, error) {
	select {
	case ev := <-s.in:
		return ev, nil
	case <-s.closed:
		return nil, io.EOF
	}
}

func (s *fakeSession) WriteCommand(cmd tws.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, cmd)
	return nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

func (s *fakeSession) commands() []tws.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tws.Command, len(s.sent))
	copy(out, s.sent)
	return out
}

// fakeTransport hands out fakeSessions and remembers them per clientId.
type fakeTransport struct {
	mu       sync.Mutex
	sessions map[int][]*fakeSession
	dialErr  error
	dials    int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sessions: make(map[int][]*fakeSession)}
}

func (t *fakeTransport) Dial(ctx context.Context, clientID int) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dialErr != nil {
		return nil, t.dialErr
	}
	s := newFakeSession()
	t.sessions[clientID] = append(t.sessions[clientID], s)
	t.dials++
	return s, nil
}

// session returns the latest session dialed for a clientId.
func (t *fakeTransport) session(clientID int) *fakeSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	ss := t.sessions[clientID]
	if len(ss) == 0 {
		return nil
	}
	return ss[len(ss)-1]
}

func (t *fakeTransport) dialCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dials
}

func testConn(t *testing.T, tr Transport) *Conn {
	t.Helper()
	return NewConn(3, tr, DefaultConnConfig(), nil)
}

func waitDisconnected(t *testing.T, c *Conn) {
	t.Helper()
	deadline := time.After(time.Second)
	for c.IsConnected() {
		select {
		case <-deadline:
			t.Fatal("connection never flipped to disconnected")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestConn_ConnectAndClose(t *testing.T) {
	tr := newFakeTransport()
	c := testConn(t, tr)

	if c.IsConnected() {
		t.Error("IsConnected = true before Connect")
	}

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !c.IsConnected() {
		t.Error("IsConnected = false after Connect")
	}

	// Connecting again is a no-op, not a second dial.
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}
	if tr.dialCount() != 1 {
		t.Errorf("dials = %d, want 1", tr.dialCount())
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected = true after Close")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	if err := c.Connect(context.Background()); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("Connect after Close = %v, want ErrAlreadyClosed", err)
	}
}

func TestConn_SendNotConnected(t *testing.T) {
	c := testConn(t, newFakeTransport())

	err := c.Send(context.Background(), tws.ReqPositions{})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send = %v, want ErrNotConnected", err)
	}
}

func TestConn_SendWritesCommand(t *testing.T) {
	tr := newFakeTransport()
	c := testConn(t, tr)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	if err := c.Send(context.Background(), tws.ReqIDs{NumIDs: 1}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	sent := tr.session(3).commands()
	if len(sent) != 1 {
		t.Fatalf("commands sent = %d, want 1", len(sent))
	}
	if sent[0].Cmd() != "reqIds" {
		t.Errorf("command = %q, want reqIds", sent[0].Cmd())
	}
}

func TestConn_EventsDelivered(t *testing.T) {
	tr := newFakeTransport()
	c := testConn(t, tr)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	tr.session(3).in <- tws.NextValidID{OrderID: 7}

	select {
	case ev := <-c.Events():
		nv, ok := ev.(tws.NextValidID)
		if !ok {
			t.Fatalf("event type = %T, want NextValidID", ev)
		}
		if nv.OrderID != 7 {
			t.Errorf("OrderID = %d, want 7", nv.OrderID)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestConn_EventsSurviveReconnect(t *testing.T) {
	tr := newFakeTransport()
	c := testConn(t, tr)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	// Drop the first session out from under the connection.
	tr.session(3).Close()
	waitDisconnected(t, c)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	if tr.dialCount() != 2 {
		t.Fatalf("dials = %d, want 2", tr.dialCount())
	}

	// Events from the new session arrive on the same channel.
	tr.session(3).in <- tws.PositionEnd{}

	select {
	case ev := <-c.Events():
		if ev.Type() != "positionEnd" {
			t.Errorf("event = %q, want positionEnd", ev.Type())
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event after reconnect")
	}
}

func TestConn_SendAfterSessionDrop(t *testing.T) {
	tr := newFakeTransport()
	c := testConn(t, tr)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	tr.session(3).Close()
	waitDisconnected(t, c)

	err := c.Send(context.Background(), tws.ReqPositions{})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send after drop = %v, want ErrNotConnected", err)
	}
}
