package gateway

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/minhpascal/IBREST/internal/connection"
	"github.com/minhpascal/IBREST/internal/tws"
)

// respondFunc scripts the fake upstream: it runs once per written command
// and emits whatever events the scenario calls for. Events land on the
// session of the client that wrote the command.
type respondFunc func(clientID int, cmd tws.Command, emit func(tws.Event))

type sentCommand struct {
	ClientID int
	Cmd      tws.Command
}

type fakeUpstream struct {
	respond respondFunc

	mu       sync.Mutex
	sessions map[int]*fakeSession
	dialErr  error
	sent     []sentCommand
}

func newFakeUpstream(respond respondFunc) *fakeUpstream {
	return &fakeUpstream{respond: respond, sessions: make(map[int]*fakeSession)}
}

func (u *fakeUpstream) Dial(ctx context.Context, clientID int) (connection.Session, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.dialErr != nil {
		return nil, u.dialErr
	}
	s := &fakeSession{
		clientID: clientID,
		upstream: u,
		in:       make(chan tws.Event, 256),
		closed:   make(chan struct{}),
	}
	u.sessions[clientID] = s
	return s, nil
}

func (u *fakeUpstream) session(clientID int) *fakeSession {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.sessions[clientID]
}

func (u *fakeUpstream) record(clientID int, cmd tws.Command) {
	u.mu.Lock()
	u.sent = append(u.sent, sentCommand{ClientID: clientID, Cmd: cmd})
	u.mu.Unlock()
}

// commands returns a copy of every command written so far, oldest first.
func (u *fakeUpstream) commands() []sentCommand {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]sentCommand, len(u.sent))
	copy(out, u.sent)
	return out
}

// count tallies written commands by wire name.
func (u *fakeUpstream) count(name string) int {
	n := 0
	for _, sc := range u.commands() {
		if sc.Cmd.Cmd() == name {
			n++
		}
	}
	return n
}

// find returns the first written command with the given wire name.
func (u *fakeUpstream) find(name string) (sentCommand, bool) {
	for _, sc := range u.commands() {
		if sc.Cmd.Cmd() == name {
			return sc, true
		}
	}
	return sentCommand{}, false
}

type fakeSession struct {
	clientID int
	upstream *fakeUpstream
	in       chan tws.Event
	closed   chan struct{}
	closeMu  sync.Mutex
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
	select {
	case <-s.closed:
		return io.ErrClosedPipe
	default:
	}
	s.upstream.record(s.clientID, cmd)
	if s.upstream.respond != nil {
		s.upstream.respond(s.clientID, cmd, s.emit)
	}
	return nil
}

func (s *fakeSession) emit(ev tws.Event) {
	select {
	case s.in <- ev:
	case <-s.closed:
	}
}

func (s *fakeSession) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

// drop severs the session as if the upstream vanished.
func (s *fakeSession) drop() { s.Close() }

func fastConfig() Config {
	return Config{
		TimeoutIters:      50,
		OrderTimeoutIters: 25,
		PollInterval:      2 * time.Millisecond,
		MarketTicks:       5,
	}
}

// newTestGateway builds a started gateway over a fake upstream. Pool waits
// are shortened so exhaustion tests finish quickly.
func newTestGateway(t *testing.T, poolSize int, respond respondFunc) (*Gateway, *fakeUpstream) {
	t.Helper()
	u := newFakeUpstream(respond)
	pool := connection.NewPool(u, connection.DefaultConnConfig(), connection.PoolConfig{
		Size:         poolSize,
		WaitIters:    3,
		WaitInterval: 2 * time.Millisecond,
	}, nil)
	g := New(fastConfig(), pool, nil, nil)
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g, u
}

// waitSeed blocks until the order id allocator reaches want.
func waitSeed(t *testing.T, g *Gateway, want int64) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for g.ids.PeekOrderID() < want {
		if time.Now().After(deadline) {
			t.Fatalf("order id never seeded to %d, at %d", want, g.ids.PeekOrderID())
		}
		time.Sleep(time.Millisecond)
	}
}

// asGatewayError unwraps the typed error or fails the test.
func asGatewayError(t *testing.T, err error) *Error {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	gerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *Error", err)
	}
	return gerr
}
