package ws

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/hilthontt/metaverse/internal/infrastructure/logging"
	"github.com/hilthontt/metaverse/internal/infrastructure/metrics"
	"github.com/stretchr/testify/require"
)

var errBrokenPipe = errors.New("broken pipe")

// fakeConn records what is sent to it and can be told to fail. It also acts
// as a Transport fed through push.
type fakeConn struct {
	mu        sync.Mutex
	sent      [][]byte
	failSend  error
	closed    bool
	inbound   chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound: make(chan []byte, 16),
		done:    make(chan struct{}),
	}
}

func (f *fakeConn) Send(msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrConnClosed
	}
	if f.failSend != nil {
		return f.failSend
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()
		close(f.done)
	})
	return nil
}

func (f *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case msg := <-f.inbound:
		return msg, nil
	case <-f.done:
		return nil, io.EOF
	}
}

func (f *fakeConn) push(frame string) {
	f.inbound <- []byte(frame)
}

func (f *fakeConn) fail(err error) {
	f.mu.Lock()
	f.failSend = err
	f.mu.Unlock()
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.sent))
	for i, msg := range f.sent {
		out[i] = string(msg)
	}
	return out
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	f.sent = nil
	f.mu.Unlock()
}

// recordingPublisher keeps every presence event it is given.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.PresenceEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.PresenceEvent) {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
}

func (p *recordingPublisher) types() []domain.PresenceEventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.PresenceEventType, len(p.events))
	for i, event := range p.events {
		out[i] = event.Type
	}
	return out
}

func (p *recordingPublisher) count(eventType domain.PresenceEventType) int {
	n := 0
	for _, t := range p.types() {
		if t == eventType {
			n++
		}
	}
	return n
}

type testHub struct {
	*Hub
	metrics *metrics.Presence
	events  *recordingPublisher
}

func newTestHub(t *testing.T) *testHub {
	t.Helper()
	m := metrics.NewNop()
	pub := &recordingPublisher{}
	return &testHub{
		Hub:     NewHub(NewRegistry(), NewMembership(), pub, m, logging.NewNop()),
		metrics: m,
		events:  pub,
	}
}

func ids(raw ...string) []domain.UserID {
	out := make([]domain.UserID, len(raw))
	for i, r := range raw {
		out[i] = domain.UserID(r)
	}
	return out
}

// requireConsistent checks that both directions of the membership index agree.
func requireConsistent(t *testing.T, m *Membership) {
	t.Helper()
	req := require.New(t)

	total := 0
	for space, count := range m.Spaces() {
		members := m.MembersOf(space)
		req.Len(members, count)
		req.NotZero(count, "empty space %q kept", space)
		for _, id := range members {
			got, ok := m.SpaceOf(id)
			req.True(ok, "%s listed in %s but has no space", id, space)
			req.Equal(space, got)
		}
		total += count
	}
	req.Equal(m.Len(), total)
}
