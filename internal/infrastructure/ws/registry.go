package ws

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/samber/lo"
)

var (
	ErrNotRegistered = errors.New("identity has no registered connection")
	ErrUnreachable   = errors.New("connection unreachable")
)

// Conn is a live transport handle. Send must not block: it either queues msg
// for delivery or fails.
type Conn interface {
	Send(msg []byte) error
	Close() error
}

// Registry maps each identity to its current connection.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.UserID]Conn
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.UserID]Conn),
	}
}

// Register binds conn to id and returns the connection it replaced, if any.
func (r *Registry) Register(id domain.UserID, conn Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.conns[id]
	r.conns[id] = conn
	return prev
}

func (r *Registry) Unregister(id domain.UserID) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

// UnregisterConn removes id only while conn is still its current handle.
func (r *Registry) UnregisterConn(id domain.UserID, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.conns[id]; !ok || current != conn {
		return false
	}
	delete(r.conns, id)
	return true
}

func (r *Registry) Lookup(id domain.UserID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[id]
	return conn, ok
}

// Send hands msg to the connection of id. A failing connection is
// unregistered and closed in the same step, and the returned error wraps
// ErrUnreachable.
func (r *Registry) Send(id domain.UserID, msg []byte) error {
	r.mu.Lock()

	conn, ok := r.conns[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotRegistered
	}

	err := conn.Send(msg)
	if err == nil {
		r.mu.Unlock()
		return nil
	}

	delete(r.conns, id)
	r.mu.Unlock()

	_ = conn.Close()
	return fmt.Errorf("%w: %s: %v", ErrUnreachable, id, err)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll closes every registered connection and returns how many there
// were. Entries are left for each session's own teardown to remove.
func (r *Registry) CloseAll() int {
	r.mu.RLock()
	conns := lo.Values(r.conns)
	r.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
	return len(conns)
}
