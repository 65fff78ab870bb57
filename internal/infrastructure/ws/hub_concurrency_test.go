package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/stretchr/testify/require"
)

// chatSequence returns the numeric chat bodies conn received, in order.
func chatSequence(t *testing.T, conn *fakeConn) []int {
	t.Helper()

	var seq []int
	for _, raw := range conn.messages() {
		var msg struct {
			Type    string          `json:"type"`
			Message json.RawMessage `json:"message"`
		}
		require.NoError(t, json.Unmarshal([]byte(raw), &msg))
		if msg.Type != ChatEvent {
			continue
		}
		n, err := strconv.Atoi(string(msg.Message))
		require.NoError(t, err)
		seq = append(seq, n)
	}
	return seq
}

func TestHub_ConcurrentCallersKeepIndexAndOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub := newTestHub(t)

	const (
		chats      = 500
		listeners  = 3
		movers     = 9
		moverLoops = 200
	)

	// Given listeners that stay in s and movers that keep changing space
	listenerConns := make([]*fakeConn, listeners)
	for i := range listenerConns {
		id := domain.UserID(fmt.Sprintf("listener-%d", i))
		listenerConns[i] = newFakeConn()
		hub.Connect(ctx, id, listenerConns[i])
		hub.Join(ctx, id, "s")
	}
	moverConns := make([]*fakeConn, movers)
	for i := range moverConns {
		moverConns[i] = newFakeConn()
		hub.Connect(ctx, domain.UserID(fmt.Sprintf("mover-%d", i)), moverConns[i])
	}

	// When one sender chats in s while the movers and readers run
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := range chats {
			hub.Broadcast(ctx, "s", NewChat("sender", "s", json.RawMessage(strconv.Itoa(n))))
		}
	}()

	for i := range movers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := domain.UserID(fmt.Sprintf("mover-%d", i))
			other := domain.SpaceID(fmt.Sprintf("other-%d", i%3))
			for range moverLoops {
				hub.Join(ctx, id, "s")
				hub.Leave(ctx, id)
				hub.Join(ctx, id, other)
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range moverLoops {
			_ = hub.MembersOf("s")
			_ = hub.Spaces()
			_ = hub.ConnectionCount()
		}
	}()

	wg.Wait()

	// Then both directions of the index agree
	requireConsistent(t, hub.membership)
	req.Len(hub.MembersOf("s"), listeners)
	for i := range movers {
		space, ok := hub.SpaceOf(domain.UserID(fmt.Sprintf("mover-%d", i)))
		req.True(ok)
		req.Equal(domain.SpaceID(fmt.Sprintf("other-%d", i%3)), space)
	}

	// And every recipient saw the chats in the order they were sent
	for i, conn := range listenerConns {
		seq := chatSequence(t, conn)
		req.Len(seq, chats, "listener-%d", i)
		for n, got := range seq {
			req.Equal(n, got, "listener-%d", i)
		}
	}
	for i, conn := range moverConns {
		seq := chatSequence(t, conn)
		for n := 1; n < len(seq); n++ {
			req.Less(seq[n-1], seq[n], "mover-%d", i)
		}
	}
}
