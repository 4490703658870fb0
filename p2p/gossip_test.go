package p2p

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"github.com/stretchr/testify/require"

	"github.com/cmwaters/gatekeeper/admission"
	"github.com/cmwaters/gatekeeper/pkg/account"
	"github.com/cmwaters/gatekeeper/store"
)

var testNamespace = []byte("gatekeeper-test")

type chanNotifiee struct {
	ch chan *Submission
}

func newChanNotifiee() *chanNotifiee {
	return &chanNotifiee{ch: make(chan *Submission, 8)}
}

func (n *chanNotifiee) OnSubmission(_ context.Context, s *Submission, _ admission.Admission) error {
	n.ch <- s
	return nil
}

func (n *chanNotifiee) receive(ctx context.Context, t *testing.T) *Submission {
	t.Helper()
	select {
	case s := <-n.ch:
		return s
	case <-ctx.Done():
		t.Fatal("timed out waiting for submission")
		return nil
	}
}

// setupGossips builds n connected peers, each with its own pubsub router
// and a gate sharing the same allow-list content: alice is the only
// member and every call is restricted.
func setupGossips(ctx context.Context, t *testing.T, n int) []*Gossip {
	t.Helper()
	mn := mocknet.New()
	gossips := make([]*Gossip, n)
	for i := 0; i < n; i++ {
		host, err := mn.GenPeer()
		require.NoError(t, err)
		ps, err := pubsub.NewGossipSub(ctx, host)
		require.NoError(t, err)

		st := store.NewMemStore()
		require.NoError(t, store.Seed(st, "alice"))
		gate, err := admission.NewGate(st, admission.MatchAll)
		require.NoError(t, err)

		gossip, err := NewNetwork(ps, gate).Gossip(testNamespace)
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, gossip.Close())
		})
		gossips[i] = gossip
	}
	require.NoError(t, mn.LinkAll())
	require.NoError(t, mn.ConnectAllButSelf())
	return gossips
}

func TestGossipDeliversAdmittedSubmissions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	gossips := setupGossips(ctx, t, 2)
	g0, g1 := gossips[0], gossips[1]

	nt0, nt1 := newChanNotifiee(), newChanNotifiee()
	g0.Notify(nt0)
	g1.Notify(nt1)

	in := &Submission{
		Signer: account.ID("alice"),
		Weight: 42,
		Call:   json.RawMessage(`{"method":"restricted_op"}`),
	}
	require.NoError(t, g0.Broadcast(ctx, in))

	// the submission reaches the publisher itself and its peer
	out := nt0.receive(ctx, t)
	require.Equal(t, in, out)
	out = nt1.receive(ctx, t)
	require.Equal(t, in, out)
}

func TestGossipRejectsNonMemberSubmissions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	gossips := setupGossips(ctx, t, 2)
	g0, g1 := gossips[0], gossips[1]

	nt0, nt1 := newChanNotifiee(), newChanNotifiee()
	g0.Notify(nt0)
	g1.Notify(nt1)

	bad := &Submission{
		Signer: account.ID("mallory"),
		Call:   json.RawMessage(`{"method":"restricted_op"}`),
	}
	// the topic validator rejects the submission before it propagates:
	// either the publish itself reports the failure or nothing is ever
	// delivered
	if err := g0.Broadcast(ctx, bad); err == nil {
		select {
		case <-nt0.ch:
			t.Fatal("rejected submission delivered to publisher")
		case <-nt1.ch:
			t.Fatal("rejected submission delivered to peer")
		case <-time.After(500 * time.Millisecond):
		}
	}

	// the topic still works for members afterwards
	in := &Submission{
		Signer: account.ID("alice"),
		Call:   json.RawMessage(`{}`),
	}
	require.NoError(t, g0.Broadcast(ctx, in))
	require.Equal(t, in, nt1.receive(ctx, t))
}
