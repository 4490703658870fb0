package observer_test

import (
	"testing"

	observable "github.com/GianlucaGuarini/go-observable"
	"github.com/stretchr/testify/require"

	"github.com/cmwaters/gatekeeper/allowlist"
	"github.com/cmwaters/gatekeeper/pkg/account"
	"github.com/cmwaters/gatekeeper/pkg/observer"
	"github.com/cmwaters/gatekeeper/store"
)

func TestEmitterBridgesVoterEvents(t *testing.T) {
	bus := observable.New()

	voted := make([]allowlist.AccountVoted, 0)
	allowed := make([]allowlist.AccountAllowed, 0)
	bus.On(observer.EventAccountVoted, func(ev allowlist.AccountVoted) {
		voted = append(voted, ev)
	})
	bus.On(observer.EventAccountAllowed, func(ev allowlist.AccountAllowed) {
		allowed = append(allowed, ev)
	})

	st := store.NewMemStore()
	require.NoError(t, store.Seed(st, "alice", "bob"))
	threshold, err := allowlist.NewThreshold(100)
	require.NoError(t, err)
	voter := allowlist.NewVoter(st, threshold,
		allowlist.WithEmitter(observer.NewEmitterWith(bus)))

	require.NoError(t, voter.VoteForAccount("alice", "carol"))
	require.NoError(t, voter.VoteForAccount("bob", "carol"))

	require.Len(t, voted, 2)
	require.Equal(t, account.ID("carol"), voted[0].Referee)
	require.Len(t, allowed, 1)
	require.Equal(t, []account.ID{"alice", "bob"}, allowed[0].VotedFor)
}
