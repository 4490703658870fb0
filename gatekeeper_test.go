package gatekeeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmwaters/gatekeeper"
	"github.com/cmwaters/gatekeeper/admission"
	"github.com/cmwaters/gatekeeper/allowlist"
	"github.com/cmwaters/gatekeeper/pkg/account"
)

func TestVoteThenAdmit(t *testing.T) {
	threshold, err := allowlist.NewThreshold(51)
	require.NoError(t, err)

	gk, err := gatekeeper.Open(
		"memory://",
		threshold,
		admission.MatchAll,
		[]account.ID{"alice", "bob", "carol"},
		nil, nil,
	)
	require.NoError(t, err)
	defer gk.Close()

	// before promotion a restricted call from dave is dropped at both
	// pipeline points
	_, err = gk.Gate.Validate("dave", "restricted_op", admission.ExecutionInfo{})
	require.ErrorIs(t, err, admission.ErrBadSigner)
	require.ErrorIs(t, gk.Gate.PreExecute("dave", "restricted_op", admission.ExecutionInfo{}), admission.ErrBadSigner)

	require.NoError(t, gk.Voter.VoteForAccount("alice", "dave"))
	require.NoError(t, gk.Voter.VoteForAccount("bob", "dave"))

	// the identical call is now accepted
	adm, err := gk.Gate.Validate("dave", "restricted_op", admission.ExecutionInfo{Weight: 5})
	require.NoError(t, err)
	require.EqualValues(t, 5, adm.Priority)
	require.NoError(t, gk.Gate.PreExecute("dave", "restricted_op", admission.ExecutionInfo{}))
}

func TestOpenSeedsOnceAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	uri := "file://" + dir + "/gatekeeper.db"
	threshold, err := allowlist.NewThreshold(100)
	require.NoError(t, err)
	genesis := []account.ID{"alice"}

	gk, err := gatekeeper.Open(uri, threshold, admission.MatchNone, genesis, nil, nil)
	require.NoError(t, err)
	require.NoError(t, gk.Voter.VoteForAccount("alice", "bob"))
	require.NoError(t, gk.Close())

	// reopening replays the genesis sequence without duplicating it and
	// keeps the voted-in member
	gk, err = gatekeeper.Open(uri, threshold, admission.MatchNone, genesis, nil, nil)
	require.NoError(t, err)
	defer gk.Close()

	size, err := gk.Store.NumMembers()
	require.NoError(t, err)
	require.Equal(t, 2, size)
}
