package admission_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmwaters/gatekeeper/admission"
	"github.com/cmwaters/gatekeeper/pkg/account"
	"github.com/cmwaters/gatekeeper/store"
)

const (
	alice account.ID = "alice"
	dave  account.ID = "dave"
)

// restrictedCall marks a call the test matcher classifies as subject to
// the allow-list check.
type restrictedCall struct{}

var matchRestricted = admission.MatcherFunc(func(call any) bool {
	_, ok := call.(restrictedCall)
	return ok
})

func setupGate(t *testing.T, opts ...admission.GateOption) (*admission.Gate, store.Store) {
	t.Helper()
	st := store.NewMemStore()
	require.NoError(t, store.Seed(st, alice))
	gate, err := admission.NewGate(st, matchRestricted, opts...)
	require.NoError(t, err)
	return gate, st
}

func TestRestrictedCallFromMember(t *testing.T) {
	gate, _ := setupGate(t)

	adm, err := gate.Validate(alice, restrictedCall{}, admission.ExecutionInfo{Weight: 42})
	require.NoError(t, err)
	require.EqualValues(t, 42, adm.Priority)
	require.Equal(t, admission.MaxLongevity, adm.Longevity)
	require.True(t, adm.Propagate)
}

func TestRestrictedCallFromNonMember(t *testing.T) {
	gate, st := setupGate(t)

	_, err := gate.Validate(dave, restrictedCall{}, admission.ExecutionInfo{})
	require.ErrorIs(t, err, admission.ErrBadSigner)

	// once voted in, the identical call passes
	require.NoError(t, st.AddMember(dave))
	_, err = gate.Validate(dave, restrictedCall{}, admission.ExecutionInfo{})
	require.NoError(t, err)
}

func TestUnrestrictedCallFromAnySigner(t *testing.T) {
	gate, _ := setupGate(t)

	// the matcher does not flag a plain string, so membership is never
	// consulted
	adm, err := gate.Validate(dave, "transfer", admission.ExecutionInfo{Weight: 7})
	require.NoError(t, err)
	require.EqualValues(t, 7, adm.Priority)
}

func TestPreExecuteMatchesValidate(t *testing.T) {
	gate, st := setupGate(t)

	require.ErrorIs(t, gate.PreExecute(dave, restrictedCall{}, admission.ExecutionInfo{}), admission.ErrBadSigner)
	require.NoError(t, gate.PreExecute(alice, restrictedCall{}, admission.ExecutionInfo{}))
	require.NoError(t, gate.PreExecute(dave, "transfer", admission.ExecutionInfo{}))

	require.NoError(t, st.AddMember(dave))
	require.NoError(t, gate.PreExecute(dave, restrictedCall{}, admission.ExecutionInfo{}))
}

func TestMatchNone(t *testing.T) {
	st := store.NewMemStore()
	gate, err := admission.NewGate(st, admission.MatchNone)
	require.NoError(t, err)

	// with nothing restricted, even an empty membership admits everyone
	_, err = gate.Validate(dave, restrictedCall{}, admission.ExecutionInfo{})
	require.NoError(t, err)
}

func TestMemberCache(t *testing.T) {
	gate, st := setupGate(t, admission.WithMemberCache(16))

	// a non-member is rejected and must not be cached as a member
	_, err := gate.Validate(dave, restrictedCall{}, admission.ExecutionInfo{})
	require.ErrorIs(t, err, admission.ErrBadSigner)

	// cache the positive lookup for alice
	_, err = gate.Validate(alice, restrictedCall{}, admission.ExecutionInfo{})
	require.NoError(t, err)
	_, err = gate.Validate(alice, restrictedCall{}, admission.ExecutionInfo{})
	require.NoError(t, err)

	// promotion is visible through the cache immediately, the negative
	// path always reads the store
	require.NoError(t, st.AddMember(dave))
	_, err = gate.Validate(dave, restrictedCall{}, admission.ExecutionInfo{})
	require.NoError(t, err)
}

func TestMemberCacheInvalidSize(t *testing.T) {
	st := store.NewMemStore()
	_, err := admission.NewGate(st, admission.MatchAll, admission.WithMemberCache(0))
	require.Error(t, err)
}
