package gatekeeper

import (
	"errors"

	"github.com/cmwaters/gatekeeper/admission"
	"github.com/cmwaters/gatekeeper/allowlist"
	"github.com/cmwaters/gatekeeper/pkg/account"
	"github.com/cmwaters/gatekeeper/store"
)

// Gatekeeper bundles the two halves of the system around a shared store:
// the Voter that grows the allow-list and the Gate that the host
// pipeline consults before admitting or executing a restricted call.
type Gatekeeper struct {
	Store store.Store
	Voter *allowlist.Voter
	Gate  *admission.Gate
}

// New wires a Gatekeeper over the given store, seeding it with the
// genesis allow-list. Genesis runs before any vote is cast and seeding
// an existing member is a no-op, so restarting over a persistent store
// is safe.
func New(
	st store.Store,
	threshold allowlist.Threshold,
	matcher admission.Matcher,
	genesis []account.ID,
	voterOpts []allowlist.Option,
	gateOpts []admission.GateOption,
) (*Gatekeeper, error) {
	if err := store.Seed(st, genesis...); err != nil {
		return nil, err
	}
	gate, err := admission.NewGate(st, matcher, gateOpts...)
	if err != nil {
		return nil, err
	}
	return &Gatekeeper{
		Store: st,
		Voter: allowlist.NewVoter(st, threshold, voterOpts...),
		Gate:  gate,
	}, nil
}

// Open is like New but opens a persistent store at uri first
// ("file://<path>" or "memory://").
func Open(
	uri string,
	threshold allowlist.Threshold,
	matcher admission.Matcher,
	genesis []account.ID,
	voterOpts []allowlist.Option,
	gateOpts []admission.GateOption,
) (*Gatekeeper, error) {
	st, err := store.NewLevelDBStore(uri)
	if err != nil {
		return nil, err
	}
	gk, err := New(st, threshold, matcher, genesis, voterOpts, gateOpts)
	if err != nil {
		return nil, errors.Join(err, st.Close())
	}
	return gk, nil
}

func (gk *Gatekeeper) Close() error {
	return gk.Store.Close()
}
