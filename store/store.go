package store

import (
	"fmt"

	"github.com/cmwaters/gatekeeper/pkg/account"
)

// Store holds the two pieces of gatekeeper state: the membership set
// (the allow-list itself) and the vote ledger mapping each candidate to
// the distinct members that have voted for it so far.
//
// Membership only ever grows. Vote ledger entries are created one at a
// time and destroyed only in bulk, at the moment their candidate is
// promoted. Implementations must be safe for concurrent readers; writes
// come from a single strictly-ordered caller (the allowlist.Voter
// serializes its own callers before touching the store).
type Store interface {
	// IsMember reports whether the account is in the allow-list.
	IsMember(id account.ID) (bool, error)

	// AddMember inserts the account into the allow-list. Adding an
	// account that is already a member is a no-op.
	AddMember(id account.ID) error

	// NumMembers returns the current size of the allow-list.
	NumMembers() (int, error)

	// Members enumerates the allow-list. The order carries no meaning
	// but is stable across calls.
	Members() ([]account.ID, error)

	// HasVoted reports whether voter has already voted for candidate.
	HasVoted(candidate, voter account.ID) (bool, error)

	// RecordVote records a (candidate, voter) pair. The caller is
	// responsible for uniqueness; recording the same pair twice is an
	// implementation defect upstream.
	RecordVote(candidate, voter account.ID) error

	// CountVotersFor returns the number of distinct voters recorded for
	// the candidate.
	CountVotersFor(candidate account.ID) (int, error)

	// VotersFor returns the recorded voters for the candidate, in the
	// order their votes were cast, without modifying the ledger.
	VotersFor(candidate account.ID) ([]account.ID, error)

	// DrainVotersFor atomically returns and deletes all recorded voters
	// for the candidate, in the order their votes were cast.
	DrainVotersFor(candidate account.ID) ([]account.ID, error)

	// Promote adds the candidate to the allow-list and drains its
	// voters in a single atomic write, returning the drained voters in
	// the order their votes were cast.
	Promote(candidate account.ID) ([]account.ID, error)

	Close() error
}

// Seed loads the genesis allow-list into the store. It is meant to run
// once, before any vote is cast; seeding an account twice is a no-op, so
// the same genesis sequence can be replayed safely. An empty genesis is
// valid, though a deployment with no members can never grow (only
// members may vote).
func Seed(st Store, ids ...account.ID) error {
	for _, id := range ids {
		if err := st.AddMember(id); err != nil {
			return fmt.Errorf("seeding account %s: %w", id, err)
		}
	}
	return nil
}
