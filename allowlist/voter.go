package allowlist

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cmwaters/gatekeeper/pkg/account"
	"github.com/cmwaters/gatekeeper/pkg/metrics"
	"github.com/cmwaters/gatekeeper/store"
)

// Voter grows the allow-list. Members vote for candidate accounts and a
// candidate that gathers votes from at least the threshold fraction of
// the current membership is promoted into the allow-list, at which point
// its ledger entry is drained for good.
//
// The Voter is designed to run as part of deterministic state-transition
// processing: calls are applied one at a time, in a fixed order, and a
// failing call leaves no partial writes behind. Concurrent callers are
// serialized internally so that the check-then-write sequence of a vote
// never interleaves with another. It holds no state of its own;
// everything lives in the injected store so that hosts can swap in
// their own backends or in-memory fakes.
type Voter struct {
	mtx       sync.Mutex
	store     store.Store
	threshold Threshold

	emitter Emitter
	metrics *metrics.VotingMetrics
	logger  zerolog.Logger
}

func NewVoter(st store.Store, threshold Threshold, opts ...Option) *Voter {
	v := &Voter{
		store:     st,
		threshold: threshold,
		emitter:   NopEmitter{},
		metrics:   metrics.NopVotingMetrics(),
		logger:    zerolog.New(os.Stdout),
	}
	for _, opt := range opts {
		opt(v)
	}
	if size, err := st.NumMembers(); err == nil {
		v.metrics.SetMembers(size)
	} else {
		v.logger.Debug().Err(err).Msg("priming members gauge")
	}
	return v
}

// VoteForAccount records a vote by voter for candidate and promotes the
// candidate if the vote reaches the threshold.
//
// It fails with ErrNotAllowedToVote if the voter is not a member, with
// ErrAlreadyAllowed if the candidate already is one, and with
// ErrDuplicateVote if this pair has voted before; the checks run in that
// order and a failing call mutates nothing.
//
// The quorum fraction is votesFor/votesRequired where votesFor counts
// the previously recorded voters plus this vote, and votesRequired is
// the membership size before this call mutates anything.
func (v *Voter) VoteForAccount(voter, candidate account.ID) error {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	isMember, err := v.store.IsMember(voter)
	if err != nil {
		return fmt.Errorf("checking voter membership: %w", err)
	}
	if !isMember {
		v.metrics.Rejected.Add(1)
		return ErrNotAllowedToVote
	}

	isMember, err = v.store.IsMember(candidate)
	if err != nil {
		return fmt.Errorf("checking candidate membership: %w", err)
	}
	if isMember {
		v.metrics.Rejected.Add(1)
		return ErrAlreadyAllowed
	}

	voted, err := v.store.HasVoted(candidate, voter)
	if err != nil {
		return fmt.Errorf("checking prior vote: %w", err)
	}
	if voted {
		v.metrics.Rejected.Add(1)
		return ErrDuplicateVote
	}

	priorVotes, err := v.store.CountVotersFor(candidate)
	if err != nil {
		return fmt.Errorf("counting votes: %w", err)
	}
	votesRequired, err := v.store.NumMembers()
	if err != nil {
		return fmt.Errorf("counting members: %w", err)
	}
	votesFor := priorVotes + 1

	if !v.threshold.Met(votesFor, votesRequired) {
		if err := v.store.RecordVote(candidate, voter); err != nil {
			return fmt.Errorf("recording vote: %w", err)
		}
		v.metrics.VotesCast.Add(1)
		v.logger.Info().
			Stringer("voter", voter).
			Stringer("candidate", candidate).
			Int("votes", votesFor).
			Int("required", votesRequired).
			Msg("vote recorded")
		v.emitter.Emit(AccountVoted{Referrer: voter, Referee: candidate})
		return nil
	}

	// threshold reached: membership insert and ledger drain happen in
	// one atomic store write
	prior, err := v.store.Promote(candidate)
	if err != nil {
		return fmt.Errorf("promoting candidate: %w", err)
	}
	votedFor := append(prior, voter)

	v.metrics.VotesCast.Add(1)
	v.metrics.Promotions.Add(1)
	v.metrics.SetMembers(votesRequired + 1)
	v.logger.Info().
		Stringer("account", candidate).
		Int("votes", votesFor).
		Int("required", votesRequired).
		Msg("account allowed")

	v.emitter.Emit(AccountVoted{Referrer: voter, Referee: candidate})
	v.emitter.Emit(AccountAllowed{Account: candidate, VotedFor: votedFor})
	return nil
}

// Threshold returns the configured promotion threshold.
func (v *Voter) Threshold() Threshold {
	return v.threshold
}
