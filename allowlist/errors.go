package allowlist

import "errors"

// Validation errors returned by VoteForAccount. All of them guarantee
// that no state was mutated by the failing call.
var (
	// ErrNotAllowedToVote is returned when the voter is not a member of
	// the allow-list.
	ErrNotAllowedToVote = errors.New("voter is not in the allow-list")

	// ErrAlreadyAllowed is returned when the candidate is already a
	// member of the allow-list.
	ErrAlreadyAllowed = errors.New("candidate is already in the allow-list")

	// ErrDuplicateVote is returned when the voter has already voted for
	// the candidate.
	ErrDuplicateVote = errors.New("voter has already voted for this candidate")
)
