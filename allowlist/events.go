package allowlist

import "github.com/cmwaters/gatekeeper/pkg/account"

type Event interface {
	event()
}

// AccountVoted is emitted on every successful vote, whether or not it
// promotes the candidate.
type AccountVoted struct {
	// Referrer is the member that cast the vote.
	Referrer account.ID
	// Referee is the candidate that was voted for.
	Referee account.ID
}

// AccountAllowed is emitted when a candidate reaches the threshold and
// joins the allow-list. It always follows the AccountVoted event of the
// promoting vote.
type AccountAllowed struct {
	Account account.ID
	// VotedFor lists every member that voted for the account, in the
	// order the votes were cast. The member whose vote triggered the
	// promotion is last.
	VotedFor []account.ID
}

func (AccountVoted) event()   {}
func (AccountAllowed) event() {}

// Emitter receives the events deposited by the Voter. Emit is called
// synchronously after the vote's mutations have been committed, in the
// order the events occurred.
type Emitter interface {
	Emit(Event)
}

type NopEmitter struct{}

func (NopEmitter) Emit(Event) {}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Event)

func (f EmitterFunc) Emit(ev Event) { f(ev) }
