package admission

// Matcher classifies whether a call is subject to the allow-list check.
// It is supplied and owned by the host: the gate makes no assumption
// about the call representation beyond the matcher being deterministic
// for a given call value.
type Matcher interface {
	Matches(call any) bool
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(call any) bool

func (f MatcherFunc) Matches(call any) bool { return f(call) }

var (
	// MatchAll subjects every call to the allow-list check.
	MatchAll Matcher = MatcherFunc(func(any) bool { return true })

	// MatchNone disables the check entirely; every call is admitted
	// regardless of the signer.
	MatchNone Matcher = MatcherFunc(func(any) bool { return false })
)
